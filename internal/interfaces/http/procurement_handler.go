package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/erp-core/internal/application/dto"
	"github.com/jhoicas/erp-core/internal/application/procurement"
)

// ProcurementHandler órdenes de compra, recepciones y devoluciones a proveedor.
type ProcurementHandler struct {
	orders     *procurement.PurchaseOrderUseCase
	receptions *procurement.ReceptionUseCase
	returns    *procurement.SupplierReturnUseCase
}

// NewProcurementHandler construye el handler.
func NewProcurementHandler(
	orders *procurement.PurchaseOrderUseCase,
	receptions *procurement.ReceptionUseCase,
	returns *procurement.SupplierReturnUseCase,
) *ProcurementHandler {
	return &ProcurementHandler{orders: orders, receptions: receptions, returns: returns}
}

// CreatePurchaseOrder godoc
// @Summary      Crear orden de compra
// @Tags         procurement
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreatePurchaseOrderRequest  true  "proveedor, tasa de impuesto e ítems"
// @Success      200   {object}  dto.PurchaseOrderCreatedResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/purchase-orders [post]
func (h *ProcurementHandler) CreatePurchaseOrder(c *fiber.Ctx) error {
	companyID, userID := GetCompanyID(c), GetUserID(c)
	if companyID == "" || userID == "" {
		return unauthorized(c)
	}
	var in dto.CreatePurchaseOrderRequest
	if err := parseBody(c, &in); err != nil {
		return validationFailed(c, err)
	}
	po, err := h.orders.Create(c.UserContext(), companyID, userID, in)
	if err != nil {
		return respondError(c, err, nil)
	}
	return c.JSON(dto.PurchaseOrderCreatedResponse{ID: po.ID, PONumber: po.PONumber})
}

// GetPurchaseOrder godoc
// @Summary      Obtener orden de compra
// @Tags         procurement
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la orden"
// @Success      200  {object}  dto.PurchaseOrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/{id} [get]
func (h *ProcurementHandler) GetPurchaseOrder(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	po, err := h.orders.Get(c.UserContext(), companyID, c.Params("id"))
	if err != nil {
		return respondError(c, err, nil)
	}
	return c.JSON(po)
}

// UpdatePurchaseOrderStatus godoc
// @Summary      Cambiar estado de una orden de compra
// @Description  Acepta draft, sent, completed y cancelled (ordered como alias de sent); partial solo lo fija una recepción.
// @Tags         procurement
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                                true  "ID de la orden"
// @Param        body  body  dto.UpdatePurchaseOrderStatusRequest  true  "nuevo estado"
// @Success      200   {object}  dto.PurchaseOrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/{id}/status [put]
func (h *ProcurementHandler) UpdatePurchaseOrderStatus(c *fiber.Ctx) error {
	companyID, userID := GetCompanyID(c), GetUserID(c)
	if companyID == "" || userID == "" {
		return unauthorized(c)
	}
	var in dto.UpdatePurchaseOrderStatusRequest
	if err := parseBody(c, &in); err != nil {
		return validationFailed(c, err)
	}
	po, err := h.orders.SetStatus(c.UserContext(), companyID, userID, c.Params("id"), in.Status)
	if err != nil {
		return respondError(c, err, nil)
	}
	return c.JSON(po)
}

// CreateReception godoc
// @Summary      Registrar recepción de mercancía
// @Description  Queda en pending_qc; el stock entra al aprobar.
// @Tags         procurement
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateReceptionRequest  true  "orden de compra o proveedor, e ítems recibidos"
// @Success      200   {object}  dto.ReceptionCreatedResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/receptions [post]
func (h *ProcurementHandler) CreateReception(c *fiber.Ctx) error {
	companyID, userID := GetCompanyID(c), GetUserID(c)
	if companyID == "" || userID == "" {
		return unauthorized(c)
	}
	var in dto.CreateReceptionRequest
	if err := parseBody(c, &in); err != nil {
		return validationFailed(c, err)
	}
	out, err := h.receptions.Create(c.UserContext(), companyID, userID, in)
	if err != nil {
		return respondError(c, err, receptionCodes)
	}
	return c.JSON(out)
}

// GetReception godoc
// @Summary      Obtener recepción
// @Tags         procurement
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la recepción"
// @Success      200  {object}  dto.ReceptionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/receptions/{id} [get]
func (h *ProcurementHandler) GetReception(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	rec, err := h.receptions.Get(c.UserContext(), companyID, c.Params("id"))
	if err != nil {
		return respondError(c, err, receptionCodes)
	}
	return c.JSON(rec)
}

// ApproveReception godoc
// @Summary      Aprobar recepción
// @Description  Ingresa el stock, crea lotes y actualiza la orden de compra en una sola transacción.
// @Tags         procurement
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la recepción"
// @Success      200  {object}  dto.SuccessResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/receptions/{id}/approve [post]
func (h *ProcurementHandler) ApproveReception(c *fiber.Ctx) error {
	companyID, userID := GetCompanyID(c), GetUserID(c)
	if companyID == "" || userID == "" {
		return unauthorized(c)
	}
	if err := h.receptions.Approve(c.UserContext(), companyID, c.Params("id"), userID); err != nil {
		return respondError(c, err, receptionCodes)
	}
	return c.JSON(dto.SuccessResponse{Success: true})
}

// RejectReception godoc
// @Summary      Rechazar recepción
// @Tags         procurement
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                      true  "ID de la recepción"
// @Param        body  body  dto.RejectReceptionRequest  true  "motivo"
// @Success      200   {object}  dto.SuccessResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/receptions/{id}/reject [post]
func (h *ProcurementHandler) RejectReception(c *fiber.Ctx) error {
	companyID, userID := GetCompanyID(c), GetUserID(c)
	if companyID == "" || userID == "" {
		return unauthorized(c)
	}
	var in dto.RejectReceptionRequest
	if err := parseBody(c, &in); err != nil {
		return validationFailed(c, err)
	}
	if err := h.receptions.Reject(c.UserContext(), companyID, c.Params("id"), userID, in.Reason); err != nil {
		return respondError(c, err, receptionCodes)
	}
	return c.JSON(dto.SuccessResponse{Success: true})
}

// CreateSupplierReturn godoc
// @Summary      Crear devolución a proveedor
// @Tags         procurement
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateSupplierReturnRequest  true  "proveedor, motivo e ítems"
// @Success      200   {object}  dto.SupplierReturnCreatedResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/returns [post]
func (h *ProcurementHandler) CreateSupplierReturn(c *fiber.Ctx) error {
	companyID, userID := GetCompanyID(c), GetUserID(c)
	if companyID == "" || userID == "" {
		return unauthorized(c)
	}
	var in dto.CreateSupplierReturnRequest
	if err := parseBody(c, &in); err != nil {
		return validationFailed(c, err)
	}
	out, err := h.returns.Create(c.UserContext(), companyID, userID, in)
	if err != nil {
		return respondError(c, err, nil)
	}
	return c.JSON(out)
}

// GetSupplierReturn godoc
// @Summary      Obtener devolución a proveedor
// @Tags         procurement
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la devolución"
// @Success      200  {object}  dto.SupplierReturnResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/returns/{id} [get]
func (h *ProcurementHandler) GetSupplierReturn(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	out, err := h.returns.Get(c.UserContext(), companyID, c.Params("id"))
	if err != nil {
		return respondError(c, err, nil)
	}
	return c.JSON(out)
}

// ApproveSupplierReturn godoc
// @Summary      Aprobar devolución a proveedor
// @Description  Descuenta el stock, reduce el saldo del proveedor y registra el gasto.
// @Tags         procurement
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la devolución"
// @Success      200  {object}  dto.SuccessResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/returns/{id}/approve [post]
func (h *ProcurementHandler) ApproveSupplierReturn(c *fiber.Ctx) error {
	companyID, userID := GetCompanyID(c), GetUserID(c)
	if companyID == "" || userID == "" {
		return unauthorized(c)
	}
	if err := h.returns.Approve(c.UserContext(), companyID, c.Params("id"), userID); err != nil {
		return respondError(c, err, nil)
	}
	return c.JSON(dto.SuccessResponse{Success: true})
}
