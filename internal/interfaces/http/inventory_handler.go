package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/erp-core/internal/application/dto"
	"github.com/jhoicas/erp-core/internal/application/inventory"
	"github.com/jhoicas/erp-core/internal/domain/entity"
)

// InventoryHandler maneja las peticiones HTTP de movimientos e inventario (protegido).
type InventoryHandler struct {
	uc *inventory.MovementUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *inventory.MovementUseCase) *InventoryHandler {
	return &InventoryHandler{uc: uc}
}

// RegisterMovement godoc
// @Summary      Registrar movimiento de inventario
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterMovementRequest  true  "product_id, type, location (o from/to para transfer), quantity"
// @Success      201   {object}  map[string]string
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [post]
func (h *InventoryHandler) RegisterMovement(c *fiber.Ctx) error {
	companyID, userID := GetCompanyID(c), GetUserID(c)
	if companyID == "" || userID == "" {
		return unauthorized(c)
	}
	var in dto.RegisterMovementRequest
	if err := parseBody(c, &in); err != nil {
		return validationFailed(c, err)
	}
	err := h.uc.RegisterMovement(c.UserContext(), inventory.MovementInput{
		CompanyID:    companyID,
		UserID:       userID,
		ProductID:    in.ProductID,
		Type:         in.Type,
		Location:     in.Location,
		FromLocation: in.FromLocation,
		ToLocation:   in.ToLocation,
		Quantity:     in.Quantity,
		UnitCost:     in.UnitCost,
		Reason:       in.Reason,
	})
	if err != nil {
		return respondError(c, err, nil)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "movimiento registrado"})
}

// GetStock godoc
// @Summary      Stock por ubicación de un producto
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  dto.ProductStockResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/products/{id}/stock [get]
func (h *InventoryHandler) GetStock(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	stock, err := h.uc.GetStock(c.UserContext(), companyID, c.Params("id"))
	if err != nil {
		return respondError(c, err, nil)
	}
	return c.JSON(dto.ProductStockResponse{
		ProductID: stock.ProductID,
		SKU:       stock.SKU,
		Total:     stock.Total,
		Lots:      toLotResponses(stock.Lots),
	})
}

// ListMovements godoc
// @Summary      Movimientos de un producto
// @Description  Más recientes primero.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "ID del producto"
// @Param        limit   query  int     false  "máximo 100, por defecto 20"
// @Param        offset  query  int     false  "desplazamiento"
// @Success      200     {object}  dto.MovementListResponse
// @Failure      400     {object}  dto.ErrorResponse
// @Failure      404     {object}  dto.ErrorResponse
// @Router       /api/inventory/products/{id}/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return validationFailed(c, errMalformedBody)
	}
	page.DefaultPage()
	if err := validate.Struct(page); err != nil {
		return validationFailed(c, err)
	}
	movements, err := h.uc.ListMovements(c.UserContext(), companyID, c.Params("id"), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err, nil)
	}
	out := dto.MovementListResponse{
		Items: make([]dto.MovementResponse, 0, len(movements)),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}
	for _, m := range movements {
		out.Items = append(out.Items, toMovementResponse(m))
	}
	return c.JSON(out)
}

// Reconcile godoc
// @Summary      Conciliación lotes contra libro
// @Description  drift distinto de cero indica stock modificado fuera del libro.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  dto.ReconciliationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/products/{id}/reconciliation [get]
func (h *InventoryHandler) Reconcile(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	rec, err := h.uc.Reconcile(c.UserContext(), companyID, c.Params("id"))
	if err != nil {
		return respondError(c, err, nil)
	}
	return c.JSON(dto.ReconciliationResponse{
		ProductID:   rec.ProductID,
		LotTotal:    rec.LotTotal,
		LedgerTotal: rec.LedgerTotal,
		Drift:       rec.Drift,
		Lots:        toLotResponses(rec.Lots),
	})
}

func toLotResponses(lots []*entity.StockLot) []dto.StockLotResponse {
	out := make([]dto.StockLotResponse, 0, len(lots))
	for _, l := range lots {
		out = append(out, dto.StockLotResponse{Location: l.Location, Quantity: l.Quantity, UpdatedAt: l.UpdatedAt})
	}
	return out
}

func toMovementResponse(m *entity.InventoryMovement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:            m.ID,
		Type:          m.Type,
		ProductID:     m.ProductID,
		FromLocation:  m.FromLocation,
		ToLocation:    m.ToLocation,
		Quantity:      m.Quantity,
		UnitCost:      m.UnitCost,
		Reason:        m.Reason,
		ReferenceType: m.ReferenceType,
		ReferenceID:   m.ReferenceID,
		CreatedBy:     m.CreatedBy,
		CreatedAt:     m.CreatedAt,
	}
}
