package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/erp-core/internal/application/dto"
	"github.com/jhoicas/erp-core/internal/application/finance"
)

// CashHandler turnos de caja y movimientos de efectivo.
type CashHandler struct {
	uc *finance.CashShiftUseCase
}

// NewCashHandler construye el handler.
func NewCashHandler(uc *finance.CashShiftUseCase) *CashHandler {
	return &CashHandler{uc: uc}
}

// OpenShift godoc
// @Summary      Abrir turno de caja
// @Tags         cash
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                true  "ID de la caja"
// @Param        body  body  dto.OpenShiftRequest  true  "saldo de apertura"
// @Success      200   {object}  dto.OpenShiftResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/cash-registers/{id}/open [post]
func (h *CashHandler) OpenShift(c *fiber.Ctx) error {
	companyID, userID := GetCompanyID(c), GetUserID(c)
	if companyID == "" || userID == "" {
		return unauthorized(c)
	}
	var in dto.OpenShiftRequest
	if err := parseBody(c, &in); err != nil {
		return validationFailed(c, err)
	}
	out, err := h.uc.Open(c.UserContext(), companyID, c.Params("id"), userID, in.OpeningBalance)
	if err != nil {
		return respondError(c, err, nil)
	}
	return c.JSON(out)
}

// GetShift godoc
// @Summary      Obtener turno con sus pagos
// @Tags         cash
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del turno"
// @Success      200  {object}  dto.CashShiftResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/cash-shifts/{id} [get]
func (h *CashHandler) GetShift(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	out, err := h.uc.GetShift(c.UserContext(), companyID, c.Params("id"))
	if err != nil {
		return respondError(c, err, nil)
	}
	return c.JSON(out)
}

// AddPayment godoc
// @Summary      Registrar pago en el turno
// @Tags         cash
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "ID del turno"
// @Param        body  body  dto.AddPaymentRequest  true  "tipo y monto"
// @Success      200   {object}  dto.PaymentResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/cash-shifts/{id}/payments [post]
func (h *CashHandler) AddPayment(c *fiber.Ctx) error {
	companyID, userID := GetCompanyID(c), GetUserID(c)
	if companyID == "" || userID == "" {
		return unauthorized(c)
	}
	var in dto.AddPaymentRequest
	if err := parseBody(c, &in); err != nil {
		return validationFailed(c, err)
	}
	out, err := h.uc.AddPayment(c.UserContext(), companyID, c.Params("id"), userID, in)
	if err != nil {
		return respondError(c, err, nil)
	}
	return c.JSON(out)
}

// CloseShift godoc
// @Summary      Cerrar turno (arqueo)
// @Tags         cash
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "ID del turno"
// @Param        body  body  dto.CloseShiftRequest  true  "efectivo contado"
// @Success      200   {object}  dto.CloseShiftResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/cash-shifts/{id}/close [post]
func (h *CashHandler) CloseShift(c *fiber.Ctx) error {
	companyID, userID := GetCompanyID(c), GetUserID(c)
	if companyID == "" || userID == "" {
		return unauthorized(c)
	}
	var in dto.CloseShiftRequest
	if err := parseBody(c, &in); err != nil {
		return validationFailed(c, err)
	}
	out, err := h.uc.Close(c.UserContext(), companyID, c.Params("id"), userID, in.ActualBalance)
	if err != nil {
		return respondError(c, err, nil)
	}
	return c.JSON(out)
}

// CreateTransaction godoc
// @Summary      Ajuste manual de caja
// @Description  Exige turno abierto en la caja; genera el pago del turno y la transacción contable.
// @Tags         cash
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CashTransactionRequest  true  "caja, tipo y monto"
// @Success      200   {object}  dto.PaymentResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/cash-transactions [post]
func (h *CashHandler) CreateTransaction(c *fiber.Ctx) error {
	companyID, userID := GetCompanyID(c), GetUserID(c)
	if companyID == "" || userID == "" {
		return unauthorized(c)
	}
	var in dto.CashTransactionRequest
	if err := parseBody(c, &in); err != nil {
		return validationFailed(c, err)
	}
	out, err := h.uc.CreateCashTransaction(c.UserContext(), companyID, userID, in)
	if err != nil {
		return respondError(c, err, nil)
	}
	return c.JSON(out)
}
