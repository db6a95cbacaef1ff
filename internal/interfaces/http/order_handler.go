package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/erp-core/internal/application/dto"
	"github.com/jhoicas/erp-core/internal/application/sales"
)

// OrderHandler pedidos de venta (protegido).
type OrderHandler struct {
	uc *sales.OrderUseCase
}

// NewOrderHandler construye el handler.
func NewOrderHandler(uc *sales.OrderUseCase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

// Create godoc
// @Summary      Crear pedido
// @Description  Descuenta el stock de todas las líneas o de ninguna.
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateOrderRequest  true  "cliente, turno de caja opcional e ítems"
// @Success      200   {object}  dto.OrderCreatedResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/orders [post]
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	companyID, userID := GetCompanyID(c), GetUserID(c)
	if companyID == "" || userID == "" {
		return unauthorized(c)
	}
	var in dto.CreateOrderRequest
	if err := parseBody(c, &in); err != nil {
		return validationFailed(c, err)
	}
	out, err := h.uc.Create(c.UserContext(), companyID, userID, in)
	if err != nil {
		return respondError(c, err, nil)
	}
	return c.JSON(out)
}

// Get godoc
// @Summary      Obtener pedido
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del pedido"
// @Success      200  {object}  dto.OrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id} [get]
func (h *OrderHandler) Get(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	out, err := h.uc.Get(c.UserContext(), companyID, c.Params("id"))
	if err != nil {
		return respondError(c, err, nil)
	}
	return c.JSON(out)
}

// UpdateStatus godoc
// @Summary      Cambiar estado del pedido
// @Description  pending → picking → packed → dispatched → delivered → completed; cancelled desde cualquier estado no terminal.
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                        true  "ID del pedido"
// @Param        body  body  dto.UpdateOrderStatusRequest  true  "estado destino y datos de despacho"
// @Success      200   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/status [put]
func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	companyID, userID := GetCompanyID(c), GetUserID(c)
	if companyID == "" || userID == "" {
		return unauthorized(c)
	}
	var in dto.UpdateOrderStatusRequest
	if err := parseBody(c, &in); err != nil {
		return validationFailed(c, err)
	}
	out, err := h.uc.Transition(c.UserContext(), companyID, c.Params("id"), userID, in)
	if err != nil {
		return respondError(c, err, nil)
	}
	return c.JSON(out)
}

// PickItem godoc
// @Summary      Registrar alistamiento de una línea
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id      path  string               true  "ID del pedido"
// @Param        itemId  path  string               true  "ID de la línea"
// @Param        body    body  dto.PickItemRequest  true  "cantidad alistada"
// @Success      200     {object}  dto.OrderResponse
// @Failure      400     {object}  dto.ErrorResponse
// @Failure      404     {object}  dto.ErrorResponse
// @Failure      409     {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/items/{itemId}/pick [post]
func (h *OrderHandler) PickItem(c *fiber.Ctx) error {
	companyID, userID := GetCompanyID(c), GetUserID(c)
	if companyID == "" || userID == "" {
		return unauthorized(c)
	}
	var in dto.PickItemRequest
	if err := parseBody(c, &in); err != nil {
		return validationFailed(c, err)
	}
	out, err := h.uc.PickItem(c.UserContext(), companyID, c.Params("id"), c.Params("itemId"), userID, in.Quantity)
	if err != nil {
		return respondError(c, err, nil)
	}
	return c.JSON(out)
}

// PickingList godoc
// @Summary      Lista de alistamiento en PDF
// @Tags         orders
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID del pedido"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/picking-list [get]
func (h *OrderHandler) PickingList(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	id := c.Params("id")
	pdf, err := h.uc.PickingList(c.UserContext(), companyID, id)
	if err != nil {
		return respondError(c, err, nil)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("inline; filename=\"alistamiento-%s.pdf\"", id))
	return c.Send(pdf)
}
