package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderItemRequest línea de pedido. Sin unit_price se usa el precio del producto.
type OrderItemRequest struct {
	ProductID string           `json:"product_id" validate:"required,uuid"`
	Quantity  decimal.Decimal  `json:"quantity" validate:"gt=0"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty" validate:"omitempty,gte=0"`
}

// CreateOrderRequest body para POST /api/orders. Con cash_shift_id el cobro se registra en ese turno.
type CreateOrderRequest struct {
	ClientID    string             `json:"client_id" validate:"omitempty,uuid"`
	CashShiftID string             `json:"cash_shift_id" validate:"omitempty,uuid"`
	Notes       string             `json:"notes" validate:"max=1000"`
	Items       []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

// OrderCreatedResponse respuesta de POST /api/orders.
type OrderCreatedResponse struct {
	ID          string          `json:"id"`
	OrderNumber string          `json:"order_number"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// UpdateOrderStatusRequest body para PUT /api/orders/:id/status.
// carrier y tracking_number aplican al despachar.
type UpdateOrderStatusRequest struct {
	Status         string `json:"status" validate:"required,oneof=pending picking packed dispatched delivered completed cancelled"`
	Carrier        string `json:"carrier" validate:"max=100"`
	TrackingNumber string `json:"tracking_number" validate:"max=100"`
}

// PickItemRequest body para POST /api/orders/:id/items/:itemId/pick.
type PickItemRequest struct {
	Quantity decimal.Decimal `json:"quantity" validate:"gt=0"`
}

// OrderItemResponse línea de pedido.
type OrderItemResponse struct {
	ID             string          `json:"id"`
	ProductID      string          `json:"product_id"`
	Quantity       decimal.Decimal `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	PickedQuantity decimal.Decimal `json:"picked_quantity"`
}

// OrderResponse pedido con sus líneas.
type OrderResponse struct {
	ID             string              `json:"id"`
	OrderNumber    string              `json:"order_number"`
	ClientID       string              `json:"client_id,omitempty"`
	Status         string              `json:"status"`
	TotalAmount    decimal.Decimal     `json:"total_amount"`
	Carrier        string              `json:"carrier,omitempty"`
	TrackingNumber string              `json:"tracking_number,omitempty"`
	Notes          string              `json:"notes,omitempty"`
	DispatchedAt   *time.Time          `json:"dispatched_at,omitempty"`
	DeliveredAt    *time.Time          `json:"delivered_at,omitempty"`
	CancelledAt    *time.Time          `json:"cancelled_at,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
	Items          []OrderItemResponse `json:"items"`
}
