package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados del pedido de venta.
const (
	OrderStatusPending    = "pending"
	OrderStatusPicking    = "picking"
	OrderStatusPacked     = "packed"
	OrderStatusDispatched = "dispatched"
	OrderStatusDelivered  = "delivered"
	OrderStatusCompleted  = "completed"
	OrderStatusCancelled  = "cancelled"
)

// Order pedido de venta. El stock se descuenta al crearlo.
type Order struct {
	ID             string
	CompanyID      string
	OrderNumber    string // ORD-YYYY-NNNNN
	ClientID       string
	Status         string
	TotalAmount    decimal.Decimal
	Carrier        string
	TrackingNumber string
	Notes          string
	CreatedBy      string
	DispatchedAt   *time.Time
	DeliveredAt    *time.Time
	CancelledAt    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Items          []*OrderItem
}

// OrderItem línea del pedido.
type OrderItem struct {
	ID             string
	OrderID        string
	ProductID      string
	Quantity       decimal.Decimal
	UnitPrice      decimal.Decimal
	Subtotal       decimal.Decimal
	PickedQuantity decimal.Decimal
}
