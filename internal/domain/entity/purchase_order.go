package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de orden de compra. ordered y received son alias heredados de sent y completed.
const (
	PurchaseOrderStatusDraft     = "draft"
	PurchaseOrderStatusSent      = "sent"
	PurchaseOrderStatusOrdered   = "ordered"
	PurchaseOrderStatusPartial   = "partial"
	PurchaseOrderStatusCompleted = "completed"
	PurchaseOrderStatusReceived  = "received"
	PurchaseOrderStatusCancelled = "cancelled"
)

// PurchaseOrder orden de compra a proveedor (cabecera).
type PurchaseOrder struct {
	ID         string
	CompanyID  string
	PONumber   string // PO-YYYY-NNNNN
	SupplierID string
	Status     string
	TaxRate    decimal.Decimal // fracción: 0.19 = 19%
	Subtotal   decimal.Decimal
	TaxAmount  decimal.Decimal
	Total      decimal.Decimal
	Notes      string
	CreatedBy  string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Items      []*PurchaseOrderItem
}

// PurchaseOrderItem línea de la orden de compra.
type PurchaseOrderItem struct {
	ID               string
	PurchaseOrderID  string
	ProductID        string
	QuantityOrdered  decimal.Decimal
	QuantityReceived decimal.Decimal
	UnitCost         decimal.Decimal
	Subtotal         decimal.Decimal
}

// Pending cantidad que falta por recibir (nunca negativa).
func (i *PurchaseOrderItem) Pending() decimal.Decimal {
	p := i.QuantityOrdered.Sub(i.QuantityReceived)
	if p.IsNegative() {
		return decimal.Zero
	}
	return p
}
