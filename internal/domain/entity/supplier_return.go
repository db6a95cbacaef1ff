package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de devolución a proveedor.
const (
	SupplierReturnStatusDraft    = "draft"
	SupplierReturnStatusApproved = "approved"
)

// SupplierReturn devolución de mercancía a un proveedor.
type SupplierReturn struct {
	ID           string
	CompanyID    string
	ReturnNumber string // RET-YYYY-NNNNN
	SupplierID   string
	ReceptionID  string
	Status       string
	Reason       string
	TotalAmount  decimal.Decimal
	CreatedBy    string
	ApprovedBy   string
	ApprovedAt   *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Items        []*SupplierReturnItem
}

// SupplierReturnItem línea devuelta.
type SupplierReturnItem struct {
	ID        string
	ReturnID  string
	ProductID string
	Quantity  decimal.Decimal
	UnitCost  decimal.Decimal
	Subtotal  decimal.Decimal
}
