package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de recepción. partially_approved existe en el esquema pero ninguna operación lo produce.
const (
	ReceptionStatusPendingQC         = "pending_qc"
	ReceptionStatusApproved          = "approved"
	ReceptionStatusPartiallyApproved = "partially_approved"
	ReceptionStatusRejected          = "rejected"
)

// Reception registro de mercancía recibida, opcionalmente contra una orden de compra.
type Reception struct {
	ID              string
	CompanyID       string
	ReceptionNumber string // REC-YYYY-NNNNN
	PurchaseOrderID string // vacío si es una recepción sin orden
	SupplierID      string
	Status          string
	Notes           string
	RejectionReason string
	CreatedBy       string
	ApprovedBy      string
	ApprovedAt      *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
	Items           []*ReceptionItem
}

// ReceptionItem línea recibida.
type ReceptionItem struct {
	ID               string
	ReceptionID      string
	POItemID         string
	ProductID        string
	QuantityReceived decimal.Decimal
	UnitCost         decimal.Decimal
	LocationAssigned string
	BatchNumber      string
	ExpiryDate       *time.Time
}
