package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Batch lote de fabricación creado o ampliado por una recepción.
// Único por (ProductID, BatchNumber).
type Batch struct {
	ID              string
	ProductID       string
	ReceptionID     string
	BatchNumber     string
	Location        string
	QuantityInitial decimal.Decimal
	ExpiryDate      *time.Time
	CreatedAt       time.Time
}
