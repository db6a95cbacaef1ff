package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockLot cantidad disponible de un producto en una ubicación (tabla inventory).
// Única por (ProductID, Location); Quantity nunca es negativa.
type StockLot struct {
	ProductID string
	Location  string
	Quantity  decimal.Decimal
	UpdatedAt time.Time
}
