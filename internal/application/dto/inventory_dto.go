package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegisterMovementRequest body para POST /api/inventory/movements.
// adjustment_in/adjustment_out usan location; transfer usa from_location y to_location.
type RegisterMovementRequest struct {
	ProductID    string           `json:"product_id" validate:"required,uuid"`
	Type         string           `json:"type" validate:"required,oneof=adjustment_in adjustment_out transfer"`
	Location     string           `json:"location" validate:"max=64"`
	FromLocation string           `json:"from_location" validate:"max=64"`
	ToLocation   string           `json:"to_location" validate:"max=64"`
	Quantity     decimal.Decimal  `json:"quantity" validate:"gt=0"`
	UnitCost     *decimal.Decimal `json:"unit_cost,omitempty" validate:"omitempty,gte=0"`
	Reason       string           `json:"reason" validate:"max=500"`
}

// StockLotResponse saldo de un producto en una ubicación.
type StockLotResponse struct {
	Location  string          `json:"location"`
	Quantity  decimal.Decimal `json:"quantity"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ProductStockResponse stock por ubicación y total.
type ProductStockResponse struct {
	ProductID string             `json:"product_id"`
	SKU       string             `json:"sku"`
	Total     decimal.Decimal    `json:"total"`
	Lots      []StockLotResponse `json:"lots"`
}

// MovementResponse entrada del libro de inventario.
type MovementResponse struct {
	ID            string           `json:"id"`
	Type          string           `json:"type"`
	ProductID     string           `json:"product_id"`
	FromLocation  string           `json:"from_location,omitempty"`
	ToLocation    string           `json:"to_location,omitempty"`
	Quantity      decimal.Decimal  `json:"quantity"`
	UnitCost      *decimal.Decimal `json:"unit_cost,omitempty"`
	Reason        string           `json:"reason,omitempty"`
	ReferenceType string           `json:"reference_type,omitempty"`
	ReferenceID   string           `json:"reference_id,omitempty"`
	CreatedBy     string           `json:"created_by,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
}

// MovementListResponse página de movimientos.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// ReconciliationResponse comparación de lotes contra el libro. drift distinto de cero indica inconsistencia.
type ReconciliationResponse struct {
	ProductID   string             `json:"product_id"`
	LotTotal    decimal.Decimal    `json:"lot_total"`
	LedgerTotal decimal.Decimal    `json:"ledger_total"`
	Drift       decimal.Decimal    `json:"drift"`
	Lots        []StockLotResponse `json:"lots"`
}
