package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto o SKU del inventario.
// Cost es promedio ponderado, recalculado en cada recepción aprobada.
type Product struct {
	ID              string
	CompanyID       string
	SKU             string // código único por empresa
	Name            string
	Price           decimal.Decimal // precio de venta
	Cost            decimal.Decimal // costo promedio ponderado (inicia en 0)
	DefaultLocation string          // ubicación sugerida para recepciones sin ubicación asignada
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
