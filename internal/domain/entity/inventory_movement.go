package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de inventario.
const (
	MovementTypeReception    = "reception"    // entrada por recepción de compra
	MovementTypeSale         = "sale"         // salida por pedido de venta
	MovementTypeReturn       = "return"       // salida por devolución a proveedor
	MovementTypeAdjustment   = "adjustment"   // ajuste manual (+/-)
	MovementTypeTransfer     = "transfer"     // traslado entre ubicaciones
	MovementTypeCancellation = "cancellation" // reintegro por anulación de pedido
)

// InventoryMovement entrada inmutable del libro de inventario.
// El signo se deriva de las ubicaciones: solo destino suma, solo origen resta,
// ambas (traslado) no cambian el total del producto.
type InventoryMovement struct {
	ID            string
	CompanyID     string
	Type          string
	ProductID     string
	FromLocation  string // vacío si el movimiento es una entrada
	ToLocation    string // vacío si el movimiento es una salida
	Quantity      decimal.Decimal // siempre > 0
	UnitCost      *decimal.Decimal
	Reason        string
	ReferenceType string // purchase_order, reception, order, supplier_return, ...
	ReferenceID   string
	CreatedBy     string
	CreatedAt     time.Time
}

// SignedQuantity devuelve el efecto del movimiento sobre el total del producto.
func (m *InventoryMovement) SignedQuantity() decimal.Decimal {
	switch {
	case m.ToLocation != "" && m.FromLocation == "":
		return m.Quantity
	case m.FromLocation != "" && m.ToLocation == "":
		return m.Quantity.Neg()
	default:
		return decimal.Zero
	}
}
