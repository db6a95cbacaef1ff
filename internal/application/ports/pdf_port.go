package ports

import (
	"context"

	"github.com/shopspring/decimal"
)

// PickingListLine línea de la lista de alistamiento.
type PickingListLine struct {
	SKU         string
	ProductName string
	Quantity    decimal.Decimal
	Picked      decimal.Decimal
	Locations   []string // ubicaciones con stock, mayor cantidad primero
}

// PickingList datos para imprimir la lista de alistamiento de un pedido.
type PickingList struct {
	OrderNumber string
	ClientID    string
	Status      string
	CreatedAt   string
	Lines       []PickingListLine
}

// PickingListRenderer genera el PDF de la lista de alistamiento.
type PickingListRenderer interface {
	RenderPickingList(ctx context.Context, list PickingList) ([]byte, error)
}
