package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/erp-core/internal/domain/entity"
)

// InventoryMovementRepository define el puerto de persistencia para movimientos de inventario.
// Solo inserción: los movimientos no se modifican ni se borran.
type InventoryMovementRepository interface {
	Create(ctx context.Context, movement *entity.InventoryMovement) error
	ListByProduct(ctx context.Context, productID string, limit, offset int) ([]*entity.InventoryMovement, error)
	ListByReference(ctx context.Context, referenceType, referenceID string) ([]*entity.InventoryMovement, error)
	// SumSignedByProduct suma +q para entradas, -q para salidas y 0 para traslados.
	SumSignedByProduct(ctx context.Context, productID string) (decimal.Decimal, error)
}
