package repository

import (
	"context"

	"github.com/jhoicas/erp-core/internal/domain/entity"
)

// StockRepository define el puerto para los lotes (producto, ubicación).
// Los métodos Lock* deben ejecutarse dentro de una transacción; bloquean las filas hasta el commit.
type StockRepository interface {
	// LockLot crea el lote en cero si no existe y lo bloquea (SELECT FOR UPDATE).
	LockLot(ctx context.Context, productID, location string) (*entity.StockLot, error)
	// LockPositiveLots bloquea todos los lotes del producto con cantidad > 0.
	LockPositiveLots(ctx context.Context, productID string) ([]*entity.StockLot, error)
	// Save persiste la cantidad de un lote ya bloqueado.
	Save(ctx context.Context, lot *entity.StockLot) error
	ListByProduct(ctx context.Context, productID string) ([]*entity.StockLot, error)
}
