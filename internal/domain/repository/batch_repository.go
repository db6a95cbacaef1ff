package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/erp-core/internal/domain/entity"
)

// BatchRepository lotes de fabricación por (producto, número de lote).
type BatchRepository interface {
	// GetForUpdate devuelve nil, nil si el lote no existe.
	GetForUpdate(ctx context.Context, productID, batchNumber string) (*entity.Batch, error)
	Create(ctx context.Context, batch *entity.Batch) error
	AddQuantity(ctx context.Context, batchID string, quantity decimal.Decimal) error
}
