package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/erp-core/internal/domain"
	"github.com/jhoicas/erp-core/internal/domain/entity"
	"github.com/jhoicas/erp-core/internal/domain/repository"
)

var _ repository.BatchRepository = (*BatchRepo)(nil)

// BatchRepo lotes de fabricación.
type BatchRepo struct {
	q Querier
}

// NewBatchRepository construye el adaptador. Pasar pool o tx (Querier).
func NewBatchRepository(q Querier) *BatchRepo {
	return &BatchRepo{q: q}
}

// GetForUpdate bloquea el lote (producto, número) si existe.
func (r *BatchRepo) GetForUpdate(ctx context.Context, productID, batchNumber string) (*entity.Batch, error) {
	var b entity.Batch
	var receptionID *string
	err := r.q.QueryRow(ctx, `
		SELECT id, product_id, reception_id, batch_number, location, quantity_initial, expiry_date, created_at
		FROM batches WHERE product_id = $1 AND batch_number = $2
		FOR UPDATE`, productID, batchNumber).Scan(
		&b.ID, &b.ProductID, &receptionID, &b.BatchNumber, &b.Location, &b.QuantityInitial, &b.ExpiryDate, &b.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get batch: %w", err)
	}
	b.ReceptionID = fromNull(receptionID)
	return &b, nil
}

// Create inserta un lote nuevo.
func (r *BatchRepo) Create(ctx context.Context, b *entity.Batch) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now()
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO batches (id, product_id, reception_id, batch_number, location, quantity_initial, expiry_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		b.ID, b.ProductID, nullIfEmpty(b.ReceptionID), b.BatchNumber, b.Location, b.QuantityInitial, b.ExpiryDate, b.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create batch: %w", err)
	}
	return nil
}

// AddQuantity suma a quantity_initial de un lote existente.
func (r *BatchRepo) AddQuantity(ctx context.Context, batchID string, quantity decimal.Decimal) error {
	_, err := r.q.Exec(ctx, `UPDATE batches SET quantity_initial = quantity_initial + $2 WHERE id = $1`, batchID, quantity)
	if err != nil {
		return fmt.Errorf("add batch quantity: %w", err)
	}
	return nil
}
