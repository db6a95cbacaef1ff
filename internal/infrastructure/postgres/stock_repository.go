package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/erp-core/internal/domain/entity"
	"github.com/jhoicas/erp-core/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación de StockRepository sobre la tabla inventory (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

// LockLot crea el lote en cero si no existe y bloquea la fila (SELECT FOR UPDATE).
func (r *StockRepo) LockLot(ctx context.Context, productID, location string) (*entity.StockLot, error) {
	_, err := r.q.Exec(ctx, `
		INSERT INTO inventory (product_id, location, quantity, updated_at)
		VALUES ($1, $2, 0, now())
		ON CONFLICT (product_id, location) DO NOTHING`, productID, location)
	if err != nil {
		return nil, fmt.Errorf("ensure lot: %w", err)
	}
	var l entity.StockLot
	err = r.q.QueryRow(ctx, `
		SELECT product_id, location, quantity, updated_at
		FROM inventory WHERE product_id = $1 AND location = $2
		FOR UPDATE`, productID, location).Scan(&l.ProductID, &l.Location, &l.Quantity, &l.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("lock lot: %w", err)
	}
	return &l, nil
}

// LockPositiveLots bloquea los lotes con saldo en orden de ubicación para que dos transacciones
// que tocan el mismo producto tomen los bloqueos en el mismo orden.
func (r *StockRepo) LockPositiveLots(ctx context.Context, productID string) ([]*entity.StockLot, error) {
	rows, err := r.q.Query(ctx, `
		SELECT product_id, location, quantity, updated_at
		FROM inventory WHERE product_id = $1 AND quantity > 0
		ORDER BY location
		FOR UPDATE`, productID)
	if err != nil {
		return nil, fmt.Errorf("lock positive lots: %w", err)
	}
	return collectLots(rows)
}

// Save persiste la cantidad; el CHECK quantity >= 0 de la tabla rechaza negativos.
func (r *StockRepo) Save(ctx context.Context, lot *entity.StockLot) error {
	_, err := r.q.Exec(ctx, `
		UPDATE inventory SET quantity = $3, updated_at = now()
		WHERE product_id = $1 AND location = $2`, lot.ProductID, lot.Location, lot.Quantity)
	if err != nil {
		return fmt.Errorf("save lot: %w", mapError(err))
	}
	return nil
}

// ListByProduct lista todos los lotes del producto (incluidos los de saldo cero) sin bloquear.
func (r *StockRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.StockLot, error) {
	rows, err := r.q.Query(ctx, `
		SELECT product_id, location, quantity, updated_at
		FROM inventory WHERE product_id = $1
		ORDER BY location`, productID)
	if err != nil {
		return nil, fmt.Errorf("list lots: %w", err)
	}
	return collectLots(rows)
}

func collectLots(rows pgx.Rows) ([]*entity.StockLot, error) {
	defer rows.Close()
	var list []*entity.StockLot
	for rows.Next() {
		var l entity.StockLot
		if err := rows.Scan(&l.ProductID, &l.Location, &l.Quantity, &l.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}
