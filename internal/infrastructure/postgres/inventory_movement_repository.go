package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/erp-core/internal/domain/entity"
	"github.com/jhoicas/erp-core/internal/domain/repository"
)

var _ repository.InventoryMovementRepository = (*InventoryMovementRepo)(nil)

// InventoryMovementRepo implementación sobre PostgreSQL (usable con pool o tx).
type InventoryMovementRepo struct {
	q Querier
}

// NewInventoryMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryMovementRepository(q Querier) *InventoryMovementRepo {
	return &InventoryMovementRepo{q: q}
}

const movementColumns = `id, company_id, type, product_id, from_location, to_location, quantity, unit_cost,
	reason, reference_type, reference_id, created_by, created_at`

// Create persiste un movimiento de inventario.
func (r *InventoryMovementRepo) Create(ctx context.Context, m *entity.InventoryMovement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	query := `
		INSERT INTO inventory_movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.CompanyID, m.Type, m.ProductID, nullIfEmpty(m.FromLocation), nullIfEmpty(m.ToLocation),
		m.Quantity, m.UnitCost, m.Reason, m.ReferenceType, nullIfEmpty(m.ReferenceID),
		nullIfEmpty(m.CreatedBy), m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create inventory movement: %w", err)
	}
	return nil
}

// ListByProduct lista movimientos del producto, más recientes primero.
func (r *InventoryMovementRepo) ListByProduct(ctx context.Context, productID string, limit, offset int) ([]*entity.InventoryMovement, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.q.Query(ctx, `SELECT `+movementColumns+`
		FROM inventory_movements WHERE product_id = $1
		ORDER BY seq DESC
		LIMIT $2 OFFSET $3`, productID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list inventory movements: %w", err)
	}
	return collectMovements(rows)
}

// ListByReference lista los movimientos generados por un documento en orden de creación.
func (r *InventoryMovementRepo) ListByReference(ctx context.Context, referenceType, referenceID string) ([]*entity.InventoryMovement, error) {
	rows, err := r.q.Query(ctx, `SELECT `+movementColumns+`
		FROM inventory_movements WHERE reference_type = $1 AND reference_id = $2
		ORDER BY seq`, referenceType, referenceID)
	if err != nil {
		return nil, fmt.Errorf("list movements by reference: %w", err)
	}
	return collectMovements(rows)
}

// SumSignedByProduct suma el efecto neto de los movimientos: entradas +q, salidas -q, traslados 0.
func (r *InventoryMovementRepo) SumSignedByProduct(ctx context.Context, productID string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.q.QueryRow(ctx, `
		SELECT COALESCE(SUM(CASE
			WHEN to_location IS NOT NULL AND from_location IS NULL THEN quantity
			WHEN from_location IS NOT NULL AND to_location IS NULL THEN -quantity
			ELSE 0 END), 0)
		FROM inventory_movements WHERE product_id = $1`, productID).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum movements: %w", err)
	}
	return total, nil
}

func collectMovements(rows pgx.Rows) ([]*entity.InventoryMovement, error) {
	defer rows.Close()
	var list []*entity.InventoryMovement
	for rows.Next() {
		var m entity.InventoryMovement
		var from, to, refID, createdBy *string
		if err := rows.Scan(&m.ID, &m.CompanyID, &m.Type, &m.ProductID, &from, &to, &m.Quantity, &m.UnitCost,
			&m.Reason, &m.ReferenceType, &refID, &createdBy, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.FromLocation, m.ToLocation = fromNull(from), fromNull(to)
		m.ReferenceID, m.CreatedBy = fromNull(refID), fromNull(createdBy)
		list = append(list, &m)
	}
	return list, rows.Err()
}
