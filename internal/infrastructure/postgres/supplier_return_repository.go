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

var (
	_ repository.SupplierReturnRepository = (*SupplierReturnRepo)(nil)
	_ repository.SupplierRepository       = (*SupplierRepo)(nil)
)

// SupplierReturnRepo devoluciones a proveedor (supplier_returns + supplier_return_items).
type SupplierReturnRepo struct {
	q Querier
}

// NewSupplierReturnRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSupplierReturnRepository(q Querier) *SupplierReturnRepo {
	return &SupplierReturnRepo{q: q}
}

// Create inserta la devolución y sus ítems.
func (r *SupplierReturnRepo) Create(ctx context.Context, ret *entity.SupplierReturn) error {
	if ret.ID == "" {
		ret.ID = uuid.New().String()
	}
	now := time.Now()
	if ret.CreatedAt.IsZero() {
		ret.CreatedAt = now
	}
	ret.UpdatedAt = now
	_, err := r.q.Exec(ctx, `
		INSERT INTO supplier_returns (id, company_id, return_number, supplier_id, reception_id, status, reason,
			total_amount, created_by, approved_by, approved_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		ret.ID, ret.CompanyID, ret.ReturnNumber, ret.SupplierID, nullIfEmpty(ret.ReceptionID), ret.Status, ret.Reason,
		ret.TotalAmount, nullIfEmpty(ret.CreatedBy), nullIfEmpty(ret.ApprovedBy), ret.ApprovedAt, ret.CreatedAt, ret.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert supplier return: %w", err)
	}
	for _, it := range ret.Items {
		if it.ID == "" {
			it.ID = uuid.New().String()
		}
		it.ReturnID = ret.ID
		_, err := r.q.Exec(ctx, `
			INSERT INTO supplier_return_items (id, return_id, product_id, quantity, unit_cost, subtotal)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			it.ID, it.ReturnID, it.ProductID, it.Quantity, it.UnitCost, it.Subtotal,
		)
		if err != nil {
			return fmt.Errorf("insert supplier return item: %w", err)
		}
	}
	return nil
}

// GetByID devuelve la devolución con ítems o nil, nil.
func (r *SupplierReturnRepo) GetByID(ctx context.Context, id string) (*entity.SupplierReturn, error) {
	return r.get(ctx, id, "")
}

// GetForUpdate bloquea la cabecera.
func (r *SupplierReturnRepo) GetForUpdate(ctx context.Context, id string) (*entity.SupplierReturn, error) {
	return r.get(ctx, id, " FOR UPDATE")
}

func (r *SupplierReturnRepo) get(ctx context.Context, id, lock string) (*entity.SupplierReturn, error) {
	var ret entity.SupplierReturn
	var receptionID, createdBy, approvedBy *string
	err := r.q.QueryRow(ctx, `
		SELECT id, company_id, return_number, supplier_id, reception_id, status, reason, total_amount,
			created_by, approved_by, approved_at, created_at, updated_at
		FROM supplier_returns WHERE id = $1`+lock, id).Scan(
		&ret.ID, &ret.CompanyID, &ret.ReturnNumber, &ret.SupplierID, &receptionID, &ret.Status, &ret.Reason,
		&ret.TotalAmount, &createdBy, &approvedBy, &ret.ApprovedAt, &ret.CreatedAt, &ret.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get supplier return: %w", err)
	}
	ret.ReceptionID, ret.CreatedBy, ret.ApprovedBy = fromNull(receptionID), fromNull(createdBy), fromNull(approvedBy)

	rows, err := r.q.Query(ctx, `
		SELECT id, return_id, product_id, quantity, unit_cost, subtotal
		FROM supplier_return_items WHERE return_id = $1
		ORDER BY line_no`, id)
	if err != nil {
		return nil, fmt.Errorf("list supplier return items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it entity.SupplierReturnItem
		if err := rows.Scan(&it.ID, &it.ReturnID, &it.ProductID, &it.Quantity, &it.UnitCost, &it.Subtotal); err != nil {
			return nil, err
		}
		ret.Items = append(ret.Items, &it)
	}
	return &ret, rows.Err()
}

// Update persiste estado y aprobación.
func (r *SupplierReturnRepo) Update(ctx context.Context, ret *entity.SupplierReturn) error {
	ret.UpdatedAt = time.Now()
	tag, err := r.q.Exec(ctx, `
		UPDATE supplier_returns SET status = $2, approved_by = $3, approved_at = $4, updated_at = $5
		WHERE id = $1`,
		ret.ID, ret.Status, nullIfEmpty(ret.ApprovedBy), ret.ApprovedAt, ret.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update supplier return: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ── Proveedores ──────────────────────────────────────────────────────────────

// SupplierRepo acceso mínimo a suppliers: lectura y saldo.
type SupplierRepo struct {
	q Querier
}

// NewSupplierRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSupplierRepository(q Querier) *SupplierRepo {
	return &SupplierRepo{q: q}
}

// GetByID devuelve el proveedor o nil, nil.
func (r *SupplierRepo) GetByID(ctx context.Context, id string) (*entity.Supplier, error) {
	return r.get(ctx, id, "")
}

// GetForUpdate bloquea la fila del proveedor.
func (r *SupplierRepo) GetForUpdate(ctx context.Context, id string) (*entity.Supplier, error) {
	return r.get(ctx, id, " FOR UPDATE")
}

func (r *SupplierRepo) get(ctx context.Context, id, lock string) (*entity.Supplier, error) {
	var s entity.Supplier
	err := r.q.QueryRow(ctx, `
		SELECT id, company_id, name, account_balance, updated_at
		FROM suppliers WHERE id = $1`+lock, id).Scan(&s.ID, &s.CompanyID, &s.Name, &s.AccountBalance, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get supplier: %w", err)
	}
	return &s, nil
}

// UpdateBalance fija el saldo por pagar.
func (r *SupplierRepo) UpdateBalance(ctx context.Context, id string, balance decimal.Decimal) error {
	_, err := r.q.Exec(ctx, `UPDATE suppliers SET account_balance = $2, updated_at = now() WHERE id = $1`, id, balance)
	if err != nil {
		return fmt.Errorf("update supplier balance: %w", err)
	}
	return nil
}
