package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/erp-core/internal/domain"
	"github.com/jhoicas/erp-core/internal/domain/entity"
	"github.com/jhoicas/erp-core/internal/domain/repository"
)

var _ repository.PurchaseOrderRepository = (*PurchaseOrderRepo)(nil)

// PurchaseOrderRepo órdenes de compra (purchase_orders + purchase_order_items).
type PurchaseOrderRepo struct {
	q Querier
}

// NewPurchaseOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPurchaseOrderRepository(q Querier) *PurchaseOrderRepo {
	return &PurchaseOrderRepo{q: q}
}

// Create inserta la cabecera y sus ítems.
func (r *PurchaseOrderRepo) Create(ctx context.Context, po *entity.PurchaseOrder) error {
	if po.ID == "" {
		po.ID = uuid.New().String()
	}
	now := time.Now()
	if po.CreatedAt.IsZero() {
		po.CreatedAt = now
	}
	po.UpdatedAt = now
	_, err := r.q.Exec(ctx, `
		INSERT INTO purchase_orders (id, company_id, po_number, supplier_id, status, tax_rate, subtotal, tax_amount, total, notes, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		po.ID, po.CompanyID, po.PONumber, po.SupplierID, po.Status, po.TaxRate, po.Subtotal, po.TaxAmount, po.Total,
		po.Notes, nullIfEmpty(po.CreatedBy), po.CreatedAt, po.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert purchase order: %w", err)
	}
	for _, it := range po.Items {
		if it.ID == "" {
			it.ID = uuid.New().String()
		}
		it.PurchaseOrderID = po.ID
		_, err := r.q.Exec(ctx, `
			INSERT INTO purchase_order_items (id, purchase_order_id, product_id, quantity_ordered, quantity_received, unit_cost, subtotal)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			it.ID, it.PurchaseOrderID, it.ProductID, it.QuantityOrdered, it.QuantityReceived, it.UnitCost, it.Subtotal,
		)
		if err != nil {
			return fmt.Errorf("insert purchase order item: %w", err)
		}
	}
	return nil
}

// GetByID devuelve la orden con ítems o nil, nil.
func (r *PurchaseOrderRepo) GetByID(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	return r.get(ctx, id, "")
}

// GetForUpdate bloquea la cabecera; los ítems se leen dentro del mismo bloqueo.
func (r *PurchaseOrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	return r.get(ctx, id, " FOR UPDATE")
}

func (r *PurchaseOrderRepo) get(ctx context.Context, id, lock string) (*entity.PurchaseOrder, error) {
	var po entity.PurchaseOrder
	var createdBy *string
	err := r.q.QueryRow(ctx, `
		SELECT id, company_id, po_number, supplier_id, status, tax_rate, subtotal, tax_amount, total, notes, created_by, created_at, updated_at
		FROM purchase_orders WHERE id = $1`+lock, id).Scan(
		&po.ID, &po.CompanyID, &po.PONumber, &po.SupplierID, &po.Status, &po.TaxRate, &po.Subtotal, &po.TaxAmount,
		&po.Total, &po.Notes, &createdBy, &po.CreatedAt, &po.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get purchase order: %w", err)
	}
	po.CreatedBy = fromNull(createdBy)

	rows, err := r.q.Query(ctx, `
		SELECT id, purchase_order_id, product_id, quantity_ordered, quantity_received, unit_cost, subtotal
		FROM purchase_order_items WHERE purchase_order_id = $1
		ORDER BY line_no`, id)
	if err != nil {
		return nil, fmt.Errorf("list purchase order items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it entity.PurchaseOrderItem
		if err := rows.Scan(&it.ID, &it.PurchaseOrderID, &it.ProductID, &it.QuantityOrdered, &it.QuantityReceived, &it.UnitCost, &it.Subtotal); err != nil {
			return nil, err
		}
		po.Items = append(po.Items, &it)
	}
	return &po, rows.Err()
}

// UpdateStatus cambia el estado de la cabecera.
func (r *PurchaseOrderRepo) UpdateStatus(ctx context.Context, id, status string) error {
	tag, err := r.q.Exec(ctx, `UPDATE purchase_orders SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("update purchase order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateItemReceived persiste quantity_received de un ítem.
func (r *PurchaseOrderRepo) UpdateItemReceived(ctx context.Context, item *entity.PurchaseOrderItem) error {
	_, err := r.q.Exec(ctx, `UPDATE purchase_order_items SET quantity_received = $2 WHERE id = $1`, item.ID, item.QuantityReceived)
	if err != nil {
		return fmt.Errorf("update purchase order item: %w", err)
	}
	return nil
}
