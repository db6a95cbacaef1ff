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

var _ repository.OrderRepository = (*OrderRepo)(nil)

// OrderRepo pedidos de venta (orders + order_items).
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

// Create inserta el pedido y sus líneas.
func (r *OrderRepo) Create(ctx context.Context, o *entity.Order) error {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	now := time.Now()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	o.UpdatedAt = now
	_, err := r.q.Exec(ctx, `
		INSERT INTO orders (id, company_id, order_number, client_id, status, total_amount, carrier, tracking_number,
			notes, created_by, dispatched_at, delivered_at, cancelled_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		o.ID, o.CompanyID, o.OrderNumber, nullIfEmpty(o.ClientID), o.Status, o.TotalAmount, o.Carrier, o.TrackingNumber,
		o.Notes, nullIfEmpty(o.CreatedBy), o.DispatchedAt, o.DeliveredAt, o.CancelledAt, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert order: %w", err)
	}
	for _, it := range o.Items {
		if it.ID == "" {
			it.ID = uuid.New().String()
		}
		it.OrderID = o.ID
		_, err := r.q.Exec(ctx, `
			INSERT INTO order_items (id, order_id, product_id, quantity, unit_price, subtotal, picked_quantity)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			it.ID, it.OrderID, it.ProductID, it.Quantity, it.UnitPrice, it.Subtotal, it.PickedQuantity,
		)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}
	return nil
}

// GetByID devuelve el pedido con líneas o nil, nil.
func (r *OrderRepo) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	return r.get(ctx, id, "")
}

// GetForUpdate bloquea la cabecera del pedido.
func (r *OrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.Order, error) {
	return r.get(ctx, id, " FOR UPDATE")
}

func (r *OrderRepo) get(ctx context.Context, id, lock string) (*entity.Order, error) {
	var o entity.Order
	var clientID, createdBy *string
	err := r.q.QueryRow(ctx, `
		SELECT id, company_id, order_number, client_id, status, total_amount, carrier, tracking_number, notes,
			created_by, dispatched_at, delivered_at, cancelled_at, created_at, updated_at
		FROM orders WHERE id = $1`+lock, id).Scan(
		&o.ID, &o.CompanyID, &o.OrderNumber, &clientID, &o.Status, &o.TotalAmount, &o.Carrier, &o.TrackingNumber, &o.Notes,
		&createdBy, &o.DispatchedAt, &o.DeliveredAt, &o.CancelledAt, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	o.ClientID, o.CreatedBy = fromNull(clientID), fromNull(createdBy)

	rows, err := r.q.Query(ctx, `
		SELECT id, order_id, product_id, quantity, unit_price, subtotal, picked_quantity
		FROM order_items WHERE order_id = $1
		ORDER BY line_no`, id)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it entity.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity, &it.UnitPrice, &it.Subtotal, &it.PickedQuantity); err != nil {
			return nil, err
		}
		o.Items = append(o.Items, &it)
	}
	return &o, rows.Err()
}

// Update persiste estado, transportadora, guía y marcas de tiempo.
func (r *OrderRepo) Update(ctx context.Context, o *entity.Order) error {
	o.UpdatedAt = time.Now()
	tag, err := r.q.Exec(ctx, `
		UPDATE orders
		SET status = $2, carrier = $3, tracking_number = $4, dispatched_at = $5, delivered_at = $6,
			cancelled_at = $7, updated_at = $8
		WHERE id = $1`,
		o.ID, o.Status, o.Carrier, o.TrackingNumber, o.DispatchedAt, o.DeliveredAt, o.CancelledAt, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateItemPicked persiste la cantidad alistada de una línea.
func (r *OrderRepo) UpdateItemPicked(ctx context.Context, item *entity.OrderItem) error {
	tag, err := r.q.Exec(ctx, `UPDATE order_items SET picked_quantity = $2 WHERE id = $1`, item.ID, item.PickedQuantity)
	if err != nil {
		return fmt.Errorf("update order item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
