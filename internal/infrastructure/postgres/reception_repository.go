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

var _ repository.ReceptionRepository = (*ReceptionRepo)(nil)

// ReceptionRepo recepciones (receptions + reception_items).
type ReceptionRepo struct {
	q Querier
}

// NewReceptionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewReceptionRepository(q Querier) *ReceptionRepo {
	return &ReceptionRepo{q: q}
}

// Create inserta la recepción y sus ítems.
func (r *ReceptionRepo) Create(ctx context.Context, rec *entity.Reception) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	now := time.Now()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now
	_, err := r.q.Exec(ctx, `
		INSERT INTO receptions (id, company_id, reception_number, purchase_order_id, supplier_id, status, notes,
			rejection_reason, created_by, approved_by, approved_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		rec.ID, rec.CompanyID, rec.ReceptionNumber, nullIfEmpty(rec.PurchaseOrderID), nullIfEmpty(rec.SupplierID),
		rec.Status, rec.Notes, rec.RejectionReason, nullIfEmpty(rec.CreatedBy), nullIfEmpty(rec.ApprovedBy),
		rec.ApprovedAt, rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert reception: %w", err)
	}
	for _, it := range rec.Items {
		if it.ID == "" {
			it.ID = uuid.New().String()
		}
		it.ReceptionID = rec.ID
		_, err := r.q.Exec(ctx, `
			INSERT INTO reception_items (id, reception_id, po_item_id, product_id, quantity_received, unit_cost,
				location_assigned, batch_number, expiry_date)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			it.ID, it.ReceptionID, nullIfEmpty(it.POItemID), it.ProductID, it.QuantityReceived, it.UnitCost,
			it.LocationAssigned, it.BatchNumber, it.ExpiryDate,
		)
		if err != nil {
			return fmt.Errorf("insert reception item: %w", err)
		}
	}
	return nil
}

// GetByID devuelve la recepción con ítems o nil, nil.
func (r *ReceptionRepo) GetByID(ctx context.Context, id string) (*entity.Reception, error) {
	return r.get(ctx, id, "")
}

// GetForUpdate bloquea la cabecera y devuelve la recepción con ítems.
func (r *ReceptionRepo) GetForUpdate(ctx context.Context, id string) (*entity.Reception, error) {
	return r.get(ctx, id, " FOR UPDATE")
}

func (r *ReceptionRepo) get(ctx context.Context, id, lock string) (*entity.Reception, error) {
	var rec entity.Reception
	var poID, supplierID, createdBy, approvedBy *string
	err := r.q.QueryRow(ctx, `
		SELECT id, company_id, reception_number, purchase_order_id, supplier_id, status, notes, rejection_reason,
			created_by, approved_by, approved_at, created_at, updated_at
		FROM receptions WHERE id = $1`+lock, id).Scan(
		&rec.ID, &rec.CompanyID, &rec.ReceptionNumber, &poID, &supplierID, &rec.Status, &rec.Notes, &rec.RejectionReason,
		&createdBy, &approvedBy, &rec.ApprovedAt, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get reception: %w", err)
	}
	rec.PurchaseOrderID, rec.SupplierID = fromNull(poID), fromNull(supplierID)
	rec.CreatedBy, rec.ApprovedBy = fromNull(createdBy), fromNull(approvedBy)

	rows, err := r.q.Query(ctx, `
		SELECT id, reception_id, po_item_id, product_id, quantity_received, unit_cost, location_assigned, batch_number, expiry_date
		FROM reception_items WHERE reception_id = $1
		ORDER BY line_no`, id)
	if err != nil {
		return nil, fmt.Errorf("list reception items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it entity.ReceptionItem
		var poItemID *string
		if err := rows.Scan(&it.ID, &it.ReceptionID, &poItemID, &it.ProductID, &it.QuantityReceived, &it.UnitCost,
			&it.LocationAssigned, &it.BatchNumber, &it.ExpiryDate); err != nil {
			return nil, err
		}
		it.POItemID = fromNull(poItemID)
		rec.Items = append(rec.Items, &it)
	}
	return &rec, rows.Err()
}

// Update persiste estado, aprobación y motivo de rechazo.
func (r *ReceptionRepo) Update(ctx context.Context, rec *entity.Reception) error {
	rec.UpdatedAt = time.Now()
	tag, err := r.q.Exec(ctx, `
		UPDATE receptions
		SET status = $2, approved_by = $3, approved_at = $4, rejection_reason = $5, updated_at = $6
		WHERE id = $1`,
		rec.ID, rec.Status, nullIfEmpty(rec.ApprovedBy), rec.ApprovedAt, rec.RejectionReason, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update reception: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
