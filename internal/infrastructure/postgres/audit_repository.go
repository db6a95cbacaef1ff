package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/erp-core/internal/domain/entity"
	"github.com/jhoicas/erp-core/internal/domain/repository"
)

var _ repository.AuditRepository = (*AuditRepo)(nil)

// AuditRepo bitácora audit_logs. Se usa con el pool, fuera de la transacción del caso de uso.
type AuditRepo struct {
	q Querier
}

// NewAuditRepository construye el adaptador.
func NewAuditRepository(q Querier) *AuditRepo {
	return &AuditRepo{q: q}
}

// Create inserta una entrada; old_values y new_values se guardan como JSONB.
func (r *AuditRepo) Create(ctx context.Context, e *entity.AuditEntry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	oldValues, err := marshalValues(e.OldValues)
	if err != nil {
		return err
	}
	newValues, err := marshalValues(e.NewValues)
	if err != nil {
		return err
	}
	_, err = r.q.Exec(ctx, `
		INSERT INTO audit_logs (id, company_id, user_id, action, entity_type, entity_id, old_values, new_values, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		e.ID, e.CompanyID, nullIfEmpty(e.UserID), e.Action, e.EntityType, e.EntityID, oldValues, newValues, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}

func marshalValues(v map[string]any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal audit values: %w", err)
	}
	return b, nil
}
