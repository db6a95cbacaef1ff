package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/erp-core/internal/domain/repository"
)

var _ repository.SequenceRepository = (*SequenceRepo)(nil)

// SequenceRepo contadores de numeración en document_sequences.
type SequenceRepo struct {
	q Querier
}

// NewSequenceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSequenceRepository(q Querier) *SequenceRepo {
	return &SequenceRepo{q: q}
}

// Next incrementa el contador en una sola sentencia. El upsert toma el bloqueo de la fila,
// así dos transacciones concurrentes sobre la misma clave se serializan y nunca repiten valor.
func (r *SequenceRepo) Next(ctx context.Context, companyID, scopeKey string, floor int64) (int64, error) {
	var value int64
	err := r.q.QueryRow(ctx, `
		INSERT INTO document_sequences (company_id, scope_key, value, updated_at)
		VALUES ($1, $2, $3::bigint + 1, now())
		ON CONFLICT (company_id, scope_key)
		DO UPDATE SET value = GREATEST(document_sequences.value, $3::bigint) + 1, updated_at = now()
		RETURNING value`, companyID, scopeKey, floor).Scan(&value)
	if err != nil {
		return 0, fmt.Errorf("next sequence %s: %w", scopeKey, err)
	}
	return value, nil
}
