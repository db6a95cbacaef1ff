package ports

import (
	"context"

	"github.com/jhoicas/erp-core/internal/domain/entity"
)

// AuditSink recibe entradas de auditoría después del commit.
// Es de mejor esfuerzo: nunca devuelve error al caso de uso.
type AuditSink interface {
	Record(ctx context.Context, entry entity.AuditEntry)
}

// NopAuditSink descarta las entradas.
type NopAuditSink struct{}

// Record implementa AuditSink.
func (NopAuditSink) Record(context.Context, entity.AuditEntry) {}
