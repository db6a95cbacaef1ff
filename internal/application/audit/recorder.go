// Package audit escribe la bitácora de auditoría después del commit.
package audit

import (
	"context"
	"time"

	"github.com/jhoicas/erp-core/internal/application/ports"
	"github.com/jhoicas/erp-core/internal/domain/entity"
	"github.com/jhoicas/erp-core/internal/domain/repository"
	"github.com/jhoicas/erp-core/pkg/logger"
)

var _ ports.AuditSink = (*Recorder)(nil)

// Recorder persiste entradas de auditoría con mejor esfuerzo: un fallo se registra como
// advertencia y nunca llega al caso de uso, que ya hizo commit.
type Recorder struct {
	repo    repository.AuditRepository
	log     *logger.Logger
	timeout time.Duration
}

// NewRecorder construye el registrador. log nil descarta las advertencias.
func NewRecorder(repo repository.AuditRepository, log *logger.Logger) *Recorder {
	if log == nil {
		log = logger.Nop()
	}
	return &Recorder{repo: repo, log: log, timeout: 5 * time.Second}
}

// Record implementa ports.AuditSink. Usa un contexto propio para que una petición cancelada
// no impida registrar una operación ya confirmada.
func (r *Recorder) Record(ctx context.Context, entry entity.AuditEntry) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
	defer cancel()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	if err := r.repo.Create(ctx, &entry); err != nil {
		r.log.Warn().Err(err).
			Str("action", entry.Action).
			Str("entity_type", entry.EntityType).
			Str("entity_id", entry.EntityID).
			Msg("no se pudo registrar auditoría")
	}
}
