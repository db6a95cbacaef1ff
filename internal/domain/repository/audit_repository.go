package repository

import (
	"context"

	"github.com/jhoicas/erp-core/internal/domain/entity"
)

// AuditRepository bitácora de auditoría.
type AuditRepository interface {
	Create(ctx context.Context, entry *entity.AuditEntry) error
}
