package repository

import (
	"context"

	"github.com/jhoicas/erp-core/internal/domain/entity"
)

// ReceptionRepository recepciones de mercancía con sus ítems.
type ReceptionRepository interface {
	Create(ctx context.Context, r *entity.Reception) error
	GetByID(ctx context.Context, id string) (*entity.Reception, error)
	// GetForUpdate bloquea la cabecera y devuelve la recepción con ítems.
	GetForUpdate(ctx context.Context, id string) (*entity.Reception, error)
	// Update persiste estado, aprobador, fechas y motivo de rechazo.
	Update(ctx context.Context, r *entity.Reception) error
}
