package ports

import (
	"context"

	"github.com/jhoicas/erp-core/internal/domain/repository"
)

// TxRunner ejecuta fn dentro de una única transacción, pasando repositorios atados a ella.
// Si fn devuelve error se hace rollback completo; si no, commit.
// Lo implementan postgres.TxRunner y memory.Store.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos repository.Repos) error) error
}
