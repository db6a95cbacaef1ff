package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/erp-core/internal/application/ports"
	"github.com/jhoicas/erp-core/internal/domain/repository"
)

var _ ports.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta cada unidad de trabajo en una transacción del pool.
type TxRunner struct {
	pool        *pgxpool.Pool
	lockTimeout time.Duration
}

// NewTxRunner crea el runner. lockTimeout > 0 aplica SET LOCAL lock_timeout en cada transacción,
// de modo que una espera de bloqueo larga falle con LOCK_CONFLICT en lugar de colgar la petición.
func NewTxRunner(pool *pgxpool.Pool, lockTimeout time.Duration) *TxRunner {
	return &TxRunner{pool: pool, lockTimeout: lockTimeout}
}

// Run implementa ports.TxRunner: rollback si fn devuelve error o hace panic, commit si no.
func (r *TxRunner) Run(ctx context.Context, fn func(repos repository.Repos) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if r.lockTimeout > 0 {
		stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", r.lockTimeout.Milliseconds())
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("set lock_timeout: %w", err)
		}
	}

	if err := fn(NewRepos(tx)); err != nil {
		return mapError(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return mapError(fmt.Errorf("commit tx: %w", err))
	}
	return nil
}

// NewRepos construye todos los repositorios sobre el mismo Querier (pool o tx).
func NewRepos(q Querier) repository.Repos {
	return repository.Repos{
		Products:        NewProductRepository(q),
		Stock:           NewStockRepository(q),
		Movements:       NewInventoryMovementRepository(q),
		Batches:         NewBatchRepository(q),
		PurchaseOrders:  NewPurchaseOrderRepository(q),
		Receptions:      NewReceptionRepository(q),
		SupplierReturns: NewSupplierReturnRepository(q),
		Suppliers:       NewSupplierRepository(q),
		Orders:          NewOrderRepository(q),
		CashRegisters:   NewCashRegisterRepository(q),
		CashShifts:      NewCashShiftRepository(q),
		ShiftPayments:   NewShiftPaymentRepository(q),
		Transactions:    NewFinancialTransactionRepository(q),
		Sequences:       NewSequenceRepository(q),
	}
}
