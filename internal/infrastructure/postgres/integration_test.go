package postgres_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jhoicas/erp-core/internal/application/dto"
	"github.com/jhoicas/erp-core/internal/application/finance"
	"github.com/jhoicas/erp-core/internal/application/inventory"
	"github.com/jhoicas/erp-core/internal/application/procurement"
	"github.com/jhoicas/erp-core/internal/application/sales"
	"github.com/jhoicas/erp-core/internal/application/sequence"
	"github.com/jhoicas/erp-core/internal/domain"
	"github.com/jhoicas/erp-core/internal/domain/repository"
	"github.com/jhoicas/erp-core/internal/infrastructure/migration"
	"github.com/jhoicas/erp-core/internal/infrastructure/postgres"
	"github.com/jhoicas/erp-core/pkg/config"
	"github.com/jhoicas/erp-core/pkg/logger"
)

var (
	dbOnce sync.Once
	dbPool *pgxpool.Pool
	dbErr  error
)

// testPool usa TEST_DATABASE_URL (también desde .env.test) o levanta postgres:16-alpine con testcontainers.
// Un solo esquema por paquete; cada test aísla sus datos con una empresa nueva.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("integración omitida con -short")
	}
	_ = godotenv.Load("../../../.env.test")
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		skipOnPanic(t, testcontainers.SkipIfProviderIsNotHealthy)
	}

	dbOnce.Do(func() {
		ctx := context.Background()
		if dsn == "" {
			container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
				tcpostgres.WithDatabase("erp_test"),
				tcpostgres.WithUsername("postgres"),
				tcpostgres.WithPassword("postgres"),
				testcontainers.WithWaitStrategy(
					wait.ForLog("database system is ready to accept connections").
						WithOccurrence(2).
						WithStartupTimeout(60*time.Second)),
			)
			if err != nil {
				dbErr = err
				return
			}
			if dsn, dbErr = container.ConnectionString(ctx, "sslmode=disable"); dbErr != nil {
				return
			}
		}
		m, err := migration.New(dsn, logger.Nop())
		if err != nil {
			dbErr = err
			return
		}
		if dbErr = m.Up(); dbErr != nil {
			return
		}
		_ = m.Close()
		dbPool, dbErr = postgres.NewPool(ctx, config.DBConfig{DatabaseURL: dsn, MaxConns: 20})
	})
	require.NoError(t, dbErr)
	return dbPool
}

// skipOnPanic ejecuta check y omite el test si entra en panic. testcontainers resuelve el host de
// Docker con MustExtractDockerHost, que hace panic cuando no hay ningún socket disponible.
func skipOnPanic(t *testing.T, check func(*testing.T)) {
	t.Helper()
	defer func() {
		if r := recover(); r != nil {
			t.Skipf("docker no disponible: %v", r)
		}
	}()
	check(t)
}

func TestSkipOnPanic_OmiteSinDocker(t *testing.T) {
	var sub *testing.T
	ok := t.Run("sin_docker", func(st *testing.T) {
		sub = st
		skipOnPanic(st, func(*testing.T) { panic("rootless Docker not found") })
		st.Fatal("no debió continuar")
	})
	assert.True(t, ok)
	assert.True(t, sub.Skipped())

	ok = t.Run("con_docker", func(st *testing.T) {
		sub = st
		skipOnPanic(st, func(*testing.T) {})
	})
	assert.True(t, ok)
	assert.False(t, sub.Skipped())
}

type seed struct {
	companyID  string
	userID     string
	productID  string
	supplierID string
	registerID string
}

func newSeed(t *testing.T, pool *pgxpool.Pool) seed {
	t.Helper()
	ctx := context.Background()
	s := seed{
		companyID:  uuid.NewString(),
		userID:     uuid.NewString(),
		productID:  uuid.NewString(),
		supplierID: uuid.NewString(),
		registerID: uuid.NewString(),
	}
	_, err := pool.Exec(ctx, `INSERT INTO products (id, company_id, sku, name, price, default_location)
		VALUES ($1, $2, 'SKU-1', 'Tornillo', 10, 'A-01')`, s.productID, s.companyID)
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `INSERT INTO suppliers (id, company_id, name, account_balance) VALUES ($1, $2, 'Acme', 100)`, s.supplierID, s.companyID)
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `INSERT INTO cash_registers (id, company_id, name) VALUES ($1, $2, 'Caja 1')`, s.registerID, s.companyID)
	require.NoError(t, err)
	return s
}

func d(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

func TestSequenceRepo_ConcurrenteSinRepetidos(t *testing.T) {
	pool := testPool(t)
	runner := postgres.NewTxRunner(pool, 5*time.Second)
	companyID := uuid.NewString()

	const n = 20
	var wg sync.WaitGroup
	values := make(chan int64, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := runner.Run(context.Background(), func(repos repository.Repos) error {
				v, err := repos.Sequences.Next(context.Background(), companyID, "order:2024", 0)
				values <- v
				return err
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	close(values)

	seen := map[int64]bool{}
	for v := range values {
		assert.False(t, seen[v], "valor repetido %d", v)
		seen[v] = true
	}
	for i := int64(1); i <= n; i++ {
		assert.True(t, seen[i], "falta %d", i)
	}

	// El piso salta hacia adelante, nunca atrás.
	err := runner.Run(context.Background(), func(repos repository.Repos) error {
		v, err := repos.Sequences.Next(context.Background(), companyID, "order:2024", 100)
		assert.Equal(t, int64(101), v)
		return err
	})
	require.NoError(t, err)
}

func TestTxRunner_RollbackDescartaStock(t *testing.T) {
	pool := testPool(t)
	s := newSeed(t, pool)
	runner := postgres.NewTxRunner(pool, 5*time.Second)
	ledger := inventory.NewLedger(nil)
	ctx := context.Background()
	boom := errors.New("boom")

	err := runner.Run(ctx, func(repos repository.Repos) error {
		_, err := ledger.Increase(ctx, repos, s.productID, "A-01", d(5), inventory.MovementRef{
			CompanyID: s.companyID, Type: "adjustment", ReferenceType: "manual",
		})
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var lots int
	require.NoError(t, pool.QueryRow(ctx, `SELECT count(*) FROM inventory WHERE product_id = $1`, s.productID).Scan(&lots))
	assert.Zero(t, lots)
}

func TestStockRepo_CheckNoNegativos(t *testing.T) {
	pool := testPool(t)
	s := newSeed(t, pool)
	runner := postgres.NewTxRunner(pool, 5*time.Second)
	ctx := context.Background()

	err := runner.Run(ctx, func(repos repository.Repos) error {
		lot, err := repos.Stock.LockLot(ctx, s.productID, "A-01")
		require.NoError(t, err)
		assert.True(t, lot.Quantity.IsZero())
		lot.Quantity = d(-1)
		return repos.Stock.Save(ctx, lot)
	})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput), "got %v", err)
}

func TestTxRunner_IdMalFormadoEsNotFound(t *testing.T) {
	pool := testPool(t)
	runner := postgres.NewTxRunner(pool, 5*time.Second)
	ctx := context.Background()

	err := runner.Run(ctx, func(repos repository.Repos) error {
		_, err := repos.Orders.GetByID(ctx, "abc")
		return err
	})
	assert.True(t, errors.Is(err, domain.ErrNotFound), "got %v", err)
}

// Recepción contra orden de compra y ventas concurrentes que compiten por el mismo stock:
// el libro cuadra con los lotes y nunca se vende más de lo recibido.
func TestFlujoCompleto_RecepcionYVentasConcurrentes(t *testing.T) {
	pool := testPool(t)
	s := newSeed(t, pool)
	runner := postgres.NewTxRunner(pool, 5*time.Second)
	ledger := inventory.NewLedger(nil)
	seq := sequence.NewAllocator()
	ctx := context.Background()

	pos := procurement.NewPurchaseOrderUseCase(runner, seq, nil)
	po, err := pos.Create(ctx, s.companyID, s.userID, dto.CreatePurchaseOrderRequest{
		SupplierID: s.supplierID,
		Items:      []dto.PurchaseOrderItemRequest{{ProductID: s.productID, Quantity: d(5), UnitCost: d(8)}},
	})
	require.NoError(t, err)
	_, err = pos.SetStatus(ctx, s.companyID, s.userID, po.ID, "sent")
	require.NoError(t, err)

	receptions := procurement.NewReceptionUseCase(runner, ledger, seq, nil, nil, procurement.ReceptionOptions{})
	rec, err := receptions.Create(ctx, s.companyID, s.userID, dto.CreateReceptionRequest{
		PurchaseOrderID: po.ID,
		Items: []dto.ReceptionItemRequest{{
			POItemID: po.Items[0].ID, ProductID: s.productID, QuantityReceived: d(5), UnitCost: d(8), BatchNumber: "L-1",
		}},
	})
	require.NoError(t, err)
	require.NoError(t, receptions.Approve(ctx, s.companyID, rec.ID, s.userID))
	assert.ErrorIs(t, receptions.Approve(ctx, s.companyID, rec.ID, s.userID), domain.ErrAlreadyApproved)

	got, err := pos.Get(ctx, s.companyID, po.ID)
	require.NoError(t, err)
	assert.Equal(t, "completed", got.Status)

	orders := sales.NewOrderUseCase(runner, ledger, seq, nil, nil, nil)
	const buyers = 8
	var wg sync.WaitGroup
	var mu sync.Mutex
	ok, short := 0, 0
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := orders.Create(ctx, s.companyID, s.userID, dto.CreateOrderRequest{
				Items: []dto.OrderItemRequest{{ProductID: s.productID, Quantity: d(1)}},
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, domain.ErrInsufficientStock):
				short++
			default:
				t.Errorf("error inesperado: %v", err)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 5, ok)
	assert.Equal(t, buyers-5, short)

	movements := inventory.NewMovementUseCase(runner, ledger, nil)
	rc, err := movements.Reconcile(ctx, s.companyID, s.productID)
	require.NoError(t, err)
	assert.True(t, rc.LotTotal.IsZero(), "lotes %s", rc.LotTotal)
	assert.True(t, rc.Drift.IsZero(), "drift %s", rc.Drift)
}

func TestCashShift_IndiceUnicoDeTurnoAbierto(t *testing.T) {
	pool := testPool(t)
	s := newSeed(t, pool)
	runner := postgres.NewTxRunner(pool, 5*time.Second)
	cash := finance.NewCashShiftUseCase(runner, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := cash.Open(ctx, s.companyID, s.registerID, s.userID, d(100))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	opened := 0
	for err := range errs {
		if err == nil {
			opened++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrAlreadyOpen)
	}
	assert.Equal(t, 1, opened)
}
