package sales_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/erp-core/internal/application/dto"
	"github.com/jhoicas/erp-core/internal/application/finance"
	"github.com/jhoicas/erp-core/internal/application/inventory"
	"github.com/jhoicas/erp-core/internal/application/ports"
	"github.com/jhoicas/erp-core/internal/application/sales"
	"github.com/jhoicas/erp-core/internal/application/sequence"
	"github.com/jhoicas/erp-core/internal/domain"
	"github.com/jhoicas/erp-core/internal/domain/entity"
	"github.com/jhoicas/erp-core/internal/domain/repository"
	"github.com/jhoicas/erp-core/internal/infrastructure/memory"
)

const (
	companyID = "c1"
	userID    = "u1"
)

func d(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

type fakeRenderer struct{ last ports.PickingList }

func (f *fakeRenderer) RenderPickingList(_ context.Context, list ports.PickingList) ([]byte, error) {
	f.last = list
	return []byte("%PDF-fake"), nil
}

type fixture struct {
	store  *memory.Store
	ledger *inventory.Ledger
	cash   *finance.CashShiftUseCase
	pdf    *fakeRenderer
	uc     *sales.OrderUseCase
}

// Stock inicial: p1 {A:3, B:2} a precio 10; p2 {A:1} a precio 4.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	store.AddProduct(entity.Product{ID: "p1", CompanyID: companyID, SKU: "SKU-1", Name: "Tornillo", Price: d(10)})
	store.AddProduct(entity.Product{ID: "p2", CompanyID: companyID, SKU: "SKU-2", Name: "Tuerca", Price: d(4)})
	store.SeedStock("p1", "A", d(3))
	store.SeedStock("p1", "B", d(2))
	store.SeedStock("p2", "A", d(1))
	ledger := inventory.NewLedger(nil)
	cash := finance.NewCashShiftUseCase(store, nil)
	pdf := &fakeRenderer{}
	return &fixture{
		store:  store,
		ledger: ledger,
		cash:   cash,
		pdf:    pdf,
		uc:     sales.NewOrderUseCase(store, ledger, sequence.NewAllocator(), cash, pdf, nil),
	}
}

func (f *fixture) create(t *testing.T, items ...dto.OrderItemRequest) *dto.OrderCreatedResponse {
	t.Helper()
	out, err := f.uc.Create(context.Background(), companyID, userID, dto.CreateOrderRequest{Items: items})
	require.NoError(t, err)
	return out
}

func (f *fixture) transition(t *testing.T, orderID string, statuses ...string) {
	t.Helper()
	for _, s := range statuses {
		_, err := f.uc.Transition(context.Background(), companyID, orderID, userID, dto.UpdateOrderStatusRequest{Status: s})
		require.NoError(t, err, s)
	}
}

func (f *fixture) assertConsistent(t *testing.T, productID string) {
	t.Helper()
	require.NoError(t, f.store.Run(context.Background(), func(repos repository.Repos) error {
		rec, err := f.ledger.Reconcile(context.Background(), repos, productID)
		if err != nil {
			return err
		}
		assert.True(t, rec.Drift.IsZero(), "lotes %s vs libro %s", rec.LotTotal, rec.LedgerTotal)
		return nil
	}))
}

func TestCreateOrder_DescuentaStock(t *testing.T) {
	f := newFixture(t)
	price := d(7)
	out := f.create(t,
		dto.OrderItemRequest{ProductID: "p1", Quantity: d(4)},
		dto.OrderItemRequest{ProductID: "p2", Quantity: d(1), UnitPrice: &price},
	)
	assert.Regexp(t, `^ORD-\d{4}-00001$`, out.OrderNumber)
	assert.True(t, out.TotalAmount.Equal(d(47)), "total %s", out.TotalAmount)

	assert.True(t, f.store.LotQuantity("p1", "A").IsZero())
	assert.True(t, f.store.LotQuantity("p1", "B").Equal(d(1)))
	assert.True(t, f.store.LotQuantity("p2", "A").IsZero())
	f.assertConsistent(t, "p1")
	f.assertConsistent(t, "p2")

	order, err := f.uc.Get(context.Background(), companyID, out.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusPending, order.Status)
	require.Len(t, order.Items, 2)
	assert.Equal(t, "p1", order.Items[0].ProductID, "se conserva el orden de las líneas")
}

// Si una línea no alcanza, ninguna línea pierde stock y no queda pedido ni número consumido.
func TestCreateOrder_FaltanteRevierteTodo(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.Create(context.Background(), companyID, userID, dto.CreateOrderRequest{Items: []dto.OrderItemRequest{
		{ProductID: "p1", Quantity: d(2)},
		{ProductID: "p2", Quantity: d(10)},
	}})
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
	assert.True(t, f.store.LotQuantity("p1", "A").Equal(d(3)))
	assert.True(t, f.store.LotQuantity("p1", "B").Equal(d(2)))
	assert.True(t, f.store.LotQuantity("p2", "A").Equal(d(1)))

	out := f.create(t, dto.OrderItemRequest{ProductID: "p2", Quantity: d(1)})
	assert.Regexp(t, `^ORD-\d{4}-00001$`, out.OrderNumber)
}

func TestCreateOrder_ProductoDeOtraEmpresa(t *testing.T) {
	f := newFixture(t)
	f.store.AddProduct(entity.Product{ID: "px", CompanyID: "c2"})
	_, err := f.uc.Create(context.Background(), companyID, userID, dto.CreateOrderRequest{Items: []dto.OrderItemRequest{{ProductID: "px", Quantity: d(1)}}})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestCreateOrder_CobroEnTurno(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.store.AddCashRegister(entity.CashRegister{ID: "r1", CompanyID: companyID})
	shift, err := f.cash.Open(ctx, companyID, "r1", userID, d(100))
	require.NoError(t, err)

	_, err = f.uc.Create(ctx, companyID, userID, dto.CreateOrderRequest{
		CashShiftID: shift.ID,
		Items:       []dto.OrderItemRequest{{ProductID: "p1", Quantity: d(2)}},
	})
	require.NoError(t, err)
	got, err := f.cash.GetShift(ctx, companyID, shift.ID)
	require.NoError(t, err)
	assert.True(t, got.ExpectedBalance.Equal(d(120)))
	require.Len(t, got.Payments, 1)
	assert.Equal(t, entity.PaymentTypeSale, got.Payments[0].Type)

	// Turno cerrado: ni pedido ni descuento.
	_, err = f.cash.Close(ctx, companyID, shift.ID, userID, d(120))
	require.NoError(t, err)
	_, err = f.uc.Create(ctx, companyID, userID, dto.CreateOrderRequest{
		CashShiftID: shift.ID,
		Items:       []dto.OrderItemRequest{{ProductID: "p1", Quantity: d(1)}},
	})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.True(t, f.store.LotQuantity("p1", "B").Equal(d(2)))
	assert.True(t, f.store.LotQuantity("p1", "A").Equal(d(1)))
}

func TestTransition_FueraDelGrafo(t *testing.T) {
	f := newFixture(t)
	out := f.create(t, dto.OrderItemRequest{ProductID: "p1", Quantity: d(1)})

	_, err := f.uc.Transition(context.Background(), companyID, out.ID, userID, dto.UpdateOrderStatusRequest{Status: entity.OrderStatusDispatched})
	assert.True(t, errors.Is(err, domain.ErrInvalidTransition))
	order, err := f.uc.Get(context.Background(), companyID, out.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusPending, order.Status)

	_, err = f.uc.Transition(context.Background(), companyID, "no-existe", userID, dto.UpdateOrderStatusRequest{Status: entity.OrderStatusPicking})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestTransition_FlujoCompletoConDespacho(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	out := f.create(t, dto.OrderItemRequest{ProductID: "p1", Quantity: d(1)})
	f.transition(t, out.ID, entity.OrderStatusPicking, entity.OrderStatusPacked)
	before := len(f.store.Movements("p1"))

	order, err := f.uc.Transition(ctx, companyID, out.ID, userID, dto.UpdateOrderStatusRequest{
		Status: entity.OrderStatusDispatched, Carrier: "Servientrega", TrackingNumber: "G-123",
	})
	require.NoError(t, err)
	assert.Equal(t, "Servientrega", order.Carrier)
	assert.NotNil(t, order.DispatchedAt)

	f.transition(t, out.ID, entity.OrderStatusDelivered, entity.OrderStatusCompleted)
	assert.Len(t, f.store.Movements("p1"), before, "despacho y entrega no tocan el libro")

	_, err = f.uc.Transition(ctx, companyID, out.ID, userID, dto.UpdateOrderStatusRequest{Status: entity.OrderStatusCancelled})
	assert.True(t, errors.Is(err, domain.ErrInvalidTransition), "completed es terminal")
}

func TestTransition_AnularReintegraStock(t *testing.T) {
	f := newFixture(t)
	out := f.create(t, dto.OrderItemRequest{ProductID: "p1", Quantity: d(4)})
	f.transition(t, out.ID, entity.OrderStatusPicking, entity.OrderStatusCancelled)

	assert.True(t, f.store.LotQuantity("p1", "A").Equal(d(3)))
	assert.True(t, f.store.LotQuantity("p1", "B").Equal(d(2)))
	movs := f.store.Movements("p1")
	assert.Equal(t, entity.MovementTypeCancellation, movs[len(movs)-1].Type)
	f.assertConsistent(t, "p1")
}

func TestTransition_AnularDespachadoNoReintegra(t *testing.T) {
	f := newFixture(t)
	out := f.create(t, dto.OrderItemRequest{ProductID: "p1", Quantity: d(4)})
	f.transition(t, out.ID, entity.OrderStatusPicking, entity.OrderStatusPacked, entity.OrderStatusDispatched, entity.OrderStatusCancelled)

	assert.True(t, f.store.LotQuantity("p1", "B").Equal(d(1)))
	assert.True(t, f.store.LotQuantity("p1", "A").IsZero())
}

func TestPickItem(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	out := f.create(t, dto.OrderItemRequest{ProductID: "p1", Quantity: d(3)})
	order, err := f.uc.Get(ctx, companyID, out.ID)
	require.NoError(t, err)
	itemID := order.Items[0].ID
	stock := f.store.LotQuantity("p1", "B")

	order, err = f.uc.PickItem(ctx, companyID, out.ID, itemID, userID, d(2))
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusPicking, order.Status, "el primer avance pasa a picking")
	assert.True(t, order.Items[0].PickedQuantity.Equal(d(2)))
	assert.True(t, f.store.LotQuantity("p1", "B").Equal(stock), "alistar no mueve stock")

	_, err = f.uc.PickItem(ctx, companyID, out.ID, itemID, userID, d(2))
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = f.uc.PickItem(ctx, companyID, out.ID, "no-existe", userID, d(1))
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	f.transition(t, out.ID, entity.OrderStatusPacked)
	_, err = f.uc.PickItem(ctx, companyID, out.ID, itemID, userID, d(1))
	assert.True(t, errors.Is(err, domain.ErrInvalidTransition))
}

func TestPickingList_UbicacionesDeSalida(t *testing.T) {
	f := newFixture(t)
	out := f.create(t, dto.OrderItemRequest{ProductID: "p1", Quantity: d(4)})

	pdf, err := f.uc.PickingList(context.Background(), companyID, out.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, pdf)
	require.Len(t, f.pdf.last.Lines, 1)
	line := f.pdf.last.Lines[0]
	assert.Equal(t, "SKU-1", line.SKU)
	assert.Equal(t, []string{"A", "B"}, line.Locations)
	assert.Equal(t, out.OrderNumber, f.pdf.last.OrderNumber)
}
