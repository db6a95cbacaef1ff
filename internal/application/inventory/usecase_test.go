package inventory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/erp-core/internal/application/inventory"
	"github.com/jhoicas/erp-core/internal/domain"
)

func TestRegisterMovement_AjusteEntradaYSalida(t *testing.T) {
	store := newStore(t)
	uc := inventory.NewMovementUseCase(store, inventory.NewLedger(nil), nil)
	ctx := context.Background()

	require.NoError(t, uc.RegisterMovement(ctx, inventory.MovementInput{
		CompanyID: companyID, UserID: "u1", ProductID: productID,
		Type: inventory.ManualAdjustmentIn, Location: "B", Quantity: d(4), Reason: "conteo",
	}))
	assert.True(t, store.LotQuantity(productID, "B").Equal(d(6)))

	require.NoError(t, uc.RegisterMovement(ctx, inventory.MovementInput{
		CompanyID: companyID, UserID: "u1", ProductID: productID,
		Type: inventory.ManualAdjustmentOut, Location: "A", Quantity: d(3),
	}))
	assert.True(t, store.LotQuantity(productID, "A").IsZero())

	err := uc.RegisterMovement(ctx, inventory.MovementInput{
		CompanyID: companyID, UserID: "u1", ProductID: productID,
		Type: inventory.ManualAdjustmentOut, Location: "A", Quantity: d(1),
	})
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))

	rec, err := uc.Reconcile(ctx, companyID, productID)
	require.NoError(t, err)
	assert.True(t, rec.Drift.IsZero())
	assert.True(t, rec.LotTotal.Equal(d(6)))
}

func TestRegisterMovement_Traslado(t *testing.T) {
	store := newStore(t)
	uc := inventory.NewMovementUseCase(store, inventory.NewLedger(nil), nil)

	require.NoError(t, uc.RegisterMovement(context.Background(), inventory.MovementInput{
		CompanyID: companyID, UserID: "u1", ProductID: productID,
		Type: inventory.ManualTransfer, FromLocation: "A", ToLocation: "B", Quantity: d(3),
	}))

	stock, err := uc.GetStock(context.Background(), companyID, productID)
	require.NoError(t, err)
	assert.True(t, stock.Total.Equal(d(5)))
	assert.True(t, store.LotQuantity(productID, "B").Equal(d(5)))
}

func TestRegisterMovement_ProductoDeOtraEmpresa(t *testing.T) {
	store := newStore(t)
	uc := inventory.NewMovementUseCase(store, inventory.NewLedger(nil), nil)

	err := uc.RegisterMovement(context.Background(), inventory.MovementInput{
		CompanyID: "otra", ProductID: productID, Type: inventory.ManualAdjustmentIn, Location: "A", Quantity: d(1),
	})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.True(t, store.LotQuantity(productID, "A").Equal(d(3)))
}

func TestRegisterMovement_EntradaInvalida(t *testing.T) {
	store := newStore(t)
	uc := inventory.NewMovementUseCase(store, inventory.NewLedger(nil), nil)
	cases := []inventory.MovementInput{
		{Type: inventory.ManualAdjustmentIn, Location: "A", Quantity: d(0)},
		{Type: inventory.ManualAdjustmentIn, Quantity: d(1)},
		{Type: inventory.ManualTransfer, FromLocation: "A", ToLocation: "A", Quantity: d(1)},
		{Type: "OUT", Location: "A", Quantity: d(1)},
	}
	for _, in := range cases {
		in.CompanyID, in.ProductID = companyID, productID
		err := uc.RegisterMovement(context.Background(), in)
		assert.True(t, errors.Is(err, domain.ErrInvalidInput), "%+v", in)
	}
}

func TestListMovements_MasRecientesPrimero(t *testing.T) {
	store := newStore(t)
	uc := inventory.NewMovementUseCase(store, inventory.NewLedger(nil), nil)

	require.NoError(t, uc.RegisterMovement(context.Background(), inventory.MovementInput{
		CompanyID: companyID, ProductID: productID, Type: inventory.ManualAdjustmentIn, Location: "C", Quantity: d(1),
	}))
	movs, err := uc.ListMovements(context.Background(), companyID, productID, 2, 0)
	require.NoError(t, err)
	require.Len(t, movs, 2)
	assert.Equal(t, "C", movs[0].ToLocation)
}
