package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/erp-core/internal/domain/entity"
	"github.com/jhoicas/erp-core/internal/domain/repository"
	"github.com/jhoicas/erp-core/internal/infrastructure/memory"
)

func TestRun_ErrorDescartaCambios(t *testing.T) {
	store := memory.NewStore()
	store.AddProduct(entity.Product{ID: "p1", CompanyID: "c1"})
	store.SeedStock("p1", "A", decimal.NewFromInt(3))

	boom := errors.New("boom")
	err := store.Run(context.Background(), func(repos repository.Repos) error {
		lot, err := repos.Stock.LockLot(context.Background(), "p1", "A")
		require.NoError(t, err)
		lot.Quantity = decimal.Zero
		require.NoError(t, repos.Stock.Save(context.Background(), lot))
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.True(t, store.LotQuantity("p1", "A").Equal(decimal.NewFromInt(3)), "el rollback debe conservar el stock")
}

func TestRun_CommitPublicaCambios(t *testing.T) {
	store := memory.NewStore()
	err := store.Run(context.Background(), func(repos repository.Repos) error {
		_, err := repos.Sequences.Next(context.Background(), "c1", "order:2024", 0)
		return err
	})
	require.NoError(t, err)

	var got int64
	require.NoError(t, store.Run(context.Background(), func(repos repository.Repos) error {
		var err error
		got, err = repos.Sequences.Next(context.Background(), "c1", "order:2024", 0)
		return err
	}))
	assert.Equal(t, int64(2), got)
}

func TestRun_ContextoCancelado(t *testing.T) {
	store := memory.NewStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := store.Run(ctx, func(repository.Repos) error { called = true; return nil })
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestStockRepo_NoPermiteNegativos(t *testing.T) {
	store := memory.NewStore()
	err := store.Run(context.Background(), func(repos repository.Repos) error {
		return repos.Stock.Save(context.Background(), &entity.StockLot{ProductID: "p1", Location: "A", Quantity: decimal.NewFromInt(-1)})
	})
	assert.Error(t, err)
}
