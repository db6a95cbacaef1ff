package inventory_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/erp-core/internal/domain"
	"github.com/jhoicas/erp-core/internal/domain/entity"
	"github.com/jhoicas/erp-core/internal/domain/inventory"
)

func lots(pairs ...any) []*entity.StockLot {
	out := make([]*entity.StockLot, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		out = append(out, &entity.StockLot{
			ProductID: "p1",
			Location:  pairs[i].(string),
			Quantity:  decimal.NewFromInt(int64(pairs[i+1].(int))),
		})
	}
	return out
}

// Lotes {A:3, B:2}, descontar 4 → A:3, B:1.
func TestLargestFirst_ConsumeMayorPrimero(t *testing.T) {
	plan, err := inventory.LargestFirst{}.Allocate(decimal.NewFromInt(4), lots("B", 2, "A", 3))
	require.NoError(t, err)
	require.Len(t, plan, 2)

	assert.Equal(t, "A", plan[0].Location)
	assert.True(t, plan[0].Quantity.Equal(decimal.NewFromInt(3)))
	assert.Equal(t, "B", plan[1].Location)
	assert.True(t, plan[1].Quantity.Equal(decimal.NewFromInt(1)))
}

func TestLargestFirst_StockInsuficiente(t *testing.T) {
	input := lots("A", 3, "B", 2)
	_, err := inventory.LargestFirst{}.Allocate(decimal.NewFromInt(10), input)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
	assert.True(t, input[0].Quantity.Equal(decimal.NewFromInt(3)), "los lotes de entrada no se modifican")
}

func TestLargestFirst_EmpateOrdenaPorUbicacion(t *testing.T) {
	plan, err := inventory.LargestFirst{}.Allocate(decimal.NewFromInt(2), lots("Z", 2, "M", 2))
	require.NoError(t, err)
	require.Len(t, plan, 1)
	assert.Equal(t, "M", plan[0].Location)
}

func TestLargestFirst_IgnoraLotesVacios(t *testing.T) {
	plan, err := inventory.LargestFirst{}.Allocate(decimal.NewFromInt(1), lots("A", 0, "B", 1))
	require.NoError(t, err)
	require.Len(t, plan, 1)
	assert.Equal(t, "B", plan[0].Location)
}

func TestLargestFirst_CantidadNoPositiva(t *testing.T) {
	for _, q := range []int64{0, -3} {
		_, err := inventory.LargestFirst{}.Allocate(decimal.NewFromInt(q), lots("A", 3))
		assert.True(t, errors.Is(err, domain.ErrInvalidInput), "cantidad %d debe rechazarse, no ajustarse", q)
	}
}

func TestAvailable(t *testing.T) {
	assert.True(t, inventory.Available(lots("A", 3, "B", 2, "C", 0)).Equal(decimal.NewFromInt(5)))
	assert.True(t, inventory.Available(nil).IsZero())
}

func TestWeightedAverageCost(t *testing.T) {
	// 10 unidades a 100 + 10 unidades a 200 → 150
	got := inventory.WeightedAverageCost(decimal.NewFromInt(10), decimal.NewFromInt(100), decimal.NewFromInt(10), decimal.NewFromInt(200))
	assert.True(t, got.Equal(decimal.NewFromInt(150)), "got %s", got)

	// sin stock previo → costo de la entrada
	got = inventory.WeightedAverageCost(decimal.Zero, decimal.NewFromInt(999), decimal.NewFromInt(5), decimal.NewFromInt(40))
	assert.True(t, got.Equal(decimal.NewFromInt(40)), "got %s", got)

	assert.True(t, inventory.WeightedAverageCost(decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero).IsZero())
}
