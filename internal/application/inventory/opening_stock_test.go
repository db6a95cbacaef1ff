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

func TestOpeningStock_Importa(t *testing.T) {
	store := newStore(t)
	im := inventory.NewOpeningStockImporter(store, inventory.NewLedger(nil))
	cost := d(7)

	res, err := im.Import(context.Background(), companyID, "", []inventory.OpeningStockRow{
		{Line: 1, SKU: "SKU-1", Location: "C", Quantity: d(4), UnitCost: &cost},
		{Line: 2, SKU: " SKU-1 ", Location: "A", Quantity: d(1)},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Rows)
	assert.True(t, res.Total.Equal(d(5)))
	assert.True(t, store.LotQuantity(productID, "C").Equal(d(4)))
	assert.True(t, store.LotQuantity(productID, "A").Equal(d(4)))
}

func TestOpeningStock_FilaInvalidaNoImportaNada(t *testing.T) {
	store := newStore(t)
	im := inventory.NewOpeningStockImporter(store, inventory.NewLedger(nil))

	_, err := im.Import(context.Background(), companyID, "", []inventory.OpeningStockRow{
		{Line: 1, SKU: "SKU-1", Location: "C", Quantity: d(4)},
		{Line: 2, SKU: "NO-EXISTE", Location: "C", Quantity: d(1)},
	})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.Contains(t, err.Error(), "línea 2")
	assert.True(t, store.LotQuantity(productID, "C").IsZero(), "rollback de todo el archivo")

	_, err = im.Import(context.Background(), companyID, "", nil)
	assert.True(t, errors.Is(err, domain.ErrEmptyItems))
}
