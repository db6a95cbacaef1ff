package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

func TestReadRows_UTF8ConEncabezado(t *testing.T) {
	in := "sku;location;quantity;unit_cost\nSKU-1;A-01;10;2,5\nSKU-2; B-02 ;3\n"
	rows, err := readRows(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "SKU-1", rows[0].SKU)
	assert.Equal(t, 2, rows[0].Line)
	assert.True(t, rows[0].Quantity.Equal(decimal.NewFromInt(10)))
	require.NotNil(t, rows[0].UnitCost)
	assert.True(t, rows[0].UnitCost.Equal(decimal.RequireFromString("2.5")))

	assert.Equal(t, "B-02", rows[1].Location)
	assert.Nil(t, rows[1].UnitCost)
}

func TestReadRows_Latin1(t *testing.T) {
	latin, err := charmap.ISO8859_1.NewEncoder().String("SKU-Ñ;Bodega Añil;1\n")
	require.NoError(t, err)

	rows, err := readRows(bytes.NewReader([]byte(latin)))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "SKU-Ñ", rows[0].SKU)
	assert.Equal(t, "Bodega Añil", rows[0].Location)
}

func TestReadRows_Errores(t *testing.T) {
	for _, in := range []string{
		"SKU-1;A-01\n",
		"SKU-1;A-01;diez\n",
		";A-01;1\n",
		"SKU-1;A-01;1;x\n",
	} {
		_, err := readRows(strings.NewReader(in))
		assert.Error(t, err, in)
	}
}
