package procurement_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/erp-core/internal/domain"
	"github.com/jhoicas/erp-core/internal/domain/entity"
	"github.com/jhoicas/erp-core/internal/domain/procurement"
)

func item(id, product string, ordered, received int64) *entity.PurchaseOrderItem {
	return &entity.PurchaseOrderItem{
		ID:               id,
		ProductID:        product,
		QuantityOrdered:  decimal.NewFromInt(ordered),
		QuantityReceived: decimal.NewFromInt(received),
	}
}

func TestReducePurchaseOrderStatus(t *testing.T) {
	cases := []struct {
		name    string
		current string
		items   []*entity.PurchaseOrderItem
		want    string
	}{
		{"todo recibido", entity.PurchaseOrderStatusSent, []*entity.PurchaseOrderItem{item("1", "a", 5, 5), item("2", "b", 3, 4)}, entity.PurchaseOrderStatusCompleted},
		{"avance parcial", entity.PurchaseOrderStatusSent, []*entity.PurchaseOrderItem{item("1", "a", 5, 5), item("2", "b", 3, 0)}, entity.PurchaseOrderStatusPartial},
		{"alias ordered", entity.PurchaseOrderStatusOrdered, []*entity.PurchaseOrderItem{item("1", "a", 5, 1)}, entity.PurchaseOrderStatusPartial},
		{"sin avance", entity.PurchaseOrderStatusSent, []*entity.PurchaseOrderItem{item("1", "a", 5, 0)}, entity.PurchaseOrderStatusSent},
		{"borrador no pasa a parcial", entity.PurchaseOrderStatusDraft, []*entity.PurchaseOrderItem{item("1", "a", 5, 1)}, entity.PurchaseOrderStatusDraft},
		{"sin ítems", entity.PurchaseOrderStatusSent, nil, entity.PurchaseOrderStatusSent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, procurement.ReducePurchaseOrderStatus(tc.current, tc.items))
		})
	}
}

func TestApplyReceipt_PorItemYPorProducto(t *testing.T) {
	items := []*entity.PurchaseOrderItem{item("i1", "a", 5, 0), item("i2", "b", 3, 0)}
	changed, err := procurement.ApplyReceipt(items, []procurement.ReceiptLine{
		{POItemID: "i1", ProductID: "a", Quantity: decimal.NewFromInt(2)},
		{ProductID: "b", Quantity: decimal.NewFromInt(3)},
		{ProductID: "zz", Quantity: decimal.NewFromInt(9)},
	}, false)
	require.NoError(t, err)
	assert.Len(t, changed, 2)
	assert.True(t, items[0].QuantityReceived.Equal(decimal.NewFromInt(2)))
	assert.True(t, items[1].QuantityReceived.Equal(decimal.NewFromInt(3)))
}

func TestApplyReceipt_SobreRecepcionRechazada(t *testing.T) {
	items := []*entity.PurchaseOrderItem{item("i1", "a", 5, 4)}
	_, err := procurement.ApplyReceipt(items, []procurement.ReceiptLine{{POItemID: "i1", Quantity: decimal.NewFromInt(2)}}, false)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrOverReceipt))
	assert.True(t, items[0].QuantityReceived.Equal(decimal.NewFromInt(4)), "no debe modificar el ítem")
}

func TestApplyReceipt_SobreRecepcionPermitida(t *testing.T) {
	items := []*entity.PurchaseOrderItem{item("i1", "a", 5, 4)}
	_, err := procurement.ApplyReceipt(items, []procurement.ReceiptLine{{POItemID: "i1", Quantity: decimal.NewFromInt(2)}}, true)

	require.NoError(t, err)
	assert.True(t, items[0].QuantityReceived.Equal(decimal.NewFromInt(6)))
	assert.True(t, procurement.IsOverReceived(items))
}

func TestValidateManualStatus(t *testing.T) {
	for _, s := range []string{"draft", "sent", "ordered", "completed", "cancelled"} {
		assert.NoError(t, procurement.ValidateManualStatus(s), s)
	}
	for _, s := range []string{"partial", "received", "bogus", ""} {
		err := procurement.ValidateManualStatus(s)
		assert.True(t, errors.Is(err, domain.ErrInvalidStatus), s)
	}
}

func TestCanTransition(t *testing.T) {
	assert.True(t, procurement.CanTransition("draft", "sent"))
	assert.True(t, procurement.CanTransition("draft", "ordered"))
	assert.True(t, procurement.CanTransition("ordered", "sent"), "alias equivalente")
	assert.True(t, procurement.CanTransition("partial", "completed"))
	assert.False(t, procurement.CanTransition("completed", "draft"))
	assert.False(t, procurement.CanTransition("cancelled", "sent"))
	assert.False(t, procurement.CanTransition("received", "cancelled"))
	assert.False(t, procurement.CanTransition("draft", "completed"))
}

func TestTotals_TasaEnPorcentaje(t *testing.T) {
	items := []*entity.PurchaseOrderItem{
		{QuantityOrdered: decimal.NewFromInt(2), UnitCost: decimal.NewFromInt(50)},
		{QuantityOrdered: decimal.NewFromInt(1), UnitCost: decimal.NewFromInt(100)},
	}
	sub, tax, total := procurement.Totals(items, decimal.NewFromInt(19))
	assert.True(t, sub.Equal(decimal.NewFromInt(200)))
	assert.True(t, tax.Equal(decimal.NewFromInt(38)))
	assert.True(t, total.Equal(decimal.NewFromInt(238)))
	assert.True(t, items[0].Subtotal.Equal(decimal.NewFromInt(100)))
}
