package cash_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/erp-core/internal/domain/cash"
	"github.com/jhoicas/erp-core/internal/domain/entity"
)

func pay(t string, amount int64) *entity.ShiftPayment {
	return &entity.ShiftPayment{Type: t, Amount: decimal.NewFromInt(amount)}
}

// Apertura 100, venta 50, gasto 20 → 130; contado 125 → diferencia -5.
func TestExpectedBalance_Escenario(t *testing.T) {
	expected := cash.ExpectedBalance(decimal.NewFromInt(100), []*entity.ShiftPayment{
		pay(entity.PaymentTypeSale, 50),
		pay(entity.PaymentTypeExpense, 20),
	})
	assert.True(t, expected.Equal(decimal.NewFromInt(130)), "got %s", expected)
	assert.True(t, cash.Difference(decimal.NewFromInt(125), expected).Equal(decimal.NewFromInt(-5)))
}

func TestExpectedBalance_TodosLosTipos(t *testing.T) {
	expected := cash.ExpectedBalance(decimal.NewFromInt(10), []*entity.ShiftPayment{
		pay(entity.PaymentTypeIncome, 5),
		pay(entity.PaymentTypeRefund, 3),
		pay(entity.PaymentTypeSale, 8),
	})
	assert.True(t, expected.Equal(decimal.NewFromInt(20)))
}

func TestIsValidPaymentType(t *testing.T) {
	assert.True(t, cash.IsValidPaymentType("refund"))
	assert.False(t, cash.IsValidPaymentType("gift"))
}
