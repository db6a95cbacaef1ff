package cash

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/erp-core/internal/domain/entity"
)

// IsValidPaymentType indica si el tipo de pago es conocido.
func IsValidPaymentType(t string) bool {
	switch t {
	case entity.PaymentTypeSale, entity.PaymentTypeIncome, entity.PaymentTypeRefund, entity.PaymentTypeExpense:
		return true
	}
	return false
}

// ExpectedBalance = apertura + Σ(sale, income) − Σ(refund, expense).
func ExpectedBalance(opening decimal.Decimal, payments []*entity.ShiftPayment) decimal.Decimal {
	balance := opening
	for _, p := range payments {
		switch p.Type {
		case entity.PaymentTypeSale, entity.PaymentTypeIncome:
			balance = balance.Add(p.Amount)
		case entity.PaymentTypeRefund, entity.PaymentTypeExpense:
			balance = balance.Sub(p.Amount)
		}
	}
	return balance
}

// Difference = contado − esperado. Negativo indica faltante.
func Difference(actual, expected decimal.Decimal) decimal.Decimal {
	return actual.Sub(expected)
}
