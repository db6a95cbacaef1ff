package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// OpenShiftRequest body para POST /api/cash-registers/:id/open.
type OpenShiftRequest struct {
	OpeningBalance decimal.Decimal `json:"opening_balance" validate:"gte=0"`
}

// OpenShiftResponse id del turno abierto.
type OpenShiftResponse struct {
	ID      string `json:"id"`
	Success bool   `json:"success"`
}

// AddPaymentRequest body para POST /api/cash-shifts/:id/payments.
type AddPaymentRequest struct {
	Amount    decimal.Decimal `json:"amount" validate:"gt=0"`
	Type      string          `json:"type" validate:"required,oneof=sale income refund expense"`
	Reference string          `json:"reference" validate:"max=200"`
}

// PaymentResponse pago registrado y saldo esperado resultante. También sirve a POST /api/cash-transactions.
type PaymentResponse struct {
	ID              string          `json:"id"`
	ExpectedBalance decimal.Decimal `json:"expected_balance"`
}

// CloseShiftRequest body para POST /api/cash-shifts/:id/close.
type CloseShiftRequest struct {
	ActualBalance decimal.Decimal `json:"actual_balance" validate:"gte=0"`
}

// CloseShiftResponse arqueo del turno.
type CloseShiftResponse struct {
	ExpectedBalance decimal.Decimal `json:"expected_balance"`
	ActualBalance   decimal.Decimal `json:"actual_balance"`
	Difference      decimal.Decimal `json:"difference"`
}

// CashTransactionRequest body para POST /api/cash-transactions (ajuste manual de caja).
type CashTransactionRequest struct {
	CashRegisterID string          `json:"cash_register_id" validate:"required,uuid"`
	Type           string          `json:"type" validate:"required,oneof=income expense"`
	Amount         decimal.Decimal `json:"amount" validate:"gt=0"`
	Category       string          `json:"category" validate:"max=100"`
	Description    string          `json:"description" validate:"max=500"`
}

// ShiftPaymentResponse pago de turno.
type ShiftPaymentResponse struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Amount    decimal.Decimal `json:"amount"`
	Reference string          `json:"reference,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// CashShiftResponse turno con sus pagos.
type CashShiftResponse struct {
	ID              string                 `json:"id"`
	CashRegisterID  string                 `json:"cash_register_id"`
	Status          string                 `json:"status"`
	OpeningBalance  decimal.Decimal        `json:"opening_balance"`
	ExpectedBalance decimal.Decimal        `json:"expected_balance"`
	ActualBalance   *decimal.Decimal       `json:"actual_balance,omitempty"`
	Difference      *decimal.Decimal       `json:"difference,omitempty"`
	OpenedAt        time.Time              `json:"opened_at"`
	ClosedAt        *time.Time             `json:"closed_at,omitempty"`
	Payments        []ShiftPaymentResponse `json:"payments"`
}
