package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de caja y de turno.
const (
	CashStatusOpen   = "open"
	CashStatusClosed = "closed"
)

// Tipos de pago de turno. sale e income suman al saldo esperado; refund y expense restan.
const (
	PaymentTypeSale    = "sale"
	PaymentTypeIncome  = "income"
	PaymentTypeRefund  = "refund"
	PaymentTypeExpense = "expense"
)

// CashRegister caja registradora. Tiene a lo sumo un turno abierto.
type CashRegister struct {
	ID             string
	CompanyID      string
	Name           string
	Status         string
	CurrentShiftID string
	UpdatedAt      time.Time
}

// CashShift ciclo apertura-cierre de una caja.
type CashShift struct {
	ID              string
	CompanyID       string
	CashRegisterID  string
	OpeningBalance  decimal.Decimal
	ExpectedBalance decimal.Decimal
	ActualBalance   *decimal.Decimal
	Difference      *decimal.Decimal
	Status          string
	OpenedBy        string
	ClosedBy        string
	OpenedAt        time.Time
	ClosedAt        *time.Time
}

// ShiftPayment pago inmutable registrado en un turno.
type ShiftPayment struct {
	ID        string
	ShiftID   string
	Amount    decimal.Decimal // siempre > 0
	Type      string
	Reference string
	CreatedBy string
	CreatedAt time.Time
}
