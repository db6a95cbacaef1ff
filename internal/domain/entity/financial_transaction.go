package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de transacción financiera.
const (
	TransactionTypeIncome  = "income"
	TransactionTypeExpense = "expense"
)

// FinancialTransaction asiento financiero inmutable (tabla transactions).
type FinancialTransaction struct {
	ID            string
	CompanyID     string
	Type          string
	Amount        decimal.Decimal
	Category      string
	ReferenceType string
	ReferenceID   string
	Description   string
	CreatedBy     string
	CreatedAt     time.Time
}
