package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Supplier proveedor. En este núcleo solo se modifica AccountBalance (saldo por pagar).
type Supplier struct {
	ID             string
	CompanyID      string
	Name           string
	AccountBalance decimal.Decimal
	UpdatedAt      time.Time
}
