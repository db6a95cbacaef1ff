package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/erp-core/internal/domain/entity"
)

// SupplierReturnRepository devoluciones a proveedor con sus ítems.
type SupplierReturnRepository interface {
	Create(ctx context.Context, r *entity.SupplierReturn) error
	GetByID(ctx context.Context, id string) (*entity.SupplierReturn, error)
	GetForUpdate(ctx context.Context, id string) (*entity.SupplierReturn, error)
	Update(ctx context.Context, r *entity.SupplierReturn) error
}

// SupplierRepository solo lo necesario para ajustar el saldo del proveedor.
type SupplierRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Supplier, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Supplier, error)
	UpdateBalance(ctx context.Context, id string, balance decimal.Decimal) error
}
