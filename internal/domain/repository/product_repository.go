package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/erp-core/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
// El CRUD de productos vive fuera de este núcleo; aquí solo lectura y costo.
type ProductRepository interface {
	// GetByID devuelve nil, nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetByCompanyAndSKU(ctx context.Context, companyID, sku string) (*entity.Product, error)
	UpdateCost(ctx context.Context, productID string, cost decimal.Decimal) error
}
