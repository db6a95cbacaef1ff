package repository

import (
	"context"

	"github.com/jhoicas/erp-core/internal/domain/entity"
)

// OrderRepository pedidos de venta con sus ítems.
type OrderRepository interface {
	Create(ctx context.Context, o *entity.Order) error
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Order, error)
	// Update persiste estado, transportadora, guía y marcas de tiempo.
	Update(ctx context.Context, o *entity.Order) error
	UpdateItemPicked(ctx context.Context, item *entity.OrderItem) error
}
