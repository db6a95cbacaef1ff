package repository

import (
	"context"

	"github.com/jhoicas/erp-core/internal/domain/entity"
)

// PurchaseOrderRepository órdenes de compra con sus ítems.
type PurchaseOrderRepository interface {
	// Create inserta cabecera e ítems.
	Create(ctx context.Context, po *entity.PurchaseOrder) error
	// GetByID devuelve la orden con ítems, o nil, nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.PurchaseOrder, error)
	// GetForUpdate bloquea la cabecera y devuelve la orden con ítems.
	GetForUpdate(ctx context.Context, id string) (*entity.PurchaseOrder, error)
	UpdateStatus(ctx context.Context, id, status string) error
	UpdateItemReceived(ctx context.Context, item *entity.PurchaseOrderItem) error
}
