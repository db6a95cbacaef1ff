// Package procurement orquesta compras: órdenes de compra, recepciones y devoluciones a proveedor.
package procurement

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/erp-core/internal/application/dto"
	"github.com/jhoicas/erp-core/internal/application/inventory"
	"github.com/jhoicas/erp-core/internal/application/ports"
	"github.com/jhoicas/erp-core/internal/application/sequence"
	"github.com/jhoicas/erp-core/internal/domain"
	"github.com/jhoicas/erp-core/internal/domain/entity"
	domainproc "github.com/jhoicas/erp-core/internal/domain/procurement"
	"github.com/jhoicas/erp-core/internal/domain/repository"
)

// PurchaseOrderUseCase crea órdenes de compra y cambia su estado.
type PurchaseOrderUseCase struct {
	txRunner ports.TxRunner
	seq      *sequence.Allocator
	audit    ports.AuditSink
	now      func() time.Time
}

// NewPurchaseOrderUseCase construye el caso de uso.
func NewPurchaseOrderUseCase(txRunner ports.TxRunner, seq *sequence.Allocator, audit ports.AuditSink) *PurchaseOrderUseCase {
	if audit == nil {
		audit = ports.NopAuditSink{}
	}
	return &PurchaseOrderUseCase{txRunner: txRunner, seq: seq, audit: audit, now: time.Now}
}

// Create crea la orden en borrador, calcula totales con la tasa de impuesto y asigna PO-YYYY-NNNNN.
func (uc *PurchaseOrderUseCase) Create(ctx context.Context, companyID, userID string, in dto.CreatePurchaseOrderRequest) (*dto.PurchaseOrderResponse, error) {
	if len(in.Items) == 0 {
		return nil, domain.ErrInvalidInput.WithMessage("la orden de compra requiere al menos un ítem")
	}
	if in.TaxRate.IsNegative() {
		return nil, domain.ErrInvalidInput.WithMessage("tax_rate no puede ser negativo")
	}
	now := uc.now()
	po := &entity.PurchaseOrder{
		CompanyID:  companyID,
		SupplierID: in.SupplierID,
		Status:     entity.PurchaseOrderStatusDraft,
		TaxRate:    domainproc.NormalizeTaxRate(in.TaxRate),
		Notes:      in.Notes,
		CreatedBy:  userID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	for i, it := range in.Items {
		if !it.Quantity.IsPositive() || it.UnitCost.IsNegative() {
			return nil, domain.ErrInvalidInput.WithMessage(fmt.Sprintf("ítem %d: cantidad debe ser > 0 y costo >= 0", i+1))
		}
		po.Items = append(po.Items, &entity.PurchaseOrderItem{
			ProductID:       it.ProductID,
			QuantityOrdered: it.Quantity,
			UnitCost:        it.UnitCost,
		})
	}
	po.Subtotal, po.TaxAmount, po.Total = domainproc.Totals(po.Items, po.TaxRate)

	err := uc.txRunner.Run(ctx, func(repos repository.Repos) error {
		if err := ownedSupplier(ctx, repos, companyID, in.SupplierID); err != nil {
			return err
		}
		for _, it := range po.Items {
			if _, err := inventory.OwnedProduct(ctx, repos, companyID, it.ProductID); err != nil {
				return err
			}
		}
		number, err := uc.seq.NextNumber(ctx, repos, companyID, sequence.ScopePurchaseOrder)
		if err != nil {
			return err
		}
		po.PONumber = number
		return repos.PurchaseOrders.Create(ctx, po)
	})
	if err != nil {
		return nil, err
	}
	uc.audit.Record(ctx, entity.AuditEntry{
		CompanyID:  companyID,
		UserID:     userID,
		Action:     "create",
		EntityType: "purchase_order",
		EntityID:   po.ID,
		NewValues:  map[string]any{"po_number": po.PONumber, "total": po.Total.String()},
	})
	return toPurchaseOrderResponse(po), nil
}

// SetStatus fija manualmente el estado. Solo acepta la lista blanca y transiciones válidas;
// los alias heredados se guardan en su forma canónica.
func (uc *PurchaseOrderUseCase) SetStatus(ctx context.Context, companyID, userID, poID, status string) (*dto.PurchaseOrderResponse, error) {
	if err := domainproc.ValidateManualStatus(status); err != nil {
		return nil, err
	}
	target := domainproc.Normalize(status)
	var (
		po  *entity.PurchaseOrder
		old string
	)
	err := uc.txRunner.Run(ctx, func(repos repository.Repos) error {
		var err error
		po, err = repos.PurchaseOrders.GetForUpdate(ctx, poID)
		if err != nil {
			return err
		}
		if po == nil || po.CompanyID != companyID {
			return domain.ErrNotFound.WithMessage("orden de compra no encontrada")
		}
		old = po.Status
		if !domainproc.CanTransition(po.Status, target) {
			return domain.ErrInvalidTransition.WithMessage(fmt.Sprintf("la orden de compra no puede pasar de %s a %s", po.Status, target))
		}
		if po.Status == target {
			return nil
		}
		po.Status = target
		po.UpdatedAt = uc.now()
		return repos.PurchaseOrders.UpdateStatus(ctx, po.ID, target)
	})
	if err != nil {
		return nil, err
	}
	if old != target {
		uc.audit.Record(ctx, entity.AuditEntry{
			CompanyID:  companyID,
			UserID:     userID,
			Action:     "status_change",
			EntityType: "purchase_order",
			EntityID:   po.ID,
			OldValues:  map[string]any{"status": old},
			NewValues:  map[string]any{"status": target},
		})
	}
	return toPurchaseOrderResponse(po), nil
}

// Get devuelve la orden con sus ítems.
func (uc *PurchaseOrderUseCase) Get(ctx context.Context, companyID, poID string) (*dto.PurchaseOrderResponse, error) {
	var po *entity.PurchaseOrder
	err := uc.txRunner.Run(ctx, func(repos repository.Repos) error {
		var err error
		po, err = repos.PurchaseOrders.GetByID(ctx, poID)
		if err != nil {
			return err
		}
		if po == nil || po.CompanyID != companyID {
			return domain.ErrNotFound.WithMessage("orden de compra no encontrada")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toPurchaseOrderResponse(po), nil
}

func ownedSupplier(ctx context.Context, repos repository.Repos, companyID, supplierID string) error {
	sup, err := repos.Suppliers.GetByID(ctx, supplierID)
	if err != nil {
		return err
	}
	if sup == nil || sup.CompanyID != companyID {
		return domain.ErrNotFound.WithMessage("proveedor no encontrado")
	}
	return nil
}

func toPurchaseOrderResponse(po *entity.PurchaseOrder) *dto.PurchaseOrderResponse {
	out := &dto.PurchaseOrderResponse{
		ID:         po.ID,
		PONumber:   po.PONumber,
		SupplierID: po.SupplierID,
		Status:     po.Status,
		TaxRate:    po.TaxRate,
		Subtotal:   po.Subtotal,
		TaxAmount:  po.TaxAmount,
		Total:      po.Total,
		Notes:      po.Notes,
		CreatedAt:  po.CreatedAt,
		UpdatedAt:  po.UpdatedAt,
		Items:      make([]dto.PurchaseOrderItemResponse, 0, len(po.Items)),
	}
	for _, it := range po.Items {
		out.Items = append(out.Items, dto.PurchaseOrderItemResponse{
			ID:               it.ID,
			ProductID:        it.ProductID,
			QuantityOrdered:  it.QuantityOrdered,
			QuantityReceived: it.QuantityReceived,
			UnitCost:         it.UnitCost,
			Subtotal:         it.Subtotal,
		})
	}
	return out
}
