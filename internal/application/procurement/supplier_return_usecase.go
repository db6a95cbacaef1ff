package procurement

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/erp-core/internal/application/dto"
	"github.com/jhoicas/erp-core/internal/application/inventory"
	"github.com/jhoicas/erp-core/internal/application/ports"
	"github.com/jhoicas/erp-core/internal/application/sequence"
	"github.com/jhoicas/erp-core/internal/domain"
	"github.com/jhoicas/erp-core/internal/domain/entity"
	"github.com/jhoicas/erp-core/internal/domain/repository"
)

// Categoría con la que se asienta la devolución en transactions.
const TransactionCategorySupplierReturn = "supplier_return"

// SupplierReturnUseCase devoluciones de mercancía a proveedor.
type SupplierReturnUseCase struct {
	txRunner ports.TxRunner
	ledger   *inventory.Ledger
	seq      *sequence.Allocator
	audit    ports.AuditSink
	now      func() time.Time
}

// NewSupplierReturnUseCase construye el caso de uso.
func NewSupplierReturnUseCase(txRunner ports.TxRunner, ledger *inventory.Ledger, seq *sequence.Allocator, audit ports.AuditSink) *SupplierReturnUseCase {
	if audit == nil {
		audit = ports.NopAuditSink{}
	}
	return &SupplierReturnUseCase{txRunner: txRunner, ledger: ledger, seq: seq, audit: audit, now: time.Now}
}

// Create registra la devolución en borrador. No mueve stock.
func (uc *SupplierReturnUseCase) Create(ctx context.Context, companyID, userID string, in dto.CreateSupplierReturnRequest) (*dto.SupplierReturnCreatedResponse, error) {
	now := uc.now()
	ret := &entity.SupplierReturn{
		CompanyID:   companyID,
		SupplierID:  in.SupplierID,
		ReceptionID: in.ReceptionID,
		Status:      entity.SupplierReturnStatusDraft,
		Reason:      strings.TrimSpace(in.Reason),
		TotalAmount: decimal.Zero,
		CreatedBy:   userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for i, it := range in.Items {
		if !it.Quantity.IsPositive() || it.UnitCost.IsNegative() {
			return nil, domain.ErrInvalidInput.WithMessage(fmt.Sprintf("ítem %d: cantidad debe ser > 0 y costo >= 0", i+1))
		}
		item := &entity.SupplierReturnItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitCost:  it.UnitCost,
			Subtotal:  it.Quantity.Mul(it.UnitCost).Round(2),
		}
		ret.TotalAmount = ret.TotalAmount.Add(item.Subtotal)
		ret.Items = append(ret.Items, item)
	}

	err := uc.txRunner.Run(ctx, func(repos repository.Repos) error {
		if err := ownedSupplier(ctx, repos, companyID, ret.SupplierID); err != nil {
			return err
		}
		if ret.ReceptionID != "" {
			rec, err := repos.Receptions.GetByID(ctx, ret.ReceptionID)
			if err != nil {
				return err
			}
			if rec == nil || rec.CompanyID != companyID {
				return domain.ErrNotFound.WithMessage("recepción no encontrada")
			}
		}
		for _, it := range ret.Items {
			if _, err := inventory.OwnedProduct(ctx, repos, companyID, it.ProductID); err != nil {
				return err
			}
		}
		number, err := uc.seq.NextNumber(ctx, repos, companyID, sequence.ScopeSupplierReturn)
		if err != nil {
			return err
		}
		ret.ReturnNumber = number
		return repos.SupplierReturns.Create(ctx, ret)
	})
	if err != nil {
		return nil, err
	}
	uc.audit.Record(ctx, entity.AuditEntry{
		CompanyID:  companyID,
		UserID:     userID,
		Action:     "create",
		EntityType: "supplier_return",
		EntityID:   ret.ID,
		NewValues:  map[string]any{"return_number": ret.ReturnNumber, "total_amount": ret.TotalAmount.String()},
	})
	return &dto.SupplierReturnCreatedResponse{ID: ret.ID, ReturnNumber: ret.ReturnNumber}, nil
}

// Approve descuenta del inventario cada ítem, asienta un egreso por el total y reduce el saldo
// del proveedor (sin bajar de cero). Un faltante en cualquier ítem revierte todo.
// Orden de bloqueo: devolución, lotes por producto, proveedor.
func (uc *SupplierReturnUseCase) Approve(ctx context.Context, companyID, returnID, userID string) error {
	var ret *entity.SupplierReturn
	err := uc.txRunner.Run(ctx, func(repos repository.Repos) error {
		var err error
		ret, err = repos.SupplierReturns.GetForUpdate(ctx, returnID)
		if err != nil {
			return err
		}
		if ret == nil || ret.CompanyID != companyID {
			return domain.ErrNotFound.WithMessage("devolución no encontrada")
		}
		if ret.Status == entity.SupplierReturnStatusApproved {
			return domain.ErrAlreadyApproved.WithMessage("la devolución ya fue aprobada")
		}
		if len(ret.Items) == 0 {
			return domain.ErrEmptyItems.WithMessage("la devolución no tiene ítems")
		}

		items := append([]*entity.SupplierReturnItem(nil), ret.Items...)
		sort.SliceStable(items, func(i, j int) bool { return items[i].ProductID < items[j].ProductID })
		total := decimal.Zero
		for _, it := range items {
			if _, err := inventory.OwnedProduct(ctx, repos, companyID, it.ProductID); err != nil {
				return err
			}
			unitCost := it.UnitCost
			_, err := uc.ledger.Decrease(ctx, repos, it.ProductID, it.Quantity, inventory.MovementRef{
				CompanyID:     companyID,
				Type:          entity.MovementTypeReturn,
				ReferenceType: "supplier_return",
				ReferenceID:   ret.ID,
				Reason:        ret.ReturnNumber,
				CreatedBy:     userID,
				UnitCost:      &unitCost,
			})
			if err != nil {
				return err
			}
			total = total.Add(it.Quantity.Mul(it.UnitCost).Round(2))
		}

		now := uc.now()
		if total.IsPositive() {
			if err := repos.Transactions.Create(ctx, &entity.FinancialTransaction{
				CompanyID:     companyID,
				Type:          entity.TransactionTypeExpense,
				Amount:        total,
				Category:      TransactionCategorySupplierReturn,
				ReferenceType: "supplier_return",
				ReferenceID:   ret.ID,
				Description:   "Devolución a proveedor " + ret.ReturnNumber,
				CreatedBy:     userID,
				CreatedAt:     now,
			}); err != nil {
				return err
			}
			if err := uc.reduceSupplierBalance(ctx, repos, ret.SupplierID, total); err != nil {
				return err
			}
		}

		ret.TotalAmount = total
		ret.Status = entity.SupplierReturnStatusApproved
		ret.ApprovedBy = userID
		ret.ApprovedAt = &now
		ret.UpdatedAt = now
		return repos.SupplierReturns.Update(ctx, ret)
	})
	if err != nil {
		return err
	}
	uc.audit.Record(ctx, entity.AuditEntry{
		CompanyID:  companyID,
		UserID:     userID,
		Action:     "approve",
		EntityType: "supplier_return",
		EntityID:   ret.ID,
		OldValues:  map[string]any{"status": entity.SupplierReturnStatusDraft},
		NewValues:  map[string]any{"status": ret.Status, "total_amount": ret.TotalAmount.String()},
	})
	return nil
}

// Get devuelve la devolución con sus ítems.
func (uc *SupplierReturnUseCase) Get(ctx context.Context, companyID, returnID string) (*dto.SupplierReturnResponse, error) {
	var ret *entity.SupplierReturn
	err := uc.txRunner.Run(ctx, func(repos repository.Repos) error {
		var err error
		ret, err = repos.SupplierReturns.GetByID(ctx, returnID)
		if err != nil {
			return err
		}
		if ret == nil || ret.CompanyID != companyID {
			return domain.ErrNotFound.WithMessage("devolución no encontrada")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	out := &dto.SupplierReturnResponse{
		ID:           ret.ID,
		ReturnNumber: ret.ReturnNumber,
		SupplierID:   ret.SupplierID,
		ReceptionID:  ret.ReceptionID,
		Status:       ret.Status,
		Reason:       ret.Reason,
		TotalAmount:  ret.TotalAmount,
		ApprovedAt:   ret.ApprovedAt,
		CreatedAt:    ret.CreatedAt,
		Items:        make([]dto.SupplierReturnItemResponse, 0, len(ret.Items)),
	}
	for _, it := range ret.Items {
		out.Items = append(out.Items, dto.SupplierReturnItemResponse{
			ID:        it.ID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitCost:  it.UnitCost,
			Subtotal:  it.Subtotal,
		})
	}
	return out, nil
}

func (uc *SupplierReturnUseCase) reduceSupplierBalance(ctx context.Context, repos repository.Repos, supplierID string, amount decimal.Decimal) error {
	sup, err := repos.Suppliers.GetForUpdate(ctx, supplierID)
	if err != nil {
		return err
	}
	if sup == nil {
		return domain.ErrNotFound.WithMessage("proveedor no encontrado")
	}
	balance := sup.AccountBalance.Sub(amount)
	if balance.IsNegative() {
		balance = decimal.Zero
	}
	return repos.Suppliers.UpdateBalance(ctx, sup.ID, balance)
}
