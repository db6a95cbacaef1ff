package procurement

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/erp-core/internal/application/dto"
	"github.com/jhoicas/erp-core/internal/application/inventory"
	"github.com/jhoicas/erp-core/internal/application/ports"
	"github.com/jhoicas/erp-core/internal/application/sequence"
	"github.com/jhoicas/erp-core/internal/domain"
	"github.com/jhoicas/erp-core/internal/domain/entity"
	domaininv "github.com/jhoicas/erp-core/internal/domain/inventory"
	domainproc "github.com/jhoicas/erp-core/internal/domain/procurement"
	"github.com/jhoicas/erp-core/internal/domain/repository"
	"github.com/jhoicas/erp-core/pkg/logger"
)

// ReceptionOptions política de recepción.
type ReceptionOptions struct {
	// AllowOverReceipt permite recibir más de lo ordenado; se registra una advertencia.
	AllowOverReceipt bool
}

// ReceptionUseCase registra recepciones y las aprueba contra el libro de inventario.
type ReceptionUseCase struct {
	txRunner ports.TxRunner
	ledger   *inventory.Ledger
	seq      *sequence.Allocator
	audit    ports.AuditSink
	log      *logger.Logger
	opts     ReceptionOptions
	now      func() time.Time
}

// NewReceptionUseCase construye el caso de uso. log nil descarta las advertencias.
func NewReceptionUseCase(
	txRunner ports.TxRunner,
	ledger *inventory.Ledger,
	seq *sequence.Allocator,
	audit ports.AuditSink,
	log *logger.Logger,
	opts ReceptionOptions,
) *ReceptionUseCase {
	if audit == nil {
		audit = ports.NopAuditSink{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &ReceptionUseCase{
		txRunner: txRunner,
		ledger:   ledger,
		seq:      seq,
		audit:    audit,
		log:      log,
		opts:     opts,
		now:      time.Now,
	}
}

// Create registra la recepción en pending_qc. No mueve stock.
func (uc *ReceptionUseCase) Create(ctx context.Context, companyID, userID string, in dto.CreateReceptionRequest) (*dto.ReceptionCreatedResponse, error) {
	if in.PurchaseOrderID == "" && in.SupplierID == "" {
		return nil, domain.ErrInvalidInput.WithMessage("supplier_id es requerido si no hay purchase_order_id")
	}
	now := uc.now()
	rec := &entity.Reception{
		CompanyID:       companyID,
		PurchaseOrderID: in.PurchaseOrderID,
		SupplierID:      in.SupplierID,
		Status:          entity.ReceptionStatusPendingQC,
		Notes:           in.Notes,
		CreatedBy:       userID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	for i, it := range in.Items {
		if !it.QuantityReceived.IsPositive() || it.UnitCost.IsNegative() {
			return nil, domain.ErrInvalidInput.WithMessage(fmt.Sprintf("ítem %d: cantidad debe ser > 0 y costo >= 0", i+1))
		}
		rec.Items = append(rec.Items, &entity.ReceptionItem{
			POItemID:         it.POItemID,
			ProductID:        it.ProductID,
			QuantityReceived: it.QuantityReceived,
			UnitCost:         it.UnitCost,
			LocationAssigned: strings.TrimSpace(it.LocationAssigned),
			BatchNumber:      strings.TrimSpace(it.BatchNumber),
			ExpiryDate:       it.ExpiryDate,
		})
	}

	err := uc.txRunner.Run(ctx, func(repos repository.Repos) error {
		if rec.PurchaseOrderID != "" {
			po, err := repos.PurchaseOrders.GetByID(ctx, rec.PurchaseOrderID)
			if err != nil {
				return err
			}
			if po == nil || po.CompanyID != companyID {
				return domain.ErrNotFound.WithMessage("orden de compra no encontrada")
			}
			if !domainproc.AcceptsReceptions(po.Status) {
				return domain.ErrInvalidTransition.WithMessage(fmt.Sprintf("la orden de compra en estado %s no admite recepciones", po.Status))
			}
			if rec.SupplierID == "" {
				rec.SupplierID = po.SupplierID
			}
			poItems := make(map[string]bool, len(po.Items))
			for _, it := range po.Items {
				poItems[it.ID] = true
			}
			for _, it := range rec.Items {
				if it.POItemID != "" && !poItems[it.POItemID] {
					return domain.ErrInvalidInput.WithMessage(fmt.Sprintf("po_item_id %s no pertenece a la orden", it.POItemID))
				}
			}
		} else if err := ownedSupplier(ctx, repos, companyID, rec.SupplierID); err != nil {
			return err
		}
		for _, it := range rec.Items {
			product, err := inventory.OwnedProduct(ctx, repos, companyID, it.ProductID)
			if err != nil {
				return err
			}
			if it.LocationAssigned == "" {
				it.LocationAssigned = product.DefaultLocation
			}
			if it.LocationAssigned == "" {
				return domain.ErrInvalidInput.WithMessage(fmt.Sprintf("location_assigned es requerido para %s", product.SKU))
			}
		}
		number, err := uc.seq.NextNumber(ctx, repos, companyID, sequence.ScopeReception)
		if err != nil {
			return err
		}
		rec.ReceptionNumber = number
		return repos.Receptions.Create(ctx, rec)
	})
	if err != nil {
		return nil, err
	}
	uc.audit.Record(ctx, entity.AuditEntry{
		CompanyID:  companyID,
		UserID:     userID,
		Action:     "create",
		EntityType: "reception",
		EntityID:   rec.ID,
		NewValues:  map[string]any{"reception_number": rec.ReceptionNumber, "purchase_order_id": rec.PurchaseOrderID},
	})
	return &dto.ReceptionCreatedResponse{ID: rec.ID, ReceptionNumber: rec.ReceptionNumber}, nil
}

// Approve ingresa al inventario lo recibido, revalúa el costo promedio, abona lo recibido a la
// orden de compra y marca la recepción aprobada. Todo en una transacción.
// Orden de bloqueo: recepción, orden de compra, lotes por producto.
func (uc *ReceptionUseCase) Approve(ctx context.Context, companyID, receptionID, userID string) error {
	var (
		rec          *entity.Reception
		poID         string
		poStatus     string
		overReceived bool
	)
	err := uc.txRunner.Run(ctx, func(repos repository.Repos) error {
		var err error
		rec, err = uc.lockPending(ctx, repos, companyID, receptionID)
		if err != nil {
			return err
		}
		if len(rec.Items) == 0 {
			return domain.ErrEmptyItems.WithMessage("la recepción no tiene ítems")
		}

		if rec.PurchaseOrderID != "" {
			poID = rec.PurchaseOrderID
			poStatus, overReceived, err = uc.applyToPurchaseOrder(ctx, repos, rec)
			if err != nil {
				return err
			}
		}

		items := append([]*entity.ReceptionItem(nil), rec.Items...)
		sort.SliceStable(items, func(i, j int) bool { return items[i].ProductID < items[j].ProductID })
		for _, it := range items {
			if err := uc.receiveItem(ctx, repos, rec, it, userID); err != nil {
				return err
			}
		}

		now := uc.now()
		rec.Status = entity.ReceptionStatusApproved
		rec.ApprovedBy = userID
		rec.ApprovedAt = &now
		rec.UpdatedAt = now
		return repos.Receptions.Update(ctx, rec)
	})
	if err != nil {
		return err
	}

	if overReceived {
		uc.log.Warn().
			Str("reception_id", rec.ID).
			Str("purchase_order_id", poID).
			Msg("recepción aprobada por encima de lo ordenado")
	}
	entry := entity.AuditEntry{
		CompanyID:  companyID,
		UserID:     userID,
		Action:     "approve",
		EntityType: "reception",
		EntityID:   rec.ID,
		OldValues:  map[string]any{"status": entity.ReceptionStatusPendingQC},
		NewValues:  map[string]any{"status": rec.Status},
	}
	if poID != "" {
		entry.NewValues["purchase_order_status"] = poStatus
	}
	uc.audit.Record(ctx, entry)
	return nil
}

// Reject marca la recepción rechazada sin tocar inventario ni la orden de compra.
func (uc *ReceptionUseCase) Reject(ctx context.Context, companyID, receptionID, userID, reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return domain.ErrInvalidInput.WithMessage("el motivo de rechazo es requerido")
	}
	err := uc.txRunner.Run(ctx, func(repos repository.Repos) error {
		rec, err := uc.lockPending(ctx, repos, companyID, receptionID)
		if err != nil {
			return err
		}
		rec.Status = entity.ReceptionStatusRejected
		rec.RejectionReason = reason
		rec.UpdatedAt = uc.now()
		return repos.Receptions.Update(ctx, rec)
	})
	if err != nil {
		return err
	}
	uc.audit.Record(ctx, entity.AuditEntry{
		CompanyID:  companyID,
		UserID:     userID,
		Action:     "reject",
		EntityType: "reception",
		EntityID:   receptionID,
		OldValues:  map[string]any{"status": entity.ReceptionStatusPendingQC},
		NewValues:  map[string]any{"status": entity.ReceptionStatusRejected, "reason": reason},
	})
	return nil
}

// Get devuelve la recepción con sus ítems.
func (uc *ReceptionUseCase) Get(ctx context.Context, companyID, receptionID string) (*dto.ReceptionResponse, error) {
	var rec *entity.Reception
	err := uc.txRunner.Run(ctx, func(repos repository.Repos) error {
		var err error
		rec, err = repos.Receptions.GetByID(ctx, receptionID)
		if err != nil {
			return err
		}
		if rec == nil || rec.CompanyID != companyID {
			return domain.ErrNotFound.WithMessage("recepción no encontrada")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toReceptionResponse(rec), nil
}

// lockPending bloquea la recepción y exige que siga en pending_qc.
func (uc *ReceptionUseCase) lockPending(ctx context.Context, repos repository.Repos, companyID, receptionID string) (*entity.Reception, error) {
	rec, err := repos.Receptions.GetForUpdate(ctx, receptionID)
	if err != nil {
		return nil, err
	}
	if rec == nil || rec.CompanyID != companyID {
		return nil, domain.ErrNotFound.WithMessage("recepción no encontrada")
	}
	switch rec.Status {
	case entity.ReceptionStatusPendingQC:
		return rec, nil
	case entity.ReceptionStatusApproved:
		return nil, domain.ErrAlreadyApproved.WithMessage("la recepción ya fue aprobada")
	default:
		return nil, domain.ErrInvalidTransition.WithMessage(fmt.Sprintf("la recepción está en estado %s", rec.Status))
	}
}

// applyToPurchaseOrder suma lo recibido a la orden y recalcula su estado una sola vez.
func (uc *ReceptionUseCase) applyToPurchaseOrder(ctx context.Context, repos repository.Repos, rec *entity.Reception) (string, bool, error) {
	po, err := repos.PurchaseOrders.GetForUpdate(ctx, rec.PurchaseOrderID)
	if err != nil {
		return "", false, err
	}
	if po == nil || po.CompanyID != rec.CompanyID {
		return "", false, domain.ErrNotFound.WithMessage("orden de compra no encontrada")
	}
	if !domainproc.AcceptsReceptions(po.Status) {
		return "", false, domain.ErrInvalidTransition.WithMessage(fmt.Sprintf("la orden de compra en estado %s no admite recepciones", po.Status))
	}

	lines := make([]domainproc.ReceiptLine, 0, len(rec.Items))
	for _, it := range rec.Items {
		lines = append(lines, domainproc.ReceiptLine{POItemID: it.POItemID, ProductID: it.ProductID, Quantity: it.QuantityReceived})
	}
	changed, err := domainproc.ApplyReceipt(po.Items, lines, uc.opts.AllowOverReceipt)
	if err != nil {
		return "", false, err
	}
	for _, it := range changed {
		if err := repos.PurchaseOrders.UpdateItemReceived(ctx, it); err != nil {
			return "", false, err
		}
	}

	status := domainproc.ReducePurchaseOrderStatus(po.Status, po.Items)
	if status != po.Status {
		if err := repos.PurchaseOrders.UpdateStatus(ctx, po.ID, status); err != nil {
			return "", false, err
		}
	}
	return status, domainproc.IsOverReceived(po.Items), nil
}

// receiveItem revalúa el costo, ingresa la cantidad al lote y registra el lote de fabricación.
func (uc *ReceptionUseCase) receiveItem(ctx context.Context, repos repository.Repos, rec *entity.Reception, it *entity.ReceptionItem, userID string) error {
	product, err := inventory.OwnedProduct(ctx, repos, rec.CompanyID, it.ProductID)
	if err != nil {
		return err
	}
	location := it.LocationAssigned
	if location == "" {
		location = product.DefaultLocation
	}

	lots, err := repos.Stock.LockPositiveLots(ctx, it.ProductID)
	if err != nil {
		return err
	}
	cost := domaininv.WeightedAverageCost(domaininv.Available(lots), product.Cost, it.QuantityReceived, it.UnitCost)
	if !cost.Equal(product.Cost) {
		if err := repos.Products.UpdateCost(ctx, product.ID, cost); err != nil {
			return err
		}
	}

	unitCost := it.UnitCost
	_, err = uc.ledger.Increase(ctx, repos, it.ProductID, location, it.QuantityReceived, inventory.MovementRef{
		CompanyID:     rec.CompanyID,
		Type:          entity.MovementTypeReception,
		ReferenceType: "reception",
		ReferenceID:   rec.ID,
		Reason:        rec.ReceptionNumber,
		CreatedBy:     userID,
		UnitCost:      &unitCost,
	})
	if err != nil {
		return err
	}

	if it.BatchNumber == "" {
		return nil
	}
	batch, err := repos.Batches.GetForUpdate(ctx, it.ProductID, it.BatchNumber)
	if err != nil {
		return err
	}
	if batch != nil {
		return repos.Batches.AddQuantity(ctx, batch.ID, it.QuantityReceived)
	}
	return repos.Batches.Create(ctx, &entity.Batch{
		ProductID:       it.ProductID,
		ReceptionID:     rec.ID,
		BatchNumber:     it.BatchNumber,
		Location:        location,
		QuantityInitial: it.QuantityReceived,
		ExpiryDate:      it.ExpiryDate,
		CreatedAt:       uc.now(),
	})
}

func toReceptionResponse(rec *entity.Reception) *dto.ReceptionResponse {
	out := &dto.ReceptionResponse{
		ID:              rec.ID,
		ReceptionNumber: rec.ReceptionNumber,
		PurchaseOrderID: rec.PurchaseOrderID,
		SupplierID:      rec.SupplierID,
		Status:          rec.Status,
		Notes:           rec.Notes,
		RejectionReason: rec.RejectionReason,
		ApprovedBy:      rec.ApprovedBy,
		ApprovedAt:      rec.ApprovedAt,
		CreatedAt:       rec.CreatedAt,
		Items:           make([]dto.ReceptionItemResponse, 0, len(rec.Items)),
	}
	for _, it := range rec.Items {
		out.Items = append(out.Items, dto.ReceptionItemResponse{
			ID:               it.ID,
			POItemID:         it.POItemID,
			ProductID:        it.ProductID,
			QuantityReceived: it.QuantityReceived,
			UnitCost:         it.UnitCost,
			LocationAssigned: it.LocationAssigned,
			BatchNumber:      it.BatchNumber,
			ExpiryDate:       it.ExpiryDate,
		})
	}
	return out
}
