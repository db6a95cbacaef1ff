package inventory

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/erp-core/internal/application/ports"
	"github.com/jhoicas/erp-core/internal/domain"
	"github.com/jhoicas/erp-core/internal/domain/entity"
	"github.com/jhoicas/erp-core/internal/domain/repository"
)

// Tipos de movimiento manual aceptados por RegisterMovement.
const (
	ManualAdjustmentIn  = "adjustment_in"
	ManualAdjustmentOut = "adjustment_out"
	ManualTransfer      = "transfer"
)

// MovementUseCase registra movimientos manuales (ajustes y traslados) y expone las consultas del libro.
type MovementUseCase struct {
	txRunner ports.TxRunner
	ledger   *Ledger
	audit    ports.AuditSink
}

// NewMovementUseCase construye el caso de uso.
func NewMovementUseCase(txRunner ports.TxRunner, ledger *Ledger, audit ports.AuditSink) *MovementUseCase {
	if audit == nil {
		audit = ports.NopAuditSink{}
	}
	return &MovementUseCase{txRunner: txRunner, ledger: ledger, audit: audit}
}

// MovementInput entrada para registrar un movimiento manual.
// adjustment_in/adjustment_out usan Location; transfer usa FromLocation y ToLocation.
type MovementInput struct {
	CompanyID    string
	UserID       string
	ProductID    string
	Type         string
	Location     string
	FromLocation string
	ToLocation   string
	Quantity     decimal.Decimal
	UnitCost     *decimal.Decimal
	Reason       string
}

// RegisterMovement valida la entrada, verifica que el producto sea de la empresa y aplica el
// movimiento en una transacción.
func (uc *MovementUseCase) RegisterMovement(ctx context.Context, in MovementInput) error {
	if !in.Quantity.IsPositive() {
		return domain.ErrInvalidInput.WithMessage("quantity debe ser mayor que cero")
	}
	switch in.Type {
	case ManualAdjustmentIn, ManualAdjustmentOut:
		if in.Location == "" {
			return domain.ErrInvalidInput.WithMessage("location es requerido")
		}
	case ManualTransfer:
		if in.FromLocation == "" || in.ToLocation == "" || in.FromLocation == in.ToLocation {
			return domain.ErrInvalidInput.WithMessage("from_location y to_location deben ser distintos")
		}
	default:
		return domain.ErrInvalidInput.WithMessage("type no soportado: " + in.Type)
	}
	if in.UnitCost != nil && in.UnitCost.IsNegative() {
		return domain.ErrInvalidInput.WithMessage("unit_cost no puede ser negativo")
	}

	ref := MovementRef{
		CompanyID:     in.CompanyID,
		Type:          entity.MovementTypeAdjustment,
		ReferenceType: "manual",
		Reason:        in.Reason,
		CreatedBy:     in.UserID,
		UnitCost:      in.UnitCost,
	}
	err := uc.txRunner.Run(ctx, func(repos repository.Repos) error {
		if _, err := OwnedProduct(ctx, repos, in.CompanyID, in.ProductID); err != nil {
			return err
		}
		switch in.Type {
		case ManualAdjustmentIn:
			_, err := uc.ledger.Increase(ctx, repos, in.ProductID, in.Location, in.Quantity, ref)
			return err
		case ManualAdjustmentOut:
			return uc.ledger.DecreaseAt(ctx, repos, in.ProductID, in.Location, in.Quantity, ref)
		default:
			return uc.ledger.Transfer(ctx, repos, in.ProductID, in.FromLocation, in.ToLocation, in.Quantity, ref)
		}
	})
	if err != nil {
		return err
	}
	uc.audit.Record(ctx, entity.AuditEntry{
		CompanyID:  in.CompanyID,
		UserID:     in.UserID,
		Action:     in.Type,
		EntityType: "product",
		EntityID:   in.ProductID,
		NewValues: map[string]any{
			"quantity":      in.Quantity.String(),
			"location":      in.Location,
			"from_location": in.FromLocation,
			"to_location":   in.ToLocation,
			"reason":        in.Reason,
		},
	})
	return nil
}

// ProductStock lotes y total de un producto.
type ProductStock struct {
	ProductID string
	SKU       string
	Total     decimal.Decimal
	Lots      []*entity.StockLot
}

// GetStock devuelve el stock por ubicación de un producto de la empresa.
func (uc *MovementUseCase) GetStock(ctx context.Context, companyID, productID string) (*ProductStock, error) {
	var out *ProductStock
	err := uc.txRunner.Run(ctx, func(repos repository.Repos) error {
		product, err := OwnedProduct(ctx, repos, companyID, productID)
		if err != nil {
			return err
		}
		lots, err := repos.Stock.ListByProduct(ctx, productID)
		if err != nil {
			return err
		}
		total := decimal.Zero
		for _, l := range lots {
			total = total.Add(l.Quantity)
		}
		out = &ProductStock{ProductID: productID, SKU: product.SKU, Total: total, Lots: lots}
		return nil
	})
	return out, err
}

// ListMovements devuelve los movimientos de un producto, más recientes primero.
func (uc *MovementUseCase) ListMovements(ctx context.Context, companyID, productID string, limit, offset int) ([]*entity.InventoryMovement, error) {
	var out []*entity.InventoryMovement
	err := uc.txRunner.Run(ctx, func(repos repository.Repos) error {
		if _, err := OwnedProduct(ctx, repos, companyID, productID); err != nil {
			return err
		}
		var err error
		out, err = repos.Movements.ListByProduct(ctx, productID, limit, offset)
		return err
	})
	return out, err
}

// Reconcile compara lotes contra el libro para un producto.
func (uc *MovementUseCase) Reconcile(ctx context.Context, companyID, productID string) (*Reconciliation, error) {
	var out *Reconciliation
	err := uc.txRunner.Run(ctx, func(repos repository.Repos) error {
		if _, err := OwnedProduct(ctx, repos, companyID, productID); err != nil {
			return err
		}
		var err error
		out, err = uc.ledger.Reconcile(ctx, repos, productID)
		return err
	})
	return out, err
}

// OwnedProduct devuelve el producto si existe y pertenece a la empresa; en otro caso ErrNotFound.
func OwnedProduct(ctx context.Context, repos repository.Repos, companyID, productID string) (*entity.Product, error) {
	product, err := repos.Products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil || product.CompanyID != companyID {
		return nil, domain.ErrNotFound.WithMessage("producto no encontrado")
	}
	return product, nil
}
