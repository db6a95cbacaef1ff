package inventory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/erp-core/internal/domain"
	"github.com/jhoicas/erp-core/internal/domain/entity"
	domaininv "github.com/jhoicas/erp-core/internal/domain/inventory"
	"github.com/jhoicas/erp-core/internal/domain/repository"
)

// MovementRef datos comunes de los movimientos generados por una operación.
type MovementRef struct {
	CompanyID     string
	Type          string // entity.MovementType*
	ReferenceType string
	ReferenceID   string
	Reason        string
	CreatedBy     string
	UnitCost      *decimal.Decimal
}

// Ledger es el único punto de mutación de stock: cada cambio en un lote va acompañado
// de su movimiento. No abre transacciones; opera sobre los repos que recibe.
type Ledger struct {
	allocator domaininv.LotAllocator
	now       func() time.Time
}

// NewLedger construye el libro. allocator nil usa LargestFirst.
func NewLedger(allocator domaininv.LotAllocator) *Ledger {
	if allocator == nil {
		allocator = domaininv.LargestFirst{}
	}
	return &Ledger{allocator: allocator, now: time.Now}
}

// RecordMovement inserta un movimiento inmutable. Rechaza cantidades <= 0 y movimientos sin ubicación.
func (l *Ledger) RecordMovement(ctx context.Context, repos repository.Repos, m *entity.InventoryMovement) error {
	if !m.Quantity.IsPositive() {
		return domain.ErrInvalidInput.WithMessage("la cantidad del movimiento debe ser mayor que cero")
	}
	if m.FromLocation == "" && m.ToLocation == "" {
		return domain.ErrInvalidInput.WithMessage("el movimiento requiere ubicación de origen o destino")
	}
	if m.ProductID == "" || m.Type == "" {
		return domain.ErrInvalidInput.WithMessage("el movimiento requiere producto y tipo")
	}
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = l.now()
	}
	return repos.Movements.Create(ctx, m)
}

// Increase suma quantity al lote (producto, ubicación), creándolo si no existe, y registra la entrada.
func (l *Ledger) Increase(ctx context.Context, repos repository.Repos, productID, location string, quantity decimal.Decimal, ref MovementRef) (*entity.InventoryMovement, error) {
	location = strings.TrimSpace(location)
	if !quantity.IsPositive() {
		return nil, domain.ErrInvalidInput.WithMessage("la cantidad a ingresar debe ser mayor que cero")
	}
	if location == "" {
		return nil, domain.ErrInvalidInput.WithMessage("la ubicación es obligatoria")
	}
	if err := l.addToLot(ctx, repos, productID, location, quantity); err != nil {
		return nil, err
	}
	mov := l.movement(ref, productID, "", location, quantity)
	if err := l.RecordMovement(ctx, repos, mov); err != nil {
		return nil, err
	}
	return mov, nil
}

// Decrease descuenta quantity del producto repartiéndola entre lotes según el LotAllocator.
// Bloquea todos los lotes positivos antes de decidir; si no alcanza, no escribe nada.
// Registra un movimiento por lote consumido.
func (l *Ledger) Decrease(ctx context.Context, repos repository.Repos, productID string, quantity decimal.Decimal, ref MovementRef) ([]domaininv.Consumption, error) {
	if !quantity.IsPositive() {
		return nil, domain.ErrInvalidInput.WithMessage("la cantidad a descontar debe ser mayor que cero")
	}
	lots, err := repos.Stock.LockPositiveLots(ctx, productID)
	if err != nil {
		return nil, err
	}
	plan, err := l.allocator.Allocate(quantity, lots)
	if err != nil {
		if domain.CodeOf(err) == domain.CodeInsufficientStock {
			return nil, domain.ErrInsufficientStock.WithMessage(fmt.Sprintf("producto %s: %s", productID, err.Error()))
		}
		return nil, err
	}

	byLocation := make(map[string]*entity.StockLot, len(lots))
	for _, lot := range lots {
		byLocation[lot.Location] = lot
	}
	now := l.now()
	for _, c := range plan {
		lot := byLocation[c.Location]
		lot.Quantity = lot.Quantity.Sub(c.Quantity)
		lot.UpdatedAt = now
		if err := repos.Stock.Save(ctx, lot); err != nil {
			return nil, err
		}
		if err := l.RecordMovement(ctx, repos, l.movement(ref, productID, c.Location, "", c.Quantity)); err != nil {
			return nil, err
		}
	}
	return plan, nil
}

// DecreaseAt descuenta de una sola ubicación (ajustes manuales).
func (l *Ledger) DecreaseAt(ctx context.Context, repos repository.Repos, productID, location string, quantity decimal.Decimal, ref MovementRef) error {
	if err := l.takeFromLot(ctx, repos, productID, location, quantity); err != nil {
		return err
	}
	return l.RecordMovement(ctx, repos, l.movement(ref, productID, location, "", quantity))
}

// Transfer mueve quantity entre dos ubicaciones del mismo producto con un único movimiento.
func (l *Ledger) Transfer(ctx context.Context, repos repository.Repos, productID, from, to string, quantity decimal.Decimal, ref MovementRef) error {
	from, to = strings.TrimSpace(from), strings.TrimSpace(to)
	if from == "" || to == "" || from == to {
		return domain.ErrInvalidInput.WithMessage("el traslado requiere ubicaciones de origen y destino distintas")
	}
	// Bloqueo en orden alfabético para que traslados cruzados no se interbloqueen.
	first, second := from, to
	if second < first {
		first, second = second, first
	}
	if _, err := repos.Stock.LockLot(ctx, productID, first); err != nil {
		return err
	}
	if _, err := repos.Stock.LockLot(ctx, productID, second); err != nil {
		return err
	}
	if err := l.takeFromLot(ctx, repos, productID, from, quantity); err != nil {
		return err
	}
	if err := l.addToLot(ctx, repos, productID, to, quantity); err != nil {
		return err
	}
	ref.Type = entity.MovementTypeTransfer
	return l.RecordMovement(ctx, repos, l.movement(ref, productID, from, to, quantity))
}

// Reconciliation compara el stock de los lotes con la suma firmada del libro.
type Reconciliation struct {
	ProductID   string
	LotTotal    decimal.Decimal
	LedgerTotal decimal.Decimal
	Drift       decimal.Decimal // LotTotal - LedgerTotal; debe ser cero
	Lots        []*entity.StockLot
}

// Reconcile calcula la conciliación de un producto.
func (l *Ledger) Reconcile(ctx context.Context, repos repository.Repos, productID string) (*Reconciliation, error) {
	lots, err := repos.Stock.ListByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	ledgerTotal, err := repos.Movements.SumSignedByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	lotTotal := decimal.Zero
	for _, lot := range lots {
		lotTotal = lotTotal.Add(lot.Quantity)
	}
	sort.Slice(lots, func(i, j int) bool { return lots[i].Location < lots[j].Location })
	return &Reconciliation{
		ProductID:   productID,
		LotTotal:    lotTotal,
		LedgerTotal: ledgerTotal,
		Drift:       lotTotal.Sub(ledgerTotal),
		Lots:        lots,
	}, nil
}

func (l *Ledger) addToLot(ctx context.Context, repos repository.Repos, productID, location string, quantity decimal.Decimal) error {
	lot, err := repos.Stock.LockLot(ctx, productID, location)
	if err != nil {
		return err
	}
	lot.Quantity = lot.Quantity.Add(quantity)
	lot.UpdatedAt = l.now()
	return repos.Stock.Save(ctx, lot)
}

func (l *Ledger) takeFromLot(ctx context.Context, repos repository.Repos, productID, location string, quantity decimal.Decimal) error {
	location = strings.TrimSpace(location)
	if !quantity.IsPositive() {
		return domain.ErrInvalidInput.WithMessage("la cantidad a descontar debe ser mayor que cero")
	}
	if location == "" {
		return domain.ErrInvalidInput.WithMessage("la ubicación es obligatoria")
	}
	lot, err := repos.Stock.LockLot(ctx, productID, location)
	if err != nil {
		return err
	}
	if lot.Quantity.LessThan(quantity) {
		return domain.ErrInsufficientStock.WithMessage(fmt.Sprintf(
			"stock insuficiente en %s: disponible %s, solicitado %s", location, lot.Quantity, quantity))
	}
	lot.Quantity = lot.Quantity.Sub(quantity)
	lot.UpdatedAt = l.now()
	return repos.Stock.Save(ctx, lot)
}

func (l *Ledger) movement(ref MovementRef, productID, from, to string, quantity decimal.Decimal) *entity.InventoryMovement {
	return &entity.InventoryMovement{
		CompanyID:     ref.CompanyID,
		Type:          ref.Type,
		ProductID:     productID,
		FromLocation:  from,
		ToLocation:    to,
		Quantity:      quantity,
		UnitCost:      ref.UnitCost,
		Reason:        ref.Reason,
		ReferenceType: ref.ReferenceType,
		ReferenceID:   ref.ReferenceID,
		CreatedBy:     ref.CreatedBy,
	}
}
