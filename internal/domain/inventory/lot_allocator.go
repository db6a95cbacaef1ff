package inventory

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/erp-core/internal/domain"
	"github.com/jhoicas/erp-core/internal/domain/entity"
)

// Consumption cantidad tomada de una ubicación concreta.
type Consumption struct {
	Location string
	Quantity decimal.Decimal
}

// LotAllocator decide de qué lotes sale una cantidad pedida.
// Recibe los lotes ya bloqueados; no debe modificarlos.
type LotAllocator interface {
	Allocate(requested decimal.Decimal, lots []*entity.StockLot) ([]Consumption, error)
}

// Available suma la cantidad positiva de los lotes.
func Available(lots []*entity.StockLot) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lots {
		if l.Quantity.IsPositive() {
			total = total.Add(l.Quantity)
		}
	}
	return total
}

// LargestFirst consume primero el lote con más cantidad; empates por nombre de ubicación.
type LargestFirst struct{}

// Allocate implementa LotAllocator.
func (LargestFirst) Allocate(requested decimal.Decimal, lots []*entity.StockLot) ([]Consumption, error) {
	ordered := make([]*entity.StockLot, 0, len(lots))
	for _, l := range lots {
		if l.Quantity.IsPositive() {
			ordered = append(ordered, l)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		if cmp := ordered[i].Quantity.Cmp(ordered[j].Quantity); cmp != 0 {
			return cmp > 0
		}
		return ordered[i].Location < ordered[j].Location
	})
	return greedy(requested, ordered)
}

// greedy recorre los lotes en el orden dado hasta cubrir lo pedido.
func greedy(requested decimal.Decimal, ordered []*entity.StockLot) ([]Consumption, error) {
	if !requested.IsPositive() {
		return nil, domain.ErrInvalidInput.WithMessage("la cantidad a descontar debe ser mayor que cero")
	}
	if avail := Available(ordered); avail.LessThan(requested) {
		return nil, domain.ErrInsufficientStock.WithMessage(
			fmt.Sprintf("stock insuficiente: disponible %s, solicitado %s", avail.String(), requested.String()))
	}
	remaining := requested
	plan := make([]Consumption, 0, len(ordered))
	for _, l := range ordered {
		if !remaining.IsPositive() {
			break
		}
		take := decimal.Min(l.Quantity, remaining)
		plan = append(plan, Consumption{Location: l.Location, Quantity: take})
		remaining = remaining.Sub(take)
	}
	return plan, nil
}
