// Package procurement contiene las reglas puras de compras: transiciones de la
// orden de compra y conciliación de cantidades recibidas.
package procurement

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/erp-core/internal/domain"
	"github.com/jhoicas/erp-core/internal/domain/entity"
)

// Normalize traduce los alias heredados (ordered, received) a su estado canónico.
func Normalize(status string) string {
	switch status {
	case entity.PurchaseOrderStatusOrdered:
		return entity.PurchaseOrderStatusSent
	case entity.PurchaseOrderStatusReceived:
		return entity.PurchaseOrderStatusCompleted
	}
	return status
}

// manualStatuses estados que se pueden fijar a mano; partial solo lo produce una recepción.
var manualStatuses = map[string]bool{
	entity.PurchaseOrderStatusDraft:     true,
	entity.PurchaseOrderStatusSent:      true,
	entity.PurchaseOrderStatusOrdered:   true,
	entity.PurchaseOrderStatusCompleted: true,
	entity.PurchaseOrderStatusCancelled: true,
}

// ValidateManualStatus rechaza estados fuera de la lista blanca.
func ValidateManualStatus(status string) error {
	if !manualStatuses[status] {
		return domain.ErrInvalidStatus.WithMessage(fmt.Sprintf("estado de orden de compra no válido: %q", status))
	}
	return nil
}

var transitions = map[string][]string{
	entity.PurchaseOrderStatusDraft:   {entity.PurchaseOrderStatusSent, entity.PurchaseOrderStatusCancelled},
	entity.PurchaseOrderStatusSent:    {entity.PurchaseOrderStatusPartial, entity.PurchaseOrderStatusCompleted, entity.PurchaseOrderStatusCancelled},
	entity.PurchaseOrderStatusPartial: {entity.PurchaseOrderStatusCompleted, entity.PurchaseOrderStatusCancelled},
}

// CanTransition indica si la orden puede pasar de from a to. Mismo estado canónico es un no-op válido.
func CanTransition(from, to string) bool {
	f, t := Normalize(from), Normalize(to)
	if f == t {
		return true
	}
	for _, next := range transitions[f] {
		if next == t {
			return true
		}
	}
	return false
}

// AcceptsReceptions indica si se puede recibir mercancía contra una orden en ese estado.
func AcceptsReceptions(status string) bool {
	switch Normalize(status) {
	case entity.PurchaseOrderStatusSent, entity.PurchaseOrderStatusPartial, entity.PurchaseOrderStatusCompleted:
		return true
	}
	return false
}

// ReducePurchaseOrderStatus calcula el estado de la orden a partir de sus ítems, una sola vez.
//   - completed si todos los ítems tienen recibido >= ordenado
//   - partial si la orden estaba enviada/parcial y algún ítem tiene avance
//   - en otro caso, el estado actual
func ReducePurchaseOrderStatus(current string, items []*entity.PurchaseOrderItem) string {
	if len(items) == 0 {
		return current
	}
	allReceived, anyProgress := true, false
	for _, it := range items {
		if it.QuantityReceived.LessThan(it.QuantityOrdered) {
			allReceived = false
		}
		if it.QuantityReceived.IsPositive() {
			anyProgress = true
		}
	}
	if allReceived {
		return entity.PurchaseOrderStatusCompleted
	}
	switch Normalize(current) {
	case entity.PurchaseOrderStatusSent, entity.PurchaseOrderStatusPartial:
		if anyProgress {
			return entity.PurchaseOrderStatusPartial
		}
	}
	return current
}

// ReceiptLine cantidad recibida que se imputa a la orden.
type ReceiptLine struct {
	POItemID  string
	ProductID string
	Quantity  decimal.Decimal
}

// ApplyReceipt suma las cantidades recibidas sobre los ítems de la orden (in place) y devuelve
// los ítems modificados. Cada línea se imputa por POItemID y, si no lo trae, al primer ítem del
// mismo producto. Las líneas sin ítem correspondiente no alteran la orden.
// Con allowOver=false, superar lo ordenado devuelve ErrOverReceipt sin modificar nada.
func ApplyReceipt(items []*entity.PurchaseOrderItem, lines []ReceiptLine, allowOver bool) ([]*entity.PurchaseOrderItem, error) {
	byID := make(map[string]*entity.PurchaseOrderItem, len(items))
	byProduct := make(map[string]*entity.PurchaseOrderItem, len(items))
	for _, it := range items {
		byID[it.ID] = it
		if _, ok := byProduct[it.ProductID]; !ok {
			byProduct[it.ProductID] = it
		}
	}

	added := make(map[string]decimal.Decimal)
	var order []*entity.PurchaseOrderItem
	for _, l := range lines {
		target, ok := byID[l.POItemID]
		if !ok {
			target, ok = byProduct[l.ProductID]
		}
		if !ok {
			continue
		}
		if _, seen := added[target.ID]; !seen {
			order = append(order, target)
		}
		added[target.ID] = added[target.ID].Add(l.Quantity)
	}

	if !allowOver {
		for _, it := range order {
			if it.QuantityReceived.Add(added[it.ID]).GreaterThan(it.QuantityOrdered) {
				return nil, domain.ErrOverReceipt.WithMessage(fmt.Sprintf(
					"el ítem %s superaría lo ordenado: ordenado %s, recibido %s, nuevo %s",
					it.ID, it.QuantityOrdered, it.QuantityReceived, added[it.ID]))
			}
		}
	}
	for _, it := range order {
		it.QuantityReceived = it.QuantityReceived.Add(added[it.ID])
	}
	return order, nil
}

// IsOverReceived indica si algún ítem superó lo ordenado.
func IsOverReceived(items []*entity.PurchaseOrderItem) bool {
	for _, it := range items {
		if it.QuantityReceived.GreaterThan(it.QuantityOrdered) {
			return true
		}
	}
	return false
}

// Totals calcula subtotal, impuesto y total de la orden. taxRate > 1 se interpreta como porcentaje.
func Totals(items []*entity.PurchaseOrderItem, taxRate decimal.Decimal) (subtotal, tax, total decimal.Decimal) {
	rate := NormalizeTaxRate(taxRate)
	subtotal = decimal.Zero
	for _, it := range items {
		it.Subtotal = it.QuantityOrdered.Mul(it.UnitCost).Round(2)
		subtotal = subtotal.Add(it.Subtotal)
	}
	tax = subtotal.Mul(rate).Round(2)
	return subtotal, tax, subtotal.Add(tax)
}

// NormalizeTaxRate convierte 19 en 0.19; valores en [0,1] se dejan igual.
func NormalizeTaxRate(rate decimal.Decimal) decimal.Decimal {
	if rate.GreaterThan(decimal.NewFromInt(1)) {
		return rate.Div(decimal.NewFromInt(100))
	}
	return rate
}
