package sales

import (
	"fmt"

	"github.com/jhoicas/erp-core/internal/domain"
	"github.com/jhoicas/erp-core/internal/domain/entity"
)

// next siguiente estado válido en el flujo lineal del pedido.
var next = map[string]string{
	entity.OrderStatusPending:    entity.OrderStatusPicking,
	entity.OrderStatusPicking:    entity.OrderStatusPacked,
	entity.OrderStatusPacked:     entity.OrderStatusDispatched,
	entity.OrderStatusDispatched: entity.OrderStatusDelivered,
	entity.OrderStatusDelivered:  entity.OrderStatusCompleted,
}

// IsTerminal indica si el pedido ya no admite transiciones.
func IsTerminal(status string) bool {
	return status == entity.OrderStatusCompleted || status == entity.OrderStatusCancelled
}

// IsKnown indica si el estado pertenece al flujo del pedido.
func IsKnown(status string) bool {
	_, ok := next[status]
	return ok || IsTerminal(status)
}

// CanTransition pending → picking → packed → dispatched → delivered → completed,
// y cancelled desde cualquier estado no terminal.
func CanTransition(from, to string) bool {
	if IsTerminal(from) {
		return false
	}
	if to == entity.OrderStatusCancelled {
		return true
	}
	return next[from] == to
}

// CheckTransition devuelve ErrInvalidTransition si el cambio no está en el grafo.
func CheckTransition(from, to string) error {
	if !CanTransition(from, to) {
		return domain.ErrInvalidTransition.WithMessage(fmt.Sprintf("transición de pedido no permitida: %s → %s", from, to))
	}
	return nil
}

// RestocksOnCancel indica si anular desde este estado devuelve el stock (la mercancía no salió).
func RestocksOnCancel(status string) bool {
	switch status {
	case entity.OrderStatusPending, entity.OrderStatusPicking, entity.OrderStatusPacked:
		return true
	}
	return false
}

// CanPick indica si se puede registrar avance de alistamiento.
func CanPick(status string) bool {
	return status == entity.OrderStatusPending || status == entity.OrderStatusPicking
}
