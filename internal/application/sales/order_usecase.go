// Package sales orquesta los pedidos de venta: creación con descuento de stock, alistamiento y estados.
package sales

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/erp-core/internal/application/dto"
	"github.com/jhoicas/erp-core/internal/application/inventory"
	"github.com/jhoicas/erp-core/internal/application/ports"
	"github.com/jhoicas/erp-core/internal/application/sequence"
	"github.com/jhoicas/erp-core/internal/domain"
	"github.com/jhoicas/erp-core/internal/domain/entity"
	"github.com/jhoicas/erp-core/internal/domain/repository"
	domainsales "github.com/jhoicas/erp-core/internal/domain/sales"
)

const referenceOrder = "order"

// PaymentRecorder registra el cobro del pedido en un turno de caja, dentro de la misma transacción.
type PaymentRecorder interface {
	RecordSalePayment(ctx context.Context, repos repository.Repos, companyID, shiftID, userID string, amount decimal.Decimal, reference string) error
}

// OrderUseCase pedidos de venta.
type OrderUseCase struct {
	txRunner ports.TxRunner
	ledger   *inventory.Ledger
	seq      *sequence.Allocator
	payments PaymentRecorder
	pdf      ports.PickingListRenderer
	audit    ports.AuditSink
	now      func() time.Time
}

// NewOrderUseCase construye el caso de uso. payments y pdf pueden ser nil si no se usan.
func NewOrderUseCase(
	txRunner ports.TxRunner,
	ledger *inventory.Ledger,
	seq *sequence.Allocator,
	payments PaymentRecorder,
	pdf ports.PickingListRenderer,
	audit ports.AuditSink,
) *OrderUseCase {
	if audit == nil {
		audit = ports.NopAuditSink{}
	}
	return &OrderUseCase{
		txRunner: txRunner,
		ledger:   ledger,
		seq:      seq,
		payments: payments,
		pdf:      pdf,
		audit:    audit,
		now:      time.Now,
	}
}

// Create crea el pedido en pending y descuenta el stock de cada línea. Si una línea no alcanza,
// no se crea nada. Las líneas se descuentan en orden de producto para bloquear siempre igual.
func (uc *OrderUseCase) Create(ctx context.Context, companyID, userID string, in dto.CreateOrderRequest) (*dto.OrderCreatedResponse, error) {
	if len(in.Items) == 0 {
		return nil, domain.ErrInvalidInput.WithMessage("el pedido requiere al menos un ítem")
	}
	for i, it := range in.Items {
		if !it.Quantity.IsPositive() {
			return nil, domain.ErrInvalidInput.WithMessage(fmt.Sprintf("ítem %d: la cantidad debe ser mayor que cero", i+1))
		}
		if it.UnitPrice != nil && it.UnitPrice.IsNegative() {
			return nil, domain.ErrInvalidInput.WithMessage(fmt.Sprintf("ítem %d: el precio no puede ser negativo", i+1))
		}
	}
	if in.CashShiftID != "" && uc.payments == nil {
		return nil, domain.ErrInvalidInput.WithMessage("cobro en caja no disponible")
	}

	now := uc.now()
	order := &entity.Order{
		ID:          uuid.New().String(),
		CompanyID:   companyID,
		ClientID:    in.ClientID,
		Status:      entity.OrderStatusPending,
		TotalAmount: decimal.Zero,
		Notes:       in.Notes,
		CreatedBy:   userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, it := range in.Items {
		item := &entity.OrderItem{ProductID: it.ProductID, Quantity: it.Quantity, PickedQuantity: decimal.Zero}
		if it.UnitPrice != nil {
			item.UnitPrice = *it.UnitPrice
		}
		order.Items = append(order.Items, item)
	}

	err := uc.txRunner.Run(ctx, func(repos repository.Repos) error {
		number, err := uc.seq.NextNumber(ctx, repos, companyID, sequence.ScopeOrder)
		if err != nil {
			return err
		}
		order.OrderNumber = number

		explicit := make(map[*entity.OrderItem]bool, len(order.Items))
		for i, it := range order.Items {
			explicit[it] = in.Items[i].UnitPrice != nil
		}
		lines := append([]*entity.OrderItem(nil), order.Items...)
		sort.SliceStable(lines, func(i, j int) bool { return lines[i].ProductID < lines[j].ProductID })
		total := decimal.Zero
		for _, it := range lines {
			product, err := inventory.OwnedProduct(ctx, repos, companyID, it.ProductID)
			if err != nil {
				return err
			}
			if !explicit[it] {
				it.UnitPrice = product.Price
			}
			it.Subtotal = it.Quantity.Mul(it.UnitPrice).Round(2)
			total = total.Add(it.Subtotal)

			if _, err := uc.ledger.Decrease(ctx, repos, it.ProductID, it.Quantity, inventory.MovementRef{
				CompanyID:     companyID,
				Type:          entity.MovementTypeSale,
				ReferenceType: referenceOrder,
				ReferenceID:   order.ID,
				Reason:        number,
				CreatedBy:     userID,
			}); err != nil {
				return err
			}
		}
		order.TotalAmount = total

		if err := repos.Orders.Create(ctx, order); err != nil {
			return err
		}
		if in.CashShiftID != "" && total.IsPositive() {
			return uc.payments.RecordSalePayment(ctx, repos, companyID, in.CashShiftID, userID, total, number)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.audit.Record(ctx, entity.AuditEntry{
		CompanyID:  companyID,
		UserID:     userID,
		Action:     "create",
		EntityType: "order",
		EntityID:   order.ID,
		NewValues:  map[string]any{"order_number": order.OrderNumber, "total_amount": order.TotalAmount.String()},
	})
	return &dto.OrderCreatedResponse{ID: order.ID, OrderNumber: order.OrderNumber, TotalAmount: order.TotalAmount}, nil
}

// Transition cambia el estado del pedido según el grafo. Despacho y entrega solo sellan datos;
// anular antes de despachar reintegra al inventario lo descontado al crear.
func (uc *OrderUseCase) Transition(ctx context.Context, companyID, orderID, userID string, in dto.UpdateOrderStatusRequest) (*dto.OrderResponse, error) {
	if !domainsales.IsKnown(in.Status) {
		return nil, domain.ErrInvalidInput.WithMessage("estado de pedido desconocido: " + in.Status)
	}
	var (
		order *entity.Order
		old   string
	)
	err := uc.txRunner.Run(ctx, func(repos repository.Repos) error {
		var err error
		order, err = uc.lockOrder(ctx, repos, companyID, orderID)
		if err != nil {
			return err
		}
		old = order.Status
		if err := domainsales.CheckTransition(order.Status, in.Status); err != nil {
			return err
		}

		now := uc.now()
		switch in.Status {
		case entity.OrderStatusDispatched:
			order.Carrier = strings.TrimSpace(in.Carrier)
			order.TrackingNumber = strings.TrimSpace(in.TrackingNumber)
			order.DispatchedAt = &now
		case entity.OrderStatusDelivered:
			order.DeliveredAt = &now
		case entity.OrderStatusCancelled:
			if domainsales.RestocksOnCancel(order.Status) {
				if err := uc.restock(ctx, repos, order, userID); err != nil {
					return err
				}
			}
			order.CancelledAt = &now
		}
		order.Status = in.Status
		order.UpdatedAt = now
		return repos.Orders.Update(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	uc.audit.Record(ctx, entity.AuditEntry{
		CompanyID:  companyID,
		UserID:     userID,
		Action:     "transition",
		EntityType: "order",
		EntityID:   order.ID,
		OldValues:  map[string]any{"status": old},
		NewValues:  map[string]any{"status": order.Status},
	})
	return toOrderResponse(order), nil
}

// PickItem registra avance de alistamiento sin mover stock. El primer avance pasa el pedido a picking.
func (uc *OrderUseCase) PickItem(ctx context.Context, companyID, orderID, itemID, userID string, quantity decimal.Decimal) (*dto.OrderResponse, error) {
	if !quantity.IsPositive() {
		return nil, domain.ErrInvalidInput.WithMessage("la cantidad alistada debe ser mayor que cero")
	}
	var order *entity.Order
	err := uc.txRunner.Run(ctx, func(repos repository.Repos) error {
		var err error
		order, err = uc.lockOrder(ctx, repos, companyID, orderID)
		if err != nil {
			return err
		}
		if !domainsales.CanPick(order.Status) {
			return domain.ErrInvalidTransition.WithMessage(fmt.Sprintf("no se puede alistar un pedido en estado %s", order.Status))
		}
		var item *entity.OrderItem
		for _, it := range order.Items {
			if it.ID == itemID {
				item = it
				break
			}
		}
		if item == nil {
			return domain.ErrNotFound.WithMessage("ítem de pedido no encontrado")
		}
		picked := item.PickedQuantity.Add(quantity)
		if picked.GreaterThan(item.Quantity) {
			return domain.ErrInvalidInput.WithMessage(fmt.Sprintf("alistado %s supera lo pedido %s", picked, item.Quantity))
		}
		item.PickedQuantity = picked
		if err := repos.Orders.UpdateItemPicked(ctx, item); err != nil {
			return err
		}
		if order.Status == entity.OrderStatusPending {
			order.Status = entity.OrderStatusPicking
			order.UpdatedAt = uc.now()
			return repos.Orders.Update(ctx, order)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toOrderResponse(order), nil
}

// Get devuelve el pedido con sus líneas.
func (uc *OrderUseCase) Get(ctx context.Context, companyID, orderID string) (*dto.OrderResponse, error) {
	var order *entity.Order
	err := uc.txRunner.Run(ctx, func(repos repository.Repos) error {
		var err error
		order, err = uc.getOrder(ctx, repos, companyID, orderID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return toOrderResponse(order), nil
}

// PickingList genera el PDF de alistamiento: por línea, las ubicaciones de donde salió el stock.
func (uc *OrderUseCase) PickingList(ctx context.Context, companyID, orderID string) ([]byte, error) {
	if uc.pdf == nil {
		return nil, fmt.Errorf("picking list: generador de PDF no configurado")
	}
	var list ports.PickingList
	err := uc.txRunner.Run(ctx, func(repos repository.Repos) error {
		order, err := uc.getOrder(ctx, repos, companyID, orderID)
		if err != nil {
			return err
		}
		movements, err := repos.Movements.ListByReference(ctx, referenceOrder, order.ID)
		if err != nil {
			return err
		}
		taken := make(map[string]map[string]decimal.Decimal)
		for _, m := range movements {
			if m.Type != entity.MovementTypeSale {
				continue
			}
			if taken[m.ProductID] == nil {
				taken[m.ProductID] = make(map[string]decimal.Decimal)
			}
			taken[m.ProductID][m.FromLocation] = taken[m.ProductID][m.FromLocation].Add(m.Quantity)
		}

		list = ports.PickingList{
			OrderNumber: order.OrderNumber,
			ClientID:    order.ClientID,
			Status:      order.Status,
			CreatedAt:   order.CreatedAt.Format("2006-01-02 15:04"),
		}
		for _, it := range order.Items {
			product, err := inventory.OwnedProduct(ctx, repos, companyID, it.ProductID)
			if err != nil {
				return err
			}
			list.Lines = append(list.Lines, ports.PickingListLine{
				SKU:         product.SKU,
				ProductName: product.Name,
				Quantity:    it.Quantity,
				Picked:      it.PickedQuantity,
				Locations:   locationsByQuantity(taken[it.ProductID]),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return uc.pdf.RenderPickingList(ctx, list)
}

// restock devuelve a cada ubicación lo que salió de ella por este pedido.
func (uc *OrderUseCase) restock(ctx context.Context, repos repository.Repos, order *entity.Order, userID string) error {
	movements, err := repos.Movements.ListByReference(ctx, referenceOrder, order.ID)
	if err != nil {
		return err
	}
	type lotKey struct{ productID, location string }
	qty := make(map[lotKey]decimal.Decimal)
	var keys []lotKey
	for _, m := range movements {
		if m.Type != entity.MovementTypeSale || m.FromLocation == "" {
			continue
		}
		k := lotKey{m.ProductID, m.FromLocation}
		if _, ok := qty[k]; !ok {
			keys = append(keys, k)
		}
		qty[k] = qty[k].Add(m.Quantity)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].productID != keys[j].productID {
			return keys[i].productID < keys[j].productID
		}
		return keys[i].location < keys[j].location
	})
	for _, k := range keys {
		if _, err := uc.ledger.Increase(ctx, repos, k.productID, k.location, qty[k], inventory.MovementRef{
			CompanyID:     order.CompanyID,
			Type:          entity.MovementTypeCancellation,
			ReferenceType: referenceOrder,
			ReferenceID:   order.ID,
			Reason:        "anulación " + order.OrderNumber,
			CreatedBy:     userID,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (uc *OrderUseCase) lockOrder(ctx context.Context, repos repository.Repos, companyID, orderID string) (*entity.Order, error) {
	order, err := repos.Orders.GetForUpdate(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil || order.CompanyID != companyID {
		return nil, domain.ErrNotFound.WithMessage("pedido no encontrado")
	}
	return order, nil
}

func (uc *OrderUseCase) getOrder(ctx context.Context, repos repository.Repos, companyID, orderID string) (*entity.Order, error) {
	order, err := repos.Orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil || order.CompanyID != companyID {
		return nil, domain.ErrNotFound.WithMessage("pedido no encontrado")
	}
	return order, nil
}

// locationsByQuantity ubicaciones ordenadas por cantidad descendente, empates por nombre.
func locationsByQuantity(m map[string]decimal.Decimal) []string {
	out := make([]string, 0, len(m))
	for loc := range m {
		out = append(out, loc)
	}
	sort.Slice(out, func(i, j int) bool {
		qi, qj := m[out[i]], m[out[j]]
		if !qi.Equal(qj) {
			return qi.GreaterThan(qj)
		}
		return out[i] < out[j]
	})
	return out
}

func toOrderResponse(o *entity.Order) *dto.OrderResponse {
	out := &dto.OrderResponse{
		ID:             o.ID,
		OrderNumber:    o.OrderNumber,
		ClientID:       o.ClientID,
		Status:         o.Status,
		TotalAmount:    o.TotalAmount,
		Carrier:        o.Carrier,
		TrackingNumber: o.TrackingNumber,
		Notes:          o.Notes,
		DispatchedAt:   o.DispatchedAt,
		DeliveredAt:    o.DeliveredAt,
		CancelledAt:    o.CancelledAt,
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
		Items:          make([]dto.OrderItemResponse, 0, len(o.Items)),
	}
	for _, it := range o.Items {
		out.Items = append(out.Items, dto.OrderItemResponse{
			ID:             it.ID,
			ProductID:      it.ProductID,
			Quantity:       it.Quantity,
			UnitPrice:      it.UnitPrice,
			Subtotal:       it.Subtotal,
			PickedQuantity: it.PickedQuantity,
		})
	}
	return out
}
