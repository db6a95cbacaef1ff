package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/erp-core/internal/domain/entity"
	"github.com/jhoicas/erp-core/internal/domain/repository"
)

var (
	_ repository.ProductRepository              = productRepo{}
	_ repository.StockRepository                = stockRepo{}
	_ repository.InventoryMovementRepository    = movementRepo{}
	_ repository.BatchRepository                = batchRepo{}
	_ repository.PurchaseOrderRepository        = purchaseOrderRepo{}
	_ repository.ReceptionRepository            = receptionRepo{}
	_ repository.SupplierReturnRepository       = supplierReturnRepo{}
	_ repository.SupplierRepository             = supplierRepo{}
	_ repository.OrderRepository                = orderRepo{}
	_ repository.CashRegisterRepository         = cashRegisterRepo{}
	_ repository.CashShiftRepository            = cashShiftRepo{}
	_ repository.ShiftPaymentRepository         = shiftPaymentRepo{}
	_ repository.FinancialTransactionRepository = transactionRepo{}
	_ repository.SequenceRepository             = sequenceRepo{}
	_ repository.AuditRepository                = auditRepo{}
)

// ── Productos ────────────────────────────────────────────────────────────────

type productRepo struct{ st *state }

func (r productRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	p, ok := r.st.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r productRepo) GetByCompanyAndSKU(_ context.Context, companyID, sku string) (*entity.Product, error) {
	for _, p := range r.st.products {
		if p.CompanyID == companyID && p.SKU == sku {
			p := p
			return &p, nil
		}
	}
	return nil, nil
}

func (r productRepo) UpdateCost(_ context.Context, productID string, cost decimal.Decimal) error {
	p, ok := r.st.products[productID]
	if !ok {
		return fmt.Errorf("update cost: producto %s no existe", productID)
	}
	p.Cost = cost
	p.UpdatedAt = time.Now()
	r.st.products[productID] = p
	return nil
}

// ── Stock ────────────────────────────────────────────────────────────────────

type stockRepo struct{ st *state }

func (r stockRepo) LockLot(_ context.Context, productID, location string) (*entity.StockLot, error) {
	k := lotKey{productID, location}
	lot, ok := r.st.lots[k]
	if !ok {
		lot = entity.StockLot{ProductID: productID, Location: location, Quantity: decimal.Zero, UpdatedAt: time.Now()}
		r.st.lots[k] = lot
	}
	return &lot, nil
}

func (r stockRepo) LockPositiveLots(ctx context.Context, productID string) ([]*entity.StockLot, error) {
	all, _ := r.ListByProduct(ctx, productID)
	out := all[:0]
	for _, l := range all {
		if l.Quantity.IsPositive() {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r stockRepo) Save(_ context.Context, lot *entity.StockLot) error {
	if lot.Quantity.IsNegative() {
		return fmt.Errorf("save lot: cantidad negativa en %s/%s", lot.ProductID, lot.Location)
	}
	r.st.lots[lotKey{lot.ProductID, lot.Location}] = *lot
	return nil
}

func (r stockRepo) ListByProduct(_ context.Context, productID string) ([]*entity.StockLot, error) {
	var out []*entity.StockLot
	for k, l := range r.st.lots {
		if k.productID == productID {
			l := l
			out = append(out, &l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Location < out[j].Location })
	return out, nil
}

// ── Movimientos ──────────────────────────────────────────────────────────────

type movementRepo struct{ st *state }

func (r movementRepo) Create(_ context.Context, m *entity.InventoryMovement) error {
	m.ID = newID(m.ID)
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	r.st.movements = append(r.st.movements, *m)
	return nil
}

func (r movementRepo) ListByProduct(_ context.Context, productID string, limit, offset int) ([]*entity.InventoryMovement, error) {
	var out []*entity.InventoryMovement
	for i := len(r.st.movements) - 1; i >= 0; i-- {
		m := r.st.movements[i]
		if m.ProductID == productID {
			out = append(out, &m)
		}
	}
	return paginate(out, limit, offset), nil
}

func (r movementRepo) ListByReference(_ context.Context, referenceType, referenceID string) ([]*entity.InventoryMovement, error) {
	var out []*entity.InventoryMovement
	for _, m := range r.st.movements {
		if m.ReferenceType == referenceType && m.ReferenceID == referenceID {
			m := m
			out = append(out, &m)
		}
	}
	return out, nil
}

func (r movementRepo) SumSignedByProduct(_ context.Context, productID string) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, m := range r.st.movements {
		if m.ProductID == productID {
			total = total.Add(m.SignedQuantity())
		}
	}
	return total, nil
}

func paginate[T any](list []T, limit, offset int) []T {
	if offset >= len(list) {
		return nil
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}

// ── Lotes de fabricación ─────────────────────────────────────────────────────

type batchRepo struct{ st *state }

func (r batchRepo) GetForUpdate(_ context.Context, productID, batchNumber string) (*entity.Batch, error) {
	for _, b := range r.st.batches {
		if b.ProductID == productID && b.BatchNumber == batchNumber {
			b := b
			return &b, nil
		}
	}
	return nil, nil
}

func (r batchRepo) Create(_ context.Context, b *entity.Batch) error {
	for _, existing := range r.st.batches {
		if existing.ProductID == b.ProductID && existing.BatchNumber == b.BatchNumber {
			return fmt.Errorf("create batch: lote %s duplicado", b.BatchNumber)
		}
	}
	b.ID = newID(b.ID)
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now()
	}
	r.st.batches[b.ID] = *b
	return nil
}

func (r batchRepo) AddQuantity(_ context.Context, batchID string, quantity decimal.Decimal) error {
	b, ok := r.st.batches[batchID]
	if !ok {
		return fmt.Errorf("add batch quantity: lote %s no existe", batchID)
	}
	b.QuantityInitial = b.QuantityInitial.Add(quantity)
	r.st.batches[batchID] = b
	return nil
}

// ── Órdenes de compra ────────────────────────────────────────────────────────

type purchaseOrderRepo struct{ st *state }

func (r purchaseOrderRepo) Create(_ context.Context, po *entity.PurchaseOrder) error {
	po.ID = newID(po.ID)
	header := *po
	header.Items = nil
	items := make([]entity.PurchaseOrderItem, 0, len(po.Items))
	for _, it := range po.Items {
		it.ID = newID(it.ID)
		it.PurchaseOrderID = po.ID
		items = append(items, *it)
	}
	r.st.purchaseOrders[po.ID] = header
	r.st.poItems[po.ID] = items
	return nil
}

func (r purchaseOrderRepo) GetByID(_ context.Context, id string) (*entity.PurchaseOrder, error) {
	po, ok := r.st.purchaseOrders[id]
	if !ok {
		return nil, nil
	}
	for _, it := range r.st.poItems[id] {
		it := it
		po.Items = append(po.Items, &it)
	}
	return &po, nil
}

func (r purchaseOrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	return r.GetByID(ctx, id)
}

func (r purchaseOrderRepo) UpdateStatus(_ context.Context, id, status string) error {
	po, ok := r.st.purchaseOrders[id]
	if !ok {
		return fmt.Errorf("update purchase order status: %s no existe", id)
	}
	po.Status = status
	po.UpdatedAt = time.Now()
	r.st.purchaseOrders[id] = po
	return nil
}

func (r purchaseOrderRepo) UpdateItemReceived(_ context.Context, item *entity.PurchaseOrderItem) error {
	items := r.st.poItems[item.PurchaseOrderID]
	for i := range items {
		if items[i].ID == item.ID {
			items[i].QuantityReceived = item.QuantityReceived
			return nil
		}
	}
	return fmt.Errorf("update purchase order item: %s no existe", item.ID)
}

// ── Recepciones ──────────────────────────────────────────────────────────────

type receptionRepo struct{ st *state }

func (r receptionRepo) Create(_ context.Context, rec *entity.Reception) error {
	rec.ID = newID(rec.ID)
	header := *rec
	header.Items = nil
	items := make([]entity.ReceptionItem, 0, len(rec.Items))
	for _, it := range rec.Items {
		it.ID = newID(it.ID)
		it.ReceptionID = rec.ID
		items = append(items, *it)
	}
	r.st.receptions[rec.ID] = header
	r.st.receptionItems[rec.ID] = items
	return nil
}

func (r receptionRepo) GetByID(_ context.Context, id string) (*entity.Reception, error) {
	rec, ok := r.st.receptions[id]
	if !ok {
		return nil, nil
	}
	for _, it := range r.st.receptionItems[id] {
		it := it
		rec.Items = append(rec.Items, &it)
	}
	return &rec, nil
}

func (r receptionRepo) GetForUpdate(ctx context.Context, id string) (*entity.Reception, error) {
	return r.GetByID(ctx, id)
}

func (r receptionRepo) Update(_ context.Context, rec *entity.Reception) error {
	if _, ok := r.st.receptions[rec.ID]; !ok {
		return fmt.Errorf("update reception: %s no existe", rec.ID)
	}
	header := *rec
	header.Items = nil
	r.st.receptions[rec.ID] = header
	return nil
}

// ── Devoluciones a proveedor ─────────────────────────────────────────────────

type supplierReturnRepo struct{ st *state }

func (r supplierReturnRepo) Create(_ context.Context, ret *entity.SupplierReturn) error {
	ret.ID = newID(ret.ID)
	header := *ret
	header.Items = nil
	items := make([]entity.SupplierReturnItem, 0, len(ret.Items))
	for _, it := range ret.Items {
		it.ID = newID(it.ID)
		it.ReturnID = ret.ID
		items = append(items, *it)
	}
	r.st.returns[ret.ID] = header
	r.st.returnItems[ret.ID] = items
	return nil
}

func (r supplierReturnRepo) GetByID(_ context.Context, id string) (*entity.SupplierReturn, error) {
	ret, ok := r.st.returns[id]
	if !ok {
		return nil, nil
	}
	for _, it := range r.st.returnItems[id] {
		it := it
		ret.Items = append(ret.Items, &it)
	}
	return &ret, nil
}

func (r supplierReturnRepo) GetForUpdate(ctx context.Context, id string) (*entity.SupplierReturn, error) {
	return r.GetByID(ctx, id)
}

func (r supplierReturnRepo) Update(_ context.Context, ret *entity.SupplierReturn) error {
	if _, ok := r.st.returns[ret.ID]; !ok {
		return fmt.Errorf("update supplier return: %s no existe", ret.ID)
	}
	header := *ret
	header.Items = nil
	r.st.returns[ret.ID] = header
	return nil
}

type supplierRepo struct{ st *state }

func (r supplierRepo) GetByID(_ context.Context, id string) (*entity.Supplier, error) {
	s, ok := r.st.suppliers[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (r supplierRepo) GetForUpdate(ctx context.Context, id string) (*entity.Supplier, error) {
	return r.GetByID(ctx, id)
}

func (r supplierRepo) UpdateBalance(_ context.Context, id string, balance decimal.Decimal) error {
	s, ok := r.st.suppliers[id]
	if !ok {
		return fmt.Errorf("update supplier balance: %s no existe", id)
	}
	s.AccountBalance = balance
	s.UpdatedAt = time.Now()
	r.st.suppliers[id] = s
	return nil
}

// ── Pedidos ──────────────────────────────────────────────────────────────────

type orderRepo struct{ st *state }

func (r orderRepo) Create(_ context.Context, o *entity.Order) error {
	o.ID = newID(o.ID)
	header := *o
	header.Items = nil
	items := make([]entity.OrderItem, 0, len(o.Items))
	for _, it := range o.Items {
		it.ID = newID(it.ID)
		it.OrderID = o.ID
		items = append(items, *it)
	}
	r.st.orders[o.ID] = header
	r.st.orderItems[o.ID] = items
	return nil
}

func (r orderRepo) GetByID(_ context.Context, id string) (*entity.Order, error) {
	o, ok := r.st.orders[id]
	if !ok {
		return nil, nil
	}
	for _, it := range r.st.orderItems[id] {
		it := it
		o.Items = append(o.Items, &it)
	}
	return &o, nil
}

func (r orderRepo) GetForUpdate(ctx context.Context, id string) (*entity.Order, error) {
	return r.GetByID(ctx, id)
}

func (r orderRepo) Update(_ context.Context, o *entity.Order) error {
	if _, ok := r.st.orders[o.ID]; !ok {
		return fmt.Errorf("update order: %s no existe", o.ID)
	}
	header := *o
	header.Items = nil
	r.st.orders[o.ID] = header
	return nil
}

func (r orderRepo) UpdateItemPicked(_ context.Context, item *entity.OrderItem) error {
	items := r.st.orderItems[item.OrderID]
	for i := range items {
		if items[i].ID == item.ID {
			items[i].PickedQuantity = item.PickedQuantity
			return nil
		}
	}
	return fmt.Errorf("update order item: %s no existe", item.ID)
}

// ── Caja ─────────────────────────────────────────────────────────────────────

type cashRegisterRepo struct{ st *state }

func (r cashRegisterRepo) GetForUpdate(_ context.Context, id string) (*entity.CashRegister, error) {
	reg, ok := r.st.registers[id]
	if !ok {
		return nil, nil
	}
	return &reg, nil
}

func (r cashRegisterRepo) Update(_ context.Context, reg *entity.CashRegister) error {
	if _, ok := r.st.registers[reg.ID]; !ok {
		return fmt.Errorf("update cash register: %s no existe", reg.ID)
	}
	reg.UpdatedAt = time.Now()
	r.st.registers[reg.ID] = *reg
	return nil
}

type cashShiftRepo struct{ st *state }

func (r cashShiftRepo) Create(_ context.Context, s *entity.CashShift) error {
	s.ID = newID(s.ID)
	r.st.shifts[s.ID] = *s
	return nil
}

func (r cashShiftRepo) GetByID(_ context.Context, id string) (*entity.CashShift, error) {
	s, ok := r.st.shifts[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (r cashShiftRepo) GetForUpdate(ctx context.Context, id string) (*entity.CashShift, error) {
	return r.GetByID(ctx, id)
}

func (r cashShiftRepo) Update(_ context.Context, s *entity.CashShift) error {
	if _, ok := r.st.shifts[s.ID]; !ok {
		return fmt.Errorf("update cash shift: %s no existe", s.ID)
	}
	r.st.shifts[s.ID] = *s
	return nil
}

type shiftPaymentRepo struct{ st *state }

func (r shiftPaymentRepo) Create(_ context.Context, p *entity.ShiftPayment) error {
	p.ID = newID(p.ID)
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	r.st.payments = append(r.st.payments, *p)
	return nil
}

func (r shiftPaymentRepo) ListByShift(_ context.Context, shiftID string) ([]*entity.ShiftPayment, error) {
	var out []*entity.ShiftPayment
	for _, p := range r.st.payments {
		if p.ShiftID == shiftID {
			p := p
			out = append(out, &p)
		}
	}
	return out, nil
}

type transactionRepo struct{ st *state }

func (r transactionRepo) Create(_ context.Context, t *entity.FinancialTransaction) error {
	t.ID = newID(t.ID)
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	r.st.transactions = append(r.st.transactions, *t)
	return nil
}

// ── Numeración ───────────────────────────────────────────────────────────────

type sequenceRepo struct{ st *state }

func (r sequenceRepo) Next(_ context.Context, companyID, scopeKey string, floor int64) (int64, error) {
	k := seqKey{companyID, scopeKey}
	v := r.st.sequences[k]
	if floor > v {
		v = floor
	}
	v++
	r.st.sequences[k] = v
	return v, nil
}

// ── Auditoría ────────────────────────────────────────────────────────────────

type auditRepo struct{ store *Store }

func (r auditRepo) Create(_ context.Context, e *entity.AuditEntry) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	e.ID = newID(e.ID)
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	r.store.st.audit = append(r.store.st.audit, *e)
	return nil
}
