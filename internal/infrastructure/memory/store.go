// Package memory implementa la unidad de trabajo y los repositorios en memoria.
// Las transacciones se serializan con un mutex; cada Run trabaja sobre una copia del
// estado que solo reemplaza al original si fn termina sin error.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/erp-core/internal/application/ports"
	"github.com/jhoicas/erp-core/internal/domain/entity"
	"github.com/jhoicas/erp-core/internal/domain/repository"
)

var _ ports.TxRunner = (*Store)(nil)

type lotKey struct{ productID, location string }

type seqKey struct{ companyID, scope string }

type state struct {
	products       map[string]entity.Product
	lots           map[lotKey]entity.StockLot
	movements      []entity.InventoryMovement
	batches        map[string]entity.Batch
	purchaseOrders map[string]entity.PurchaseOrder
	poItems        map[string][]entity.PurchaseOrderItem
	receptions     map[string]entity.Reception
	receptionItems map[string][]entity.ReceptionItem
	returns        map[string]entity.SupplierReturn
	returnItems    map[string][]entity.SupplierReturnItem
	suppliers      map[string]entity.Supplier
	orders         map[string]entity.Order
	orderItems     map[string][]entity.OrderItem
	registers      map[string]entity.CashRegister
	shifts         map[string]entity.CashShift
	payments       []entity.ShiftPayment
	transactions   []entity.FinancialTransaction
	sequences      map[seqKey]int64
	audit          []entity.AuditEntry
}

func newState() *state {
	return &state{
		products:       map[string]entity.Product{},
		lots:           map[lotKey]entity.StockLot{},
		batches:        map[string]entity.Batch{},
		purchaseOrders: map[string]entity.PurchaseOrder{},
		poItems:        map[string][]entity.PurchaseOrderItem{},
		receptions:     map[string]entity.Reception{},
		receptionItems: map[string][]entity.ReceptionItem{},
		returns:        map[string]entity.SupplierReturn{},
		returnItems:    map[string][]entity.SupplierReturnItem{},
		suppliers:      map[string]entity.Supplier{},
		orders:         map[string]entity.Order{},
		orderItems:     map[string][]entity.OrderItem{},
		registers:      map[string]entity.CashRegister{},
		shifts:         map[string]entity.CashShift{},
		sequences:      map[seqKey]int64{},
	}
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneSliceMap[K comparable, V any](m map[K][]V) map[K][]V {
	out := make(map[K][]V, len(m))
	for k, v := range m {
		out[k] = append([]V(nil), v...)
	}
	return out
}

func (s *state) clone() *state {
	return &state{
		products:       cloneMap(s.products),
		lots:           cloneMap(s.lots),
		movements:      append([]entity.InventoryMovement(nil), s.movements...),
		batches:        cloneMap(s.batches),
		purchaseOrders: cloneMap(s.purchaseOrders),
		poItems:        cloneSliceMap(s.poItems),
		receptions:     cloneMap(s.receptions),
		receptionItems: cloneSliceMap(s.receptionItems),
		returns:        cloneMap(s.returns),
		returnItems:    cloneSliceMap(s.returnItems),
		suppliers:      cloneMap(s.suppliers),
		orders:         cloneMap(s.orders),
		orderItems:     cloneSliceMap(s.orderItems),
		registers:      cloneMap(s.registers),
		shifts:         cloneMap(s.shifts),
		payments:       append([]entity.ShiftPayment(nil), s.payments...),
		transactions:   append([]entity.FinancialTransaction(nil), s.transactions...),
		sequences:      cloneMap(s.sequences),
		audit:          append([]entity.AuditEntry(nil), s.audit...),
	}
}

func (s *state) repos() repository.Repos {
	return repository.Repos{
		Products:        productRepo{s},
		Stock:           stockRepo{s},
		Movements:       movementRepo{s},
		Batches:         batchRepo{s},
		PurchaseOrders:  purchaseOrderRepo{s},
		Receptions:      receptionRepo{s},
		SupplierReturns: supplierReturnRepo{s},
		Suppliers:       supplierRepo{s},
		Orders:          orderRepo{s},
		CashRegisters:   cashRegisterRepo{s},
		CashShifts:      cashShiftRepo{s},
		ShiftPayments:   shiftPaymentRepo{s},
		Transactions:    transactionRepo{s},
		Sequences:       sequenceRepo{s},
	}
}

// Store unidad de trabajo en memoria. Útil para tests y demos sin base de datos.
type Store struct {
	mu sync.Mutex
	st *state
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{st: newState()}
}

// Run ejecuta fn sobre una copia del estado; la copia se publica solo si fn no devuelve error.
func (s *Store) Run(ctx context.Context, fn func(repos repository.Repos) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	work := s.st.clone()
	if err := fn(work.repos()); err != nil {
		return err
	}
	s.st = work
	return nil
}

// AuditRepository repositorio de auditoría que escribe fuera de cualquier transacción.
func (s *Store) AuditRepository() repository.AuditRepository {
	return auditRepo{store: s}
}

// ── Datos de prueba ──────────────────────────────────────────────────────────

// AddProduct registra un producto.
func (s *Store) AddProduct(p entity.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.products[p.ID] = p
}

// SeedStock deja quantity en el lote y registra el ajuste de apertura correspondiente,
// de modo que lotes y libro sigan conciliando.
func (s *Store) SeedStock(productID, location string, quantity decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := lotKey{productID, location}
	lot := s.st.lots[k]
	lot.ProductID, lot.Location = productID, location
	lot.Quantity = lot.Quantity.Add(quantity)
	lot.UpdatedAt = time.Now()
	s.st.lots[k] = lot
	s.st.movements = append(s.st.movements, entity.InventoryMovement{
		ID:            uuid.New().String(),
		CompanyID:     s.st.products[productID].CompanyID,
		Type:          entity.MovementTypeAdjustment,
		ProductID:     productID,
		ToLocation:    location,
		Quantity:      quantity,
		Reason:        "saldo inicial",
		ReferenceType: "seed",
		CreatedAt:     time.Now(),
	})
}

// AddSupplier registra un proveedor.
func (s *Store) AddSupplier(sup entity.Supplier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.suppliers[sup.ID] = sup
}

// AddCashRegister registra una caja.
func (s *Store) AddCashRegister(r entity.CashRegister) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.Status == "" {
		r.Status = entity.CashStatusClosed
	}
	s.st.registers[r.ID] = r
}

// ── Inspección ───────────────────────────────────────────────────────────────

// Lots devuelve los lotes del producto ordenados por ubicación.
func (s *Store) Lots(productID string) []entity.StockLot {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entity.StockLot
	for k, l := range s.st.lots {
		if k.productID == productID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Location < out[j].Location })
	return out
}

// LotQuantity cantidad del lote, cero si no existe.
func (s *Store) LotQuantity(productID, location string) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.lots[lotKey{productID, location}].Quantity
}

// Movements movimientos del producto en orden de inserción.
func (s *Store) Movements(productID string) []entity.InventoryMovement {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entity.InventoryMovement
	for _, m := range s.st.movements {
		if m.ProductID == productID {
			out = append(out, m)
		}
	}
	return out
}

// Transactions asientos financieros en orden de inserción.
func (s *Store) Transactions() []entity.FinancialTransaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entity.FinancialTransaction(nil), s.st.transactions...)
}

// Supplier devuelve una copia del proveedor.
func (s *Store) Supplier(id string) entity.Supplier {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.suppliers[id]
}

// Product devuelve una copia del producto.
func (s *Store) Product(id string) entity.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.products[id]
}

// CashRegister devuelve una copia de la caja.
func (s *Store) CashRegister(id string) entity.CashRegister {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.registers[id]
}

// Batches lotes de fabricación de un producto.
func (s *Store) Batches(productID string) []entity.Batch {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entity.Batch
	for _, b := range s.st.batches {
		if b.ProductID == productID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BatchNumber < out[j].BatchNumber })
	return out
}

// AuditEntries entradas de auditoría en orden de inserción.
func (s *Store) AuditEntries() []entity.AuditEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entity.AuditEntry(nil), s.st.audit...)
}

func newID(id string) string {
	if id == "" {
		return uuid.New().String()
	}
	return id
}
