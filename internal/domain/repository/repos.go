package repository

// Repos agrupa los repositorios atados a una misma unidad de trabajo (transacción).
// Los componentes lo reciben como parámetro; nunca abren transacciones por su cuenta.
type Repos struct {
	Products        ProductRepository
	Stock           StockRepository
	Movements       InventoryMovementRepository
	Batches         BatchRepository
	PurchaseOrders  PurchaseOrderRepository
	Receptions      ReceptionRepository
	SupplierReturns SupplierReturnRepository
	Suppliers       SupplierRepository
	Orders          OrderRepository
	CashRegisters   CashRegisterRepository
	CashShifts      CashShiftRepository
	ShiftPayments   ShiftPaymentRepository
	Transactions    FinancialTransactionRepository
	Sequences       SequenceRepository
}
