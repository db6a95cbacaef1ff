package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/erp-core/internal/application/finance"
	"github.com/jhoicas/erp-core/internal/application/inventory"
	"github.com/jhoicas/erp-core/internal/application/procurement"
	"github.com/jhoicas/erp-core/internal/application/sales"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	PurchaseOrders  *procurement.PurchaseOrderUseCase
	Receptions      *procurement.ReceptionUseCase
	SupplierReturns *procurement.SupplierReturnUseCase
	Orders          *sales.OrderUseCase
	CashShifts      *finance.CashShiftUseCase
	Inventory       *inventory.MovementUseCase
	JWTSecret       string
}

// Router registra las rutas de la API. Todas exigen Bearer Token y rol.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	warehouse := RequireRole(RoleAdmin, RoleBodeguero)
	sellers := RequireRole(RoleAdmin, RoleVendedor)
	anyRole := RequireRole(RoleAdmin, RoleBodeguero, RoleVendedor)

	// Compras
	proc := NewProcurementHandler(deps.PurchaseOrders, deps.Receptions, deps.SupplierReturns)
	po := api.Group("/purchase-orders", warehouse)
	po.Post("/", proc.CreatePurchaseOrder)
	po.Get("/:id", proc.GetPurchaseOrder)
	po.Put("/:id/status", proc.UpdatePurchaseOrderStatus)

	rec := api.Group("/receptions", warehouse)
	rec.Post("/", proc.CreateReception)
	rec.Get("/:id", proc.GetReception)
	rec.Post("/:id/approve", proc.ApproveReception)
	rec.Post("/:id/reject", proc.RejectReception)

	ret := api.Group("/returns", warehouse)
	ret.Post("/", proc.CreateSupplierReturn)
	ret.Get("/:id", proc.GetSupplierReturn)
	ret.Post("/:id/approve", proc.ApproveSupplierReturn)

	// Pedidos
	orderHandler := NewOrderHandler(deps.Orders)
	orders := api.Group("/orders", anyRole)
	orders.Post("/", orderHandler.Create)
	orders.Get("/:id", orderHandler.Get)
	orders.Get("/:id/picking-list", orderHandler.PickingList)
	orders.Put("/:id/status", orderHandler.UpdateStatus)
	orders.Post("/:id/items/:itemId/pick", orderHandler.PickItem)

	// Caja
	cash := NewCashHandler(deps.CashShifts)
	api.Post("/cash-registers/:id/open", sellers, cash.OpenShift)
	shifts := api.Group("/cash-shifts", sellers)
	shifts.Get("/:id", cash.GetShift)
	shifts.Post("/:id/payments", cash.AddPayment)
	shifts.Post("/:id/close", cash.CloseShift)
	api.Post("/cash-transactions", sellers, cash.CreateTransaction)

	// Inventario: lecturas para todos, escrituras para bodega
	inv := NewInventoryHandler(deps.Inventory)
	invGroup := api.Group("/inventory")
	invGroup.Post("/movements", warehouse, inv.RegisterMovement)
	invGroup.Get("/products/:id/stock", anyRole, inv.GetStock)
	invGroup.Get("/products/:id/movements", anyRole, inv.ListMovements)
	invGroup.Get("/products/:id/reconciliation", anyRole, inv.Reconcile)
}
