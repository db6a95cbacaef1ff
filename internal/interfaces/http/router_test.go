package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/erp-core/internal/application/dto"
	"github.com/jhoicas/erp-core/internal/application/finance"
	"github.com/jhoicas/erp-core/internal/application/inventory"
	"github.com/jhoicas/erp-core/internal/application/ports"
	"github.com/jhoicas/erp-core/internal/application/procurement"
	"github.com/jhoicas/erp-core/internal/application/sales"
	"github.com/jhoicas/erp-core/internal/application/sequence"
	"github.com/jhoicas/erp-core/internal/domain/entity"
	"github.com/jhoicas/erp-core/internal/domain/repository"
	"github.com/jhoicas/erp-core/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/erp-core/internal/interfaces/http"
	"github.com/jhoicas/erp-core/pkg/logger"
)

const (
	productID  = "10000000-0000-0000-0000-000000000001"
	supplierID = "20000000-0000-0000-0000-000000000001"
	registerID = "30000000-0000-0000-0000-000000000001"
)

type stubRenderer struct{}

func (stubRenderer) RenderPickingList(context.Context, ports.PickingList) ([]byte, error) {
	return []byte("%PDF-1.4 stub"), nil
}

// brokenTx simula una falla de infraestructura.
type brokenTx struct{}

func (brokenTx) Run(context.Context, func(repository.Repos) error) error {
	return errors.New("conexión perdida")
}

func newApp(tx ports.TxRunner) *fiber.App {
	ledger := inventory.NewLedger(nil)
	seq := sequence.NewAllocator()
	cash := finance.NewCashShiftUseCase(tx, nil)
	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler(logger.Nop())})
	apphttp.Router(app, apphttp.RouterDeps{
		PurchaseOrders:  procurement.NewPurchaseOrderUseCase(tx, seq, nil),
		Receptions:      procurement.NewReceptionUseCase(tx, ledger, seq, nil, nil, procurement.ReceptionOptions{}),
		SupplierReturns: procurement.NewSupplierReturnUseCase(tx, ledger, seq, nil),
		Orders:          sales.NewOrderUseCase(tx, ledger, seq, cash, stubRenderer{}, nil),
		CashShifts:      cash,
		Inventory:       inventory.NewMovementUseCase(tx, ledger, nil),
		JWTSecret:       testJWTSecret,
	})
	return app
}

// Producto con 2 unidades en A-01, un proveedor y una caja cerrada.
func seededApp(t *testing.T) (*memory.Store, *fiber.App) {
	t.Helper()
	store := memory.NewStore()
	store.AddProduct(entity.Product{ID: productID, CompanyID: testCompanyID, SKU: "SKU-1", Name: "Tornillo", Price: decimal.NewFromInt(10), DefaultLocation: "A-01"})
	store.SeedStock(productID, "A-01", decimal.NewFromInt(2))
	store.AddSupplier(entity.Supplier{ID: supplierID, CompanyID: testCompanyID, Name: "Acme"})
	store.AddCashRegister(entity.CashRegister{ID: registerID, CompanyID: testCompanyID, Name: "Caja 1"})
	return store, newApp(store)
}

func call(t *testing.T, app *fiber.App, method, path, role string, body any) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", tokenForRole(t, role))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

func errorCode(t *testing.T, raw []byte) dto.ErrorResponse {
	t.Helper()
	var e dto.ErrorResponse
	require.NoError(t, json.Unmarshal(raw, &e), string(raw))
	return e
}

func orderBody(qty int64) map[string]any {
	return map[string]any{"items": []map[string]any{{"product_id": productID, "quantity": qty}}}
}

func TestOrders_CrearYStockInsuficiente(t *testing.T) {
	store, app := seededApp(t)

	resp, raw := call(t, app, http.MethodPost, "/api/orders", "vendedor", orderBody(3))
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "insufficient_stock", errorCode(t, raw).Code)
	assert.True(t, store.LotQuantity(productID, "A-01").Equal(decimal.NewFromInt(2)), "sin cambios en el stock")

	resp, raw = call(t, app, http.MethodPost, "/api/orders", "vendedor", orderBody(2))
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	var created dto.OrderCreatedResponse
	require.NoError(t, json.Unmarshal(raw, &created))
	assert.NotEmpty(t, created.OrderNumber)
	assert.True(t, created.TotalAmount.Equal(decimal.NewFromInt(20)))
	assert.True(t, store.LotQuantity(productID, "A-01").IsZero())

	resp, raw = call(t, app, http.MethodPut, "/api/orders/"+created.ID+"/status", "bodeguero", map[string]any{"status": "delivered"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "invalid_transition", errorCode(t, raw).Code)

	resp, raw = call(t, app, http.MethodGet, "/api/orders/"+created.ID+"/picking-list", "bodeguero", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(raw, []byte("%PDF")))
}

func TestOrders_ValidacionDelCuerpo(t *testing.T) {
	_, app := seededApp(t)

	resp, raw := call(t, app, http.MethodPost, "/api/orders", "vendedor", orderBody(0))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	e := errorCode(t, raw)
	assert.Equal(t, "validation", e.Code)
	require.Len(t, e.Details, 1)
	assert.Equal(t, "items[0].quantity", e.Details[0].Field)

	resp, raw = call(t, app, http.MethodPost, "/api/orders", "vendedor", map[string]any{"items": []any{}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "validation", errorCode(t, raw).Code)
}

func TestOrders_NoEncontrado(t *testing.T) {
	_, app := seededApp(t)
	resp, raw := call(t, app, http.MethodGet, "/api/orders/40000000-0000-0000-0000-000000000009", "admin", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "not_found", errorCode(t, raw).Code)
}

func TestReceptions_CodigosPropios(t *testing.T) {
	store, app := seededApp(t)

	resp, raw := call(t, app, http.MethodPost, "/api/receptions", "bodeguero", map[string]any{
		"supplier_id": supplierID,
		"items":       []map[string]any{{"product_id": productID, "quantity_received": 5, "unit_cost": 3}},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	var rec dto.ReceptionCreatedResponse
	require.NoError(t, json.Unmarshal(raw, &rec))

	resp, raw = call(t, app, http.MethodPost, "/api/receptions/"+rec.ID+"/approve", "bodeguero", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	assert.JSONEq(t, `{"success":true}`, string(raw))
	assert.True(t, store.LotQuantity(productID, "A-01").Equal(decimal.NewFromInt(7)))

	resp, raw = call(t, app, http.MethodPost, "/api/receptions/"+rec.ID+"/approve", "bodeguero", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "reception_already_approved", errorCode(t, raw).Code)
	assert.True(t, store.LotQuantity(productID, "A-01").Equal(decimal.NewFromInt(7)), "la segunda aprobación no suma")

	resp, raw = call(t, app, http.MethodPost, "/api/receptions", "bodeguero", map[string]any{"supplier_id": supplierID})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	require.NoError(t, json.Unmarshal(raw, &rec))
	resp, raw = call(t, app, http.MethodPost, "/api/receptions/"+rec.ID+"/approve", "admin", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "reception_without_items", errorCode(t, raw).Code)
}

func TestReceptions_VendedorNoAutorizado(t *testing.T) {
	_, app := seededApp(t)
	resp, raw := call(t, app, http.MethodPost, "/api/receptions", "vendedor", map[string]any{"supplier_id": supplierID})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "forbidden", errorCode(t, raw).Code)
}

func TestCash_AperturaDobleYArqueo(t *testing.T) {
	_, app := seededApp(t)
	path := "/api/cash-registers/" + registerID + "/open"

	resp, raw := call(t, app, http.MethodPost, path, "vendedor", map[string]any{"opening_balance": 100})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	var opened dto.OpenShiftResponse
	require.NoError(t, json.Unmarshal(raw, &opened))

	resp, raw = call(t, app, http.MethodPost, path, "vendedor", map[string]any{"opening_balance": 5})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "already_open", errorCode(t, raw).Code)

	resp, raw = call(t, app, http.MethodPost, "/api/cash-shifts/"+opened.ID+"/payments", "vendedor", map[string]any{"type": "sale", "amount": 50})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))

	resp, raw = call(t, app, http.MethodPost, "/api/cash-shifts/"+opened.ID+"/close", "vendedor", map[string]any{"actual_balance": 140})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	var closed dto.CloseShiftResponse
	require.NoError(t, json.Unmarshal(raw, &closed))
	assert.True(t, closed.ExpectedBalance.Equal(decimal.NewFromInt(150)))
	assert.True(t, closed.Difference.Equal(decimal.NewFromInt(-10)))

	resp, raw = call(t, app, http.MethodPost, "/api/cash-shifts/"+opened.ID+"/close", "vendedor", map[string]any{"actual_balance": 140})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "already_closed", errorCode(t, raw).Code)

	resp, raw = call(t, app, http.MethodPost, "/api/cash-transactions", "admin", map[string]any{"cash_register_id": registerID, "type": "income", "amount": 1})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "closed_register", errorCode(t, raw).Code)
}

func TestInventory_MovimientoYConciliacion(t *testing.T) {
	_, app := seededApp(t)

	resp, raw := call(t, app, http.MethodPost, "/api/inventory/movements", "bodeguero", map[string]any{
		"product_id": productID, "type": "transfer", "from_location": "A-01", "to_location": "B-02", "quantity": 1,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))

	resp, raw = call(t, app, http.MethodPost, "/api/inventory/movements", "vendedor", map[string]any{
		"product_id": productID, "type": "adjustment_in", "location": "A-01", "quantity": 1,
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode, string(raw))

	resp, raw = call(t, app, http.MethodGet, "/api/inventory/products/"+productID+"/stock", "vendedor", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	var stock dto.ProductStockResponse
	require.NoError(t, json.Unmarshal(raw, &stock))
	assert.True(t, stock.Total.Equal(decimal.NewFromInt(2)))
	assert.Len(t, stock.Lots, 2)

	resp, raw = call(t, app, http.MethodGet, "/api/inventory/products/"+productID+"/movements?limit=10", "admin", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	var list dto.MovementListResponse
	require.NoError(t, json.Unmarshal(raw, &list))
	require.Len(t, list.Items, 2)
	assert.Equal(t, entity.MovementTypeTransfer, list.Items[0].Type)

	resp, raw = call(t, app, http.MethodGet, "/api/inventory/products/"+productID+"/reconciliation", "admin", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	var rec dto.ReconciliationResponse
	require.NoError(t, json.Unmarshal(raw, &rec))
	assert.True(t, rec.Drift.IsZero())
}

func TestErrorInterno_NoExponeDetalle(t *testing.T) {
	app := newApp(brokenTx{})
	resp, raw := call(t, app, http.MethodGet, "/api/inventory/products/"+productID+"/stock", "admin", nil)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	e := errorCode(t, raw)
	assert.Equal(t, "internal", e.Code)
	assert.NotContains(t, e.Message, "conexión perdida")
}
