package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ── Órdenes de compra ────────────────────────────────────────────────────────

// PurchaseOrderItemRequest línea de una orden de compra.
type PurchaseOrderItemRequest struct {
	ProductID string          `json:"product_id" validate:"required,uuid"`
	Quantity  decimal.Decimal `json:"quantity" validate:"gt=0"`
	UnitCost  decimal.Decimal `json:"unit_cost" validate:"gte=0"`
}

// CreatePurchaseOrderRequest body para POST /api/purchase-orders.
// TaxRate acepta fracción (0.19) o porcentaje (19).
type CreatePurchaseOrderRequest struct {
	SupplierID string                     `json:"supplier_id" validate:"required,uuid"`
	TaxRate    decimal.Decimal            `json:"tax_rate" validate:"gte=0"`
	Notes      string                     `json:"notes" validate:"max=1000"`
	Items      []PurchaseOrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

// UpdatePurchaseOrderStatusRequest body para PUT /api/purchase-orders/:id/status.
type UpdatePurchaseOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// PurchaseOrderItemResponse salida de una línea de orden de compra.
type PurchaseOrderItemResponse struct {
	ID               string          `json:"id"`
	ProductID        string          `json:"product_id"`
	QuantityOrdered  decimal.Decimal `json:"quantity_ordered"`
	QuantityReceived decimal.Decimal `json:"quantity_received"`
	UnitCost         decimal.Decimal `json:"unit_cost"`
	Subtotal         decimal.Decimal `json:"subtotal"`
}

// PurchaseOrderResponse salida de una orden de compra.
type PurchaseOrderResponse struct {
	ID         string                      `json:"id"`
	PONumber   string                      `json:"po_number"`
	SupplierID string                      `json:"supplier_id"`
	Status     string                      `json:"status"`
	TaxRate    decimal.Decimal             `json:"tax_rate"`
	Subtotal   decimal.Decimal             `json:"subtotal"`
	TaxAmount  decimal.Decimal             `json:"tax_amount"`
	Total      decimal.Decimal             `json:"total"`
	Notes      string                      `json:"notes,omitempty"`
	CreatedAt  time.Time                   `json:"created_at"`
	UpdatedAt  time.Time                   `json:"updated_at"`
	Items      []PurchaseOrderItemResponse `json:"items"`
}

// ── Recepciones ──────────────────────────────────────────────────────────────

// ReceptionItemRequest línea recibida. Sin location_assigned se usa la ubicación por defecto del producto.
type ReceptionItemRequest struct {
	POItemID         string          `json:"po_item_id" validate:"omitempty,uuid"`
	ProductID        string          `json:"product_id" validate:"required,uuid"`
	QuantityReceived decimal.Decimal `json:"quantity_received" validate:"gt=0"`
	UnitCost         decimal.Decimal `json:"unit_cost" validate:"gte=0"`
	LocationAssigned string          `json:"location_assigned" validate:"max=64"`
	BatchNumber      string          `json:"batch_number" validate:"max=64"`
	ExpiryDate       *time.Time      `json:"expiry_date,omitempty"`
}

// CreateReceptionRequest body para POST /api/receptions. Sin purchase_order_id es una recepción libre
// y supplier_id pasa a ser obligatorio.
type CreateReceptionRequest struct {
	PurchaseOrderID string                 `json:"purchase_order_id" validate:"omitempty,uuid"`
	SupplierID      string                 `json:"supplier_id" validate:"omitempty,uuid"`
	Notes           string                 `json:"notes" validate:"max=1000"`
	Items           []ReceptionItemRequest `json:"items" validate:"dive"`
}

// RejectReceptionRequest body para POST /api/receptions/:id/reject.
type RejectReceptionRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

// ReceptionItemResponse salida de una línea recibida.
type ReceptionItemResponse struct {
	ID               string          `json:"id"`
	POItemID         string          `json:"po_item_id,omitempty"`
	ProductID        string          `json:"product_id"`
	QuantityReceived decimal.Decimal `json:"quantity_received"`
	UnitCost         decimal.Decimal `json:"unit_cost"`
	LocationAssigned string          `json:"location_assigned"`
	BatchNumber      string          `json:"batch_number,omitempty"`
	ExpiryDate       *time.Time      `json:"expiry_date,omitempty"`
}

// ReceptionResponse salida de una recepción.
type ReceptionResponse struct {
	ID              string                  `json:"id"`
	ReceptionNumber string                  `json:"reception_number"`
	PurchaseOrderID string                  `json:"purchase_order_id,omitempty"`
	SupplierID      string                  `json:"supplier_id,omitempty"`
	Status          string                  `json:"status"`
	Notes           string                  `json:"notes,omitempty"`
	RejectionReason string                  `json:"rejection_reason,omitempty"`
	ApprovedBy      string                  `json:"approved_by,omitempty"`
	ApprovedAt      *time.Time              `json:"approved_at,omitempty"`
	CreatedAt       time.Time               `json:"created_at"`
	Items           []ReceptionItemResponse `json:"items"`
}

// ── Devoluciones a proveedor ─────────────────────────────────────────────────

// SupplierReturnItemRequest línea devuelta.
type SupplierReturnItemRequest struct {
	ProductID string          `json:"product_id" validate:"required,uuid"`
	Quantity  decimal.Decimal `json:"quantity" validate:"gt=0"`
	UnitCost  decimal.Decimal `json:"unit_cost" validate:"gte=0"`
}

// CreateSupplierReturnRequest body para POST /api/returns.
type CreateSupplierReturnRequest struct {
	SupplierID  string                      `json:"supplier_id" validate:"required,uuid"`
	ReceptionID string                      `json:"reception_id" validate:"omitempty,uuid"`
	Reason      string                      `json:"reason" validate:"max=500"`
	Items       []SupplierReturnItemRequest `json:"items" validate:"dive"`
}

// SupplierReturnItemResponse salida de una línea devuelta.
type SupplierReturnItemResponse struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// SupplierReturnResponse salida de una devolución.
type SupplierReturnResponse struct {
	ID           string                       `json:"id"`
	ReturnNumber string                       `json:"return_number"`
	SupplierID   string                       `json:"supplier_id"`
	ReceptionID  string                       `json:"reception_id,omitempty"`
	Status       string                       `json:"status"`
	Reason       string                       `json:"reason,omitempty"`
	TotalAmount  decimal.Decimal              `json:"total_amount"`
	ApprovedAt   *time.Time                   `json:"approved_at,omitempty"`
	CreatedAt    time.Time                    `json:"created_at"`
	Items        []SupplierReturnItemResponse `json:"items"`
}

// PurchaseOrderCreatedResponse respuesta de POST /api/purchase-orders.
type PurchaseOrderCreatedResponse struct {
	ID       string `json:"id"`
	PONumber string `json:"po_number"`
}

// ReceptionCreatedResponse respuesta de POST /api/receptions.
type ReceptionCreatedResponse struct {
	ID              string `json:"id"`
	ReceptionNumber string `json:"reception_number"`
}

// SupplierReturnCreatedResponse respuesta de POST /api/returns.
type SupplierReturnCreatedResponse struct {
	ID           string `json:"id"`
	ReturnNumber string `json:"return_number"`
}

// SuccessResponse respuesta de operaciones sin cuerpo propio.
type SuccessResponse struct {
	Success bool `json:"success"`
}
