// Package sequence asigna números de documento consecutivos por empresa y alcance.
package sequence

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/erp-core/internal/domain/repository"
)

// Alcances de numeración y sus prefijos.
const (
	ScopePurchaseOrder  = "purchase_order"
	ScopeReception      = "reception"
	ScopeSupplierReturn = "supplier_return"
	ScopeOrder          = "order"
)

var prefixes = map[string]string{
	ScopePurchaseOrder:  "PO",
	ScopeReception:      "REC",
	ScopeSupplierReturn: "RET",
	ScopeOrder:          "ORD",
}

// Allocator genera números monotónicos. Debe llamarse dentro de la misma transacción
// que inserta el documento: el contador queda bloqueado hasta el commit, y un rollback
// libera el número.
type Allocator struct {
	now func() time.Time
}

// NewAllocator construye el asignador.
func NewAllocator() *Allocator {
	return &Allocator{now: time.Now}
}

// Next devuelve max(contador, floor)+1 para scopeKey. floor es el máximo ya usado en la
// tabla destino; con contadores inicializados por migración se pasa 0.
func (a *Allocator) Next(ctx context.Context, repos repository.Repos, companyID, scopeKey string, floor int64) (int64, error) {
	n, err := repos.Sequences.Next(ctx, companyID, scopeKey, floor)
	if err != nil {
		return 0, fmt.Errorf("sequence %s: %w", scopeKey, err)
	}
	return n, nil
}

// NextNumber asigna y formatea el siguiente número del año en curso, ej. PO-2024-00001.
func (a *Allocator) NextNumber(ctx context.Context, repos repository.Repos, companyID, scope string) (string, error) {
	prefix, ok := prefixes[scope]
	if !ok {
		return "", fmt.Errorf("sequence: alcance desconocido %q", scope)
	}
	year := a.now().Year()
	n, err := a.Next(ctx, repos, companyID, ScopeKey(scope, year), 0)
	if err != nil {
		return "", err
	}
	return Format(prefix, year, n), nil
}

// ScopeKey clave del contador: <alcance>:<año>.
func ScopeKey(scope string, year int) string {
	return fmt.Sprintf("%s:%d", scope, year)
}

// Format PREFIJO-AAAA-NNNNN.
func Format(prefix string, year int, n int64) string {
	return fmt.Sprintf("%s-%d-%05d", prefix, year, n)
}
