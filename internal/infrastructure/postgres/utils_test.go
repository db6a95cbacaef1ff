package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/erp-core/internal/domain"
)

func TestMapError(t *testing.T) {
	other := errors.New("conexión perdida")
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"uuid mal formado", &pgconn.PgError{Code: "22P02", Message: `invalid input syntax for type uuid: "abc"`}, domain.ErrNotFound},
		{"uuid mal formado envuelto", fmt.Errorf("get order: %w", &pgconn.PgError{Code: "22P02"}), domain.ErrNotFound},
		{"deadlock", &pgconn.PgError{Code: "40P01"}, domain.ErrLockConflict},
		{"lock timeout", &pgconn.PgError{Code: "55P03"}, domain.ErrLockConflict},
		{"serialización", &pgconn.PgError{Code: "40001"}, domain.ErrLockConflict},
		{"único", &pgconn.PgError{Code: "23505", ConstraintName: "uq_x"}, domain.ErrDuplicate},
		{"check", &pgconn.PgError{Code: "23514", ConstraintName: "inventory_quantity_non_negative"}, domain.ErrInvalidInput},
		{"dominio pasa igual", domain.ErrInsufficientStock, domain.ErrInsufficientStock},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, errors.Is(mapError(tt.err), tt.want), "got %v", mapError(tt.err))
		})
	}

	assert.Nil(t, mapError(nil))
	assert.Same(t, other, mapError(other))
	assert.Empty(t, domain.CodeOf(mapError(&pgconn.PgError{Code: "42P01"})))
}
