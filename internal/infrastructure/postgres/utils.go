package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/erp-core/internal/domain"
)

// Códigos SQLSTATE que se traducen a errores de dominio.
const (
	pgInvalidTextRepr      = "22P02"
	pgUniqueViolation      = "23505"
	pgCheckViolation       = "23514"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgLockNotAvailable     = "55P03"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return strings.Contains(err.Error(), pgUniqueViolation)
}

// mapError convierte errores de bloqueo y de constraint en errores de dominio.
// Los errores de dominio y los desconocidos pasan sin cambios.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	var de *domain.DomainError
	if errors.As(err, &de) {
		return err
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgDeadlockDetected, pgLockNotAvailable, pgSerializationFailure:
		return fmt.Errorf("%w: %s", domain.ErrLockConflict, pgErr.Message)
	case pgUniqueViolation:
		return fmt.Errorf("%w: %s", domain.ErrDuplicate, pgErr.ConstraintName)
	case pgInvalidTextRepr:
		// Id mal formado contra una columna UUID: para el cliente es un recurso inexistente.
		return fmt.Errorf("%w: %s", domain.ErrNotFound, pgErr.Message)
	case pgCheckViolation:
		// inventory_quantity_non_negative y similares: el dominio valida antes, esto es la última barrera.
		return fmt.Errorf("%w: %s", domain.ErrInvalidInput, pgErr.ConstraintName)
	}
	return err
}

// nullIfEmpty mapea "" a NULL para columnas UUID opcionales.
func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func fromNull(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
