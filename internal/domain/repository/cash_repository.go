package repository

import (
	"context"

	"github.com/jhoicas/erp-core/internal/domain/entity"
)

// CashRegisterRepository cajas registradoras.
type CashRegisterRepository interface {
	GetForUpdate(ctx context.Context, id string) (*entity.CashRegister, error)
	Update(ctx context.Context, r *entity.CashRegister) error
}

// CashShiftRepository turnos de caja.
type CashShiftRepository interface {
	Create(ctx context.Context, s *entity.CashShift) error
	GetByID(ctx context.Context, id string) (*entity.CashShift, error)
	GetForUpdate(ctx context.Context, id string) (*entity.CashShift, error)
	Update(ctx context.Context, s *entity.CashShift) error
}

// ShiftPaymentRepository pagos de turno (solo inserción).
type ShiftPaymentRepository interface {
	Create(ctx context.Context, p *entity.ShiftPayment) error
	ListByShift(ctx context.Context, shiftID string) ([]*entity.ShiftPayment, error)
}

// FinancialTransactionRepository asientos financieros (solo inserción).
type FinancialTransactionRepository interface {
	Create(ctx context.Context, t *entity.FinancialTransaction) error
}
