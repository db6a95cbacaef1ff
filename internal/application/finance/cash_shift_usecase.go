// Package finance maneja turnos de caja y su arqueo.
package finance

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/erp-core/internal/application/dto"
	"github.com/jhoicas/erp-core/internal/application/ports"
	"github.com/jhoicas/erp-core/internal/domain"
	"github.com/jhoicas/erp-core/internal/domain/cash"
	"github.com/jhoicas/erp-core/internal/domain/entity"
	"github.com/jhoicas/erp-core/internal/domain/repository"
)

// CashShiftUseCase apertura, pagos y cierre de turnos.
// Orden de bloqueo: caja antes que turno.
type CashShiftUseCase struct {
	txRunner ports.TxRunner
	audit    ports.AuditSink
	now      func() time.Time
}

// NewCashShiftUseCase construye el caso de uso.
func NewCashShiftUseCase(txRunner ports.TxRunner, audit ports.AuditSink) *CashShiftUseCase {
	if audit == nil {
		audit = ports.NopAuditSink{}
	}
	return &CashShiftUseCase{txRunner: txRunner, audit: audit, now: time.Now}
}

// Open abre un turno en la caja. Falla con ErrAlreadyOpen si ya hay uno abierto.
func (uc *CashShiftUseCase) Open(ctx context.Context, companyID, registerID, userID string, openingBalance decimal.Decimal) (*dto.OpenShiftResponse, error) {
	if openingBalance.IsNegative() {
		return nil, domain.ErrInvalidInput.WithMessage("opening_balance no puede ser negativo")
	}
	var shift *entity.CashShift
	err := uc.txRunner.Run(ctx, func(repos repository.Repos) error {
		reg, err := uc.lockRegister(ctx, repos, companyID, registerID)
		if err != nil {
			return err
		}
		if reg.Status == entity.CashStatusOpen {
			return domain.ErrAlreadyOpen
		}
		shift = &entity.CashShift{
			CompanyID:       companyID,
			CashRegisterID:  reg.ID,
			OpeningBalance:  openingBalance,
			ExpectedBalance: openingBalance,
			Status:          entity.CashStatusOpen,
			OpenedBy:        userID,
			OpenedAt:        uc.now(),
		}
		if err := repos.CashShifts.Create(ctx, shift); err != nil {
			return err
		}
		reg.Status = entity.CashStatusOpen
		reg.CurrentShiftID = shift.ID
		return repos.CashRegisters.Update(ctx, reg)
	})
	if err != nil {
		return nil, err
	}
	uc.audit.Record(ctx, entity.AuditEntry{
		CompanyID:  companyID,
		UserID:     userID,
		Action:     "open",
		EntityType: "cash_shift",
		EntityID:   shift.ID,
		NewValues:  map[string]any{"cash_register_id": registerID, "opening_balance": openingBalance.String()},
	})
	return &dto.OpenShiftResponse{ID: shift.ID, Success: true}, nil
}

// AddPayment registra un pago en un turno abierto y devuelve el saldo esperado recalculado.
func (uc *CashShiftUseCase) AddPayment(ctx context.Context, companyID, shiftID, userID string, in dto.AddPaymentRequest) (*dto.PaymentResponse, error) {
	if err := validatePayment(in.Type, in.Amount); err != nil {
		return nil, err
	}
	var (
		payment  *entity.ShiftPayment
		expected decimal.Decimal
	)
	err := uc.txRunner.Run(ctx, func(repos repository.Repos) error {
		var err error
		payment, expected, err = uc.AddPaymentInTx(ctx, repos, companyID, shiftID, userID, in.Type, in.Amount, in.Reference)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &dto.PaymentResponse{ID: payment.ID, ExpectedBalance: expected}, nil
}

// AddPaymentInTx inserta el pago y persiste el saldo esperado dentro de la transacción del llamador.
// Falla con ErrNotFound si no existe un turno abierto con ese id.
func (uc *CashShiftUseCase) AddPaymentInTx(ctx context.Context, repos repository.Repos, companyID, shiftID, userID, paymentType string, amount decimal.Decimal, reference string) (*entity.ShiftPayment, decimal.Decimal, error) {
	if err := validatePayment(paymentType, amount); err != nil {
		return nil, decimal.Zero, err
	}
	shift, err := repos.CashShifts.GetForUpdate(ctx, shiftID)
	if err != nil {
		return nil, decimal.Zero, err
	}
	if shift == nil || shift.CompanyID != companyID || shift.Status != entity.CashStatusOpen {
		return nil, decimal.Zero, domain.ErrNotFound.WithMessage("no hay un turno abierto con ese id")
	}
	payment := &entity.ShiftPayment{
		ShiftID:   shift.ID,
		Amount:    amount,
		Type:      paymentType,
		Reference: reference,
		CreatedBy: userID,
		CreatedAt: uc.now(),
	}
	if err := repos.ShiftPayments.Create(ctx, payment); err != nil {
		return nil, decimal.Zero, err
	}
	expected, err := uc.recompute(ctx, repos, shift)
	if err != nil {
		return nil, decimal.Zero, err
	}
	return payment, expected, nil
}

// RecordSalePayment registra el cobro de un pedido en el turno, dentro de la transacción del pedido.
func (uc *CashShiftUseCase) RecordSalePayment(ctx context.Context, repos repository.Repos, companyID, shiftID, userID string, amount decimal.Decimal, reference string) error {
	_, _, err := uc.AddPaymentInTx(ctx, repos, companyID, shiftID, userID, entity.PaymentTypeSale, amount, reference)
	return err
}

// Close cierra el turno: recalcula el esperado, calcula la diferencia contra lo contado y libera la caja.
func (uc *CashShiftUseCase) Close(ctx context.Context, companyID, shiftID, userID string, actualBalance decimal.Decimal) (*dto.CloseShiftResponse, error) {
	if actualBalance.IsNegative() {
		return nil, domain.ErrInvalidInput.WithMessage("actual_balance no puede ser negativo")
	}
	var shift *entity.CashShift
	err := uc.txRunner.Run(ctx, func(repos repository.Repos) error {
		current, err := repos.CashShifts.GetByID(ctx, shiftID)
		if err != nil {
			return err
		}
		if current == nil || current.CompanyID != companyID {
			return domain.ErrNotFound.WithMessage("turno no encontrado")
		}
		reg, err := uc.lockRegister(ctx, repos, companyID, current.CashRegisterID)
		if err != nil {
			return err
		}
		shift, err = repos.CashShifts.GetForUpdate(ctx, shiftID)
		if err != nil {
			return err
		}
		if shift.Status == entity.CashStatusClosed {
			return domain.ErrAlreadyClosed
		}

		expected, err := uc.recompute(ctx, repos, shift)
		if err != nil {
			return err
		}
		diff := cash.Difference(actualBalance, expected)
		now := uc.now()
		shift.ActualBalance = &actualBalance
		shift.Difference = &diff
		shift.Status = entity.CashStatusClosed
		shift.ClosedBy = userID
		shift.ClosedAt = &now
		if err := repos.CashShifts.Update(ctx, shift); err != nil {
			return err
		}
		if reg.CurrentShiftID == shift.ID {
			reg.Status = entity.CashStatusClosed
			reg.CurrentShiftID = ""
			return repos.CashRegisters.Update(ctx, reg)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.audit.Record(ctx, entity.AuditEntry{
		CompanyID:  companyID,
		UserID:     userID,
		Action:     "close",
		EntityType: "cash_shift",
		EntityID:   shift.ID,
		NewValues: map[string]any{
			"expected_balance": shift.ExpectedBalance.String(),
			"actual_balance":   actualBalance.String(),
			"difference":       shift.Difference.String(),
		},
	})
	return &dto.CloseShiftResponse{
		ExpectedBalance: shift.ExpectedBalance,
		ActualBalance:   actualBalance,
		Difference:      *shift.Difference,
	}, nil
}

// CreateCashTransaction ajuste manual de caja: exige caja abierta, registra el pago en el turno
// actual y el asiento espejo en transactions.
func (uc *CashShiftUseCase) CreateCashTransaction(ctx context.Context, companyID, userID string, in dto.CashTransactionRequest) (*dto.PaymentResponse, error) {
	if in.Type != entity.TransactionTypeIncome && in.Type != entity.TransactionTypeExpense {
		return nil, domain.ErrInvalidInput.WithMessage("type debe ser income o expense")
	}
	if !in.Amount.IsPositive() {
		return nil, domain.ErrInvalidInput.WithMessage("amount debe ser mayor que cero")
	}
	var (
		tx       *entity.FinancialTransaction
		expected decimal.Decimal
	)
	err := uc.txRunner.Run(ctx, func(repos repository.Repos) error {
		reg, err := uc.lockRegister(ctx, repos, companyID, in.CashRegisterID)
		if err != nil {
			return err
		}
		if reg.Status != entity.CashStatusOpen || reg.CurrentShiftID == "" {
			return domain.ErrClosedRegister
		}
		payment, balance, err := uc.AddPaymentInTx(ctx, repos, companyID, reg.CurrentShiftID, userID, in.Type, in.Amount, strings.TrimSpace(in.Description))
		if err != nil {
			return err
		}
		expected = balance
		category := strings.TrimSpace(in.Category)
		if category == "" {
			category = "cash_adjustment"
		}
		tx = &entity.FinancialTransaction{
			CompanyID:     companyID,
			Type:          in.Type,
			Amount:        in.Amount,
			Category:      category,
			ReferenceType: "shift_payment",
			ReferenceID:   payment.ID,
			Description:   in.Description,
			CreatedBy:     userID,
			CreatedAt:     uc.now(),
		}
		return repos.Transactions.Create(ctx, tx)
	})
	if err != nil {
		return nil, err
	}
	uc.audit.Record(ctx, entity.AuditEntry{
		CompanyID:  companyID,
		UserID:     userID,
		Action:     "cash_transaction",
		EntityType: "transaction",
		EntityID:   tx.ID,
		NewValues:  map[string]any{"type": in.Type, "amount": in.Amount.String(), "cash_register_id": in.CashRegisterID},
	})
	return &dto.PaymentResponse{ID: tx.ID, ExpectedBalance: expected}, nil
}

// GetShift devuelve el turno con sus pagos.
func (uc *CashShiftUseCase) GetShift(ctx context.Context, companyID, shiftID string) (*dto.CashShiftResponse, error) {
	var out *dto.CashShiftResponse
	err := uc.txRunner.Run(ctx, func(repos repository.Repos) error {
		shift, err := repos.CashShifts.GetByID(ctx, shiftID)
		if err != nil {
			return err
		}
		if shift == nil || shift.CompanyID != companyID {
			return domain.ErrNotFound.WithMessage("turno no encontrado")
		}
		payments, err := repos.ShiftPayments.ListByShift(ctx, shift.ID)
		if err != nil {
			return err
		}
		out = &dto.CashShiftResponse{
			ID:              shift.ID,
			CashRegisterID:  shift.CashRegisterID,
			Status:          shift.Status,
			OpeningBalance:  shift.OpeningBalance,
			ExpectedBalance: shift.ExpectedBalance,
			ActualBalance:   shift.ActualBalance,
			Difference:      shift.Difference,
			OpenedAt:        shift.OpenedAt,
			ClosedAt:        shift.ClosedAt,
			Payments:        make([]dto.ShiftPaymentResponse, 0, len(payments)),
		}
		for _, p := range payments {
			out.Payments = append(out.Payments, dto.ShiftPaymentResponse{
				ID:        p.ID,
				Type:      p.Type,
				Amount:    p.Amount,
				Reference: p.Reference,
				CreatedAt: p.CreatedAt,
			})
		}
		return nil
	})
	return out, err
}

func (uc *CashShiftUseCase) lockRegister(ctx context.Context, repos repository.Repos, companyID, registerID string) (*entity.CashRegister, error) {
	reg, err := repos.CashRegisters.GetForUpdate(ctx, registerID)
	if err != nil {
		return nil, err
	}
	if reg == nil || reg.CompanyID != companyID {
		return nil, domain.ErrNotFound.WithMessage("caja no encontrada")
	}
	return reg, nil
}

// recompute recalcula el saldo esperado sobre todos los pagos del turno y lo persiste.
func (uc *CashShiftUseCase) recompute(ctx context.Context, repos repository.Repos, shift *entity.CashShift) (decimal.Decimal, error) {
	payments, err := repos.ShiftPayments.ListByShift(ctx, shift.ID)
	if err != nil {
		return decimal.Zero, err
	}
	shift.ExpectedBalance = cash.ExpectedBalance(shift.OpeningBalance, payments)
	if err := repos.CashShifts.Update(ctx, shift); err != nil {
		return decimal.Zero, err
	}
	return shift.ExpectedBalance, nil
}

func validatePayment(paymentType string, amount decimal.Decimal) error {
	if !cash.IsValidPaymentType(paymentType) {
		return domain.ErrInvalidInput.WithMessage("tipo de pago no válido: " + paymentType)
	}
	if !amount.IsPositive() {
		return domain.ErrInvalidInput.WithMessage("amount debe ser mayor que cero")
	}
	return nil
}
