package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/erp-core/internal/domain"
	"github.com/jhoicas/erp-core/internal/domain/entity"
	"github.com/jhoicas/erp-core/internal/domain/repository"
)

var (
	_ repository.CashRegisterRepository         = (*CashRegisterRepo)(nil)
	_ repository.CashShiftRepository            = (*CashShiftRepo)(nil)
	_ repository.ShiftPaymentRepository         = (*ShiftPaymentRepo)(nil)
	_ repository.FinancialTransactionRepository = (*FinancialTransactionRepo)(nil)
)

// ── Cajas ────────────────────────────────────────────────────────────────────

// CashRegisterRepo cajas registradoras.
type CashRegisterRepo struct {
	q Querier
}

// NewCashRegisterRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCashRegisterRepository(q Querier) *CashRegisterRepo {
	return &CashRegisterRepo{q: q}
}

// GetForUpdate bloquea la caja; nil, nil si no existe.
func (r *CashRegisterRepo) GetForUpdate(ctx context.Context, id string) (*entity.CashRegister, error) {
	var reg entity.CashRegister
	var shiftID *string
	err := r.q.QueryRow(ctx, `
		SELECT id, company_id, name, status, current_shift_id, updated_at
		FROM cash_registers WHERE id = $1
		FOR UPDATE`, id).Scan(&reg.ID, &reg.CompanyID, &reg.Name, &reg.Status, &shiftID, &reg.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cash register: %w", err)
	}
	reg.CurrentShiftID = fromNull(shiftID)
	return &reg, nil
}

// Update persiste estado y turno actual.
func (r *CashRegisterRepo) Update(ctx context.Context, reg *entity.CashRegister) error {
	reg.UpdatedAt = time.Now()
	tag, err := r.q.Exec(ctx, `
		UPDATE cash_registers SET status = $2, current_shift_id = $3, updated_at = $4 WHERE id = $1`,
		reg.ID, reg.Status, nullIfEmpty(reg.CurrentShiftID), reg.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update cash register: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ── Turnos ───────────────────────────────────────────────────────────────────

// CashShiftRepo turnos de caja.
type CashShiftRepo struct {
	q Querier
}

// NewCashShiftRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCashShiftRepository(q Querier) *CashShiftRepo {
	return &CashShiftRepo{q: q}
}

// Create abre un turno. El índice único parcial sobre (cash_register_id) WHERE status = 'open'
// impide dos turnos abiertos en la misma caja.
func (r *CashShiftRepo) Create(ctx context.Context, s *entity.CashShift) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	if s.OpenedAt.IsZero() {
		s.OpenedAt = time.Now()
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO cash_shifts (id, company_id, cash_register_id, opening_balance, expected_balance, actual_balance,
			difference, status, opened_by, closed_by, opened_at, closed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		s.ID, s.CompanyID, s.CashRegisterID, s.OpeningBalance, s.ExpectedBalance, s.ActualBalance,
		s.Difference, s.Status, nullIfEmpty(s.OpenedBy), nullIfEmpty(s.ClosedBy), s.OpenedAt, s.ClosedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyOpen
		}
		return fmt.Errorf("insert cash shift: %w", err)
	}
	return nil
}

// GetByID devuelve el turno o nil, nil.
func (r *CashShiftRepo) GetByID(ctx context.Context, id string) (*entity.CashShift, error) {
	return r.get(ctx, id, "")
}

// GetForUpdate bloquea la fila del turno.
func (r *CashShiftRepo) GetForUpdate(ctx context.Context, id string) (*entity.CashShift, error) {
	return r.get(ctx, id, " FOR UPDATE")
}

func (r *CashShiftRepo) get(ctx context.Context, id, lock string) (*entity.CashShift, error) {
	var s entity.CashShift
	var openedBy, closedBy *string
	err := r.q.QueryRow(ctx, `
		SELECT id, company_id, cash_register_id, opening_balance, expected_balance, actual_balance, difference,
			status, opened_by, closed_by, opened_at, closed_at
		FROM cash_shifts WHERE id = $1`+lock, id).Scan(
		&s.ID, &s.CompanyID, &s.CashRegisterID, &s.OpeningBalance, &s.ExpectedBalance, &s.ActualBalance, &s.Difference,
		&s.Status, &openedBy, &closedBy, &s.OpenedAt, &s.ClosedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cash shift: %w", err)
	}
	s.OpenedBy, s.ClosedBy = fromNull(openedBy), fromNull(closedBy)
	return &s, nil
}

// Update persiste saldos, estado y cierre.
func (r *CashShiftRepo) Update(ctx context.Context, s *entity.CashShift) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE cash_shifts
		SET expected_balance = $2, actual_balance = $3, difference = $4, status = $5, closed_by = $6, closed_at = $7
		WHERE id = $1`,
		s.ID, s.ExpectedBalance, s.ActualBalance, s.Difference, s.Status, nullIfEmpty(s.ClosedBy), s.ClosedAt,
	)
	if err != nil {
		return fmt.Errorf("update cash shift: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ── Pagos de turno ───────────────────────────────────────────────────────────

// ShiftPaymentRepo pagos de turno, solo inserción.
type ShiftPaymentRepo struct {
	q Querier
}

// NewShiftPaymentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewShiftPaymentRepository(q Querier) *ShiftPaymentRepo {
	return &ShiftPaymentRepo{q: q}
}

// Create inserta un pago.
func (r *ShiftPaymentRepo) Create(ctx context.Context, p *entity.ShiftPayment) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO shift_payments (id, shift_id, amount, type, reference, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		p.ID, p.ShiftID, p.Amount, p.Type, p.Reference, nullIfEmpty(p.CreatedBy), p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert shift payment: %w", err)
	}
	return nil
}

// ListByShift pagos del turno en orden de registro.
func (r *ShiftPaymentRepo) ListByShift(ctx context.Context, shiftID string) ([]*entity.ShiftPayment, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, shift_id, amount, type, reference, created_by, created_at
		FROM shift_payments WHERE shift_id = $1
		ORDER BY seq`, shiftID)
	if err != nil {
		return nil, fmt.Errorf("list shift payments: %w", err)
	}
	defer rows.Close()
	var list []*entity.ShiftPayment
	for rows.Next() {
		var p entity.ShiftPayment
		var createdBy *string
		if err := rows.Scan(&p.ID, &p.ShiftID, &p.Amount, &p.Type, &p.Reference, &createdBy, &p.CreatedAt); err != nil {
			return nil, err
		}
		p.CreatedBy = fromNull(createdBy)
		list = append(list, &p)
	}
	return list, rows.Err()
}

// ── Transacciones financieras ────────────────────────────────────────────────

// FinancialTransactionRepo tabla transactions, solo inserción.
type FinancialTransactionRepo struct {
	q Querier
}

// NewFinancialTransactionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewFinancialTransactionRepository(q Querier) *FinancialTransactionRepo {
	return &FinancialTransactionRepo{q: q}
}

// Create inserta el asiento.
func (r *FinancialTransactionRepo) Create(ctx context.Context, t *entity.FinancialTransaction) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO transactions (id, company_id, type, amount, category, reference_type, reference_id, description, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		t.ID, t.CompanyID, t.Type, t.Amount, t.Category, t.ReferenceType, nullIfEmpty(t.ReferenceID),
		t.Description, nullIfEmpty(t.CreatedBy), t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}
