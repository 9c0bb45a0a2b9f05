package balance

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository mixes two access paths on purpose: mutations and in-transaction
// reads go through database/sql so they bind to the caller's transaction,
// list/read endpoints outside any transaction use the gorm query builder.
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, b *LeaveBalance) error
	FindForUpdate(ctx context.Context, employeeID uuid.UUID, leaveType string) (*LeaveBalance, error)
	UpdateBuckets(ctx context.Context, b *LeaveBalance) error
	CreateTransaction(ctx context.Context, t *BalanceTransaction) error
	FindByEmployee(ctx context.Context, employeeID string) ([]LeaveBalance, error)
	ListTransactions(ctx context.Context, balanceID string) ([]BalanceTransaction, error)
}

type repository struct {
	gdb *gorm.DB
	db  *sql.DB
	tx  *sql.Tx
}

func NewRepository(gdb *gorm.DB, db *sql.DB) Repository {
	return &repository{gdb: gdb, db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{gdb: r.gdb, db: r.db, tx: tx}
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (r *repository) execer() execer {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

func (r *repository) Create(ctx context.Context, b *LeaveBalance) error {
	query := `
        INSERT INTO leave_balances (
            id, employee_id, leave_type, available, held, consumed, as_of, created_at, updated_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
    `
	_, err := r.execer().ExecContext(
		ctx, query,
		b.ID, b.EmployeeID, b.LeaveType, b.Available, b.Held, b.Consumed, b.AsOf,
	)
	return err
}

func (r *repository) FindForUpdate(ctx context.Context, employeeID uuid.UUID, leaveType string) (*LeaveBalance, error) {
	query := `
        SELECT id, employee_id, leave_type, available, held, consumed, as_of
        FROM leave_balances
        WHERE employee_id = $1 AND leave_type = $2
    `
	// Row-level lock only makes sense inside a transaction.
	if r.tx != nil {
		query += " FOR UPDATE"
	}

	var b LeaveBalance
	err := r.execer().QueryRowContext(ctx, query, employeeID, leaveType).Scan(
		&b.ID, &b.EmployeeID, &b.LeaveType, &b.Available, &b.Held, &b.Consumed, &b.AsOf,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repository) UpdateBuckets(ctx context.Context, b *LeaveBalance) error {
	query := `
        UPDATE leave_balances
        SET available = $2, held = $3, consumed = $4, as_of = $5, updated_at = NOW()
        WHERE id = $1
    `
	_, err := r.execer().ExecContext(
		ctx, query,
		b.ID, b.Available, b.Held, b.Consumed, b.AsOf,
	)
	return err
}

func (r *repository) CreateTransaction(ctx context.Context, t *BalanceTransaction) error {
	query := `
        INSERT INTO balance_transactions (
            id, balance_id, kind, amount, request_id, created_at
        ) VALUES ($1, $2, $3, $4, $5, NOW())
    `
	_, err := r.execer().ExecContext(
		ctx, query,
		t.ID, t.BalanceID, t.Kind, t.Amount, t.RequestID,
	)
	return err
}

func (r *repository) FindByEmployee(ctx context.Context, employeeID string) ([]LeaveBalance, error) {
	var balances []LeaveBalance
	err := r.gdb.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Order("leave_type ASC").
		Find(&balances).Error
	return balances, err
}

func (r *repository) ListTransactions(ctx context.Context, balanceID string) ([]BalanceTransaction, error) {
	var txns []BalanceTransaction
	err := r.gdb.WithContext(ctx).
		Where("balance_id = ?", balanceID).
		Order("created_at ASC").
		Find(&txns).Error
	return txns, err
}
