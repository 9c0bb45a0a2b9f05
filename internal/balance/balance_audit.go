package balance

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/venkateshmergu-svg/LMS-ORG-01-sub002/internal/audit"
)

// auditedRepository decorates Repository so every mutation lands in the audit
// trail within the same transaction. Business code never calls the recorder.
type auditedRepository struct {
	inner Repository
	rec   audit.Recorder
}

func NewAuditedRepository(inner Repository, rec audit.Recorder) Repository {
	return &auditedRepository{inner: inner, rec: rec}
}

func (a *auditedRepository) WithTx(tx *sql.Tx) Repository {
	return &auditedRepository{inner: a.inner.WithTx(tx), rec: a.rec.WithTx(tx)}
}

func (a *auditedRepository) Create(ctx context.Context, b *LeaveBalance) error {
	if err := a.inner.Create(ctx, b); err != nil {
		return err
	}
	return a.rec.Record(ctx, audit.Entry{
		EntityType: "leave_balance",
		EntityID:   b.ID.String(),
		Action:     audit.ActionCreate,
		After:      audit.Snapshot(b),
	})
}

func (a *auditedRepository) FindForUpdate(ctx context.Context, employeeID uuid.UUID, leaveType string) (*LeaveBalance, error) {
	return a.inner.FindForUpdate(ctx, employeeID, leaveType)
}

func (a *auditedRepository) UpdateBuckets(ctx context.Context, b *LeaveBalance) error {
	before, err := a.inner.FindForUpdate(ctx, b.EmployeeID, b.LeaveType)
	if err != nil {
		return err
	}
	if err := a.inner.UpdateBuckets(ctx, b); err != nil {
		return err
	}
	return a.rec.Record(ctx, audit.Entry{
		EntityType: "leave_balance",
		EntityID:   b.ID.String(),
		Action:     audit.ActionUpdate,
		Before:     audit.Snapshot(before),
		After:      audit.Snapshot(b),
	})
}

func (a *auditedRepository) CreateTransaction(ctx context.Context, t *BalanceTransaction) error {
	if err := a.inner.CreateTransaction(ctx, t); err != nil {
		return err
	}
	return a.rec.Record(ctx, audit.Entry{
		EntityType: "balance_transaction",
		EntityID:   t.ID.String(),
		Action:     audit.ActionCreate,
		After:      audit.Snapshot(t),
	})
}

func (a *auditedRepository) FindByEmployee(ctx context.Context, employeeID string) ([]LeaveBalance, error) {
	return a.inner.FindByEmployee(ctx, employeeID)
}

func (a *auditedRepository) ListTransactions(ctx context.Context, balanceID string) ([]BalanceTransaction, error) {
	return a.inner.ListTransactions(ctx, balanceID)
}
