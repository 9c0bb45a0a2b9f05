package workflow

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/venkateshmergu-svg/LMS-ORG-01-sub002/internal/audit"
)

// auditedRepository mirrors the balance package decorator: every mutation
// writes one audit entry through the same transaction as the data change.
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

func (a *auditedRepository) CreateRequest(ctx context.Context, lr *LeaveRequest) error {
	if err := a.inner.CreateRequest(ctx, lr); err != nil {
		return err
	}
	return a.rec.Record(ctx, audit.Entry{
		EntityType: "leave_request",
		EntityID:   lr.ID.String(),
		Action:     audit.ActionCreate,
		After:      audit.Snapshot(lr),
	})
}

func (a *auditedRepository) CreateSteps(ctx context.Context, steps []WorkflowStep) error {
	if err := a.inner.CreateSteps(ctx, steps); err != nil {
		return err
	}
	for i := range steps {
		if err := a.rec.Record(ctx, audit.Entry{
			EntityType: "workflow_step",
			EntityID:   steps[i].ID.String(),
			Action:     audit.ActionCreate,
			After:      audit.Snapshot(&steps[i]),
		}); err != nil {
			return err
		}
	}
	return nil
}

func (a *auditedRepository) FindRequestByID(ctx context.Context, id uuid.UUID) (*LeaveRequest, error) {
	return a.inner.FindRequestByID(ctx, id)
}

func (a *auditedRepository) FindStepByID(ctx context.Context, id uuid.UUID) (*WorkflowStep, error) {
	return a.inner.FindStepByID(ctx, id)
}

func (a *auditedRepository) FindStepsByRequest(ctx context.Context, requestID uuid.UUID) ([]WorkflowStep, error) {
	return a.inner.FindStepsByRequest(ctx, requestID)
}

func (a *auditedRepository) UpdateRequest(ctx context.Context, lr *LeaveRequest) error {
	before, err := a.inner.FindRequestByID(ctx, lr.ID)
	if err != nil {
		return err
	}
	if err := a.inner.UpdateRequest(ctx, lr); err != nil {
		return err
	}
	return a.rec.Record(ctx, audit.Entry{
		EntityType: "leave_request",
		EntityID:   lr.ID.String(),
		Action:     audit.ActionUpdate,
		Before:     audit.Snapshot(before),
		After:      audit.Snapshot(lr),
	})
}

func (a *auditedRepository) UpdateStep(ctx context.Context, s *WorkflowStep) error {
	before, err := a.inner.FindStepByID(ctx, s.ID)
	if err != nil {
		return err
	}
	if err := a.inner.UpdateStep(ctx, s); err != nil {
		return err
	}
	return a.rec.Record(ctx, audit.Entry{
		EntityType: "workflow_step",
		EntityID:   s.ID.String(),
		Action:     audit.ActionUpdate,
		Before:     audit.Snapshot(before),
		After:      audit.Snapshot(s),
	})
}

func (a *auditedRepository) ListRequestsByEmployee(ctx context.Context, employeeID string) ([]LeaveRequest, error) {
	return a.inner.ListRequestsByEmployee(ctx, employeeID)
}
