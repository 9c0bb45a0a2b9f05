package workflow

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	workflowerrors "github.com/venkateshmergu-svg/LMS-ORG-01-sub002/internal/workflow/errors"
)

// TransitionResult is what an approval-chain operation hands back to the
// orchestrator. Completed is true once the request reached a terminal status;
// FinalStatus is only set in that case.
type TransitionResult struct {
	Request     *LeaveRequest
	Step        *WorkflowStep
	Completed   bool
	FinalStatus string
}

// Engine owns the approval-chain state machine for a single leave request.
// It validates the acting identity against the step/request itself, separate
// from whatever route-level authorization already happened, and it never
// touches balances; that coupling belongs to the lifecycle service.
type Engine interface {
	WithTx(tx *sql.Tx) Engine
	Activate(ctx context.Context, lr *LeaveRequest, approverIDs []uuid.UUID) ([]WorkflowStep, error)
	Approve(ctx context.Context, stepID, actorID uuid.UUID, remarks string) (*TransitionResult, error)
	Reject(ctx context.Context, stepID, actorID uuid.UUID, remarks string) (*TransitionResult, error)
	Withdraw(ctx context.Context, requestID, actorID uuid.UUID, reason string) (*TransitionResult, error)
}

type engine struct {
	repo   Repository
	logger *zap.Logger
}

func NewEngine(repo Repository, logger ...*zap.Logger) Engine {
	l := zap.L().Named("workflow.engine")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("workflow.engine")
	}
	return &engine{repo: repo, logger: l}
}

func (e *engine) WithTx(tx *sql.Tx) Engine {
	return &engine{repo: e.repo.WithTx(tx), logger: e.logger}
}

// Activate persists the request together with one PENDING step per approver,
// sequence numbers starting at 1 in the given order, then moves the request
// to PENDING_APPROVAL.
func (e *engine) Activate(ctx context.Context, lr *LeaveRequest, approverIDs []uuid.UUID) ([]WorkflowStep, error) {
	if lr.Status != RequestStatusDraft {
		e.logger.Warn("activate refused, request not draft",
			zap.String("request_id", lr.ID.String()),
			zap.String("status", lr.Status),
		)
		return nil, workflowerrors.ErrInvalidTransition
	}
	if len(approverIDs) == 0 {
		return nil, workflowerrors.ErrApproversRequired
	}

	if err := e.repo.CreateRequest(ctx, lr); err != nil {
		return nil, err
	}

	steps := make([]WorkflowStep, len(approverIDs))
	for i, approverID := range approverIDs {
		steps[i] = WorkflowStep{
			ID:         uuid.New(),
			RequestID:  lr.ID,
			Sequence:   i + 1,
			ApproverID: approverID,
			Status:     StepStatusPending,
		}
	}
	if err := e.repo.CreateSteps(ctx, steps); err != nil {
		return nil, err
	}

	lr.Status = RequestStatusPending
	if err := e.repo.UpdateRequest(ctx, lr); err != nil {
		return nil, err
	}

	e.logger.Info("approval chain activated",
		zap.String("request_id", lr.ID.String()),
		zap.Int("steps", len(steps)),
	)
	return steps, nil
}

// loadActionableStep fetches the step and enforces the two approval
// preconditions: the step itself is PENDING and it is the lowest-sequence
// PENDING step of its request. Returns the step and its siblings.
func (e *engine) loadActionableStep(ctx context.Context, stepID uuid.UUID) (*WorkflowStep, []WorkflowStep, error) {
	step, err := e.repo.FindStepByID(ctx, stepID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, workflowerrors.ErrStepNotFound
		}
		return nil, nil, err
	}
	if step.Status != StepStatusPending {
		return nil, nil, workflowerrors.ErrStepNotPending
	}

	siblings, err := e.repo.FindStepsByRequest(ctx, step.RequestID)
	if err != nil {
		return nil, nil, err
	}
	for i := range siblings {
		if siblings[i].Sequence < step.Sequence && siblings[i].Status == StepStatusPending {
			return nil, nil, workflowerrors.ErrStepOutOfOrder
		}
	}
	return step, siblings, nil
}

func (e *engine) loadPendingRequest(ctx context.Context, requestID uuid.UUID) (*LeaveRequest, error) {
	lr, err := e.repo.FindRequestByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, workflowerrors.ErrRequestNotFound
		}
		return nil, err
	}
	if lr.Status != RequestStatusPending {
		return nil, workflowerrors.ErrInvalidTransition
	}
	return lr, nil
}

func stampStep(s *WorkflowStep, status string, remarks string) {
	now := time.Now().UTC()
	s.Status = status
	s.ActedAt = &now
	if remarks != "" {
		s.Remarks = &remarks
	}
}

func stampDecision(lr *LeaveRequest, status string, actorID uuid.UUID, remarks string) {
	now := time.Now().UTC()
	lr.Status = status
	lr.DecidedBy = &actorID
	lr.DecidedAt = &now
	if remarks != "" {
		lr.DecisionRemarks = &remarks
	}
}

// Approve actions the step as the assigned approver. When a later PENDING
// step remains, the chain merely advances; approving the last step decides
// the whole request in the same call.
func (e *engine) Approve(ctx context.Context, stepID, actorID uuid.UUID, remarks string) (*TransitionResult, error) {
	step, siblings, err := e.loadActionableStep(ctx, stepID)
	if err != nil {
		return nil, err
	}
	if step.ApproverID != actorID {
		e.logger.Warn("approve refused, actor is not the assigned approver",
			zap.String("step_id", stepID.String()),
			zap.String("actor_id", actorID.String()),
			zap.String("approver_id", step.ApproverID.String()),
		)
		return nil, workflowerrors.ErrNotAssignedApprover
	}

	lr, err := e.loadPendingRequest(ctx, step.RequestID)
	if err != nil {
		return nil, err
	}

	stampStep(step, StepStatusApproved, remarks)
	if err := e.repo.UpdateStep(ctx, step); err != nil {
		return nil, err
	}

	remaining := false
	for i := range siblings {
		if siblings[i].Sequence > step.Sequence && siblings[i].Status == StepStatusPending {
			remaining = true
			break
		}
	}

	if remaining {
		e.logger.Info("workflow step approved, chain advanced",
			zap.String("request_id", lr.ID.String()),
			zap.String("step_id", step.ID.String()),
			zap.Int("sequence", step.Sequence),
		)
		return &TransitionResult{Request: lr, Step: step}, nil
	}

	stampDecision(lr, RequestStatusApproved, actorID, remarks)
	if err := e.repo.UpdateRequest(ctx, lr); err != nil {
		return nil, err
	}

	e.logger.Info("workflow completed",
		zap.String("request_id", lr.ID.String()),
		zap.String("final_status", RequestStatusApproved),
	)
	return &TransitionResult{
		Request:     lr,
		Step:        step,
		Completed:   true,
		FinalStatus: RequestStatusApproved,
	}, nil
}

// Reject actions the step as the assigned approver and terminates the whole
// request: a rejection at any position in the chain is final.
func (e *engine) Reject(ctx context.Context, stepID, actorID uuid.UUID, remarks string) (*TransitionResult, error) {
	step, _, err := e.loadActionableStep(ctx, stepID)
	if err != nil {
		return nil, err
	}
	if step.ApproverID != actorID {
		e.logger.Warn("reject refused, actor is not the assigned approver",
			zap.String("step_id", stepID.String()),
			zap.String("actor_id", actorID.String()),
			zap.String("approver_id", step.ApproverID.String()),
		)
		return nil, workflowerrors.ErrNotAssignedApprover
	}

	lr, err := e.loadPendingRequest(ctx, step.RequestID)
	if err != nil {
		return nil, err
	}

	stampStep(step, StepStatusRejected, remarks)
	if err := e.repo.UpdateStep(ctx, step); err != nil {
		return nil, err
	}

	stampDecision(lr, RequestStatusRejected, actorID, remarks)
	if err := e.repo.UpdateRequest(ctx, lr); err != nil {
		return nil, err
	}

	e.logger.Info("workflow completed",
		zap.String("request_id", lr.ID.String()),
		zap.String("final_status", RequestStatusRejected),
	)
	return &TransitionResult{
		Request:     lr,
		Step:        step,
		Completed:   true,
		FinalStatus: RequestStatusRejected,
	}, nil
}

// Withdraw lets the request owner cancel a pending request. All steps that
// are still PENDING become SKIPPED so no approver action stays open.
func (e *engine) Withdraw(ctx context.Context, requestID, actorID uuid.UUID, reason string) (*TransitionResult, error) {
	lr, err := e.repo.FindRequestByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, workflowerrors.ErrRequestNotFound
		}
		return nil, err
	}
	if lr.EmployeeID != actorID {
		e.logger.Warn("withdraw refused, actor is not the request owner",
			zap.String("request_id", requestID.String()),
			zap.String("actor_id", actorID.String()),
			zap.String("owner_id", lr.EmployeeID.String()),
		)
		return nil, workflowerrors.ErrNotRequestOwner
	}
	if lr.Status != RequestStatusPending {
		return nil, workflowerrors.ErrInvalidTransition
	}

	now := time.Now().UTC()
	lr.Status = RequestStatusWithdrawn
	lr.CancelledBy = &actorID
	lr.CancelledAt = &now
	if reason != "" {
		lr.CancelReason = &reason
	}
	if err := e.repo.UpdateRequest(ctx, lr); err != nil {
		return nil, err
	}

	steps, err := e.repo.FindStepsByRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	for i := range steps {
		if steps[i].Status != StepStatusPending {
			continue
		}
		steps[i].Status = StepStatusSkipped
		steps[i].ActedAt = &now
		if err := e.repo.UpdateStep(ctx, &steps[i]); err != nil {
			return nil, err
		}
	}

	e.logger.Info("workflow completed",
		zap.String("request_id", lr.ID.String()),
		zap.String("final_status", RequestStatusWithdrawn),
	)
	return &TransitionResult{
		Request:     lr,
		Completed:   true,
		FinalStatus: RequestStatusWithdrawn,
	}, nil
}
