package workflow_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/venkateshmergu-svg/LMS-ORG-01-sub002/internal/workflow"
	workflowerrors "github.com/venkateshmergu-svg/LMS-ORG-01-sub002/internal/workflow/errors"
)

// memoryWorkflowRepository keeps requests and steps in maps so chain
// scenarios can be driven end to end without a database.
type memoryWorkflowRepository struct {
	requests map[uuid.UUID]*workflow.LeaveRequest
	steps    map[uuid.UUID]*workflow.WorkflowStep
}

func newMemoryWorkflowRepository() *memoryWorkflowRepository {
	return &memoryWorkflowRepository{
		requests: make(map[uuid.UUID]*workflow.LeaveRequest),
		steps:    make(map[uuid.UUID]*workflow.WorkflowStep),
	}
}

func (m *memoryWorkflowRepository) WithTx(tx *sql.Tx) workflow.Repository { return m }

func (m *memoryWorkflowRepository) CreateRequest(ctx context.Context, r *workflow.LeaveRequest) error {
	cp := *r
	m.requests[r.ID] = &cp
	return nil
}

func (m *memoryWorkflowRepository) CreateSteps(ctx context.Context, steps []workflow.WorkflowStep) error {
	for i := range steps {
		cp := steps[i]
		m.steps[steps[i].ID] = &cp
	}
	return nil
}

func (m *memoryWorkflowRepository) FindRequestByID(ctx context.Context, id uuid.UUID) (*workflow.LeaveRequest, error) {
	r, ok := m.requests[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *r
	return &cp, nil
}

func (m *memoryWorkflowRepository) FindStepByID(ctx context.Context, id uuid.UUID) (*workflow.WorkflowStep, error) {
	s, ok := m.steps[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *s
	return &cp, nil
}

func (m *memoryWorkflowRepository) FindStepsByRequest(ctx context.Context, requestID uuid.UUID) ([]workflow.WorkflowStep, error) {
	var out []workflow.WorkflowStep
	for _, s := range m.steps {
		if s.RequestID == requestID {
			out = append(out, *s)
		}
	}
	// callers rely on sequence order
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].Sequence < out[i].Sequence {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}

func (m *memoryWorkflowRepository) UpdateRequest(ctx context.Context, r *workflow.LeaveRequest) error {
	cp := *r
	m.requests[r.ID] = &cp
	return nil
}

func (m *memoryWorkflowRepository) UpdateStep(ctx context.Context, s *workflow.WorkflowStep) error {
	cp := *s
	m.steps[s.ID] = &cp
	return nil
}

func (m *memoryWorkflowRepository) ListRequestsByEmployee(ctx context.Context, employeeID string) ([]workflow.LeaveRequest, error) {
	return nil, nil
}

func draftRequest(employeeID uuid.UUID) *workflow.LeaveRequest {
	return &workflow.LeaveRequest{
		ID:         uuid.New(),
		EmployeeID: employeeID,
		LeaveType:  "ANNUAL",
		TotalUnits: decimal.RequireFromString("2.0"),
		Status:     workflow.RequestStatusDraft,
	}
}

func activateChain(t *testing.T, engine workflow.Engine, lr *workflow.LeaveRequest, approvers ...uuid.UUID) []workflow.WorkflowStep {
	t.Helper()
	steps, err := engine.Activate(context.Background(), lr, approvers)
	assert.NoError(t, err)
	return steps
}

func TestWorkflowEngine_Activate(t *testing.T) {
	ctx := context.Background()
	employeeID := uuid.New()

	t.Run("creates one pending step per approver in order", func(t *testing.T) {
		repo := newMemoryWorkflowRepository()
		engine := workflow.NewEngine(repo)
		approvers := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
		lr := draftRequest(employeeID)

		steps, err := engine.Activate(ctx, lr, approvers)

		assert.NoError(t, err)
		assert.Len(t, steps, 3)
		for i, step := range steps {
			assert.Equal(t, i+1, step.Sequence)
			assert.Equal(t, approvers[i], step.ApproverID)
			assert.Equal(t, workflow.StepStatusPending, step.Status)
		}
		assert.Equal(t, workflow.RequestStatusPending, lr.Status)

		saved, err := repo.FindRequestByID(ctx, lr.ID)
		assert.NoError(t, err)
		assert.Equal(t, workflow.RequestStatusPending, saved.Status)
	})

	t.Run("refuses a request that is not a draft", func(t *testing.T) {
		engine := workflow.NewEngine(newMemoryWorkflowRepository())
		lr := draftRequest(employeeID)
		lr.Status = workflow.RequestStatusApproved

		_, err := engine.Activate(ctx, lr, []uuid.UUID{uuid.New()})

		assert.ErrorIs(t, err, workflowerrors.ErrInvalidTransition)
	})

	t.Run("refuses an empty approver list", func(t *testing.T) {
		engine := workflow.NewEngine(newMemoryWorkflowRepository())

		_, err := engine.Activate(ctx, draftRequest(employeeID), nil)

		assert.ErrorIs(t, err, workflowerrors.ErrApproversRequired)
	})
}

func TestWorkflowEngine_Approve(t *testing.T) {
	ctx := context.Background()
	employeeID := uuid.New()

	t.Run("advances the chain without deciding the request", func(t *testing.T) {
		repo := newMemoryWorkflowRepository()
		engine := workflow.NewEngine(repo)
		first, second := uuid.New(), uuid.New()
		lr := draftRequest(employeeID)
		steps := activateChain(t, engine, lr, first, second)

		res, err := engine.Approve(ctx, steps[0].ID, first, "looks fine")

		assert.NoError(t, err)
		assert.False(t, res.Completed)
		assert.Equal(t, workflow.StepStatusApproved, res.Step.Status)
		assert.NotNil(t, res.Step.ActedAt)
		assert.Equal(t, workflow.RequestStatusPending, res.Request.Status)
	})

	t.Run("approving the last step decides the request", func(t *testing.T) {
		repo := newMemoryWorkflowRepository()
		engine := workflow.NewEngine(repo)
		first, second := uuid.New(), uuid.New()
		lr := draftRequest(employeeID)
		steps := activateChain(t, engine, lr, first, second)

		_, err := engine.Approve(ctx, steps[0].ID, first, "")
		assert.NoError(t, err)

		res, err := engine.Approve(ctx, steps[1].ID, second, "approved")

		assert.NoError(t, err)
		assert.True(t, res.Completed)
		assert.Equal(t, workflow.RequestStatusApproved, res.FinalStatus)
		assert.Equal(t, workflow.RequestStatusApproved, res.Request.Status)
		assert.Equal(t, second, *res.Request.DecidedBy)
		assert.NotNil(t, res.Request.DecidedAt)
	})

	t.Run("refuses a step approved out of order", func(t *testing.T) {
		repo := newMemoryWorkflowRepository()
		engine := workflow.NewEngine(repo)
		first, second := uuid.New(), uuid.New()
		lr := draftRequest(employeeID)
		steps := activateChain(t, engine, lr, first, second)

		_, err := engine.Approve(ctx, steps[1].ID, second, "")

		assert.ErrorIs(t, err, workflowerrors.ErrStepOutOfOrder)

		saved, findErr := repo.FindStepByID(ctx, steps[1].ID)
		assert.NoError(t, findErr)
		assert.Equal(t, workflow.StepStatusPending, saved.Status)
	})

	t.Run("refuses an actor who is not the assigned approver", func(t *testing.T) {
		repo := newMemoryWorkflowRepository()
		engine := workflow.NewEngine(repo)
		first := uuid.New()
		lr := draftRequest(employeeID)
		steps := activateChain(t, engine, lr, first)

		_, err := engine.Approve(ctx, steps[0].ID, uuid.New(), "")

		assert.ErrorIs(t, err, workflowerrors.ErrNotAssignedApprover)
	})

	t.Run("refuses a step that was already actioned", func(t *testing.T) {
		repo := newMemoryWorkflowRepository()
		engine := workflow.NewEngine(repo)
		first := uuid.New()
		lr := draftRequest(employeeID)
		steps := activateChain(t, engine, lr, first)

		_, err := engine.Approve(ctx, steps[0].ID, first, "")
		assert.NoError(t, err)

		_, err = engine.Approve(ctx, steps[0].ID, first, "")

		assert.ErrorIs(t, err, workflowerrors.ErrStepNotPending)
	})

	t.Run("fails when the step does not exist", func(t *testing.T) {
		engine := workflow.NewEngine(newMemoryWorkflowRepository())

		_, err := engine.Approve(ctx, uuid.New(), uuid.New(), "")

		assert.ErrorIs(t, err, workflowerrors.ErrStepNotFound)
	})
}

func TestWorkflowEngine_Reject(t *testing.T) {
	ctx := context.Background()
	employeeID := uuid.New()

	t.Run("a rejection at any position is final", func(t *testing.T) {
		repo := newMemoryWorkflowRepository()
		engine := workflow.NewEngine(repo)
		first, second, third := uuid.New(), uuid.New(), uuid.New()
		lr := draftRequest(employeeID)
		steps := activateChain(t, engine, lr, first, second, third)

		_, err := engine.Approve(ctx, steps[0].ID, first, "")
		assert.NoError(t, err)

		res, err := engine.Reject(ctx, steps[1].ID, second, "dates clash with release")

		assert.NoError(t, err)
		assert.True(t, res.Completed)
		assert.Equal(t, workflow.RequestStatusRejected, res.FinalStatus)
		assert.Equal(t, "dates clash with release", *res.Request.DecisionRemarks)

		// The rejection decides the request; no further step can be actioned.
		_, err = engine.Approve(ctx, steps[2].ID, third, "")
		assert.ErrorIs(t, err, workflowerrors.ErrInvalidTransition)
	})

	t.Run("refuses an actor who is not the assigned approver", func(t *testing.T) {
		repo := newMemoryWorkflowRepository()
		engine := workflow.NewEngine(repo)
		first := uuid.New()
		lr := draftRequest(employeeID)
		steps := activateChain(t, engine, lr, first)

		_, err := engine.Reject(ctx, steps[0].ID, uuid.New(), "no")

		assert.ErrorIs(t, err, workflowerrors.ErrNotAssignedApprover)
	})
}

func TestWorkflowEngine_Withdraw(t *testing.T) {
	ctx := context.Background()
	employeeID := uuid.New()

	t.Run("owner withdraws and remaining pending steps are skipped", func(t *testing.T) {
		repo := newMemoryWorkflowRepository()
		engine := workflow.NewEngine(repo)
		first, second := uuid.New(), uuid.New()
		lr := draftRequest(employeeID)
		steps := activateChain(t, engine, lr, first, second)

		_, err := engine.Approve(ctx, steps[0].ID, first, "")
		assert.NoError(t, err)

		res, err := engine.Withdraw(ctx, lr.ID, employeeID, "plans changed")

		assert.NoError(t, err)
		assert.True(t, res.Completed)
		assert.Equal(t, workflow.RequestStatusWithdrawn, res.FinalStatus)
		assert.Equal(t, employeeID, *res.Request.CancelledBy)
		assert.Equal(t, "plans changed", *res.Request.CancelReason)

		all, err := repo.FindStepsByRequest(ctx, lr.ID)
		assert.NoError(t, err)
		assert.Equal(t, workflow.StepStatusApproved, all[0].Status, "actioned steps keep their status")
		assert.Equal(t, workflow.StepStatusSkipped, all[1].Status)
		assert.NotNil(t, all[1].ActedAt)
	})

	t.Run("refuses anyone but the request owner", func(t *testing.T) {
		repo := newMemoryWorkflowRepository()
		engine := workflow.NewEngine(repo)
		lr := draftRequest(employeeID)
		activateChain(t, engine, lr, uuid.New())

		_, err := engine.Withdraw(ctx, lr.ID, uuid.New(), "")

		assert.ErrorIs(t, err, workflowerrors.ErrNotRequestOwner)
	})

	t.Run("refuses a request that was already decided", func(t *testing.T) {
		repo := newMemoryWorkflowRepository()
		engine := workflow.NewEngine(repo)
		first := uuid.New()
		lr := draftRequest(employeeID)
		steps := activateChain(t, engine, lr, first)

		_, err := engine.Approve(ctx, steps[0].ID, first, "")
		assert.NoError(t, err)

		_, err = engine.Withdraw(ctx, lr.ID, employeeID, "")

		assert.ErrorIs(t, err, workflowerrors.ErrInvalidTransition)
	})

	t.Run("fails when the request does not exist", func(t *testing.T) {
		engine := workflow.NewEngine(newMemoryWorkflowRepository())

		_, err := engine.Withdraw(ctx, uuid.New(), employeeID, "")

		assert.ErrorIs(t, err, workflowerrors.ErrRequestNotFound)
	})
}
