package lifecycle

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/venkateshmergu-svg/LMS-ORG-01-sub002/internal/balance"
	"github.com/venkateshmergu-svg/LMS-ORG-01-sub002/internal/events"
	lifecycleerrors "github.com/venkateshmergu-svg/LMS-ORG-01-sub002/internal/lifecycle/errors"
	"github.com/venkateshmergu-svg/LMS-ORG-01-sub002/internal/messaging/kafka"
	"github.com/venkateshmergu-svg/LMS-ORG-01-sub002/internal/workflow"
	workflowerrors "github.com/venkateshmergu-svg/LMS-ORG-01-sub002/internal/workflow/errors"
)

// Service sequences the workflow engine and the balance engine so the two
// state machines change together or not at all. Each entry point runs inside
// one database transaction owned here; the engines and repositories only
// participate through WithTx. A failure anywhere rolls back every change of
// the transition, audit and outbox rows included.
type Service interface {
	Submit(ctx context.Context, actorID string, req SubmitLeaveRequest) (LeaveRequestResponse, error)
	ApproveStep(ctx context.Context, actorID, stepID, remarks string) (TransitionResponse, error)
	RejectStep(ctx context.Context, actorID, stepID, remarks string) (TransitionResponse, error)
	Withdraw(ctx context.Context, actorID, requestID, reason string) (TransitionResponse, error)
	GetRequest(ctx context.Context, id string) (LeaveRequestResponse, error)
	ListRequestsByEmployee(ctx context.Context, employeeID string) ([]LeaveRequestResponse, error)
}

type service struct {
	db       *sql.DB
	workflow workflow.Engine
	balance  balance.Engine
	repo     workflow.Repository
	outbox   kafka.OutboxRepository
	logger   *zap.Logger
}

func NewService(
	db *sql.DB,
	workflowEngine workflow.Engine,
	balanceEngine balance.Engine,
	repo workflow.Repository,
	outbox kafka.OutboxRepository,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("lifecycle.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("lifecycle.service")
	}
	return &service{
		db:       db,
		workflow: workflowEngine,
		balance:  balanceEngine,
		repo:     repo,
		outbox:   outbox,
		logger:   l,
	}
}

func (s *service) Submit(ctx context.Context, actorID string, req SubmitLeaveRequest) (LeaveRequestResponse, error) {
	s.logger.Debug("submit leave request",
		zap.String("actor_id", actorID),
		zap.String("employee_id", req.EmployeeID),
		zap.String("leave_type", req.LeaveType),
		zap.String("total_units", req.TotalUnits),
		zap.Int("approvers", len(req.ApproverIDs)),
	)

	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return LeaveRequestResponse{}, lifecycleerrors.ErrInvalidActorID
	}
	employeeUUID, err := uuid.Parse(req.EmployeeID)
	if err != nil {
		return LeaveRequestResponse{}, lifecycleerrors.ErrInvalidEmployeeID
	}
	startDate, err := parseDate(req.StartDate)
	if err != nil {
		return LeaveRequestResponse{}, err
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		return LeaveRequestResponse{}, err
	}
	if startDate.After(endDate) {
		return LeaveRequestResponse{}, lifecycleerrors.ErrInvalidDateRange
	}
	units, err := decimal.NewFromString(req.TotalUnits)
	if err != nil || !balance.ValidQuantity(units) {
		return LeaveRequestResponse{}, lifecycleerrors.ErrInvalidUnits
	}
	if len(req.ApproverIDs) == 0 {
		return LeaveRequestResponse{}, workflowerrors.ErrApproversRequired
	}
	approverUUIDs := make([]uuid.UUID, len(req.ApproverIDs))
	for i, raw := range req.ApproverIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return LeaveRequestResponse{}, lifecycleerrors.ErrInvalidApproverID
		}
		approverUUIDs[i] = id
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("submit begin tx failed", zap.Error(err))
		return LeaveRequestResponse{}, err
	}
	defer tx.Rollback()

	qwf := s.workflow.WithTx(tx)
	qbal := s.balance.WithTx(tx)
	qob := s.outbox.WithTx(tx)

	lr := &workflow.LeaveRequest{
		ID:         uuid.New(),
		EmployeeID: employeeUUID,
		LeaveType:  req.LeaveType,
		StartDate:  startDate,
		EndDate:    endDate,
		TotalUnits: units,
		Reason:     req.Reason,
		Status:     workflow.RequestStatusDraft,
	}

	// Reserve before activating the chain so a request can never sit in
	// PENDING_APPROVAL without a matching hold on the ledger.
	if _, err := qbal.Reserve(ctx, employeeUUID, req.LeaveType, units, lr.ID, actorUUID); err != nil {
		s.logger.Warn("submit reservation failed",
			zap.String("employee_id", req.EmployeeID),
			zap.String("leave_type", req.LeaveType),
			zap.Error(err),
		)
		return LeaveRequestResponse{}, err
	}

	steps, err := qwf.Activate(ctx, lr, approverUUIDs)
	if err != nil {
		s.logger.Error("submit activation failed", zap.String("request_id", lr.ID.String()), zap.Error(err))
		return LeaveRequestResponse{}, err
	}

	if err := s.emit(ctx, qob, events.EventLeaveSubmitted, lr, actorUUID); err != nil {
		s.logger.Error("submit outbox write failed", zap.Error(err))
		return LeaveRequestResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("submit commit failed", zap.Error(err))
		return LeaveRequestResponse{}, err
	}

	s.logger.Info("leave request submitted",
		zap.String("request_id", lr.ID.String()),
		zap.String("employee_id", req.EmployeeID),
		zap.String("total_units", units.String()),
	)
	return mapToRequestResponse(*lr, steps), nil
}

func (s *service) ApproveStep(ctx context.Context, actorID, stepID, remarks string) (TransitionResponse, error) {
	s.logger.Debug("approve step requested",
		zap.String("actor_id", actorID),
		zap.String("step_id", stepID),
	)

	actorUUID, stepUUID, err := parseActorAndStep(actorID, stepID)
	if err != nil {
		return TransitionResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("approve step begin tx failed", zap.Error(err))
		return TransitionResponse{}, err
	}
	defer tx.Rollback()

	qwf := s.workflow.WithTx(tx)
	qbal := s.balance.WithTx(tx)
	qob := s.outbox.WithTx(tx)

	res, err := qwf.Approve(ctx, stepUUID, actorUUID, remarks)
	if err != nil {
		s.logger.Warn("approve step refused", zap.String("step_id", stepID), zap.Error(err))
		return TransitionResponse{}, err
	}

	eventType := events.EventLeaveStepApproved
	if res.Completed {
		// Final approval: the held quantity becomes consumed in the same
		// transaction that decides the request.
		lr := res.Request
		if _, err := qbal.Consume(ctx, lr.EmployeeID, lr.LeaveType, lr.TotalUnits, lr.ID, actorUUID); err != nil {
			s.logger.Error("approve step consume failed", zap.String("request_id", lr.ID.String()), zap.Error(err))
			return TransitionResponse{}, err
		}
		eventType = events.EventLeaveApproved
	}

	if err := s.emit(ctx, qob, eventType, res.Request, actorUUID); err != nil {
		s.logger.Error("approve step outbox write failed", zap.Error(err))
		return TransitionResponse{}, err
	}

	steps, err := s.repo.WithTx(tx).FindStepsByRequest(ctx, res.Request.ID)
	if err != nil {
		return TransitionResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("approve step commit failed", zap.Error(err))
		return TransitionResponse{}, err
	}

	s.logger.Info("approve step success",
		zap.String("request_id", res.Request.ID.String()),
		zap.String("step_id", stepID),
		zap.Bool("completed", res.Completed),
	)
	return mapToTransitionResponse(res, steps), nil
}

func (s *service) RejectStep(ctx context.Context, actorID, stepID, remarks string) (TransitionResponse, error) {
	s.logger.Debug("reject step requested",
		zap.String("actor_id", actorID),
		zap.String("step_id", stepID),
	)

	actorUUID, stepUUID, err := parseActorAndStep(actorID, stepID)
	if err != nil {
		return TransitionResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("reject step begin tx failed", zap.Error(err))
		return TransitionResponse{}, err
	}
	defer tx.Rollback()

	qwf := s.workflow.WithTx(tx)
	qbal := s.balance.WithTx(tx)
	qob := s.outbox.WithTx(tx)

	res, err := qwf.Reject(ctx, stepUUID, actorUUID, remarks)
	if err != nil {
		s.logger.Warn("reject step refused", zap.String("step_id", stepID), zap.Error(err))
		return TransitionResponse{}, err
	}

	lr := res.Request
	if _, err := qbal.Release(ctx, lr.EmployeeID, lr.LeaveType, lr.TotalUnits, lr.ID, actorUUID); err != nil {
		s.logger.Error("reject step release failed", zap.String("request_id", lr.ID.String()), zap.Error(err))
		return TransitionResponse{}, err
	}

	if err := s.emit(ctx, qob, events.EventLeaveRejected, lr, actorUUID); err != nil {
		s.logger.Error("reject step outbox write failed", zap.Error(err))
		return TransitionResponse{}, err
	}

	steps, err := s.repo.WithTx(tx).FindStepsByRequest(ctx, lr.ID)
	if err != nil {
		return TransitionResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("reject step commit failed", zap.Error(err))
		return TransitionResponse{}, err
	}

	s.logger.Info("reject step success",
		zap.String("request_id", lr.ID.String()),
		zap.String("step_id", stepID),
	)
	return mapToTransitionResponse(res, steps), nil
}

func (s *service) Withdraw(ctx context.Context, actorID, requestID, reason string) (TransitionResponse, error) {
	s.logger.Debug("withdraw requested",
		zap.String("actor_id", actorID),
		zap.String("request_id", requestID),
	)

	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return TransitionResponse{}, lifecycleerrors.ErrInvalidActorID
	}
	requestUUID, err := uuid.Parse(requestID)
	if err != nil {
		return TransitionResponse{}, lifecycleerrors.ErrInvalidRequestID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("withdraw begin tx failed", zap.Error(err))
		return TransitionResponse{}, err
	}
	defer tx.Rollback()

	qwf := s.workflow.WithTx(tx)
	qbal := s.balance.WithTx(tx)
	qob := s.outbox.WithTx(tx)

	res, err := qwf.Withdraw(ctx, requestUUID, actorUUID, reason)
	if err != nil {
		s.logger.Warn("withdraw refused", zap.String("request_id", requestID), zap.Error(err))
		return TransitionResponse{}, err
	}

	lr := res.Request
	if _, err := qbal.Release(ctx, lr.EmployeeID, lr.LeaveType, lr.TotalUnits, lr.ID, actorUUID); err != nil {
		s.logger.Error("withdraw release failed", zap.String("request_id", lr.ID.String()), zap.Error(err))
		return TransitionResponse{}, err
	}

	if err := s.emit(ctx, qob, events.EventLeaveWithdrawn, lr, actorUUID); err != nil {
		s.logger.Error("withdraw outbox write failed", zap.Error(err))
		return TransitionResponse{}, err
	}

	steps, err := s.repo.WithTx(tx).FindStepsByRequest(ctx, lr.ID)
	if err != nil {
		return TransitionResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("withdraw commit failed", zap.Error(err))
		return TransitionResponse{}, err
	}

	s.logger.Info("withdraw success", zap.String("request_id", requestID))
	return mapToTransitionResponse(res, steps), nil
}

func (s *service) GetRequest(ctx context.Context, id string) (LeaveRequestResponse, error) {
	requestUUID, err := uuid.Parse(id)
	if err != nil {
		return LeaveRequestResponse{}, lifecycleerrors.ErrInvalidRequestID
	}

	lr, err := s.repo.FindRequestByID(ctx, requestUUID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return LeaveRequestResponse{}, workflowerrors.ErrRequestNotFound
		}
		return LeaveRequestResponse{}, err
	}
	steps, err := s.repo.FindStepsByRequest(ctx, requestUUID)
	if err != nil {
		return LeaveRequestResponse{}, err
	}
	return mapToRequestResponse(*lr, steps), nil
}

func (s *service) ListRequestsByEmployee(ctx context.Context, employeeID string) ([]LeaveRequestResponse, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return nil, lifecycleerrors.ErrInvalidEmployeeID
	}

	requests, err := s.repo.ListRequestsByEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	resp := make([]LeaveRequestResponse, len(requests))
	for i, lr := range requests {
		resp[i] = mapToRequestResponse(lr, nil)
	}
	return resp, nil
}

func (s *service) emit(ctx context.Context, ob kafka.OutboxRepository, eventType string, lr *workflow.LeaveRequest, actorID uuid.UUID) error {
	payload, err := json.Marshal(events.LeaveLifecycleEvent{
		RequestID:  lr.ID.String(),
		EmployeeID: lr.EmployeeID.String(),
		LeaveType:  lr.LeaveType,
		TotalUnits: lr.TotalUnits.String(),
		Status:     lr.Status,
		ActorID:    actorID.String(),
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}

	return ob.Create(ctx, kafka.OutboxEvent{
		ID:            uuid.New().String(),
		AggregateType: "leave_request",
		AggregateID:   lr.ID.String(),
		EventType:     eventType,
		Topic:         events.TopicLeaveLifecycle,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	})
}

func parseActorAndStep(actorID, stepID string) (uuid.UUID, uuid.UUID, error) {
	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return uuid.Nil, uuid.Nil, lifecycleerrors.ErrInvalidActorID
	}
	stepUUID, err := uuid.Parse(stepID)
	if err != nil {
		return uuid.Nil, uuid.Nil, lifecycleerrors.ErrInvalidStepID
	}
	return actorUUID, stepUUID, nil
}

func parseDate(v string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, lifecycleerrors.ErrInvalidDateFormat
	}
	return t, nil
}
