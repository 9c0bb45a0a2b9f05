package balance

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	balanceerrors "github.com/venkateshmergu-svg/LMS-ORG-01-sub002/internal/balance/errors"
)

// Engine owns the reserve/consume/release state machine for a single
// (employee, leave type) ledger. Every operation is a pure transfer between
// the available/held/consumed buckets: the bucket sum is unchanged by any
// single call, and each call appends exactly one ledger transaction.
//
// The engine never opens a transaction; callers bind it to one via WithTx.
type Engine interface {
	WithTx(tx *sql.Tx) Engine
	Reserve(ctx context.Context, employeeID uuid.UUID, leaveType string, qty decimal.Decimal, requestID, actorID uuid.UUID) (*LeaveBalance, error)
	Consume(ctx context.Context, employeeID uuid.UUID, leaveType string, qty decimal.Decimal, requestID, actorID uuid.UUID) (*LeaveBalance, error)
	Release(ctx context.Context, employeeID uuid.UUID, leaveType string, qty decimal.Decimal, requestID, actorID uuid.UUID) (*LeaveBalance, error)
}

type engine struct {
	repo   Repository
	logger *zap.Logger
}

func NewEngine(repo Repository, logger ...*zap.Logger) Engine {
	l := zap.L().Named("balance.engine")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("balance.engine")
	}
	return &engine{repo: repo, logger: l}
}

func (e *engine) WithTx(tx *sql.Tx) Engine {
	return &engine{repo: e.repo.WithTx(tx), logger: e.logger}
}

var halfUnit = decimal.New(5, -1)

// ValidQuantity reports whether qty is a positive multiple of half a unit.
func ValidQuantity(qty decimal.Decimal) bool {
	return qty.IsPositive() && qty.Mod(halfUnit).IsZero()
}

func (e *engine) load(ctx context.Context, employeeID uuid.UUID, leaveType string, qty decimal.Decimal) (*LeaveBalance, error) {
	if !ValidQuantity(qty) {
		return nil, balanceerrors.ErrInvalidQuantity
	}
	b, err := e.repo.FindForUpdate(ctx, employeeID, leaveType)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, balanceerrors.ErrBalanceNotFound
		}
		return nil, err
	}
	return b, nil
}

func (e *engine) apply(ctx context.Context, b *LeaveBalance, kind string, amount decimal.Decimal, requestID uuid.UUID) error {
	b.AsOf = time.Now().UTC()
	if err := e.repo.UpdateBuckets(ctx, b); err != nil {
		return err
	}

	rid := requestID
	return e.repo.CreateTransaction(ctx, &BalanceTransaction{
		ID:        uuid.New(),
		BalanceID: b.ID,
		Kind:      kind,
		Amount:    amount,
		RequestID: &rid,
	})
}

// Reserve moves qty from available to held. It fails when the available
// bucket cannot cover the request; reserving the exact remainder is allowed.
func (e *engine) Reserve(ctx context.Context, employeeID uuid.UUID, leaveType string, qty decimal.Decimal, requestID, actorID uuid.UUID) (*LeaveBalance, error) {
	b, err := e.load(ctx, employeeID, leaveType, qty)
	if err != nil {
		return nil, err
	}

	if b.Available.LessThan(qty) {
		e.logger.Warn("reserve rejected, insufficient balance",
			zap.String("employee_id", employeeID.String()),
			zap.String("leave_type", leaveType),
			zap.String("requested", qty.String()),
			zap.String("available", b.Available.String()),
			zap.String("request_id", requestID.String()),
		)
		return nil, balanceerrors.ErrInsufficientBalance
	}

	b.Available = b.Available.Sub(qty)
	b.Held = b.Held.Add(qty)
	if err := e.apply(ctx, b, TxKindHold, qty.Neg(), requestID); err != nil {
		return nil, err
	}

	e.logger.Info("balance reserved",
		zap.String("employee_id", employeeID.String()),
		zap.String("leave_type", leaveType),
		zap.String("quantity", qty.String()),
		zap.String("request_id", requestID.String()),
		zap.String("actor_id", actorID.String()),
	)
	return b, nil
}

// Consume moves qty from held to consumed at final approval. A held bucket
// smaller than qty indicates a sequencing bug in the caller.
func (e *engine) Consume(ctx context.Context, employeeID uuid.UUID, leaveType string, qty decimal.Decimal, requestID, actorID uuid.UUID) (*LeaveBalance, error) {
	b, err := e.load(ctx, employeeID, leaveType, qty)
	if err != nil {
		return nil, err
	}

	if b.Held.LessThan(qty) {
		e.logger.Error("consume rejected, held bucket too small",
			zap.String("employee_id", employeeID.String()),
			zap.String("leave_type", leaveType),
			zap.String("requested", qty.String()),
			zap.String("held", b.Held.String()),
			zap.String("request_id", requestID.String()),
		)
		return nil, balanceerrors.ErrInvalidBalanceState
	}

	b.Held = b.Held.Sub(qty)
	b.Consumed = b.Consumed.Add(qty)
	if err := e.apply(ctx, b, TxKindConsume, qty.Neg(), requestID); err != nil {
		return nil, err
	}

	e.logger.Info("balance consumed",
		zap.String("employee_id", employeeID.String()),
		zap.String("leave_type", leaveType),
		zap.String("quantity", qty.String()),
		zap.String("request_id", requestID.String()),
		zap.String("actor_id", actorID.String()),
	)
	return b, nil
}

// Release moves qty from held back to available on rejection or withdrawal.
func (e *engine) Release(ctx context.Context, employeeID uuid.UUID, leaveType string, qty decimal.Decimal, requestID, actorID uuid.UUID) (*LeaveBalance, error) {
	b, err := e.load(ctx, employeeID, leaveType, qty)
	if err != nil {
		return nil, err
	}

	if b.Held.LessThan(qty) {
		e.logger.Error("release rejected, held bucket too small",
			zap.String("employee_id", employeeID.String()),
			zap.String("leave_type", leaveType),
			zap.String("requested", qty.String()),
			zap.String("held", b.Held.String()),
			zap.String("request_id", requestID.String()),
		)
		return nil, balanceerrors.ErrInvalidBalanceState
	}

	b.Held = b.Held.Sub(qty)
	b.Available = b.Available.Add(qty)
	if err := e.apply(ctx, b, TxKindRelease, qty, requestID); err != nil {
		return nil, err
	}

	e.logger.Info("balance released",
		zap.String("employee_id", employeeID.String()),
		zap.String("leave_type", leaveType),
		zap.String("quantity", qty.String()),
		zap.String("request_id", requestID.String()),
		zap.String("actor_id", actorID.String()),
	)
	return b, nil
}
