package balance

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	balanceerrors "github.com/venkateshmergu-svg/LMS-ORG-01-sub002/internal/balance/errors"
)

// Service covers balance provisioning and accrual adjustments. These are the
// external events that change the bucket sum; the lifecycle engine itself
// only ever transfers quantity between buckets.
type Service interface {
	Create(ctx context.Context, actorID string, req CreateBalanceRequest) (BalanceResponse, error)
	Accrue(ctx context.Context, actorID string, req AccrueRequest) (BalanceResponse, error)
	GetByEmployee(ctx context.Context, employeeID string) ([]BalanceResponse, error)
	ListTransactions(ctx context.Context, balanceID string) ([]TransactionResponse, error)
}

type service struct {
	db     *sql.DB
	repo   Repository
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("balance.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("balance.service")
	}
	return &service{db: db, repo: repo, logger: l}
}

func (s *service) Create(ctx context.Context, actorID string, req CreateBalanceRequest) (BalanceResponse, error) {
	s.logger.Debug("create balance requested",
		zap.String("actor_id", actorID),
		zap.String("employee_id", req.EmployeeID),
		zap.String("leave_type", req.LeaveType),
	)

	employeeUUID, err := uuid.Parse(req.EmployeeID)
	if err != nil {
		return BalanceResponse{}, balanceerrors.ErrInvalidEmployeeID
	}
	available, err := decimal.NewFromString(req.Available)
	if err != nil || available.IsNegative() || !available.Mod(halfUnit).IsZero() {
		return BalanceResponse{}, balanceerrors.ErrInvalidQuantity
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create balance begin tx failed", zap.Error(err))
		return BalanceResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	b := &LeaveBalance{
		ID:         uuid.New(),
		EmployeeID: employeeUUID,
		LeaveType:  req.LeaveType,
		Available:  available,
		Held:       decimal.Zero,
		Consumed:   decimal.Zero,
		AsOf:       time.Now().UTC(),
	}

	if err := qtx.Create(ctx, b); err != nil {
		if isUniqueBalanceViolation(err) {
			s.logger.Warn("create balance duplicate",
				zap.String("employee_id", req.EmployeeID),
				zap.String("leave_type", req.LeaveType),
			)
			return BalanceResponse{}, balanceerrors.ErrBalanceAlreadyExists
		}
		s.logger.Error("create balance persist failed", zap.Error(err))
		return BalanceResponse{}, err
	}

	if !available.IsZero() {
		if err := qtx.CreateTransaction(ctx, &BalanceTransaction{
			ID:        uuid.New(),
			BalanceID: b.ID,
			Kind:      TxKindAccrual,
			Amount:    available,
		}); err != nil {
			s.logger.Error("create balance opening transaction failed", zap.Error(err))
			return BalanceResponse{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("create balance commit failed", zap.Error(err))
		return BalanceResponse{}, err
	}

	s.logger.Info("create balance success",
		zap.String("balance_id", b.ID.String()),
		zap.String("employee_id", req.EmployeeID),
		zap.String("leave_type", req.LeaveType),
	)
	return mapToBalanceResponse(*b), nil
}

func (s *service) Accrue(ctx context.Context, actorID string, req AccrueRequest) (BalanceResponse, error) {
	s.logger.Debug("accrue balance requested",
		zap.String("actor_id", actorID),
		zap.String("employee_id", req.EmployeeID),
		zap.String("leave_type", req.LeaveType),
		zap.String("quantity", req.Quantity),
	)

	employeeUUID, err := uuid.Parse(req.EmployeeID)
	if err != nil {
		return BalanceResponse{}, balanceerrors.ErrInvalidEmployeeID
	}
	qty, err := decimal.NewFromString(req.Quantity)
	if err != nil || !ValidQuantity(qty) {
		return BalanceResponse{}, balanceerrors.ErrInvalidQuantity
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("accrue balance begin tx failed", zap.Error(err))
		return BalanceResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	b, err := qtx.FindForUpdate(ctx, employeeUUID, req.LeaveType)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return BalanceResponse{}, balanceerrors.ErrBalanceNotFound
		}
		s.logger.Error("accrue balance load failed", zap.Error(err))
		return BalanceResponse{}, err
	}

	b.Available = b.Available.Add(qty)
	b.AsOf = time.Now().UTC()

	if err := qtx.UpdateBuckets(ctx, b); err != nil {
		s.logger.Error("accrue balance persist failed", zap.Error(err))
		return BalanceResponse{}, err
	}
	if err := qtx.CreateTransaction(ctx, &BalanceTransaction{
		ID:        uuid.New(),
		BalanceID: b.ID,
		Kind:      TxKindAccrual,
		Amount:    qty,
	}); err != nil {
		s.logger.Error("accrue balance transaction failed", zap.Error(err))
		return BalanceResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("accrue balance commit failed", zap.Error(err))
		return BalanceResponse{}, err
	}

	s.logger.Info("accrue balance success",
		zap.String("balance_id", b.ID.String()),
		zap.String("quantity", qty.String()),
	)
	return mapToBalanceResponse(*b), nil
}

func (s *service) GetByEmployee(ctx context.Context, employeeID string) ([]BalanceResponse, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return nil, balanceerrors.ErrInvalidEmployeeID
	}

	balances, err := s.repo.FindByEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	resp := make([]BalanceResponse, len(balances))
	for i, b := range balances {
		resp[i] = mapToBalanceResponse(b)
	}
	return resp, nil
}

func (s *service) ListTransactions(ctx context.Context, balanceID string) ([]TransactionResponse, error) {
	if _, err := uuid.Parse(balanceID); err != nil {
		return nil, balanceerrors.ErrInvalidBalanceID
	}

	txns, err := s.repo.ListTransactions(ctx, balanceID)
	if err != nil {
		return nil, err
	}

	resp := make([]TransactionResponse, len(txns))
	for i, t := range txns {
		resp[i] = mapToTransactionResponse(t)
	}
	return resp, nil
}

func isUniqueBalanceViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && pgErr.ConstraintName == "uq_leave_balances_employee_type"
	}
	return false
}
