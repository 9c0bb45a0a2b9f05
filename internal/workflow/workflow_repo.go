package workflow

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository follows the same split as the balance repository: transactional
// reads and all writes use database/sql bound to the caller's transaction,
// list endpoints outside a transaction use gorm.
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	CreateRequest(ctx context.Context, r *LeaveRequest) error
	CreateSteps(ctx context.Context, steps []WorkflowStep) error
	FindRequestByID(ctx context.Context, id uuid.UUID) (*LeaveRequest, error)
	FindStepByID(ctx context.Context, id uuid.UUID) (*WorkflowStep, error)
	FindStepsByRequest(ctx context.Context, requestID uuid.UUID) ([]WorkflowStep, error)
	UpdateRequest(ctx context.Context, r *LeaveRequest) error
	UpdateStep(ctx context.Context, s *WorkflowStep) error
	ListRequestsByEmployee(ctx context.Context, employeeID string) ([]LeaveRequest, error)
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

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (r *repository) querier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

const requestColumns = `
    id, employee_id, leave_type, start_date, end_date, total_units, reason, status,
    decided_by, decided_at, decision_remarks,
    cancelled_by, cancelled_at, cancel_reason,
    created_at, updated_at
`

func scanRequest(row *sql.Row) (*LeaveRequest, error) {
	var lr LeaveRequest
	err := row.Scan(
		&lr.ID, &lr.EmployeeID, &lr.LeaveType, &lr.StartDate, &lr.EndDate,
		&lr.TotalUnits, &lr.Reason, &lr.Status,
		&lr.DecidedBy, &lr.DecidedAt, &lr.DecisionRemarks,
		&lr.CancelledBy, &lr.CancelledAt, &lr.CancelReason,
		&lr.CreatedAt, &lr.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &lr, nil
}

func (r *repository) CreateRequest(ctx context.Context, lr *LeaveRequest) error {
	query := `
        INSERT INTO leave_requests (
            id, employee_id, leave_type, start_date, end_date, total_units, reason, status,
            created_at, updated_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
    `
	_, err := r.querier().ExecContext(
		ctx, query,
		lr.ID, lr.EmployeeID, lr.LeaveType, lr.StartDate, lr.EndDate,
		lr.TotalUnits, lr.Reason, lr.Status,
	)
	return err
}

func (r *repository) CreateSteps(ctx context.Context, steps []WorkflowStep) error {
	query := `
        INSERT INTO workflow_steps (
            id, request_id, sequence, approver_id, status, created_at, updated_at
        ) VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
    `
	q := r.querier()
	for i := range steps {
		s := &steps[i]
		if _, err := q.ExecContext(ctx, query, s.ID, s.RequestID, s.Sequence, s.ApproverID, s.Status); err != nil {
			return err
		}
	}
	return nil
}

func (r *repository) FindRequestByID(ctx context.Context, id uuid.UUID) (*LeaveRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM leave_requests WHERE id = $1`
	if r.tx != nil {
		query += " FOR UPDATE"
	}
	return scanRequest(r.querier().QueryRowContext(ctx, query, id))
}

func (r *repository) FindStepByID(ctx context.Context, id uuid.UUID) (*WorkflowStep, error) {
	query := `
        SELECT id, request_id, sequence, approver_id, status, acted_at, remarks, created_at, updated_at
        FROM workflow_steps
        WHERE id = $1
    `
	if r.tx != nil {
		query += " FOR UPDATE"
	}

	var s WorkflowStep
	err := r.querier().QueryRowContext(ctx, query, id).Scan(
		&s.ID, &s.RequestID, &s.Sequence, &s.ApproverID, &s.Status,
		&s.ActedAt, &s.Remarks, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *repository) FindStepsByRequest(ctx context.Context, requestID uuid.UUID) ([]WorkflowStep, error) {
	query := `
        SELECT id, request_id, sequence, approver_id, status, acted_at, remarks, created_at, updated_at
        FROM workflow_steps
        WHERE request_id = $1
        ORDER BY sequence ASC
    `
	rows, err := r.querier().QueryContext(ctx, query, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var steps []WorkflowStep
	for rows.Next() {
		var s WorkflowStep
		if err := rows.Scan(
			&s.ID, &s.RequestID, &s.Sequence, &s.ApproverID, &s.Status,
			&s.ActedAt, &s.Remarks, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, err
		}
		steps = append(steps, s)
	}
	return steps, rows.Err()
}

func (r *repository) UpdateRequest(ctx context.Context, lr *LeaveRequest) error {
	query := `
        UPDATE leave_requests
        SET status = $2,
            decided_by = $3, decided_at = $4, decision_remarks = $5,
            cancelled_by = $6, cancelled_at = $7, cancel_reason = $8,
            updated_at = NOW()
        WHERE id = $1
    `
	_, err := r.querier().ExecContext(
		ctx, query,
		lr.ID, lr.Status,
		lr.DecidedBy, lr.DecidedAt, lr.DecisionRemarks,
		lr.CancelledBy, lr.CancelledAt, lr.CancelReason,
	)
	return err
}

func (r *repository) UpdateStep(ctx context.Context, s *WorkflowStep) error {
	query := `
        UPDATE workflow_steps
        SET status = $2, acted_at = $3, remarks = $4, updated_at = NOW()
        WHERE id = $1
    `
	_, err := r.querier().ExecContext(ctx, query, s.ID, s.Status, s.ActedAt, s.Remarks)
	return err
}

func (r *repository) ListRequestsByEmployee(ctx context.Context, employeeID string) ([]LeaveRequest, error) {
	var requests []LeaveRequest
	err := r.gdb.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Order("created_at DESC").
		Find(&requests).Error
	return requests, err
}
