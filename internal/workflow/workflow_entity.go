package workflow

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	RequestStatusDraft     = "DRAFT"
	RequestStatusPending   = "PENDING_APPROVAL"
	RequestStatusApproved  = "APPROVED"
	RequestStatusRejected  = "REJECTED"
	RequestStatusWithdrawn = "WITHDRAWN"

	StepStatusPending  = "PENDING"
	StepStatusApproved = "APPROVED"
	StepStatusRejected = "REJECTED"
	StepStatusSkipped  = "SKIPPED"
)

// LeaveRequest only ever moves forward:
// DRAFT -> PENDING_APPROVAL -> {APPROVED | REJECTED | WITHDRAWN}.
// Decision and cancellation fields are stamped once, on the terminal
// transition, and never touched again.
type LeaveRequest struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey"`
	EmployeeID uuid.UUID       `gorm:"type:uuid;not null;index:idx_leave_requests_employee"`
	LeaveType  string          `gorm:"type:varchar(30);not null"`
	StartDate  time.Time       `gorm:"type:date;not null"`
	EndDate    time.Time       `gorm:"type:date;not null"`
	TotalUnits decimal.Decimal `gorm:"type:numeric(6,1);not null"`
	Reason     string          `gorm:"type:text"`
	Status     string          `gorm:"type:varchar(20);not null;default:'DRAFT';index:idx_leave_requests_status"`

	DecidedBy       *uuid.UUID `gorm:"type:uuid"`
	DecidedAt       *time.Time
	DecisionRemarks *string `gorm:"type:text"`

	CancelledBy  *uuid.UUID `gorm:"type:uuid"`
	CancelledAt  *time.Time
	CancelReason *string `gorm:"type:text"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// WorkflowStep rows are totally ordered by Sequence within their request.
// There is no stored "current step" flag: a step is actionable iff it is
// PENDING and no lower-sequence sibling is still PENDING.
type WorkflowStep struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	RequestID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_workflow_steps_request_seq"`
	Sequence   int       `gorm:"not null;uniqueIndex:uq_workflow_steps_request_seq"`
	ApproverID uuid.UUID `gorm:"type:uuid;not null;index:idx_workflow_steps_approver"`
	Status     string    `gorm:"type:varchar(20);not null;default:'PENDING'"`
	ActedAt    *time.Time
	Remarks    *string `gorm:"type:text"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
