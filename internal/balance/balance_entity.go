package balance

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LeaveBalance is the three-bucket ledger row for one (employee, leave type)
// pair. Engine operations only move quantity between buckets; the bucket sum
// changes solely through accrual adjustments.
type LeaveBalance struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey"`
	EmployeeID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:uq_leave_balances_employee_type"`
	LeaveType  string          `gorm:"type:varchar(30);not null;uniqueIndex:uq_leave_balances_employee_type"`
	Available  decimal.Decimal `gorm:"type:numeric(8,1);not null"`
	Held       decimal.Decimal `gorm:"type:numeric(8,1);not null"`
	Consumed   decimal.Decimal `gorm:"type:numeric(8,1);not null"`
	AsOf       time.Time       `gorm:"not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// BalanceTransaction is one append-only ledger row per balance-affecting
// transition. Amount is signed from the spendable side: quantity leaving
// available/held is negative, quantity returning is positive.
type BalanceTransaction struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	BalanceID uuid.UUID       `gorm:"type:uuid;not null;index:idx_balance_transactions_balance"`
	Kind      string          `gorm:"type:varchar(20);not null"`
	Amount    decimal.Decimal `gorm:"type:numeric(8,1);not null"`
	RequestID *uuid.UUID      `gorm:"type:uuid;index:idx_balance_transactions_request"`
	CreatedAt time.Time
}

const (
	TxKindHold    = "HOLD"
	TxKindConsume = "CONSUME"
	TxKindRelease = "RELEASE"
	TxKindAccrual = "ACCRUAL"
)
