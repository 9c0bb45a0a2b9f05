package audit

import (
	"time"

	"github.com/google/uuid"
)

// Entry is one immutable change record. Rows are only ever inserted; there is
// no update or delete path anywhere in the codebase.
type Entry struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	EntityType    string    `gorm:"type:varchar(40);not null;index:idx_audit_entries_entity"`
	EntityID      string    `gorm:"type:varchar(36);not null;index:idx_audit_entries_entity"`
	Action        string    `gorm:"type:varchar(20);not null"`
	ActorID       string    `gorm:"type:varchar(36)"`
	Before        []byte    `gorm:"type:jsonb"`
	After         []byte    `gorm:"type:jsonb"`
	CorrelationID string    `gorm:"type:varchar(64)"`
	CreatedAt     time.Time
}

func (Entry) TableName() string {
	return "audit_log_entries"
}

const (
	ActionCreate = "create"
	ActionUpdate = "update"
)
