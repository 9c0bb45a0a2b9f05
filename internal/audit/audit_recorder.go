package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/venkateshmergu-svg/LMS-ORG-01-sub002/internal/shared/contextutil"
)

// Recorder appends audit entries. Mutating repositories write through it so
// that an entry lands in the same transaction as the data change it records.
type Recorder interface {
	WithTx(tx *sql.Tx) Recorder
	Record(ctx context.Context, e Entry) error
}

type recorder struct {
	db *sql.DB
	tx *sql.Tx
}

func NewRecorder(db *sql.DB) Recorder {
	return &recorder{db: db}
}

func (r *recorder) WithTx(tx *sql.Tx) Recorder {
	return &recorder{db: r.db, tx: tx}
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (r *recorder) execer() execer {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

func (r *recorder) Record(ctx context.Context, e Entry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.ActorID == "" {
		e.ActorID = contextutil.GetActorID(ctx)
	}
	if e.CorrelationID == "" {
		e.CorrelationID = contextutil.GetRequestID(ctx)
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	query := `
        INSERT INTO audit_log_entries (
            id, entity_type, entity_id, action, actor_id, before, after, correlation_id, created_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
    `

	_, err := r.execer().ExecContext(
		ctx, query,
		e.ID, e.EntityType, e.EntityID, e.Action,
		e.ActorID, e.Before, e.After, e.CorrelationID, e.CreatedAt,
	)
	return err
}

// Snapshot serializes an entity for the before/after columns.
func Snapshot(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return b
}
