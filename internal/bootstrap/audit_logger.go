package bootstrap

import "context"

// AuditLog is an operational event, distinct from the per-record audit trail
// kept in the database.
type AuditLog struct {
	Action  string
	Message string
	Meta    map[string]any
}

type AuditLogger interface {
	Log(ctx context.Context, entry AuditLog)
}
