package bootstrap

import "context"

// AuditLog is one audit trail entry. OldValues/NewValues carry the state
// around a transition so the trail can reconstruct what changed.
type AuditLog struct {
	Action    string
	Actor     string
	Entity    string
	EntityID  string
	Message   string
	OldValues map[string]any
	NewValues map[string]any
	Meta      map[string]any
}

type AuditLogger interface {
	Log(ctx context.Context, entry AuditLog)
}
