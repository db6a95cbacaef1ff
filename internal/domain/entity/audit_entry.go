package entity

import "time"

// AuditEntry registro de auditoría escrito después del commit.
type AuditEntry struct {
	ID         string
	CompanyID  string
	UserID     string
	Action     string // create, approve, reject, transition, open, close, ...
	EntityType string
	EntityID   string
	OldValues  map[string]any
	NewValues  map[string]any
	CreatedAt  time.Time
}
