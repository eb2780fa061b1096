// Package audit provides the append-only audit trail written alongside
// document saves.
package audit

import (
	"context"
	"time"

	"backoffice/internal/core/id"
)

// Actions recorded in the trail.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// Entry is one audit record. Payload holds the entity snapshot at the time
// of the action; the storage layer compresses it.
type Entry struct {
	ID         id.ID     `db:"id" json:"id"`
	OccurredAt time.Time `db:"occurred_at" json:"occurredAt"`
	Action     string    `db:"action" json:"action"`
	EntityType string    `db:"entity_type" json:"entityType"`
	EntityID   string    `db:"entity_id" json:"entityId"`
	TraceID    string    `db:"trace_id" json:"traceId,omitempty"`
	Payload    any       `db:"-" json:"payload,omitempty"`
}

// NewEntry creates an audit entry for an action on an entity.
func NewEntry(action, entityType string, entityID id.ID, payload any) Entry {
	return Entry{
		ID:         id.New(),
		OccurredAt: time.Now().UTC(),
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID.String(),
		Payload:    payload,
	}
}

// Recorder appends entries to the trail. A write failure must not abort the
// business transaction; callers log and continue.
type Recorder interface {
	Record(ctx context.Context, entry Entry) error
}

// NopRecorder discards entries. Used in tests and when auditing is disabled.
type NopRecorder struct{}

func (NopRecorder) Record(ctx context.Context, entry Entry) error { return nil }
