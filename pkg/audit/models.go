package audit

import (
	"time"

	"github.com/google/uuid"
)

// Kind identifies the type of audit record
type Kind string

const (
	KindImpersonationStart Kind = "impersonation_start"
	KindImpersonationStop  Kind = "impersonation_stop"
	KindEffectCall         Kind = "effect_call"
)

// Record is an append-only audit entry covering impersonation lifecycle
// events and every guarded effect invocation. Records are never mutated
// or deleted by this subsystem.
type Record struct {
	ID        uuid.UUID `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Kind      Kind      `json:"kind"`
	Service   string    `json:"service,omitempty"`
	Operation string    `json:"operation,omitempty"`
	Mocked    bool      `json:"mocked,omitempty"`
	AdminID   string    `json:"admin_id,omitempty"`
	TargetID  string    `json:"target_id,omitempty"`
}

// NewRecord creates a record with a fresh ID and the given timestamp.
func NewRecord(kind Kind, at time.Time) Record {
	return Record{
		ID:        uuid.New(),
		Timestamp: at.UTC(),
		Kind:      kind,
	}
}
