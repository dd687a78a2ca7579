package session

import (
	"log/slog"
	"time"
)

// ImpersonationState describes an active impersonation embedded in the
// session token. There is no server-side revocation list: the state lives
// until the token expires or the admin explicitly stops, and admin
// membership is re-checked on every read.
type ImpersonationState struct {
	Active    bool      `json:"active"`
	AdminID   string    `json:"admin_id"`
	TargetID  string    `json:"target_id"`
	StartedAt time.Time `json:"started_at"`
}

// Session is the per-request authentication result. It is immutable for
// the lifetime of the request and never persisted directly.
type Session struct {
	// OperatorID is the authenticated identity performing the request.
	OperatorID string

	// Impersonation is the active impersonation descriptor, or nil when
	// the operator acts as themselves. Malformed token metadata always
	// resolves to nil rather than an error.
	Impersonation *ImpersonationState
}

// Authenticated reports whether the session carries an operator identity.
func (s Session) Authenticated() bool {
	return s.OperatorID != ""
}

// WithoutImpersonation returns a copy of the session with the
// impersonation state cleared.
func (s Session) WithoutImpersonation() Session {
	s.Impersonation = nil
	return s
}

func (s Session) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("operator_id", s.OperatorID),
	}
	if s.Impersonation != nil {
		attrs = append(attrs,
			slog.Bool("impersonating", s.Impersonation.Active),
			slog.String("target_id", s.Impersonation.TargetID),
		)
	}
	return slog.GroupValue(attrs...)
}
