// Package session resolves inbound authentication proof into a Session
// and computes the effective identity all data scoping must use.
package session

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/voteagora/op-atlas-sub006/pkg/adminregistry"
)

// ImpersonationClaim is the name of the JWT claim carrying the
// impersonation descriptor.
const ImpersonationClaim = "impersonation"

// Resolver turns verified token claims into a Session.
type Resolver struct {
	registry *adminregistry.Registry
}

// NewResolver creates a session resolver backed by the admin registry.
func NewResolver(registry *adminregistry.Registry) *Resolver {
	return &Resolver{registry: registry}
}

// Resolve builds a Session from verified JWT claims. A missing subject
// yields an unauthenticated session; malformed impersonation metadata is
// treated as no impersonation, never as a request-fatal error.
func (r *Resolver) Resolve(claims map[string]interface{}) Session {
	sess := Session{}

	if sub, ok := claims["sub"].(string); ok {
		sess.OperatorID = sub
	}

	sess.Impersonation = parseImpersonation(claims)
	return sess
}

// impersonationClaim mirrors the token-embedded impersonation descriptor.
type impersonationClaim struct {
	Active    bool   `json:"active"`
	AdminID   string `json:"admin_id"`
	TargetID  string `json:"target_id"`
	StartedAt string `json:"started_at"`
}

// parseImpersonation extracts and validates the impersonation claim.
// Any shape problem resolves to nil.
func parseImpersonation(claims map[string]interface{}) *ImpersonationState {
	raw, exists := claims[ImpersonationClaim]
	if !exists || raw == nil {
		return nil
	}

	rawMap, ok := raw.(map[string]interface{})
	if !ok {
		slog.Warn("Malformed impersonation claim, ignoring", "type", "not a map")
		return nil
	}

	var claim impersonationClaim
	if err := loadFromMap(rawMap, &claim); err != nil {
		slog.Warn("Failed to parse impersonation claim, ignoring", "err", err)
		return nil
	}

	if !claim.Active || claim.AdminID == "" || claim.TargetID == "" {
		return nil
	}

	state := &ImpersonationState{
		Active:   true,
		AdminID:  claim.AdminID,
		TargetID: claim.TargetID,
	}
	if claim.StartedAt != "" {
		startedAt, err := time.Parse(time.RFC3339, claim.StartedAt)
		if err != nil {
			slog.Warn("Invalid impersonation started_at, ignoring claim", "err", err)
			return nil
		}
		state.StartedAt = startedAt
	}
	return state
}

// ClaimValue converts an ImpersonationState into the map shape embedded
// into token claims.
func ClaimValue(state ImpersonationState) map[string]interface{} {
	return map[string]interface{}{
		"active":     state.Active,
		"admin_id":   state.AdminID,
		"target_id":  state.TargetID,
		"started_at": state.StartedAt.UTC().Format(time.RFC3339),
	}
}

func loadFromMap(m map[string]interface{}, out interface{}) error {
	data, err := json.Marshal(m)
	if err == nil {
		err = json.Unmarshal(data, out)
	}
	return err
}
