package impersonate

import (
	"time"

	"github.com/voteagora/op-atlas-sub006/pkg/account"
)

const (
	// MinQueryLength is the shortest target search query that hits the
	// store. Shorter queries return an empty result with a reason.
	MinQueryLength = 2

	// MaxSearchLimit is the hard ceiling on search result counts.
	MaxSearchLimit = 50

	// DefaultSearchLimit applies when no limit is requested.
	DefaultSearchLimit = 20
)

// TargetSummary is the account view returned by target search.
type TargetSummary struct {
	ID      string `json:"id"`
	Address string `json:"address,omitempty"`
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
}

// SearchResult holds target search results. Reason is set when the
// query was not executed (for example, too short a query).
type SearchResult struct {
	Targets []TargetSummary `json:"targets"`
	Reason  string          `json:"reason,omitempty"`
}

// StatusResponse describes the caller's impersonation state.
type StatusResponse struct {
	Enabled       bool       `json:"enabled"`
	IsAdmin       bool       `json:"is_admin"`
	Impersonating bool       `json:"impersonating"`
	AdminID       string     `json:"admin_id,omitempty"`
	TargetID      string     `json:"target_id,omitempty"`
	StartedAt     *time.Time `json:"started_at,omitempty"`
}

// StartImpersonateRequest is the request body for starting impersonation.
type StartImpersonateRequest struct {
	TargetID string `json:"target_id"`
}

// StartImpersonateResponse is returned on a successful start.
type StartImpersonateResponse struct {
	Message   string    `json:"message"`
	Status    string    `json:"status"`
	AdminID   string    `json:"admin_id"`
	TargetID  string    `json:"target_id"`
	StartedAt time.Time `json:"started_at"`
}

// StopImpersonateResponse is returned on a successful stop.
type StopImpersonateResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

func toTargetSummary(acct account.Account) TargetSummary {
	return TargetSummary{
		ID:      acct.ID,
		Address: acct.Address,
		Name:    acct.Name,
		Email:   acct.Email,
	}
}

func toTargetSummaries(accounts []account.Account) []TargetSummary {
	targets := make([]TargetSummary, len(accounts))
	for i, acct := range accounts {
		targets[i] = toTargetSummary(acct)
	}
	return targets
}
