// Package adminregistry holds the set of identities allowed to impersonate
// other accounts, plus the global feature toggle.
package adminregistry

import (
	"sort"
	"strings"
)

// Registry is the process-wide admin membership set. It is built once at
// startup and read-only afterwards, so concurrent reads need no locking.
type Registry struct {
	enabled bool
	members map[string]struct{}
}

// NewRegistry creates a registry from the configured admin identities.
// Membership is case-insensitive; empty entries are dropped. An empty or
// missing member list yields a registry where nobody is admin.
func NewRegistry(enabled bool, members []string) *Registry {
	set := make(map[string]struct{}, len(members))
	for _, m := range members {
		m = Normalize(m)
		if m == "" {
			continue
		}
		set[m] = struct{}{}
	}
	return &Registry{
		enabled: enabled,
		members: set,
	}
}

// Normalize canonicalizes an identity for membership comparison.
// Wallet addresses are compared case-insensitively.
func Normalize(identity string) string {
	return strings.ToLower(strings.TrimSpace(identity))
}

// IsAdmin reports whether the identity is a member of the registry.
func (r *Registry) IsAdmin(identity string) bool {
	if r == nil {
		return false
	}
	_, ok := r.members[Normalize(identity)]
	return ok
}

// IsEnabled reports whether the impersonation feature is turned on.
// When false, all impersonation operations must be refused regardless of
// membership.
func (r *Registry) IsEnabled() bool {
	return r != nil && r.enabled
}

// Members returns the normalized member identities in sorted order.
func (r *Registry) Members() []string {
	if r == nil {
		return nil
	}
	members := make([]string, 0, len(r.members))
	for m := range r.members {
		members = append(members, m)
	}
	sort.Strings(members)
	return members
}
