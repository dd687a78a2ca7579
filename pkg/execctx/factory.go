// Package execctx builds the per-request execution context bundling the
// session, the effective identity and the storage handle.
package execctx

import (
	"github.com/voteagora/op-atlas-sub006/pkg/account"
	"github.com/voteagora/op-atlas-sub006/pkg/adminregistry"
	"github.com/voteagora/op-atlas-sub006/pkg/errors"
	"github.com/voteagora/op-atlas-sub006/pkg/session"
)

// Store is the storage handle exposed to request handlers. All account
// reads go through it so handlers never reach for a connection directly.
type Store interface {
	Accounts() account.Repository
}

// ExecutionContext is request-scoped and never persisted. It is owned by
// the request that created it and discarded at request end.
type ExecutionContext struct {
	Session       session.Session
	EffectiveID   string
	Impersonating bool
	Store         Store
}

// Options controls context construction.
type Options struct {
	// RequireUser makes Build fail with Unauthenticated when the session
	// resolves to no effective identity.
	RequireUser bool

	// ForceProd is for background and scheduled work: the context is
	// built against the production store with impersonation metadata
	// ignored entirely, so a stale descriptor can never leak into a job.
	ForceProd bool
}

// Factory builds execution contexts. The registry and store are fixed at
// startup; Build itself holds no mutable state, so repeated calls with
// the same session yield identical contexts.
type Factory struct {
	registry *adminregistry.Registry
	store    Store
}

// NewFactory creates a context factory over the production store.
func NewFactory(registry *adminregistry.Registry, store Store) *Factory {
	return &Factory{
		registry: registry,
		store:    store,
	}
}

// Build derives the execution context for the given session.
func (f *Factory) Build(sess session.Session, opts Options) (*ExecutionContext, error) {
	if opts.ForceProd {
		sess = sess.WithoutImpersonation()
	}

	effectiveID := session.EffectiveUser(sess, f.registry)
	if opts.RequireUser && effectiveID == "" {
		return nil, errors.New(errors.ErrCodeUnauthenticated, "authentication required")
	}

	return &ExecutionContext{
		Session:       sess,
		EffectiveID:   effectiveID,
		Impersonating: session.IsImpersonating(sess, f.registry),
		Store:         f.store,
	}, nil
}
