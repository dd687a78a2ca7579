// Package effectguard intercepts operations with external, irreversible
// side effects. Under impersonation the real operation is never invoked;
// a deterministic mock result is returned instead, and every decision is
// written to the audit trail.
package effectguard

import (
	"context"
	"time"

	"github.com/voteagora/op-atlas-sub006/pkg/adminregistry"
	"github.com/voteagora/op-atlas-sub006/pkg/audit"
	"github.com/voteagora/op-atlas-sub006/pkg/metrics"
	"github.com/voteagora/op-atlas-sub006/pkg/session"
)

// Guard decides per call whether a guarded operation runs for real.
type Guard struct {
	registry *adminregistry.Registry
	sink     audit.Sink
	metrics  *metrics.Metrics
	now      func() time.Time
}

// Option configures a Guard.
type Option func(*Guard)

// WithMetrics attaches prometheus instrumentation.
func WithMetrics(m *metrics.Metrics) Option {
	return func(g *Guard) {
		g.metrics = m
	}
}

// WithClock overrides the clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(g *Guard) {
		g.now = now
	}
}

// New creates a guard over the admin registry and audit sink.
func New(registry *adminregistry.Registry, sink audit.Sink, opts ...Option) *Guard {
	g := &Guard{
		registry: registry,
		sink:     sink,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Guarded is the mandatory entry point for every irreversible external
// operation: attestation issue/revoke, email delivery, durable storage
// uploads and paid verification calls.
//
// The impersonation check is re-evaluated on every call, never cached.
// When the request session is impersonating, mock is returned without
// invoking real; mock must have the same shape as real's success value
// so downstream code cannot tell the paths apart except via the audit
// log. Otherwise real runs exactly once and its result or error is
// propagated unchanged.
func Guarded[T any](ctx context.Context, g *Guard, service, operation string, real func(context.Context) (T, error), mock T) (T, error) {
	sess, _ := session.FromContext(ctx)

	rec := audit.NewRecord(audit.KindEffectCall, g.now())
	rec.Service = service
	rec.Operation = operation

	if session.IsImpersonating(sess, g.registry) {
		rec.Mocked = true
		rec.AdminID = sess.Impersonation.AdminID
		rec.TargetID = sess.Impersonation.TargetID
		g.record(ctx, rec)
		// The mocked path returns immediately even when the request
		// context is already cancelled.
		return mock, nil
	}

	rec.AdminID = sess.OperatorID
	result, err := real(ctx)
	g.record(ctx, rec)
	return result, err
}

// record writes the audit entry. Auditing survives request cancellation:
// the record describes a decision that was already made.
func (g *Guard) record(ctx context.Context, rec audit.Record) {
	if g.metrics != nil {
		g.metrics.ObserveGuardedCall(rec.Service, rec.Mocked)
	}
	g.sink.Record(context.WithoutCancel(ctx), rec)
}
