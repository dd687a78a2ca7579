package impersonate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/voteagora/op-atlas-sub006/pkg/account"
	"github.com/voteagora/op-atlas-sub006/pkg/adminregistry"
	"github.com/voteagora/op-atlas-sub006/pkg/audit"
	"github.com/voteagora/op-atlas-sub006/pkg/metrics"
	"github.com/voteagora/op-atlas-sub006/pkg/session"
)

// Service implements target search and impersonation session issuance,
// gated by the admin registry.
type Service struct {
	registry *adminregistry.Registry
	accounts account.Repository
	sink     audit.Sink
	metrics  *metrics.Metrics
	now      func() time.Time
}

// Option is a function that configures a Service
type Option func(*Service)

// WithMetrics attaches prometheus instrumentation.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithClock overrides the clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a new impersonation service
func NewService(registry *adminregistry.Registry, accounts account.Repository, sink audit.Sink, opts ...Option) *Service {
	s := &Service{
		registry: registry,
		accounts: accounts,
		sink:     sink,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// authorize gates every impersonation operation: the caller must be a
// registry member and the feature must be enabled.
func (s *Service) authorize(adminID string) error {
	if !s.registry.IsAdmin(adminID) {
		return ErrNotAdmin
	}
	if !s.registry.IsEnabled() {
		return ErrFeatureDisabled
	}
	return nil
}

// Status reports the caller's impersonation state. Like every other
// impersonation operation it is served to registry members only, so the
// response never leaks feature state to regular users.
func (s *Service) Status(sess session.Session) (StatusResponse, error) {
	if err := s.authorize(sess.OperatorID); err != nil {
		return StatusResponse{}, err
	}

	status := StatusResponse{
		Enabled:       s.registry.IsEnabled(),
		IsAdmin:       true,
		Impersonating: session.IsImpersonating(sess, s.registry),
	}
	if status.Impersonating {
		status.AdminID = sess.Impersonation.AdminID
		status.TargetID = sess.Impersonation.TargetID
		startedAt := sess.Impersonation.StartedAt
		status.StartedAt = &startedAt
	}
	return status, nil
}

// SearchTargets searches accounts eligible for impersonation. Queries
// shorter than MinQueryLength return an empty result with a reason and
// never touch the store; limits above MaxSearchLimit are rejected before
// touching the store.
func (s *Service) SearchTargets(ctx context.Context, adminID, query string, limit int32) (SearchResult, error) {
	if err := s.authorize(adminID); err != nil {
		return SearchResult{}, err
	}

	if limit > MaxSearchLimit {
		return SearchResult{}, ErrLimitTooLarge(limit)
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	query = strings.TrimSpace(query)
	if len([]rune(query)) < MinQueryLength {
		return SearchResult{
			Targets: []TargetSummary{},
			Reason:  fmt.Sprintf("query must be at least %d characters", MinQueryLength),
		}, nil
	}

	accounts, err := s.accounts.SearchByText(ctx, query, limit)
	if err != nil {
		return SearchResult{}, fmt.Errorf("failed to search accounts: %w", err)
	}

	return SearchResult{Targets: toTargetSummaries(accounts)}, nil
}

// StartImpersonation validates the caller and target and returns a new
// impersonation state to embed into the session tokens. Starting while
// already impersonating ends the prior impersonation first; there is no
// nesting.
func (s *Service) StartImpersonation(ctx context.Context, sess session.Session, targetID string) (session.ImpersonationState, error) {
	adminID := sess.OperatorID
	if err := s.authorize(adminID); err != nil {
		return session.ImpersonationState{}, err
	}

	if adminregistry.Normalize(adminID) == adminregistry.Normalize(targetID) {
		return session.ImpersonationState{}, ErrSelfImpersonation
	}

	target, err := s.accounts.FindByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, account.ErrAccountNotFound) {
			return session.ImpersonationState{}, ErrTargetNotFound
		}
		return session.ImpersonationState{}, fmt.Errorf("failed to look up target account: %w", err)
	}

	// Also reject targets whose account resolves to the admin's own
	// wallet under a different id.
	if target.Address != "" && adminregistry.Normalize(target.Address) == adminregistry.Normalize(adminID) {
		return session.ImpersonationState{}, ErrSelfImpersonation
	}

	if session.IsImpersonating(sess, s.registry) {
		sess = s.StopImpersonation(ctx, sess)
	}

	state := session.ImpersonationState{
		Active:    true,
		AdminID:   adminID,
		TargetID:  target.ID,
		StartedAt: s.now().UTC(),
	}

	rec := audit.NewRecord(audit.KindImpersonationStart, s.now())
	rec.AdminID = adminID
	rec.TargetID = target.ID
	s.sink.Record(ctx, rec)

	if s.metrics != nil {
		s.metrics.IncrementImpersonationStarts()
	}

	slog.Info("Impersonation started", "admin_id", adminID, "target_id", target.ID)
	return state, nil
}

// StopImpersonation clears the impersonation state. The returned session
// resolves back to the operator identity. Stopping a session that is not
// impersonating is a no-op.
func (s *Service) StopImpersonation(ctx context.Context, sess session.Session) session.Session {
	state := sess.Impersonation
	if state == nil || !state.Active {
		return sess.WithoutImpersonation()
	}

	rec := audit.NewRecord(audit.KindImpersonationStop, s.now())
	rec.AdminID = state.AdminID
	rec.TargetID = state.TargetID
	s.sink.Record(ctx, rec)

	if s.metrics != nil {
		s.metrics.IncrementImpersonationStops()
	}

	slog.Info("Impersonation stopped", "admin_id", state.AdminID, "target_id", state.TargetID)
	return sess.WithoutImpersonation()
}
