package effectguard_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voteagora/op-atlas-sub006/pkg/adminregistry"
	"github.com/voteagora/op-atlas-sub006/pkg/audit"
	"github.com/voteagora/op-atlas-sub006/pkg/effectguard"
	"github.com/voteagora/op-atlas-sub006/pkg/session"
	"github.com/voteagora/op-atlas-sub006/pkg/storage"
)

func contextWith(sess session.Session) context.Context {
	return session.WithSession(context.Background(), sess)
}

func impersonatingSession() session.Session {
	return session.Session{
		OperatorID: "0xA",
		Impersonation: &session.ImpersonationState{
			Active:    true,
			AdminID:   "0xA",
			TargetID:  "u-42",
			StartedAt: time.Now().UTC(),
		},
	}
}

func TestGuardedRealPath(t *testing.T) {
	registry := adminregistry.NewRegistry(true, []string{"0xA"})
	sink := audit.NewMemorySink()
	guard := effectguard.New(registry, sink)

	calls := 0
	result, err := effectguard.Guarded(contextWith(session.Session{OperatorID: "0xB"}), guard,
		"attestation", "issue",
		func(ctx context.Context) (string, error) {
			calls++
			return "real-uid", nil
		},
		"mock-uid",
	)

	require.NoError(t, err)
	assert.Equal(t, "real-uid", result)
	assert.Equal(t, 1, calls, "real operation runs exactly once")

	records := sink.ByKind(audit.KindEffectCall)
	require.Len(t, records, 1)
	assert.False(t, records[0].Mocked)
	assert.Equal(t, "attestation", records[0].Service)
	assert.Equal(t, "0xB", records[0].AdminID)
}

func TestGuardedErrorPropagatedUnchanged(t *testing.T) {
	registry := adminregistry.NewRegistry(true, []string{"0xA"})
	guard := effectguard.New(registry, audit.NewMemorySink())

	wantErr := fmt.Errorf("gateway timeout")
	_, err := effectguard.Guarded(contextWith(session.Session{OperatorID: "0xB"}), guard,
		"email", "send",
		func(ctx context.Context) (string, error) {
			return "", wantErr
		},
		"mock",
	)
	assert.Equal(t, wantErr, err)
}

func TestGuardedMockedPath(t *testing.T) {
	registry := adminregistry.NewRegistry(true, []string{"0xA"})
	sink := audit.NewMemorySink()
	guard := effectguard.New(registry, sink)

	calls := 0
	result, err := effectguard.Guarded(contextWith(impersonatingSession()), guard,
		"attestation", "issue",
		func(ctx context.Context) (string, error) {
			calls++
			return "real-uid", nil
		},
		"mock-uid",
	)

	require.NoError(t, err)
	assert.Equal(t, "mock-uid", result, "mocked path returns exactly the mock value")
	assert.Equal(t, 0, calls, "real operation is never invoked under impersonation")

	records := sink.ByKind(audit.KindEffectCall)
	require.Len(t, records, 1)
	assert.True(t, records[0].Mocked)
	assert.Equal(t, "0xA", records[0].AdminID)
	assert.Equal(t, "u-42", records[0].TargetID)
}

func TestGuardedStaleAdminRunsReal(t *testing.T) {
	// The admin was removed from the registry; the impersonation metadata
	// in the session no longer suppresses the real effect.
	registry := adminregistry.NewRegistry(true, []string{"0xOther"})
	sink := audit.NewMemorySink()
	guard := effectguard.New(registry, sink)

	calls := 0
	result, err := effectguard.Guarded(contextWith(impersonatingSession()), guard,
		"verification", "verify",
		func(ctx context.Context) (string, error) {
			calls++
			return "real", nil
		},
		"mock",
	)

	require.NoError(t, err)
	assert.Equal(t, "real", result)
	assert.Equal(t, 1, calls)

	records := sink.ByKind(audit.KindEffectCall)
	require.Len(t, records, 1)
	assert.False(t, records[0].Mocked)
}

func TestGuardedMockedPathIgnoresCancelledContext(t *testing.T) {
	registry := adminregistry.NewRegistry(true, []string{"0xA"})
	sink := audit.NewMemorySink()
	guard := effectguard.New(registry, sink)

	ctx, cancel := context.WithCancel(contextWith(impersonatingSession()))
	cancel()

	result, err := effectguard.Guarded(ctx, guard, "storage", "upload",
		func(ctx context.Context) (string, error) {
			return "", ctx.Err()
		},
		"mock-url",
	)

	require.NoError(t, err)
	assert.Equal(t, "mock-url", result)
	assert.Len(t, sink.Records(), 1, "audit write survives cancellation")
}

func TestGuardedUploadScenario(t *testing.T) {
	// Admin 0xA impersonates user u-42 and triggers an avatar upload. The
	// caller receives a deterministic mock URL and the audit trail shows a
	// single mocked effect call.
	registry := adminregistry.NewRegistry(true, []string{"0xA"})
	sink := audit.NewMemorySink()
	guard := effectguard.New(registry, sink)

	result, err := effectguard.Guarded(contextWith(impersonatingSession()), guard,
		"storage", "upload avatar u-42/avatar.png",
		func(ctx context.Context) (storage.UploadResult, error) {
			t.Fatal("real upload must not run")
			return storage.UploadResult{}, nil
		},
		storage.MockUploadResult("avatar.png"),
	)

	require.NoError(t, err)
	assert.Equal(t, "https://storage.mock.op-atlas.dev/impersonation/avatar.png", result.URL)

	records := sink.ByKind(audit.KindEffectCall)
	require.Len(t, records, 1)
	assert.True(t, records[0].Mocked)
	assert.Equal(t, "storage", records[0].Service)
	assert.Equal(t, "0xA", records[0].AdminID)
	assert.Equal(t, "u-42", records[0].TargetID)
}

func TestGuardedNoSessionRunsReal(t *testing.T) {
	registry := adminregistry.NewRegistry(true, []string{"0xA"})
	guard := effectguard.New(registry, audit.NewMemorySink())

	calls := 0
	result, err := effectguard.Guarded(context.Background(), guard, "email", "send",
		func(ctx context.Context) (string, error) {
			calls++
			return "sent", nil
		},
		"mock",
	)

	require.NoError(t, err)
	assert.Equal(t, "sent", result)
	assert.Equal(t, 1, calls)
}
