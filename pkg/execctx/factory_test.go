package execctx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voteagora/op-atlas-sub006/pkg/account"
	"github.com/voteagora/op-atlas-sub006/pkg/adminregistry"
	"github.com/voteagora/op-atlas-sub006/pkg/errors"
	"github.com/voteagora/op-atlas-sub006/pkg/session"
)

type testStore struct {
	accounts *account.InMemoryRepository
}

func (s *testStore) Accounts() account.Repository {
	return s.accounts
}

func newTestFactory(registry *adminregistry.Registry) *Factory {
	return NewFactory(registry, &testStore{accounts: account.NewInMemoryRepository()})
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

func TestBuild(t *testing.T) {
	registry := adminregistry.NewRegistry(true, []string{"0xA"})
	factory := newTestFactory(registry)

	ec, err := factory.Build(session.Session{OperatorID: "0xB"}, Options{RequireUser: true})
	require.NoError(t, err)
	assert.Equal(t, "0xB", ec.EffectiveID)
	assert.False(t, ec.Impersonating)
	assert.NotNil(t, ec.Store.Accounts())
}

func TestBuildImpersonating(t *testing.T) {
	registry := adminregistry.NewRegistry(true, []string{"0xA"})
	factory := newTestFactory(registry)

	ec, err := factory.Build(impersonatingSession(), Options{RequireUser: true})
	require.NoError(t, err)
	assert.Equal(t, "u-42", ec.EffectiveID)
	assert.True(t, ec.Impersonating)
	assert.Equal(t, "0xA", ec.Session.OperatorID)
}

func TestBuildRequireUser(t *testing.T) {
	factory := newTestFactory(adminregistry.NewRegistry(true, nil))

	_, err := factory.Build(session.Session{}, Options{RequireUser: true})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeUnauthenticated, errors.CodeOf(err))

	ec, err := factory.Build(session.Session{}, Options{})
	require.NoError(t, err)
	assert.Equal(t, "", ec.EffectiveID)
}

func TestBuildForceProd(t *testing.T) {
	registry := adminregistry.NewRegistry(true, []string{"0xA"})
	factory := newTestFactory(registry)

	ec, err := factory.Build(impersonatingSession(), Options{RequireUser: true, ForceProd: true})
	require.NoError(t, err)
	assert.Equal(t, "0xA", ec.EffectiveID, "background work always acts as the operator")
	assert.False(t, ec.Impersonating)
	assert.Nil(t, ec.Session.Impersonation)
}

func TestBuildIsDeterministic(t *testing.T) {
	registry := adminregistry.NewRegistry(true, []string{"0xA"})
	factory := newTestFactory(registry)
	sess := impersonatingSession()

	first, err := factory.Build(sess, Options{RequireUser: true})
	require.NoError(t, err)
	second, err := factory.Build(sess, Options{RequireUser: true})
	require.NoError(t, err)

	assert.Equal(t, first.EffectiveID, second.EffectiveID)
	assert.Equal(t, first.Impersonating, second.Impersonating)
}
