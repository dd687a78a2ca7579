package impersonate_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voteagora/op-atlas-sub006/pkg/account"
	"github.com/voteagora/op-atlas-sub006/pkg/adminregistry"
	"github.com/voteagora/op-atlas-sub006/pkg/audit"
	"github.com/voteagora/op-atlas-sub006/pkg/impersonate"
	"github.com/voteagora/op-atlas-sub006/pkg/session"
	"github.com/voteagora/op-atlas-sub006/pkg/tokengenerator"
)

func newTestHandle(t *testing.T, enabled bool, admins []string) *chi.Mux {
	t.Helper()

	accounts := account.NewInMemoryRepository()
	accounts.AddAccount(account.Account{ID: "u-42", Address: "0x42", Name: "Alice Example", Email: "alice@example.com"})

	registry := adminregistry.NewRegistry(enabled, admins)
	service := impersonate.NewService(registry, accounts, audit.NewMemorySink())

	generator := tokengenerator.NewJwtTokenGenerator("test-secret", "op-atlas", "op-atlas")
	handle := impersonate.NewHandle(service, tokengenerator.NewJwtService(generator))

	r := chi.NewRouter()
	handle.RegisterRoutes(r)
	return r
}

func doRequest(router *chi.Mux, method, target, body string, sess *session.Session) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if sess != nil {
		req = req.WithContext(session.WithSession(req.Context(), *sess))
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestStatusEndpoint(t *testing.T) {
	router := newTestHandle(t, true, []string{"0xA"})

	w := doRequest(router, http.MethodGet, "/impersonate", "", &session.Session{OperatorID: "0xA"})
	require.Equal(t, http.StatusOK, w.Code)

	var status impersonate.StatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.True(t, status.Enabled)
	assert.True(t, status.IsAdmin)
	assert.False(t, status.Impersonating)
}

func TestStatusEndpointForbidden(t *testing.T) {
	router := newTestHandle(t, true, []string{"0xA"})

	// Non-members get the same refusal as for every other impersonation
	// operation; the response must not reveal the feature state.
	w := doRequest(router, http.MethodGet, "/impersonate", "", &session.Session{OperatorID: "0xB"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.NotContains(t, w.Body.String(), "enabled")
	assert.NotContains(t, w.Body.String(), "impersonating")
}

func TestStatusEndpointFeatureDisabled(t *testing.T) {
	router := newTestHandle(t, false, []string{"0xA"})

	w := doRequest(router, http.MethodGet, "/impersonate", "", &session.Session{OperatorID: "0xA"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestStatusEndpointUnauthenticated(t *testing.T) {
	router := newTestHandle(t, true, []string{"0xA"})

	w := doRequest(router, http.MethodGet, "/impersonate", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSearchTargetsEndpoint(t *testing.T) {
	router := newTestHandle(t, true, []string{"0xA"})

	w := doRequest(router, http.MethodGet, "/impersonate/targets?query=alice", "", &session.Session{OperatorID: "0xA"})
	require.Equal(t, http.StatusOK, w.Code)

	var result impersonate.SearchResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	require.Len(t, result.Targets, 1)
	assert.Equal(t, "u-42", result.Targets[0].ID)
}

func TestSearchTargetsEndpointForbidden(t *testing.T) {
	router := newTestHandle(t, true, []string{"0xA"})

	w := doRequest(router, http.MethodGet, "/impersonate/targets?query=alice", "", &session.Session{OperatorID: "0xB"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.NotContains(t, w.Body.String(), "0xA", "error responses never reveal admin identities")
}

func TestSearchTargetsEndpointFeatureDisabled(t *testing.T) {
	router := newTestHandle(t, false, []string{"0xA"})

	w := doRequest(router, http.MethodGet, "/impersonate/targets?query=alice", "", &session.Session{OperatorID: "0xA"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestSearchTargetsEndpointLimitTooLarge(t *testing.T) {
	router := newTestHandle(t, true, []string{"0xA"})

	w := doRequest(router, http.MethodGet, "/impersonate/targets?query=alice&limit=51", "", &session.Session{OperatorID: "0xA"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchTargetsEndpointLimitOverflow(t *testing.T) {
	router := newTestHandle(t, true, []string{"0xA"})

	// Values beyond int32 must fail outright, not wrap into range.
	w := doRequest(router, http.MethodGet, "/impersonate/targets?query=alice&limit=4294967306", "", &session.Session{OperatorID: "0xA"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchTargetsEndpointInvalidLimit(t *testing.T) {
	router := newTestHandle(t, true, []string{"0xA"})

	w := doRequest(router, http.MethodGet, "/impersonate/targets?query=alice&limit=ten", "", &session.Session{OperatorID: "0xA"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchTargetsEndpointShortQuery(t *testing.T) {
	router := newTestHandle(t, true, []string{"0xA"})

	w := doRequest(router, http.MethodGet, "/impersonate/targets?query=a", "", &session.Session{OperatorID: "0xA"})
	require.Equal(t, http.StatusOK, w.Code)

	var result impersonate.SearchResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Empty(t, result.Targets)
	assert.NotEmpty(t, result.Reason)
}

func TestStartImpersonationEndpoint(t *testing.T) {
	router := newTestHandle(t, true, []string{"0xA"})

	w := doRequest(router, http.MethodPost, "/impersonate", `{"target_id":"u-42"}`, &session.Session{OperatorID: "0xA"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp impersonate.StartImpersonateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, "u-42", resp.TargetID)

	// Both session cookies are re-issued with the impersonation claim.
	cookies := w.Result().Cookies()
	names := map[string]string{}
	for _, c := range cookies {
		names[c.Name] = c.Value
	}
	require.Contains(t, names, tokengenerator.ACCESS_TOKEN_NAME)
	require.Contains(t, names, tokengenerator.REFRESH_TOKEN_NAME)

	generator := tokengenerator.NewJwtTokenGenerator("test-secret", "op-atlas", "op-atlas")
	token, err := generator.ParseToken(names[tokengenerator.ACCESS_TOKEN_NAME])
	require.NoError(t, err)

	registry := adminregistry.NewRegistry(true, []string{"0xA"})
	resolver := session.NewResolver(registry)
	subject, err := token.Claims.GetSubject()
	require.NoError(t, err)
	assert.Equal(t, "0xA", subject, "the token subject stays the operator")

	sess := resolver.Resolve(tokenClaims(t, token))
	require.NotNil(t, sess.Impersonation)
	assert.Equal(t, "u-42", sess.Impersonation.TargetID)
	assert.Equal(t, "u-42", session.EffectiveUser(sess, registry))
}

func TestStartImpersonationEndpointMissingTarget(t *testing.T) {
	router := newTestHandle(t, true, []string{"0xA"})

	w := doRequest(router, http.MethodPost, "/impersonate", `{}`, &session.Session{OperatorID: "0xA"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStartImpersonationEndpointTargetNotFound(t *testing.T) {
	router := newTestHandle(t, true, []string{"0xA"})

	w := doRequest(router, http.MethodPost, "/impersonate", `{"target_id":"u-999"}`, &session.Session{OperatorID: "0xA"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStopImpersonationEndpoint(t *testing.T) {
	router := newTestHandle(t, true, []string{"0xA"})

	sess := session.Session{
		OperatorID: "0xA",
		Impersonation: &session.ImpersonationState{
			Active:    true,
			AdminID:   "0xA",
			TargetID:  "u-42",
			StartedAt: time.Now().UTC(),
		},
	}

	w := doRequest(router, http.MethodDelete, "/impersonate", "", &sess)
	require.Equal(t, http.StatusOK, w.Code)

	// The re-issued access token carries no impersonation claim.
	generator := tokengenerator.NewJwtTokenGenerator("test-secret", "op-atlas", "op-atlas")
	for _, c := range w.Result().Cookies() {
		if c.Name != tokengenerator.ACCESS_TOKEN_NAME {
			continue
		}
		token, err := generator.ParseToken(c.Value)
		require.NoError(t, err)
		resolver := session.NewResolver(adminregistry.NewRegistry(true, []string{"0xA"}))
		clean := resolver.Resolve(tokenClaims(t, token))
		assert.Nil(t, clean.Impersonation)
		assert.Equal(t, "0xA", clean.OperatorID)
	}
}

func TestLogoutEndpoint(t *testing.T) {
	router := newTestHandle(t, true, []string{"0xA"})

	w := doRequest(router, http.MethodPost, "/logout", "", &session.Session{OperatorID: "0xA"})
	require.Equal(t, http.StatusOK, w.Code)

	cleared := map[string]bool{}
	for _, c := range w.Result().Cookies() {
		if c.Value == "" && c.MaxAge < 0 {
			cleared[c.Name] = true
		}
	}
	assert.True(t, cleared[tokengenerator.ACCESS_TOKEN_NAME], "access token cookie is expired")
	assert.True(t, cleared[tokengenerator.REFRESH_TOKEN_NAME], "refresh token cookie is expired")
}

func TestLogoutEndpointUnauthenticated(t *testing.T) {
	router := newTestHandle(t, true, []string{"0xA"})

	w := doRequest(router, http.MethodPost, "/logout", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func tokenClaims(t *testing.T, token *jwt.Token) map[string]interface{} {
	t.Helper()
	claims, ok := token.Claims.(jwt.MapClaims)
	require.True(t, ok)
	return map[string]interface{}(claims)
}
