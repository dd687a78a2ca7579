package impersonate

import (
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/voteagora/op-atlas-sub006/pkg/errors"
	"github.com/voteagora/op-atlas-sub006/pkg/session"
	"github.com/voteagora/op-atlas-sub006/pkg/tokengenerator"
)

// Handle handles HTTP requests for the impersonation API
type Handle struct {
	service    *Service
	jwtService *tokengenerator.JwtService
}

// NewHandle creates a new impersonation handler
func NewHandle(service *Service, jwtService *tokengenerator.JwtService) *Handle {
	return &Handle{
		service:    service,
		jwtService: jwtService,
	}
}

// RegisterRoutes registers the impersonation routes
func (h *Handle) RegisterRoutes(r chi.Router) {
	r.Route("/impersonate", func(r chi.Router) {
		r.Get("/", h.Status)
		r.Get("/targets", h.SearchTargets)
		r.Post("/", h.StartImpersonation)
		r.Delete("/", h.StopImpersonation)
	})
	r.Post("/logout", h.Logout)
}

// Status returns the caller's impersonation state
// (GET /impersonate)
func (h *Handle) Status(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok || !sess.Authenticated() {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	status, err := h.service.Status(sess)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, status)
}

// SearchTargets searches accounts eligible for impersonation
// (GET /impersonate/targets?query=...&limit=...)
func (h *Handle) SearchTargets(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok || !sess.Authenticated() {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	query := r.URL.Query().Get("query")
	limit := int32(0)
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		// ParseInt with a 32-bit size so oversized values fail here
		// instead of silently wrapping into range.
		limitInt, err := strconv.ParseInt(limitStr, 10, 32)
		if err != nil {
			respondError(w, errors.New(errors.ErrCodeInvalidInput, "invalid limit"))
			return
		}
		limit = int32(limitInt)
	}

	result, err := h.service.SearchTargets(r.Context(), sess.OperatorID, query, limit)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// StartImpersonation starts impersonating the requested target account
// and re-issues the session tokens with the impersonation state embedded
// (POST /impersonate)
func (h *Handle) StartImpersonation(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok || !sess.Authenticated() {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	data := StartImpersonateRequest{}
	if err := render.DecodeJSON(r.Body, &data); err != nil {
		respondError(w, errors.New(errors.ErrCodeInvalidInput, "unable to parse body"))
		return
	}
	if data.TargetID == "" {
		respondError(w, errors.New(errors.ErrCodeInvalidInput, "target_id is required"))
		return
	}

	state, err := h.service.StartImpersonation(r.Context(), sess, data.TargetID)
	if err != nil {
		respondError(w, err)
		return
	}

	extraClaims := map[string]interface{}{
		session.ImpersonationClaim: session.ClaimValue(state),
	}
	if err := h.issueTokens(w, sess.OperatorID, extraClaims); err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, StartImpersonateResponse{
		Message:   "Impersonation started",
		Status:    "success",
		AdminID:   state.AdminID,
		TargetID:  state.TargetID,
		StartedAt: state.StartedAt,
	})
}

// StopImpersonation ends the current impersonation and re-issues clean
// session tokens
// (DELETE /impersonate)
func (h *Handle) StopImpersonation(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok || !sess.Authenticated() {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	cleared := h.service.StopImpersonation(r.Context(), sess)
	if err := h.issueTokens(w, cleared.OperatorID, nil); err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, StopImpersonateResponse{
		Message: "Impersonation stopped",
		Status:  "success",
	})
}

// Logout ends the session: any active impersonation is stopped and
// audited, then both token cookies are expired
// (POST /logout)
func (h *Handle) Logout(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok || !sess.Authenticated() {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	h.service.StopImpersonation(r.Context(), sess)

	h.jwtService.ClearTokenCookie(w, tokengenerator.ACCESS_TOKEN_NAME)
	h.jwtService.ClearTokenCookie(w, tokengenerator.REFRESH_TOKEN_NAME)

	respondJSON(w, http.StatusOK, StopImpersonateResponse{
		Message: "Logged out",
		Status:  "success",
	})
}

// issueTokens writes fresh access and refresh token cookies for the
// operator, optionally embedding impersonation claims.
func (h *Handle) issueTokens(w http.ResponseWriter, operatorID string, extraClaims map[string]interface{}) error {
	accessToken, err := h.jwtService.CreateAccessToken(operatorID, extraClaims)
	if err != nil {
		slog.Error("Failed to create access token", "operator_id", operatorID, "err", err)
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to create access token")
	}

	refreshToken, err := h.jwtService.CreateRefreshToken(operatorID, extraClaims)
	if err != nil {
		slog.Error("Failed to create refresh token", "operator_id", operatorID, "err", err)
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to create refresh token")
	}

	h.jwtService.SetTokenCookie(w, tokengenerator.ACCESS_TOKEN_NAME, accessToken.Token, accessToken.Expiry)
	h.jwtService.SetTokenCookie(w, tokengenerator.REFRESH_TOKEN_NAME, refreshToken.Token, refreshToken.Expiry)
	return nil
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// respondError maps a service error onto the HTTP boundary. Internal
// errors surface a generic message.
func respondError(w http.ResponseWriter, err error) {
	status := errors.HTTPStatusFor(err)
	code := errors.CodeOf(err)

	message := "internal error"
	if status < http.StatusInternalServerError {
		var structured *errors.Error
		if stderrors.As(err, &structured) {
			message = structured.Message
		} else {
			message = err.Error()
		}
	} else {
		slog.Error("Request failed", "err", err)
	}

	respondJSON(w, status, errorResponse{Error: message, Code: string(code)})
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("Failed to encode response", "err", err)
	}
}
