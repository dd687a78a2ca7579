package profile

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/voteagora/op-atlas-sub006/pkg/errors"
	"github.com/voteagora/op-atlas-sub006/pkg/session"
)

// maxAvatarBytes caps avatar upload size.
const maxAvatarBytes = 5 << 20

// Handle handles HTTP requests for the profile surface
type Handle struct {
	service *Service
}

// NewHandle creates a new profile handler
func NewHandle(service *Service) *Handle {
	return &Handle{service: service}
}

// RegisterRoutes registers the profile routes
func (h *Handle) RegisterRoutes(r chi.Router) {
	r.Route("/profile", func(r chi.Router) {
		r.Get("/", h.GetProfile)
		r.Post("/avatar", h.UploadAvatar)
		r.Post("/attest", h.PublishAttestation)
		r.Delete("/attest/{uid}", h.RevokeAttestation)
		r.Post("/verify", h.VerifyIdentity)
		r.Post("/welcome-email", h.SendWelcomeEmail)
	})
}

// GetProfile returns the effective identity's profile
// (GET /profile)
func (h *Handle) GetProfile(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	acct, err := h.service.GetProfile(r.Context(), sess)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, acct)
}

// UploadAvatar uploads a new avatar image for the effective identity
// (POST /profile/avatar?name=...)
func (h *Handle) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	name := r.URL.Query().Get("name")
	if name == "" {
		respondError(w, errors.New(errors.ErrCodeInvalidInput, "name is required"))
		return
	}

	content, err := io.ReadAll(io.LimitReader(r.Body, maxAvatarBytes))
	if err != nil {
		respondError(w, errors.New(errors.ErrCodeInvalidInput, "unable to read body"))
		return
	}
	if len(content) == 0 {
		respondError(w, errors.New(errors.ErrCodeInvalidInput, "empty body"))
		return
	}

	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	result, err := h.service.UploadAvatar(r.Context(), sess, name, content, contentType)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// PublishAttestation issues a profile attestation for the effective identity
// (POST /profile/attest)
func (h *Handle) PublishAttestation(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	att, err := h.service.PublishAttestation(r.Context(), sess)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, att)
}

// RevokeAttestation revokes an attestation by UID
// (DELETE /profile/attest/{uid})
func (h *Handle) RevokeAttestation(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	uid := chi.URLParam(r, "uid")
	if uid == "" {
		respondError(w, errors.New(errors.ErrCodeInvalidInput, "uid is required"))
		return
	}

	revocation, err := h.service.RevokeAttestation(r.Context(), sess, uid)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, revocation)
}

// VerifyIdentity runs an identity verification check for the effective identity
// (POST /profile/verify)
func (h *Handle) VerifyIdentity(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	result, err := h.service.VerifyIdentity(r.Context(), sess)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// SendWelcomeEmail sends the welcome email to the effective identity
// (POST /profile/welcome-email)
func (h *Handle) SendWelcomeEmail(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	result, err := h.service.SendWelcomeEmail(r.Context(), sess)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

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
