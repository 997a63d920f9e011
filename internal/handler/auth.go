package handler

import (
	"log/slog"
	"net/http"

	"github.com/aryan0dhankhar/coursehub/internal/domain"
	"github.com/aryan0dhankhar/coursehub/internal/forms"
	"github.com/aryan0dhankhar/coursehub/internal/service"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	identity *service.IdentityService
	logger   *slog.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(identity *service.IdentityService, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &AuthHandler{
		identity: identity,
		logger:   logger,
	}
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req forms.LoginForm
	if err := decodeJSON(r, &req); err != nil {
		h.logger.Warn("failed to decode login request", slog.String("error", err.Error()))
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if err := forms.Validate(&req); err != nil {
		writeError(w, http.StatusBadRequest, forms.MissingFieldsMessage)
		return
	}

	user, ok, err := h.identity.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.logger.Error("login failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}
	if !ok {
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(user))
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req forms.RegisterForm
	if err := decodeJSON(r, &req); err != nil {
		h.logger.Warn("failed to decode register request", slog.String("error", err.Error()))
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if err := forms.Validate(&req); err != nil {
		writeError(w, http.StatusBadRequest, forms.MissingFieldsMessage)
		return
	}

	user, ok, err := h.identity.Register(r.Context(), req.Name, req.Email, req.Password, domain.Role(req.Role))
	if err != nil {
		h.logger.Error("registration failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "registration failed")
		return
	}
	if !ok {
		writeError(w, http.StatusConflict, "Email already registered")
		return
	}

	writeJSON(w, http.StatusCreated, toUserResponse(user))
}

// Logout handles POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.identity.Logout(r.Context()); err != nil {
		h.logger.Error("logout failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "logout failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Session handles GET /api/auth/session
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	user, ok := h.identity.CurrentUser()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}
