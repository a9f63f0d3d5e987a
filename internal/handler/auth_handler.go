package handler

import (
	"net/http"
	"strings"

	"skillbridge-api/internal/domain"
	"skillbridge-api/internal/middleware"
	"skillbridge-api/internal/service"
	"skillbridge-api/pkg/errors"
	"skillbridge-api/pkg/logger"
)

// AuthHandler handles authentication and session endpoints
type AuthHandler struct {
	accounts *service.AccountService
	sessions *service.SessionStore
	logger   *logger.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(accounts *service.AccountService, sessions *service.SessionStore, logger *logger.Logger) *AuthHandler {
	return &AuthHandler{
		accounts: accounts,
		sessions: sessions,
		logger:   logger,
	}
}

// SignUp handles POST /api/auth/signup
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req service.SignUpRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err, h.logger)
		return
	}

	user, err := h.accounts.SignUp(r.Context(), req)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeData(w, http.StatusCreated, user, h.logger)
}

// SignIn handles POST /api/auth/signin
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req service.SignInRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err, h.logger)
		return
	}

	result, err := h.accounts.SignIn(r.Context(), req)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeData(w, http.StatusOK, result, h.logger)
}

// SignOut handles POST /api/auth/signout
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if err := h.accounts.SignOut(r.Context(), token); err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Message: "Signed out"}, h.logger)
}

// AuthEvent handles POST /api/auth/events, the auth-change event feed.
// Events are applied in arrival order; the session store discards any role
// lookup that an intervening event made stale. The event's identity always
// comes from the caller's validated token, never from the body, so no
// caller can report a sign-in as somebody else.
func (h *AuthHandler) AuthEvent(w http.ResponseWriter, r *http.Request) {
	var event domain.AuthEvent
	if err := decodeBody(r, &event); err != nil {
		writeError(w, err, h.logger)
		return
	}
	if err := h.accounts.HandleAuthEvent(event, middleware.UserFromContext(r.Context())); err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusAccepted, APIResponse{Success: true}, h.logger)
}

// Session handles GET /api/auth/session, the snapshot the client boots from
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	state := h.sessions.Snapshot()

	type sessionResponse struct {
		domain.SessionState
		Redirect string `json:"redirect"`
	}
	writeData(w, http.StatusOK, sessionResponse{
		SessionState: state,
		Redirect:     state.RedirectPath(),
	}, h.logger)
}

// requireUser pulls the authenticated user out of the context
func requireUser(r *http.Request) (*domain.SessionUser, error) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		return nil, errors.NewAuthenticationError("Authentication required")
	}
	return user, nil
}
