package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gameforge/gameforge/internal/domain"
	"github.com/gameforge/gameforge/internal/metrics"
	"github.com/gameforge/gameforge/internal/service"
)

const (
	msgInternal           = "An unexpected error occurred. Please try again."
	msgInvalidBody        = "Invalid request body."
	msgEmailExists        = "An account with that email already exists."
	msgInvalidCredentials = "Invalid email/username or password."
	msgNotAuthenticated   = "Not authenticated."
)

// AuthHandler handles authentication-related HTTP requests.
type AuthHandler struct {
	auth         *service.AuthService
	metrics      *metrics.Metrics
	cookieSecure bool
}

// NewAuthHandler creates a new AuthHandler. metrics may be nil.
func NewAuthHandler(auth *service.AuthService, m *metrics.Metrics, cookieSecure bool) *AuthHandler {
	return &AuthHandler{auth: auth, metrics: m, cookieSecure: cookieSecure}
}

// HandleRegister processes a JSON registration request.
// POST /register
// Request:  {"name":"...","email":"...","password":"...","marketingOptIn":false}
// Response: 201 {"success":true,"message":"...","userId":1}
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name           string `json:"name"`
		Email          string `json:"email"`
		Password       string `json:"password"`
		MarketingOptIn bool   `json:"marketingOptIn"`
	}
	if err := readJSON(w, r, &req); err != nil {
		h.metrics.Registration(metrics.OutcomeInvalid)
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	userID, err := h.auth.Register(r.Context(), service.RegisterInput{
		Name:           req.Name,
		Email:          req.Email,
		Password:       req.Password,
		MarketingOptIn: req.MarketingOptIn,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			h.metrics.Registration(metrics.OutcomeInvalid)
			writeError(w, http.StatusBadRequest, userMessage(err))
		case errors.Is(err, domain.ErrDuplicateEmail):
			h.metrics.Registration(metrics.OutcomeRejected)
			writeError(w, http.StatusBadRequest, msgEmailExists)
		default:
			h.metrics.Registration(metrics.OutcomeError)
			slog.ErrorContext(r.Context(), "register user", "error", err)
			writeError(w, http.StatusInternalServerError, msgInternal)
		}
		return
	}

	h.metrics.Registration(metrics.OutcomeSuccess)
	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "Registration complete!",
		"userId":  userID,
	})
}

// HandleLogin processes a JSON login request and sets the session cookie.
// POST /login
// Request:  {"identifier":"...","password":"...","remember":false}
// Response: 200 {"success":true,"message":"...","user":{...}}
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Identifier string `json:"identifier"`
		Password   string `json:"password"`
		Remember   bool   `json:"remember"`
	}
	if err := readJSON(w, r, &req); err != nil {
		h.metrics.Login(metrics.OutcomeInvalid)
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	res, err := h.auth.Login(r.Context(), service.LoginInput{
		Identifier: req.Identifier,
		Password:   req.Password,
		Remember:   req.Remember,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			h.metrics.Login(metrics.OutcomeInvalid)
			writeError(w, http.StatusBadRequest, userMessage(err))
		case errors.Is(err, domain.ErrInvalidCredentials):
			h.metrics.Login(metrics.OutcomeRejected)
			writeError(w, http.StatusUnauthorized, msgInvalidCredentials)
		default:
			h.metrics.Login(metrics.OutcomeError)
			slog.ErrorContext(r.Context(), "login user", "error", err)
			writeError(w, http.StatusInternalServerError, msgInternal)
		}
		return
	}

	setSessionCookie(w, res.Session.Token, res.Session.ExpiresAt, h.cookieSecure)

	h.metrics.Login(metrics.OutcomeSuccess)
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Login successful",
		"user":    toUserDTO(res.User),
	})
}

// HandleLogout revokes the caller's session and clears the cookie.
// It always succeeds.
// POST /logout
// Response: 200 {"success":true,"message":"..."}
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	h.auth.Logout(r.Context(), sessionToken(r))
	clearSessionCookie(w, h.cookieSecure)

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "You have been logged out successfully",
	})
}

// HandleWhoAmI returns the user behind the session cookie, or null.
// An invalid or expired cookie is cleared.
// GET /auth
// Response: 200 {...} or null
func (h *AuthHandler) HandleWhoAmI(w http.ResponseWriter, r *http.Request) {
	user, err := h.auth.WhoAmI(r.Context(), sessionToken(r))
	if err != nil {
		if errors.Is(err, domain.ErrUnauthenticated) {
			clearSessionCookie(w, h.cookieSecure)
			writeJSON(w, http.StatusOK, nil)
			return
		}
		slog.ErrorContext(r.Context(), "resolve session", "error", err)
		writeError(w, http.StatusInternalServerError, msgInternal)
		return
	}

	writeJSON(w, http.StatusOK, toUserDTO(user))
}

// HandleProfile is the example protected resource.
// GET /user/profile
// Response: 200 {"user":{...},"message":"..."} or 401
func (h *AuthHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"user":    toUserDTO(user),
		"message": "Welcome back, " + user.Name + "!",
	})
}

// HandleAdminOverview reports user and active-session counts.
// GET /admin/overview
// Response: 200 {"users":2,"activeSessions":1}
func (h *AuthHandler) HandleAdminOverview(w http.ResponseWriter, r *http.Request) {
	ov, err := h.auth.Overview(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "admin overview", "error", err)
		writeError(w, http.StatusInternalServerError, msgInternal)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"users":          ov.Users,
		"activeSessions": ov.ActiveSessions,
	})
}

// userMessage strips the sentinel prefix from a validation error so the
// client sees only the human-readable part.
func userMessage(err error) string {
	msg := err.Error()
	prefix := domain.ErrInvalidInput.Error() + ": "
	return strings.TrimPrefix(msg, prefix)
}
