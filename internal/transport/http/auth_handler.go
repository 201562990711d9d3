package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"reqcheck/internal/auth"
	apierrors "reqcheck/internal/errors"
	"reqcheck/internal/middleware"
	api "reqcheck/pkg/contracts/api/v1"
)

// Login results recorded on the login attempts counter.
const (
	loginSuccess   = "success"
	loginInvalid   = "invalid"
	loginThrottled = "throttled"
	loginDisabled  = "disabled"
)

// CookieConfig describes the session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
}

// AuthHandler handles login and logout.
type AuthHandler struct {
	gate         PasswordChecker
	sessions     SessionManager
	cookie       CookieConfig
	recorder     LoginRecorder
	validator    *middleware.ValidationMiddleware
	errorHandler *apierrors.ErrorHandler
	logger       *slog.Logger
}

// NewAuthHandler creates a new auth handler. recorder may be nil.
func NewAuthHandler(gate PasswordChecker, sessions SessionManager, cookie CookieConfig, recorder LoginRecorder,
	validator *middleware.ValidationMiddleware, errorHandler *apierrors.ErrorHandler, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		gate:         gate,
		sessions:     sessions,
		cookie:       cookie,
		recorder:     recorder,
		validator:    validator,
		errorHandler: errorHandler,
		logger:       logger.With(slog.String("handler", "auth")),
	}
}

// Routes returns the auth routes
func (h *AuthHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.With(middleware.ContentTypeValidator("application/json"), h.validator.ValidateRequest).
		Post("/login", h.Login)
	r.Post("/logout", h.Logout)
	return r
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.LoginRequest
	if err := h.validator.Decode(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	client := middleware.GetRealIP(r)
	if err := h.gate.Check(client, req.Password); err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidPassword):
			h.record(r, loginInvalid)
			h.errorHandler.HandleError(w, r, apierrors.ErrInvalidCredentials)
		case errors.Is(err, auth.ErrThrottled):
			h.record(r, loginThrottled)
			w.Header().Set("Retry-After", "60")
			h.errorHandler.HandleError(w, r, apierrors.ErrRateLimitExceeded)
		case errors.Is(err, auth.ErrGateDisabled):
			h.record(r, loginDisabled)
			h.errorHandler.HandleError(w, r, apierrors.ErrServiceUnavailable.With(
				"Access password is not configured", err.Error()))
		default:
			h.errorHandler.HandleError(w, r, err)
		}
		return
	}

	sess := h.sessions.Create()
	h.record(r, loginSuccess)
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    sess.ID,
		Path:     "/",
		MaxAge:   int(h.sessions.TTL().Seconds()),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	h.logger.InfoContext(ctx, "Login succeeded",
		slog.String("session_id", sess.ID),
		slog.String("client", client))

	render.JSON(w, r, sessionResponse(sess))
}

// Logout handles POST /api/auth/logout. It always succeeds and clears the
// cookie, whether or not the session still exists.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(h.cookie.Name); err == nil && cookie.Value != "" {
		h.sessions.Delete(cookie.Value)
		h.logger.InfoContext(r.Context(), "Logged out",
			slog.String("session_id", cookie.Value))
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) record(r *http.Request, result string) {
	if h.recorder != nil {
		h.recorder.RecordLogin(r.Context(), result)
	}
}

func sessionResponse(sess auth.Session) api.SessionResponse {
	return api.SessionResponse{
		ID:           sess.ID,
		ExpiresAt:    sess.ExpiresAt,
		ExportFormat: sess.Preferences.ExportFormat,
		ShowDebug:    sess.Preferences.ShowDebug,
		HasReport:    sess.Report != nil,
	}
}
