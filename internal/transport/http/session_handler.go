package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"reqcheck/internal/auth"
	apierrors "reqcheck/internal/errors"
	"reqcheck/internal/middleware"
	api "reqcheck/pkg/contracts/api/v1"
)

// SessionHandler exposes the caller's session and preferences.
type SessionHandler struct {
	sessions     SessionManager
	validator    *middleware.ValidationMiddleware
	errorHandler *apierrors.ErrorHandler
	logger       *slog.Logger
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessions SessionManager, validator *middleware.ValidationMiddleware, errorHandler *apierrors.ErrorHandler, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		sessions:     sessions,
		validator:    validator,
		errorHandler: errorHandler,
		logger:       logger.With(slog.String("handler", "session")),
	}
}

// Get handles GET /api/session
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		h.errorHandler.HandleError(w, r, apierrors.ErrUnauthorized)
		return
	}
	render.JSON(w, r, sessionResponse(sess))
}

// UpdatePreferences handles PUT /api/session/preferences
func (h *SessionHandler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		h.errorHandler.HandleError(w, r, apierrors.ErrUnauthorized)
		return
	}

	var req api.PreferencesRequest
	if err := h.validator.Decode(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	updated, err := h.sessions.UpdatePreferences(sess.ID, auth.Preferences{
		ExportFormat: req.ExportFormat,
		ShowDebug:    *req.ShowDebug,
	})
	if err != nil {
		h.errorHandler.HandleError(w, r, sessionError(err))
		return
	}

	h.logger.InfoContext(r.Context(), "Preferences updated",
		slog.String("session_id", updated.ID),
		slog.String("export_format", updated.Preferences.ExportFormat),
		slog.Bool("show_debug", updated.Preferences.ShowDebug))

	render.JSON(w, r, sessionResponse(updated))
}

// sessionError maps store errors of a session that vanished between the guard
// and the handler.
func sessionError(err error) error {
	switch {
	case errors.Is(err, auth.ErrSessionExpired):
		return apierrors.ErrSessionExpired
	case errors.Is(err, auth.ErrSessionNotFound):
		return apierrors.ErrUnauthorized
	default:
		return err
	}
}
