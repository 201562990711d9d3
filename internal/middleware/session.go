package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"reqcheck/internal/auth"
	apierrors "reqcheck/internal/errors"
	"reqcheck/internal/infrastructure"
)

// SessionStore is the part of the session store the guard needs.
type SessionStore interface {
	Get(id string) (auth.Session, error)
}

type sessionKey struct{}

// SessionGuard rejects requests without a live session cookie and makes the
// session available to handlers through SessionFromContext.
type SessionGuard struct {
	store        SessionStore
	cookieName   string
	errorHandler *apierrors.ErrorHandler
	logger       *slog.Logger
}

// NewSessionGuard creates a guard reading the named cookie.
func NewSessionGuard(store SessionStore, cookieName string, errorHandler *apierrors.ErrorHandler, logger *slog.Logger) *SessionGuard {
	return &SessionGuard{
		store:        store,
		cookieName:   cookieName,
		errorHandler: errorHandler,
		logger:       infrastructure.WithComponent(logger, "session_guard"),
	}
}

// Handler returns the middleware handler function
func (g *SessionGuard) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		cookie, err := r.Cookie(g.cookieName)
		if err != nil || cookie.Value == "" {
			g.logger.DebugContext(ctx, "request without session",
				slog.String("path", r.URL.Path))
			g.errorHandler.HandleError(w, r, apierrors.ErrUnauthorized)
			return
		}

		sess, err := g.store.Get(cookie.Value)
		if err != nil {
			if errors.Is(err, auth.ErrSessionExpired) {
				g.errorHandler.HandleError(w, r, apierrors.ErrSessionExpired)
				return
			}
			g.errorHandler.HandleError(w, r, apierrors.ErrUnauthorized)
			return
		}

		trace.SpanFromContext(ctx).SetAttributes(attribute.Bool("session.debug", sess.Preferences.ShowDebug))

		ctx = context.WithValue(ctx, sessionKey{}, sess)
		ctx = apierrors.WithDebug(ctx, sess.Preferences.ShowDebug)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SessionFromContext returns the session attached by SessionGuard.
func SessionFromContext(ctx context.Context) (auth.Session, bool) {
	sess, ok := ctx.Value(sessionKey{}).(auth.Session)
	return sess, ok
}

// WithSession attaches sess to ctx the way SessionGuard does.
func WithSession(ctx context.Context, sess auth.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, sess)
}
