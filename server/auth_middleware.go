package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/jrsteele09/aicp-web/hooks"
	"github.com/jrsteele09/aicp-web/internal/logging"
	"github.com/jrsteele09/aicp-web/session"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// ContextKeySession stores the signed-in session
const ContextKeySession ContextKey = "session"

// requestSession is the signed-in session attached to a request
type requestSession struct {
	ID    string
	Token *session.Token
}

func sessionFromContext(ctx context.Context) (requestSession, bool) {
	rs, ok := ctx.Value(ContextKeySession).(requestSession)
	return rs, ok
}

// RequireSessionAuth is middleware for HTML/HTMX routes that validates the session cookie.
// A stale access token is refreshed here; a failed refresh ends the session.
func (s *Server) RequireSessionAuth() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(sessionCookieName)
			if err != nil || cookie.Value == "" {
				s.redirectToLogin(w, r, "")
				return
			}

			tok, err := s.sessions.Access(r.Context(), cookie.Value)
			if err != nil {
				msg := "Please sign in"
				switch {
				case errors.Is(err, session.ErrSessionExpired):
					msg = "Session expired"
					s.cache.Invalidate(hooks.ScopePrefix(cookie.Value))
				case errors.Is(err, session.ErrNoSession):
				default:
					logging.FromContext(r.Context()).Err(err).Msg("failed to load session")
					msg = "Session unavailable, please sign in again"
				}
				s.clearSessionCookie(w, r)
				s.redirectToLogin(w, r, msg)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeySession, requestSession{ID: cookie.Value, Token: tok})
			next(w, r.WithContext(ctx))
		}
	}
}
