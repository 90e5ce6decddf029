package server

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/jrsteele09/aicp-web/hooks"
	"github.com/jrsteele09/aicp-web/internal/logging"
	"github.com/jrsteele09/aicp-web/session"
	"github.com/rs/zerolog/log"
)

// LoginPageData contains data for rendering the login page
type LoginPageData struct {
	Username string // Preserve username on error
	Next     string // Where to go after signing in
}

// LoginPageUIHandler displays the login page (GET /login)
func (s *Server) LoginPageUIHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := LoginPageData{
			Username: r.URL.Query().Get("username"),
			Next:     safeRedirect(r.URL.Query().Get("next")),
		}
		s.renderPage(w, r, "login.html", http.StatusOK, s.pageData(r, data))
	}
}

// LoginSubmissionHandler processes the login form submission (POST /auth/login)
func (s *Server) LoginSubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		username := strings.TrimSpace(r.PostFormValue("username"))
		password := r.PostFormValue("password")
		next := safeRedirect(r.PostFormValue("next"))

		if username == "" || password == "" {
			s.renderLoginError(w, r, "Username and password are required", username, next)
			return
		}

		sessionID, _, err := s.sessions.SignIn(r.Context(), username, password)
		if err != nil {
			if !errors.Is(err, session.ErrInvalidCredentials) {
				logging.FromContext(r.Context()).Err(err).Msg("sign-in failed")
				s.renderLoginError(w, r, "Sign in is unavailable, please try again", username, next)
				return
			}
			s.renderLoginError(w, r, "Invalid username or password", username, next)
			return
		}

		s.SetLoginSessionCookie(w, sessionID, r, int(s.config.GetMaxSessionAge().Seconds()))
		redirectSuccess(w, r, next)
	}
}

// LogoutHandler ends the session (GET /auth/logout and GET /signout)
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		redirect := func() {
			s.clearSessionCookie(w, r)
			redirectSuccess(w, r, RouteLogin)
		}

		cookie, err := r.Cookie(sessionCookieName)
		if err != nil || cookie.Value == "" {
			redirect()
			return
		}

		if err := s.sessions.SignOut(r.Context(), cookie.Value); err != nil {
			log.Err(err).Msg("Failed to delete login session")
		}
		s.cache.Invalidate(hooks.ScopePrefix(cookie.Value))

		redirect()
	}
}

// renderLoginError redirects to login page with an error message
func (s *Server) renderLoginError(w http.ResponseWriter, r *http.Request, errorMsg, username, next string) {
	q := url.Values{}
	if username != "" {
		q.Set("username", username)
	}
	if next != "/" {
		q.Set("next", next)
	}

	target := RouteLogin
	if len(q) > 0 {
		target += "?" + q.Encode()
	}
	redirectWithError(w, r, target, errorMsg)
}
