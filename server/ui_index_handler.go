package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/jrsteele09/aicp-web/apiclient"
	"github.com/jrsteele09/aicp-web/hooks"
)

// hooksFor binds the shared cache to the request's session. Backend calls
// authenticate through the session controller so a token going stale mid-request is refreshed.
func (s *Server) hooksFor(r *http.Request) *hooks.Hooks {
	rs, _ := sessionFromContext(r.Context())
	return hooks.New(s.cache, s.apiFor(r), rs.ID)
}

func (s *Server) apiFor(r *http.Request) *apiclient.Client {
	rs, _ := sessionFromContext(r.Context())
	return s.api.WithTokenSource(s.sessions.TokenSource(r.Context(), rs.ID))
}

// IndexHandler renders the projects gallery
func (s *Server) IndexHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projects := s.hooksFor(r).UseProjects(r.Context())
		s.renderPage(w, r, "index.html", http.StatusOK, s.pageData(r, projects))
	}
}

// ProjectsListHandler renders the plain projects list
func (s *Server) ProjectsListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projects := s.hooksFor(r).UseProjects(r.Context())
		s.renderPage(w, r, "projects.html", http.StatusOK, s.pageData(r, projects))
	}
}

// ProfilePageData is the model of the profile page
type ProfilePageData struct {
	Profile         hooks.Result[*apiclient.User]
	IssuedAt        time.Time
	RefreshedAt     time.Time
	AccessExpiresAt time.Time
	State           string
}

// MeHandler renders the signed-in user's profile and session details
func (s *Server) MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rs, _ := sessionFromContext(r.Context())
		data := ProfilePageData{
			Profile:         s.hooksFor(r).UseUser(r.Context()),
			IssuedAt:        rs.Token.IssuedAt,
			RefreshedAt:     rs.Token.RefreshedAt,
			AccessExpiresAt: time.Unix(rs.Token.RefExpiry, 0),
			State:           s.sessions.CurrentState(rs.Token).String(),
		}
		s.renderPage(w, r, "me.html", http.StatusOK, s.pageData(r, data))
	}
}

// HealthHandler reports liveness
func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}
