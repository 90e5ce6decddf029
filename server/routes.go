package server

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
)

func (s *Server) initRoutes() {
	// LOGIN
	s.RegisterRouteHandler("GET "+RouteLogin, ChainMiddleware(s.LoginPageUIHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteAuthLogin, ChainMiddleware(s.LoginSubmissionHandler(), s.HTMLMiddleWare(s.LoginRateLimitMiddleware)...))
	s.RegisterRouteHandler("GET "+RouteAuthLogout, ChainMiddleware(s.LogoutHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteSignOut, ChainMiddleware(s.LogoutHandler(), s.HTMLMiddleWare()...))

	// Pages (require a signed-in session)
	s.RegisterRouteHandler("GET "+RouteIndex, ChainMiddleware(s.IndexHandler(), s.HTMLMiddleWare(s.RequireSessionAuth())...))
	s.RegisterRouteHandler("GET "+RouteMe, ChainMiddleware(s.MeHandler(), s.HTMLMiddleWare(s.RequireSessionAuth())...))
	s.RegisterRouteHandler("GET "+RouteProjects, ChainMiddleware(s.ProjectsListHandler(), s.HTMLMiddleWare(s.RequireSessionAuth())...))
	s.RegisterRouteHandler("GET "+RouteNewProject, ChainMiddleware(s.NewProjectPageHandler(), s.HTMLMiddleWare(s.RequireSessionAuth())...))
	s.RegisterRouteHandler("POST "+RouteProjects, ChainMiddleware(s.CreateProjectHandler(), s.HTMLMiddleWare(s.RequireSessionAuth())...))
	s.RegisterRouteHandler("GET "+RouteProject, ChainMiddleware(s.ProjectPageHandler(), s.HTMLMiddleWare(s.RequireSessionAuth())...))

	// HTMX fragments
	s.RegisterRouteHandler("GET "+RouteHXPrograms, ChainMiddleware(s.ProgramsFragmentHandler(), s.HTMLMiddleWare(s.RequireSessionAuth())...))
	s.RegisterRouteHandler("GET "+RouteHXProductionConfigs, ChainMiddleware(s.ProductionConfigsFragmentHandler(), s.HTMLMiddleWare(s.RequireSessionAuth())...))
	s.RegisterRouteHandler("GET "+RouteHXProject, ChainMiddleware(s.ProjectFragmentHandler(), s.HTMLMiddleWare(s.RequireSessionAuth())...))

	s.RegisterRouteFunc("GET "+RouteHealth, ChainMiddleware(s.HealthHandler(), s.APIMiddleware()...))

	s.RegisterRouteFunc("GET "+RouteStaticCSS, ChainMiddleware(s.serveFileHandler(), s.StaticMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteStaticJS, ChainMiddleware(s.serveFileHandler(), s.StaticMiddleware()...))
}

func (s *Server) serveFileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filePath := strings.TrimPrefix(r.URL.Path, "/")
		if filePath == "" {
			http.Error(w, "404 - Page Not Found", http.StatusNotFound)
			return
		}
		if err := StreamFile(w, r, filePath); err != nil {
			log.Warn().Err(err).Str("path", filePath).Msg("static file not found")
			http.Error(w, "404 - Page Not Found", http.StatusNotFound)
			return
		}
	}
}
