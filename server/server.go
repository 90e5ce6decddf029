package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/aicp-web/apiclient"
	"github.com/jrsteele09/aicp-web/hooks/swr"
	"github.com/jrsteele09/aicp-web/internal/config"
	"github.com/jrsteele09/aicp-web/session"
	"github.com/rs/zerolog/log"
)

type Server struct {
	env          string // Environment (e.g., "DEV", "PROD")
	mux          *http.ServeMux
	routes       []string
	config       config.Config
	api          *apiclient.Client
	sessions     *session.Controller
	cache        *swr.Cache
	loginLimiter *ipRateLimiter
	trustProxy   bool
	templates    *templateSet
}

func New(config config.Config, api *apiclient.Client, sessions *session.Controller, cache *swr.Cache) (*Server, error) {
	templates, err := loadTemplates()
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to load templates: %w", err)
	}

	s := &Server{
		env:        config.GetEnv(),
		mux:        http.NewServeMux(),
		config:     config,
		api:        api,
		sessions:   sessions,
		cache:      cache,
		trustProxy: config.GetTrustProxyHeaders(),
		templates:  templates,
	}
	if config.GetEnableRateLimiting() {
		s.loginLimiter = newIPRateLimiter(config.GetLoginRatePerMinute())
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

// Routes returns the registered route patterns in registration order
func (s *Server) Routes() []string {
	return append([]string(nil), s.routes...)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	log.Info().Msgf("[%-19s] %s", colourMethod(method), path)
}

func colourMethod(method string) string {
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		return color + paddedMethod + ResetColor
	}
	return Gray + paddedMethod + ResetColor
}

// Helper function to determine the scheme (http/https)
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
