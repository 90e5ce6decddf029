package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Auth Routes - Login & Logout
	RouteLogin      = "/login"
	RouteAuthLogin  = "/auth/login"
	RouteAuthLogout = "/auth/logout"
	RouteSignOut    = "/signout"

	// Pages
	RouteIndex      = "/{$}"
	RouteMe         = "/me"
	RouteProjects   = "/projects"
	RouteNewProject = "/projects/new"
	RouteProject    = "/projects/{id}"

	// HTMX fragments
	RouteHXPrograms          = "/hx/programs"
	RouteHXProductionConfigs = "/hx/production-configs"
	RouteHXProject           = "/hx/projects/{id}"

	RouteHealth = "/healthz"

	// Static Asset Routes (patterns)
	RouteStaticCSS = "/css/{file}"
	RouteStaticJS  = "/js/{file}"
)
