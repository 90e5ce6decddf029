package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/jrsteele09/aicp-web/internal/logging"
)

const (
	RouteProjects          = "/api/projects/"
	RouteProject           = "/api/projects/{project_id}"
	RoutePrograms          = "/api/programs/"
	RouteProductionConfigs = "/api/production_configs/"
	RouteCurrentUser       = "/api/users/me"
	RouteSignIn            = "/api/users/sign-in"
	RouteRefresh           = "/api/users/refresh"
)

// ListProjects returns every project visible to the bearer of the access token.
// An empty list is a valid result.
func (c *Client) ListProjects(ctx context.Context) ([]Project, error) {
	return do(ctx, c, call[[]Project]{
		op:       "list_projects",
		sentinel: ErrFetchProjects,
		method:   http.MethodGet,
		route:    RouteProjects,
		path:     RouteProjects,
		auth:     true,
	})
}

func (c *Client) GetProject(ctx context.Context, projectID string) (*Project, error) {
	if strings.TrimSpace(projectID) == "" {
		return nil, missingArgument(ctx, ErrFetchProject, "get_project", "project id")
	}
	p, err := do(ctx, c, call[Project]{
		op:       "get_project",
		sentinel: ErrFetchProject,
		method:   http.MethodGet,
		route:    RouteProject,
		path:     RouteProjects + url.PathEscape(projectID),
		auth:     true,
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateProject creates a project and returns the record echoed by the backend
func (c *Client) CreateProject(ctx context.Context, req ProjectCreate) (*Project, error) {
	p, err := do(ctx, c, call[Project]{
		op:       "create_project",
		sentinel: ErrCreateProject,
		method:   http.MethodPost,
		route:    RouteProjects,
		path:     RouteProjects,
		body:     req,
		auth:     true,
		complete: func(p Project) bool { return p.ID != "" },
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) ListPrograms(ctx context.Context) ([]Program, error) {
	return do(ctx, c, call[[]Program]{
		op:       "list_programs",
		sentinel: ErrFetchPrograms,
		method:   http.MethodGet,
		route:    RoutePrograms,
		path:     RoutePrograms,
		auth:     true,
	})
}

func (c *Client) ListProductionConfigs(ctx context.Context) ([]ProductionConfig, error) {
	return do(ctx, c, call[[]ProductionConfig]{
		op:       "list_production_configs",
		sentinel: ErrFetchProductionConfigs,
		method:   http.MethodGet,
		route:    RouteProductionConfigs,
		path:     RouteProductionConfigs,
		auth:     true,
	})
}

// CurrentUser returns the user owning the access token
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	u, err := do(ctx, c, call[User]{
		op:       "current_user",
		sentinel: ErrFetchUser,
		method:   http.MethodGet,
		route:    RouteCurrentUser,
		path:     RouteCurrentUser,
		auth:     true,
	})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Authenticate exchanges a username and password for a credential pair. Unauthenticated.
func (c *Client) Authenticate(ctx context.Context, username, password string) (*SignInResult, error) {
	res, err := do(ctx, c, call[SignInResult]{
		op:       "authenticate",
		sentinel: ErrAuthenticate,
		method:   http.MethodPost,
		route:    RouteSignIn,
		path:     RouteSignIn,
		body:     SignInCredentials{Username: username, Password: password},
		complete: func(r SignInResult) bool { return r.AccessToken != "" && r.RefreshToken != "" },
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// Refresh exchanges a refresh token for a new access token. Unauthenticated.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*RefreshResult, error) {
	if refreshToken == "" {
		return nil, missingArgument(ctx, ErrRefresh, "refresh", "refresh token")
	}
	res, err := do(ctx, c, call[RefreshResult]{
		op:       "refresh",
		sentinel: ErrRefresh,
		method:   http.MethodPost,
		route:    RouteRefresh,
		path:     RouteRefresh,
		body:     RefreshRequest{RefreshToken: refreshToken},
		complete: func(r RefreshResult) bool { return r.AccessToken != "" },
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func missingArgument(ctx context.Context, sentinel error, op, what string) error {
	err := fmt.Errorf("%w: %s is required", sentinel, what)
	logging.FromContext(ctx).Error().Str("op", op).Msg(err.Error())
	return err
}
