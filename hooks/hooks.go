// Package hooks exposes the data the pages render, each backed by a revalidating
// cache entry keyed by the backend resource path.
package hooks

import (
	"context"
	"net/url"

	"github.com/jrsteele09/aicp-web/apiclient"
	"github.com/jrsteele09/aicp-web/hooks/swr"
)

// API is the read side of the backend used by the hooks. *apiclient.Client satisfies it.
type API interface {
	CurrentUser(ctx context.Context) (*apiclient.User, error)
	ListProjects(ctx context.Context) ([]apiclient.Project, error)
	GetProject(ctx context.Context, projectID string) (*apiclient.Project, error)
	ListPrograms(ctx context.Context) ([]apiclient.Program, error)
	ListProductionConfigs(ctx context.Context) ([]apiclient.ProductionConfig, error)
}

// Result is the typed view of a cache state
type Result[T any] struct {
	Data      T
	Err       error
	IsLoading bool
	IsError   bool
}

// Hooks binds a shared cache to one session's API client. Keys are prefixed
// with the scope so sessions never see each other's data.
type Hooks struct {
	cache *swr.Cache
	api   API
	scope string
}

func New(cache *swr.Cache, api API, scope string) *Hooks {
	return &Hooks{cache: cache, api: api, scope: scope}
}

// ScopePrefix is the key prefix of every entry belonging to scope
func ScopePrefix(scope string) string {
	return scope + ":"
}

func (h *Hooks) UseUser(ctx context.Context) Result[*apiclient.User] {
	return use(ctx, h, apiclient.RouteCurrentUser, func(ctx context.Context) (*apiclient.User, error) {
		return h.api.CurrentUser(ctx)
	})
}

func (h *Hooks) UseProjects(ctx context.Context) Result[[]apiclient.Project] {
	return use(ctx, h, apiclient.RouteProjects, h.api.ListProjects)
}

// UseProject loads one project. An empty id does not fetch and reports loading.
func (h *Hooks) UseProject(ctx context.Context, projectID string) Result[*apiclient.Project] {
	if projectID == "" {
		return Result[*apiclient.Project]{IsLoading: true}
	}
	return use(ctx, h, apiclient.RouteProjects+url.PathEscape(projectID), func(ctx context.Context) (*apiclient.Project, error) {
		return h.api.GetProject(ctx, projectID)
	})
}

func (h *Hooks) UseAvailablePrograms(ctx context.Context) Result[[]apiclient.Program] {
	return use(ctx, h, apiclient.RoutePrograms, h.api.ListPrograms)
}

func (h *Hooks) UseProductionConfigs(ctx context.Context) Result[[]apiclient.ProductionConfig] {
	return use(ctx, h, apiclient.RouteProductionConfigs, h.api.ListProductionConfigs)
}

// InvalidateProjects drops this scope's project list and project entries
func (h *Hooks) InvalidateProjects() {
	h.cache.Invalidate(ScopePrefix(h.scope) + apiclient.RouteProjects)
}

func use[T any](ctx context.Context, h *Hooks, path string, fetch func(context.Context) (T, error)) Result[T] {
	st := h.cache.Fetch(ctx, ScopePrefix(h.scope)+path, func(ctx context.Context) (any, error) {
		v, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		return v, nil
	})

	res := Result[T]{Err: st.Err, IsError: st.IsError, IsLoading: st.IsLoading}
	if v, ok := st.Data.(T); ok {
		res.Data = v
	}
	return res
}
