package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/aicp-web/apiclient"
	"github.com/jrsteele09/aicp-web/hooks"
	"github.com/jrsteele09/aicp-web/hooks/swr"
	"github.com/jrsteele09/aicp-web/internal/config"
	"github.com/jrsteele09/aicp-web/internal/logging"
	"github.com/jrsteele09/aicp-web/internal/telemetry"
	"github.com/jrsteele09/aicp-web/server"
	"github.com/jrsteele09/aicp-web/session"
	"github.com/jrsteele09/aicp-web/session/memstore"
	"github.com/jrsteele09/aicp-web/session/redisstore"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const (
	shutdownTimeout = 5 * time.Second
	pruneInterval   = 5 * time.Minute
)

func newCmdServe() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context())
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
}

func run(ctx context.Context) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	logging.Setup(c.GetEnv(), c.GetLogLevel())
	displayAppname(c.GetAppName())
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	tp, err := telemetry.Setup(ctx, c.GetOTLPEndpoint(), c.GetServiceName())
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("telemetry shutdown")
		}
	}()

	api, err := apiclient.New(c.GetAPIHost(), apiclient.WithTimeout(c.GetAPITimeout()))
	if err != nil {
		return err
	}

	store, closeStore, err := newSessionStore(ctx, c)
	if err != nil {
		return err
	}
	defer closeStore()

	sessions := session.NewController(api, store,
		session.WithDefaultAccessTokenExpiry(c.GetDefaultAccessTokenExpiry()),
		session.WithMaxAge(c.GetMaxSessionAge()),
	)

	cache := swr.New(swr.WithMaxIdle(c.GetCacheMaxIdle()))
	janitor := &sessionJanitor{cache: cache, maxAge: c.GetMaxSessionAge()}
	if mem, ok := store.(*memstore.Store); ok {
		janitor.store = mem
	}
	go janitor.run(ctx, pruneInterval)

	handler, err := server.New(c, api, sessions, cache)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              c.GetPort(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- listenAndServe(srv) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	return shutdown(srv)
}

// newSessionStore selects the session backend from configuration
func newSessionStore(ctx context.Context, c config.Config) (session.Store, func(), error) {
	switch c.GetSessionStore() {
	case config.SessionStoreRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     c.GetRedisAddr(),
			Password: c.GetRedisPassword(),
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("redis ping %s: %w", c.GetRedisAddr(), err)
		}
		store, err := redisstore.New(client, c.GetSessionSecret(), c.GetMaxSessionAge())
		if err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		log.Info().Str("addr", c.GetRedisAddr()).Msg("Using redis session store")
		return store, func() { _ = client.Close() }, nil
	default:
		log.Info().Msg("Using in-memory session store")
		return memstore.New(), func() {}, nil
	}
}

// sessionJanitor reclaims memory held for sessions that ended without signing out.
// In-memory sessions past the maximum age are pruned along with their cache scope;
// cache entries left by sessions that expired elsewhere (Redis TTL) age out through Sweep.
type sessionJanitor struct {
	store  *memstore.Store
	cache  *swr.Cache
	maxAge time.Duration
}

func (j *sessionJanitor) run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			j.sweep(now)
		}
	}
}

func (j *sessionJanitor) sweep(now time.Time) (pruned, evicted int) {
	if j.store != nil && j.maxAge > 0 {
		for _, id := range j.store.Prune(now.Add(-j.maxAge)) {
			evicted += j.cache.Invalidate(hooks.ScopePrefix(id))
			pruned++
		}
	}
	evicted += j.cache.Sweep()
	if pruned > 0 || evicted > 0 {
		log.Debug().Int("pruned", pruned).Int("evicted", evicted).Msg("Reclaimed expired sessions")
	}
	return pruned, evicted
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("Server listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	log.Info().Msg("Server stopped")
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
