package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/aicp-web/apiclient"
	"github.com/jrsteele09/aicp-web/internal/logging"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
)

const (
	sessionIDLength = 32

	// DefaultAccessTokenExpiry applies when an access token carries no exp claim
	DefaultAccessTokenExpiry = 5 * time.Minute

	// MinAccessTokenLifetime is the shortest reference expiry recorded for a new access token
	MinAccessTokenLifetime = 30 * time.Second
)

// API is the part of the backend the controller talks to. *apiclient.Client satisfies it.
type API interface {
	Authenticate(ctx context.Context, username, password string) (*apiclient.SignInResult, error)
	Refresh(ctx context.Context, refreshToken string) (*apiclient.RefreshResult, error)
}

// Controller issues, refreshes and invalidates session tokens.
// Concurrent refreshes of one session collapse into a single backend call.
type Controller struct {
	api           API
	store         Store
	nowTime       func() time.Time
	defaultExpiry time.Duration
	maxAge        time.Duration
	refreshes     singleflight.Group
}

type Option func(*Controller)

// WithNowTime sets the clock (primarily for testing)
func WithNowTime(nowFunc func() time.Time) Option {
	return func(c *Controller) {
		c.nowTime = nowFunc
	}
}

func WithDefaultAccessTokenExpiry(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.defaultExpiry = d
		}
	}
}

// WithMaxAge bounds the lifetime of a session regardless of refreshes. Zero disables the bound.
func WithMaxAge(d time.Duration) Option {
	return func(c *Controller) {
		c.maxAge = d
	}
}

func NewController(api API, store Store, opts ...Option) *Controller {
	c := &Controller{
		api:           api,
		store:         store,
		nowTime:       time.Now,
		defaultExpiry: DefaultAccessTokenExpiry,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SignIn exchanges credentials for a token pair and stores it under a new session id.
// A rejected sign-in stores nothing and returns ErrInvalidCredentials.
func (c *Controller) SignIn(ctx context.Context, username, password string) (string, *Token, error) {
	log := logging.FromContext(ctx)

	res, err := c.api.Authenticate(ctx, username, password)
	if err != nil {
		log.Warn().Err(err).Str("username", username).Msg("sign-in rejected")
		return "", nil, fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
	}

	sessionID, err := newSessionID()
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate session id: %w", err)
	}

	now := c.nowTime()
	tok := &Token{
		User:         res.User,
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		RefExpiry:    c.referenceExpiry(res.AccessToken, now),
		IssuedAt:     now,
	}
	if err := c.store.Upsert(ctx, sessionID, tok); err != nil {
		return "", nil, fmt.Errorf("failed to store session: %w", err)
	}

	log.Info().Str("user_id", tok.User.ID).Stringer("state", Issued).Msg("session issued")
	return sessionID, tok, nil
}

// Access returns the session's token, refreshing the access token first when it is stale.
// A failed refresh deletes the session and returns ErrSessionExpired.
func (c *Controller) Access(ctx context.Context, sessionID string) (*Token, error) {
	tok, err := c.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	now := c.nowTime()
	if c.expired(tok, now) {
		c.invalidate(ctx, sessionID)
		return nil, fmt.Errorf("%w: session older than %s", ErrSessionExpired, c.maxAge)
	}
	if c.State(tok, now) == Fresh {
		return tok, nil
	}

	// The refresh outlives a cancelled request so a disconnect cannot invalidate the session.
	refreshCtx := context.WithoutCancel(ctx)
	v, err, _ := c.refreshes.Do(sessionID, func() (any, error) {
		return c.refresh(refreshCtx, sessionID)
	})
	if err != nil {
		return nil, err
	}
	refreshed := *v.(*Token)
	return &refreshed, nil
}

func (c *Controller) refresh(ctx context.Context, sessionID string) (*Token, error) {
	log := logging.FromContext(ctx)

	// Reload: another caller may have refreshed between our read and acquiring the flight.
	tok, err := c.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	now := c.nowTime()
	if c.State(tok, now) == Fresh {
		return tok, nil
	}

	log.Debug().Str("user_id", tok.User.ID).Stringer("state", Refreshing).Msg("refreshing access token")

	res, err := c.api.Refresh(ctx, tok.RefreshToken)
	if err != nil {
		log.Warn().Err(err).Str("user_id", tok.User.ID).Msg("access token refresh failed")
		c.invalidate(ctx, sessionID)
		return nil, fmt.Errorf("%w: %w", ErrSessionExpired, err)
	}

	tok.AccessToken = res.AccessToken
	if res.RefreshToken != "" {
		tok.RefreshToken = res.RefreshToken
	}
	tok.RefExpiry = c.referenceExpiry(res.AccessToken, now)
	tok.RefreshedAt = now

	if err := c.store.Upsert(ctx, sessionID, tok); err != nil {
		return nil, fmt.Errorf("failed to store refreshed session: %w", err)
	}

	log.Info().Str("user_id", tok.User.ID).Stringer("state", Issued).Msg("access token refreshed")
	return tok, nil
}

// TokenSource adapts a session to oauth2.TokenSource. Every Token call goes through Access.
func (c *Controller) TokenSource(ctx context.Context, sessionID string) oauth2.TokenSource {
	return &tokenSource{ctx: ctx, controller: c, sessionID: sessionID}
}

// SignOut removes the session's tokens
func (c *Controller) SignOut(ctx context.Context, sessionID string) error {
	if err := c.store.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	logging.FromContext(ctx).Info().Stringer("state", Invalidated).Msg("signed out")
	return nil
}

// State reports the state of a stored token at now
func (c *Controller) State(tok *Token, now time.Time) State {
	if tok == nil {
		return NoSession
	}
	if IsStale(now.Unix(), tok.RefExpiry) {
		return Stale
	}
	return Fresh
}

// CurrentState reports the state of a stored token by the controller's clock
func (c *Controller) CurrentState(tok *Token) State {
	return c.State(tok, c.nowTime())
}

func (c *Controller) expired(tok *Token, now time.Time) bool {
	return c.maxAge > 0 && !tok.IssuedAt.IsZero() && now.Sub(tok.IssuedAt) > c.maxAge
}

func (c *Controller) invalidate(ctx context.Context, sessionID string) {
	log := logging.FromContext(ctx)
	if err := c.store.Delete(ctx, sessionID); err != nil {
		log.Err(err).Msg("failed to delete invalidated session")
		return
	}
	log.Info().Stringer("state", Invalidated).Msg("session invalidated")
}

// referenceExpiry reads the exp claim of the access token without verifying it.
// The backend is the authority on signatures; the claim is only a refresh hint.
// An exp closer than MinAccessTokenLifetime is raised to it, so a backend handing out
// already-expired tokens cannot force a refresh on every access.
func (c *Controller) referenceExpiry(accessToken string, now time.Time) int64 {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, &claims); err == nil && claims.ExpiresAt != nil {
		return max(claims.ExpiresAt.Unix(), now.Add(MinAccessTokenLifetime).Unix())
	}
	return now.Add(c.defaultExpiry).Unix()
}

type tokenSource struct {
	ctx        context.Context
	controller *Controller
	sessionID  string
}

func (s *tokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.controller.Access(s.ctx, s.sessionID)
	if err != nil {
		return nil, err
	}
	return tok.OAuth2(), nil
}

func newSessionID() (string, error) {
	b := make([]byte, sessionIDLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
