package session

import (
	"context"
	"time"

	"github.com/jrsteele09/aicp-web/apiclient"
	apperrors "github.com/jrsteele09/aicp-web/internal/errors"
	"golang.org/x/oauth2"
)

var (
	ErrInvalidCredentials = apperrors.ErrInvalidCredentials
	ErrNoSession          = apperrors.ErrNoSession
	ErrSessionExpired     = apperrors.ErrSessionExpired
)

// Token is the credential pair held for a signed-in browser session.
// RefExpiry is the unix time (seconds) at which the access token must be refreshed.
type Token struct {
	User         apiclient.User `json:"user"`
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	RefExpiry    int64          `json:"ref_expiry"`
	IssuedAt     time.Time      `json:"issued_at"`
	RefreshedAt  time.Time      `json:"refreshed_at"`
}

// OAuth2 converts the token for use as a bearer credential
func (t *Token) OAuth2() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  t.AccessToken,
		TokenType:    "Bearer",
		RefreshToken: t.RefreshToken,
		Expiry:       time.Unix(t.RefExpiry, 0),
	}
}

// IsStale reports whether an access token with the given reference expiry needs refreshing at now.
func IsStale(now, refExpiry int64) bool {
	return now >= refExpiry
}

type State int

const (
	NoSession State = iota
	Issued
	Fresh
	Stale
	Refreshing
	Invalidated
)

func (s State) String() string {
	switch s {
	case NoSession:
		return "no_session"
	case Issued:
		return "issued"
	case Fresh:
		return "fresh"
	case Stale:
		return "stale"
	case Refreshing:
		return "refreshing"
	case Invalidated:
		return "invalidated"
	default:
		return "unknown"
	}
}

// Store holds tokens by session id. Get returns ErrNoSession when the id is unknown.
type Store interface {
	Get(ctx context.Context, sessionID string) (*Token, error)
	Upsert(ctx context.Context, sessionID string, token *Token) error
	Delete(ctx context.Context, sessionID string) error
}
