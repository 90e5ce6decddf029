package redisstore_test

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jrsteele09/aicp-web/apiclient"
	apperrors "github.com/jrsteele09/aicp-web/internal/errors"
	"github.com/jrsteele09/aicp-web/internal/utils"
	"github.com/jrsteele09/aicp-web/session"
	"github.com/jrsteele09/aicp-web/session/redisstore"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, client.Ping(t.Context()).Err())
	return client, mr
}

func newStore(t *testing.T, client *redis.Client, maxAge time.Duration) *redisstore.Store {
	t.Helper()
	s, err := redisstore.New(client, testSecret, maxAge, redisstore.WithNowTime(func() time.Time { return fixedNow }))
	require.NoError(t, err)
	return s
}

func TestNew(t *testing.T) {
	client, _ := setupTestRedis(t)

	_, err := redisstore.New(nil, testSecret, time.Hour)
	require.Error(t, err)

	_, err = redisstore.New(client, "short", time.Hour)
	require.Error(t, err)
}

func TestStore_RoundTrip(t *testing.T) {
	client, mr := setupTestRedis(t)
	s := newStore(t, client, 24*time.Hour)
	ctx := t.Context()

	tok := &session.Token{
		User:         apiclient.User{ID: "u1", Username: "alice", Email: utils.Ptr("alice@example.com")},
		AccessToken:  "access-secret",
		RefreshToken: "refresh-secret",
		RefExpiry:    fixedNow.Add(5 * time.Minute).Unix(),
		IssuedAt:     fixedNow.Add(-time.Hour),
	}
	require.NoError(t, s.Upsert(ctx, "sid", tok))

	raw, err := mr.Get("aicp:session:sid")
	require.NoError(t, err)
	require.NotContains(t, raw, "access-secret")
	require.NotContains(t, raw, "refresh-secret")
	require.Equal(t, 23*time.Hour, mr.TTL("aicp:session:sid"))

	got, err := s.Get(ctx, "sid")
	require.NoError(t, err)
	require.Equal(t, tok.AccessToken, got.AccessToken)
	require.Equal(t, tok.RefreshToken, got.RefreshToken)
	require.Equal(t, tok.RefExpiry, got.RefExpiry)
	require.Equal(t, tok.User, got.User)
	require.True(t, tok.IssuedAt.Equal(got.IssuedAt))

	require.NoError(t, s.Delete(ctx, "sid"))
	_, err = s.Get(ctx, "sid")
	require.ErrorIs(t, err, session.ErrNoSession)
}

func TestStore_Expiry(t *testing.T) {
	client, mr := setupTestRedis(t)
	s := newStore(t, client, time.Hour)
	ctx := t.Context()

	require.NoError(t, s.Upsert(ctx, "sid", &session.Token{AccessToken: "a", IssuedAt: fixedNow}))
	mr.FastForward(time.Hour + time.Second)

	_, err := s.Get(ctx, "sid")
	require.ErrorIs(t, err, session.ErrNoSession)

	// Already past max age: nothing is written and the caller is told
	err = s.Upsert(ctx, "old", &session.Token{AccessToken: "a", IssuedAt: fixedNow.Add(-2 * time.Hour)})
	require.ErrorIs(t, err, session.ErrSessionExpired)
	require.False(t, mr.Exists("aicp:session:old"))
}

func TestStore_Tampered(t *testing.T) {
	client, mr := setupTestRedis(t)
	s := newStore(t, client, 0)
	ctx := t.Context()

	require.NoError(t, s.Upsert(ctx, "sid", &session.Token{AccessToken: "a"}))
	require.NoError(t, mr.Set("aicp:session:sid", "not a sealed value at all, just some plain text"))

	_, err := s.Get(ctx, "sid")
	require.ErrorIs(t, err, apperrors.ErrInvalidToken)

	// A store with a different secret cannot open the value either
	require.NoError(t, s.Upsert(ctx, "sid", &session.Token{AccessToken: "a"}))
	other, err := redisstore.New(client, testSecret+"-rotated", 0)
	require.NoError(t, err)
	_, err = other.Get(ctx, "sid")
	require.ErrorIs(t, err, apperrors.ErrInvalidToken)
}
