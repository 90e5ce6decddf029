package redisstore

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/jrsteele09/aicp-web/internal/errors"
	"github.com/jrsteele09/aicp-web/session"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/nacl/secretbox"
)

const (
	sessionKeyPrefix = "aicp:session:" // aicp:session:{session_id}
	nonceLength      = 24
	minSecretLength  = 32
)

var _ session.Store = (*Store)(nil)

// Store keeps tokens in Redis, sealed with NaCl secretbox so a dump of the
// keyspace does not expose bearer credentials. Keys expire after the session max age.
type Store struct {
	client  *redis.Client
	key     [32]byte
	maxAge  time.Duration
	nowTime func() time.Time
}

type Option func(*Store)

// WithNowTime sets the clock used for TTL calculation (primarily for testing)
func WithNowTime(nowFunc func() time.Time) Option {
	return func(s *Store) {
		s.nowTime = nowFunc
	}
}

// New creates a Store. secret must hold at least 32 bytes of key material.
func New(client *redis.Client, secret string, maxAge time.Duration, opts ...Option) (*Store, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if len(secret) < minSecretLength {
		return nil, fmt.Errorf("session secret must be at least %d bytes", minSecretLength)
	}
	s := &Store{
		client:  client,
		key:     sha256.Sum256([]byte(secret)),
		maxAge:  maxAge,
		nowTime: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Store) Upsert(ctx context.Context, sessionID string, token *session.Token) error {
	if sessionID == "" {
		return fmt.Errorf("sessionID is required")
	}
	if token == nil {
		return fmt.Errorf("token is required")
	}

	ttl := s.ttl(token)
	if ttl < 0 {
		if err := s.Delete(ctx, sessionID); err != nil {
			return err
		}
		return fmt.Errorf("%w: past max age", session.ErrSessionExpired)
	}

	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	sealed, err := s.seal(data)
	if err != nil {
		return err
	}

	if err := s.client.Set(ctx, s.sessionKey(sessionID), sealed, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, sessionID string) (*session.Token, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("sessionID is required")
	}

	sealed, err := s.client.Get(ctx, s.sessionKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, session.ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	data, err := s.open(sealed)
	if err != nil {
		return nil, err
	}

	var tok session.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &tok, nil
}

func (s *Store) Delete(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("sessionID is required")
	}
	if err := s.client.Del(ctx, s.sessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// ttl returns the remaining lifetime of the session, zero for no expiry and negative when already expired
func (s *Store) ttl(token *session.Token) time.Duration {
	if s.maxAge <= 0 || token.IssuedAt.IsZero() {
		return 0
	}
	remaining := token.IssuedAt.Add(s.maxAge).Sub(s.nowTime())
	if remaining <= 0 {
		return -1
	}
	return remaining
}

func (s *Store) seal(data []byte) ([]byte, error) {
	var nonce [nonceLength]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	return secretbox.Seal(nonce[:], data, &nonce, &s.key), nil
}

func (s *Store) open(sealed []byte) ([]byte, error) {
	if len(sealed) < nonceLength+secretbox.Overhead {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidToken, "sealed session too short")
	}
	var nonce [nonceLength]byte
	copy(nonce[:], sealed[:nonceLength])
	data, ok := secretbox.Open(nil, sealed[nonceLength:], &nonce, &s.key)
	if !ok {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidToken, "failed to open sealed session")
	}
	return data, nil
}

func (s *Store) sessionKey(sessionID string) string {
	return sessionKeyPrefix + sessionID
}
