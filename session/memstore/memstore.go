package memstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jrsteele09/aicp-web/session"
)

var _ session.Store = (*Store)(nil)

// Store is an in-memory session.Store. Tokens are copied in and out so callers never share state.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]session.Token // sessionID -> token
}

func New() *Store {
	return &Store{
		sessions: make(map[string]session.Token),
	}
}

// Upsert creates or replaces the token for a session
func (s *Store) Upsert(_ context.Context, sessionID string, token *session.Token) error {
	if sessionID == "" {
		return fmt.Errorf("sessionID is required")
	}
	if token == nil {
		return fmt.Errorf("token is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[sessionID] = *token
	return nil
}

func (s *Store) Get(_ context.Context, sessionID string) (*session.Token, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("sessionID is required")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	tok, ok := s.sessions[sessionID]
	if !ok {
		return nil, session.ErrNoSession
	}
	return &tok, nil
}

// Delete removes a session. Unknown ids are not an error.
func (s *Store) Delete(_ context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("sessionID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, sessionID)
	return nil
}

// Prune drops sessions issued before cutoff and returns their ids
func (s *Store) Prune(cutoff time.Time) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed []string
	for id, tok := range s.sessions {
		if tok.IssuedAt.Before(cutoff) {
			delete(s.sessions, id)
			removed = append(removed, id)
		}
	}
	return removed
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
