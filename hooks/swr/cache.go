package swr

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultDedupingInterval matches the browser SWR default: a key fetched within
// this window is served from the cache without calling the fetcher.
const DefaultDedupingInterval = 2 * time.Second

// DefaultMaxIdle is how long an entry survives without being read before Sweep evicts it
const DefaultMaxIdle = 30 * time.Minute

// Fetcher loads the resource behind a key
type Fetcher func(ctx context.Context) (any, error)

// State is what a caller sees for a key. IsLoading is true while there is neither data nor an error.
type State struct {
	Data      any
	Err       error
	IsLoading bool
	IsError   bool
}

type entry struct {
	data      any
	err       error
	fetchedAt time.Time
	lastUsed  atomic.Int64 // unix nanos
}

// Cache is a revalidating fetch cache keyed by resource path.
// On error the last good data is kept alongside the error.
type Cache struct {
	mu       sync.RWMutex
	entries  map[string]*entry
	inflight singleflight.Group
	dedupe   time.Duration
	maxIdle  time.Duration
	nowTime  func() time.Time
}

type Option func(*Cache)

func WithDedupingInterval(d time.Duration) Option {
	return func(c *Cache) {
		c.dedupe = d
	}
}

// WithMaxIdle sets the idle lifetime used by Sweep, zero disables eviction
func WithMaxIdle(d time.Duration) Option {
	return func(c *Cache) {
		c.maxIdle = d
	}
}

// WithNowTime sets the clock (primarily for testing)
func WithNowTime(nowFunc func() time.Time) Option {
	return func(c *Cache) {
		c.nowTime = nowFunc
	}
}

func New(opts ...Option) *Cache {
	c := &Cache{
		entries: make(map[string]*entry),
		dedupe:  DefaultDedupingInterval,
		maxIdle: DefaultMaxIdle,
		nowTime: time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch returns the state for key, revalidating through fetcher unless the key
// was fetched within the de-duplication interval. Concurrent fetches of one key share a single call.
func (c *Cache) Fetch(ctx context.Context, key string, fetcher Fetcher) State {
	if st, ok := c.recent(key); ok {
		return st
	}

	v, _, _ := c.inflight.Do(key, func() (any, error) {
		data, err := fetcher(ctx)
		return c.store(key, data, err), nil
	})
	return v.(State)
}

// Invalidate drops every key starting with prefix so the next Fetch revalidates
func (c *Cache) Invalidate(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Sweep evicts entries that have not been read for longer than the idle lifetime.
// Scopes of sessions that expired without signing out are reclaimed this way.
func (c *Cache) Sweep() int {
	if c.maxIdle <= 0 {
		return 0
	}
	cutoff := c.nowTime().Add(-c.maxIdle).UnixNano()

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, e := range c.entries {
		if e.lastUsed.Load() < cutoff {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache) recent(key string) (State, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	now := c.nowTime()
	e, ok := c.entries[key]
	if !ok || now.Sub(e.fetchedAt) >= c.dedupe {
		return State{}, false
	}
	e.lastUsed.Store(now.UnixNano())
	return stateOf(e), true
}

func (c *Cache) store(key string, data any, err error) State {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		e = &entry{}
		c.entries[key] = e
	}
	now := c.nowTime()
	e.fetchedAt = now
	e.lastUsed.Store(now.UnixNano())
	e.err = err
	if err == nil {
		e.data = data
	}
	return stateOf(e)
}

func stateOf(e *entry) State {
	if e == nil {
		return State{IsLoading: true}
	}
	return State{
		Data:      e.data,
		Err:       e.err,
		IsError:   e.err != nil,
		IsLoading: e.err == nil && e.data == nil,
	}
}
