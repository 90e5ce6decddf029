package server

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jrsteele09/aicp-web/internal/logging"
	"github.com/stretchr/testify/require"
)

func TestChainMiddleware_Order(t *testing.T) {
	var calls []string
	tag := func(name string) func(http.HandlerFunc) http.HandlerFunc {
		return func(next http.HandlerFunc) http.HandlerFunc {
			return func(w http.ResponseWriter, r *http.Request) {
				calls = append(calls, name)
				next(w, r)
			}
		}
	}

	h := ChainMiddleware(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, "handler")
	}, tag("first"), tag("second"))
	h(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, []string{"first", "second", "handler"}, calls)
}

func TestRecoverMiddleware(t *testing.T) {
	s := &Server{}
	h := s.RecoverMiddleware(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	rec := httptest.NewRecorder()
	require.NotPanics(t, func() { h(rec, httptest.NewRequest(http.MethodGet, "/", nil)) })
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRequestIDMiddleware(t *testing.T) {
	s := &Server{}
	var seen string
	h := s.RequestIDMiddleware(func(w http.ResponseWriter, r *http.Request) {
		seen = logging.RequestID(r.Context())
	})

	t.Run("inbound id is kept", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(headerRequestID, "abc")
		rec := httptest.NewRecorder()
		h(rec, req)
		require.Equal(t, "abc", seen)
		require.Equal(t, "abc", rec.Header().Get(headerRequestID))
	})

	t.Run("oversized id is replaced", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(headerRequestID, strings.Repeat("x", 200))
		rec := httptest.NewRecorder()
		h(rec, req)
		require.Len(t, seen, 36)
		require.Equal(t, seen, rec.Header().Get(headerRequestID))
	})
}

func TestWWWRedirectMiddleware(t *testing.T) {
	s := &Server{}
	h := s.WWWRedirectMiddleware(func(w http.ResponseWriter, r *http.Request) {})

	req := httptest.NewRequest(http.MethodGet, "/projects?x=1", nil)
	req.Host = "www.example.com"
	rec := httptest.NewRecorder()
	h(rec, req)
	require.Equal(t, http.StatusMovedPermanently, rec.Code)
	require.Equal(t, "https://example.com/projects?x=1", rec.Header().Get("Location"))
}

func TestSafeRedirect(t *testing.T) {
	tests := []struct {
		next string
		want string
	}{
		{"", "/"},
		{"/projects/new", "/projects/new"},
		{"/projects?x=1", "/projects?x=1"},
		{"//evil.example", "/"},
		{"/\\evil.example", "/"},
		{"https://evil.example", "/"},
		{"projects", "/"},
	}
	for _, tt := range tests {
		t.Run(tt.next, func(t *testing.T) {
			require.Equal(t, tt.want, safeRedirect(tt.next))
		})
	}
}

func TestRedirectWithError(t *testing.T) {
	rec := httptest.NewRecorder()
	redirectWithError(rec, httptest.NewRequest(http.MethodPost, "/auth/login", nil), "/login?username=bob", "Bad things & more")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/login?username=bob&error=Bad+things+%26+more", rec.Header().Get("Location"))

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	req.Header.Set("HX-Request", "true")
	redirectWithError(rec, req, "/login", "nope")
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "/login?error=nope", rec.Header().Get("HX-Redirect"))
}

func TestIPRateLimiter(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l := newIPRateLimiter(3)
	l.nowTime = func() time.Time { return now }

	for range 3 {
		require.True(t, l.Allow("10.0.0.1"))
	}
	require.False(t, l.Allow("10.0.0.1"))
	require.True(t, l.Allow("10.0.0.2"), "limits are per client")

	now = now.Add(20 * time.Second)
	require.True(t, l.Allow("10.0.0.1"))
	require.False(t, l.Allow("10.0.0.1"))

	now = now.Add(visitorIdleTimeout + time.Minute)
	l.Allow("10.0.0.3")
	l.mu.Lock()
	defer l.mu.Unlock()
	require.Len(t, l.visitors, 1)
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.7:5555"
	require.Equal(t, "192.0.2.7", clientIP(req, false))

	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	require.Equal(t, "192.0.2.7", clientIP(req, false), "forwarded header ignored unless trusted")
	require.Equal(t, "10.0.0.1", clientIP(req, true), "rightmost entry is the one the proxy appended")

	req.Header.Add("X-Forwarded-For", "198.51.100.4")
	require.Equal(t, "198.51.100.4", clientIP(req, true))
}

func TestLoginRateLimit_ForgedForwardedFor(t *testing.T) {
	allowedAttempts := func(s *Server, forwarded func(i int) string) int {
		h := s.LoginRateLimitMiddleware(func(w http.ResponseWriter, r *http.Request) {})
		allowed := 0
		for i := range 20 {
			req := httptest.NewRequest(http.MethodPost, RouteAuthLogin, nil)
			req.RemoteAddr = "192.0.2.7:5555"
			req.Header.Set("X-Forwarded-For", forwarded(i))
			rec := httptest.NewRecorder()
			h(rec, req)
			if rec.Code == http.StatusOK {
				allowed++
			}
		}
		return allowed
	}

	t.Run("untrusted header cannot reset the limit", func(t *testing.T) {
		s := &Server{loginLimiter: newIPRateLimiter(3)}
		require.Equal(t, 3, allowedAttempts(s, func(i int) string { return fmt.Sprintf("203.0.113.%d", i) }))
	})

	t.Run("behind a proxy spoofed leftmost entries are ignored", func(t *testing.T) {
		s := &Server{loginLimiter: newIPRateLimiter(3), trustProxy: true}
		require.Equal(t, 3, allowedAttempts(s, func(i int) string { return fmt.Sprintf("203.0.113.%d, 198.51.100.4", i) }))
	})
}

func TestIsStaticAsset(t *testing.T) {
	require.True(t, isStaticAsset("/css/app.css"))
	require.True(t, isStaticAsset("/js/app.js"))
	require.False(t, isStaticAsset("/projects"))
}
