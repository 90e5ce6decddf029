package server

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/jrsteele09/aicp-web/internal/logging"
	"golang.org/x/time/rate"
)

const visitorIdleTimeout = 10 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ipRateLimiter is a token bucket per client IP
type ipRateLimiter struct {
	mu          sync.Mutex
	visitors    map[string]*visitor
	limit       rate.Limit
	burst       int
	nowTime     func() time.Time
	lastCleanup time.Time
}

func newIPRateLimiter(perMinute int) *ipRateLimiter {
	return &ipRateLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    perMinute,
		nowTime:  time.Now,
	}
}

func (l *ipRateLimiter) Allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.nowTime()
	if now.Sub(l.lastCleanup) > visitorIdleTimeout {
		for k, v := range l.visitors {
			if now.Sub(v.lastSeen) > visitorIdleTimeout {
				delete(l.visitors, k)
			}
		}
		l.lastCleanup = now
	}

	v, ok := l.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// LoginRateLimitMiddleware throttles credential submissions per client IP
func (s *Server) LoginRateLimitMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.loginLimiter == nil {
			next(w, r)
			return
		}
		ip := clientIP(r, s.trustProxy)
		if !s.loginLimiter.Allow(ip) {
			logging.FromContext(r.Context()).Warn().Str("ip", ip).Msg("login rate limit exceeded")
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Too many login attempts, please try again later", http.StatusTooManyRequests)
			return
		}
		next(w, r)
	}
}

// clientIP identifies the caller by its connection address. With trustProxy set the
// rightmost X-Forwarded-For entry is used instead, being the one our proxy appended.
func clientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if fwd := r.Header.Values("X-Forwarded-For"); len(fwd) > 0 {
			entries := strings.Split(fwd[len(fwd)-1], ",")
			if last := strings.TrimSpace(entries[len(entries)-1]); last != "" {
				return last
			}
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
