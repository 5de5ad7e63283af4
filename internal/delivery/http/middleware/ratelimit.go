package middleware

import (
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	h "talkmaster/internal/delivery/http/helpers"
)

// limiterIdleTTL is how long an idle client's limiter is kept before eviction.
const limiterIdleTTL = 10 * time.Minute

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter holds one token bucket per client IP.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*clientLimiter
	rps      rate.Limit
	burst    int
	now      func() time.Time
}

// NewRateLimiter returns a limiter allowing rps requests per second per client with the given burst.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*clientLimiter),
		rps:      rate.Limit(rps),
		burst:    burst,
		now:      time.Now,
	}
}

// getLimiter returns the limiter for ip, creating one if needed, and evicts idle entries.
func (l *RateLimiter) getLimiter(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for key, c := range l.limiters {
		if now.Sub(c.lastSeen) > limiterIdleTTL {
			delete(l.limiters, key)
		}
	}
	c, ok := l.limiters[ip]
	if !ok {
		c = &clientLimiter{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.limiters[ip] = c
	}
	c.lastSeen = now
	return c.limiter
}

// Middleware rejects requests over the client's budget with 429 rate_limited.
func (l *RateLimiter) Middleware(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		limiter := l.getLimiter(ip)
		if !limiter.AllowN(l.now(), 1) {
			logger.WarnContext(r.Context(), "rate limit exceeded", "ip", ip, "path", r.URL.Path)
			retry := math.Ceil(1 / math.Max(float64(l.rps), 1e-3))
			w.Header().Set("Retry-After", strconv.Itoa(int(retry)))
			h.WriteJSONError(w, http.StatusTooManyRequests, h.ErrCodeRateLimited, "rate limit exceeded, try again later")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
