package middleware

import (
	"context"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/gobarber/gobarber/internal/apperror"
)

// sweepInterval is how often RateLimit drops stale entries.
const sweepInterval = time.Minute

// rateLimitEntry tracks request counts for a single IP within a time window.
type rateLimitEntry struct {
	count       int
	windowStart time.Time
}

// RateLimiter is a fixed-window, per-IP request counter kept in memory.
// Used on POST /sessions and POST /users to slow down credential stuffing.
type RateLimiter struct {
	maxRequests int
	window      time.Duration
	now         func() time.Time

	mu      sync.Mutex
	entries map[string]*rateLimitEntry
}

// NewRateLimiter creates a limiter allowing maxRequests per window per IP.
func NewRateLimiter(maxRequests int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		maxRequests: maxRequests,
		window:      window,
		now:         time.Now,
		entries:     make(map[string]*rateLimitEntry),
	}
}

// Allow records a request from ip and reports whether it is within the limit.
func (l *RateLimiter) Allow(ip string) bool {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	// A new window starts on the first request after the old one ends, not
	// on a fixed clock boundary.
	entry, ok := l.entries[ip]
	if !ok || now.Sub(entry.windowStart) > l.window {
		l.entries[ip] = &rateLimitEntry{count: 1, windowStart: now}
		return true
	}

	// Rejected requests still count, so hammering keeps the client blocked
	// until the window ends.
	entry.count++
	return entry.count <= l.maxRequests
}

// Sweep drops entries whose window ended more than one window ago. Without
// it the map grows by one entry per client IP ever seen.
func (l *RateLimiter) Sweep() {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	for ip, entry := range l.entries {
		if now.Sub(entry.windowStart) > l.window*2 {
			delete(l.entries, ip)
		}
	}
}

// Middleware returns echo middleware enforcing the limit. Returns 429 when
// exceeded.
func (l *RateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// RealIP is the proxy-aware client address; see TrustedProxies.
			if !l.Allow(c.RealIP()) {
				return apperror.NewTooManyRequests("Rate limit exceeded. Please try again later.")
			}
			return next(c)
		}
	}
}

// Run sweeps stale entries every interval until ctx is done.
func (l *RateLimiter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Sweep()
		}
	}
}

// RateLimit returns middleware that limits requests per IP to maxRequests
// within the given window. Stale entries are swept in the background until
// ctx is cancelled, which App.Shutdown does.
func RateLimit(ctx context.Context, maxRequests int, window time.Duration) echo.MiddlewareFunc {
	l := NewRateLimiter(maxRequests, window)
	go l.Run(ctx, sweepInterval)
	return l.Middleware()
}
