package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/promptgate/promptgate/config"
	"github.com/promptgate/promptgate/errors"
	"github.com/promptgate/promptgate/server/metrics"
	"golang.org/x/time/rate"
)

// RateLimiter implements per-client-IP rate limiting with a token bucket
// sized from the configured window and max request count. Requests rejected
// here never reach the completion service.
type RateLimiter struct {
	cfg      config.RateLimitConfig
	metrics  *metrics.Metrics
	mu       sync.Mutex
	visitors map[string]*rate.Limiter
}

// NewRateLimiter creates a rate limiter from the configured policy.
// The metrics parameter may be nil.
func NewRateLimiter(cfg config.RateLimitConfig, m *metrics.Metrics) *RateLimiter {
	return &RateLimiter{
		cfg:      cfg,
		metrics:  m,
		visitors: make(map[string]*rate.Limiter),
	}
}

func (rl *RateLimiter) getOrCreate(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	limiter, exists := rl.visitors[ip]
	if !exists {
		interval := rl.cfg.Window / time.Duration(rl.cfg.MaxRequests)
		limiter = rate.NewLimiter(rate.Every(interval), rl.cfg.MaxRequests)
		rl.visitors[ip] = limiter
	}

	return limiter
}

// Middleware returns the chi-compatible middleware function.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)

		if !rl.getOrCreate(ip).Allow() {
			if rl.metrics != nil {
				rl.metrics.RateLimitHits.WithLabelValues(ip).Inc()
			}
			errors.WriteError(w, errors.NewRateLimitError(
				GetRequestID(r.Context()),
				int(rl.cfg.Window.Seconds()),
			))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Reset clears all visitor state. Only used for testing.
func (rl *RateLimiter) Reset() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.visitors = make(map[string]*rate.Limiter)
}

// clientIP strips the port from RemoteAddr if present. A RemoteAddr
// without a port (some non-stdlib transports supply bare IPv6 addresses)
// is used as-is.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
