package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"news-atlas/internal/cache"
)

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerMinute int
	BurstSize         int
}

// DefaultRateLimitConfig returns default rate limiting configuration
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerMinute: 60,
		BurstSize:         10,
	}
}

// Limiter decides whether a client may make another request.
type Limiter interface {
	Allow(ctx context.Context, clientIP string) (bool, error)
}

// RateLimit rejects requests over the limiter's budget with 429. Limiter
// errors let the request through.
func RateLimit(limiter Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientIP := getClientIP(r)

			allowed, err := limiter.Allow(r.Context(), clientIP)
			if err != nil {
				log.Warn().Err(err).Str("client_ip", clientIP).Msg("Rate limiter unavailable")
				allowed = true
			}
			if !allowed {
				log.Warn().
					Str("client_ip", clientIP).
					Str("url", r.URL.String()).
					Msg("Rate limit exceeded")

				w.Header().Set("Retry-After", "60")
				writeError(w, http.StatusTooManyRequests, "RATE_LIMIT", "Rate limit exceeded. Please try again later.")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// getClientIP extracts the real client IP address
func getClientIP(r *http.Request) string {
	if forwardedFor := r.Header.Get("X-Forwarded-For"); forwardedFor != "" {
		first, _, _ := strings.Cut(forwardedFor, ",")
		return strings.TrimSpace(first)
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// MemoryLimiter is a per-process token bucket per client.
type MemoryLimiter struct {
	rate  float64 // tokens per second
	burst float64
	now   func() time.Time

	mu      sync.Mutex
	clients map[string]*bucket
}

type bucket struct {
	tokens     float64
	lastRefill time.Time
}

func NewMemoryLimiter(cfg RateLimitConfig) *MemoryLimiter {
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = DefaultRateLimitConfig().RequestsPerMinute
	}
	if cfg.BurstSize <= 0 {
		cfg.BurstSize = 1
	}
	return &MemoryLimiter{
		rate:    float64(cfg.RequestsPerMinute) / 60,
		burst:   float64(cfg.BurstSize),
		now:     time.Now,
		clients: make(map[string]*bucket),
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, clientIP string) (bool, error) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.clients[clientIP]
	if !ok {
		b = &bucket{tokens: l.burst, lastRefill: now}
		l.clients[clientIP] = b
	}

	b.tokens = min(l.burst, b.tokens+now.Sub(b.lastRefill).Seconds()*l.rate)
	b.lastRefill = now

	if b.tokens < 1 {
		return false, nil
	}
	b.tokens--
	return true, nil
}

// RedisLimiter counts requests per client in fixed one-minute windows shared
// by every instance.
type RedisLimiter struct {
	store *cache.RedisCache
	limit int64
	now   func() time.Time
}

func NewRedisLimiter(store *cache.RedisCache, cfg RateLimitConfig) *RedisLimiter {
	limit := cfg.RequestsPerMinute + cfg.BurstSize
	if limit <= 0 {
		d := DefaultRateLimitConfig()
		limit = d.RequestsPerMinute + d.BurstSize
	}
	return &RedisLimiter{store: store, limit: int64(limit), now: time.Now}
}

func (l *RedisLimiter) Allow(ctx context.Context, clientIP string) (bool, error) {
	window := l.now().Truncate(cache.RateLimitWindow)
	n, err := l.store.Incr(ctx, cache.RateLimitKey(clientIP, window), cache.RateLimitWindow)
	if err != nil {
		return false, err
	}
	return n <= l.limit, nil
}

