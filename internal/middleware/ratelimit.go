package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/gitchest/gitchest/internal/cache"
)

// Decision is the outcome of a rate limit check.
type Decision struct {
	Allowed    bool
	Remaining  int64
	RetryAfter time.Duration
}

// Limiter decides whether a client may make another request.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// MemoryLimiter keeps one token bucket per client in process memory.
// Buckets idle for longer than ttl are dropped lazily.
type MemoryLimiter struct {
	mu       sync.Mutex
	limiters map[string]*clientLimiter
	r        rate.Limit
	b        int
	ttl      time.Duration
	now      func() time.Time
}

type clientLimiter struct {
	lim     *rate.Limiter
	lastHit time.Time
}

// NewMemoryLimiter creates a MemoryLimiter allowing rps requests per second
// with the given burst.
func NewMemoryLimiter(rps float64, burst int, ttl time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		limiters: make(map[string]*clientLimiter),
		r:        rate.Limit(rps),
		b:        burst,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Allow consumes one token for key.
func (s *MemoryLimiter) Allow(_ context.Context, key string) (Decision, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		key = "unknown"
	}

	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for k, v := range s.limiters {
		if now.Sub(v.lastHit) > s.ttl {
			delete(s.limiters, k)
		}
	}

	cl, ok := s.limiters[key]
	if !ok {
		cl = &clientLimiter{lim: rate.NewLimiter(s.r, s.b)}
		s.limiters[key] = cl
	}
	cl.lastHit = now

	r := cl.lim.ReserveN(now, 1)
	if !r.OK() {
		return Decision{}, nil
	}
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return Decision{RetryAfter: delay}, nil
	}
	return Decision{Allowed: true, Remaining: int64(math.Floor(cl.lim.TokensAt(now)))}, nil
}

// Len returns the number of tracked clients.
func (s *MemoryLimiter) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.limiters)
}

// RedisLimiter shares buckets between processes through Redis.
type RedisLimiter struct {
	cache *cache.Cache
	rps   float64
	burst int
}

// NewRedisLimiter creates a RedisLimiter.
func NewRedisLimiter(c *cache.Cache, rps float64, burst int) *RedisLimiter {
	return &RedisLimiter{cache: c, rps: rps, burst: burst}
}

// Allow consumes one token for key.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	result, err := l.cache.CheckClientRateLimit(ctx, key, l.rps, l.burst)
	if err != nil {
		return Decision{}, err
	}
	return Decision{
		Allowed:    result.Allowed,
		Remaining:  result.Remaining,
		RetryAfter: result.RetryAfter,
	}, nil
}

// RateLimitConfig holds configuration for rate limiting middleware.
type RateLimitConfig struct {
	Logger  *slog.Logger
	Limiter Limiter
	Enabled bool
}

// RateLimitIP returns middleware that rate limits requests per client IP.
// Limiter errors fail open.
func RateLimitIP(cfg RateLimitConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.Enabled || cfg.Limiter == nil {
				next.ServeHTTP(w, r)
				return
			}

			ip := ClientIP(r)

			d, err := cfg.Limiter.Allow(r.Context(), ip)
			if err != nil {
				cfg.Logger.Error("rate limit check failed",
					slog.String("error", err.Error()),
					slog.String("ip", ip),
				)
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(d.Remaining, 10))

			if !d.Allowed {
				retry := int(math.Ceil(d.RetryAfter.Seconds()))
				cfg.Logger.Warn("rate limit exceeded",
					slog.String("ip", ip),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.Int("retry_after_seconds", retry),
					slog.String("request_id", GetRequestID(r.Context())),
				)

				w.Header().Set("Retry-After", strconv.Itoa(retry))
				writeRateLimitError(w, retry)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// writeRateLimitError writes a 429 Too Many Requests response.
func writeRateLimitError(w http.ResponseWriter, retryAfter int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	msg := fmt.Sprintf(`{"error":"Rate limit exceeded. Retry after %d seconds.","code":"RATE_LIMITED"}`, retryAfter)
	_, _ = w.Write([]byte(msg))
}

// ClientIP returns the host part of RemoteAddr. chi's RealIP middleware
// rewrites RemoteAddr from proxy headers when it runs first.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil && host != "" {
		return host
	}
	return strings.TrimSpace(r.RemoteAddr)
}
