package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/lawdesk/crm/internal/api/metrics"
)

// Limiter decides whether one more request for key fits the budget. When it
// does not, retryAfter says how long the client should wait.
type Limiter interface {
	Allow(ctx context.Context, key string) (allowed bool, retryAfter time.Duration, err error)
	Backend() string
}

// RateLimit applies l per authenticated subject, or per client IP for
// anonymous requests. Limiter failures let the request through.
func RateLimit(l Limiter, log zerolog.Logger) echo.MiddlewareFunc {
	backend := l.Backend()
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := rateLimitKey(c)
			allowed, retryAfter, err := l.Allow(c.Request().Context(), key)
			if err != nil {
				metrics.RateLimitDecisionsTotal.WithLabelValues(backend, "error").Inc()
				log.Warn().Err(err).Str("key", key).Msg("rate limiter unavailable, allowing request")
				return next(c)
			}
			if !allowed {
				metrics.RateLimitDecisionsTotal.WithLabelValues(backend, "rejected").Inc()
				c.Response().Header().Set("Retry-After", strconv.Itoa(retrySeconds(retryAfter)))
				return c.JSON(http.StatusTooManyRequests, map[string]string{"error": "rate limit exceeded"})
			}
			metrics.RateLimitDecisionsTotal.WithLabelValues(backend, "allowed").Inc()
			return next(c)
		}
	}
}

func rateLimitKey(c echo.Context) string {
	if caller, ok := CallerFrom(c); ok && caller.Subject != "" {
		return "sub:" + caller.Subject
	}
	ip := c.RealIP()
	if ip == "" {
		ip = "unknown"
	}
	return "ip:" + ip
}

func retrySeconds(d time.Duration) int {
	s := int(math.Ceil(d.Seconds()))
	if s < 1 {
		return 1
	}
	return s
}

// MemoryLimiter keeps one token bucket per key in process memory. It is the
// fallback when Redis is not configured.
type MemoryLimiter struct {
	rps      rate.Limit
	burst    int
	limiters sync.Map // key -> *rate.Limiter
}

func NewMemoryLimiter(rps float64, burst int) *MemoryLimiter {
	if burst < 1 {
		burst = 1
	}
	return &MemoryLimiter{rps: rate.Limit(rps), burst: burst}
}

func (m *MemoryLimiter) Backend() string { return "memory" }

func (m *MemoryLimiter) Allow(_ context.Context, key string) (bool, time.Duration, error) {
	v, _ := m.limiters.LoadOrStore(key, rate.NewLimiter(m.rps, m.burst))
	res := v.(*rate.Limiter).Reserve()
	if !res.OK() {
		return false, time.Second, nil
	}
	if d := res.Delay(); d > 0 {
		res.Cancel()
		return false, d, nil
	}
	return true, 0, nil
}
