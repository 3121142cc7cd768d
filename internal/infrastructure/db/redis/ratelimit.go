package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// FixedWindowLimiter counts requests per key in fixed windows shared by every
// API replica. A key may make rps*window+burst requests per window.
type FixedWindowLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
	now    func() time.Time
}

func NewFixedWindowLimiter(client *redis.Client, rps float64, burst int, window time.Duration) *FixedWindowLimiter {
	if window < time.Second {
		window = time.Second
	}
	limit := int64(rps*window.Seconds()) + int64(burst)
	if limit < 1 {
		limit = 1
	}
	return &FixedWindowLimiter{client: client, limit: limit, window: window, now: time.Now}
}

// Allow records one request for key. When the window budget is spent it
// returns false and the time left until the window rolls over.
func (l *FixedWindowLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	now := l.now()
	seconds := int64(l.window / time.Second)
	bucket := now.Unix() / seconds
	redisKey := fmt.Sprintf("rl:%s:%d", key, bucket)

	n, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return false, 0, fmt.Errorf("rate limit incr: %w", err)
	}
	if n == 1 {
		if err := l.client.Expire(ctx, redisKey, l.window+time.Second).Err(); err != nil {
			return false, 0, fmt.Errorf("rate limit expire: %w", err)
		}
	}
	if n > l.limit {
		reset := time.Unix((bucket+1)*seconds, 0)
		return false, reset.Sub(now), nil
	}
	return true, 0, nil
}

// Backend names the limiter in metrics.
func (l *FixedWindowLimiter) Backend() string { return "redis" }
