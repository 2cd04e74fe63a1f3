package redis

import (
	"context"
	"time"
)

// RateLimiter throttles repeated attempts at a keyed action, most notably
// failed logins per email address.
type RateLimiter struct {
	client RedisClient
}

func NewRateLimiter(client RedisClient) *RateLimiter {
	return &RateLimiter{client: client}
}

func (r *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	count, err := r.client.Incr(ctx, key)
	if err != nil {
		return false, err
	}

	if count == 1 {
		if err := r.client.Expire(ctx, key, window); err != nil {
			return false, err
		}
	}

	return count <= int64(limit), nil
}

// Reset clears the counter, used after a successful login.
func (r *RateLimiter) Reset(ctx context.Context, key string) error {
	return r.client.Del(ctx, key)
}
