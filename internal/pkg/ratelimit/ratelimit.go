// internal/pkg/ratelimit/ratelimit.go
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter is a fixed-window counter on redis, keyed per account and
// action. Used to throttle coupon preview attempts and login retries.
type Limiter struct {
	client *redis.Client
	action string
	max    int64
	window time.Duration
}

func NewLimiter(client *redis.Client, action string, max int64, window time.Duration) *Limiter {
	return &Limiter{client: client, action: action, max: max, window: window}
}

// NewCouponLimiter throttles coupon preview attempts: 10 per minute per
// account.
func NewCouponLimiter(client *redis.Client) *Limiter {
	return NewLimiter(client, "coupon_preview", 10, time.Minute)
}

// Allow consumes one attempt and reports whether it fit in the window.
func (l *Limiter) Allow(ctx context.Context, accountID int64) (bool, error) {
	key := fmt.Sprintf("ratelimit:%s:%d", l.action, accountID)

	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to increment %s attempts: %w", l.action, err)
	}

	// Set expiration on first attempt
	if count == 1 {
		l.client.Expire(ctx, key, l.window)
	}

	return count <= l.max, nil
}

// Remaining returns the attempts left in the current window.
func (l *Limiter) Remaining(ctx context.Context, accountID int64) (int64, error) {
	key := fmt.Sprintf("ratelimit:%s:%d", l.action, accountID)

	count, err := l.client.Get(ctx, key).Int64()
	if err == redis.Nil {
		return l.max, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get %s attempts: %w", l.action, err)
	}

	remaining := l.max - count
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

// Reset clears the window, typically after a successful action.
func (l *Limiter) Reset(ctx context.Context, accountID int64) error {
	key := fmt.Sprintf("ratelimit:%s:%d", l.action, accountID)
	return l.client.Del(ctx, key).Err()
}
