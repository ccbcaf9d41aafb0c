package redis

import (
	"context"
	"fmt"
	"time"
)

// RateLimiter is a fixed-window counter. A checkout holds a provider prompt
// open on the payer's handset, so the limit per phone is deliberately low.
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

	if count > int64(limit) {
		return false, nil
	}

	return true, nil
}

func PhoneCheckoutKey(phone string) string {
	return fmt.Sprintf("rate_limit:checkout:%s", phone)
}
