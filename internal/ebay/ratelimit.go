package ebay

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter enforces a minimum interval between outbound API calls,
// shared across all callers. A burst of one means no two permitted calls
// are ever closer than the configured interval.
type RateLimiter struct {
	limiter  *rate.Limiter
	interval time.Duration
}

// NewRateLimiter creates a rate limiter with the given minimum interval
// between calls. A zero or negative interval disables pacing.
func NewRateLimiter(interval time.Duration) *RateLimiter {
	if interval <= 0 {
		return &RateLimiter{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &RateLimiter{
		limiter:  rate.NewLimiter(rate.Every(interval), 1),
		interval: interval,
	}
}

// Wait blocks until the interval since the previous permitted call has
// elapsed, or the context is canceled.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if err := r.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait: %w", err)
	}
	return nil
}

// Interval returns the configured minimum interval.
func (r *RateLimiter) Interval() time.Duration {
	return r.interval
}
