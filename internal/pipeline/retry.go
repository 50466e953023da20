// Package pipeline drives validated product records through batched
// inventory creation and the optional offer/publish sequence.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/donaldgifford/ebay-autolister/internal/ebay"
)

// ErrRetriesExhausted wraps the last error after a retryable operation ran
// out of attempts.
var ErrRetriesExhausted = errors.New("retries exhausted")

// retriesExhaustedReason is the failure reason recorded for a sku whose
// retries ran out.
const retriesExhaustedReason = "retries_exhausted"

const defaultBackoffBase = 500 * time.Millisecond

// Policy is an explicit retry policy: total attempt count, backoff schedule,
// and the predicate deciding which errors are worth another attempt.
type Policy struct {
	// MaxAttempts is the total number of attempts including the first.
	MaxAttempts int

	// Backoff returns the wait before the given attempt (1-based; attempt 1
	// never waits).
	Backoff func(attempt int) time.Duration

	// Retryable reports whether the error may resolve on a later attempt.
	Retryable func(err error) bool
}

// DefaultPolicy returns the standard policy: maxAttempts total attempts,
// exponential backoff from 500ms, retrying transient API errors and
// timeouts.
func DefaultPolicy(maxAttempts int) Policy {
	return Policy{
		MaxAttempts: maxAttempts,
		Backoff: func(attempt int) time.Duration {
			return defaultBackoffBase << (attempt - 1)
		},
		Retryable: ebay.IsTransient,
	}
}

// Do runs fn up to p.MaxAttempts times, sleeping per the backoff schedule
// between attempts. Non-retryable errors return immediately; running out of
// attempts returns the last error wrapped in ErrRetriesExhausted.
func (p Policy) Do(ctx context.Context, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if attempt > 1 {
			if err := sleep(ctx, p.Backoff(attempt-1)); err != nil {
				return err
			}
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if p.Retryable == nil || !p.Retryable(lastErr) {
			return lastErr
		}
	}

	return fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, p.MaxAttempts, lastErr)
}

// FailureReason converts an error into the reason string recorded on a
// failed sku.
func FailureReason(err error) string {
	if errors.Is(err, ErrRetriesExhausted) {
		return retriesExhaustedReason
	}
	return err.Error()
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
