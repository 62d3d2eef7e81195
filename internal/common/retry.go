package common

import (
	"context"
	"log/slog"
	"time"
)

// RetryPolicy describes a retry-with-backoff schedule. Use of the helper is a
// caller decision; the pipeline itself mandates no retries.
type RetryPolicy struct {
	MaxAttempts  int
	InitialDelay time.Duration
	Backoff      float64 // delay multiplier per attempt
}

// DefaultRetryPolicy mirrors the historical 3-attempt / 1s / x2 schedule.
var DefaultRetryPolicy = RetryPolicy{MaxAttempts: 3, InitialDelay: time.Second, Backoff: 2.0}

// Retry runs fn until it succeeds, attempts are exhausted, or ctx is done.
// The last error is returned.
func Retry(ctx context.Context, logger *slog.Logger, policy RetryPolicy, fn func() error) error {
	if logger == nil {
		logger = slog.Default()
	}
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}

	var lastErr error
	delay := policy.InitialDelay
	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if attempt == policy.MaxAttempts {
			break
		}
		logger.Warn("retry.attempt_failed",
			"attempt", attempt,
			"max_attempts", policy.MaxAttempts,
			"delay_ms", delay.Milliseconds(),
			"error", lastErr,
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay = time.Duration(float64(delay) * policy.Backoff)
	}
	logger.Error("retry.exhausted", "attempts", policy.MaxAttempts, "error", lastErr)
	return lastErr
}
