package dataset

import (
	"context"
	"errors"
	"math"
	"time"

	"go-accident-dashboard/pkg/utils"
)

// RetryConfig defines how remote sources are retried.
type RetryConfig struct {
	MaxAttempts       int           `json:"max_attempts"`
	InitialDelay      time.Duration `json:"initial_delay"`
	MaxDelay          time.Duration `json:"max_delay"`
	BackoffMultiplier float64       `json:"backoff_multiplier"`
}

// DefaultRetryConfig applies to HTTP sources when none is configured.
var DefaultRetryConfig = RetryConfig{
	MaxAttempts:       3,
	InitialDelay:      500 * time.Millisecond,
	MaxDelay:          5 * time.Second,
	BackoffMultiplier: 2.0,
}

// permanentError marks a failure that retrying cannot fix.
type permanentError struct{ err error }

func (e permanentError) Error() string { return e.err.Error() }
func (e permanentError) Unwrap() error { return e.err }

func permanent(err error) error { return permanentError{err: err} }

// delay returns the backoff before the given retry (1-based), capped at
// MaxDelay.
func (c RetryConfig) delay(attempt int) time.Duration {
	mult := c.BackoffMultiplier
	if mult < 1 {
		mult = 1
	}
	d := time.Duration(float64(c.InitialDelay) * math.Pow(mult, float64(attempt-1)))
	if c.MaxDelay > 0 && d > c.MaxDelay {
		d = c.MaxDelay
	}
	return d
}

// withRetry runs op until it succeeds, fails permanently, the attempts run
// out or ctx is done. It returns the number of attempts made.
func withRetry(ctx context.Context, cfg RetryConfig, source string, op func(context.Context) error) (int, error) {
	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = op(ctx)
		if err == nil {
			return attempt, nil
		}
		var perm permanentError
		if errors.As(err, &perm) || attempt == attempts {
			return attempt, err
		}

		wait := cfg.delay(attempt)
		utils.LogWarn("source fetch failed, retrying", map[string]interface{}{
			"source":  source,
			"attempt": attempt,
			"wait":    wait.String(),
			"error":   err.Error(),
		})
		select {
		case <-ctx.Done():
			return attempt, ctx.Err()
		case <-time.After(wait):
		}
	}
	return attempts, err
}
