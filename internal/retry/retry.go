// Package retry provides a bounded retry loop with exponential backoff.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	awsretry "github.com/aws/aws-sdk-go-v2/aws/retry"
)

// ErrExhausted is matched by the error returned when every attempt failed
// with a retryable error.
var ErrExhausted = errors.New("retries exhausted")

// Config holds retry configuration.
type Config struct {
	MaxAttempts int           // Maximum number of attempts, including the first (must be >= 1)
	MaxBackoff  time.Duration // Upper bound for a single wait

	// Backoff computes the wait before the next attempt.
	// Defaults to aws retry's exponential jitter backoff bounded by MaxBackoff.
	Backoff awsretry.BackoffDelayer
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxAttempts: 5,
		MaxBackoff:  2 * time.Second,
	}
}

func (c Config) backoff() awsretry.BackoffDelayer {
	if c.Backoff != nil {
		return c.Backoff
	}
	maxBackoff := c.MaxBackoff
	if maxBackoff <= 0 {
		maxBackoff = DefaultConfig().MaxBackoff
	}
	return awsretry.NewExponentialJitterBackoff(maxBackoff)
}

// RetryableError wraps an error that should be retried.
type RetryableError struct {
	Err error
}

func (e RetryableError) Error() string {
	return e.Err.Error()
}

func (e RetryableError) Unwrap() error {
	return e.Err
}

// Retryable wraps an error to mark it as retryable.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return RetryableError{Err: err}
}

// IsRetryable returns true if the error should be retried.
func IsRetryable(err error) bool {
	var retryable RetryableError
	return errors.As(err, &retryable)
}

// ExhaustedError is returned when the last allowed attempt was still retryable.
type ExhaustedError struct {
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("retries exhausted after %d attempts: %v", e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() []error {
	return []error{ErrExhausted, e.Last}
}

// Do executes fn until it succeeds, fails with a non-retryable error, the
// attempts are used up, or ctx ends. fn receives the 1-based attempt number.
//
// Returns the number of attempts made and the final error:
//   - nil on success
//   - fn's error, unwrapped from RetryableError, when it is not retryable
//   - *ExhaustedError when every attempt was retryable
//   - ctx.Err() when the context ends while waiting
func Do(ctx context.Context, cfg Config, fn func(attempt int) error) (int, error) {
	maxAttempts := cfg.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	backoff := cfg.backoff()

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := fn(attempt)
		if err == nil {
			return attempt, nil
		}

		var retryable RetryableError
		if !errors.As(err, &retryable) {
			return attempt, err
		}
		lastErr = retryable.Err

		if attempt == maxAttempts {
			break
		}

		wait, berr := backoff.BackoffDelay(attempt, lastErr)
		if berr != nil {
			return attempt, fmt.Errorf("failed to compute backoff: %w", berr)
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return attempt, ctx.Err()
		case <-timer.C:
		}
	}

	return maxAttempts, &ExhaustedError{Attempts: maxAttempts, Last: lastErr}
}
