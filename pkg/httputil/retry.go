package httputil

import (
	"context"
	"errors"
	"time"
)

// MaxDelay caps the wait between two attempts.
const MaxDelay = 10 * time.Second

// RetryableError marks a transient failure: a dropped connection, a 5xx or a
// 429 from a REST repository or photo host. [Retry] only repeats these.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retry runs fn until it succeeds, fails permanently or attempts run out.
// The delay doubles after every transient failure, up to [MaxDelay]. A
// cancelled ctx stops the wait and returns ctx.Err().
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	attempts = max(attempts, 1)
	var lastErr error

	for i := range attempts {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !errors.As(err, new(*RetryableError)) || i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff(delay, i)):
		}
	}
	return lastErr
}

// backoff returns the wait before attempt i+2.
func backoff(delay time.Duration, i int) time.Duration {
	for ; i > 0 && delay < MaxDelay; i-- {
		delay *= 2
	}
	return min(delay, MaxDelay)
}
