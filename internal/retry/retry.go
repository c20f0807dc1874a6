// Package retry wraps outbound calls with bounded exponential-backoff retry.
package retry

import (
	"context"
	"errors"
	"time"
)

const (
	// DefaultMaxRetries is the number of retries after the initial attempt.
	DefaultMaxRetries = 3
	// DefaultInitialDelay is the wait before the first retry; it doubles on
	// each subsequent retry.
	DefaultInitialDelay = 1 * time.Second
)

// Options configures a retrying call. The zero value uses the defaults.
type Options struct {
	MaxRetries   int
	InitialDelay time.Duration
}

func (o Options) withDefaults() Options {
	if o.MaxRetries <= 0 {
		o.MaxRetries = DefaultMaxRetries
	}
	if o.InitialDelay <= 0 {
		o.InitialDelay = DefaultInitialDelay
	}
	return o
}

// permanentError marks an error that must not be retried.
type permanentError struct {
	err error
}

func (e *permanentError) Error() string {
	return e.err.Error()
}

func (e *permanentError) Unwrap() error {
	return e.err
}

// Permanent marks err as fatal: Do stops retrying immediately and returns the
// original error unchanged. A nil err returns nil.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Do attempts op, retrying failed attempts with exponential backoff (base 2)
// until the retry budget is exhausted. The last error is returned unchanged
// so callers can inspect the original failure. Errors wrapped by Permanent
// stop the loop at once. The backoff sleep is context-aware: cancellation
// between attempts returns ctx.Err().
func Do[T any](ctx context.Context, opts Options, op func(ctx context.Context) (T, error)) (T, error) {
	opts = opts.withDefaults()

	var zero T
	var lastErr error
	delay := opts.InitialDelay

	for attempt := 0; attempt <= opts.MaxRetries; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, delay); err != nil {
				return zero, err
			}
			delay *= 2
		}

		result, err := op(ctx)
		if err == nil {
			return result, nil
		}

		var perm *permanentError
		if errors.As(err, &perm) {
			return zero, perm.err
		}

		lastErr = err
	}

	return zero, lastErr
}

// sleep waits for d without blocking unrelated work, honoring cancellation.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
