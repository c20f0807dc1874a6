package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOptions() Options {
	return Options{MaxRetries: 3, InitialDelay: time.Millisecond}
}

func TestDoSucceedsFirstAttempt(t *testing.T) {
	attempts := 0
	result, err := Do(context.Background(), testOptions(), func(ctx context.Context) (string, error) {
		attempts++
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 1, attempts)
}

func TestDoRetriesTransientFailures(t *testing.T) {
	attempts := 0
	result, err := Do(context.Background(), testOptions(), func(ctx context.Context) (int, error) {
		attempts++
		if attempts < 2 {
			return 0, errors.New("transient")
		}
		return 42, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 42, result)
	assert.Equal(t, 2, attempts)
}

func TestDoExhaustsRetryBudget(t *testing.T) {
	lastErr := errors.New("still broken")
	attempts := 0
	_, err := Do(context.Background(), testOptions(), func(ctx context.Context) (int, error) {
		attempts++
		return 0, lastErr
	})

	// Initial attempt plus three retries
	assert.Equal(t, 4, attempts)
	// The last error comes back unchanged so callers can inspect it
	assert.Same(t, lastErr, err)
}

func TestDoStopsOnPermanentError(t *testing.T) {
	fatal := errors.New("credential rejected")
	attempts := 0
	_, err := Do(context.Background(), testOptions(), func(ctx context.Context) (int, error) {
		attempts++
		return 0, Permanent(fatal)
	})

	assert.Equal(t, 1, attempts)
	// Permanent unwraps back to the original error
	assert.Same(t, fatal, err)
}

func TestDoHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	attempts := 0
	_, err := Do(ctx, Options{MaxRetries: 3, InitialDelay: time.Second}, func(ctx context.Context) (int, error) {
		attempts++
		cancel()
		return 0, errors.New("transient")
	})

	assert.Equal(t, 1, attempts)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPermanentNil(t *testing.T) {
	assert.NoError(t, Permanent(nil))
}
