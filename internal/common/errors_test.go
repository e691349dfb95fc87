package common

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationErrorCollectsAllFields(t *testing.T) {
	err := NewValidationError("title is required", "amount must be positive")
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Len(t, vErr.Fields, 2)
	assert.Contains(t, err.Error(), "title is required")
	assert.Contains(t, err.Error(), "amount must be positive")
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(ErrRateLimit))
	assert.True(t, IsRetryable(&NetworkError{Err: errors.New("connection refused")}))

	assert.False(t, IsRetryable(nil))
	assert.False(t, IsRetryable(ErrNotFound))
	assert.False(t, IsRetryable(NewValidationError("bad input")))
	assert.False(t, IsRetryable(&PermissionError{Msg: "only finance users can approve"}))
	assert.False(t, IsRetryable(&StateError{Msg: "proposal already decided"}))
}

func TestWithRetryStopsOnNonRetryable(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), func() error {
		calls++
		return NewValidationError("bad input")
	}, RetryOptions{MaxAttempts: 5, InitialDelay: time.Millisecond})

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, 1, calls, "non-retryable failures must not be retried")
}

func TestWithRetryEventuallySucceeds(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), func() error {
		calls++
		if calls < 3 {
			return &NetworkError{Err: errors.New("i/o timeout")}
		}
		return nil
	}, RetryOptions{MaxAttempts: 5, InitialDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestWithRetryExhaustsAttempts(t *testing.T) {
	err := WithRetry(context.Background(), func() error {
		return &NetworkError{Err: errors.New("i/o timeout")}
	}, RetryOptions{MaxAttempts: 2, InitialDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond})

	assert.True(t, errors.Is(err, ErrMaxRetries))

	// The final failure stays inspectable through the wrapper.
	var nErr *NetworkError
	assert.ErrorAs(t, err, &nErr)
}
