package retrystrategy

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "github.com/solheim-labs/exaction/pkg/errors"
)

func TestExecute_SucceedsOnFirstAttempt_NoDelay(t *testing.T) {
	s := New(Config{MaxRetries: 3, InitialDelay: time.Hour, Jitter: false})

	calls := 0
	err := s.Execute(context.Background(), func(ctx context.Context) error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestExecute_MaxRetriesOne_SingleAttemptNoSleep(t *testing.T) {
	s := New(Config{MaxRetries: 1, InitialDelay: time.Hour, Jitter: false})

	calls := 0
	start := time.Now()
	err := s.Execute(context.Background(), func(ctx context.Context) error {
		calls++
		return errors.New("boom")
	})
	elapsed := time.Since(start)

	require.Error(t, err)
	var limitErr *apierrors.RetryLimitExceededError
	require.ErrorAs(t, err, &limitErr)
	assert.Equal(t, 1, limitErr.Attempts)
	assert.Equal(t, 1, calls)
	assert.Less(t, elapsed, 100*time.Millisecond)
}

func TestExecute_NonRetryableError_ReturnsImmediately(t *testing.T) {
	s := New(Config{
		MaxRetries:   5,
		InitialDelay: time.Hour,
		Retryable:    func(err error) bool { return false },
	})

	calls := 0
	sentinel := errors.New("fatal")
	err := s.Execute(context.Background(), func(ctx context.Context) error {
		calls++
		return sentinel
	})

	assert.Equal(t, sentinel, err)
	assert.Equal(t, 1, calls)
}

func TestExecute_RetriesUntilSuccess(t *testing.T) {
	s := New(Config{MaxRetries: 5, InitialDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond})

	calls := 0
	err := s.Execute(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestExecute_ContextCancelled_ReturnsContextError(t *testing.T) {
	s := New(Config{MaxRetries: 5, InitialDelay: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := s.Execute(ctx, func(ctx context.Context) error {
		calls++
		return errors.New("transient")
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestDefaultConfig_FillsZeroFields(t *testing.T) {
	s := New(Config{})
	assert.Equal(t, DefaultConfig().MaxRetries, s.cfg.MaxRetries)
	assert.Equal(t, DefaultConfig().InitialDelay, s.cfg.InitialDelay)
	assert.Equal(t, DefaultConfig().MaxDelay, s.cfg.MaxDelay)
	assert.Equal(t, DefaultConfig().BackoffFactor, s.cfg.BackoffFactor)
}
