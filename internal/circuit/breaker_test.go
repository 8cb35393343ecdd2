package circuit

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "github.com/solheim-labs/exaction/pkg/errors"
)

func TestNewBreaker_ZeroConfigFallsBackToDefaults(t *testing.T) {
	b := NewBreaker("binance", Config{})
	assert.Equal(t, StateClosed, b.State())
	assert.Equal(t, "binance", b.Stats().Exchange)
}

func TestExecute_SuccessRecordsSuccess(t *testing.T) {
	b := NewBreaker("binance", DefaultConfig())
	require.NoError(t, b.Execute(func() error { return nil }))

	stats := b.Stats()
	assert.Equal(t, int64(1), stats.TotalRequests)
	assert.Equal(t, int64(1), stats.TotalSuccesses)
	assert.Equal(t, int64(0), stats.TotalFailures)
}

func TestExecute_FailurePassesThroughUnderlyingError(t *testing.T) {
	b := NewBreaker("binance", DefaultConfig())
	wantErr := errors.New("connection reset")

	err := b.Execute(func() error { return wantErr })
	require.ErrorIs(t, err, wantErr)
	assert.Equal(t, int64(1), b.Stats().TotalFailures)
}

func TestExecute_TripsOpenAfterMaxFailures(t *testing.T) {
	b := NewBreaker("binance", Config{MaxFailures: 3, SuccessThreshold: 1, OpenTimeout: time.Minute})
	wantErr := errors.New("boom")

	for i := 0; i < 3; i++ {
		_ = b.Execute(func() error { return wantErr })
	}
	assert.Equal(t, StateOpen, b.State())

	err := b.Execute(func() error { return nil })
	var breakerErr *apierrors.CircuitBreakerError
	require.ErrorAs(t, err, &breakerErr)
	assert.Equal(t, "binance", breakerErr.Exchange)
	assert.Equal(t, "open", breakerErr.State)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "closed", StateClosed.String())
	assert.Equal(t, "half-open", StateHalfOpen.String())
	assert.Equal(t, "open", StateOpen.String())
	assert.Equal(t, "unknown", State(99).String())
}
