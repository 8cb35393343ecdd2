package sync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "github.com/solheim-labs/exaction/pkg/errors"
)

func fixedTimeProvider(serverMillis int64) TimeProvider {
	return func(_ context.Context) (int64, error) {
		return serverMillis, nil
	}
}

func TestNewClockSync_ZeroMaxOffsetFallsBackToDefault(t *testing.T) {
	cs := NewClockSync("binance", fixedTimeProvider(0), 0)
	assert.Equal(t, 500*time.Millisecond, cs.maxOffset)
}

func TestSync_WithinTolerance_NoError(t *testing.T) {
	cs := NewClockSync("binance", fixedTimeProvider(time.Now().UnixMilli()), time.Second)
	require.NoError(t, cs.Sync(context.Background()))
	assert.True(t, cs.IsSynchronized())
}

func TestSync_DriftBeyondMaxOffset_ReturnsClockSyncError(t *testing.T) {
	driftedServerTime := time.Now().Add(10 * time.Second).UnixMilli()
	cs := NewClockSync("binance", fixedTimeProvider(driftedServerTime), 500*time.Millisecond)

	err := cs.Sync(context.Background())
	var syncErr *apierrors.ClockSyncError
	require.ErrorAs(t, err, &syncErr)
	assert.Equal(t, "binance", syncErr.Exchange)
}

func TestSync_TimeProviderError_ReturnsConnectionError(t *testing.T) {
	wantErr := errors.New("dial timeout")
	cs := NewClockSync("binance", func(context.Context) (int64, error) {
		return 0, wantErr
	}, 0)

	err := cs.Sync(context.Background())
	var connErr *apierrors.ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, "binance", connErr.Exchange)
}

func TestSync_NilTimeProvider_ReturnsValidationError(t *testing.T) {
	cs := NewClockSync("binance", nil, 0)
	err := cs.Sync(context.Background())
	assert.Error(t, err)
	var valErr *apierrors.ValidationError
	assert.ErrorAs(t, err, &valErr)
}

func TestValidateOffset_NoPriorSync_WithinTolerance(t *testing.T) {
	cs := NewClockSync("binance", fixedTimeProvider(0), 0)
	assert.NoError(t, cs.ValidateOffset())
}

func TestValidateOffset_AfterDriftedSync_ReturnsError(t *testing.T) {
	driftedServerTime := time.Now().Add(10 * time.Second).UnixMilli()
	cs := NewClockSync("binance", fixedTimeProvider(driftedServerTime), 500*time.Millisecond)
	_ = cs.Sync(context.Background())

	assert.Error(t, cs.ValidateOffset())
}

func TestIsSynchronized_FalseBeforeFirstSync(t *testing.T) {
	cs := NewClockSync("binance", fixedTimeProvider(0), 0)
	assert.False(t, cs.IsSynchronized())
}
