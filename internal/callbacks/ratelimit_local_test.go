package callbacks

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "github.com/solheim-labs/exaction/pkg/errors"
)

func newTestLocalLimiter(maxSafeCount int64) *LocalLimiter {
	return NewLocalLimiter(LocalLimiterConfig{
		Patterns:     []Pattern{LiteralPattern("/v1/me/sendchildorder")},
		MaxSafeCount: maxSafeCount,
		Label:        "bitflyer_send_child_order",
	})
}

func TestLocalLimiter_AllowsUpToMaxSafeCount(t *testing.T) {
	limiter := newTestLocalLimiter(5)
	url := "https://api.bitflyer.com/v1/me/sendchildorder"

	for i := 0; i < 5; i++ {
		require.NoError(t, limiter.BeforeRequest(context.Background(), url, nil, ""))
		require.NoError(t, limiter.AfterRequest(context.Background(), HTTPResponseData{URL: url, HTTPStatusCode: 200}))
	}

	err := limiter.BeforeRequest(context.Background(), url, nil, "")
	require.Error(t, err)

	var rateErr *apierrors.RateLimitApproachingError
	require.ErrorAs(t, err, &rateErr)
	assert.Equal(t, int64(5), rateErr.Count)
	assert.Equal(t, int64(5), rateErr.Max)
	assert.Contains(t, err.Error(), "5/5")
}

func TestLocalLimiter_NonMatchingURL_NeverLimited(t *testing.T) {
	limiter := newTestLocalLimiter(1)
	url := "https://api.bitflyer.com/v1/ticker"

	for i := 0; i < 10; i++ {
		require.NoError(t, limiter.BeforeRequest(context.Background(), url, nil, ""))
		require.NoError(t, limiter.AfterRequest(context.Background(), HTTPResponseData{URL: url, HTTPStatusCode: 200}))
	}
}

func TestLocalLimiter_DerivesLabelFromPatternsWhenUnset(t *testing.T) {
	limiter := NewLocalLimiter(LocalLimiterConfig{
		Patterns:     []Pattern{LiteralPattern("/v1/me/sendchildorder")},
		MaxSafeCount: 1,
	})
	assert.Contains(t, limiter.Label(), "PATTERN_")
}

func TestLocalLimiter_BeforeRequestDoesNotIncrement(t *testing.T) {
	limiter := newTestLocalLimiter(1)
	url := "https://api.bitflyer.com/v1/me/sendchildorder"

	for i := 0; i < 10; i++ {
		require.NoError(t, limiter.BeforeRequest(context.Background(), url, nil, ""))
	}
}
