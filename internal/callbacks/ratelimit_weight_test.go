package callbacks

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solheim-labs/exaction/internal/ratelimit"
	apierrors "github.com/solheim-labs/exaction/pkg/errors"
)

func newTestWeightLimiter() *WeightLimiter {
	limiter := ratelimit.NewWeightedLimiter(1200)
	rules := []WeightRule{{Path: "/api/v3/account", Weight: 10}}
	return NewWeightLimiter("binance", limiter, 1, rules, "X-Mbx-Used-Weight-1m")
}

func TestWeightLimiter_BeforeRequest_MatchesRuleByPath(t *testing.T) {
	wl := newTestWeightLimiter()
	require.NoError(t, wl.BeforeRequest(context.Background(), "https://api.binance.com/api/v3/account", nil, ""))
}

func TestWeightLimiter_BeforeRequest_FallsBackToDefaultWeight(t *testing.T) {
	wl := newTestWeightLimiter()
	require.NoError(t, wl.BeforeRequest(context.Background(), "https://api.binance.com/api/v3/ticker/24hr", nil, ""))
}

func TestWeightLimiter_AfterRequest_UpdatesLimiterFromHeader(t *testing.T) {
	wl := newTestWeightLimiter()
	resp := HTTPResponseData{HTTPStatusCode: 200, Headers: map[string][]string{"X-Mbx-Used-Weight-1m": {"42"}}}
	require.NoError(t, wl.AfterRequest(context.Background(), resp))
	assert.Equal(t, 42, wl.Limiter().CurrentWeight())
}

func TestWeightLimiter_AfterRequest_429ReturnsRateLimitError(t *testing.T) {
	wl := newTestWeightLimiter()
	resp := HTTPResponseData{HTTPStatusCode: 429, Headers: map[string][]string{"Retry-After": {"5"}}}
	err := wl.AfterRequest(context.Background(), resp)

	var rateErr *apierrors.RateLimitError
	require.ErrorAs(t, err, &rateErr)
	assert.Equal(t, "binance", rateErr.Exchange)
	assert.False(t, rateErr.IsBan)
}

func TestWeightLimiter_AfterRequest_418ReturnsIPBanError(t *testing.T) {
	wl := newTestWeightLimiter()
	resp := HTTPResponseData{HTTPStatusCode: 418, Headers: map[string][]string{"Retry-After": {"120"}}}
	err := wl.AfterRequest(context.Background(), resp)

	var banErr *apierrors.IPBanError
	require.ErrorAs(t, err, &banErr)
	assert.Equal(t, "binance", banErr.Exchange)
}
