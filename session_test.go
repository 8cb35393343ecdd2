package exaction

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "github.com/solheim-labs/exaction/pkg/errors"
)

type fakeAPI struct {
	apiKey string
}

func newTestSession(t *testing.T) *Session[*fakeAPI] {
	t.Helper()
	sess, err := NewSession[*fakeAPI]("testexchange", DefaultSessionConfig(), nil, nil, "key", "secret",
		func(sender Sender, apiKey, apiSecret string) *fakeAPI {
			return &fakeAPI{apiKey: apiKey}
		})
	require.NoError(t, err)
	return sess
}

func TestSession_APIReturnsTypedClientBeforeClose(t *testing.T) {
	sess := newTestSession(t)
	defer sess.Close(context.Background())

	api, err := sess.API()
	require.NoError(t, err)
	assert.Equal(t, "key", api.apiKey)
}

func TestSession_ClosedSession_APIRaisesSessionClosedError(t *testing.T) {
	sess := newTestSession(t)
	require.NoError(t, sess.Close(context.Background()))

	_, err := sess.API()
	require.Error(t, err)

	var closedErr *apierrors.SessionClosedError
	assert.ErrorAs(t, err, &closedErr)
}

func TestSession_ClosedSession_SendRaisesSessionClosedError(t *testing.T) {
	sess := newTestSession(t)
	require.NoError(t, sess.Close(context.Background()))

	req := NewBuilder().Get("https://example.com", "", "/ping", nil, nil)
	_, err := sess.Send(context.Background(), req)
	require.Error(t, err)

	var closedErr *apierrors.SessionClosedError
	assert.ErrorAs(t, err, &closedErr)
}

func TestSession_CloseIsIdempotent(t *testing.T) {
	sess := newTestSession(t)
	assert.NoError(t, sess.Close(context.Background()))
	assert.NoError(t, sess.Close(context.Background()))
}

func TestSession_ConfigReturnsWhatWasPassedIn(t *testing.T) {
	sess := newTestSession(t)
	defer sess.Close(context.Background())

	assert.Equal(t, DefaultSessionConfig().UserAgent, sess.Config().UserAgent)
}

func TestNewSession_ClockSyncWithinTolerance_Succeeds(t *testing.T) {
	cfg := NewConfigBuilder().
		ClockSync(func(ctx context.Context) (int64, error) { return time.Now().UnixMilli(), nil }, time.Second).
		Build()

	sess, err := NewSession[*fakeAPI]("testexchange", cfg, nil, nil, "key", "secret",
		func(sender Sender, apiKey, apiSecret string) *fakeAPI { return &fakeAPI{apiKey: apiKey} })
	require.NoError(t, err)
	defer sess.Close(context.Background())

	assert.NotNil(t, sess.clock)
}

func TestNewSession_ClockSyncDriftBeyondOffset_FailsAtConstruction(t *testing.T) {
	driftedServerTime := time.Now().Add(time.Hour).UnixMilli()
	cfg := NewConfigBuilder().
		ClockSync(func(ctx context.Context) (int64, error) { return driftedServerTime, nil }, time.Second).
		Build()

	_, err := NewSession[*fakeAPI]("testexchange", cfg, nil, nil, "key", "secret",
		func(sender Sender, apiKey, apiSecret string) *fakeAPI { return &fakeAPI{apiKey: apiKey} })

	var syncErr *apierrors.ClockSyncError
	require.ErrorAs(t, err, &syncErr)
}

func TestNewSession_CircuitBreakerEnabled_BuildsBreaker(t *testing.T) {
	cfg := NewConfigBuilder().CircuitBreaker(5, 3, 30*time.Second).Build()

	sess, err := NewSession[*fakeAPI]("testexchange", cfg, nil, nil, "key", "secret",
		func(sender Sender, apiKey, apiSecret string) *fakeAPI { return &fakeAPI{apiKey: apiKey} })
	require.NoError(t, err)
	defer sess.Close(context.Background())

	assert.NotNil(t, sess.breaker)
}
