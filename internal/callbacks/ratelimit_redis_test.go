package callbacks

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "github.com/solheim-labs/exaction/pkg/errors"
)

// TestNewRedisLimiter_PingFailureSurfacesConnectionError exercises the
// construction-time health check against an address nothing listens on,
// so it fails deterministically without a live Redis server.
func TestNewRedisLimiter_PingFailureSurfacesConnectionError(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
	})
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := NewRedisLimiter(ctx, client, RedisLimiterConfig{
		Patterns:     []Pattern{LiteralPattern("/v1/me/sendchildorder")},
		MaxSafeCount: 5,
	})
	require.Error(t, err)

	var connErr *apierrors.ConnectionError
	require.ErrorAs(t, err, &connErr)
}

func TestParseCount_ValidAndInvalid(t *testing.T) {
	n, err := parseCount("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)

	_, err = parseCount("not-a-number")
	assert.Error(t, err)
}
