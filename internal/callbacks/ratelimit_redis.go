package callbacks

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/solheim-labs/exaction/internal/secretheaders"
	"github.com/solheim-labs/exaction/pkg/errors"
)

// RedisLimiterConfig configures a Redis-backed shared rate limiter. The
// Redis client is externally owned (per §5's resource policy): the
// limiter never closes it.
type RedisLimiterConfig struct {
	Patterns      []Pattern
	WindowSeconds int
	MaxSafeCount  int64
	Label         string
	KeyPrefix     string
}

// RedisLimiter is the distributed counterpart to LocalLimiter: the same
// URL-matching and admission contract, but counter storage and the
// atomic increment are against a shared Redis server, giving the only
// cross-process coordination point the library has (§5).
type RedisLimiter struct {
	cfg    RedisLimiterConfig
	label  string
	client redis.UniversalClient
}

// NewRedisLimiter creates a RedisLimiter bound to client, performing a
// PING health check per §4.8 ("creation is async and performs a PING
// health check"). Initialization does not retry unless client itself was
// configured to retry.
func NewRedisLimiter(ctx context.Context, client redis.UniversalClient, cfg RedisLimiterConfig) (*RedisLimiter, error) {
	if cfg.WindowSeconds <= 0 {
		cfg.WindowSeconds = DefaultWindowSeconds
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = DefaultKeyPrefix
	}

	label := cfg.Label
	if label == "" {
		strs := make([]string, len(cfg.Patterns))
		for i, p := range cfg.Patterns {
			strs[i] = p.String()
		}
		label = DeriveLabel(strs)
	}

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, errors.NewConnectionError("redis", "", "health check failed: "+err.Error(), true)
	}

	return &RedisLimiter{cfg: cfg, label: label, client: client}, nil
}

func (l *RedisLimiter) matchesAny(fullURL string) bool {
	path := fullURL
	if idx := strings.Index(fullURL, "?"); idx >= 0 {
		path = fullURL[:idx]
	}
	for _, p := range l.cfg.Patterns {
		if p.matches(fullURL, path) {
			return true
		}
	}
	return false
}

func (l *RedisLimiter) key(now time.Time) string {
	return BuildKey(l.cfg.KeyPrefix, l.label, l.cfg.WindowSeconds, now.Unix())
}

// BeforeRequest implements Callback. Reads the current window's counter
// and raises RateLimitApproachingError if it already meets MaxSafeCount.
func (l *RedisLimiter) BeforeRequest(ctx context.Context, url string, _ *secretheaders.Headers, _ string) error {
	if !l.matchesAny(url) {
		return nil
	}

	key := l.key(time.Now())
	countStr, err := l.client.Get(ctx, key).Result()
	if err != nil && err != redis.Nil {
		return errors.NewConnectionError("redis", "", "rate limit read failed: "+err.Error(), true)
	}

	var count int64
	if err != redis.Nil {
		if parsed, convErr := parseCount(countStr); convErr == nil {
			count = parsed
		}
	}

	if count >= l.cfg.MaxSafeCount {
		return errors.NewRateLimitApproachingError(l.label, count, l.cfg.MaxSafeCount, l.cfg.WindowSeconds)
	}
	return nil
}

// AfterRequest implements Callback. Bumps the current window's counter
// via a pipelined INCR+EXPIRE NX so both commands travel in one network
// round-trip, keeping the window boundary tight under concurrency. The
// NX flag means the TTL is set once per window and never extended on
// subsequent writes (§9 Open Questions resolution).
func (l *RedisLimiter) AfterRequest(ctx context.Context, resp HTTPResponseData) error {
	if !l.matchesAny(resp.URL) {
		return nil
	}

	key := l.key(time.Now())
	ttl := time.Duration(l.cfg.WindowSeconds) * time.Second

	pipe := l.client.Pipeline()
	pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.NewConnectionError("redis", "", "rate limit increment failed: "+err.Error(), true)
	}
	return nil
}

func parseCount(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}
