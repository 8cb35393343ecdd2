// Package rateinspect is the operational counterpart to
// internal/callbacks' Redis-backed rate limiter: it scans live counter
// keys and reports each window's current count against its configured
// limit, for on-call visibility into what a RedisLimiter is actually
// admitting. Grounded on original_source's rate_limit_inspector.py CLI,
// named explicitly in spec.md §4.8 as operational tooling rather than
// part of the request-execution pipeline itself.
package rateinspect

import (
	"context"
	"sort"

	"github.com/redis/go-redis/v9"

	"github.com/solheim-labs/exaction/internal/callbacks"
)

// WindowStatus is one live counter window's current state.
type WindowStatus struct {
	Key    string
	Label  string
	Window int64
	Count  int64
}

// Scan enumerates every key matching pattern (built via
// callbacks.BuildSearchPattern) and reports its current count, skipping
// keys that don't parse as a rate-limit key (defensively tolerant of a
// shared Redis instance carrying unrelated keys under a similar prefix).
func Scan(ctx context.Context, client redis.UniversalClient, pattern string) ([]WindowStatus, error) {
	var statuses []WindowStatus

	iter := client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		parsed, ok := callbacks.ParseKey(key)
		if !ok {
			continue
		}

		count, err := client.Get(ctx, key).Int64()
		if err != nil && err != redis.Nil {
			return nil, err
		}

		statuses = append(statuses, WindowStatus{Key: key, Label: parsed.Label, Window: parsed.Window, Count: count})
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}

	sort.Slice(statuses, func(i, j int) bool {
		if statuses[i].Label != statuses[j].Label {
			return statuses[i].Label < statuses[j].Label
		}
		return statuses[i].Window < statuses[j].Window
	})
	return statuses, nil
}

// OverLimit filters statuses to those at or above maxSafeCount, the same
// admission threshold RedisLimiter.BeforeRequest checks.
func OverLimit(statuses []WindowStatus, maxSafeCount int64) []WindowStatus {
	var over []WindowStatus
	for _, s := range statuses {
		if s.Count >= maxSafeCount {
			over = append(over, s)
		}
	}
	return over
}
