// Command rateinspect scans a Redis instance backing a RedisLimiter for
// live rate-limit counter windows and reports any at or above a given
// threshold. Operational tooling, not part of the request-execution
// pipeline (spec.md §4.8 names it as "used by operational tooling to
// enumerate live windows").
package main

import (
	"context"
	"flag"
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/solheim-labs/exaction/internal/callbacks"
	"github.com/solheim-labs/exaction/rateinspect"
)

func main() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	addr := flag.String("addr", "localhost:6379", "redis address")
	prefix := flag.String("prefix", callbacks.DefaultKeyPrefix, "rate-limit key prefix")
	label := flag.String("label", "", "restrict to one label (default: all)")
	maxSafeCount := flag.Int64("max-safe-count", 0, "report only windows at or above this count (0 reports all)")
	flag.Parse()

	client := redis.NewClient(&redis.Options{Addr: *addr})
	defer client.Close()

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatal().Err(err).Str("addr", *addr).Msg("redis unreachable")
	}

	pattern := callbacks.BuildSearchPattern(*prefix, *label, nil)
	statuses, err := rateinspect.Scan(ctx, client, pattern)
	if err != nil {
		log.Fatal().Err(err).Str("pattern", pattern).Msg("scan failed")
	}

	if *maxSafeCount > 0 {
		statuses = rateinspect.OverLimit(statuses, *maxSafeCount)
	}

	if len(statuses) == 0 {
		log.Info().Str("pattern", pattern).Msg("no matching windows")
		return
	}

	for _, s := range statuses {
		log.Info().Str("label", s.Label).Int64("window", s.Window).Int64("count", s.Count).Msg("window")
	}
}
