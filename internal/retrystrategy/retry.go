// Package retrystrategy implements exponential backoff with optional
// jitter over a caller-configured set of retryable errors, the same
// shape the teacher's WebSocket reconnect logic uses for its backoff
// schedule, generalized from reconnect delays to arbitrary call retries.
package retrystrategy

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	mathrand "math/rand"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/solheim-labs/exaction/pkg/errors"
)

// Config configures a Strategy.
type Config struct {
	// MaxRetries is the total number of attempts, not the number of
	// retries after the first: MaxRetries=3 means "attempt up to 3
	// times", i.e. at most 2 sleeps before failing.
	MaxRetries int

	// InitialDelay is the delay before the first retry.
	InitialDelay time.Duration

	// MaxDelay caps the computed delay for any attempt.
	MaxDelay time.Duration

	// BackoffFactor multiplies the delay on each successive attempt.
	BackoffFactor float64

	// Jitter, if true, replaces delay_n with a uniformly random value in
	// [0, delay_n] instead of using it directly.
	Jitter bool

	// Retryable reports whether err should trigger a retry. A nil
	// Retryable treats every non-nil error as retryable.
	Retryable func(err error) bool
}

// DefaultConfig returns a conservative default retry configuration.
func DefaultConfig() Config {
	return Config{
		MaxRetries:    3,
		InitialDelay:  500 * time.Millisecond,
		MaxDelay:      30 * time.Second,
		BackoffFactor: 2.0,
		Jitter:        true,
	}
}

// Strategy executes a function under exponential backoff with optional
// jitter, surfacing errors.RetryLimitExceededError once the attempt
// budget is exhausted.
type Strategy struct {
	cfg  Config
	rand *mathrand.Rand
}

// New creates a Strategy, seeding its jitter source from crypto/rand once
// so concurrent Strategy instances (and separate processes) don't land
// on lockstep retry delays.
func New(cfg Config) *Strategy {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultConfig().MaxRetries
	}
	if cfg.InitialDelay <= 0 {
		cfg.InitialDelay = DefaultConfig().InitialDelay
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = DefaultConfig().MaxDelay
	}
	if cfg.BackoffFactor <= 0 {
		cfg.BackoffFactor = DefaultConfig().BackoffFactor
	}

	var seedBytes [8]byte
	_, _ = rand.Read(seedBytes[:])
	seed := int64(binary.LittleEndian.Uint64(seedBytes[:]))

	return &Strategy{
		cfg:  cfg,
		rand: mathrand.New(mathrand.NewSource(seed)),
	}
}

// delay returns the sleep duration before attempt n (1-indexed: the delay
// before the 2nd attempt is delay(1)).
func (s *Strategy) delay(n int) time.Duration {
	factor := 1.0
	for i := 0; i < n-1; i++ {
		factor *= s.cfg.BackoffFactor
	}
	d := time.Duration(float64(s.cfg.InitialDelay) * factor)
	if d > s.cfg.MaxDelay {
		d = s.cfg.MaxDelay
	}
	if !s.cfg.Jitter {
		return d
	}
	if d <= 0 {
		return 0
	}
	return time.Duration(s.rand.Float64() * float64(d))
}

// Execute calls fn, retrying under the configured backoff schedule when
// fn returns a retryable error. After the final attempt still fails, it
// returns an *errors.RetryLimitExceededError wrapping the last error.
// Non-retryable errors propagate immediately on first occurrence.
func (s *Strategy) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	var lastErr error

	for attempt := 1; attempt <= s.cfg.MaxRetries; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}

		if !s.isRetryable(lastErr) {
			return lastErr
		}

		if attempt == s.cfg.MaxRetries {
			break
		}

		d := s.delay(attempt)
		log.Debug().
			Int("attempt", attempt).
			Dur("delay", d).
			Err(lastErr).
			Msg("retrying after backoff")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(d):
		}
	}

	return errors.NewRetryLimitExceededError(s.cfg.MaxRetries, lastErr)
}

func (s *Strategy) isRetryable(err error) bool {
	if s.cfg.Retryable == nil {
		return true
	}
	return s.cfg.Retryable(err)
}
