// Package circuit wraps sony/gobreaker into the per-exchange breaker a
// Session optionally places around its retry-wrapped HTTP call, so a
// run of consecutive failures against one exchange stops generating
// load against it instead of retrying into an outage.
package circuit

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"

	"github.com/solheim-labs/exaction/pkg/errors"
)

// State mirrors gobreaker's three states without leaking the dependency
// into callers.
type State int

const (
	StateClosed State = iota
	StateHalfOpen
	StateOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateHalfOpen:
		return "half-open"
	case StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// Config controls when a Breaker trips and how long it stays open.
type Config struct {
	MaxFailures      int // consecutive failures before opening
	SuccessThreshold int // successes required in half-open before closing
	OpenTimeout      time.Duration
}

// DefaultConfig returns Binance's own documented guidance of tripping
// after 5 consecutive failures and probing again after 30s.
func DefaultConfig() Config {
	return Config{MaxFailures: 5, SuccessThreshold: 3, OpenTimeout: 30 * time.Second}
}

// Breaker is a named circuit breaker for one exchange's requests.
type Breaker struct {
	exchange string
	breaker  *gobreaker.CircuitBreaker
	cfg      Config

	mu              sync.RWMutex
	totalRequests   int64
	totalFailures   int64
	totalSuccesses  int64
	lastFailure     time.Time
	lastStateChange time.Time
}

// NewBreaker builds a Breaker for exchange, filling zero-valued Config
// fields from DefaultConfig.
func NewBreaker(exchange string, cfg Config) *Breaker {
	def := DefaultConfig()
	if cfg.MaxFailures == 0 {
		cfg.MaxFailures = def.MaxFailures
	}
	if cfg.SuccessThreshold == 0 {
		cfg.SuccessThreshold = def.SuccessThreshold
	}
	if cfg.OpenTimeout == 0 {
		cfg.OpenTimeout = def.OpenTimeout
	}

	b := &Breaker{exchange: exchange, cfg: cfg, lastStateChange: time.Now()}
	b.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        exchange + "-breaker",
		MaxRequests: uint32(cfg.SuccessThreshold),
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(cfg.MaxFailures)
		},
		OnStateChange: func(_ string, from, to gobreaker.State) {
			b.mu.Lock()
			b.lastStateChange = time.Now()
			b.mu.Unlock()
			log.Info().Str("exchange", exchange).Str("from", from.String()).Str("to", to.String()).
				Msg("circuit breaker state changed")
		},
	})
	return b
}

// Execute runs fn through the breaker. If the breaker is open or
// half-open and already at its request cap, fn does not run and
// errors.CircuitBreakerError is returned instead.
func (b *Breaker) Execute(fn func() error) error {
	_, err := b.breaker.Execute(func() (any, error) {
		return nil, fn()
	})
	if err == nil {
		b.recordSuccess()
		return nil
	}
	if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
		return errors.NewCircuitBreakerError(b.exchange, b.State().String(), err.Error(), 0, b.timeToHalfOpen())
	}
	b.recordFailure()
	return err
}

// State returns the breaker's current state.
func (b *Breaker) State() State {
	switch b.breaker.State() {
	case gobreaker.StateHalfOpen:
		return StateHalfOpen
	case gobreaker.StateOpen:
		return StateOpen
	default:
		return StateClosed
	}
}

func (b *Breaker) timeToHalfOpen() time.Duration {
	if b.breaker.State() != gobreaker.StateOpen {
		return 0
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	remaining := b.cfg.OpenTimeout - time.Since(b.lastStateChange)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Stats reports cumulative request counts for introspection.
type Stats struct {
	Exchange       string    `json:"exchange"`
	State          string    `json:"state"`
	TotalRequests  int64     `json:"total_requests"`
	TotalFailures  int64     `json:"total_failures"`
	TotalSuccesses int64     `json:"total_successes"`
	LastFailure    time.Time `json:"last_failure"`
}

func (b *Breaker) Stats() Stats {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return Stats{
		Exchange:       b.exchange,
		State:          b.State().String(),
		TotalRequests:  b.totalRequests,
		TotalFailures:  b.totalFailures,
		TotalSuccesses: b.totalSuccesses,
		LastFailure:    b.lastFailure,
	}
}

func (b *Breaker) recordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.totalRequests++
	b.totalSuccesses++
}

func (b *Breaker) recordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.totalRequests++
	b.totalFailures++
	b.lastFailure = time.Now()
}
