// Package ratelimit implements the token-bucket mechanism behind
// Binance's per-minute request weight budget: each endpoint consumes a
// published weight instead of counting as one request, so the bucket
// must be drained and refilled in weight units, not request units.
package ratelimit

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultMaxWeight is Binance's published per-minute weight budget
	// for most REST endpoints.
	DefaultMaxWeight = 1200
)

// LimiterStats snapshots a WeightedLimiter's state for introspection
// (surfaced to callers through the binance client's RateLimitStats).
type LimiterStats struct {
	CurrentWeight int           `json:"current_weight"`
	MaxWeight     int           `json:"max_weight"`
	Available     int           `json:"available"`
	WaitTime      time.Duration `json:"wait_time"`
}

// WeightedLimiter is a token bucket sized in weight units rather than
// request counts. currentWeight mirrors the exchange's own counter (fed
// back via UpdateWeight from a response header) for observability; the
// token bucket itself is what actually throttles Wait.
type WeightedLimiter struct {
	maxWeight     int64
	currentWeight atomic.Int64
	limiter       *rate.Limiter
	mu            sync.RWMutex
}

// NewWeightedLimiter builds a limiter that refills at maxWeight units
// per minute, falling back to DefaultMaxWeight for maxWeight <= 0.
func NewWeightedLimiter(maxWeight int) *WeightedLimiter {
	if maxWeight <= 0 {
		maxWeight = DefaultMaxWeight
	}

	wl := &WeightedLimiter{maxWeight: int64(maxWeight)}
	wl.limiter = rate.NewLimiter(rate.Limit(float64(maxWeight)/60.0), maxWeight)
	return wl
}

// Wait blocks until weight is available or ctx is cancelled.
func (wl *WeightedLimiter) Wait(ctx context.Context, weight int) error {
	if weight <= 0 {
		return nil
	}
	return wl.limiter.WaitN(ctx, weight)
}

// UpdateWeight records the exchange-reported weight usage, keeping
// CurrentWeight in sync with the server's own counter. The token
// bucket's throttling is unaffected; this is bookkeeping only.
func (wl *WeightedLimiter) UpdateWeight(weight int) {
	if weight >= 0 {
		wl.currentWeight.Store(int64(weight))
	}
}

// CurrentWeight returns the last weight reported via UpdateWeight.
func (wl *WeightedLimiter) CurrentWeight() int {
	return int(wl.currentWeight.Load())
}

// MaxWeight returns the configured per-minute weight budget.
func (wl *WeightedLimiter) MaxWeight() int {
	return int(wl.maxWeight)
}

// Stats reports the limiter's current state.
func (wl *WeightedLimiter) Stats() LimiterStats {
	current := wl.CurrentWeight()
	return LimiterStats{
		CurrentWeight: current,
		MaxWeight:     wl.MaxWeight(),
		Available:     wl.MaxWeight() - current,
		WaitTime:      wl.waitTime(1),
	}
}

// waitTime estimates how long Wait(weight) would currently block,
// without consuming the reservation.
func (wl *WeightedLimiter) waitTime(weight int) time.Duration {
	now := time.Now()
	r := wl.limiter.ReserveN(now, weight)
	if !r.OK() {
		return -1
	}
	delay := r.DelayFrom(now)
	r.CancelAt(now)
	return delay
}

// Reset clears the reported weight and rebuilds the token bucket, for
// use after a long idle period or a fresh session.
func (wl *WeightedLimiter) Reset() {
	wl.currentWeight.Store(0)
	wl.mu.Lock()
	wl.limiter = rate.NewLimiter(rate.Limit(float64(wl.maxWeight)/60.0), int(wl.maxWeight))
	wl.mu.Unlock()
}
