// Package sync provides nonce generation for request signing and a
// clock-drift check against each exchange's own server clock.
package sync

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/solheim-labs/exaction/pkg/errors"
)

// TimeProvider returns an exchange's server time in Unix milliseconds —
// satisfied by each exchange client's own ServerTime method.
type TimeProvider func(ctx context.Context) (int64, error)

// ClockSync tracks the offset between the local clock and an exchange's
// server clock. Exchanges that sign requests with a timestamp (every
// scheme in this module) reject a request whose timestamp has drifted
// too far from their own clock, so a session can run this check before
// a signed call rather than let the exchange reject it.
type ClockSync struct {
	exchange string

	offset   atomic.Int64 // server time - local time, in milliseconds
	lastSync atomic.Int64 // Unix milliseconds of the last successful Sync

	maxOffset    time.Duration
	timeProvider TimeProvider
}

// NewClockSync builds a ClockSync for exchange. maxOffset falls back to
// 500ms (Binance's own documented tolerance) when zero.
func NewClockSync(exchange string, timeProvider TimeProvider, maxOffset time.Duration) *ClockSync {
	if maxOffset == 0 {
		maxOffset = 500 * time.Millisecond
	}
	return &ClockSync{exchange: exchange, timeProvider: timeProvider, maxOffset: maxOffset}
}

// Sync fetches the server's current time, records the offset from the
// local clock (assuming the server's response was generated at the
// midpoint of the round trip), and returns ClockSyncError if the
// resulting drift exceeds maxOffset.
func (cs *ClockSync) Sync(ctx context.Context) error {
	if cs.timeProvider == nil {
		return errors.NewValidationError("timeProvider", nil, "must not be nil")
	}

	localStart := time.Now().UnixMilli()
	serverTime, err := cs.timeProvider(ctx)
	if err != nil {
		return errors.NewConnectionError(cs.exchange, "clock", "sync failed: "+err.Error(), true)
	}
	localEnd := time.Now().UnixMilli()
	localMid := (localStart + localEnd) / 2
	offset := serverTime - localMid

	cs.offset.Store(offset)
	cs.lastSync.Store(time.Now().UnixMilli())

	log.Debug().Str("exchange", cs.exchange).Int64("offset_ms", offset).Msg("clock synchronized")

	if abs(offset) > cs.maxOffset.Milliseconds() {
		return errors.NewClockSyncError(cs.exchange, time.UnixMilli(localMid), time.UnixMilli(serverTime), time.Duration(abs(offset))*time.Millisecond)
	}
	return nil
}

// ValidateOffset checks the most recently recorded offset without
// contacting the server again; callers that want a fresh reading use
// Sync instead.
func (cs *ClockSync) ValidateOffset() error {
	offset := abs(cs.offset.Load())
	if offset > cs.maxOffset.Milliseconds() {
		return errors.NewClockSyncError(cs.exchange, time.Now(), cs.Now(), time.Duration(offset)*time.Millisecond)
	}
	return nil
}

// Now returns the current time adjusted by the last measured offset.
func (cs *ClockSync) Now() time.Time {
	return time.UnixMilli(time.Now().UnixMilli() + cs.offset.Load())
}

// Offset returns the most recently measured clock offset.
func (cs *ClockSync) Offset() time.Duration {
	return time.Duration(cs.offset.Load()) * time.Millisecond
}

// IsSynchronized reports whether Sync has ever succeeded.
func (cs *ClockSync) IsSynchronized() bool {
	return cs.lastSync.Load() > 0
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
