package callbacks

import (
	"context"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/solheim-labs/exaction/internal/secretheaders"
	"github.com/solheim-labs/exaction/pkg/errors"
)

// Pattern is one URL-matching rule for a rate limiter: either a literal
// substring matched against the URL path, or a compiled regex matched
// against the full URL.
type Pattern struct {
	Literal string
	Regex   *regexp.Regexp
}

// LiteralPattern builds a substring-match Pattern.
func LiteralPattern(substr string) Pattern { return Pattern{Literal: substr} }

// RegexPattern builds a regex-match Pattern.
func RegexPattern(re *regexp.Regexp) Pattern { return Pattern{Regex: re} }

func (p Pattern) matches(fullURL, path string) bool {
	if p.Regex != nil {
		return p.Regex.MatchString(fullURL)
	}
	return strings.Contains(path, p.Literal)
}

func (p Pattern) String() string {
	if p.Regex != nil {
		return p.Regex.String()
	}
	return p.Literal
}

// LocalLimiterConfig configures a per-URL-pattern limiter backed by an
// in-process counter.
type LocalLimiterConfig struct {
	Patterns      []Pattern
	WindowSeconds int
	MaxSafeCount  int64
	Label         string // derived from Patterns if empty
	KeyPrefix     string // defaults to DefaultKeyPrefix if empty
}

// windowCounter is one window's in-memory count plus its expiry time, so
// a lazily-swept map can evict stale windows without a background timer
// per key.
type windowCounter struct {
	count    int64
	expireAt time.Time
}

// LocalLimiter is an in-process, per-URL-pattern sliding-window rate
// limiter implementing Callback. Only BeforeRequest enforces the limit;
// AfterRequest increments the counter, matching §4.8's admission/
// accounting split: conservative in admission but weakly consistent in
// accounting across the pre-read/post-increment boundary.
type LocalLimiter struct {
	cfg   LocalLimiterConfig
	label string

	mu       sync.Mutex
	counters map[string]*windowCounter
}

// NewLocalLimiter builds a LocalLimiter from cfg, deriving a label from
// the configured patterns when cfg.Label is empty.
func NewLocalLimiter(cfg LocalLimiterConfig) *LocalLimiter {
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

	return &LocalLimiter{cfg: cfg, label: label, counters: make(map[string]*windowCounter)}
}

func (l *LocalLimiter) matchesAny(fullURL string) bool {
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

func (l *LocalLimiter) key(now time.Time) string {
	return BuildKey(l.cfg.KeyPrefix, l.label, l.cfg.WindowSeconds, now.Unix())
}

// BeforeRequest implements Callback. Raises RateLimitApproachingError if
// the current window's counter already meets MaxSafeCount.
func (l *LocalLimiter) BeforeRequest(_ context.Context, url string, _ *secretheaders.Headers, _ string) error {
	if !l.matchesAny(url) {
		return nil
	}

	now := time.Now()
	key := l.key(now)

	l.mu.Lock()
	l.sweep(now)
	count := int64(0)
	if c, ok := l.counters[key]; ok {
		count = c.count
	}
	l.mu.Unlock()

	if count >= l.cfg.MaxSafeCount {
		return errors.NewRateLimitApproachingError(l.label, count, l.cfg.MaxSafeCount, l.cfg.WindowSeconds)
	}
	return nil
}

// AfterRequest implements Callback. Increments the current window's
// counter, setting its TTL only on first write in the window (no
// extension on subsequent writes — §9 Open Questions resolution).
func (l *LocalLimiter) AfterRequest(_ context.Context, resp HTTPResponseData) error {
	if !l.matchesAny(resp.URL) {
		return nil
	}

	now := time.Now()
	key := l.key(now)

	l.mu.Lock()
	defer l.mu.Unlock()

	l.sweep(now)
	c, ok := l.counters[key]
	if !ok {
		c = &windowCounter{expireAt: now.Add(time.Duration(l.cfg.WindowSeconds) * time.Second)}
		l.counters[key] = c
	}
	c.count++
	return nil
}

// sweep evicts expired windows. Called with l.mu held.
func (l *LocalLimiter) sweep(now time.Time) {
	for k, c := range l.counters {
		if now.After(c.expireAt) {
			delete(l.counters, k)
		}
	}
}

// Label returns the limiter's effective label (caller-supplied or
// derived).
func (l *LocalLimiter) Label() string { return l.label }
