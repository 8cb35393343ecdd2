package callbacks

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/solheim-labs/exaction/internal/ratelimit"
	"github.com/solheim-labs/exaction/internal/secretheaders"
	apierrors "github.com/solheim-labs/exaction/pkg/errors"
)

// WeightRule maps an endpoint path substring to its exchange-published
// request weight (Binance's weight table assigns each endpoint a cost
// rather than counting every call as one request).
type WeightRule struct {
	Path   string
	Weight int
}

// WeightLimiter adapts a ratelimit.WeightedLimiter into the callback
// chain: BeforeRequest blocks for the matched endpoint's weight,
// AfterRequest folds the exchange's own authoritative counter back into
// the limiter so local bookkeeping doesn't drift from the server's view.
type WeightLimiter struct {
	exchange      string
	limiter       *ratelimit.WeightedLimiter
	rules         []WeightRule
	defaultWeight int
	headerNames   []string
}

// NewWeightLimiter builds a WeightLimiter over limiter. headerNames lists
// the response header(s) (in the casing the exchange actually sends, since
// HTTP header lookups on the raw map are case-sensitive) carrying the
// server's current weight usage; the first one present wins.
func NewWeightLimiter(exchange string, limiter *ratelimit.WeightedLimiter, defaultWeight int, rules []WeightRule, headerNames ...string) *WeightLimiter {
	if defaultWeight <= 0 {
		defaultWeight = 1
	}
	return &WeightLimiter{exchange: exchange, limiter: limiter, rules: rules, defaultWeight: defaultWeight, headerNames: headerNames}
}

func (w *WeightLimiter) weightFor(url string) int {
	for _, r := range w.rules {
		if strings.Contains(url, r.Path) {
			return r.Weight
		}
	}
	return w.defaultWeight
}

// BeforeRequest implements Callback.
func (w *WeightLimiter) BeforeRequest(ctx context.Context, url string, _ *secretheaders.Headers, _ string) error {
	return w.limiter.Wait(ctx, w.weightFor(url))
}

// AfterRequest implements Callback. It reads the exchange's used-weight
// header (if present) back into the limiter's bookkeeping, and turns a
// 418/429 response — Binance's documented signal that a caller has
// crossed the weight budget anyway — into an IPBanError or
// RateLimitError carrying the Retry-After hint, rather than letting the
// caller see a bare non-2xx status.
func (w *WeightLimiter) AfterRequest(_ context.Context, resp HTTPResponseData) error {
	for _, name := range w.headerNames {
		if vals, ok := resp.Headers[name]; ok && len(vals) > 0 {
			if used, err := strconv.Atoi(vals[0]); err == nil {
				w.limiter.UpdateWeight(used)
			}
			break
		}
	}

	retryAfter := w.retryAfter(resp.Headers)
	switch resp.HTTPStatusCode {
	case 418:
		return apierrors.NewIPBanError(w.exchange, "weight limit exceeded repeatedly", retryAfter)
	case 429:
		return apierrors.NewRateLimitError(w.exchange, retryAfter, w.limiter.CurrentWeight())
	}
	return nil
}

func (w *WeightLimiter) retryAfter(headers map[string][]string) time.Duration {
	vals, ok := headers["Retry-After"]
	if !ok || len(vals) == 0 {
		return 0
	}
	secs, err := strconv.Atoi(vals[0])
	if err != nil {
		return 0
	}
	return time.Duration(secs) * time.Second
}

// Limiter returns the underlying WeightedLimiter, for callers (such as
// rateinspect-style tooling) that want Stats() without re-deriving it.
func (w *WeightLimiter) Limiter() *ratelimit.WeightedLimiter { return w.limiter }
