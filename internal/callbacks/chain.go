// Package callbacks implements the ordered pre-request/post-response
// hook chain (§4.7) and the two rate limiter implementations that plug
// into it (§4.8).
package callbacks

import (
	"context"

	"github.com/solheim-labs/exaction/internal/secretheaders"
)

// HTTPResponseData is the subset of the post-response snapshot a
// callback needs. Defined here (rather than imported from the root
// package) to keep this package free of a dependency on the root
// package, avoiding an import cycle since the root package depends on
// callbacks for the chain implementation.
type HTTPResponseData struct {
	HTTPStatusCode   int
	ResponseBodyText string
	URL              string
	RequestMethod    string
	RequestPath      string
	Headers          map[string][]string
}

// Callback is one pre-request/post-response hook pair. Implementations
// must be safe to invoke repeatedly across retries of the same logical
// call — the chain re-invokes every callback on every attempt.
type Callback interface {
	// BeforeRequest runs once per attempt, before the HTTP call. An error
	// aborts the attempt and short-circuits remaining pre-request hooks.
	BeforeRequest(ctx context.Context, url string, headers *secretheaders.Headers, body string) error

	// AfterRequest runs once per attempt, after the HTTP call completes,
	// in the same order as registration. An error short-circuits
	// remaining post-response hooks for that attempt; whether the retry
	// strategy retries is decided by its own exception set, not by this
	// method.
	AfterRequest(ctx context.Context, resp HTTPResponseData) error
}

// Chain is an ordered, immutable list of Callbacks.
type Chain struct {
	callbacks []Callback
}

// NewChain returns a Chain invoking cbs in the given order.
func NewChain(cbs ...Callback) *Chain {
	return &Chain{callbacks: cbs}
}

// Callbacks returns the registered callbacks in invocation order.
func (c *Chain) Callbacks() []Callback {
	return c.callbacks
}

// RunBeforeRequest invokes every callback's BeforeRequest in order,
// stopping at (and returning) the first error.
func (c *Chain) RunBeforeRequest(ctx context.Context, url string, headers *secretheaders.Headers, body string) error {
	for _, cb := range c.callbacks {
		if err := cb.BeforeRequest(ctx, url, headers, body); err != nil {
			return err
		}
	}
	return nil
}

// RunAfterRequest invokes every callback's AfterRequest in order,
// stopping at (and returning) the first error.
func (c *Chain) RunAfterRequest(ctx context.Context, resp HTTPResponseData) error {
	for _, cb := range c.callbacks {
		if err := cb.AfterRequest(ctx, resp); err != nil {
			return err
		}
	}
	return nil
}
