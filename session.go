package exaction

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"resty.dev/v3"

	"github.com/solheim-labs/exaction/internal/callbacks"
	"github.com/solheim-labs/exaction/internal/circuit"
	"github.com/solheim-labs/exaction/internal/retrystrategy"
	isync "github.com/solheim-labs/exaction/internal/sync"
	apierrors "github.com/solheim-labs/exaction/pkg/errors"
)

// Callback is the pre-request/post-response hook every response
// validator and rate limiter implements. Re-exported from
// internal/callbacks so callers never need to import an internal
// package to register one.
type Callback = callbacks.Callback

// Sender is the narrow surface a per-exchange API client needs from its
// owning Session: send one already-built request through the full
// pipeline (callbacks, retry, HTTP) and get back the raw response.
// Defined so exchange client packages depend on this interface rather
// than on the generic Session[C] type itself, keeping them free to be
// constructed before the Session wrapping them exists.
type Sender interface {
	Send(ctx context.Context, req *EndpointRequest) (*HttpResponseData, error)
	Config() SessionConfig
}

// sessionCore holds everything about a session that doesn't depend on
// the per-exchange API client's concrete type: the HTTP transport, the
// callback chain, the retry strategy, and the closed/open lifecycle
// state. Session[C] embeds it so every exchange's Session shares one
// non-generic implementation of Send/Close/Config/Callbacks.
type sessionCore struct {
	exchangeName string
	config       SessionConfig
	httpClient   *resty.Client
	ownsClient   bool
	chain        *callbacks.Chain
	retry        *retrystrategy.Strategy
	breaker      *circuit.Breaker
	clock        *isync.ClockSync
	closed       atomic.Bool
}

func newCore(exchangeName string, cfg SessionConfig, cbs []Callback, externalClient *resty.Client) (*sessionCore, error) {
	client := externalClient
	ownsClient := false
	if client == nil {
		built, err := buildHTTPClient(cfg)
		if err != nil {
			return nil, err
		}
		client = built
		ownsClient = true
	}

	retryCfg := retrystrategy.Config{
		MaxRetries:    cfg.RequestMaxRetries,
		InitialDelay:  time.Duration(cfg.RequestInitialDelaySeconds * float64(time.Second)),
		MaxDelay:      cfg.RequestMaxDelay,
		BackoffFactor: cfg.RequestBackoffFactor,
		Jitter:        cfg.RequestJitter,
		Retryable:     apierrors.IsRetryable,
	}

	core := &sessionCore{
		exchangeName: exchangeName,
		config:       cfg,
		httpClient:   client,
		ownsClient:   ownsClient,
		chain:        callbacks.NewChain(cbs...),
		retry:        retrystrategy.New(retryCfg),
	}

	if cfg.CircuitBreakerEnabled {
		core.breaker = circuit.NewBreaker(exchangeName, circuit.Config{
			MaxFailures:      cfg.CircuitBreakerMaxFailures,
			SuccessThreshold: cfg.CircuitBreakerSuccessThreshold,
			OpenTimeout:      cfg.CircuitBreakerOpenTimeout,
		})
	}

	if cfg.ClockSyncEnabled && cfg.ClockSyncTimeProvider != nil {
		core.clock = isync.NewClockSync(exchangeName, cfg.ClockSyncTimeProvider, cfg.ClockSyncMaxOffset)
		if err := core.clock.Sync(context.Background()); err != nil {
			return nil, err
		}
	}

	return core, nil
}

// buildHTTPClient assembles a resty.Client from a SessionConfig's
// connection-pool, timeout, proxy and TLS settings (§4.10).
func buildHTTPClient(cfg SessionConfig) (*resty.Client, error) {
	tlsCfg, err := cfg.tlsConfig()
	if err != nil {
		return nil, err
	}

	transport := &http.Transport{
		MaxIdleConns:        cfg.MaxConnections,
		MaxIdleConnsPerHost: cfg.MaxKeepaliveConnections,
		IdleConnTimeout:     cfg.KeepaliveExpiry,
		TLSHandshakeTimeout: cfg.ConnectTimeout,
		ForceAttemptHTTP2:   cfg.HTTP2Enabled,
	}
	if cfg.TrustEnv {
		transport.Proxy = http.ProxyFromEnvironment
	}
	if tlsCfg != nil {
		transport.TLSClientConfig = tlsCfg
	} else if !cfg.VerifySSL {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	client := resty.New()
	client.SetTransport(transport)
	client.SetTimeout(time.Duration(cfg.RequestTimeoutSeconds * float64(time.Second)))
	if cfg.UserAgent != "" {
		client.SetHeader("User-Agent", cfg.UserAgent)
	}
	if cfg.ProxyURL != "" {
		proxyURL, err := proxyURLWithAuth(cfg)
		if err != nil {
			return nil, err
		}
		client.SetProxy(proxyURL)
	}

	return client, nil
}

// proxyURLWithAuth folds proxy_auth's username/password into the proxy
// URL's userinfo component, the form net/http's ProxyFromEnvironment and
// most HTTP clients (including resty) expect authenticated proxies in.
func proxyURLWithAuth(cfg SessionConfig) (string, error) {
	u, err := url.Parse(cfg.ProxyURL)
	if err != nil {
		return "", fmt.Errorf("sessionconfig: invalid proxy_url: %w", err)
	}
	if user, pass, ok := cfg.ProxyAuth(); ok {
		u.User = url.UserPassword(user, pass)
	}
	return u.String(), nil
}

// Send runs one logical call through the full pipeline: before-request
// callbacks, the HTTP round trip, after-request callbacks, all wrapped
// by the retry strategy. Every attempt re-invokes the full callback
// chain, per §4.7's "callbacks are re-invoked on every retry attempt."
func (c *sessionCore) Send(ctx context.Context, req *EndpointRequest) (*HttpResponseData, error) {
	if c.closed.Load() {
		return nil, apierrors.NewSessionClosedError()
	}
	if c.clock != nil {
		if err := c.clock.ValidateOffset(); err != nil {
			return nil, err
		}
	}

	var result *HttpResponseData
	execute := func() error {
		return c.retry.Execute(ctx, func(ctx context.Context) error {
			bodyJSON := req.BodyJSON()

			if err := c.chain.RunBeforeRequest(ctx, req.APIEndpoint(), req.Headers().Copy(), bodyJSON); err != nil {
				return err
			}

			start := time.Now()
			rreq := c.httpClient.R().SetContext(ctx)
			for _, name := range req.Headers().Names() {
				if v, ok := req.Headers().Get(name); ok {
					rreq.SetHeader(name, v)
				}
			}

			var resp *resty.Response
			var sendErr error
			switch req.Method() {
			case MethodGET:
				resp, sendErr = rreq.Get(req.APIEndpoint())
			case MethodPOST:
				if bodyJSON != "" {
					rreq.SetHeader("Content-Type", "application/json")
					rreq.SetBody(bodyJSON)
				}
				resp, sendErr = rreq.Post(req.BaseURL() + req.EndpointPath())
			default:
				return fmt.Errorf("session: unsupported method %q", req.Method())
			}
			elapsed := time.Since(start)

			if sendErr != nil {
				return apierrors.NewConnectionError(c.exchangeName, req.EndpointPath(), sendErr.Error(), true)
			}

			hrd := &HttpResponseData{
				HTTPStatusCode:   resp.StatusCode(),
				Headers:          map[string][]string(resp.Header()),
				ResponseBodyText: resp.String(),
				ResponseBodyRaw:  resp.Bytes(),
				URL:              req.APIEndpoint(),
				Reason:           resp.Status(),
				Elapsed:          elapsed,
				RequestMethod:    req.Method(),
				RequestURL:       req.APIEndpoint(),
				RequestPath:      req.EndpointPath(),
			}

			if err := c.chain.RunAfterRequest(ctx, callbacks.HTTPResponseData{
				HTTPStatusCode:   hrd.HTTPStatusCode,
				ResponseBodyText: hrd.ResponseBodyText,
				URL:              hrd.URL,
				RequestMethod:    string(hrd.RequestMethod),
				RequestPath:      hrd.RequestPath,
				Headers:          hrd.Headers,
			}); err != nil {
				return err
			}

			result = hrd
			return nil
		})
	}

	var err error
	if c.breaker != nil {
		err = c.breaker.Execute(execute)
	} else {
		err = execute()
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Config returns the session's configuration.
func (c *sessionCore) Config() SessionConfig { return c.config }

// Callbacks returns the registered callback chain in invocation order.
func (c *sessionCore) Callbacks() []Callback { return c.chain.Callbacks() }

// Closed reports whether Close has already run.
func (c *sessionCore) Closed() bool { return c.closed.Load() }

// Close transitions the session to its closed terminal state. Closing
// an externally-supplied http client is the caller's responsibility, not
// the session's — mirrors the "acquire-and-release with guaranteed
// close" contract only extending to resources the session itself opened.
func (c *sessionCore) Close(ctx context.Context) error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	if c.ownsClient && c.httpClient != nil {
		c.httpClient.Close()
		log.Debug().Str("exchange", c.exchangeName).Msg("session closed")
	}
	return nil
}

// Session is a scoped handle on one exchange's API: a transport, a
// callback chain, a retry strategy, and the typed API client C those
// back. The zero value is not usable; construct via NewSession (or, more
// commonly, one of the per-exchange NewSession wrappers in the exchange
// subpackages).
type Session[C any] struct {
	*sessionCore
	api C
}

// NewSession builds a Session[C] for exchangeName: it assembles the
// transport/chain/retry core from cfg and externalClient (nil to let the
// session build its own), then calls buildAPI with a Sender bound to
// that core to construct the typed API client.
func NewSession[C any](exchangeName string, cfg SessionConfig, cbs []Callback, externalClient *resty.Client, apiKey, apiSecret string, buildAPI func(sender Sender, apiKey, apiSecret string) C) (*Session[C], error) {
	core, err := newCore(exchangeName, cfg, cbs, externalClient)
	if err != nil {
		return nil, err
	}
	api := buildAPI(core, apiKey, apiSecret)
	return &Session[C]{sessionCore: core, api: api}, nil
}

// API returns the session's typed per-exchange API client, or
// SessionClosedError if Close has already run.
func (s *Session[C]) API() (C, error) {
	var zero C
	if s.closed.Load() {
		return zero, apierrors.NewSessionClosedError()
	}
	return s.api, nil
}
