package exaction

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"time"

	"github.com/solheim-labs/exaction/internal/secretheaders"
	isync "github.com/solheim-labs/exaction/internal/sync"
)

// SessionConfig is the frozen record of every recognized session option
// (§3). It is built once via ConfigBuilder and never mutated after Build
// returns it; Session.Config() hands callers a copy.
type SessionConfig struct {
	MaxKeepaliveConnections int
	MaxConnections          int
	KeepaliveExpiry         time.Duration
	ConnectTimeout          time.Duration
	ReadTimeout             time.Duration
	WriteTimeout            time.Duration
	PoolTimeout             time.Duration
	HTTP2Enabled            bool
	UserAgent               string

	ProxyURL  string
	proxyAuth *secretheaders.Headers // opaque secret pair: "username", "password"

	TrustEnv    bool
	VerifySSL   bool
	SSLCertFile string
	SSLContext  *tls.Config

	RequestTimeoutSeconds      float64
	RequestMaxRetries          int
	RequestInitialDelaySeconds float64
	RequestMaxDelay            time.Duration
	RequestBackoffFactor       float64
	RequestJitter              bool

	// CircuitBreakerEnabled layers a per-exchange circuit breaker outside
	// the retry-wrapped HTTP call. Off by default; enabling it never
	// changes the retry/backoff semantics above, it only stops issuing
	// calls once the exchange looks unhealthy.
	CircuitBreakerEnabled          bool
	CircuitBreakerMaxFailures      int
	CircuitBreakerSuccessThreshold int
	CircuitBreakerOpenTimeout      time.Duration

	// ClockSyncEnabled runs a one-time clock-drift check against
	// ClockSyncTimeProvider when the session is built, then validates the
	// measured offset before every subsequent request. Off by default;
	// every signing scheme in this module is timestamp-based, so a
	// caller whose local clock has drifted enough benefits from failing
	// fast here rather than via a signature-rejected response.
	ClockSyncEnabled      bool
	ClockSyncMaxOffset    time.Duration
	ClockSyncTimeProvider isync.TimeProvider
}

// ProxyAuth returns the proxy username/password if set, read through the
// opaque secret accessor — this is the kind of boundary point §9's
// "Secret handling" design note reserves for real value access.
func (c SessionConfig) ProxyAuth() (username, password string, ok bool) {
	if c.proxyAuth == nil {
		return "", "", false
	}
	u, uok := c.proxyAuth.Get("username")
	p, pok := c.proxyAuth.Get("password")
	return u, p, uok && pok
}

// DefaultSessionConfig returns conservative defaults matching the
// reference implementation's dataclass defaults.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		MaxKeepaliveConnections:    20,
		MaxConnections:             100,
		KeepaliveExpiry:            5 * time.Second,
		ConnectTimeout:             5 * time.Second,
		ReadTimeout:                10 * time.Second,
		WriteTimeout:               10 * time.Second,
		PoolTimeout:                5 * time.Second,
		HTTP2Enabled:               false,
		UserAgent:                  "exaction/1",
		TrustEnv:                   false,
		VerifySSL:                  true,
		RequestTimeoutSeconds:      10,
		RequestMaxRetries:          3,
		RequestInitialDelaySeconds: 0.5,
		RequestMaxDelay:            30 * time.Second,
		RequestBackoffFactor:       2.0,
		RequestJitter:              true,
	}
}

// tlsConfig resolves the session's effective TLS configuration following
// the priority order in §4.10: ssl_context > verify_ssl=false (permissive)
// > ssl_cert_file > default verify.
func (c SessionConfig) tlsConfig() (*tls.Config, error) {
	if c.SSLContext != nil {
		return c.SSLContext, nil
	}
	if !c.VerifySSL {
		return &tls.Config{InsecureSkipVerify: true}, nil
	}
	if c.SSLCertFile != "" {
		pem, err := os.ReadFile(c.SSLCertFile)
		if err != nil {
			return nil, fmt.Errorf("sessionconfig: read ssl_cert_file: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("sessionconfig: ssl_cert_file contains no usable certificates")
		}
		return &tls.Config{RootCAs: pool}, nil
	}
	return nil, nil // default verification behavior
}

// ConfigBuilder provides a fluent interface for building SessionConfig,
// mirroring the teacher's connector Builder pattern generalized from
// Binance/Bybit-only fields to every field named in §3.
type ConfigBuilder struct {
	config SessionConfig
}

// NewConfigBuilder returns a builder seeded with DefaultSessionConfig.
func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{config: DefaultSessionConfig()}
}

// Timeouts sets connect/read/write/pool timeouts.
func (b *ConfigBuilder) Timeouts(connect, read, write, pool time.Duration) *ConfigBuilder {
	b.config.ConnectTimeout = connect
	b.config.ReadTimeout = read
	b.config.WriteTimeout = write
	b.config.PoolTimeout = pool
	return b
}

// ConnectionPool sets connection pool limits.
func (b *ConfigBuilder) ConnectionPool(maxKeepalive, maxConnections int, keepaliveExpiry time.Duration) *ConfigBuilder {
	b.config.MaxKeepaliveConnections = maxKeepalive
	b.config.MaxConnections = maxConnections
	b.config.KeepaliveExpiry = keepaliveExpiry
	return b
}

// HTTP2 toggles HTTP/2 support.
func (b *ConfigBuilder) HTTP2(enabled bool) *ConfigBuilder {
	b.config.HTTP2Enabled = enabled
	return b
}

// UserAgent sets the User-Agent header.
func (b *ConfigBuilder) UserAgent(ua string) *ConfigBuilder {
	b.config.UserAgent = ua
	return b
}

// Proxy sets the proxy URL and, if username is non-empty, opaque
// credentials for it.
func (b *ConfigBuilder) Proxy(url, username, password string) *ConfigBuilder {
	b.config.ProxyURL = url
	if username != "" {
		auth := secretheaders.New()
		auth.Set("username", username)
		auth.Set("password", password)
		b.config.proxyAuth = auth
	}
	return b
}

// TrustEnv toggles whether HTTP_PROXY/HTTPS_PROXY/NO_PROXY are honored
// from the environment (an explicit Proxy URL still takes precedence).
// ALL_PROXY is not read; SSL_CERT_FILE is read by Go's own system
// certificate loading whether or not TrustEnv is set.
func (b *ConfigBuilder) TrustEnv(trust bool) *ConfigBuilder {
	b.config.TrustEnv = trust
	return b
}

// SSL configures the TLS verification policy. Pass ctx to use a fully
// custom tls.Config (highest priority); verifySSL=false to use a
// permissive context; certFile to trust an additional CA bundle.
func (b *ConfigBuilder) SSL(verifySSL bool, certFile string, ctx *tls.Config) *ConfigBuilder {
	b.config.VerifySSL = verifySSL
	b.config.SSLCertFile = certFile
	b.config.SSLContext = ctx
	return b
}

// RetryPolicy sets the retry strategy's parameters.
func (b *ConfigBuilder) RetryPolicy(maxRetries int, initialDelaySeconds float64, maxDelay time.Duration, backoffFactor float64, jitter bool) *ConfigBuilder {
	b.config.RequestMaxRetries = maxRetries
	b.config.RequestInitialDelaySeconds = initialDelaySeconds
	b.config.RequestMaxDelay = maxDelay
	b.config.RequestBackoffFactor = backoffFactor
	b.config.RequestJitter = jitter
	return b
}

// RequestTimeout sets the per-request timeout in seconds.
func (b *ConfigBuilder) RequestTimeout(seconds float64) *ConfigBuilder {
	b.config.RequestTimeoutSeconds = seconds
	return b
}

// CircuitBreaker enables a circuit breaker wrapping the retry-wrapped
// HTTP call, tripping after maxFailures consecutive failures and
// probing again after openTimeout.
func (b *ConfigBuilder) CircuitBreaker(maxFailures, successThreshold int, openTimeout time.Duration) *ConfigBuilder {
	b.config.CircuitBreakerEnabled = true
	b.config.CircuitBreakerMaxFailures = maxFailures
	b.config.CircuitBreakerSuccessThreshold = successThreshold
	b.config.CircuitBreakerOpenTimeout = openTimeout
	return b
}

// ClockSync enables the pre-request clock-drift check, synchronizing
// once against timeProvider at session build time and rejecting later
// requests if the local clock drifts past maxOffset.
func (b *ConfigBuilder) ClockSync(timeProvider isync.TimeProvider, maxOffset time.Duration) *ConfigBuilder {
	b.config.ClockSyncEnabled = true
	b.config.ClockSyncTimeProvider = timeProvider
	b.config.ClockSyncMaxOffset = maxOffset
	return b
}

// Build returns the assembled SessionConfig.
func (b *ConfigBuilder) Build() SessionConfig {
	return b.config
}
