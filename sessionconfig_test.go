package exaction

import (
	"context"
	"crypto/tls"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTLSConfig_DefaultVerification_ReturnsNil(t *testing.T) {
	cfg := DefaultSessionConfig()
	tlsCfg, err := cfg.tlsConfig()
	require.NoError(t, err)
	assert.Nil(t, tlsCfg)
}

func TestTLSConfig_VerifySSLFalse_ReturnsInsecureSkipVerify(t *testing.T) {
	cfg := DefaultSessionConfig()
	cfg.VerifySSL = false
	tlsCfg, err := cfg.tlsConfig()
	require.NoError(t, err)
	require.NotNil(t, tlsCfg)
	assert.True(t, tlsCfg.InsecureSkipVerify)
}

func TestTLSConfig_SSLContextTakesPriorityOverVerifySSL(t *testing.T) {
	custom := &tls.Config{ServerName: "custom.example.com"}
	cfg := DefaultSessionConfig()
	cfg.VerifySSL = false
	cfg.SSLContext = custom

	tlsCfg, err := cfg.tlsConfig()
	require.NoError(t, err)
	assert.Same(t, custom, tlsCfg)
}

func TestTLSConfig_InvalidCertFile_ReturnsError(t *testing.T) {
	cfg := DefaultSessionConfig()
	cfg.SSLCertFile = "/nonexistent/path/to/ca.pem"

	_, err := cfg.tlsConfig()
	assert.Error(t, err)
}

func TestConfigBuilder_BuildsExpectedConfig(t *testing.T) {
	cfg := NewConfigBuilder().
		UserAgent("my-agent/1").
		HTTP2(true).
		RetryPolicy(5, 1.0, 0, 1.5, false).
		Build()

	assert.Equal(t, "my-agent/1", cfg.UserAgent)
	assert.True(t, cfg.HTTP2Enabled)
	assert.Equal(t, 5, cfg.RequestMaxRetries)
	assert.False(t, cfg.RequestJitter)
}

func TestConfigBuilder_Proxy_SetsOpaqueCredentials(t *testing.T) {
	cfg := NewConfigBuilder().Proxy("http://proxy.example.com:8080", "user", "pass").Build()

	assert.Equal(t, "http://proxy.example.com:8080", cfg.ProxyURL)
	user, pass, ok := cfg.ProxyAuth()
	require.True(t, ok)
	assert.Equal(t, "user", user)
	assert.Equal(t, "pass", pass)
}

func TestConfigBuilder_ProxyWithoutUsername_LeavesAuthUnset(t *testing.T) {
	cfg := NewConfigBuilder().Proxy("http://proxy.example.com:8080", "", "").Build()

	_, _, ok := cfg.ProxyAuth()
	assert.False(t, ok)
}

func TestDefaultSessionConfig_MatchesExpectedDefaults(t *testing.T) {
	cfg := DefaultSessionConfig()
	assert.Equal(t, 3, cfg.RequestMaxRetries)
	assert.True(t, cfg.VerifySSL)
	assert.True(t, cfg.RequestJitter)
	assert.False(t, cfg.CircuitBreakerEnabled)
	assert.False(t, cfg.ClockSyncEnabled)
}

func TestConfigBuilder_CircuitBreaker_SetsFields(t *testing.T) {
	cfg := NewConfigBuilder().CircuitBreaker(7, 2, time.Minute).Build()

	assert.True(t, cfg.CircuitBreakerEnabled)
	assert.Equal(t, 7, cfg.CircuitBreakerMaxFailures)
	assert.Equal(t, 2, cfg.CircuitBreakerSuccessThreshold)
	assert.Equal(t, time.Minute, cfg.CircuitBreakerOpenTimeout)
}

func TestConfigBuilder_ClockSync_SetsFields(t *testing.T) {
	provider := func(ctx context.Context) (int64, error) { return 0, nil }
	cfg := NewConfigBuilder().ClockSync(provider, 250*time.Millisecond).Build()

	assert.True(t, cfg.ClockSyncEnabled)
	assert.NotNil(t, cfg.ClockSyncTimeProvider)
	assert.Equal(t, 250*time.Millisecond, cfg.ClockSyncMaxOffset)
}
