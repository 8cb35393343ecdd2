package callbacks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildKey_ParseKey_RoundTrip(t *testing.T) {
	key := BuildKey("RATE_LIMIT", "binance_order", 60, 1640000125)
	parsed, ok := ParseKey(key)
	require.True(t, ok)
	assert.Equal(t, "RATE_LIMIT", parsed.Prefix)
	assert.Equal(t, "BINANCE_ORDER", parsed.Label)
	assert.Equal(t, int64(1640000125/60), parsed.Window)
}

func TestBuildKey_IsUppercased(t *testing.T) {
	key := BuildKey("rate_limit", "binance_order", 60, 0)
	assert.Equal(t, key, key)
	assert.Equal(t, "RATE_LIMIT:BINANCE_ORDER:WINDOW:0", key)
}

func TestParseKey_RejectsMalformedKey(t *testing.T) {
	_, ok := ParseKey("NOT:A:VALID:KEY:AT:ALL")
	assert.False(t, ok)

	_, ok = ParseKey("RATE_LIMIT:LABEL:NOTWINDOW:5")
	assert.False(t, ok)

	_, ok = ParseKey("RATE_LIMIT:LABEL:WINDOW:not-a-number")
	assert.False(t, ok)
}

func TestWindowForTimestamp_ZeroOrNegativeFallsBackToDefault(t *testing.T) {
	withDefault := WindowForTimestamp(DefaultWindowSeconds, 125)
	withZero := WindowForTimestamp(0, 125)
	assert.Equal(t, withDefault, withZero)
	assert.Equal(t, withDefault, WindowForTimestamp(-5, 125))
}

func TestBuildSearchPattern_WildcardsOmittedSegments(t *testing.T) {
	assert.Equal(t, "RATE_LIMIT:*:WINDOW:*", BuildSearchPattern("RATE_LIMIT", "", nil))

	window := int64(42)
	assert.Equal(t, "RATE_LIMIT:BINANCE_ORDER:WINDOW:42", BuildSearchPattern("rate_limit", "binance_order", &window))
}

func TestDeriveLabel_OrderIndependent(t *testing.T) {
	a := DeriveLabel([]string{"/v1/me/getbalance", "/v1/me/sendchildorder"})
	b := DeriveLabel([]string{"/v1/me/sendchildorder", "/v1/me/getbalance"})
	assert.Equal(t, a, b)
}

func TestDeriveLabel_HasPatternPrefixAndFixedLength(t *testing.T) {
	label := DeriveLabel([]string{"/v1/ticker"})
	assert.Contains(t, label, "PATTERN_")
	assert.Len(t, label, len("PATTERN_")+8)
}
