package decimaljson

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solheim-labs/exaction/pkg/domain"
)

type sample struct {
	Amount domain.Decimal `json:"amount"`
	Label  string         `json:"label"`
}

func TestParse_PreservesHighPrecisionLiteralExactly(t *testing.T) {
	ClearCache()
	got, err := Parse[sample](`{"amount": 0.123456789012345678901234567890, "label": "x"}`)
	require.NoError(t, err)
	assert.Equal(t, "0.123456789012345678901234567890", got.Amount.String())
}

func TestParse_PreservesSmallLiteralExactly(t *testing.T) {
	ClearCache()
	got, err := Parse[sample](`{"amount": 0.00000001, "label": "btc"}`)
	require.NoError(t, err)
	// apd's String() switches to exponent form below 1E-6 ("1E-8");
	// Text('f') renders the same coefficient and exponent in plain form.
	assert.Equal(t, "0.00000001", got.Amount.Text('f'))
}

func TestParse_PreservesLargeIntegerPartExactly(t *testing.T) {
	ClearCache()
	got, err := Parse[sample](`{"amount": 999999999999999999.123456789, "label": "big"}`)
	require.NoError(t, err)
	assert.Equal(t, "999999999999999999.123456789", got.Amount.String())
}

func TestParse_NonDecimalFieldsDecodeNormally(t *testing.T) {
	ClearCache()
	got, err := Parse[sample](`{"amount": 1, "label": "btc_jpy"}`)
	require.NoError(t, err)
	assert.Equal(t, "btc_jpy", got.Label)
}

func TestParse_InvalidJSON_ReturnsError(t *testing.T) {
	ClearCache()
	_, err := Parse[sample](`not json`)
	assert.Error(t, err)
}

func TestParse_InvalidDecimalLiteral_ReturnsError(t *testing.T) {
	ClearCache()
	_, err := Parse[sample](`{"amount": "not-a-number", "label": "x"}`)
	assert.Error(t, err)
}
