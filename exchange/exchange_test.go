package exchange

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solheim-labs/exaction/internal/validators"
)

func TestCreateResponseValidator_AllSupportedIDs(t *testing.T) {
	cases := []struct {
		id   ID
		want any
	}{
		{Binance, validators.Binance{}},
		{Bitbank, validators.Bitbank{}},
		{BitFlyer, validators.BitFlyer{}},
		{Coincheck, validators.Coincheck{}},
		{GMOCoin, validators.GMOCoin{}},
		{Upbit, validators.Upbit{}},
	}

	for _, tc := range cases {
		got, err := CreateResponseValidator(tc.id)
		require.NoError(t, err)
		assert.IsType(t, tc.want, got)
	}
}

func TestCreateResponseValidator_UnsupportedID_ReturnsError(t *testing.T) {
	_, err := CreateResponseValidator(ID("not-a-real-exchange"))
	assert.Error(t, err)
}

func TestID_String(t *testing.T) {
	assert.Equal(t, "binance", Binance.String())
}
