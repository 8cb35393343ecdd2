package validators

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solheim-labs/exaction/internal/callbacks"
	apierrors "github.com/solheim-labs/exaction/pkg/errors"
)

func TestBinance_NonSuccessEnvelope_RaisesExchangeApiError(t *testing.T) {
	resp := callbacks.HTTPResponseData{
		HTTPStatusCode:   400,
		ResponseBodyText: `{"code":-1121,"msg":"Invalid symbol."}`,
	}

	err := Binance{}.AfterRequest(context.Background(), resp)
	require.Error(t, err)

	var apiErr *apierrors.ExchangeApiError
	require.ErrorAs(t, err, &apiErr)
	require.NotNil(t, apiErr.HTTPStatusCode)
	assert.Equal(t, 400, *apiErr.HTTPStatusCode)
	require.NotNil(t, apiErr.APIStatusCode1)
	assert.Equal(t, "-1121", *apiErr.APIStatusCode1)
	require.NotNil(t, apiErr.APIErrorMessage1)
	assert.Equal(t, "Invalid symbol.", *apiErr.APIErrorMessage1)
	assert.Equal(t, resp.ResponseBodyText, apiErr.ResponseBody)
}

func TestBinance_SuccessStatus_NoError(t *testing.T) {
	resp := callbacks.HTTPResponseData{HTTPStatusCode: 200, ResponseBodyText: `{"makerCommission":10}`}
	assert.NoError(t, Binance{}.AfterRequest(context.Background(), resp))
}

func TestBinance_BeforeRequestIsNoop(t *testing.T) {
	assert.NoError(t, Binance{}.BeforeRequest(context.Background(), "https://api.binance.com", nil, ""))
}

func TestBitbank_SuccessZeroOnHTTP200_RaisesError(t *testing.T) {
	resp := callbacks.HTTPResponseData{
		HTTPStatusCode:   200,
		ResponseBodyText: `{"success":0,"data":{"code":20001}}`,
	}

	err := Bitbank{}.AfterRequest(context.Background(), resp)
	require.Error(t, err)

	var apiErr *apierrors.ExchangeApiError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 200, *apiErr.HTTPStatusCode)
	require.NotNil(t, apiErr.APIStatusCode1)
	assert.Equal(t, "20001", *apiErr.APIStatusCode1)
	assert.Nil(t, apiErr.APIErrorMessage1)
}

func TestBitbank_SuccessOne_NoError(t *testing.T) {
	resp := callbacks.HTTPResponseData{HTTPStatusCode: 200, ResponseBodyText: `{"success":1,"data":{}}`}
	assert.NoError(t, Bitbank{}.AfterRequest(context.Background(), resp))
}

func TestBitFlyer_ErrorEnvelope_RaisesError(t *testing.T) {
	resp := callbacks.HTTPResponseData{
		HTTPStatusCode:   400,
		ResponseBodyText: `{"status":-228,"error_message":"Invalid request parameter."}`,
	}

	err := BitFlyer{}.AfterRequest(context.Background(), resp)
	require.Error(t, err)

	var apiErr *apierrors.ExchangeApiError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "-228", *apiErr.APIStatusCode1)
	assert.Equal(t, "Invalid request parameter.", *apiErr.APIErrorMessage1)
}

func TestCoincheck_SuccessFalse_RaisesError(t *testing.T) {
	resp := callbacks.HTTPResponseData{
		HTTPStatusCode:   200,
		ResponseBodyText: `{"success":false,"error":"invalid order_type"}`,
	}

	err := Coincheck{}.AfterRequest(context.Background(), resp)
	require.Error(t, err)

	var apiErr *apierrors.ExchangeApiError
	require.ErrorAs(t, err, &apiErr)
	assert.Nil(t, apiErr.APIStatusCode1)
	assert.Equal(t, "invalid order_type", *apiErr.APIErrorMessage1)
}

func TestCoincheck_SuccessWrongType_TreatedAsAbsent(t *testing.T) {
	resp := callbacks.HTTPResponseData{HTTPStatusCode: 200, ResponseBodyText: `{"success":"yes"}`}
	assert.NoError(t, Coincheck{}.AfterRequest(context.Background(), resp))
}

func TestGMOCoin_NonZeroStatus_RaisesError(t *testing.T) {
	resp := callbacks.HTTPResponseData{
		HTTPStatusCode:   200,
		ResponseBodyText: `{"status":5,"messages":[{"message_code":"ERR-5003","message_string":"The board is not found."}]}`,
	}

	err := GMOCoin{}.AfterRequest(context.Background(), resp)
	require.Error(t, err)

	var apiErr *apierrors.ExchangeApiError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "ERR-5003", *apiErr.APIStatusCode1)
	assert.Equal(t, "The board is not found.", *apiErr.APIErrorMessage1)
}

func TestGMOCoin_ZeroStatus_NoError(t *testing.T) {
	resp := callbacks.HTTPResponseData{HTTPStatusCode: 200, ResponseBodyText: `{"status":0,"data":{}}`}
	assert.NoError(t, GMOCoin{}.AfterRequest(context.Background(), resp))
}

func TestUpbit_ErrorEnvelope_RaisesError(t *testing.T) {
	resp := callbacks.HTTPResponseData{
		HTTPStatusCode:   400,
		ResponseBodyText: `{"error":{"name":"validation_error","message":"market is missing, null, or invalid"}}`,
	}

	err := Upbit{}.AfterRequest(context.Background(), resp)
	require.Error(t, err)

	var apiErr *apierrors.ExchangeApiError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "validation_error", *apiErr.APIStatusCode1)
	assert.Equal(t, "market is missing, null, or invalid", *apiErr.APIErrorMessage1)
}

func TestAllValidators_MalformedBodyOnError_StillRaisesWithEmptyFields(t *testing.T) {
	resp := callbacks.HTTPResponseData{HTTPStatusCode: 500, ResponseBodyText: "not json"}

	for _, v := range []callbacks.Callback{Binance{}, BitFlyer{}, Coincheck{}, GMOCoin{}, Upbit{}} {
		err := v.AfterRequest(context.Background(), resp)
		require.Error(t, err)
		var apiErr *apierrors.ExchangeApiError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "not json", apiErr.ResponseBody)
	}
}
