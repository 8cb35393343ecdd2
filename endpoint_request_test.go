package exaction

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEndpointPath_JoinsStubAndResourceWithLeadingSlash(t *testing.T) {
	req := NewBuilder().Get("https://api.example.com", "v1", "me/getbalance", nil, nil)
	assert.Equal(t, "/v1/me/getbalance", req.EndpointPath())
}

func TestEndpointPath_NoStubPath(t *testing.T) {
	req := NewBuilder().Get("https://api.example.com", "", "ticker", nil, nil)
	assert.Equal(t, "/ticker", req.EndpointPath())
}

func TestEndpointPath_ResourcePathAlreadyHasLeadingSlash(t *testing.T) {
	req := NewBuilder().Get("https://api.example.com", "/v1", "/me/getbalance", nil, nil)
	assert.Equal(t, "/v1/me/getbalance", req.EndpointPath())
}

func TestQueryString_SortsParamsByKey(t *testing.T) {
	params := []KV{
		{Key: "timestamp", Value: "1640000000000"},
		{Key: "symbol", Value: "BTCUSDT"},
	}
	req := NewBuilder().Get("https://api.binance.com", "", "/api/v3/ticker/24hr", params, nil)
	assert.Equal(t, "symbol=BTCUSDT&timestamp=1640000000000", req.QueryString())
}

func TestAPIEndpoint_OmitsQuestionMarkWhenNoParams(t *testing.T) {
	req := NewBuilder().Get("https://api.example.com", "", "/ping", nil, nil)
	assert.Equal(t, "https://api.example.com/ping", req.APIEndpoint())
}

func TestAPIEndpoint_IncludesEncodedQuery(t *testing.T) {
	params := []KV{{Key: "product_code", Value: "BTC_JPY"}}
	req := NewBuilder().Get("https://api.bitflyer.com", "", "/v1/ticker", params, nil)
	assert.Equal(t, "https://api.bitflyer.com/v1/ticker?product_code=BTC_JPY", req.APIEndpoint())
}

func TestBodyJSON_EmptyBody_ReturnsEmptyString(t *testing.T) {
	req := NewBuilder().Post("https://api.example.com", "", "/order", nil, nil)
	assert.Equal(t, "", req.BodyJSON())
}

func TestBodyJSON_PreservesInsertionOrder(t *testing.T) {
	body := []KV{
		{Key: "side", Value: "BUY"},
		{Key: "symbol", Value: "BTCUSDT"},
	}
	req := NewBuilder().Post("https://api.binance.com", "", "/api/v3/order", body, nil)
	assert.Equal(t, `{"side":"BUY","symbol":"BTCUSDT"}`, req.BodyJSON())
}

func TestGet_NilHeaders_GetsEmptyHeadersNotNil(t *testing.T) {
	req := NewBuilder().Get("https://api.example.com", "", "/ping", nil, nil)
	assert.NotNil(t, req.Headers())
	assert.Equal(t, 0, req.Headers().Len())
}

func TestMethod_GetAndPost(t *testing.T) {
	get := NewBuilder().Get("https://x", "", "/y", nil, nil)
	post := NewBuilder().Post("https://x", "", "/y", nil, nil)
	assert.Equal(t, MethodGET, get.Method())
	assert.Equal(t, MethodPOST, post.Method())
}
