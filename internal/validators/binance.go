package validators

import (
	"context"

	"github.com/solheim-labs/exaction/internal/callbacks"
	"github.com/solheim-labs/exaction/internal/secretheaders"
)

// Binance validates the {"code": int, "msg": string} error envelope
// Binance returns on every non-2xx response. A 2xx response is accepted
// without inspecting its body.
type Binance struct{}

func (Binance) BeforeRequest(ctx context.Context, url string, headers *secretheaders.Headers, body string) error {
	return nil
}

func (Binance) AfterRequest(ctx context.Context, resp callbacks.HTTPResponseData) error {
	if isHTTPSuccess(resp.HTTPStatusCode) {
		return nil
	}
	code, msg := binanceExtractErrorInfo(resp.ResponseBodyText)

	var codeStr, msgStr string
	if code != nil {
		codeStr = itoa(*code)
	}
	if msg != nil {
		msgStr = *msg
	}

	return raise("binance", resp.HTTPStatusCode, codeStr, msgStr, resp.ResponseBodyText)
}

func binanceExtractErrorInfo(body string) (*int64, *string) {
	m, ok := decode(body)
	if !ok {
		return nil, nil
	}
	var code *int64
	if v, present := m["code"]; present {
		if n, ok := asInt(v); ok {
			code = &n
		}
	}
	var msg *string
	if v, present := m["msg"]; present {
		if s, ok := asString(v); ok {
			msg = &s
		}
	}
	return code, msg
}
