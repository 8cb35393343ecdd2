package validators

import (
	"context"

	"github.com/solheim-labs/exaction/internal/callbacks"
	"github.com/solheim-labs/exaction/internal/secretheaders"
)

// Bitbank validates bitbank's envelope:
//
//	{"success": 0 | 1, "data": {"code": int}}
//
// bitbank reports failure via success=0 even on an HTTP 200, and the
// error detail is a numeric code only (bitbank's published error-code
// table carries the human-readable meaning, not the response itself),
// so api_error_message_1 is left empty rather than guessed at.
type Bitbank struct{}

func (Bitbank) BeforeRequest(ctx context.Context, url string, headers *secretheaders.Headers, body string) error {
	return nil
}

func (Bitbank) AfterRequest(ctx context.Context, resp callbacks.HTTPResponseData) error {
	success, code := bitbankExtractErrorInfo(resp.ResponseBodyText)

	httpOK := isHTTPSuccess(resp.HTTPStatusCode)
	envelopeOK := success == nil || *success
	if httpOK && envelopeOK {
		return nil
	}

	var codeStr string
	if code != nil {
		codeStr = itoa(*code)
	}

	return raise("bitbank", resp.HTTPStatusCode, codeStr, "", resp.ResponseBodyText)
}

func bitbankExtractErrorInfo(body string) (success *bool, code *int64) {
	m, ok := decode(body)
	if !ok {
		return nil, nil
	}
	if v, present := m["success"]; present {
		if n, ok := asInt(v); ok {
			b := n != 0
			success = &b
		}
	}
	data, ok := m["data"].(map[string]any)
	if !ok {
		return success, nil
	}
	if v, present := data["code"]; present {
		if n, ok := asInt(v); ok {
			code = &n
		}
	}
	return success, code
}
