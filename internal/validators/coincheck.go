package validators

import (
	"context"

	"github.com/solheim-labs/exaction/internal/callbacks"
	"github.com/solheim-labs/exaction/internal/secretheaders"
)

// Coincheck validates the {"success": bool, "error": string} envelope
// Coincheck returns on failed requests. A non-boolean success field
// (the wrong JSON type) is treated the same as absent, matching the
// reference validator's type-checked extraction.
type Coincheck struct{}

func (Coincheck) BeforeRequest(ctx context.Context, url string, headers *secretheaders.Headers, body string) error {
	return nil
}

func (Coincheck) AfterRequest(ctx context.Context, resp callbacks.HTTPResponseData) error {
	success, errMsg := coincheckExtractErrorInfo(resp.ResponseBodyText)

	httpOK := isHTTPSuccess(resp.HTTPStatusCode)
	envelopeOK := success == nil || *success
	if httpOK && envelopeOK {
		return nil
	}

	var msgStr string
	if errMsg != nil {
		msgStr = *errMsg
	}

	return raise("coincheck", resp.HTTPStatusCode, "", msgStr, resp.ResponseBodyText)
}

func coincheckExtractErrorInfo(body string) (success *bool, errMsg *string) {
	m, ok := decode(body)
	if !ok {
		return nil, nil
	}
	if v, present := m["success"]; present {
		if b, ok := asBool(v); ok {
			success = &b
		}
	}
	if v, present := m["error"]; present {
		if s, ok := asString(v); ok {
			errMsg = &s
		}
	}
	return success, errMsg
}
