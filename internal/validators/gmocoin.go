package validators

import (
	"context"

	"github.com/solheim-labs/exaction/internal/callbacks"
	"github.com/solheim-labs/exaction/internal/secretheaders"
)

// GMOCoin validates GMO Coin's envelope:
//
//	{"status": int, "messages": [{"message_code": "...", "message_string": "..."}]}
//
// status is 0 on success even when the HTTP status itself is 200, so
// GMO Coin is validated on the envelope's status field rather than the
// HTTP status code alone. Only the first entry of messages is surfaced
// as api_error_message_1, matching the other exchanges' single-message
// contract.
type GMOCoin struct{}

func (GMOCoin) BeforeRequest(ctx context.Context, url string, headers *secretheaders.Headers, body string) error {
	return nil
}

func (GMOCoin) AfterRequest(ctx context.Context, resp callbacks.HTTPResponseData) error {
	status, code, msg := gmocoinExtractErrorInfo(resp.ResponseBodyText)

	httpOK := isHTTPSuccess(resp.HTTPStatusCode)
	envelopeOK := status == nil || *status == 0
	if httpOK && envelopeOK {
		return nil
	}

	apiStatus := code
	if apiStatus == "" && status != nil {
		apiStatus = itoa(*status)
	}

	return raise("gmocoin", resp.HTTPStatusCode, apiStatus, msg, resp.ResponseBodyText)
}

func gmocoinExtractErrorInfo(body string) (status *int64, code, message string) {
	m, ok := decode(body)
	if !ok {
		return nil, "", ""
	}
	if v, present := m["status"]; present {
		if n, ok := asInt(v); ok {
			status = &n
		}
	}
	messages, ok := m["messages"].([]any)
	if !ok || len(messages) == 0 {
		return status, "", ""
	}
	first, ok := messages[0].(map[string]any)
	if !ok {
		return status, "", ""
	}
	if v, ok := asString(first["message_code"]); ok {
		code = v
	}
	if v, ok := asString(first["message_string"]); ok {
		message = v
	}
	return status, code, message
}
