package validators

import (
	"context"

	"github.com/solheim-labs/exaction/internal/callbacks"
	"github.com/solheim-labs/exaction/internal/secretheaders"
)

// BitFlyer validates the {"status": int, "error_message": string}
// error envelope bitFlyer returns on error responses. status carries a
// richer, bitFlyer-specific error code distinct from the HTTP status,
// hence the dedicated api_status_code_1/api_error_message_1 pair.
type BitFlyer struct{}

func (BitFlyer) BeforeRequest(ctx context.Context, url string, headers *secretheaders.Headers, body string) error {
	return nil
}

func (BitFlyer) AfterRequest(ctx context.Context, resp callbacks.HTTPResponseData) error {
	if isHTTPSuccess(resp.HTTPStatusCode) {
		return nil
	}
	status, msg := bitflyerExtractErrorInfo(resp.ResponseBodyText)

	var statusStr, msgStr string
	if status != nil {
		statusStr = itoa(*status)
	}
	if msg != nil {
		msgStr = *msg
	}

	return raise("bitflyer", resp.HTTPStatusCode, statusStr, msgStr, resp.ResponseBodyText)
}

func bitflyerExtractErrorInfo(body string) (*int64, *string) {
	m, ok := decode(body)
	if !ok {
		return nil, nil
	}
	var status *int64
	if v, present := m["status"]; present {
		if n, ok := asInt(v); ok {
			status = &n
		}
	}
	var msg *string
	if v, present := m["error_message"]; present {
		if s, ok := asString(v); ok {
			msg = &s
		}
	}
	return status, msg
}
