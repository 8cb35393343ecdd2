package validators

import (
	"context"

	"github.com/solheim-labs/exaction/internal/callbacks"
	"github.com/solheim-labs/exaction/internal/secretheaders"
)

// Upbit validates the {"error": {"name": "...", "message": "..."}}
// envelope Upbit returns on failed requests.
type Upbit struct{}

func (Upbit) BeforeRequest(ctx context.Context, url string, headers *secretheaders.Headers, body string) error {
	return nil
}

func (Upbit) AfterRequest(ctx context.Context, resp callbacks.HTTPResponseData) error {
	if isHTTPSuccess(resp.HTTPStatusCode) {
		return nil
	}
	name, msg := upbitExtractErrorInfo(resp.ResponseBodyText)

	return raise("upbit", resp.HTTPStatusCode, name, msg, resp.ResponseBodyText)
}

func upbitExtractErrorInfo(body string) (name, message string) {
	m, ok := decode(body)
	if !ok {
		return "", ""
	}
	errObj, ok := m["error"].(map[string]any)
	if !ok {
		return "", ""
	}
	if v, ok := asString(errObj["name"]); ok {
		name = v
	}
	if v, ok := asString(errObj["message"]); ok {
		message = v
	}
	return name, message
}
