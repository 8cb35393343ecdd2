// Package validators implements the six exchange-specific response
// validators (§4.9). Each is a callbacks.Callback whose AfterRequest
// inspects the HTTP status and the exchange's own error envelope and
// raises an ExchangeApiError when either signals failure; BeforeRequest
// is a no-op for all of them since none inspect the outgoing request.
package validators

import (
	"encoding/json"

	apierrors "github.com/solheim-labs/exaction/pkg/errors"
)

// isHTTPSuccess reports whether status falls in the 2xx range, the same
// boundary the rest of the pipeline uses to decide whether a response
// needs validation at all.
func isHTTPSuccess(status int) bool {
	return status >= 200 && status < 300
}

// raise builds the ExchangeApiError with the fields every validator
// below fills in. exchange names which exchange's envelope failed to
// validate; NewExchangeApiError composes the human-readable description
// from it plus the status/code/message triple.
func raise(exchange string, httpStatus int, apiStatusCode1, apiErrorMessage1, responseBody string) error {
	return apierrors.NewExchangeApiError(exchange, httpStatus, apiStatusCode1, apiErrorMessage1, responseBody)
}

// decode is the shared best-effort JSON decode every validator's error
// extraction starts from: a body that isn't even JSON yields ok=false
// rather than propagating a parse error, matching the reference
// validators' "return (None, None) on invalid JSON" behavior.
func decode(body string) (map[string]any, bool) {
	var m map[string]any
	if err := json.Unmarshal([]byte(body), &m); err != nil {
		return nil, false
	}
	return m, true
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asBool(v any) (bool, bool) {
	b, ok := v.(bool)
	return b, ok
}

// asInt accepts only a JSON number that round-trips cleanly to int64 —
// a numeric-looking string (e.g. "-1121") is deliberately rejected, per
// the reference validators' "None because not int type" behavior.
func asInt(v any) (int64, bool) {
	n, ok := v.(float64)
	if !ok {
		return 0, false
	}
	if n != float64(int64(n)) {
		return 0, false
	}
	return int64(n), true
}

func itoa(n int64) string {
	neg := n < 0
	if neg {
		n = -n
	}
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
