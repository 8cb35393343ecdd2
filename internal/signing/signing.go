// Package signing implements the per-exchange signature builders (§4.5):
// deterministic signing-message construction plus HMAC-SHA256. Each
// exchange supplies a pure function building the exact byte string fed
// to HMAC; this package never talks to an HTTP client or a Session.
package signing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/url"
	"strings"
)

// Param is one query or body key/value pair, kept in caller-supplied
// order. Signing messages are order-sensitive (§4.5's insertion-order
// requirement), so this package never re-sorts a Param slice.
type Param struct {
	Key   string
	Value string
}

// HMACSHA256Hex computes the lowercase hex HMAC-SHA256 of message under
// secret, per §4.5's "HMAC-SHA256 with the secret key as bytes; output is
// lowercase hex."
func HMACSHA256Hex(secret, message string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(message))
	return hex.EncodeToString(mac.Sum(nil))
}

// QueryStringInsertionOrder renders params as "k=v&k=v&..." in the exact
// order given, percent-encoding each component — the form signing
// messages embed, as opposed to EndpointRequest.QueryString() which
// sorts by key for wire transmission.
func QueryStringInsertionOrder(params []Param) string {
	if len(params) == 0 {
		return ""
	}
	var b strings.Builder
	for i, p := range params {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.Value))
	}
	return b.String()
}

// CompactJSONInsertionOrder renders params as a compact JSON object (no
// spaces) preserving insertion order, per §4.5/§6's canonical-JSON
// requirement for signed bodies.
func CompactJSONInsertionOrder(params []Param) string {
	var b strings.Builder
	b.WriteByte('{')
	for i, p := range params {
		if i > 0 {
			b.WriteByte(',')
		}
		key, _ := json.Marshal(p.Key)
		b.Write(key)
		b.WriteByte(':')
		b.WriteString(jsonLiteral(p.Value))
	}
	b.WriteByte('}')
	return b.String()
}

// jsonLiteral renders v as the JSON literal a caller meant: if v parses
// as a JSON number or is exactly "true"/"false"/"null" it is emitted
// unquoted, otherwise it is emitted as a JSON string. This lets callers
// pass pre-formatted numeric strings for signed bodies (§9's open
// question resolution: callers control the literal form to avoid
// decimal-canonicalization drift) while still signing ordinary string
// fields correctly.
func jsonLiteral(v string) string {
	switch v {
	case "true", "false", "null":
		return v
	}
	if isJSONNumber(v) {
		return v
	}
	encoded, _ := json.Marshal(v)
	return string(encoded)
}

func isJSONNumber(s string) bool {
	if s == "" {
		return false
	}
	var num json.Number = json.Number(s)
	var f float64
	return json.Unmarshal([]byte(num), &f) == nil
}
