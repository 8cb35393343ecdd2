package exaction

import (
	"time"

	"github.com/solheim-labs/exaction/internal/decimaljson"
)

// HttpResponseData is an immutable snapshot of one completed HTTP
// exchange: both what was sent and what came back, so a post-response
// hook (a validator, a rate limiter) never needs to reach back into the
// transport layer.
type HttpResponseData struct {
	HTTPStatusCode   int
	Headers          map[string][]string
	ResponseBodyText string
	ResponseBodyRaw  []byte
	URL              string
	Reason           string
	Elapsed          time.Duration
	Cookies          map[string]string
	Encoding         string
	RequestMethod    Method
	RequestURL       string
	RequestPath      string
}

// Payload wraps a JSON string and knows how to reduce the full response
// body to the substring that holds domain data, excluding envelope
// metadata. The default Payload returns the body unmodified; exchange
// plug-ins that nest their data under a field ("data", "result", ...)
// compose a FieldPayload instead.
type Payload interface {
	// ContentStr returns the payload's JSON substring. Must always be a
	// valid, self-contained JSON value.
	ContentStr() string
}

// RawPayload is a Payload whose content is the entire response body.
type RawPayload struct {
	Raw string
}

// ContentStr implements Payload.
func (p RawPayload) ContentStr() string { return p.Raw }

// FieldPayload is a Payload whose content is the object or array nested
// under a named top-level field, extracted string-level (never via
// re-serialization) so the numeric literals inside stay byte-exact.
type FieldPayload struct {
	Raw   string
	Field string
}

// ContentStr implements Payload. Falls back to the full body if the
// named field is absent or is not an object/array — a defensive default,
// not a silently-accepted protocol drift; callers inspecting a specific
// exchange's envelope should treat an unexpected fallback as a bug signal.
func (p FieldPayload) ContentStr() string {
	if inner, ok := decimaljson.ExtractFieldWithObject(p.Raw, p.Field); ok {
		return inner
	}
	return p.Raw
}

// Message wraps one parsed response: optional envelope metadata, the
// Payload substring, and the capability to parse that substring into a
// domain value of type D. metadata is nil when the envelope carries no
// such fields (a plain JSON array response, for instance).
type Message[D any] struct {
	Metadata map[string]any
	Payload  Payload
}

// ToDomainModel parses the message's payload into D via the
// decimal-preserving parser.
func (m Message[D]) ToDomainModel() (D, error) {
	return decimaljson.Parse[D](m.Payload.ContentStr())
}

// NewMessage builds a Message from a Payload and the envelope metadata
// already extracted from the response body (nil when the envelope
// carries none).
func NewMessage[D any](payload Payload, metadata map[string]any) Message[D] {
	return Message[D]{Metadata: metadata, Payload: payload}
}
