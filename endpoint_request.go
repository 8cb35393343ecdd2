// Package exaction is a unified client library for cryptocurrency
// exchange HTTP APIs: a uniform session/request/response surface over
// heterogeneous REST endpoints, each with its own authentication scheme,
// error envelope, rate-limit regime, and numeric-precision quirks.
package exaction

import (
	"encoding/json"
	"net/url"
	"sort"
	"strings"

	"github.com/solheim-labs/exaction/internal/secretheaders"
)

// urlEscape percent-encodes s for use in a query string, matching
// net/url's query-escaping rules (space becomes "+").
func urlEscape(s string) string {
	return url.QueryEscape(s)
}

// Method is an HTTP method the request execution pipeline supports.
type Method string

const (
	MethodGET  Method = "GET"
	MethodPOST Method = "POST"
)

// KV is one key/value pair of a request body, stored as an ordered slice
// rather than a map so insertion order survives into canonical JSON
// serialization for signing (Go maps deliberately randomize iteration
// order; a plain map cannot represent "insertion order of the body
// mapping" as required by the signature builders in §4.5).
type KV struct {
	Key   string
	Value any
}

// EndpointRequest is an immutable description of one HTTP call: method,
// base URL, an optional stub path segment, the resource path, query
// params, headers, and an optional body. Nothing about it is mutated
// after Builder.Get/Builder.Post returns it.
type EndpointRequest struct {
	method               Method
	baseURL              string
	stubPath             string
	relativeResourcePath string
	params               []KV
	headers              *secretheaders.Headers
	body                 []KV
}

// Method returns the request's HTTP method.
func (r *EndpointRequest) Method() Method { return r.method }

// BaseURL returns the request's base URL, e.g. "https://api.binance.com".
func (r *EndpointRequest) BaseURL() string { return r.baseURL }

// Headers returns the request's header container.
func (r *EndpointRequest) Headers() *secretheaders.Headers { return r.headers }

// Params returns the request's query parameters in insertion order.
func (r *EndpointRequest) Params() []KV { return r.params }

// Body returns the request's body fields in insertion order, or nil for
// a bodyless request.
func (r *EndpointRequest) Body() []KV { return r.body }

// EndpointPath returns stub_path ⊕ relative_resource_path: the
// concatenation used by signers. If stub_path is non-empty it is
// guaranteed to begin with "/" — stripping this leading slash breaks
// every signed endpoint, since the signing message embeds this exact
// string (§4.5).
func (r *EndpointRequest) EndpointPath() string {
	if r.stubPath == "" {
		return ensureLeadingSlash(r.relativeResourcePath)
	}
	return ensureLeadingSlash(r.stubPath) + ensureLeadingSlash(r.relativeResourcePath)
}

// QueryString returns the URL-encoded query string for Params, sorted by
// key for determinism. Does not include a leading "?".
func (r *EndpointRequest) QueryString() string {
	return encodeParams(r.params)
}

// APIEndpoint returns base_url + endpoint_path + encoded params.
func (r *EndpointRequest) APIEndpoint() string {
	ep := r.baseURL + r.EndpointPath()
	if qs := r.QueryString(); qs != "" {
		ep += "?" + qs
	}
	return ep
}

// BodyJSON returns the canonical compact JSON of Body (no spaces,
// insertion order preserved), or "" if the request has no body.
func (r *EndpointRequest) BodyJSON() string {
	if len(r.body) == 0 {
		return ""
	}
	return CompactJSON(r.body)
}

// ensureLeadingSlash prepends "/" to s unless it already starts with one.
func ensureLeadingSlash(s string) string {
	if s == "" {
		return ""
	}
	if strings.HasPrefix(s, "/") {
		return s
	}
	return "/" + s
}

// encodeParams URL-encodes an ordered KV slice, sorting by key the way
// net/url.Values.Encode does (signature schemes that embed the query
// string depend on deterministic key order).
func encodeParams(kvs []KV) string {
	if len(kvs) == 0 {
		return ""
	}
	sorted := make([]KV, len(kvs))
	copy(sorted, kvs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Key < sorted[j].Key })

	var b strings.Builder
	for i, kv := range sorted {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(urlEscape(kv.Key))
		b.WriteByte('=')
		b.WriteString(urlEscape(toParamString(kv.Value)))
	}
	return b.String()
}

func toParamString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	default:
		b, _ := json.Marshal(val)
		return strings.Trim(string(b), `"`)
	}
}

// CompactJSON serializes an ordered KV slice as a JSON object with no
// spaces and keys in the slice's own order — the canonical form required
// by every signature builder in §4.5. Unicode is left unescaped.
func CompactJSON(kvs []KV) string {
	var b strings.Builder
	b.WriteByte('{')
	for i, kv := range kvs {
		if i > 0 {
			b.WriteByte(',')
		}
		keyJSON, _ := json.Marshal(kv.Key)
		b.Write(keyJSON)
		b.WriteByte(':')
		b.WriteString(marshalCompactNoEscape(kv.Value))
	}
	b.WriteByte('}')
	return b.String()
}

// marshalCompactNoEscape marshals v to compact JSON without HTML
// escaping (">", "<", "&" kept literal) so the signed byte string matches
// what a caller would construct by hand.
func marshalCompactNoEscape(v any) string {
	var buf strings.Builder
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
	return strings.TrimRight(buf.String(), "\n")
}
