// Package secretheaders implements a case-insensitive header container
// that redacts sensitive values in any string rendering, so that a stray
// log.Info().Interface("headers", h) call never leaks an API secret.
package secretheaders

import (
	"net/http"
	"sort"
	"strings"
)

// sensitiveTokens is the only redaction policy: a header name whose
// uppercased form contains any of these substrings is treated as a
// secret for masking purposes.
var sensitiveTokens = []string{"KEY", "SIGN", "SECRET", "TOKEN", "AUTH"}

type entry struct {
	name  string // last-assigned casing
	value string
}

// Headers is a case-insensitive string->string map that masks sensitive
// values whenever it is stringified, logged, or otherwise rendered as
// text. Values are never dropped: Get/ToHTTPHeader always expose the real
// value, only String()/the masked dict mask it.
type Headers struct {
	entries map[string]entry // keyed by strings.ToUpper(name)
}

// New returns an empty Headers.
func New() *Headers {
	return &Headers{entries: make(map[string]entry)}
}

// FromMap builds a Headers from a plain map, preserving no particular
// casing priority beyond Go map iteration order (last write wins on
// collision, as with any map literal).
func FromMap(m map[string]string) *Headers {
	h := New()
	for k, v := range m {
		h.Set(k, v)
	}
	return h
}

// FromHTTPHeaders builds a Headers from a http.Header, concatenating
// repeated values with a comma the way http.Header.Get would not, since
// SecretHeaders has no multi-value slot.
func FromHTTPHeaders(hdr http.Header) *Headers {
	h := New()
	for k, vs := range hdr {
		h.Set(k, strings.Join(vs, ", "))
	}
	return h
}

// Set stores value under name, case-insensitively. The casing of the most
// recent Set call is what subsequent iteration/rendering uses.
func (h *Headers) Set(name, value string) {
	h.entries[strings.ToUpper(name)] = entry{name: name, value: value}
}

// Get returns the real (unmasked) value for name and whether it exists.
func (h *Headers) Get(name string) (string, bool) {
	e, ok := h.entries[strings.ToUpper(name)]
	return e.value, ok
}

// Delete removes name, case-insensitively.
func (h *Headers) Delete(name string) {
	delete(h.entries, strings.ToUpper(name))
}

// Len returns the number of distinct header names.
func (h *Headers) Len() int {
	return len(h.entries)
}

// Update merges other into h, Set-ing every entry (last-assigned casing
// from other wins on name collisions).
func (h *Headers) Update(other *Headers) {
	for _, e := range other.entries {
		h.Set(e.name, e.value)
	}
}

// Copy returns an independent deep copy of h.
func (h *Headers) Copy() *Headers {
	c := New()
	for k, e := range h.entries {
		c.entries[k] = e
	}
	return c
}

// Names returns the stored casing of every header name, sorted for
// deterministic iteration.
func (h *Headers) Names() []string {
	names := make([]string, 0, len(h.entries))
	for _, e := range h.entries {
		names = append(names, e.name)
	}
	sort.Strings(names)
	return names
}

// ToHTTPHeader converts h to the standard library's http.Header type,
// exposing actual (unmasked) values — this is the accessor boundary
// where real secret material is allowed to appear, at the point it must
// be attached to an outgoing request.
func (h *Headers) ToHTTPHeader() http.Header {
	out := make(http.Header, len(h.entries))
	for _, e := range h.entries {
		out.Set(e.name, e.value)
	}
	return out
}

// isSensitive reports whether name's uppercased form contains any of the
// sensitive tokens.
func isSensitive(name string) bool {
	upper := strings.ToUpper(name)
	for _, tok := range sensitiveTokens {
		if strings.Contains(upper, tok) {
			return true
		}
	}
	return false
}

// mask redacts a value per §4.3: first 3 characters plus a fixed-length
// mask if longer than 3 characters, else a full mask.
func mask(value string) string {
	if len(value) > 3 {
		return value[:3] + "********"
	}
	return "**********"
}

// String renders h with every sensitive value masked. This is the only
// rendering path callers should route through a logger.
func (h *Headers) String() string {
	var b strings.Builder
	b.WriteByte('{')
	names := h.Names()
	for i, name := range names {
		e := h.entries[strings.ToUpper(name)]
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(name)
		b.WriteString(": ")
		if isSensitive(name) {
			b.WriteString(mask(e.value))
		} else {
			b.WriteString(e.value)
		}
	}
	b.WriteByte('}')
	return b.String()
}

// MaskedMap returns a plain map with sensitive values masked, for callers
// that want a masked snapshot rather than the lazy String() rendering.
func (h *Headers) MaskedMap() map[string]string {
	out := make(map[string]string, len(h.entries))
	for _, e := range h.entries {
		if isSensitive(e.name) {
			out[e.name] = mask(e.value)
		} else {
			out[e.name] = e.value
		}
	}
	return out
}

// Equal compares h and other case-insensitively by name and exactly by
// value.
func (h *Headers) Equal(other *Headers) bool {
	if other == nil {
		return false
	}
	if len(h.entries) != len(other.entries) {
		return false
	}
	for k, e := range h.entries {
		oe, ok := other.entries[k]
		if !ok || oe.value != e.value {
			return false
		}
	}
	return true
}

// EqualMap compares h against a plain map, case-insensitively by key.
func (h *Headers) EqualMap(m map[string]string) bool {
	if len(h.entries) != len(m) {
		return false
	}
	for k, v := range m {
		got, ok := h.Get(k)
		if !ok || got != v {
			return false
		}
	}
	return true
}
