// Package decimaljson parses JSON response bodies into typed Go values
// without ever routing a numeric literal through a binary float. Exchange
// APIs transmit prices and sizes as JSON numbers with up to 30 significant
// digits; decoding through float64 would silently truncate them.
package decimaljson

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"sync"

	"github.com/cockroachdb/apd/v3"

	"github.com/solheim-labs/exaction/pkg/domain"
)

// validatorCache is the process-wide mapping from target type to its
// compiled field table, built lazily on first use. Bounded in practice by
// the number of domain response types the library defines.
var validatorCache sync.Map // map[reflect.Type]*structPlan

// ClearCache clears the process-wide validator cache. Exposed for tests
// that need a clean cache between cases.
func ClearCache() {
	validatorCache = sync.Map{}
}

// structPlan records, for one struct type, which fields are domain.Decimal
// so decoding can convert the matching json.Number leaf without reflecting
// over the whole value on every parse.
type structPlan struct {
	decimalFieldIndex map[string]int // JSON field name -> struct field index
}

func planFor(t reflect.Type) *structPlan {
	if cached, ok := validatorCache.Load(t); ok {
		return cached.(*structPlan)
	}

	plan := &structPlan{decimalFieldIndex: make(map[string]int)}
	decimalType := reflect.TypeOf(domain.Zero())

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Type != decimalType {
			continue
		}
		tag := f.Tag.Get("json")
		name := f.Name
		for j, c := range tag {
			if c == ',' {
				if j > 0 {
					name = tag[:j]
				}
				break
			}
			if j == len(tag)-1 {
				name = tag
			}
		}
		plan.decimalFieldIndex[name] = i
	}

	actual, _ := validatorCache.LoadOrStore(t, plan)
	return actual.(*structPlan)
}

// Parse decodes jsonStr into a new value of type T, converting every JSON
// number into a domain.Decimal field exactly as written in the source
// text (no float64 intermediate), and returns it.
//
// Parsing is two-phase: decode with a number hook that preserves the
// original lexeme (encoding/json's UseNumber), then walk the decoded tree
// converting any field mapped to domain.Decimal in T's compiled plan.
func Parse[T any](jsonStr string) (T, error) {
	var target T

	dec := json.NewDecoder(bytes.NewReader([]byte(jsonStr)))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		var zero T
		return zero, fmt.Errorf("decimaljson: decode: %w", err)
	}

	t := reflect.TypeOf(target)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	converted, err := convertNumbers(raw, t)
	if err != nil {
		var zero T
		return zero, err
	}

	reencoded, err := json.Marshal(converted)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("decimaljson: re-encode: %w", err)
	}

	if err := json.Unmarshal(reencoded, &target); err != nil {
		var zero T
		return zero, fmt.Errorf("decimaljson: unmarshal: %w", err)
	}

	return target, nil
}

// convertNumbers walks a decoded any-tree (maps/slices/json.Number/string/
// bool/nil) and replaces json.Number leaves at positions the struct plan
// marks as decimal fields with their exact decimal string form, so the
// subsequent json.Unmarshal into T sees a quoted decimal literal rather
// than a float. domain.Decimal fields implement json.Unmarshaler-free
// decoding via apd's string parsing at the leaf, done here directly.
func convertNumbers(v any, t reflect.Type) (any, error) {
	switch val := v.(type) {
	case map[string]any:
		var plan *structPlan
		if t != nil && t.Kind() == reflect.Struct {
			plan = planFor(t)
		}
		out := make(map[string]any, len(val))
		for k, sub := range val {
			if plan != nil {
				if idx, ok := plan.decimalFieldIndex[k]; ok {
					fieldType := t.Field(idx).Type
					_ = fieldType
					if num, ok := sub.(json.Number); ok {
						d, _, err := apd.NewFromString(num.String())
						if err != nil {
							return nil, fmt.Errorf("decimaljson: field %q: invalid decimal literal %q: %w", k, num.String(), err)
						}
						out[k] = d.String()
						continue
					}
				}
			}
			converted, err := convertNumbers(sub, fieldTypeOf(t, k))
			if err != nil {
				return nil, err
			}
			out[k] = converted
		}
		return out, nil
	case []any:
		elemType := reflect.TypeOf(nil)
		if t != nil && (t.Kind() == reflect.Slice || t.Kind() == reflect.Array) {
			elemType = t.Elem()
		}
		out := make([]any, len(val))
		for i, sub := range val {
			converted, err := convertNumbers(sub, elemType)
			if err != nil {
				return nil, err
			}
			out[i] = converted
		}
		return out, nil
	case json.Number:
		// A bare number with no struct plan directing it to a decimal
		// field decodes as a plain numeric literal (int or float string).
		return json.Number(val.String()), nil
	default:
		return val, nil
	}
}

// fieldTypeOf returns the Go type of the named field on t, for recursing
// into nested structs; returns an invalid (nil) type for maps/unknowns,
// which simply disables decimal detection one level down.
func fieldTypeOf(t reflect.Type, name string) reflect.Type {
	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := f.Tag.Get("json")
		jsonName := f.Name
		for j, c := range tag {
			if c == ',' {
				jsonName = tag[:j]
				break
			}
			if j == len(tag)-1 {
				jsonName = tag
			}
		}
		if jsonName == name {
			ft := f.Type
			for ft.Kind() == reflect.Pointer {
				ft = ft.Elem()
			}
			return ft
		}
	}
	return nil
}
