package action

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strings"
	"unicode/utf16"
)

// Value is a sealed interface over the plain value types an action payload
// may carry. Only Null, String, Int, Float, Bool, Array, and Object
// implement it. Functions, channels, domain structs, and cyclic data have
// no representation here on purpose.
type Value interface {
	plainValue() // sealed
}

// Null represents a JSON null. An explicit type rather than a nil Value, so
// "payload is null" and "payload is absent" stay distinguishable.
type Null struct{}

func (Null) plainValue() {}

// MarshalJSON implements json.Marshaler for Null.
func (Null) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

// String represents a string value.
type String string

func (String) plainValue() {}

// Int represents an integer value. Always int64.
type Int int64

func (Int) plainValue() {}

// Float represents a non-integral JSON number. NaN and infinities are not
// representable on the wire and are rejected at serialization time.
type Float float64

func (Float) plainValue() {}

// Bool represents a boolean value.
type Bool bool

func (Bool) plainValue() {}

// Array represents an ordered sequence of plain values.
type Array []Value

func (Array) plainValue() {}

// Object represents a mapping from string keys to plain values.
// Use SortedKeys for deterministic iteration.
type Object map[string]Value

func (Object) plainValue() {}

// MarshalJSON implements json.Marshaler for Object using canonical key
// ordering, so incidental json.Marshal calls stay deterministic.
func (o Object) MarshalJSON() ([]byte, error) {
	return MarshalCanonical(o)
}

// SortedKeys returns keys in RFC 8785 canonical order (UTF-16 code units).
// Go's sort.Strings compares UTF-8 bytes, which orders supplementary-plane
// characters differently; canonical identity requires the UTF-16 order.
func (o Object) SortedKeys() []string {
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeysUTF16)
	return keys
}

// compareKeysUTF16 compares strings by UTF-16 code unit, per RFC 8785.
func compareKeysUTF16(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))

	n := min(len(a16), len(b16))
	for i := 0; i < n; i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}

	switch {
	case len(a16) < len(b16):
		return -1
	case len(a16) > len(b16):
		return 1
	default:
		return 0
	}
}

// ParseValue decodes JSON bytes into a Value. Integral number tokens that
// fit int64 become Int; every other number becomes Float. Unlike
// encoding/json's default decoding, no precision is lost for large ints.
func ParseValue(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	// Reject trailing garbage after the first value.
	if dec.More() {
		return nil, fmt.Errorf("unexpected data after JSON value")
	}

	return FromGo(raw)
}

// FromGo converts a decoded-JSON or decoded-YAML shape into a Value.
// Accepted inputs: nil, Value, bool, string, Go integer types, floats
// (integral floats in int64 range fold to Int, matching ECMAScript number
// semantics), json.Number, []any, and map[string]any. Anything else is a
// usage error.
func FromGo(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return val, nil
	case bool:
		return Bool(val), nil
	case string:
		return String(val), nil
	case int:
		return Int(val), nil
	case int8:
		return Int(val), nil
	case int16:
		return Int(val), nil
	case int32:
		return Int(val), nil
	case int64:
		return Int(val), nil
	case uint:
		return uintValue(uint64(val))
	case uint8:
		return Int(val), nil
	case uint16:
		return Int(val), nil
	case uint32:
		return Int(val), nil
	case uint64:
		return uintValue(val)
	case float32:
		return floatValue(float64(val)), nil
	case float64:
		return floatValue(val), nil
	case json.Number:
		return numberValue(val)
	case []any:
		arr := make(Array, len(val))
		for i, elem := range val {
			converted, err := FromGo(elem)
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
			arr[i] = converted
		}
		return arr, nil
	case map[string]any:
		obj := make(Object, len(val))
		for k, elem := range val {
			converted, err := FromGo(elem)
			if err != nil {
				return nil, fmt.Errorf("object[%q]: %w", k, err)
			}
			obj[k] = converted
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("unsupported payload type: %T", v)
	}
}

// numberValue converts a json.Number token. Lexically integral tokens
// become Int when they fit; everything else falls back to Float.
func numberValue(n json.Number) (Value, error) {
	s := string(n)
	if !strings.ContainsAny(s, ".eE") {
		if i, err := n.Int64(); err == nil {
			return Int(i), nil
		}
		// Out of int64 range: carry as float, as a JSON consumer would.
	}
	f, err := n.Float64()
	if err != nil {
		return nil, fmt.Errorf("invalid number %q: %w", s, err)
	}
	return floatValue(f), nil
}

// floatValue folds integral floats in int64 range to Int. ECMAScript does
// not distinguish 50.0 from 50, and neither does the canonical form.
func floatValue(f float64) Value {
	if f == math.Trunc(f) && !math.IsInf(f, 0) && f >= math.MinInt64 && f < math.MaxInt64 {
		return Int(int64(f))
	}
	return Float(f)
}

func uintValue(u uint64) (Value, error) {
	if u > math.MaxInt64 {
		return nil, fmt.Errorf("integer %d overflows int64", u)
	}
	return Int(int64(u)), nil
}
