package action

import (
	"fmt"
	"reflect"
	"sort"
)

// Validation codes reported by Check.
const (
	CheckNotRecord     = "NOT_RECORD"
	CheckMissingKey    = "MISSING_KEY"
	CheckUnexpectedKey = "UNEXPECTED_KEY"
	CheckTypeNotString = "TYPE_NOT_STRING"
	CheckMetaNotRecord = "META_NOT_RECORD"
	CheckSignMismatch  = "SIGN_MISMATCH"
)

// FieldError reports a single structural violation found by Check.
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e FieldError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("[%s] %s", e.Code, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Required and allowed key sets. The allowed sets are exact: a key outside
// them invalidates the record, which keeps the shape closed.
var (
	requiredActionKeys = []string{"type", "error", "meta"}
	allowedActionKeys  = map[string]bool{"type": true, "payload": true, "error": true, "meta": true}

	requiredMetaKeys = []string{"sign", "id", "ctime", "async", "uniq"}
	allowedMetaKeys  = map[string]bool{"sign": true, "id": true, "pid": true, "ctime": true, "utime": true, "async": true, "uniq": true}
	asyncOnlyKeys    = map[string]bool{"phase": true, "progress": true}
)

// IsValid reports whether v conforms to the action shape. It never panics
// and returns false for any non-conforming input: non-records, arrays,
// functions, arbitrary structs, records with missing or extra keys, and
// records signed with the wrong marker.
func IsValid(v any) bool {
	return len(Check(v)) == 0
}

// Check validates v against the action shape and returns every violation
// found, in deterministic order. An empty result means v is a valid
// action.
//
// The checks are structural and literal: key presence, exact key sets,
// type being a string, meta being a record, and the sign marker. Field
// values beyond those are not inspected; value-level strictness is the
// schema package's concern.
func Check(v any) []FieldError {
	rec, ok := record(v)
	if !ok {
		return []FieldError{{
			Code:    CheckNotRecord,
			Message: fmt.Sprintf("not a plain record: %T", v),
		}}
	}

	var errs []FieldError
	for _, k := range requiredActionKeys {
		if _, present := rec[k]; !present {
			errs = append(errs, FieldError{Field: k, Code: CheckMissingKey, Message: "required key is missing"})
		}
	}
	for _, k := range sortedRecordKeys(rec) {
		if !allowedActionKeys[k] {
			errs = append(errs, FieldError{Field: k, Code: CheckUnexpectedKey, Message: "key is not part of the action shape"})
		}
	}

	if t, present := rec["type"]; present && !isString(t) {
		errs = append(errs, FieldError{Field: "type", Code: CheckTypeNotString, Message: fmt.Sprintf("want string, got %T", t)})
	}

	rawMeta, present := rec["meta"]
	if !present {
		return errs
	}
	meta, ok := record(rawMeta)
	if !ok {
		return append(errs, FieldError{Field: "meta", Code: CheckMetaNotRecord, Message: fmt.Sprintf("not a plain record: %T", rawMeta)})
	}

	for _, k := range requiredMetaKeys {
		if _, present := meta[k]; !present {
			errs = append(errs, FieldError{Field: "meta." + k, Code: CheckMissingKey, Message: "required key is missing"})
		}
	}

	// phase and progress are admissible only under async == true.
	async := isTrue(meta["async"])
	for _, k := range sortedRecordKeys(meta) {
		if allowedMetaKeys[k] || (async && asyncOnlyKeys[k]) {
			continue
		}
		errs = append(errs, FieldError{Field: "meta." + k, Code: CheckUnexpectedKey, Message: "key is not part of the metadata shape"})
	}

	if sign, present := meta["sign"]; present && !isSign(sign) {
		errs = append(errs, FieldError{Field: "meta.sign", Code: CheckSignMismatch, Message: fmt.Sprintf("want %q", Sign)})
	}

	return errs
}

// record views v as a plain key-value record. Genuine data records only:
// maps with string keys, Object, and Action (through its wire shape).
// Arrays, primitives, functions, and struct instances are not records.
func record(v any) (map[string]any, bool) {
	switch val := v.(type) {
	case map[string]any:
		return val, true
	case Object:
		m := make(map[string]any, len(val))
		for k, e := range val {
			m[k] = e
		}
		return m, true
	case map[string]Value:
		m := make(map[string]any, len(val))
		for k, e := range val {
			m[k] = e
		}
		return m, true
	case *Action:
		if val == nil {
			return nil, false
		}
		return val.record(), true
	case Action:
		return val.record(), true
	case nil:
		return nil, false
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String {
		m := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			m[iter.Key().String()] = iter.Value().Interface()
		}
		return m, true
	}
	return nil, false
}

func sortedRecordKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func isString(v any) bool {
	switch v.(type) {
	case string, String:
		return true
	}
	return false
}

func isTrue(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case Bool:
		return bool(val)
	}
	return false
}

func isSign(v any) bool {
	switch val := v.(type) {
	case string:
		return val == Sign
	case String:
		return string(val) == Sign
	}
	return false
}
