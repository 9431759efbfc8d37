package action

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// UsageErrorCode categorizes usage errors.
type UsageErrorCode string

const (
	// ErrCodeInvalidAction indicates a guarded operation received a value
	// that fails validation.
	ErrCodeInvalidAction UsageErrorCode = "INVALID_ACTION"

	// ErrCodeNotAsync indicates an async-only operation was called on a
	// sync action.
	ErrCodeNotAsync UsageErrorCode = "NOT_ASYNC"

	// ErrCodeEmptyType indicates a constructor was called with an empty
	// type string.
	ErrCodeEmptyType UsageErrorCode = "EMPTY_TYPE"

	// ErrCodeBadValue indicates a payload that cannot take canonical form
	// (NaN or infinite floats) or a Go value with no Value representation.
	ErrCodeBadValue UsageErrorCode = "BAD_VALUE"

	// ErrCodeMalformed indicates wire bytes that do not decode to an
	// action under the strict codec.
	ErrCodeMalformed UsageErrorCode = "MALFORMED"
)

// UsageError reports a misuse of the package: a guarded operation invoked
// on a value that fails validation, an async-only operation on a sync
// action, or inputs the convention cannot represent. The offending value
// travels with the error in serialized form.
//
// Validation itself never produces a UsageError; IsValid and Check report
// shape problems as data. UsageError is the signal that a caller skipped
// that gate.
type UsageError struct {
	// Code identifies the error category.
	Code UsageErrorCode

	// Op names the operation that failed, e.g. "Continue".
	Op string

	// Message is a human-readable description.
	Message string

	// Value is the serialized form of the offending value.
	Value string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *UsageError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("%s: %s: %s (value=%s)", e.Code, e.Op, e.Message, e.Value)
	}
	return fmt.Sprintf("%s: %s: %s", e.Code, e.Op, e.Message)
}

// Unwrap returns the underlying error.
func (e *UsageError) Unwrap() error {
	return e.Err
}

// IsInvalidAction reports whether err is a validation usage error.
// Uses errors.As to handle wrapped errors.
func IsInvalidAction(err error) bool {
	return hasCode(err, ErrCodeInvalidAction)
}

// IsNotAsync reports whether err signals an async-only operation applied
// to a sync action.
func IsNotAsync(err error) bool {
	return hasCode(err, ErrCodeNotAsync)
}

// IsEmptyType reports whether err signals a constructor called without a
// type.
func IsEmptyType(err error) bool {
	return hasCode(err, ErrCodeEmptyType)
}

// IsBadValue reports whether err signals an unrepresentable payload.
func IsBadValue(err error) bool {
	return hasCode(err, ErrCodeBadValue)
}

// IsMalformed reports whether err signals undecodable wire bytes.
func IsMalformed(err error) bool {
	return hasCode(err, ErrCodeMalformed)
}

func hasCode(err error, code UsageErrorCode) bool {
	var ue *UsageError
	if errors.As(err, &ue) {
		return ue.Code == code
	}
	return false
}

func newInvalidActionError(op string, v any, errs []FieldError) *UsageError {
	msg := "not a valid action"
	if len(errs) > 0 {
		parts := make([]string, len(errs))
		for i, fe := range errs {
			parts[i] = fe.Error()
		}
		msg = "not a valid action: " + strings.Join(parts, "; ")
	}
	return &UsageError{
		Code:    ErrCodeInvalidAction,
		Op:      op,
		Message: msg,
		Value:   describeValue(v),
	}
}

func newNotAsyncError(op string, a *Action) *UsageError {
	return &UsageError{
		Code:    ErrCodeNotAsync,
		Op:      op,
		Message: "operation requires an async action",
		Value:   describeValue(a),
	}
}

func newEmptyTypeError(op string) *UsageError {
	return &UsageError{
		Code:    ErrCodeEmptyType,
		Op:      op,
		Message: "action type must be a non-empty string",
	}
}

func newBadValueError(op string, v any, cause error) *UsageError {
	return &UsageError{
		Code:    ErrCodeBadValue,
		Op:      op,
		Message: "value has no canonical form",
		Value:   describeValue(v),
		Err:     cause,
	}
}

func newMalformedError(op string, detail string, cause error) *UsageError {
	return &UsageError{
		Code:    ErrCodeMalformed,
		Op:      op,
		Message: detail,
		Err:     cause,
	}
}

// describeValue serializes an arbitrary value for error reporting.
// Canonical JSON where possible, Go formatting as a last resort.
func describeValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "<nil>"
	case Value:
		if b, err := MarshalCanonical(val); err == nil {
			return string(b)
		}
	case *Action:
		if val == nil {
			return "<nil>"
		}
		return describeValue(val.record())
	case Action:
		return describeValue(val.record())
	}
	if b, err := json.Marshal(v); err == nil {
		return string(b)
	}
	return fmt.Sprintf("%v", v)
}
