package action

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsageError_Format(t *testing.T) {
	withValue := &UsageError{
		Code:    ErrCodeNotAsync,
		Op:      "Continue",
		Message: "operation requires an async action",
		Value:   `{"type":"ping"}`,
	}
	assert.Equal(t,
		`NOT_ASYNC: Continue: operation requires an async action (value={"type":"ping"})`,
		withValue.Error())

	withoutValue := &UsageError{
		Code:    ErrCodeEmptyType,
		Op:      "New",
		Message: "action type must be a non-empty string",
	}
	assert.Equal(t,
		"EMPTY_TYPE: New: action type must be a non-empty string",
		withoutValue.Error())
}

func TestUsageError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := &UsageError{Code: ErrCodeBadValue, Op: "New", Message: "x", Err: cause}
	assert.True(t, errors.Is(err, cause))
}

func TestErrorHelpers(t *testing.T) {
	byCode := map[UsageErrorCode]func(error) bool{
		ErrCodeInvalidAction: IsInvalidAction,
		ErrCodeNotAsync:      IsNotAsync,
		ErrCodeEmptyType:     IsEmptyType,
		ErrCodeBadValue:      IsBadValue,
		ErrCodeMalformed:     IsMalformed,
	}

	for code, helper := range byCode {
		err := &UsageError{Code: code, Op: "Op", Message: "m"}
		wrapped := fmt.Errorf("context: %w", err)

		assert.True(t, helper(err), code)
		assert.True(t, helper(wrapped), code)
		assert.False(t, helper(nil), code)
		assert.False(t, helper(errors.New("plain")), code)

		for other, otherHelper := range byCode {
			if other != code {
				assert.False(t, otherHelper(err), "%s should not match %s", other, code)
			}
		}
	}
}

func TestUsageError_CarriesOffendingValue(t *testing.T) {
	f := testFactory()
	sync, err := f.New("ping", nil, Options{})
	require.NoError(t, err)

	_, err = f.Continue(sync, nil, 10)
	require.Error(t, err)
	assert.True(t, IsNotAsync(err))
	assert.Contains(t, err.Error(), "NOT_ASYNC: Continue:")
	assert.Contains(t, err.Error(), `"type":"ping"`)
}
