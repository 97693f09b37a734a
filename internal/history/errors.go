package history

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes validation failures.
type ErrorCode string

const (
	// ErrCodeEmptySequence indicates a sequence with no entries at validate or compile time.
	ErrCodeEmptySequence ErrorCode = "EMPTY_SEQUENCE"

	// ErrCodeOutOfOrder indicates an entry timestamp earlier than its predecessor's.
	ErrCodeOutOfOrder ErrorCode = "OUT_OF_ORDER"

	// ErrCodeCreateMustBeFirst indicates a create entry at an index other than 0.
	ErrCodeCreateMustBeFirst ErrorCode = "CREATE_MUST_BE_FIRST"

	// ErrCodePatchNeedsCreate indicates a patch entry with no create before it.
	ErrCodePatchNeedsCreate ErrorCode = "PATCH_NEEDS_CREATE"

	// ErrCodeRemoveNeedsCreate indicates a remove entry with no create before it.
	ErrCodeRemoveNeedsCreate ErrorCode = "REMOVE_NEEDS_CREATE"

	// ErrCodePatchAfterRemove indicates a patch entry following the remove entry.
	ErrCodePatchAfterRemove ErrorCode = "PATCH_AFTER_REMOVE"

	// ErrCodeMultipleRemoves indicates more than one remove entry.
	ErrCodeMultipleRemoves ErrorCode = "MULTIPLE_REMOVES"

	// ErrCodeIndexOutOfRange indicates a splice offset outside the sequence.
	ErrCodeIndexOutOfRange ErrorCode = "INDEX_OUT_OF_RANGE"
)

// ValidationError is returned when a candidate entry sequence breaks the
// history grammar. The first violation found ends validation; no partial
// result is ever produced.
type ValidationError struct {
	// Code identifies the violated rule.
	Code ErrorCode

	// Index is the position of the offending entry in the candidate
	// sequence, or -1 when the failure concerns the sequence as a whole.
	Index int

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("%s: %s (index=%d)", e.Code, e.Message, e.Index)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newValidationError(code ErrorCode, index int, message string) *ValidationError {
	return &ValidationError{Code: code, Index: index, Message: message}
}

// CodeOf returns the ErrorCode carried by err, or "" if err is not a
// ValidationError. Uses errors.As to see through wrapping.
func CodeOf(err error) ErrorCode {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Code
	}
	return ""
}

// IsCode reports whether err is a ValidationError with the given code.
func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}
