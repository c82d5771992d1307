package dispatch

import (
	"errors"
	"fmt"
)

// Error is a handler failure reported inside a Result.
//
// Dispatch never returns errors past its boundary; the Error travels in
// Result.Err so callers can branch on Code while users see Result.Message.
type Error struct {
	// Code identifies the failure category.
	Code Code

	// Message is a human-readable description.
	Message string

	// Intent is the intent being dispatched.
	Intent string

	// Err is the underlying cause, if any.
	Err error
}

// Code categorizes dispatch failures.
type Code string

const (
	// CodeNotFound indicates no stored record matched the reference.
	CodeNotFound Code = "NOT_FOUND"

	// CodeStoreFailure indicates the record store rejected the operation.
	CodeStoreFailure Code = "STORE_FAILURE"

	// CodeInvalidInput indicates parameters that fail handler validation.
	CodeInvalidInput Code = "INVALID_INPUT"

	// CodeNothingToUndo indicates an undo request with an empty history.
	CodeNothingToUndo Code = "NOTHING_TO_UNDO"
)

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Intent != "" {
		msg += fmt.Sprintf(" (intent=%s)", e.Intent)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// ErrorCode returns the Code of a dispatch Error anywhere in err's chain,
// or "" when there is none.
func ErrorCode(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// IsNotFound reports whether err is a NOT_FOUND dispatch error.
func IsNotFound(err error) bool {
	return ErrorCode(err) == CodeNotFound
}

// IsStoreFailure reports whether err is a STORE_FAILURE dispatch error.
func IsStoreFailure(err error) bool {
	return ErrorCode(err) == CodeStoreFailure
}

func newError(code Code, intent, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Intent: intent, Err: cause}
}
