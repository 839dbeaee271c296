// Package errors provides the coded errors shared by the layout engine, the
// CLI and the HTTP API.
//
// Every error that crosses a package boundary carries a [Code], so callers
// can tell a broken layout invariant from bad input or a store outage
// without matching on message text:
//
//   - PRECONDITION, MISSING_ENTRY: a policy or engine invariant broke. The
//     layout pass is aborted and the window stays as it was.
//   - INVALID_*: snapshots, scenarios, policies, formats and keys that fail
//     validation.
//   - NOT_FOUND, FILE_NOT_FOUND, SESSION_NOT_FOUND: unknown names.
//   - NETWORK_ERROR, TIMEOUT: snapshot and session store failures.
//   - INTERNAL_ERROR, UNSUPPORTED: everything else.
//
// Usage:
//
//	err := errors.New(errors.ErrCodePrecondition, "span %d exceeds %d lanes", span, n)
//	if errors.IsInvariant(err) {
//	    // policy bug
//	}
//	return errors.Wrap(errors.ErrCodeNetwork, err, "save snapshot %s", name)
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a machine-readable error class.
type Code string

const (
	ErrCodePrecondition Code = "PRECONDITION"
	ErrCodeMissingEntry Code = "MISSING_ENTRY"

	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidSnapshot Code = "INVALID_SNAPSHOT"
	ErrCodeInvalidScenario Code = "INVALID_SCENARIO"
	ErrCodeInvalidPolicy   Code = "INVALID_POLICY"
	ErrCodeInvalidFormat   Code = "INVALID_FORMAT"
	ErrCodeInvalidKey      Code = "INVALID_KEY"

	ErrCodeNotFound        Code = "NOT_FOUND"
	ErrCodeFileNotFound    Code = "FILE_NOT_FOUND"
	ErrCodeSessionNotFound Code = "SESSION_NOT_FOUND"

	ErrCodeNetwork Code = "NETWORK_ERROR"
	ErrCodeTimeout Code = "TIMEOUT"

	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// HTTPStatus is the response status the API uses for errors of class c.
func (c Code) HTTPStatus() int {
	switch c {
	case ErrCodeInvalidInput, ErrCodeInvalidSnapshot, ErrCodeInvalidScenario,
		ErrCodeInvalidPolicy, ErrCodeInvalidFormat, ErrCodeInvalidKey, ErrCodeUnsupported:
		return http.StatusBadRequest
	case ErrCodeNotFound, ErrCodeFileNotFound, ErrCodeSessionNotFound:
		return http.StatusNotFound
	case ErrCodeNetwork, ErrCodeTimeout:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// Error is an error with a [Code] and an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := string(e.Code) + ": " + e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an error of class code with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap returns an error of class code caused by cause. The outer code wins
// over any code cause carries.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// outermost returns the first *Error in err's chain.
func outermost(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

// GetCode returns the code of the outermost *Error in err's chain, or ""
// when there is none.
func GetCode(err error) Code {
	if e, ok := outermost(err); ok {
		return e.Code
	}
	return ""
}

// Is reports whether [GetCode] of err is code.
func Is(err error, code Code) bool {
	return err != nil && GetCode(err) == code
}

// UserMessage is the message of the outermost *Error without its code, or
// err.Error() for uncoded errors.
func UserMessage(err error) string {
	if e, ok := outermost(err); ok {
		return e.Message
	}
	return err.Error()
}

// IsInvariant reports whether err signals a broken layout invariant rather
// than bad input or an infrastructure failure.
func IsInvariant(err error) bool {
	c := GetCode(err)
	return c == ErrCodePrecondition || c == ErrCodeMissingEntry
}
