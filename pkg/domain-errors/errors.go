// Package domainerrors defines the coded errors returned across service
// boundaries. Stores return sentinel errors (pkg/platform/sentinel) for
// infrastructure facts; services translate those into coded errors here, and
// the transport layer maps codes onto HTTP statuses. Keeping the code on the
// error rather than on the transport keeps services transport-agnostic.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies an error for boundary handling.
type Code string

const (
	// CodeValidation marks bad caller input caught before any store call.
	CodeValidation Code = "validation"
	// CodeUnauthorized marks missing or unverifiable caller credentials.
	CodeUnauthorized Code = "unauthorized"
	// CodePermissionDenied marks a caller acting outside its capabilities.
	CodePermissionDenied Code = "permission_denied"
	// CodeNotFound marks a missing record.
	CodeNotFound Code = "not_found"
	// CodeMissingIndex marks a query shape the store cannot serve without a
	// composite index being provisioned first.
	CodeMissingIndex Code = "missing_index"
	// CodeUnavailable marks a transient store failure worth retrying.
	CodeUnavailable Code = "unavailable"
	// CodeConflict marks a state conflict between concurrent writers.
	CodeConflict Code = "conflict"
	// CodeInternal marks everything else.
	CodeInternal Code = "internal"
)

// Error is a coded domain error.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// New builds a coded error with a caller-facing message.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf builds a coded error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying cause. The cause stays
// reachable through errors.Is/As for logging; the message is what callers see.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	return CodeOf(err) == code
}

// CodeOf extracts the code from err, or CodeInternal when err carries none.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}
