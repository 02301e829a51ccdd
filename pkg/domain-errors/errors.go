// Package derrors provides code-classified domain errors. Services create these
// at the boundary between infrastructure facts (pkg/platform/sentinel) and
// caller-visible failures, so transports and the console can map codes to
// presentation without string matching.
package derrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies a domain error.
type Code string

const (
	// CodeValidation marks malformed caller input that can be corrected and retried.
	CodeValidation Code = "validation"
	// CodeInvalidInput marks a single field that failed parsing.
	CodeInvalidInput Code = "invalid_input"
	// CodeBadRequest marks a structurally invalid request body.
	CodeBadRequest Code = "bad_request"
	// CodeNotFound marks an unknown entity reference.
	CodeNotFound Code = "not_found"
	// CodeConflict marks a uniqueness or concurrent-update collision.
	CodeConflict Code = "conflict"
	// CodeRuleViolation marks a domain rule or state-machine violation.
	// The operation is aborted with no partial mutation.
	CodeRuleViolation Code = "rule_violation"
	// CodeInvariantViolation marks a broken aggregate invariant detected by a
	// model constructor or transition guard.
	CodeInvariantViolation Code = "invariant_violation"
	// CodeUnauthorized marks missing or invalid credentials.
	CodeUnauthorized Code = "unauthorized"
	// CodeForbidden marks an authenticated caller without the required role.
	CodeForbidden Code = "forbidden"
	// CodeStorage marks an unreadable or unwritable backing store.
	CodeStorage Code = "storage"
	// CodeInternal marks everything else.
	CodeInternal Code = "internal"
)

// Error carries a code, a caller-facing message, and an optional cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New creates a domain error with no underlying cause.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates a domain error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var domainErr *Error
	for errors.As(err, &domainErr) {
		if domainErr.Code == code {
			return true
		}
		err = domainErr.Err
		if err == nil {
			return false
		}
	}
	return false
}

// Is is a readability alias for HasCode.
func Is(err error, code Code) bool { return HasCode(err, code) }

// GetCode returns the outermost code carried by err, or CodeInternal.
func GetCode(err error) Code {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return CodeInternal
}

// Message returns the outermost caller-facing message, or a generic fallback.
func Message(err error) string {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}
	return "internal error"
}

// ToHTTPStatus maps a code to its HTTP response status.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeValidation, CodeInvalidInput, CodeBadRequest:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeRuleViolation, CodeInvariantViolation:
		return http.StatusUnprocessableEntity
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeStorage, CodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
