package errors

import "net/http"

// Kind classifies a failure so callers can decide how to recover:
// validation errors stick to the offending step, conflicts send the
// booker back to slot selection, transport errors are retryable as-is.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindConflict     Kind = "conflict"
	KindNotFound     Kind = "not_found"
	KindUnauthorized Kind = "unauthorized"
	KindTransport    Kind = "transport"
)

// HTTPError represents an error with an associated HTTP status code.
type HTTPError struct {
	Code    int
	Kind    Kind
	Message string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTPError with the given code, kind and message.
func NewHTTPError(code int, kind Kind, message string) *HTTPError {
	return &HTTPError{
		Code:    code,
		Kind:    kind,
		Message: message,
	}
}

// Helpers for common errors
func Validation(msg string) *HTTPError {
	return NewHTTPError(http.StatusBadRequest, KindValidation, msg)
}

func Conflict(msg string) *HTTPError {
	return NewHTTPError(http.StatusConflict, KindConflict, msg)
}

func NotFound(msg string) *HTTPError {
	return NewHTTPError(http.StatusNotFound, KindNotFound, msg)
}

func Unauthorized(msg string) *HTTPError {
	return NewHTTPError(http.StatusUnauthorized, KindUnauthorized, msg)
}

func Internal(msg string) *HTTPError {
	return NewHTTPError(http.StatusInternalServerError, KindTransport, msg)
}

// Busy reports that another operation on the same wizard session is still in
// flight. The client retries once the outstanding call returns.
func Busy(msg string) *HTTPError {
	return NewHTTPError(http.StatusConflict, KindConflict, msg)
}
