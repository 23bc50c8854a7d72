// Package errors defines the structured error taxonomy for the Fresco
// runtime: dependency-injection failures, the route-not-found sentinel,
// and the HTTPException family raised intentionally by handlers.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrRouteNotFound is the sentinel returned by the router when no compiled
// route matches an incoming method+path pair. It is never raised by
// handlers; the pipeline maps it to a 404 response.
var ErrRouteNotFound = errors.New("no route matched")

// ProviderNotFoundError is returned when a token is resolved against the
// container but no recipe was ever registered for it.
type ProviderNotFoundError struct {
	Token string
}

// Error implements the error interface.
func (e *ProviderNotFoundError) Error() string {
	return fmt.Sprintf("provider not found for token %q", e.Token)
}

// Is implements error comparison by token.
func (e *ProviderNotFoundError) Is(target error) bool {
	var t *ProviderNotFoundError
	if errors.As(target, &t) {
		return t.Token == "" || t.Token == e.Token
	}
	return false
}

// CircularDependencyError is returned when resolving a token re-enters its
// own construction. Chain holds the resolution path that closed the cycle.
type CircularDependencyError struct {
	Token string
	Chain []string
}

// Error implements the error interface.
func (e *CircularDependencyError) Error() string {
	if len(e.Chain) == 0 {
		return fmt.Sprintf("circular dependency detected for token %q", e.Token)
	}
	return fmt.Sprintf("circular dependency detected for token %q: %s",
		e.Token, strings.Join(e.Chain, " -> "))
}

// HTTPException is an intentional, status-carrying error raised by handlers
// or the pipeline. The default exception filter shapes it into a JSON error
// body (or a rendered error page when one is configured for the status).
type HTTPException struct {
	StatusCode int
	Message    string
	Cause      error
}

// Error implements the error interface.
func (e *HTTPException) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%d %s: %v", e.StatusCode, msg, e.Cause)
	}
	return fmt.Sprintf("%d %s", e.StatusCode, msg)
}

// Unwrap returns the underlying cause error.
func (e *HTTPException) Unwrap() error {
	return e.Cause
}

// Is matches any HTTPException, or one with the same status code when the
// target carries a non-zero code.
func (e *HTTPException) Is(target error) bool {
	var t *HTTPException
	if errors.As(target, &t) {
		return t.StatusCode == 0 || t.StatusCode == e.StatusCode
	}
	return false
}

// WithCause attaches an underlying cause to the exception.
func (e *HTTPException) WithCause(cause error) *HTTPException {
	e.Cause = cause
	return e
}

// NewHTTPException creates an exception with an explicit status code.
func NewHTTPException(status int, message string) *HTTPException {
	return &HTTPException{StatusCode: status, Message: message}
}

// BadRequest creates a 400 exception.
func BadRequest(message string) *HTTPException {
	return NewHTTPException(http.StatusBadRequest, message)
}

// Unauthorized creates a 401 exception.
func Unauthorized(message string) *HTTPException {
	return NewHTTPException(http.StatusUnauthorized, message)
}

// Forbidden creates a 403 exception.
func Forbidden(message string) *HTTPException {
	return NewHTTPException(http.StatusForbidden, message)
}

// NotFound creates a 404 exception.
func NotFound(message string) *HTTPException {
	return NewHTTPException(http.StatusNotFound, message)
}

// MethodNotAllowed creates a 405 exception.
func MethodNotAllowed(message string) *HTTPException {
	return NewHTTPException(http.StatusMethodNotAllowed, message)
}

// Conflict creates a 409 exception.
func Conflict(message string) *HTTPException {
	return NewHTTPException(http.StatusConflict, message)
}

// UnprocessableEntity creates a 422 exception.
func UnprocessableEntity(message string) *HTTPException {
	return NewHTTPException(http.StatusUnprocessableEntity, message)
}

// InternalServerError creates a 500 exception.
func InternalServerError(message string) *HTTPException {
	return NewHTTPException(http.StatusInternalServerError, message)
}

// ServiceUnavailable creates a 503 exception.
func ServiceUnavailable(message string) *HTTPException {
	return NewHTTPException(http.StatusServiceUnavailable, message)
}

// StatusOf extracts the HTTP status an error should surface with: the
// explicit code for an HTTPException, 404 for the route sentinel, and 500
// for anything unexpected.
func StatusOf(err error) int {
	var he *HTTPException
	if errors.As(err, &he) {
		return he.StatusCode
	}
	if errors.Is(err, ErrRouteNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// MessageOf extracts a client-safe message for an error. Unexpected errors
// surface a generic message rather than internal detail.
func MessageOf(err error) string {
	var he *HTTPException
	if errors.As(err, &he) {
		if he.Message != "" {
			return he.Message
		}
		return http.StatusText(he.StatusCode)
	}
	if errors.Is(err, ErrRouteNotFound) {
		return "Not Found"
	}
	return "Internal Server Error"
}
