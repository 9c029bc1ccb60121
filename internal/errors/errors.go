// Package errors defines the typed error taxonomy shared by the
// transport adapter, session holder, and ticket controller. Every
// expected failure maps to one of these types so callers can branch
// on error kind instead of string matching.
package errors

import (
	"fmt"
	"net/http"
)

// APIError represents a request the backend rejected with a non-2xx
// status. Message carries the human-readable explanation extracted
// from the response body, or the HTTP status text when the body had
// none.
type APIError struct {
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (%d): %s", e.StatusCode, e.Message)
}

// NewAPIError creates a new API error.
func NewAPIError(statusCode int, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Message:    message,
	}
}

// Sentinel API errors. The transport adapter returns these exact
// values, so identity comparison is sufficient to detect them.
var (
	// ErrSessionExpired is returned for any 401/403 response. The
	// session has already been invalidated by the time a caller
	// sees it.
	ErrSessionExpired = &APIError{
		StatusCode: http.StatusUnauthorized,
		Message:    "session expired, log in again",
	}

	// ErrNotFound is returned for 404 responses.
	ErrNotFound = &APIError{
		StatusCode: http.StatusNotFound,
		Message:    "resource not found",
	}
)

// sentinelError is a constant, comparable error for local failures
// that never touch the network.
type sentinelError string

func (e sentinelError) Error() string { return string(e) }

const (
	// ErrInvalidCredentials means the backend rejected a login
	// attempt. Distinct from a NetworkError: the backend was
	// reachable and said no.
	ErrInvalidCredentials = sentinelError("invalid credentials")

	// ErrMissingIdentity means an operation needed the current
	// user's identity but none is resolved.
	ErrMissingIdentity = sentinelError("user identity is not resolved, log in first")

	// ErrForbidden means the current role does not permit the
	// operation. Raised locally before any request is issued; the
	// backend enforces the same rule independently.
	ErrForbidden = sentinelError("admin role required")
)

// ValidationError represents a local precondition failure. No network
// call was made.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// NetworkError represents a request that could not be sent or
// completed at all: DNS failure, refused connection, timeout.
type NetworkError struct {
	Operation string `json:"operation"`
	URL       string `json:"url"`
	Err       error  `json:"error"`
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error during %s to %s: %v", e.Operation, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// IsSessionExpired checks if an error is the session-expired sentinel.
func IsSessionExpired(err error) bool {
	return err == ErrSessionExpired
}

// IsNotFound checks if an error is a not found error.
func IsNotFound(err error) bool {
	if apiErr, ok := err.(*APIError); ok {
		return apiErr.StatusCode == http.StatusNotFound
	}
	return false
}

// IsForbidden checks if an error is the local role-check failure.
func IsForbidden(err error) bool {
	return err == ErrForbidden
}

// IsValidation checks if an error is a local validation failure.
func IsValidation(err error) bool {
	_, ok := err.(*ValidationError)
	return ok
}

// IsNetwork checks if an error is a network-level failure.
func IsNetwork(err error) bool {
	_, ok := err.(*NetworkError)
	return ok
}

// IsAPIError checks if an error carries an HTTP status from the
// backend.
func IsAPIError(err error) bool {
	_, ok := err.(*APIError)
	return ok
}
