package oracle

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions.
var (
	// ErrNoAPIKey is returned when the API key is required but missing.
	ErrNoAPIKey = errors.New("oracle: API key required")

	// ErrNoModel is returned when no model is configured.
	ErrNoModel = errors.New("oracle: model required")

	// ErrUnavailable is returned when the oracle cannot be reached.
	ErrUnavailable = errors.New("oracle: unavailable")

	// ErrEmptyDecision is returned when the oracle returns neither a
	// reply nor any tool calls.
	ErrEmptyDecision = errors.New("oracle: empty decision")
)

// APIError represents an error response from the oracle API.
type APIError struct {
	// StatusCode is the HTTP status code.
	StatusCode int

	// Message is the error message from the API.
	Message string

	// Provider identifies which backend returned the error.
	Provider string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("oracle [%s]: API error %d: %s", e.Provider, e.StatusCode, e.Message)
}

// IsRateLimited returns true if this is a rate limit error (HTTP 429).
func (e *APIError) IsRateLimited() bool {
	return e.StatusCode == 429
}

// IsServerError returns true if this is a server-side error (HTTP 5xx).
func (e *APIError) IsServerError() bool {
	return e.StatusCode >= 500 && e.StatusCode < 600
}

// IsRetryable returns true if the request should be retried.
func (e *APIError) IsRetryable() bool {
	return e.IsRateLimited() || e.IsServerError()
}
