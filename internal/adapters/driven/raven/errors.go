package raven

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrIncompleteCredentials indicates only one of certificate and key was provided.
var ErrIncompleteCredentials = errors.New("raven: certificate and key must be provided together")

// RateLimitError represents a throttled request.
type RateLimitError struct {
	StatusCode int
	RetryAt    time.Time
}

func (e *RateLimitError) Error() string {
	if e.RetryAt.IsZero() {
		return fmt.Sprintf("raven: rate limited (status %d)", e.StatusCode)
	}
	return fmt.Sprintf("raven: rate limited (status %d), retry at %s",
		e.StatusCode, e.RetryAt.Format(time.RFC3339))
}

// APIError represents an unexpected server response.
type APIError struct {
	StatusCode int
	Message    string
	URL        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("raven: API error %d: %s (URL: %s)", e.StatusCode, e.Message, e.URL)
}

// IsNotFound checks if the error indicates the database or collection was not found.
func IsNotFound(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusNotFound
	}
	return false
}

// IsUnauthorized checks if the error indicates the server rejected the client.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden
	}
	return false
}

// IsRateLimited checks if the error indicates throttling.
func IsRateLimited(err error) bool {
	var rateLimitErr *RateLimitError
	return errors.As(err, &rateLimitErr)
}
