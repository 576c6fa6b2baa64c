package openalex

import (
	"errors"
	"fmt"
)

// Common errors returned by the OpenAlex client.
var (
	// ErrNotFound indicates the work was not found.
	ErrNotFound = errors.New("not found in OpenAlex")

	// ErrRateLimited indicates the rate limit has been exceeded.
	ErrRateLimited = errors.New("OpenAlex rate limit exceeded")

	// ErrNetworkError indicates a network connectivity issue or timeout.
	ErrNetworkError = errors.New("network error communicating with OpenAlex")

	// ErrInvalidResponse indicates a body that could not be decoded.
	ErrInvalidResponse = errors.New("invalid response from OpenAlex")

	// ErrMalformedWork indicates a decoded work lacks fields needed to build a record.
	ErrMalformedWork = errors.New("malformed work")
)

// APIError represents an HTTP error from the OpenAlex API.
type APIError struct {
	StatusCode int
	Code       string // "not_found", "api_error"
	Message    string
	WorkID     string
}

func (e *APIError) Error() string {
	if e.WorkID != "" {
		return fmt.Sprintf("OpenAlex API error (status %d, code %s): %s (work: %s)", e.StatusCode, e.Code, e.Message, e.WorkID)
	}
	return fmt.Sprintf("OpenAlex API error (status %d, code %s): %s", e.StatusCode, e.Code, e.Message)
}

// IsNotFound returns true if the error indicates a work was not found.
func IsNotFound(err error) bool {
	if errors.Is(err, ErrNotFound) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 404 || apiErr.Code == "not_found"
	}
	return false
}

// IsRateLimited returns true if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429
	}
	return false
}
