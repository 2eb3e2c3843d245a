package resthttp

import "fmt"

// APIError represents an HTTP-level failure from the source endpoint.
type APIError struct {
	// StatusCode is the HTTP status code.
	StatusCode int

	// Message is a short description of the failure.
	Message string

	// URL is the request URL.
	URL string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("source API error %d: %s (%s)", e.StatusCode, e.Message, e.URL)
}
