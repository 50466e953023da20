package ebay

import (
	"errors"
	"fmt"
	"net"
	"net/http"
)

// AuthError indicates the OAuth credential exchange failed after exhausting
// its retries. Auth failures are fatal: no further API work is possible.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("ebay auth: %v", e.Err)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// APIError is a non-2xx response from the Sell API.
type APIError struct {
	Operation  string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("ebay %s (status %d): %s", e.Operation, e.StatusCode, e.Body)
}

// Transient reports whether the response indicates throttling or a server
// fault that a retry may resolve.
func (e *APIError) Transient() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// IsTransient reports whether err should be retried: a throttling or
// server-error API response, or a network timeout. Connection-level
// failures (unreachable host) are deliberately excluded; those abort the
// run instead of burning retries.
func IsTransient(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Transient()
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}

	return false
}

// IsFatal reports whether err should abort the whole run: an auth failure
// or an unrecoverable transport failure.
func IsFatal(err error) bool {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return true
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		// The server answered; per-record or per-batch handling applies.
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		// Timeouts are transient; anything else (refused connection,
		// unknown host) means the API is unreachable.
		return !netErr.Timeout()
	}

	return false
}
