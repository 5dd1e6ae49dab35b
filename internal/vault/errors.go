// Package vault provides an HTTP client for the DNFileVault origin API:
// endpoint discovery and health-based failover, session login, collection
// listing, and authenticated file downloads. It classifies HTTP failures
// into sentinel errors so callers can separate fatal conditions from
// per-collection and per-file ones.
package vault

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for failure classification.
// Use errors.Is(err, vault.ErrInvalidCredentials) to check.
var (
	// ErrNoHealthyEndpoint means every discovered endpoint failed its
	// health probe. Fatal for the run.
	ErrNoHealthyEndpoint = errors.New("vault: no healthy endpoint")

	// ErrInvalidCredentials is returned on HTTP 401 from the login route.
	ErrInvalidCredentials = errors.New("vault: invalid credentials")

	// ErrNoToken is returned when login succeeds at the HTTP level but the
	// response body carries no token field.
	ErrNoToken = errors.New("vault: login response missing token")

	ErrUnauthorized = errors.New("vault: unauthorized")
	ErrForbidden    = errors.New("vault: forbidden")
	ErrNotFound     = errors.New("vault: not found")
	ErrThrottled    = errors.New("vault: throttled")
	ErrServerError  = errors.New("vault: server error")
)

// APIError wraps a sentinel error with the HTTP status code and response
// body excerpt for debugging.
type APIError struct {
	StatusCode int
	Message    string
	Err        error // sentinel, for errors.Is()
}

func (e *APIError) Error() string {
	return fmt.Sprintf("vault: HTTP %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// classifyStatus maps an HTTP status code to a sentinel error.
// Returns nil for 2xx success codes.
func classifyStatus(code int) error {
	switch code {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusTooManyRequests:
		return ErrThrottled
	default:
		if code >= http.StatusInternalServerError {
			return ErrServerError
		}

		return nil
	}
}
