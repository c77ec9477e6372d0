package api

import (
	"errors"
	"fmt"
)

var (
	// ErrNetwork wraps transport failures: refused connections, timeouts,
	// cancelled contexts.
	ErrNetwork = errors.New("network error")
	// ErrNotAuthenticated is returned for HTTP 401 on endpoints that require a
	// session.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrDecode is returned when a response body is not the expected JSON.
	ErrDecode = errors.New("malformed response")
)

// APIError is a non-2xx reply carrying the backend's error text.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: status %d", e.Status)
	}
	return fmt.Sprintf("api error: status %d: %s", e.Status, e.Message)
}

// IsNetwork reports whether err is a transport failure.
func IsNetwork(err error) bool {
	return errors.Is(err, ErrNetwork)
}
