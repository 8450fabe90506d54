package platform

import "fmt"

// APIError is a non-2xx response from the platform. It is propagated to the
// caller unmodified and unretried; retry policy belongs to whoever owns the
// client.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("platform returned status %d: %s", e.StatusCode, e.Message)
}
