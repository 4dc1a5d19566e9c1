package ai

import (
	"errors"
	"fmt"
	"net/http"
)

// RemoteError reports a failed completion call: the endpoint was unreachable,
// rejected the request, or sent something that could not be parsed.
// It is never retried.
type RemoteError struct {
	Provider   string
	StatusCode int // 0 when no HTTP response was received
	Message    string
	Err        error
}

func (e *RemoteError) Error() string {
	switch {
	case e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden:
		return fmt.Sprintf("%s authentication failed (status %d): %s", e.Provider, e.StatusCode, e.Message)
	case e.StatusCode == http.StatusTooManyRequests:
		return fmt.Sprintf("%s rate limit reached (status %d): %s", e.Provider, e.StatusCode, e.Message)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s API error (status %d): %s", e.Provider, e.StatusCode, e.Message)
	case e.Err != nil && e.Message != "":
		return fmt.Sprintf("%s: %s: %v", e.Provider, e.Message, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Provider, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Provider, e.Message)
	}
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// IsRemote reports whether err came from the completion endpoint.
func IsRemote(err error) bool {
	var re *RemoteError
	return errors.As(err, &re)
}
