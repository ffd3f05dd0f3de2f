package upstream

import (
	"errors"
	"fmt"
)

// Sentinel errors for the remote operations API. Handlers branch on these
// with errors.Is; everything else is an internal failure.
var (
	// ErrInvalidCredential means the remote API rejected the credential
	// (bad login, or an expired/invalid bearer token).
	ErrInvalidCredential = errors.New("upstream: invalid credential")

	// ErrInvalidServerResponse means a 2xx response was missing required
	// fields. The session must not be mutated from such a response.
	ErrInvalidServerResponse = errors.New("upstream: invalid server response")

	// ErrTransport wraps network-level failures (DNS, refused connection,
	// timeout). Retryable from the caller's point of view.
	ErrTransport = errors.New("upstream: transport failure")
)

// Error is a non-2xx response from the remote API, carrying whatever message
// the API put in the body.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("upstream: %d %s", e.Status, e.Message)
	}
	return fmt.Sprintf("upstream: status %d", e.Status)
}

// Is maps 401 responses onto ErrInvalidCredential so callers branch on the
// sentinel instead of the status code.
func (e *Error) Is(target error) bool {
	return target == ErrInvalidCredential && e.Status == 401
}
