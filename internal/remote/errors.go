package remote

import (
	"context"
	"fmt"
	"net"
	"net/url"

	"github.com/pkg/errors"
)

// Error describes a failed call to the API. Disconnected is set when the server could not be
// reached at all, as opposed to answering with an error.
type Error struct {
	Disconnected bool
	StatusCode   int
	Message      string
	Err          error
}

func (e *Error) Error() string {
	if e.Disconnected {
		return fmt.Sprintf("api unreachable: %v", e.Err)
	}
	if e.Message != "" {
		return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api error %d", e.StatusCode)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsDisconnected reports whether err means the API could not be reached.
func IsDisconnected(err error) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Disconnected
	}
	return false
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// classifyTransport turns an http.Client error into an *Error. Context cancellation is passed
// through untouched so callers can tell an abandoned call from a network failure.
func classifyTransport(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return &Error{Disconnected: true, Err: err}
		}
		return err
	}
	var urlErr *url.Error
	var netErr net.Error
	if errors.As(err, &urlErr) || errors.As(err, &netErr) {
		return &Error{Disconnected: true, Err: err}
	}
	return &Error{Err: err}
}
