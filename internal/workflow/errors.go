package workflow

import (
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrSubmitInProgress is returned when Submit is called while a submission is running.
	ErrSubmitInProgress = errors.New("invite submission already in progress")
	// ErrClosed is returned once the dialog has been closed.
	ErrClosed = errors.New("invite dialog closed")
	// ErrNoSpace is returned by New without a space to invite into.
	ErrNoSpace = errors.New("no space passed")
	// ErrNoConnection means the server could not be reached before the dialog opened.
	ErrNoConnection = errors.New("server connection required")
)

// ValidationError carries every violation found in the form, or a sealing failure. Nothing was
// sent to the server.
type ValidationError struct {
	Messages []string
	Err      error
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, "\n")
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ConnectivityError means the invite could not reach the server. No state was committed.
type ConnectivityError struct {
	Err error
}

func (e *ConnectivityError) Error() string {
	return "could not reach server: " + e.Err.Error()
}

func (e *ConnectivityError) Unwrap() error {
	return e.Err
}

// ServerError means the server was reached but saving the invite failed.
type ServerError struct {
	Err error
}

func (e *ServerError) Error() string {
	return "saving invite failed: " + e.Err.Error()
}

func (e *ServerError) Unwrap() error {
	return e.Err
}
