package clierr

import (
	"errors"

	"github.com/habedi/photofeed/pkg/apierr"
)

// Type categorizes a CLI-facing error for consistent messaging & potential exit codes.
type Type string

const (
	Validation   Type = "validation"
	NotFound     Type = "not_found"
	Unauthorized Type = "unauthorized"
	Network      Type = "network"
	Canceled     Type = "canceled"
	Internal     Type = "internal"
)

// Error is a structured user-facing error.
type Error struct {
	Type    Type
	Message string
	Err     error // optional underlying error
}

func (e *Error) Error() string { return e.Message }
func (e *Error) Unwrap() error { return e.Err }

// New constructs a new CLI Error.
func New(t Type, msg string, err error) *Error { return &Error{Type: t, Message: msg, Err: err} }

// retryHint is appended to messages of errors worth repeating as is.
const retryHint = " Try again."

// FromAPI turns an error from the core packages into a user-facing one.
// Errors that are already *Error are returned unchanged; nil stays nil.
func FromAPI(err error) error {
	if err == nil {
		return nil
	}
	var cliErr *Error
	if errors.As(err, &cliErr) {
		return cliErr
	}
	mapped := fromAPI(err)
	if mapped.Type != Canceled && apierr.Retryable(err) {
		mapped.Message += retryHint
	}
	return mapped
}

func fromAPI(err error) *Error {
	var apiErr *apierr.Error
	if !errors.As(err, &apiErr) {
		return New(Internal, "Unexpected error: "+err.Error(), err)
	}
	switch apiErr.Kind {
	case apierr.DuplicateRequest:
		return New(Validation, "This authorization code was already used. Request a new one.", err)
	case apierr.MalformedRequest:
		return New(Validation, "The request could not be built. Check the configured URLs.", err)
	case apierr.Unauthorized:
		return New(Unauthorized, "You are not signed in. Run 'photofeed login' first.", err)
	case apierr.DecodingFailure:
		return New(Internal, "The server sent a response that could not be read.", err)
	case apierr.Canceled:
		return New(Canceled, "The operation was canceled.", err)
	case apierr.StorageFailure:
		return New(Internal, "Could not access the local credential store.", err)
	case apierr.TransportFailure:
		switch apiErr.StatusCode {
		case 0:
			return New(Network, "Could not reach the server. Check your connection.", err)
		case 401, 403:
			return New(Unauthorized, "The server rejected the credentials. Run 'photofeed login' again.", err)
		case 404:
			return New(NotFound, "Not found.", err)
		default:
			return New(Network, "The server returned an error: "+apiErr.Error(), err)
		}
	}
	return New(Internal, "Unexpected error: "+err.Error(), err)
}

// ExitCode maps an error to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var cliErr *Error
	if !errors.As(err, &cliErr) {
		return 1
	}
	switch cliErr.Type {
	case Validation:
		return 2
	case Unauthorized:
		return 3
	case Network, NotFound:
		return 4
	case Canceled:
		return 130
	default:
		return 1
	}
}
