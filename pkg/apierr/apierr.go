package apierr

import (
	"errors"
	"fmt"
)

// Kind categorizes a failure of a session or feed operation so callers can
// pick their own messaging and retry policy.
type Kind string

const (
	DuplicateRequest Kind = "duplicate_request"
	MalformedRequest Kind = "malformed_request"
	Unauthorized     Kind = "unauthorized"
	TransportFailure Kind = "transport_failure"
	DecodingFailure  Kind = "decoding_failure"
	Canceled         Kind = "canceled"
	StorageFailure   Kind = "storage_failure"
)

// Error is the typed error returned by the client, auth, feed and profile packages.
type Error struct {
	Kind       Kind
	Op         string
	StatusCode int   // set for non-2xx responses
	Err        error // optional underlying error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Op, e.Kind)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.StatusCode)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// New constructs a new Error.
func New(kind Kind, op string, err error) *Error { return &Error{Kind: kind, Op: op, Err: err} }

// Status constructs a TransportFailure for a non-2xx HTTP response.
func Status(op string, code int, body string) *Error {
	var err error
	if body != "" {
		err = errors.New(body)
	}
	return &Error{Kind: TransportFailure, Op: op, StatusCode: code, Err: err}
}

// KindOf returns the Kind of the first *Error in err's chain, or "" if there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool { return KindOf(err) == kind }

// Retryable reports whether repeating the same call may succeed without a config or server fix.
// A transport failure qualifies unless the server answered with a 4xx status.
func Retryable(err error) bool {
	switch KindOf(err) {
	case TransportFailure:
		var e *Error
		if errors.As(err, &e) && e.StatusCode >= 400 && e.StatusCode < 500 {
			return false
		}
		return true
	case Canceled, StorageFailure:
		return true
	default:
		return false
	}
}
