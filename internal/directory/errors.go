package directory

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a directory failure.
type Kind int

const (
	// NetworkFailure means no response was received.
	NetworkFailure Kind = iota + 1
	// ServiceError means the service answered with a non-2xx status.
	// A 404 for a name filter is how the service reports "no matches".
	ServiceError
	// MalformedPayload means the body did not match the expected schema.
	MalformedPayload
)

func (k Kind) String() string {
	switch k {
	case NetworkFailure:
		return "network_failure"
	case ServiceError:
		return "service_error"
	case MalformedPayload:
		return "malformed_payload"
	default:
		return "unknown"
	}
}

// Error is returned by every Client call that fails.
type Error struct {
	Op     string // "list" or "get"
	Kind   Kind
	Status int // HTTP status for ServiceError, 0 otherwise
	Err    error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("directory %s: %s (status %d): %v", e.Op, e.Kind, e.Status, e.Err)
	}
	return fmt.Sprintf("directory %s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf reports the Kind of err, or 0 if err is not a directory error.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return 0
}

// IsNotFound reports whether err is the service's "nothing here" answer.
func IsNotFound(err error) bool {
	var de *Error
	return errors.As(err, &de) && de.Kind == ServiceError && de.Status == http.StatusNotFound
}
