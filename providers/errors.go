package providers

import (
	"errors"
	"fmt"
)

// ErrorKind classifies provider failures.
type ErrorKind int

// Provider error kinds
const (
	KindUnknown ErrorKind = iota
	KindNotFound
	KindUnauthorized
	KindForbidden
	KindRateLimited
	KindServer
	KindNetwork
	KindCanceled
)

// String returns the snake_case name of the kind, suitable for metric attributes.
func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindRateLimited:
		return "rate_limited"
	case KindServer:
		return "server_error"
	case KindNetwork:
		return "network"
	case KindCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// ProviderError is returned by Client implementations for any failed call.
type ProviderError struct {
	Kind       ErrorKind // Failure class
	Op         string    // Provider operation (e.g. "fetch_self", "list_team_members")
	StatusCode int       // HTTP status, zero when no response was received
	Err        error     // Underlying cause
}

// Error implements the error interface
func (e *ProviderError) Error() string {
	msg := fmt.Sprintf("provider %s failed (%s)", e.Op, e.Kind)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s with status %d", msg, e.StatusCode)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying cause
func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewProviderError creates a new provider error
func NewProviderError(kind ErrorKind, op string, statusCode int, err error) *ProviderError {
	return &ProviderError{
		Kind:       kind,
		Op:         op,
		StatusCode: statusCode,
		Err:        err,
	}
}

// KindOf returns the kind of the first ProviderError in err's chain,
// or KindUnknown if there is none.
func KindOf(err error) ErrorKind {
	var perr *ProviderError
	if errors.As(err, &perr) {
		return perr.Kind
	}
	return KindUnknown
}

// IsNotFound reports whether err carries a ProviderError of kind KindNotFound.
func IsNotFound(err error) bool {
	var perr *ProviderError
	return errors.As(err, &perr) && perr.Kind == KindNotFound
}
