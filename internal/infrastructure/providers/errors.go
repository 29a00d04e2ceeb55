package providers

import (
	"errors"
	"fmt"
)

// Kind classifies a provider call failure
type Kind int

const (
	KindUnknown Kind = iota
	KindTimeout
	KindRateLimited
	KindClientError
	KindServerError
	KindMissingData
)

func (k Kind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindRateLimited:
		return "rate_limited"
	case KindClientError:
		return "client_error"
	case KindServerError:
		return "server_error"
	case KindMissingData:
		return "missing_data"
	default:
		return "unknown"
	}
}

// Error is a classified provider call failure
type Error struct {
	Kind     Kind
	Provider string
	Op       string
	Status   int
	Err      error
}

// NewError builds a classified provider error
func NewError(kind Kind, provider, op string, status int, err error) *Error {
	return &Error{Kind: kind, Provider: provider, Op: op, Status: status, Err: err}
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s: %s", e.Provider, e.Op, e.Kind)
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.Status)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf extracts the failure kind from an error chain
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindUnknown
}

// Retryable reports whether the failure is worth retrying.
// Timeouts, rate limits and server errors are transient; client errors
// and malformed responses are not.
func Retryable(err error) bool {
	switch KindOf(err) {
	case KindTimeout, KindRateLimited, KindServerError:
		return true
	default:
		return false
	}
}
