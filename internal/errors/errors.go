// Package errors defines typed errors with categories for user-friendly reporting.
// It provides a structured approach to error handling with machine-readable error kinds
// and human-friendly messages. Everything the session layer returns to the command
// layer is resolved into one of the kinds below, so callers can branch on the kind
// without inspecting transport errors.
//
// The package supports wrapping underlying errors while maintaining error kind information,
// and plays well with the standard library's errors.Is and errors.As.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind is a machine-readable error category.
type Kind string

const (
	// InvalidCredentials indicates the server rejected the username/password pair.
	InvalidCredentials Kind = "invalid_credentials"
	// EndpointUnreachable indicates no login endpoint produced a usable response.
	EndpointUnreachable Kind = "endpoint_unreachable"
	// MalformedResponse indicates a login response missing a required field.
	MalformedResponse Kind = "malformed_response"
	// RefreshRejected indicates the server invalidated the refresh token.
	RefreshRejected Kind = "refresh_rejected"
	// RefreshUnreachable indicates the refresh call failed at the transport level.
	RefreshUnreachable Kind = "refresh_unreachable"
	// SessionExpired indicates the session could not be recovered and was cleared.
	SessionExpired Kind = "session_expired"
)

// E wraps an error with kind and human-friendly message.
type E struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *E) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the underlying cause.
func (e *E) Unwrap() error { return e.Err }

// Is reports a match when target is an *E of the same kind. The message of the
// target is ignored, so New(kind, "") works as a comparison value.
func (e *E) Is(target error) bool {
	t, ok := target.(*E)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func Wrap(kind Kind, msg string, err error) *E { return &E{Kind: kind, Message: msg, Err: err} }
func New(kind Kind, msg string) *E             { return &E{Kind: kind, Message: msg} }

// KindOf returns the kind of the outermost *E in err's chain, or "" when there is none.
func KindOf(err error) Kind {
	var e *E
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether any *E in err's chain has the given kind.
func IsKind(err error, kind Kind) bool {
	return stderrors.Is(err, &E{Kind: kind})
}
