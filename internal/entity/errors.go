package entity

import "errors"

// Sentinel errors mapped to HTTP statuses by the error-handler middleware.
var (
	// ErrUnknownSession is returned when a session id has no stored row.
	ErrUnknownSession = errors.New("unknown session")

	// ErrRetrievalFailure wraps embedding/generation failures in the
	// semantic tier. Surfaced as 502; the session row is left untouched.
	ErrRetrievalFailure = errors.New("retrieval failure")

	// ErrNotifierFailure marks escalation-alert delivery problems. It is
	// logged and swallowed, never returned to the visitor.
	ErrNotifierFailure = errors.New("notifier failure")
)

// ValidationError reports malformed input (empty question, bad payload).
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(message string) error {
	return &ValidationError{Message: message}
}
