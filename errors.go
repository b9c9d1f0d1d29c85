package snapvault

import "errors"

var (
	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("not found")
	// ErrInternal is returned when an internal error occurs
	ErrInternal = errors.New("internal error")
	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnauthorized is returned when no caller identity is present or a signature fails
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden is returned when the caller does not own the resource
	ErrForbidden = errors.New("forbidden")
)

// Error pairs a sentinel with a message that is safe to show to the caller.
type Error struct {
	Err     error
	Message string
}

func (e *Error) Error() string {
	return e.Err.Error() + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(sentinel error, message string) *Error {
	return &Error{Err: sentinel, Message: message}
}

// Message returns the caller-facing message carried by err, or fallback when
// err carries none.
func Message(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return fallback
}
