package models

import "errors"

// Error kinds. Match them with errors.Is.
var (
	ErrAuth       = errors.New("auth error")
	ErrNetwork    = errors.New("network error")
	ErrPermission = errors.New("permission error")
	ErrCancelled  = errors.New("cancelled")
	ErrValidation = errors.New("validation error")
)

// Error carries a user-facing message together with its kind and cause
type Error struct {
	Kind    error
	Message string
	Err     error
}

// NewError creates an error of the given kind
func NewError(kind error, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Kind.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the kind of this error
func (e *Error) Is(target error) bool {
	return e.Kind == target
}

// UserMessage turns any error into the single string shown to the user
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return "Unknown error"
}
