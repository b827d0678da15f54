// Package common defines sentinel errors and small helpers shared by the
// repositories, services and the CLI. Callers should use errors.Is to match
// error kinds and Message to obtain the text shown to the user.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level error kinds.
	ErrorValidation  = errors.New("validation error")
	ErrorInvariant   = errors.New("invariant violation")
	ErrorPersistence = errors.New("persistence error")
	ErrorInternal    = errors.New("internal error")

	// Session errors.
	ErrorUnauthorized = errors.New("unauthorized")
	ErrInvalidToken   = errors.New("invalid token")
	ErrTokenExpired   = errors.New("token expired")
)

// Error is a user-facing error of a given kind. Kind is one of the sentinel
// errors above, Err is the optional underlying cause.
type Error struct {
	Kind error
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

// Validation reports bad user input. No state is changed.
func Validation(msg string) error {
	return &Error{Kind: ErrorValidation, Msg: msg}
}

// NotFound reports an unknown user, group, article or code.
func NotFound(msg string) error {
	return &Error{Kind: ErrorNotFound, Msg: msg}
}

// AlreadyExists reports a unique key clash.
func AlreadyExists(msg string) error {
	return &Error{Kind: ErrorAlreadyExists, Msg: msg}
}

// Invariant reports a refused operation that would break a model invariant.
func Invariant(msg string) error {
	return &Error{Kind: ErrorInvariant, Msg: msg}
}

// Persistence wraps a backing store failure.
func Persistence(msg string, err error) error {
	return &Error{Kind: ErrorPersistence, Msg: msg, Err: err}
}

// Message returns the text to display for err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Error()
	}
	return "Error: " + err.Error()
}
