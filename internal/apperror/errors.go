package apperror

import (
	"errors"
	"fmt"
)

const (
	// ErrInternalServerError means that an internal server error has occurred.
	ErrInternalServerError = "internal_server_error"
	// ErrEntityNotFound means that the instance is absent from the store.
	ErrEntityNotFound = "entity_not_found"
	// ErrBadParameter means that provided input does not match what is declared.
	ErrBadParameter = "bad_parameter"
)

// Error is a coded error.
type Error struct {
	// Code is a machine-readable code.
	Code string `json:"code,omitempty"`
	// Message is a human-readable message.
	Message string `json:"message"`
	// Inner is never shown to API consumers.
	Inner error `json:"-"`
}

func New(code string, message string, inner error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Inner:   inner,
	}
}

// NewInternalServerError returns the coded error found in inner, if any,
// otherwise a new internal_server_error.
func NewInternalServerError(message string, inner error) *Error {
	if coded := As(inner); coded != nil {
		return coded
	}

	return New(ErrInternalServerError, message, inner)
}

func NewEntityNotFoundError(message string, inner error) *Error {
	if coded := As(inner); coded != nil {
		return coded
	}

	return New(ErrEntityNotFound, message, inner)
}

func NewBadParameterError(message string, inner error) *Error {
	if coded := As(inner); coded != nil {
		return coded
	}

	return New(ErrBadParameter, message, inner)
}

func (e *Error) Error() string {
	if e.Inner != nil {
		return fmt.Sprintf("%s %s: %v", e.Code, e.Message, e.Inner)
	}

	return fmt.Sprintf("%s %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Inner
}

// As returns the first coded error in err's chain, or nil.
func As(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}

	return nil
}

// CodeOf returns the code of err, or "" when err carries none.
func CodeOf(err error) string {
	if coded := As(err); coded != nil {
		return coded.Code
	}
	return ""
}

func Is(err error, code string) bool {
	return CodeOf(err) == code && code != ""
}

func IsInternalServerError(err error) bool {
	return Is(err, ErrInternalServerError)
}

func IsEntityNotFoundError(err error) bool {
	return Is(err, ErrEntityNotFound)
}

func IsBadParameterError(err error) bool {
	return Is(err, ErrBadParameter)
}
