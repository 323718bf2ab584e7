package model

import "fmt"

type ErrorWithCode interface {
	Error() string
	Code() string
}

type Error struct {
	ErrCode string `json:"code"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

func (e Error) Error() string {
	if e.Message == "" && e.Cause != nil {
		return e.Cause.Error()
	}
	return e.Message
}

func (e Error) Code() string {
	return e.ErrCode
}

func (e Error) Unwrap() error {
	return e.Cause
}

// Is matches any Error with the same code, so errors.Is(err, ErrIO) holds for
// every I/O failure regardless of message or cause.
func (e Error) Is(target error) bool {
	t, ok := target.(Error)
	return ok && t.ErrCode == e.ErrCode
}

// Fmt creates a new error from the base error template with provided arguments
func (e Error) Fmt(args ...any) Error {
	return Error{
		ErrCode: e.ErrCode,
		Message: fmt.Sprintf(e.Message, args...),
	}
}

// Wrap keeps err as the cause and uses its text as the message.
func (e Error) Wrap(err error) Error {
	return Error{
		ErrCode: e.ErrCode,
		Message: fmt.Sprintf(e.Message, err.Error()),
		Cause:   err,
	}
}

func NewError(code, message string) Error {
	return Error{
		ErrCode: code,
		Message: message,
	}
}

var (
	ErrValidation = NewError("validation", "Validation error: %s")
	ErrIO         = NewError("io", "%s")
)
