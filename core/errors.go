package core

import (
	"net/http"

	"github.com/pkg/errors"
)

// Error is a taxonomy error: a stable HTTP-style code plus a human-readable
// message safe to return to callers.
type Error struct {
	Code int
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func NotFoundErr(msg string) *Error      { return &Error{http.StatusNotFound, msg} }
func ConflictErr(msg string) *Error      { return &Error{http.StatusConflict, msg} }
func UnprocessableErr(msg string) *Error { return &Error{http.StatusUnprocessableEntity, msg} }
func BadRequestErr(msg string) *Error    { return &Error{http.StatusBadRequest, msg} }
func UnauthorizedErr(msg string) *Error  { return &Error{http.StatusUnauthorized, msg} }

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
