package commands

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Code is a machine-readable command error code.
type Code string

const (
	CodeValidation     Code = "VALIDATION_ERROR"
	CodeExecution      Code = "EXECUTION_ERROR"
	CodeUndo           Code = "UNDO_ERROR"
	CodeRedo           Code = "REDO_ERROR"
	CodeInvalidPayload Code = "INVALID_PAYLOAD"
	CodeNotFound       Code = "NOT_FOUND"
)

// HTTPStatus maps a code to the status used by the HTTP API.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeValidation, CodeInvalidPayload:
		return http.StatusUnprocessableEntity
	case CodeNotFound:
		return http.StatusNotFound
	case CodeUndo, CodeRedo:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error is the error type surfaced by commands and the executor.
type Error struct {
	Code    Code
	Message string
	Errors  []string // validation failures, when Code is CodeValidation
	Cause   error
}

func (e *Error) Error() string {
	if len(e.Errors) > 0 {
		return fmt.Sprintf("%s: %s", e.Message, strings.Join(e.Errors, "; "))
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error with the same code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// Sentinels for errors.Is checks.
var (
	ErrValidation     = &Error{Code: CodeValidation, Message: "validation failed"}
	ErrExecution      = &Error{Code: CodeExecution, Message: "execution failed"}
	ErrUndo           = &Error{Code: CodeUndo, Message: "undo failed"}
	ErrRedo           = &Error{Code: CodeRedo, Message: "redo failed"}
	ErrInvalidPayload = &Error{Code: CodeInvalidPayload, Message: "invalid payload"}
	ErrNotFound       = &Error{Code: CodeNotFound, Message: "not found"}
)

func newError(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func validationError(errs []string) *Error {
	return &Error{Code: CodeValidation, Message: "validation failed", Errors: append([]string(nil), errs...)}
}

func notFound(entity, id string) *Error {
	return newError(CodeNotFound, "%s %s not found", entity, id)
}

// wrap passes command errors through and turns anything else into code.
func wrap(code Code, err error) error {
	if err == nil {
		return nil
	}
	var cmdErr *Error
	if errors.As(err, &cmdErr) {
		return err
	}
	return &Error{Code: code, Message: err.Error(), Cause: err}
}

// CodeOf extracts the code of err, or "" when err is not a command error.
func CodeOf(err error) Code {
	var cmdErr *Error
	if errors.As(err, &cmdErr) {
		return cmdErr.Code
	}
	return ""
}
