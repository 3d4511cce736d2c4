package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Standard error codes shared across packages.
// Domain packages define their own codes in their errors.go files.
const (
	CodeNotFound        = "NOT_FOUND"
	CodeInvalidArgument = "INVALID_ARGUMENT"
	CodeValidation      = "VALIDATION_FAILED"
	CodeUnavailable     = "UNAVAILABLE"
	CodeInternal        = "INTERNAL"
)

// AppError is the standard error type for the system.
type AppError struct {
	// Code is a stable, machine-readable identifier (e.g. NOT_FOUND).
	Code string `json:"code"`

	// Message is a human-readable description of what went wrong.
	Message string `json:"message"`

	// Err is the underlying cause, if any.
	Err error `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is / errors.As chains.
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates an AppError with the given code, message, and optional cause.
func New(code, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// Wrap creates an INTERNAL AppError around err with additional context.
func Wrap(err error, message string) *AppError {
	return &AppError{Code: CodeInternal, Message: message, Err: err}
}

// Code extracts the error code from err, or INTERNAL if err is not an AppError.
func Code(err error) string {
	var app *AppError
	if errors.As(err, &app) {
		return app.Code
	}
	return CodeInternal
}

// IsCode reports whether err carries the given code anywhere in its chain.
func IsCode(err error, code string) bool {
	for err != nil {
		var app *AppError
		if !errors.As(err, &app) {
			return false
		}
		if app.Code == code {
			return true
		}
		err = app.Err
	}
	return false
}

// HTTPStatus maps an error code to an HTTP status.
func HTTPStatus(code string) int {
	switch code {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeInvalidArgument, CodeValidation:
		return http.StatusUnprocessableEntity
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// As is a convenience re-export so callers don't need a second errors import.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Is is a convenience re-export so callers don't need a second errors import.
func Is(err, target error) bool {
	return errors.Is(err, target)
}
