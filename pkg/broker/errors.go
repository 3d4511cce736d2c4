package broker

import "github.com/chris-alexander-pop/event-aggregator/pkg/errors"

// Error codes for broker operations.
const (
	CodeUnavailable   = "BROKER_UNAVAILABLE"
	CodeInvalidConfig = "BROKER_INVALID_CONFIG"
	CodeClosed        = "BROKER_CLOSED"
)

// ErrUnavailable creates an error for transient broker I/O failures.
func ErrUnavailable(err error) *errors.AppError {
	return errors.New(CodeUnavailable, "broker unavailable", err)
}

// ErrInvalidConfig creates an error for invalid broker configuration.
func ErrInvalidConfig(msg string, err error) *errors.AppError {
	return errors.New(CodeInvalidConfig, "invalid broker configuration: "+msg, err)
}

// ErrClosed creates an error for operations on a closed queue.
func ErrClosed() *errors.AppError {
	return errors.New(CodeClosed, "broker connection is closed", nil)
}
