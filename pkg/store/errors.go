package store

import "github.com/chris-alexander-pop/event-aggregator/pkg/errors"

// Error codes for store operations.
const (
	CodeStoreFailed   = "STORE_FAILED"
	CodeInvalidConfig = "STORE_INVALID_CONFIG"
	CodeMigration     = "STORE_MIGRATION_FAILED"
)

// ErrStore creates an error for statement or connection failures that are
// not unique-violations (unique-violations are the Duplicate result, not an
// error).
func ErrStore(err error) *errors.AppError {
	return errors.New(CodeStoreFailed, "store operation failed", err)
}

// ErrInvalidConfig creates an error for invalid store configuration.
func ErrInvalidConfig(msg string, err error) *errors.AppError {
	return errors.New(CodeInvalidConfig, "invalid store configuration: "+msg, err)
}

// ErrMigration creates an error for schema initialization failures.
// These are fatal at startup.
func ErrMigration(err error) *errors.AppError {
	return errors.New(CodeMigration, "schema migration failed", err)
}
