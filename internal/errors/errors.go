// Package errors provides domain-specific error types for hostsfilter.
//
// This package defines structured errors with error codes, making it easier
// to handle and test different error conditions consistently across the
// application.
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a category of error that can occur in the application.
type ErrorCode string

const (
	// ErrCodeConfig indicates a configuration-related error.
	ErrCodeConfig ErrorCode = "CONFIG_ERROR"

	// ErrCodeValidation indicates a validation error.
	ErrCodeValidation ErrorCode = "VALIDATION_ERROR"

	// ErrCodeFetch indicates a failed or timed-out list download.
	// Fetch errors are non-fatal: the affected list is excluded from the
	// merge with a warning.
	ErrCodeFetch ErrorCode = "FETCH_ERROR"

	// ErrCodeParse indicates a list parsing error. Malformed lines are
	// skipped and counted, never fatal.
	ErrCodeParse ErrorCode = "PARSE_ERROR"

	// ErrCodeManifest indicates an error reading or writing the manifest
	// of previously applied entries.
	ErrCodeManifest ErrorCode = "MANIFEST_ERROR"

	// ErrCodeBackup indicates the backup copy could not be created.
	// Backup errors are fatal: the apply aborts before any write.
	ErrCodeBackup ErrorCode = "BACKUP_ERROR"

	// ErrCodeWrite indicates the target file could not be written.
	// The atomic replace guarantees the target is left untouched.
	ErrCodeWrite ErrorCode = "WRITE_ERROR"

	// ErrCodePermission indicates missing privileges for the operation.
	ErrCodePermission ErrorCode = "PERMISSION_ERROR"

	// ErrCodeInternal indicates an unexpected internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// Error represents a domain-specific error with an error code and optional cause.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error for errors.Is and errors.As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target error code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates a new domain error with the specified code and message.
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   nil,
	}
}

// Wrap creates a new domain error wrapping an existing error.
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// CodeOf extracts the error code from err, or ErrCodeInternal if err is not
// a domain error.
func CodeOf(err error) ErrorCode {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code
	}
	return ErrCodeInternal
}

// IsFatal reports whether err aborts the whole operation. Per-line and
// per-list errors (parse, fetch) are aggregated into diagnostics instead.
func IsFatal(err error) bool {
	switch CodeOf(err) {
	case ErrCodeFetch, ErrCodeParse:
		return false
	}
	return true
}

// NewConfigError creates a new configuration error.
func NewConfigError(message string, cause error) *Error {
	return Wrap(ErrCodeConfig, message, cause)
}

// NewValidationError creates a new validation error.
func NewValidationError(message string, cause error) *Error {
	return Wrap(ErrCodeValidation, message, cause)
}

// NewFetchError creates a new list download error.
func NewFetchError(message string, cause error) *Error {
	return Wrap(ErrCodeFetch, message, cause)
}

// NewParseError creates a new list parsing error.
func NewParseError(message string, cause error) *Error {
	return Wrap(ErrCodeParse, message, cause)
}

// NewManifestError creates a new manifest error.
func NewManifestError(message string, cause error) *Error {
	return Wrap(ErrCodeManifest, message, cause)
}

// NewBackupError creates a new backup error.
func NewBackupError(message string, cause error) *Error {
	return Wrap(ErrCodeBackup, message, cause)
}

// NewWriteError creates a new target write error.
func NewWriteError(message string, cause error) *Error {
	return Wrap(ErrCodeWrite, message, cause)
}

// NewPermissionError creates a new privilege error.
func NewPermissionError(message string, cause error) *Error {
	return Wrap(ErrCodePermission, message, cause)
}

// NewInternalError creates a new internal error.
func NewInternalError(message string, cause error) *Error {
	return Wrap(ErrCodeInternal, message, cause)
}
