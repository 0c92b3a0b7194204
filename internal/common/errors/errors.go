// Package errors provides standardized error handling for the client controller.
package errors

import (
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Validation errors: malformed user input, reported synchronously.
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeDangerousInput   ErrorCode = "DANGEROUS_INPUT"

	// Authentication errors: well-formed credentials that do not match.
	ErrCodeAuthFailed ErrorCode = "AUTH_FAILED"

	// Persistence errors: the local key-value store rejected an operation.
	ErrCodeSessionSaveFailed  ErrorCode = "SESSION_SAVE_FAILED"
	ErrCodeSessionLoadFailed  ErrorCode = "SESSION_LOAD_FAILED"
	ErrCodeStorageUnavailable ErrorCode = "STORAGE_UNAVAILABLE"

	// Catalog errors.
	ErrCodeReleaseNotFound    ErrorCode = "RELEASE_NOT_FOUND"
	ErrCodeCatalogQueryFailed ErrorCode = "CATALOG_QUERY_FAILED"

	// Timer/periodic-task errors.
	ErrCodeTimerCallbackPanic ErrorCode = "TIMER_CALLBACK_PANIC"

	// Navigation errors.
	ErrCodeUnknownPage ErrorCode = "UNKNOWN_PAGE"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// ClientError represents a structured application error.
type ClientError struct {
	Code        ErrorCode              `json:"code"`
	Message     string                 `json:"message"`
	Details     string                 `json:"details,omitempty"`
	Recoverable bool                   `json:"recoverable"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
	Timestamp   time.Time              `json:"timestamp"`
}

func (e *ClientError) Error() string {
	return fmt.Sprintf("ClientError[%s]: %s", e.Code, e.Message)
}

// Is lets errors.Is match two ClientErrors by code.
func (e *ClientError) Is(target error) bool {
	t, ok := target.(*ClientError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// ==========================
// 2. Error Constructors
// ==========================

// NewValidationError creates a recoverable input validation error.
func NewValidationError(message string) *ClientError {
	return &ClientError{
		Code:        ErrCodeValidationFailed,
		Message:     message,
		Recoverable: true,
		Timestamp:   time.Now().UTC(),
	}
}

// NewDangerousInputError creates a recoverable error for blacklisted input patterns.
func NewDangerousInputError(field string) *ClientError {
	return &ClientError{
		Code:        ErrCodeDangerousInput,
		Message:     "Invalid characters in input",
		Details:     fmt.Sprintf("field: %s", field),
		Recoverable: true,
		Timestamp:   time.Now().UTC(),
	}
}

// NewAuthFailedError creates a recoverable authentication error.
func NewAuthFailedError() *ClientError {
	return &ClientError{
		Code:        ErrCodeAuthFailed,
		Message:     "Invalid username or password",
		Recoverable: true,
		Timestamp:   time.Now().UTC(),
	}
}

// NewSessionSaveFailedError creates a persistence error after the retry pass.
func NewSessionSaveFailedError(err error) *ClientError {
	return &ClientError{
		Code:        ErrCodeSessionSaveFailed,
		Message:     "Error saving login session",
		Details:     err.Error(),
		Recoverable: true,
		Timestamp:   time.Now().UTC(),
	}
}

// NewSessionLoadFailedError creates a persistence read error. Callers fail
// open to logged-out, so this is recoverable.
func NewSessionLoadFailedError(err error) *ClientError {
	return &ClientError{
		Code:        ErrCodeSessionLoadFailed,
		Message:     "Error reading login session",
		Details:     err.Error(),
		Recoverable: true,
		Timestamp:   time.Now().UTC(),
	}
}

// NewStorageUnavailableError creates a storage connectivity error.
func NewStorageUnavailableError(err error) *ClientError {
	return &ClientError{
		Code:        ErrCodeStorageUnavailable,
		Message:     "Local storage unavailable",
		Details:     err.Error(),
		Recoverable: false,
		Timestamp:   time.Now().UTC(),
	}
}

// NewReleaseNotFoundError creates a non-recoverable catalog lookup error.
func NewReleaseNotFoundError(version string) *ClientError {
	return &ClientError{
		Code:        ErrCodeReleaseNotFound,
		Message:     "Release not found in catalog",
		Details:     fmt.Sprintf("version: %s", version),
		Recoverable: false,
		Timestamp:   time.Now().UTC(),
	}
}

// NewCatalogQueryFailedError creates a recoverable catalog query error.
func NewCatalogQueryFailedError(err error) *ClientError {
	return &ClientError{
		Code:        ErrCodeCatalogQueryFailed,
		Message:     "Catalog query error",
		Details:     err.Error(),
		Recoverable: true,
		Timestamp:   time.Now().UTC(),
	}
}

// NewTimerCallbackPanicError wraps a recovered panic from a timer callback.
func NewTimerCallbackPanicError(recovered interface{}) *ClientError {
	return &ClientError{
		Code:        ErrCodeTimerCallbackPanic,
		Message:     "Timer callback panicked",
		Details:     fmt.Sprintf("%v", recovered),
		Recoverable: false,
		Timestamp:   time.Now().UTC(),
	}
}

// NewUnknownPageError records a navigation request outside the valid page set.
// Navigation falls back to home, so this never reaches the caller.
func NewUnknownPageError(pageID string) *ClientError {
	return &ClientError{
		Code:        ErrCodeUnknownPage,
		Message:     "Unknown page id",
		Details:     fmt.Sprintf("pageId: %s", pageID),
		Recoverable: true,
		Timestamp:   time.Now().UTC(),
	}
}

// ==========================
// 3. Error Classification
// ==========================

// GetErrorCategory maps an error code to its taxonomy bucket.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeValidationFailed, ErrCodeDangerousInput:
		return "validation"
	case ErrCodeAuthFailed:
		return "authentication"
	case ErrCodeSessionSaveFailed, ErrCodeSessionLoadFailed, ErrCodeStorageUnavailable:
		return "persistence"
	case ErrCodeTimerCallbackPanic:
		return "timer"
	case ErrCodeReleaseNotFound, ErrCodeCatalogQueryFailed:
		return "catalog"
	default:
		return "internal"
	}
}

// IsRecoverable reports whether the client should keep functioning after err.
// Unknown error shapes are treated as non-recoverable.
func IsRecoverable(err error) bool {
	if ce, ok := err.(*ClientError); ok {
		return ce.Recoverable
	}
	return false
}
