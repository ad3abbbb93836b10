package shared

import "errors"

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
)

// Engine error codes. Handlers map these to HTTP statuses; the settlement
// pipeline uses them to decide whether a failure is retryable.
const (
	ErrCodeNoRateFound       = "NO_RATE_FOUND"
	ErrCodeInvalidHierarchy  = "INVALID_HIERARCHY"
	ErrCodeInvalidTransition = "INVALID_TRANSITION"
)

// IsConfigurationError reports whether err is a rate-configuration error.
// Configuration errors block settlement generation and must be surfaced to
// operators rather than retried.
func IsConfigurationError(err error) bool {
	return hasCode(err, ErrCodeNoRateFound)
}

// IsHierarchyError reports whether err indicates corrupted company hierarchy
// data (a cycle or a missing parent link).
func IsHierarchyError(err error) bool {
	return hasCode(err, ErrCodeInvalidHierarchy)
}

func hasCode(err error, code string) bool {
	var de *DomainError
	return errors.As(err, &de) && de.Code == code
}
