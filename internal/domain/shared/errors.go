package shared

import (
	"context"
	"errors"
	"fmt"
)

// ErrorKind classifies a DomainError for callers deciding how to react to it
type ErrorKind string

const (
	// KindValidation is malformed or out-of-range input; nothing was attempted
	KindValidation ErrorKind = "VALIDATION"
	// KindNotFound means the referenced entity does not exist or is inactive
	KindNotFound ErrorKind = "NOT_FOUND"
	// KindBusinessRule is a rejected transition: insufficient funds, wrong status, overpayment
	KindBusinessRule ErrorKind = "BUSINESS_RULE"
	// KindIntegrity is an infrastructure failure; the unit of work was rolled back
	KindIntegrity ErrorKind = "INTEGRITY"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code      string    `json:"code"`
	Kind      ErrorKind `json:"kind"`
	Message   string    `json:"message"`
	Retryable bool      `json:"retryable,omitempty"`
	cause     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Unwrap returns the underlying infrastructure error, if any
func (e *DomainError) Unwrap() error {
	return e.cause
}

// Is matches domain errors by code so sentinel comparisons survive wrapping
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new business-rule domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Kind:    KindBusinessRule,
		Message: message,
	}
}

// NewValidationError creates a validation error
func NewValidationError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Kind:    KindValidation,
		Message: message,
	}
}

// NewNotFoundError creates a not-found error for the given entity kind
func NewNotFoundError(entity string, ref any) *DomainError {
	return &DomainError{
		Code:    "NOT_FOUND",
		Kind:    KindNotFound,
		Message: fmt.Sprintf("%s %v not found", entity, ref),
	}
}

// NewIntegrityError wraps an infrastructure failure raised while running op.
// Deadline and cancellation failures are marked retryable.
func NewIntegrityError(op string, cause error) *DomainError {
	if errors.Is(cause, context.DeadlineExceeded) {
		return &DomainError{
			Code:      "TIMEOUT",
			Kind:      KindIntegrity,
			Message:   fmt.Sprintf("%s timed out, retry the operation", op),
			Retryable: true,
			cause:     cause,
		}
	}
	return &DomainError{
		Code:    "INTERNAL_ERROR",
		Kind:    KindIntegrity,
		Message: fmt.Sprintf("%s failed", op),
		cause:   cause,
	}
}

// Common domain errors
var (
	ErrNotFound            = &DomainError{Code: "NOT_FOUND", Kind: KindNotFound, Message: "Resource not found"}
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewValidationError("INVALID_INPUT", "Invalid input provided")
	ErrInvalidAmount       = NewValidationError("INVALID_AMOUNT", "Amount must be positive")
	ErrConcurrencyConflict = &DomainError{Code: "CONCURRENCY_CONFLICT", Kind: KindIntegrity, Message: "Resource was modified by another process", Retryable: true}
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrInsufficientBalance = NewDomainError("INSUFFICIENT_BALANCE", "Insufficient balance available")
	ErrExceedsOutstanding  = NewDomainError("EXCEEDS_OUTSTANDING", "Amount exceeds the outstanding balance")
	ErrNumberingExhausted  = &DomainError{Code: "NUMBERING_EXHAUSTED", Kind: KindIntegrity, Message: "Could not generate a unique identifier"}
)

// KindOf returns the kind of a domain error in err's chain, or KindIntegrity for
// anything that is not a DomainError.
func KindOf(err error) ErrorKind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindIntegrity
}

// IsKind reports whether err carries the given kind
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}

// IsRetryable reports whether the caller may safely retry the failed operation
func IsRetryable(err error) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Retryable
	}
	return false
}
