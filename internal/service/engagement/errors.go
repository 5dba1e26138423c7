package engagement

import (
	"errors"
	"fmt"
)

// Common error types for the engagement Service.
var (
	// ErrUnknownEventKind indicates an event kind the processor does not route.
	ErrUnknownEventKind = errors.New("unknown event kind")

	// ErrInvalidPayload indicates an event payload that cannot be decoded.
	ErrInvalidPayload = errors.New("invalid event payload")
)

// ServiceError wraps errors from the engagement service with the failing operation.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "item_answered", "get_state")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError returns a ServiceError for operation.
func NewServiceError(operation, message string, err error) *ServiceError {
	return &ServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
