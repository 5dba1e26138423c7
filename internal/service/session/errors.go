package session

import (
	"errors"
	"fmt"

	"github.com/phrazzld/recall-api/internal/store"
)

// Common error types for the session Manager.
var (
	// ErrSessionNotFound indicates that the session does not exist.
	ErrSessionNotFound = store.ErrSessionNotFound

	// ErrSessionClosed indicates that the session has already ended.
	ErrSessionClosed = store.ErrSessionClosed

	// ErrSessionNotOwned indicates that the session belongs to another owner.
	ErrSessionNotOwned = errors.New("unauthorized access: session not owned by user")

	// ErrSessionContention indicates that an open session could not be
	// settled within the retry budget because other requests kept replacing it.
	ErrSessionContention = errors.New("could not settle open session")
)

// ServiceError wraps errors from the session manager with the failing operation.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "get_or_create", "record_ratings")
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
