package review

import (
	"errors"
	"fmt"

	"github.com/phrazzld/recall-api/internal/store"
)

// Common error types for the review Service.
var (
	// ErrItemNotFound indicates that the item does not exist or belongs to
	// another owner. The two cases are indistinguishable to callers.
	ErrItemNotFound = store.ErrItemNotFound

	// ErrEmptyBatch indicates a batch submission with no entries.
	ErrEmptyBatch = errors.New("batch must contain at least one rating")

	// ErrBatchTooLarge indicates a batch submission above the configured maximum.
	ErrBatchTooLarge = errors.New("batch exceeds maximum size")
)

// ServiceError wraps errors from the review service with the failing operation.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "get_due_queue", "submit_rating")
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

// NewGetDueQueueError returns a new ServiceError for the get_due_queue operation.
func NewGetDueQueueError(message string, err error) *ServiceError {
	return &ServiceError{Operation: "get_due_queue", Message: message, Err: err}
}

// NewSubmitRatingError returns a new ServiceError for the submit_rating operation.
func NewSubmitRatingError(message string, err error) *ServiceError {
	return &ServiceError{Operation: "submit_rating", Message: message, Err: err}
}
