package boss_round

import (
	"errors"
	"fmt"
)

// ErrGoalIncomplete indicates the boss round was requested before today's
// daily goal was completed.
var ErrGoalIncomplete = errors.New("daily goal not yet completed")

// ServiceError wraps errors from the boss round service with the failing operation.
type ServiceError struct {
	Operation string
	Message   string
	Err       error
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
