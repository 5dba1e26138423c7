package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the store.
	// Entity-specific variants wrap it (e.g., ErrItemNotFound).
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an insert would violate a uniqueness
	// guarantee, such as a second open session or a second daily record.
	// Get-or-create callers recover from it by re-reading.
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored, or violates a database constraint.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrUpdateFailed is returned when an update affected no rows because the
	// target no longer satisfies the update's preconditions.
	ErrUpdateFailed = errors.New("update failed")

	// ErrTransient is returned for failures that may succeed on retry:
	// lost connections, serialization failures, deadlocks, timeouts.
	ErrTransient = errors.New("transient store failure")

	// ErrTransactionFailed is returned when a database transaction fails
	// to begin or commit.
	ErrTransactionFailed = errors.New("transaction failed")

	// Entity-specific "not found" errors

	// ErrItemNotFound indicates that the requested learnable item does not exist.
	ErrItemNotFound = fmt.Errorf("%w: item", ErrNotFound)

	// ErrSessionNotFound indicates that the requested review session does not exist.
	ErrSessionNotFound = fmt.Errorf("%w: session", ErrNotFound)

	// ErrDailyProgressNotFound indicates that no daily record exists for the owner and date.
	ErrDailyProgressNotFound = fmt.Errorf("%w: daily progress", ErrNotFound)

	// ErrStreakNotFound indicates that no streak record exists for the owner.
	ErrStreakNotFound = fmt.Errorf("%w: streak", ErrNotFound)

	// ErrBingoBoardNotFound indicates that no board exists for the owner and date.
	ErrBingoBoardNotFound = fmt.Errorf("%w: bingo board", ErrNotFound)

	// Entity-specific conflict errors

	// ErrOpenSessionExists indicates the owner already has an open session.
	ErrOpenSessionExists = fmt.Errorf("%w: open session", ErrDuplicate)

	// ErrSessionClosed indicates that a counter update targeted an ended session.
	ErrSessionClosed = fmt.Errorf("%w: session closed", ErrUpdateFailed)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError checks if the error is any kind of "duplicate" error.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// IsTransientError reports whether a retry of the same operation could succeed.
func IsTransientError(err error) bool {
	return errors.Is(err, ErrTransient)
}
