package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/domain"
)

// DailyProgressStore defines the interface for per-day goal records.
type DailyProgressStore interface {
	// Create inserts a record. Returns ErrDuplicate if one already exists for
	// the owner and date; the insert is a no-op in that case.
	Create(ctx context.Context, progress *domain.DailyProgress) error

	// Get retrieves the record for ownerID on date.
	// Returns ErrDailyProgressNotFound if it does not exist.
	Get(ctx context.Context, ownerID uuid.UUID, date time.Time) (*domain.DailyProgress, error)

	// Increment adds one to the completed count and latches CompletedAt at now
	// the first time the count reaches the target. justCompleted is true only
	// for the call that fired the latch.
	Increment(
		ctx context.Context,
		ownerID uuid.UUID,
		date time.Time,
		now time.Time,
	) (progress *domain.DailyProgress, justCompleted bool, err error)
}

// StreakMutator applies a change to a locked streak. Returning false skips
// the write.
type StreakMutator func(streak *domain.Streak) (changed bool, err error)

// StreakStore defines the interface for per-owner streak records.
type StreakStore interface {
	// Create inserts a record. Returns ErrDuplicate if the owner already has one.
	Create(ctx context.Context, streak *domain.Streak) error

	// Get retrieves the owner's streak.
	// Returns ErrStreakNotFound if it does not exist.
	Get(ctx context.Context, ownerID uuid.UUID) (*domain.Streak, error)

	// Update locks the owner's streak, applies fn, and persists the result if
	// fn reports a change. Returns the resulting streak.
	// Returns ErrStreakNotFound if it does not exist.
	Update(ctx context.Context, ownerID uuid.UUID, fn StreakMutator) (*domain.Streak, error)
}

// BingoStore defines the interface for per-day bingo boards.
type BingoStore interface {
	// Create inserts an empty board. Returns ErrDuplicate if one already
	// exists for the owner and date.
	Create(ctx context.Context, board *domain.BingoBoard) error

	// Get retrieves the board for ownerID on date.
	// Returns ErrBingoBoardNotFound if it does not exist.
	Get(ctx context.Context, ownerID uuid.UUID, date time.Time) (*domain.BingoBoard, error)

	// AddCell adds cell to the board's completed set if absent. added reports
	// whether this call inserted it. The returned board is the current state.
	AddCell(
		ctx context.Context,
		ownerID uuid.UUID,
		date time.Time,
		cell string,
		now time.Time,
	) (board *domain.BingoBoard, added bool, err error)

	// MarkAchieved latches the achieved flag. It returns true only for the
	// call that performed the transition.
	MarkAchieved(ctx context.Context, ownerID uuid.UUID, date time.Time, now time.Time) (bool, error)
}
