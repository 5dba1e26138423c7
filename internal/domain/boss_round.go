package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Boss round defaults.
const (
	DefaultBossRoundSize      = 5
	DefaultBossRoundTimeLimit = 90 * time.Second
)

// Validation errors for boss round results.
var (
	ErrInvalidBossTotal = errors.New("total must be positive")
	ErrInvalidBossScore = errors.New("score must be between 0 and total")
	ErrInvalidTimeUsed  = errors.New("time used cannot be negative")
)

// BossRoundAttempt is one entry in the append-only boss round log.
type BossRoundAttempt struct {
	ID               uuid.UUID `json:"id"`
	OwnerID          uuid.UUID `json:"owner_id"`
	TotalItems       int       `json:"total_items"`
	CorrectCount     int       `json:"correct_count"`
	TimeLimitSeconds int       `json:"time_limit_seconds"`
	TimeUsedSeconds  int       `json:"time_used_seconds"`
	Accuracy         int       `json:"accuracy"`
	IsPerfect        bool      `json:"is_perfect"`
	CompletedAt      time.Time `json:"completed_at"`
}

// NewBossRoundAttempt validates a result and derives accuracy and perfection.
func NewBossRoundAttempt(
	ownerID uuid.UUID,
	correct, total int,
	timeLimit, timeUsed time.Duration,
	completedAt time.Time,
) (*BossRoundAttempt, error) {
	if ownerID == uuid.Nil {
		return nil, NewValidationError("owner_id", "must not be empty", ErrInvalidID)
	}
	if total <= 0 {
		return nil, NewValidationError("total", "must be positive", ErrInvalidBossTotal)
	}
	if correct < 0 || correct > total {
		return nil, NewValidationError("score", "must be between 0 and total", ErrInvalidBossScore)
	}
	if timeUsed < 0 {
		return nil, NewValidationError("time_used", "must not be negative", ErrInvalidTimeUsed)
	}

	return &BossRoundAttempt{
		ID:               uuid.New(),
		OwnerID:          ownerID,
		TotalItems:       total,
		CorrectCount:     correct,
		TimeLimitSeconds: int(timeLimit.Seconds()),
		TimeUsedSeconds:  int(timeUsed.Seconds()),
		Accuracy:         Percent(correct, total),
		IsPerfect:        correct == total,
		CompletedAt:      completedAt.UTC(),
	}, nil
}

// BossRoundStats aggregates an owner's boss round history.
type BossRoundStats struct {
	BestAccuracy  int `json:"best_accuracy"`
	TotalAttempts int `json:"total_attempts"`
	PerfectRounds int `json:"perfect_rounds"`
}
