package domain

import (
	"time"

	"github.com/google/uuid"
)

// DefaultFreezeCount is the number of streak freezes a new owner starts with.
const DefaultFreezeCount = 1

// StreakChange describes what a goal completion did to a streak.
type StreakChange string

// Possible streak changes.
const (
	StreakUnchanged StreakChange = "unchanged"
	StreakExtended  StreakChange = "extended"
	StreakFrozen    StreakChange = "freeze_used"
	StreakReset     StreakChange = "reset"
)

// Streak is an owner's run of consecutive days with a completed daily goal.
type Streak struct {
	OwnerID            uuid.UUID  `json:"owner_id"`
	CurrentStreak      int        `json:"current_streak"`
	LongestStreak      int        `json:"longest_streak"`
	LastCompletedDate  *time.Time `json:"last_completed_date,omitempty"`
	FreezeCount        int        `json:"freeze_count"`
	LastFreezeUsedDate *time.Time `json:"last_freeze_used_date,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// NewStreak creates an empty streak with the given number of freezes.
func NewStreak(ownerID uuid.UUID, freezes int) (*Streak, error) {
	if ownerID == uuid.Nil {
		return nil, NewValidationError("owner_id", "must not be empty", ErrInvalidID)
	}
	if freezes < 0 {
		return nil, NewValidationError("freeze_count", "must not be negative", ErrNegativeCounter)
	}
	now := time.Now().UTC()
	return &Streak{
		OwnerID:     ownerID,
		FreezeCount: freezes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Advance records a goal completion on today and returns what changed.
//
// The streak grows only when the previous completion was yesterday. A gap of
// exactly two days is bridged by consuming one freeze, at most one per day,
// and leaves CurrentStreak as it was. Any other gap restarts the streak at 1.
// A completion on or before LastCompletedDate is a no-op, which makes repeated
// delivery of the same completion harmless.
func (s *Streak) Advance(today time.Time) StreakChange {
	today = DayOf(today, time.UTC)

	change := StreakReset
	if s.LastCompletedDate != nil {
		gap := DaysBetween(*s.LastCompletedDate, today)
		switch {
		case gap <= 0:
			return StreakUnchanged
		case gap == 1:
			change = StreakExtended
		case gap == 2 && s.FreezeCount > 0 && !s.freezeUsedOn(today):
			change = StreakFrozen
		}
	}

	switch change {
	case StreakExtended:
		s.CurrentStreak++
	case StreakFrozen:
		s.FreezeCount--
		s.LastFreezeUsedDate = &today
	default:
		s.CurrentStreak = 1
	}

	if s.CurrentStreak > s.LongestStreak {
		s.LongestStreak = s.CurrentStreak
	}
	s.LastCompletedDate = &today
	return change
}

func (s *Streak) freezeUsedOn(day time.Time) bool {
	return s.LastFreezeUsedDate != nil && DaysBetween(*s.LastFreezeUsedDate, day) == 0
}
