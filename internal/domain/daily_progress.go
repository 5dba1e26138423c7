package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// DefaultDailyTarget is the number of answered items that completes a day's goal.
const DefaultDailyTarget = 10

// ErrInvalidTarget is returned for a non-positive daily target.
var ErrInvalidTarget = errors.New("daily target must be positive")

// DailyProgress tracks one owner's answered items for one calendar day.
// CompletedAt latches the first time CompletedCount reaches TargetCount and is never unset.
type DailyProgress struct {
	OwnerID        uuid.UUID  `json:"owner_id"`
	Date           time.Time  `json:"date"`
	TargetCount    int        `json:"target_count"`
	CompletedCount int        `json:"completed_count"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// NewDailyProgress creates an empty record for date.
func NewDailyProgress(ownerID uuid.UUID, date time.Time, target int) (*DailyProgress, error) {
	now := time.Now().UTC()
	p := &DailyProgress{
		OwnerID:     ownerID,
		Date:        date,
		TargetCount: target,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks the record invariants.
func (p *DailyProgress) Validate() error {
	if p.OwnerID == uuid.Nil {
		return NewValidationError("owner_id", "must not be empty", ErrInvalidID)
	}
	if p.Date.IsZero() {
		return NewValidationError("date", "must not be zero", ErrInvalidDate)
	}
	if p.TargetCount <= 0 {
		return NewValidationError("target_count", "must be positive", ErrInvalidTarget)
	}
	if p.CompletedCount < 0 {
		return NewValidationError("completed_count", "must not be negative", ErrNegativeCounter)
	}
	return nil
}

// IsComplete reports whether the goal latch has fired.
func (p *DailyProgress) IsComplete() bool {
	return p.CompletedAt != nil
}
