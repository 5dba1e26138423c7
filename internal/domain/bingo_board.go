package domain

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// BingoBoard is an owner's 3x3 micro-goal board for one calendar day.
// The completed cell set only grows and Achieved never reverts once set.
type BingoBoard struct {
	OwnerID        uuid.UUID  `json:"owner_id"`
	Date           time.Time  `json:"date"`
	CompletedCells []string   `json:"completed_cells"`
	Achieved       bool       `json:"achieved"`
	AchievedAt     *time.Time `json:"achieved_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// NewBingoBoard creates an empty board for date.
func NewBingoBoard(ownerID uuid.UUID, date time.Time) (*BingoBoard, error) {
	if ownerID == uuid.Nil {
		return nil, NewValidationError("owner_id", "must not be empty", ErrInvalidID)
	}
	if date.IsZero() {
		return nil, NewValidationError("date", "must not be zero", ErrInvalidDate)
	}
	now := time.Now().UTC()
	return &BingoBoard{
		OwnerID:        ownerID,
		Date:           date,
		CompletedCells: []string{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// HasCell reports whether cell is already completed.
func (b *BingoBoard) HasCell(cell string) bool {
	return slices.Contains(b.CompletedCells, cell)
}
