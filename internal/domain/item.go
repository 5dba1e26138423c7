package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MasteryStatus is the coarse learning state of an item.
type MasteryStatus string

// Mastery states, in forward order.
const (
	MasteryLearning MasteryStatus = "learning"
	MasteryLearned  MasteryStatus = "learned"
	MasteryMastered MasteryStatus = "mastered"
)

// IsValid reports whether m is one of the known mastery states.
func (m MasteryStatus) IsValid() bool {
	switch m {
	case MasteryLearning, MasteryLearned, MasteryMastered:
		return true
	}
	return false
}

// Defaults for freshly captured items.
const (
	DefaultDifficulty = 5.0
	DefaultStability  = 1.0

	// MaxConsecutiveCorrectSessions is the cap on the correct-session chain.
	// Reaching it is what makes an item mastered.
	MaxConsecutiveCorrectSessions = 3

	MinDifficulty = 0.0
	MaxDifficulty = 10.0
)

// Validation errors for LearnableItem.
var (
	ErrEmptyItemOwnerID      = errors.New("item owner ID cannot be empty")
	ErrInvalidDifficulty     = errors.New("difficulty must be between 0 and 10")
	ErrInvalidStability      = errors.New("stability must be greater than 0")
	ErrInvalidRetrievability = errors.New("retrievability must be between 0 and 1")
	ErrNegativeCounter       = errors.New("counters cannot be negative")
	ErrInvalidCorrectChain   = errors.New("consecutive correct sessions must be between 0 and 3")
)

// Content is the pair a learner is trying to retain.
type Content struct {
	Original    string `json:"original"`
	Translation string `json:"translation"`
	Language    string `json:"language,omitempty"`
}

// LearnableItem is a captured vocabulary entry together with its memory state.
// Retrievability is derived: it is recomputed whenever the item is read for
// scheduling and is never trusted from storage.
type LearnableItem struct {
	ID                         uuid.UUID     `json:"id"`
	OwnerID                    uuid.UUID     `json:"owner_id"`
	Content                    Content       `json:"content"`
	Category                   string        `json:"category,omitempty"`
	Difficulty                 float64       `json:"difficulty"`
	Stability                  float64       `json:"stability"`
	Retrievability             float64       `json:"retrievability"`
	LapseCount                 int           `json:"lapse_count"`
	ReviewCount                int           `json:"review_count"`
	ConsecutiveCorrectSessions int           `json:"consecutive_correct_sessions"`
	LastCorrectSessionID       *uuid.UUID    `json:"last_correct_session_id,omitempty"`
	MasteryStatus              MasteryStatus `json:"mastery_status"`
	LastReviewedAt             *time.Time    `json:"last_reviewed_at,omitempty"`
	NextReviewAt               *time.Time    `json:"next_review_at,omitempty"`
	CreatedAt                  time.Time     `json:"created_at"`
	UpdatedAt                  time.Time     `json:"updated_at"`
}

// NewLearnableItem creates an item in its initial memory state.
func NewLearnableItem(ownerID uuid.UUID, content Content, category string) (*LearnableItem, error) {
	now := time.Now().UTC()
	item := &LearnableItem{
		ID:             uuid.New(),
		OwnerID:        ownerID,
		Content:        content,
		Category:       strings.ToLower(strings.TrimSpace(category)),
		Difficulty:     DefaultDifficulty,
		Stability:      DefaultStability,
		Retrievability: 1,
		MasteryStatus:  MasteryLearning,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := item.Validate(); err != nil {
		return nil, err
	}
	return item, nil
}

// Validate checks the item invariants.
func (i *LearnableItem) Validate() error {
	if i.ID == uuid.Nil {
		return NewValidationError("id", "must not be empty", ErrInvalidID)
	}
	if i.OwnerID == uuid.Nil {
		return NewValidationError("owner_id", "must not be empty", ErrEmptyItemOwnerID)
	}
	if strings.TrimSpace(i.Content.Original) == "" {
		return NewValidationError("content.original", "must not be empty", ErrEmptyContent)
	}
	if i.Difficulty < MinDifficulty || i.Difficulty > MaxDifficulty {
		return NewValidationError("difficulty", "out of range", ErrInvalidDifficulty)
	}
	if i.Stability <= 0 {
		return NewValidationError("stability", "must be positive", ErrInvalidStability)
	}
	if i.Retrievability < 0 || i.Retrievability > 1 {
		return NewValidationError("retrievability", "out of range", ErrInvalidRetrievability)
	}
	if i.LapseCount < 0 || i.ReviewCount < 0 {
		return NewValidationError("counters", "must not be negative", ErrNegativeCounter)
	}
	if i.ConsecutiveCorrectSessions < 0 ||
		i.ConsecutiveCorrectSessions > MaxConsecutiveCorrectSessions {
		return NewValidationError(
			"consecutive_correct_sessions",
			"out of range",
			ErrInvalidCorrectChain,
		)
	}
	if !i.MasteryStatus.IsValid() {
		return NewValidationError("mastery_status", string(i.MasteryStatus), ErrInvalidMasteryStatus)
	}
	return nil
}

// NeverReviewed reports whether the item has no review on record.
func (i *LearnableItem) NeverReviewed() bool {
	return i.ReviewCount == 0 || i.LastReviewedAt == nil
}

// Clone returns a deep copy so pure functions can derive new states
// without aliasing the caller's pointers.
func (i *LearnableItem) Clone() *LearnableItem {
	c := *i
	if i.LastCorrectSessionID != nil {
		id := *i.LastCorrectSessionID
		c.LastCorrectSessionID = &id
	}
	if i.LastReviewedAt != nil {
		t := *i.LastReviewedAt
		c.LastReviewedAt = &t
	}
	if i.NextReviewAt != nil {
		t := *i.NextReviewAt
		c.NextReviewAt = &t
	}
	return &c
}
