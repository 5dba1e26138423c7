package domain

import (
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
)

// DefaultSessionBoundary is the inactivity gap after which an open session is stale.
const DefaultSessionBoundary = 2 * time.Hour

// Validation errors for ReviewSession.
var (
	ErrEmptySessionOwnerID = errors.New("session owner ID cannot be empty")
	ErrInvalidSessionCount = errors.New("correct count cannot exceed items reviewed")
)

// ReviewSession groups the ratings a learner submits in one sitting.
// At most one session per owner may be open (EndedAt == nil) at any instant.
type ReviewSession struct {
	ID            uuid.UUID  `json:"id"`
	OwnerID       uuid.UUID  `json:"owner_id"`
	StartedAt     time.Time  `json:"started_at"`
	EndedAt       *time.Time `json:"ended_at,omitempty"`
	ItemsReviewed int        `json:"items_reviewed"`
	CorrectCount  int        `json:"correct_count"`
}

// NewReviewSession creates an open session with zero counters.
func NewReviewSession(ownerID uuid.UUID, startedAt time.Time) (*ReviewSession, error) {
	s := &ReviewSession{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		StartedAt: startedAt.UTC(),
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks the session invariants.
func (s *ReviewSession) Validate() error {
	if s.ID == uuid.Nil {
		return NewValidationError("id", "must not be empty", ErrInvalidID)
	}
	if s.OwnerID == uuid.Nil {
		return NewValidationError("owner_id", "must not be empty", ErrEmptySessionOwnerID)
	}
	if s.ItemsReviewed < 0 || s.CorrectCount < 0 {
		return NewValidationError("counters", "must not be negative", ErrNegativeCounter)
	}
	if s.CorrectCount > s.ItemsReviewed {
		return NewValidationError("correct_count", "exceeds items reviewed", ErrInvalidSessionCount)
	}
	return nil
}

// IsOpen reports whether the session has not been ended.
func (s *ReviewSession) IsOpen() bool {
	return s.EndedAt == nil
}

// IsStale reports whether an open session started longer ago than boundary.
func (s *ReviewSession) IsStale(now time.Time, boundary time.Duration) bool {
	return now.Sub(s.StartedAt) > boundary
}

// SessionSummary is returned when a session is ended explicitly.
type SessionSummary struct {
	SessionID     uuid.UUID     `json:"session_id"`
	ItemsReviewed int           `json:"items_reviewed"`
	CorrectCount  int           `json:"correct_count"`
	Accuracy      int           `json:"accuracy"`
	Duration      time.Duration `json:"-"`
	DurationSecs  int64         `json:"duration_seconds"`
}

// Summarize computes the end-of-session summary. Accuracy is a rounded
// percentage and 0 for an empty session. now is used as the end time of a
// session that is still open.
func (s *ReviewSession) Summarize(now time.Time) SessionSummary {
	end := now
	if s.EndedAt != nil {
		end = *s.EndedAt
	}
	return SessionSummary{
		SessionID:     s.ID,
		ItemsReviewed: s.ItemsReviewed,
		CorrectCount:  s.CorrectCount,
		Accuracy:      Percent(s.CorrectCount, s.ItemsReviewed),
		Duration:      end.Sub(s.StartedAt),
		DurationSecs:  int64(end.Sub(s.StartedAt).Seconds()),
	}
}

// Percent returns round(100*part/total), or 0 when total is not positive.
func Percent(part, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(part) / float64(total)))
}
