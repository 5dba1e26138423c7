package srs

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/domain"
)

// Common errors
var (
	ErrNilItem = errors.New("learnable item cannot be nil")

	// ErrInvalidRating aliases the domain error so callers can match on either.
	ErrInvalidRating = domain.ErrInvalidRating
)

// ReviewOutcome reports the state transitions caused by one review.
type ReviewOutcome struct {
	PreviousMastery     domain.MasteryStatus
	MasteryJustAchieved bool
	Lapse               bool
}

// Service defines the interface for memory model operations.
type Service interface {
	// ProcessReview computes the item state after a rating. The input item is
	// never modified.
	ProcessReview(
		item *domain.LearnableItem,
		rating domain.Rating,
		sessionID uuid.UUID,
		now time.Time,
	) (*domain.LearnableItem, ReviewOutcome, error)

	// Retrievability returns the item's current recall probability.
	Retrievability(item *domain.LearnableItem, now time.Time) float64

	// IsDue reports whether the item belongs in a review queue at now.
	IsDue(item *domain.LearnableItem, now time.Time) bool

	// Params exposes the parameters the service was built with.
	Params() *Params
}

// defaultService is the standard implementation of the Service interface
type defaultService struct {
	params *Params
}

// NewDefaultService creates a new memory model service with default parameters
func NewDefaultService() Service {
	return &defaultService{
		params: NewDefaultParams(),
	}
}

// NewServiceWithParams creates a new memory model service with custom parameters
func NewServiceWithParams(params *Params) Service {
	if params == nil {
		params = NewDefaultParams()
	}
	return &defaultService{
		params: params,
	}
}

func (s *defaultService) Params() *Params {
	return s.params
}

func (s *defaultService) Retrievability(item *domain.LearnableItem, now time.Time) float64 {
	return CurrentRetrievability(item, now)
}

func (s *defaultService) IsDue(item *domain.LearnableItem, now time.Time) bool {
	return IsDue(item, now, s.params)
}

// ProcessReview implements the Service interface.
func (s *defaultService) ProcessReview(
	item *domain.LearnableItem,
	rating domain.Rating,
	sessionID uuid.UUID,
	now time.Time,
) (*domain.LearnableItem, ReviewOutcome, error) {
	if item == nil {
		return nil, ReviewOutcome{}, ErrNilItem
	}
	if err := rating.Validate(); err != nil {
		return nil, ReviewOutcome{}, err
	}
	if sessionID == uuid.Nil {
		return nil, ReviewOutcome{}, domain.NewValidationError(
			"session_id", "must not be empty", domain.ErrInvalidID)
	}

	p := s.params
	w := &p.Weights
	now = now.UTC()
	next := item.Clone()

	if item.NeverReviewed() {
		next.Stability = initStability(w, rating, p)
		next.Difficulty = clamp(initDifficulty(w, rating), p.MinDifficulty, p.MaxDifficulty)
	} else {
		elapsed := ElapsedDays(*item.LastReviewedAt, now)
		if elapsed < 0 {
			elapsed = 0
		}
		r := Retrievability(item.Stability, elapsed)
		d := clamp(item.Difficulty, p.MinDifficulty, p.MaxDifficulty)

		switch {
		case elapsed < 1:
			next.Stability = shortTermStability(w, item.Stability, rating, p)
		case rating.IsLapse():
			next.Stability = nextForgetStability(w, d, item.Stability, r, p)
		default:
			next.Stability = nextRecallStability(w, d, item.Stability, r, rating, p)
		}
		next.Difficulty = nextDifficulty(w, d, rating, p)
	}

	if rating.IsLapse() {
		next.LapseCount++
	}
	next.ConsecutiveCorrectSessions, next.LastCorrectSessionID = advanceChain(
		item.ConsecutiveCorrectSessions,
		item.LastCorrectSessionID,
		sessionID,
		rating,
	)
	next.MasteryStatus = NextMastery(next.ConsecutiveCorrectSessions, !rating.IsCorrect())
	next.ReviewCount++

	reviewedAt := now
	due := reviewedAt.Add(stabilityDuration(next.Stability))
	if due.Before(reviewedAt) {
		due = reviewedAt
	}
	next.LastReviewedAt = &reviewedAt
	next.NextReviewAt = &due
	next.Retrievability = 1
	next.UpdatedAt = reviewedAt

	outcome := ReviewOutcome{
		PreviousMastery: item.MasteryStatus,
		MasteryJustAchieved: item.MasteryStatus != domain.MasteryMastered &&
			next.MasteryStatus == domain.MasteryMastered,
		Lapse: rating.IsLapse(),
	}
	return next, outcome, nil
}

func stabilityDuration(days float64) time.Duration {
	return time.Duration(days * hoursPerDay * float64(time.Hour))
}
