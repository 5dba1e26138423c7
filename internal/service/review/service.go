// Package review orchestrates the review loop: building the due queue,
// applying ratings through the memory model and rolling them into session
// counters.
package review

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/domain"
)

// DueQueue is an ordered review queue and the session it belongs to.
type DueQueue struct {
	Items     []*domain.LearnableItem `json:"items"`
	TotalDue  int                     `json:"total_due"`
	SessionID uuid.UUID               `json:"session_id"`
}

// RatingResult is the outcome of one rating.
type RatingResult struct {
	Item                *domain.LearnableItem `json:"item"`
	NextReviewHint      string                `json:"next_review_hint"`
	MasteryJustAchieved bool                  `json:"mastery_just_achieved"`
}

// BatchEntry is one rating in a batch submission.
type BatchEntry struct {
	ItemID uuid.UUID     `json:"item_id"`
	Rating domain.Rating `json:"rating"`
}

// BatchFailure reports an entry that could not be applied.
type BatchFailure struct {
	ItemID uuid.UUID `json:"item_id"`
	Err    error     `json:"-"`
}

// BatchResult reports a batch submission entry by entry.
type BatchResult struct {
	Results  []*RatingResult       `json:"results"`
	Failures []BatchFailure        `json:"failures"`
	Session  *domain.ReviewSession `json:"session,omitempty"`
}

// Service provides the review loop operations.
type Service interface {
	// GetDueQueue returns up to limit due items for ownerID in band order,
	// shuffled within each band, together with the owner's open session.
	// TotalDue counts every due item before the cap.
	GetDueQueue(ctx context.Context, ownerID uuid.UUID, limit int) (*DueQueue, error)

	// SubmitRating applies rating to an item inside sessionID.
	//
	// Errors:
	//   - domain.ErrValidation for a rating outside 1..4
	//   - ErrItemNotFound when the item is missing or owned by someone else
	//   - session.ErrSessionNotFound, session.ErrSessionNotOwned or
	//     session.ErrSessionClosed for a session the owner cannot rate in
	SubmitRating(
		ctx context.Context,
		ownerID, itemID uuid.UUID,
		rating domain.Rating,
		sessionID uuid.UUID,
	) (*RatingResult, error)

	// SubmitBatch applies several ratings in one session. Any invalid rating
	// rejects the whole batch before anything is written; after that each
	// entry succeeds or fails on its own and the session counters receive a
	// single delta for the successes.
	SubmitBatch(
		ctx context.Context,
		ownerID, sessionID uuid.UUID,
		entries []BatchEntry,
	) (*BatchResult, error)

	// Attention returns the owner's struggling items: those with at least
	// the configured number of lapses, most lapses first.
	Attention(ctx context.Context, ownerID uuid.UUID) ([]*domain.LearnableItem, error)
}
