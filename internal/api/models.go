package api

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/domain"
	"github.com/phrazzld/recall-api/internal/service/boss_round"
	"github.com/phrazzld/recall-api/internal/service/review"
)

// SubmitRatingRequest is the payload for POST /api/reviews.
type SubmitRatingRequest struct {
	ItemID    string `json:"item_id"    validate:"required,uuid"`
	Rating    int    `json:"rating"     validate:"required"`
	SessionID string `json:"session_id" validate:"required,uuid"`
}

// BatchRatingEntry is one rating inside a batch submission.
type BatchRatingEntry struct {
	ItemID string `json:"item_id" validate:"required,uuid"`
	Rating int    `json:"rating"  validate:"required"`
}

// SubmitBatchRequest is the payload for POST /api/reviews/batch.
type SubmitBatchRequest struct {
	SessionID string             `json:"session_id" validate:"required,uuid"`
	Ratings   []BatchRatingEntry `json:"ratings"    validate:"required,min=1,dive"`
}

// PostEventRequest is the payload for POST /api/engagement/events.
type PostEventRequest struct {
	Kind    string          `json:"kind"              validate:"required"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// BossRoundResultRequest is the payload for POST /api/boss-round/results.
type BossRoundResultRequest struct {
	Score           int     `json:"score"             validate:"gte=0,ltefield=Total"`
	Total           int     `json:"total"             validate:"gt=0"`
	TimeUsedSeconds float64 `json:"time_used_seconds" validate:"gte=0,lte=86400"`
}

// ItemResponse is the client view of a learnable item.
type ItemResponse struct {
	ID                         uuid.UUID      `json:"id"`
	Content                    domain.Content `json:"content"`
	Category                   string         `json:"category,omitempty"`
	Difficulty                 float64        `json:"difficulty"`
	Stability                  float64        `json:"stability"`
	Retrievability             float64        `json:"retrievability"`
	LapseCount                 int            `json:"lapse_count"`
	ReviewCount                int            `json:"review_count"`
	ConsecutiveCorrectSessions int            `json:"consecutive_correct_sessions"`
	MasteryStatus              string         `json:"mastery_status"`
	LastReviewedAt             *time.Time     `json:"last_reviewed_at,omitempty"`
	NextReviewAt               *time.Time     `json:"next_review_at,omitempty"`
}

// DueQueueResponse is the response for GET /api/reviews/due.
type DueQueueResponse struct {
	Items     []ItemResponse `json:"items"`
	TotalDue  int            `json:"total_due"`
	SessionID uuid.UUID      `json:"session_id"`
}

// RatingResponse is the outcome of one rating.
type RatingResponse struct {
	Item                ItemResponse `json:"item"`
	NextReviewHint      string       `json:"next_review_hint"`
	MasteryJustAchieved bool         `json:"mastery_just_achieved"`
}

// BatchFailureResponse reports one rejected batch entry.
type BatchFailureResponse struct {
	ItemID uuid.UUID `json:"item_id"`
	Error  string    `json:"error"`
}

// SessionResponse is the client view of a review session.
type SessionResponse struct {
	ID            uuid.UUID  `json:"id"`
	StartedAt     time.Time  `json:"started_at"`
	EndedAt       *time.Time `json:"ended_at,omitempty"`
	ItemsReviewed int        `json:"items_reviewed"`
	CorrectCount  int        `json:"correct_count"`
}

// BatchResponse is the response for POST /api/reviews/batch.
type BatchResponse struct {
	Results  []RatingResponse       `json:"results"`
	Failures []BatchFailureResponse `json:"failures"`
	Session  *SessionResponse       `json:"session,omitempty"`
}

// AttentionResponse is the response for GET /api/items/attention.
type AttentionResponse struct {
	Items []ItemResponse `json:"items"`
}

// BossRoundResponse is the response for GET /api/boss-round.
type BossRoundResponse struct {
	Items            []ItemResponse         `json:"items"`
	TimeLimitSeconds int                    `json:"time_limit_seconds"`
	Stats            *domain.BossRoundStats `json:"stats,omitempty"`
	StatsAvailable   bool                   `json:"stats_available"`
}

func itemToResponse(item *domain.LearnableItem) ItemResponse {
	return ItemResponse{
		ID:                         item.ID,
		Content:                    item.Content,
		Category:                   item.Category,
		Difficulty:                 item.Difficulty,
		Stability:                  item.Stability,
		Retrievability:             item.Retrievability,
		LapseCount:                 item.LapseCount,
		ReviewCount:                item.ReviewCount,
		ConsecutiveCorrectSessions: item.ConsecutiveCorrectSessions,
		MasteryStatus:              string(item.MasteryStatus),
		LastReviewedAt:             item.LastReviewedAt,
		NextReviewAt:               item.NextReviewAt,
	}
}

func itemsToResponse(items []*domain.LearnableItem) []ItemResponse {
	out := make([]ItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, itemToResponse(item))
	}
	return out
}

func ratingToResponse(res *review.RatingResult) RatingResponse {
	return RatingResponse{
		Item:                itemToResponse(res.Item),
		NextReviewHint:      res.NextReviewHint,
		MasteryJustAchieved: res.MasteryJustAchieved,
	}
}

func sessionToResponse(s *domain.ReviewSession) *SessionResponse {
	if s == nil {
		return nil
	}
	return &SessionResponse{
		ID:            s.ID,
		StartedAt:     s.StartedAt,
		EndedAt:       s.EndedAt,
		ItemsReviewed: s.ItemsReviewed,
		CorrectCount:  s.CorrectCount,
	}
}

func batchToResponse(res *review.BatchResult) BatchResponse {
	out := BatchResponse{
		Results:  make([]RatingResponse, 0, len(res.Results)),
		Failures: make([]BatchFailureResponse, 0, len(res.Failures)),
		Session:  sessionToResponse(res.Session),
	}
	for _, r := range res.Results {
		out.Results = append(out.Results, ratingToResponse(r))
	}
	for _, f := range res.Failures {
		out.Failures = append(out.Failures, BatchFailureResponse{
			ItemID: f.ItemID,
			Error:  GetSafeErrorMessage(f.Err),
		})
	}
	return out
}

func roundToResponse(round *boss_round.Round) BossRoundResponse {
	return BossRoundResponse{
		Items:            itemsToResponse(round.Items),
		TimeLimitSeconds: round.TimeLimitSeconds,
		Stats:            round.Stats,
		StatsAvailable:   round.StatsAvailable,
	}
}
