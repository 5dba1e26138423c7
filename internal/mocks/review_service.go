package mocks

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/domain"
	"github.com/phrazzld/recall-api/internal/service/review"
)

// MockReviewService implements review.Service for testing
type MockReviewService struct {
	GetDueQueueFn  func(ctx context.Context, ownerID uuid.UUID, limit int) (*review.DueQueue, error)
	SubmitRatingFn func(ctx context.Context, ownerID, itemID uuid.UUID, rating domain.Rating, sessionID uuid.UUID) (*review.RatingResult, error)
	SubmitBatchFn  func(ctx context.Context, ownerID, sessionID uuid.UUID, entries []review.BatchEntry) (*review.BatchResult, error)
	AttentionFn    func(ctx context.Context, ownerID uuid.UUID) ([]*domain.LearnableItem, error)

	// Call tracking for verification
	mu         sync.Mutex
	DueLimits  []int
	RatingArgs []SubmitRatingCall
}

// SubmitRatingCall records the arguments of one SubmitRating call.
type SubmitRatingCall struct {
	OwnerID   uuid.UUID
	ItemID    uuid.UUID
	Rating    domain.Rating
	SessionID uuid.UUID
}

var _ review.Service = (*MockReviewService)(nil)

// GetDueQueue implements the review.Service interface
func (m *MockReviewService) GetDueQueue(ctx context.Context, ownerID uuid.UUID, limit int) (*review.DueQueue, error) {
	m.mu.Lock()
	m.DueLimits = append(m.DueLimits, limit)
	m.mu.Unlock()

	if m.GetDueQueueFn != nil {
		return m.GetDueQueueFn(ctx, ownerID, limit)
	}
	return &review.DueQueue{Items: []*domain.LearnableItem{}}, nil
}

// SubmitRating implements the review.Service interface
func (m *MockReviewService) SubmitRating(
	ctx context.Context,
	ownerID, itemID uuid.UUID,
	rating domain.Rating,
	sessionID uuid.UUID,
) (*review.RatingResult, error) {
	m.mu.Lock()
	m.RatingArgs = append(m.RatingArgs, SubmitRatingCall{ownerID, itemID, rating, sessionID})
	m.mu.Unlock()

	if m.SubmitRatingFn != nil {
		return m.SubmitRatingFn(ctx, ownerID, itemID, rating, sessionID)
	}
	return nil, nil
}

// SubmitBatch implements the review.Service interface
func (m *MockReviewService) SubmitBatch(
	ctx context.Context,
	ownerID, sessionID uuid.UUID,
	entries []review.BatchEntry,
) (*review.BatchResult, error) {
	if m.SubmitBatchFn != nil {
		return m.SubmitBatchFn(ctx, ownerID, sessionID, entries)
	}
	return &review.BatchResult{}, nil
}

// Attention implements the review.Service interface
func (m *MockReviewService) Attention(ctx context.Context, ownerID uuid.UUID) ([]*domain.LearnableItem, error) {
	if m.AttentionFn != nil {
		return m.AttentionFn(ctx, ownerID)
	}
	return []*domain.LearnableItem{}, nil
}

// RatingCalls returns a copy of the recorded SubmitRating calls.
func (m *MockReviewService) RatingCalls() []SubmitRatingCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SubmitRatingCall(nil), m.RatingArgs...)
}
