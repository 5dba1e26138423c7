package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/domain"
	"github.com/phrazzld/recall-api/internal/service/session"
)

// MockSessionManager implements session.Manager for testing
type MockSessionManager struct {
	GetOrCreateSessionFn func(ctx context.Context, ownerID uuid.UUID) (*domain.ReviewSession, error)
	GetOwnedSessionFn    func(ctx context.Context, ownerID, sessionID uuid.UUID) (*domain.ReviewSession, error)
	RecordRatingFn       func(ctx context.Context, sessionID uuid.UUID, wasCorrect bool) (*domain.ReviewSession, error)
	RecordRatingsFn      func(ctx context.Context, sessionID uuid.UUID, reviewed, correct int) (*domain.ReviewSession, error)
	EndSessionFn         func(ctx context.Context, ownerID, sessionID uuid.UUID) (*domain.SessionSummary, error)
	SweepStaleFn         func(ctx context.Context) (int64, error)
}

var _ session.Manager = (*MockSessionManager)(nil)

// GetOrCreateSession implements the session.Manager interface
func (m *MockSessionManager) GetOrCreateSession(ctx context.Context, ownerID uuid.UUID) (*domain.ReviewSession, error) {
	if m.GetOrCreateSessionFn != nil {
		return m.GetOrCreateSessionFn(ctx, ownerID)
	}
	return nil, nil
}

// GetOwnedSession implements the session.Manager interface
func (m *MockSessionManager) GetOwnedSession(ctx context.Context, ownerID, sessionID uuid.UUID) (*domain.ReviewSession, error) {
	if m.GetOwnedSessionFn != nil {
		return m.GetOwnedSessionFn(ctx, ownerID, sessionID)
	}
	return nil, session.ErrSessionNotFound
}

// RecordRating implements the session.Manager interface
func (m *MockSessionManager) RecordRating(ctx context.Context, sessionID uuid.UUID, wasCorrect bool) (*domain.ReviewSession, error) {
	if m.RecordRatingFn != nil {
		return m.RecordRatingFn(ctx, sessionID, wasCorrect)
	}
	return nil, nil
}

// RecordRatings implements the session.Manager interface
func (m *MockSessionManager) RecordRatings(
	ctx context.Context,
	sessionID uuid.UUID,
	reviewed, correct int,
) (*domain.ReviewSession, error) {
	if m.RecordRatingsFn != nil {
		return m.RecordRatingsFn(ctx, sessionID, reviewed, correct)
	}
	return nil, nil
}

// EndSession implements the session.Manager interface
func (m *MockSessionManager) EndSession(ctx context.Context, ownerID, sessionID uuid.UUID) (*domain.SessionSummary, error) {
	if m.EndSessionFn != nil {
		return m.EndSessionFn(ctx, ownerID, sessionID)
	}
	return &domain.SessionSummary{SessionID: sessionID}, nil
}

// SweepStale implements the session.Manager interface
func (m *MockSessionManager) SweepStale(ctx context.Context) (int64, error) {
	if m.SweepStaleFn != nil {
		return m.SweepStaleFn(ctx)
	}
	return 0, nil
}
