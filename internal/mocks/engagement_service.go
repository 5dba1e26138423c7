package mocks

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/domain"
	"github.com/phrazzld/recall-api/internal/service/engagement"
)

// MockEngagementService implements engagement.Service for testing
type MockEngagementService struct {
	OnItemAnsweredFn     func(ctx context.Context, ownerID uuid.UUID, event engagement.AnswerEvent) (*engagement.EventResult, error)
	PostEventFn          func(ctx context.Context, ownerID uuid.UUID, kind engagement.EventKind, payload json.RawMessage) (*engagement.EventResult, error)
	MarkCellsFn          func(ctx context.Context, ownerID uuid.UUID, cells ...string) (*engagement.EventResult, error)
	UpdateStreakFn       func(ctx context.Context, ownerID uuid.UUID, today time.Time) (*domain.Streak, domain.StreakChange, error)
	DailyProgressFn      func(ctx context.Context, ownerID uuid.UUID) (*domain.DailyProgress, error)
	GetEngagementStateFn func(ctx context.Context, ownerID uuid.UUID) (*engagement.State, error)
}

var _ engagement.Service = (*MockEngagementService)(nil)

// OnItemAnswered implements the engagement.Service interface
func (m *MockEngagementService) OnItemAnswered(
	ctx context.Context,
	ownerID uuid.UUID,
	event engagement.AnswerEvent,
) (*engagement.EventResult, error) {
	if m.OnItemAnsweredFn != nil {
		return m.OnItemAnsweredFn(ctx, ownerID, event)
	}
	return &engagement.EventResult{NewlyCompletedCells: []string{}}, nil
}

// PostEvent implements the engagement.Service interface
func (m *MockEngagementService) PostEvent(
	ctx context.Context,
	ownerID uuid.UUID,
	kind engagement.EventKind,
	payload json.RawMessage,
) (*engagement.EventResult, error) {
	if m.PostEventFn != nil {
		return m.PostEventFn(ctx, ownerID, kind, payload)
	}
	return &engagement.EventResult{NewlyCompletedCells: []string{}}, nil
}

// MarkCells implements the engagement.Service interface
func (m *MockEngagementService) MarkCells(
	ctx context.Context,
	ownerID uuid.UUID,
	cells ...string,
) (*engagement.EventResult, error) {
	if m.MarkCellsFn != nil {
		return m.MarkCellsFn(ctx, ownerID, cells...)
	}
	return &engagement.EventResult{NewlyCompletedCells: []string{}}, nil
}

// UpdateStreakOnGoalCompletion implements the engagement.Service interface
func (m *MockEngagementService) UpdateStreakOnGoalCompletion(
	ctx context.Context,
	ownerID uuid.UUID,
	today time.Time,
) (*domain.Streak, domain.StreakChange, error) {
	if m.UpdateStreakFn != nil {
		return m.UpdateStreakFn(ctx, ownerID, today)
	}
	return nil, domain.StreakUnchanged, nil
}

// DailyProgress implements the engagement.Service interface
func (m *MockEngagementService) DailyProgress(ctx context.Context, ownerID uuid.UUID) (*domain.DailyProgress, error) {
	if m.DailyProgressFn != nil {
		return m.DailyProgressFn(ctx, ownerID)
	}
	return nil, nil
}

// GetEngagementState implements the engagement.Service interface
func (m *MockEngagementService) GetEngagementState(ctx context.Context, ownerID uuid.UUID) (*engagement.State, error) {
	if m.GetEngagementStateFn != nil {
		return m.GetEngagementStateFn(ctx, ownerID)
	}
	return &engagement.State{}, nil
}
