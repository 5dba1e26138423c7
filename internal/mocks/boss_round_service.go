package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/service/boss_round"
)

// MockBossRoundService implements boss_round.Service for testing
type MockBossRoundService struct {
	GetBossRoundFn        func(ctx context.Context, ownerID uuid.UUID) (*boss_round.Round, error)
	PostBossRoundResultFn func(ctx context.Context, ownerID uuid.UUID, score, total int, timeUsed time.Duration) (*boss_round.Result, error)
}

var _ boss_round.Service = (*MockBossRoundService)(nil)

// GetBossRound implements the boss_round.Service interface
func (m *MockBossRoundService) GetBossRound(ctx context.Context, ownerID uuid.UUID) (*boss_round.Round, error) {
	if m.GetBossRoundFn != nil {
		return m.GetBossRoundFn(ctx, ownerID)
	}
	return nil, boss_round.ErrGoalIncomplete
}

// PostBossRoundResult implements the boss_round.Service interface
func (m *MockBossRoundService) PostBossRoundResult(
	ctx context.Context,
	ownerID uuid.UUID,
	score, total int,
	timeUsed time.Duration,
) (*boss_round.Result, error) {
	if m.PostBossRoundResultFn != nil {
		return m.PostBossRoundResultFn(ctx, ownerID, score, total, timeUsed)
	}
	return &boss_round.Result{}, nil
}
