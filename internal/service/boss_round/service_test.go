package boss_round_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/domain"
	"github.com/phrazzld/recall-api/internal/domain/srs"
	"github.com/phrazzld/recall-api/internal/platform/clock"
	"github.com/phrazzld/recall-api/internal/service/boss_round"
	"github.com/phrazzld/recall-api/internal/store"
	"github.com/phrazzld/recall-api/internal/store/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 2, 3, 18, 0, 0, 0, time.UTC)

type goalFunc func(ctx context.Context, ownerID uuid.UUID) (*domain.DailyProgress, error)

func (f goalFunc) DailyProgress(ctx context.Context, ownerID uuid.UUID) (*domain.DailyProgress, error) {
	return f(ctx, ownerID)
}

func goal(complete bool) goalFunc {
	return func(_ context.Context, ownerID uuid.UUID) (*domain.DailyProgress, error) {
		p, err := domain.NewDailyProgress(ownerID, domain.DayOf(now, time.UTC), 10)
		if err != nil {
			return nil, err
		}
		if complete {
			p.CompletedCount = 10
			at := now
			p.CompletedAt = &at
		}
		return p, nil
	}
}

// flakyAttempts fails Stats or Append on demand.
type flakyAttempts struct {
	store.BossRoundStore
	appendErr error
	statsErr  error
}

func (f *flakyAttempts) Append(ctx context.Context, a *domain.BossRoundAttempt) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	return f.BossRoundStore.Append(ctx, a)
}

func (f *flakyAttempts) Stats(ctx context.Context, owner uuid.UUID) (*domain.BossRoundStats, error) {
	if f.statsErr != nil {
		return nil, f.statsErr
	}
	return f.BossRoundStore.Stats(ctx, owner)
}

func newService(goals boss_round.GoalSource, items store.ItemStore, attempts store.BossRoundStore) boss_round.Service {
	return boss_round.NewService(goals, items, attempts, srs.NewDefaultService(),
		clock.NewManual(now), boss_round.Config{}, nil, nil)
}

func TestSelectWeakest(t *testing.T) {
	t.Parallel()

	var items []*domain.LearnableItem
	for lapses := 0; lapses <= 6; lapses++ {
		items = append(items, &domain.LearnableItem{ID: uuid.New(), LapseCount: lapses, Retrievability: 0.5})
	}

	picked := boss_round.SelectWeakest(items, 5)
	got := make([]int, 0, len(picked))
	for _, item := range picked {
		got = append(got, item.LapseCount)
	}
	assert.Equal(t, []int{6, 5, 4, 3, 2}, got)
	assert.Equal(t, 0, items[0].LapseCount, "input order is preserved")

	tie := []*domain.LearnableItem{
		{LapseCount: 2, Retrievability: 0.8},
		{LapseCount: 2, Retrievability: 0.3},
	}
	assert.Equal(t, 0.3, boss_round.SelectWeakest(tie, 5)[0].Retrievability)
	assert.Empty(t, boss_round.SelectWeakest(nil, 5))
}

func TestMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		score, total int
		want         string
	}{
		{"perfect", 5, 5, boss_round.MessagePerfect},
		{"three of five passes", 3, 5, boss_round.MessagePassed},
		{"two of five falls short", 2, 5, boss_round.MessagePractice},
		{"half of an even round passes", 2, 4, boss_round.MessagePassed},
		{"nothing right", 0, 5, boss_round.MessagePractice},
		{"single item missed", 0, 1, boss_round.MessagePractice},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, boss_round.Message(tt.score, tt.total))
		})
	}
}

func TestGetBossRound(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	owner := uuid.New()
	stores := memstore.New()

	for lapses := 0; lapses <= 6; lapses++ {
		item, err := domain.NewLearnableItem(owner, domain.Content{Original: "palabra"}, "")
		require.NoError(t, err)
		item.LapseCount = lapses
		require.NoError(t, stores.Items.Create(ctx, item))
	}

	_, err := newService(goal(false), stores.Items, stores.BossRounds).GetBossRound(ctx, owner)
	assert.ErrorIs(t, err, boss_round.ErrGoalIncomplete)

	round, err := newService(goal(true), stores.Items, stores.BossRounds).GetBossRound(ctx, owner)
	require.NoError(t, err)
	require.Len(t, round.Items, domain.DefaultBossRoundSize)
	assert.Equal(t, 6, round.Items[0].LapseCount)
	assert.Equal(t, 90, round.TimeLimitSeconds)
	assert.True(t, round.StatsAvailable)

	flaky := &flakyAttempts{BossRoundStore: stores.BossRounds, statsErr: errors.New("timeout")}
	round, err = newService(goal(true), stores.Items, flaky).GetBossRound(ctx, owner)
	require.NoError(t, err, "stats are best effort")
	assert.False(t, round.StatsAvailable)
	assert.Nil(t, round.Stats)
}

func TestPostBossRoundResult(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	owner := uuid.New()
	stores := memstore.New()
	svc := newService(goal(true), stores.Items, stores.BossRounds)

	first, err := svc.PostBossRoundResult(ctx, owner, 3, 5, 40*time.Second)
	require.NoError(t, err)
	assert.Equal(t, 60, first.Accuracy)
	assert.False(t, first.IsPerfect)
	assert.True(t, first.IsNewBest)
	assert.True(t, first.Recorded)
	assert.Equal(t, boss_round.MessagePassed, first.Message)
	assert.Equal(t, &domain.BossRoundStats{BestAccuracy: 60, TotalAttempts: 1}, first.Stats)

	lower, err := svc.PostBossRoundResult(ctx, owner, 2, 5, 50*time.Second)
	require.NoError(t, err)
	assert.False(t, lower.IsNewBest)
	assert.Equal(t, boss_round.MessagePractice, lower.Message)

	perfect, err := svc.PostBossRoundResult(ctx, owner, 5, 5, 70*time.Second)
	require.NoError(t, err)
	assert.True(t, perfect.IsPerfect)
	assert.True(t, perfect.IsNewBest)
	assert.Equal(t, boss_round.MessagePerfect, perfect.Message)
	assert.Equal(t, &domain.BossRoundStats{BestAccuracy: 100, TotalAttempts: 3, PerfectRounds: 1}, perfect.Stats)

	invalid := []struct {
		name         string
		score, total int
		used         time.Duration
	}{
		{"zero total", 0, 0, time.Second},
		{"score above total", 6, 5, time.Second},
		{"negative score", -1, 5, time.Second},
		{"negative time", 1, 5, -time.Second},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.PostBossRoundResult(ctx, owner, tt.score, tt.total, tt.used)
			assert.True(t, domain.IsValidationError(err))
		})
	}
}

func TestPostBossRoundResult_BestEffort(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	stores := memstore.New()

	t.Run("stats failure", func(t *testing.T) {
		flaky := &flakyAttempts{BossRoundStore: stores.BossRounds, statsErr: errors.New("conn reset")}
		res, err := newService(goal(true), stores.Items, flaky).PostBossRoundResult(ctx, uuid.New(), 4, 5, time.Minute)
		require.NoError(t, err)
		assert.Equal(t, 80, res.Accuracy)
		assert.True(t, res.Recorded)
		assert.False(t, res.StatsAvailable)
		assert.False(t, res.IsNewBest, "no best without stats")
		assert.Equal(t, boss_round.MessagePassed, res.Message)
	})

	t.Run("append failure", func(t *testing.T) {
		flaky := &flakyAttempts{BossRoundStore: stores.BossRounds, appendErr: errors.New("conn reset")}
		res, err := newService(goal(true), stores.Items, flaky).PostBossRoundResult(ctx, uuid.New(), 5, 5, time.Minute)
		require.NoError(t, err)
		assert.True(t, res.IsPerfect)
		assert.False(t, res.Recorded)
		assert.False(t, res.IsNewBest)
	})
}
