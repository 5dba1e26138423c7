package boss_round

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/domain"
	"github.com/phrazzld/recall-api/internal/domain/srs"
	"github.com/phrazzld/recall-api/internal/events"
	"github.com/phrazzld/recall-api/internal/platform/clock"
	"github.com/phrazzld/recall-api/internal/platform/logger"
	"github.com/phrazzld/recall-api/internal/platform/metrics"
	"github.com/phrazzld/recall-api/internal/store"
)

// GoalSource reports today's daily goal record.
type GoalSource interface {
	DailyProgress(ctx context.Context, ownerID uuid.UUID) (*domain.DailyProgress, error)
}

// Config holds the round shape.
type Config struct {
	Size      int
	TimeLimit time.Duration
}

// Verify interface compliance at compile time
var _ Service = (*serviceImpl)(nil)

type serviceImpl struct {
	goals    GoalSource
	items    store.ItemStore
	attempts store.BossRoundStore
	memory   srs.Service
	clock    clock.Clock
	cfg      Config
	emitter  events.EventEmitter
	logger   *slog.Logger
}

// NewService creates a boss round Service.
func NewService(
	goals GoalSource,
	items store.ItemStore,
	attempts store.BossRoundStore,
	memory srs.Service,
	clk clock.Clock,
	cfg Config,
	emitter events.EventEmitter,
	logger *slog.Logger,
) Service {
	if goals == nil {
		panic("goals cannot be nil")
	}
	if items == nil {
		panic("items cannot be nil")
	}
	if attempts == nil {
		panic("attempts cannot be nil")
	}
	if memory == nil {
		panic("memory model cannot be nil")
	}
	if clk == nil {
		clk = clock.System()
	}
	if cfg.Size <= 0 {
		cfg.Size = domain.DefaultBossRoundSize
	}
	if cfg.TimeLimit <= 0 {
		cfg.TimeLimit = domain.DefaultBossRoundTimeLimit
	}
	if emitter == nil {
		emitter = events.NopEmitter{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &serviceImpl{
		goals:    goals,
		items:    items,
		attempts: attempts,
		memory:   memory,
		clock:    clk,
		cfg:      cfg,
		emitter:  emitter,
		logger:   logger.With(slog.String("component", "boss_round_service")),
	}
}

// SelectWeakest orders items by lapse count descending, then retrievability
// ascending, and returns at most n of them. The input slice is not reordered.
func SelectWeakest(items []*domain.LearnableItem, n int) []*domain.LearnableItem {
	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, func(a, b *domain.LearnableItem) int {
		if c := cmp.Compare(b.LapseCount, a.LapseCount); c != 0 {
			return c
		}
		return cmp.Compare(a.Retrievability, b.Retrievability)
	})
	if n >= 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// Message picks the headline for a scored attempt. A round passes with at
// least half the items right, rounding the half up.
func Message(score, total int) string {
	switch {
	case score == total:
		return MessagePerfect
	case score >= (total+1)/2:
		return MessagePassed
	}
	return MessagePractice
}

// GetBossRound implements Service.GetBossRound.
func (s *serviceImpl) GetBossRound(ctx context.Context, ownerID uuid.UUID) (*Round, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	daily, err := s.goals.DailyProgress(ctx, ownerID)
	if err != nil {
		return nil, &ServiceError{Operation: "get_boss_round", Message: "failed to load daily goal", Err: err}
	}
	if !daily.IsComplete() {
		log.Debug("boss round locked",
			slog.String("owner_id", ownerID.String()),
			slog.Int("completed_count", daily.CompletedCount),
			slog.Int("target_count", daily.TargetCount))
		return nil, ErrGoalIncomplete
	}

	items, err := s.items.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, &ServiceError{Operation: "get_boss_round", Message: "failed to list items", Err: err}
	}
	now := s.clock.Now()
	for _, item := range items {
		item.Retrievability = s.memory.Retrievability(item, now)
	}

	round := &Round{
		Items:            SelectWeakest(items, s.cfg.Size),
		TimeLimitSeconds: int(s.cfg.TimeLimit.Seconds()),
	}
	round.Stats, round.StatsAvailable = s.stats(ctx, ownerID)
	return round, nil
}

// PostBossRoundResult implements Service.PostBossRoundResult.
func (s *serviceImpl) PostBossRoundResult(
	ctx context.Context,
	ownerID uuid.UUID,
	score, total int,
	timeUsed time.Duration,
) (*Result, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	now := s.clock.Now()

	attempt, err := domain.NewBossRoundAttempt(ownerID, score, total, s.cfg.TimeLimit, timeUsed, now)
	if err != nil {
		return nil, err
	}

	before, beforeOK := s.stats(ctx, ownerID)

	result := &Result{
		Accuracy:  attempt.Accuracy,
		IsPerfect: attempt.IsPerfect,
	}

	if err := s.attempts.Append(ctx, attempt); err != nil {
		metrics.BestEffortFailures.WithLabelValues("boss_round_append").Inc()
		log.Warn("failed to record boss round attempt",
			slog.String("owner_id", ownerID.String()),
			slog.String("error", err.Error()))
	} else {
		result.Recorded = true
		if event, err := events.NewEngagementEvent(events.KindBossRoundRecorded, ownerID, attempt, now); err == nil {
			events.Emit(ctx, s.emitter, event)
		}
	}

	after, afterOK := s.stats(ctx, ownerID)
	result.Stats = after
	result.StatsAvailable = beforeOK && afterOK
	result.IsNewBest = beforeOK && result.Recorded && attempt.Accuracy > before.BestAccuracy
	result.Message = Message(score, total)

	log.Info("boss round scored",
		slog.String("owner_id", ownerID.String()),
		slog.Int("accuracy", result.Accuracy),
		slog.Bool("is_new_best", result.IsNewBest))
	return result, nil
}

// stats loads aggregate stats, logging instead of failing.
func (s *serviceImpl) stats(ctx context.Context, ownerID uuid.UUID) (*domain.BossRoundStats, bool) {
	stats, err := s.attempts.Stats(ctx, ownerID)
	if err != nil {
		metrics.BestEffortFailures.WithLabelValues("boss_round_stats").Inc()
		logger.FromContextOrDefault(ctx, s.logger).Warn("boss round stats unavailable",
			slog.String("owner_id", ownerID.String()),
			slog.String("error", err.Error()))
		return nil, false
	}
	return stats, true
}
