package engagement

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/domain"
	"github.com/phrazzld/recall-api/internal/domain/bingo"
	"github.com/phrazzld/recall-api/internal/events"
	"github.com/phrazzld/recall-api/internal/platform/clock"
	"github.com/phrazzld/recall-api/internal/platform/logger"
	"github.com/phrazzld/recall-api/internal/store"
	"golang.org/x/sync/errgroup"
)

// Stores groups the persistence the service writes to.
type Stores struct {
	Daily   store.DailyProgressStore
	Streaks store.StreakStore
	Bingo   store.BingoStore
}

// Config holds the engagement rules.
type Config struct {
	DailyTarget    int
	InitialFreezes int
	// Location decides which calendar day an instant belongs to.
	Location *time.Location
	Ordering bingo.Ordering
}

// DefaultConfig returns the standard rules: a 10 item goal, one freeze,
// UTC days and the default board.
func DefaultConfig() Config {
	return Config{
		DailyTarget:    domain.DefaultDailyTarget,
		InitialFreezes: domain.DefaultFreezeCount,
		Location:       time.UTC,
		Ordering:       bingo.DefaultOrdering,
	}
}

// Verify interface compliance at compile time
var _ Service = (*serviceImpl)(nil)

type serviceImpl struct {
	stores  Stores
	clock   clock.Clock
	cfg     Config
	emitter events.EventEmitter
	logger  *slog.Logger
}

// NewService creates an engagement Service. A zero DailyTarget, Location or
// Ordering takes the DefaultConfig value.
func NewService(
	stores Stores,
	clk clock.Clock,
	cfg Config,
	emitter events.EventEmitter,
	logger *slog.Logger,
) Service {
	if stores.Daily == nil || stores.Streaks == nil || stores.Bingo == nil {
		panic("engagement stores cannot be nil")
	}
	if clk == nil {
		clk = clock.System()
	}

	def := DefaultConfig()
	if cfg.DailyTarget <= 0 {
		cfg.DailyTarget = def.DailyTarget
	}
	if cfg.InitialFreezes < 0 {
		cfg.InitialFreezes = def.InitialFreezes
	}
	if cfg.Location == nil {
		cfg.Location = def.Location
	}
	if cfg.Ordering == (bingo.Ordering{}) {
		cfg.Ordering = def.Ordering
	}
	if emitter == nil {
		emitter = events.NopEmitter{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &serviceImpl{
		stores:  stores,
		clock:   clk,
		cfg:     cfg,
		emitter: emitter,
		logger:  logger.With(slog.String("component", "engagement_service")),
	}
}

func (s *serviceImpl) today(now time.Time) time.Time {
	return domain.DayOf(now, s.cfg.Location)
}

// OnItemAnswered implements Service.OnItemAnswered.
func (s *serviceImpl) OnItemAnswered(
	ctx context.Context,
	ownerID uuid.UUID,
	event AnswerEvent,
) (*EventResult, error) {
	if err := event.Validate(); err != nil {
		return nil, err
	}

	log := logger.FromContextOrDefault(ctx, s.logger)
	now := s.clock.Now()
	day := s.today(now)

	if _, err := s.ensureDaily(ctx, ownerID, day); err != nil {
		return nil, NewServiceError("item_answered", "failed to load daily progress", err)
	}

	progress, justCompleted, err := s.stores.Daily.Increment(ctx, ownerID, day, now)
	if err != nil {
		return nil, NewServiceError("item_answered", "failed to record answer", err)
	}

	result := &EventResult{GoalJustCompleted: justCompleted}
	if justCompleted {
		log.Info("daily goal completed",
			slog.String("owner_id", ownerID.String()),
			slog.Int("completed_count", progress.CompletedCount))
		s.emit(ctx, events.KindGoalCompleted, ownerID, map[string]any{
			"date":            day.Format(domain.DateLayout),
			"completed_count": progress.CompletedCount,
		}, now)

		_, change, err := s.UpdateStreakOnGoalCompletion(ctx, ownerID, day)
		if err != nil {
			return nil, err
		}
		result.StreakUpdated = change != domain.StreakUnchanged
	}

	if err := s.markCells(ctx, ownerID, day, now, event.cells(progress.CompletedCount), result); err != nil {
		return nil, NewServiceError("item_answered", "failed to mark bingo cells", err)
	}
	return result, nil
}

// PostEvent implements Service.PostEvent.
func (s *serviceImpl) PostEvent(
	ctx context.Context,
	ownerID uuid.UUID,
	kind EventKind,
	payload json.RawMessage,
) (*EventResult, error) {
	switch kind {
	case EventItemAnswered:
		var answer AnswerEvent
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &answer); err != nil {
				return nil, domain.NewValidationError("payload", "malformed item_answered payload",
					fmt.Errorf("%w: %v", ErrInvalidPayload, err))
			}
		}
		return s.OnItemAnswered(ctx, ownerID, answer)
	case EventSessionCompleted:
		return s.MarkCells(ctx, ownerID, bingo.CellFinishSession)
	case EventWordMastered:
		return s.MarkCells(ctx, ownerID, bingo.CellMasterWord)
	case EventContextAdded:
		return s.MarkCells(ctx, ownerID, bingo.CellAddContext)
	}
	return nil, domain.NewValidationError("kind", string(kind), ErrUnknownEventKind)
}

// MarkCells implements Service.MarkCells.
func (s *serviceImpl) MarkCells(ctx context.Context, ownerID uuid.UUID, cells ...string) (*EventResult, error) {
	now := s.clock.Now()
	result := &EventResult{}
	if err := s.markCells(ctx, ownerID, s.today(now), now, cells, result); err != nil {
		return nil, NewServiceError("mark_cells", "failed to mark bingo cells", err)
	}
	return result, nil
}

// markCells adds each on-board cell, records the ones this call completed,
// and latches the win the first time the board has a full line.
func (s *serviceImpl) markCells(
	ctx context.Context,
	ownerID uuid.UUID,
	day, now time.Time,
	cells []string,
	result *EventResult,
) error {
	result.NewlyCompletedCells = []string{}

	var onBoard []string
	for _, cell := range cells {
		if s.cfg.Ordering.IsCell(cell) {
			onBoard = append(onBoard, cell)
		}
	}
	if len(onBoard) == 0 {
		return nil
	}

	board, err := s.ensureBoard(ctx, ownerID, day)
	if err != nil {
		return err
	}
	for _, cell := range onBoard {
		updated, added, err := s.stores.Bingo.AddCell(ctx, ownerID, day, cell, now)
		if err != nil {
			return err
		}
		board = updated
		if added {
			result.NewlyCompletedCells = append(result.NewlyCompletedCells, cell)
		}
	}

	if board.Achieved || !bingo.CheckWin(board.CompletedCells, s.cfg.Ordering) {
		return nil
	}
	achieved, err := s.stores.Bingo.MarkAchieved(ctx, ownerID, day, now)
	if err != nil {
		return err
	}
	if achieved {
		result.BingoAchieved = true
		logger.FromContextOrDefault(ctx, s.logger).Info("bingo achieved",
			slog.String("owner_id", ownerID.String()))
		s.emit(ctx, events.KindBingoAchieved, ownerID, map[string]any{
			"date":  day.Format(domain.DateLayout),
			"lines": bingo.CompletedLines(board.CompletedCells, s.cfg.Ordering),
		}, now)
	}
	return nil
}

// UpdateStreakOnGoalCompletion implements Service.UpdateStreakOnGoalCompletion.
func (s *serviceImpl) UpdateStreakOnGoalCompletion(
	ctx context.Context,
	ownerID uuid.UUID,
	today time.Time,
) (*domain.Streak, domain.StreakChange, error) {
	if _, err := s.ensureStreak(ctx, ownerID); err != nil {
		return nil, "", NewServiceError("update_streak", "failed to load streak", err)
	}

	change := domain.StreakUnchanged
	streak, err := s.stores.Streaks.Update(ctx, ownerID, func(st *domain.Streak) (bool, error) {
		change = st.Advance(today)
		if change != domain.StreakUnchanged {
			st.UpdatedAt = s.clock.Now()
		}
		return change != domain.StreakUnchanged, nil
	})
	if err != nil {
		return nil, "", NewServiceError("update_streak", "failed to update streak", err)
	}

	if change != domain.StreakUnchanged {
		logger.FromContextOrDefault(ctx, s.logger).Info("streak updated",
			slog.String("owner_id", ownerID.String()),
			slog.String("change", string(change)),
			slog.Int("current_streak", streak.CurrentStreak))
		s.emit(ctx, events.KindStreakUpdated, ownerID, map[string]any{
			"change":         change,
			"current_streak": streak.CurrentStreak,
			"longest_streak": streak.LongestStreak,
			"freeze_count":   streak.FreezeCount,
		}, s.clock.Now())
	}
	return streak, change, nil
}

// DailyProgress implements Service.DailyProgress.
func (s *serviceImpl) DailyProgress(ctx context.Context, ownerID uuid.UUID) (*domain.DailyProgress, error) {
	progress, err := s.ensureDaily(ctx, ownerID, s.today(s.clock.Now()))
	if err != nil {
		return nil, NewServiceError("daily_progress", "failed to load daily progress", err)
	}
	return progress, nil
}

// GetEngagementState implements Service.GetEngagementState.
func (s *serviceImpl) GetEngagementState(ctx context.Context, ownerID uuid.UUID) (*State, error) {
	day := s.today(s.clock.Now())
	state := &State{Ordering: s.cfg.Ordering}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		state.Daily, err = s.ensureDaily(gctx, ownerID, day)
		return err
	})
	g.Go(func() error {
		var err error
		state.Streak, err = s.ensureStreak(gctx, ownerID)
		return err
	})
	g.Go(func() error {
		var err error
		state.Bingo, err = s.ensureBoard(gctx, ownerID, day)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, NewServiceError("get_state", "failed to load engagement state", err)
	}

	// A goal that latched without its streak cascade (for example after a
	// failed write) is settled here. Advance is a no-op when already applied.
	if state.Daily.IsComplete() &&
		(state.Streak.LastCompletedDate == nil || state.Streak.LastCompletedDate.Before(day)) {
		streak, _, err := s.UpdateStreakOnGoalCompletion(ctx, ownerID, day)
		if err != nil {
			return nil, err
		}
		state.Streak = streak
	}

	state.BingoLines = bingo.CompletedLines(state.Bingo.CompletedCells, s.cfg.Ordering)
	if state.BingoLines == nil {
		state.BingoLines = [][3]int{}
	}
	state.BossRoundUnlocked = state.Daily.IsComplete()
	return state, nil
}

func (s *serviceImpl) ensureDaily(
	ctx context.Context,
	ownerID uuid.UUID,
	day time.Time,
) (*domain.DailyProgress, error) {
	progress, err := s.stores.Daily.Get(ctx, ownerID, day)
	if err == nil || !errors.Is(err, store.ErrNotFound) {
		return progress, err
	}

	fresh, err := domain.NewDailyProgress(ownerID, day, s.cfg.DailyTarget)
	if err != nil {
		return nil, err
	}
	switch err := s.stores.Daily.Create(ctx, fresh); {
	case err == nil:
		return fresh, nil
	case errors.Is(err, store.ErrDuplicate):
		return s.stores.Daily.Get(ctx, ownerID, day)
	default:
		return nil, err
	}
}

func (s *serviceImpl) ensureStreak(ctx context.Context, ownerID uuid.UUID) (*domain.Streak, error) {
	streak, err := s.stores.Streaks.Get(ctx, ownerID)
	if err == nil || !errors.Is(err, store.ErrNotFound) {
		return streak, err
	}

	fresh, err := domain.NewStreak(ownerID, s.cfg.InitialFreezes)
	if err != nil {
		return nil, err
	}
	switch err := s.stores.Streaks.Create(ctx, fresh); {
	case err == nil:
		return fresh, nil
	case errors.Is(err, store.ErrDuplicate):
		return s.stores.Streaks.Get(ctx, ownerID)
	default:
		return nil, err
	}
}

func (s *serviceImpl) ensureBoard(
	ctx context.Context,
	ownerID uuid.UUID,
	day time.Time,
) (*domain.BingoBoard, error) {
	board, err := s.stores.Bingo.Get(ctx, ownerID, day)
	if err == nil || !errors.Is(err, store.ErrNotFound) {
		return board, err
	}

	fresh, err := domain.NewBingoBoard(ownerID, day)
	if err != nil {
		return nil, err
	}
	switch err := s.stores.Bingo.Create(ctx, fresh); {
	case err == nil:
		return fresh, nil
	case errors.Is(err, store.ErrDuplicate):
		return s.stores.Bingo.Get(ctx, ownerID, day)
	default:
		return nil, err
	}
}

func (s *serviceImpl) emit(
	ctx context.Context,
	kind events.Kind,
	ownerID uuid.UUID,
	payload any,
	at time.Time,
) {
	event, err := events.NewEngagementEvent(kind, ownerID, payload, at)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Warn("failed to build engagement event",
			slog.String("kind", string(kind)),
			slog.String("error", err.Error()))
		return
	}
	events.Emit(ctx, s.emitter, event)
}
