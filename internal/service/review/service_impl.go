package review

import (
	"cmp"
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/domain"
	"github.com/phrazzld/recall-api/internal/domain/bingo"
	"github.com/phrazzld/recall-api/internal/domain/queue"
	"github.com/phrazzld/recall-api/internal/domain/srs"
	"github.com/phrazzld/recall-api/internal/events"
	"github.com/phrazzld/recall-api/internal/platform/clock"
	"github.com/phrazzld/recall-api/internal/platform/logger"
	"github.com/phrazzld/recall-api/internal/platform/metrics"
	"github.com/phrazzld/recall-api/internal/service/engagement"
	"github.com/phrazzld/recall-api/internal/service/session"
	"github.com/phrazzld/recall-api/internal/store"
)

// CellMarker marks bingo cells for an owner.
type CellMarker interface {
	MarkCells(ctx context.Context, ownerID uuid.UUID, cells ...string) (*engagement.EventResult, error)
}

// Config holds queue and batch limits.
type Config struct {
	MaxQueueSize            int
	BatchMax                int
	AttentionLapseThreshold int
	AttentionLimit          int
}

// DefaultConfig returns the standard limits.
func DefaultConfig() Config {
	return Config{
		MaxQueueSize:            queue.DefaultMaxSize,
		BatchMax:                10,
		AttentionLapseThreshold: 3,
		AttentionLimit:          20,
	}
}

// Deps are the collaborators of the review Service. Cells, Clock, Emitter
// and Rand are optional.
type Deps struct {
	Items    store.ItemStore
	Memory   srs.Service
	Sessions session.Manager
	Cells    CellMarker
	Clock    clock.Clock
	Emitter  events.EventEmitter
	// Rand drives the intra-band shuffle. Nil uses the global source.
	Rand *rand.Rand
}

// Verify interface compliance at compile time
var _ Service = (*serviceImpl)(nil)

type serviceImpl struct {
	deps   Deps
	cfg    Config
	logger *slog.Logger
}

// NewService creates a review Service. Non-positive config values take the
// DefaultConfig values.
func NewService(deps Deps, cfg Config, logger *slog.Logger) Service {
	if deps.Items == nil {
		panic("items cannot be nil")
	}
	if deps.Memory == nil {
		panic("memory model cannot be nil")
	}
	if deps.Sessions == nil {
		panic("sessions cannot be nil")
	}
	if deps.Clock == nil {
		deps.Clock = clock.System()
	}
	if deps.Emitter == nil {
		deps.Emitter = events.NopEmitter{}
	}

	def := DefaultConfig()
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = def.MaxQueueSize
	}
	if cfg.BatchMax <= 0 {
		cfg.BatchMax = def.BatchMax
	}
	if cfg.AttentionLapseThreshold <= 0 {
		cfg.AttentionLapseThreshold = def.AttentionLapseThreshold
	}
	if cfg.AttentionLimit <= 0 {
		cfg.AttentionLimit = def.AttentionLimit
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &serviceImpl{
		deps:   deps,
		cfg:    cfg,
		logger: logger.With(slog.String("component", "review_service")),
	}
}

// GetDueQueue implements Service.GetDueQueue.
func (s *serviceImpl) GetDueQueue(ctx context.Context, ownerID uuid.UUID, limit int) (*DueQueue, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	now := s.deps.Clock.Now()

	items, err := s.deps.Items.ListByOwner(ctx, ownerID)
	if err != nil {
		log.Error("failed to list items",
			slog.String("owner_id", ownerID.String()),
			slog.String("error", err.Error()))
		return nil, NewGetDueQueueError("failed to list items", err)
	}
	s.refreshRetrievability(items, now)

	due := queue.SelectDue(items, now, s.deps.Memory)
	overdueAfter := time.Duration(s.deps.Memory.Params().OverdueAfterDays * 24 * float64(time.Hour))
	ordered := queue.Cap(queue.Order(due, now, overdueAfter, s.deps.Rand), limit, s.cfg.MaxQueueSize)

	sess, err := s.deps.Sessions.GetOrCreateSession(ctx, ownerID)
	if err != nil {
		return nil, NewGetDueQueueError("failed to open session", err)
	}

	log.Debug("built due queue",
		slog.String("owner_id", ownerID.String()),
		slog.Int("total_due", len(due)),
		slog.Int("returned", len(ordered)))

	return &DueQueue{
		Items:     ordered,
		TotalDue:  len(due),
		SessionID: sess.ID,
	}, nil
}

// SubmitRating implements Service.SubmitRating.
func (s *serviceImpl) SubmitRating(
	ctx context.Context,
	ownerID, itemID uuid.UUID,
	rating domain.Rating,
	sessionID uuid.UUID,
) (*RatingResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := rating.Validate(); err != nil {
		return nil, err
	}
	if err := s.requireOpenSession(ctx, ownerID, sessionID); err != nil {
		return nil, err
	}

	result, err := s.rateItem(ctx, ownerID, itemID, rating, sessionID)
	if err != nil {
		return nil, err
	}

	if _, err := s.deps.Sessions.RecordRating(ctx, sessionID, rating.IsCorrect()); err != nil {
		// The item update is already durable; a session that closed in the
		// meantime only loses this count.
		log.Warn("failed to count rating against session",
			slog.String("session_id", sessionID.String()),
			slog.String("error", err.Error()))
	}
	return result, nil
}

// SubmitBatch implements Service.SubmitBatch.
func (s *serviceImpl) SubmitBatch(
	ctx context.Context,
	ownerID, sessionID uuid.UUID,
	entries []BatchEntry,
) (*BatchResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	switch {
	case len(entries) == 0:
		return nil, domain.NewValidationError("ratings", "must not be empty", ErrEmptyBatch)
	case len(entries) > s.cfg.BatchMax:
		return nil, domain.NewValidationError("ratings", "too many entries", ErrBatchTooLarge)
	}
	for _, e := range entries {
		if err := e.Rating.Validate(); err != nil {
			return nil, err
		}
	}
	if err := s.requireOpenSession(ctx, ownerID, sessionID); err != nil {
		return nil, err
	}

	out := &BatchResult{
		Results:  make([]*RatingResult, 0, len(entries)),
		Failures: []BatchFailure{},
	}
	correct := 0
	for _, e := range entries {
		res, err := s.rateItem(ctx, ownerID, e.ItemID, e.Rating, sessionID)
		if err != nil {
			out.Failures = append(out.Failures, BatchFailure{ItemID: e.ItemID, Err: err})
			continue
		}
		out.Results = append(out.Results, res)
		if e.Rating.IsCorrect() {
			correct++
		}
	}

	if len(out.Results) > 0 {
		sess, err := s.deps.Sessions.RecordRatings(ctx, sessionID, len(out.Results), correct)
		if err != nil {
			log.Warn("failed to count batch against session",
				slog.String("session_id", sessionID.String()),
				slog.String("error", err.Error()))
		} else {
			out.Session = sess
		}
	}

	log.Info("batch processed",
		slog.String("session_id", sessionID.String()),
		slog.Int("succeeded", len(out.Results)),
		slog.Int("failed", len(out.Failures)))
	return out, nil
}

// Attention implements Service.Attention.
func (s *serviceImpl) Attention(ctx context.Context, ownerID uuid.UUID) ([]*domain.LearnableItem, error) {
	items, err := s.deps.Items.ListStruggling(ctx, ownerID, s.cfg.AttentionLapseThreshold)
	if err != nil {
		return nil, &ServiceError{Operation: "attention", Message: "failed to list struggling items", Err: err}
	}
	s.refreshRetrievability(items, s.deps.Clock.Now())
	slices.SortStableFunc(items, func(a, b *domain.LearnableItem) int {
		if c := cmp.Compare(b.LapseCount, a.LapseCount); c != 0 {
			return c
		}
		return cmp.Compare(a.Retrievability, b.Retrievability)
	})
	if len(items) > s.cfg.AttentionLimit {
		items = items[:s.cfg.AttentionLimit]
	}
	return items, nil
}

// requireOpenSession checks that sessionID belongs to ownerID and is open.
func (s *serviceImpl) requireOpenSession(ctx context.Context, ownerID, sessionID uuid.UUID) error {
	sess, err := s.deps.Sessions.GetOwnedSession(ctx, ownerID, sessionID)
	if err != nil {
		return err
	}
	if !sess.IsOpen() {
		return session.ErrSessionClosed
	}
	return nil
}

// rateItem applies one rating under the item's row lock.
func (s *serviceImpl) rateItem(
	ctx context.Context,
	ownerID, itemID uuid.UUID,
	rating domain.Rating,
	sessionID uuid.UUID,
) (*RatingResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	now := s.deps.Clock.Now()

	var outcome srs.ReviewOutcome
	updated, err := s.deps.Items.UpdateMemory(ctx, itemID,
		func(current *domain.LearnableItem) (*domain.LearnableItem, error) {
			if current.OwnerID != ownerID {
				log.Warn("rating for item owned by another user",
					slog.String("owner_id", ownerID.String()),
					slog.String("item_id", itemID.String()))
				return nil, ErrItemNotFound
			}
			next, o, err := s.deps.Memory.ProcessReview(current, rating, sessionID, now)
			if err != nil {
				return nil, err
			}
			outcome = o
			return next, nil
		})
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			return nil, ErrItemNotFound
		case domain.IsValidationError(err):
			return nil, err
		}
		log.Error("failed to update item memory",
			slog.String("item_id", itemID.String()),
			slog.String("error", err.Error()))
		return nil, NewSubmitRatingError("failed to update item", err)
	}

	metrics.ReviewsSubmitted.WithLabelValues(rating.String()).Inc()
	log.Debug("rating applied",
		slog.String("item_id", itemID.String()),
		slog.String("rating", rating.String()),
		slog.String("mastery", string(updated.MasteryStatus)))

	if outcome.MasteryJustAchieved {
		s.onMastered(ctx, ownerID, updated, now)
	}

	return &RatingResult{
		Item:                updated,
		NextReviewHint:      srs.NextReviewHint(*updated.NextReviewAt, now),
		MasteryJustAchieved: outcome.MasteryJustAchieved,
	}, nil
}

// onMastered announces a newly mastered item and marks the masterWord cell.
// Failures are logged only.
func (s *serviceImpl) onMastered(ctx context.Context, ownerID uuid.UUID, item *domain.LearnableItem, now time.Time) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if event, err := events.NewEngagementEvent(events.KindItemMastered, ownerID, map[string]any{
		"item_id":  item.ID,
		"original": item.Content.Original,
	}, now); err == nil {
		events.Emit(ctx, s.deps.Emitter, event)
	}

	if s.deps.Cells == nil {
		return
	}
	if _, err := s.deps.Cells.MarkCells(ctx, ownerID, bingo.CellMasterWord); err != nil {
		metrics.BestEffortFailures.WithLabelValues("master_word_cell").Inc()
		log.Warn("failed to mark masterWord cell",
			slog.String("owner_id", ownerID.String()),
			slog.String("error", err.Error()))
	}
}

func (s *serviceImpl) refreshRetrievability(items []*domain.LearnableItem, now time.Time) {
	for _, item := range items {
		item.Retrievability = s.deps.Memory.Retrievability(item, now)
	}
}
