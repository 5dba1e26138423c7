package session

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/domain"
	"github.com/phrazzld/recall-api/internal/events"
	"github.com/phrazzld/recall-api/internal/platform/clock"
	"github.com/phrazzld/recall-api/internal/platform/logger"
	"github.com/phrazzld/recall-api/internal/store"
)

// maxCreateAttempts bounds the read/insert loop in GetOrCreateSession.
const maxCreateAttempts = 3

// Verify interface compliance at compile time
var _ Manager = (*managerImpl)(nil)

type managerImpl struct {
	sessions store.SessionStore
	clock    clock.Clock
	boundary time.Duration
	emitter  events.EventEmitter
	logger   *slog.Logger
}

// NewManager creates a Manager. A non-positive boundary uses
// domain.DefaultSessionBoundary; a nil emitter drops events.
func NewManager(
	sessions store.SessionStore,
	clk clock.Clock,
	boundary time.Duration,
	emitter events.EventEmitter,
	logger *slog.Logger,
) Manager {
	if sessions == nil {
		panic("sessions cannot be nil")
	}
	if clk == nil {
		clk = clock.System()
	}
	if boundary <= 0 {
		boundary = domain.DefaultSessionBoundary
	}
	if emitter == nil {
		emitter = events.NopEmitter{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &managerImpl{
		sessions: sessions,
		clock:    clk,
		boundary: boundary,
		emitter:  emitter,
		logger:   logger.With(slog.String("component", "session_manager")),
	}
}

// GetOrCreateSession implements Manager.GetOrCreateSession.
func (m *managerImpl) GetOrCreateSession(
	ctx context.Context,
	ownerID uuid.UUID,
) (*domain.ReviewSession, error) {
	log := logger.FromContextOrDefault(ctx, m.logger)

	for attempt := 1; attempt <= maxCreateAttempts; attempt++ {
		now := m.clock.Now()

		open, err := m.sessions.GetOpen(ctx, ownerID)
		switch {
		case err == nil:
			if !open.IsStale(now, m.boundary) {
				return open, nil
			}
			log.Debug("closing stale session",
				slog.String("session_id", open.ID.String()),
				slog.Time("started_at", open.StartedAt))
			if _, err := m.sessions.Close(ctx, open.ID, now); err != nil &&
				!errors.Is(err, store.ErrNotFound) {
				return nil, NewServiceError("get_or_create", "failed to close stale session", err)
			}
		case errors.Is(err, store.ErrNotFound):
		default:
			return nil, NewServiceError("get_or_create", "failed to load open session", err)
		}

		session, err := domain.NewReviewSession(ownerID, now)
		if err != nil {
			return nil, err
		}

		err = m.sessions.Create(ctx, session)
		if err == nil {
			log.Info("review session started",
				slog.String("owner_id", ownerID.String()),
				slog.String("session_id", session.ID.String()))
			return session, nil
		}
		if !errors.Is(err, store.ErrDuplicate) {
			return nil, NewServiceError("get_or_create", "failed to create session", err)
		}

		// Another request opened one first; the next pass reads it.
		log.Debug("lost session creation race",
			slog.String("owner_id", ownerID.String()),
			slog.Int("attempt", attempt))
	}

	log.Warn("session creation did not settle",
		slog.String("owner_id", ownerID.String()),
		slog.Int("attempts", maxCreateAttempts))
	return nil, NewServiceError("get_or_create", "retry budget exhausted", ErrSessionContention)
}

// GetOwnedSession implements Manager.GetOwnedSession.
func (m *managerImpl) GetOwnedSession(
	ctx context.Context,
	ownerID, sessionID uuid.UUID,
) (*domain.ReviewSession, error) {
	session, err := m.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, NewServiceError("get_session", "failed to load session", err)
	}
	if session.OwnerID != ownerID {
		logger.FromContextOrDefault(ctx, m.logger).Warn("session owned by another user",
			slog.String("owner_id", ownerID.String()),
			slog.String("session_id", sessionID.String()))
		return nil, ErrSessionNotOwned
	}
	return session, nil
}

// RecordRating implements Manager.RecordRating.
func (m *managerImpl) RecordRating(
	ctx context.Context,
	sessionID uuid.UUID,
	wasCorrect bool,
) (*domain.ReviewSession, error) {
	correct := 0
	if wasCorrect {
		correct = 1
	}
	return m.RecordRatings(ctx, sessionID, 1, correct)
}

// RecordRatings implements Manager.RecordRatings.
func (m *managerImpl) RecordRatings(
	ctx context.Context,
	sessionID uuid.UUID,
	reviewed, correct int,
) (*domain.ReviewSession, error) {
	if reviewed < 0 || correct < 0 {
		return nil, domain.NewValidationError("counts", "must not be negative", domain.ErrNegativeCounter)
	}
	if correct > reviewed {
		return nil, domain.NewValidationError("correct", "exceeds reviewed", domain.ErrInvalidSessionCount)
	}

	session, err := m.sessions.AddCounts(ctx, sessionID, reviewed, correct)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			return nil, ErrSessionNotFound
		case errors.Is(err, store.ErrSessionClosed):
			return nil, ErrSessionClosed
		}
		return nil, NewServiceError("record_ratings", "failed to update session counts", err)
	}
	return session, nil
}

// EndSession implements Manager.EndSession.
func (m *managerImpl) EndSession(
	ctx context.Context,
	ownerID, sessionID uuid.UUID,
) (*domain.SessionSummary, error) {
	log := logger.FromContextOrDefault(ctx, m.logger)

	session, err := m.GetOwnedSession(ctx, ownerID, sessionID)
	if err != nil {
		return nil, err
	}

	now := m.clock.Now()
	wasOpen := session.IsOpen()
	if wasOpen {
		session, err = m.sessions.Close(ctx, sessionID, now)
		if err != nil {
			return nil, NewServiceError("end_session", "failed to close session", err)
		}
	}

	summary := session.Summarize(now)
	if wasOpen {
		log.Info("review session ended",
			slog.String("session_id", sessionID.String()),
			slog.Int("items_reviewed", summary.ItemsReviewed),
			slog.Int("accuracy", summary.Accuracy))

		if event, err := events.NewEngagementEvent(events.KindSessionEnded, ownerID, summary, now); err == nil {
			events.Emit(ctx, m.emitter, event)
		}
	}
	return &summary, nil
}

// SweepStale implements Manager.SweepStale.
func (m *managerImpl) SweepStale(ctx context.Context) (int64, error) {
	now := m.clock.Now()
	closed, err := m.sessions.CloseStale(ctx, now.Add(-m.boundary), now)
	if err != nil {
		return 0, NewServiceError("sweep_stale", "failed to close stale sessions", err)
	}
	if closed > 0 {
		logger.FromContextOrDefault(ctx, m.logger).Info("closed stale sessions",
			slog.Int64("count", closed))
	}
	return closed, nil
}
