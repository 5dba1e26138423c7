package postgres

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/domain"
	"github.com/phrazzld/recall-api/internal/platform/logger"
	"github.com/phrazzld/recall-api/internal/store"
)

const sessionColumns = `id, owner_id, started_at, ended_at, items_reviewed, correct_count`

// PostgresSessionStore implements store.SessionStore using PostgreSQL.
// The partial unique index on (owner_id) WHERE ended_at IS NULL enforces
// the single open session rule.
type PostgresSessionStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresSessionStore creates a new PostgreSQL implementation of the SessionStore interface.
func NewPostgresSessionStore(db store.DBTX, logger *slog.Logger) *PostgresSessionStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresSessionStore{
		db:     db,
		logger: logger.With(slog.String("component", "session_store")),
	}
}

var _ store.SessionStore = (*PostgresSessionStore)(nil)

func scanSession(row rowScanner) (*domain.ReviewSession, error) {
	var s domain.ReviewSession
	if err := row.Scan(
		&s.ID,
		&s.OwnerID,
		&s.StartedAt,
		&s.EndedAt,
		&s.ItemsReviewed,
		&s.CorrectCount,
	); err != nil {
		return nil, err
	}
	return &s, nil
}

// Create implements store.SessionStore.Create.
// ON CONFLICT DO NOTHING keeps a losing insert from aborting the caller's
// transaction; an empty result means another open session won.
func (s *PostgresSessionStore) Create(ctx context.Context, session *domain.ReviewSession) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := session.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO review_sessions (id, owner_id, started_at, ended_at, items_reviewed, correct_count)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT DO NOTHING
	`
	result, err := s.db.ExecContext(ctx, query,
		session.ID,
		session.OwnerID,
		session.StartedAt,
		session.EndedAt,
		session.ItemsReviewed,
		session.CorrectCount,
	)
	if err != nil {
		log.Error("failed to create session",
			slog.String("error", err.Error()),
			slog.String("owner_id", session.OwnerID.String()))
		return MapError(err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return MapError(err)
	}
	if n == 0 {
		log.Debug("open session already exists", slog.String("owner_id", session.OwnerID.String()))
		return store.ErrOpenSessionExists
	}

	log.Debug("session created",
		slog.String("session_id", session.ID.String()),
		slog.String("owner_id", session.OwnerID.String()))
	return nil
}

// GetByID implements store.SessionStore.GetByID.
func (s *PostgresSessionStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.ReviewSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM review_sessions WHERE id = $1`
	session, err := scanSession(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapNotFound(err, store.ErrSessionNotFound)
	}
	return session, nil
}

// GetOpen implements store.SessionStore.GetOpen.
func (s *PostgresSessionStore) GetOpen(ctx context.Context, ownerID uuid.UUID) (*domain.ReviewSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM review_sessions WHERE owner_id = $1 AND ended_at IS NULL`
	session, err := scanSession(s.db.QueryRowContext(ctx, query, ownerID))
	if err != nil {
		return nil, mapNotFound(err, store.ErrSessionNotFound)
	}
	return session, nil
}

// Close implements store.SessionStore.Close.
func (s *PostgresSessionStore) Close(
	ctx context.Context,
	id uuid.UUID,
	endedAt time.Time,
) (*domain.ReviewSession, error) {
	query := `
		UPDATE review_sessions
		SET ended_at = $2, updated_at = $2
		WHERE id = $1 AND ended_at IS NULL
		RETURNING ` + sessionColumns

	session, err := scanSession(s.db.QueryRowContext(ctx, query, id, endedAt))
	if err == nil {
		logger.FromContextOrDefault(ctx, s.logger).Debug("session closed",
			slog.String("session_id", id.String()))
		return session, nil
	}
	if !IsNoRows(err) {
		return nil, MapError(err)
	}

	// Already ended or missing.
	return s.GetByID(ctx, id)
}

// AddCounts implements store.SessionStore.AddCounts.
// The deltas are applied relative to the stored values in one statement so
// concurrent submissions never lose an increment.
func (s *PostgresSessionStore) AddCounts(
	ctx context.Context,
	id uuid.UUID,
	reviewed, correct int,
) (*domain.ReviewSession, error) {
	query := `
		UPDATE review_sessions
		SET items_reviewed = items_reviewed + $2,
			correct_count = correct_count + $3,
			updated_at = NOW()
		WHERE id = $1 AND ended_at IS NULL
		RETURNING ` + sessionColumns

	session, err := scanSession(s.db.QueryRowContext(ctx, query, id, reviewed, correct))
	if err == nil {
		return session, nil
	}
	if !IsNoRows(err) {
		return nil, MapError(err)
	}

	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return nil, store.ErrSessionClosed
}

// CloseStale implements store.SessionStore.CloseStale.
func (s *PostgresSessionStore) CloseStale(ctx context.Context, startedBefore, endedAt time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE review_sessions
		SET ended_at = $2, updated_at = $2
		WHERE ended_at IS NULL AND started_at < $1`,
		startedBefore, endedAt,
	)
	if err != nil {
		return 0, MapError(err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, MapError(err)
	}
	return n, nil
}
