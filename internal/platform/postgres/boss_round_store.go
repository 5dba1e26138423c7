package postgres

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/domain"
	"github.com/phrazzld/recall-api/internal/platform/logger"
	"github.com/phrazzld/recall-api/internal/store"
)

// PostgresBossRoundStore implements store.BossRoundStore using PostgreSQL.
type PostgresBossRoundStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresBossRoundStore creates a new PostgreSQL implementation of the BossRoundStore interface.
func NewPostgresBossRoundStore(db store.DBTX, logger *slog.Logger) *PostgresBossRoundStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresBossRoundStore{
		db:     db,
		logger: logger.With(slog.String("component", "boss_round_store")),
	}
}

var _ store.BossRoundStore = (*PostgresBossRoundStore)(nil)

// Append implements store.BossRoundStore.Append.
func (s *PostgresBossRoundStore) Append(ctx context.Context, attempt *domain.BossRoundAttempt) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO boss_round_attempts (
			id, owner_id, total_items, correct_count,
			time_limit_seconds, time_used_seconds, accuracy, is_perfect, completed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		attempt.ID,
		attempt.OwnerID,
		attempt.TotalItems,
		attempt.CorrectCount,
		attempt.TimeLimitSeconds,
		attempt.TimeUsedSeconds,
		attempt.Accuracy,
		attempt.IsPerfect,
		attempt.CompletedAt,
	)
	if err != nil {
		log.Error("failed to append boss round attempt",
			slog.String("error", err.Error()),
			slog.String("owner_id", attempt.OwnerID.String()))
		return MapError(err)
	}
	return nil
}

// Stats implements store.BossRoundStore.Stats.
func (s *PostgresBossRoundStore) Stats(ctx context.Context, ownerID uuid.UUID) (*domain.BossRoundStats, error) {
	var stats domain.BossRoundStats
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(MAX(accuracy), 0),
			COUNT(*),
			COUNT(*) FILTER (WHERE is_perfect)
		FROM boss_round_attempts
		WHERE owner_id = $1`,
		ownerID,
	).Scan(&stats.BestAccuracy, &stats.TotalAttempts, &stats.PerfectRounds)
	if err != nil {
		return nil, MapError(err)
	}
	return &stats, nil
}
