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

const dailyProgressColumns = `owner_id, date, target_count, completed_count, completed_at, created_at, updated_at`

// PostgresDailyProgressStore implements store.DailyProgressStore using PostgreSQL.
type PostgresDailyProgressStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresDailyProgressStore creates a new PostgreSQL implementation of the DailyProgressStore interface.
func NewPostgresDailyProgressStore(db store.DBTX, logger *slog.Logger) *PostgresDailyProgressStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresDailyProgressStore{
		db:     db,
		logger: logger.With(slog.String("component", "daily_progress_store")),
	}
}

var _ store.DailyProgressStore = (*PostgresDailyProgressStore)(nil)

func scanDailyProgress(row rowScanner) (*domain.DailyProgress, error) {
	var p domain.DailyProgress
	if err := row.Scan(
		&p.OwnerID,
		&p.Date,
		&p.TargetCount,
		&p.CompletedCount,
		&p.CompletedAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	p.Date = p.Date.UTC()
	return &p, nil
}

// Create implements store.DailyProgressStore.Create.
func (s *PostgresDailyProgressStore) Create(ctx context.Context, progress *domain.DailyProgress) error {
	if err := progress.Validate(); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO daily_progress (`+dailyProgressColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (owner_id, date) DO NOTHING`,
		progress.OwnerID,
		progress.Date,
		progress.TargetCount,
		progress.CompletedCount,
		progress.CompletedAt,
		progress.CreatedAt,
		progress.UpdatedAt,
	)
	if err != nil {
		return MapError(err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return MapError(err)
	}
	if n == 0 {
		return store.ErrDuplicate
	}
	return nil
}

// Get implements store.DailyProgressStore.Get.
func (s *PostgresDailyProgressStore) Get(
	ctx context.Context,
	ownerID uuid.UUID,
	date time.Time,
) (*domain.DailyProgress, error) {
	p, err := scanDailyProgress(s.db.QueryRowContext(ctx,
		`SELECT `+dailyProgressColumns+` FROM daily_progress WHERE owner_id = $1 AND date = $2`,
		ownerID, date,
	))
	if err != nil {
		return nil, mapNotFound(err, store.ErrDailyProgressNotFound)
	}
	return p, nil
}

// Increment implements store.DailyProgressStore.Increment.
// completed_at is latched by the CASE expression, which sees the pre-update
// row, so exactly one increment observes the transition.
func (s *PostgresDailyProgressStore) Increment(
	ctx context.Context,
	ownerID uuid.UUID,
	date time.Time,
	now time.Time,
) (*domain.DailyProgress, bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	row := s.db.QueryRowContext(ctx, `
		UPDATE daily_progress
		SET completed_count = completed_count + 1,
			completed_at = CASE
				WHEN completed_at IS NULL AND completed_count + 1 >= target_count THEN $3
				ELSE completed_at
			END,
			updated_at = $3
		WHERE owner_id = $1 AND date = $2
		RETURNING `+dailyProgressColumns+`,
			(completed_at IS NOT NULL AND completed_count = target_count AND completed_at = $3)`,
		ownerID, date, now,
	)

	var p domain.DailyProgress
	var justCompleted bool
	if err := row.Scan(
		&p.OwnerID,
		&p.Date,
		&p.TargetCount,
		&p.CompletedCount,
		&p.CompletedAt,
		&p.CreatedAt,
		&p.UpdatedAt,
		&justCompleted,
	); err != nil {
		return nil, false, mapNotFound(err, store.ErrDailyProgressNotFound)
	}
	p.Date = p.Date.UTC()

	if justCompleted {
		log.Info("daily goal completed",
			slog.String("owner_id", ownerID.String()),
			slog.Int("completed_count", p.CompletedCount))
	}
	return &p, justCompleted, nil
}
