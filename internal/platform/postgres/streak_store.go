package postgres

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/domain"
	"github.com/phrazzld/recall-api/internal/platform/logger"
	"github.com/phrazzld/recall-api/internal/store"
)

const streakColumns = `owner_id, current_streak, longest_streak, last_completed_date,
	freeze_count, last_freeze_used_date, created_at, updated_at`

// PostgresStreakStore implements store.StreakStore using PostgreSQL.
type PostgresStreakStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresStreakStore creates a new PostgreSQL implementation of the StreakStore interface.
// Update opens its own transactions, so db must be a pool.
func NewPostgresStreakStore(db *sql.DB, logger *slog.Logger) *PostgresStreakStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresStreakStore{
		db:     db,
		logger: logger.With(slog.String("component", "streak_store")),
	}
}

var _ store.StreakStore = (*PostgresStreakStore)(nil)

func scanStreak(row rowScanner) (*domain.Streak, error) {
	var s domain.Streak
	if err := row.Scan(
		&s.OwnerID,
		&s.CurrentStreak,
		&s.LongestStreak,
		&s.LastCompletedDate,
		&s.FreezeCount,
		&s.LastFreezeUsedDate,
		&s.CreatedAt,
		&s.UpdatedAt,
	); err != nil {
		return nil, err
	}
	s.LastCompletedDate = utcDate(s.LastCompletedDate)
	s.LastFreezeUsedDate = utcDate(s.LastFreezeUsedDate)
	return &s, nil
}

func utcDate(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

// Create implements store.StreakStore.Create.
func (s *PostgresStreakStore) Create(ctx context.Context, streak *domain.Streak) error {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO streaks (`+streakColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (owner_id) DO NOTHING`,
		streak.OwnerID,
		streak.CurrentStreak,
		streak.LongestStreak,
		streak.LastCompletedDate,
		streak.FreezeCount,
		streak.LastFreezeUsedDate,
		streak.CreatedAt,
		streak.UpdatedAt,
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

// Get implements store.StreakStore.Get.
func (s *PostgresStreakStore) Get(ctx context.Context, ownerID uuid.UUID) (*domain.Streak, error) {
	return s.get(ctx, s.db, ownerID, false)
}

func (s *PostgresStreakStore) get(
	ctx context.Context,
	db store.DBTX,
	ownerID uuid.UUID,
	forUpdate bool,
) (*domain.Streak, error) {
	query := `SELECT ` + streakColumns + ` FROM streaks WHERE owner_id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	streak, err := scanStreak(db.QueryRowContext(ctx, query, ownerID))
	if err != nil {
		return nil, mapNotFound(err, store.ErrStreakNotFound)
	}
	return streak, nil
}

// Update implements store.StreakStore.Update.
func (s *PostgresStreakStore) Update(
	ctx context.Context,
	ownerID uuid.UUID,
	fn store.StreakMutator,
) (*domain.Streak, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var result *domain.Streak
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		streak, err := s.get(ctx, tx, ownerID, true)
		if err != nil {
			return err
		}

		changed, err := fn(streak)
		if err != nil {
			return err
		}
		result = streak
		if !changed {
			return nil
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE streaks SET
				current_streak = $2,
				longest_streak = $3,
				last_completed_date = $4,
				freeze_count = $5,
				last_freeze_used_date = $6,
				updated_at = $7
			WHERE owner_id = $1`,
			ownerID,
			streak.CurrentStreak,
			streak.LongestStreak,
			streak.LastCompletedDate,
			streak.FreezeCount,
			streak.LastFreezeUsedDate,
			streak.UpdatedAt,
		)
		return MapError(err)
	})
	if err != nil {
		log.Warn("streak update failed",
			slog.String("owner_id", ownerID.String()),
			slog.String("error", err.Error()))
		return nil, err
	}
	return result, nil
}
