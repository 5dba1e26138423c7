package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/domain"
	"github.com/phrazzld/recall-api/internal/platform/logger"
	"github.com/phrazzld/recall-api/internal/store"
)

const itemColumns = `
	id, owner_id, original, translation, language, category,
	difficulty, stability, retrievability,
	lapse_count, review_count, consecutive_correct_sessions, last_correct_session_id,
	mastery_status, last_reviewed_at, next_review_at, created_at, updated_at`

// PostgresItemStore implements store.ItemStore using PostgreSQL.
type PostgresItemStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresItemStore creates a new PostgreSQL implementation of the ItemStore interface.
// UpdateMemory opens its own transactions, so db must be a pool rather than a transaction.
// If logger is nil, a default logger will be used.
func NewPostgresItemStore(db *sql.DB, logger *slog.Logger) *PostgresItemStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresItemStore{
		db:     db,
		logger: logger.With(slog.String("component", "item_store")),
	}
}

var _ store.ItemStore = (*PostgresItemStore)(nil)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*domain.LearnableItem, error) {
	var item domain.LearnableItem
	var mastery string
	err := row.Scan(
		&item.ID,
		&item.OwnerID,
		&item.Content.Original,
		&item.Content.Translation,
		&item.Content.Language,
		&item.Category,
		&item.Difficulty,
		&item.Stability,
		&item.Retrievability,
		&item.LapseCount,
		&item.ReviewCount,
		&item.ConsecutiveCorrectSessions,
		&item.LastCorrectSessionID,
		&mastery,
		&item.LastReviewedAt,
		&item.NextReviewAt,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	item.MasteryStatus = domain.MasteryStatus(mastery)
	return &item, nil
}

// Create implements store.ItemStore.Create.
func (s *PostgresItemStore) Create(ctx context.Context, item *domain.LearnableItem) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := item.Validate(); err != nil {
		log.Warn("item validation failed during create",
			slog.String("error", err.Error()),
			slog.String("item_id", item.ID.String()))
		return err
	}

	query := `INSERT INTO learnable_items (` + itemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`

	_, err := s.db.ExecContext(ctx, query,
		item.ID,
		item.OwnerID,
		item.Content.Original,
		item.Content.Translation,
		item.Content.Language,
		item.Category,
		item.Difficulty,
		item.Stability,
		item.Retrievability,
		item.LapseCount,
		item.ReviewCount,
		item.ConsecutiveCorrectSessions,
		item.LastCorrectSessionID,
		string(item.MasteryStatus),
		item.LastReviewedAt,
		item.NextReviewAt,
		item.CreatedAt,
		item.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create item",
			slog.String("error", err.Error()),
			slog.String("item_id", item.ID.String()))
		return MapError(err)
	}

	log.Debug("item created", slog.String("item_id", item.ID.String()))
	return nil
}

// GetByID implements store.ItemStore.GetByID.
func (s *PostgresItemStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.LearnableItem, error) {
	return s.getByID(ctx, s.db, id, false)
}

func (s *PostgresItemStore) getByID(
	ctx context.Context,
	db store.DBTX,
	id uuid.UUID,
	forUpdate bool,
) (*domain.LearnableItem, error) {
	query := `SELECT ` + itemColumns + ` FROM learnable_items WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	item, err := scanItem(db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapNotFound(err, store.ErrItemNotFound)
	}
	return item, nil
}

// ListByOwner implements store.ItemStore.ListByOwner.
func (s *PostgresItemStore) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.LearnableItem, error) {
	query := `SELECT ` + itemColumns + ` FROM learnable_items WHERE owner_id = $1 ORDER BY created_at`
	return s.list(ctx, query, ownerID)
}

// ListStruggling implements store.ItemStore.ListStruggling.
func (s *PostgresItemStore) ListStruggling(
	ctx context.Context,
	ownerID uuid.UUID,
	minLapses int,
) ([]*domain.LearnableItem, error) {
	query := `SELECT ` + itemColumns + ` FROM learnable_items
		WHERE owner_id = $1 AND lapse_count >= $2
		ORDER BY lapse_count DESC, id`
	return s.list(ctx, query, ownerID, minLapses)
}

func (s *PostgresItemStore) list(ctx context.Context, query string, args ...any) ([]*domain.LearnableItem, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list items", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			log.Warn("failed to close rows", slog.String("error", cerr.Error()))
		}
	}()

	items := make([]*domain.LearnableItem, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, MapError(err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return items, nil
}

// UpdateMemory implements store.ItemStore.UpdateMemory.
// The row is locked with SELECT ... FOR UPDATE for the duration of fn so
// concurrent reviews of one item apply in sequence.
func (s *PostgresItemStore) UpdateMemory(
	ctx context.Context,
	id uuid.UUID,
	fn store.ItemMutator,
) (*domain.LearnableItem, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var updated *domain.LearnableItem
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		current, err := s.getByID(ctx, tx, id, true)
		if err != nil {
			return err
		}

		next, err := fn(current)
		if err != nil {
			return err
		}
		if err := next.Validate(); err != nil {
			return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE learnable_items SET
				difficulty = $1,
				stability = $2,
				retrievability = $3,
				lapse_count = $4,
				review_count = $5,
				consecutive_correct_sessions = $6,
				last_correct_session_id = $7,
				mastery_status = $8,
				last_reviewed_at = $9,
				next_review_at = $10,
				updated_at = $11
			WHERE id = $12`,
			next.Difficulty,
			next.Stability,
			next.Retrievability,
			next.LapseCount,
			next.ReviewCount,
			next.ConsecutiveCorrectSessions,
			next.LastCorrectSessionID,
			string(next.MasteryStatus),
			next.LastReviewedAt,
			next.NextReviewAt,
			next.UpdatedAt,
			id,
		)
		if err != nil {
			return MapError(err)
		}
		updated = next
		return nil
	})
	if err != nil {
		log.Debug("item memory update aborted",
			slog.String("item_id", id.String()),
			slog.String("error", err.Error()))
		return nil, err
	}

	return updated, nil
}
