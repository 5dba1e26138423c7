package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/domain"
	"github.com/phrazzld/recall-api/internal/platform/logger"
	"github.com/phrazzld/recall-api/internal/store"
)

const bingoColumns = `owner_id, date, completed_cells, achieved, achieved_at, created_at, updated_at`

// PostgresBingoStore implements store.BingoStore using PostgreSQL.
// Completed cells live in a JSONB array that is only ever appended to.
type PostgresBingoStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresBingoStore creates a new PostgreSQL implementation of the BingoStore interface.
func NewPostgresBingoStore(db store.DBTX, logger *slog.Logger) *PostgresBingoStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresBingoStore{
		db:     db,
		logger: logger.With(slog.String("component", "bingo_store")),
	}
}

var _ store.BingoStore = (*PostgresBingoStore)(nil)

func scanBingoBoard(row rowScanner) (*domain.BingoBoard, error) {
	var b domain.BingoBoard
	var cells []byte
	if err := row.Scan(
		&b.OwnerID,
		&b.Date,
		&cells,
		&b.Achieved,
		&b.AchievedAt,
		&b.CreatedAt,
		&b.UpdatedAt,
	); err != nil {
		return nil, err
	}
	b.Date = b.Date.UTC()
	if err := json.Unmarshal(cells, &b.CompletedCells); err != nil {
		return nil, fmt.Errorf("decode completed cells: %w", err)
	}
	if b.CompletedCells == nil {
		b.CompletedCells = []string{}
	}
	return &b, nil
}

// Create implements store.BingoStore.Create.
func (s *PostgresBingoStore) Create(ctx context.Context, board *domain.BingoBoard) error {
	cells, err := json.Marshal(board.CompletedCells)
	if err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}
	if board.CompletedCells == nil {
		cells = []byte("[]")
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO bingo_boards (`+bingoColumns+`)
		VALUES ($1, $2, $3::jsonb, $4, $5, $6, $7)
		ON CONFLICT (owner_id, date) DO NOTHING`,
		board.OwnerID,
		board.Date,
		string(cells),
		board.Achieved,
		board.AchievedAt,
		board.CreatedAt,
		board.UpdatedAt,
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

// Get implements store.BingoStore.Get.
func (s *PostgresBingoStore) Get(ctx context.Context, ownerID uuid.UUID, date time.Time) (*domain.BingoBoard, error) {
	board, err := scanBingoBoard(s.db.QueryRowContext(ctx,
		`SELECT `+bingoColumns+` FROM bingo_boards WHERE owner_id = $1 AND date = $2`,
		ownerID, date,
	))
	if err != nil {
		return nil, mapNotFound(err, store.ErrBingoBoardNotFound)
	}
	return board, nil
}

// AddCell implements store.BingoStore.AddCell.
// The containment guard makes the append a no-op when the cell is present,
// so concurrent adds of the same cell store it once.
func (s *PostgresBingoStore) AddCell(
	ctx context.Context,
	ownerID uuid.UUID,
	date time.Time,
	cell string,
	now time.Time,
) (*domain.BingoBoard, bool, error) {
	board, err := scanBingoBoard(s.db.QueryRowContext(ctx, `
		UPDATE bingo_boards
		SET completed_cells = completed_cells || jsonb_build_array($3::text),
			updated_at = $4
		WHERE owner_id = $1 AND date = $2
			AND NOT completed_cells @> jsonb_build_array($3::text)
		RETURNING `+bingoColumns,
		ownerID, date, cell, now,
	))
	if err == nil {
		return board, true, nil
	}
	if !IsNoRows(err) {
		return nil, false, MapError(err)
	}

	board, err = s.Get(ctx, ownerID, date)
	if err != nil {
		return nil, false, err
	}
	return board, false, nil
}

// MarkAchieved implements store.BingoStore.MarkAchieved.
func (s *PostgresBingoStore) MarkAchieved(
	ctx context.Context,
	ownerID uuid.UUID,
	date time.Time,
	now time.Time,
) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE bingo_boards
		SET achieved = TRUE, achieved_at = $3, updated_at = $3
		WHERE owner_id = $1 AND date = $2 AND achieved = FALSE`,
		ownerID, date, now,
	)
	if err != nil {
		return false, MapError(err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, MapError(err)
	}
	if n == 1 {
		logger.FromContextOrDefault(ctx, s.logger).Info("bingo achieved",
			slog.String("owner_id", ownerID.String()),
			slog.String("date", date.Format(domain.DateLayout)))
	}
	return n == 1, nil
}
