//go:build integration

package store_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/store"
	"github.com/phrazzld/recall-api/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countItems(t *testing.T, db *sql.DB, owner uuid.UUID) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRowContext(context.Background(),
		"SELECT count(*) FROM learnable_items WHERE owner_id = $1", owner).Scan(&n))
	return n
}

func insertItem(ctx context.Context, tx *sql.Tx, owner uuid.UUID) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO learnable_items (id, owner_id, original, translation, created_at, updated_at)
		 VALUES ($1, $2, 'hola', 'hello', now(), now())`,
		uuid.New(), owner)
	return err
}

func TestRunInTransaction(t *testing.T) {
	db := testdb.GetTestDBWithT(t)
	ctx := context.Background()

	t.Run("commits", func(t *testing.T) {
		owner := uuid.New()
		err := store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
			return insertItem(ctx, tx, owner)
		})
		require.NoError(t, err)
		assert.Equal(t, 1, countItems(t, db, owner))
	})

	t.Run("rolls back on error", func(t *testing.T) {
		owner := uuid.New()
		sentinel := errors.New("abort")
		err := store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
			require.NoError(t, insertItem(ctx, tx, owner))
			return sentinel
		})
		assert.ErrorIs(t, err, sentinel)
		assert.Equal(t, 0, countItems(t, db, owner))
	})

	t.Run("rolls back on panic", func(t *testing.T) {
		owner := uuid.New()
		assert.Panics(t, func() {
			_ = store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
				require.NoError(t, insertItem(ctx, tx, owner))
				panic("boom")
			})
		})
		assert.Equal(t, 0, countItems(t, db, owner))
	})
}
