//go:build integration

package postgres_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/domain"
	"github.com/phrazzld/recall-api/internal/platform/postgres"
	"github.com/phrazzld/recall-api/internal/store"
	"github.com/phrazzld/recall-api/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testDay = time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)
	testNow = time.Date(2025, 1, 20, 9, 30, 0, 0, time.UTC)
)

func parallel(n int, fn func(i int)) {
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			fn(i)
		}(i)
	}
	close(start)
	wg.Wait()
}

func TestSessionStore_Integration(t *testing.T) {
	db := testdb.GetTestDBWithT(t)
	ctx := context.Background()
	s := postgres.NewPostgresSessionStore(db, nil)
	owner := uuid.New()

	var created atomic.Int32
	parallel(10, func(int) {
		session, err := domain.NewReviewSession(owner, testNow)
		if !assert.NoError(t, err) {
			return
		}
		err = s.Create(ctx, session)
		if err == nil {
			created.Add(1)
			return
		}
		assert.ErrorIs(t, err, store.ErrOpenSessionExists)
	})
	assert.Equal(t, int32(1), created.Load())

	open, err := s.GetOpen(ctx, owner)
	require.NoError(t, err)

	parallel(2, func(i int) {
		_, err := s.AddCounts(ctx, open.ID, 2+i, 2+i)
		assert.NoError(t, err)
	})
	got, err := s.GetByID(ctx, open.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.ItemsReviewed)
	assert.Equal(t, 5, got.CorrectCount)

	closed, err := s.Close(ctx, open.ID, testNow.Add(time.Hour))
	require.NoError(t, err)
	require.NotNil(t, closed.EndedAt)

	_, err = s.AddCounts(ctx, open.ID, 1, 1)
	assert.ErrorIs(t, err, store.ErrSessionClosed)

	_, err = s.GetOpen(ctx, owner)
	assert.ErrorIs(t, err, store.ErrSessionNotFound)
}

func TestDailyProgressStore_Integration(t *testing.T) {
	db := testdb.GetTestDBWithT(t)
	ctx := context.Background()
	s := postgres.NewPostgresDailyProgressStore(db, nil)
	owner := uuid.New()

	p, err := domain.NewDailyProgress(owner, testDay, 3)
	require.NoError(t, err)
	require.NoError(t, s.Create(ctx, p))
	assert.ErrorIs(t, s.Create(ctx, p), store.ErrDuplicate)

	var fired atomic.Int32
	parallel(6, func(int) {
		_, just, err := s.Increment(ctx, owner, testDay, testNow)
		assert.NoError(t, err)
		if just {
			fired.Add(1)
		}
	})
	assert.Equal(t, int32(1), fired.Load())

	got, err := s.Get(ctx, owner, testDay)
	require.NoError(t, err)
	assert.Equal(t, 6, got.CompletedCount)
	assert.NotNil(t, got.CompletedAt)
	assert.True(t, got.Date.Equal(testDay))
}

func TestBingoStore_Integration(t *testing.T) {
	db := testdb.GetTestDBWithT(t)
	ctx := context.Background()
	s := postgres.NewPostgresBingoStore(db, nil)
	owner := uuid.New()

	board, err := domain.NewBingoBoard(owner, testDay)
	require.NoError(t, err)
	require.NoError(t, s.Create(ctx, board))

	var added atomic.Int32
	parallel(5, func(int) {
		_, ok, err := s.AddCell(ctx, owner, testDay, "workWord", testNow)
		assert.NoError(t, err)
		if ok {
			added.Add(1)
		}
	})
	assert.Equal(t, int32(1), added.Load())

	got, err := s.Get(ctx, owner, testDay)
	require.NoError(t, err)
	assert.Equal(t, []string{"workWord"}, got.CompletedCells)

	first, err := s.MarkAchieved(ctx, owner, testDay, testNow)
	require.NoError(t, err)
	second, err := s.MarkAchieved(ctx, owner, testDay, testNow)
	require.NoError(t, err)
	assert.True(t, first)
	assert.False(t, second)
}

func TestStreakStore_Integration(t *testing.T) {
	db := testdb.GetTestDBWithT(t)
	ctx := context.Background()
	s := postgres.NewPostgresStreakStore(db, nil)
	owner := uuid.New()

	streak, err := domain.NewStreak(owner, domain.DefaultFreezeCount)
	require.NoError(t, err)
	require.NoError(t, s.Create(ctx, streak))

	parallel(4, func(int) {
		_, err := s.Update(ctx, owner, func(st *domain.Streak) (bool, error) {
			return st.Advance(testDay) != domain.StreakUnchanged, nil
		})
		assert.NoError(t, err)
	})

	got, err := s.Get(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, 1, got.CurrentStreak)
	require.NotNil(t, got.LastCompletedDate)
	assert.True(t, got.LastCompletedDate.Equal(testDay))
}

func TestItemStore_Integration(t *testing.T) {
	db := testdb.GetTestDBWithT(t)
	ctx := context.Background()
	s := postgres.NewPostgresItemStore(db, nil)
	owner := uuid.New()

	item, err := domain.NewLearnableItem(owner, domain.Content{Original: "Besprechung", Translation: "meeting"}, "work")
	require.NoError(t, err)
	require.NoError(t, s.Create(ctx, item))

	parallel(5, func(int) {
		_, err := s.UpdateMemory(ctx, item.ID, func(cur *domain.LearnableItem) (*domain.LearnableItem, error) {
			cur.LapseCount++
			return cur, nil
		})
		assert.NoError(t, err)
	})

	got, err := s.GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.LapseCount)
	assert.Equal(t, "work", got.Category)

	struggling, err := s.ListStruggling(ctx, owner, 3)
	require.NoError(t, err)
	assert.Len(t, struggling, 1)

	_, err = s.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, store.ErrItemNotFound)
}

func TestBossRoundStore_Integration(t *testing.T) {
	db := testdb.GetTestDBWithT(t)
	ctx := context.Background()
	s := postgres.NewPostgresBossRoundStore(db, nil)
	owner := uuid.New()

	stats, err := s.Stats(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalAttempts)

	for _, correct := range []int{2, 5} {
		a, err := domain.NewBossRoundAttempt(owner, correct, 5, 90*time.Second, 45*time.Second, testNow)
		require.NoError(t, err)
		require.NoError(t, s.Append(ctx, a))
	}

	stats, err = s.Stats(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, domain.BossRoundStats{BestAccuracy: 100, TotalAttempts: 2, PerfectRounds: 1}, *stats)
}
