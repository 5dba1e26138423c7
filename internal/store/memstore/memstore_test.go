package memstore_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/domain"
	"github.com/phrazzld/recall-api/internal/store"
	"github.com/phrazzld/recall-api/internal/store/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	day = time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)
	now = time.Date(2025, 1, 20, 9, 30, 0, 0, time.UTC)
)

func runConcurrently(n int, fn func(i int)) {
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

func TestSessionStore_SingleOpenSession(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := memstore.NewSessionStore()
	owner := uuid.New()

	var created atomic.Int32
	runConcurrently(10, func(int) {
		session, err := domain.NewReviewSession(owner, now)
		if !assert.NoError(t, err) {
			return
		}
		err = s.Create(ctx, session)
		if err == nil {
			created.Add(1)
			return
		}
		assert.ErrorIs(t, err, store.ErrOpenSessionExists)
		assert.ErrorIs(t, err, store.ErrDuplicate)
	})
	assert.Equal(t, int32(1), created.Load())

	open, err := s.GetOpen(ctx, owner)
	require.NoError(t, err)

	closed, err := s.Close(ctx, open.ID, now.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, closed.IsOpen())

	again, err := s.Close(ctx, open.ID, now.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), *again.EndedAt, "closing twice keeps the first end time")

	_, err = s.GetOpen(ctx, owner)
	assert.ErrorIs(t, err, store.ErrSessionNotFound)

	next, err := domain.NewReviewSession(owner, now.Add(3*time.Hour))
	require.NoError(t, err)
	assert.NoError(t, s.Create(ctx, next))
}

func TestSessionStore_AddCounts(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := memstore.NewSessionStore()

	session, err := domain.NewReviewSession(uuid.New(), now)
	require.NoError(t, err)
	require.NoError(t, s.Create(ctx, session))

	runConcurrently(2, func(i int) {
		_, err := s.AddCounts(ctx, session.ID, 2+i, 2+i)
		assert.NoError(t, err)
	})

	got, err := s.GetByID(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.ItemsReviewed)
	assert.Equal(t, 5, got.CorrectCount)

	_, err = s.Close(ctx, session.ID, now)
	require.NoError(t, err)
	_, err = s.AddCounts(ctx, session.ID, 1, 1)
	assert.ErrorIs(t, err, store.ErrSessionClosed)

	_, err = s.AddCounts(ctx, uuid.New(), 1, 1)
	assert.ErrorIs(t, err, store.ErrSessionNotFound)
}

func TestSessionStore_CloseStale(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := memstore.NewSessionStore()

	old, _ := domain.NewReviewSession(uuid.New(), now.Add(-3*time.Hour))
	fresh, _ := domain.NewReviewSession(uuid.New(), now.Add(-time.Hour))
	require.NoError(t, s.Create(ctx, old))
	require.NoError(t, s.Create(ctx, fresh))

	n, err := s.CloseStale(ctx, now.Add(-2*time.Hour), now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := s.GetByID(ctx, old.ID)
	require.NoError(t, err)
	assert.False(t, got.IsOpen())
	got, err = s.GetByID(ctx, fresh.ID)
	require.NoError(t, err)
	assert.True(t, got.IsOpen())
}

func TestDailyProgressStore_LatchFiresOnce(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := memstore.NewDailyProgressStore()
	owner := uuid.New()

	p, err := domain.NewDailyProgress(owner, day, 5)
	require.NoError(t, err)
	require.NoError(t, s.Create(ctx, p))
	assert.ErrorIs(t, s.Create(ctx, p), store.ErrDuplicate)

	var fired atomic.Int32
	runConcurrently(8, func(int) {
		_, just, err := s.Increment(ctx, owner, day, now)
		assert.NoError(t, err)
		if just {
			fired.Add(1)
		}
	})
	assert.Equal(t, int32(1), fired.Load())

	got, err := s.Get(ctx, owner, day)
	require.NoError(t, err)
	assert.Equal(t, 8, got.CompletedCount)
	require.NotNil(t, got.CompletedAt)
	assert.True(t, got.IsComplete())

	_, _, err = s.Increment(ctx, owner, day.AddDate(0, 0, 1), now)
	assert.ErrorIs(t, err, store.ErrDailyProgressNotFound)
}

func TestBingoStore_CellsAndAchievement(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := memstore.NewBingoStore()
	owner := uuid.New()

	board, err := domain.NewBingoBoard(owner, day)
	require.NoError(t, err)
	require.NoError(t, s.Create(ctx, board))

	var added atomic.Int32
	runConcurrently(5, func(int) {
		_, ok, err := s.AddCell(ctx, owner, day, "fillBlank", now)
		assert.NoError(t, err)
		if ok {
			added.Add(1)
		}
	})
	assert.Equal(t, int32(1), added.Load())

	got, err := s.Get(ctx, owner, day)
	require.NoError(t, err)
	assert.Equal(t, []string{"fillBlank"}, got.CompletedCells)

	var won atomic.Int32
	runConcurrently(5, func(int) {
		ok, err := s.MarkAchieved(ctx, owner, day, now)
		assert.NoError(t, err)
		if ok {
			won.Add(1)
		}
	})
	assert.Equal(t, int32(1), won.Load())
}

func TestStreakStore_Update(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := memstore.NewStreakStore()
	owner := uuid.New()

	streak, err := domain.NewStreak(owner, 1)
	require.NoError(t, err)
	require.NoError(t, s.Create(ctx, streak))
	assert.ErrorIs(t, s.Create(ctx, streak), store.ErrDuplicate)

	got, err := s.Update(ctx, owner, func(st *domain.Streak) (bool, error) {
		return st.Advance(day) != domain.StreakUnchanged, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, got.CurrentStreak)

	got, err = s.Update(ctx, owner, func(st *domain.Streak) (bool, error) {
		st.CurrentStreak = 99
		return false, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, got.CurrentStreak, "unchanged mutations are not persisted")

	_, err = s.Update(ctx, uuid.New(), func(*domain.Streak) (bool, error) { return true, nil })
	assert.ErrorIs(t, err, store.ErrStreakNotFound)
}

func TestItemStore_ListStrugglingAndUpdate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := memstore.NewItemStore()
	owner := uuid.New()

	for lapses := 0; lapses < 5; lapses++ {
		item, err := domain.NewLearnableItem(owner, domain.Content{Original: "word"}, "")
		require.NoError(t, err)
		item.LapseCount = lapses
		require.NoError(t, s.Create(ctx, item))
	}

	struggling, err := s.ListStruggling(ctx, owner, 3)
	require.NoError(t, err)
	require.Len(t, struggling, 2)
	assert.Equal(t, 4, struggling[0].LapseCount)
	assert.Equal(t, 3, struggling[1].LapseCount)

	target := struggling[0]
	runConcurrently(10, func(int) {
		_, err := s.UpdateMemory(ctx, target.ID, func(cur *domain.LearnableItem) (*domain.LearnableItem, error) {
			cur.ReviewCount++
			return cur, nil
		})
		assert.NoError(t, err)
	})

	got, err := s.GetByID(ctx, target.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.ReviewCount)

	_, err = s.UpdateMemory(ctx, uuid.New(), func(cur *domain.LearnableItem) (*domain.LearnableItem, error) {
		return cur, nil
	})
	assert.ErrorIs(t, err, store.ErrItemNotFound)
}

func TestBossRoundStore_Stats(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := memstore.NewBossRoundStore()
	owner := uuid.New()

	stats, err := s.Stats(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, domain.BossRoundStats{}, *stats)

	for _, correct := range []int{3, 5, 4} {
		a, err := domain.NewBossRoundAttempt(owner, correct, 5, 90*time.Second, 60*time.Second, now)
		require.NoError(t, err)
		require.NoError(t, s.Append(ctx, a))
	}

	stats, err = s.Stats(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, domain.BossRoundStats{BestAccuracy: 100, TotalAttempts: 3, PerfectRounds: 1}, *stats)
}
