package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/domain"
	"github.com/phrazzld/recall-api/internal/store"
)

type dayKey struct {
	owner uuid.UUID
	date  string
}

func keyOf(owner uuid.UUID, date time.Time) dayKey {
	return dayKey{owner: owner, date: date.UTC().Format(domain.DateLayout)}
}

func timePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

// DailyProgressStore is an in-memory store.DailyProgressStore.
type DailyProgressStore struct {
	mu      sync.Mutex
	records map[dayKey]*domain.DailyProgress
}

// NewDailyProgressStore creates an empty DailyProgressStore.
func NewDailyProgressStore() *DailyProgressStore {
	return &DailyProgressStore{records: make(map[dayKey]*domain.DailyProgress)}
}

var _ store.DailyProgressStore = (*DailyProgressStore)(nil)

func cloneProgress(p *domain.DailyProgress) *domain.DailyProgress {
	c := *p
	c.CompletedAt = timePtr(p.CompletedAt)
	return &c
}

// Create implements store.DailyProgressStore.Create.
func (s *DailyProgressStore) Create(_ context.Context, progress *domain.DailyProgress) error {
	if err := progress.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	k := keyOf(progress.OwnerID, progress.Date)
	if _, ok := s.records[k]; ok {
		return store.ErrDuplicate
	}
	s.records[k] = cloneProgress(progress)
	return nil
}

// Get implements store.DailyProgressStore.Get.
func (s *DailyProgressStore) Get(_ context.Context, ownerID uuid.UUID, date time.Time) (*domain.DailyProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.records[keyOf(ownerID, date)]
	if !ok {
		return nil, store.ErrDailyProgressNotFound
	}
	return cloneProgress(p), nil
}

// Increment implements store.DailyProgressStore.Increment.
func (s *DailyProgressStore) Increment(
	_ context.Context,
	ownerID uuid.UUID,
	date time.Time,
	now time.Time,
) (*domain.DailyProgress, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.records[keyOf(ownerID, date)]
	if !ok {
		return nil, false, store.ErrDailyProgressNotFound
	}

	p.CompletedCount++
	p.UpdatedAt = now
	justCompleted := false
	if p.CompletedAt == nil && p.CompletedCount >= p.TargetCount {
		t := now
		p.CompletedAt = &t
		justCompleted = true
	}
	return cloneProgress(p), justCompleted, nil
}

// StreakStore is an in-memory store.StreakStore.
type StreakStore struct {
	mu      sync.Mutex
	streaks map[uuid.UUID]*domain.Streak
}

// NewStreakStore creates an empty StreakStore.
func NewStreakStore() *StreakStore {
	return &StreakStore{streaks: make(map[uuid.UUID]*domain.Streak)}
}

var _ store.StreakStore = (*StreakStore)(nil)

func cloneStreak(s *domain.Streak) *domain.Streak {
	c := *s
	c.LastCompletedDate = timePtr(s.LastCompletedDate)
	c.LastFreezeUsedDate = timePtr(s.LastFreezeUsedDate)
	return &c
}

// Create implements store.StreakStore.Create.
func (s *StreakStore) Create(_ context.Context, streak *domain.Streak) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.streaks[streak.OwnerID]; ok {
		return store.ErrDuplicate
	}
	s.streaks[streak.OwnerID] = cloneStreak(streak)
	return nil
}

// Get implements store.StreakStore.Get.
func (s *StreakStore) Get(_ context.Context, ownerID uuid.UUID) (*domain.Streak, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	streak, ok := s.streaks[ownerID]
	if !ok {
		return nil, store.ErrStreakNotFound
	}
	return cloneStreak(streak), nil
}

// Update implements store.StreakStore.Update.
func (s *StreakStore) Update(_ context.Context, ownerID uuid.UUID, fn store.StreakMutator) (*domain.Streak, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.streaks[ownerID]
	if !ok {
		return nil, store.ErrStreakNotFound
	}

	working := cloneStreak(current)
	changed, err := fn(working)
	if err != nil {
		return nil, err
	}
	if changed {
		s.streaks[ownerID] = cloneStreak(working)
		return working, nil
	}
	return cloneStreak(current), nil
}

// BingoStore is an in-memory store.BingoStore.
type BingoStore struct {
	mu     sync.Mutex
	boards map[dayKey]*domain.BingoBoard
}

// NewBingoStore creates an empty BingoStore.
func NewBingoStore() *BingoStore {
	return &BingoStore{boards: make(map[dayKey]*domain.BingoBoard)}
}

var _ store.BingoStore = (*BingoStore)(nil)

func cloneBoard(b *domain.BingoBoard) *domain.BingoBoard {
	c := *b
	c.CompletedCells = append([]string{}, b.CompletedCells...)
	c.AchievedAt = timePtr(b.AchievedAt)
	return &c
}

// Create implements store.BingoStore.Create.
func (s *BingoStore) Create(_ context.Context, board *domain.BingoBoard) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := keyOf(board.OwnerID, board.Date)
	if _, ok := s.boards[k]; ok {
		return store.ErrDuplicate
	}
	s.boards[k] = cloneBoard(board)
	return nil
}

// Get implements store.BingoStore.Get.
func (s *BingoStore) Get(_ context.Context, ownerID uuid.UUID, date time.Time) (*domain.BingoBoard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.boards[keyOf(ownerID, date)]
	if !ok {
		return nil, store.ErrBingoBoardNotFound
	}
	return cloneBoard(b), nil
}

// AddCell implements store.BingoStore.AddCell.
func (s *BingoStore) AddCell(
	_ context.Context,
	ownerID uuid.UUID,
	date time.Time,
	cell string,
	now time.Time,
) (*domain.BingoBoard, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.boards[keyOf(ownerID, date)]
	if !ok {
		return nil, false, store.ErrBingoBoardNotFound
	}
	if b.HasCell(cell) {
		return cloneBoard(b), false, nil
	}
	b.CompletedCells = append(b.CompletedCells, cell)
	b.UpdatedAt = now
	return cloneBoard(b), true, nil
}

// MarkAchieved implements store.BingoStore.MarkAchieved.
func (s *BingoStore) MarkAchieved(_ context.Context, ownerID uuid.UUID, date time.Time, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.boards[keyOf(ownerID, date)]
	if !ok || b.Achieved {
		return false, nil
	}
	t := now
	b.Achieved = true
	b.AchievedAt = &t
	b.UpdatedAt = now
	return true, nil
}
