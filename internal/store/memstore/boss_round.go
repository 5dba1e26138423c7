package memstore

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/domain"
	"github.com/phrazzld/recall-api/internal/store"
)

// BossRoundStore is an in-memory store.BossRoundStore.
type BossRoundStore struct {
	mu       sync.Mutex
	attempts []domain.BossRoundAttempt
}

// NewBossRoundStore creates an empty BossRoundStore.
func NewBossRoundStore() *BossRoundStore {
	return &BossRoundStore{}
}

var _ store.BossRoundStore = (*BossRoundStore)(nil)

// Append implements store.BossRoundStore.Append.
func (s *BossRoundStore) Append(_ context.Context, attempt *domain.BossRoundAttempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.attempts = append(s.attempts, *attempt)
	return nil
}

// Stats implements store.BossRoundStore.Stats.
func (s *BossRoundStore) Stats(_ context.Context, ownerID uuid.UUID) (*domain.BossRoundStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var stats domain.BossRoundStats
	for _, a := range s.attempts {
		if a.OwnerID != ownerID {
			continue
		}
		stats.TotalAttempts++
		stats.BestAccuracy = max(stats.BestAccuracy, a.Accuracy)
		if a.IsPerfect {
			stats.PerfectRounds++
		}
	}
	return &stats, nil
}

// Stores bundles one of each in-memory store.
type Stores struct {
	Items         *ItemStore
	Sessions      *SessionStore
	DailyProgress *DailyProgressStore
	Streaks       *StreakStore
	Bingo         *BingoStore
	BossRounds    *BossRoundStore
}

// New creates a fresh set of empty stores.
func New() *Stores {
	return &Stores{
		Items:         NewItemStore(),
		Sessions:      NewSessionStore(),
		DailyProgress: NewDailyProgressStore(),
		Streaks:       NewStreakStore(),
		Bingo:         NewBingoStore(),
		BossRounds:    NewBossRoundStore(),
	}
}
