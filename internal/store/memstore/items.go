package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/domain"
	"github.com/phrazzld/recall-api/internal/store"
)

// ItemStore is an in-memory store.ItemStore.
type ItemStore struct {
	mu    sync.Mutex
	items map[uuid.UUID]*domain.LearnableItem
	order []uuid.UUID
}

// NewItemStore creates an empty ItemStore.
func NewItemStore() *ItemStore {
	return &ItemStore{items: make(map[uuid.UUID]*domain.LearnableItem)}
}

var _ store.ItemStore = (*ItemStore)(nil)

// Create implements store.ItemStore.Create.
func (s *ItemStore) Create(_ context.Context, item *domain.LearnableItem) error {
	if err := item.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[item.ID]; ok {
		return store.ErrDuplicate
	}
	s.items[item.ID] = item.Clone()
	s.order = append(s.order, item.ID)
	return nil
}

// GetByID implements store.ItemStore.GetByID.
func (s *ItemStore) GetByID(_ context.Context, id uuid.UUID) (*domain.LearnableItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[id]
	if !ok {
		return nil, store.ErrItemNotFound
	}
	return item.Clone(), nil
}

// ListByOwner implements store.ItemStore.ListByOwner.
func (s *ItemStore) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]*domain.LearnableItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*domain.LearnableItem, 0)
	for _, id := range s.order {
		if item := s.items[id]; item.OwnerID == ownerID {
			out = append(out, item.Clone())
		}
	}
	return out, nil
}

// ListStruggling implements store.ItemStore.ListStruggling.
func (s *ItemStore) ListStruggling(
	ctx context.Context,
	ownerID uuid.UUID,
	minLapses int,
) ([]*domain.LearnableItem, error) {
	all, err := s.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	out := make([]*domain.LearnableItem, 0, len(all))
	for _, item := range all {
		if item.LapseCount >= minLapses {
			out = append(out, item)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].LapseCount > out[j].LapseCount
	})
	return out, nil
}

// UpdateMemory implements store.ItemStore.UpdateMemory. The store lock is
// held while fn runs, so updates are serialized.
func (s *ItemStore) UpdateMemory(
	_ context.Context,
	id uuid.UUID,
	fn store.ItemMutator,
) (*domain.LearnableItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.items[id]
	if !ok {
		return nil, store.ErrItemNotFound
	}

	next, err := fn(current.Clone())
	if err != nil {
		return nil, err
	}
	if err := next.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	s.items[id] = next.Clone()
	return next, nil
}
