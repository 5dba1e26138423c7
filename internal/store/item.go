package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/domain"
)

// ItemMutator computes a new item state from the current one. Returning an
// error aborts the update and leaves the stored item untouched.
type ItemMutator func(current *domain.LearnableItem) (*domain.LearnableItem, error)

// ItemStore defines the interface for learnable item persistence.
// Items are created by capture pipelines; this service only updates their
// memory fields and never deletes them.
type ItemStore interface {
	// Create saves a new item.
	// Returns validation errors from the domain item if data is invalid.
	Create(ctx context.Context, item *domain.LearnableItem) error

	// GetByID retrieves an item by its unique ID.
	// Returns ErrItemNotFound if the item does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.LearnableItem, error)

	// ListByOwner returns all items belonging to ownerID.
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.LearnableItem, error)

	// ListStruggling returns all of the owner's items with at least minLapses
	// lapses, most lapses first. Stored retrievability is stale, so callers
	// rank and cap after recomputing it.
	ListStruggling(ctx context.Context, ownerID uuid.UUID, minLapses int) ([]*domain.LearnableItem, error)

	// UpdateMemory locks the item, applies fn, and persists the memory fields
	// of the returned state. Concurrent updates to the same item are serialized.
	// Returns ErrItemNotFound if the item does not exist.
	UpdateMemory(ctx context.Context, id uuid.UUID, fn ItemMutator) (*domain.LearnableItem, error)
}
