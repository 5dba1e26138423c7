package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/domain"
)

// SessionStore defines the interface for review session persistence.
// Implementations must guarantee at most one open session per owner.
type SessionStore interface {
	// Create inserts a new open session.
	// Returns ErrOpenSessionExists if the owner already has an open session;
	// the insert is a no-op in that case.
	Create(ctx context.Context, session *domain.ReviewSession) error

	// GetByID retrieves a session by its ID.
	// Returns ErrSessionNotFound if the session does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ReviewSession, error)

	// GetOpen retrieves the owner's open session.
	// Returns ErrSessionNotFound if the owner has none.
	GetOpen(ctx context.Context, ownerID uuid.UUID) (*domain.ReviewSession, error)

	// Close ends the session at endedAt if it is still open and returns its
	// final state. Closing an already ended session returns it unchanged.
	// Returns ErrSessionNotFound if the session does not exist.
	Close(ctx context.Context, id uuid.UUID, endedAt time.Time) (*domain.ReviewSession, error)

	// AddCounts atomically adds reviewed and correct to the session counters.
	// Returns ErrSessionClosed if the session has ended and ErrSessionNotFound
	// if it does not exist.
	AddCounts(ctx context.Context, id uuid.UUID, reviewed, correct int) (*domain.ReviewSession, error)

	// CloseStale ends every open session that started before startedBefore
	// and returns how many were closed.
	CloseStale(ctx context.Context, startedBefore, endedAt time.Time) (int64, error)
}
