package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/domain"
)

// BossRoundStore defines the interface for the append-only boss round log.
type BossRoundStore interface {
	// Append records an attempt. Attempts are never updated or deleted.
	Append(ctx context.Context, attempt *domain.BossRoundAttempt) error

	// Stats aggregates the owner's attempts. An owner with no attempts gets
	// zero-valued stats, not an error.
	Stats(ctx context.Context, ownerID uuid.UUID) (*domain.BossRoundStats, error)
}
