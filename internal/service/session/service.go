// Package session owns review session lifecycle: the one-open-session-per-owner
// invariant, atomic counter deltas and explicit or inactivity-based closing.
package session

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/domain"
)

// Manager provides review session operations.
type Manager interface {
	// GetOrCreateSession returns the owner's open session, replacing it with
	// a fresh one when it has outlived the inactivity boundary.
	//
	// Concurrent calls for one owner always converge on a single session id.
	// The store's uniqueness guarantee arbitrates; a lost insert race is
	// recovered by re-reading the winner.
	GetOrCreateSession(ctx context.Context, ownerID uuid.UUID) (*domain.ReviewSession, error)

	// GetOwnedSession returns the session if it belongs to ownerID.
	// Returns ErrSessionNotFound or ErrSessionNotOwned otherwise.
	GetOwnedSession(ctx context.Context, ownerID, sessionID uuid.UUID) (*domain.ReviewSession, error)

	// RecordRating counts one rating against an open session.
	RecordRating(ctx context.Context, sessionID uuid.UUID, wasCorrect bool) (*domain.ReviewSession, error)

	// RecordRatings counts reviewed ratings, correct of them successful, as a
	// single relative delta. Returns ErrSessionClosed for an ended session.
	RecordRatings(ctx context.Context, sessionID uuid.UUID, reviewed, correct int) (*domain.ReviewSession, error)

	// EndSession closes an owned session and returns its summary. Ending an
	// already ended session returns the same summary.
	EndSession(ctx context.Context, ownerID, sessionID uuid.UUID) (*domain.SessionSummary, error)

	// SweepStale closes every open session older than the inactivity boundary
	// and returns how many were closed.
	SweepStale(ctx context.Context) (int64, error)
}
