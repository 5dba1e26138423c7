// Package auth verifies the bearer tokens that identify owners.
//
// Tokens are issued by an external identity service and signed with a
// shared HMAC secret. The owner is the token's subject.
package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// JWTService validates access tokens and, for development, mints them.
type JWTService interface {
	// ValidateToken verifies the signature and time claims of tokenString
	// and extracts the owner from its subject.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)

	// GenerateToken mints a token for ownerID. Production tokens come from the
	// identity service; this exists for local development and tests.
	GenerateToken(ctx context.Context, ownerID uuid.UUID) (string, error)
}

// Claims is the verified content of an access token.
type Claims struct {
	OwnerID   uuid.UUID `json:"sub"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}
