package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/api/shared"
	"github.com/phrazzld/recall-api/internal/platform/logger"
	"github.com/phrazzld/recall-api/internal/redact"
	"github.com/phrazzld/recall-api/internal/service/auth"
)

var errMalformedHeader = errors.New("malformed authorization header")

// AuthMiddleware rejects requests without a valid bearer token.
type AuthMiddleware struct {
	jwtService auth.JWTService
}

// NewAuthMiddleware creates an AuthMiddleware backed by jwtService.
func NewAuthMiddleware(jwtService auth.JWTService) *AuthMiddleware {
	if jwtService == nil {
		panic("jwtService cannot be nil")
	}
	return &AuthMiddleware{jwtService: jwtService}
}

// Authenticate validates the bearer token and stores its subject in the
// request context as the owner ID. The context logger gains an owner_id field.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		token, err := bearerToken(r)
		if err != nil {
			message := "Invalid authorization format"
			if errors.Is(err, auth.ErrMissingToken) {
				message = "Authorization header required"
			}
			shared.RespondWithError(w, r, http.StatusUnauthorized, message)
			return
		}

		claims, err := m.jwtService.ValidateToken(ctx, token)
		switch {
		case err == nil:
		case errors.Is(err, auth.ErrExpiredToken):
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Token expired")
			return
		case isTokenError(err):
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid token")
			return
		default:
			logger.FromContext(ctx).Error("token validation failed unexpectedly",
				slog.String("error", redact.Error(err)))
			shared.RespondWithError(w, r, http.StatusInternalServerError, "Authentication error")
			return
		}

		ctx = shared.WithOwnerID(ctx, claims.OwnerID)
		ctx = logger.WithLogger(ctx, logger.FromContext(ctx).With(slog.String("owner_id", claims.OwnerID.String())))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// bearerToken extracts the token from "Authorization: Bearer <token>". The
// scheme is case-insensitive.
func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", auth.ErrMissingToken
	}
	scheme, token, ok := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", errMalformedHeader
	}
	return token, nil
}

func isTokenError(err error) bool {
	for _, target := range []error{
		auth.ErrInvalidToken,
		auth.ErrTokenNotYetValid,
		auth.ErrMissingToken,
		auth.ErrInvalidSubject,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// GetOwnerID returns the authenticated owner of r.
func GetOwnerID(r *http.Request) (uuid.UUID, bool) {
	return shared.OwnerIDFromContext(r.Context())
}
