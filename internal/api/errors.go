package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/recall-api/internal/api/shared"
	"github.com/phrazzld/recall-api/internal/domain"
	"github.com/phrazzld/recall-api/internal/service/auth"
	"github.com/phrazzld/recall-api/internal/service/boss_round"
	"github.com/phrazzld/recall-api/internal/service/engagement"
	"github.com/phrazzld/recall-api/internal/service/review"
	"github.com/phrazzld/recall-api/internal/service/session"
	"github.com/phrazzld/recall-api/internal/store"
)

// RetryAfterSeconds is advertised with 503 responses caused by transient
// store failures.
const RetryAfterSeconds = 2

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusInternalServerError

	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrInvalidSubject),
		errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized

	// Authorization errors
	case errors.Is(err, session.ErrSessionNotOwned):
		return http.StatusForbidden

	// Not found errors, including items of another owner
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// State conflicts the client can resolve
	case errors.Is(err, session.ErrSessionClosed),
		errors.Is(err, boss_round.ErrGoalIncomplete):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, engagement.ErrUnknownEventKind),
		errors.Is(err, engagement.ErrInvalidPayload),
		errors.Is(err, shared.ErrEmptyBody):
		return http.StatusBadRequest

	// Retryable failures
	case errors.Is(err, store.ErrTransient),
		errors.Is(err, session.ErrSessionContention):
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrInvalidSubject):
		return "Invalid token"
	case errors.Is(err, domain.ErrUnauthorized):
		return "Owner not found or invalid"

	case errors.Is(err, session.ErrSessionNotOwned):
		return "You do not own this session"

	case errors.Is(err, review.ErrItemNotFound):
		return "Item not found"
	case errors.Is(err, session.ErrSessionNotFound):
		return "Session not found"
	case errors.Is(err, store.ErrNotFound):
		return "Resource not found"

	case errors.Is(err, session.ErrSessionClosed):
		return "Session has ended"
	case errors.Is(err, boss_round.ErrGoalIncomplete):
		return "Complete today's goal to unlock the boss round"

	case errors.Is(err, engagement.ErrUnknownEventKind):
		return "Unknown event kind"
	case errors.Is(err, engagement.ErrInvalidPayload):
		return "Invalid event payload"
	case errors.Is(err, domain.ErrInvalidRating):
		return "Invalid rating"
	case errors.Is(err, review.ErrEmptyBatch):
		return "Batch must contain at least one rating"
	case errors.Is(err, review.ErrBatchTooLarge):
		return "Batch contains too many ratings"
	case errors.Is(err, shared.ErrEmptyBody):
		return "Request body is required"
	case errors.Is(err, domain.ErrValidation):
		var verr *domain.ValidationError
		if errors.As(err, &verr) && verr.Field != "" {
			return "Invalid " + verr.Field
		}
		return "Validation error"
	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	case errors.Is(err, store.ErrTransient),
		errors.Is(err, session.ErrSessionContention):
		return "Service temporarily unavailable, please retry"

	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError turns validator output into a message naming the
// first failing field and rule, without struct names or values.
func SanitizeValidationError(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return fmt.Sprintf("Invalid %s: %s", verrs[0].Field(), getValidationTagMessage(verrs[0].Tag()))
	}
	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "uuid":
		return "must be a UUID"
	case "min", "gte", "gt":
		return "too small"
	case "max", "lte", "lt", "ltefield":
		return "too large"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}

// HandleAPIError writes the error response for err. fallback replaces the
// generic message for unmapped server errors. Transient failures carry a
// Retry-After header.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && fallback != "" {
		message = fallback
	}
	if status == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", strconv.Itoa(RetryAfterSeconds))
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err)
}
