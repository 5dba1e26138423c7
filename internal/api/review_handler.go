package api

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/api/shared"
	"github.com/phrazzld/recall-api/internal/domain"
	"github.com/phrazzld/recall-api/internal/platform/logger"
	"github.com/phrazzld/recall-api/internal/service/review"
	"github.com/phrazzld/recall-api/internal/service/session"
)

// ReviewHandler handles the review loop endpoints.
type ReviewHandler struct {
	reviews  review.Service
	sessions session.Manager
	logger   *slog.Logger
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(reviews review.Service, sessions session.Manager, logger *slog.Logger) *ReviewHandler {
	if reviews == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("review service cannot be nil for ReviewHandler")
	}
	if sessions == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("session manager cannot be nil for ReviewHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for ReviewHandler")
	}

	return &ReviewHandler{
		reviews:  reviews,
		sessions: sessions,
		logger:   logger.With(slog.String("component", "review_handler")),
	}
}

// GetDueQueue handles GET /api/reviews/due?limit=N.
// A missing or zero limit returns up to the configured maximum.
func (h *ReviewHandler) GetDueQueue(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	ownerID, ok := requireOwner(w, r, log)
	if !ok {
		return
	}

	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	queue, err := h.reviews.GetDueQueue(r.Context(), ownerID, limit)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load due items")
		return
	}

	log.Debug("served due queue",
		slog.String("owner_id", ownerID.String()),
		slog.Int("returned", len(queue.Items)),
		slog.Int("total_due", queue.TotalDue))
	shared.RespondWithJSON(w, r, http.StatusOK, DueQueueResponse{
		Items:     itemsToResponse(queue.Items),
		TotalDue:  queue.TotalDue,
		SessionID: queue.SessionID,
	})
}

// SubmitRating handles POST /api/reviews.
func (h *ReviewHandler) SubmitRating(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	ownerID, ok := requireOwner(w, r, log)
	if !ok {
		return
	}

	var req SubmitRatingRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	// Validated as UUIDs above.
	itemID := uuid.MustParse(req.ItemID)
	sessionID := uuid.MustParse(req.SessionID)

	res, err := h.reviews.SubmitRating(r.Context(), ownerID, itemID, domain.Rating(req.Rating), sessionID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to submit rating")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ratingToResponse(res))
}

// SubmitBatch handles POST /api/reviews/batch.
func (h *ReviewHandler) SubmitBatch(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	ownerID, ok := requireOwner(w, r, log)
	if !ok {
		return
	}

	var req SubmitBatchRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	entries := make([]review.BatchEntry, 0, len(req.Ratings))
	for _, e := range req.Ratings {
		entries = append(entries, review.BatchEntry{
			ItemID: uuid.MustParse(e.ItemID),
			Rating: domain.Rating(e.Rating),
		})
	}

	res, err := h.reviews.SubmitBatch(r.Context(), ownerID, uuid.MustParse(req.SessionID), entries)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to submit ratings")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, batchToResponse(res))
}

// EndSession handles POST /api/reviews/sessions/{id}/end.
func (h *ReviewHandler) EndSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	ownerID, ok := requireOwner(w, r, log)
	if !ok {
		return
	}
	sessionID, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	summary, err := h.sessions.EndSession(r.Context(), ownerID, sessionID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to end session")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, summary)
}

// Attention handles GET /api/items/attention.
func (h *ReviewHandler) Attention(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	ownerID, ok := requireOwner(w, r, log)
	if !ok {
		return
	}

	items, err := h.reviews.Attention(r.Context(), ownerID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load struggling items")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, AttentionResponse{Items: itemsToResponse(items)})
}
