package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/recall-api/internal/api/shared"
	"github.com/phrazzld/recall-api/internal/platform/logger"
	"github.com/phrazzld/recall-api/internal/service/engagement"
)

// EngagementHandler handles daily goal, streak and bingo endpoints.
type EngagementHandler struct {
	engagement engagement.Service
	logger     *slog.Logger
}

// NewEngagementHandler creates a new EngagementHandler.
func NewEngagementHandler(svc engagement.Service, logger *slog.Logger) *EngagementHandler {
	if svc == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("engagement service cannot be nil for EngagementHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for EngagementHandler")
	}

	return &EngagementHandler{
		engagement: svc,
		logger:     logger.With(slog.String("component", "engagement_handler")),
	}
}

// GetState handles GET /api/engagement.
func (h *EngagementHandler) GetState(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	ownerID, ok := requireOwner(w, r, log)
	if !ok {
		return
	}

	state, err := h.engagement.GetEngagementState(r.Context(), ownerID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load engagement state")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, state)
}

// PostEvent handles POST /api/engagement/events.
func (h *EngagementHandler) PostEvent(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	ownerID, ok := requireOwner(w, r, log)
	if !ok {
		return
	}

	var req PostEventRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	res, err := h.engagement.PostEvent(r.Context(), ownerID, engagement.EventKind(req.Kind), req.Payload)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to process event")
		return
	}

	log.Debug("engagement event processed",
		slog.String("owner_id", ownerID.String()),
		slog.String("kind", req.Kind),
		slog.Int("new_cells", len(res.NewlyCompletedCells)))
	shared.RespondWithJSON(w, r, http.StatusOK, res)
}
