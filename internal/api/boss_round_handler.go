package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/recall-api/internal/api/shared"
	"github.com/phrazzld/recall-api/internal/platform/logger"
	"github.com/phrazzld/recall-api/internal/service/boss_round"
)

// BossRoundHandler handles the boss round endpoints.
type BossRoundHandler struct {
	bossRounds boss_round.Service
	logger     *slog.Logger
}

// NewBossRoundHandler creates a new BossRoundHandler.
func NewBossRoundHandler(svc boss_round.Service, logger *slog.Logger) *BossRoundHandler {
	if svc == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("boss round service cannot be nil for BossRoundHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for BossRoundHandler")
	}

	return &BossRoundHandler{
		bossRounds: svc,
		logger:     logger.With(slog.String("component", "boss_round_handler")),
	}
}

// GetBossRound handles GET /api/boss-round.
func (h *BossRoundHandler) GetBossRound(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	ownerID, ok := requireOwner(w, r, log)
	if !ok {
		return
	}

	round, err := h.bossRounds.GetBossRound(r.Context(), ownerID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load boss round")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, roundToResponse(round))
}

// PostResult handles POST /api/boss-round/results.
func (h *BossRoundHandler) PostResult(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	ownerID, ok := requireOwner(w, r, log)
	if !ok {
		return
	}

	var req BossRoundResultRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	timeUsed := time.Duration(req.TimeUsedSeconds * float64(time.Second))
	res, err := h.bossRounds.PostBossRoundResult(r.Context(), ownerID, req.Score, req.Total, timeUsed)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to record boss round")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, res)
}
