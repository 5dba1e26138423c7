package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/recall-api/internal/api"
	apiMiddleware "github.com/phrazzld/recall-api/internal/api/middleware"
	"github.com/phrazzld/recall-api/internal/platform/metrics"
)

// setupRouter creates and configures the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(apiMiddleware.TraceMiddleware(app.logger))
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.Metrics)

	reviewHandler := api.NewReviewHandler(app.reviewService, app.sessionManager, app.logger)
	engagementHandler := api.NewEngagementHandler(app.engagementService, app.logger)
	bossRoundHandler := api.NewBossRoundHandler(app.bossRoundService, app.logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	r.Route("/api", func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)
		if rl := app.config.RateLimit; rl.RequestsPerSecond > 0 {
			limiter := apiMiddleware.NewRateLimiter(rl.RequestsPerSecond, rl.Burst, app.clock)
			r.Use(limiter.Limit)
		}

		r.Get("/reviews/due", reviewHandler.GetDueQueue)
		r.Post("/reviews", reviewHandler.SubmitRating)
		r.Post("/reviews/batch", reviewHandler.SubmitBatch)
		r.Post("/reviews/sessions/{id}/end", reviewHandler.EndSession)
		r.Get("/items/attention", reviewHandler.Attention)

		r.Get("/engagement", engagementHandler.GetState)
		r.Post("/engagement/events", engagementHandler.PostEvent)

		r.Get("/boss-round", bossRoundHandler.GetBossRound)
		r.Post("/boss-round/results", bossRoundHandler.PostResult)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})
	r.Handle("/metrics", metrics.Handler())

	return r
}
