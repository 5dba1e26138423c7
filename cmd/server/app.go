package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/recall-api/internal/config"
	"github.com/phrazzld/recall-api/internal/domain/srs"
	"github.com/phrazzld/recall-api/internal/events"
	"github.com/phrazzld/recall-api/internal/platform/clock"
	"github.com/phrazzld/recall-api/internal/platform/postgres"
	"github.com/phrazzld/recall-api/internal/service/auth"
	"github.com/phrazzld/recall-api/internal/service/boss_round"
	"github.com/phrazzld/recall-api/internal/service/engagement"
	"github.com/phrazzld/recall-api/internal/service/review"
	"github.com/phrazzld/recall-api/internal/service/session"
	"github.com/phrazzld/recall-api/internal/store"
	"github.com/phrazzld/recall-api/internal/task"
)

// appStores groups the persistence the services are built on.
type appStores struct {
	items      store.ItemStore
	sessions   store.SessionStore
	daily      store.DailyProgressStore
	streaks    store.StreakStore
	bingo      store.BingoStore
	bossRounds store.BossRoundStore
}

// postgresStores builds the Postgres-backed stores over db.
func postgresStores(db *sql.DB, logger *slog.Logger) appStores {
	return appStores{
		items:      postgres.NewPostgresItemStore(db, logger),
		sessions:   postgres.NewPostgresSessionStore(db, logger),
		daily:      postgres.NewPostgresDailyProgressStore(db, logger),
		streaks:    postgres.NewPostgresStreakStore(db, logger),
		bingo:      postgres.NewPostgresBingoStore(db, logger),
		bossRounds: postgres.NewPostgresBossRoundStore(db, logger),
	}
}

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB
	clock  clock.Clock

	stores appStores

	jwtService        auth.JWTService
	sessionManager    session.Manager
	engagementService engagement.Service
	reviewService     review.Service
	bossRoundService  boss_round.Service

	eventEmitter *events.InMemoryEventEmitter
	sweeper      *task.Sweeper
}

// newApplication wires services, handlers' dependencies and the session
// sweeper over the given stores. The sweeper is built but not started.
func newApplication(cfg *config.Config, logger *slog.Logger, stores appStores) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		clock:  clock.System(),
		stores: stores,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		slog.Duration("clock_skew", cfg.Auth.ClockSkew))

	app.eventEmitter = events.NewInMemoryEventEmitter(logger)
	app.eventEmitter.RegisterHandler(events.NewLogHandler(logger))
	app.eventEmitter.RegisterHandler(events.NewMetricsHandler())

	app.sessionManager = session.NewManager(
		stores.sessions,
		app.clock,
		cfg.Session.InactivityBoundary,
		app.eventEmitter,
		logger,
	)

	app.engagementService = engagement.NewService(
		engagement.Stores{
			Daily:   stores.daily,
			Streaks: stores.streaks,
			Bingo:   stores.bingo,
		},
		app.clock,
		engagement.Config{
			DailyTarget:    cfg.Engagement.DailyTarget,
			InitialFreezes: cfg.Engagement.InitialFreezes,
			Location:       cfg.Engagement.Location(),
		},
		app.eventEmitter,
		logger,
	)

	params, err := srs.NewParams(srs.ParamsConfig{
		DueThreshold:     cfg.Memory.DueThreshold,
		OverdueAfterDays: cfg.Memory.OverdueAfterDays,
	})
	if err != nil {
		return nil, fmt.Errorf("invalid memory model config: %w", err)
	}
	memory := srs.NewServiceWithParams(params)

	app.reviewService = review.NewService(
		review.Deps{
			Items:    stores.items,
			Memory:   memory,
			Sessions: app.sessionManager,
			Cells:    app.engagementService,
			Clock:    app.clock,
			Emitter:  app.eventEmitter,
		},
		review.Config{
			MaxQueueSize:            cfg.Review.MaxQueueSize,
			BatchMax:                cfg.Review.BatchMax,
			AttentionLapseThreshold: cfg.Review.AttentionLapseThreshold,
			AttentionLimit:          cfg.Review.AttentionLimit,
		},
		logger,
	)

	app.bossRoundService = boss_round.NewService(
		app.engagementService,
		stores.items,
		stores.bossRounds,
		memory,
		app.clock,
		boss_round.Config{
			Size:      cfg.BossRound.Size,
			TimeLimit: cfg.BossRound.TimeLimit,
		},
		app.eventEmitter,
		logger,
	)

	app.sweeper = task.NewSweeper(app.sessionManager, task.SweeperConfig{
		Interval: cfg.Session.SweepInterval,
	}, logger)

	logger.Info("Application initialized successfully")
	return app, nil
}

// Run starts background work and the HTTP server, and blocks until shutdown.
func (app *application) Run(ctx context.Context) error {
	if app.config.Session.SweeperEnabled {
		if err := app.sweeper.Start(); err != nil {
			return fmt.Errorf("failed to start session sweeper: %w", err)
		}
	}

	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.sweeper != nil {
		app.sweeper.Stop()
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", slog.String("error", err.Error()))
		}
	}

	app.logger.Info("Application shutdown completed")
}
