package task

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/phrazzld/recall-api/internal/platform/metrics"
)

// SessionSweeper closes review sessions that outlived the inactivity boundary.
type SessionSweeper interface {
	SweepStale(ctx context.Context) (int64, error)
}

// SweeperConfig holds configuration for the stale session sweeper.
type SweeperConfig struct {
	// Interval between sweeps. Defaults to 15 minutes.
	Interval time.Duration

	// Timeout bounds a single sweep. Defaults to 30 seconds.
	Timeout time.Duration
}

// DefaultSweeperConfig returns a SweeperConfig with reasonable defaults.
func DefaultSweeperConfig() SweeperConfig {
	return SweeperConfig{
		Interval: 15 * time.Minute,
		Timeout:  30 * time.Second,
	}
}

// Sweeper periodically closes stale review sessions.
type Sweeper struct {
	sessions  SessionSweeper
	config    SweeperConfig
	scheduler *gocron.Scheduler
	logger    *slog.Logger

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	running bool
}

// NewSweeper creates a Sweeper. Zero config values take the defaults.
func NewSweeper(sessions SessionSweeper, config SweeperConfig, logger *slog.Logger) *Sweeper {
	if sessions == nil {
		panic("sessions cannot be nil")
	}
	def := DefaultSweeperConfig()
	if config.Interval <= 0 {
		config.Interval = def.Interval
	}
	if config.Timeout <= 0 {
		config.Timeout = def.Timeout
	}
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Sweeper{
		sessions:  sessions,
		config:    config,
		scheduler: gocron.NewScheduler(time.UTC),
		logger:    logger.With(slog.String("component", "session_sweeper")),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start schedules the sweep and runs the first one immediately.
func (s *Sweeper) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}

	_, err := s.scheduler.Every(s.config.Interval).SingletonMode().Do(func() {
		_, _ = s.RunOnce(s.ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule session sweep: %w", err)
	}

	s.scheduler.StartAsync()
	s.running = true
	s.logger.Info("session sweeper started", slog.Duration("interval", s.config.Interval))
	return nil
}

// Stop cancels an in-flight sweep and stops the schedule.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.cancel()
	s.scheduler.Stop()
	s.running = false
	s.logger.Info("session sweeper stopped")
}

// RunOnce performs a single sweep.
func (s *Sweeper) RunOnce(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	start := time.Now()
	closed, err := s.sessions.SweepStale(ctx)
	if err != nil {
		s.logger.Error("session sweep failed", slog.String("error", err.Error()))
		return 0, err
	}

	metrics.SessionsSwept.Add(float64(closed))
	if closed > 0 {
		s.logger.Info("closed stale sessions",
			slog.Int64("closed", closed),
			slog.Duration("elapsed", time.Since(start)))
	}
	return closed, nil
}
