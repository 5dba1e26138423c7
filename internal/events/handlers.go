package events

import (
	"context"
	"log/slog"

	"github.com/phrazzld/recall-api/internal/platform/logger"
	"github.com/phrazzld/recall-api/internal/platform/metrics"
)

// NewLogHandler returns a handler that writes each event at info level.
func NewLogHandler(l *slog.Logger) EventHandler {
	if l == nil {
		l = slog.Default()
	}
	l = l.With(slog.String("component", "engagement_events"))

	return EventHandlerFunc(func(ctx context.Context, event *EngagementEvent) error {
		logger.FromContextOrDefault(ctx, l).Info("engagement event",
			slog.String("kind", string(event.Kind)),
			slog.String("owner_id", event.OwnerID.String()),
			slog.String("event_id", event.ID.String()),
			slog.String("payload", string(event.Payload)))
		return nil
	})
}

// NewMetricsHandler returns a handler that counts events by kind.
func NewMetricsHandler() EventHandler {
	return EventHandlerFunc(func(_ context.Context, event *EngagementEvent) error {
		metrics.EngagementEvents.WithLabelValues(string(event.Kind)).Inc()
		return nil
	})
}

// Emit builds and publishes an event, logging instead of returning failures.
// A nil emitter is allowed.
func Emit(
	ctx context.Context,
	emitter EventEmitter,
	event *EngagementEvent,
) {
	if emitter == nil || event == nil {
		return
	}
	if err := emitter.EmitEvent(ctx, event); err != nil {
		logger.FromContext(ctx).Warn("engagement event handler failed",
			slog.String("kind", string(event.Kind)),
			slog.String("error", err.Error()))
	}
}
