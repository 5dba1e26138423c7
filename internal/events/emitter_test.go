package events

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryEventEmitter(t *testing.T) {
	t.Parallel()
	discard := slog.New(slog.NewTextHandler(io.Discard, nil))

	newEvent := func(t *testing.T) *EngagementEvent {
		t.Helper()
		event, err := NewEngagementEvent(KindGoalCompleted, uuid.New(), map[string]int{"target": 10}, time.Now())
		require.NoError(t, err)
		return event
	}

	t.Run("no handlers", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, NewInMemoryEventEmitter(discard).EmitEvent(context.Background(), newEvent(t)))
	})

	t.Run("delivers to every handler", func(t *testing.T) {
		t.Parallel()
		emitter := NewInMemoryEventEmitter(discard)
		first, second := &MockEventHandler{}, &MockEventHandler{}
		emitter.RegisterHandler(first)
		emitter.RegisterHandler(second)

		event := newEvent(t)
		require.NoError(t, emitter.EmitEvent(context.Background(), event))
		assert.Equal(t, 1, first.HandledCount)
		assert.Equal(t, event, second.LastEvent)
	})

	t.Run("failures are joined and do not stop delivery", func(t *testing.T) {
		t.Parallel()
		emitter := NewInMemoryEventEmitter(discard)
		errA, errB := errors.New("a failed"), errors.New("b failed")
		a := &MockEventHandler{HandlerError: errA}
		ok := &MockEventHandler{}
		b := &MockEventHandler{HandlerError: errB}
		emitter.RegisterHandler(a)
		emitter.RegisterHandler(ok)
		emitter.RegisterHandler(b)

		err := emitter.EmitEvent(context.Background(), newEvent(t))
		assert.ErrorIs(t, err, errA)
		assert.ErrorIs(t, err, errB)
		assert.Equal(t, 1, ok.HandledCount)
		assert.Equal(t, 1, b.HandledCount)
	})

	t.Run("panicking handler is contained", func(t *testing.T) {
		t.Parallel()
		emitter := NewInMemoryEventEmitter(discard)
		after := &MockEventHandler{}
		emitter.RegisterHandler(EventHandlerFunc(func(context.Context, *EngagementEvent) error {
			panic("handler bug")
		}))
		emitter.RegisterHandler(after)

		err := emitter.EmitEvent(context.Background(), newEvent(t))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "handler bug")
		assert.Equal(t, 1, after.HandledCount)
	})
}

// MockEventHandler records the events it receives.
type MockEventHandler struct {
	HandledCount int
	LastEvent    *EngagementEvent
	HandlerError error
}

func (m *MockEventHandler) HandleEvent(_ context.Context, event *EngagementEvent) error {
	m.HandledCount++
	m.LastEvent = event
	return m.HandlerError
}

func TestNewEngagementEvent(t *testing.T) {
	t.Parallel()

	owner := uuid.New()
	at := time.Date(2025, 1, 20, 10, 0, 0, 0, time.FixedZone("X", 3600))
	event, err := NewEngagementEvent(KindStreakUpdated, owner, map[string]int{"current_streak": 6}, at)
	require.NoError(t, err)

	assert.Equal(t, KindStreakUpdated, event.Kind)
	assert.Equal(t, owner, event.OwnerID)
	assert.Equal(t, time.UTC, event.OccurredAt.Location())

	var payload map[string]int
	require.NoError(t, event.UnmarshalPayload(&payload))
	assert.Equal(t, 6, payload["current_streak"])

	empty, err := NewEngagementEvent(KindBingoAchieved, owner, nil, at)
	require.NoError(t, err)
	assert.Nil(t, empty.Payload)

	_, err = NewEngagementEvent(KindBingoAchieved, owner, make(chan int), at)
	assert.Error(t, err)
}

func TestLogHandler(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	handler := NewLogHandler(slog.New(slog.NewJSONHandler(buf, nil)))

	event, err := NewEngagementEvent(KindItemMastered, uuid.New(), nil, time.Now())
	require.NoError(t, err)
	require.NoError(t, handler.HandleEvent(context.Background(), event))

	assert.Contains(t, buf.String(), `"kind":"item_mastered"`)
}

func TestEmitSwallowsHandlerErrors(t *testing.T) {
	t.Parallel()

	emitter := NewInMemoryEventEmitter(slog.New(slog.NewTextHandler(io.Discard, nil)))
	failing := &MockEventHandler{HandlerError: errors.New("boom")}
	emitter.RegisterHandler(failing)
	emitter.RegisterHandler(NewMetricsHandler())

	event, err := NewEngagementEvent(KindGoalCompleted, uuid.New(), nil, time.Now())
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		Emit(context.Background(), emitter, event)
		Emit(context.Background(), nil, event)
	})
	assert.Equal(t, 1, failing.HandledCount)
}
