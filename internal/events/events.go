package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Kind names an engagement milestone.
type Kind string

const (
	KindGoalCompleted     Kind = "goal_completed"
	KindStreakUpdated     Kind = "streak_updated"
	KindBingoAchieved     Kind = "bingo_achieved"
	KindItemMastered      Kind = "item_mastered"
	KindBossRoundRecorded Kind = "boss_round_recorded"
	KindSessionEnded      Kind = "session_ended"
)

// EngagementEvent records a milestone reached by one owner.
type EngagementEvent struct {
	ID      uuid.UUID `json:"id"`
	Kind    Kind      `json:"kind"`
	OwnerID uuid.UUID `json:"owner_id"`

	// Payload holds kind-specific details serialized as JSON.
	Payload json.RawMessage `json:"payload,omitempty"`

	OccurredAt time.Time `json:"occurred_at"`
}

// UnmarshalPayload decodes the event payload into v.
func (e *EngagementEvent) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// NewEngagementEvent creates an event of kind for ownerID. payload may be nil.
func NewEngagementEvent(
	kind Kind,
	ownerID uuid.UUID,
	payload interface{},
	occurredAt time.Time,
) (*EngagementEvent, error) {
	var raw json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		raw = b
	}

	return &EngagementEvent{
		ID:         uuid.New(),
		Kind:       kind,
		OwnerID:    ownerID,
		Payload:    raw,
		OccurredAt: occurredAt.UTC(),
	}, nil
}

// EventHandler processes engagement events.
type EventHandler interface {
	HandleEvent(ctx context.Context, event *EngagementEvent) error
}

// EventHandlerFunc adapts a function to EventHandler.
type EventHandlerFunc func(ctx context.Context, event *EngagementEvent) error

// HandleEvent calls f.
func (f EventHandlerFunc) HandleEvent(ctx context.Context, event *EngagementEvent) error {
	return f(ctx, event)
}

// EventEmitter publishes engagement events.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	EmitEvent(ctx context.Context, event *EngagementEvent) error
}

// NopEmitter discards every event.
type NopEmitter struct{}

// EmitEvent implements EventEmitter.
func (NopEmitter) EmitEvent(context.Context, *EngagementEvent) error { return nil }
