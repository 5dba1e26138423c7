// Package engagement processes review-outcome events into daily goal
// progress, streaks and the bingo board.
//
// Every per-owner record is created on first use with insert-then-refetch,
// and every counter or latch is applied by the store in a single statement,
// so concurrent events for one owner never lose updates or double-fire.
package engagement

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/domain"
	"github.com/phrazzld/recall-api/internal/domain/bingo"
)

// EventKind names an event posted by a client.
type EventKind string

// Routed event kinds.
const (
	EventItemAnswered     EventKind = "item_answered"
	EventSessionCompleted EventKind = "session_completed"
	EventWordMastered     EventKind = "word_mastered"
	EventContextAdded     EventKind = "context_added"
)

// Exercise kinds reported with an answer. Only those with a cell on the
// board mark one.
const (
	ExerciseFillBlank       = "fill-blank"
	ExerciseMultipleChoice  = "multiple-choice"
	ExerciseTypeTranslation = "type-translation"
)

// Categories with a dedicated bingo cell.
const (
	CategoryWork   = "work"
	CategorySocial = "social"
)

// review5Threshold is the daily answer count that completes the review5 cell.
const review5Threshold = 5

// streak3Threshold is the in-session run of correct answers that completes streak3.
const streak3Threshold = 3

// AnswerEvent describes one answered item.
type AnswerEvent struct {
	WasCorrect                  bool   `json:"was_correct"`
	ExerciseKind                string `json:"exercise_kind"`
	Category                    string `json:"category,omitempty"`
	ConsecutiveCorrectInSession int    `json:"consecutive_correct"`
}

// Validate checks the event fields.
func (e AnswerEvent) Validate() error {
	switch e.ExerciseKind {
	case "", ExerciseFillBlank, ExerciseMultipleChoice, ExerciseTypeTranslation:
	default:
		return domain.NewValidationError("exercise_kind", e.ExerciseKind, ErrInvalidPayload)
	}
	if e.ConsecutiveCorrectInSession < 0 {
		return domain.NewValidationError("consecutive_correct", "must not be negative", domain.ErrNegativeCounter)
	}
	return nil
}

// cells returns the board cells an answer earns, given today's answer count
// after it was recorded.
func (e AnswerEvent) cells(completedToday int) []string {
	var cells []string
	if completedToday >= review5Threshold {
		cells = append(cells, bingo.CellReview5)
	}
	if e.ConsecutiveCorrectInSession >= streak3Threshold {
		cells = append(cells, bingo.CellStreak3)
	}
	switch e.ExerciseKind {
	case ExerciseFillBlank:
		cells = append(cells, bingo.CellFillBlank)
	case ExerciseMultipleChoice:
		cells = append(cells, bingo.CellMultipleChoice)
	}
	switch strings.ToLower(strings.TrimSpace(e.Category)) {
	case CategoryWork:
		cells = append(cells, bingo.CellWorkWord)
	case CategorySocial:
		cells = append(cells, bingo.CellSocialWord)
	}
	return cells
}

// EventResult reports what one event changed.
type EventResult struct {
	NewlyCompletedCells []string `json:"newly_completed_cells"`
	GoalJustCompleted   bool     `json:"goal_just_completed"`
	StreakUpdated       bool     `json:"streak_updated"`
	BingoAchieved       bool     `json:"bingo_achieved"`
}

// State is an owner's engagement snapshot for today.
type State struct {
	Daily             *domain.DailyProgress `json:"daily"`
	Streak            *domain.Streak        `json:"streak"`
	Bingo             *domain.BingoBoard    `json:"bingo"`
	BingoLines        [][3]int              `json:"bingo_lines"`
	Ordering          bingo.Ordering        `json:"ordering"`
	BossRoundUnlocked bool                  `json:"boss_round_unlocked"`
}

// Service processes engagement events.
type Service interface {
	// OnItemAnswered records an answer against today's goal, cascades a first
	// goal completion into the streak, and marks the cells the answer earns.
	OnItemAnswered(ctx context.Context, ownerID uuid.UUID, event AnswerEvent) (*EventResult, error)

	// PostEvent routes a client event by kind. Unknown kinds return a
	// ValidationError wrapping ErrUnknownEventKind.
	PostEvent(ctx context.Context, ownerID uuid.UUID, kind EventKind, payload json.RawMessage) (*EventResult, error)

	// MarkCells adds cells to today's board and latches a win. Cells that are
	// not on the board are ignored.
	MarkCells(ctx context.Context, ownerID uuid.UUID, cells ...string) (*EventResult, error)

	// UpdateStreakOnGoalCompletion applies a goal completion on today to the
	// owner's streak under a row lock. Repeated calls for one day are no-ops.
	UpdateStreakOnGoalCompletion(
		ctx context.Context,
		ownerID uuid.UUID,
		today time.Time,
	) (*domain.Streak, domain.StreakChange, error)

	// DailyProgress returns today's goal record, creating it if absent.
	DailyProgress(ctx context.Context, ownerID uuid.UUID) (*domain.DailyProgress, error)

	// GetEngagementState returns today's goal, the streak and today's board,
	// creating any that are absent.
	GetEngagementState(ctx context.Context, ownerID uuid.UUID) (*State, error)
}
