// Package boss_round runs the bonus challenge unlocked by the daily goal:
// it picks the owner's weakest items and keeps an append-only attempt log.
package boss_round

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/domain"
)

// Result messages, in precedence order.
const (
	MessagePerfect  = "Perfect score! You conquered the boss round!"
	MessagePassed   = "Well done! You passed the boss round!"
	MessagePractice = "Keep practicing! You'll get them next time."
)

// Round is a boss round ready to play.
type Round struct {
	Items            []*domain.LearnableItem `json:"items"`
	TimeLimitSeconds int                     `json:"time_limit_seconds"`
	Stats            *domain.BossRoundStats  `json:"stats,omitempty"`
	StatsAvailable   bool                    `json:"stats_available"`
}

// Result is the scored outcome of one attempt. Recorded is false when the
// attempt could not be appended to the log; the score is still reported.
type Result struct {
	Accuracy       int                    `json:"accuracy"`
	IsPerfect      bool                   `json:"is_perfect"`
	IsNewBest      bool                   `json:"is_new_best"`
	Message        string                 `json:"message"`
	Recorded       bool                   `json:"recorded"`
	Stats          *domain.BossRoundStats `json:"stats,omitempty"`
	StatsAvailable bool                   `json:"stats_available"`
}

// Service provides boss round operations.
type Service interface {
	// GetBossRound returns the owner's weakest items. Returns
	// ErrGoalIncomplete until today's daily goal has latched.
	GetBossRound(ctx context.Context, ownerID uuid.UUID) (*Round, error)

	// PostBossRoundResult scores and records an attempt. Only invalid input
	// fails the call; log and stats failures downgrade the result instead.
	PostBossRoundResult(
		ctx context.Context,
		ownerID uuid.UUID,
		score, total int,
		timeUsed time.Duration,
	) (*Result, error)
}
