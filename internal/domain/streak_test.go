package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseDate(s)
	require.NoError(t, err)
	return d
}

func datePtr(t *testing.T, s string) *time.Time {
	t.Helper()
	d := mustDate(t, s)
	return &d
}

func TestStreakAdvance(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		start        Streak
		today        string
		wantChange   StreakChange
		wantCurrent  int
		wantLongest  int
		wantFreezes  int
		wantLastDate string
	}{
		{
			name:         "first completion starts at one",
			start:        Streak{FreezeCount: 1},
			today:        "2026-01-19",
			wantChange:   StreakReset,
			wantCurrent:  1,
			wantLongest:  1,
			wantFreezes:  1,
			wantLastDate: "2026-01-19",
		},
		{
			name: "consecutive day extends",
			start: Streak{
				CurrentStreak: 5, LongestStreak: 5, FreezeCount: 1,
				LastCompletedDate: datePtr(t, "2026-01-19"),
			},
			today:        "2026-01-20",
			wantChange:   StreakExtended,
			wantCurrent:  6,
			wantLongest:  6,
			wantFreezes:  1,
			wantLastDate: "2026-01-20",
		},
		{
			name: "same day is a no-op",
			start: Streak{
				CurrentStreak: 5, LongestStreak: 7, FreezeCount: 1,
				LastCompletedDate: datePtr(t, "2026-01-19"),
			},
			today:        "2026-01-19",
			wantChange:   StreakUnchanged,
			wantCurrent:  5,
			wantLongest:  7,
			wantFreezes:  1,
			wantLastDate: "2026-01-19",
		},
		{
			name: "two day gap consumes a freeze and keeps the streak",
			start: Streak{
				CurrentStreak: 5, LongestStreak: 5, FreezeCount: 1,
				LastCompletedDate: datePtr(t, "2026-01-19"),
			},
			today:        "2026-01-21",
			wantChange:   StreakFrozen,
			wantCurrent:  5,
			wantLongest:  5,
			wantFreezes:  0,
			wantLastDate: "2026-01-21",
		},
		{
			name: "two day gap without freezes resets",
			start: Streak{
				CurrentStreak: 5, LongestStreak: 5, FreezeCount: 0,
				LastCompletedDate: datePtr(t, "2026-01-19"),
			},
			today:        "2026-01-21",
			wantChange:   StreakReset,
			wantCurrent:  1,
			wantLongest:  5,
			wantFreezes:  0,
			wantLastDate: "2026-01-21",
		},
		{
			name: "three day gap resets even with a freeze",
			start: Streak{
				CurrentStreak: 5, LongestStreak: 5, FreezeCount: 1,
				LastCompletedDate: datePtr(t, "2026-01-19"),
			},
			today:        "2026-01-22",
			wantChange:   StreakReset,
			wantCurrent:  1,
			wantLongest:  5,
			wantFreezes:  1,
			wantLastDate: "2026-01-22",
		},
		{
			name: "freeze already used today is not consumed twice",
			start: Streak{
				CurrentStreak: 5, LongestStreak: 5, FreezeCount: 2,
				LastCompletedDate:  datePtr(t, "2026-01-19"),
				LastFreezeUsedDate: datePtr(t, "2026-01-21"),
			},
			today:        "2026-01-21",
			wantChange:   StreakReset,
			wantCurrent:  1,
			wantLongest:  5,
			wantFreezes:  2,
			wantLastDate: "2026-01-21",
		},
		{
			name: "earlier date does not move the streak backwards",
			start: Streak{
				CurrentStreak: 3, LongestStreak: 3, FreezeCount: 1,
				LastCompletedDate: datePtr(t, "2026-01-19"),
			},
			today:        "2026-01-17",
			wantChange:   StreakUnchanged,
			wantCurrent:  3,
			wantLongest:  3,
			wantFreezes:  1,
			wantLastDate: "2026-01-19",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := tt.start
			change := s.Advance(mustDate(t, tt.today))

			assert.Equal(t, tt.wantChange, change)
			assert.Equal(t, tt.wantCurrent, s.CurrentStreak)
			assert.Equal(t, tt.wantLongest, s.LongestStreak)
			assert.Equal(t, tt.wantFreezes, s.FreezeCount)
			require.NotNil(t, s.LastCompletedDate)
			assert.Equal(t, tt.wantLastDate, s.LastCompletedDate.Format(DateLayout))
		})
	}
}

func TestStreakAdvanceIsIdempotentPerDay(t *testing.T) {
	t.Parallel()

	s, err := NewStreak(uuid.New(), DefaultFreezeCount)
	require.NoError(t, err)

	day := mustDate(t, "2026-03-01")
	assert.Equal(t, StreakReset, s.Advance(day))
	assert.Equal(t, StreakUnchanged, s.Advance(day))
	assert.Equal(t, StreakUnchanged, s.Advance(day.Add(5*time.Hour)))
	assert.Equal(t, 1, s.CurrentStreak)
}

func TestNewStreakValidation(t *testing.T) {
	t.Parallel()

	_, err := NewStreak(uuid.Nil, 1)
	assert.True(t, IsValidationError(err))

	_, err = NewStreak(uuid.New(), -1)
	assert.ErrorIs(t, err, ErrNegativeCounter)
}
