package srs

import (
	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/domain"
)

// Correct-session thresholds for forward mastery transitions.
const (
	learnedThreshold  = 1
	masteredThreshold = domain.MaxConsecutiveCorrectSessions
)

// NextMastery is the mastery state machine. A struggling rating (Again or
// Hard) always regresses to learning; otherwise the state is gated by the
// correct-session chain, so an item is mastered exactly when the chain is full.
func NextMastery(consecutive int, struggled bool) domain.MasteryStatus {
	switch {
	case struggled:
		return domain.MasteryLearning
	case consecutive >= masteredThreshold:
		return domain.MasteryMastered
	case consecutive >= learnedThreshold:
		return domain.MasteryLearned
	}
	return domain.MasteryLearning
}

// advanceChain applies one rating to the correct-session chain and returns
// the new count and dedup guard. Only one correct answer per session counts;
// Again and Hard both break the chain.
func advanceChain(
	count int,
	lastSession *uuid.UUID,
	sessionID uuid.UUID,
	rating domain.Rating,
) (int, *uuid.UUID) {
	switch {
	case !rating.IsCorrect():
		return 0, nil
	case lastSession != nil && *lastSession == sessionID:
		return count, lastSession
	}

	count++
	if count > domain.MaxConsecutiveCorrectSessions {
		count = domain.MaxConsecutiveCorrectSessions
	}
	id := sessionID
	return count, &id
}
