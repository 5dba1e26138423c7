package domain

import (
	"errors"
	"fmt"
)

// Rating is the learner's self-assessed recall quality for one review.
type Rating int

// Review ratings.
const (
	RatingAgain Rating = 1 // failed recall, counts as a lapse
	RatingHard  Rating = 2
	RatingGood  Rating = 3
	RatingEasy  Rating = 4
)

// ErrInvalidRating is returned for ratings outside 1..4.
var ErrInvalidRating = errors.New("rating must be between 1 and 4")

// IsValid reports whether r is one of the four ratings.
func (r Rating) IsValid() bool {
	return r >= RatingAgain && r <= RatingEasy
}

// IsLapse reports whether the rating records a failed recall.
func (r Rating) IsLapse() bool {
	return r == RatingAgain
}

// IsCorrect reports whether the rating counts as a successful recall for
// session accounting and the correct-session chain.
func (r Rating) IsCorrect() bool {
	return r >= RatingGood
}

// String returns the rating's name.
func (r Rating) String() string {
	switch r {
	case RatingAgain:
		return "again"
	case RatingHard:
		return "hard"
	case RatingGood:
		return "good"
	case RatingEasy:
		return "easy"
	}
	return fmt.Sprintf("rating(%d)", int(r))
}

// Validate returns a ValidationError for an out-of-range rating.
func (r Rating) Validate() error {
	if !r.IsValid() {
		return NewValidationError("rating", fmt.Sprintf("got %d", int(r)), ErrInvalidRating)
	}
	return nil
}
