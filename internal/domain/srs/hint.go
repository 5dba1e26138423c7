package srs

import (
	"fmt"
	"math"
	"time"
)

// NextReviewHint renders a short human description of when an item comes back.
func NextReviewHint(nextReviewAt, now time.Time) string {
	days := math.Ceil(ElapsedDays(now, nextReviewAt))

	switch {
	case days <= 0:
		return "Review now"
	case days <= 7:
		return nextReviewAt.Weekday().String()
	case days < 14:
		return "In about a week"
	case days < 30:
		return fmt.Sprintf("In %d weeks", int(math.Floor(days/7)))
	}

	months := int(math.Floor(days / 30))
	if months == 1 {
		return "In about 1 month"
	}
	return fmt.Sprintf("In about %d months", months)
}
