// Package queue builds the ordered review queue: it selects due items,
// partitions them into urgency bands, and randomizes order within each band.
//
// Partitioning and shuffling are separate steps. Shuffle only ever sees one
// band at a time, so it cannot alter band order.
package queue

import (
	"math/rand/v2"
	"time"

	"github.com/phrazzld/recall-api/internal/domain"
)

// DefaultMaxSize bounds the length of a review queue.
const DefaultMaxSize = 25

// Band is an urgency class. Lower values are reviewed first.
type Band int

// Priority bands in queue order.
const (
	BandOverdue Band = iota
	BandDue
	BandNew
)

// String returns the band name.
func (b Band) String() string {
	switch b {
	case BandOverdue:
		return "overdue"
	case BandDue:
		return "due"
	case BandNew:
		return "new"
	}
	return "unknown"
}

// DueChecker decides whether an item is due at a point in time.
type DueChecker interface {
	IsDue(item *domain.LearnableItem, now time.Time) bool
}

// Bands holds a partitioned queue.
type Bands struct {
	Overdue []*domain.LearnableItem
	Due     []*domain.LearnableItem
	New     []*domain.LearnableItem
}

// Len returns the total number of items across all bands.
func (b Bands) Len() int {
	return len(b.Overdue) + len(b.Due) + len(b.New)
}

// SelectDue keeps the items that checker reports as due, preserving order.
func SelectDue(items []*domain.LearnableItem, now time.Time, checker DueChecker) []*domain.LearnableItem {
	due := make([]*domain.LearnableItem, 0, len(items))
	for _, item := range items {
		if checker.IsDue(item, now) {
			due = append(due, item)
		}
	}
	return due
}

// Classify assigns item to a band. Never-reviewed items are always new.
// Reviewed items scheduled more than overdueAfter before now are overdue;
// everything else is due.
func Classify(item *domain.LearnableItem, now time.Time, overdueAfter time.Duration) Band {
	if item.NeverReviewed() {
		return BandNew
	}
	if item.NextReviewAt != nil && now.Sub(*item.NextReviewAt) > overdueAfter {
		return BandOverdue
	}
	return BandDue
}

// Partition splits items into disjoint bands. Input order is preserved
// within each band.
func Partition(items []*domain.LearnableItem, now time.Time, overdueAfter time.Duration) Bands {
	var b Bands
	for _, item := range items {
		switch Classify(item, now, overdueAfter) {
		case BandOverdue:
			b.Overdue = append(b.Overdue, item)
		case BandDue:
			b.Due = append(b.Due, item)
		default:
			b.New = append(b.New, item)
		}
	}
	return b
}

// Shuffle randomizes each band in place with an unbiased Fisher-Yates
// shuffle and returns the concatenation Overdue, Due, New.
func Shuffle(b Bands, rng *rand.Rand) []*domain.LearnableItem {
	out := make([]*domain.LearnableItem, 0, b.Len())
	for _, band := range [][]*domain.LearnableItem{b.Overdue, b.Due, b.New} {
		shuffleBand(band, rng)
		out = append(out, band...)
	}
	return out
}

func shuffleBand(items []*domain.LearnableItem, rng *rand.Rand) {
	for i := len(items) - 1; i > 0; i-- {
		var j int
		if rng != nil {
			j = rng.IntN(i + 1)
		} else {
			j = rand.IntN(i + 1)
		}
		items[i], items[j] = items[j], items[i]
	}
}

// Order partitions and shuffles items. A nil rng uses the global source.
func Order(
	items []*domain.LearnableItem,
	now time.Time,
	overdueAfter time.Duration,
	rng *rand.Rand,
) []*domain.LearnableItem {
	return Shuffle(Partition(items, now, overdueAfter), rng)
}

// Cap truncates items to limit, falling back to maxSize when limit is not
// positive or exceeds it.
func Cap(items []*domain.LearnableItem, limit, maxSize int) []*domain.LearnableItem {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	if limit <= 0 || limit > maxSize {
		limit = maxSize
	}
	if len(items) > limit {
		return items[:limit]
	}
	return items
}
