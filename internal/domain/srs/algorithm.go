package srs

import (
	"math"
	"time"

	"github.com/phrazzld/recall-api/internal/domain"
)

const hoursPerDay = 24.0

// retrievabilityFactor and retrievabilityDecay define R(t,S) = (1 + t/(9S))^-1.
// With these values an item reaches R = 0.9 exactly when t == S.
const (
	retrievabilityFactor = 1.0 / 9.0
	retrievabilityDecay  = -1.0
)

// Retrievability estimates the probability of recall after elapsedDays for an
// item with the given stability. The result is clamped to [0,1]; negative
// elapsed time counts as zero.
func Retrievability(stability, elapsedDays float64) float64 {
	if elapsedDays <= 0 {
		return 1
	}
	if stability <= 0 {
		return 0
	}
	r := math.Pow(1+retrievabilityFactor*elapsedDays/stability, retrievabilityDecay)
	return clamp(r, 0, 1)
}

// ElapsedDays returns the fractional number of days between from and to.
func ElapsedDays(from, to time.Time) float64 {
	return to.Sub(from).Hours() / hoursPerDay
}

// CurrentRetrievability computes an item's retrievability at now.
// Items that were never reviewed have retrievability 1.
func CurrentRetrievability(item *domain.LearnableItem, now time.Time) float64 {
	if item.NeverReviewed() {
		return 1
	}
	return Retrievability(item.Stability, ElapsedDays(*item.LastReviewedAt, now))
}

// IsDue reports whether item should be reviewed at now. The three reasons are
// OR'd: never reviewed, scheduled time reached, or retrievability below the
// threshold.
func IsDue(item *domain.LearnableItem, now time.Time, params *Params) bool {
	if item.NeverReviewed() {
		return true
	}
	if item.NextReviewAt != nil && !item.NextReviewAt.After(now) {
		return true
	}
	return CurrentRetrievability(item, now) < params.DueThreshold
}

// initStability is the stability after the first review: S0(G) = w[G-1].
func initStability(w *[WeightCount]float64, rating domain.Rating, p *Params) float64 {
	return math.Max(w[rating-1], p.MinStability)
}

// initDifficulty is the difficulty after the first review:
// D0(G) = w[4] - e^(w[5]*(G-1)) + 1.
func initDifficulty(w *[WeightCount]float64, rating domain.Rating) float64 {
	return w[4] - math.Exp(w[5]*float64(rating-1)) + 1
}

// nextDifficulty applies a linearly damped step and mean reversion toward the
// Easy initial difficulty, so ratings of Good or better always ease difficulty down.
//
//	dD  = -w[6] * (G - 3)
//	D'  = D + (10 - D) * dD / 9
//	D'' = w[7]*D0(Easy) + (1 - w[7])*D'
func nextDifficulty(w *[WeightCount]float64, d float64, rating domain.Rating, p *Params) float64 {
	delta := -w[6] * (float64(rating) - 3)
	damped := d + (10-d)*delta/9
	reverted := w[7]*initDifficulty(w, domain.RatingEasy) + (1-w[7])*damped
	return clamp(reverted, p.MinDifficulty, p.MaxDifficulty)
}

// nextRecallStability is the stability after a successful recall on a later day.
func nextRecallStability(
	w *[WeightCount]float64,
	d, s, r float64,
	rating domain.Rating,
	p *Params,
) float64 {
	hardPenalty := 1.0
	if rating == domain.RatingHard {
		hardPenalty = w[15]
	}
	easyBonus := 1.0
	if rating == domain.RatingEasy {
		easyBonus = w[16]
	}
	next := s * (1 + math.Exp(w[8])*
		(11-d)*
		math.Pow(s, -w[9])*
		(math.Exp((1-r)*w[10])-1)*
		hardPenalty*easyBonus)
	return clamp(next, p.MinStability, p.MaxStability)
}

// nextForgetStability is the stability after a lapse. It never exceeds the
// previous stability.
func nextForgetStability(w *[WeightCount]float64, d, s, r float64, p *Params) float64 {
	long := w[11] *
		math.Pow(d, -w[12]) *
		(math.Pow(s+1, w[13]) - 1) *
		math.Exp((1-r)*w[14])
	return math.Max(math.Min(long, nextForgetShortCap(w, s)), p.MinStability)
}

// shortTermStability is used when an item is reviewed again on the same day.
func shortTermStability(w *[WeightCount]float64, s float64, rating domain.Rating, p *Params) float64 {
	inc := math.Exp(w[17]*(float64(rating)-3+w[18])) * math.Pow(s, -w[19])
	if rating.IsCorrect() {
		inc = math.Max(inc, 1)
	}
	next := s * inc
	if rating.IsLapse() {
		next = math.Min(next, nextForgetShortCap(w, s))
	}
	return clamp(next, p.MinStability, p.MaxStability)
}

// nextForgetShortCap bounds a lapse strictly below the prior stability.
func nextForgetShortCap(w *[WeightCount]float64, s float64) float64 {
	return s / math.Exp(w[17]*w[18])
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
