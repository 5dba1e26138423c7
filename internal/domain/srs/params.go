package srs

import (
	"errors"
	"fmt"
	"math"
)

// WeightCount is the length of the FSRS weight vector.
const WeightCount = 21

// DefaultWeights are the FSRS-6 default weights. Only the update formulas use
// them; retrievability follows the fixed power curve with decay -1.
var DefaultWeights = [WeightCount]float64{
	0.212, 1.2931, 2.3065, 8.2956, // w[0..3]  initial stability per rating
	6.4133, 0.8334, 3.0194, 0.001, // w[4..7]  difficulty
	1.8722, 0.1666, 0.796, 1.4835, // w[8..11] recall stability
	0.0614, 0.2629, 1.6483, 0.6014, // w[12..15] forget stability, hard penalty
	1.8729, 0.5425, 0.0912, 0.0658, // w[16..19] easy bonus, short-term
	0.1542, // w[20] unused, kept for vector compatibility
}

// ErrInvalidParams is returned when a ParamsConfig cannot produce usable parameters.
var ErrInvalidParams = errors.New("invalid memory model parameters")

// Params defines all tunable values of the memory model.
type Params struct {
	// Weights is the FSRS weight vector used for stability and difficulty updates.
	Weights [WeightCount]float64

	// DueThreshold is the retrievability below which an item counts as due.
	DueThreshold float64

	// OverdueAfterDays is how far past its schedule an item must be to land in the
	// overdue band.
	OverdueAfterDays float64

	MinStability  float64
	MaxStability  float64
	MinDifficulty float64
	MaxDifficulty float64
}

// ParamsConfig allows overriding the default parameters when creating a new Params instance.
// Zero values keep the defaults.
type ParamsConfig struct {
	Weights          []float64
	DueThreshold     float64
	OverdueAfterDays float64
}

// NewDefaultParams creates a new Params instance with default values.
func NewDefaultParams() *Params {
	return &Params{
		Weights:          DefaultWeights,
		DueThreshold:     0.9,
		OverdueAfterDays: 7,
		MinStability:     0.001,
		MaxStability:     36500,
		MinDifficulty:    1,
		MaxDifficulty:    10,
	}
}

// NewParams creates a new Params instance with custom configuration.
func NewParams(config ParamsConfig) (*Params, error) {
	params := NewDefaultParams()

	if len(config.Weights) > 0 {
		if len(config.Weights) != WeightCount {
			return nil, fmt.Errorf("%w: expected %d weights, got %d",
				ErrInvalidParams, WeightCount, len(config.Weights))
		}
		for i, w := range config.Weights {
			if math.IsNaN(w) || math.IsInf(w, 0) {
				return nil, fmt.Errorf("%w: weight %d is not finite", ErrInvalidParams, i)
			}
		}
		copy(params.Weights[:], config.Weights)
	}

	if config.DueThreshold != 0 {
		if config.DueThreshold <= 0 || config.DueThreshold >= 1 {
			return nil, fmt.Errorf("%w: due threshold must be in (0,1)", ErrInvalidParams)
		}
		params.DueThreshold = config.DueThreshold
	}

	if config.OverdueAfterDays != 0 {
		if config.OverdueAfterDays < 0 {
			return nil, fmt.Errorf("%w: overdue window cannot be negative", ErrInvalidParams)
		}
		params.OverdueAfterDays = config.OverdueAfterDays
	}

	return params, nil
}
