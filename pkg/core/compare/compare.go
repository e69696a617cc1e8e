// Package compare provides graded numeric comparison with relative-tolerance
// banding. Exact equality is too strict for monetary values that passed
// through rounding or float formatting, so deviations map to partial-credit
// scores instead of a hard boolean.
package compare

import (
	"github.com/shopspring/decimal"
)

// DefaultTolerance is the relative tolerance for general monetary
// comparison (1%). Callers may loosen it per field, e.g. for
// currency-formatted strings already rounded to cents.
const DefaultTolerance = 0.01

// Bands defines the step function from relative deviation to score.
// A deviation within tolerance scores 1.0; within CloseMultiplier×tolerance
// scores CloseScore; within RoughMultiplier×tolerance scores RoughScore;
// beyond that, 0.0. The default boundaries (×5, ×10 → 0.8, 0.5) reproduce
// the historical grading behavior and are configurable, not laws.
type Bands struct {
	CloseMultiplier float64
	RoughMultiplier float64
	CloseScore      float64
	RoughScore      float64
}

// DefaultBands is the historical grading ladder.
var DefaultBands = Bands{
	CloseMultiplier: 5,
	RoughMultiplier: 10,
	CloseScore:      0.8,
	RoughScore:      0.5,
}

// Score grades actual against expected with the given relative tolerance.
//
// When expected is zero there is no meaningful relative deviation, so the
// grade collapses to exact: 1.0 iff actual is also zero.
func (b Bands) Score(actual, expected decimal.Decimal, tolerance float64) float64 {
	if expected.IsZero() {
		if actual.IsZero() {
			return 1.0
		}
		return 0.0
	}

	diff := actual.Sub(expected).Abs()
	relativeDiff, _ := diff.Div(expected.Abs()).Float64()

	switch {
	case relativeDiff <= tolerance:
		return 1.0
	case relativeDiff <= tolerance*b.CloseMultiplier:
		return b.CloseScore
	case relativeDiff <= tolerance*b.RoughMultiplier:
		return b.RoughScore
	default:
		return 0.0
	}
}

// Score grades with the default bands.
func Score(actual, expected decimal.Decimal, tolerance float64) float64 {
	return DefaultBands.Score(actual, expected, tolerance)
}

// ScoreFloat is a float64 convenience for callers that never touch
// decimal money, such as score-on-score comparisons.
func ScoreFloat(actual, expected, tolerance float64) float64 {
	return Score(decimal.NewFromFloat(actual), decimal.NewFromFloat(expected), tolerance)
}
