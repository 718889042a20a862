package formulas

import (
	"math"
	"sort"
)

// ValueAtRisk calculates historical-simulation VaR at the given confidence
// level from daily returns.
//
// Returns are sorted ascending and the (1 - confidence) empirical percentile
// is taken as the loss threshold. The result is reported as a positive loss
// percentage; a non-negative threshold (no loss in the tail) yields 0.
//
// Fewer than 2 data points yield 0.
func ValueAtRisk(dailyReturns []float64, confidence float64) float64 {
	if len(dailyReturns) < 2 || confidence <= 0 || confidence >= 1 {
		return 0
	}

	sorted := make([]float64, len(dailyReturns))
	copy(sorted, dailyReturns)
	sort.Float64s(sorted)

	idx := int(math.Floor(float64(len(sorted)) * (1 - confidence)))
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}

	threshold := sorted[idx]
	if threshold >= 0 {
		return 0
	}
	return -threshold * 100
}
