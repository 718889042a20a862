package formulas

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(n int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func TestMaxDrawdown(t *testing.T) {
	// Fewer than 2 points yields a zero drawdown
	dd := MaxDrawdown([]time.Time{day(0)}, []float64{100})
	assert.Equal(t, 0.0, dd.Value)

	// Monotonic rise has no drawdown
	dd = MaxDrawdown(
		[]time.Time{day(0), day(1), day(2)},
		[]float64{100, 110, 120},
	)
	assert.Equal(t, 0.0, dd.Value)

	// Peak at 120 (day 1), trough at 90 (day 3): 25% decline over 2 days
	dd = MaxDrawdown(
		[]time.Time{day(0), day(1), day(2), day(3), day(4)},
		[]float64{100, 120, 100, 90, 110},
	)
	assert.InDelta(t, 25.0, dd.Value, 1e-9)
	assert.Equal(t, day(1), dd.StartDate)
	assert.Equal(t, day(3), dd.EndDate)
	assert.Equal(t, 2, dd.Duration)
}

func TestMaxDrawdownKeepsLargestDecline(t *testing.T) {
	// Two declines: 10% early, 20% late. The later one wins.
	dd := MaxDrawdown(
		[]time.Time{day(0), day(1), day(2), day(3), day(4)},
		[]float64{100, 90, 150, 120, 130},
	)
	assert.InDelta(t, 20.0, dd.Value, 1e-9)
	assert.Equal(t, day(2), dd.StartDate)
	assert.Equal(t, day(3), dd.EndDate)
}
