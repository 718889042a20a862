package formulas

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMean(t *testing.T) {
	assert.Equal(t, 0.0, Mean(nil))
	assert.Equal(t, 0.0, Mean([]float64{}))
	assert.InDelta(t, 2.0, Mean([]float64{1, 2, 3}), 1e-9)
}

func TestPopStdDev(t *testing.T) {
	tests := []struct {
		name string
		data []float64
		want float64
	}{
		{name: "empty", data: nil, want: 0},
		{name: "single point cannot estimate variance", data: []float64{0.05}, want: 0},
		{name: "constant series", data: []float64{2, 2, 2, 2}, want: 0},
		{name: "known spread", data: []float64{2, 4, 4, 4, 5, 5, 7, 9}, want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, PopStdDev(tt.data), 1e-9)
		})
	}
}

func TestAnnualizedVolatility(t *testing.T) {
	// Fewer than 2 points must degrade to 0, not NaN
	assert.Equal(t, 0.0, AnnualizedVolatility(nil))
	assert.Equal(t, 0.0, AnnualizedVolatility([]float64{0.01}))

	// Population std dev of {0.01, -0.01} is 0.01
	got := AnnualizedVolatility([]float64{0.01, -0.01})
	want := 0.01 * math.Sqrt(252) * 100
	assert.InDelta(t, want, got, 1e-9)
	assert.False(t, math.IsNaN(got))
}

func TestDailyReturns(t *testing.T) {
	assert.Empty(t, DailyReturns([]float64{100}))

	returns := DailyReturns([]float64{100, 110, 99})
	assert.Len(t, returns, 2)
	assert.InDelta(t, 0.10, returns[0], 1e-9)
	assert.InDelta(t, -0.10, returns[1], 1e-9)

	// A zero value must not divide by zero
	returns = DailyReturns([]float64{0, 100})
	assert.Equal(t, 0.0, returns[0])
}

func TestCorrelation(t *testing.T) {
	x := []float64{0.01, 0.02, -0.01, 0.03}
	assert.InDelta(t, 1.0, Correlation(x, x), 1e-9)

	inverse := []float64{-0.01, -0.02, 0.01, -0.03}
	assert.InDelta(t, -1.0, Correlation(x, inverse), 1e-9)

	// Mismatched lengths degrade to 0
	assert.Equal(t, 0.0, Correlation(x, []float64{0.01}))
	assert.Equal(t, 0.0, Correlation(nil, nil))
}

func TestAlphaBeta(t *testing.T) {
	bench := []float64{0.01, -0.02, 0.03, 0.005, -0.01}

	// Portfolio tracking the benchmark exactly at 2x has beta 2, alpha 0
	port := make([]float64, len(bench))
	for i, r := range bench {
		port[i] = 2 * r
	}
	alpha, beta := AlphaBeta(port, bench)
	assert.InDelta(t, 0.0, alpha, 1e-9)
	assert.InDelta(t, 2.0, beta, 1e-9)

	// Constant offset shows up as alpha
	for i, r := range bench {
		port[i] = r + 0.001
	}
	alpha, beta = AlphaBeta(port, bench)
	assert.InDelta(t, 0.001, alpha, 1e-9)
	assert.InDelta(t, 1.0, beta, 1e-9)

	// Missing benchmark degrades to zeros
	alpha, beta = AlphaBeta(port, nil)
	assert.Equal(t, 0.0, alpha)
	assert.Equal(t, 0.0, beta)
}

func TestDownsideDeviation(t *testing.T) {
	assert.Equal(t, 0.0, DownsideDeviation([]float64{0.01}))

	// No negative returns means no downside
	assert.Equal(t, 0.0, DownsideDeviation([]float64{0.01, 0.02, 0.03}))

	got := DownsideDeviation([]float64{0.02, -0.01, 0.03, -0.01})
	want := 0.01 * math.Sqrt(252) * 100
	assert.InDelta(t, want, got, 1e-9)
}
