// Package formulas provides stateless numeric building blocks for the
// analytics engines: descriptive statistics, risk-adjusted ratios, drawdown,
// Value-at-Risk and Monte Carlo projection.
package formulas

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// TradingDaysPerYear is the annualization factor base for daily returns
const TradingDaysPerYear = 252

// Mean calculates the arithmetic mean of a slice of float64 values
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.Mean(data, nil)
}

// PopStdDev calculates the population standard deviation of a slice of
// float64 values. Returns 0 for fewer than 2 data points: variance cannot
// be estimated from a single sample.
func PopStdDev(data []float64) float64 {
	if len(data) < 2 {
		return 0
	}
	return math.Sqrt(stat.PopVariance(data, nil))
}

// AnnualizedVolatility calculates annualized volatility from daily returns,
// expressed as a percentage.
// Formula: population std dev of daily returns × sqrt(252 trading days) × 100
func AnnualizedVolatility(dailyReturns []float64) float64 {
	if len(dailyReturns) < 2 {
		return 0
	}
	return PopStdDev(dailyReturns) * math.Sqrt(TradingDaysPerYear) * 100
}

// DailyReturns converts a value series to simple daily returns.
// Returns[i] = (Value[i+1] - Value[i]) / Value[i]; zero-valued days yield 0.
func DailyReturns(values []float64) []float64 {
	if len(values) < 2 {
		return []float64{}
	}

	returns := make([]float64, len(values)-1)
	for i := 1; i < len(values); i++ {
		if values[i-1] != 0 {
			returns[i-1] = (values[i] - values[i-1]) / values[i-1]
		}
	}
	return returns
}

// Correlation calculates the Pearson correlation coefficient between two
// equal-length series. Series of mismatched or zero length yield 0.
func Correlation(x, y []float64) float64 {
	if len(x) < 2 || len(x) != len(y) {
		return 0
	}
	return stat.Correlation(x, y, nil)
}

// AlphaBeta regresses portfolio daily returns on benchmark daily returns
// and returns the intercept (alpha, per period) and slope (beta).
// When the series lengths differ, the most recent overlapping window is
// used. Insufficient data degrades to (0, 0).
func AlphaBeta(portfolioReturns, benchmarkReturns []float64) (alpha, beta float64) {
	n := len(portfolioReturns)
	if len(benchmarkReturns) < n {
		n = len(benchmarkReturns)
	}
	if n < 2 {
		return 0, 0
	}

	x := benchmarkReturns[len(benchmarkReturns)-n:]
	y := portfolioReturns[len(portfolioReturns)-n:]

	alpha, beta = stat.LinearRegression(x, y, nil, false)
	if math.IsNaN(alpha) || math.IsNaN(beta) {
		return 0, 0
	}
	return alpha, beta
}

// DownsideDeviation calculates the annualized downside deviation of daily
// returns as a percentage, considering only returns below zero.
func DownsideDeviation(dailyReturns []float64) float64 {
	if len(dailyReturns) < 2 {
		return 0
	}

	var sumSquares float64
	count := 0
	for _, r := range dailyReturns {
		if r < 0 {
			sumSquares += r * r
			count++
		}
	}
	if count == 0 {
		return 0
	}

	return math.Sqrt(sumSquares/float64(count)) * math.Sqrt(TradingDaysPerYear) * 100
}
