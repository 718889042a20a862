package formulas

import "math"

// DefaultRiskFreeRatePct is the annual risk-free rate assumed when the
// caller does not configure one, as a percentage.
const DefaultRiskFreeRatePct = 2.0

// SharpeRatio calculates the risk-adjusted return ratio from annualized
// figures, all expressed as percentages.
//
// Sharpe = (Annual Return - Risk-free Rate) / Annual Volatility
//
// A volatility of 0 yields 0: no measurable risk means no meaningful ratio,
// not an infinite one.
func SharpeRatio(annualReturnPct, annualVolatilityPct, riskFreeRatePct float64) float64 {
	if annualVolatilityPct == 0 {
		return 0
	}
	return (annualReturnPct - riskFreeRatePct) / annualVolatilityPct
}

// AnnualizedReturn derives the compound annual growth rate from a total
// return percentage over the portfolio's lifetime in years (CAGR).
//
// CAGR = (1 + totalReturnPct/100)^(1/years) - 1, as a percentage
//
// Ages at or below zero yield 0.
func AnnualizedReturn(totalReturnPct, years float64) float64 {
	if years <= 0 {
		return 0
	}
	base := 1 + totalReturnPct/100
	if base <= 0 {
		// Total loss or worse; CAGR is undefined, report -100%
		return -100
	}
	return (math.Pow(base, 1/years) - 1) * 100
}
