package formulas

import (
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"
)

// DefaultSimulations is the minimum recommended Monte Carlo sample size
const DefaultSimulations = 1000

// MonteCarloParams configures a forward portfolio projection
type MonteCarloParams struct {
	InitialValue float64
	MeanReturn   float64 // expected annual return as a decimal (0.07 = 7%)
	Volatility   float64 // annual volatility as a decimal
	Years        int
	Simulations  int
	Src          rand.Source // optional; seed for reproducible runs
}

// MonteCarloResult summarizes the simulated outcome distribution
type MonteCarloResult struct {
	MedianOutcome     float64 `json:"median_outcome"`
	Percentile10      float64 `json:"percentile_10"`
	Percentile90      float64 `json:"percentile_90"`
	ProbabilityOfGain float64 `json:"probability_of_gain"` // percentage
}

// MonteCarlo repeatedly compounds the portfolio forward using
// normally-distributed annual returns and reports the median, 10th and 90th
// percentile outcomes plus the fraction of simulations ending above the
// initial value.
//
// With zero volatility every path is identical, so all percentiles collapse
// to initialValue × (1 + meanReturn)^years. Simulation counts below 1
// default to DefaultSimulations.
func MonteCarlo(p MonteCarloParams) MonteCarloResult {
	if p.Simulations < 1 {
		p.Simulations = DefaultSimulations
	}
	if p.Years < 0 {
		p.Years = 0
	}

	if p.Volatility <= 0 {
		// Deterministic collapse: no randomness to sample
		outcome := p.InitialValue * math.Pow(1+p.MeanReturn, float64(p.Years))
		gain := 0.0
		if outcome > p.InitialValue {
			gain = 100
		}
		return MonteCarloResult{
			MedianOutcome:     outcome,
			Percentile10:      outcome,
			Percentile90:      outcome,
			ProbabilityOfGain: gain,
		}
	}

	normal := distuv.Normal{Mu: p.MeanReturn, Sigma: p.Volatility, Src: p.Src}

	outcomes := make([]float64, p.Simulations)
	profitable := 0
	for i := 0; i < p.Simulations; i++ {
		value := p.InitialValue
		for year := 0; year < p.Years; year++ {
			annualReturn := normal.Rand()
			value *= 1 + annualReturn
		}
		outcomes[i] = value
		if value > p.InitialValue {
			profitable++
		}
	}

	sort.Float64s(outcomes)

	return MonteCarloResult{
		MedianOutcome:     outcomes[len(outcomes)/2],
		Percentile10:      outcomes[int(float64(len(outcomes))*0.1)],
		Percentile90:      outcomes[int(float64(len(outcomes))*0.9)],
		ProbabilityOfGain: float64(profitable) / float64(p.Simulations) * 100,
	}
}
