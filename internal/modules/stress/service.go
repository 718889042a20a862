// Package stress runs hypothetical shock scenarios against a portfolio and
// projects its value forward under straight-line and Monte Carlo models.
package stress

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/miowsis/analytics/internal/domain"
	"github.com/miowsis/analytics/pkg/formulas"
)

// Shock applied when a scenario matches neither asset type nor sector
const defaultShockPct = -10.0

// otherKey lets a scenario define a catch-all shock for unmatched holdings
const otherKey = "other"

// Scenario is a hypothetical market event expressed as percentage shocks
// keyed by asset type or sector. Asset type matches take precedence over
// sector matches; unmatched holdings fall back to the scenario's "other"
// shock, or the global default.
type Scenario struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Shocks      map[string]float64 `json:"shocks"`
}

// HoldingImpact is one holding's loss under a scenario
type HoldingImpact struct {
	Symbol      string  `json:"symbol"`
	ValueChange float64 `json:"value_change"`
	ShockPct    float64 `json:"shock_pct"`
}

// ScenarioResult is the portfolio-level outcome of one scenario
type ScenarioResult struct {
	Scenario         string          `json:"scenario"`
	Description      string          `json:"description"`
	ValueChange      float64         `json:"value_change"`
	PercentageChange float64         `json:"percentage_change"`
	WorstHoldings    []HoldingImpact `json:"worst_holdings"`
}

// HistoricalWorstCase is the reference drawdown shown alongside the
// hypothetical scenarios
type HistoricalWorstCase struct {
	Name         string  `json:"name"`
	ReturnPct    float64 `json:"return_pct"`
	DurationDays int     `json:"duration_days"`
}

// TestReport bundles all scenario outcomes for a portfolio
type TestReport struct {
	PortfolioID string              `json:"portfolio_id"`
	Results     []ScenarioResult    `json:"results"`
	WorstCase   HistoricalWorstCase `json:"worst_case"`
}

// ExpectedReturns are annualized return estimates in percent across three
// confidence stances
type ExpectedReturns struct {
	Conservative float64 `json:"conservative"`
	Moderate     float64 `json:"moderate"`
	Optimistic   float64 `json:"optimistic"`
}

// ValueProjection is a straight-line value estimate at a future horizon
type ValueProjection struct {
	Months int     `json:"months"`
	Value  float64 `json:"value"`
}

// Projections is the forward-looking outlook for a portfolio
type Projections struct {
	PortfolioID     string                    `json:"portfolio_id"`
	ExpectedReturns ExpectedReturns           `json:"expected_returns"`
	Values          []ValueProjection         `json:"values"`
	MonteCarlo      formulas.MonteCarloResult `json:"monte_carlo"`
}

// DefaultScenarios returns the built-in shock catalog
func DefaultScenarios() []Scenario {
	return []Scenario{
		{
			Name:        "Market Crash",
			Description: "Broad equity sell-off with a flight to quality",
			Shocks: map[string]float64{
				"stock":  -40,
				"etf":    -35,
				"crypto": -60,
				"bond":   -5,
			},
		},
		{
			Name:        "Tech Bubble Burst",
			Description: "Technology valuations collapse, dragging the wider market",
			Shocks: map[string]float64{
				"Technology": -50,
				otherKey:     -20,
			},
		},
		{
			Name:        "Interest Rate Shock",
			Description: "Sharp rate rise repricing bonds and rate-sensitive sectors",
			Shocks: map[string]float64{
				"bond":        -15,
				"stock":       -20,
				"real_estate": -25,
			},
		},
	}
}

// Service runs stress scenarios and projections
type Service struct {
	data        domain.PortfolioDataProvider
	scenarios   []Scenario
	simulations int
	log         zerolog.Logger
}

// NewService creates a new stress testing service. A nil scenario list
// selects the built-in catalog.
func NewService(data domain.PortfolioDataProvider, scenarios []Scenario, simulations int, log zerolog.Logger) *Service {
	if scenarios == nil {
		scenarios = DefaultScenarios()
	}
	if simulations <= 0 {
		simulations = formulas.DefaultSimulations
	}
	return &Service{
		data:        data,
		scenarios:   scenarios,
		simulations: simulations,
		log:         log.With().Str("service", "stress").Logger(),
	}
}

// RunStressTests applies every configured scenario to the portfolio
func (s *Service) RunStressTests(ctx context.Context, portfolioID string) (*TestReport, error) {
	portfolio, err := s.data.GetPortfolio(ctx, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("failed to load portfolio: %w", err)
	}

	report := &TestReport{
		PortfolioID: portfolioID,
		WorstCase: HistoricalWorstCase{
			Name:         "2008 Financial Crisis",
			ReturnPct:    -38.5,
			DurationDays: 365,
		},
	}

	totalValue := portfolio.HoldingsValue()
	for _, scenario := range s.scenarios {
		report.Results = append(report.Results, s.runScenario(scenario, portfolio.Holdings, totalValue))
	}

	return report, nil
}

func (s *Service) runScenario(scenario Scenario, holdings []domain.Holding, totalValue float64) ScenarioResult {
	result := ScenarioResult{
		Scenario:    scenario.Name,
		Description: scenario.Description,
	}

	impacts := make([]HoldingImpact, 0, len(holdings))
	for _, h := range holdings {
		shock := shockFor(scenario, h.Asset)
		change := h.MarketValue() * shock / 100
		result.ValueChange += change
		impacts = append(impacts, HoldingImpact{
			Symbol:      h.Asset.Symbol,
			ValueChange: change,
			ShockPct:    shock,
		})
	}

	if totalValue > 0 {
		result.PercentageChange = result.ValueChange / totalValue * 100
	}

	sort.Slice(impacts, func(i, j int) bool { return impacts[i].ValueChange < impacts[j].ValueChange })
	if len(impacts) > 5 {
		impacts = impacts[:5]
	}
	result.WorstHoldings = impacts

	return result
}

// shockFor resolves the shock for one asset: asset type first, then
// sector, then the scenario's catch-all, then the global default
func shockFor(scenario Scenario, asset domain.Asset) float64 {
	if shock, ok := scenario.Shocks[string(asset.Type)]; ok {
		return shock
	}
	if shock, ok := scenario.Shocks[asset.Sector]; ok {
		return shock
	}
	if shock, ok := scenario.Shocks[otherKey]; ok {
		return shock
	}
	return defaultShockPct
}

// GetProjections builds straight-line and Monte Carlo value projections
// from the portfolio's return history
func (s *Service) GetProjections(ctx context.Context, portfolioID string) (*Projections, error) {
	portfolio, err := s.data.GetPortfolio(ctx, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("failed to load portfolio: %w", err)
	}

	snapshots, err := s.data.GetSnapshots(ctx, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshots: %w", err)
	}

	values := make([]float64, len(snapshots))
	for i, snap := range snapshots {
		values[i] = snap.TotalValue
	}
	dailyReturns := formulas.DailyReturns(values)

	meanAnnual := formulas.Mean(dailyReturns) * formulas.TradingDaysPerYear
	volAnnual := formulas.AnnualizedVolatility(dailyReturns) / 100

	currentValue := portfolio.HoldingsValue()

	proj := &Projections{
		PortfolioID: portfolioID,
		ExpectedReturns: ExpectedReturns{
			Conservative: (meanAnnual - volAnnual) * 100,
			Moderate:     meanAnnual * 100,
			Optimistic:   (meanAnnual + volAnnual) * 100,
		},
	}

	for _, months := range []int{1, 3, 6, 12, 60} {
		proj.Values = append(proj.Values, ValueProjection{
			Months: months,
			Value:  currentValue * (1 + meanAnnual*float64(months)/12),
		})
	}

	proj.MonteCarlo = formulas.MonteCarlo(formulas.MonteCarloParams{
		InitialValue: currentValue,
		MeanReturn:   meanAnnual,
		Volatility:   volAnnual,
		Years:        5,
		Simulations:  s.simulations,
	})

	return proj, nil
}
