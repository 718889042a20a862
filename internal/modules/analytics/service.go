// Package analytics composes the per-dimension services into a single
// portfolio analytics report, running the sub-analyses concurrently.
package analytics

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/miowsis/analytics/internal/domain"
	"github.com/miowsis/analytics/internal/modules/allocation"
	"github.com/miowsis/analytics/internal/modules/esg"
	"github.com/miowsis/analytics/internal/modules/performance"
	"github.com/miowsis/analytics/internal/modules/rebalancing"
	"github.com/miowsis/analytics/internal/modules/risk"
	"github.com/miowsis/analytics/internal/modules/stress"
	"github.com/miowsis/analytics/pkg/formulas"
)

// Report is the complete analytics picture for one portfolio. Sections
// whose inputs were unavailable are zero-valued rather than missing; only
// an unknown portfolio or a failing provider aborts the whole report.
type Report struct {
	PortfolioID     string                     `json:"portfolio_id"`
	GeneratedAt     time.Time                  `json:"generated_at"`
	Allocation      allocation.Analysis        `json:"allocation"`
	Diversification allocation.Diversification `json:"diversification"`
	Performance     performance.Metrics        `json:"performance"`
	RiskMetrics     performance.RiskMetrics    `json:"risk_metrics"`
	ESG             esg.Analysis               `json:"esg"`
	Risk            risk.Assessment            `json:"risk"`
	StressTests     stress.TestReport          `json:"stress_tests"`
	Projections     stress.Projections         `json:"projections"`
	Violations      []rebalancing.Violation    `json:"violations"`
	Rebalancing     rebalancing.Plan           `json:"rebalancing"`
}

// Comparison correlates the return histories of several portfolios
type Comparison struct {
	PortfolioIDs []string    `json:"portfolio_ids"`
	Correlations [][]float64 `json:"correlations"`
}

// Service orchestrates the sub-analysis services
type Service struct {
	data        domain.PortfolioDataProvider
	allocation  *allocation.Service
	performance *performance.Service
	esg         *esg.Service
	risk        *risk.Service
	stress      *stress.Service
	rebalancing *rebalancing.Service
	log         zerolog.Logger
}

// NewService creates a new analytics service
func NewService(
	data domain.PortfolioDataProvider,
	allocationSvc *allocation.Service,
	performanceSvc *performance.Service,
	esgSvc *esg.Service,
	riskSvc *risk.Service,
	stressSvc *stress.Service,
	rebalancingSvc *rebalancing.Service,
	log zerolog.Logger,
) *Service {
	return &Service{
		data:        data,
		allocation:  allocationSvc,
		performance: performanceSvc,
		esg:         esgSvc,
		risk:        riskSvc,
		stress:      stressSvc,
		rebalancing: rebalancingSvc,
		log:         log.With().Str("service", "analytics").Logger(),
	}
}

// GetReport assembles the full analytics report. The sub-analyses run
// concurrently; each failure is logged and leaves its section zeroed.
func (s *Service) GetReport(ctx context.Context, portfolioID, userID string) (*Report, error) {
	portfolio, err := s.data.GetPortfolio(ctx, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("failed to load portfolio: %w", err)
	}

	report := &Report{
		PortfolioID: portfolioID,
		GeneratedAt: time.Now(),
	}

	var wg sync.WaitGroup
	wg.Add(6)

	go func() {
		defer wg.Done()
		report.Allocation = s.allocation.Analyze(portfolio.Holdings)
		report.Diversification = s.allocation.Score(portfolio.Holdings)
		report.ESG = s.esg.Analyze(portfolio.Holdings)
	}()

	go func() {
		defer wg.Done()
		metrics, err := s.performance.GetMetrics(ctx, portfolioID)
		if err != nil {
			s.log.Warn().Err(err).Str("portfolio_id", portfolioID).Msg("performance metrics degraded")
			return
		}
		report.Performance = *metrics
	}()

	go func() {
		defer wg.Done()
		metrics, err := s.performance.GetRiskMetrics(ctx, portfolioID)
		if err != nil {
			s.log.Warn().Err(err).Str("portfolio_id", portfolioID).Msg("risk metrics degraded")
			return
		}
		report.RiskMetrics = *metrics
	}()

	go func() {
		defer wg.Done()
		assessment, err := s.risk.AssessPortfolio(ctx, portfolioID, userID)
		if err != nil {
			s.log.Warn().Err(err).Str("portfolio_id", portfolioID).Msg("risk assessment degraded")
			return
		}
		report.Risk = *assessment
	}()

	go func() {
		defer wg.Done()
		tests, err := s.stress.RunStressTests(ctx, portfolioID)
		if err != nil {
			s.log.Warn().Err(err).Str("portfolio_id", portfolioID).Msg("stress tests degraded")
		} else {
			report.StressTests = *tests
		}
		projections, err := s.stress.GetProjections(ctx, portfolioID)
		if err != nil {
			s.log.Warn().Err(err).Str("portfolio_id", portfolioID).Msg("projections degraded")
			return
		}
		report.Projections = *projections
	}()

	go func() {
		defer wg.Done()
		violations, err := s.rebalancing.CheckLimits(ctx, portfolioID, userID)
		if err != nil {
			s.log.Warn().Err(err).Str("portfolio_id", portfolioID).Msg("limit checks degraded")
		} else {
			report.Violations = violations
		}
		plan, err := s.rebalancing.GetSuggestions(ctx, portfolioID, userID)
		if err != nil {
			s.log.Warn().Err(err).Str("portfolio_id", portfolioID).Msg("rebalancing suggestions degraded")
			return
		}
		report.Rebalancing = *plan
	}()

	wg.Wait()

	return report, nil
}

// ComparePortfolios builds a pairwise correlation matrix over the daily
// return histories of the given portfolios. Portfolios with too little
// history correlate at 0 with everything.
func (s *Service) ComparePortfolios(ctx context.Context, portfolioIDs []string) (*Comparison, error) {
	returns := make([][]float64, len(portfolioIDs))
	for i, id := range portfolioIDs {
		snapshots, err := s.data.GetSnapshots(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load snapshots for %s: %w", id, err)
		}
		values := make([]float64, len(snapshots))
		for j, snap := range snapshots {
			values[j] = snap.TotalValue
		}
		returns[i] = formulas.DailyReturns(values)
	}

	matrix := make([][]float64, len(portfolioIDs))
	for i := range matrix {
		matrix[i] = make([]float64, len(portfolioIDs))
		for j := range matrix[i] {
			if i == j {
				matrix[i][j] = 1
				continue
			}
			n := len(returns[i])
			if len(returns[j]) < n {
				n = len(returns[j])
			}
			if n < 2 {
				continue
			}
			matrix[i][j] = formulas.Correlation(
				returns[i][len(returns[i])-n:],
				returns[j][len(returns[j])-n:],
			)
		}
	}

	return &Comparison{PortfolioIDs: portfolioIDs, Correlations: matrix}, nil
}
