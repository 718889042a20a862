// Package risk assesses portfolio risk across concentration, liquidity,
// market, sector and currency dimensions, blends the results into an
// overall score and checks the score against the owner's risk profile.
package risk

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/miowsis/analytics/internal/domain"
	"github.com/miowsis/analytics/pkg/formulas"
)

// Concentration thresholds, percent of portfolio value
const (
	singleAssetLimit  = 25.0
	topHoldingHighPct = 40.0
	top5HighPct       = 80.0
	topHoldingMedPct  = 25.0
	top5MedPct        = 60.0
)

// Liquidity thresholds
const (
	cryptoMicroCap   = 1_000_000.0
	thinVolume       = 100_000.0
	illiquidHighPct  = 30.0
	illiquidMedPct   = 15.0
	illiquidAlertPct = 20.0
)

// Sector benchmark weight, equal-weight assumption in percent
const sectorBenchmarkPct = 10.0

// Overall score blend weights
const (
	weightConcentration = 0.25
	weightVolatility    = 0.30
	weightLiquidity     = 0.15
	weightMarket        = 0.20
	weightSector        = 0.10
)

// Profile alignment thresholds on |actual - target|
const (
	alignmentFindingGap = 20.0
	alignmentAlertGap   = 25.0
)

// Service performs portfolio risk assessments
type Service struct {
	data            domain.PortfolioDataProvider
	market          domain.MarketDataProvider
	profiles        domain.ProfileStore
	benchmarkSymbol string
	log             zerolog.Logger
}

// NewService creates a new risk service
func NewService(data domain.PortfolioDataProvider, market domain.MarketDataProvider, profiles domain.ProfileStore, benchmarkSymbol string, log zerolog.Logger) *Service {
	return &Service{
		data:            data,
		market:          market,
		profiles:        profiles,
		benchmarkSymbol: benchmarkSymbol,
		log:             log.With().Str("service", "risk").Logger(),
	}
}

// AssessPortfolio runs the full risk assessment. The portfolio must exist;
// a missing risk profile degrades the alignment section to its neutral
// default instead of failing.
func (s *Service) AssessPortfolio(ctx context.Context, portfolioID, userID string) (*Assessment, error) {
	portfolio, err := s.data.GetPortfolio(ctx, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("failed to load portfolio: %w", err)
	}

	snapshots, err := s.data.GetSnapshots(ctx, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshots: %w", err)
	}

	holdings := portfolio.Holdings
	totalValue := portfolio.HoldingsValue()

	assessment := &Assessment{
		PortfolioID:   portfolioID,
		Concentration: s.concentrationRisk(holdings, totalValue),
		Liquidity:     s.liquidityRisk(holdings, totalValue),
		Market:        s.marketRisk(ctx, snapshots),
		Sector:        s.sectorRisk(holdings, totalValue),
		Currency:      s.currencyRisk(),
		AssessedAt:    time.Now(),
	}

	values := make([]float64, len(snapshots))
	for i, snap := range snapshots {
		values[i] = snap.TotalValue
	}
	assessment.Volatility = formulas.AnnualizedVolatility(formulas.DailyReturns(values))

	assessment.OverallScore = s.overallScore(assessment)
	assessment.Category = categorize(assessment.OverallScore)

	profile, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load risk profile: %w", err)
	}
	if profile != nil {
		assessment.Alignment = s.alignment(profile, assessment.OverallScore)
	} else {
		// No declared profile: neutral midpoint, nothing to flag
		assessment.Alignment = &ProfileAlignment{
			ActualScore: assessment.OverallScore,
			Score:       50,
		}
	}

	assessment.Alerts = s.alerts(assessment, profile != nil)

	return assessment, nil
}

func (s *Service) concentrationRisk(holdings []domain.Holding, totalValue float64) ConcentrationRisk {
	if totalValue <= 0 {
		return ConcentrationRisk{Level: LevelLow}
	}

	weights := make([]float64, 0, len(holdings))
	for _, h := range holdings {
		weights = append(weights, h.MarketValue()/totalValue*100)
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(weights)))

	risk := ConcentrationRisk{}
	if len(weights) > 0 {
		risk.TopHoldingPercentage = weights[0]
	}
	n := len(weights)
	if n > 5 {
		n = 5
	}
	for _, w := range weights[:n] {
		risk.Top5Percentage += w
	}

	switch {
	case risk.TopHoldingPercentage > topHoldingHighPct || risk.Top5Percentage > top5HighPct:
		risk.Level = LevelHigh
	case risk.TopHoldingPercentage > topHoldingMedPct || risk.Top5Percentage > top5MedPct:
		risk.Level = LevelMedium
	default:
		risk.Level = LevelLow
	}

	for _, h := range holdings {
		pct := h.MarketValue() / totalValue * 100
		if pct > singleAssetLimit {
			risk.Violations = append(risk.Violations, fmt.Sprintf(
				"%s is %.1f%% of the portfolio, above the %.0f%% single-asset limit",
				h.Asset.Symbol, pct, singleAssetLimit))
		}
	}

	return risk
}

func (s *Service) liquidityRisk(holdings []domain.Holding, totalValue float64) LiquidityRisk {
	risk := LiquidityRisk{Level: LevelLow}
	if totalValue <= 0 {
		return risk
	}

	illiquidValue := 0.0
	volumeSum := 0.0
	for _, h := range holdings {
		volumeSum += h.Asset.Volume

		var days float64
		var reason string
		switch {
		case h.Asset.Type == domain.AssetTypeCrypto && h.Asset.MarketCap < cryptoMicroCap:
			days, reason = 7, "micro-cap crypto asset"
		case h.Asset.Volume < thinVolume:
			days, reason = 5, "thin trading volume"
		default:
			continue
		}

		value := h.MarketValue()
		illiquidValue += value
		risk.IlliquidHoldings = append(risk.IlliquidHoldings, IlliquidHolding{
			Symbol:          h.Asset.Symbol,
			Value:           value,
			DaysToLiquidate: days,
			Reason:          reason,
		})
	}

	if len(holdings) > 0 {
		risk.AverageDailyVolume = volumeSum / float64(len(holdings))
	}

	risk.IlliquidPercentage = illiquidValue / totalValue * 100
	risk.EstLiquidationDays = risk.IlliquidPercentage / 10

	switch {
	case risk.IlliquidPercentage > illiquidHighPct:
		risk.Level = LevelHigh
	case risk.IlliquidPercentage > illiquidMedPct:
		risk.Level = LevelMedium
	}

	return risk
}

// marketRisk regresses the portfolio's daily returns on the benchmark to
// estimate beta and correlation, defaulting to beta 1 and correlation 0 when
// history or benchmark data is missing. The systematic/specific split is a
// fixed decomposition.
func (s *Service) marketRisk(ctx context.Context, snapshots []domain.PortfolioSnapshot) MarketRisk {
	risk := MarketRisk{Beta: 1, SystematicRisk: 0.7, SpecificRisk: 0.3}

	values := make([]float64, len(snapshots))
	for i, snap := range snapshots {
		values[i] = snap.TotalValue
	}
	returns := formulas.DailyReturns(values)
	if len(returns) < 2 {
		return risk
	}

	benchmark, err := s.market.GetBenchmarkReturns(ctx, s.benchmarkSymbol)
	if err != nil {
		s.log.Warn().Err(err).Str("benchmark", s.benchmarkSymbol).Msg("benchmark returns unavailable, beta defaulted")
		return risk
	}

	if _, beta := formulas.AlphaBeta(returns, benchmark); beta != 0 {
		risk.Beta = beta
	}

	n := len(returns)
	if len(benchmark) < n {
		n = len(benchmark)
	}
	if n >= 2 {
		risk.Correlation = formulas.Correlation(returns[len(returns)-n:], benchmark[len(benchmark)-n:])
	}
	return risk
}

func (s *Service) sectorRisk(holdings []domain.Holding, totalValue float64) SectorRisk {
	risk := SectorRisk{}
	if totalValue <= 0 {
		return risk
	}

	values := make(map[string]float64)
	for _, h := range holdings {
		sector := h.Asset.Sector
		if sector == "" {
			sector = "Other"
		}
		values[sector] += h.MarketValue()
	}

	maxExposure := 0.0
	for sector, value := range values {
		pct := value / totalValue * 100
		risk.Exposures = append(risk.Exposures, SectorExposure{
			Sector:     sector,
			Percentage: pct,
			Benchmark:  sectorBenchmarkPct,
			Deviation:  pct - sectorBenchmarkPct,
		})
		if pct > maxExposure {
			maxExposure = pct
		}
		if pct > singleAssetLimit {
			risk.ConcentratedSectors = append(risk.ConcentratedSectors, sector)
		}
	}
	sort.Slice(risk.Exposures, func(i, j int) bool {
		return risk.Exposures[i].Percentage > risk.Exposures[j].Percentage
	})
	sort.Strings(risk.ConcentratedSectors)

	risk.DiversificationScore = math.Min(100, float64(len(values))*10+(100-maxExposure))

	return risk
}

// currencyRisk reports a single-currency book. All supported assets trade
// in the account's base currency, so exposure is total and nothing needs
// hedging.
func (s *Service) currencyRisk() CurrencyRisk {
	return CurrencyRisk{
		PrimaryCurrency:    "USD",
		PrimaryExposure:    100,
		UnhedgedPercentage: 0,
	}
}

func (s *Service) overallScore(a *Assessment) float64 {
	var concentration float64
	switch a.Concentration.Level {
	case LevelHigh:
		concentration = 80
	case LevelMedium:
		concentration = 50
	default:
		concentration = 20
	}

	volatility := math.Min(100, a.Volatility*2)

	var liquidity float64
	switch a.Liquidity.Level {
	case LevelHigh:
		liquidity = 70
	case LevelMedium:
		liquidity = 40
	default:
		liquidity = 10
	}

	market := math.Min(100, math.Abs(a.Market.Beta-1)*50)
	sector := 100 - a.Sector.DiversificationScore

	return concentration*weightConcentration +
		volatility*weightVolatility +
		liquidity*weightLiquidity +
		market*weightMarket +
		sector*weightSector
}

func categorize(score float64) Category {
	switch {
	case score < 25:
		return CategoryLow
	case score < 50:
		return CategoryMedium
	case score < 75:
		return CategoryHigh
	default:
		return CategoryVeryHigh
	}
}

func (s *Service) alignment(profile *domain.RiskProfile, actualScore float64) *ProfileAlignment {
	target := profile.Tolerance.TargetRiskScore()
	diff := math.Abs(actualScore - target)

	alignment := &ProfileAlignment{
		TargetScore: target,
		ActualScore: actualScore,
		Score:       math.Max(0, 100-2*diff),
	}

	if diff > alignmentFindingGap {
		if actualScore > target {
			alignment.Findings = append(alignment.Findings, fmt.Sprintf(
				"Portfolio risk score %.0f is well above your %s profile target of %.0f",
				actualScore, profile.Tolerance, target))
			alignment.Recommendations = append(alignment.Recommendations,
				"Consider reducing exposure to high-risk assets",
				"Increase allocation to bonds or stable assets")
		} else {
			alignment.Findings = append(alignment.Findings, fmt.Sprintf(
				"Portfolio risk score %.0f is well below your %s profile target of %.0f",
				actualScore, profile.Tolerance, target))
			alignment.Recommendations = append(alignment.Recommendations,
				"Consider increasing equity allocation",
				"Add growth-oriented assets to the portfolio")
		}
	}

	return alignment
}

func (s *Service) alerts(a *Assessment, hasProfile bool) []Alert {
	var alerts []Alert
	now := time.Now()

	if a.Concentration.Level == LevelHigh {
		alerts = append(alerts, Alert{
			ID:       uuid.New().String(),
			Severity: SeverityWarning,
			Type:     "concentration",
			Title:    "High concentration risk detected",
			Message: fmt.Sprintf("High concentration: largest holding is %.1f%% of the portfolio",
				a.Concentration.TopHoldingPercentage),
			ActionRequired: "Consider diversifying to reduce single-asset exposure",
			CreatedAt:      now,
		})
	}

	if a.Liquidity.IlliquidPercentage > illiquidAlertPct {
		alerts = append(alerts, Alert{
			ID:       uuid.New().String(),
			Severity: SeverityWarning,
			Type:     "liquidity",
			Title:    "Limited liquidity in portfolio",
			Message: fmt.Sprintf("%.1f%% of portfolio value is illiquid",
				a.Liquidity.IlliquidPercentage),
			ActionRequired: "Maintain adequate cash reserves for emergencies",
			CreatedAt:      now,
		})
	}

	if hasProfile {
		if diff := math.Abs(a.Alignment.ActualScore - a.Alignment.TargetScore); diff > alignmentAlertGap {
			alerts = append(alerts, Alert{
				ID:       uuid.New().String(),
				Severity: SeverityCritical,
				Type:     "profile_mismatch",
				Title:    "Portfolio risk does not match your profile",
				Message: fmt.Sprintf("Portfolio risk deviates %.0f points from your risk profile target",
					diff),
				ActionRequired: "Review and rebalance your portfolio or update your risk profile",
				CreatedAt:      now,
			})
		}
	}

	return alerts
}
