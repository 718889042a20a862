// Package rebalancing evaluates user risk limits against live portfolio
// metrics and builds rebalancing suggestions that bring the portfolio back
// inside its constraints.
package rebalancing

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/rs/zerolog"

	"github.com/miowsis/analytics/internal/domain"
	"github.com/miowsis/analytics/pkg/formulas"
)

// Single position ceiling and sector entry target, percent of value
const (
	maxPositionPct    = 25.0
	sectorTargetPct   = 5.0
	maxSuggestions    = 10
	equalityTolerance = 0.01
)

// Risk reduction estimate per suggestion, capped
const (
	sellRiskReduction = 5.0
	buyRiskReduction  = 3.0
	maxRiskReduction  = 30.0
)

// recommendedSectors seeds buy-side suggestions for sectors the portfolio
// lacks, minus any the user's profile excludes
var recommendedSectors = []string{"Technology", "Healthcare", "Financials", "Consumer", "Industrials"}

// Violation is one risk limit broken by the current portfolio state
type Violation struct {
	LimitID      string               `json:"limit_id"`
	Type         domain.LimitType     `json:"limit_type"`
	Metric       string               `json:"metric"`
	CurrentValue float64              `json:"current_value"`
	LimitValue   float64              `json:"limit_value"`
	Operator     domain.LimitOperator `json:"operator"`
	Action       domain.LimitAction   `json:"action"`
	Message      string               `json:"message"`
}

// SuggestionType classifies a rebalancing suggestion
type SuggestionType string

const (
	SuggestionSell SuggestionType = "sell"
	SuggestionBuy  SuggestionType = "buy"
)

// Suggestion is one proposed trade. Amount is the value to move in account
// currency; nothing is executed automatically.
type Suggestion struct {
	Type       SuggestionType `json:"type"`
	Symbol     string         `json:"symbol"`
	Sector     string         `json:"sector,omitempty"`
	CurrentPct float64        `json:"current_pct"`
	TargetPct  float64        `json:"target_pct"`
	Amount     float64        `json:"amount"`
	Reason     string         `json:"reason"`
}

// Plan is the full set of suggestions with an estimated effect
type Plan struct {
	PortfolioID            string       `json:"portfolio_id"`
	Suggestions            []Suggestion `json:"suggestions"`
	EstimatedRiskReduction float64      `json:"estimated_risk_reduction"`
}

// Service evaluates limits and proposes rebalancing trades
type Service struct {
	data     domain.PortfolioDataProvider
	market   domain.MarketDataProvider
	profiles domain.ProfileStore
	log      zerolog.Logger
}

// NewService creates a new rebalancing service
func NewService(data domain.PortfolioDataProvider, market domain.MarketDataProvider, profiles domain.ProfileStore, log zerolog.Logger) *Service {
	return &Service{
		data:     data,
		market:   market,
		profiles: profiles,
		log:      log.With().Str("service", "rebalancing").Logger(),
	}
}

// CheckLimits evaluates the user's enabled risk limits against the
// portfolio's current metrics and returns every violation. No limits
// configured means no violations.
func (s *Service) CheckLimits(ctx context.Context, portfolioID, userID string) ([]Violation, error) {
	portfolio, err := s.data.GetPortfolio(ctx, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("failed to load portfolio: %w", err)
	}

	limits, err := s.profiles.GetLimits(ctx, userID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to load risk limits: %w", err)
	}
	if len(limits) == 0 {
		return nil, nil
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

	metrics := portfolioMetrics{
		totalValue:   portfolio.HoldingsValue(),
		holdings:     portfolio.Holdings,
		volatility1y: formulas.AnnualizedVolatility(dailyReturns),
		var95:        formulas.ValueAtRisk(dailyReturns, 0.95),
	}

	var violations []Violation
	for _, limit := range limits {
		current, ok := metrics.resolve(limit)
		if !ok {
			s.log.Warn().Str("limit_id", limit.ID).Str("metric", limit.Metric).Msg("unresolvable limit metric skipped")
			continue
		}
		if breached(limit.Operator, current, limit.Value) {
			violations = append(violations, Violation{
				LimitID:      limit.ID,
				Type:         limit.Type,
				Metric:       limit.Metric,
				CurrentValue: current,
				LimitValue:   limit.Value,
				Operator:     limit.Operator,
				Action:       limit.Action,
				Message: fmt.Sprintf("%s is %.2f, limit is %s %.2f",
					limit.Metric, current, limit.Operator, limit.Value),
			})
		}
	}

	return violations, nil
}

// portfolioMetrics caches the values limits are evaluated against
type portfolioMetrics struct {
	totalValue   float64
	holdings     []domain.Holding
	volatility1y float64
	var95        float64
}

// resolve maps a limit to its current metric value. Position, sector and
// asset type limits optionally narrow to the symbol, sector or type named
// in Metric; without one they evaluate the largest exposure.
func (m portfolioMetrics) resolve(limit domain.RiskLimit) (float64, bool) {
	switch limit.Type {
	case domain.LimitVolatility:
		return m.volatility1y, true
	case domain.LimitVaR:
		return m.var95, true
	case domain.LimitPosition:
		return m.exposure(func(h domain.Holding) string { return h.Asset.Symbol }, limit.Metric)
	case domain.LimitSector:
		return m.exposure(func(h domain.Holding) string { return h.Asset.Sector }, limit.Metric)
	case domain.LimitAssetType:
		return m.exposure(func(h domain.Holding) string { return string(h.Asset.Type) }, limit.Metric)
	default:
		return 0, false
	}
}

func (m portfolioMetrics) exposure(key func(domain.Holding) string, metric string) (float64, bool) {
	if m.totalValue <= 0 {
		return 0, true
	}

	buckets := make(map[string]float64)
	for _, h := range m.holdings {
		buckets[key(h)] += h.MarketValue() / m.totalValue * 100
	}

	if metric != "" && metric != "max" {
		return buckets[metric], true
	}

	max := 0.0
	for _, pct := range buckets {
		if pct > max {
			max = pct
		}
	}
	return max, true
}

func breached(op domain.LimitOperator, current, threshold float64) bool {
	switch op {
	case domain.OperatorGreaterThan:
		return current > threshold
	case domain.OperatorLessThan:
		return current < threshold
	case domain.OperatorEqualTo:
		return math.Abs(current-threshold) <= equalityTolerance
	default:
		return false
	}
}

// GetSuggestions proposes sells that trim oversized positions back to the
// position ceiling and buys that open starter positions in recommended
// sectors the portfolio lacks. The user's excluded sectors are honored and
// the plan is capped at 10 suggestions.
func (s *Service) GetSuggestions(ctx context.Context, portfolioID, userID string) (*Plan, error) {
	portfolio, err := s.data.GetPortfolio(ctx, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("failed to load portfolio: %w", err)
	}

	profile, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load risk profile: %w", err)
	}

	plan := &Plan{PortfolioID: portfolioID}
	totalValue := portfolio.HoldingsValue()
	if totalValue <= 0 {
		return plan, nil
	}

	sells := s.sellSuggestions(portfolio.Holdings, totalValue)
	buys := s.buySuggestions(ctx, portfolio.Holdings, totalValue, profile)

	plan.Suggestions = append(sells, buys...)
	if len(plan.Suggestions) > maxSuggestions {
		plan.Suggestions = plan.Suggestions[:maxSuggestions]
	}

	reduction := 0.0
	for _, sug := range plan.Suggestions {
		if sug.Type == SuggestionSell {
			reduction += sellRiskReduction
		} else {
			reduction += buyRiskReduction
		}
	}
	plan.EstimatedRiskReduction = math.Min(maxRiskReduction, reduction)

	return plan, nil
}

func (s *Service) sellSuggestions(holdings []domain.Holding, totalValue float64) []Suggestion {
	var sells []Suggestion
	for _, h := range holdings {
		pct := h.MarketValue() / totalValue * 100
		if pct <= maxPositionPct {
			continue
		}
		sells = append(sells, Suggestion{
			Type:       SuggestionSell,
			Symbol:     h.Asset.Symbol,
			Sector:     h.Asset.Sector,
			CurrentPct: pct,
			TargetPct:  maxPositionPct,
			Amount:     (pct - maxPositionPct) / 100 * totalValue,
			Reason: fmt.Sprintf("Trim %s from %.1f%% to the %.0f%% position ceiling",
				h.Asset.Symbol, pct, maxPositionPct),
		})
	}
	sort.Slice(sells, func(i, j int) bool { return sells[i].CurrentPct > sells[j].CurrentPct })
	return sells
}

func (s *Service) buySuggestions(ctx context.Context, holdings []domain.Holding, totalValue float64, profile *domain.RiskProfile) []Suggestion {
	held := make(map[string]bool)
	for _, h := range holdings {
		held[h.Asset.Sector] = true
	}

	excluded := make(map[string]bool)
	if profile != nil {
		for _, sector := range profile.ExcludedSectors {
			excluded[sector] = true
		}
	}

	var buys []Suggestion
	for _, sector := range recommendedSectors {
		if held[sector] || excluded[sector] {
			continue
		}

		candidates, err := s.market.FindAssetsBySector(ctx, sector)
		if err != nil {
			s.log.Warn().Err(err).Str("sector", sector).Msg("sector candidate lookup failed")
			continue
		}
		// No investable candidate means nothing to suggest for the sector
		if len(candidates) == 0 {
			continue
		}

		buys = append(buys, Suggestion{
			Type:       SuggestionBuy,
			Symbol:     candidates[0].Symbol,
			Sector:     sector,
			CurrentPct: 0,
			TargetPct:  sectorTargetPct,
			Amount:     sectorTargetPct / 100 * totalValue,
			Reason: fmt.Sprintf("Open a %.0f%% position in %s for sector diversification",
				sectorTargetPct, sector),
		})
	}
	return buys
}
