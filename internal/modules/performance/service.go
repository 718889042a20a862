// Package performance computes historical performance and risk metrics
// for a portfolio from its snapshot and transaction history.
package performance

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/miowsis/analytics/internal/domain"
	"github.com/miowsis/analytics/pkg/formulas"
)

// Metrics is the portfolio's historical performance summary. Time-series
// metrics degrade to 0 when the snapshot history is too short.
type Metrics struct {
	TotalReturn      float64 `json:"total_return"`
	TotalReturnPct   float64 `json:"total_return_pct"`
	AnnualizedReturn float64 `json:"annualized_return"`
	DailyChange      float64 `json:"daily_change"`
	WeeklyChange     float64 `json:"weekly_change"`
	MonthlyChange    float64 `json:"monthly_change"`
	YTDChange        float64 `json:"ytd_change"`
	AllTimeHigh      float64 `json:"all_time_high"`
	AllTimeLow       float64 `json:"all_time_low"`
	SharpeRatio      float64 `json:"sharpe_ratio"`
	Volatility       float64 `json:"volatility"`
	Alpha            float64 `json:"alpha"`
	Beta             float64 `json:"beta"`
	MaxDrawdown      float64 `json:"max_drawdown"`
	WinRate          float64 `json:"win_rate"`
}

// Correlation holds correlations of portfolio daily returns against
// reference series
type Correlation struct {
	ToMarket float64 `json:"to_market"`
	ToSP500  float64 `json:"to_sp500"`
}

// RiskMetrics is the portfolio's historical risk summary
type RiskMetrics struct {
	RiskScore         float64           `json:"risk_score"` // 1-10
	Volatility30d     float64           `json:"volatility_30d"`
	Volatility90d     float64           `json:"volatility_90d"`
	Volatility1y      float64           `json:"volatility_1y"`
	VaR95             float64           `json:"var_95"`
	VaR99             float64           `json:"var_99"`
	DownsideDeviation float64           `json:"downside_deviation"`
	MaxDrawdown       formulas.Drawdown `json:"max_drawdown"`
	Correlation       Correlation       `json:"correlation"`
}

// Service derives performance and risk metrics from provider history
type Service struct {
	data            domain.PortfolioDataProvider
	market          domain.MarketDataProvider
	benchmarkSymbol string
	riskFreeRate    float64
	log             zerolog.Logger
}

// NewService creates a new performance service. benchmarkSymbol selects the
// series used for alpha, beta and correlation; riskFreeRate is the annual
// risk-free rate in percent used by the Sharpe ratio.
func NewService(data domain.PortfolioDataProvider, market domain.MarketDataProvider, benchmarkSymbol string, riskFreeRate float64, log zerolog.Logger) *Service {
	return &Service{
		data:            data,
		market:          market,
		benchmarkSymbol: benchmarkSymbol,
		riskFreeRate:    riskFreeRate,
		log:             log.With().Str("service", "performance").Logger(),
	}
}

// GetMetrics computes the full performance summary for a portfolio.
// Missing benchmark data zeroes alpha and beta; a snapshot history below
// 2 points zeroes every time-series metric.
func (s *Service) GetMetrics(ctx context.Context, portfolioID string) (*Metrics, error) {
	portfolio, err := s.data.GetPortfolio(ctx, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("failed to load portfolio: %w", err)
	}

	snapshots, err := s.data.GetSnapshots(ctx, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshots: %w", err)
	}

	currentValue := portfolio.HoldingsValue()
	invested := portfolio.TotalInvested

	m := &Metrics{
		TotalReturn: currentValue - invested,
	}
	if invested > 0 {
		m.TotalReturnPct = m.TotalReturn / invested * 100
	}
	m.AnnualizedReturn = formulas.AnnualizedReturn(m.TotalReturnPct, portfolio.AgeYears(time.Now()))

	values := snapshotValues(snapshots)
	dailyReturns := formulas.DailyReturns(values)

	now := time.Now()
	m.DailyChange = s.periodChange(snapshots, currentValue, now.AddDate(0, 0, -1))
	m.WeeklyChange = s.periodChange(snapshots, currentValue, now.AddDate(0, 0, -7))
	m.MonthlyChange = s.periodChange(snapshots, currentValue, now.AddDate(0, -1, 0))
	m.YTDChange = s.periodChange(snapshots, currentValue, time.Date(now.Year(), 1, 1, 0, 0, 0, 0, time.UTC))

	for _, v := range values {
		if v > m.AllTimeHigh {
			m.AllTimeHigh = v
		}
		if m.AllTimeLow == 0 || v < m.AllTimeLow {
			m.AllTimeLow = v
		}
	}
	if currentValue > m.AllTimeHigh {
		m.AllTimeHigh = currentValue
	}
	if m.AllTimeLow == 0 || currentValue < m.AllTimeLow {
		m.AllTimeLow = currentValue
	}

	m.Volatility = formulas.AnnualizedVolatility(dailyReturns)
	m.SharpeRatio = formulas.SharpeRatio(m.AnnualizedReturn, m.Volatility, s.riskFreeRate)
	m.MaxDrawdown = formulas.MaxDrawdown(snapshotDates(snapshots), values).Value

	benchmark, err := s.market.GetBenchmarkReturns(ctx, s.benchmarkSymbol)
	if err != nil {
		s.log.Warn().Err(err).Str("benchmark", s.benchmarkSymbol).Msg("benchmark returns unavailable, alpha and beta zeroed")
	} else {
		alphaDaily, beta := formulas.AlphaBeta(dailyReturns, benchmark)
		m.Alpha = alphaDaily * formulas.TradingDaysPerYear * 100
		m.Beta = beta
	}

	transactions, err := s.data.GetTransactions(ctx, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}
	m.WinRate = winRate(transactions)

	return m, nil
}

// GetRiskMetrics computes the historical risk summary for a portfolio
func (s *Service) GetRiskMetrics(ctx context.Context, portfolioID string) (*RiskMetrics, error) {
	if _, err := s.data.GetPortfolio(ctx, portfolioID); err != nil {
		return nil, fmt.Errorf("failed to load portfolio: %w", err)
	}

	snapshots, err := s.data.GetSnapshots(ctx, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshots: %w", err)
	}

	values := snapshotValues(snapshots)
	dailyReturns := formulas.DailyReturns(values)

	m := &RiskMetrics{
		Volatility30d:     formulas.AnnualizedVolatility(tail(dailyReturns, 30)),
		Volatility90d:     formulas.AnnualizedVolatility(tail(dailyReturns, 90)),
		Volatility1y:      formulas.AnnualizedVolatility(tail(dailyReturns, formulas.TradingDaysPerYear)),
		VaR95:             formulas.ValueAtRisk(dailyReturns, 0.95),
		VaR99:             formulas.ValueAtRisk(dailyReturns, 0.99),
		DownsideDeviation: formulas.DownsideDeviation(dailyReturns),
		MaxDrawdown:       formulas.MaxDrawdown(snapshotDates(snapshots), values),
	}

	benchmark, err := s.market.GetBenchmarkReturns(ctx, s.benchmarkSymbol)
	if err != nil {
		s.log.Warn().Err(err).Str("benchmark", s.benchmarkSymbol).Msg("benchmark returns unavailable, correlations zeroed")
	} else {
		n := len(dailyReturns)
		if len(benchmark) < n {
			n = len(benchmark)
		}
		corr := formulas.Correlation(tail(dailyReturns, n), tail(benchmark, n))
		// The configured benchmark doubles as the broad market proxy
		m.Correlation = Correlation{ToMarket: corr, ToSP500: corr}
	}

	m.RiskScore = riskScore(m.Volatility1y, m.MaxDrawdown.Value)

	return m, nil
}

// periodChange returns the percentage change from the latest snapshot at or
// before the boundary to the current value. No snapshot before the boundary
// means the portfolio is younger than the period and the change is 0.
func (s *Service) periodChange(snapshots []domain.PortfolioSnapshot, currentValue float64, boundary time.Time) float64 {
	var base float64
	for _, snap := range snapshots {
		if snap.Date.After(boundary) {
			break
		}
		base = snap.TotalValue
	}
	if base <= 0 {
		return 0
	}
	return (currentValue - base) / base * 100
}

// winRate replays buy and sell transactions against a running average cost
// per asset and reports the share of sells executed above that cost.
// No sells yields 0.
func winRate(transactions []domain.Transaction) float64 {
	type position struct {
		quantity float64
		cost     float64
	}
	positions := make(map[string]*position)

	wins, sells := 0, 0
	for _, tx := range transactions {
		pos := positions[tx.AssetID]
		if pos == nil {
			pos = &position{}
			positions[tx.AssetID] = pos
		}

		switch tx.Type {
		case domain.TransactionBuy:
			pos.cost += tx.Quantity * tx.Price
			pos.quantity += tx.Quantity
		case domain.TransactionSell:
			if pos.quantity > 0 {
				avgCost := pos.cost / pos.quantity
				sells++
				if tx.Price > avgCost {
					wins++
				}
				pos.cost -= tx.Quantity * avgCost
				pos.quantity -= tx.Quantity
				if pos.quantity < 0 {
					pos.quantity = 0
					pos.cost = 0
				}
			}
		}
	}

	if sells == 0 {
		return 0
	}
	return float64(wins) / float64(sells) * 100
}

// riskScore maps 1y volatility and max drawdown onto a 1-10 scale
func riskScore(volatility1y, maxDrawdown float64) float64 {
	score := volatility1y/4 + maxDrawdown/10
	return math.Round(math.Min(10, math.Max(1, score)))
}

func snapshotValues(snapshots []domain.PortfolioSnapshot) []float64 {
	values := make([]float64, len(snapshots))
	for i, s := range snapshots {
		values[i] = s.TotalValue
	}
	return values
}

func snapshotDates(snapshots []domain.PortfolioSnapshot) []time.Time {
	dates := make([]time.Time, len(snapshots))
	for i, s := range snapshots {
		dates[i] = s.Date
	}
	return dates
}

func tail(data []float64, n int) []float64 {
	if len(data) <= n {
		return data
	}
	return data[len(data)-n:]
}
