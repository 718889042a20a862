package risk

import "time"

// Level grades a single risk dimension
type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// Category grades the portfolio's overall risk score
type Category string

const (
	CategoryLow      Category = "low"
	CategoryMedium   Category = "medium"
	CategoryHigh     Category = "high"
	CategoryVeryHigh Category = "very_high"
)

// ConcentrationRisk describes how much value sits in the largest positions
type ConcentrationRisk struct {
	Level                Level    `json:"level"`
	TopHoldingPercentage float64  `json:"top_holding_percentage"`
	Top5Percentage       float64  `json:"top5_percentage"`
	Violations           []string `json:"violations"`
}

// IlliquidHolding is a position that could not be unwound within a day
type IlliquidHolding struct {
	Symbol          string  `json:"symbol"`
	Value           float64 `json:"value"`
	DaysToLiquidate float64 `json:"days_to_liquidate"`
	Reason          string  `json:"reason"`
}

// LiquidityRisk describes how quickly the portfolio could be converted to
// cash under normal market conditions
type LiquidityRisk struct {
	Level              Level             `json:"level"`
	IlliquidPercentage float64           `json:"illiquid_percentage"`
	IlliquidHoldings   []IlliquidHolding `json:"illiquid_holdings"`
	EstLiquidationDays float64           `json:"est_liquidation_days"`
	AverageDailyVolume float64           `json:"average_daily_volume"`
}

// MarketRisk describes sensitivity to broad market moves
type MarketRisk struct {
	Beta           float64 `json:"beta"`
	Correlation    float64 `json:"correlation"`
	SystematicRisk float64 `json:"systematic_risk"`
	SpecificRisk   float64 `json:"specific_risk"`
}

// SectorExposure is the portfolio weight of one sector against the
// benchmark weight
type SectorExposure struct {
	Sector     string  `json:"sector"`
	Percentage float64 `json:"percentage"`
	Benchmark  float64 `json:"benchmark"`
	Deviation  float64 `json:"deviation"`
}

// SectorRisk describes sector concentration against an equal-weight
// benchmark
type SectorRisk struct {
	Exposures            []SectorExposure `json:"exposures"`
	ConcentratedSectors  []string         `json:"concentrated_sectors"`
	DiversificationScore float64          `json:"diversification_score"`
}

// CurrencyRisk describes foreign-exchange exposure. Single-currency
// portfolios report full domestic exposure with nothing unhedged.
type CurrencyRisk struct {
	PrimaryCurrency    string  `json:"primary_currency"`
	PrimaryExposure    float64 `json:"primary_exposure"`
	UnhedgedPercentage float64 `json:"unhedged_percentage"`
}

// AlertSeverity grades an alert
type AlertSeverity string

const (
	SeverityInfo     AlertSeverity = "info"
	SeverityWarning  AlertSeverity = "warning"
	SeverityCritical AlertSeverity = "critical"
)

// Alert is a noteworthy risk condition surfaced by an assessment. Message
// describes the condition; ActionRequired is the suggested response.
type Alert struct {
	ID             string        `json:"id"`
	Severity       AlertSeverity `json:"severity"`
	Type           string        `json:"type"`
	Title          string        `json:"title"`
	Message        string        `json:"message"`
	ActionRequired string        `json:"action_required"`
	CreatedAt      time.Time     `json:"created_at"`
}

// ProfileAlignment compares the portfolio's risk to the user's declared
// tolerance. Score is 100 at a perfect match and falls off with distance;
// without a declared profile the section carries the neutral midpoint 50.
type ProfileAlignment struct {
	TargetScore     float64  `json:"target_score"`
	ActualScore     float64  `json:"actual_score"`
	Score           float64  `json:"score"`
	Findings        []string `json:"findings"`
	Recommendations []string `json:"recommendations"`
}

// Assessment is the complete risk picture for a portfolio
type Assessment struct {
	PortfolioID   string            `json:"portfolio_id"`
	OverallScore  float64           `json:"overall_score"`
	Category      Category          `json:"category"`
	Concentration ConcentrationRisk `json:"concentration"`
	Liquidity     LiquidityRisk     `json:"liquidity"`
	Market        MarketRisk        `json:"market"`
	Sector        SectorRisk        `json:"sector"`
	Currency      CurrencyRisk      `json:"currency"`
	Volatility    float64           `json:"volatility"`
	Alignment     *ProfileAlignment `json:"alignment"`
	Alerts        []Alert           `json:"alerts"`
	AssessedAt    time.Time         `json:"assessed_at"`
}
