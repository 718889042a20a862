// Package domain provides core domain models and types.
package domain

import "time"

// AssetType represents the type of financial instrument
type AssetType string

const (
	AssetTypeStock  AssetType = "stock"
	AssetTypeETF    AssetType = "etf"
	AssetTypeBond   AssetType = "bond"
	AssetTypeCrypto AssetType = "crypto"
	AssetTypeFund   AssetType = "fund"
)

// ESGScores holds per-asset environmental, social and governance sub-scores
// on a 0-100 scale. Composite is the blended score used for sustainability
// classification. CarbonFootprint is tons of CO2e attributed per unit held
// per year, as reported by the market data provider.
type ESGScores struct {
	Environmental   float64 `json:"environmental"`
	Social          float64 `json:"social"`
	Governance      float64 `json:"governance"`
	Composite       float64 `json:"composite"`
	CarbonFootprint float64 `json:"carbon_footprint"`
}

// Asset is a read-only market snapshot of a tradeable instrument.
// Identity fields are immutable; price, volume and ESG fields are refreshed
// by the market data provider, which owns them.
type Asset struct {
	ID           string    `json:"id"`
	Symbol       string    `json:"symbol"`
	Name         string    `json:"name"`
	Type         AssetType `json:"asset_type"`
	Sector       string    `json:"sector"`
	Region       string    `json:"region"`
	CurrentPrice float64   `json:"current_price"`
	Volume       float64   `json:"volume"`
	MarketCap    float64   `json:"market_cap"`
	ESG          ESGScores `json:"esg_scores"`
}

// Holding is a position in a single asset within a portfolio
type Holding struct {
	AssetID     string  `json:"asset_id"`
	Asset       Asset   `json:"asset"`
	Quantity    float64 `json:"quantity"`
	AverageCost float64 `json:"average_cost"`
}

// MarketValue returns the current market value of the holding
func (h Holding) MarketValue() float64 {
	return h.Quantity * h.Asset.CurrentPrice
}

// CostBasis returns the total acquisition cost of the holding
func (h Holding) CostBasis() float64 {
	return h.Quantity * h.AverageCost
}

// Portfolio represents an investment account with its holdings.
// The stored TotalValue is eventually consistent; analytics always
// recompute from holdings via HoldingsValue rather than trusting it.
type Portfolio struct {
	ID            string    `json:"id"`
	OwnerID       string    `json:"owner_id"`
	Name          string    `json:"name"`
	TotalValue    float64   `json:"total_value"`
	TotalInvested float64   `json:"total_invested"`
	CreatedAt     time.Time `json:"created_at"`
	Holdings      []Holding `json:"holdings"`
}

// HoldingsValue recomputes total portfolio value from current prices
func (p Portfolio) HoldingsValue() float64 {
	total := 0.0
	for _, h := range p.Holdings {
		total += h.MarketValue()
	}
	return total
}

// AgeYears returns the portfolio age in years at the given time
func (p Portfolio) AgeYears(now time.Time) float64 {
	if p.CreatedAt.IsZero() || !now.After(p.CreatedAt) {
		return 0
	}
	return now.Sub(p.CreatedAt).Hours() / (24 * 365)
}

// TransactionType represents the type of a historical transaction
type TransactionType string

const (
	TransactionBuy      TransactionType = "buy"
	TransactionSell     TransactionType = "sell"
	TransactionDividend TransactionType = "dividend"
	TransactionFee      TransactionType = "fee"
)

// Transaction is an immutable historical record of a portfolio event
type Transaction struct {
	ID          string          `json:"id"`
	PortfolioID string          `json:"portfolio_id"`
	AssetID     string          `json:"asset_id"`
	Symbol      string          `json:"symbol"`
	Type        TransactionType `json:"type"`
	Quantity    float64         `json:"quantity"`
	Price       float64         `json:"price"`
	Amount      float64         `json:"amount"`
	ExecutedAt  time.Time       `json:"executed_at"`
}

// PortfolioSnapshot is a (date, total value) point in the portfolio's
// value history. Snapshots are append-only and strictly date-ordered.
type PortfolioSnapshot struct {
	Date       time.Time `json:"date"`
	TotalValue float64   `json:"total_value"`
}

// RiskTolerance represents a user's declared risk appetite
type RiskTolerance string

const (
	ToleranceConservative   RiskTolerance = "conservative"
	ToleranceModerate       RiskTolerance = "moderate"
	ToleranceAggressive     RiskTolerance = "aggressive"
	ToleranceVeryAggressive RiskTolerance = "very_aggressive"
)

// TargetRiskScore maps a tolerance tier to the overall risk score (0-100)
// a matching portfolio is expected to carry
func (t RiskTolerance) TargetRiskScore() float64 {
	switch t {
	case ToleranceConservative:
		return 25
	case ToleranceAggressive:
		return 75
	case ToleranceVeryAggressive:
		return 90
	default:
		return 50
	}
}

// RiskProfile is a user's declared investment profile. It is created and
// updated explicitly by the user and read-only to the analytics core.
type RiskProfile struct {
	UserID               string        `json:"user_id"`
	Tolerance            RiskTolerance `json:"risk_tolerance"`
	InvestmentHorizon    string        `json:"investment_horizon"` // short (<3y), medium (3-10y), long (>10y)
	LiquidityNeeds       string        `json:"liquidity_needs"`    // low, medium, high
	ExperienceLevel      string        `json:"experience_level"`   // beginner, intermediate, advanced, expert
	Age                  int           `json:"age"`
	AnnualIncome         float64       `json:"annual_income"`
	NetWorth             float64       `json:"net_worth"`
	InvestmentGoals      []string      `json:"investment_goals"`
	Constraints          []string      `json:"constraints"`
	MaxDrawdownTolerance float64       `json:"max_drawdown_tolerance"`
	PreferredAssetTypes  []string      `json:"preferred_asset_types"`
	ExcludedSectors      []string      `json:"excluded_sectors"`
}

// LimitType identifies the metric family a risk limit applies to
type LimitType string

const (
	LimitPosition   LimitType = "position"
	LimitSector     LimitType = "sector"
	LimitAssetType  LimitType = "asset_type"
	LimitVolatility LimitType = "volatility"
	LimitVaR        LimitType = "var"
)

// LimitOperator is the comparison applied between the current metric value
// and the configured threshold
type LimitOperator string

const (
	OperatorGreaterThan LimitOperator = "greater_than"
	OperatorLessThan    LimitOperator = "less_than"
	OperatorEqualTo     LimitOperator = "equal_to"
)

// LimitAction is the action requested when a limit is violated.
// Evaluation only reports; no action is auto-executed.
type LimitAction string

const (
	ActionAlert     LimitAction = "alert"
	ActionBlock     LimitAction = "block"
	ActionRebalance LimitAction = "rebalance"
)

// RiskLimit is a user-defined rule evaluated against live portfolio metrics
type RiskLimit struct {
	ID       string        `json:"id"`
	UserID   string        `json:"user_id"`
	Type     LimitType     `json:"limit_type"`
	Metric   string        `json:"metric"`
	Operator LimitOperator `json:"operator"`
	Value    float64       `json:"value"`
	Action   LimitAction   `json:"action"`
	Enabled  bool          `json:"enabled"`
}
