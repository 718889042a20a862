package domain

import (
	"context"
	"errors"
)

// ErrPortfolioNotFound is returned when a portfolio identifier does not
// resolve to a portfolio. It is a fatal condition for the whole request,
// unlike missing historical data which degrades single metrics to zero.
var ErrPortfolioNotFound = errors.New("portfolio not found")

// PortfolioDataProvider supplies portfolio state owned by the surrounding
// platform. Implementations are external collaborators; the analytics core
// never constructs queries itself.
type PortfolioDataProvider interface {
	// GetPortfolio returns the portfolio with nested holdings, each carrying
	// its asset snapshot. Returns ErrPortfolioNotFound if the ID is unknown.
	GetPortfolio(ctx context.Context, portfolioID string) (*Portfolio, error)

	// GetTransactions returns the immutable transaction history, oldest first.
	GetTransactions(ctx context.Context, portfolioID string) ([]Transaction, error)

	// GetSnapshots returns the portfolio value history ordered by date
	// ascending. Fewer than 2 points means time-series metrics degrade to 0.
	GetSnapshots(ctx context.Context, portfolioID string) ([]PortfolioSnapshot, error)
}

// MarketDataProvider supplies market snapshots and benchmark data
type MarketDataProvider interface {
	// GetAssets returns current asset snapshots for the given asset IDs.
	// Unknown IDs are omitted from the result, not an error.
	GetAssets(ctx context.Context, assetIDs []string) ([]Asset, error)

	// GetBenchmarkReturns returns the benchmark's historical daily returns,
	// oldest first. An empty slice means benchmark-relative metrics
	// (alpha, beta, correlation) degrade to 0.
	GetBenchmarkReturns(ctx context.Context, symbol string) ([]float64, error)

	// FindAssetsBySector returns candidate assets in a sector, best first.
	// Used to back buy-side rebalancing suggestions.
	FindAssetsBySector(ctx context.Context, sector string) ([]Asset, error)
}

// ProfileStore reads and writes user risk profiles and limits. The core
// passes profile writes through verbatim; it derives nothing into the store.
type ProfileStore interface {
	// GetProfile returns the user's risk profile, or nil without error when
	// the user has not created one.
	GetProfile(ctx context.Context, userID string) (*RiskProfile, error)

	// SaveProfile creates or replaces the user's risk profile.
	SaveProfile(ctx context.Context, profile *RiskProfile) error

	// GetLimits returns the user's risk limits. When enabledOnly is set,
	// disabled limits are filtered out.
	GetLimits(ctx context.Context, userID string, enabledOnly bool) ([]RiskLimit, error)

	// ReplaceLimits atomically replaces the user's limits and returns them
	// with assigned IDs.
	ReplaceLimits(ctx context.Context, userID string, limits []RiskLimit) ([]RiskLimit, error)
}
