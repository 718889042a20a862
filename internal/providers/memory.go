// Package providers contains data provider implementations. The in-memory
// provider backs the API when no external platform is attached and doubles
// as the fixture store for integration tests.
package providers

import (
	"context"
	"sort"
	"sync"

	"github.com/miowsis/analytics/internal/domain"
)

// Memory is a threadsafe in-memory implementation of the portfolio and
// market data provider interfaces
type Memory struct {
	mu           sync.RWMutex
	portfolios   map[string]*domain.Portfolio
	transactions map[string][]domain.Transaction
	snapshots    map[string][]domain.PortfolioSnapshot
	assets       map[string]domain.Asset
	benchmarks   map[string][]float64
}

// NewMemory creates an empty in-memory provider
func NewMemory() *Memory {
	return &Memory{
		portfolios:   make(map[string]*domain.Portfolio),
		transactions: make(map[string][]domain.Transaction),
		snapshots:    make(map[string][]domain.PortfolioSnapshot),
		assets:       make(map[string]domain.Asset),
		benchmarks:   make(map[string][]float64),
	}
}

// PutPortfolio stores or replaces a portfolio
func (m *Memory) PutPortfolio(p *domain.Portfolio) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.portfolios[p.ID] = p
}

// PutTransactions replaces a portfolio's transaction history, oldest first
func (m *Memory) PutTransactions(portfolioID string, txs []domain.Transaction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transactions[portfolioID] = txs
}

// PutSnapshots replaces a portfolio's value history. Snapshots are kept in
// date order regardless of input order.
func (m *Memory) PutSnapshots(portfolioID string, snaps []domain.PortfolioSnapshot) {
	sorted := make([]domain.PortfolioSnapshot, len(snaps))
	copy(sorted, snaps)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[portfolioID] = sorted
}

// PutAsset stores or replaces an asset snapshot
func (m *Memory) PutAsset(a domain.Asset) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assets[a.ID] = a
}

// PutBenchmark stores a benchmark's daily return series
func (m *Memory) PutBenchmark(symbol string, returns []float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.benchmarks[symbol] = returns
}

// GetPortfolio implements domain.PortfolioDataProvider
func (m *Memory) GetPortfolio(ctx context.Context, portfolioID string) (*domain.Portfolio, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.portfolios[portfolioID]
	if !ok {
		return nil, domain.ErrPortfolioNotFound
	}
	return p, nil
}

// GetTransactions implements domain.PortfolioDataProvider
func (m *Memory) GetTransactions(ctx context.Context, portfolioID string) ([]domain.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.transactions[portfolioID], nil
}

// GetSnapshots implements domain.PortfolioDataProvider
func (m *Memory) GetSnapshots(ctx context.Context, portfolioID string) ([]domain.PortfolioSnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshots[portfolioID], nil
}

// GetAssets implements domain.MarketDataProvider. Unknown IDs are omitted.
func (m *Memory) GetAssets(ctx context.Context, assetIDs []string) ([]domain.Asset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	assets := make([]domain.Asset, 0, len(assetIDs))
	for _, id := range assetIDs {
		if a, ok := m.assets[id]; ok {
			assets = append(assets, a)
		}
	}
	return assets, nil
}

// GetBenchmarkReturns implements domain.MarketDataProvider
func (m *Memory) GetBenchmarkReturns(ctx context.Context, symbol string) ([]float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.benchmarks[symbol], nil
}

// FindAssetsBySector implements domain.MarketDataProvider. Candidates are
// ordered by market cap, largest first.
func (m *Memory) FindAssetsBySector(ctx context.Context, sector string) ([]domain.Asset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var assets []domain.Asset
	for _, a := range m.assets {
		if a.Sector == sector {
			assets = append(assets, a)
		}
	}
	sort.Slice(assets, func(i, j int) bool { return assets[i].MarketCap > assets[j].MarketCap })
	return assets, nil
}
