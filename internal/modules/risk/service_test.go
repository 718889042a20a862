package risk

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miowsis/analytics/internal/domain"
)

type fakeData struct {
	portfolio *domain.Portfolio
	snapshots []domain.PortfolioSnapshot
}

func (f *fakeData) GetPortfolio(ctx context.Context, id string) (*domain.Portfolio, error) {
	if f.portfolio == nil {
		return nil, domain.ErrPortfolioNotFound
	}
	return f.portfolio, nil
}

func (f *fakeData) GetTransactions(ctx context.Context, id string) ([]domain.Transaction, error) {
	return nil, nil
}

func (f *fakeData) GetSnapshots(ctx context.Context, id string) ([]domain.PortfolioSnapshot, error) {
	return f.snapshots, nil
}

type fakeMarket struct {
	benchmark []float64
}

func (f *fakeMarket) GetAssets(ctx context.Context, ids []string) ([]domain.Asset, error) {
	return nil, nil
}

func (f *fakeMarket) GetBenchmarkReturns(ctx context.Context, symbol string) ([]float64, error) {
	return f.benchmark, nil
}

func (f *fakeMarket) FindAssetsBySector(ctx context.Context, sector string) ([]domain.Asset, error) {
	return nil, nil
}

type fakeProfiles struct {
	profile *domain.RiskProfile
}

func (f *fakeProfiles) GetProfile(ctx context.Context, userID string) (*domain.RiskProfile, error) {
	return f.profile, nil
}

func (f *fakeProfiles) SaveProfile(ctx context.Context, profile *domain.RiskProfile) error {
	return nil
}

func (f *fakeProfiles) GetLimits(ctx context.Context, userID string, enabledOnly bool) ([]domain.RiskLimit, error) {
	return nil, nil
}

func (f *fakeProfiles) ReplaceLimits(ctx context.Context, userID string, limits []domain.RiskLimit) ([]domain.RiskLimit, error) {
	return limits, nil
}

func holding(symbol string, typ domain.AssetType, sector string, value, volume, marketCap float64) domain.Holding {
	return domain.Holding{
		AssetID: symbol,
		Asset: domain.Asset{
			ID:           symbol,
			Symbol:       symbol,
			Type:         typ,
			Sector:       sector,
			CurrentPrice: value,
			Volume:       volume,
			MarketCap:    marketCap,
		},
		Quantity:    1,
		AverageCost: value,
	}
}

func newTestService(data *fakeData, profiles *fakeProfiles) *Service {
	return NewService(data, &fakeMarket{}, profiles, "SPY", zerolog.Nop())
}

func TestAssessPortfolioNotFound(t *testing.T) {
	svc := newTestService(&fakeData{}, &fakeProfiles{})

	_, err := svc.AssessPortfolio(context.Background(), "missing", "u1")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPortfolioNotFound)
}

func TestConcentrationLevels(t *testing.T) {
	svc := newTestService(&fakeData{}, &fakeProfiles{})

	tests := []struct {
		name   string
		values []float64
		level  Level
	}{
		{"dominant single holding", []float64{70, 10, 10, 10}, LevelHigh},
		{"moderate top holding", []float64{30, 10, 10, 10, 10, 10, 10, 10}, LevelMedium},
		{"even spread", []float64{10, 10, 10, 10, 10, 10, 10, 10, 10, 10}, LevelLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			holdings := make([]domain.Holding, len(tt.values))
			total := 0.0
			for i, v := range tt.values {
				holdings[i] = holding(string(rune('A'+i)), domain.AssetTypeStock, "Technology", v, 1e6, 1e9)
				total += v
			}

			risk := svc.concentrationRisk(holdings, total)
			assert.Equal(t, tt.level, risk.Level)
		})
	}
}

func TestConcentrationViolations(t *testing.T) {
	svc := newTestService(&fakeData{}, &fakeProfiles{})

	holdings := []domain.Holding{
		holding("BIG", domain.AssetTypeStock, "Technology", 70, 1e6, 1e9),
		holding("SML", domain.AssetTypeStock, "Healthcare", 30, 1e6, 1e9),
	}

	risk := svc.concentrationRisk(holdings, 100)

	require.Len(t, risk.Violations, 2)
	assert.Contains(t, risk.Violations[0], "BIG")
	assert.Contains(t, risk.Violations[1], "SML")
}

func TestLiquidityRisk(t *testing.T) {
	svc := newTestService(&fakeData{}, &fakeProfiles{})

	holdings := []domain.Holding{
		holding("LIQ", domain.AssetTypeStock, "Technology", 60, 5e6, 1e9),
		holding("COIN", domain.AssetTypeCrypto, "", 25, 2e6, 500_000), // micro-cap crypto
		holding("THIN", domain.AssetTypeStock, "Energy", 15, 50_000, 1e9),
	}

	risk := svc.liquidityRisk(holdings, 100)

	assert.InDelta(t, 40.0, risk.IlliquidPercentage, 1e-9)
	assert.Equal(t, LevelHigh, risk.Level)
	assert.InDelta(t, 4.0, risk.EstLiquidationDays, 1e-9)
	require.Len(t, risk.IlliquidHoldings, 2)
	assert.Equal(t, 7.0, risk.IlliquidHoldings[0].DaysToLiquidate)
	assert.Equal(t, 5.0, risk.IlliquidHoldings[1].DaysToLiquidate)
	assert.InDelta(t, (5e6+2e6+50_000)/3, risk.AverageDailyVolume, 1e-3)
}

func TestSectorRisk(t *testing.T) {
	svc := newTestService(&fakeData{}, &fakeProfiles{})

	holdings := []domain.Holding{
		holding("T1", domain.AssetTypeStock, "Technology", 60, 1e6, 1e9),
		holding("H1", domain.AssetTypeStock, "Healthcare", 25, 1e6, 1e9),
		holding("X1", domain.AssetTypeStock, "", 15, 1e6, 1e9),
	}

	risk := svc.sectorRisk(holdings, 100)

	require.Len(t, risk.Exposures, 3)
	assert.Equal(t, "Technology", risk.Exposures[0].Sector)
	assert.InDelta(t, 50.0, risk.Exposures[0].Deviation, 1e-9)
	assert.Equal(t, []string{"Technology"}, risk.ConcentratedSectors)
	// 3 sectors * 10 + (100 - 60)
	assert.InDelta(t, 70.0, risk.DiversificationScore, 1e-9)
}

func TestOverallScoreAndCategory(t *testing.T) {
	svc := newTestService(&fakeData{}, &fakeProfiles{})

	a := &Assessment{
		Concentration: ConcentrationRisk{Level: LevelHigh},
		Liquidity:     LiquidityRisk{Level: LevelLow},
		Market:        MarketRisk{Beta: 1.4},
		Sector:        SectorRisk{DiversificationScore: 70},
		Volatility:    30,
	}

	score := svc.overallScore(a)

	// 80*.25 + 60*.30 + 10*.15 + 20*.20 + 30*.10 = 46.5
	assert.InDelta(t, 46.5, score, 1e-9)
	assert.Equal(t, CategoryMedium, categorize(score))
	assert.Equal(t, CategoryLow, categorize(10))
	assert.Equal(t, CategoryHigh, categorize(60))
	assert.Equal(t, CategoryVeryHigh, categorize(80))
}

func TestAssessPortfolioAlignmentAndAlerts(t *testing.T) {
	holdings := []domain.Holding{
		holding("BIG", domain.AssetTypeStock, "Technology", 70, 1e6, 1e9),
		holding("SML", domain.AssetTypeStock, "Healthcare", 30, 1e6, 1e9),
	}
	data := &fakeData{
		portfolio: &domain.Portfolio{ID: "p1", OwnerID: "u1", Holdings: holdings},
	}
	profiles := &fakeProfiles{
		profile: &domain.RiskProfile{UserID: "u1", Tolerance: domain.ToleranceConservative},
	}
	svc := newTestService(data, profiles)

	a, err := svc.AssessPortfolio(context.Background(), "p1", "u1")
	require.NoError(t, err)

	require.NotNil(t, a.Alignment)
	assert.Equal(t, 25.0, a.Alignment.TargetScore)
	assert.Equal(t, a.OverallScore, a.Alignment.ActualScore)

	// Concentration is high, so at least the concentration warning fires
	var found bool
	for _, alert := range a.Alerts {
		if alert.Type == "concentration" {
			found = true
			assert.Equal(t, SeverityWarning, alert.Severity)
			assert.NotEmpty(t, alert.ID)
			assert.Equal(t, "High concentration risk detected", alert.Title)
			assert.Contains(t, alert.ActionRequired, "diversifying")
		}
	}
	assert.True(t, found)
}

func TestAssessPortfolioNoProfileDefaultsAlignment(t *testing.T) {
	data := &fakeData{
		portfolio: &domain.Portfolio{ID: "p1", OwnerID: "u1"},
	}
	svc := newTestService(data, &fakeProfiles{})

	a, err := svc.AssessPortfolio(context.Background(), "p1", "u1")
	require.NoError(t, err)

	require.NotNil(t, a.Alignment)
	assert.Equal(t, 50.0, a.Alignment.Score)
	assert.Empty(t, a.Alignment.Findings)
	assert.Empty(t, a.Alignment.Recommendations)

	// No declared profile means no mismatch alert either
	for _, alert := range a.Alerts {
		assert.NotEqual(t, "profile_mismatch", alert.Type)
	}
}

func TestAlignmentScoring(t *testing.T) {
	svc := newTestService(&fakeData{}, &fakeProfiles{})

	profile := &domain.RiskProfile{Tolerance: domain.ToleranceModerate}

	perfect := svc.alignment(profile, 50)
	assert.Equal(t, 100.0, perfect.Score)
	assert.Empty(t, perfect.Findings)
	assert.Empty(t, perfect.Recommendations)

	drifted := svc.alignment(profile, 80)
	assert.Equal(t, 40.0, drifted.Score)
	require.Len(t, drifted.Findings, 1)
	assert.Contains(t, drifted.Findings[0], "above")
	require.Len(t, drifted.Recommendations, 2)
	assert.Contains(t, drifted.Recommendations[0], "reducing exposure")

	timid := svc.alignment(profile, 20)
	require.Len(t, timid.Recommendations, 2)
	assert.Contains(t, timid.Recommendations[0], "increasing equity")
}

func TestMarketRiskCorrelation(t *testing.T) {
	snapshots := make([]domain.PortfolioSnapshot, 0, 21)
	value := 1000.0
	benchmark := make([]float64, 0, 20)
	for i := 0; i < 21; i++ {
		snapshots = append(snapshots, domain.PortfolioSnapshot{TotalValue: value})
		if i%2 == 0 {
			value *= 1.01
		} else {
			value *= 0.995
		}
	}
	// Benchmark moves in the same phase at half the amplitude
	for i := 0; i < 20; i++ {
		if i%2 == 0 {
			benchmark = append(benchmark, 0.005)
		} else {
			benchmark = append(benchmark, -0.0025)
		}
	}

	svc := NewService(&fakeData{}, &fakeMarket{benchmark: benchmark}, &fakeProfiles{}, "SPY", zerolog.Nop())

	risk := svc.marketRisk(context.Background(), snapshots)

	assert.InDelta(t, 1.0, risk.Correlation, 1e-6)
	assert.Greater(t, risk.Beta, 1.0)
}

func TestMarketRiskNoHistoryDefaults(t *testing.T) {
	svc := newTestService(&fakeData{}, &fakeProfiles{})

	risk := svc.marketRisk(context.Background(), nil)

	assert.Equal(t, 1.0, risk.Beta)
	assert.Equal(t, 0.0, risk.Correlation)
}
