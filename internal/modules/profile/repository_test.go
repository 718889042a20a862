package profile

import (
	"context"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miowsis/analytics/internal/database"
	"github.com/miowsis/analytics/internal/domain"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()

	db, err := database.New(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewRepository(db.Conn(), zerolog.Nop())
}

func TestGetProfileMissing(t *testing.T) {
	repo := newTestRepository(t)

	profile, err := repo.GetProfile(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Nil(t, profile)
}

func TestSaveAndGetProfile(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	profile := &domain.RiskProfile{
		UserID:            "u1",
		Tolerance:         domain.ToleranceAggressive,
		InvestmentHorizon: "long",
		ExperienceLevel:   "advanced",
		Age:               34,
		ExcludedSectors:   []string{"Energy"},
	}
	require.NoError(t, repo.SaveProfile(ctx, profile))

	loaded, err := repo.GetProfile(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, domain.ToleranceAggressive, loaded.Tolerance)
	assert.Equal(t, "long", loaded.InvestmentHorizon)
	assert.Equal(t, 34, loaded.Age)
	assert.Equal(t, []string{"Energy"}, loaded.ExcludedSectors)
}

func TestSaveProfileUpsert(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.SaveProfile(ctx, &domain.RiskProfile{UserID: "u1", Tolerance: domain.ToleranceModerate}))
	require.NoError(t, repo.SaveProfile(ctx, &domain.RiskProfile{UserID: "u1", Tolerance: domain.ToleranceConservative}))

	loaded, err := repo.GetProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.ToleranceConservative, loaded.Tolerance)
}

func TestSaveProfileRequiresUserID(t *testing.T) {
	repo := newTestRepository(t)

	err := repo.SaveProfile(context.Background(), &domain.RiskProfile{})
	assert.Error(t, err)
}

func TestReplaceAndGetLimits(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	limits := []domain.RiskLimit{
		{Type: domain.LimitPosition, Metric: "AAPL", Operator: domain.OperatorGreaterThan, Value: 25, Action: domain.ActionAlert, Enabled: true},
		{Type: domain.LimitVolatility, Metric: "volatility_1y", Operator: domain.OperatorGreaterThan, Value: 30, Action: domain.ActionRebalance, Enabled: false},
	}

	replaced, err := repo.ReplaceLimits(ctx, "u1", limits)
	require.NoError(t, err)
	require.Len(t, replaced, 2)
	assert.NotEmpty(t, replaced[0].ID)
	assert.NotEmpty(t, replaced[1].ID)
	assert.Equal(t, "u1", replaced[0].UserID)

	all, err := repo.GetLimits(ctx, "u1", false)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, domain.LimitPosition, all[0].Type)
	assert.Equal(t, 25.0, all[0].Value)

	enabled, err := repo.GetLimits(ctx, "u1", true)
	require.NoError(t, err)
	require.Len(t, enabled, 1)
	assert.Equal(t, domain.LimitPosition, enabled[0].Type)
}

func TestReplaceLimitsSwapsAtomically(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	first := []domain.RiskLimit{
		{Type: domain.LimitPosition, Operator: domain.OperatorGreaterThan, Value: 25, Action: domain.ActionAlert, Enabled: true},
	}
	_, err := repo.ReplaceLimits(ctx, "u1", first)
	require.NoError(t, err)

	second := []domain.RiskLimit{
		{Type: domain.LimitVaR, Metric: "var_95", Operator: domain.OperatorGreaterThan, Value: 5, Action: domain.ActionAlert, Enabled: true},
		{Type: domain.LimitSector, Metric: "Technology", Operator: domain.OperatorGreaterThan, Value: 40, Action: domain.ActionAlert, Enabled: true},
	}
	_, err = repo.ReplaceLimits(ctx, "u1", second)
	require.NoError(t, err)

	all, err := repo.GetLimits(ctx, "u1", false)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, domain.LimitVaR, all[0].Type)
	assert.Equal(t, domain.LimitSector, all[1].Type)
}

func TestReplaceLimitsEmptyClearsAll(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	_, err := repo.ReplaceLimits(ctx, "u1", []domain.RiskLimit{
		{Type: domain.LimitPosition, Operator: domain.OperatorGreaterThan, Value: 25, Action: domain.ActionAlert, Enabled: true},
	})
	require.NoError(t, err)

	_, err = repo.ReplaceLimits(ctx, "u1", nil)
	require.NoError(t, err)

	all, err := repo.GetLimits(ctx, "u1", false)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestLimitsAreScopedByUser(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	_, err := repo.ReplaceLimits(ctx, "u1", []domain.RiskLimit{
		{Type: domain.LimitPosition, Operator: domain.OperatorGreaterThan, Value: 25, Action: domain.ActionAlert, Enabled: true},
	})
	require.NoError(t, err)

	other, err := repo.GetLimits(ctx, "u2", false)
	require.NoError(t, err)
	assert.Empty(t, other)
}
