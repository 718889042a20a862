package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miowsis/analytics/internal/database"
	"github.com/miowsis/analytics/internal/domain"
	"github.com/miowsis/analytics/internal/modules/allocation"
	"github.com/miowsis/analytics/internal/modules/analytics"
	"github.com/miowsis/analytics/internal/modules/esg"
	"github.com/miowsis/analytics/internal/modules/performance"
	"github.com/miowsis/analytics/internal/modules/profile"
	"github.com/miowsis/analytics/internal/modules/rebalancing"
	"github.com/miowsis/analytics/internal/modules/risk"
	"github.com/miowsis/analytics/internal/modules/stress"
	"github.com/miowsis/analytics/internal/providers"
)

func newTestServer(t *testing.T) (*Server, *providers.Memory) {
	t.Helper()

	log := zerolog.Nop()

	db, err := database.New(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	store := providers.NewMemory()
	profiles := profile.NewRepository(db.Conn(), log)

	allocationSvc := allocation.NewService(log)
	performanceSvc := performance.NewService(store, store, "SPY", 2.0, log)
	esgSvc := esg.NewService(log)
	riskSvc := risk.NewService(store, store, profiles, "SPY", log)
	stressSvc := stress.NewService(store, nil, 100, log)
	rebalancingSvc := rebalancing.NewService(store, store, profiles, log)
	analyticsSvc := analytics.NewService(store, allocationSvc, performanceSvc, esgSvc, riskSvc, stressSvc, rebalancingSvc, log)

	srv := New(Config{
		Log:         log,
		Port:        0,
		DB:          db,
		Profiles:    profiles,
		Analytics:   analyticsSvc,
		Risk:        riskSvc,
		Stress:      stressSvc,
		Rebalancing: rebalancingSvc,
	})
	return srv, store
}

func seedPortfolio(store *providers.Memory) {
	store.PutPortfolio(&domain.Portfolio{
		ID:            "p1",
		OwnerID:       "u1",
		Name:          "Main",
		TotalInvested: 900,
		CreatedAt:     time.Now().AddDate(-1, 0, 0),
		Holdings: []domain.Holding{
			{
				AssetID: "a1",
				Asset: domain.Asset{
					ID: "a1", Symbol: "AAPL", Type: domain.AssetTypeStock,
					Sector: "Technology", CurrentPrice: 700, Volume: 5e6, MarketCap: 1e12,
					ESG: domain.ESGScores{Environmental: 70, Social: 75, Governance: 80, Composite: 75},
				},
				Quantity: 1, AverageCost: 600,
			},
			{
				AssetID: "a2",
				Asset: domain.Asset{
					ID: "a2", Symbol: "VHYL", Type: domain.AssetTypeETF,
					Sector: "Diversified", CurrentPrice: 300, Volume: 2e6, MarketCap: 5e9,
					ESG: domain.ESGScores{Environmental: 60, Social: 65, Governance: 70, Composite: 65},
				},
				Quantity: 1, AverageCost: 300,
			},
		},
	})
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}

func TestAnalyticsEndpoint(t *testing.T) {
	srv, store := newTestServer(t)
	seedPortfolio(store)

	req := httptest.NewRequest(http.MethodGet, "/api/portfolios/p1/analytics?user_id=u1", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var report analytics.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, "p1", report.PortfolioID)
	assert.InDelta(t, 70.0, report.Allocation.Concentration.LargestHoldingPercentage, 1e-9)
	assert.Equal(t, risk.LevelHigh, report.Risk.Concentration.Level)
}

func TestAnalyticsEndpointNotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/portfolios/ghost/analytics", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProfileRoundTrip(t *testing.T) {
	srv, _ := newTestServer(t)

	body := bytes.NewBufferString(`{"risk_tolerance":"aggressive","investment_horizon":"long"}`)
	req := httptest.NewRequest(http.MethodPut, "/api/users/u1/profile", body)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/users/u1/profile", nil)
	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var profile domain.RiskProfile
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &profile))
	assert.Equal(t, domain.ToleranceAggressive, profile.Tolerance)
	assert.Equal(t, "long", profile.InvestmentHorizon)
}

func TestLimitsRoundTrip(t *testing.T) {
	srv, store := newTestServer(t)
	seedPortfolio(store)

	body := bytes.NewBufferString(`{"limits":[{"limit_type":"position","metric":"AAPL","operator":"greater_than","value":25,"action":"alert","enabled":true}]}`)
	req := httptest.NewRequest(http.MethodPut, "/api/users/u1/limits", body)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	// The 70% AAPL position violates the stored limit
	req = httptest.NewRequest(http.MethodGet, "/api/portfolios/p1/violations?user_id=u1", nil)
	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Violations []rebalancing.Violation `json:"violations"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Violations, 1)
	assert.Equal(t, "AAPL", resp.Violations[0].Metric)
}

func TestStressEndpoints(t *testing.T) {
	srv, store := newTestServer(t)
	seedPortfolio(store)

	req := httptest.NewRequest(http.MethodGet, "/api/portfolios/p1/stress-tests", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var report stress.TestReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Len(t, report.Results, 3)

	req = httptest.NewRequest(http.MethodGet, "/api/portfolios/p1/projections", nil)
	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCompareEndpointValidation(t *testing.T) {
	srv, _ := newTestServer(t)

	body := bytes.NewBufferString(`{"portfolio_ids":["p1"]}`)
	req := httptest.NewRequest(http.MethodPost, "/api/portfolios/compare", body)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
