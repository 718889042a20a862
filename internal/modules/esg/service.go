// Package esg scores a portfolio's environmental, social and governance
// profile and derives impact estimates and sustainability recommendations.
package esg

import (
	"fmt"
	"math"
	"sort"

	"github.com/rs/zerolog"

	"github.com/miowsis/analytics/internal/domain"
)

// A holding counts as sustainable when its composite score reaches this
const sustainableThreshold = 70.0

// Number of ranked holdings reported at each end of the ESG scale
const rankedHoldings = 5

// Share of a portfolio's carbon footprint assumed offset through fund-level
// offset programs
const carbonOffsetShare = 0.1

// Impact holds rough real-world impact estimates derived from portfolio
// value and ESG sub-scores. These are heuristic approximations, not audited
// figures.
type Impact struct {
	CO2SavedTons        float64 `json:"co2_saved_tons"`
	RenewableEnergyMWh  float64 `json:"renewable_energy_mwh"`
	JobsCreated         int     `json:"jobs_created"`
	CarbonFootprintTons float64 `json:"carbon_footprint_tons"`
	CarbonOffsetTons    float64 `json:"carbon_offset_tons"`
	NetCarbonTons       float64 `json:"net_carbon_tons"`
}

// HoldingScore is one holding's ESG standing within the portfolio
type HoldingScore struct {
	Symbol string           `json:"symbol"`
	Name   string           `json:"name"`
	Scores domain.ESGScores `json:"esg_scores"`
}

// RecommendationType classifies a sustainability recommendation
type RecommendationType string

const (
	RecommendDivest  RecommendationType = "divest"
	RecommendImprove RecommendationType = "improve"
	RecommendInvest  RecommendationType = "invest"
)

// Recommendation is a single actionable sustainability suggestion
type Recommendation struct {
	Type   RecommendationType `json:"type"`
	Symbol string             `json:"symbol"`
	Reason string             `json:"reason"`
}

// Analysis is the full ESG summary for a portfolio
type Analysis struct {
	Scores                ESGScores        `json:"scores"`
	SustainablePercentage float64          `json:"sustainable_percentage"`
	Impact                Impact           `json:"impact"`
	GovernanceRating      string           `json:"governance_rating"`
	TopHoldings           []HoldingScore   `json:"top_esg_holdings"`
	BottomHoldings        []HoldingScore   `json:"bottom_esg_holdings"`
	Recommendations       []Recommendation `json:"recommendations"`
}

// ESGScores mirrors the per-asset score shape at portfolio level, where
// every component is value-weighted across holdings
type ESGScores struct {
	Environmental float64 `json:"environmental"`
	Social        float64 `json:"social"`
	Governance    float64 `json:"governance"`
	Composite     float64 `json:"composite"`
}

// Service computes portfolio-level ESG analytics
type Service struct {
	log zerolog.Logger
}

// NewService creates a new ESG service
func NewService(log zerolog.Logger) *Service {
	return &Service{
		log: log.With().Str("service", "esg").Logger(),
	}
}

// Analyze produces the ESG summary for the given holdings. An empty
// portfolio yields zero scores and no recommendations.
func (s *Service) Analyze(holdings []domain.Holding) Analysis {
	totalValue := 0.0
	for _, h := range holdings {
		totalValue += h.MarketValue()
	}
	if totalValue <= 0 {
		return Analysis{GovernanceRating: governanceRating(0)}
	}

	var scores ESGScores
	sustainableValue := 0.0
	var impact Impact

	for _, h := range holdings {
		value := h.MarketValue()
		weight := value / totalValue
		esg := h.Asset.ESG

		scores.Environmental += esg.Environmental * weight
		scores.Social += esg.Social * weight
		scores.Governance += esg.Governance * weight
		scores.Composite += esg.Composite * weight

		if esg.Composite >= sustainableThreshold {
			sustainableValue += value
		}

		impact.CO2SavedTons += value * 0.0001 * (esg.Environmental / 100)
		impact.RenewableEnergyMWh += value * 0.05 * (esg.Environmental / 100) / 1000
		impact.JobsCreated += int(math.Floor(value * 0.00001 * (esg.Social / 100)))
		impact.CarbonFootprintTons += esg.CarbonFootprint * h.Quantity
	}

	impact.CarbonOffsetTons = impact.CarbonFootprintTons * carbonOffsetShare
	impact.NetCarbonTons = impact.CarbonFootprintTons - impact.CarbonOffsetTons

	top, bottom := rankByComposite(holdings)

	return Analysis{
		Scores:                scores,
		SustainablePercentage: sustainableValue / totalValue * 100,
		Impact:                impact,
		GovernanceRating:      governanceRating(scores.Governance),
		TopHoldings:           top,
		BottomHoldings:        bottom,
		Recommendations:       s.recommendations(holdings, scores.Composite),
	}
}

// rankByComposite returns the portfolio's best and worst scorers. Both lists
// run from best to worst, so the bottom list ends with the poorest holding.
func rankByComposite(holdings []domain.Holding) (top, bottom []HoldingScore) {
	ranked := make([]HoldingScore, len(holdings))
	for i, h := range holdings {
		ranked[i] = HoldingScore{
			Symbol: h.Asset.Symbol,
			Name:   h.Asset.Name,
			Scores: h.Asset.ESG,
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Scores.Composite > ranked[j].Scores.Composite
	})

	n := len(ranked)
	topN := rankedHoldings
	if topN > n {
		topN = n
	}
	top = ranked[:topN]
	bottomN := rankedHoldings
	if bottomN > n {
		bottomN = n
	}
	bottom = ranked[n-bottomN:]
	return top, bottom
}

// recommendations suggests divesting the worst scorers, engaging with
// mid-range ones and adding a sustainable fund when the overall composite
// is below the sustainability threshold.
func (s *Service) recommendations(holdings []domain.Holding, composite float64) []Recommendation {
	sorted := make([]domain.Holding, len(holdings))
	copy(sorted, holdings)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Asset.ESG.Composite < sorted[j].Asset.ESG.Composite
	})

	var recs []Recommendation

	divested := 0
	for _, h := range sorted {
		if divested >= 2 || h.Asset.ESG.Composite >= 50 {
			break
		}
		recs = append(recs, Recommendation{
			Type:   RecommendDivest,
			Symbol: h.Asset.Symbol,
			Reason: fmt.Sprintf("%s has a low ESG score of %.0f, consider divesting", h.Asset.Symbol, h.Asset.ESG.Composite),
		})
		divested++
	}

	improved := 0
	for _, h := range sorted {
		if improved >= 2 {
			break
		}
		score := h.Asset.ESG.Composite
		if score < 50 || score >= sustainableThreshold {
			continue
		}
		recs = append(recs, Recommendation{
			Type:   RecommendImprove,
			Symbol: h.Asset.Symbol,
			Reason: fmt.Sprintf("%s scores %.0f, watch for ESG improvement or engage via voting", h.Asset.Symbol, score),
		})
		improved++
	}

	if composite < sustainableThreshold {
		recs = append(recs, Recommendation{
			Type:   RecommendInvest,
			Symbol: "ICLN",
			Reason: "Add a clean energy ETF to raise the portfolio's overall ESG score",
		})
	}

	return recs
}

func governanceRating(score float64) string {
	switch {
	case score >= 80:
		return "excellent"
	case score >= 70:
		return "good"
	case score >= 60:
		return "fair"
	case score >= 50:
		return "poor"
	default:
		return "very_poor"
	}
}
