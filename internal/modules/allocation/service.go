// Package allocation analyzes how portfolio value is distributed across
// asset types, sectors and regions, and scores concentration and
// diversification.
package allocation

import (
	"sort"

	"github.com/rs/zerolog"

	"github.com/miowsis/analytics/internal/domain"
)

// Group represents aggregated exposure to a single classification bucket
type Group struct {
	Name       string  `json:"name"`
	Value      float64 `json:"value"`
	Percentage float64 `json:"percentage"`
	Count      int     `json:"count"`
}

// TopHolding is a single position in the top-holdings list with its
// unrealized performance
type TopHolding struct {
	AssetID     string  `json:"asset_id"`
	Symbol      string  `json:"symbol"`
	Name        string  `json:"name"`
	Value       float64 `json:"value"`
	Percentage  float64 `json:"percentage"`
	Performance float64 `json:"performance"` // unrealized gain vs cost basis, percent
}

// Concentration holds top-N exposure metrics
type Concentration struct {
	Top5Percentage           float64 `json:"top5_percentage"`
	Top10Percentage          float64 `json:"top10_percentage"`
	LargestHoldingPercentage float64 `json:"largest_holding_percentage"`
}

// Analysis is the full allocation breakdown for a portfolio
type Analysis struct {
	ByAssetType   []Group       `json:"by_asset_type"`
	BySector      []Group       `json:"by_sector"`
	ByRegion      []Group       `json:"by_region"`
	TopHoldings   []TopHolding  `json:"top_holdings"`
	Concentration Concentration `json:"concentration"`
}

// Diversification scores how evenly value is spread across the three
// classification dimensions, 0-100
type Diversification struct {
	Overall             float64  `json:"overall"`
	AssetTypeDiversity  float64  `json:"asset_type_diversity"`
	SectorDiversity     float64  `json:"sector_diversity"`
	GeographicDiversity float64  `json:"geographic_diversity"`
	Recommendations     []string `json:"recommendations"`
}

// dimension identifies a grouping axis. Accessors are explicit typed
// functions rather than string field paths, so an unknown dimension is a
// compile-time error.
type dimension int

const (
	dimAssetType dimension = iota
	dimSector
	dimRegion
)

// otherBucket collects holdings with a missing classification
const otherBucket = "Other"

var accessors = map[dimension]func(domain.Asset) string{
	dimAssetType: func(a domain.Asset) string { return string(a.Type) },
	dimSector:    func(a domain.Asset) string { return a.Sector },
	dimRegion:    func(a domain.Asset) string { return a.Region },
}

// Diversity weights per dimension; sector concentration dominates the
// overall score.
const (
	weightAssetType = 0.3
	weightSector    = 0.4
	weightRegion    = 0.3
)

// Service computes allocation breakdowns and diversification scores
type Service struct {
	log zerolog.Logger
}

// NewService creates a new allocation service
func NewService(log zerolog.Logger) *Service {
	return &Service{
		log: log.With().Str("service", "allocation").Logger(),
	}
}

// Analyze aggregates holdings into grouped breakdowns, top holdings and
// concentration metrics. An empty portfolio yields a fully-shaped result
// with zeroed figures.
func (s *Service) Analyze(holdings []domain.Holding) Analysis {
	totalValue := 0.0
	for _, h := range holdings {
		totalValue += h.MarketValue()
	}

	analysis := Analysis{
		ByAssetType: s.groupBy(holdings, dimAssetType, totalValue),
		BySector:    s.groupBy(holdings, dimSector, totalValue),
		ByRegion:    s.groupBy(holdings, dimRegion, totalValue),
	}

	// Top holdings by value, with unrealized performance
	tops := make([]TopHolding, 0, len(holdings))
	for _, h := range holdings {
		value := h.MarketValue()
		cost := h.CostBasis()
		performance := 0.0
		if cost > 0 {
			performance = (value - cost) / cost * 100
		}
		tops = append(tops, TopHolding{
			AssetID:     h.AssetID,
			Symbol:      h.Asset.Symbol,
			Name:        h.Asset.Name,
			Value:       value,
			Percentage:  pct(value, totalValue),
			Performance: performance,
		})
	}
	sort.Slice(tops, func(i, j int) bool { return tops[i].Value > tops[j].Value })

	analysis.Concentration = Concentration{
		Top5Percentage:  sumPercentage(tops, 5),
		Top10Percentage: sumPercentage(tops, 10),
	}
	if len(tops) > 0 {
		analysis.Concentration.LargestHoldingPercentage = tops[0].Percentage
	}
	if len(tops) > 10 {
		tops = tops[:10]
	}
	analysis.TopHoldings = tops

	return analysis
}

// Score computes Herfindahl-style diversity per dimension and blends them
// into a single 0-100 figure. An empty portfolio scores 0 with a
// recommendation to add holdings.
func (s *Service) Score(holdings []domain.Holding) Diversification {
	if len(holdings) == 0 {
		return Diversification{
			Recommendations: []string{"Add holdings to your portfolio to improve diversification"},
		}
	}

	totalValue := 0.0
	for _, h := range holdings {
		totalValue += h.MarketValue()
	}

	assetType := s.diversityScore(holdings, dimAssetType, totalValue)
	sector := s.diversityScore(holdings, dimSector, totalValue)
	region := s.diversityScore(holdings, dimRegion, totalValue)

	overall := assetType*weightAssetType + sector*weightSector + region*weightRegion

	return Diversification{
		Overall:             overall,
		AssetTypeDiversity:  assetType,
		SectorDiversity:     sector,
		GeographicDiversity: region,
		Recommendations:     s.recommendations(holdings, overall),
	}
}

// groupBy aggregates holding values along one classification dimension,
// bucketing missing classifications under "Other". Groups come back sorted
// by value descending.
func (s *Service) groupBy(holdings []domain.Holding, dim dimension, totalValue float64) []Group {
	access := accessors[dim]
	values := make(map[string]float64)
	counts := make(map[string]int)

	for _, h := range holdings {
		key := access(h.Asset)
		if key == "" {
			key = otherBucket
		}
		values[key] += h.MarketValue()
		counts[key]++
	}

	groups := make([]Group, 0, len(values))
	for name, value := range values {
		groups = append(groups, Group{
			Name:       name,
			Value:      value,
			Percentage: pct(value, totalValue),
			Count:      counts[name],
		})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Value > groups[j].Value })

	return groups
}

// diversityScore converts the Herfindahl index of group weights into a
// 0-100 diversity figure: evenly spread weights approach 100, a single
// dominant group approaches 0.
func (s *Service) diversityScore(holdings []domain.Holding, dim dimension, totalValue float64) float64 {
	if totalValue <= 0 {
		return 0
	}

	access := accessors[dim]
	values := make(map[string]float64)
	for _, h := range holdings {
		key := access(h.Asset)
		if key == "" {
			key = otherBucket
		}
		values[key] += h.MarketValue()
	}

	hhi := 0.0
	for _, value := range values {
		share := value / totalValue
		hhi += share * share
	}

	return (1 - hhi) * 100
}

func (s *Service) recommendations(holdings []domain.Holding, overall float64) []string {
	assetTypes := uniqueCount(holdings, dimAssetType)
	sectors := uniqueCount(holdings, dimSector)
	regions := uniqueCount(holdings, dimRegion)

	var recs []string
	if assetTypes < 3 {
		recs = append(recs, "Consider spreading across more asset types (stocks, ETFs, bonds)")
	}
	if sectors < 5 {
		recs = append(recs, "Add exposure to more sectors to reduce sector concentration")
	}
	if regions < 3 {
		recs = append(recs, "Increase geographic diversification beyond your current regions")
	}
	if overall < 40 && len(recs) == 0 {
		recs = append(recs, "Rebalance toward more even position sizes to improve diversification")
	}
	return recs
}

func uniqueCount(holdings []domain.Holding, dim dimension) int {
	access := accessors[dim]
	seen := make(map[string]bool)
	for _, h := range holdings {
		if key := access(h.Asset); key != "" {
			seen[key] = true
		}
	}
	return len(seen)
}

func sumPercentage(tops []TopHolding, n int) float64 {
	if n > len(tops) {
		n = len(tops)
	}
	sum := 0.0
	for _, t := range tops[:n] {
		sum += t.Percentage
	}
	return sum
}

// pct guards the zero-denominator case before dividing
func pct(value, total float64) float64 {
	if total == 0 {
		return 0
	}
	return value / total * 100
}
