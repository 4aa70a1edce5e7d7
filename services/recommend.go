package services

import (
	"math"
	"sort"
	"strings"

	"github.com/montanaflynn/stats"

	"ngcommerce-analytics/models"
	"ngcommerce-analytics/utils"
)

// DefaultTopN is the slate size used when the caller passes no positive N.
const DefaultTopN = 5

// markupFactor is the margin applied on top of the cross-site average
// price to produce a recommended retail price.
const markupFactor = 1.05

// RecommendationEngine ranks products per category by a weighted composite
// of rating, popularity, cross-site presence, discount and availability,
// and attaches a recommended retail price derived from the market average.
type RecommendationEngine struct {
	logger *utils.Logger
}

// NewRecommendationEngine creates a RecommendationEngine with the given logger.
func NewRecommendationEngine(logger *utils.Logger) *RecommendationEngine {
	return &RecommendationEngine{logger: logger}
}

// TopRecommendations returns exactly topN recommendations per category
// present in the input — categories with fewer distinct products are
// padded by duplicating their top scorers with a " (Similar)" name suffix.
// The cross-site grouping is recomputed here rather than reusing the
// deduplicator's output: dedup collapses clusters, while this pass needs
// every member to count sites and average prices.
func (e *RecommendationEngine) TopRecommendations(products []*models.Product, topN int) []*models.Recommendation {
	if topN <= 0 {
		topN = DefaultTopN
	}
	if len(products) == 0 {
		e.logger.Warn("[recommend] No products provided to recommendation engine")
		return nil
	}

	byCategory := groupByCategory(products)

	var result []*models.Recommendation
	for _, category := range sortedKeys(byCategory) {
		scored := e.scoreCategory(byCategory[category])

		sort.SliceStable(scored, func(i, j int) bool {
			return scored[i].Score > scored[j].Score
		})

		result = append(result, padSlate(scored, topN)...)
	}

	e.logger.Info("[recommend] Generated %d recommendations across %d categories",
		len(result), len(byCategory))
	return result
}

// scoreCategory clusters one category's products across sites, sets
// site_count and recommended price per cluster, and computes the
// composite score for every record.
func (e *RecommendationEngine) scoreCategory(products []*models.Product) []*models.Recommendation {
	var recs []*models.Recommendation

	for _, cluster := range clusterBySimilarity(products) {
		prices := make([]float64, 0, len(cluster))
		for _, p := range cluster {
			if p.Price > 0 {
				prices = append(prices, p.Price)
			}
		}

		for _, p := range cluster {
			rec := &models.Recommendation{
				Product:   *p,
				SiteCount: len(cluster),
			}

			if avg, err := stats.Mean(prices); err == nil {
				rec.RecommendedPrice = avg * markupFactor
			} else {
				rec.RecommendedPrice = p.Price * markupFactor
			}

			rec.Score = compositeScore(rec)
			recs = append(recs, rec)
		}
	}

	return recs
}

// compositeScore implements the weighted recommendation formula:
// 40% rating, 30% review count (view count as fallback), 30% cross-site
// presence, a 10% discount bonus, then multiplicative availability
// adjustments. The multipliers compose — an "available, high stock" item
// is boosted twice.
func compositeScore(rec *models.Recommendation) float64 {
	score := (rec.Rating / 5) * 0.4

	switch {
	case rec.ReviewCount > 0:
		score += math.Min(float64(rec.ReviewCount), 100) / 100 * 0.3
	case rec.ViewCount > 0:
		score += math.Min(float64(rec.ViewCount), 1000) / 1000 * 0.3
	default:
		score += 0.15
	}

	if rec.SiteCount > 0 {
		score += math.Min(float64(rec.SiteCount), 5) / 5 * 0.3
	} else {
		score += 0.1
	}

	if rec.DiscountPercent > 0 {
		score += math.Min(rec.DiscountPercent, 80) / 80 * 0.1
	}

	availability := strings.ToLower(rec.Availability)
	if availability != "" {
		switch {
		case strings.Contains(availability, "out of stock") || strings.Contains(availability, "sold out"):
			score *= 0.1
		case strings.Contains(availability, "limited stock") || strings.Contains(availability, "low stock"):
			score *= 0.7
		case strings.Contains(availability, "in stock") || strings.Contains(availability, "available"):
			score *= 1.3
		}

		if strings.Contains(availability, "high stock") ||
			strings.Contains(availability, "plenty") ||
			strings.Contains(availability, "most stock") {
			score *= 1.5
		}
	}

	return score
}

// padSlate trims a sorted category slate to exactly topN entries,
// duplicating the top scorers (name-suffixed " (Similar)") when the
// category holds fewer distinct products than requested.
func padSlate(sorted []*models.Recommendation, topN int) []*models.Recommendation {
	if len(sorted) >= topN {
		return sorted[:topN]
	}
	if len(sorted) == 0 {
		return nil
	}

	slate := make([]*models.Recommendation, len(sorted), topN)
	copy(slate, sorted)

	for i := 0; len(slate) < topN; i++ {
		dup := *sorted[i%len(sorted)]
		dup.ProductName = sorted[i%len(sorted)].ProductName + " (Similar)"
		slate = append(slate, &dup)
	}

	return slate
}
