package services

import (
	"sort"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"

	"ngcommerce-analytics/models"
	"ngcommerce-analytics/utils"
)

// similarityThreshold is the 0–100 name-similarity score above which two
// listings in the same category are considered the same physical product.
const similarityThreshold = 80

var levenshteinMetric = metrics.NewLevenshtein()

// nameSimilarity returns an edit-distance based similarity ratio on a
// 0–100 scale, case-insensitive.
func nameSimilarity(a, b string) float64 {
	return strutil.Similarity(strings.ToLower(a), strings.ToLower(b), levenshteinMetric) * 100
}

// Deduplicator collapses near-duplicate listings of the same product
// (scraped from different sites, or repeated within one site) down to a
// single representative per cluster.
type Deduplicator struct {
	logger *utils.Logger
}

// NewDeduplicator creates a Deduplicator with the given logger.
func NewDeduplicator(logger *utils.Logger) *Deduplicator {
	return &Deduplicator{logger: logger}
}

// Deduplicate partitions products by canonical category, clusters each
// partition by fuzzy name similarity, and keeps the highest-sales-rank
// record of every cluster. Clustering is greedy in input order: a chain
// A~B, B~C does not require A~C, so the grouping is order-dependent. This
// mirrors the legacy behavior on purpose; see DESIGN.md.
func (d *Deduplicator) Deduplicate(products []*models.Product) []*models.Product {
	if len(products) == 0 {
		return nil
	}

	byCategory := groupByCategory(products)

	result := make([]*models.Product, 0, len(products))
	for _, category := range sortedKeys(byCategory) {
		for _, cluster := range clusterBySimilarity(byCategory[category]) {
			result = append(result, clusterRepresentative(cluster))
		}
	}

	d.logger.Info("[dedup] Deduplicated %d → %d products", len(products), len(result))
	return result
}

// clusterBySimilarity greedily groups products whose pairwise name
// similarity meets the threshold. Quadratic in partition size; categories
// hold at most a few hundred records per run.
func clusterBySimilarity(products []*models.Product) [][]*models.Product {
	matched := make([]bool, len(products))
	var clusters [][]*models.Product

	for i := range products {
		if matched[i] {
			continue
		}
		cluster := []*models.Product{products[i]}
		matched[i] = true

		for j := i + 1; j < len(products); j++ {
			if matched[j] {
				continue
			}
			if nameSimilarity(products[i].ProductName, products[j].ProductName) >= similarityThreshold {
				cluster = append(cluster, products[j])
				matched[j] = true
			}
		}
		clusters = append(clusters, cluster)
	}

	return clusters
}

// clusterRepresentative picks the record with the highest sales rank.
func clusterRepresentative(cluster []*models.Product) *models.Product {
	best := cluster[0]
	for _, p := range cluster[1:] {
		if p.SalesRank > best.SalesRank {
			best = p
		}
	}
	return best
}

func groupByCategory(products []*models.Product) map[string][]*models.Product {
	grouped := make(map[string][]*models.Product)
	for _, p := range products {
		grouped[p.Category] = append(grouped[p.Category], p)
	}
	return grouped
}

func sortedKeys(m map[string][]*models.Product) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
