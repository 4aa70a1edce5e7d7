package services

import (
	"sort"
	"time"

	"github.com/montanaflynn/stats"

	"ngcommerce-analytics/models"
	"ngcommerce-analytics/utils"
)

// TrendAnalyzer computes week-over-week deltas from the historical ledger
// and ranks products by momentum between two collection periods.
type TrendAnalyzer struct {
	logger *utils.Logger
}

// NewTrendAnalyzer creates a TrendAnalyzer with the given logger.
func NewTrendAnalyzer(logger *utils.Logger) *TrendAnalyzer {
	return &TrendAnalyzer{logger: logger}
}

type trendKey struct {
	product  string
	category string
	source   string
}

type trendAgg struct {
	priceSum float64
	viewSum  float64
	count    int
}

// WeekOverWeek groups ledger entries by (product, category, source) over
// the trailing 7 days versus the prior 7, averaging price and view count
// and computing percentage deltas. Groups with a zero previous-period
// price are excluded rather than reported as infinite.
func (a *TrendAnalyzer) WeekOverWeek(entries []models.LedgerEntry, now time.Time) []*models.ProductTrend {
	if len(entries) == 0 {
		a.logger.Warn("[trends] No ledger entries for week-over-week analysis")
		return nil
	}

	oneWeekAgo := now.AddDate(0, 0, -7)
	twoWeeksAgo := now.AddDate(0, 0, -14)

	current := make(map[trendKey]*trendAgg)
	previous := make(map[trendKey]*trendAgg)

	for _, e := range entries {
		key := trendKey{e.ProductName, e.Category, e.Source}
		switch {
		case !e.RecordedAt.Before(oneWeekAgo) && !e.RecordedAt.After(now):
			accumulate(current, key, e)
		case !e.RecordedAt.Before(twoWeeksAgo) && e.RecordedAt.Before(oneWeekAgo):
			accumulate(previous, key, e)
		}
	}

	var trends []*models.ProductTrend
	for key, cur := range current {
		prev, ok := previous[key]
		if !ok {
			continue
		}

		prevPrice := prev.priceSum / float64(prev.count)
		if prevPrice == 0 {
			continue
		}
		curPrice := cur.priceSum / float64(cur.count)

		trend := &models.ProductTrend{
			ProductName:    key.product,
			Category:       key.category,
			Source:         key.source,
			CurrentPrice:   round2(curPrice),
			PreviousPrice:  round2(prevPrice),
			PriceChangePct: round2((curPrice - prevPrice) / prevPrice * 100),
			CurrentViews:   round2(cur.viewSum / float64(cur.count)),
			PreviousViews:  round2(prev.viewSum / float64(prev.count)),
		}
		if trend.PreviousViews > 0 {
			trend.ViewChangePct = round2((trend.CurrentViews - trend.PreviousViews) / trend.PreviousViews * 100)
		}
		trends = append(trends, trend)
	}

	sort.Slice(trends, func(i, j int) bool {
		if trends[i].Category != trends[j].Category {
			return trends[i].Category < trends[j].Category
		}
		return trends[i].ProductName < trends[j].ProductName
	})

	a.logger.Info("[trends] Computed week-over-week deltas for %d product groups", len(trends))
	return trends
}

func accumulate(m map[trendKey]*trendAgg, key trendKey, e models.LedgerEntry) {
	agg, ok := m[key]
	if !ok {
		agg = &trendAgg{}
		m[key] = agg
	}
	agg.priceSum += e.Price
	agg.viewSum += float64(e.ViewCount)
	agg.count++
}

type momentumAgg struct {
	prices  []float64
	ratings []float64
	reviews int
	sources map[string]struct{}
}

// TopTrending compares a current batch against a previous one and returns
// the topN products per category by trending score: review growth carries
// most of the weight, rating movement and new site coverage boost, price
// increases drag slightly.
func (a *TrendAnalyzer) TopTrending(current, previous []*models.Product, topN int) []*models.TrendingProduct {
	if topN <= 0 {
		topN = DefaultTopN
	}
	if len(current) == 0 || len(previous) == 0 {
		a.logger.Warn("[trends] Need both current and previous batches for trending analysis")
		return nil
	}

	curAgg := aggregateMomentum(current)
	prevAgg := aggregateMomentum(previous)

	byCategory := make(map[string][]*models.TrendingProduct)
	for key, cur := range curAgg {
		curPrice, _ := stats.Mean(cur.prices)
		curRating, _ := stats.Mean(cur.ratings)

		// Products absent from the previous period compare against
		// themselves on price and against zero on everything else.
		prevPrice := curPrice
		prevRating := 0.0
		prevReviews := 0
		prevSites := 0
		if prev, ok := prevAgg[key]; ok {
			prevPrice, _ = stats.Mean(prev.prices)
			prevRating, _ = stats.Mean(prev.ratings)
			prevReviews = prev.reviews
			prevSites = len(prev.sources)
		}

		priceChangePct := 0.0
		if prevPrice > 0 {
			priceChangePct = (curPrice - prevPrice) / prevPrice * 100
		}

		reviewGrowthPct := 0.0
		if prevReviews > 0 {
			reviewGrowthPct = float64(cur.reviews-prevReviews) / float64(prevReviews) * 100
		}

		ratingChange := curRating - prevRating
		siteChange := len(cur.sources) - prevSites

		tp := &models.TrendingProduct{
			ProductName:     key.product,
			Category:        key.category,
			Price:           round2(curPrice),
			Rating:          round2(curRating),
			ReviewCount:     cur.reviews,
			SiteCount:       len(cur.sources),
			PriceChangePct:  round2(priceChangePct),
			ReviewGrowthPct: round2(reviewGrowthPct),
			RatingChange:    round2(ratingChange),
			TrendingScore: round2(reviewGrowthPct*0.6 +
				ratingChange*20 +
				float64(siteChange)*15 -
				priceChangePct*0.05),
		}
		byCategory[key.category] = append(byCategory[key.category], tp)
	}

	categories := make([]string, 0, len(byCategory))
	for c := range byCategory {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	var result []*models.TrendingProduct
	for _, category := range categories {
		group := byCategory[category]
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].TrendingScore > group[j].TrendingScore
		})
		if len(group) > topN {
			group = group[:topN]
		}
		result = append(result, group...)
	}

	a.logger.Info("[trends] Generated trending rankings for %d categories", len(categories))
	return result
}

func aggregateMomentum(products []*models.Product) map[trendKey]*momentumAgg {
	agg := make(map[trendKey]*momentumAgg)
	for _, p := range products {
		key := trendKey{product: p.ProductName, category: p.Category}
		m, ok := agg[key]
		if !ok {
			m = &momentumAgg{sources: make(map[string]struct{})}
			agg[key] = m
		}
		m.prices = append(m.prices, p.Price)
		m.ratings = append(m.ratings, p.Rating)
		m.reviews += p.ReviewCount
		m.sources[p.Source] = struct{}{}
	}
	return agg
}
