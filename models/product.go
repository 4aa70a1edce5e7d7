package models

import "time"

// RawProduct holds an unprocessed record as emitted by a site collector.
// Collectors fill what they can; every field except ProductName, Price and
// Source is optional and defaults to its zero value.
type RawProduct struct {
	ProductName     string
	Price           string // raw text, may carry currency symbols and commas
	Category        string // source-specific label, free text
	Source          string
	Timestamp       time.Time
	Rating          float64
	ReviewCount     int
	ViewCount       int
	DiscountPercent float64
	IsBestseller    bool
	IsFeatured      bool
	Availability    string
	Brand           string
	URL             string
}

// UnitInfo is a canonical (value, unit) pair parsed from a product name.
// Volumes are expressed in milliliters, weights in grams.
type UnitInfo struct {
	Value float64
	Unit  string
}

// Product is a cleaned, normalized record ready for storage and analytics.
// Price is always >= 0 and Category is always one of the canonical set.
type Product struct {
	ProductName     string
	Price           float64
	Category        string // canonical category
	OrigCategory    string // label as reported by the source site
	Source          string
	Timestamp       time.Time
	Rating          float64
	ReviewCount     int
	ViewCount       int
	DiscountPercent float64
	IsBestseller    bool
	IsFeatured      bool
	Availability    string
	Brand           string
	URL             string
	SalesRank       float64
	Unit            UnitInfo
}

// LedgerEntry is one row of the historical ledger: a processed product
// tagged with the collection run that recorded it.
type LedgerEntry struct {
	Product
	RecordedAt time.Time
}

// Recommendation is a product annotated with cross-site grouping data and
// its composite recommendation score.
type Recommendation struct {
	Product
	SiteCount        int
	RecommendedPrice float64
	Score            float64
}

// Prediction holds the projected future price for one product.
type Prediction struct {
	Product        *Product
	PredictedPrice float64
	PriceTrend     string // "Rising", "Falling" or "Stable"
	Confidence     float64
}

// Anomaly flags a product whose current price deviates from its
// historical baseline.
type Anomaly struct {
	Product      *Product
	AnomalyScore float64
	IsAnomaly    bool
}

// ProductTrend is a week-over-week comparison for one (product, category,
// source) group from the historical ledger.
type ProductTrend struct {
	ProductName    string
	Category       string
	Source         string
	CurrentPrice   float64
	PreviousPrice  float64
	PriceChangePct float64
	CurrentViews   float64
	PreviousViews  float64
	ViewChangePct  float64
}

// TrendingProduct ranks a product by momentum between two collection
// periods (review growth, rating movement, site spread, price drift).
type TrendingProduct struct {
	ProductName     string
	Category        string
	Price           float64
	Rating          float64
	ReviewCount     int
	SiteCount       int
	PriceChangePct  float64
	ReviewGrowthPct float64
	RatingChange    float64
	TrendingScore   float64
}

// Review is a single customer review attached to a product.
type Review struct {
	ProductName string
	Source      string
	Text        string
	Rating      float64
	Timestamp   time.Time
}

// ReviewSummary aggregates sentiment across all reviews of one product.
type ReviewSummary struct {
	ProductName  string
	ReviewCount  int
	AvgSentiment float64
	Label        string // "positive", "neutral" or "negative"
	PositivePct  float64
	NegativePct  float64
}

// CategoryStat holds per-category price statistics for the market report.
type CategoryStat struct {
	Count    int
	AvgPrice float64
	MinPrice float64
	MaxPrice float64
}

// MarketReport holds the computed analytics over the deduplicated dataset.
type MarketReport struct {
	TotalProducts int
	SourceCounts  map[string]int
	CategoryStats map[string]*CategoryStat
	MostExpensive *Product
	TopRated      []*Product
}
