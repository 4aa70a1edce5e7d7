package services

import (
	"math"
	"math/rand"
	"strings"
	"time"

	"ngcommerce-analytics/models"
	"ngcommerce-analytics/utils"
)

// Processor turns raw scraped records into clean, normalized products.
type Processor struct {
	logger *utils.Logger
	rng    *rand.Rand
}

// NewProcessor creates a Processor. A nil rng falls back to a time-seeded
// source; tests inject a fixed seed for reproducible sales ranks.
func NewProcessor(logger *utils.Logger, rng *rand.Rand) *Processor {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Processor{logger: logger, rng: rng}
}

// Process normalizes a batch of raw records. Records with an empty product
// name are dropped; everything else is coerced best-effort — a dirty field
// never aborts the batch. An empty input yields an empty output.
func (p *Processor) Process(raw []*models.RawProduct) []*models.Product {
	if len(raw) == 0 {
		p.logger.Warn("[processor] No products to process")
		return nil
	}

	now := time.Now()
	result := make([]*models.Product, 0, len(raw))

	for _, r := range raw {
		name := strings.TrimSpace(r.ProductName)
		if name == "" {
			p.logger.Warn("[processor] Dropping record with empty name from %s", r.Source)
			continue
		}

		ts := r.Timestamp
		if ts.IsZero() {
			ts = now
		}

		product := &models.Product{
			ProductName:     name,
			Price:           NormalizePrice(r.Price),
			Category:        CategorizeProduct(name, r.Category),
			OrigCategory:    r.Category,
			Source:          r.Source,
			Timestamp:       ts,
			Rating:          r.Rating,
			ReviewCount:     r.ReviewCount,
			ViewCount:       r.ViewCount,
			DiscountPercent: r.DiscountPercent,
			IsBestseller:    r.IsBestseller,
			IsFeatured:      r.IsFeatured,
			Availability:    r.Availability,
			Brand:           r.Brand,
			URL:             r.URL,
			Unit:            NormalizeUnits(name),
		}

		product.SalesRank = p.salesRank(r)

		// Sites rarely expose view counts; fill a proxy so downstream
		// popularity math always has a signal to work with.
		if product.ViewCount <= 0 {
			product.ViewCount = 10 + p.rng.Intn(990)
		}

		result = append(result, product)
	}

	p.logger.Info("[processor] Processed %d → %d products (dropped %d)",
		len(raw), len(result), len(raw)-len(result))
	return result
}

// salesRank computes a popularity proxy from the signals a listing page
// exposes. The uniform [0,10) component breaks ties between otherwise
// identical records; the output only matters for relative ranking.
func (p *Processor) salesRank(r *models.RawProduct) float64 {
	score := 0.0

	if r.IsBestseller {
		score += 100
	}
	if r.IsFeatured {
		score += 50
	}
	if r.DiscountPercent > 0 {
		score += math.Min(r.DiscountPercent*0.5, 25)
	}
	score += r.Rating * 5

	score += p.rng.Float64() * 10
	return score
}
