package services

import (
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/montanaflynn/stats"

	"ngcommerce-analytics/models"
	"ngcommerce-analytics/utils"
)

// minTrainingRecords is the smallest history that supports training.
const minTrainingRecords = 10

// CategoryModel holds the learned parameters for one category.
type CategoryModel struct {
	TrendFactor float64                // bounded [-1, 1]
	Seasonality map[time.Month]float64 // month → price multiplier
	Volatility  float64                // bounded [0, 1]
}

// ModelState is the full set of per-category parameters produced by one
// training pass. It is a plain value: retrained per session from the
// ledger, never persisted.
type ModelState struct {
	Categories  map[string]CategoryModel
	HistorySize int
}

// PricePredictor projects future prices from historical ledger data and
// flags statistical price anomalies.
type PricePredictor struct {
	logger  *utils.Logger
	rng     *rand.Rand
	history []models.LedgerEntry
	state   *ModelState
}

// NewPricePredictor creates an untrained predictor over the given history.
// A nil rng falls back to a time-seeded source.
func NewPricePredictor(history []models.LedgerEntry, logger *utils.Logger, rng *rand.Rand) *PricePredictor {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &PricePredictor{logger: logger, rng: rng, history: history}
}

// Train fits per-category parameters from the stored history. Returns
// false when the history is too small; the predictor stays untrained.
func (p *PricePredictor) Train() bool {
	state, ok := TrainModel(p.history)
	if !ok {
		p.logger.Warn("[predictor] Insufficient data for training (%d records, need %d)",
			len(p.history), minTrainingRecords)
		return false
	}
	p.state = state
	p.logger.Info("[predictor] Model trained for %d categories", len(state.Categories))
	return true
}

// TrainModel is the pure training function: history in, model state out.
func TrainModel(history []models.LedgerEntry) (*ModelState, bool) {
	if len(history) < minTrainingRecords {
		return nil, false
	}

	byCategory := make(map[string][]models.LedgerEntry)
	for _, entry := range history {
		byCategory[entry.Category] = append(byCategory[entry.Category], entry)
	}

	state := &ModelState{
		Categories:  make(map[string]CategoryModel, len(byCategory)),
		HistorySize: len(history),
	}

	for category, entries := range byCategory {
		sort.Slice(entries, func(i, j int) bool {
			return entries[i].RecordedAt.Before(entries[j].RecordedAt)
		})
		state.Categories[category] = CategoryModel{
			TrendFactor: trendFactor(entries),
			Seasonality: seasonality(entries),
			Volatility:  volatility(entries),
		}
	}

	return state, true
}

// trendFactor compares the recent half of a category's history against
// the older half, clamped to [-1, 1].
func trendFactor(entries []models.LedgerEntry) float64 {
	if len(entries) < 5 {
		return 0
	}

	split := len(entries) / 2
	olderAvg := meanPrice(entries[:split])
	recentAvg := meanPrice(entries[split:])
	if olderAvg == 0 {
		return 0
	}

	trend := (recentAvg - olderAvg) / olderAvg
	return clamp(trend, -1, 1)
}

// seasonality computes a per-month price multiplier relative to the
// overall average. Histories under 12 points get a flat 1.0 profile.
func seasonality(entries []models.LedgerEntry) map[time.Month]float64 {
	factors := make(map[time.Month]float64, 12)
	for m := time.January; m <= time.December; m++ {
		factors[m] = 1.0
	}
	if len(entries) < 12 {
		return factors
	}

	overall := meanPrice(entries)
	if overall == 0 {
		return factors
	}

	sums := make(map[time.Month]float64)
	counts := make(map[time.Month]int)
	for _, e := range entries {
		m := e.RecordedAt.Month()
		sums[m] += e.Price
		counts[m]++
	}
	for m, n := range counts {
		factors[m] = (sums[m] / float64(n)) / overall
	}

	return factors
}

// volatility maps the coefficient of variation of a category's prices
// through a sigmoid to a [0, 1] score. Defaults to 0.5 when the history
// is too thin to estimate spread.
func volatility(entries []models.LedgerEntry) float64 {
	if len(entries) < 3 {
		return 0.5
	}

	prices := entryPrices(entries)
	mean, err := stats.Mean(prices)
	if err != nil || mean == 0 {
		return 0.5
	}
	std, err := stats.StandardDeviation(prices)
	if err != nil {
		return 0.5
	}

	return sigmoid(std / mean * 5)
}

// PredictPrices projects each product's price daysAhead into the future.
// An untrained predictor trains itself first; when the history cannot
// support training the call reports failure instead of guessing.
func (p *PricePredictor) PredictPrices(products []*models.Product, daysAhead int) ([]*models.Prediction, bool) {
	if p.state == nil {
		p.logger.Warn("[predictor] Model not trained yet — training with available history")
		if !p.Train() {
			p.logger.Error("[predictor] Cannot predict: insufficient training data")
			return nil, false
		}
	}

	futureMonth := time.Now().AddDate(0, 0, daysAhead).Month()
	predictions := make([]*models.Prediction, 0, len(products))

	for _, product := range products {
		trend, seasonal, vol := p.categoryFactors(product.Category, futureMonth)

		priceChange := trend * (float64(daysAhead) / 30) * seasonal
		if vol > 0 {
			priceChange += p.rng.NormFloat64() * vol * 0.1
		}

		predicted := product.Price * (1 + priceChange)
		// Floor at half the current price so a noisy negative trend can
		// never project a runaway collapse.
		predicted = math.Max(predicted, product.Price*0.5)

		label := "Stable"
		if priceChange > 0.05 {
			label = "Rising"
		} else if priceChange < -0.05 {
			label = "Falling"
		}

		confidence := clamp(0.7-vol*0.5+float64(p.state.HistorySize)/1000, 0.3, 0.9)

		predictions = append(predictions, &models.Prediction{
			Product:        product,
			PredictedPrice: round2(predicted),
			PriceTrend:     label,
			Confidence:     round2(confidence),
		})
	}

	p.logger.Info("[predictor] Generated price predictions for %d products", len(predictions))
	return predictions, true
}

// categoryFactors looks up the learned parameters for a category, falling
// back to the cross-category average trend for categories absent from the
// training history.
func (p *PricePredictor) categoryFactors(category string, month time.Month) (trend, seasonal, vol float64) {
	model, ok := p.state.Categories[category]
	if !ok {
		var sum float64
		for _, m := range p.state.Categories {
			sum += m.TrendFactor
		}
		if n := len(p.state.Categories); n > 0 {
			sum /= float64(n)
		}
		return sum, 1.0, 0.5
	}

	seasonal = 1.0
	if f, ok := model.Seasonality[month]; ok {
		seasonal = f
	}
	return model.TrendFactor, seasonal, model.Volatility
}

// DetectAnomalies z-scores each product's current price against its
// historical baseline — the exact (category, product) pair when present,
// else the category aggregate — and flags scores above the threshold.
func (p *PricePredictor) DetectAnomalies(products []*models.Product, threshold float64) []*models.Anomaly {
	if p.state == nil || len(p.history) == 0 {
		p.logger.Warn("[predictor] Cannot detect anomalies without training data")
		return nil
	}

	productStats, categoryStats := p.baselineStats()

	anomalies := make([]*models.Anomaly, 0, len(products))
	for _, product := range products {
		var mean, std float64

		if s, ok := productStats[baselineKey{product.Category, product.ProductName}]; ok {
			mean = s.mean
			std = math.Max(s.std, 0.01*s.mean)
		} else if s, ok := categoryStats[product.Category]; ok {
			mean = s.mean
			// Floor the spread at 5% of the mean so sparse categories do
			// not blow up the z-score.
			std = math.Max(s.std, 0.05*s.mean)
		} else {
			continue
		}
		if std == 0 {
			continue
		}

		z := math.Abs(product.Price-mean) / std
		score := sigmoid(z - 4)

		anomalies = append(anomalies, &models.Anomaly{
			Product:      product,
			AnomalyScore: round3(score),
			IsAnomaly:    score > threshold,
		})
	}

	flagged := 0
	for _, a := range anomalies {
		if a.IsAnomaly {
			flagged++
		}
	}
	p.logger.Info("[predictor] Detected %d price anomalies out of %d products", flagged, len(products))
	return anomalies
}

type baselineKey struct {
	category string
	product  string
}

type priceBaseline struct {
	mean float64
	std  float64
}

// baselineStats aggregates the history into per-product and per-category
// price baselines for anomaly scoring.
func (p *PricePredictor) baselineStats() (map[baselineKey]priceBaseline, map[string]priceBaseline) {
	grouped := make(map[baselineKey][]float64)
	for _, entry := range p.history {
		key := baselineKey{entry.Category, entry.ProductName}
		grouped[key] = append(grouped[key], entry.Price)
	}

	productStats := make(map[baselineKey]priceBaseline, len(grouped))
	catMeans := make(map[string][]float64)
	catStds := make(map[string][]float64)

	for key, prices := range grouped {
		mean, err := stats.Mean(prices)
		if err != nil {
			continue
		}
		std, err := stats.StandardDeviation(prices)
		if err != nil {
			std = 0
		}
		productStats[key] = priceBaseline{mean: mean, std: std}
		catMeans[key.category] = append(catMeans[key.category], mean)
		catStds[key.category] = append(catStds[key.category], std)
	}

	categoryStats := make(map[string]priceBaseline, len(catMeans))
	for category, means := range catMeans {
		mean, err := stats.Mean(means)
		if err != nil {
			continue
		}
		std, _ := stats.Mean(catStds[category])
		categoryStats[category] = priceBaseline{mean: mean, std: std}
	}

	return productStats, categoryStats
}

func meanPrice(entries []models.LedgerEntry) float64 {
	if len(entries) == 0 {
		return 0
	}
	var sum float64
	for _, e := range entries {
		sum += e.Price
	}
	return sum / float64(len(entries))
}

func entryPrices(entries []models.LedgerEntry) []float64 {
	prices := make([]float64, len(entries))
	for i, e := range entries {
		prices[i] = e.Price
	}
	return prices
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
