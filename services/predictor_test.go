package services

import (
	"math/rand"
	"testing"
	"time"

	"ngcommerce-analytics/models"
	"ngcommerce-analytics/utils"
)

// priceHistory builds ledger entries for one product at the given prices,
// one day apart, oldest first.
func priceHistory(name, category string, prices []float64, end time.Time) []models.LedgerEntry {
	entries := make([]models.LedgerEntry, len(prices))
	for i, price := range prices {
		entries[i] = models.LedgerEntry{
			Product: models.Product{
				ProductName: name,
				Category:    category,
				Price:       price,
				Source:      "Jumia",
			},
			RecordedAt: end.AddDate(0, 0, i-len(prices)),
		}
	}
	return entries
}

func TestTrainModelInsufficientData(t *testing.T) {
	history := priceHistory("Milo Tin 400g", "beverages",
		[]float64{1000, 1000, 1000, 1000, 1000}, time.Now())

	if state, ok := TrainModel(history); ok || state != nil {
		t.Errorf("expected training to fail with %d records", len(history))
	}
}

func TestTrainModelTrendFactor(t *testing.T) {
	prices := []float64{1000, 1000, 1000, 1000, 1000, 1000, 2000, 2000, 2000, 2000, 2000, 2000}
	history := priceHistory("Milo Tin 400g", "beverages", prices, time.Now())

	state, ok := TrainModel(history)
	if !ok {
		t.Fatal("training failed with sufficient history")
	}

	model, ok := state.Categories["beverages"]
	if !ok {
		t.Fatal("no model trained for beverages")
	}
	// Recent half averages 2000 vs older half 1000: +100%, clamped ceiling.
	if model.TrendFactor != 1.0 {
		t.Errorf("trend factor = %.4f; want 1.0", model.TrendFactor)
	}
	if model.Volatility < 0 || model.Volatility > 1 {
		t.Errorf("volatility %.4f outside [0, 1]", model.Volatility)
	}
	for m := time.January; m <= time.December; m++ {
		if _, ok := model.Seasonality[m]; !ok {
			t.Errorf("seasonality profile missing month %s", m)
		}
	}
	if state.HistorySize != len(history) {
		t.Errorf("history size = %d; want %d", state.HistorySize, len(history))
	}
}

func TestPredictPricesInsufficientHistory(t *testing.T) {
	history := priceHistory("Milo Tin 400g", "beverages", []float64{1000, 1100}, time.Now())
	p := NewPricePredictor(history, utils.NewLogger(), rand.New(rand.NewSource(1)))

	products := []*models.Product{{ProductName: "Milo Tin 400g", Category: "beverages", Price: 1000}}
	if predictions, ok := p.PredictPrices(products, 30); ok || predictions != nil {
		t.Errorf("expected prediction failure on a %d-record history", len(history))
	}
}

func TestPredictPricesRisingTrend(t *testing.T) {
	prices := []float64{1000, 1000, 1000, 1000, 1000, 1000, 2000, 2000, 2000, 2000, 2000, 2000}
	history := priceHistory("Milo Tin 400g", "beverages", prices, time.Now())
	p := NewPricePredictor(history, utils.NewLogger(), rand.New(rand.NewSource(1)))

	products := []*models.Product{{ProductName: "Milo Tin 400g", Category: "beverages", Price: 2000}}
	predictions, ok := p.PredictPrices(products, 30)
	if !ok || len(predictions) != 1 {
		t.Fatalf("prediction failed: ok=%v len=%d", ok, len(predictions))
	}

	pred := predictions[0]
	if pred.PriceTrend != "Rising" {
		t.Errorf("trend label = %q; want Rising", pred.PriceTrend)
	}
	if pred.PredictedPrice <= pred.Product.Price {
		t.Errorf("rising prediction %.2f not above current %.2f", pred.PredictedPrice, pred.Product.Price)
	}
	if pred.Confidence < 0.3 || pred.Confidence > 0.9 {
		t.Errorf("confidence %.2f outside [0.3, 0.9]", pred.Confidence)
	}
}

func TestPredictPricesFloor(t *testing.T) {
	// Strongly falling category: the projection must never drop below half
	// the current price. Small tolerance for the cent rounding.
	prices := []float64{2000, 2000, 2000, 2000, 2000, 2000, 100, 100, 100, 100, 100, 100}
	history := priceHistory("Ariel Powder 2kg", "detergents", prices, time.Now())
	p := NewPricePredictor(history, utils.NewLogger(), rand.New(rand.NewSource(3)))

	products := []*models.Product{{ProductName: "Ariel Powder 2kg", Category: "detergents", Price: 1000}}
	predictions, ok := p.PredictPrices(products, 30)
	if !ok || len(predictions) != 1 {
		t.Fatalf("prediction failed: ok=%v len=%d", ok, len(predictions))
	}

	if floor := products[0].Price * 0.5; predictions[0].PredictedPrice < floor-0.01 {
		t.Errorf("predicted price %.2f breached the %.2f floor", predictions[0].PredictedPrice, floor)
	}
}

func TestPredictPricesUnknownCategory(t *testing.T) {
	prices := []float64{1000, 1000, 1000, 1000, 1000, 1000, 1200, 1200, 1200, 1200, 1200, 1200}
	history := priceHistory("Milo Tin 400g", "beverages", prices, time.Now())
	p := NewPricePredictor(history, utils.NewLogger(), rand.New(rand.NewSource(5)))

	// A category absent from the history still gets a projection, from the
	// cross-category average trend.
	products := []*models.Product{{ProductName: "Mystery Gadget X", Category: "other", Price: 5000}}
	predictions, ok := p.PredictPrices(products, 30)
	if !ok || len(predictions) != 1 {
		t.Fatalf("prediction failed: ok=%v len=%d", ok, len(predictions))
	}
	if predictions[0].PredictedPrice <= 0 {
		t.Errorf("predicted price %.2f should be positive", predictions[0].PredictedPrice)
	}
}

func TestDetectAnomalies(t *testing.T) {
	prices := []float64{950, 1050, 950, 1050, 950, 1050, 950, 1050, 950, 1050, 950, 1050}
	history := priceHistory("Tom Tom Sweet 100g", "snacks", prices, time.Now())
	p := NewPricePredictor(history, utils.NewLogger(), rand.New(rand.NewSource(1)))
	if !p.Train() {
		t.Fatal("training failed with sufficient history")
	}

	products := []*models.Product{
		{ProductName: "Tom Tom Sweet 100g", Category: "snacks", Price: 2000},
		{ProductName: "Tom Tom Sweet 100g", Category: "snacks", Price: 1000},
	}

	anomalies := p.DetectAnomalies(products, 0.3)
	if len(anomalies) != 2 {
		t.Fatalf("expected 2 anomaly records, got %d", len(anomalies))
	}

	if !anomalies[0].IsAnomaly {
		t.Errorf("price 2000 against a ~1000 baseline should be flagged (score %.3f)", anomalies[0].AnomalyScore)
	}
	if anomalies[1].IsAnomaly {
		t.Errorf("price 1000 at the baseline mean should not be flagged (score %.3f)", anomalies[1].AnomalyScore)
	}
	if anomalies[0].AnomalyScore <= anomalies[1].AnomalyScore {
		t.Errorf("outlier score %.3f should exceed baseline score %.3f",
			anomalies[0].AnomalyScore, anomalies[1].AnomalyScore)
	}
}

func TestDetectAnomaliesUntrained(t *testing.T) {
	p := NewPricePredictor(nil, utils.NewLogger(), rand.New(rand.NewSource(1)))

	products := []*models.Product{{ProductName: "Milo Tin 400g", Category: "beverages", Price: 1000}}
	if anomalies := p.DetectAnomalies(products, 0.3); anomalies != nil {
		t.Errorf("expected nil anomalies without training data, got %d", len(anomalies))
	}
}
