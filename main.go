package main

import (
	"fmt"
	"os"
	"time"

	"ngcommerce-analytics/config"
	"ngcommerce-analytics/models"
	"ngcommerce-analytics/scraper"
	"ngcommerce-analytics/scraper/jumia"
	"ngcommerce-analytics/scraper/konga"
	"ngcommerce-analytics/services"
	"ngcommerce-analytics/storage"
	"ngcommerce-analytics/utils"
)

func main() {
	logger := utils.NewLogger()
	cfg := config.Load()

	logger.Info("=== Nigerian E-commerce Analytics Pipeline starting ===")
	logger.Info("Config — pages/category: %d | concurrency: %d | rate: %dms | retention: %dd",
		cfg.PagesPerCategory, cfg.MaxConcurrency, cfg.RateLimitMs, cfg.RetentionDays)

	// Collection phase: every site scraper runs in the pool; processing
	// starts only after all of them have finished.
	collectors := []scraper.Collector{
		jumia.New(cfg, logger),
		konga.New(cfg, logger),
	}
	pool := utils.NewWorkerPool(cfg.MaxConcurrency, cfg.RateLimitMs)
	rawProducts := scraper.CollectAll(collectors, pool, logger)

	if len(rawProducts) == 0 {
		logger.Error("No products were collected. Exiting.")
		os.Exit(1)
	}

	// Processing phase: normalize, then collapse cross-site duplicates.
	processor := services.NewProcessor(logger, nil)
	processed := processor.Process(rawProducts)

	if len(processed) == 0 {
		logger.Error("All records were dropped during processing. Exiting.")
		os.Exit(1)
	}

	deduper := services.NewDeduplicator(logger)
	deduped := deduper.Deduplicate(processed)

	// Persist the snapshot for the dashboard/export layer.
	snapshot := storage.NewSnapshotStore(cfg.SnapshotPath, logger)
	merged := snapshot.Merge(deduped)
	if err := snapshot.Save(merged); err != nil {
		logger.Error("Snapshot save failed: %v", err)
	}

	if pgWriter, err := storage.NewPostgresWriter(cfg.DSN()); err != nil {
		logger.Error("PostgreSQL unavailable, skipping database write: %v", err)
	} else {
		defer pgWriter.Close()
		if err := pgWriter.Write(merged); err != nil {
			logger.Error("PostgreSQL write failed: %v", err)
		} else {
			logger.Info("Processed products stored in PostgreSQL (table: products)")
		}
	}

	// Extend the historical ledger with the full processed batch (not the
	// deduplicated one — per-site price points feed the trend math).
	now := time.Now()
	ledger := storage.NewLedger(cfg.LedgerPath, cfg.RetentionDays, logger)
	if err := ledger.Append(processed, now); err != nil {
		logger.Error("Ledger append failed: %v", err)
	}

	// Analytics phase. Each step degrades to an empty result on failure;
	// the run always completes with whatever output is valid.
	engine := services.NewRecommendationEngine(logger)
	recommendations := engine.TopRecommendations(processed, cfg.TopRecommendations)
	printRecommendations(recommendations, cfg.TopRecommendations)

	history, err := ledger.Load()
	if err != nil {
		logger.Error("Could not load ledger for prediction: %v", err)
	}

	predictor := services.NewPricePredictor(history, logger, nil)
	if predictions, ok := predictor.PredictPrices(deduped, cfg.PredictionDays); ok {
		printPredictions(predictions)

		anomalies := predictor.DetectAnomalies(deduped, cfg.AnomalyThreshold)
		printAnomalies(anomalies)
	} else {
		fmt.Println("\n  Not enough historical data for price predictions yet.")
	}

	trendAnalyzer := services.NewTrendAnalyzer(logger)
	if trends := trendAnalyzer.WeekOverWeek(history, now); len(trends) > 0 {
		printTrends(trends)
	}

	insightSvc := services.NewInsightService(logger)
	report := insightSvc.Generate(merged)
	insightSvc.Print(report)

	fmt.Printf("  Done. Snapshot → %s | Ledger → %s\n\n", cfg.SnapshotPath, cfg.LedgerPath)
}

func printRecommendations(recs []*models.Recommendation, topN int) {
	if len(recs) == 0 {
		fmt.Println("\n  No recommendations available.")
		return
	}

	fmt.Printf("\n\033[1;33m  Top %d Recommendations per Category\033[0m\n", topN)
	lastCategory := ""
	for _, r := range recs {
		if r.Category != lastCategory {
			fmt.Printf("\n  \033[1m%s\033[0m\n", r.Category)
			lastCategory = r.Category
		}
		fmt.Printf("    %-45s score %.3f  rec. price ₦%.2f  (%d site(s))\n",
			clip(r.ProductName, 43), r.Score, r.RecommendedPrice, r.SiteCount)
	}
}

func printPredictions(predictions []*models.Prediction) {
	fmt.Printf("\n\033[1;33m  Price Predictions (30 days)\033[0m\n")
	for _, p := range predictions {
		arrow := "→"
		switch p.PriceTrend {
		case "Rising":
			arrow = "↑"
		case "Falling":
			arrow = "↓"
		}
		fmt.Printf("    %-45s ₦%.2f %s ₦%.2f  (%s, confidence %.2f)\n",
			clip(p.Product.ProductName, 43), p.Product.Price, arrow,
			p.PredictedPrice, p.PriceTrend, p.Confidence)
	}
}

func printAnomalies(anomalies []*models.Anomaly) {
	flagged := 0
	for _, a := range anomalies {
		if a.IsAnomaly {
			flagged++
		}
	}
	if flagged == 0 {
		return
	}

	fmt.Printf("\n\033[1;31m  Price Anomalies\033[0m\n")
	for _, a := range anomalies {
		if !a.IsAnomaly {
			continue
		}
		fmt.Printf("    %-45s ₦%.2f  (score %.3f)\n",
			clip(a.Product.ProductName, 43), a.Product.Price, a.AnomalyScore)
	}
}

func printTrends(trends []*models.ProductTrend) {
	fmt.Printf("\n\033[1;33m  Week-over-Week Price Movement\033[0m\n")
	for _, t := range trends {
		fmt.Printf("    %-45s %+.1f%%  (₦%.2f → ₦%.2f, %s)\n",
			clip(t.ProductName, 43), t.PriceChangePct, t.PreviousPrice, t.CurrentPrice, t.Source)
	}
}

func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
