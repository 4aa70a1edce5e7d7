package services

import (
	"fmt"
	"sort"
	"strings"

	"ngcommerce-analytics/models"
	"ngcommerce-analytics/utils"
)

type InsightService struct {
	logger *utils.Logger
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

func (s *InsightService) Generate(products []*models.Product) *models.MarketReport {
	report := &models.MarketReport{
		SourceCounts:  make(map[string]int),
		CategoryStats: make(map[string]*models.CategoryStat),
	}

	if len(products) == 0 {
		return report
	}

	report.TotalProducts = len(products)

	var ratedProducts []*models.Product
	categoryTotals := make(map[string]float64)

	for _, p := range products {
		if p.Source != "" {
			report.SourceCounts[p.Source]++
		}
		if p.Rating > 0 {
			ratedProducts = append(ratedProducts, p)
		}
		if p.Price <= 0 {
			continue
		}

		stat, ok := report.CategoryStats[p.Category]
		if !ok {
			stat = &models.CategoryStat{MinPrice: p.Price, MaxPrice: p.Price}
			report.CategoryStats[p.Category] = stat
		}
		stat.Count++
		categoryTotals[p.Category] += p.Price
		if p.Price < stat.MinPrice {
			stat.MinPrice = p.Price
		}
		if p.Price > stat.MaxPrice {
			stat.MaxPrice = p.Price
		}
		if report.MostExpensive == nil || p.Price > report.MostExpensive.Price {
			report.MostExpensive = p
		}
	}

	for category, stat := range report.CategoryStats {
		stat.AvgPrice = roundTo2(categoryTotals[category] / float64(stat.Count))
		stat.MinPrice = roundTo2(stat.MinPrice)
		stat.MaxPrice = roundTo2(stat.MaxPrice)
	}

	// Top 5 by rating
	sort.Slice(ratedProducts, func(i, j int) bool {
		return ratedProducts[i].Rating > ratedProducts[j].Rating
	})
	if len(ratedProducts) > 5 {
		report.TopRated = ratedProducts[:5]
	} else {
		report.TopRated = ratedProducts
	}

	return report
}

func (s *InsightService) Print(r *models.MarketReport) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Printf("\n\033[1;35m%s\033[0m\n", sep)
	fmt.Printf("\033[1;35m  📊 NIGERIAN E-COMMERCE MARKET INSIGHTS\033[0m\n")
	fmt.Printf("\033[1;35m%s\033[0m\n\n", sep)

	// Overview
	fmt.Printf("\033[1;33m  Overview\033[0m\n")
	fmt.Printf("  %s\n", thin)
	fmt.Printf("  Total products tracked : \033[1m%d\033[0m\n", r.TotalProducts)
	fmt.Println()

	// Category price stats
	fmt.Printf("\033[1;33m  Price Statistics by Category (₦)\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if len(r.CategoryStats) == 0 {
		fmt.Printf("  No price data available\n")
	} else {
		categories := make([]string, 0, len(r.CategoryStats))
		for c := range r.CategoryStats {
			categories = append(categories, c)
		}
		sort.Strings(categories)
		for _, c := range categories {
			stat := r.CategoryStats[c]
			fmt.Printf("  %-15s avg \033[1;32m₦%.2f\033[0m  (₦%.2f – ₦%.2f, %d items)\n",
				c, stat.AvgPrice, stat.MinPrice, stat.MaxPrice, stat.Count)
		}
	}
	fmt.Println()

	// Most expensive
	if r.MostExpensive != nil {
		fmt.Printf("\033[1;33m  Most Expensive Product\033[0m\n")
		fmt.Printf("  %s\n", thin)
		fmt.Printf("  %s\n", truncate(r.MostExpensive.ProductName, 50))
		fmt.Printf("  Source : %s\n", r.MostExpensive.Source)
		fmt.Printf("  Price  : \033[1;31m₦%.2f\033[0m\n", r.MostExpensive.Price)
		fmt.Println()
	}

	// Top rated
	fmt.Printf("\033[1;33m  Top 5 Highest Rated Products\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if len(r.TopRated) == 0 {
		fmt.Printf("  No rated products found\n")
	} else {
		for i, p := range r.TopRated {
			name := truncate(p.ProductName, 38)
			fmt.Printf("  \033[1m%d.\033[0m %-40s \033[1;32m%.2f ★\033[0m\n",
				i+1, name, p.Rating)
		}
	}
	fmt.Println()

	// Products by source
	fmt.Printf("\033[1;33m  Products by Source\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if len(r.SourceCounts) == 0 {
		fmt.Printf("  No source data\n")
	} else {
		type srcCount struct {
			src   string
			count int
		}
		var sources []srcCount
		for src, cnt := range r.SourceCounts {
			sources = append(sources, srcCount{src, cnt})
		}
		sort.Slice(sources, func(i, j int) bool {
			return sources[i].count > sources[j].count
		})
		for _, sc := range sources {
			bar := strings.Repeat("█", sc.count/5+1)
			fmt.Printf("  %-20s %s (%d)\n", truncate(sc.src, 18), bar, sc.count)
		}
	}

	fmt.Printf("\n\033[1;35m%s\033[0m\n\n", sep)
}

func roundTo2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
