package services

import (
	"math/rand"
	"testing"
	"time"

	"ngcommerce-analytics/models"
	"ngcommerce-analytics/utils"
)

func TestProcessEmptyInput(t *testing.T) {
	p := NewProcessor(utils.NewLogger(), nil)
	if result := p.Process(nil); len(result) != 0 {
		t.Errorf("expected no products for empty input, got %d", len(result))
	}
}

func TestProcessDropsEmptyNames(t *testing.T) {
	p := NewProcessor(utils.NewLogger(), nil)

	raw := []*models.RawProduct{
		{ProductName: "", Price: "₦500", Source: "Jumia"},
		{ProductName: "   ", Price: "₦700", Source: "Konga"},
		{ProductName: "Milo Tin 400g", Price: "₦3,200", Source: "Jumia"},
	}

	result := p.Process(raw)
	if len(result) != 1 {
		t.Fatalf("expected 1 product, got %d", len(result))
	}
	if result[0].ProductName != "Milo Tin 400g" {
		t.Errorf("wrong survivor: %q", result[0].ProductName)
	}
}

func TestProcessNormalizesFields(t *testing.T) {
	p := NewProcessor(utils.NewLogger(), rand.New(rand.NewSource(1)))

	raw := []*models.RawProduct{
		{
			ProductName: "  Coca-Cola 50cl  ",
			Price:       "₦1,500.00",
			Category:    "drinks",
			Source:      "Jumia",
		},
	}

	result := p.Process(raw)
	if len(result) != 1 {
		t.Fatalf("expected 1 product, got %d", len(result))
	}

	got := result[0]
	if got.ProductName != "Coca-Cola 50cl" {
		t.Errorf("name not trimmed: %q", got.ProductName)
	}
	if got.Price != 1500 {
		t.Errorf("price = %.2f; want 1500", got.Price)
	}
	if got.Category != "soft-drinks" {
		t.Errorf("category = %q; want soft-drinks", got.Category)
	}
	if got.Unit != (models.UnitInfo{Value: 500, Unit: "ml"}) {
		t.Errorf("unit = %+v; want 500 ml", got.Unit)
	}
	if got.Timestamp.IsZero() {
		t.Errorf("zero timestamp should be replaced with processing time")
	}
	if got.ViewCount < 10 || got.ViewCount > 999 {
		t.Errorf("view count proxy %d outside [10, 999]", got.ViewCount)
	}
}

func TestProcessReproducibleWithSeed(t *testing.T) {
	raw := []*models.RawProduct{
		{ProductName: "Milo Tin 400g", Price: "₦3,200", Rating: 4.5, Timestamp: time.Now()},
		{ProductName: "Ariel Powder 2kg", Price: "₦5,000", IsBestseller: true, Timestamp: time.Now()},
	}

	first := NewProcessor(utils.NewLogger(), rand.New(rand.NewSource(42))).Process(raw)
	second := NewProcessor(utils.NewLogger(), rand.New(rand.NewSource(42))).Process(raw)

	if len(first) != len(second) {
		t.Fatalf("batch sizes differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].SalesRank != second[i].SalesRank {
			t.Errorf("sales rank differs at %d: %.4f vs %.4f", i, first[i].SalesRank, second[i].SalesRank)
		}
		if first[i].ViewCount != second[i].ViewCount {
			t.Errorf("view count differs at %d: %d vs %d", i, first[i].ViewCount, second[i].ViewCount)
		}
	}
}

func TestSalesRankBounds(t *testing.T) {
	p := NewProcessor(utils.NewLogger(), rand.New(rand.NewSource(7)))

	// bestseller (100) + capped discount (25) + rating (25) + noise [0, 10)
	r := &models.RawProduct{
		ProductName:     "Ariel Powder 2kg",
		IsBestseller:    true,
		DiscountPercent: 100,
		Rating:          5,
	}

	rank := p.salesRank(r)
	if rank < 150 || rank >= 160 {
		t.Errorf("sales rank %.2f outside [150, 160)", rank)
	}

	plain := p.salesRank(&models.RawProduct{ProductName: "Plain Item"})
	if plain < 0 || plain >= 10 {
		t.Errorf("baseline rank %.2f outside [0, 10)", plain)
	}
}
