package services

import (
	"testing"

	"ngcommerce-analytics/models"
	"ngcommerce-analytics/utils"
)

func TestNameSimilarity(t *testing.T) {
	tests := []struct {
		a, b    string
		similar bool
	}{
		{"Coca-Cola 50cl", "Coca-Cola 50cl", true},
		{"Coca-Cola 50cl", "COCA-COLA 50CL", true},
		{"Coca-Cola 50cl", "Coca-Cola 60cl", true},
		{"Coca-Cola 50cl", "Eva Table Water 75cl", false},
		{"Pringles Original 110g", "Digestive Biscuits 250g", false},
	}

	for _, tt := range tests {
		got := nameSimilarity(tt.a, tt.b) >= similarityThreshold
		if got != tt.similar {
			t.Errorf("nameSimilarity(%q, %q) = %.1f; similar should be %v",
				tt.a, tt.b, nameSimilarity(tt.a, tt.b), tt.similar)
		}
	}
}

func TestDeduplicateCollapsesSimilarNames(t *testing.T) {
	d := NewDeduplicator(utils.NewLogger())

	products := []*models.Product{
		{ProductName: "Coca-Cola 50cl", Category: "soft-drinks", Source: "Jumia", SalesRank: 10},
		{ProductName: "COCA-COLA 50CL", Category: "soft-drinks", Source: "Konga", SalesRank: 20},
		{ProductName: "Eva Table Water 75cl", Category: "soft-drinks", Source: "Jumia", SalesRank: 5},
	}

	result := d.Deduplicate(products)
	if len(result) != 2 {
		t.Fatalf("expected 2 products after dedup, got %d", len(result))
	}

	// The representative is the highest-ranked cluster member.
	for _, p := range result {
		if p.ProductName == "Coca-Cola 50cl" {
			t.Errorf("lower-ranked duplicate survived dedup instead of the Konga record")
		}
	}
}

func TestDeduplicateKeepsCategoriesApart(t *testing.T) {
	d := NewDeduplicator(utils.NewLogger())

	// Identical names in different categories are different products.
	products := []*models.Product{
		{ProductName: "Value Pack 500g", Category: "snacks", SalesRank: 1},
		{ProductName: "Value Pack 500g", Category: "detergents", SalesRank: 2},
	}

	result := d.Deduplicate(products)
	if len(result) != 2 {
		t.Fatalf("cross-category merge: expected 2 products, got %d", len(result))
	}
}

func TestDeduplicateOutputIsSubset(t *testing.T) {
	d := NewDeduplicator(utils.NewLogger())

	products := []*models.Product{
		{ProductName: "Milo Tin 400g", Category: "beverages", SalesRank: 3},
		{ProductName: "Milo Tin 500g", Category: "beverages", SalesRank: 7},
		{ProductName: "Bournvita Jar 500g", Category: "beverages", SalesRank: 4},
		{ProductName: "Ariel Powder 2kg", Category: "detergents", SalesRank: 9},
	}

	names := make(map[string]bool)
	for _, p := range products {
		names[p.ProductName] = true
	}

	result := d.Deduplicate(products)
	if len(result) > len(products) {
		t.Fatalf("dedup grew the input: %d → %d", len(products), len(result))
	}
	for _, p := range result {
		if !names[p.ProductName] {
			t.Errorf("dedup invented a product: %q", p.ProductName)
		}
	}
}

func TestDeduplicateEmptyInput(t *testing.T) {
	d := NewDeduplicator(utils.NewLogger())
	if result := d.Deduplicate(nil); len(result) != 0 {
		t.Errorf("expected empty result for empty input, got %d products", len(result))
	}
}
