package konga

import "testing"

func TestParseRating(t *testing.T) {
	tests := []struct {
		text string
		want float64
	}{
		{"4.5", 4.5},
		{"3", 3},
		{" 2.8 ", 2.8},
		{"", 0},
		{"unrated", 0},
		{"7.5", 0},
	}

	for _, tt := range tests {
		if got := parseRating(tt.text); got != tt.want {
			t.Errorf("parseRating(%q) = %.2f; want %.2f", tt.text, got, tt.want)
		}
	}
}

func TestDiscountFrom(t *testing.T) {
	tests := []struct {
		current string
		old     string
		want    float64
	}{
		{"₦750", "₦1,000", 25},
		{"₦1,000", "₦1,000", 0},
		{"₦1,200", "₦1,000", 0}, // struck price lower than current: no discount
		{"₦500", "", 0},
		{"", "₦1,000", 0},
	}

	for _, tt := range tests {
		if got := discountFrom(tt.current, tt.old); got != tt.want {
			t.Errorf("discountFrom(%q, %q) = %.2f; want %.2f", tt.current, tt.old, got, tt.want)
		}
	}
}

func TestPriceDigits(t *testing.T) {
	tests := []struct {
		text string
		want float64
	}{
		{"₦1,250.50", 1250.50},
		{"NGN 900", 900},
		{"", 0},
		{"call for price", 0},
	}

	for _, tt := range tests {
		if got := priceDigits(tt.text); got != tt.want {
			t.Errorf("priceDigits(%q) = %.2f; want %.2f", tt.text, got, tt.want)
		}
	}
}
