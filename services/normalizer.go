package services

import (
	"regexp"
	"strconv"
	"strings"

	"ngcommerce-analytics/models"
)

var (
	// nonPriceRegexp matches everything that is not a digit or decimal point
	nonPriceRegexp = regexp.MustCompile(`[^\d.]`)
	// unitValueRegexp captures the first numeric token in a product name
	unitValueRegexp = regexp.MustCompile(`(\d+\.?\d*)`)
	// unitNameRegexp captures an alphabetic unit token
	unitNameRegexp = regexp.MustCompile(`([a-zA-Z]+)`)
)

// volumeUnits maps volume unit synonyms to their milliliter multiplier.
var volumeUnits = map[string]float64{
	"l": 1000, "ltr": 1000, "litre": 1000, "liter": 1000, "litres": 1000, "liters": 1000,
	"cl": 10, "centiliter": 10, "centilitre": 10,
	"ml": 1, "milliliter": 1, "millilitre": 1,
}

// weightUnits maps weight unit synonyms to their gram multiplier.
var weightUnits = map[string]float64{
	"kg": 1000, "kilo": 1000, "kilos": 1000, "kilogram": 1000, "kilograms": 1000,
	"g": 1, "gram": 1, "grams": 1, "gm": 1,
	"mg": 0.001, "milligram": 0.001, "milligrams": 0.001,
}

// NormalizePrice coerces a raw price string ("₦12,500.00", "NGN 3500") to a
// float. Malformed or empty input yields 0 — a dirty price must never
// abort a batch.
func NormalizePrice(raw string) float64 {
	if raw == "" {
		return 0
	}

	cleaned := strings.ReplaceAll(raw, ",", "")
	cleaned = nonPriceRegexp.ReplaceAllString(cleaned, "")
	if cleaned == "" {
		return 0
	}

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return value
}

// NormalizeUnits extracts a size token from free text ("500ml", "1.5L",
// "2kg") and converts it to canonical units: volumes to milliliters,
// weights to grams. Text without a numeric token yields the zero value;
// an unrecognized unit is passed through lower-cased with the raw value.
func NormalizeUnits(text string) models.UnitInfo {
	if text == "" {
		return models.UnitInfo{}
	}

	loc := unitValueRegexp.FindStringIndex(text)
	if loc == nil {
		return models.UnitInfo{}
	}

	value, err := strconv.ParseFloat(text[loc[0]:loc[1]], 64)
	if err != nil {
		return models.UnitInfo{}
	}

	// The unit is the first alphabetic token after the number.
	unit := strings.ToLower(unitNameRegexp.FindString(text[loc[1]:]))

	if mult, ok := volumeUnits[unit]; ok {
		return models.UnitInfo{Value: value * mult, Unit: "ml"}
	}
	if mult, ok := weightUnits[unit]; ok {
		return models.UnitInfo{Value: value * mult, Unit: "g"}
	}

	return models.UnitInfo{Value: value, Unit: unit}
}
