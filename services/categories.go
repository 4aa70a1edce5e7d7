package services

import (
	"regexp"
	"strings"
)

// CategoryOther is the fallback bucket for products no rule matches.
const CategoryOther = "other"

// Categories is the fixed canonical set every source label maps into.
var Categories = []string{
	"beverages", "soft-drinks", "detergents", "snacks", "personal-care", "food", CategoryOther,
}

type categoryRule struct {
	pattern  *regexp.Regexp
	category string
}

// categoryRules is an ordered rule table: earlier rules win. A product
// matching both the detergent and personal-care soap patterns resolves to
// detergents because that block comes first.
var categoryRules = []categoryRule{
	// Beverages
	{regexp.MustCompile(`tea|coffee|cocoa|hot\s+chocolate|milo|bournvita|ovaltine`), "beverages"},
	{regexp.MustCompile(`water|mineral\s+water|bottled\s+water|table\s+water`), "beverages"},
	{regexp.MustCompile(`energy\s+drink|milk|chocolate\s+drink`), "beverages"},

	// Soft drinks
	{regexp.MustCompile(`soda|cola|pepsi|coca[\s-]*cola|fanta|sprite|7up|seven\s*up|coke`), "soft-drinks"},
	{regexp.MustCompile(`soft\s+drink|carbonated`), "soft-drinks"},
	{regexp.MustCompile(`mirinda|mountain\s+dew|teem|schweppes`), "soft-drinks"},

	// Detergents
	{regexp.MustCompile(`detergent|soap|washing\s+powder`), "detergents"},
	{regexp.MustCompile(`bleach|stain\s+remover|fabric\s+cleaner`), "detergents"},
	{regexp.MustCompile(`laundry|cleaning\s+agent|dishwashing`), "detergents"},
	{regexp.MustCompile(`omo|ariel|sunlight|surf`), "detergents"},

	// Snacks
	{regexp.MustCompile(`biscuit|cookie|wafer|chips|crisps`), "snacks"},
	{regexp.MustCompile(`snack|chocolate|candy|sweet|gum`), "snacks"},
	{regexp.MustCompile(`popcorn|pringles|digestive`), "snacks"},

	// Personal care
	{regexp.MustCompile(`body\s+wash|shower\s+gel`), "personal-care"},
	{regexp.MustCompile(`toothpaste|toothbrush|dental|floss`), "personal-care"},
	{regexp.MustCompile(`shampoo|conditioner|hair\s+care`), "personal-care"},
	{regexp.MustCompile(`deodorant|antiperspirant|body\s+spray`), "personal-care"},
	{regexp.MustCompile(`lotion|cream|moisturizer|sunscreen`), "personal-care"},

	// Food
	{regexp.MustCompile(`rice|beans|pasta|noodles|spaghetti`), "food"},
	{regexp.MustCompile(`flour|sugar|salt|seasoning|spice`), "food"},
	{regexp.MustCompile(`oil|cooking\s+oil|vegetable\s+oil|palm\s+oil`), "food"},
	{regexp.MustCompile(`bread|cereal|breakfast`), "food"},
	{regexp.MustCompile(`canned|tinned|sardine|tuna|tomato\s+paste`), "food"},
}

// CategorizeProduct maps a product name (and optional source category
// label) to a canonical category via the ordered rule table. The name is
// tried first, then the source label; no match yields "other". This is a
// deliberate heuristic — misclassifications are expected and acceptable.
func CategorizeProduct(productName, sourceCategory string) string {
	if name := strings.ToLower(productName); name != "" {
		for _, rule := range categoryRules {
			if rule.pattern.MatchString(name) {
				return rule.category
			}
		}
	}

	if label := strings.ToLower(sourceCategory); label != "" {
		for _, rule := range categoryRules {
			if rule.pattern.MatchString(label) {
				return rule.category
			}
		}
	}

	return CategoryOther
}
