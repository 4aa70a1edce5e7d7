package services

import (
	"testing"

	"ngcommerce-analytics/models"
	"ngcommerce-analytics/utils"
)

func TestAnalyzeSentiment(t *testing.T) {
	a := NewReviewAnalyzer(utils.NewLogger())

	tests := []struct {
		text  string
		label string
	}{
		{"Excellent product, great quality and fast delivery. Highly recommend!", "positive"},
		{"Terrible quality, arrived broken. Total waste of money.", "negative"},
		{"The package arrived on Tuesday.", "neutral"},
		{"", "neutral"},
		{"Genuine product, very satisfied with this purchase", "positive"},
		{"Fake product, avoid this seller", "negative"},
	}

	for _, tt := range tests {
		score := a.AnalyzeSentiment(tt.text)
		if score < -1 || score > 1 {
			t.Errorf("AnalyzeSentiment(%q) = %.3f outside [-1, 1]", tt.text, score)
		}
		if got := SentimentLabel(score); got != tt.label {
			t.Errorf("AnalyzeSentiment(%q) = %.3f labeled %q; want %q", tt.text, score, got, tt.label)
		}
	}
}

func TestAnalyzeSentimentNegation(t *testing.T) {
	a := NewReviewAnalyzer(utils.NewLogger())

	plain := a.AnalyzeSentiment("good product")
	negated := a.AnalyzeSentiment("not good product")
	if !(plain > 0 && negated < 0) {
		t.Errorf("negation did not flip sentiment: plain=%.3f negated=%.3f", plain, negated)
	}

	// "never disappointed" reads positive.
	if score := a.AnalyzeSentiment("never disappointed with this brand"); score <= 0 {
		t.Errorf("negated negative word scored %.3f; want positive", score)
	}

	// The negation window is bounded: a negator four words back no longer
	// applies.
	if score := a.AnalyzeSentiment("not the one two three good"); score <= 0 {
		t.Errorf("negation window leaked past %d words: score %.3f", negationWindow, score)
	}
}

func TestSentimentLabel(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{0.9, "positive"},
		{0.21, "positive"},
		{0.2, "neutral"},
		{0, "neutral"},
		{-0.2, "neutral"},
		{-0.21, "negative"},
		{-0.9, "negative"},
	}

	for _, tt := range tests {
		if got := SentimentLabel(tt.score); got != tt.want {
			t.Errorf("SentimentLabel(%.2f) = %q; want %q", tt.score, got, tt.want)
		}
	}
}

func TestSummarize(t *testing.T) {
	a := NewReviewAnalyzer(utils.NewLogger())

	reviews := []*models.Review{
		{ProductName: "Milo Tin 400g", Text: "Excellent product, love it"},
		{ProductName: "Milo Tin 400g", Text: "Great quality, highly recommend"},
		{ProductName: "Fake Charger X", Text: "Counterfeit item, total scam, avoid"},
	}

	summaries := a.Summarize(reviews)
	if len(summaries) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(summaries))
	}

	// Sorted by average sentiment descending.
	if summaries[0].ProductName != "Milo Tin 400g" {
		t.Errorf("first summary should be the positive product, got %q", summaries[0].ProductName)
	}
	if summaries[0].ReviewCount != 2 || summaries[0].Label != "positive" || summaries[0].PositivePct != 100 {
		t.Errorf("positive summary wrong: %+v", summaries[0])
	}
	if summaries[1].Label != "negative" || summaries[1].NegativePct != 100 {
		t.Errorf("negative summary wrong: %+v", summaries[1])
	}
}

func TestSummarizeEmpty(t *testing.T) {
	a := NewReviewAnalyzer(utils.NewLogger())
	if got := a.Summarize(nil); got != nil {
		t.Errorf("expected nil summary for no reviews, got %d", len(got))
	}
}
