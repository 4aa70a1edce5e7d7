package services

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"ngcommerce-analytics/models"
	"ngcommerce-analytics/utils"
)

// positiveWords and negativeWords form the sentiment lexicon. Weighted
// words (see wordWeights) carry stronger sentiment than the default 1.0.
var positiveWords = wordSet(
	"good", "great", "excellent", "amazing", "wonderful", "best", "perfect",
	"love", "awesome", "fantastic", "quality", "recommend", "satisfied",
	"happy", "pleased", "impressive", "outstanding", "super", "nice", "worth",
	"beautiful", "comfortable", "easy", "reliable", "durable", "affordable",
	"value", "fast", "genuine", "authentic", "efficient", "helpful",
)

var negativeWords = wordSet(
	"bad", "poor", "terrible", "horrible", "awful", "worst", "disappointed",
	"disappointing", "defective", "broken", "cheap", "expensive", "waste",
	"slow", "difficult", "hard", "uncomfortable", "useless", "overpriced",
	"fake", "counterfeit", "unhappy", "regret", "problem", "issue", "faulty",
	"damaged", "late", "delay", "malfunction", "fail", "failure", "complaint",
	"return", "refund", "scam", "unreliable", "avoid",
)

var wordWeights = map[string]float64{
	"excellent": 1.5, "amazing": 1.5, "outstanding": 1.5, "perfect": 1.5,
	"terrible": 1.5, "horrible": 1.5, "awful": 1.5, "best": 1.5, "worst": 1.5,
	"love": 1.3, "fantastic": 1.3, "disappointed": 1.3,
	"counterfeit": 1.8, "fake": 1.5, "scam": 1.8, "waste": 1.3,
	"recommend": 1.4, "avoid": 1.4, "genuine": 1.3, "authentic": 1.3,
}

// negationWords invert the sentiment of the following few words.
var negationWords = wordSet(
	"not", "no", "never", "don't", "doesn't", "didn't", "isn't", "aren't",
	"wasn't", "weren't", "haven't", "hasn't", "hadn't", "won't", "wouldn't",
	"can't", "couldn't", "shouldn't", "without",
)

// negationWindow is how many words after a negator have their sentiment flipped.
const negationWindow = 3

// ReviewAnalyzer scores customer review text with a lexicon-based
// sentiment model. No trained model is involved; the scoring is a
// transparent weighted word count.
type ReviewAnalyzer struct {
	logger *utils.Logger
}

// NewReviewAnalyzer creates a ReviewAnalyzer with the given logger.
func NewReviewAnalyzer(logger *utils.Logger) *ReviewAnalyzer {
	return &ReviewAnalyzer{logger: logger}
}

// AnalyzeSentiment scores a single review text in [-1, 1]. Text with no
// sentiment-bearing words scores 0.
func (a *ReviewAnalyzer) AnalyzeSentiment(text string) float64 {
	words := tokenize(text)
	if len(words) == 0 {
		return 0
	}

	var posScore, negScore float64
	negated := false
	window := 0

	for _, word := range words {
		if window > 0 {
			window--
		} else if negated {
			negated = false
		}

		if _, ok := negationWords[word]; ok {
			negated = true
			window = negationWindow
			continue
		}

		weight := 1.0
		if w, ok := wordWeights[word]; ok {
			weight = w
		}

		value := 0.0
		if _, ok := positiveWords[word]; ok {
			value = weight
		} else if _, ok := negativeWords[word]; ok {
			value = -weight
		}

		if negated {
			value = -value
		}

		if value > 0 {
			posScore += value
		} else if value < 0 {
			negScore -= value
		}
	}

	total := posScore + negScore
	if total == 0 {
		return 0
	}

	return math.Tanh((posScore - negScore) / total)
}

// SentimentLabel buckets a score into positive / neutral / negative.
func SentimentLabel(score float64) string {
	switch {
	case score > 0.2:
		return "positive"
	case score < -0.2:
		return "negative"
	default:
		return "neutral"
	}
}

// Summarize aggregates sentiment per product across a batch of reviews,
// sorted by average sentiment descending.
func (a *ReviewAnalyzer) Summarize(reviews []*models.Review) []*models.ReviewSummary {
	if len(reviews) == 0 {
		a.logger.Warn("[reviews] No reviews to summarize")
		return nil
	}

	type agg struct {
		sum      float64
		count    int
		positive int
		negative int
	}
	byProduct := make(map[string]*agg)

	for _, r := range reviews {
		score := a.AnalyzeSentiment(r.Text)
		s, ok := byProduct[r.ProductName]
		if !ok {
			s = &agg{}
			byProduct[r.ProductName] = s
		}
		s.sum += score
		s.count++
		switch SentimentLabel(score) {
		case "positive":
			s.positive++
		case "negative":
			s.negative++
		}
	}

	summaries := make([]*models.ReviewSummary, 0, len(byProduct))
	for name, s := range byProduct {
		avg := s.sum / float64(s.count)
		summaries = append(summaries, &models.ReviewSummary{
			ProductName:  name,
			ReviewCount:  s.count,
			AvgSentiment: round2(avg),
			Label:        SentimentLabel(avg),
			PositivePct:  round2(float64(s.positive) / float64(s.count) * 100),
			NegativePct:  round2(float64(s.negative) / float64(s.count) * 100),
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].AvgSentiment != summaries[j].AvgSentiment {
			return summaries[i].AvgSentiment > summaries[j].AvgSentiment
		}
		return summaries[i].ProductName < summaries[j].ProductName
	})

	a.logger.Info("[reviews] Summarized %d reviews across %d products", len(reviews), len(summaries))
	return summaries
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '\''
	})
}

func wordSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
