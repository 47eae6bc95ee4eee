package types

import "math"

// Sentiment is the category attached to a result.
type Sentiment string

const (
	SentimentPositive Sentiment = "Positive"
	SentimentNeutral  Sentiment = "Neutral"
	SentimentNegative Sentiment = "Negative"
)

// Category thresholds. A score at or above PositiveThreshold is Positive,
// at or below NegativeThreshold is Negative, anything between is Neutral.
const (
	PositiveThreshold = 0.1
	NegativeThreshold = -0.1
)

// SentimentResult is a category and a score rounded to two decimals.
type SentimentResult struct {
	Category Sentiment `json:"sentiment"`
	Score    float64   `json:"sentiment_score"`
}

// NeutralSentiment is returned for empty input and on internal failures.
var NeutralSentiment = SentimentResult{Category: SentimentNeutral, Score: 0}

// SentimentFromScore clamps score to [-1, 1], rounds it to two decimals and
// categorizes the rounded value, so the category always agrees with the
// published score.
func SentimentFromScore(score float64) SentimentResult {
	if math.IsNaN(score) {
		return NeutralSentiment
	}
	score = math.Max(-1, math.Min(1, score))
	rounded := math.Round(score*100) / 100
	if rounded == 0 {
		rounded = 0 // normalize -0
	}
	return SentimentResult{Category: Categorize(rounded), Score: rounded}
}

// Categorize maps a score to a category using the fixed thresholds.
func Categorize(score float64) Sentiment {
	switch {
	case score >= PositiveThreshold:
		return SentimentPositive
	case score <= NegativeThreshold:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}
