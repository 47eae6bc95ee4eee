package sentiment

import (
	"fmt"
	"strings"

	ahocorasick "github.com/cloudflare/ahocorasick"
	bayes "github.com/cdipaolo/sentiment"
	"github.com/jonreiter/govader"
)

// Model scores lowercased text with a polarity in [-1, 1].
type Model interface {
	Name() string
	Polarity(text string) (float64, error)
}

// VaderModel is the lexicon model: the VADER compound score.
type VaderModel struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

// NewVaderModel loads the VADER lexicon.
func NewVaderModel() (m *VaderModel, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("loading vader lexicon: %v", p)
		}
	}()
	return &VaderModel{analyzer: govader.NewSentimentIntensityAnalyzer()}, nil
}

func (m *VaderModel) Name() string { return "vader" }

// Polarity implements Model.
func (m *VaderModel) Polarity(text string) (float64, error) {
	return m.analyzer.PolarityScores(text).Compound, nil
}

// BayesModel is the statistical model: a naive Bayes classifier whose
// per-word probabilities are averaged into a polarity.
type BayesModel struct {
	models bayes.Models
}

// NewBayesModel restores the bundled pre-trained classifier.
func NewBayesModel() (*BayesModel, error) {
	models, err := bayes.Restore()
	if err != nil {
		return nil, fmt.Errorf("restoring bayes model: %w", err)
	}
	return &BayesModel{models: models}, nil
}

func (m *BayesModel) Name() string { return "bayes" }

// Polarity implements Model. Each word scores 0 or 1; the mean is mapped
// onto [-1, 1].
func (m *BayesModel) Polarity(text string) (float64, error) {
	analysis := m.models.SentimentAnalysis(text, bayes.English)
	if analysis == nil || len(analysis.Words) == 0 {
		return 0, nil
	}
	var sum float64
	for _, w := range analysis.Words {
		sum += 2*float64(w.Score) - 1
	}
	return sum / float64(len(analysis.Words)), nil
}

// KeywordMatcher finds negative keywords as substrings of lowercased text.
type KeywordMatcher struct {
	matcher  *ahocorasick.Matcher
	keywords []string
}

// NewKeywordMatcher builds the automaton over the lowercased keywords.
// Blank entries are ignored.
func NewKeywordMatcher(keywords []string) *KeywordMatcher {
	kept := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			kept = append(kept, k)
		}
	}
	return &KeywordMatcher{matcher: ahocorasick.NewStringMatcher(kept), keywords: kept}
}

// Contains reports whether any keyword occurs in text.
func (k *KeywordMatcher) Contains(text string) bool {
	if k == nil || len(k.keywords) == 0 {
		return false
	}
	return k.matcher.Contains([]byte(text))
}

// Matches returns the distinct keywords found in text.
func (k *KeywordMatcher) Matches(text string) []string {
	if k == nil || len(k.keywords) == 0 {
		return nil
	}
	hits := k.matcher.Match([]byte(text))
	out := make([]string, 0, len(hits))
	for _, i := range hits {
		out = append(out, k.keywords[i])
	}
	return out
}
