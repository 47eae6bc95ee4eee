// Package sentiment scores result text by blending a lexicon model with a
// statistical model and applying a negative-keyword override.
package sentiment

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/IshaanNene/serpgoat/internal/config"
	"github.com/IshaanNene/serpgoat/internal/observability"
	"github.com/IshaanNene/serpgoat/internal/types"
)

// ContentFetcher loads the readable text behind a URL. An
// *extract.ArticleText satisfies it.
type ContentFetcher interface {
	FetchText(ctx context.Context, rawURL string) (string, error)
}

// Engine produces SentimentResults. It is safe to share across results
// but is called sequentially by the pipeline.
type Engine struct {
	cfg         config.SentimentConfig
	lexicon     Model
	statistical Model
	keywords    *KeywordMatcher
	content     ContentFetcher
	metrics     *observability.Metrics
	logger      *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithContentFetcher enables the full-content fetch for short texts.
func WithContentFetcher(f ContentFetcher) Option {
	return func(e *Engine) { e.content = f }
}

// WithMetrics records a counter per category.
func WithMetrics(m *observability.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// NewEngine creates an Engine. lexicon may be nil, in which case the
// statistical model is used alone.
func NewEngine(cfg config.SentimentConfig, lexicon, statistical Model, logger *slog.Logger, opts ...Option) *Engine {
	e := &Engine{
		cfg:         cfg,
		lexicon:     lexicon,
		statistical: statistical,
		keywords:    NewKeywordMatcher(cfg.NegativeKeywords),
		logger:      logger.With("component", "sentiment"),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.lexicon == nil {
		e.logger.Warn("lexicon model unavailable, using statistical model alone")
	}
	return e
}

// NewDefaultEngine loads the bundled VADER and naive Bayes models. A model
// that fails to load is logged and left out.
func NewDefaultEngine(cfg config.SentimentConfig, logger *slog.Logger, opts ...Option) *Engine {
	var lexicon, statistical Model
	if m, err := NewVaderModel(); err != nil {
		logger.Warn("vader model failed to load", "error", err)
	} else {
		lexicon = m
	}
	if m, err := NewBayesModel(); err != nil {
		logger.Warn("bayes model failed to load", "error", err)
	} else {
		statistical = m
	}
	return NewEngine(cfg, lexicon, statistical, logger, opts...)
}

// Analyze scores text. Lengths are counted in characters. When text is
// shorter than the configured minimum and rawURL is set, the page text is
// fetched and appended first. Any failure yields a Neutral result.
func (e *Engine) Analyze(ctx context.Context, text, rawURL string) (res types.SentimentResult) {
	defer func() {
		if p := recover(); p != nil {
			e.logger.Error("sentiment analysis panicked", "url", rawURL, "panic", fmt.Sprint(p))
			res = types.NeutralSentiment
		}
		e.metrics.Sentiment(string(res.Category))
	}()

	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) < e.cfg.MinTextLength && rawURL != "" {
		text = e.appendContent(ctx, text, rawURL)
	}
	if utf8.RuneCountInString(text) < e.cfg.MinAnalyzableLength {
		return types.NeutralSentiment
	}

	lower := strings.ToLower(text)
	score, err := e.blend(lower)
	if err != nil {
		e.logger.Warn("sentiment model failed", "url", rawURL, "error", err)
		return types.NeutralSentiment
	}

	if e.keywords.Contains(lower) {
		score = math.Min(score-e.cfg.KeywordPenalty, e.cfg.NegativeCap)
		e.logger.Debug("negative keyword override", "url", rawURL, "keywords", e.keywords.Matches(lower))
	}
	return types.SentimentFromScore(score)
}

// appendContent adds the fetched page text to text. Fetch failures leave
// text unchanged.
func (e *Engine) appendContent(ctx context.Context, text, rawURL string) string {
	if e.content == nil || !e.cfg.FetchFullContent {
		return text
	}
	full, err := e.content.FetchText(ctx, rawURL)
	if err != nil {
		e.logger.Debug("full content fetch failed", "url", rawURL, "error", err)
		return text
	}
	if full = strings.TrimSpace(full); full == "" {
		return text
	}
	if text == "" {
		return full
	}
	return text + " " + full
}

func (e *Engine) blend(text string) (float64, error) {
	if e.statistical == nil && e.lexicon == nil {
		return 0, fmt.Errorf("no sentiment model available")
	}
	if e.lexicon == nil {
		return e.statistical.Polarity(text)
	}

	lex, err := e.lexicon.Polarity(text)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", e.lexicon.Name(), err)
	}
	if e.statistical == nil {
		return lex, nil
	}
	stat, err := e.statistical.Polarity(text)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", e.statistical.Name(), err)
	}
	return e.cfg.LexiconWeight*lex + e.cfg.StatisticalWeight*stat, nil
}
