package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/IshaanNene/serpgoat/internal/types"
)

// Analyzer scores a text span, fetching the URL's content when the span
// is too short. *sentiment.Engine satisfies it.
type Analyzer interface {
	Analyze(ctx context.Context, text, rawURL string) types.SentimentResult
}

// ContentExtractor produces the platform content for a result, or nil.
// *extract.Dispatcher satisfies it.
type ContentExtractor interface {
	Extract(ctx context.Context, r *types.SearchResult) *types.ContentRecord
}

// SentimentMiddleware scores each result's snippet.
type SentimentMiddleware struct {
	analyzer Analyzer
}

func NewSentimentMiddleware(a Analyzer) *SentimentMiddleware {
	return &SentimentMiddleware{analyzer: a}
}

func (m *SentimentMiddleware) Name() string { return "sentiment" }

func (m *SentimentMiddleware) Process(ctx context.Context, r *types.SearchResult) (*types.SearchResult, error) {
	r.SetSentiment(m.analyzer.Analyze(ctx, r.Snippet, r.URL))
	return r, nil
}

// ContentMiddleware merges the platform content record into each result.
type ContentMiddleware struct {
	extractor ContentExtractor
}

func NewContentMiddleware(e ContentExtractor) *ContentMiddleware {
	return &ContentMiddleware{extractor: e}
}

func (m *ContentMiddleware) Name() string { return "content" }

func (m *ContentMiddleware) Process(ctx context.Context, r *types.SearchResult) (*types.SearchResult, error) {
	r.Merge(m.extractor.Extract(ctx, r))
	return r, nil
}

// TrimMiddleware trims text fields and collapses inner whitespace runs to
// a single space. Fields are already plain text, so markup-looking spans
// such as "a < b > c" are kept verbatim.
type TrimMiddleware struct{}

func (m *TrimMiddleware) Name() string { return "trim" }

func (m *TrimMiddleware) Process(_ context.Context, r *types.SearchResult) (*types.SearchResult, error) {
	eachText(r, func(s string) string {
		return strings.Join(strings.Fields(s), " ")
	})
	return r, nil
}

// DateNormalizeMiddleware rewrites a recognised content publish date in
// outFormat. Unrecognised dates are left as found.
type DateNormalizeMiddleware struct {
	outFormat string
	inFormats []string
}

func NewDateNormalizeMiddleware(outFormat string) *DateNormalizeMiddleware {
	if outFormat == "" {
		outFormat = time.RFC3339
	}
	return &DateNormalizeMiddleware{
		outFormat: outFormat,
		inFormats: []string{
			time.RFC3339,
			time.RFC1123,
			time.RFC1123Z,
			time.RFC822,
			time.RFC822Z,
			"2006-01-02",
			"2006-01-02T15:04:05",
			"2006-01-02 15:04:05",
			"01/02/2006",
			"January 2, 2006",
			"Jan 2, 2006",
			"2 January 2006",
			"2 Jan 2006",
			"Mon, 02 Jan 2006",
			"02-Jan-2006",
			"2006/01/02",
		},
	}
}

func (m *DateNormalizeMiddleware) Name() string { return "date_normalize" }

func (m *DateNormalizeMiddleware) Process(_ context.Context, r *types.SearchResult) (*types.SearchResult, error) {
	if r.Content == nil || r.Content.PublishDate == "" {
		return r, nil
	}
	s := strings.TrimSpace(r.Content.PublishDate)
	for _, format := range m.inFormats {
		if t, err := time.Parse(format, s); err == nil {
			r.Content.PublishDate = t.Format(m.outFormat)
			break
		}
	}
	return r, nil
}

// eachText applies fn to every free-text field of the result and its
// content record. URLs are left alone.
func eachText(r *types.SearchResult, fn func(string) string) {
	r.Title = fn(r.Title)
	r.Snippet = fn(r.Snippet)
	c := r.Content
	if c == nil {
		return
	}
	c.Title = fn(c.Title)
	c.Content = fn(c.Content)
	c.Author = fn(c.Author)
	c.PublishDate = fn(c.PublishDate)
	for i := range c.Comments {
		c.Comments[i] = fn(c.Comments[i])
	}
}
