package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IshaanNene/serpgoat/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

type stubAnalyzer struct {
	texts []string
}

func (a *stubAnalyzer) Analyze(_ context.Context, text, _ string) types.SentimentResult {
	a.texts = append(a.texts, text)
	return types.SentimentFromScore(-0.5)
}

type stubExtractor map[string]*types.ContentRecord

func (e stubExtractor) Extract(_ context.Context, r *types.SearchResult) *types.ContentRecord {
	return e[r.URL]
}

type failing struct{}

func (failing) Name() string { return "failing" }
func (failing) Process(context.Context, *types.SearchResult) (*types.SearchResult, error) {
	return nil, errors.New("boom")
}

type panicking struct{}

func (panicking) Name() string { return "panicking" }
func (panicking) Process(context.Context, *types.SearchResult) (*types.SearchResult, error) {
	panic("bad")
}

type dropOther struct{}

func (dropOther) Name() string { return "drop_other" }
func (dropOther) Process(_ context.Context, r *types.SearchResult) (*types.SearchResult, error) {
	if r.Platform == types.PlatformOther {
		return nil, nil
	}
	return r, nil
}

func result(url string, p types.Platform) *types.SearchResult {
	return &types.SearchResult{Title: " t ", URL: url, Snippet: "  snip  ", Platform: p, Sentiment: types.SentimentNeutral}
}

func TestPipelineEnrichesInOrder(t *testing.T) {
	analyzer := &stubAnalyzer{}
	extractor := stubExtractor{
		"https://cnn.com/a": {Title: "\n  Headline ", Content: "Body\t&\n\n more", URL: "https://cnn.com/a", Platform: types.PlatformNews},
	}

	p := New(testLogger)
	p.Use(NewContentMiddleware(extractor))
	p.Use(&TrimMiddleware{})
	p.Use(NewSentimentMiddleware(analyzer))
	assert.Equal(t, 3, p.Len())

	out := p.Run(context.Background(), []*types.SearchResult{
		result("https://cnn.com/a", types.PlatformNews),
		result("https://example.com/b", types.PlatformOther),
	})
	require.Len(t, out, 2)

	assert.Equal(t, "https://cnn.com/a", out[0].URL)
	require.NotNil(t, out[0].Content)
	assert.Equal(t, "Headline", out[0].Content.Title)
	assert.Equal(t, "Body & more", out[0].Content.Content)
	assert.Equal(t, "snip", out[0].Snippet)
	assert.Equal(t, types.SentimentNegative, out[0].Sentiment)
	assert.Equal(t, -0.5, out[0].Score)

	assert.Nil(t, out[1].Content)
	assert.Equal(t, []string{"snip", "snip"}, analyzer.texts)

	rec := out[0].Record()
	assert.Equal(t, "Headline", rec["title"])
	assert.Equal(t, "snip", rec["snippet"])
}

func TestPipelineSurvivesFailingStages(t *testing.T) {
	p := New(testLogger)
	p.Use(failing{})
	p.Use(panicking{})
	p.Use(&TrimMiddleware{})

	out := p.Run(context.Background(), []*types.SearchResult{result("https://a.com", types.PlatformOther)})
	require.Len(t, out, 1)
	assert.Equal(t, "t", out[0].Title)
}

func TestPipelineDrops(t *testing.T) {
	p := New(testLogger)
	p.Use(dropOther{})

	out := p.Run(context.Background(), []*types.SearchResult{
		result("https://a.com", types.PlatformOther),
		result("https://reddit.com/r/x", types.PlatformReddit),
	})
	require.Len(t, out, 1)
	assert.Equal(t, types.PlatformReddit, out[0].Platform)
}

func TestPipelineCancelledPassesThrough(t *testing.T) {
	analyzer := &stubAnalyzer{}
	p := New(testLogger)
	p.Use(NewSentimentMiddleware(analyzer))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	in := []*types.SearchResult{result("https://a.com", types.PlatformOther), result("https://b.com", types.PlatformOther)}
	out := p.Run(ctx, in)
	assert.Equal(t, in, out)
	assert.Empty(t, analyzer.texts)
	assert.Equal(t, types.SentimentNeutral, out[0].Sentiment)
}

func TestDateNormalizeMiddleware(t *testing.T) {
	m := NewDateNormalizeMiddleware("2006-01-02")

	tests := []struct {
		input    string
		expected string
	}{
		{"January 15, 2024", "2024-01-15"},
		{"2024-01-15T08:30:00Z", "2024-01-15"},
		{"Jan 15, 2024", "2024-01-15"},
		{"yesterday", "yesterday"},
	}
	for _, tt := range tests {
		r := result("https://cnn.com/a", types.PlatformNews)
		r.Content = &types.ContentRecord{PublishDate: tt.input, Platform: types.PlatformNews}
		out, err := m.Process(context.Background(), r)
		require.NoError(t, err)
		assert.Equal(t, tt.expected, out.Content.PublishDate, tt.input)
	}

	bare := result("https://a.com", types.PlatformOther)
	out, err := m.Process(context.Background(), bare)
	require.NoError(t, err)
	assert.Nil(t, out.Content)
}

func TestTrimKeepsAngleBracketText(t *testing.T) {
	r := result("https://reddit.com/r/x", types.PlatformReddit)
	r.Snippet = "Refund took < 3 days?  No, this shop is a scam > avoid it"
	r.Content = &types.ContentRecord{Comments: []string{"  a < b  ", "x &lt; y"}, Platform: types.PlatformReddit}

	out, err := (&TrimMiddleware{}).Process(context.Background(), r)
	require.NoError(t, err)
	assert.Equal(t, "Refund took < 3 days? No, this shop is a scam > avoid it", out.Snippet)
	assert.Equal(t, []string{"a < b", "x &lt; y"}, out.Content.Comments)
	assert.Equal(t, "https://reddit.com/r/x", out.URL)
}
