package serpgoat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IshaanNene/serpgoat/internal/config"
	"github.com/IshaanNene/serpgoat/internal/fetcher"
	"github.com/IshaanNene/serpgoat/internal/observability"
	"github.com/IshaanNene/serpgoat/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

const longSnippet = "A long snippet describing the company and what people say about it online."

// siteDriver serves a one-page results listing and canned detail pages.
type siteDriver struct {
	serp     string
	pages    map[string]string
	requests []*types.Request
	opens    int
	closes   int
}

func (d *siteDriver) Open(context.Context) error { d.opens++; return nil }
func (d *siteDriver) Close() error               { d.closes++; return nil }
func (d *siteDriver) Type() string               { return "site" }

func (d *siteDriver) Fetch(_ context.Context, req *types.Request) (*types.Response, error) {
	d.requests = append(d.requests, req)
	u := req.URLString()
	switch {
	case req.Tag == "warmup":
		return types.NewResponse(req, http.StatusOK, nil, nil, u, 0), nil
	case req.Tag == "serp":
		return types.NewResponse(req, http.StatusOK, nil, []byte(d.serp), u, 0), nil
	}
	if body, ok := d.pages[u]; ok {
		return types.NewResponse(req, http.StatusOK, nil, []byte(body), u, 0), nil
	}
	return types.NewResponse(req, http.StatusNotFound, nil, []byte("<html><body>not found</body></html>"), u, 0), nil
}

func (d *siteDriver) tags() map[string]int {
	out := map[string]int{}
	for _, r := range d.requests {
		out[r.Tag]++
	}
	return out
}

type block struct{ url, title, snippet string }

func serpPage(blocks ...block) string {
	var b strings.Builder
	b.WriteString(`<html><body><div id="search">`)
	for _, bl := range blocks {
		fmt.Fprintf(&b, `<div class="g"><a href="%s"><h3>%s</h3></a><div class="VwiC3b">%s</div></div>`, bl.url, bl.title, bl.snippet)
	}
	b.WriteString(`</div></body></html>`)
	return b.String()
}

type fixedModel float64

func (fixedModel) Name() string                       { return "fixed" }
func (m fixedModel) Polarity(string) (float64, error) { return float64(m), nil }

type memSink struct {
	records []types.Record
	closed  bool
}

func (m *memSink) Name() string { return "mem" }
func (m *memSink) Store(r []types.Record) error {
	m.records = append(m.records, r...)
	return nil
}
func (m *memSink) Close() error { m.closed = true; return nil }

func newTestClient(t *testing.T, d *siteDriver, opts ...Option) *Client {
	t.Helper()
	base := []Option{
		WithLogger(testLogger),
		WithDriverFactory(func(*config.Config, *slog.Logger) fetcher.Fetcher { return d }),
		WithDelays(fetcher.NoDelay{}, fetcher.NoDelay{}),
		WithSentimentModels(fixedModel(0.5), fixedModel(0.5)),
	}
	c, err := New(append(base, opts...)...)
	require.NoError(t, err)
	return c
}

func TestRunEndToEnd(t *testing.T) {
	d := &siteDriver{
		serp: serpPage(
			block{"https://www.cnn.com/2024/acme", "Acme in the news", longSnippet},
			block{"https://www.reddit.com/r/acme/1", "Is Acme legit?", longSnippet},
			block{"https://example.com/review", "Review", "Acme is a total scam, avoid them at all costs please."},
			block{"https://twitter.com/acme/status/1", "Acme on X", longSnippet},
			block{"ftp://example.com/file", "Bad scheme", longSnippet},
		),
		pages: map[string]string{
			"https://www.cnn.com/2024/acme": `<html><body><h1>Acme grows</h1><span class="author">Jane Doe</span>
				<div class="article-body"><p>Acme had a good year.</p></div></body></html>`,
			"https://www.reddit.com/r/acme/1": `<html><body><div data-test-id="post-content">Thoughts?</div>
				<div class="Comment">Works for me</div><div class="Comment">Fine</div></body></html>`,
		},
	}
	sink := &memSink{}
	m := observability.NewMetrics(testLogger)
	c := newTestClient(t, d, WithStorage(sink), WithMetrics(m))

	report, err := c.Run(context.Background(), "acme", "01/15/2024")
	require.NoError(t, err)
	require.Len(t, report.Results, 4)
	assert.Equal(t, 4, report.Stored)
	assert.True(t, sink.closed)
	require.Len(t, sink.records, 4)

	news := sink.records[0]
	assert.Equal(t, "news", news["platform"])
	assert.Equal(t, "Acme grows", news["title"])
	assert.Equal(t, "Jane Doe", news["author"])
	assert.Equal(t, "Acme had a good year.", news["content"])
	assert.Equal(t, "Positive", news["sentiment"])
	assert.Equal(t, 0.5, news["sentiment_score"])
	assert.Equal(t, "acme", news["keyword"])
	assert.Equal(t, "01/15/2024", news["search_date"])
	assert.Equal(t, report.RunID, news["run_id"])

	thread := sink.records[1]
	assert.Equal(t, "reddit", thread["platform"])
	assert.Equal(t, []string{"Works for me", "Fine"}, thread["comments"])
	assert.Equal(t, "", thread["title"])

	other := sink.records[2]
	assert.Equal(t, "other", other["platform"])
	assert.Equal(t, "Negative", other["sentiment"])
	assert.Equal(t, -0.1, other["sentiment_score"])
	_, hasContent := other["content"]
	assert.False(t, hasContent)

	social := sink.records[3]
	assert.Equal(t, "twitter", social["platform"])
	assert.Equal(t, "Acme on X", social["title"])

	tags := d.tags()
	assert.Equal(t, 1, tags["serp"])
	assert.Equal(t, 1, tags["warmup"])
	assert.Equal(t, 2, tags["detail"])
	assert.Zero(t, tags["article"])
	assert.Equal(t, d.opens, d.closes)

	snap := m.Snapshot()
	assert.Equal(t, 4.0, snap["serpgoat_results_total"])
	assert.Equal(t, 4.0, snap["serpgoat_records_stored_total"])
}

func TestRunShortSnippetFetchesArticle(t *testing.T) {
	d := &siteDriver{
		serp: serpPage(block{"https://example.com/a", "A", "short"}),
		pages: map[string]string{
			"https://example.com/a": `<html><body><article>Honest company, fast delivery.</article></body></html>`,
		},
	}
	sink := &memSink{}
	c := newTestClient(t, d, WithStorage(sink), WithExtraction(false))

	_, err := c.Run(context.Background(), "acme", "")
	require.NoError(t, err)
	assert.Equal(t, 1, d.tags()["article"])
	assert.Zero(t, d.tags()["detail"])
	require.Len(t, sink.records, 1)
	assert.Equal(t, "", sink.records[0]["search_date"])
}

func TestRunKeepsNegativeKeywordInMarkupLikeSnippet(t *testing.T) {
	d := &siteDriver{
		serp: serpPage(block{
			"https://example.com/shop",
			"Shop review",
			"Refund took &lt; 3 days? No, this shop is a scam &gt; avoid it",
		}),
	}
	sink := &memSink{}
	c := newTestClient(t, d, WithStorage(sink), WithExtraction(false))

	_, err := c.Run(context.Background(), "shop", "")
	require.NoError(t, err)
	require.Len(t, sink.records, 1)

	rec := sink.records[0]
	assert.Equal(t, "Refund took < 3 days? No, this shop is a scam > avoid it", rec["snippet"])
	assert.Equal(t, "Negative", rec["sentiment"])
	assert.Equal(t, -0.1, rec["sentiment_score"])
	assert.Zero(t, d.tags()["article"])
}

func TestRunEmptySnippetScoresFetchedArticle(t *testing.T) {
	article := strings.Repeat("Customers describe quick delivery and helpful staff. ", 4)[:200]
	d := &siteDriver{
		serp: serpPage(block{"https://example.com/b", "B", ""}),
		pages: map[string]string{
			"https://example.com/b": `<html><body><article>` + article + `</article></body></html>`,
		},
	}
	sink := &memSink{}
	c := newTestClient(t, d, WithStorage(sink), WithExtraction(false))

	_, err := c.Run(context.Background(), "acme", "")
	require.NoError(t, err)
	require.Len(t, sink.records, 1)

	rec := sink.records[0]
	assert.Equal(t, "", rec["snippet"])
	assert.Equal(t, 1, d.tags()["article"])
	assert.Equal(t, "Positive", rec["sentiment"])
	assert.Equal(t, 0.5, rec["sentiment_score"])
}

func TestRunWritesJSONFile(t *testing.T) {
	dir := t.TempDir()
	d := &siteDriver{serp: serpPage(block{"https://example.com/a", "A", longSnippet})}
	c := newTestClient(t, d, WithOutput("json", dir))

	report, err := c.Run(context.Background(), "acme", "01/15/2024")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "acme_01-15-2024.json"), report.Output)

	raw, err := os.ReadFile(report.Output)
	require.NoError(t, err)
	var out []map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	require.Len(t, out, 1)
	assert.Equal(t, "https://example.com/a", out[0]["url"])
}

func TestRunEmptySearchStillWritesOutput(t *testing.T) {
	d := &siteDriver{serp: serpPage()}
	sink := &memSink{}
	c := newTestClient(t, d, WithStorage(sink))

	report, err := c.Run(context.Background(), "nothing", "")
	require.NoError(t, err)
	assert.Empty(t, report.Results)
	assert.True(t, sink.closed)
}

func TestRunRejectsBadQuery(t *testing.T) {
	c := newTestClient(t, &siteDriver{})
	_, err := c.Run(context.Background(), "  ", "")
	assert.Error(t, err)

	_, err = c.Run(context.Background(), "acme", "2024-01-15")
	assert.Error(t, err)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	_, err := New(Quiet(), WithMaxPages(0))
	var ce *types.ConfigError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "search.max_pages", ce.Key)

	_, err = New(Quiet(), WithDriver("curl"))
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "scraping.driver", ce.Key)
}
