package parser

import (
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IshaanNene/serpgoat/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

type mapSeen map[string]bool

func (m mapSeen) Add(u string) bool {
	if m[u] {
		return false
	}
	m[u] = true
	return true
}

type hostClassifier struct{}

func (hostClassifier) Classify(raw string) types.Platform {
	if strings.Contains(raw, "reddit.com") {
		return types.PlatformReddit
	}
	return types.PlatformOther
}

const serpHTML = `<html><body>
<div id="search">
  <div class="g">
    <a href="https://example.com/one"><h3>First   result</h3></a>
    <div class="VwiC3b">Snippet <b>one</b></div>
  </div>
  <div class="g">
    <a href="https://www.reddit.com/r/acme/comments/1"><span class="LC20lb">Reddit thread</span></a>
    <span class="st">old style snippet</span>
  </div>
  <div class="g">
    <a href="/url?q=relative"><h3>Relative link</h3></a>
  </div>
  <div class="g">
    <a href="https://example.com/untitled"><span>no title here</span></a>
  </div>
  <div class="g">
    <a href="https://example.com/one"><h3>Duplicate of first</h3></a>
  </div>
  <div class="g">
    <h3>Link-less block</h3>
  </div>
  <div class="g">
    <a href="javascript:void(0)"><h3>Script link</h3></a>
  </div>
  <div class="g">
    <a href="https://example.com/three"><h3>Third</h3></a>
  </div>
</div>
<a id="pnnext" href="/search?start=10">Next</a>
</body></html>`

func TestResultParserAcceptsValidBlocks(t *testing.T) {
	p := NewResultParser(hostClassifier{}, testLogger)
	seen := mapSeen{}

	page := p.Parse([]byte(serpHTML), seen)
	require.Len(t, page.Results, 3)
	assert.True(t, page.HasNext)
	assert.Equal(t, 8, page.Blocks)

	first := page.Results[0]
	assert.Equal(t, "First result", first.Title)
	assert.Equal(t, "https://example.com/one", first.URL)
	assert.Equal(t, "Snippet one", first.Snippet)
	assert.Equal(t, types.PlatformOther, first.Platform)

	second := page.Results[1]
	assert.Equal(t, "Reddit thread", second.Title)
	assert.Equal(t, "old style snippet", second.Snippet)
	assert.Equal(t, types.PlatformReddit, second.Platform)

	assert.Equal(t, "https://example.com/three", page.Results[2].URL)
	assert.Equal(t, "", page.Results[2].Snippet)

	assert.Len(t, seen, 3, "only accepted links are recorded")
	assert.False(t, seen["https://example.com/untitled"])
}

func TestResultParserRespectsSeenAcrossPages(t *testing.T) {
	p := NewResultParser(nil, testLogger)
	seen := mapSeen{"https://example.com/three": true}

	page := p.Parse([]byte(serpHTML), seen)
	urls := make([]string, 0, len(page.Results))
	for _, r := range page.Results {
		urls = append(urls, r.URL)
	}
	assert.Equal(t, []string{"https://example.com/one", "https://www.reddit.com/r/acme/comments/1"}, urls)

	again := p.Parse([]byte(serpHTML), seen)
	assert.Empty(t, again.Results)
}

func TestResultParserFallbackContainerAndBlocks(t *testing.T) {
	markup := `<html><body><div id="rso">
	  <div data-hveid="a1"><a href="https://a.example/x"><h3>A</h3></a></div>
	  <div data-hveid="a2"><a href="https://b.example/y"><h3>B</h3></a></div>
	</div></body></html>`

	page := NewResultParser(nil, testLogger).Parse([]byte(markup), mapSeen{})
	require.Len(t, page.Results, 2)
	assert.Equal(t, "A", page.Results[0].Title)
	assert.False(t, page.HasNext)
}

func TestResultParserNextPageXPath(t *testing.T) {
	markup := `<html><body><div id="search"></div><a href="/p2"><span>Next</span></a></body></html>`
	page := NewResultParser(nil, testLogger).Parse([]byte(markup), mapSeen{})
	assert.True(t, page.HasNext)
	assert.Empty(t, page.Results)
}

func TestChainPrecedence(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(
		`<div><span class="late">late</span><h3>early</h3><p class="c">one</p><p class="c">two</p><p class="c">three</p></div>`))
	require.NoError(t, err)

	chain := Chain{CSS("h3"), CSS(".late")}
	assert.Equal(t, "early", chain.Text(doc.Selection), "earliest-listed matcher wins over document order")

	reversed := Chain{CSS(".late"), CSS("h3")}
	assert.Equal(t, "late", reversed.Text(doc.Selection))

	missing := Chain{CSS("h1"), CSS("h2")}
	assert.Equal(t, "", missing.Text(doc.Selection))
	_, ok := missing.Attr(doc.Selection, "href")
	assert.False(t, ok)

	texts := Chain{XPath("//p[contains(@class,'c')]")}.Texts(doc.Selection, 2)
	assert.Equal(t, []string{"one", "two"}, texts)

	sparse, err := goquery.NewDocumentFromReader(strings.NewReader(
		`<div><p class="c"> </p><p class="c">one</p><p class="c">two</p></div>`))
	require.NoError(t, err)
	assert.Equal(t, []string{"one"}, Chain{CSS("p.c")}.Texts(sparse.Selection, 2),
		"the limit applies to nodes, not to non-empty texts")

	assert.Zero(t, Chain{XPath("//[")}.Resolve(doc.Selection).Length(), "invalid xpath never matches")
}

func TestExtractMeta(t *testing.T) {
	markup := `<html><head>
	<meta property="og:title" content="OG Title">
	<meta name="author" content="Meta Author">
	<meta property="article:published_time" content="2024-03-15T10:00:00Z">
	<script type="application/ld+json">
	{"@context":"https://schema.org","@graph":[{"@type":"NewsArticle","headline":"LD Headline","author":[{"@type":"Person","name":"Jane Doe"}]}]}
	</script>
	</head><body></body></html>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	require.NoError(t, err)

	meta := ExtractMeta(doc)
	assert.Equal(t, "OG Title", meta.Title())
	assert.Equal(t, "Jane Doe", meta.Author(), "JSON-LD author wins over meta")
	assert.Equal(t, "2024-03-15T10:00:00Z", meta.Published())
	assert.Equal(t, "LD Headline", meta.LD("headline"))
	assert.Equal(t, "", meta.Tag("missing"))
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "a b c", CleanText("  a\n\t b   c "))
	assert.Equal(t, "", CleanText(" \n "))
}
