package parser

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/IshaanNene/serpgoat/internal/types"
)

// ResultSelectors are the fallback chains used on a results page.
type ResultSelectors struct {
	Container Chain
	Block     Chain
	Title     Chain
	Link      Chain
	Snippet   Chain
	Next      Chain
}

// DefaultResultSelectors returns the chains for the search provider's
// current and legacy markup.
func DefaultResultSelectors() ResultSelectors {
	return ResultSelectors{
		Container: Chain{CSS("#search"), CSS("#rso"), CSS("#center_col"), CSS("body")},
		Block:     Chain{CSS("div.g"), CSS("div.rc"), CSS("div[data-hveid]"), CSS("div.yuRUbf")},
		Title:     Chain{CSS("h3"), CSS(".LC20lb"), CSS(".DKV0Md")},
		Link:      Chain{CSS("a[href]"), CSS(".yuRUbf > a")},
		Snippet:   Chain{CSS(".VwiC3b"), CSS(".st"), CSS(".aCOpRe")},
		Next: Chain{
			CSS("a#pnnext"),
			CSS(`a[aria-label="Next page"]`),
			XPath("//a[span[text()='Next']]"),
		},
	}
}

// ResultParser turns one results page into SearchResults.
type ResultParser struct {
	sel        ResultSelectors
	classifier Classifier
	logger     *slog.Logger
}

// NewResultParser creates a parser with the default selector chains.
func NewResultParser(classifier Classifier, logger *slog.Logger) *ResultParser {
	return NewResultParserWith(DefaultResultSelectors(), classifier, logger)
}

// NewResultParserWith creates a parser with custom selector chains.
func NewResultParserWith(sel ResultSelectors, classifier Classifier, logger *slog.Logger) *ResultParser {
	return &ResultParser{
		sel:        sel,
		classifier: classifier,
		logger:     logger.With("component", "result_parser"),
	}
}

// Parse extracts results from markup in document order. Blocks without a
// link or title, with a non-http(s) link, or whose link is already in seen
// are skipped. Accepted links are added to seen before the record is built.
// A broken block never aborts the page.
func (p *ResultParser) Parse(markup []byte, seen SeenSet) Page {
	var page Page

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(markup))
	if err != nil {
		p.logger.Warn("unparseable results page", "error", err)
		return page
	}

	container := p.sel.Container.Resolve(doc.Selection)
	if container.Length() == 0 {
		container = doc.Selection
	}
	container = container.First()

	blocks := p.sel.Block.Resolve(container)
	page.Blocks = blocks.Length()
	blocks.Each(func(i int, block *goquery.Selection) {
		if r := p.parseBlock(i, block, seen); r != nil {
			page.Results = append(page.Results, r)
		}
	})

	page.HasNext = p.sel.Next.Resolve(doc.Selection).Length() > 0

	p.logger.Debug("results page parsed",
		"blocks", page.Blocks,
		"accepted", len(page.Results),
		"has_next", page.HasNext,
	)
	return page
}

func (p *ResultParser) parseBlock(i int, block *goquery.Selection, seen SeenSet) (result *types.SearchResult) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Warn("result block failed", "index", i, "error", &types.ParseError{
				Selector: "block",
				Err:      fmt.Errorf("panic: %v", r),
			})
			result = nil
		}
	}()

	href, ok := p.sel.Link.Attr(block, "href")
	if !ok || href == "" {
		p.logger.Debug("block dropped: no link", "index", i)
		return nil
	}
	title := p.sel.Title.Text(block)
	if title == "" {
		p.logger.Debug("block dropped: no title", "index", i, "url", href)
		return nil
	}
	if !acceptedScheme(href) {
		p.logger.Debug("block dropped: scheme", "index", i, "url", href)
		return nil
	}
	if !seen.Add(href) {
		p.logger.Debug("block dropped: duplicate", "index", i, "url", href)
		return nil
	}

	platform := types.PlatformOther
	if p.classifier != nil {
		platform = p.classifier.Classify(href)
	}

	return &types.SearchResult{
		Title:     title,
		URL:       href,
		Snippet:   p.sel.Snippet.Text(block),
		Platform:  platform,
		Sentiment: types.SentimentNeutral,
	}
}

func acceptedScheme(href string) bool {
	lower := strings.ToLower(href)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		return false
	}
	u, err := url.Parse(href)
	return err == nil && u.Host != ""
}
