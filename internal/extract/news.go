package extract

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/IshaanNene/serpgoat/internal/parser"
	"github.com/IshaanNene/serpgoat/internal/types"
)

// UnknownAuthor is reported when a news article names no author.
const UnknownAuthor = "Unknown"

var (
	newsTitle = parser.Chain{parser.CSS("h1")}
	newsBody  = parser.Chain{
		parser.CSS("article.article-body"),
		parser.CSS("div.article-body"),
		parser.CSS("article.content"),
		parser.CSS("div.content"),
		parser.CSS("article.story-body"),
		parser.CSS("div.story-body"),
	}
	newsAuthor = parser.Chain{
		parser.CSS("a.author"),
		parser.CSS("span.author"),
		parser.CSS("a.byline"),
		parser.CSS("span.byline"),
	}
	newsDate = parser.Chain{
		parser.CSS("time.date"),
		parser.CSS("time.published"),
		parser.CSS("span.date"),
		parser.CSS("span.published"),
	}
)

// NewsExtractor reads news articles.
type NewsExtractor struct {
	src PageSource
}

// NewNewsExtractor creates a NewsExtractor.
func NewNewsExtractor(src PageSource) *NewsExtractor {
	return &NewsExtractor{src: src}
}

// Extract implements Extractor.
func (e *NewsExtractor) Extract(ctx context.Context, rawURL string, _ types.Platform) (*types.ContentRecord, error) {
	p, err := load(ctx, e.src, rawURL)
	if err != nil {
		return nil, err
	}
	doc := p.doc.Selection
	meta := parser.ExtractMeta(p.doc)

	title := newsTitle.Text(doc)
	if title == "" {
		title = meta.Title()
	}

	author := newsAuthor.Text(doc)
	if author == "" {
		author = meta.Author()
	}
	if author == "" {
		author = UnknownAuthor
	}

	date := newsDate.Text(doc)
	if date == "" {
		date = meta.Published()
	}

	return &types.ContentRecord{
		Title:       title,
		Content:     paragraphText(newsBody.First(doc)),
		Author:      author,
		PublishDate: date,
		URL:         rawURL,
		Platform:    types.PlatformNews,
	}, nil
}

// paragraphText joins the <p> texts under body in document order.
func paragraphText(body *goquery.Selection) string {
	var parts []string
	body.Find("p").Each(func(_ int, p *goquery.Selection) {
		if t := parser.CleanText(p.Text()); t != "" {
			parts = append(parts, t)
		}
	})
	return strings.Join(parts, " ")
}
