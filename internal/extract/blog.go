package extract

import (
	"context"

	"github.com/IshaanNene/serpgoat/internal/parser"
	"github.com/IshaanNene/serpgoat/internal/types"
)

var (
	blogTitle  = parser.Chain{parser.CSS("h1"), parser.CSS("header")}
	blogBody   = parser.Chain{parser.CSS("article"), parser.CSS("div.post-content"), parser.CSS("div.entry-content")}
	blogAuthor = parser.Chain{parser.CSS("a.author"), parser.CSS("span.author"), parser.CSS("div.author")}
	blogDate   = parser.Chain{parser.CSS("time"), parser.CSS("span.date"), parser.CSS("div.date")}
)

// BlogExtractor reads blog posts. Missing fields are empty strings.
type BlogExtractor struct {
	src PageSource
}

// NewBlogExtractor creates a BlogExtractor.
func NewBlogExtractor(src PageSource) *BlogExtractor {
	return &BlogExtractor{src: src}
}

// Extract implements Extractor.
func (e *BlogExtractor) Extract(ctx context.Context, rawURL string, _ types.Platform) (*types.ContentRecord, error) {
	p, err := load(ctx, e.src, rawURL)
	if err != nil {
		return nil, err
	}
	doc := p.doc.Selection

	return &types.ContentRecord{
		Title:       blogTitle.Text(doc),
		Content:     blogBody.Text(doc),
		Author:      blogAuthor.Text(doc),
		PublishDate: blogDate.Text(doc),
		URL:         rawURL,
		Platform:    types.PlatformBlog,
	}, nil
}
