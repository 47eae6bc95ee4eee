package extract

import (
	"context"
	"fmt"

	"github.com/IshaanNene/serpgoat/internal/parser"
	"github.com/IshaanNene/serpgoat/internal/types"
)

var (
	redditTitle = parser.Chain{parser.CSS("h1"), parser.CSS(`[slot="title"]`)}
	redditBody  = parser.Chain{
		parser.CSS(`div[data-test-id="post-content"]`),
		parser.CSS(`[slot="text-body"]`),
	}
	redditComments = parser.Chain{
		parser.CSS("div.Comment"),
		parser.CSS("shreddit-comment"),
		parser.XPath("//div[" + parser.ClassToken("comment") + "]"),
	}
)

// DiscussionExtractor reads forum threads. Only reddit is supported; quora
// renders client-side and is reported as unsupported without a fetch.
type DiscussionExtractor struct {
	src PageSource
}

// NewDiscussionExtractor creates a DiscussionExtractor.
func NewDiscussionExtractor(src PageSource) *DiscussionExtractor {
	return &DiscussionExtractor{src: src}
}

// Extract implements Extractor. A thread whose title cannot be resolved
// still yields its body and comments.
func (e *DiscussionExtractor) Extract(ctx context.Context, rawURL string, platform types.Platform) (*types.ContentRecord, error) {
	if platform != types.PlatformReddit {
		return nil, fmt.Errorf("%w: %s requires script rendering", types.ErrUnsupported, platform)
	}

	p, err := load(ctx, e.src, rawURL)
	if err != nil {
		return nil, err
	}
	doc := p.doc.Selection

	title := redditTitle.Text(doc)
	if title == "" {
		title = parser.ExtractMeta(p.doc).Tag("og:title")
	}

	comments := redditComments.Texts(doc, types.MaxComments)
	if comments == nil {
		comments = []string{}
	}

	return &types.ContentRecord{
		Title:    title,
		Content:  redditBody.Text(doc),
		Comments: comments,
		URL:      rawURL,
		Platform: types.PlatformReddit,
	}, nil
}
