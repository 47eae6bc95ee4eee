package extract

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"github.com/IshaanNene/serpgoat/internal/parser"
	"github.com/IshaanNene/serpgoat/internal/types"
)

// minParagraphLength is the shortest paragraph kept by the paragraph
// fallback.
const minParagraphLength = 50

const noiseSelector = "script, style, nav, header, footer, iframe, .ads, .comments"

var articleBody = parser.Chain{
	parser.CSS("article"),
	parser.CSS("main"),
	parser.CSS(".post-content"),
	parser.CSS(".entry-content"),
}

// ArticleText loads a page and returns its main readable text. It backs
// the sentiment engine when a snippet is too short to score.
type ArticleText struct {
	src PageSource
}

// NewArticleText creates an ArticleText over src.
func NewArticleText(src PageSource) *ArticleText {
	return &ArticleText{src: src}
}

// FetchText returns the article text at rawURL.
func (a *ArticleText) FetchText(ctx context.Context, rawURL string) (string, error) {
	req, err := types.NewRequest(rawURL)
	if err != nil {
		return "", err
	}
	req.Tag = "article"

	resp, err := a.src.Fetch(ctx, req)
	if err != nil {
		return "", err
	}
	if resp == nil || len(resp.Body) == 0 {
		return "", &types.FetchError{URL: rawURL, Err: types.ErrEmptyResponse}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		return "", &types.ParseError{URL: rawURL, Err: err}
	}
	if text := mainText(doc.Selection); text != "" {
		return text, nil
	}

	article, err := readability.FromReader(bytes.NewReader(resp.Body), req.URL)
	if err != nil {
		return "", &types.ParseError{URL: rawURL, Selector: "readability", Err: err}
	}
	text := parser.CleanText(article.TextContent)
	if text == "" {
		return "", &types.ParseError{URL: rawURL, Err: fmt.Errorf("no readable text")}
	}
	return text, nil
}

// mainText strips page chrome, then prefers a content container and falls
// back to the long paragraphs of the page.
func mainText(doc *goquery.Selection) string {
	doc.Find(noiseSelector).Remove()

	if body := articleBody.First(doc); body.Length() > 0 {
		if text := parser.CleanText(body.Text()); text != "" {
			return text
		}
	}

	var parts []string
	doc.Find("p").Each(func(_ int, p *goquery.Selection) {
		if t := parser.CleanText(p.Text()); len(t) > minParagraphLength {
			parts = append(parts, t)
		}
	})
	return strings.Join(parts, " ")
}
