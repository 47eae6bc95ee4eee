// Package extract fetches result detail pages and normalizes them into
// content records, one extractor per platform family.
package extract

import (
	"context"
	"fmt"

	"github.com/PuerkitoBio/goquery"

	"github.com/IshaanNene/serpgoat/internal/types"
)

// PageSource loads a detail page. A *fetcher.Session satisfies it.
type PageSource interface {
	Fetch(ctx context.Context, req *types.Request) (*types.Response, error)
}

// Extractor turns one detail page into a ContentRecord. Platforms the
// extractor cannot serve return types.ErrUnsupported.
type Extractor interface {
	Extract(ctx context.Context, rawURL string, platform types.Platform) (*types.ContentRecord, error)
}

// page is a fetched and parsed detail page.
type page struct {
	resp *types.Response
	doc  *goquery.Document
}

func load(ctx context.Context, src PageSource, rawURL string) (*page, error) {
	req, err := types.NewRequest(rawURL)
	if err != nil {
		return nil, err
	}
	req.Tag = "detail"

	resp, err := src.Fetch(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp == nil || len(resp.Body) == 0 {
		return nil, &types.FetchError{URL: rawURL, Err: types.ErrEmptyResponse}
	}
	if !resp.IsSuccess() {
		return nil, &types.FetchError{URL: rawURL, StatusCode: resp.StatusCode, Err: fmt.Errorf("unexpected status")}
	}

	doc, err := resp.Document()
	if err != nil {
		return nil, &types.ParseError{URL: rawURL, Err: err}
	}
	return &page{resp: resp, doc: doc}, nil
}
