// Package engine drives a navigation session across successive results
// pages, deduplicating and accumulating results for one query.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/IshaanNene/serpgoat/internal/config"
	"github.com/IshaanNene/serpgoat/internal/fetcher"
	"github.com/IshaanNene/serpgoat/internal/observability"
	"github.com/IshaanNene/serpgoat/internal/parser"
	"github.com/IshaanNene/serpgoat/internal/types"
)

// Navigator is the part of a navigation session the searcher needs.
type Navigator interface {
	Fetch(ctx context.Context, req *types.Request) (*types.Response, error)
	Close() error
}

// Opener acquires a navigation session for the lifetime of one query.
type Opener func(ctx context.Context) (Navigator, error)

// Searcher runs one query at a time: it owns the session it opens and
// closes it on every exit path.
type Searcher struct {
	cfg       *config.Config
	open      Opener
	parser    *parser.ResultParser
	pageDelay fetcher.DelayPolicy
	metrics   *observability.Metrics
	logger    *slog.Logger
}

// SearcherOption configures a Searcher.
type SearcherOption func(*Searcher)

// WithPageDelay sets the delay inserted between results pages.
func WithPageDelay(p fetcher.DelayPolicy) SearcherOption {
	return func(s *Searcher) { s.pageDelay = p }
}

// WithMetrics attaches a metrics recorder.
func WithMetrics(m *observability.Metrics) SearcherOption {
	return func(s *Searcher) { s.metrics = m }
}

// NewSearcher creates a Searcher.
func NewSearcher(cfg *config.Config, open Opener, p *parser.ResultParser, logger *slog.Logger, opts ...SearcherOption) *Searcher {
	s := &Searcher{
		cfg:       cfg,
		open:      open,
		parser:    p,
		pageDelay: fetcher.UniformDelay{Min: cfg.Search.PageDelayMin, Max: cfg.Search.PageDelayMax},
		logger:    logger.With("component", "searcher"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search fetches up to q.MaxPages results pages and returns the unique
// results in discovery order. It stops early when a page yields no new
// result, has no next-page affordance, or cannot be fetched. Failures are
// logged and never returned; the caller gets whatever was gathered.
func (s *Searcher) Search(ctx context.Context, q types.SearchQuery) (results []*types.SearchResult) {
	log := s.logger.With("keyword", q.Keyword)

	defer func() {
		if r := recover(); r != nil {
			log.Error("search aborted", "error", fmt.Errorf("panic: %v", r), "results", len(results))
		}
	}()

	nav, err := s.open(ctx)
	if err != nil {
		log.Error("open session failed", "error", err)
		return nil
	}
	defer func() {
		if err := nav.Close(); err != nil {
			log.Warn("close session failed", "error", err)
		}
	}()

	dedup := NewDeduplicator(q.PageSize * q.MaxPages)

	for page := 0; page < q.MaxPages; page++ {
		if page > 0 {
			if err := fetcher.Sleep(ctx, s.pageDelay.NextDelay()); err != nil {
				log.Info("search cancelled", "page", page)
				break
			}
		}

		req, err := s.BuildRequest(q, page)
		if err != nil {
			log.Error("build request failed", "error", err)
			break
		}

		resp, err := nav.Fetch(ctx, req)
		if err != nil {
			log.Warn("results page unavailable, stopping", "page", page+1, "error", err)
			break
		}
		if resp == nil || len(resp.Body) == 0 {
			log.Warn("empty results page, stopping", "page", page+1)
			break
		}

		parsed := s.parser.Parse(resp.Body, dedup)
		s.metrics.PageParsed(len(parsed.Results))
		for _, r := range parsed.Results {
			r.Page = page
		}
		results = append(results, parsed.Results...)

		log.Info("results page processed",
			"page", page+1,
			"new_results", len(parsed.Results),
			"total", len(results),
			"has_next", parsed.HasNext,
		)

		if len(parsed.Results) == 0 || !parsed.HasNext {
			break
		}
	}

	log.Debug("search finished", "unique_urls", dedup.Count(), "results", len(results))
	return results
}

// BuildRequest builds the results-page request for a zero-based page index.
func (s *Searcher) BuildRequest(q types.SearchQuery, page int) (*types.Request, error) {
	req, err := types.NewRequest(s.cfg.Search.BaseURL)
	if err != nil {
		return nil, err
	}

	num := q.PageSize
	p := req.Params
	p.Set("q", q.Keyword)
	p.Set("num", strconv.Itoa(num))
	p.Set("hl", s.cfg.Search.Language)
	p.Set("gl", s.cfg.Search.Country)
	p.Set("as_qdr", "all")
	p.Set("source", "lnt")
	if q.HasDate() {
		d := q.DateString()
		p.Set("tbs", fmt.Sprintf("cdr:1,cd_min:%s,cd_max:%s", d, d))
	}
	p.Set("safe", "off")
	p.Set("filter", "0")
	if page > 0 {
		p.Set("start", strconv.Itoa(page*num))
	}
	if v := Vertical(q.Keyword); v != "" {
		p.Set("tbm", v)
	}

	req.Tag = "serp"
	req.WarmUp = true
	req.WaitSelector = s.cfg.Search.ResultsSelector
	return req, nil
}

// Vertical returns the specialized search vertical hinted by the keyword,
// or "" for general search. Discussion hints keep general search even when
// a news hint is also present.
func Vertical(keyword string) string {
	k := strings.ToLower(keyword)
	for _, w := range []string{"reddit", "forum", "discussion"} {
		if strings.Contains(k, w) {
			return ""
		}
	}
	for _, w := range []string{"news", "article"} {
		if strings.Contains(k, w) {
			return "nws"
		}
	}
	return ""
}
