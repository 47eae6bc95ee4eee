// Package serpgoat provides a public SDK for embedding serpgoat as a
// library.
//
// Example usage:
//
//	client, err := serpgoat.New(
//	    serpgoat.WithMaxPages(2),
//	    serpgoat.WithOutput("json", "./data/output"),
//	)
//	if err != nil {
//	    return err
//	}
//	report, err := client.Run(ctx, "acme corp reviews", "01/15/2024")
package serpgoat

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/IshaanNene/serpgoat/internal/config"
	"github.com/IshaanNene/serpgoat/internal/engine"
	"github.com/IshaanNene/serpgoat/internal/extract"
	"github.com/IshaanNene/serpgoat/internal/fetcher"
	"github.com/IshaanNene/serpgoat/internal/observability"
	"github.com/IshaanNene/serpgoat/internal/parser"
	"github.com/IshaanNene/serpgoat/internal/pipeline"
	"github.com/IshaanNene/serpgoat/internal/platform"
	"github.com/IshaanNene/serpgoat/internal/sentiment"
	"github.com/IshaanNene/serpgoat/internal/storage"
	"github.com/IshaanNene/serpgoat/internal/types"
)

// DriverFactory builds the raw page client a navigation session owns.
type DriverFactory func(cfg *config.Config, logger *slog.Logger) fetcher.Fetcher

// Client runs searches end to end: results pages, enrichment and output.
type Client struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *observability.Metrics

	driver  DriverFactory
	sink    storage.Storage
	delay   fetcher.DelayPolicy
	backoff fetcher.BackoffPolicy

	lexicon     sentiment.Model
	statistical sentiment.Model
	customModel bool

	now func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithConfig replaces the default configuration. Options apply in order,
// so pass it before options that adjust individual settings.
func WithConfig(cfg *config.Config) Option {
	return func(c *Client) { c.cfg = cfg }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithMetrics records run counters into m.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithMaxPages sets the maximum number of results pages per query.
func WithMaxPages(n int) Option {
	return func(c *Client) { c.cfg.Search.MaxPages = n }
}

// WithOutput sets the output format and directory.
func WithOutput(format, dir string) Option {
	return func(c *Client) {
		c.cfg.Output.Format = format
		c.cfg.Output.Directory = dir
	}
}

// WithDriver selects the built-in driver: "browser" or "http".
func WithDriver(name string) Option {
	return func(c *Client) { c.cfg.Scraping.Driver = name }
}

// WithExtraction enables or disables per-platform content extraction.
func WithExtraction(enabled bool) Option {
	return func(c *Client) { c.cfg.Extraction.Enabled = enabled }
}

// WithProxy enables proxy rotation with the given proxy URLs.
func WithProxy(urls ...string) Option {
	return func(c *Client) {
		c.cfg.Proxy.Enabled = true
		c.cfg.Proxy.URLs = urls
	}
}

// WithDriverFactory replaces the built-in drivers.
func WithDriverFactory(f DriverFactory) Option {
	return func(c *Client) { c.driver = f }
}

// WithStorage sends records to s instead of the configured output.
func WithStorage(s storage.Storage) Option {
	return func(c *Client) { c.sink = s }
}

// WithDelays overrides every pacing delay and the retry backoff.
func WithDelays(delay fetcher.DelayPolicy, backoff fetcher.BackoffPolicy) Option {
	return func(c *Client) {
		c.delay = delay
		c.backoff = backoff
	}
}

// WithSentimentModels replaces the bundled sentiment models. lexicon may
// be nil to run on the statistical model alone.
func WithSentimentModels(lexicon, statistical sentiment.Model) Option {
	return func(c *Client) {
		c.lexicon = lexicon
		c.statistical = statistical
		c.customModel = true
	}
}

// New creates a Client and validates its configuration. A configuration
// defect is returned as a *types.ConfigError.
func New(opts ...Option) (*Client, error) {
	c := &Client{
		cfg: config.DefaultConfig(),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = observability.NewLogger(c.cfg.Logging, false)
	}
	if c.driver == nil {
		c.driver = defaultDriver
	}
	if err := config.Validate(c.cfg); err != nil {
		return nil, err
	}
	return c, nil
}

// Config returns the effective configuration.
func (c *Client) Config() *config.Config { return c.cfg }

// Report summarizes one run.
type Report struct {
	RunID   string
	Query   types.SearchQuery
	Results []*types.SearchResult
	Stored  int
	Output  string
	Elapsed time.Duration
}

// Run searches keyword (date is MM/DD/YYYY or empty), enriches every
// result and writes the records to the configured output. Fetch, parse
// and extraction failures only shrink the result set; errors are returned
// for an invalid query or a failing sink.
func (c *Client) Run(ctx context.Context, keyword, date string) (*Report, error) {
	start := c.now()
	q, err := types.NewSearchQuery(keyword, date, c.cfg.Search.ResultsPerPage, c.cfg.Search.MaxPages)
	if err != nil {
		return nil, err
	}

	results := c.Search(ctx, q)
	results = c.Enrich(ctx, results)

	meta := storage.NewRunMeta(q, start)
	report := &Report{RunID: meta.RunID, Query: q, Results: results}

	sink := c.sink
	if sink == nil {
		sink, err = storage.New(c.cfg.Output, meta, c.logger)
		if err != nil {
			return report, err
		}
		if p, ok := sink.(interface{ Path() string }); ok {
			report.Output = p.Path()
		}
	}

	records := make([]types.Record, len(results))
	for i, r := range results {
		records[i] = r.Record()
	}
	if err := sink.Store(meta.Stamp(records)); err != nil {
		_ = sink.Close()
		return report, fmt.Errorf("store results: %w", err)
	}
	if err := sink.Close(); err != nil {
		return report, fmt.Errorf("close %s output: %w", sink.Name(), err)
	}
	c.metrics.RecordsStored(len(records))

	report.Stored = len(records)
	report.Elapsed = c.now().Sub(start)
	c.logger.Info("run complete",
		"keyword", q.Keyword,
		"date", q.DateString(),
		"results", len(results),
		"run_id", meta.RunID,
		"elapsed", report.Elapsed,
	)
	return report, nil
}

// Search runs the results-page phase only.
func (c *Client) Search(ctx context.Context, q types.SearchQuery) []*types.SearchResult {
	classifier := platform.NewClassifier(c.cfg.Platforms, c.logger)
	rp := parser.NewResultParser(classifier, c.logger)

	opts := []engine.SearcherOption{engine.WithMetrics(c.metrics)}
	if c.delay != nil {
		opts = append(opts, engine.WithPageDelay(c.delay))
	}
	searcher := engine.NewSearcher(c.cfg, c.openSession, rp, c.logger, opts...)
	return searcher.Search(ctx, q)
}

// Enrich extracts platform content and scores sentiment for results. Its
// detail-page session is separate from the search session and is closed
// before Enrich returns.
func (c *Client) Enrich(ctx context.Context, results []*types.SearchResult) []*types.SearchResult {
	if len(results) == 0 {
		return results
	}

	session := c.newSession()
	defer func() {
		if err := session.Close(); err != nil {
			c.logger.Warn("close detail session failed", "error", err)
		}
	}()

	pipe := pipeline.New(c.logger)
	if c.cfg.Extraction.Enabled {
		pipe.Use(pipeline.NewContentMiddleware(extract.NewDispatcher(session, c.metrics, c.logger)))
	}
	pipe.Use(&pipeline.TrimMiddleware{})
	pipe.Use(pipeline.NewDateNormalizeMiddleware(time.RFC3339))
	pipe.Use(pipeline.NewSentimentMiddleware(c.sentimentEngine(session)))

	c.logger.Debug("enriching results", "results", len(results), "stages", pipe.Len())
	return pipe.Run(ctx, results)
}

func (c *Client) sentimentEngine(src extract.PageSource) *sentiment.Engine {
	opts := []sentiment.Option{
		sentiment.WithContentFetcher(extract.NewArticleText(src)),
		sentiment.WithMetrics(c.metrics),
	}
	if c.customModel {
		return sentiment.NewEngine(c.cfg.Sentiment, c.lexicon, c.statistical, c.logger, opts...)
	}
	return sentiment.NewDefaultEngine(c.cfg.Sentiment, c.logger, opts...)
}

func (c *Client) newSession() *fetcher.Session {
	opts := []fetcher.SessionOption{fetcher.WithMetrics(c.metrics)}
	if c.delay != nil {
		opts = append(opts, fetcher.WithPacing(c.delay), fetcher.WithSettle(c.delay))
	}
	if c.backoff != nil {
		opts = append(opts, fetcher.WithBackoff(c.backoff))
	}
	return fetcher.NewSession(c.driver(c.cfg, c.logger), c.cfg, c.logger, opts...)
}

func (c *Client) openSession(ctx context.Context) (engine.Navigator, error) {
	s := c.newSession()
	if err := s.Open(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

func defaultDriver(cfg *config.Config, logger *slog.Logger) fetcher.Fetcher {
	var proxies *fetcher.ProxyManager
	if cfg.Proxy.Enabled {
		proxies = fetcher.NewProxyManager(cfg.Proxy.URLs, cfg.Proxy.Rotation, logger)
	}
	if cfg.Scraping.Driver == "http" {
		return fetcher.NewHTTPFetcher(cfg, logger, proxies)
	}
	return fetcher.NewBrowserFetcher(cfg, logger, fetcher.WithBrowserProxy(proxies))
}

// Quiet silences all logging.
func Quiet() Option {
	return WithLogger(slog.New(slog.DiscardHandler))
}
