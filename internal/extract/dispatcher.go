package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/IshaanNene/serpgoat/internal/observability"
	"github.com/IshaanNene/serpgoat/internal/types"
)

// Dispatcher routes each result to the extractor for its platform.
type Dispatcher struct {
	news       Extractor
	blog       Extractor
	discussion Extractor
	social     Extractor
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewDispatcher builds a Dispatcher whose extractors all load pages
// through src.
func NewDispatcher(src PageSource, metrics *observability.Metrics, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		news:       NewNewsExtractor(src),
		blog:       NewBlogExtractor(src),
		discussion: NewDiscussionExtractor(src),
		social:     SocialExtractor{},
		metrics:    metrics,
		logger:     logger.With("component", "extract"),
	}
}

// For returns the extractor for a platform, or nil when none applies.
func (d *Dispatcher) For(p types.Platform) Extractor {
	switch p {
	case types.PlatformNews:
		return d.news
	case types.PlatformBlog:
		return d.blog
	case types.PlatformReddit, types.PlatformQuora:
		return d.discussion
	case types.PlatformTwitter, types.PlatformFacebook, types.PlatformInstagram,
		types.PlatformTikTok, types.PlatformYouTube:
		return d.social
	default:
		return nil
	}
}

// Extract returns the content record for r, or nil when the platform has
// no extractor, the extractor reports it unsupported, or extraction
// fails. Failures are logged and never propagated.
func (d *Dispatcher) Extract(ctx context.Context, r *types.SearchResult) (rec *types.ContentRecord) {
	ex := d.For(r.Platform)
	if ex == nil {
		return nil
	}

	defer func() {
		if p := recover(); p != nil {
			d.logger.Error("extractor panicked", "url", r.URL, "platform", r.Platform, "panic", fmt.Sprint(p))
			d.metrics.Extraction("error")
			rec = nil
		}
	}()

	rec, err := ex.Extract(ctx, r.URL, r.Platform)
	switch {
	case errors.Is(err, types.ErrUnsupported):
		d.logger.Debug("extraction unsupported", "url", r.URL, "platform", r.Platform)
		d.metrics.Extraction("absent")
		return nil
	case err != nil:
		d.logger.Warn("extraction failed", "url", r.URL, "platform", r.Platform, "error", err)
		d.metrics.Extraction("error")
		return nil
	case rec == nil:
		d.metrics.Extraction("absent")
		return nil
	}

	d.metrics.Extraction("ok")
	return rec
}
