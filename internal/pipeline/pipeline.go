// Package pipeline enriches search results in discovery order through a
// chain of middleware: cleanup, content extraction and sentiment.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/IshaanNene/serpgoat/internal/types"
)

// Middleware processes a result and returns the (possibly modified) result.
// Return nil to drop the result from the run.
type Middleware interface {
	// Name returns the middleware's identifier.
	Name() string

	// Process transforms a result. Return nil to drop it.
	Process(ctx context.Context, r *types.SearchResult) (*types.SearchResult, error)
}

// Pipeline chains middleware processors together.
type Pipeline struct {
	middlewares []Middleware
	logger      *slog.Logger
}

// New creates a new Pipeline.
func New(logger *slog.Logger) *Pipeline {
	return &Pipeline{
		logger: logger.With("component", "pipeline"),
	}
}

// Use adds a middleware to the pipeline chain.
func (p *Pipeline) Use(mw Middleware) {
	p.middlewares = append(p.middlewares, mw)
	p.logger.Debug("middleware added", "name", mw.Name(), "position", len(p.middlewares))
}

// Process runs one result through all middleware in order. A failing
// stage is logged and skipped; the result continues with the value it had
// before that stage.
func (p *Pipeline) Process(ctx context.Context, r *types.SearchResult) *types.SearchResult {
	current := r

	for _, mw := range p.middlewares {
		result, err := p.run(ctx, mw, current)
		if err != nil {
			p.logger.Warn("middleware failed", "stage", mw.Name(), "url", current.URL, "error", err)
			continue
		}
		if result == nil {
			p.logger.Debug("result dropped", "stage", mw.Name(), "url", r.URL)
			return nil
		}
		current = result
	}

	return current
}

// Run processes results sequentially and returns the survivors in input
// order. Once ctx is done the remaining results are passed through
// without enrichment.
func (p *Pipeline) Run(ctx context.Context, results []*types.SearchResult) []*types.SearchResult {
	out := make([]*types.SearchResult, 0, len(results))
	for i, r := range results {
		if err := ctx.Err(); err != nil {
			p.logger.Warn("pipeline interrupted", "processed", i, "remaining", len(results)-i, "error", err)
			return append(out, results[i:]...)
		}
		if processed := p.Process(ctx, r); processed != nil {
			out = append(out, processed)
		}
	}
	return out
}

// Len returns the number of middleware in the chain.
func (p *Pipeline) Len() int {
	return len(p.middlewares)
}

func (p *Pipeline) run(ctx context.Context, mw Middleware, r *types.SearchResult) (result *types.SearchResult, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return mw.Process(ctx, r)
}
