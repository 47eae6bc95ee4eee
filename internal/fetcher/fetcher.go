package fetcher

import (
	"context"

	"github.com/IshaanNene/serpgoat/internal/types"
)

// Fetcher is a raw page-loading driver. A Session owns exactly one Fetcher
// and layers pacing, warm-up and retries on top of it.
type Fetcher interface {
	// Open acquires the underlying client. Calling Open on an open
	// Fetcher is a no-op.
	Open(ctx context.Context) error

	// Fetch retrieves the content at the given request's URL.
	Fetch(ctx context.Context, req *types.Request) (*types.Response, error)

	// Close releases any resources held by the fetcher. It is safe to
	// call more than once.
	Close() error

	// Type returns the fetcher type identifier.
	Type() string
}
