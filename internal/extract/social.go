package extract

import (
	"context"
	"fmt"

	"github.com/IshaanNene/serpgoat/internal/types"
)

// SocialExtractor covers social networks. They all require an
// authenticated session, so every call reports types.ErrUnsupported
// without touching the network.
type SocialExtractor struct{}

// Extract implements Extractor.
func (SocialExtractor) Extract(_ context.Context, _ string, platform types.Platform) (*types.ContentRecord, error) {
	return nil, fmt.Errorf("%w: %s requires authenticated access", types.ErrUnsupported, platform)
}
