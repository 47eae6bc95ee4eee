// Package platform maps result URLs to the platform they belong to.
package platform

import (
	"log/slog"
	"net/url"
	"strings"

	"github.com/IshaanNene/serpgoat/internal/types"
)

// Classifier matches a URL's host against per-platform domain tables.
type Classifier struct {
	domains map[types.Platform][]string
	logger  *slog.Logger
}

// NewClassifier builds a classifier from the configured tables. Unknown
// platform names and blank domains are skipped with a warning; config
// validation rejects them before a run starts.
func NewClassifier(tables map[string][]string, logger *slog.Logger) *Classifier {
	c := &Classifier{
		domains: make(map[types.Platform][]string, len(tables)),
		logger:  logger.With("component", "classifier"),
	}
	for name, domains := range tables {
		p, ok := types.ParsePlatform(name)
		if !ok || p == types.PlatformOther {
			c.logger.Warn("unknown platform in table", "platform", name)
			continue
		}
		for _, d := range domains {
			d = normalizeHost(d)
			if d == "" {
				continue
			}
			c.domains[p] = append(c.domains[p], d)
		}
	}
	return c
}

// Classify returns the platform for rawURL, or types.PlatformOther when no
// table matches or the URL cannot be parsed. A domain matches its exact
// host and any subdomain of it. Platforms are tried in types.Platforms
// order so overlapping tables resolve the same way on every call.
func (c *Classifier) Classify(rawURL string) types.Platform {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return types.PlatformOther
	}
	host := normalizeHost(u.Hostname())
	if host == "" {
		return types.PlatformOther
	}

	for _, p := range types.Platforms {
		for _, d := range c.domains[p] {
			if host == d || strings.HasSuffix(host, "."+d) {
				return p
			}
		}
	}
	return types.PlatformOther
}

func normalizeHost(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.TrimSuffix(h, ".")
	return strings.TrimPrefix(h, "www.")
}
