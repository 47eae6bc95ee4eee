package fetcher

import (
	"log/slog"
	"math/rand"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
)

// ProxyManager rotates over a static proxy list, skipping proxies that
// failed until every one has failed.
type ProxyManager struct {
	proxies  []*url.URL
	failed   map[string]bool
	rotation string
	index    atomic.Int64
	mu       sync.Mutex
	logger   *slog.Logger
}

// NewProxyManager creates a ProxyManager. Unparseable URLs are skipped.
func NewProxyManager(urls []string, rotation string, logger *slog.Logger) *ProxyManager {
	pm := &ProxyManager{
		proxies:  make([]*url.URL, 0, len(urls)),
		failed:   make(map[string]bool),
		rotation: rotation,
		logger:   logger.With("component", "proxy_manager"),
	}
	for _, raw := range urls {
		u, err := url.Parse(raw)
		if err != nil || u.Host == "" {
			pm.logger.Warn("invalid proxy URL", "url", raw, "error", err)
			continue
		}
		pm.proxies = append(pm.proxies, u)
	}
	pm.logger.Info("proxy manager initialized", "count", len(pm.proxies), "rotation", rotation)
	return pm
}

// ProxyFunc returns an http.Transport-compatible proxy function.
func (pm *ProxyManager) ProxyFunc() func(*http.Request) (*url.URL, error) {
	return func(*http.Request) (*url.URL, error) {
		return pm.Next(), nil
	}
}

// Next returns the next proxy by the rotation strategy, or nil for a
// direct connection.
func (pm *ProxyManager) Next() *url.URL {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	healthy := make([]*url.URL, 0, len(pm.proxies))
	for _, p := range pm.proxies {
		if !pm.failed[p.String()] {
			healthy = append(healthy, p)
		}
	}
	if len(healthy) == 0 {
		if len(pm.proxies) == 0 {
			return nil
		}
		// Every proxy failed; give them all another chance.
		pm.failed = make(map[string]bool)
		healthy = pm.proxies
	}

	if pm.rotation == "random" {
		return healthy[rand.Intn(len(healthy))]
	}
	idx := pm.index.Add(1) % int64(len(healthy))
	return healthy[idx]
}

// MarkFailed takes a proxy out of rotation.
func (pm *ProxyManager) MarkFailed(proxyURL *url.URL, err error) {
	if proxyURL == nil {
		return
	}
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.failed[proxyURL.String()] = true
	pm.logger.Warn("proxy marked unhealthy", "proxy", proxyURL.Host, "error", err)
}

// HealthyCount returns the number of proxies currently in rotation.
func (pm *ProxyManager) HealthyCount() int {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	return len(pm.proxies) - len(pm.failed)
}
