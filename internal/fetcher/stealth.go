package fetcher

import (
	"crypto/tls"
	"fmt"
	"math/rand"
	"net"
	"net/http"
	"regexp"
	"strings"
	"sync/atomic"
	"time"

	"github.com/IshaanNene/serpgoat/internal/config"
)

// StealthConfig is the browser identity applied once per session.
type StealthConfig struct {
	UserAgent string

	ViewportWidth  int
	ViewportHeight int

	// WindowSize for browser launch, "w,h".
	WindowSize string

	// Locale override (e.g., "en-US")
	Locale string

	// Timezone override (e.g., "America/New_York")
	Timezone string

	// Platform reported by navigator.platform, derived from the user agent.
	Platform string

	HardwareConcurrency int
	DeviceMemory        int
}

// NewStealthConfig builds the identity for one launch from the scraping
// settings and the user agent picked for it.
func NewStealthConfig(cfg config.ScrapingConfig, userAgent string) *StealthConfig {
	return &StealthConfig{
		UserAgent:           userAgent,
		ViewportWidth:       cfg.ViewportWidth,
		ViewportHeight:      cfg.ViewportHeight,
		WindowSize:          fmt.Sprintf("%d,%d", cfg.ViewportWidth, cfg.ViewportHeight),
		Locale:              cfg.Locale,
		Timezone:            cfg.Timezone,
		Platform:            platformFor(userAgent),
		HardwareConcurrency: 4 + 2*rand.Intn(5), // 4-12 cores
		DeviceMemory:        8,
	}
}

// AcceptLanguage returns an Accept-Language value for the locale.
func (sc *StealthConfig) AcceptLanguage() string {
	lang := sc.Locale
	if lang == "" {
		lang = "en-US"
	}
	base := strings.SplitN(lang, "-", 2)[0]
	if base == lang {
		return lang + ";q=0.9"
	}
	return fmt.Sprintf("%s,%s;q=0.9", lang, base)
}

// StealthJS returns JavaScript injected into every document before any
// page script runs.
func (sc *StealthConfig) StealthJS() string {
	lang := sc.Locale
	if lang == "" {
		lang = "en-US"
	}
	return fmt.Sprintf(`
Object.defineProperty(navigator, 'webdriver', { get: () => undefined });
Object.defineProperty(navigator, 'platform', { get: () => '%s' });
Object.defineProperty(navigator, 'language', { get: () => '%s' });
Object.defineProperty(navigator, 'languages', { get: () => ['%s', 'en'] });
Object.defineProperty(navigator, 'hardwareConcurrency', { get: () => %d });
Object.defineProperty(navigator, 'deviceMemory', { get: () => %d });

window.chrome = window.chrome || {
	runtime: { onMessage: { addListener: () => {} }, sendMessage: () => {} },
	loadTimes: () => ({}),
	csi: () => ({}),
};

const originalQuery = window.navigator.permissions && window.navigator.permissions.query;
if (originalQuery) {
	window.navigator.permissions.query = (parameters) => (
		parameters.name === 'notifications' ?
			Promise.resolve({ state: Notification.permission }) :
			originalQuery(parameters)
	);
}
`, sc.Platform, lang, lang, sc.HardwareConcurrency, sc.DeviceMemory)
}

// ClientHints returns the navigation headers a desktop Chrome sends,
// as alternating name/value pairs.
func (sc *StealthConfig) ClientHints() []string {
	return clientHints(sc.UserAgent, sc.AcceptLanguage())
}

var chromeVersion = regexp.MustCompile(`Chrome/(\d+)`)

func clientHints(userAgent, acceptLanguage string) []string {
	version := "120"
	if m := chromeVersion.FindStringSubmatch(userAgent); m != nil {
		version = m[1]
	}
	platform := "Windows"
	switch platformFor(userAgent) {
	case "MacIntel":
		platform = "macOS"
	case "Linux x86_64":
		platform = "Linux"
	}
	return []string{
		"Accept-Language", acceptLanguage,
		"Sec-Ch-Ua", fmt.Sprintf(`"Chromium";v="%s", "Not?A_Brand";v="8", "Google Chrome";v="%s"`, version, version),
		"Sec-Ch-Ua-Mobile", "?0",
		"Sec-Ch-Ua-Platform", fmt.Sprintf(`"%s"`, platform),
		"Sec-Fetch-Dest", "document",
		"Sec-Fetch-Mode", "navigate",
		"Sec-Fetch-Site", "none",
		"Sec-Fetch-User", "?1",
		"Upgrade-Insecure-Requests", "1",
	}
}

func platformFor(userAgent string) string {
	switch {
	case strings.Contains(userAgent, "Macintosh"):
		return "MacIntel"
	case strings.Contains(userAgent, "Linux"):
		return "Linux x86_64"
	default:
		return "Win32"
	}
}

// UserAgentRotator hands out user agents round-robin.
type UserAgentRotator struct {
	agents []string
	index  atomic.Int64
}

// NewUserAgentRotator creates a rotator starting at a random offset.
func NewUserAgentRotator(agents []string) *UserAgentRotator {
	r := &UserAgentRotator{agents: agents}
	if len(agents) > 0 {
		r.index.Store(int64(rand.Intn(len(agents))))
	}
	return r
}

// Next returns the next user agent, or a versioned fallback when the pool
// is empty.
func (r *UserAgentRotator) Next() string {
	if len(r.agents) == 0 {
		return "serpgoat/" + config.Version
	}
	idx := r.index.Add(1) % int64(len(r.agents))
	return r.agents[idx]
}

// TLSTransport is an http.RoundTripper with a browser-like TLS fingerprint
// and navigation headers.
type TLSTransport struct {
	inner          *http.Transport
	acceptLanguage string
}

// NewTLSTransport creates a transport that mimics common browser TLS fingerprints.
func NewTLSTransport(acceptLanguage string) *TLSTransport {
	return &TLSTransport{
		inner: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   30 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSClientConfig:     randomTLSConfig(),
			TLSHandshakeTimeout: 10 * time.Second,
			MaxIdleConns:        10,
			IdleConnTimeout:     90 * time.Second,
			DisableCompression:  true,
		},
		acceptLanguage: acceptLanguage,
	}
}

// RoundTrip implements http.RoundTripper.
func (t *TLSTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8")
	}
	hints := clientHints(req.Header.Get("User-Agent"), t.acceptLanguage)
	for i := 0; i+1 < len(hints); i += 2 {
		if req.Header.Get(hints[i]) == "" {
			req.Header.Set(hints[i], hints[i+1])
		}
	}
	return t.inner.RoundTrip(req)
}

// CloseIdleConnections closes idle keep-alive connections.
func (t *TLSTransport) CloseIdleConnections() {
	t.inner.CloseIdleConnections()
}

// randomTLSConfig creates a TLS config that mimics browser fingerprints.
func randomTLSConfig() *tls.Config {
	cipherSuites := [][]uint16{
		// Chrome-like
		{
			tls.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256,
			tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
			tls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
			tls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
			tls.TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305_SHA256,
			tls.TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305_SHA256,
		},
		// Firefox-like
		{
			tls.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256,
			tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
			tls.TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305_SHA256,
			tls.TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305_SHA256,
			tls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
			tls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
		},
	}

	return &tls.Config{
		CipherSuites: cipherSuites[rand.Intn(len(cipherSuites))],
		MinVersion:   tls.VersionTLS12,
		CurvePreferences: []tls.CurveID{
			tls.X25519,
			tls.CurveP256,
			tls.CurveP384,
		},
	}
}
