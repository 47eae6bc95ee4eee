package fetcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/url"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/IshaanNene/serpgoat/internal/config"
	"github.com/IshaanNene/serpgoat/internal/types"
)

// BrowserFetcher implements Fetcher using one headless Chromium tab via Rod.
// Each Open launches a fresh browser with a freshly rotated identity.
type BrowserFetcher struct {
	cfg      *config.Config
	agents   *UserAgentRotator
	proxyMgr *ProxyManager
	human    DelayPolicy
	logger   *slog.Logger

	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
	proxy    *url.URL
	identity *StealthConfig
}

// BrowserOption configures the BrowserFetcher.
type BrowserOption func(*BrowserFetcher)

// WithBrowserProxy sets the proxy manager for browser launches.
func WithBrowserProxy(pm *ProxyManager) BrowserOption {
	return func(bf *BrowserFetcher) { bf.proxyMgr = pm }
}

// WithHumanDelay sets the pause between simulated scrolls.
func WithHumanDelay(p DelayPolicy) BrowserOption {
	return func(bf *BrowserFetcher) { bf.human = p }
}

// NewBrowserFetcher creates a browser fetcher. Nothing is launched until Open.
func NewBrowserFetcher(cfg *config.Config, logger *slog.Logger, opts ...BrowserOption) *BrowserFetcher {
	bf := &BrowserFetcher{
		cfg:    cfg,
		agents: NewUserAgentRotator(cfg.Scraping.UserAgents),
		human:  UniformDelay{Min: 500 * time.Millisecond, Max: 1500 * time.Millisecond},
		logger: logger.With("component", "browser_fetcher"),
	}
	for _, opt := range opts {
		opt(bf)
	}
	return bf
}

// Open launches Chromium and prepares a stealth page with the session identity.
func (bf *BrowserFetcher) Open(ctx context.Context) error {
	if bf.page != nil {
		return nil
	}

	bf.identity = NewStealthConfig(bf.cfg.Scraping, bf.agents.Next())

	l := launcher.New().
		Headless(bf.cfg.Scraping.Headless).
		Set("disable-blink-features", "AutomationControlled").
		Set("no-sandbox").
		Set("disable-dev-shm-usage").
		Set("disable-gpu").
		Set("disable-extensions").
		Set("disable-default-apps").
		Set("disable-popup-blocking").
		Set("no-first-run").
		Set("no-default-browser-check").
		Set("window-size", bf.identity.WindowSize)

	if bf.proxyMgr != nil {
		if p := bf.proxyMgr.Next(); p != nil {
			bf.proxy = p
			l = l.Proxy(p.Host)
		}
	}
	bf.launcher = l

	controlURL, err := l.Context(ctx).Launch()
	if err != nil {
		bf.markProxyFailed(err)
		return fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return fmt.Errorf("connect browser: %w", err)
	}
	bf.browser = browser

	page, err := stealth.Page(browser)
	if err != nil {
		return fmt.Errorf("stealth page: %w", err)
	}
	bf.page = page

	if err := bf.applyIdentity(page); err != nil {
		return err
	}

	bf.logger.Info("browser session ready",
		"headless", bf.cfg.Scraping.Headless,
		"viewport", bf.identity.WindowSize,
		"proxy", bf.proxy != nil,
	)
	return nil
}

// applyIdentity sets the viewport, user agent, locale, timezone, client
// hints and init script on the session page.
func (bf *BrowserFetcher) applyIdentity(page *rod.Page) error {
	id := bf.identity

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             id.ViewportWidth,
		Height:            id.ViewportHeight,
		DeviceScaleFactor: 1,
	}); err != nil {
		return fmt.Errorf("set viewport: %w", err)
	}

	if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
		UserAgent:      id.UserAgent,
		AcceptLanguage: id.AcceptLanguage(),
		Platform:       id.Platform,
	}); err != nil {
		return fmt.Errorf("set user agent: %w", err)
	}

	if id.Locale != "" {
		if err := (proto.EmulationSetLocaleOverride{Locale: id.Locale}).Call(page); err != nil {
			bf.logger.Warn("locale override failed", "locale", id.Locale, "error", err)
		}
	}
	if id.Timezone != "" {
		if err := (proto.EmulationSetTimezoneOverride{TimezoneID: id.Timezone}).Call(page); err != nil {
			bf.logger.Warn("timezone override failed", "timezone", id.Timezone, "error", err)
		}
	}

	if _, err := page.SetExtraHeaders(id.ClientHints()); err != nil {
		bf.logger.Warn("failed to set client hints", "error", err)
	}

	if _, err := page.EvalOnNewDocument(id.StealthJS()); err != nil {
		return fmt.Errorf("inject stealth script: %w", err)
	}
	return nil
}

// Fetch navigates the session page, waits for network idle and the
// results container, simulates a reader, then captures the markup.
func (bf *BrowserFetcher) Fetch(ctx context.Context, req *types.Request) (*types.Response, error) {
	if bf.page == nil {
		return nil, &types.FetchError{URL: req.URLString(), Err: types.ErrSessionClosed}
	}
	target := req.URLString()
	start := time.Now()

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = bf.cfg.Request.Timeout
	}

	page := bf.page.Context(ctx)

	// Capture the main document status from the network domain.
	status := 200
	statusCh := make(chan int, 1)
	watcher, stopWatch := page.WithCancel()
	defer stopWatch()
	waitStatus := watcher.EachEvent(func(e *proto.NetworkResponseReceived) bool {
		if e.Type == proto.NetworkResourceTypeDocument && e.Response != nil {
			select {
			case statusCh <- e.Response.Status:
			default:
			}
			return true
		}
		return false
	})
	go waitStatus()

	nav := page.Timeout(timeout)
	waitIdle := nav.WaitNavigation(proto.PageLifecycleEventNameNetworkAlmostIdle)
	if err := nav.Navigate(target); err != nil {
		nav.CancelTimeout()
		return nil, bf.navigationError(target, err)
	}
	waitIdle()
	navErr := nav.GetContext().Err()
	nav.CancelTimeout()
	if navErr != nil {
		return nil, bf.navigationError(target, navErr)
	}

	select {
	case status = <-statusCh:
	case <-time.After(500 * time.Millisecond):
	}

	if req.Tag == "warmup" {
		return types.NewResponse(req, status, nil, nil, target, time.Since(start)), nil
	}

	if req.WaitSelector != "" {
		waiter := page.Timeout(10 * time.Second)
		if _, err := waiter.Element(req.WaitSelector); err != nil {
			bf.logger.Debug("wait selector timeout", "selector", req.WaitSelector, "error", err)
		}
		waiter.CancelTimeout()
	}

	bf.simulateReader(ctx, page)

	html, err := page.HTML()
	if err != nil {
		return nil, &types.FetchError{URL: target, Err: err, Retryable: true}
	}
	if html == "" {
		return nil, &types.FetchError{URL: target, Err: types.ErrEmptyResponse, Retryable: true}
	}

	finalURL := target
	if info, err := page.Info(); err == nil && info != nil {
		finalURL = info.URL
	}

	duration := time.Since(start)
	bf.logger.Debug("browser fetch complete",
		"url", target,
		"final_url", finalURL,
		"status", status,
		"size", len(html),
		"duration", duration,
	)
	return types.NewResponse(req, status, nil, []byte(html), finalURL, duration), nil
}

// simulateReader scrolls 2-4 times with pauses and moves the pointer once.
// Failures here never fail the fetch.
func (bf *BrowserFetcher) simulateReader(ctx context.Context, page *rod.Page) {
	scrolls := 2 + rand.Intn(3)
	for i := 0; i < scrolls; i++ {
		if _, err := page.Eval(`() => window.scrollBy(0, window.innerHeight * Math.random())`); err != nil {
			bf.logger.Debug("scroll failed", "error", err)
			return
		}
		if Sleep(ctx, bf.human.NextDelay()) != nil {
			return
		}
	}
	to := proto.Point{X: float64(100 + rand.Intn(601)), Y: float64(100 + rand.Intn(601))}
	if err := page.Mouse.MoveLinear(to, 5+rand.Intn(10)); err != nil {
		bf.logger.Debug("pointer move failed", "error", err)
	}
}

func (bf *BrowserFetcher) navigationError(target string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &types.FetchError{URL: target, Err: fmt.Errorf("%w: %v", types.ErrTimeout, err), Retryable: true, Timeout: true}
	}
	bf.markProxyFailed(err)
	return &types.FetchError{URL: target, Err: err, Retryable: true}
}

func (bf *BrowserFetcher) markProxyFailed(err error) {
	if bf.proxyMgr != nil && bf.proxy != nil {
		bf.proxyMgr.MarkFailed(bf.proxy, err)
	}
}

// Close shuts down the browser and kills the launched process. It is safe
// to call on a fetcher that never opened or already closed.
func (bf *BrowserFetcher) Close() error {
	var err error
	if bf.browser != nil {
		err = bf.browser.Close()
	}
	if bf.launcher != nil {
		bf.launcher.Kill()
		bf.launcher.Cleanup()
	}
	bf.page, bf.browser, bf.launcher, bf.proxy = nil, nil, nil, nil
	return err
}

// Type returns the fetcher type identifier.
func (bf *BrowserFetcher) Type() string {
	return "browser"
}
