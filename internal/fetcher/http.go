package fetcher

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"syscall"
	"time"

	"github.com/andybalholm/brotli"

	"github.com/IshaanNene/serpgoat/internal/config"
	"github.com/IshaanNene/serpgoat/internal/types"
)

// HTTPFetcher implements Fetcher with net/http. It cannot run scripts, so
// it serves targets that render server-side and the test harness.
type HTTPFetcher struct {
	cfg       *config.Config
	agents    *UserAgentRotator
	proxyMgr  *ProxyManager
	logger    *slog.Logger
	client    *http.Client
	transport *TLSTransport
	userAgent string
}

// NewHTTPFetcher creates a new HTTP fetcher. The client is built on Open.
func NewHTTPFetcher(cfg *config.Config, logger *slog.Logger, proxyMgr *ProxyManager) *HTTPFetcher {
	return &HTTPFetcher{
		cfg:      cfg,
		agents:   NewUserAgentRotator(cfg.Scraping.UserAgents),
		proxyMgr: proxyMgr,
		logger:   logger.With("component", "http_fetcher"),
	}
}

// Open builds a fresh client with its own cookie jar and user agent.
func (f *HTTPFetcher) Open(ctx context.Context) error {
	if f.client != nil {
		return nil
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return fmt.Errorf("create cookie jar: %w", err)
	}

	id := NewStealthConfig(f.cfg.Scraping, f.agents.Next())
	f.transport = NewTLSTransport(id.AcceptLanguage())
	if f.proxyMgr != nil {
		f.transport.inner.Proxy = f.proxyMgr.ProxyFunc()
	}
	f.userAgent = id.UserAgent
	f.client = &http.Client{
		Transport: f.transport,
		Jar:       jar,
		Timeout:   f.cfg.Request.Timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return fmt.Errorf("max redirects (%d) reached", len(via))
			}
			return nil
		},
	}
	return nil
}

// Fetch executes a GET request and returns the response.
func (f *HTTPFetcher) Fetch(ctx context.Context, req *types.Request) (*types.Response, error) {
	if f.client == nil {
		return nil, &types.FetchError{URL: req.URLString(), Err: types.ErrSessionClosed}
	}
	target := req.URLString()

	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &types.FetchError{URL: target, Err: err}
	}
	httpReq.Header.Set("User-Agent", f.userAgent)
	httpReq.Header.Set("Accept-Encoding", "gzip, deflate, br")
	for key, values := range req.Headers {
		for _, v := range values {
			httpReq.Header.Set(key, v)
		}
	}

	start := time.Now()
	httpResp, err := f.client.Do(httpReq)
	duration := time.Since(start)
	if err != nil {
		return nil, &types.FetchError{
			URL:       target,
			Err:       err,
			Retryable: isRetryableError(err),
			Timeout:   isTimeoutError(err),
		}
	}
	defer httpResp.Body.Close()

	// 429 and 5xx are failures worth a relaunch; other statuses are content.
	if httpResp.StatusCode == http.StatusTooManyRequests || httpResp.StatusCode >= 500 {
		body, _ := io.ReadAll(io.LimitReader(httpResp.Body, 512))
		return nil, &types.FetchError{
			URL:        target,
			StatusCode: httpResp.StatusCode,
			Err:        fmt.Errorf("HTTP %d: %s", httpResp.StatusCode, strings.TrimSpace(string(body))),
			Retryable:  true,
		}
	}

	reader, err := decompressReader(httpResp)
	if err != nil {
		return nil, &types.FetchError{URL: target, Err: err}
	}
	body, err := io.ReadAll(io.LimitReader(reader, f.cfg.Request.MaxBodySize))
	if err != nil {
		return nil, &types.FetchError{URL: target, Err: err, Retryable: true, Timeout: isTimeoutError(err)}
	}

	resp := types.NewResponse(req, httpResp.StatusCode, httpResp.Header, body, httpResp.Request.URL.String(), duration)

	f.logger.Debug("fetch complete",
		"url", target,
		"status", resp.StatusCode,
		"size", len(body),
		"duration", duration,
	)
	return resp, nil
}

// Close drops the client so the next Open starts a clean identity.
func (f *HTTPFetcher) Close() error {
	if f.transport != nil {
		f.transport.CloseIdleConnections()
	}
	f.client, f.transport = nil, nil
	return nil
}

// Type returns the fetcher type identifier.
func (f *HTTPFetcher) Type() string {
	return "http"
}

// decompressReader wraps the body with the decoder for its Content-Encoding.
func decompressReader(resp *http.Response) (io.Reader, error) {
	switch resp.Header.Get("Content-Encoding") {
	case "gzip":
		return gzip.NewReader(resp.Body)
	case "deflate":
		return flate.NewReader(resp.Body), nil
	case "br":
		return brotli.NewReader(resp.Body), nil
	default:
		return resp.Body, nil
	}
}

func isTimeoutError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// isRetryableError checks if a network error warrants a retry.
func isRetryableError(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	if isTimeoutError(err) {
		return true
	}
	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return true
	}
	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		err = urlErr.Err
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
