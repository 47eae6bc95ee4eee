package fetcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/IshaanNene/serpgoat/internal/config"
	"github.com/IshaanNene/serpgoat/internal/observability"
	"github.com/IshaanNene/serpgoat/internal/types"
)

// Session is a navigation session: the single owner of one Fetcher. It
// paces navigations, optionally warms up on a neutral landing page, and
// retries failed loads. Timeouts retry on the same client; any other
// failure tears the client down and relaunches it before the next attempt.
//
// A Session serializes its callers. Close is idempotent and a closed
// Session cannot be reopened.
type Session struct {
	driver    Fetcher
	attempts  int
	timeout   time.Duration
	warmUpURL string

	pacing  DelayPolicy
	settle  DelayPolicy
	backoff BackoffPolicy

	metrics *observability.Metrics
	logger  *slog.Logger

	mu     sync.Mutex
	open   bool
	closed bool
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithPacing sets the delay drawn before every navigation.
func WithPacing(p DelayPolicy) SessionOption {
	return func(s *Session) { s.pacing = p }
}

// WithSettle sets the delay drawn after the warm-up navigation.
func WithSettle(p DelayPolicy) SessionOption {
	return func(s *Session) { s.settle = p }
}

// WithBackoff sets the delay policy between failed attempts.
func WithBackoff(b BackoffPolicy) SessionOption {
	return func(s *Session) { s.backoff = b }
}

// WithMetrics attaches a metrics recorder.
func WithMetrics(m *observability.Metrics) SessionOption {
	return func(s *Session) { s.metrics = m }
}

// NewSession wraps driver with the retry and pacing settings from cfg.
func NewSession(driver Fetcher, cfg *config.Config, logger *slog.Logger, opts ...SessionOption) *Session {
	s := &Session{
		driver:    driver,
		attempts:  cfg.Request.RetryAttempts,
		timeout:   cfg.Request.Timeout,
		warmUpURL: cfg.Search.WarmUpURL,
		pacing:    UniformDelay{Min: cfg.Request.MinDelay, Max: cfg.Request.MaxDelay},
		settle:    UniformDelay{Min: time.Second, Max: 2 * time.Second},
		backoff:   JitterBackoff{Base: cfg.Request.BackoffBase, Max: cfg.Request.BackoffMax},
		logger:    logger.With("component", "session", "driver", driver.Type()),
	}
	if s.attempts < 1 {
		s.attempts = 1
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open acquires the underlying client. Fetch opens lazily, so calling Open
// first is only needed to surface launch failures early.
func (s *Session) Open(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensureOpen(ctx)
}

// Fetch loads req, retrying up to the configured attempt count. When every
// attempt fails the returned *types.FetchError wraps types.ErrMaxRetries;
// callers treat it as "page unavailable". A *types.FetchError that is
// neither a timeout nor retryable is returned at once, without relaunch.
func (s *Session) Fetch(ctx context.Context, req *types.Request) (*types.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, &types.FetchError{URL: req.URLString(), Err: types.ErrSessionClosed}
	}
	if req.Timeout <= 0 {
		req = req.Clone()
		req.Timeout = s.timeout
	}

	var lastErr error
	for attempt := 1; attempt <= s.attempts; attempt++ {
		if attempt > 1 {
			if err := Sleep(ctx, s.backoff.Backoff(attempt-1)); err != nil {
				return nil, err
			}
		}

		if err := s.ensureOpen(ctx); err != nil {
			lastErr = err
			s.metrics.FetchFailure("launch")
			s.logger.Warn("launch failed", "attempt", attempt, "error", err)
			continue
		}

		resp, err := s.attempt(ctx, req)
		if err == nil {
			return resp, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		lastErr = err

		if isTimeout(err) {
			s.metrics.FetchFailure("timeout")
			s.logger.Warn("navigation timed out, retrying",
				"url", req.URLString(),
				"attempt", attempt,
				"max_attempts", s.attempts,
			)
			continue
		}
		if !isRetryable(err) {
			s.metrics.FetchFailure("permanent")
			s.logger.Warn("navigation failed permanently",
				"url", req.URLString(),
				"domain", req.Domain(),
				"attempt", attempt,
				"error", err,
			)
			return nil, err
		}

		s.metrics.FetchFailure("error")
		s.logger.Warn("navigation failed, relaunching client",
			"url", req.URLString(),
			"attempt", attempt,
			"error", err,
		)
		s.teardown()
	}

	s.metrics.FetchFailure("exhausted")
	return nil, &types.FetchError{
		URL: req.URLString(),
		Err: fmt.Errorf("%w (%d attempts): %v", types.ErrMaxRetries, s.attempts, lastErr),
	}
}

// attempt performs one paced navigation, with the optional warm-up.
func (s *Session) attempt(ctx context.Context, req *types.Request) (*types.Response, error) {
	if req.WarmUp && s.warmUpURL != "" {
		if warm, err := types.NewRequest(s.warmUpURL); err == nil {
			warm.Tag = "warmup"
			warm.Timeout = req.Timeout
			if _, err := s.driver.Fetch(ctx, warm); err != nil {
				s.logger.Debug("warm-up failed, continuing", "error", err)
			}
			if err := Sleep(ctx, s.settle.NextDelay()); err != nil {
				return nil, err
			}
		}
	}

	if err := Sleep(ctx, s.pacing.NextDelay()); err != nil {
		return nil, err
	}

	s.metrics.FetchAttempt()
	start := time.Now()
	resp, err := s.driver.Fetch(ctx, req)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("navigation complete",
		"url", req.URLString(),
		"status", resp.StatusCode,
		"size", len(resp.Body),
		"duration", time.Since(start),
	)
	return resp, nil
}

// Close releases the client. It is safe to call multiple times.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if !s.open {
		return nil
	}
	s.open = false
	return s.driver.Close()
}

// ensureOpen launches the driver if needed. Caller holds s.mu.
func (s *Session) ensureOpen(ctx context.Context) error {
	if s.closed {
		return types.ErrSessionClosed
	}
	if s.open {
		return nil
	}
	if err := s.driver.Open(ctx); err != nil {
		_ = s.driver.Close()
		return fmt.Errorf("open %s client: %w", s.driver.Type(), err)
	}
	s.open = true
	return nil
}

// teardown closes the driver so the next attempt relaunches it. Caller holds s.mu.
func (s *Session) teardown() {
	if !s.open {
		return
	}
	s.open = false
	if err := s.driver.Close(); err != nil {
		s.logger.Debug("teardown error", "error", err)
	}
}

func isTimeout(err error) bool {
	var fe *types.FetchError
	if errors.As(err, &fe) {
		return fe.IsTimeout()
	}
	return errors.Is(err, types.ErrTimeout) || errors.Is(err, context.DeadlineExceeded)
}

// isRetryable reports whether another attempt can succeed. Errors that are
// not a *types.FetchError come from the client itself and are retried.
func isRetryable(err error) bool {
	var fe *types.FetchError
	if errors.As(err, &fe) {
		return fe.IsRetryable()
	}
	return true
}
