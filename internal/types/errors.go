package types

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes.
var (
	ErrTimeout       = errors.New("navigation timed out")
	ErrMaxRetries    = errors.New("max retries exceeded")
	ErrInvalidURL    = errors.New("invalid URL")
	ErrEmptyResponse = errors.New("empty response body")
	ErrSessionClosed = errors.New("navigation session is closed")
	ErrUnsupported   = errors.New("platform not supported")
)

// FetchError wraps errors that occur during navigation.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
	Retryable  bool
	Timeout    bool
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("fetch error for %s (status %d): %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch error for %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) IsRetryable() bool { return e.Retryable }

// IsTimeout reports whether the failure was a page-load timeout.
func (e *FetchError) IsTimeout() bool { return e.Timeout || errors.Is(e.Err, ErrTimeout) }

// ParseError wraps errors that occur while parsing a result block or detail page.
type ParseError struct {
	URL      string
	Selector string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error for %s (selector=%q): %v", e.URL, e.Selector, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// StorageError wraps errors that occur during storage/export.
type StorageError struct {
	Backend string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error (%s): %v", e.Backend, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// ConfigError reports a configuration defect. It is the only error class
// allowed to abort a run.
type ConfigError struct {
	Key    string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid config %s: %s", e.Key, e.Reason)
}
