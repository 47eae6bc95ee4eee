package fetcher

import (
	"context"
	"math/rand"
	"time"
)

// DelayPolicy yields the pause inserted before a navigation.
type DelayPolicy interface {
	NextDelay() time.Duration
}

// BackoffPolicy yields the pause after a failed attempt (1-based).
type BackoffPolicy interface {
	Backoff(attempt int) time.Duration
}

// UniformDelay draws delays uniformly from [Min, Max].
type UniformDelay struct {
	Min time.Duration
	Max time.Duration
}

// NextDelay implements DelayPolicy.
func (d UniformDelay) NextDelay() time.Duration {
	if d.Max <= d.Min {
		return d.Min
	}
	return d.Min + time.Duration(rand.Int63n(int64(d.Max-d.Min)+1))
}

// JitterBackoff grows linearly with the attempt number and adds up to one
// extra Base of jitter, capped at Max.
type JitterBackoff struct {
	Base time.Duration
	Max  time.Duration
}

// Backoff implements BackoffPolicy.
func (b JitterBackoff) Backoff(attempt int) time.Duration {
	if b.Base <= 0 {
		return 0
	}
	if attempt < 1 {
		attempt = 1
	}
	d := time.Duration(attempt)*b.Base + time.Duration(rand.Int63n(int64(b.Base)+1))
	if b.Max > 0 && d > b.Max {
		d = b.Max
	}
	return d
}

// NoDelay never pauses. Tests use it to keep runs deterministic.
type NoDelay struct{}

// NextDelay implements DelayPolicy.
func (NoDelay) NextDelay() time.Duration { return 0 }

// Backoff implements BackoffPolicy.
func (NoDelay) Backoff(int) time.Duration { return 0 }

// Sleep pauses for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
