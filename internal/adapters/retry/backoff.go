// Package retry re-runs the LiveKit connectivity check when it fails on a
// transient network error. The whole schedule has to fit inside the
// per-check timeout of /health/detailed.
package retry

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
	"time"
)

// BackoffConfig is an exponential schedule capped at MaxInterval.
type BackoffConfig struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxRetries      int
	Multiplier      float64
}

// CheckConfig allows two retries after 250ms and 500ms.
func CheckConfig() BackoffConfig {
	return BackoffConfig{
		InitialInterval: 250 * time.Millisecond,
		MaxInterval:     1 * time.Second,
		MaxRetries:      2,
		Multiplier:      2.0,
	}
}

// next returns the wait after interval
func (c BackoffConfig) next(interval time.Duration) time.Duration {
	interval = time.Duration(float64(interval) * c.Multiplier)
	return min(interval, c.MaxInterval)
}

// TotalWait is the longest time WithBackoff sleeps between attempts.
func (c BackoffConfig) TotalWait() time.Duration {
	var total time.Duration
	interval := c.InitialInterval
	for i := 0; i < c.MaxRetries; i++ {
		total += interval
		interval = c.next(interval)
	}
	return total
}

// IsRetryableError is true for a LiveKit server that is restarting or briefly
// unreachable. Bad credentials, bad URLs and context errors are final.
func IsRetryableError(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		// NXDOMAIN will not fix itself
		return !dnsErr.IsNotFound
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	return errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE)
}

// WithBackoff runs check until it succeeds, fails with a final error, runs
// out of retries or ctx ends.
func WithBackoff(ctx context.Context, cfg BackoffConfig, check func() error) error {
	interval := cfg.InitialInterval

	for attempt := 1; ; attempt++ {
		err := check()
		switch {
		case err == nil:
			return nil
		case !IsRetryableError(err):
			return fmt.Errorf("check failed on attempt %d: %w", attempt, err)
		case attempt > cfg.MaxRetries:
			return fmt.Errorf("check failed after %d retries: %w", cfg.MaxRetries, err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
		interval = cfg.next(interval)
	}
}
