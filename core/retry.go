package core

import (
	"context"
	"errors"
	"time"
)

// RetryPolicy determines retry behavior for failed requests.
type RetryPolicy interface {
	// NextDelay returns the delay before the next attempt and whether to
	// retry. attempt is the number of attempts completed so far, starting
	// at 1 for the first failure. If ok is false, no more attempts should
	// be made.
	NextDelay(attempt int, err error) (delay time.Duration, ok bool)
}

// BackoffGrowth selects how the delay between attempts grows.
type BackoffGrowth string

const (
	// GrowthFixed waits BaseDelay between every attempt.
	GrowthFixed BackoffGrowth = "fixed"
	// GrowthLinear waits BaseDelay * attempt, so delays grow by BaseDelay
	// after each failure.
	GrowthLinear BackoffGrowth = "linear"
)

// RetryConfig configures retry behavior.
type RetryConfig struct {
	MaxAttempts int           // Total attempts including the first (default: 3)
	BaseDelay   time.Duration // Delay unit between attempts (default: 1s)
	Growth      BackoffGrowth // Delay growth policy (default: GrowthFixed)
}

// DefaultRetryPolicy returns a retry policy with sensible defaults:
// 3 total attempts with a fixed 1s delay between them.
func DefaultRetryPolicy() RetryPolicy {
	return NewRetryPolicy(RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		Growth:      GrowthFixed,
	})
}

// NewRetryPolicy creates a retry policy with the given configuration.
func NewRetryPolicy(cfg RetryConfig) RetryPolicy {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = time.Second
	}
	if cfg.Growth == "" {
		cfg.Growth = GrowthFixed
	}
	return &backoff{cfg: cfg}
}

type backoff struct {
	cfg RetryConfig
}

func (b *backoff) NextDelay(attempt int, err error) (time.Duration, bool) {
	if attempt >= b.cfg.MaxAttempts {
		return 0, false
	}

	if !isRetryable(err) {
		return 0, false
	}

	switch b.cfg.Growth {
	case GrowthLinear:
		return b.cfg.BaseDelay * time.Duration(attempt), true
	default:
		return b.cfg.BaseDelay, true
	}
}

// isRetryable determines if an error should trigger a retry.
//
// Transport failures and server errors (5xx) are retryable. Every 4xx,
// including 429, is fatal: the request reached the server and was rejected,
// so repeating it unchanged cannot help within one call's retry budget.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}

	// Context cancellation is not retryable
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	// Non-retryable sentinel errors
	if errors.Is(err, ErrUnauthorized) {
		return false
	}
	if errors.Is(err, ErrBadRequest) {
		return false
	}
	if errors.Is(err, ErrRateLimited) {
		return false
	}
	if errors.Is(err, ErrDecode) {
		return false
	}

	// Retryable sentinel errors
	if errors.Is(err, ErrNetwork) {
		return true
	}
	if errors.Is(err, ErrServer) {
		return true
	}

	// Check ProviderError for status codes
	var pe *ProviderError
	if errors.As(err, &pe) {
		return isRetryableStatus(pe.Status)
	}

	// Unknown errors are not retried by default
	return false
}

// isRetryableStatus checks if an HTTP status code indicates a retryable error.
func isRetryableStatus(status int) bool {
	// Transport-level failure
	if status == 0 {
		return true
	}
	// Server errors (5xx)
	if status >= 500 && status < 600 {
		return true
	}
	return false
}
