package httputil

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const (
	// DefaultAttempts is the number of tries a transient failure gets before
	// the policy gives up.
	DefaultAttempts = 5

	// DefaultBase is the delay after the first failed attempt. It doubles
	// after every further failure.
	DefaultBase = time.Second
)

// RetryableError wraps an error to indicate it should trigger a retry.
// Wrap transient failures (network timeouts, connection resets) with this type
// so that [Policy.Do] knows to attempt the operation again.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// RateLimitError reports an exhausted request quota. The policy sleeps until
// Reset and then repeats the same attempt; rate-limit waits never consume
// the attempt budget.
type RateLimitError struct {
	Reset time.Time
	Err   error
}

func (e *RateLimitError) Error() string {
	msg := fmt.Sprintf("rate limited until %s", e.Reset.Format(time.RFC3339))
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *RateLimitError) Unwrap() error { return e.Err }

// Policy controls how [Policy.Do] retries a failing operation.
//
// The zero value is usable: it behaves like [DefaultPolicy] with real sleeps.
// Sleep and Now exist so tests can observe waits without blocking.
type Policy struct {
	Attempts int           // Total tries for retryable errors (default 5)
	Base     time.Duration // Delay after the first failure (default 1s)

	// MaxRateLimitWaits caps consecutive rate-limit sleeps. Zero means
	// unlimited, which mirrors the API contract of always waiting for reset.
	MaxRateLimitWaits int

	Sleep func(ctx context.Context, d time.Duration) error
	Now   func() time.Time

	// OnRetry is called before sleeping after a retryable failure.
	OnRetry func(attempt int, delay time.Duration, err error)

	// OnRateLimit is called before sleeping through a rate-limit window.
	OnRateLimit func(attempt int, wait time.Duration)
}

// DefaultPolicy returns the policy used for GitHub requests: 5 attempts,
// 1s base delay doubling after each failure.
func DefaultPolicy() Policy {
	return Policy{Attempts: DefaultAttempts, Base: DefaultBase}
}

// Do runs fn until it succeeds, returns a non-retryable error, or the
// attempt budget is spent. fn receives the current attempt number (1-based).
//
// Retryable failures on attempt n sleep Base*2^(n-1) before attempt n+1;
// the final failure is returned without sleeping. A [RateLimitError] sleeps
// until its reset time and reruns attempt n unchanged.
func (p Policy) Do(ctx context.Context, fn func(attempt int) error) error {
	attempts := p.Attempts
	if attempts <= 0 {
		attempts = DefaultAttempts
	}
	base := p.Base
	if base <= 0 {
		base = DefaultBase
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = SleepContext
	}
	now := p.Now
	if now == nil {
		now = time.Now
	}

	waits := 0
	attempt := 1
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn(attempt)
		if err == nil {
			return nil
		}

		var rl *RateLimitError
		if errors.As(err, &rl) {
			if p.MaxRateLimitWaits > 0 && waits >= p.MaxRateLimitWaits {
				return err
			}
			waits++
			wait := max(rl.Reset.Sub(now()), 0)
			if p.OnRateLimit != nil {
				p.OnRateLimit(attempt, wait)
			}
			if err := sleep(ctx, wait); err != nil {
				return err
			}
			continue
		}
		waits = 0

		if !isRetryable(err) || attempt >= attempts {
			return err
		}

		delay := base << (attempt - 1)
		if p.OnRetry != nil {
			p.OnRetry(attempt, delay, err)
		}
		if err := sleep(ctx, delay); err != nil {
			return err
		}
		attempt++
	}
}

// Retry executes fn up to attempts times with exponential backoff.
// It only retries errors wrapped with [RetryableError]; other errors are
// returned immediately. The delay doubles after each failed attempt.
// Returns the last error if all attempts fail, or ctx.Err() if cancelled.
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	p := Policy{Attempts: max(attempts, 1), Base: delay}
	return p.Do(ctx, func(int) error { return fn() })
}

// RetryWithBackoff is a convenience wrapper around [DefaultPolicy].
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	return DefaultPolicy().Do(ctx, func(int) error { return fn() })
}

// SleepContext blocks for d or until ctx is done, whichever comes first.
func SleepContext(ctx context.Context, d time.Duration) error {
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

func isRetryable(err error) bool {
	return errors.As(err, new(*RetryableError))
}
