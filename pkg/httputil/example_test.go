package httputil_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/markm-portfolio/repoindex/pkg/httputil"
)

func ExamplePolicy_Do() {
	var slept []time.Duration
	policy := httputil.DefaultPolicy()
	policy.Sleep = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}

	err := policy.Do(context.Background(), func(attempt int) error {
		if attempt < 3 {
			return &httputil.RetryableError{Err: errors.New("connection reset")}
		}
		return nil
	})

	fmt.Println("err:", err)
	fmt.Println("slept:", slept)
	// Output:
	// err: <nil>
	// slept: [1s 2s]
}

func ExamplePolicy_Do_rateLimit() {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	var waits []time.Duration
	policy := httputil.Policy{
		Now: func() time.Time { return now },
		Sleep: func(context.Context, time.Duration) error {
			return nil
		},
		OnRateLimit: func(attempt int, wait time.Duration) {
			waits = append(waits, wait)
		},
	}

	calls := 0
	_ = policy.Do(context.Background(), func(attempt int) error {
		calls++
		if calls == 1 {
			return &httputil.RateLimitError{Reset: now.Add(90 * time.Second)}
		}
		fmt.Println("attempt:", attempt)
		return nil
	})

	fmt.Println("waits:", waits)
	// Output:
	// attempt: 1
	// waits: [1m30s]
}

func ExampleRetry() {
	calls := 0
	err := httputil.Retry(context.Background(), 2, time.Millisecond, func() error {
		calls++
		return &httputil.RetryableError{Err: errors.New("503 Service Unavailable")}
	})
	fmt.Println(calls, err)
	// Output: 2 503 Service Unavailable
}
