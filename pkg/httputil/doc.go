// Package httputil provides the retry policy shared by the GitHub API client.
//
// # Retry
//
// [Policy.Do] wraps an operation with bounded exponential backoff:
//
//   - Errors wrapped in [RetryableError] (connection failures, timeouts)
//     are retried up to Attempts times, sleeping
//     Base*2^(n-1) after attempt n.
//   - A [RateLimitError] sleeps until its reset time and repeats the same
//     attempt. Rate-limit waits do not count against the attempt budget.
//   - Any other error is returned immediately.
//
// The policy knows nothing about repositories or HTTP; it operates on a
// plain func(attempt int) error:
//
//	err := httputil.DefaultPolicy().Do(ctx, func(attempt int) error {
//	    return fetch(url)
//	})
//
// # Configuration
//
// Defaults are 5 attempts with a 1 second base delay (1s, 2s, 4s, 8s
// between attempts). Tests inject Sleep and Now to observe waits without
// blocking.
package httputil
