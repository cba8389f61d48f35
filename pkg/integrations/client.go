package integrations

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	neturl "net/url"
	"strconv"
	"time"

	"github.com/charmbracelet/log"

	"github.com/markm-portfolio/repoindex/pkg/httputil"
	"github.com/markm-portfolio/repoindex/pkg/observability"
)

// Client provides shared HTTP functionality for API clients.
// It handles retry logic, rate-limit waits, and common request headers.
type Client struct {
	http    *http.Client
	headers map[string]string
	policy  httputil.Policy
	logger  *log.Logger
	timeout time.Duration
	now     func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithPolicy overrides the retry policy.
func WithPolicy(p httputil.Policy) Option {
	return func(c *Client) {
		c.policy = p
		if p.Now != nil {
			c.now = p.Now
		}
	}
}

// WithLogger sets the logger used for retry, rate-limit and status diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates a Client with the given default headers.
// Headers are applied to all requests made through this client.
// Pass nil for headers if no default headers are needed.
func NewClient(headers map[string]string, opts ...Option) *Client {
	c := &Client{
		http:    NewHTTPClient(),
		headers: headers,
		policy:  httputil.DefaultPolicy(),
		logger:  log.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		hc := *c.http
		hc.Timeout = c.timeout
		c.http = &hc
	}
	return c
}

// Logger returns the logger diagnostics are written to.
func (c *Client) Logger() *log.Logger { return c.logger }

// Get performs an HTTP GET request and JSON-decodes a 200 response into v.
//
// found is false when the API answered with a non-200 status that is not a
// rate limit; that case is logged and is not an error.
// Transport failures are retried per the client's policy, and rate-limit
// windows are waited out before the same attempt is repeated.
func (c *Client) Get(ctx context.Context, url string, v any) (found bool, err error) {
	return c.GetWithHeaders(ctx, url, nil, v)
}

// GetWithHeaders performs an HTTP GET with additional headers merged with defaults.
// Request-specific headers override client defaults for the same key.
func (c *Client) GetWithHeaders(ctx context.Context, url string, headers map[string]string, v any) (bool, error) {
	policy := c.policy
	onRetry, onRateLimit := policy.OnRetry, policy.OnRateLimit
	policy.OnRetry = func(attempt int, delay time.Duration, err error) {
		c.logger.Warn("request failed, retrying", "url", url, "attempt", attempt, "wait", delay, "err", err)
		if onRetry != nil {
			onRetry(attempt, delay, err)
		}
	}
	policy.OnRateLimit = func(attempt int, wait time.Duration) {
		c.logger.Warn("rate limit exhausted, waiting for reset", "url", url, "attempt", attempt, "wait", wait.Round(time.Second))
		observability.HTTP().OnRateLimit(ctx, hostOf(url), wait)
		if onRateLimit != nil {
			onRateLimit(attempt, wait)
		}
	}

	var found bool
	err := policy.Do(ctx, func(int) error {
		var err error
		found, err = c.fetch(ctx, url, headers, v)
		return err
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return false, ctxErr
		}
		c.logger.Error("giving up on request", "url", url, "err", err)
		return false, err
	}
	return found, nil
}

func (c *Client) fetch(ctx context.Context, url string, headers map[string]string, v any) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, err
	}
	for k, val := range c.headers {
		req.Header.Set(k, val)
	}
	for k, val := range headers {
		req.Header.Set(k, val)
	}

	host, path := req.URL.Host, req.URL.Path
	observability.HTTP().OnRequest(ctx, req.Method, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		observability.HTTP().OnError(ctx, req.Method, host, path, err)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return false, ctxErr
		}
		return false, &httputil.RetryableError{Err: fmt.Errorf("%w: %v", ErrNetwork, err)}
	}
	defer resp.Body.Close()
	observability.HTTP().OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	if rl := c.rateLimit(resp); rl != nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return false, rl
	}

	switch code := resp.StatusCode; {
	case code == http.StatusOK:
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			return false, fmt.Errorf("%w: %s: %v", ErrDecode, url, err)
		}
		return true, nil
	default:
		// Any other status, 5xx included, is terminal: only transport
		// failures and rate limits are retried.
		c.logger.Warn("no data", "url", url, "status", code)
		return false, nil
	}
}

// rateLimit inspects a 403/429 response for an explicit quota signal.
// Retry-After (secondary limits) wins over X-RateLimit-Reset.
func (c *Client) rateLimit(resp *http.Response) *httputil.RateLimitError {
	if resp.StatusCode != http.StatusForbidden && resp.StatusCode != http.StatusTooManyRequests {
		return nil
	}
	status := fmt.Errorf("status %d", resp.StatusCode)

	if ra := resp.Header.Get("Retry-After"); ra != "" {
		if secs, err := strconv.Atoi(ra); err == nil {
			return &httputil.RateLimitError{Reset: c.now().Add(time.Duration(secs) * time.Second), Err: status}
		}
	}
	if resp.Header.Get("X-RateLimit-Remaining") != "0" {
		return nil
	}
	reset, err := strconv.ParseInt(resp.Header.Get("X-RateLimit-Reset"), 10, 64)
	if err != nil {
		return nil
	}
	return &httputil.RateLimitError{Reset: time.Unix(reset, 0), Err: status}
}

func hostOf(rawURL string) string {
	u, err := neturl.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Host
}
