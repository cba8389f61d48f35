package integrations

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/markm-portfolio/repoindex/pkg/httputil"
)

// recordingSleep returns a retry policy that records waits instead of sleeping.
func recordingSleep(now time.Time, sleeps *[]time.Duration) httputil.Policy {
	return httputil.Policy{
		Attempts: 5,
		Base:     time.Second,
		Now:      func() time.Time { return now },
		Sleep: func(ctx context.Context, d time.Duration) error {
			*sleeps = append(*sleeps, d)
			return ctx.Err()
		},
	}
}

func quietLogger() *log.Logger { return log.New(io.Discard) }

func TestNewClient(t *testing.T) {
	headers := map[string]string{"Authorization": "Bearer token"}
	client := NewClient(headers)

	if client == nil {
		t.Fatal("NewClient() returned nil")
	}
	if client.http == nil {
		t.Error("NewClient() http client is nil")
	}
	if client.http.Timeout != DefaultTimeout {
		t.Errorf("timeout = %v, want %v", client.http.Timeout, DefaultTimeout)
	}
	if client.headers["Authorization"] != "Bearer token" {
		t.Error("NewClient() headers not set correctly")
	}
	if client.policy.Attempts != httputil.DefaultAttempts {
		t.Errorf("policy attempts = %d, want %d", client.policy.Attempts, httputil.DefaultAttempts)
	}
}

func TestNewClientTimeoutDoesNotMutateShared(t *testing.T) {
	shared := &http.Client{Timeout: time.Minute}
	client := NewClient(nil, WithHTTPClient(shared), WithTimeout(3*time.Second))

	if client.http.Timeout != 3*time.Second {
		t.Errorf("timeout = %v, want 3s", client.http.Timeout)
	}
	if shared.Timeout != time.Minute {
		t.Error("WithTimeout should not modify the caller's http.Client")
	}
}

func TestClientGet(t *testing.T) {
	type response struct {
		Message string `json:"message"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		json.NewEncoder(w).Encode(response{Message: "hello"})
	}))
	defer server.Close()

	client := NewClient(nil, WithHTTPClient(server.Client()), WithLogger(quietLogger()))

	var resp response
	found, err := client.Get(context.Background(), server.URL, &resp)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if !found {
		t.Fatal("Get() found = false, want true")
	}
	if resp.Message != "hello" {
		t.Errorf("Get() message = %q, want %q", resp.Message, "hello")
	}
}

func TestClientGetWithHeadersOverridesDefaults(t *testing.T) {
	var receivedOverride, receivedDefault string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedOverride = r.Header.Get("X-Override")
		receivedDefault = r.Header.Get("X-Default")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}))
	defer server.Close()

	client := NewClient(map[string]string{"X-Override": "default", "X-Default": "kept"},
		WithHTTPClient(server.Client()), WithLogger(quietLogger()))

	var resp map[string]string
	_, err := client.GetWithHeaders(context.Background(), server.URL, map[string]string{"X-Override": "overridden"}, &resp)
	if err != nil {
		t.Fatalf("GetWithHeaders() error: %v", err)
	}
	if receivedOverride != "overridden" {
		t.Errorf("override header = %q, want %q", receivedOverride, "overridden")
	}
	if receivedDefault != "kept" {
		t.Errorf("default header = %q, want %q", receivedDefault, "kept")
	}
}

func TestClientGetNoData(t *testing.T) {
	for _, code := range []int{
		http.StatusNotFound, http.StatusUnprocessableEntity, http.StatusForbidden,
		http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable,
	} {
		t.Run(strconv.Itoa(code), func(t *testing.T) {
			var calls atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(code)
			}))
			defer server.Close()

			client := NewClient(nil, WithHTTPClient(server.Client()), WithLogger(quietLogger()))

			var v any
			found, err := client.Get(context.Background(), server.URL, &v)
			if err != nil {
				t.Errorf("Get() error = %v, want nil", err)
			}
			if found {
				t.Error("Get() found = true, want false")
			}
			if calls.Load() != 1 {
				t.Errorf("calls = %d, want 1 (no retry)", calls.Load())
			}
		})
	}
}

func TestClientGetTransportFailureExhausts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close() // connection refused from here on

	var sleeps []time.Duration
	var attempts int
	policy := recordingSleep(time.Now(), &sleeps)
	policy.OnRetry = func(int, time.Duration, error) { attempts++ }

	client := NewClient(nil, WithPolicy(policy), WithLogger(quietLogger()))

	var v any
	found, err := client.Get(context.Background(), url, &v)
	if found {
		t.Error("Get() found = true, want false")
	}
	if !errors.Is(err, ErrNetwork) {
		t.Errorf("Get() error = %v, want ErrNetwork", err)
	}
	if attempts != 4 {
		t.Errorf("retries = %d, want 4", attempts)
	}
	var total time.Duration
	for _, d := range sleeps {
		total += d
	}
	if total != 15*time.Second {
		t.Errorf("total sleep = %v, want 15s", total)
	}
}

func TestClientGetRateLimitReset(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("X-RateLimit-Remaining", "0")
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(now.Add(10*time.Second).Unix(), 10))
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.Write([]byte(`{"Go": 100}`))
	}))
	defer server.Close()

	var sleeps []time.Duration
	policy := recordingSleep(now, &sleeps)
	var limitedAttempt int
	policy.OnRateLimit = func(attempt int, _ time.Duration) { limitedAttempt = attempt }

	client := NewClient(nil, WithHTTPClient(server.Client()), WithPolicy(policy), WithLogger(quietLogger()))

	var v map[string]int
	found, err := client.Get(context.Background(), server.URL, &v)
	if err != nil || !found {
		t.Fatalf("Get() = %v, %v; want true, nil", found, err)
	}
	if len(sleeps) != 1 || sleeps[0] < 10*time.Second {
		t.Errorf("sleeps = %v, want one sleep >= 10s", sleeps)
	}
	if limitedAttempt != 1 {
		t.Errorf("rate limited on attempt %d, want 1", limitedAttempt)
	}
	if v["Go"] != 100 {
		t.Errorf("decoded = %v", v)
	}
}

func TestClientGetRetryAfter(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "30")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	var sleeps []time.Duration
	client := NewClient(nil, WithHTTPClient(server.Client()),
		WithPolicy(recordingSleep(now, &sleeps)), WithLogger(quietLogger()))

	var v []any
	if _, err := client.Get(context.Background(), server.URL, &v); err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if len(sleeps) != 1 || sleeps[0] != 30*time.Second {
		t.Errorf("sleeps = %v, want [30s]", sleeps)
	}
}

func TestClientGetDecodeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	client := NewClient(nil, WithHTTPClient(server.Client()), WithLogger(quietLogger()))

	var v map[string]any
	found, err := client.Get(context.Background(), server.URL, &v)
	if found {
		t.Error("Get() found = true, want false")
	}
	if !errors.Is(err, ErrDecode) {
		t.Errorf("Get() error = %v, want ErrDecode", err)
	}
}

func TestClientGetContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient(nil, WithHTTPClient(server.Client()), WithLogger(quietLogger()))
	var v any
	if _, err := client.Get(ctx, server.URL, &v); !errors.Is(err, context.Canceled) {
		t.Errorf("Get() error = %v, want context.Canceled", err)
	}
}
