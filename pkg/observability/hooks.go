// Package observability lets the CLI watch a run without the libraries
// depending on any metrics backend.
//
// Three event streams exist: enrichment (listing done, one repository
// started or finished), the contents cache (hit, miss, write) and HTTP
// (request, response, transport error, rate-limit wait). Each stream has an
// interface with a no-op default. A value registered with [Register] receives
// every stream it implements; [Stats] implements all three.
//
//	stats := observability.NewStats()
//	observability.Register(stats)
//	defer observability.Reset()
//
// Emitters fetch the current hooks on every event:
//
//	observability.Cache().OnCacheMiss(ctx, "MarkM-Portfolio/alpha")
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Event Streams
// =============================================================================

// EnrichHooks receives pipeline progress.
type EnrichHooks interface {
	OnListComplete(ctx context.Context, org string, count int, duration time.Duration)
	OnEnrichStart(ctx context.Context, repo string)
	// OnEnrichComplete fires once per started repository; err is non-nil
	// when the repository was dropped.
	OnEnrichComplete(ctx context.Context, repo string, duration time.Duration, err error)
}

// CacheHooks receives contents cache lookups and writes, keyed by full name.
type CacheHooks interface {
	OnCacheHit(ctx context.Context, repo string)
	OnCacheMiss(ctx context.Context, repo string)
	OnCacheSet(ctx context.Context, repo string, entries int)
}

// HTTPHooks receives one OnRequest per attempt, followed by either
// OnResponse or OnError.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, host, path string)
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)
	OnError(ctx context.Context, method, host, path string, err error)
	// OnRateLimit fires before sleeping until the quota resets.
	OnRateLimit(ctx context.Context, host string, wait time.Duration)
}

type NoopEnrichHooks struct{}

func (NoopEnrichHooks) OnListComplete(context.Context, string, int, time.Duration)     {}
func (NoopEnrichHooks) OnEnrichStart(context.Context, string)                          {}
func (NoopEnrichHooks) OnEnrichComplete(context.Context, string, time.Duration, error) {}

type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}
func (NoopHTTPHooks) OnRateLimit(context.Context, string, time.Duration)                     {}

// =============================================================================
// Registry
// =============================================================================

type registry struct {
	enrich EnrichHooks
	cache  CacheHooks
	http   HTTPHooks
}

func defaults() registry {
	return registry{enrich: NoopEnrichHooks{}, cache: NoopCacheHooks{}, http: NoopHTTPHooks{}}
}

var (
	mu      sync.RWMutex
	current = defaults()
)

// Register installs h for every stream it implements and reports how many
// streams that was. Streams h does not implement keep their hooks.
func Register(h any) int {
	mu.Lock()
	defer mu.Unlock()
	n := 0
	if e, ok := h.(EnrichHooks); ok && e != nil {
		current.enrich = e
		n++
	}
	if c, ok := h.(CacheHooks); ok && c != nil {
		current.cache = c
		n++
	}
	if x, ok := h.(HTTPHooks); ok && x != nil {
		current.http = x
		n++
	}
	return n
}

// SetEnrichHooks installs h for the enrichment stream. nil is ignored.
func SetEnrichHooks(h EnrichHooks) {
	if h != nil {
		mu.Lock()
		current.enrich = h
		mu.Unlock()
	}
}

// SetCacheHooks installs h for the cache stream. nil is ignored.
func SetCacheHooks(h CacheHooks) {
	if h != nil {
		mu.Lock()
		current.cache = h
		mu.Unlock()
	}
}

// SetHTTPHooks installs h for the HTTP stream. nil is ignored.
func SetHTTPHooks(h HTTPHooks) {
	if h != nil {
		mu.Lock()
		current.http = h
		mu.Unlock()
	}
}

func Enrich() EnrichHooks {
	mu.RLock()
	defer mu.RUnlock()
	return current.enrich
}

func Cache() CacheHooks {
	mu.RLock()
	defer mu.RUnlock()
	return current.cache
}

func HTTP() HTTPHooks {
	mu.RLock()
	defer mu.RUnlock()
	return current.http
}

// Reset restores the no-op hooks on every stream.
func Reset() {
	mu.Lock()
	current = defaults()
	mu.Unlock()
}
