package observability

import (
	"context"
	"sync/atomic"
	"time"
)

// Stats counts events from every hook category. It is safe for concurrent
// use and is what the CLI registers to print a run summary.
type Stats struct {
	Requests    atomic.Int64
	Errors      atomic.Int64
	RateLimited atomic.Int64
	CacheHits   atomic.Int64
	CacheMisses atomic.Int64
	Enriched    atomic.Int64
	Dropped     atomic.Int64

	rateLimitWait atomic.Int64
}

// NewStats returns a zeroed Stats.
func NewStats() *Stats { return &Stats{} }

// RateLimitWait returns the total time spent waiting for quota resets.
func (s *Stats) RateLimitWait() time.Duration {
	return time.Duration(s.rateLimitWait.Load())
}

func (s *Stats) OnListComplete(context.Context, string, int, time.Duration) {}
func (s *Stats) OnEnrichStart(context.Context, string)                      {}

func (s *Stats) OnEnrichComplete(_ context.Context, _ string, _ time.Duration, err error) {
	if err != nil {
		s.Dropped.Add(1)
		return
	}
	s.Enriched.Add(1)
}

func (s *Stats) OnCacheHit(context.Context, string)      { s.CacheHits.Add(1) }
func (s *Stats) OnCacheMiss(context.Context, string)     { s.CacheMisses.Add(1) }
func (s *Stats) OnCacheSet(context.Context, string, int) {}

func (s *Stats) OnRequest(context.Context, string, string, string) { s.Requests.Add(1) }

func (s *Stats) OnResponse(context.Context, string, string, string, int, time.Duration) {}

func (s *Stats) OnError(context.Context, string, string, string, error) { s.Errors.Add(1) }

func (s *Stats) OnRateLimit(_ context.Context, _ string, wait time.Duration) {
	s.RateLimited.Add(1)
	s.rateLimitWait.Add(int64(wait))
}

var (
	_ EnrichHooks = (*Stats)(nil)
	_ CacheHooks  = (*Stats)(nil)
	_ HTTPHooks   = (*Stats)(nil)
)
