package portfolio

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/semaphore"

	"github.com/markm-portfolio/repoindex/pkg/integrations/github"
	"github.com/markm-portfolio/repoindex/pkg/observability"
)

// DefaultConcurrency is the number of enrichments allowed in flight at once.
const DefaultConcurrency = 20

// RepoEnricher enriches a single repository. *Enricher satisfies it.
type RepoEnricher interface {
	Enrich(ctx context.Context, repo *github.Repo) (*github.Repo, error)
}

// Coordinator fans enrichment out over goroutines, holding at most
// Concurrency of them on the semaphore at any time.
type Coordinator struct {
	Enricher    RepoEnricher
	Concurrency int
	Logger      *log.Logger
}

// NewCoordinator creates a Coordinator. concurrency <= 0 selects
// DefaultConcurrency.
func NewCoordinator(e RepoEnricher, concurrency int, logger *log.Logger) *Coordinator {
	if logger == nil {
		logger = log.Default()
	}
	return &Coordinator{Enricher: e, Concurrency: concurrency, Logger: logger}
}

// EnrichAll enriches repos and returns the successes in completion order.
//
// Launching blocks while the semaphore is full. A task that returns an error
// or panics is logged and dropped. Once ctx is cancelled no further tasks
// are admitted; tasks already running finish before EnrichAll returns.
func (c *Coordinator) EnrichAll(ctx context.Context, repos []*github.Repo) []*github.Repo {
	limit := c.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}
	logger := c.Logger
	if logger == nil {
		logger = log.Default()
	}

	sem := semaphore.NewWeighted(int64(limit))
	results := make(chan *github.Repo, len(repos))
	var wg sync.WaitGroup

	for i, repo := range repos {
		if err := sem.Acquire(ctx, 1); err != nil {
			logger.Warn("stopped admitting enrichment tasks", "remaining", len(repos)-i, "err", err)
			break
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(1)
			if out := c.run(ctx, logger, repo); out != nil {
				results <- out
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	out := make([]*github.Repo, 0, len(repos))
	for r := range results {
		out = append(out, r)
	}
	return out
}

// run enriches one repository, converting a panic into a dropped task.
func (c *Coordinator) run(ctx context.Context, logger *log.Logger, repo *github.Repo) (out *github.Repo) {
	name := repoName(repo)
	hooks := observability.Enrich()
	hooks.OnEnrichStart(ctx, name)
	start := time.Now()

	var err error
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
			out = nil
		}
		if err != nil {
			logger.Error("dropping repository", "repo", name, "err", err)
		}
		hooks.OnEnrichComplete(ctx, name, time.Since(start), err)
	}()

	out, err = c.Enricher.Enrich(ctx, repo)
	if err == nil && out == nil {
		err = errors.New("enricher returned no record")
	}
	if err != nil {
		out = nil
	}
	return out
}

func repoName(r *github.Repo) string {
	if r == nil {
		return "<nil>"
	}
	if r.FullName != "" {
		return r.FullName
	}
	return r.Name
}
