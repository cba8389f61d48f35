package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/markm-portfolio/repoindex/pkg/cache"
	"github.com/markm-portfolio/repoindex/pkg/integrations/github"
	pkgio "github.com/markm-portfolio/repoindex/pkg/io"
	"github.com/markm-portfolio/repoindex/pkg/observability"
	"github.com/markm-portfolio/repoindex/pkg/portfolio"
)

// Client is the GitHub surface the pipeline needs. *github.Client
// satisfies it.
type Client interface {
	ListOrgRepos(ctx context.Context, org string) ([]*github.Repo, error)
	portfolio.Source
}

// Runner executes pipeline stages against one client and contents cache.
//
// The Runner holds no per-run state; concurrent Execute calls with
// different options are safe as long as the client and store are.
type Runner struct {
	Client Client
	Store  cache.Store
	Logger *log.Logger
}

// NewRunner creates a runner. A nil store disables caching.
func NewRunner(client Client, store cache.Store, logger *log.Logger) *Runner {
	if store == nil {
		store = cache.NewNullStore()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Client: client, Store: store, Logger: logger}
}

// Execute runs the complete list → enrich → render pipeline.
//
// Listing and enrichment failures for individual repositories are logged
// and skipped. Execute fails only on invalid options, cancellation, or when
// the output cannot be written; a cancelled run writes nothing.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	runID := uuid.NewString()
	logger := r.logger(opts).With("run", runID)
	opts.Logger = logger
	result := &Result{RunID: runID, Output: opts.Output, Snapshot: opts.Snapshot}

	// Stage 1: List
	listStart := time.Now()
	repos, excluded, listed, err := r.list(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	result.Listed = listed
	result.Excluded = excluded
	result.Stats.ListTime = time.Since(listStart)

	logger.Info("listed repositories",
		"org", opts.Org,
		"listed", listed,
		"excluded", len(excluded),
		"duration", result.Stats.ListTime)

	// Stage 2: Enrich
	enrichStart := time.Now()
	enriched := r.Enrich(ctx, repos, opts)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("enrich: %w", err)
	}
	result.Repos = enriched
	result.Dropped = len(repos) - len(enriched)
	result.Stats.EnrichTime = time.Since(enrichStart)

	logger.Info("enriched repositories",
		"enriched", len(enriched),
		"dropped", result.Dropped,
		"duration", result.Stats.EnrichTime)

	// Stage 3: Render
	renderStart := time.Now()
	if err := r.Render(enriched, opts); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Stats.RenderTime = time.Since(renderStart)

	logger.Info("rendered index",
		"output", opts.Output,
		"cards", len(enriched),
		"duration", result.Stats.RenderTime)

	return result, nil
}

// List returns the organization's repositories that survive the exclusion
// filter, in listing order, along with the excluded names.
func (r *Runner) List(ctx context.Context, opts Options) (repos []*github.Repo, excluded []string, err error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, nil, fmt.Errorf("invalid options: %w", err)
	}
	repos, excluded, _, err = r.list(ctx, opts)
	return repos, excluded, err
}

func (r *Runner) list(ctx context.Context, opts Options) ([]*github.Repo, []string, int, error) {
	start := time.Now()
	all, err := r.Client.ListOrgRepos(ctx, opts.Org)
	if err != nil {
		return nil, nil, 0, err
	}
	observability.Enrich().OnListComplete(ctx, opts.Org, len(all), time.Since(start))

	kept, excluded := portfolio.Filter(all, opts.Exclude)
	logger := r.logger(opts)
	for _, name := range excluded {
		logger.Debug("excluded repository", "repo", name)
	}
	return kept, excluded, len(all), nil
}

// Enrich enriches repos with bounded concurrency and returns the successes
// sorted by name.
func (r *Runner) Enrich(ctx context.Context, repos []*github.Repo, opts Options) []*github.Repo {
	logger := r.logger(opts)
	enricher := portfolio.NewEnricher(r.Client, r.Store, logger)
	enricher.Refresh = opts.Refresh

	out := portfolio.NewCoordinator(enricher, opts.Concurrency, logger).EnrichAll(ctx, repos)
	portfolio.SortByName(out)
	return out
}

// Render writes the index for repos, which must already be sorted, and the
// JSON snapshot when Options.Snapshot is set.
func (r *Runner) Render(repos []*github.Repo, opts Options) error {
	if opts.Output == "" {
		opts.Output = DefaultOutput
	}
	rd, err := opts.renderer()
	if err != nil {
		return err
	}
	if err := rd.WriteFile(opts.Output, repos); err != nil {
		return err
	}

	if opts.Snapshot != "" {
		now := time.Now
		if opts.Now != nil {
			now = opts.Now
		}
		snap := pkgio.Snapshot{Org: opts.Org, GeneratedAt: now().UTC(), Repos: repos}
		if err := pkgio.ExportJSON(snap, opts.Snapshot); err != nil {
			return fmt.Errorf("snapshot: %w", err)
		}
	}
	return nil
}

// RenderSnapshot re-renders the index from a snapshot file without any
// network access. The snapshot's org is used when opts.Org is empty.
func RenderSnapshot(path string, opts Options) (*pkgio.Snapshot, error) {
	snap, err := pkgio.ImportJSON(path)
	if err != nil {
		return nil, err
	}
	if opts.Org == "" {
		opts.Org = snap.Org
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	opts.Snapshot = ""

	portfolio.SortByName(snap.Repos)
	runner := &Runner{Logger: opts.Logger}
	if err := runner.Render(snap.Repos, opts); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Close releases the contents cache, flushing unsaved entries.
func (r *Runner) Close() error {
	if r.Store != nil {
		return r.Store.Close()
	}
	return nil
}

func (r *Runner) logger(opts Options) *log.Logger {
	if opts.Logger != nil {
		return opts.Logger
	}
	if r.Logger != nil {
		return r.Logger
	}
	return log.Default()
}
