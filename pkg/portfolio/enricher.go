package portfolio

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/markm-portfolio/repoindex/pkg/cache"
	"github.com/markm-portfolio/repoindex/pkg/integrations/github"
)

// Source reads the per-repository resources used for enrichment.
// *github.Client satisfies it.
type Source interface {
	Languages(ctx context.Context, fullName string) ([]string, error)
	Contents(ctx context.Context, fullName string) (names []string, found bool, err error)
}

// Enricher attaches declared and detected languages to one repository.
type Enricher struct {
	Source  Source
	Store   cache.Store // nil disables caching
	Refresh bool        // skip cache reads; fetched listings are still stored
	Logger  *log.Logger
}

// NewEnricher creates an Enricher. A nil store behaves like [cache.NullStore].
func NewEnricher(src Source, store cache.Store, logger *log.Logger) *Enricher {
	if store == nil {
		store = cache.NewNullStore()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Enricher{Source: src, Store: store, Logger: logger}
}

// Enrich fetches languages and contents concurrently, then sets
// repo.Languages and repo.Extras. Missing data yields empty lists rather
// than an error; only cancellation, an invalid record and a panic in the
// source or store are returned.
func (e *Enricher) Enrich(ctx context.Context, repo *github.Repo) (*github.Repo, error) {
	if repo == nil || repo.FullName == "" {
		return nil, errors.New("repository record has no full name")
	}

	var langs, entries []string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(recovered(func() (err error) {
		langs, err = e.languages(gctx, repo.FullName)
		return err
	}))
	g.Go(recovered(func() (err error) {
		entries, err = e.contents(gctx, repo.FullName)
		return err
	}))
	if err := g.Wait(); err != nil {
		return nil, err
	}

	repo.Languages = langs
	repo.Extras = Detect(repo.Name, repo.Topics, entries)
	e.logger().Debug("enriched", "repo", repo.FullName, "languages", repo.Languages, "extras", repo.Extras)
	return repo, nil
}

// recovered turns a panic in fn into an error. errgroup does not recover
// panics, so without it one repository could take down the process.
func recovered(fn func() error) func() error {
	return func() (err error) {
		defer func() {
			if p := recover(); p != nil {
				err = fmt.Errorf("panic: %v", p)
			}
		}()
		return fn()
	}
}

func (e *Enricher) languages(ctx context.Context, fullName string) ([]string, error) {
	langs, err := e.Source.Languages(ctx, fullName)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		e.logger().Warn("languages unavailable", "repo", fullName, "err", err)
		return []string{}, nil
	}
	if langs == nil {
		langs = []string{}
	}
	return langs, nil
}

func (e *Enricher) contents(ctx context.Context, fullName string) ([]string, error) {
	store := e.store()
	if !e.Refresh {
		if names, ok := store.Get(ctx, fullName); ok {
			return names, nil
		}
	}

	names, found, err := e.Source.Contents(ctx, fullName)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		e.logger().Warn("contents unavailable", "repo", fullName, "err", err)
		return []string{}, nil
	}
	if !found {
		return []string{}, nil
	}

	store.Put(ctx, fullName, names)
	if err := store.Persist(ctx); err != nil {
		e.logger().Warn("could not persist contents cache", "repo", fullName, "err", err)
	}
	return names, nil
}

func (e *Enricher) store() cache.Store {
	if e.Store == nil {
		return cache.NewNullStore()
	}
	return e.Store
}

func (e *Enricher) logger() *log.Logger {
	if e.Logger == nil {
		return log.Default()
	}
	return e.Logger
}
