// Package pipeline runs the list → enrich → render pipeline for repoindex.
//
// This package wires the GitHub client, the contents cache, the enrichment
// coordinator and the index renderer together so the CLI commands share one
// code path.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. List: page through the organization's repositories and drop excluded ones
//  2. Enrich: attach declared and detected languages, bounded by Concurrency
//  3. Render: sort by name and write the HTML index (and optional JSON snapshot)
//
// Each stage can be run on its own: `repoindex list` stops after stage 1 and
// `repoindex render` runs stage 3 from a saved snapshot.
//
// # Usage
//
//	runner := pipeline.NewRunner(client, store, logger)
//	defer runner.Close()
//
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Org:    "MarkM-Portfolio",
//	    Output: "site/index.html",
//	})
package pipeline

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/markm-portfolio/repoindex/pkg/integrations/github"
	"github.com/markm-portfolio/repoindex/pkg/portfolio"
	"github.com/markm-portfolio/repoindex/pkg/render/index"
)

// DefaultOutput is where the index is written when Options.Output is empty.
const DefaultOutput = "site/index.html"

// Options configures a single pipeline run.
type Options struct {
	Org    string
	CVFile string

	Output   string // index file; DefaultOutput when empty
	Snapshot string // optional JSON snapshot of the rendered records

	// TemplateDir overrides the built-in page fragments when non-empty.
	TemplateDir string
	Colors      map[string]string

	Exclude     portfolio.Exclusions
	Concurrency int  // portfolio.DefaultConcurrency when <= 0
	Refresh     bool // bypass contents cache reads

	Logger *log.Logger
	Now    func() time.Time
}

// ValidateAndSetDefaults checks required fields and fills defaults.
func (o *Options) ValidateAndSetDefaults() error {
	if err := github.ValidateOwner(o.Org); err != nil {
		return err
	}
	if o.Output == "" {
		o.Output = DefaultOutput
	}
	if o.Concurrency <= 0 {
		o.Concurrency = portfolio.DefaultConcurrency
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return nil
}

// renderer builds the index renderer described by o.
func (o *Options) renderer() (*index.Renderer, error) {
	tmpl, err := index.LoadTemplates(o.TemplateDir)
	if err != nil {
		return nil, fmt.Errorf("templates: %w", err)
	}
	now := o.Now
	if now == nil {
		now = time.Now
	}
	return index.New(o.Org,
		index.WithCVFile(o.CVFile),
		index.WithTemplates(tmpl),
		index.WithPalette(index.NewPalette(o.Colors)),
		index.WithClock(now),
	), nil
}

// Result describes a completed run.
type Result struct {
	RunID    string
	Repos    []*github.Repo // enriched, sorted by name
	Excluded []string
	Listed   int
	Dropped  int
	Output   string
	Snapshot string
	Stats    Stats
}

// Stats holds per-stage durations.
type Stats struct {
	ListTime   time.Duration
	EnrichTime time.Duration
	RenderTime time.Duration
}
