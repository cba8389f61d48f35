// Package pkg holds the libraries behind repoindex, which turns one GitHub
// organization into a static portfolio page.
//
// # Overview
//
// The pkg directory is organized by concern:
//
//  1. [integrations] - Shared HTTP client and the GitHub REST client
//  2. [httputil] - Retry and rate-limit policy used by every request
//  3. [cache] - Contents cache backends (JSON file, Redis, none)
//  4. [portfolio] - Per-repository enrichment, bounded concurrency, filtering
//  5. [render/index] - HTML index rendering from embedded fragments
//  6. [pipeline] - Orchestration (list → enrich → render)
//
// Supporting packages: [config] (TOML settings and token lookup), [errors]
// (coded errors and exit codes), [io] (atomic writes and JSON snapshots),
// [observability] (hook registry and run statistics), [buildinfo].
//
// # Data Flow
//
//	GitHub /orgs/{org}/repos (paged)
//	         ↓
//	    [portfolio.Filter] (exclusion list)
//	         ↓
//	    [portfolio.Coordinator] → [portfolio.Enricher] per repository
//	         │   languages ─┐
//	         │   contents  ─┴→ [cache.Store] → [portfolio.Detect]
//	         ↓
//	    [portfolio.SortByName]
//	         ↓
//	    [render/index.Renderer] → site/index.html
//
// # Quick Start
//
//	client := github.NewClient(github.Config{Token: token})
//	store, _ := cache.OpenFileStore(".contents_cache.json", logger)
//
//	runner := pipeline.NewRunner(client, store, logger)
//	defer runner.Close()
//
//	result, err := runner.Execute(ctx, pipeline.Options{Org: "MarkM-Portfolio"})
package pkg
