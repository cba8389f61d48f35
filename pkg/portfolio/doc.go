// Package portfolio enriches listed repositories with language tags and
// prepares them for rendering.
//
// # Enrichment
//
// [Enricher] fetches a repository's declared languages and its root contents
// at the same time, then applies the detection rules in [Detect] to derive
// extra tags (Dockerfile, Terraform, Ansible, YAML, Kubernetes). Contents
// listings go through a [cache.Store] so a repository is listed over the
// network at most once.
//
// [Coordinator] runs many enrichments at once, bounded by a weighted
// semaphore. A task that fails or panics is logged and left out of the
// result; the batch always completes.
//
// # Selection and order
//
// [Filter] drops excluded repositories before enrichment, and [SortByName]
// orders the enriched records for the index.
package portfolio
