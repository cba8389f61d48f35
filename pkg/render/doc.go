// Package render groups the output renderers of repoindex.
//
// The [index] subpackage writes the static HTML portfolio page: a header,
// a search box and one card per repository, assembled from embedded
// fragments that a template directory can override.
package render
