// Package index renders the portfolio page: one HTML document with a header,
// client-side search and a card per repository.
//
// The page is stitched from five fragments (style, search, header, and the
// document start and end). Built-in copies are embedded; [LoadTemplates]
// replaces any fragment found in a directory. Fragments use {PLACEHOLDER}
// markers that [Substitute] fills in a single pass, so substituted values
// are never rescanned.
//
// Repository text is HTML-escaped. Language badges take their color from a
// [Palette]; unknown languages fall back to [DefaultColor].
package index
