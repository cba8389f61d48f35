// Package io provides JSON import and export for enriched repository records,
// plus the atomic file write used for every artifact the tool produces.
//
// # Overview
//
// A snapshot is the enriched, sorted record list that fed a rendered index.
// It lets an index be re-rendered (for example with new templates) without
// calling the GitHub API again.
//
// # JSON Format
//
// The format has one required top-level array and two informational fields:
//
//	{
//	  "org": "MarkM-Portfolio",
//	  "generated_at": "2025-01-02T15:04:05Z",
//	  "repos": [
//	    {
//	      "name": "alpha",
//	      "full_name": "MarkM-Portfolio/alpha",
//	      "html_url": "https://github.com/MarkM-Portfolio/alpha",
//	      "stargazers_count": 3,
//	      "topics": ["docker"],
//	      "languages": ["Python"],
//	      "extras": ["Dockerfile"]
//	    }
//	  ]
//	}
//
// Record fields use the GitHub listing names so a raw listing page can be
// imported as well; "languages" and "extras" are then simply empty.
//
// # Writing Files
//
// [WriteFileAtomic] writes to a temporary file in the target directory,
// fsyncs it and renames it over the target. Readers never observe a partial
// file, and an interrupted write leaves the previous file in place.
package io
