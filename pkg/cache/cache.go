// Package cache stores the root contents listing of each repository so that
// repeated runs skip the contents request.
//
// # Stores
//
//   - [FileStore]: a single JSON object on disk, {"owner/name": ["a", ...]},
//     loaded once at startup and rewritten atomically after every new entry.
//   - [RedisStore]: one Redis hash shared between machines; writes go
//     straight to Redis so Persist is a no-op.
//   - [NullStore]: never stores anything (--no-cache).
//
// Entries never expire. A refresh overwrites the entry for one repository.
//
// # Failure Policy
//
// The cache is an optimization. Read and write failures are logged and
// reported as misses; they never abort a run.
package cache

import "context"

// Store maps a repository's full name to its lowercase root entry names.
//
// Get never touches the network API. Implementations are safe for
// concurrent use.
type Store interface {
	// Get returns the cached names for repo, and whether an entry exists.
	Get(ctx context.Context, repo string) ([]string, bool)

	// Put records names for repo, replacing any existing entry.
	Put(ctx context.Context, repo string, names []string)

	// Persist flushes the store to its backing medium.
	Persist(ctx context.Context) error

	// Close flushes pending writes and releases resources.
	Close() error
}

// Inspector is implemented by stores that can enumerate and drop entries.
// The cache commands of the CLI use it.
type Inspector interface {
	Keys(ctx context.Context) ([]string, error)
	Clear(ctx context.Context) error
}

func clone(names []string) []string {
	if names == nil {
		return []string{}
	}
	out := make([]string, len(names))
	copy(out, names)
	return out
}
