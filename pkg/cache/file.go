package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/charmbracelet/log"

	pkgio "github.com/markm-portfolio/repoindex/pkg/io"
	"github.com/markm-portfolio/repoindex/pkg/observability"
)

// FileStore keeps the whole mapping in memory and mirrors it to one JSON file.
//
// The file is read once by [OpenFileStore]. Every Persist rewrites the full
// mapping to a temporary file in the same directory and renames it over the
// target, so an interrupted write leaves the previous file intact.
type FileStore struct {
	mu      sync.RWMutex
	entries map[string][]string
	dirty   bool
	closed  bool

	writeMu sync.Mutex // serializes file writes
	path    string
	logger  *log.Logger
}

// OpenFileStore loads path into a new FileStore. A missing file yields an
// empty store. An unreadable or corrupt file is logged, moved aside to
// path+".corrupt", and the store starts empty.
func OpenFileStore(path string, logger *log.Logger) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("cache file path is required")
	}
	if logger == nil {
		logger = log.Default()
	}
	s := &FileStore{
		entries: make(map[string][]string),
		path:    path,
		logger:  logger,
	}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		return s, nil
	case err != nil:
		logger.Warn("cannot read contents cache, starting empty", "path", path, "err", err)
		return s, nil
	}

	if len(data) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(data, &s.entries); err != nil {
		logger.Warn("contents cache is corrupt, starting empty", "path", path, "err", err)
		s.entries = make(map[string][]string)
		if err := os.Rename(path, path+".corrupt"); err != nil {
			logger.Debug("could not move corrupt cache aside", "err", err)
		}
	}
	return s, nil
}

// Path returns the backing file path.
func (s *FileStore) Path() string { return s.path }

// Len returns the number of cached repositories.
func (s *FileStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Get returns a copy of the cached names for repo.
func (s *FileStore) Get(ctx context.Context, repo string) ([]string, bool) {
	s.mu.RLock()
	names, ok := s.entries[repo]
	s.mu.RUnlock()

	if !ok {
		observability.Cache().OnCacheMiss(ctx, repo)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, repo)
	return clone(names), true
}

// Put records names for repo in memory. Call Persist to write it out.
func (s *FileStore) Put(ctx context.Context, repo string, names []string) {
	s.mu.Lock()
	s.entries[repo] = clone(names)
	s.dirty = true
	s.mu.Unlock()
	observability.Cache().OnCacheSet(ctx, repo, len(names))
}

// Persist writes the whole mapping to disk atomically.
func (s *FileStore) Persist(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	data, err := json.Marshal(s.entries)
	s.dirty = false
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("encode contents cache: %w", err)
	}

	if err := pkgio.WriteFileAtomic(s.path, data); err != nil {
		s.mu.Lock()
		s.dirty = true
		s.mu.Unlock()
		return fmt.Errorf("write contents cache: %w", err)
	}
	return nil
}

// Keys returns the cached repository names in sorted order.
func (s *FileStore) Keys(context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Clear drops every entry and removes the backing file.
func (s *FileStore) Clear(context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	s.entries = make(map[string][]string)
	s.dirty = false
	s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Close persists unsaved entries. Further Persist calls return ErrClosed.
func (s *FileStore) Close() error {
	s.mu.RLock()
	dirty, closed := s.dirty, s.closed
	s.mu.RUnlock()
	if closed {
		return nil
	}

	var err error
	if dirty {
		err = s.Persist(context.Background())
	}

	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return err
}

var (
	_ Store     = (*FileStore)(nil)
	_ Inspector = (*FileStore)(nil)
)
