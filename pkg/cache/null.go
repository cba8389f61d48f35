package cache

import "context"

// NullStore is a no-op store that never keeps anything.
// Useful for testing or when caching should be disabled.
type NullStore struct{}

// NewNullStore creates a null store.
func NewNullStore() Store {
	return NullStore{}
}

// Get always returns a miss.
func (NullStore) Get(context.Context, string) ([]string, bool) { return nil, false }

// Put does nothing.
func (NullStore) Put(context.Context, string, []string) {}

// Persist does nothing.
func (NullStore) Persist(context.Context) error { return nil }

// Close does nothing.
func (NullStore) Close() error { return nil }

// Keys always returns no keys.
func (NullStore) Keys(context.Context) ([]string, error) { return nil, nil }

// Clear does nothing.
func (NullStore) Clear(context.Context) error { return nil }

var (
	_ Store     = NullStore{}
	_ Inspector = NullStore{}
)
