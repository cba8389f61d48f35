package portfolio

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"

	"github.com/markm-portfolio/repoindex/pkg/cache"
	"github.com/markm-portfolio/repoindex/pkg/integrations/github"
)

func quiet() *log.Logger { return log.New(io.Discard) }

// fakeSource serves canned languages and contents and counts calls per repo.
type fakeSource struct {
	mu        sync.Mutex
	languages map[string][]string
	contents  map[string][]string
	langErr   error
	contErr   error
	explode   map[string]bool // full names whose Languages call panics

	langCalls     map[string]int
	contentsCalls map[string]int
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		languages:     map[string][]string{},
		contents:      map[string][]string{},
		explode:       map[string]bool{},
		langCalls:     map[string]int{},
		contentsCalls: map[string]int{},
	}
}

func (f *fakeSource) Languages(_ context.Context, fullName string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.langCalls[fullName]++
	if f.explode[fullName] {
		panic("languages: " + fullName)
	}
	if f.langErr != nil {
		return nil, f.langErr
	}
	return f.languages[fullName], nil
}

func (f *fakeSource) Contents(_ context.Context, fullName string) ([]string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.contentsCalls[fullName]++
	if f.contErr != nil {
		return nil, false, f.contErr
	}
	names, ok := f.contents[fullName]
	return names, ok, nil
}

func (f *fakeSource) contentsCount(repo string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.contentsCalls[repo]
}

func openStore(t *testing.T) *cache.FileStore {
	t.Helper()
	s, err := cache.OpenFileStore(filepath.Join(t.TempDir(), "contents.json"), quiet())
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestEnrichSetsLanguages(t *testing.T) {
	src := newFakeSource()
	src.languages["org/infra"] = []string{"HCL", "Shell"}
	src.contents["org/infra"] = []string{"main.tf", "dockerfile"}

	e := NewEnricher(src, openStore(t), quiet())
	repo := &github.Repo{Name: "infra", FullName: "org/infra"}
	got, err := e.Enrich(context.Background(), repo)
	if err != nil {
		t.Fatalf("Enrich() error: %v", err)
	}
	if got != repo {
		t.Error("Enrich() should return the record it was given")
	}
	if diff := cmp.Diff([]string{"HCL", "Shell"}, got.Languages); diff != "" {
		t.Errorf("Languages mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Dockerfile", "Terraform"}, got.Extras); diff != "" {
		t.Errorf("Extras mismatch (-want +got):\n%s", diff)
	}
	want := []string{"HCL", "Shell", "Dockerfile", "Terraform"}
	if diff := cmp.Diff(want, got.AllLanguages()); diff != "" {
		t.Errorf("AllLanguages mismatch (-want +got):\n%s", diff)
	}
}

func TestEnrichFetchesContentsOnce(t *testing.T) {
	ctx := context.Background()
	src := newFakeSource()
	src.contents["org/a"] = []string{"readme.md"}
	store := openStore(t)
	e := NewEnricher(src, store, quiet())

	if _, ok := store.Get(ctx, "org/a"); ok {
		t.Fatal("store should start empty")
	}
	for i := 0; i < 2; i++ {
		if _, err := e.Enrich(ctx, &github.Repo{Name: "a", FullName: "org/a"}); err != nil {
			t.Fatal(err)
		}
	}
	if n := src.contentsCount("org/a"); n != 1 {
		t.Errorf("contents fetched %d times, want 1", n)
	}

	reopened, err := cache.OpenFileStore(store.Path(), quiet())
	if err != nil {
		t.Fatal(err)
	}
	if names, ok := reopened.Get(ctx, "org/a"); !ok || names[0] != "readme.md" {
		t.Errorf("entry not persisted after miss: %v, %v", names, ok)
	}
}

func TestEnrichRefreshBypassesCacheRead(t *testing.T) {
	ctx := context.Background()
	src := newFakeSource()
	src.contents["org/a"] = []string{"new.tf"}
	store := openStore(t)
	store.Put(ctx, "org/a", []string{"old.txt"})

	e := NewEnricher(src, store, quiet())
	e.Refresh = true
	got, err := e.Enrich(ctx, &github.Repo{Name: "a", FullName: "org/a"})
	if err != nil {
		t.Fatal(err)
	}
	if src.contentsCount("org/a") != 1 {
		t.Error("Refresh should fetch contents")
	}
	if diff := cmp.Diff([]string{"Terraform"}, got.Extras); diff != "" {
		t.Errorf("Extras mismatch (-want +got):\n%s", diff)
	}
	if names, _ := store.Get(ctx, "org/a"); names[0] != "new.tf" {
		t.Errorf("Refresh should overwrite the cache entry, got %v", names)
	}
}

func TestEnrichNoDataDefaultsEmpty(t *testing.T) {
	ctx := context.Background()
	src := newFakeSource() // no languages, contents not found
	store := openStore(t)
	e := NewEnricher(src, store, quiet())

	got, err := e.Enrich(ctx, &github.Repo{Name: "empty", FullName: "org/empty"})
	if err != nil {
		t.Fatalf("Enrich() error: %v", err)
	}
	if got.Languages == nil || len(got.Languages) != 0 {
		t.Errorf("Languages = %#v, want empty non-nil", got.Languages)
	}
	if len(got.Extras) != 0 {
		t.Errorf("Extras = %v, want none", got.Extras)
	}
	if store.Len() != 0 {
		t.Error("a listing with no data should not be cached")
	}
}

func TestEnrichFetchErrorsDefaultEmpty(t *testing.T) {
	src := newFakeSource()
	src.langErr = errors.New("boom")
	src.contErr = errors.New("boom")
	e := NewEnricher(src, nil, quiet())

	got, err := e.Enrich(context.Background(), &github.Repo{Name: "docker-lab", FullName: "org/docker-lab"})
	if err != nil {
		t.Fatalf("Enrich() error: %v", err)
	}
	if diff := cmp.Diff([]string{"Dockerfile"}, got.Extras); diff != "" {
		t.Errorf("name rules should still apply (-want +got):\n%s", diff)
	}
}

func TestEnrichCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := newFakeSource()
	src.langErr = context.Canceled
	e := NewEnricher(src, nil, quiet())
	if _, err := e.Enrich(ctx, &github.Repo{Name: "a", FullName: "org/a"}); !errors.Is(err, context.Canceled) {
		t.Errorf("Enrich() error = %v, want context.Canceled", err)
	}
}

func TestEnrichRejectsRecordWithoutFullName(t *testing.T) {
	e := NewEnricher(newFakeSource(), nil, quiet())
	if _, err := e.Enrich(context.Background(), &github.Repo{Name: "a"}); err == nil {
		t.Error("Enrich() should reject a record without a full name")
	}
}

// failingStore accepts entries but cannot persist them.
type failingStore struct {
	cache.Store
	persists int
}

func (s *failingStore) Persist(context.Context) error {
	s.persists++
	return errors.New("disk full")
}

func TestEnrichPersistFailureIsNotFatal(t *testing.T) {
	src := newFakeSource()
	src.contents["org/a"] = []string{"readme.md"}
	store := &failingStore{Store: cache.NewNullStore()}
	e := NewEnricher(src, store, quiet())

	if _, err := e.Enrich(context.Background(), &github.Repo{Name: "a", FullName: "org/a"}); err != nil {
		t.Fatalf("Enrich() error: %v", err)
	}
	if store.persists != 1 {
		t.Errorf("Persist called %d times, want 1", store.persists)
	}
}

// explodingStore panics on every lookup.
type explodingStore struct {
	cache.Store
}

func (explodingStore) Get(context.Context, string) ([]string, bool) {
	panic("corrupt cache entry")
}

func TestEnrichReturnsPanicAsError(t *testing.T) {
	tests := []struct {
		name  string
		src   func() *fakeSource
		store cache.Store
	}{
		{
			name: "source",
			src: func() *fakeSource {
				src := newFakeSource()
				src.explode["org/a"] = true
				return src
			},
		},
		{
			name:  "store",
			src:   newFakeSource,
			store: explodingStore{Store: cache.NewNullStore()},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEnricher(tt.src(), tt.store, quiet())
			_, err := e.Enrich(context.Background(), &github.Repo{Name: "a", FullName: "org/a"})
			if err == nil || !strings.Contains(err.Error(), "panic") {
				t.Errorf("Enrich() error = %v, want a recovered panic", err)
			}
		})
	}
}
