package portfolio

import (
	"slices"
	"strings"

	"github.com/markm-portfolio/repoindex/pkg/integrations/github"
)

// Exclusions lists repositories left out of the index. Names match the
// whole lowercase repository name; Substrings match anywhere in it.
type Exclusions struct {
	Names      []string
	Substrings []string
}

// Excludes reports whether the repository name is excluded.
func (x Exclusions) Excludes(name string) bool {
	name = strings.ToLower(name)
	for _, n := range x.Names {
		if strings.ToLower(n) == name {
			return true
		}
	}
	for _, s := range x.Substrings {
		if s != "" && strings.Contains(name, strings.ToLower(s)) {
			return true
		}
	}
	return false
}

// Filter returns the repositories x does not exclude, in their original
// order, and the names of those it dropped.
func Filter(repos []*github.Repo, x Exclusions) (kept []*github.Repo, excluded []string) {
	kept = make([]*github.Repo, 0, len(repos))
	for _, r := range repos {
		if r == nil {
			continue
		}
		if x.Excludes(r.Name) {
			excluded = append(excluded, r.Name)
			continue
		}
		kept = append(kept, r)
	}
	return kept, excluded
}

// SortByName orders repos by name, ignoring case. Equal names keep their
// relative order.
func SortByName(repos []*github.Repo) {
	slices.SortStableFunc(repos, func(a, b *github.Repo) int {
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})
}
