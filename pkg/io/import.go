package io

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

// ReadJSON decodes a snapshot from r. A snapshot without a "repos" array is
// rejected. ReadJSON does not close r.
func ReadJSON(r io.Reader) (Snapshot, error) {
	var raw struct {
		Snapshot
		Repos *json.RawMessage `json:"repos"`
	}
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return Snapshot{}, fmt.Errorf("decode: %w", err)
	}
	if raw.Repos == nil {
		return Snapshot{}, errors.New("decode: missing repos array")
	}

	s := raw.Snapshot
	if err := json.Unmarshal(*raw.Repos, &s.Repos); err != nil {
		return Snapshot{}, fmt.Errorf("decode repos: %w", err)
	}
	for i, repo := range s.Repos {
		if repo == nil || repo.Name == "" {
			return Snapshot{}, fmt.Errorf("repos[%d]: missing name", i)
		}
	}
	return s, nil
}

// ImportJSON reads the snapshot file at path.
func ImportJSON(path string) (Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}
