package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/markm-portfolio/repoindex/pkg/integrations/github"
)

// Snapshot is the serialized form of an enriched record list.
type Snapshot struct {
	Org         string         `json:"org,omitempty"`
	GeneratedAt time.Time      `json:"generated_at,omitzero"`
	Repos       []*github.Repo `json:"repos"`
}

// WriteJSON encodes s as indented JSON and writes it to w.
func WriteJSON(s Snapshot, w io.Writer) error {
	if s.Repos == nil {
		s.Repos = []*github.Repo{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes s to a JSON file at path atomically.
func ExportJSON(s Snapshot, path string) error {
	var buf bytes.Buffer
	if err := WriteJSON(s, &buf); err != nil {
		return err
	}
	return WriteFileAtomic(path, buf.Bytes())
}
