package github

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Repo is one repository record as returned by the organization listing.
//
// Languages and Extras are empty when listed and are set exactly once by the
// enricher; after that the record is read-only.
type Repo struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	FullName    string     `json:"full_name"`
	Description *string    `json:"description"`
	HTMLURL     string     `json:"html_url"`
	Stars       int        `json:"stargazers_count"`
	Topics      []string   `json:"topics"`
	Language    string     `json:"language"` // primary language reported by the listing
	Fork        bool       `json:"fork"`
	Archived    bool       `json:"archived"`
	Private     bool       `json:"private"`
	PushedAt    *time.Time `json:"pushed_at"`

	// Languages holds the declared languages in server order.
	Languages []string `json:"languages,omitempty"`

	// Extras holds the languages detected from name, topics and contents.
	Extras []string `json:"extras,omitempty"`
}

// AllLanguages returns Languages followed by Extras, each tag once, in order
// of first occurrence.
func (r *Repo) AllLanguages() []string {
	seen := make(map[string]struct{}, len(r.Languages)+len(r.Extras))
	out := make([]string, 0, len(r.Languages)+len(r.Extras))
	for _, list := range [][]string{r.Languages, r.Extras} {
		for _, lang := range list {
			if _, ok := seen[lang]; ok {
				continue
			}
			seen[lang] = struct{}{}
			out = append(out, lang)
		}
	}
	return out
}

// DescriptionOr returns the description, or fallback when it is absent or blank.
func (r *Repo) DescriptionOr(fallback string) string {
	if r.Description == nil || *r.Description == "" {
		return fallback
	}
	return *r.Description
}

// LanguageList decodes the languages endpoint (an object of language →
// bytes) into its keys, keeping the order the server sent them in.
type LanguageList []string

// UnmarshalJSON implements json.Unmarshaler.
func (l *LanguageList) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*l = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("languages: expected object, got %v", tok)
	}

	var out []string
	for dec.More() {
		key, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := key.(string)
		if !ok {
			return fmt.Errorf("languages: unexpected key %v", key)
		}
		var bytesOfCode json.RawMessage
		if err := dec.Decode(&bytesOfCode); err != nil {
			return err
		}
		out = append(out, name)
	}
	*l = out
	return nil
}

// contentItem is one entry of the repository root listing.
type contentItem struct {
	Name string `json:"name"`
	Type string `json:"type"`
}
