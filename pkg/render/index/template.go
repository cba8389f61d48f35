package index

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Placeholder is a {TOKEN} recognized in template fragments.
type Placeholder string

// Recognized placeholders. Any other {...} text passes through unchanged.
const (
	OrgName         Placeholder = "{ORG_NAME}"
	CVFile          Placeholder = "{CV_FILE}"
	SearchComponent Placeholder = "{SEARCH_COMPONENT}"
	StyleHTML       Placeholder = "{STYLE_HTML}"
	HeaderHTML      Placeholder = "{HEADER_HTML}"
	GeneratedAt     Placeholder = "{GENERATED_AT}"
	RepoCount       Placeholder = "{REPO_COUNT}"
)

var placeholders = []Placeholder{OrgName, CVFile, SearchComponent, StyleHTML, HeaderHTML, GeneratedAt, RepoCount}

// Template fragment file names.
const (
	StyleFile     = "style.html"
	SearchFile    = "search.html"
	HeaderFile    = "header.html"
	BaseStartFile = "base_start.html"
	BaseEndFile   = "base_end.html"
)

// TemplateFiles lists every fragment a template directory may provide.
var TemplateFiles = []string{StyleFile, SearchFile, HeaderFile, BaseStartFile, BaseEndFile}

//go:embed templates/*.html
var embedded embed.FS

// Templates holds the raw page fragments.
type Templates struct {
	Style, Search, Header, BaseStart, BaseEnd string
}

// DefaultTemplates returns the built-in fragments.
func DefaultTemplates() Templates {
	t, err := loadTemplates(embedded, "templates", nil)
	if err != nil {
		panic(fmt.Sprintf("embedded templates: %v", err))
	}
	return t
}

// LoadTemplates reads fragments from dir. A fragment missing from dir falls
// back to the built-in one; an unreadable fragment is an error.
func LoadTemplates(dir string) (Templates, error) {
	if dir == "" {
		return DefaultTemplates(), nil
	}
	info, err := os.Stat(dir)
	if err != nil {
		return Templates{}, fmt.Errorf("template directory: %w", err)
	}
	if !info.IsDir() {
		return Templates{}, fmt.Errorf("template directory: %s is not a directory", dir)
	}
	fallback := DefaultTemplates()
	return loadTemplates(os.DirFS(dir), ".", &fallback)
}

func loadTemplates(fsys fs.FS, root string, fallback *Templates) (Templates, error) {
	var t Templates
	targets := map[string]*string{
		StyleFile:     &t.Style,
		SearchFile:    &t.Search,
		HeaderFile:    &t.Header,
		BaseStartFile: &t.BaseStart,
		BaseEndFile:   &t.BaseEnd,
	}
	var defaults map[string]string
	if fallback != nil {
		defaults = fallback.byName()
	}

	for name, dst := range targets {
		data, err := fs.ReadFile(fsys, filepath.ToSlash(filepath.Join(root, name)))
		switch {
		case err == nil:
			*dst = string(data)
		case errors.Is(err, fs.ErrNotExist) && fallback != nil:
			*dst = defaults[name]
		default:
			return Templates{}, fmt.Errorf("read %s: %w", name, err)
		}
	}
	return t, nil
}

func (t Templates) byName() map[string]string {
	return map[string]string{
		StyleFile:     t.Style,
		SearchFile:    t.Search,
		HeaderFile:    t.Header,
		BaseStartFile: t.BaseStart,
		BaseEndFile:   t.BaseEnd,
	}
}

// Substitute replaces recognized placeholders in tmpl with their values.
// Placeholders without a value and unrecognized tokens are left as they are.
// Replacement is a single pass: values are never rescanned.
func Substitute(tmpl string, values map[Placeholder]string) string {
	pairs := make([]string, 0, 2*len(values))
	for _, p := range placeholders {
		if v, ok := values[p]; ok {
			pairs = append(pairs, string(p), v)
		}
	}
	if len(pairs) == 0 {
		return tmpl
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}
