package index

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"strconv"
	"time"

	"github.com/markm-portfolio/repoindex/pkg/integrations/github"
	pkgio "github.com/markm-portfolio/repoindex/pkg/io"
)

// NoDescription is shown on cards for repositories without a description.
const NoDescription = "No description provided."

// TimeLayout formats {GENERATED_AT}.
const TimeLayout = "2006-01-02 15:04 MST"

type Option func(*Renderer)

func WithTemplates(t Templates) Option      { return func(r *Renderer) { r.templates = t } }
func WithPalette(p Palette) Option          { return func(r *Renderer) { r.palette = p } }
func WithCVFile(name string) Option         { return func(r *Renderer) { r.cvFile = name } }
func WithClock(now func() time.Time) Option { return func(r *Renderer) { r.now = now } }

// Renderer builds the static index page for one organization.
type Renderer struct {
	org       string
	cvFile    string
	templates Templates
	palette   Palette
	now       func() time.Time
}

// New creates a Renderer with the built-in templates and default palette.
func New(org string, opts ...Option) *Renderer {
	r := &Renderer{
		org:       org,
		templates: DefaultTemplates(),
		palette:   NewPalette(nil),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render writes the page for repos, one card per record in the given order.
func (r *Renderer) Render(w io.Writer, repos []*github.Repo) error {
	values := map[Placeholder]string{
		OrgName:     html.EscapeString(r.org),
		CVFile:      html.EscapeString(r.cvFile),
		GeneratedAt: r.now().UTC().Format(TimeLayout),
		RepoCount:   strconv.Itoa(len(repos)),
	}

	values[SearchComponent] = Substitute(r.templates.Search, values)
	values[StyleHTML] = Substitute(r.templates.Style, values)
	values[HeaderHTML] = Substitute(r.templates.Header, values)

	var buf bytes.Buffer
	buf.WriteString(Substitute(r.templates.BaseStart, values))
	for _, repo := range repos {
		r.writeCard(&buf, repo)
	}
	buf.WriteString(Substitute(r.templates.BaseEnd, values))

	_, err := w.Write(buf.Bytes())
	return err
}

// WriteFile renders repos and atomically replaces the file at path.
func (r *Renderer) WriteFile(path string, repos []*github.Repo) error {
	var buf bytes.Buffer
	if err := r.Render(&buf, repos); err != nil {
		return err
	}
	if err := pkgio.WriteFileAtomic(path, buf.Bytes()); err != nil {
		return fmt.Errorf("write index: %w", err)
	}
	return nil
}

func (r *Renderer) writeCard(buf *bytes.Buffer, repo *github.Repo) {
	esc := html.EscapeString

	buf.WriteString("<div class='card'>\n")
	fmt.Fprintf(buf, "<a href='%s' target='_blank'>%s</a>\n", esc(repo.HTMLURL), esc(repo.Name))
	fmt.Fprintf(buf, "<p class='desc'>%s</p>\n", esc(repo.DescriptionOr(NoDescription)))
	fmt.Fprintf(buf, "<p class='stars'>⭐ %d stars</p>\n", repo.Stars)

	if len(repo.Topics) > 0 {
		buf.WriteString("<div class='topics'>\n")
		for _, t := range repo.Topics {
			fmt.Fprintf(buf, "<span class='topic'>%s</span>\n", esc(t))
		}
		buf.WriteString("</div>\n")
	}

	if langs := repo.AllLanguages(); len(langs) > 0 {
		buf.WriteString("<div class='languages'>\n")
		for _, l := range langs {
			fmt.Fprintf(buf, "<span class='lang' style='background:%s'>%s</span>\n", esc(r.palette.Color(l)), esc(l))
		}
		buf.WriteString("</div>\n")
	}

	buf.WriteString("</div>\n")
}
