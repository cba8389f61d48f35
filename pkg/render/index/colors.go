package index

// DefaultColor is the badge color for languages missing from the table.
const DefaultColor = "#6e7681"

// defaultColors follows GitHub's linguist palette for the common languages
// plus the detected tags.
var defaultColors = map[string]string{
	"Python":     "#3572A5",
	"JavaScript": "#f1e05a",
	"TypeScript": "#3178c6",
	"Java":       "#b07219",
	"Go":         "#00ADD8",
	"C":          "#555555",
	"C++":        "#f34b7d",
	"C#":         "#178600",
	"Ruby":       "#701516",
	"PHP":        "#4F5D95",
	"Rust":       "#dea584",
	"Swift":      "#F05138",
	"Kotlin":     "#A97BFF",
	"Shell":      "#89e051",
	"HTML":       "#e34c26",
	"CSS":        "#563d7c",
	"HCL":        "#844FBA",
	"Dockerfile": "#0db7ed",
	"Terraform":  "#844FBA",
	"Ansible":    "#EE0000",
	"YAML":       "#cb171e",
	"Kubernetes": "#326CE5",
}

// Palette maps language names to badge colors.
type Palette map[string]string

// NewPalette returns the default table with overrides applied on top.
func NewPalette(overrides map[string]string) Palette {
	p := make(Palette, len(defaultColors)+len(overrides))
	for k, v := range defaultColors {
		p[k] = v
	}
	for k, v := range overrides {
		if v != "" {
			p[k] = v
		}
	}
	return p
}

// Color returns the badge color for lang.
func (p Palette) Color(lang string) string {
	if c, ok := p[lang]; ok {
		return c
	}
	return DefaultColor
}
