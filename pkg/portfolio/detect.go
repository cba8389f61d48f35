package portfolio

import (
	"slices"
	"strings"
)

// rule tags a repository with lang when any of its signals matches.
type rule struct {
	lang     string
	nameHas  []string // substrings of the lowercase repository name
	topics   []string // exact lowercase topics
	entries  []string // exact lowercase root entries
	suffixes []string // root entry suffixes
}

// rules are evaluated in order; Detect reports tags in this order.
var rules = []rule{
	{
		lang:    "Dockerfile",
		nameHas: []string{"docker", "container"},
		topics:  []string{"docker"},
		entries: []string{"dockerfile", "docker-compose.yml", "docker-compose.yaml", "compose.yaml"},
	},
	{
		lang:     "Terraform",
		nameHas:  []string{"terraform", "tf", "iac"},
		topics:   []string{"terraform"},
		suffixes: []string{".tf"},
	},
	{
		lang:    "Ansible",
		nameHas: []string{"ansible"},
		topics:  []string{"ansible"},
		entries: []string{"ansible.cfg", "playbook.yml", "playbook.yaml"},
	},
	{
		lang:     "YAML",
		nameHas:  []string{"yaml", "yml"},
		topics:   []string{"yaml"},
		suffixes: []string{".yaml", ".yml"},
	},
	{
		lang:    "Kubernetes",
		nameHas: []string{"k8s", "kubernetes"},
		topics:  []string{"kubernetes", "k8s"},
		entries: []string{"helm", "charts", "manifests"},
	},
}

// Detect returns the extra language tags implied by a repository's name,
// topics and lowercase root entries. Each tag appears at most once.
func Detect(name string, topics, entries []string) []string {
	name = strings.ToLower(name)
	lowerTopics := make([]string, len(topics))
	for i, t := range topics {
		lowerTopics[i] = strings.ToLower(t)
	}

	var extras []string
	for _, r := range rules {
		if r.matches(name, lowerTopics, entries) {
			extras = append(extras, r.lang)
		}
	}
	return extras
}

func (r rule) matches(name string, topics, entries []string) bool {
	for _, k := range r.nameHas {
		if strings.Contains(name, k) {
			return true
		}
	}
	for _, t := range r.topics {
		if slices.Contains(topics, t) {
			return true
		}
	}
	for _, e := range entries {
		if slices.Contains(r.entries, e) {
			return true
		}
		for _, suffix := range r.suffixes {
			if strings.HasSuffix(e, suffix) {
				return true
			}
		}
	}
	return false
}
