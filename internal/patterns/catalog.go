package patterns

import (
	"sort"
	"strings"
)

// Catalog is a serializable view of a Registry
type Catalog struct {
	Technologies       []TechnologyEntry   `json:"technologies" yaml:"technologies"`
	Actions            []CategoryEntry     `json:"actions" yaml:"actions"`
	PromptTechnologies []CategoryEntry     `json:"prompt_technologies" yaml:"prompt_technologies"`
	FocusAreas         []CategoryEntry     `json:"focus_areas" yaml:"focus_areas"`
	Constraints        []ConstraintEntry   `json:"constraints" yaml:"constraints"`
	Related            map[string][]string `json:"related" yaml:"related"`
}

// TechnologyEntry lists a technology's file matchers and frameworks
type TechnologyEntry struct {
	Name       string      `json:"name" yaml:"name"`
	Files      []string    `json:"files" yaml:"files"`
	Frameworks []Framework `json:"frameworks" yaml:"frameworks"`
}

// CategoryEntry is a named matcher source
type CategoryEntry struct {
	Name    string `json:"name" yaml:"name"`
	Pattern string `json:"pattern" yaml:"pattern"`
}

// ConstraintEntry is a constraint matcher source
type ConstraintEntry struct {
	Name    string         `json:"name" yaml:"name"`
	Kind    ConstraintKind `json:"kind" yaml:"kind"`
	Pattern string         `json:"pattern" yaml:"pattern"`
}

// Catalog describes the registry in declaration order
func (r *Registry) Catalog() Catalog {
	c := Catalog{Related: make(map[string][]string, len(r.related))}

	for _, t := range r.Technologies() {
		files := t.FilePatterns()
		for i, f := range files {
			files[i] = source(f)
		}
		c.Technologies = append(c.Technologies, TechnologyEntry{Name: t.Name, Files: files, Frameworks: t.Frameworks})
	}
	c.Actions = categoryEntries(r.actions)
	c.PromptTechnologies = categoryEntries(r.promptTechnologies)
	c.FocusAreas = categoryEntries(r.focusAreas)
	for _, con := range r.constraints {
		c.Constraints = append(c.Constraints, ConstraintEntry{Name: con.Name, Kind: con.Kind, Pattern: source(con.Pattern.String())})
	}
	for name := range r.related {
		c.Related[name] = r.Related(name)
	}
	return c
}

// RelatedNames returns the keys of the related-focus table, sorted
func (c Catalog) RelatedNames() []string {
	names := make([]string, 0, len(c.Related))
	for name := range c.Related {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func categoryEntries(cats []Category) []CategoryEntry {
	out := make([]CategoryEntry, len(cats))
	for i, c := range cats {
		out[i] = CategoryEntry{Name: c.Name, Pattern: source(c.Pattern.String())}
	}
	return out
}

// source strips the case-insensitivity flag added by compile
func source(expr string) string {
	return strings.TrimPrefix(expr, "(?i)")
}
