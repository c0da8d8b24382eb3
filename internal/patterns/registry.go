// Package patterns holds the read-only pattern tables used by the technology
// detectors and the prompt intent extractor.
//
// A Registry is compiled once from plain string data (see Spec) and never
// mutated afterwards; every accessor returns a copy. Default returns the
// process-wide registry built from the compiled-in tables.
package patterns

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/saeedalam/stacksignal/pkg/types"
)

// ConstraintKind distinguishes numeric constraints from boolean flags
type ConstraintKind string

const (
	// Numeric constraints capture one embedded integer.
	Numeric ConstraintKind = "numeric"
	// Flag constraints are set to true when their phrase is present.
	Flag ConstraintKind = "flag"
)

// Framework is a framework identifier with the literal keywords that signal it
type Framework struct {
	Name     string   `json:"name" yaml:"name"`
	Keywords []string `json:"keywords" yaml:"keywords"`
}

// Technology is a compiled technology entry
type Technology struct {
	Name       string
	files      []*regexp.Regexp
	Frameworks []Framework
}

// MatchCount returns how many of the technology's file matchers match the path.
// A path may match several matchers; each one counts.
func (t Technology) MatchCount(path string) int {
	count := 0
	for _, re := range t.files {
		if re.MatchString(path) {
			count++
		}
	}
	return count
}

// Matches reports whether any file matcher matches the path
func (t Technology) Matches(path string) bool {
	for _, re := range t.files {
		if re.MatchString(path) {
			return true
		}
	}
	return false
}

// FilePatterns returns the matcher sources
func (t Technology) FilePatterns() []string {
	out := make([]string, len(t.files))
	for i, re := range t.files {
		out[i] = re.String()
	}
	return out
}

// Category is one (name, matcher) pair of a prompt table
type Category struct {
	Name    string
	Pattern *regexp.Regexp
}

// Constraint is a compiled constraint phrase
type Constraint struct {
	Name    string
	Kind    ConstraintKind
	Pattern *regexp.Regexp
}

// Registry is the compiled, immutable set of pattern tables
type Registry struct {
	technologies       []Technology
	actions            []Category
	promptTechnologies []Category
	focusAreas         []Category
	constraints        []Constraint
	related            map[string][]string
}

// Technologies returns the technology table in declaration order
func (r *Registry) Technologies() []Technology {
	out := make([]Technology, len(r.technologies))
	for i, t := range r.technologies {
		out[i] = cloneTechnology(t)
	}
	return out
}

// Technology looks up a technology by name
func (r *Registry) Technology(name string) (Technology, bool) {
	for _, t := range r.technologies {
		if t.Name == name {
			return cloneTechnology(t), true
		}
	}
	return Technology{}, false
}

// Actions returns the ordered action table. The first matching entry wins.
func (r *Registry) Actions() []Category { return slices.Clone(r.actions) }

// PromptTechnologies returns the ordered prompt technology table
func (r *Registry) PromptTechnologies() []Category { return slices.Clone(r.promptTechnologies) }

// FocusAreas returns the ordered focus-area table
func (r *Registry) FocusAreas() []Category { return slices.Clone(r.focusAreas) }

// Constraints returns numeric and flag constraints in declaration order
func (r *Registry) Constraints() []Constraint { return slices.Clone(r.constraints) }

// Related returns the focus areas that imply the given extension
func (r *Registry) Related(name string) []string {
	return slices.Clone(r.related[name])
}

func cloneTechnology(t Technology) Technology {
	fws := make([]Framework, len(t.Frameworks))
	for i, fw := range t.Frameworks {
		fws[i] = Framework{Name: fw.Name, Keywords: slices.Clone(fw.Keywords)}
	}
	return Technology{Name: t.Name, files: slices.Clone(t.files), Frameworks: fws}
}

// =============================================================================
// CONSTRUCTION
// =============================================================================

// Spec is the uncompiled, plain-data form of a Registry
type Spec struct {
	Technologies       []TechnologySpec
	Actions            []CategorySpec
	PromptTechnologies []CategorySpec
	FocusAreas         []CategorySpec
	Constraints        []ConstraintSpec
	Related            map[string][]string
}

// TechnologySpec describes one technology
type TechnologySpec struct {
	Name       string
	Files      []string // regular expressions, matched case-insensitively
	Frameworks []Framework
}

// CategorySpec is a named phrase pattern
type CategorySpec struct {
	Name    string
	Pattern string
}

// ConstraintSpec is a named constraint phrase
type ConstraintSpec struct {
	Name    string
	Kind    ConstraintKind
	Pattern string
}

// Build compiles a Spec. Malformed input fails with a ValidationError.
func Build(spec Spec) (*Registry, error) {
	r := &Registry{related: make(map[string][]string, len(spec.Related))}

	seen := make(map[string]bool)
	for _, ts := range spec.Technologies {
		if err := checkName("technology", ts.Name, seen); err != nil {
			return nil, err
		}
		if len(ts.Files) == 0 {
			return nil, invalid("technology has no file matchers", map[string]any{"technology": ts.Name})
		}
		tech := Technology{Name: ts.Name}
		for _, expr := range ts.Files {
			re, err := compile(expr)
			if err != nil {
				return nil, invalid(err.Error(), map[string]any{"technology": ts.Name, "pattern": expr})
			}
			tech.files = append(tech.files, re)
		}
		fwSeen := make(map[string]bool)
		for _, fw := range ts.Frameworks {
			if err := checkName("framework", fw.Name, fwSeen); err != nil {
				return nil, err
			}
			if len(fw.Keywords) == 0 || slices.Contains(fw.Keywords, "") {
				return nil, invalid("framework keywords must be non-empty", map[string]any{"technology": ts.Name, "framework": fw.Name})
			}
			tech.Frameworks = append(tech.Frameworks, Framework{Name: fw.Name, Keywords: slices.Clone(fw.Keywords)})
		}
		r.technologies = append(r.technologies, tech)
	}

	var err error
	if r.actions, err = buildCategories("action", spec.Actions); err != nil {
		return nil, err
	}
	if r.promptTechnologies, err = buildCategories("prompt technology", spec.PromptTechnologies); err != nil {
		return nil, err
	}
	if r.focusAreas, err = buildCategories("focus area", spec.FocusAreas); err != nil {
		return nil, err
	}

	seen = make(map[string]bool)
	for _, cs := range spec.Constraints {
		if err := checkName("constraint", cs.Name, seen); err != nil {
			return nil, err
		}
		re, err := compile(cs.Pattern)
		if err != nil {
			return nil, invalid(err.Error(), map[string]any{"constraint": cs.Name, "pattern": cs.Pattern})
		}
		switch cs.Kind {
		case Numeric:
			if re.NumSubexp() != 1 {
				return nil, invalid("numeric constraint needs exactly one capture group", map[string]any{"constraint": cs.Name, "pattern": cs.Pattern})
			}
		case Flag:
		default:
			return nil, invalid(fmt.Sprintf("unknown constraint kind %q", cs.Kind), map[string]any{"constraint": cs.Name})
		}
		r.constraints = append(r.constraints, Constraint{Name: cs.Name, Kind: cs.Kind, Pattern: re})
	}

	for name, rel := range spec.Related {
		r.related[name] = slices.Clone(rel)
	}

	return r, nil
}

// MustBuild is Build for compiled-in tables
func MustBuild(spec Spec) *Registry {
	r, err := Build(spec)
	if err != nil {
		panic(err)
	}
	return r
}

func buildCategories(family string, specs []CategorySpec) ([]Category, error) {
	seen := make(map[string]bool)
	out := make([]Category, 0, len(specs))
	for _, cs := range specs {
		if err := checkName(family, cs.Name, seen); err != nil {
			return nil, err
		}
		re, err := compile(cs.Pattern)
		if err != nil {
			return nil, invalid(err.Error(), map[string]any{family: cs.Name, "pattern": cs.Pattern})
		}
		out = append(out, Category{Name: cs.Name, Pattern: re})
	}
	return out, nil
}

func checkName(family, name string, seen map[string]bool) error {
	if strings.TrimSpace(name) == "" {
		return invalid(family+" name is empty", nil)
	}
	if seen[name] {
		return invalid(fmt.Sprintf("duplicate %s %q", family, name), map[string]any{family: name})
	}
	seen[name] = true
	return nil
}

// compile makes every matcher case-insensitive
func compile(expr string) (*regexp.Regexp, error) {
	if expr == "" {
		return nil, fmt.Errorf("empty pattern")
	}
	return regexp.Compile("(?i)" + expr)
}

func invalid(message string, details map[string]any) error {
	return types.NewError(types.ValidationError, message, details)
}
