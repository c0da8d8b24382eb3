package types

import (
	"math"
	"sort"
)

// =============================================================================
// SIGNAL TYPES
// =============================================================================

// Distribution maps a category to its normalized weight in [0,1].
// Non-empty distributions sum to 1.0; an empty one means "no evidence".
type Distribution map[string]float64

// Entry is one category/score pair of a distribution
type Entry struct {
	Name  string  `json:"name" yaml:"name"`
	Score float64 `json:"score" yaml:"score"`
}

// Normalize turns raw counts into a distribution. A zero total yields an empty map.
func Normalize(counts map[string]int, total int) Distribution {
	dist := make(Distribution, len(counts))
	if total <= 0 {
		return dist
	}
	for name, count := range counts {
		if count > 0 {
			dist[name] = float64(count) / float64(total)
		}
	}
	return dist
}

// Has reports whether the category is present with a nonzero score
func (d Distribution) Has(name string) bool {
	return d[name] > 0
}

// Sum adds all scores
func (d Distribution) Sum() float64 {
	sum := 0.0
	for _, v := range d {
		sum += v
	}
	return sum
}

// Sorted returns entries by descending score, ties broken by name.
func (d Distribution) Sorted() []Entry {
	entries := make([]Entry, 0, len(d))
	for name, score := range d {
		entries = append(entries, Entry{Name: name, Score: score})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].Name < entries[j].Name
	})
	return entries
}

// Leading returns the top entry, if any
func (d Distribution) Leading() (Entry, bool) {
	sorted := d.Sorted()
	if len(sorted) == 0 {
		return Entry{}, false
	}
	return sorted[0], true
}

// Recommendation is an advisory derived from detected signals
type Recommendation struct {
	Type    string `json:"type" yaml:"type"` // stack, framework
	Message string `json:"message" yaml:"message"`
}

// SkippedFile records a file the framework scan could not read
type SkippedFile struct {
	Path   string `json:"path" yaml:"path"`
	Reason string `json:"reason" yaml:"reason"`
}

// AnalysisReport is the payload of a repository analysis
type AnalysisReport struct {
	Root            string                  `json:"root" yaml:"root"`
	Technologies    Distribution            `json:"technologies" yaml:"technologies"`
	Frameworks      map[string]Distribution `json:"frameworks" yaml:"frameworks"`
	Recommendations []Recommendation        `json:"recommendations" yaml:"recommendations"`
	FilesAnalyzed   int                     `json:"files_analyzed" yaml:"files_analyzed"`
	Skipped         []SkippedFile           `json:"skipped,omitempty" yaml:"skipped,omitempty"`
}

// =============================================================================
// PROMPT INTENT TYPES
// =============================================================================

// PromptIntent is the structured interpretation of a free-text request
type PromptIntent struct {
	Action       string        `json:"action" yaml:"action"`             // analyze, optimize, create, test
	Technologies []string      `json:"technologies" yaml:"technologies"` // first entry is the primary technology
	FocusAreas   []string      `json:"focus_areas" yaml:"focus_areas"`
	Constraints  Constraints   `json:"constraints" yaml:"constraints"`
	Context      IntentContext `json:"context" yaml:"context"`
}

// PrimaryTechnology returns the first technology in declaration order
func (p *PromptIntent) PrimaryTechnology() string {
	if p == nil || len(p.Technologies) == 0 {
		return ""
	}
	return p.Technologies[0]
}

// Constraints holds integer or boolean constraint values by name
type Constraints map[string]any

// Int returns a numeric constraint
func (c Constraints) Int(name string) (int, bool) {
	v, ok := c[name].(int)
	return v, ok
}

// Flag returns a boolean constraint; absent flags are false
func (c Constraints) Flag(name string) bool {
	v, _ := c[name].(bool)
	return v
}

// IntentContext carries material quoted in the prompt. Empty categories are omitted.
type IntentContext struct {
	CodeSnippets []CodeSnippet `json:"code_snippets,omitempty" yaml:"code_snippets,omitempty"`
	Files        []string      `json:"files,omitempty" yaml:"files,omitempty"`
	URLs         []string      `json:"urls,omitempty" yaml:"urls,omitempty"`
}

// IsEmpty reports whether no context was found
func (c IntentContext) IsEmpty() bool {
	return len(c.CodeSnippets) == 0 && len(c.Files) == 0 && len(c.URLs) == 0
}

// CodeSnippet is a fenced code block from a prompt
type CodeSnippet struct {
	Language string `json:"language" yaml:"language"`
	Code     string `json:"code" yaml:"code"`
}

// ConfidenceScores are pattern-coverage scores for an extracted intent
type ConfidenceScores struct {
	Action       float64 `json:"action" yaml:"action"`
	Technologies float64 `json:"technologies" yaml:"technologies"`
	FocusAreas   float64 `json:"focus_areas" yaml:"focus_areas"`
	Overall      float64 `json:"overall" yaml:"overall"`
}

// Coverage is matched/total capped at 1.0
func Coverage(matched, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Min(1.0, float64(matched)/float64(total))
}
