package techstack

import (
	"slices"

	"github.com/saeedalam/stacksignal/pkg/types"
)

// Signals is what recommendation rules look at
type Signals struct {
	Technologies types.Distribution
	Frameworks   map[string]types.Distribution
}

func (s Signals) framework(tech, name string) float64 {
	return s.Frameworks[tech][name]
}

// Rule emits one recommendation when Applies holds
type Rule struct {
	Name    string
	Type    string
	Message string
	Applies func(Signals) bool
}

var rules = []Rule{
	{
		Name:    "python-with-javascript",
		Type:    "stack",
		Message: "Consider using TypeScript for better type safety in your JavaScript code",
		Applies: func(s Signals) bool {
			return s.Technologies.Has("python") && s.Technologies.Has("javascript")
		},
	},
	{
		Name:    "django-heavy",
		Type:    "framework",
		Message: "High Django usage detected. Consider using Django REST framework for APIs",
		Applies: func(s Signals) bool {
			return s.framework("python", "django") > 0.7
		},
	},
	{
		Name:    "react-without-typescript",
		Type:    "framework",
		Message: "React detected without TypeScript. Consider adding TypeScript for better maintainability",
		Applies: func(s Signals) bool {
			return s.framework("javascript", "react") > 0 && !s.Technologies.Has("typescript")
		},
	},
}

// Rules returns the rule list in evaluation order
func Rules() []Rule {
	return slices.Clone(rules)
}

// Recommend evaluates every rule in declaration order. All matching rules emit,
// so independent rules may produce similar advice.
func Recommend(technologies types.Distribution, frameworks map[string]types.Distribution) []types.Recommendation {
	signals := Signals{Technologies: technologies, Frameworks: frameworks}

	recs := []types.Recommendation{}
	for _, rule := range rules {
		if rule.Applies(signals) {
			recs = append(recs, types.Recommendation{Type: rule.Type, Message: rule.Message})
		}
	}
	return recs
}
