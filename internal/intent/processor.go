// Package intent turns free-text requests into a structured PromptIntent.
//
// Processing runs three independent stages over the whole prompt: category
// extraction (action, technologies, focus areas, constraints), context
// extraction (fenced code, file references, URLs) and confidence scoring.
// Only the first stage decides success: a prompt must name an action and at
// least one technology.
package intent

import (
	"fmt"
	"log/slog"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/saeedalam/stacksignal/internal/logging"
	"github.com/saeedalam/stacksignal/internal/patterns"
	"github.com/saeedalam/stacksignal/pkg/types"
)

var (
	codeBlockRe = regexp.MustCompile("(?s)```(\\w+)?\\n(.*?)```")
	fileRefRe   = regexp.MustCompile(`(?i)(?:file|path):\s*([^\s,]+)`)
	urlRe       = regexp.MustCompile(`https?://\S+`)
)

// Weights combine the per-family coverage scores into the overall confidence
type Weights struct {
	Action     float64 `json:"action" yaml:"action"`
	Technology float64 `json:"technology" yaml:"technology"`
	Focus      float64 `json:"focus" yaml:"focus"`
}

// DefaultWeights returns 0.4 action, 0.4 technology, 0.2 focus
func DefaultWeights() Weights {
	return Weights{Action: 0.4, Technology: 0.4, Focus: 0.2}
}

// IsZero reports whether no weight is set
func (w Weights) IsZero() bool {
	return w == Weights{}
}

// Processor extracts intents using a pattern registry
type Processor struct {
	registry *patterns.Registry
	weights  Weights
	logger   *slog.Logger
}

// NewProcessor creates a processor. A nil registry uses patterns.Default() and
// zero weights use DefaultWeights().
func NewProcessor(reg *patterns.Registry, weights Weights, logger *slog.Logger) *Processor {
	if reg == nil {
		reg = patterns.Default()
	}
	if weights.IsZero() {
		weights = DefaultWeights()
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Processor{registry: reg, weights: weights, logger: logger}
}

// Weights returns the effective confidence weights
func (p *Processor) Weights() Weights {
	return p.weights
}

// Process extracts the intent of prompt.
//
// A prompt without an action fails with IntentError before technologies are
// considered. Constraints and context never affect the outcome.
func (p *Processor) Process(prompt string) (result types.Result[*types.PromptIntent]) {
	details := map[string]any{"prompt": prompt}

	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("Failed to process prompt", "panic", r)
			result = types.Fail[*types.PromptIntent](types.ProcessingError, fmt.Sprint(r), details)
		}
	}()

	action := p.extractAction(prompt)
	technologies := matchAll(p.registry.PromptTechnologies(), prompt)
	focusAreas := matchAll(p.registry.FocusAreas(), prompt)
	constraints := p.extractConstraints(prompt)
	quoted := ExtractContext(prompt)

	if action == "" {
		p.logger.Debug("No action in prompt", "length", len(prompt))
		return types.Fail[*types.PromptIntent](types.IntentError, "Could not determine action from prompt", details)
	}
	if len(technologies) == 0 {
		p.logger.Debug("No technology in prompt", "action", action)
		return types.Fail[*types.PromptIntent](types.IntentError, "No technology keywords found in prompt", details)
	}

	intent := &types.PromptIntent{
		Action:       action,
		Technologies: technologies,
		FocusAreas:   focusAreas,
		Constraints:  constraints,
		Context:      quoted,
	}
	scores := p.Confidence(prompt)

	p.logger.Info("Prompt processed",
		"action", action,
		"technologies", strings.Join(technologies, ","),
		"confidence", scores.Overall)

	return types.Success(intent, types.Metadata{
		"original_prompt":   prompt,
		"confidence_scores": scores,
	})
}

// extractAction returns the first action category whose pattern matches
func (p *Processor) extractAction(prompt string) string {
	for _, c := range p.registry.Actions() {
		if c.Pattern.MatchString(prompt) {
			return c.Name
		}
	}
	return ""
}

func matchAll(categories []patterns.Category, prompt string) []string {
	out := []string{}
	for _, c := range categories {
		if c.Pattern.MatchString(prompt) && !slices.Contains(out, c.Name) {
			out = append(out, c.Name)
		}
	}
	return out
}

func countMatches(categories []patterns.Category, prompt string) int {
	n := 0
	for _, c := range categories {
		if c.Pattern.MatchString(prompt) {
			n++
		}
	}
	return n
}

// extractConstraints collects numeric and flag constraints. A numeric value
// that does not fit an int is dropped.
func (p *Processor) extractConstraints(prompt string) types.Constraints {
	out := types.Constraints{}
	for _, c := range p.registry.Constraints() {
		switch c.Kind {
		case patterns.Numeric:
			m := c.Pattern.FindStringSubmatch(prompt)
			if m == nil {
				continue
			}
			n, err := strconv.Atoi(m[1])
			if err != nil {
				p.logger.Debug("Ignoring constraint value", "constraint", c.Name, "value", m[1], "error", err)
				continue
			}
			out[c.Name] = n
		case patterns.Flag:
			if c.Pattern.MatchString(prompt) {
				out[c.Name] = true
			}
		}
	}
	return out
}

// ExtractContext collects fenced code blocks, file:/path: references and URLs
// in order of appearance
func ExtractContext(prompt string) types.IntentContext {
	var ctx types.IntentContext

	for _, m := range codeBlockRe.FindAllStringSubmatch(prompt, -1) {
		lang := m[1]
		if lang == "" {
			lang = "text"
		}
		ctx.CodeSnippets = append(ctx.CodeSnippets, types.CodeSnippet{
			Language: lang,
			Code:     strings.TrimSpace(m[2]),
		})
	}
	for _, m := range fileRefRe.FindAllStringSubmatch(prompt, -1) {
		ctx.Files = append(ctx.Files, m[1])
	}
	ctx.URLs = urlRe.FindAllString(prompt, -1)

	return ctx
}

// Confidence scores how many patterns of each family the prompt triggers
func (p *Processor) Confidence(prompt string) types.ConfidenceScores {
	actions := p.registry.Actions()
	techs := p.registry.PromptTechnologies()
	focus := p.registry.FocusAreas()

	s := types.ConfidenceScores{
		Action:       types.Coverage(countMatches(actions, prompt), len(actions)),
		Technologies: types.Coverage(countMatches(techs, prompt), len(techs)),
		FocusAreas:   types.Coverage(countMatches(focus, prompt), len(focus)),
	}
	s.Overall = p.weights.Action*s.Action + p.weights.Technology*s.Technologies + p.weights.Focus*s.FocusAreas
	return s
}

// RequiresExtension reports whether the intent asks for name, either directly
// or through one of its related focus areas
func RequiresExtension(reg *patterns.Registry, intent *types.PromptIntent, name string) bool {
	if intent == nil {
		return false
	}
	if reg == nil {
		reg = patterns.Default()
	}
	if slices.Contains(intent.FocusAreas, name) {
		return true
	}
	for _, related := range reg.Related(name) {
		if slices.Contains(intent.FocusAreas, related) {
			return true
		}
	}
	return false
}
