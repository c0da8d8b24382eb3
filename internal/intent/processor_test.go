package intent

import (
	"io"
	"log/slog"
	"testing"

	"github.com/saeedalam/stacksignal/internal/patterns"
	"github.com/saeedalam/stacksignal/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupProcessor(t *testing.T) *Processor {
	t.Helper()
	return NewProcessor(nil, Weights{}, nil)
}

func TestProcessSecurityPrompt(t *testing.T) {
	p := setupProcessor(t)
	prompt := "Analyze this Python Django code for security vulnerabilities"

	res := p.Process(prompt)
	require.True(t, res.OK(), "%v", res.Err())

	got := res.Data()
	assert.Equal(t, "analyze", got.Action)
	assert.Equal(t, []string{"python"}, got.Technologies)
	assert.Equal(t, []string{"security"}, got.FocusAreas)
	assert.Empty(t, got.Constraints)
	assert.True(t, got.Context.IsEmpty())
	assert.Equal(t, "python", got.PrimaryTechnology())

	md := res.Metadata()
	assert.Equal(t, prompt, md["original_prompt"])
	scores, ok := md["confidence_scores"].(types.ConfidenceScores)
	require.True(t, ok)
	assert.InDelta(t, 0.25, scores.Action, 1e-9)
	assert.InDelta(t, 0.2, scores.Technologies, 1e-9)
	assert.InDelta(t, 0.25, scores.FocusAreas, 1e-9)
	assert.InDelta(t, 0.23, scores.Overall, 1e-9)
	assert.Greater(t, scores.Overall, 0.0)
	assert.LessOrEqual(t, scores.Overall, 1.0)
}

func TestProcessCategories(t *testing.T) {
	tests := []struct {
		name   string
		prompt string
		action string
		techs  []string
		focus  []string
	}{
		{
			name:   "SetOfTechnologiesInDeclarationOrder",
			prompt: "Create a React app with TypeScript and deploy it on AWS",
			action: "create",
			techs:  []string{"javascript", "typescript", "cloud"},
			focus:  []string{},
		},
		{
			name:   "FirstActionWins",
			prompt: "Check the python tests",
			action: "analyze",
			techs:  []string{"python", "typescript"},
			focus:  []string{"testing"},
		},
		{
			name:   "CaseInsensitive",
			prompt: "OPTIMIZE MY FLASK API FOR SPEED",
			action: "optimize",
			techs:  []string{"python"},
			focus:  []string{"performance"},
		},
		{
			name:   "ShortNames",
			prompt: "Build a small js helper and ts types",
			action: "create",
			techs:  []string{"javascript", "typescript"},
			focus:  []string{},
		},
		{
			name:   "ShortNamesMatchInsideWords",
			prompt: "Fix the json loader",
			action: "optimize",
			techs:  []string{"javascript"},
			focus:  []string{},
		},
		{
			name:   "TestsMentionsTypeScript",
			prompt: "Create tests for the Django app",
			action: "create",
			techs:  []string{"python", "typescript"},
			focus:  []string{"testing"},
		},
		{
			name:   "DuplicatePhrasesCountOnce",
			prompt: "Improve node and nodejs and react code quality with clean style",
			action: "optimize",
			techs:  []string{"javascript"},
			focus:  []string{"quality"},
		},
	}

	p := setupProcessor(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := p.Process(tt.prompt)
			require.True(t, res.OK(), "%v", res.Err())
			assert.Equal(t, tt.action, res.Data().Action)
			assert.Equal(t, tt.techs, res.Data().Technologies)
			assert.Equal(t, tt.focus, res.Data().FocusAreas)
		})
	}
}

func TestProcessFailures(t *testing.T) {
	tests := []struct {
		name    string
		prompt  string
		message string
	}{
		{name: "NoAction", prompt: "Python Django security", message: "Could not determine action from prompt"},
		{name: "NoTechnology", prompt: "Analyze my code please", message: "No technology keywords found in prompt"},
		{name: "ActionCheckedFirst", prompt: "hello there", message: "Could not determine action from prompt"},
		{name: "Empty", prompt: "", message: "Could not determine action from prompt"},
	}

	p := setupProcessor(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := p.Process(tt.prompt)
			require.False(t, res.OK())
			assert.Equal(t, types.IntentError, res.Err().Kind)
			assert.Equal(t, tt.message, res.Err().Message)
			assert.Equal(t, tt.prompt, res.Err().Details["prompt"])
		})
	}
}

func TestProcessConstraints(t *testing.T) {
	p := setupProcessor(t)

	res := p.Process("Optimize python code with maximum complexity of 10, min coverage 80% and timeout 30s in strict mode, verbose")
	require.True(t, res.OK())

	c := res.Data().Constraints
	n, ok := c.Int("max_complexity")
	assert.True(t, ok)
	assert.Equal(t, 10, n)
	n, ok = c.Int("min_coverage")
	assert.True(t, ok)
	assert.Equal(t, 80, n)
	n, ok = c.Int("timeout")
	assert.True(t, ok)
	assert.Equal(t, 30, n)
	assert.True(t, c.Flag("strict_mode"))
	assert.True(t, c.Flag("verbose"))
	assert.False(t, c.Flag("debug"))
	assert.NotContains(t, c, "debug")
}

func TestProcessConstraintOverflowIsDropped(t *testing.T) {
	res := setupProcessor(t).Process("Analyze python with timeout 99999999999999999999999 in debug mode")
	require.True(t, res.OK())

	assert.NotContains(t, res.Data().Constraints, "timeout")
	assert.True(t, res.Data().Constraints.Flag("debug"))
}

func TestProcessConstraintsNeverFail(t *testing.T) {
	res := setupProcessor(t).Process("max complexity 5 verbose")
	require.False(t, res.OK())
	assert.Equal(t, types.IntentError, res.Err().Kind)
}

func TestExtractContext(t *testing.T) {
	t.Run("FencedBlock", func(t *testing.T) {
		ctx := ExtractContext("Analyze this python code:\n```python\nprint(1)\n```")
		require.Len(t, ctx.CodeSnippets, 1)
		assert.Equal(t, types.CodeSnippet{Language: "python", Code: "print(1)"}, ctx.CodeSnippets[0])
		assert.Nil(t, ctx.Files)
		assert.Nil(t, ctx.URLs)
	})

	t.Run("DefaultLanguage", func(t *testing.T) {
		ctx := ExtractContext("```\n  x = 1  \n```\nand\n```js\nlet y\n```")
		require.Len(t, ctx.CodeSnippets, 2)
		assert.Equal(t, "text", ctx.CodeSnippets[0].Language)
		assert.Equal(t, "x = 1", ctx.CodeSnippets[0].Code)
		assert.Equal(t, "js", ctx.CodeSnippets[1].Language)
		assert.Equal(t, "let y", ctx.CodeSnippets[1].Code)
	})

	t.Run("FilesAndURLs", func(t *testing.T) {
		ctx := ExtractContext("Fix python bug in file: src/app.py, Path: lib/util.py see https://example.com/a?b=1 and http://x.io")
		assert.Equal(t, []string{"src/app.py", "lib/util.py"}, ctx.Files)
		assert.Equal(t, []string{"https://example.com/a?b=1", "http://x.io"}, ctx.URLs)
		assert.Empty(t, ctx.CodeSnippets)
	})

	t.Run("Nothing", func(t *testing.T) {
		assert.True(t, ExtractContext("analyze python").IsEmpty())
	})
}

func TestProcessContextDoesNotAffectOutcome(t *testing.T) {
	res := setupProcessor(t).Process("Analyze this python code:\n```python\nprint(1)\n```")
	require.True(t, res.OK())
	require.Len(t, res.Data().Context.CodeSnippets, 1)
	assert.Equal(t, "print(1)", res.Data().Context.CodeSnippets[0].Code)
}

func TestConfidenceIsCappedCoverage(t *testing.T) {
	p := setupProcessor(t)

	// every action, technology and focus pattern triggers
	s := p.Confidence("analyze optimize create test python react typescript sql aws security performance quality coverage")
	assert.Equal(t, 1.0, s.Action)
	assert.Equal(t, 1.0, s.Technologies)
	assert.Equal(t, 1.0, s.FocusAreas)
	assert.InDelta(t, 1.0, s.Overall, 1e-9)

	assert.Equal(t, types.ConfidenceScores{}, p.Confidence("nothing here"))
}

func TestCustomWeights(t *testing.T) {
	p := NewProcessor(nil, Weights{Action: 1}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.Equal(t, Weights{Action: 1}, p.Weights())

	s := p.Confidence("Analyze python security")
	assert.InDelta(t, 0.25, s.Overall, 1e-9)

	assert.Equal(t, DefaultWeights(), setupProcessor(t).Weights())
}

func TestCustomRegistry(t *testing.T) {
	spec := patterns.DefaultSpec()
	spec.PromptTechnologies = append(spec.PromptTechnologies, patterns.CategorySpec{Name: "go", Pattern: `\bgolang\b|\bgo\b`})
	reg, err := patterns.Build(spec)
	require.NoError(t, err)

	res := NewProcessor(reg, Weights{}, nil).Process("Review this golang service")
	require.True(t, res.OK())
	assert.Equal(t, []string{"go"}, res.Data().Technologies)
}

func TestProcessRecoversPanics(t *testing.T) {
	// a processor without a registry panics on first use
	p := &Processor{weights: DefaultWeights(), logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

	res := p.Process("Analyze python")
	require.False(t, res.OK())
	assert.Equal(t, types.ProcessingError, res.Err().Kind)
	assert.Equal(t, "Analyze python", res.Err().Details["prompt"])
}

func TestRequiresExtension(t *testing.T) {
	intent := &types.PromptIntent{Action: "analyze", Technologies: []string{"python"}, FocusAreas: []string{"auth"}}

	assert.True(t, RequiresExtension(nil, intent, "security"))
	assert.True(t, RequiresExtension(nil, intent, "auth"))
	assert.False(t, RequiresExtension(nil, intent, "performance"))
	assert.False(t, RequiresExtension(nil, nil, "security"))

	intent.FocusAreas = []string{"performance"}
	assert.True(t, RequiresExtension(patterns.Default(), intent, "performance"))
	assert.False(t, RequiresExtension(patterns.Default(), intent, "quality"))
}
