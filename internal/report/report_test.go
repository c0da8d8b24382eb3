package report

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/saeedalam/stacksignal/internal/patterns"
	"github.com/saeedalam/stacksignal/pkg/types"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func sampleAnalysis() types.Result[*types.AnalysisReport] {
	return types.Success(&types.AnalysisReport{
		Root:         "/repo",
		Technologies: types.Distribution{"python": 0.75, "javascript": 0.25},
		Frameworks: map[string]types.Distribution{
			"python":     {"django": 1},
			"javascript": {},
		},
		Recommendations: []types.Recommendation{
			{Type: "stack", Message: "Consider using TypeScript for better type safety in your JavaScript code"},
		},
		FilesAnalyzed: 4,
		Skipped:       []types.SkippedFile{{Path: "big.py", Reason: "file too large"}},
	}, types.Metadata{"files_analyzed": 4})
}

func samplePrompt() types.Result[*types.PromptIntent] {
	return types.Success(&types.PromptIntent{
		Action:       "analyze",
		Technologies: []string{"python"},
		FocusAreas:   []string{"security"},
		Constraints:  types.Constraints{"verbose": true, "timeout": 30},
		Context: types.IntentContext{
			CodeSnippets: []types.CodeSnippet{{Language: "python", Code: "print(1)"}},
			URLs:         []string{"https://example.com"},
		},
	}, types.Metadata{
		"original_prompt":   "Analyze python",
		"confidence_scores": types.ConfidenceScores{Action: 0.25, Technologies: 0.2, FocusAreas: 0.25, Overall: 0.23},
	})
}

func TestParseFormat(t *testing.T) {
	for _, name := range []string{"json", "YAML", " text "} {
		_, err := ParseFormat(name)
		assert.NoError(t, err, name)
	}

	_, err := ParseFormat("html")
	var verr *types.Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, types.ValidationError, verr.Kind)
	assert.Equal(t, "html", verr.Details["format"])
}

func TestRenderUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	err := Render(&buf, Format("csv"), sampleAnalysis())

	var verr *types.Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, types.ValidationError, verr.Kind)
	assert.Empty(t, buf.String())
}

func TestRenderJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, JSON, sampleAnalysis()))

	var env map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &env))
	assert.Equal(t, true, env["success"])
	data := env["data"].(map[string]any)
	assert.Equal(t, 0.75, data["technologies"].(map[string]any)["python"])
	assert.Contains(t, buf.String(), "\n  \"success\": true")
}

func TestRenderJSONFailure(t *testing.T) {
	var buf bytes.Buffer
	res := types.Fail[*types.PromptIntent](types.IntentError, "Could not determine action from prompt", map[string]any{"prompt": "hi"})
	require.NoError(t, Render(&buf, JSON, res))

	var env map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &env))
	assert.Equal(t, false, env["success"])
	assert.NotContains(t, env, "data")
	errObj := env["error"].(map[string]any)
	assert.Equal(t, "IntentError", errObj["type"])
	assert.Equal(t, "hi", errObj["details"].(map[string]any)["prompt"])
}

func TestRenderYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, YAML, samplePrompt()))

	var env struct {
		Success bool `yaml:"success"`
		Data    struct {
			Action string `yaml:"action"`
		} `yaml:"data"`
		Metadata map[string]any `yaml:"metadata"`
	}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &env))
	assert.True(t, env.Success)
	assert.Equal(t, "analyze", env.Data.Action)
	assert.Equal(t, "Analyze python", env.Metadata["original_prompt"])
}

func TestRenderTextAnalysis(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, Text, sampleAnalysis()))

	want := `
Technology Stack Analysis
==================================================

Technologies:
  - python: 75.00%
  - javascript: 25.00%

Frameworks:
  python:
    - django: 100.00%
  javascript:
    (none detected)

Recommendations:
  - Consider using TypeScript for better type safety in your JavaScript code

Files analyzed: 4
Files skipped: 1
  - big.py (file too large)
`
	assert.Equal(t, want, buf.String())
}

func TestRenderTextPrompt(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, Text, samplePrompt()))

	out := buf.String()
	assert.Contains(t, out, "Prompt Intent")
	assert.Contains(t, out, "Action: Analyze\n")
	assert.Contains(t, out, "Technologies: python\n")
	assert.Contains(t, out, "Focus areas: security\n")
	assert.Contains(t, out, "  - timeout: 30\n  - verbose: true\n")
	assert.Contains(t, out, "  Python snippet:\n    print(1)\n")
	assert.Contains(t, out, "  - url: https://example.com\n")
	assert.Contains(t, out, "  - overall: 23.00%\n")
}

func TestRenderTextFailure(t *testing.T) {
	var buf bytes.Buffer
	res := types.Fail[*types.AnalysisReport](types.AnalysisError, "failed to access /nope", nil)
	require.NoError(t, Render(&buf, Text, res))
	assert.Equal(t, "AnalysisError: failed to access /nope\n", buf.String())
}

func TestRenderTextCatalog(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, Text, types.Success(patterns.Default().Catalog(), nil)))

	out := buf.String()
	assert.Contains(t, out, "Pattern Registry")
	assert.Contains(t, out, "  python (\\.py$ requirements\\.txt$ setup\\.py$ pyproject\\.toml$)\n")
	assert.Contains(t, out, "  - analyze: analyze|analyse|check|review|examine\n")
	assert.Contains(t, out, "  - max_complexity (numeric): ")
	assert.Contains(t, out, "  - security: vulnerability, auth, encryption\n")
}

func TestRenderTextFallsBackToYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, Text, types.Success(map[string]int{"n": 1}, nil)))
	assert.Contains(t, buf.String(), "success: true")
	assert.Contains(t, buf.String(), "n: 1")
}
