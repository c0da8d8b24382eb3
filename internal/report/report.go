// Package report renders Result envelopes as JSON, YAML or a human-readable
// text layout.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/saeedalam/stacksignal/internal/patterns"
	"github.com/saeedalam/stacksignal/pkg/types"
)

// Format selects an output encoding
type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
	Text Format = "text"
)

// Formats lists the accepted format names
func Formats() []string {
	return []string{string(JSON), string(YAML), string(Text)}
}

// ParseFormat validates a format name
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case JSON, YAML, Text:
		return f, nil
	}
	return "", types.NewError(types.ValidationError,
		fmt.Sprintf("unknown output format %q (want one of %s)", name, strings.Join(Formats(), ", ")),
		map[string]any{"format": name})
}

const rule = "=================================================="

var (
	heading = color.New(color.FgCyan, color.Bold)
	label   = color.New(color.Bold)
	failure = color.New(color.FgRed, color.Bold)
)

// title upper-cases the first letter of each word. Casers are stateful, so
// each call gets its own.
func title(s string) string {
	return cases.Title(language.English).String(s)
}

// Render writes res to w in the given format
func Render[T any](w io.Writer, format Format, res types.Result[T]) error {
	switch format {
	case JSON:
		data, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode json: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(res); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	case Text:
		return renderText(w, res)
	}
	_, err := ParseFormat(string(format))
	return err
}

func renderText[T any](w io.Writer, res types.Result[T]) error {
	if !res.OK() {
		_, err := failure.Fprintf(w, "%s\n", res.Err().Error())
		return err
	}

	var b strings.Builder
	switch data := any(res.Data()).(type) {
	case *types.AnalysisReport:
		writeAnalysis(&b, data)
	case *types.PromptIntent:
		writePrompt(&b, data, res.Metadata())
	case patterns.Catalog:
		writeCatalog(&b, data)
	default:
		return Render(w, YAML, res)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func percent(score float64) string {
	return fmt.Sprintf("%.2f%%", score*100)
}

func writeHeading(b *strings.Builder, text string) {
	b.WriteString("\n")
	b.WriteString(heading.Sprint(text))
	b.WriteString("\n" + rule + "\n\n")
}

func writeAnalysis(b *strings.Builder, r *types.AnalysisReport) {
	writeHeading(b, "Technology Stack Analysis")

	b.WriteString(label.Sprint("Technologies:") + "\n")
	if len(r.Technologies) == 0 {
		b.WriteString("  (none detected)\n")
	}
	for _, e := range r.Technologies.Sorted() {
		fmt.Fprintf(b, "  - %s: %s\n", e.Name, percent(e.Score))
	}

	b.WriteString("\n" + label.Sprint("Frameworks:") + "\n")
	for _, e := range r.Technologies.Sorted() {
		fws, ok := r.Frameworks[e.Name]
		if !ok {
			continue
		}
		fmt.Fprintf(b, "  %s:\n", e.Name)
		if len(fws) == 0 {
			b.WriteString("    (none detected)\n")
		}
		for _, fw := range fws.Sorted() {
			fmt.Fprintf(b, "    - %s: %s\n", fw.Name, percent(fw.Score))
		}
	}

	b.WriteString("\n" + label.Sprint("Recommendations:") + "\n")
	if len(r.Recommendations) == 0 {
		b.WriteString("  (none)\n")
	}
	for _, rec := range r.Recommendations {
		fmt.Fprintf(b, "  - %s\n", rec.Message)
	}

	fmt.Fprintf(b, "\nFiles analyzed: %d\n", r.FilesAnalyzed)
	if len(r.Skipped) > 0 {
		fmt.Fprintf(b, "Files skipped: %d\n", len(r.Skipped))
		for _, s := range r.Skipped {
			fmt.Fprintf(b, "  - %s (%s)\n", s.Path, s.Reason)
		}
	}
}

func writePrompt(b *strings.Builder, p *types.PromptIntent, md types.Metadata) {
	writeHeading(b, "Prompt Intent")

	fmt.Fprintf(b, "%s %s\n", label.Sprint("Action:"), title(p.Action))
	fmt.Fprintf(b, "%s %s\n", label.Sprint("Technologies:"), joinOrNone(p.Technologies))
	fmt.Fprintf(b, "%s %s\n", label.Sprint("Focus areas:"), joinOrNone(p.FocusAreas))

	if len(p.Constraints) > 0 {
		b.WriteString(label.Sprint("Constraints:") + "\n")
		names := make([]string, 0, len(p.Constraints))
		for name := range p.Constraints {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(b, "  - %s: %v\n", name, p.Constraints[name])
		}
	}

	if !p.Context.IsEmpty() {
		b.WriteString(label.Sprint("Context:") + "\n")
		for _, s := range p.Context.CodeSnippets {
			fmt.Fprintf(b, "  %s snippet:\n", title(s.Language))
			for _, line := range strings.Split(s.Code, "\n") {
				fmt.Fprintf(b, "    %s\n", line)
			}
		}
		for _, f := range p.Context.Files {
			fmt.Fprintf(b, "  - file: %s\n", f)
		}
		for _, u := range p.Context.URLs {
			fmt.Fprintf(b, "  - url: %s\n", u)
		}
	}

	if scores, ok := md["confidence_scores"].(types.ConfidenceScores); ok {
		b.WriteString(label.Sprint("Confidence:") + "\n")
		fmt.Fprintf(b, "  - action: %s\n", percent(scores.Action))
		fmt.Fprintf(b, "  - technologies: %s\n", percent(scores.Technologies))
		fmt.Fprintf(b, "  - focus areas: %s\n", percent(scores.FocusAreas))
		fmt.Fprintf(b, "  - overall: %s\n", percent(scores.Overall))
	}
}

func writeCatalog(b *strings.Builder, c patterns.Catalog) {
	writeHeading(b, "Pattern Registry")

	b.WriteString(label.Sprint("Technologies:") + "\n")
	for _, t := range c.Technologies {
		fmt.Fprintf(b, "  %s (%s)\n", t.Name, strings.Join(t.Files, " "))
		for _, fw := range t.Frameworks {
			fmt.Fprintf(b, "    - %s: %s\n", fw.Name, strings.Join(fw.Keywords, ", "))
		}
	}

	sections := []struct {
		name    string
		entries []patterns.CategoryEntry
	}{
		{"Actions", c.Actions},
		{"Prompt technologies", c.PromptTechnologies},
		{"Focus areas", c.FocusAreas},
	}
	for _, s := range sections {
		b.WriteString("\n" + label.Sprint(s.name+":") + "\n")
		for _, e := range s.entries {
			fmt.Fprintf(b, "  - %s: %s\n", e.Name, e.Pattern)
		}
	}

	b.WriteString("\n" + label.Sprint("Constraints:") + "\n")
	for _, con := range c.Constraints {
		fmt.Fprintf(b, "  - %s (%s): %s\n", con.Name, con.Kind, con.Pattern)
	}

	b.WriteString("\n" + label.Sprint("Related:") + "\n")
	for _, name := range c.RelatedNames() {
		fmt.Fprintf(b, "  - %s: %s\n", name, strings.Join(c.Related[name], ", "))
	}
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "(none)"
	}
	return strings.Join(items, ", ")
}
