package techstack

import (
	"context"
	"log/slog"

	"github.com/saeedalam/stacksignal/internal/logging"
	"github.com/saeedalam/stacksignal/internal/patterns"
	"github.com/saeedalam/stacksignal/pkg/types"
)

// PathSource lists candidate file paths under a root, at most max of them
type PathSource interface {
	Paths(ctx context.Context, root string, max int) ([]string, error)
}

// Options tunes an Analyzer
type Options struct {
	MaxFiles              int
	SignificanceThreshold float64
	Workers               int
}

// DefaultOptions returns the stock limits
func DefaultOptions() Options {
	return Options{
		MaxFiles:              DefaultMaxFiles,
		SignificanceThreshold: DefaultSignificanceThreshold,
		Workers:               DefaultWorkers,
	}
}

// Analyzer runs the repository pipeline: paths, technologies, frameworks of
// significant technologies, recommendations
type Analyzer struct {
	registry *patterns.Registry
	paths    PathSource
	contents ContentSource
	opts     Options
	logger   *slog.Logger
}

// NewAnalyzer creates an analyzer. A nil registry uses patterns.Default().
func NewAnalyzer(reg *patterns.Registry, paths PathSource, contents ContentSource, opts Options, logger *slog.Logger) *Analyzer {
	if reg == nil {
		reg = patterns.Default()
	}
	if logger == nil {
		logger = logging.Discard()
	}
	if opts.MaxFiles < 1 {
		opts.MaxFiles = DefaultMaxFiles
	}
	if opts.Workers < 1 {
		opts.Workers = DefaultWorkers
	}
	return &Analyzer{registry: reg, paths: paths, contents: contents, opts: opts, logger: logger}
}

// Options returns the effective options
func (a *Analyzer) Options() Options {
	return a.opts
}

// Analyze scans root. Weak or missing evidence is a success with empty
// distributions; only a failure to list the root is an AnalysisError.
func (a *Analyzer) Analyze(ctx context.Context, root string) types.Result[*types.AnalysisReport] {
	return a.AnalyzeLimit(ctx, root, a.opts.MaxFiles)
}

// AnalyzeLimit is Analyze with a per-call path limit
func (a *Analyzer) AnalyzeLimit(ctx context.Context, root string, maxFiles int) types.Result[*types.AnalysisReport] {
	if maxFiles < 1 {
		maxFiles = a.opts.MaxFiles
	}
	details := map[string]any{"path": root}

	paths, err := a.paths.Paths(ctx, root, maxFiles)
	if err != nil {
		a.logger.Error("Analysis failed", "path", root, "error", err)
		return types.Fail[*types.AnalysisReport](types.AnalysisError, err.Error(), details)
	}
	paths = TruncatePaths(paths, maxFiles)

	technologies := DetectTechnologies(a.registry, paths)
	a.logger.Debug("Technologies detected", "path", root, "files", len(paths), "technologies", len(technologies))

	report := &types.AnalysisReport{
		Root:          root,
		Technologies:  technologies,
		Frameworks:    make(map[string]types.Distribution),
		FilesAnalyzed: len(paths),
	}

	var scanned []string
	for _, tech := range SignificantTechnologies(a.registry, technologies, a.opts.SignificanceThreshold) {
		// already computed distributions stay valid if we stop here
		if err := ctx.Err(); err != nil {
			return types.Fail[*types.AnalysisReport](types.AnalysisError, "analysis cancelled: "+err.Error(), details)
		}

		scan := DetectFrameworks(ctx, tech, paths, a.contents, a.opts.Workers, a.logger)
		// a partially read technology cannot be normalized
		if err := interrupted(ctx, scan); err != nil {
			a.logger.Warn("Analysis cancelled", "path", root, "technology", tech.Name)
			return types.Fail[*types.AnalysisReport](types.AnalysisError, "analysis cancelled: "+err.Error(), details)
		}
		report.Frameworks[tech.Name] = scan.Distribution
		report.Skipped = append(report.Skipped, scan.Skipped...)
		scanned = append(scanned, tech.Name)

		if scan.Err != nil {
			a.logger.Warn("Framework scan degraded", "technology", tech.Name, "skipped", len(scan.Skipped), "error", scan.Err)
		}
	}

	report.Recommendations = Recommend(report.Technologies, report.Frameworks)

	a.logger.Info("Analysis complete",
		"path", root,
		"files", report.FilesAnalyzed,
		"technologies", len(report.Technologies),
		"recommendations", len(report.Recommendations))

	return types.Success(report, types.Metadata{
		"files_analyzed":         report.FilesAnalyzed,
		"files_skipped":          len(report.Skipped),
		"framework_scans":        scanned,
		"significance_threshold": a.opts.SignificanceThreshold,
	})
}

func interrupted(ctx context.Context, scan FrameworkScan) error {
	if scan.Interrupted != nil {
		return scan.Interrupted
	}
	return ctx.Err()
}
