package techstack

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/saeedalam/stacksignal/internal/logging"
	"github.com/saeedalam/stacksignal/internal/patterns"
	"github.com/saeedalam/stacksignal/pkg/types"
)

// DefaultWorkers is the number of concurrent content reads per technology
const DefaultWorkers = 8

// ContentSource reads the text content of a path. Failures are per file.
type ContentSource interface {
	ReadContent(ctx context.Context, path string) (string, error)
}

// FileOutcome is either the content of a file or the reason it was skipped
type FileOutcome struct {
	Path       string
	Content    string
	SkipReason error
}

// Skipped reports whether the file could not be read
func (o FileOutcome) Skipped() bool {
	return o.SkipReason != nil
}

// Interrupted reports whether the read was abandoned by cancellation rather
// than failing on the file itself
func (o FileOutcome) Interrupted() bool {
	return errors.Is(o.SkipReason, context.Canceled) || errors.Is(o.SkipReason, context.DeadlineExceeded)
}

// FrameworkScan is the framework distribution of one technology plus the
// files that contributed to it or were skipped
type FrameworkScan struct {
	Technology   string
	Distribution types.Distribution
	Scanned      int
	Skipped      []types.SkippedFile

	// Err combines every skip reason; nil when all files were read.
	Err error

	// Interrupted is the context error when reads stopped early. The
	// distribution is then incomplete and must not be reported.
	Interrupted error
}

// ReadAll reads every path through src with at most workers concurrent reads.
// Outcomes keep the order of paths. Read failures become skip reasons.
func ReadAll(ctx context.Context, src ContentSource, paths []string, workers int) []FileOutcome {
	if workers < 1 {
		workers = 1
	}
	outcomes := make([]FileOutcome, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range paths {
		g.Go(func() error {
			outcomes[i].Path = path
			if err := gctx.Err(); err != nil {
				outcomes[i].SkipReason = err
				return nil
			}
			content, err := src.ReadContent(gctx, path)
			if err != nil {
				outcomes[i].SkipReason = err
				return nil
			}
			outcomes[i].Content = content
			return nil
		})
	}
	// workers never return errors; skips are carried in the outcomes
	_ = g.Wait()

	return outcomes
}

// FoldFrameworks counts framework keyword hits over the outcomes of one
// technology's files. Every keyword found in a file adds one to its framework
// and to the technology total. Skipped files are logged and recorded; reads
// abandoned by cancellation only mark the scan as interrupted.
func FoldFrameworks(tech patterns.Technology, outcomes []FileOutcome, logger *slog.Logger) FrameworkScan {
	if logger == nil {
		logger = logging.Discard()
	}

	scan := FrameworkScan{Technology: tech.Name}
	counts := make(map[string]int)
	total := 0

	type lowered struct {
		name     string
		keywords []string
	}
	fws := make([]lowered, len(tech.Frameworks))
	for i, fw := range tech.Frameworks {
		kws := make([]string, len(fw.Keywords))
		for j, kw := range fw.Keywords {
			kws[j] = strings.ToLower(kw)
		}
		fws[i] = lowered{name: fw.Name, keywords: kws}
	}

	for _, o := range outcomes {
		if o.Interrupted() {
			if scan.Interrupted == nil {
				scan.Interrupted = o.SkipReason
			}
			continue
		}
		if o.Skipped() {
			logger.Warn("Could not read file", "path", o.Path, "technology", tech.Name, "error", o.SkipReason)
			scan.Skipped = append(scan.Skipped, types.SkippedFile{Path: o.Path, Reason: o.SkipReason.Error()})
			scan.Err = multierr.Append(scan.Err, o.SkipReason)
			continue
		}
		scan.Scanned++

		content := strings.ToLower(o.Content)
		for _, fw := range fws {
			for _, kw := range fw.keywords {
				if strings.Contains(content, kw) {
					counts[fw.name]++
					total++
				}
			}
		}
	}

	scan.Distribution = types.Normalize(counts, total)
	return scan
}

// DetectFrameworks scores the frameworks of one technology from the content of
// the given paths. Paths not matched by the technology's file matchers are
// ignored. Normalization happens after every read has completed.
func DetectFrameworks(ctx context.Context, tech patterns.Technology, paths []string, src ContentSource, workers int, logger *slog.Logger) FrameworkScan {
	candidates := MatchingPaths(tech, paths)
	outcomes := ReadAll(ctx, src, candidates, workers)
	return FoldFrameworks(tech, outcomes, logger)
}
