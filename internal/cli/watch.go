package cli

import (
	"context"
	"path/filepath"
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/saeedalam/stacksignal/internal/report"
	"github.com/saeedalam/stacksignal/internal/scan"
)

var (
	watchDebounce time.Duration
	watchOut      outputFlags
)

var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Re-analyze a repository whenever it changes",
	Long: heredoc.Doc(`
		Analyze a repository once, then keep watching it and print a fresh
		analysis after every settled batch of changes. Press Ctrl+C to stop.

		Directories that analyze skips (.git, node_modules, vendor, build
		output and hidden directories) are not watched.

		Examples:
		  stacksignal watch
		  stacksignal watch ./app --debounce 2s -f json
	`),
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", scan.DefaultDebounce, "quiet period before re-analyzing")
	watchOut.register(watchCmd, false)
}

func runWatch(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	format, err := report.ParseFormat(watchOut.format)
	if err != nil {
		return err
	}

	root := "."
	if len(args) > 0 {
		root = args[0]
	}
	root, err = filepath.Abs(root)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if err := writeResult(cmd, watchOut, a.analyzer.Analyze(ctx, root)); err != nil {
		return err
	}

	watcher := scan.NewWatcher(root, watchDebounce, func(ctx context.Context, changed []string) {
		a.logger.Info("Change detected", "files", len(changed))
		res := a.analyzer.Analyze(ctx, root)
		if !res.OK() {
			a.logger.Error("Analysis failed", "error", res.Err())
			return
		}
		if err := report.Render(cmd.OutOrStdout(), format, res); err != nil {
			a.logger.Error("Failed to render analysis", "error", err)
		}
	}, a.logger)

	if err := watcher.Start(ctx); err != nil {
		return err
	}
	defer watcher.Stop()

	<-ctx.Done()
	return nil
}
