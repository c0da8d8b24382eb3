package cli

import (
	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
)

var (
	analyzeMaxFiles int
	analyzeOut      outputFlags
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [path]",
	Short: "Detect the technology stack of a repository",
	Long: heredoc.Doc(`
		Walk a repository, score which technologies and frameworks it uses and
		suggest improvements.

		Technology scores are the share of analyzed files that match each
		technology's file patterns. Framework scores come from keyword hits in
		the files of every technology above the significance threshold.

		Examples:
		  stacksignal analyze
		  stacksignal analyze ./services/api --max-files 500
		  stacksignal analyze . -f json -o stack.json
	`),
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().IntVar(&analyzeMaxFiles, "max-files", 0, "maximum number of files to analyze (default from configuration)")
	analyzeOut.register(analyzeCmd, true)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	root := "."
	if len(args) > 0 {
		root = args[0]
	}

	res := a.analyzer.AnalyzeLimit(cmd.Context(), root, analyzeMaxFiles)
	if stats := a.reader.Stats(); stats.FilesSkipped > 0 {
		a.logger.Info("Skipped unreadable files", "count", stats.FilesSkipped, "last_error", stats.LastError)
	}
	return writeResult(cmd, analyzeOut, res)
}
