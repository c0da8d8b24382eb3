package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
)

var processOut outputFlags

var processCmd = &cobra.Command{
	Use:   "process <prompt...>",
	Short: "Extract the intent of a free-text request",
	Long: heredoc.Doc(`
		Interpret a request and report its action, technologies, focus areas,
		numeric constraints and any quoted code, file paths or URLs, together
		with confidence scores.

		Arguments are joined with spaces. Pass "-" to read the request from stdin.

		Examples:
		  stacksignal process "Optimize my React app for performance"
		  stacksignal process Analyze this Python code for security issues -f json
		  cat request.txt | stacksignal process -
	`),
	Args: cobra.MinimumNArgs(1),
	RunE: runProcess,
}

func init() {
	processOut.register(processCmd, true)
}

func runProcess(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	prompt := strings.Join(args, " ")
	if len(args) == 1 && args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read prompt from stdin: %w", err)
		}
		prompt = string(data)
	}

	return writeResult(cmd, processOut, a.processor.Process(prompt))
}
