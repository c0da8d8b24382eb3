package cli

import (
	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/saeedalam/stacksignal/internal/mcp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start MCP server for IDE integration",
	Long: heredoc.Doc(`
		Start the MCP (Model Context Protocol) server.

		This allows IDE agents like Cursor or other MCP-compatible tools to
		analyze repositories and interpret requests through stacksignal.

		The server communicates via stdio (standard input/output) using JSON-RPC
		and exposes three tools: analyze_repository, process_prompt and
		list_patterns. Logs go to stderr so they never corrupt the protocol stream.

		Examples:
		  stacksignal serve
		  stacksignal serve --log-level debug --log-format json
	`),
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	server := mcp.NewServer(a.analyzer, a.processor, a.registry, a.logger, buildVersion)

	// Run the server (blocks until stdin closes or the process is interrupted)
	return server.Run(cmd.Context())
}
