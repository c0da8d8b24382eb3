// Package mcp exposes repository analysis and prompt processing as MCP tools
// over stdio.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/saeedalam/stacksignal/internal/intent"
	"github.com/saeedalam/stacksignal/internal/logging"
	"github.com/saeedalam/stacksignal/internal/patterns"
	"github.com/saeedalam/stacksignal/internal/techstack"
	"github.com/saeedalam/stacksignal/pkg/types"
)

// ServerName is reported to MCP clients during initialize
const ServerName = "stacksignal"

// Server is the MCP server
type Server struct {
	analyzer  *techstack.Analyzer
	processor *intent.Processor
	registry  *patterns.Registry
	logger    *slog.Logger
	version   string
	session   *SessionTracker
}

// NewServer creates a new MCP server. A nil registry uses patterns.Default().
func NewServer(analyzer *techstack.Analyzer, processor *intent.Processor, reg *patterns.Registry, logger *slog.Logger, version string) *Server {
	if reg == nil {
		reg = patterns.Default()
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Server{
		analyzer:  analyzer,
		processor: processor,
		registry:  reg,
		logger:    logger,
		version:   version,
		session:   newSessionTracker(),
	}
}

// Tools returns the tool set served by Run
func (s *Server) Tools() []server.ServerTool {
	return []server.ServerTool{
		{
			Tool: mcp.NewTool(
				"analyze_repository",
				mcp.WithDescription("Detect the technologies and frameworks of a local repository and suggest improvements. "+
					"Returns a JSON envelope with technology and framework scores and recommendations."),
				mcp.WithReadOnlyHintAnnotation(true),
				mcp.WithIdempotentHintAnnotation(true),
				mcp.WithDestructiveHintAnnotation(false),
				mcp.WithString("path",
					mcp.Description("Directory to analyze"),
					mcp.Required(),
				),
				mcp.WithNumber("max_files",
					mcp.Description("Maximum number of files to consider (default from configuration)"),
				),
			),
			Handler: s.handleAnalyzeRepository,
		},
		{
			Tool: mcp.NewTool(
				"process_prompt",
				mcp.WithDescription("Extract the action, technologies, focus areas, constraints and quoted context of a free-text request."),
				mcp.WithReadOnlyHintAnnotation(true),
				mcp.WithIdempotentHintAnnotation(true),
				mcp.WithDestructiveHintAnnotation(false),
				mcp.WithString("prompt",
					mcp.Description("The request to interpret"),
					mcp.Required(),
				),
			),
			Handler: s.handleProcessPrompt,
		},
		{
			Tool: mcp.NewTool(
				"list_patterns",
				mcp.WithDescription("List the technology, framework, action, focus-area and constraint patterns in use."),
				mcp.WithReadOnlyHintAnnotation(true),
				mcp.WithIdempotentHintAnnotation(true),
				mcp.WithDestructiveHintAnnotation(false),
			),
			Handler: s.handleListPatterns,
		},
	}
}

// MCPServer builds the protocol server with every tool registered
func (s *Server) MCPServer() *server.MCPServer {
	srv := server.NewMCPServer(ServerName, s.version, server.WithToolCapabilities(true))
	srv.AddTools(s.Tools()...)
	return srv
}

// Run serves over stdin/stdout until the client disconnects or ctx ends
func (s *Server) Run(ctx context.Context) error {
	return s.Serve(ctx, os.Stdin, os.Stdout)
}

// Serve reads JSON-RPC messages from in and writes responses to out
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	s.logger.Info("MCP server starting", "version", s.version)
	defer func() {
		stats := s.session.Stats()
		s.logger.Info("MCP server stopped", "tool_calls", stats.ToolCalls, "failures", stats.Failures)
	}()

	stdio := server.NewStdioServer(s.MCPServer())
	if err := stdio.Listen(ctx, in, out); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, io.EOF) {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}

// Session returns the session statistics
func (s *Server) Session() SessionStats {
	return s.session.Stats()
}

// --- Tool Handlers ---

func (s *Server) handleAnalyzeRepository(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return respond(s, "analyze_repository", types.Fail[*types.AnalysisReport](types.ValidationError, err.Error(), nil))
	}
	maxFiles := request.GetInt("max_files", 0)
	s.session.trackPath(path)

	return respond(s, "analyze_repository", s.analyzer.AnalyzeLimit(ctx, path, maxFiles))
}

func (s *Server) handleProcessPrompt(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	prompt, err := request.RequireString("prompt")
	if err != nil {
		return respond(s, "process_prompt", types.Fail[*types.PromptIntent](types.ValidationError, err.Error(), nil))
	}
	return respond(s, "process_prompt", s.processor.Process(prompt))
}

func (s *Server) handleListPatterns(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return respond(s, "list_patterns", types.Success(s.registry.Catalog(), nil))
}

// respond tags the result with a request id and returns its JSON envelope as
// text content. Failed results are flagged with isError.
func respond[T any](s *Server, tool string, res types.Result[T]) (*mcp.CallToolResult, error) {
	requestID := uuid.NewString()
	if res.OK() {
		res = res.WithMetadata("request_id", requestID)
	} else {
		failed := *res.Err()
		failed.Details = maps.Clone(failed.Details)
		if failed.Details == nil {
			failed.Details = map[string]any{}
		}
		failed.Details["request_id"] = requestID
		res = types.Failure[T](&failed)
	}

	s.session.trackCall(tool, res.OK())
	s.logger.Debug("Tool call", "tool", tool, "request_id", requestID, "success", res.OK())

	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	result := mcp.NewToolResultText(string(data))
	result.IsError = !res.OK()
	return result, nil
}
