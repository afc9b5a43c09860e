package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aretw0/tabula"
	"github.com/aretw0/tabula/pkg/frame"
	"github.com/aretw0/tabula/pkg/report"
)

// Engine defines what the MCP server needs from the validation engine.
type Engine interface {
	ValidateNamed(ctx context.Context, name string, t frame.Table) (*report.Report, error)
	Schemas(ctx context.Context) ([]string, error)
	Report(ctx context.Context, runID string) (*report.Report, error)
}

// Server wraps the engine and exposes it as an MCP server.
type Server struct {
	engine    Engine
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(engine Engine, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		engine: engine,
		logger: logger,
		mcpServer: server.NewMCPServer("tabula-mcp", strings.TrimSpace(tabula.Version),
			server.WithToolCapabilities(true),
		),
	}
	s.registerTools()
	return s
}

// MCP returns the underlying MCP server.
func (s *Server) MCP() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio serves on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_schemas",
		mcp.WithDescription("List the names of the schemas tables can be validated against."),
	), s.handleListSchemas)

	s.mcpServer.AddTool(mcp.NewTool("validate_table",
		mcp.WithDescription("Validate a table against a named schema and return the report with every finding."),
		mcp.WithString("schema", mcp.Required(), mcp.Description("Name of the schema")),
		mcp.WithString("records", mcp.Required(), mcp.Description("JSON array of row objects, e.g. [{\"id\":1,\"age\":30}]")),
	), s.handleValidateTable)

	s.mcpServer.AddTool(mcp.NewTool("get_report",
		mcp.WithDescription("Fetch a stored validation report by run ID."),
		mcp.WithString("run_id", mcp.Required(), mcp.Description("Run ID returned by validate_table")),
	), s.handleGetReport)
}

func (s *Server) handleListSchemas(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	names, err := s.engine.Schemas(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("list schemas failed: %v", err)), nil
	}
	if names == nil {
		names = []string{}
	}
	return jsonResult(map[string][]string{"schemas": names})
}

func (s *Server) handleValidateTable(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("schema")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	records, err := req.RequireString("records")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	tbl, err := frame.FromJSON([]byte(records))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid records: %v", err)), nil
	}

	rep, err := s.engine.ValidateNamed(ctx, name, tbl)
	if err != nil {
		failed, ok := report.FromError(err)
		if !ok {
			s.logger.Warn("mcp validate_table failed", "schema", name, "error", err)
			return mcp.NewToolResultError(fmt.Sprintf("validation failed: %v", err)), nil
		}
		rep = failed
	}
	return jsonResult(rep)
}

func (s *Server) handleGetReport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	runID, err := req.RequireString("run_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	rep, err := s.engine.Report(ctx, runID)
	if err != nil {
		if errors.Is(err, tabula.ErrNoStore) {
			return mcp.NewToolResultError("reports are not stored by this server"), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("get report failed: %v", err)), nil
	}
	return jsonResult(rep)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	return mcp.NewToolResultText(strings.TrimSpace(buf.String())), nil
}
