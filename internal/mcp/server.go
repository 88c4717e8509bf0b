package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/a3tai/mcp-fraud-trail/internal/config"
	"github.com/a3tai/mcp-fraud-trail/internal/descriptions"
	"github.com/a3tai/mcp-fraud-trail/internal/pdf"
)

// Server represents the MCP server instance
type Server struct {
	config     *config.Config
	pdfService *pdf.Service
	mcpServer  *server.MCPServer
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, pdfService *pdf.Service) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if pdfService == nil {
		return nil, fmt.Errorf("pdfService cannot be nil")
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false), // We don't support dynamic tool capabilities
	)

	s := &Server{
		config:     cfg,
		pdfService: pdfService,
		mcpServer:  mcpServer,
	}

	s.registerTools()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	processReportTool := mcp.NewTool(
		descriptions.ToolProcessReport,
		mcp.WithDescription(descriptions.GetToolDescription(descriptions.ToolProcessReport)),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to the report PDF, absolute or relative to the report directory"),
		),
	)
	s.mcpServer.AddTool(processReportTool, s.handleProcessReport)

	trailGraphTool := mcp.NewTool(
		descriptions.ToolTrailGraph,
		mcp.WithDescription(descriptions.GetToolDescription(descriptions.ToolTrailGraph)),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to the report PDF, absolute or relative to the report directory"),
		),
	)
	s.mcpServer.AddTool(trailGraphTool, s.handleTrailGraph)

	validateReportTool := mcp.NewTool(
		descriptions.ToolValidateReport,
		mcp.WithDescription(descriptions.GetToolDescription(descriptions.ToolValidateReport)),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to the report PDF, absolute or relative to the report directory"),
		),
	)
	s.mcpServer.AddTool(validateReportTool, s.handleValidateReport)

	listReportsTool := mcp.NewTool(
		descriptions.ToolListReports,
		mcp.WithDescription(descriptions.GetToolDescription(descriptions.ToolListReports)),
		mcp.WithString("directory",
			mcp.Description("Directory to list, inside the report directory (uses the report directory if empty)"),
		),
		mcp.WithString("query",
			mcp.Description("Optional case-insensitive file name filter"),
		),
	)
	s.mcpServer.AddTool(listReportsTool, s.handleListReports)

	serverInfoTool := mcp.NewTool(
		descriptions.ToolServerInfo,
		mcp.WithDescription(descriptions.GetToolDescription(descriptions.ToolServerInfo)),
	)
	s.mcpServer.AddTool(serverInfoTool, s.handleServerInfo)
}

// Handler functions
func (s *Server) handleProcessReport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdfService.ProcessReport(ctx, pdf.ProcessReportRequest{Path: path})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(s.formatProcessReportResult(result)), nil
}

func (s *Server) handleTrailGraph(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdfService.ProcessReport(ctx, pdf.ProcessReportRequest{Path: path, SkipArtifacts: true})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	data, err := json.MarshalIndent(result.Graph, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode graph: %v", err)), nil
	}

	text := string(data)
	if len(result.Diagnostics) > 0 {
		text += "\n\nDiagnostics:\n- " + strings.Join(result.Diagnostics, "\n- ")
	}
	return mcp.NewToolResultText(text), nil
}

func (s *Server) handleValidateReport(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdfService.ValidateReport(pdf.ValidateReportRequest{Path: path})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var responseText string
	if result.Valid {
		responseText = fmt.Sprintf("Report %s is a readable PDF with %d page(s)", result.Path, result.Pages)
	} else {
		responseText = fmt.Sprintf("Report validation failed for %s: %s", result.Path, result.Message)
	}

	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleListReports(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	directory := ""
	if dir, ok := args["directory"].(string); ok {
		directory = dir
	}

	query := ""
	if q, ok := args["query"].(string); ok {
		query = q
	}

	result, err := s.pdfService.ListReports(pdf.ListReportsRequest{Directory: directory, Query: query})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var responseText string
	if result.TotalCount == 0 {
		responseText = fmt.Sprintf("No report PDFs found in directory: %s", result.Directory)
		if result.SearchQuery != "" {
			responseText += fmt.Sprintf(" (searched for: %s)", result.SearchQuery)
		}
	} else {
		responseText = s.formatListReportsResult(result)
	}

	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleServerInfo(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result := s.pdfService.ServerInfo(s.config.ServerName, s.config.Version,
		s.config.OutputDirectory, s.config.ArtifactTTL)
	return mcp.NewToolResultText(s.formatServerInfoResult(result)), nil
}

// Formatting methods
func (s *Server) formatProcessReportResult(result *pdf.ProcessReportResult) string {
	text := fmt.Sprintf("Processed report: %s\n", result.Path)
	text += fmt.Sprintf("Pages: %d\n", result.Pages)
	text += fmt.Sprintf("Records: %d\n", result.RecordCount)
	text += fmt.Sprintf("Accounts (nodes): %d\n", result.NodeCount)
	text += fmt.Sprintf("Transactions (edges): %d\n", result.EdgeCount)
	if result.RootNodeID != nil {
		text += fmt.Sprintf("Root account: %s\n", *result.RootNodeID)
	} else {
		text += "Root account: none (no layer 1 record)\n"
	}

	if len(result.Diagnostics) > 0 {
		text += "\nDiagnostics:\n"
		for _, d := range result.Diagnostics {
			text += fmt.Sprintf("- %s\n", d)
		}
	}

	if a := result.Artifacts; a != nil {
		text += "\nArtifacts:\n"
		text += fmt.Sprintf("   Workbook: %s\n", a.Workbook)
		text += fmt.Sprintf("   Records JSON: %s\n", a.Records)
		text += fmt.Sprintf("   Graph JSON: %s\n", a.Graph)
	}

	return text
}

func (s *Server) formatListReportsResult(result *pdf.ListReportsResult) string {
	text := fmt.Sprintf("Found %d report PDF(s) in directory: %s\n", result.TotalCount, result.Directory)
	if result.SearchQuery != "" {
		text += fmt.Sprintf("Search query: %s\n", result.SearchQuery)
	}
	text += "\nFiles:\n"

	for i, file := range result.Files {
		text += fmt.Sprintf("%d. %s\n", i+1, file.Name)
		text += fmt.Sprintf("   Path: %s\n", file.Path)
		text += fmt.Sprintf("   Size: %d bytes\n", file.Size)
		text += fmt.Sprintf("   Modified: %s\n", file.ModifiedTime)
		if i < len(result.Files)-1 {
			text += "\n"
		}
	}

	return text
}

func (s *Server) formatServerInfoResult(result *pdf.ServerInfoResult) string {
	text := fmt.Sprintf("%s v%s - Server Information\n", result.ServerName, result.Version)
	text += fmt.Sprintf("Report Directory: %s\n", result.ReportDirectory)
	if result.OutputDirectory != "" {
		text += fmt.Sprintf("Output Directory: %s\n", result.OutputDirectory)
	}
	if result.ArtifactTTL != "" {
		text += fmt.Sprintf("Artifact Retention: %s\n", result.ArtifactTTL)
	}
	text += fmt.Sprintf("Max File Size: %d MB\n", result.MaxFileSize/(1024*1024))
	text += fmt.Sprintf("Bank Icons: %d\n", result.IconCount)
	if result.ReportCountError != "" {
		text += fmt.Sprintf("Reports: unavailable (%s)\n", result.ReportCountError)
	} else {
		text += fmt.Sprintf("Reports: %d\n", result.ReportCount)
	}

	text += "\nAvailable Tools:\n"
	for _, tool := range result.AvailableTools {
		text += fmt.Sprintf("• %s: %s\n", tool.Name, tool.Description)
	}

	return text
}

// Run starts the MCP server in the configured mode
func (s *Server) Run(ctx context.Context) error {
	if s.config.IsServerMode() {
		return s.runServerMode(ctx)
	}
	return s.runStdioMode(ctx)
}

// runStdioMode runs the server in stdio mode
func (s *Server) runStdioMode(_ context.Context) error {
	if s.config.IsDebug() {
		log.Printf("Starting fraud trail MCP server in stdio mode")
		log.Printf("Report directory: %s", s.config.ReportDirectory)
	}

	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}

// runServerMode serves MCP over SSE until ctx is cancelled
func (s *Server) runServerMode(ctx context.Context) error {
	addr := s.config.Address()
	sse := server.NewSSEServer(s.mcpServer, server.WithBaseURL("http://"+addr))

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting fraud trail MCP server (SSE) on %s", addr)
		log.Printf("Report directory: %s", s.config.ReportDirectory)
		errCh <- sse.Start(addr)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to serve SSE: %w", err)
		}
		return nil
	case <-ctx.Done():
		log.Printf("Shutting down SSE server")
		if err := sse.Shutdown(context.Background()); err != nil {
			return fmt.Errorf("failed to shut down SSE server: %w", err)
		}
		return nil
	}
}
