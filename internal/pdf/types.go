package pdf

import (
	"github.com/a3tai/mcp-fraud-trail/internal/report"
	"github.com/a3tai/mcp-fraud-trail/internal/report/trail"
)

// FileInfo represents information about a report PDF on disk
type FileInfo struct {
	Path         string `json:"path"`
	Name         string `json:"name"`
	Size         int64  `json:"size"`
	ModifiedTime string `json:"modified_time"`
}

// Request Types

// ProcessReportRequest asks for a report PDF to be run through the pipeline
type ProcessReportRequest struct {
	Path string `json:"path"`
	// SkipArtifacts runs the pipeline without writing export files.
	SkipArtifacts bool `json:"skip_artifacts,omitempty"`
}

// ValidateReportRequest represents a request to validate a report PDF
type ValidateReportRequest struct {
	Path string `json:"path"`
}

// ListReportsRequest represents a request to list report PDFs in a directory
type ListReportsRequest struct {
	Directory string `json:"directory"`
	Query     string `json:"query"`
}

// Response Types

// ValidateReportResult represents the result of a report validation
type ValidateReportResult struct {
	Valid   bool   `json:"valid"`
	Path    string `json:"path"`
	Pages   int    `json:"pages"`
	Message string `json:"message,omitempty"`
}

// Artifacts are the files written for one processed report.
type Artifacts struct {
	RunID     string `json:"run_id"`
	Directory string `json:"directory"`
	Workbook  string `json:"workbook"`
	Records   string `json:"records"`
	Graph     string `json:"graph"`
}

// ProcessReportResult is the outcome of processing one report PDF
type ProcessReportResult struct {
	Path        string          `json:"path"`
	Pages       int             `json:"pages"`
	Fragments   int             `json:"fragments"`
	RecordCount int             `json:"record_count"`
	NodeCount   int             `json:"node_count"`
	EdgeCount   int             `json:"edge_count"`
	RootNodeID  *string         `json:"root_node_id"`
	Truncated   bool            `json:"truncated"`
	Diagnostics []string        `json:"diagnostics,omitempty"`
	Artifacts   *Artifacts      `json:"artifacts,omitempty"`
	Graph       *trail.View     `json:"graph,omitempty"`
	Outcome     *report.Outcome `json:"-"`
}

// ListReportsResult represents the PDFs found in a directory
type ListReportsResult struct {
	Files       []FileInfo `json:"files"`
	TotalCount  int        `json:"total_count"`
	Directory   string     `json:"directory"`
	SearchQuery string     `json:"search_query,omitempty"`
}
