package mcp

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/mcp-fraud-trail/internal/config"
	"github.com/a3tai/mcp-fraud-trail/internal/export"
	"github.com/a3tai/mcp-fraud-trail/internal/pdf"
	"github.com/a3tai/mcp-fraud-trail/internal/pdf/pdftest"
	"github.com/a3tai/mcp-fraud-trail/internal/report/table"
	"github.com/a3tai/mcp-fraud-trail/internal/report/trail"
)

type stubReader struct {
	fragments []table.Fragment
	err       error
}

func (r *stubReader) ReadFragments(_ context.Context, _ string) ([]table.Fragment, error) {
	return r.fragments, r.err
}

func reportFragments() []table.Fragment {
	return []table.Fragment{{
		table.Cells("S. No.", "Account No./ (Wallet /PG/PA) Id", "Action Taken",
			"Bank/ (Wallet /PG/PA) / Merchant / Insurance", "Account Details", "Transaction Details",
			"Branch Location", "Reference No.", "Action Taken By", "Date of Action"),
		table.Cells("1", "918020012345678\nUPI\nUTR1001\nLayer : 1", "Money Transferred to\nTxn Date: 02/03/2024",
			"HDFC Bank", "A/c No.: 50100123456789\nIFSC Code: HDFC0001234",
			"Transaction ID / UTR Number-: 1001\nTransaction Amount-: 15000", "Pune", "R1", "Nodal", "05/03/2024"),
		table.Cells("2", "50100123456789\nIMPS\nUTR1002\nLayer : 2", "Money Transferred to\nTxn Date: 03/03/2024",
			"Axis Bank", "A/c No.: 00020110004455",
			"Transaction ID / UTR Number-: 1002\nTransaction Amount-: 9000", "Pune", "R2", "Nodal", "05/03/2024"),
	}}
}

func writeReport(t *testing.T, dir, name string) string {
	t.Helper()
	return pdftest.Write(t, dir, name, pdftest.TextPage(72, 700, "report"))
}

// testConfig returns a stdio configuration rooted in temp directories.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.ReportDirectory = filepath.Join(root, "reports")
	cfg.OutputDirectory = filepath.Join(root, "out")
	cfg.ServerName = "test-server"
	cfg.Version = "1.0.0"
	cfg.MaxFileSize = 1024 * 1024
	require.NoError(t, cfg.Validate())
	return cfg
}

// newTestServer wires a server whose service reads fragments from reader.
// A nil reader keeps the PDF-backed table reader.
func newTestServer(t *testing.T, reader pdf.FragmentReader) (*Server, *config.Config) {
	t.Helper()
	cfg := testConfig(t)

	store, err := export.NewStore(cfg.OutputDirectory, cfg.ArtifactTTL)
	require.NoError(t, err)

	opts := pdf.Options{
		MaxFileSize: cfg.MaxFileSize,
		Directory:   cfg.ReportDirectory,
		Icons:       trail.NewIconTable(map[string]string{"hdfc bank": "hdfc.png"}),
		Store:       store,
	}
	if reader != nil {
		opts.Reader = reader
	}
	svc, err := pdf.NewService(opts)
	require.NoError(t, err)

	s, err := NewServer(cfg, svc)
	require.NoError(t, err)
	return s, cfg
}

func callRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", result.Content[0])
	return text.Text
}
