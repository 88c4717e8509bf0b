package pdf

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/mcp-fraud-trail/internal/export"
	pdferrors "github.com/a3tai/mcp-fraud-trail/internal/pdf/errors"
	"github.com/a3tai/mcp-fraud-trail/internal/report/fields"
	"github.com/a3tai/mcp-fraud-trail/internal/report/table"
	"github.com/a3tai/mcp-fraud-trail/internal/report/trail"
)

type stubReader struct {
	fragments []table.Fragment
	err       error
	calls     int
}

func (r *stubReader) ReadFragments(_ context.Context, _ string) ([]table.Fragment, error) {
	r.calls++
	return r.fragments, r.err
}

type failingStore struct{}

func (failingStore) Save(string, []fields.Record, *trail.View) (*export.Run, error) {
	return nil, errors.New("disk full")
}

var reportHeader = table.Cells(
	"S. No.", "Account No./ (Wallet /PG/PA) Id", "Action Taken", "Bank/ (Wallet /PG/PA) / Merchant / Insurance",
	"Account Details", "Transaction Details", "Branch Location", "Reference No.", "Action Taken By", "Date of Action",
)

func reportFragments() []table.Fragment {
	return []table.Fragment{{
		reportHeader,
		table.Cells("1", "918020012345678\nUPI\nUTR1001\nLayer : 1", "Money Transferred to\nTxn Date: 02/03/2024",
			"HDFC Bank", "A/c No.: 50100123456789\nIFSC Code: HDFC0001234",
			"Transaction ID / UTR Number-: 1001\nTransaction Amount-: 15000", "Pune", "R1", "Nodal", "05/03/2024"),
		table.Cells("2", "50100123456789\nIMPS\nUTR1002\nLayer : 2", "Money Transferred to\nTxn Date: 03/03/2024",
			"Axis Bank", "A/c No.: 00020110004455",
			"Transaction ID / UTR Number-: 1002\nTransaction Amount-: 9000", "Pune", "R2", "Nodal", "05/03/2024"),
	}}
}

func newTestService(t *testing.T, reader FragmentReader, store ArtifactStore) (*Service, string) {
	t.Helper()
	dir := t.TempDir()
	svc, err := NewService(Options{
		MaxFileSize: 1024 * 1024,
		Directory:   dir,
		Icons:       trail.NewIconTable(map[string]string{"hdfc bank": "hdfc.png", "default": "bank.png"}),
		Store:       store,
		Reader:      reader,
	})
	require.NoError(t, err)
	return svc, dir
}

func TestNewService(t *testing.T) {
	_, err := NewService(Options{MaxFileSize: 1, Directory: ""})
	assert.Error(t, err)

	_, err = NewService(Options{MaxFileSize: 0, Directory: t.TempDir()})
	assert.Error(t, err)

	svc, err := NewService(Options{MaxFileSize: 10, Directory: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &TableReader{}, svc.reader)
	assert.Equal(t, int64(10), svc.GetMaxFileSize())
	assert.Equal(t, 0, svc.IconCount())
}

func TestService_ProcessReport(t *testing.T) {
	store, err := export.NewStore(filepath.Join(t.TempDir(), "out"), time.Hour)
	require.NoError(t, err)
	svc, dir := newTestService(t, &stubReader{fragments: reportFragments()}, store)
	writePDF(t, dir, "complaint.pdf", textPage(72, 700, "report"))

	res, err := svc.ProcessReport(context.Background(), ProcessReportRequest{Path: "complaint.pdf"})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "complaint.pdf"), res.Path)
	assert.Equal(t, 1, res.Pages)
	assert.Equal(t, 2, res.RecordCount)
	assert.Equal(t, 3, res.NodeCount)
	assert.Equal(t, 2, res.EdgeCount)
	require.NotNil(t, res.RootNodeID)
	assert.Equal(t, "918020012345678", *res.RootNodeID)
	assert.False(t, res.Truncated)
	assert.Empty(t, res.Diagnostics)

	require.NotNil(t, res.Graph)
	assert.Equal(t, "hdfc.png", res.Graph.Nodes[1].IconURL)

	require.NotNil(t, res.Artifacts)
	assert.Equal(t, filepath.Join(store.Root(), res.Artifacts.RunID), res.Artifacts.Directory)
	for _, p := range []string{res.Artifacts.Workbook, res.Artifacts.Records, res.Artifacts.Graph} {
		assert.FileExists(t, p)
	}
	assert.Equal(t, "complaint.xlsx", filepath.Base(res.Artifacts.Workbook))
}

func TestService_ProcessReportSkipArtifacts(t *testing.T) {
	store, err := export.NewStore(filepath.Join(t.TempDir(), "out"), time.Hour)
	require.NoError(t, err)
	svc, dir := newTestService(t, &stubReader{fragments: reportFragments()}, store)
	path := writePDF(t, dir, "complaint.pdf", textPage(72, 700, "report"))

	res, err := svc.ProcessReport(context.Background(), ProcessReportRequest{Path: path, SkipArtifacts: true})
	require.NoError(t, err)
	assert.Nil(t, res.Artifacts)

	entries, err := os.ReadDir(store.Root())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestService_ProcessReportErrors(t *testing.T) {
	tests := []struct {
		name     string
		reader   *stubReader
		store    ArtifactStore
		path     func(dir string) string
		wantType pdferrors.ErrorType
		wantRead bool
	}{
		{
			name:     "outside directory",
			reader:   &stubReader{fragments: reportFragments()},
			path:     func(string) string { return "../elsewhere.pdf" },
			wantType: pdferrors.ErrorTypeAccessDenied,
		},
		{
			name:     "missing file",
			reader:   &stubReader{fragments: reportFragments()},
			path:     func(string) string { return "missing.pdf" },
			wantType: pdferrors.ErrorTypeNotFound,
		},
		{
			name:     "unrecognized layout",
			reader:   &stubReader{fragments: []table.Fragment{{table.Cells("a", "b"), table.Cells("c", "d")}}},
			path:     func(string) string { return "ok.pdf" },
			wantType: pdferrors.ErrorTypeUnrecognizedLayout,
			wantRead: true,
		},
		{
			name:     "reader failure",
			reader:   &stubReader{err: pdferrors.New(pdferrors.ErrorTypeTextExtraction, "bad page")},
			path:     func(string) string { return "ok.pdf" },
			wantType: pdferrors.ErrorTypeTextExtraction,
			wantRead: true,
		},
		{
			name:     "export failure",
			reader:   &stubReader{fragments: reportFragments()},
			store:    failingStore{},
			path:     func(string) string { return "ok.pdf" },
			wantType: pdferrors.ErrorTypeExport,
			wantRead: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, dir := newTestService(t, tt.reader, tt.store)
			writePDF(t, dir, "ok.pdf", textPage(72, 700, "report"))

			_, err := svc.ProcessReport(context.Background(), ProcessReportRequest{Path: tt.path(dir)})
			require.Error(t, err)
			assert.Equal(t, tt.wantType, pdferrors.TypeOf(err), err.Error())
			assert.Equal(t, tt.wantRead, tt.reader.calls > 0)
		})
	}
}

func TestService_ProcessReportUnrecognizedLayoutWrapsSentinel(t *testing.T) {
	svc, dir := newTestService(t, &stubReader{}, nil)
	writePDF(t, dir, "ok.pdf", textPage(72, 700, "report"))

	_, err := svc.ProcessReport(context.Background(), ProcessReportRequest{Path: "ok.pdf"})
	assert.ErrorIs(t, err, table.ErrLayoutNotFound)
}

func TestService_ProcessReportCancelled(t *testing.T) {
	reader := &stubReader{fragments: reportFragments()}
	svc, dir := newTestService(t, reader, nil)
	writePDF(t, dir, "ok.pdf", textPage(72, 700, "report"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.ProcessReport(ctx, ProcessReportRequest{Path: "ok.pdf"})
	assert.True(t, pdferrors.Is(err, pdferrors.ErrorTypeCancelled))
	assert.Zero(t, reader.calls)
}

func TestService_ProcessReportTruncated(t *testing.T) {
	frags := reportFragments()
	frags[0] = append(frags[0], table.Cells("3", "00020110004455", "Put on hold", "SBI", "", "", "", "", "", ""))
	svc, dir := newTestService(t, &stubReader{fragments: frags}, nil)
	writePDF(t, dir, "ok.pdf", textPage(72, 700, "report"))

	res, err := svc.ProcessReport(context.Background(), ProcessReportRequest{Path: "ok.pdf"})
	require.NoError(t, err)
	assert.True(t, res.Truncated)
	assert.Equal(t, 3, res.RecordCount)
	assert.Equal(t, 2, res.EdgeCount)
	assert.Equal(t, []string{"processing truncated at record 2: missing layer, 1 record(s) discarded"}, res.Diagnostics)
}

func TestService_ValidateReport(t *testing.T) {
	svc, dir := newTestService(t, nil, nil)
	writePDF(t, dir, "ok.pdf", textPage(72, 700, "report"))

	res, err := svc.ValidateReport(ValidateReportRequest{Path: "ok.pdf"})
	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.Equal(t, 1, res.Pages)

	_, err = svc.ValidateReport(ValidateReportRequest{Path: "/etc/hosts"})
	assert.True(t, pdferrors.Is(err, pdferrors.ErrorTypeAccessDenied))
}

func TestService_ListReports(t *testing.T) {
	svc, dir := newTestService(t, nil, nil)
	writePDF(t, dir, "complaint_1.pdf", textPage(72, 700, "a"))
	writePDF(t, dir, "cases/complaint_2.pdf", textPage(72, 700, "b"))
	writePDF(t, dir, "cases/reply.pdf", textPage(72, 700, "c"))

	res, err := svc.ListReports(ListReportsRequest{})
	require.NoError(t, err)
	assert.Equal(t, 3, res.TotalCount)
	assert.Equal(t, svc.Directory(), res.Directory)

	res, err = svc.ListReports(ListReportsRequest{Directory: "cases", Query: "complaint"})
	require.NoError(t, err)
	require.Equal(t, 1, res.TotalCount)
	assert.Equal(t, "complaint_2.pdf", res.Files[0].Name)

	_, err = svc.ListReports(ListReportsRequest{Directory: ".."})
	assert.True(t, pdferrors.Is(err, pdferrors.ErrorTypeAccessDenied))

	_, err = svc.ListReports(ListReportsRequest{Directory: "complaint_1.pdf"})
	assert.True(t, pdferrors.Is(err, pdferrors.ErrorTypeInvalidPath))
}

func TestService_ServerInfo(t *testing.T) {
	svc, dir := newTestService(t, nil, nil)
	writePDF(t, dir, "complaint_1.pdf", textPage(72, 700, "a"))

	info := svc.ServerInfo("fraud-trail", "1.2.3", "/tmp/out", time.Hour)
	assert.Equal(t, "fraud-trail", info.ServerName)
	assert.Equal(t, "1.2.3", info.Version)
	assert.Equal(t, svc.Directory(), info.ReportDirectory)
	assert.Equal(t, "1h0m0s", info.ArtifactTTL)
	assert.Equal(t, 2, info.IconCount)
	assert.Equal(t, 1, info.ReportCount)
	assert.Len(t, info.AvailableTools, 5)
	for _, tool := range info.AvailableTools {
		assert.NotContains(t, tool.Description, "\n")
	}

	writePDF(t, dir, "complaint_2.pdf", textPage(72, 700, "b"))
	assert.Equal(t, 1, svc.ServerInfo("fraud-trail", "1.2.3", "", 0).ReportCount, "count is cached")
}
