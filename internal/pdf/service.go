package pdf

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/a3tai/mcp-fraud-trail/internal/export"
	pdferrors "github.com/a3tai/mcp-fraud-trail/internal/pdf/errors"
	"github.com/a3tai/mcp-fraud-trail/internal/pdf/security"
	"github.com/a3tai/mcp-fraud-trail/internal/report"
	"github.com/a3tai/mcp-fraud-trail/internal/report/fields"
	"github.com/a3tai/mcp-fraud-trail/internal/report/table"
	"github.com/a3tai/mcp-fraud-trail/internal/report/trail"
)

// FragmentReader produces the table fragments of a report file.
type FragmentReader interface {
	ReadFragments(ctx context.Context, filePath string) ([]table.Fragment, error)
}

// ArtifactStore persists the outputs of one processed report.
type ArtifactStore interface {
	Save(name string, records []fields.Record, view *trail.View) (*export.Run, error)
}

// Options configures a Service.
type Options struct {
	MaxFileSize int64
	Directory   string
	// Icons may be nil; nodes then carry no icon URL.
	Icons *trail.IconTable
	// Store may be nil; reports are then processed without writing files.
	Store ArtifactStore
	// Reader defaults to a TableReader with the default column tolerance.
	Reader FragmentReader
}

// Service runs report files through the pipeline by orchestrating the intake
// components
type Service struct {
	maxFileSize int64
	guard       *security.PathGuard
	validator   *Validator
	search      *Search
	reader      FragmentReader
	icons       *trail.IconTable
	store       ArtifactStore
	countCache  *reportCountCache
}

// NewService creates a new report service with all components
func NewService(opts Options) (*Service, error) {
	guard, err := security.NewPathGuard(opts.Directory)
	if err != nil {
		return nil, fmt.Errorf("failed to create path guard: %w", err)
	}
	if opts.MaxFileSize <= 0 {
		return nil, fmt.Errorf("max file size must be positive")
	}

	reader := opts.Reader
	if reader == nil {
		reader = NewTableReader(DefaultColumnTolerance)
	}

	return &Service{
		maxFileSize: opts.MaxFileSize,
		guard:       guard,
		validator:   NewValidator(opts.MaxFileSize),
		search:      NewSearch(opts.MaxFileSize),
		reader:      reader,
		icons:       opts.Icons,
		store:       opts.Store,
		countCache:  &reportCountCache{ttl: 30 * time.Second},
	}, nil
}

// ProcessReport validates a report PDF, extracts its table, decomposes the
// rows into records, builds the trail graph and, when a store is configured,
// writes the artifacts. Errors are *errors.PipelineError values.
func (s *Service) ProcessReport(ctx context.Context, req ProcessReportRequest) (*ProcessReportResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, pdferrors.Wrap(pdferrors.ErrorTypeCancelled, err)
	}

	path, err := s.guard.Resolve(req.Path)
	if err != nil {
		return nil, guardError(err, req.Path)
	}

	pages, err := s.validator.Check(path)
	if err != nil {
		return nil, err
	}

	fragments, err := s.reader.ReadFragments(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, pdferrors.Wrap(pdferrors.ErrorTypeCancelled, err).WithFile(path)
	}

	outcome, err := report.Process(fragments)
	if errors.Is(err, table.ErrLayoutNotFound) {
		log.Printf("%s: unrecognized report layout (%d fragments)", path, len(fragments))
		return nil, pdferrors.Wrapf(pdferrors.ErrorTypeUnrecognizedLayout, err,
			"no report table with at least %d header keywords", table.MinHeaderMatches).WithFile(path)
	}
	if err != nil {
		return nil, pdferrors.Wrap(pdferrors.ErrorTypeUnknown, err).WithFile(path)
	}

	diagnostics := outcome.Diagnostics()
	for _, d := range diagnostics {
		log.Printf("%s: %s", path, d)
	}

	view := outcome.Graph.View(s.icons)
	result := &ProcessReportResult{
		Path:        path,
		Pages:       pages,
		Fragments:   len(fragments),
		RecordCount: len(outcome.Records),
		NodeCount:   len(view.Nodes),
		EdgeCount:   len(view.Edges),
		RootNodeID:  outcome.Graph.RootNodeID,
		Truncated:   !outcome.Complete(),
		Diagnostics: diagnostics,
		Graph:       view,
		Outcome:     outcome,
	}

	if s.store == nil || req.SkipArtifacts {
		return result, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, pdferrors.Wrap(pdferrors.ErrorTypeCancelled, err).WithFile(path)
	}
	run, err := s.store.Save(filepath.Base(path), outcome.Records, view)
	if err != nil {
		return nil, pdferrors.Wrapf(pdferrors.ErrorTypeExport, err, "failed to write artifacts").WithFile(path)
	}
	result.Artifacts = &Artifacts{
		RunID:     run.ID,
		Directory: run.Dir,
		Workbook:  run.Workbook,
		Records:   run.Records,
		Graph:     run.Graph,
	}
	return result, nil
}

// ValidateReport checks whether a file can be processed
func (s *Service) ValidateReport(req ValidateReportRequest) (*ValidateReportResult, error) {
	path, err := s.guard.Resolve(req.Path)
	if err != nil {
		return nil, guardError(err, req.Path)
	}
	result := s.validator.Validate(ValidateReportRequest{Path: path})
	return result, nil
}

// ListReports lists report PDFs in the configured directory or a directory
// below it
func (s *Service) ListReports(req ListReportsRequest) (*ListReportsResult, error) {
	dir, err := s.guard.ResolveDirectory(req.Directory)
	if err != nil {
		return nil, guardError(err, req.Directory)
	}
	req.Directory = dir
	return s.search.SearchDirectory(req)
}

func guardError(err error, path string) error {
	if errors.Is(err, security.ErrOutsideDirectory) {
		return pdferrors.Wrapf(pdferrors.ErrorTypeAccessDenied, err, "security validation failed").WithFile(path)
	}
	return pdferrors.Wrapf(pdferrors.ErrorTypeInvalidPath, err, "invalid path").WithFile(path)
}

// Directory returns the configured report directory
func (s *Service) Directory() string {
	return s.guard.Root()
}

// GetMaxFileSize returns the maximum file size limit
func (s *Service) GetMaxFileSize() int64 {
	return s.maxFileSize
}

// IconCount returns the number of configured bank icons
func (s *Service) IconCount() int {
	return s.icons.Len()
}
