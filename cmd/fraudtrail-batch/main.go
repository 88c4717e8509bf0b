package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/a3tai/mcp-fraud-trail/internal/config"
	"github.com/a3tai/mcp-fraud-trail/internal/export"
	"github.com/a3tai/mcp-fraud-trail/internal/pdf"
	"github.com/a3tai/mcp-fraud-trail/internal/report/trail"
)

// batch holds the settings shared by every document of one invocation.
type batch struct {
	format      string
	workers     int
	maxFileSize int64
	icons       *trail.IconTable
	store       pdf.ArtifactStore
	reader      pdf.FragmentReader
}

// DocumentResult is the outcome for one command line argument.
type DocumentResult struct {
	Path   string                   `json:"path"`
	Result *pdf.ProcessReportResult `json:"result,omitempty"`
	Error  string                   `json:"error,omitempty"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run parses args, processes every document and writes the report to stdout.
// It returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("fraudtrail-batch", flag.ContinueOnError)
	flags.SetOutput(stderr)
	format := flags.String("format", "text", "Output format: text, json")
	outDir := flags.String("out", "", "Write workbook and JSON artifacts below this directory")
	workers := flags.Int("workers", runtime.NumCPU(), "Documents processed concurrently")
	iconsFile := flags.String("icons", "", "JSON file mapping bank names to icon URLs")
	maxFileSize := flags.Int64("maxfilesize", config.DefaultMaxFileSize, "Maximum PDF file size in bytes")
	flags.Usage = func() { printHelp(stderr, flags) }

	if err := flags.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if flags.NArg() == 0 {
		fmt.Fprintf(stderr, "Error: at least one PDF file path required\n\n")
		printHelp(stderr, flags)
		return 2
	}
	if *format != "text" && *format != "json" {
		fmt.Fprintf(stderr, "Error: unsupported output format: %s\n", *format)
		return 2
	}
	if *workers < 1 {
		fmt.Fprintf(stderr, "Error: -workers must be at least 1\n")
		return 2
	}

	b := &batch{format: *format, workers: *workers, maxFileSize: *maxFileSize}

	if *iconsFile != "" {
		icons, err := trail.LoadIconTable(*iconsFile)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		b.icons = icons
	}

	if *outDir != "" {
		// Batch artifacts are kept until the operator removes them.
		store, err := export.NewStore(*outDir, 365*24*time.Hour)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		b.store = store
	}

	results := b.process(ctx, flags.Args())

	if err := b.write(stdout, results); err != nil {
		fmt.Fprintf(stderr, "Error writing results: %v\n", err)
		return 1
	}

	for _, r := range results {
		if r.Error != "" {
			return 1
		}
	}
	return 0
}

// process runs every document through the pipeline with at most b.workers in
// flight. Results follow the order of paths.
func (b *batch) process(ctx context.Context, paths []string) []DocumentResult {
	results := make([]DocumentResult, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)

	for i, p := range paths {
		g.Go(func() error {
			results[i] = b.processOne(ctx, p)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (b *batch) processOne(ctx context.Context, path string) DocumentResult {
	doc := DocumentResult{Path: path}

	abs, err := filepath.Abs(path)
	if err != nil {
		doc.Error = err.Error()
		return doc
	}

	svc, err := pdf.NewService(pdf.Options{
		MaxFileSize: b.maxFileSize,
		Directory:   filepath.Dir(abs),
		Icons:       b.icons,
		Store:       b.store,
		Reader:      b.reader,
	})
	if err != nil {
		doc.Error = err.Error()
		return doc
	}

	result, err := svc.ProcessReport(ctx, pdf.ProcessReportRequest{Path: abs})
	if err != nil {
		doc.Error = err.Error()
		return doc
	}
	doc.Result = result
	return doc
}

func (b *batch) write(w io.Writer, results []DocumentResult) error {
	if b.format == "json" {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(results)
	}

	for i, doc := range results {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "== %s ==\n", doc.Path)
		if doc.Error != "" {
			fmt.Fprintf(w, "FAILED: %s\n", doc.Error)
			continue
		}

		r := doc.Result
		fmt.Fprintf(w, "Pages: %d\n", r.Pages)
		fmt.Fprintf(w, "Records: %d\n", r.RecordCount)
		fmt.Fprintf(w, "Accounts: %d\n", r.NodeCount)
		fmt.Fprintf(w, "Transactions: %d\n", r.EdgeCount)
		if r.RootNodeID != nil {
			fmt.Fprintf(w, "Root account: %s\n", *r.RootNodeID)
		}
		for _, d := range r.Diagnostics {
			fmt.Fprintf(w, "Warning: %s\n", d)
		}
		if a := r.Artifacts; a != nil {
			fmt.Fprintf(w, "Artifacts: %s\n", a.Directory)
		}
	}
	return nil
}

func printHelp(w io.Writer, flags *flag.FlagSet) {
	fmt.Fprintln(w, "fraudtrail-batch - Extract records and money trails from fraud report PDFs")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "USAGE:")
	fmt.Fprintln(w, "  fraudtrail-batch [OPTIONS] <pdf_file>...")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "OPTIONS:")
	flags.SetOutput(w)
	flags.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "EXAMPLES:")
	fmt.Fprintln(w, "  fraudtrail-batch complaint.pdf")
	fmt.Fprintln(w, "  fraudtrail-batch -format json -workers 4 reports/*.pdf")
	fmt.Fprintln(w, "  fraudtrail-batch -out ./artifacts -icons banks.json complaint.pdf")
}
