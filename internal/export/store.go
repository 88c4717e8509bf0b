package export

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/a3tai/mcp-fraud-trail/internal/report/fields"
	"github.com/a3tai/mcp-fraud-trail/internal/report/trail"
)

// Run is the set of files written for one processed report.
type Run struct {
	ID       string
	Dir      string
	Workbook string
	Records  string
	Graph    string
}

// Store keeps the artifacts of each processed report in its own directory
// below root, named by a random UUID. Directories older than the TTL are
// removed by Sweep.
type Store struct {
	root string
	ttl  time.Duration
}

// NewStore creates the root directory if needed.
func NewStore(root string, ttl time.Duration) (*Store, error) {
	if root == "" {
		return nil, fmt.Errorf("output directory cannot be empty")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("artifact TTL must be positive, got %s", ttl)
	}
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &Store{root: root, ttl: ttl}, nil
}

// Root returns the directory holding the run directories.
func (s *Store) Root() string {
	return s.root
}

// Save writes the workbook, the records JSON and the graph JSON for one
// report. name is the source file name; its base without extension names the
// files. A failed save leaves no run directory behind.
func (s *Store) Save(name string, records []fields.Record, view *trail.View) (*Run, error) {
	id := uuid.NewString()
	dir := filepath.Join(s.root, id)
	if err := os.Mkdir(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create run directory: %w", err)
	}

	base := baseName(name)
	run := &Run{
		ID:       id,
		Dir:      dir,
		Workbook: filepath.Join(dir, base+".xlsx"),
		Records:  filepath.Join(dir, base+".json"),
		Graph:    filepath.Join(dir, base+"_graph.json"),
	}

	err := writeFile(run.Workbook, func(f *os.File) error { return WriteWorkbook(f, records) })
	if err == nil {
		err = writeFile(run.Records, func(f *os.File) error { return WriteRecordsJSON(f, records) })
	}
	if err == nil {
		err = writeFile(run.Graph, func(f *os.File) error { return WriteGraphJSON(f, view) })
	}
	if err != nil {
		_ = os.RemoveAll(dir)
		return nil, err
	}
	return run, nil
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o640)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Base(path), err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", filepath.Base(path), err)
	}
	return nil
}

// baseName turns a source file name into a safe artifact base name.
func baseName(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', 0:
			return '_'
		}
		return r
	}, base)
	if base == "" || base == "." || base == ".." {
		return "report"
	}
	return base
}

// Sweep removes run directories last modified more than the TTL before now
// and returns how many were removed. Entries that are not run directories are
// left alone.
func (s *Store) Sweep(now time.Time) (int, error) {
	return s.remove(func(info os.FileInfo) bool {
		return now.Sub(info.ModTime()) > s.ttl
	})
}

// Purge removes every run directory.
func (s *Store) Purge() (int, error) {
	return s.remove(func(os.FileInfo) bool { return true })
}

func (s *Store) remove(expired func(os.FileInfo) bool) (int, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return 0, fmt.Errorf("failed to list output directory: %w", err)
	}

	removed := 0
	var firstErr error
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := uuid.Parse(e.Name()); err != nil {
			continue
		}
		info, err := e.Info()
		if err != nil || !expired(info) {
			continue
		}
		if err := os.RemoveAll(filepath.Join(s.root, e.Name())); err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("failed to remove run %s: %w", e.Name(), err)
			}
			continue
		}
		removed++
	}
	return removed, firstErr
}

// RunJanitor sweeps every interval until ctx is done.
func (s *Store) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := s.Sweep(now)
			if err != nil {
				log.Printf("artifact sweep: %v", err)
			}
			if n > 0 {
				log.Printf("artifact sweep removed %d run(s)", n)
			}
		}
	}
}
