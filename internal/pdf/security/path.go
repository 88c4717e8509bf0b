// Package security keeps report access inside the configured directory.
package security

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrOutsideDirectory is returned for paths that escape the report directory.
var ErrOutsideDirectory = errors.New("path is outside configured directory")

// PathGuard confines report paths to one directory
type PathGuard struct {
	root string
}

// NewPathGuard creates a guard for the given directory. The directory does
// not have to exist yet.
func NewPathGuard(root string) (*PathGuard, error) {
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("configured directory cannot be empty")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve configured directory: %w", err)
	}
	return &PathGuard{root: filepath.Clean(abs)}, nil
}

// Root returns the absolute configured directory.
func (g *PathGuard) Root() string {
	return g.root
}

// Resolve returns the absolute path for a report. Relative paths are taken
// relative to the configured directory. Symlinks are followed before the
// confinement check, so a link pointing out of the directory is rejected.
func (g *PathGuard) Resolve(path string) (string, error) {
	path = strings.ReplaceAll(path, "\x00", "")
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("path cannot be empty")
	}

	if !filepath.IsAbs(path) {
		path = filepath.Join(g.root, path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}
	abs = filepath.Clean(abs)

	if !within(g.root, abs) {
		return "", fmt.Errorf("%w: %s", ErrOutsideDirectory, path)
	}

	realRoot := evalOrSelf(g.root)
	realPath := evalOrSelf(abs)
	if !within(realRoot, realPath) {
		return "", fmt.Errorf("%w: %s resolves to %s", ErrOutsideDirectory, path, realPath)
	}
	return abs, nil
}

// ResolveDirectory resolves a directory to list. An empty argument means the
// configured directory itself.
func (g *PathGuard) ResolveDirectory(dir string) (string, error) {
	if strings.TrimSpace(dir) == "" {
		return g.root, nil
	}
	abs, err := g.Resolve(dir)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("cannot access directory: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("path is not a directory: %s", dir)
	}
	return abs, nil
}

func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// evalOrSelf resolves symlinks in the longest existing prefix of path.
func evalOrSelf(path string) string {
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		return resolved
	}
	parent := filepath.Dir(path)
	if parent == path {
		return path
	}
	return filepath.Join(evalOrSelf(parent), filepath.Base(path))
}
