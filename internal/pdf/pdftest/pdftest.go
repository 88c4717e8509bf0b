// Package pdftest generates small well-formed PDFs for tests.
package pdftest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Build returns a PDF with one page per content stream. Each page uses
// Helvetica as /F1.
func Build(contents ...string) []byte {
	var b strings.Builder
	offsets := []int{}
	obj := func(body string) {
		offsets = append(offsets, b.Len())
		fmt.Fprintf(&b, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	b.WriteString("%PDF-1.4\n")
	n := len(contents)

	kids := make([]string, n)
	for i := range contents {
		kids[i] = fmt.Sprintf("%d 0 R", 3+i)
	}
	obj("<<\n/Type /Catalog\n/Pages 2 0 R\n>>")
	obj(fmt.Sprintf("<<\n/Type /Pages\n/Kids [%s]\n/Count %d\n>>", strings.Join(kids, " "), n))
	for i := range contents {
		obj(fmt.Sprintf("<<\n/Type /Page\n/Parent 2 0 R\n/MediaBox [0 0 612 792]\n/Contents %d 0 R\n"+
			"/Resources <<\n/Font <<\n/F1 <<\n/Type /Font\n/Subtype /Type1\n/BaseFont /Helvetica\n>>\n>>\n>>\n>>",
			3+n+i))
	}
	for _, c := range contents {
		obj(fmt.Sprintf("<<\n/Length %d\n>>\nstream\n%sendstream", len(c), c))
	}

	xref := b.Len()
	fmt.Fprintf(&b, "xref\n0 %d\n0000000000 65535 f \n", len(offsets)+1)
	for _, off := range offsets {
		fmt.Fprintf(&b, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&b, "trailer\n<<\n/Size %d\n/Root 1 0 R\n>>\nstartxref\n%d\n%%%%EOF", len(offsets)+1, xref)
	return []byte(b.String())
}

// TextPage is a content stream placing one string at x, y.
func TextPage(x, y int, text string) string {
	return fmt.Sprintf("BT\n/F1 12 Tf\n%d %d Td\n(%s) Tj\nET\n", x, y, text)
}

// Write writes a generated PDF to dir/name, creating parent directories, and
// returns its path.
func Write(t testing.TB, dir, name string, contents ...string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatalf("failed to create %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, Build(contents...), 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}
