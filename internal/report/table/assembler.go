// Package table merges page-level table fragments of a fraud-investigation
// report into a single table with one header.
package table

import (
	"errors"
	"strings"
)

// ErrLayoutNotFound is returned when no fragment carries a recognizable report
// header, or when the header was found but no data rows followed it. Callers
// should report it as an unsupported document layout, not a parsing failure.
var ErrLayoutNotFound = errors.New("report table layout not found")

// MinHeaderMatches is the number of header keywords a row must contain to be
// accepted as the report header.
const MinHeaderMatches = 8

// HeaderKeywords is the vocabulary used to recognize the report header row.
var HeaderKeywords = []string{
	"s. no.",
	"account no.",
	"action taken",
	"bank",
	"account details",
	"transaction details",
	"branch",
	"manager",
	"reference no.",
	"atm id",
	"place",
	"location",
	"action taken by",
	"date of action",
}

// Row is one extracted table row. A nil cell means the extractor produced no
// cell at that position.
type Row []*string

// Fragment is the ordered list of rows extracted from one page-level table.
type Fragment []Row

// Table is the assembled report table. Every row has len(Header) cells.
type Table struct {
	Header []string
	Rows   [][]string
}

// Width returns the number of columns.
func (t *Table) Width() int {
	return len(t.Header)
}

// Assemble merges fragments into one Table. The first fragment whose first row
// matches at least MinHeaderMatches keywords fixes the header; every later
// fragment is appended, dropping its first row when it repeats the header.
func Assemble(fragments []Fragment) (*Table, error) {
	var header Row
	var data []Row

	for _, frag := range fragments {
		if header == nil {
			if len(frag) > 1 && MatchHeader(frag[0]) >= MinHeaderMatches {
				header = frag[0]
				data = append(data, frag[1:]...)
			}
			continue
		}

		if len(frag) == 0 {
			continue
		}
		if repeatsHeader(header, frag[0]) {
			data = append(data, frag[1:]...)
		} else {
			data = append(data, frag...)
		}
	}

	if header == nil || len(data) == 0 {
		return nil, ErrLayoutNotFound
	}

	t := &Table{Header: make([]string, len(header))}
	for i, cell := range header {
		t.Header[i] = cellText(cell)
	}
	t.Rows = make([][]string, 0, len(data))
	for _, row := range data {
		t.Rows = append(t.Rows, align(row, len(header)))
	}
	return t, nil
}

// MatchHeader counts how many HeaderKeywords occur as a substring of at least
// one non-nil cell of row, compared lower-cased and trimmed.
func MatchHeader(row Row) int {
	cells := normalizedCells(row)
	matches := 0
	for _, kw := range HeaderKeywords {
		for _, c := range cells {
			if strings.Contains(c, kw) {
				matches++
				break
			}
		}
	}
	return matches
}

// repeatsHeader reports whether every non-empty header name equals one of the
// cells of row, ignoring case and surrounding space.
func repeatsHeader(header, row Row) bool {
	cells := normalizedCells(row)
	for _, h := range header {
		if h == nil || *h == "" {
			continue
		}
		name := strings.ToLower(strings.TrimSpace(*h))
		found := false
		for _, c := range cells {
			if c == name {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func normalizedCells(row Row) []string {
	cells := make([]string, 0, len(row))
	for _, c := range row {
		if c == nil {
			continue
		}
		cells = append(cells, strings.ToLower(strings.TrimSpace(*c)))
	}
	return cells
}

// align pads or truncates row to width cells.
func align(row Row, width int) []string {
	out := make([]string, width)
	for i := 0; i < width && i < len(row); i++ {
		out[i] = cellText(row[i])
	}
	return out
}

func cellText(c *string) string {
	if c == nil {
		return ""
	}
	return *c
}

// Cells is a convenience constructor turning plain strings into a Row.
func Cells(values ...string) Row {
	row := make(Row, len(values))
	for i := range values {
		v := values[i]
		row[i] = &v
	}
	return row
}
