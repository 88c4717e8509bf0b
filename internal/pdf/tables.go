package pdf

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	pdferrors "github.com/a3tai/mcp-fraud-trail/internal/pdf/errors"
	"github.com/a3tai/mcp-fraud-trail/internal/report/table"
)

// DefaultColumnTolerance is the horizontal distance, in points, within which
// two text runs are treated as starting the same column.
const DefaultColumnTolerance = 6.0

// TextRun is a piece of text at a horizontal position on one visual line.
type TextRun struct {
	X float64
	S string
}

// TextLine is one visual line of a page, runs ordered left to right.
type TextLine []TextRun

// TableReader turns the pages of a report into table fragments, one per page.
type TableReader struct {
	tolerance float64
}

// NewTableReader creates a reader. A non-positive tolerance selects
// DefaultColumnTolerance.
func NewTableReader(tolerance float64) *TableReader {
	if tolerance <= 0 {
		tolerance = DefaultColumnTolerance
	}
	return &TableReader{tolerance: tolerance}
}

// ReadFragments extracts one fragment per page, in page order.
func (r *TableReader) ReadFragments(ctx context.Context, filePath string) ([]table.Fragment, error) {
	f, reader, err := pdf.Open(filePath)
	if err != nil {
		return nil, pdferrors.Wrapf(pdferrors.ErrorTypeInvalidPDF, err, "failed to open PDF").WithFile(filePath)
	}
	defer f.Close()

	fragments := make([]table.Fragment, 0, reader.NumPage())
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		if err := ctx.Err(); err != nil {
			return nil, pdferrors.Wrap(pdferrors.ErrorTypeCancelled, err).WithFile(filePath).WithPage(pageNum)
		}

		lines, err := pageLines(reader, pageNum)
		if err != nil {
			return nil, pdferrors.Wrapf(pdferrors.ErrorTypeTextExtraction, err, "failed to read page text").
				WithFile(filePath).WithPage(pageNum)
		}
		fragments = append(fragments, r.Layout(lines))
	}

	return fragments, nil
}

// pageLines reads the text rows of one page. The pdf package panics on some
// malformed content streams; that is reported as an error for the page.
func pageLines(reader *pdf.Reader, pageNum int) (lines []TextLine, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("malformed page content: %v", p)
		}
	}()

	page := reader.Page(pageNum)
	if page.V.IsNull() {
		return nil, nil
	}

	rows, err := page.GetTextByRow()
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		line := joinGlyphs(row.Content)
		if len(line) > 0 {
			lines = append(lines, line)
		}
	}
	return lines, nil
}

// joinGlyphs merges the texts of a row into runs. Texts that abut the
// previous one are part of the same run; a visible gap starts a new run.
func joinGlyphs(texts []pdf.Text) TextLine {
	sorted := make([]pdf.Text, len(texts))
	copy(sorted, texts)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].X < sorted[j].X })

	var line TextLine
	var end, gap float64
	for _, t := range sorted {
		if strings.TrimSpace(t.S) == "" {
			if len(line) > 0 {
				line[len(line)-1].S += " "
			}
			continue
		}

		width := t.W
		if width <= 0 {
			width = t.FontSize * 0.5 * float64(len([]rune(t.S)))
		}

		if len(line) > 0 && t.X-end <= gap {
			line[len(line)-1].S += t.S
		} else {
			line = append(line, TextRun{X: t.X, S: t.S})
		}
		end = t.X + width
		gap = t.FontSize
	}

	for i := range line {
		line[i].S = strings.TrimSpace(line[i].S)
	}
	return line
}

// Layout places the runs of a page into a grid. Column anchors come from the
// line with the most runs; every run belongs to the nearest anchor at or left
// of it. A line with nothing in the first column continues the row above it,
// cell by cell, separated by newlines.
func (r *TableReader) Layout(lines []TextLine) table.Fragment {
	anchors := r.anchors(lines)
	if len(anchors) == 0 {
		return nil
	}

	var fragment table.Fragment
	for _, line := range lines {
		cells := make([]string, len(anchors))
		for _, run := range line {
			col := column(anchors, run.X+r.tolerance)
			if cells[col] == "" {
				cells[col] = run.S
			} else {
				cells[col] += " " + run.S
			}
		}

		if cells[0] == "" && len(fragment) > 0 {
			continueRow(fragment[len(fragment)-1], cells)
			continue
		}
		fragment = append(fragment, toRow(cells))
	}
	return fragment
}

func (r *TableReader) anchors(lines []TextLine) []float64 {
	var widest TextLine
	for _, line := range lines {
		if len(line) > len(widest) {
			widest = line
		}
	}

	xs := make([]float64, 0, len(widest))
	for _, run := range widest {
		xs = append(xs, run.X)
	}
	sort.Float64s(xs)

	var anchors []float64
	for _, x := range xs {
		if len(anchors) > 0 && x-anchors[len(anchors)-1] <= r.tolerance {
			continue
		}
		anchors = append(anchors, x)
	}
	return anchors
}

// column returns the index of the last anchor not right of x, or 0.
func column(anchors []float64, x float64) int {
	i := sort.SearchFloat64s(anchors, x)
	if i < len(anchors) && anchors[i] == x {
		return i
	}
	if i == 0 {
		return 0
	}
	return i - 1
}

func continueRow(row table.Row, cells []string) {
	for i, c := range cells {
		if c == "" {
			continue
		}
		if row[i] == nil {
			v := c
			row[i] = &v
			continue
		}
		joined := *row[i] + "\n" + c
		row[i] = &joined
	}
}

func toRow(cells []string) table.Row {
	row := make(table.Row, len(cells))
	for i, c := range cells {
		if c != "" {
			v := c
			row[i] = &v
		}
	}
	return row
}
