// Package export writes processed reports to disk: an Excel workbook and a
// JSON document of the records, and the JSON graph view.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/a3tai/mcp-fraud-trail/internal/report/fields"
	"github.com/a3tai/mcp-fraud-trail/internal/report/trail"
)

// SheetName is the worksheet holding the records.
const SheetName = "Records"

// WriteWorkbook writes records as an xlsx workbook: a bold header row with
// the flat column union, then one row per record. Null values leave the cell
// empty; amounts and counts are stored as numbers.
func WriteWorkbook(w io.Writer, records []fields.Record) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("failed to name worksheet: %w", err)
	}

	columns := fields.Columns(records)
	position := make(map[string]int, len(columns))
	for i, name := range columns {
		position[name] = i + 1
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(SheetName, cell, name); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}

	if len(columns) > 0 {
		style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		if err != nil {
			return fmt.Errorf("failed to create header style: %w", err)
		}
		last, _ := excelize.CoordinatesToCellName(len(columns), 1)
		if err := f.SetCellStyle(SheetName, "A1", last, style); err != nil {
			return fmt.Errorf("failed to style header: %w", err)
		}
	}

	for rowIdx := range records {
		for _, field := range records[rowIdx].Fields() {
			v := field.Value.Interface()
			if v == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(position[field.Name], rowIdx+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(SheetName, cell, v); err != nil {
				return fmt.Errorf("failed to write record %d: %w", rowIdx, err)
			}
		}
	}

	for i, name := range columns {
		col, _ := excelize.ColumnNumberToName(i + 1)
		width := float64(len(name) + 4)
		if width < 12 {
			width = 12
		}
		if err := f.SetColWidth(SheetName, col, col, width); err != nil {
			return fmt.Errorf("failed to size column %s: %w", col, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write Excel file: %w", err)
	}
	return nil
}

// WriteRecordsJSON writes the records as one object keyed by record position
// ("0", "1", ...) in ascending order, each value the record's flat view.
func WriteRecordsJSON(w io.Writer, records []fields.Record) error {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i := range records {
		if i > 0 {
			buf.WriteByte(',')
		}
		body, err := json.Marshal(records[i])
		if err != nil {
			return fmt.Errorf("failed to encode record %d: %w", i, err)
		}
		buf.WriteString(strconv.Quote(strconv.Itoa(i)))
		buf.WriteByte(':')
		buf.Write(body)
	}
	buf.WriteByte('}')

	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", "  "); err != nil {
		return fmt.Errorf("failed to format records: %w", err)
	}
	out.WriteByte('\n')
	_, err := out.WriteTo(w)
	return err
}

// WriteGraphJSON writes the graph view.
func WriteGraphJSON(w io.Writer, view *trail.View) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(view); err != nil {
		return fmt.Errorf("failed to encode graph: %w", err)
	}
	return nil
}
