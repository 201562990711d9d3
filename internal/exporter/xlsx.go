package exporter

import (
	"fmt"
	"io"
	"strconv"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"reqcheck/internal/table"
)

// DefaultSheetName is the name of the report sheet.
const DefaultSheetName = "Relatorio"

// DefaultMaxColumnWidth caps auto-sized column widths.
const DefaultMaxColumnWidth = 50

const headerFill = "D7E4BD"

// Identifiers longer than this stay text, Excel keeps 15 significant digits.
const maxNumericDigits = 15

// XLSXOptions tunes WriteXLSX.
type XLSXOptions struct {
	SheetName      string
	MaxColumnWidth int
}

// WriteXLSX writes t as a single-sheet workbook. The header row is bold,
// wrapped, top-aligned, filled and bordered; each column is as wide as its
// longest text plus two, up to MaxColumnWidth.
func WriteXLSX(w io.Writer, t *table.Table, opts XLSXOptions) error {
	if opts.SheetName == "" {
		opts.SheetName = DefaultSheetName
	}
	if opts.MaxColumnWidth <= 0 {
		opts.MaxColumnWidth = DefaultMaxColumnWidth
	}

	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName(f.GetSheetName(0), opts.SheetName)

	sw, err := f.NewStreamWriter(opts.SheetName)
	if err != nil {
		return fmt.Errorf("failed to create stream writer: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{headerFill}},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	for i, width := range columnWidths(t, opts.MaxColumnWidth) {
		if err := sw.SetColWidth(i+1, i+1, width); err != nil {
			return fmt.Errorf("failed to set width of column %d: %w", i+1, err)
		}
	}

	header := make([]interface{}, len(t.Columns))
	for i, col := range t.Columns {
		header[i] = excelize.Cell{StyleID: headerStyle, Value: col}
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("failed to write header row: %w", err)
	}

	for r, row := range t.Rows {
		values := make([]interface{}, len(row))
		for i, cell := range row {
			values[i] = cellValue(cell)
		}
		ref, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(ref, values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", r+2, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush sheet: %w", err)
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// columnWidths returns min(max(len(header), longest cell) + 2, limit) per
// column, counting characters rather than bytes.
func columnWidths(t *table.Table, limit int) []float64 {
	widths := make([]float64, len(t.Columns))
	for i, col := range t.Columns {
		longest := utf8.RuneCountInString(col)
		for _, row := range t.Rows {
			longest = max(longest, utf8.RuneCountInString(row[i]))
		}
		widths[i] = float64(min(longest+2, limit))
	}
	return widths
}

// cellValue stores canonical integers as numbers so spreadsheet tools can sort
// and filter them; anything else, including "007" or "1.0", stays text.
func cellValue(cell string) interface{} {
	if cell == "" || len(cell) > maxNumericDigits {
		return cell
	}
	n, err := strconv.ParseInt(cell, 10, 64)
	if err != nil || strconv.FormatInt(n, 10) != cell {
		return cell
	}
	return n
}
