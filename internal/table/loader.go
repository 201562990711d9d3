package table

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Format identifies the container of an uploaded table.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

var (
	// ErrEmptyInput is returned when the upload has no bytes or no header row.
	ErrEmptyInput = errors.New("input has no header row")
	// ErrLegacyWorkbook is returned for BIFF (.xls) workbooks, which excelize cannot read.
	ErrLegacyWorkbook = errors.New("legacy .xls workbooks are not supported, save the file as .xlsx")
)

var (
	zipMagic = []byte("PK\x03\x04")
	oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0}
	utf8BOM  = []byte{0xEF, 0xBB, 0xBF}
)

// DetectFormat sniffs the container format from the first bytes of the content.
func DetectFormat(data []byte) (Format, error) {
	switch {
	case bytes.HasPrefix(data, zipMagic):
		return FormatXLSX, nil
	case bytes.HasPrefix(data, oleMagic):
		return "", ErrLegacyWorkbook
	default:
		return FormatCSV, nil
	}
}

// Load reads a whole table from r. The first sheet of a workbook (or the whole
// text for csv) is used, with its first row as header.
func Load(r io.Reader, name string) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%s: %w", name, ErrEmptyInput)
	}

	format, err := DetectFormat(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	var rows [][]string
	switch format {
	case FormatXLSX:
		rows, err = readWorkbook(data)
	default:
		rows, err = readDelimited(data)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", name, err)
	}

	t, err := fromRows(name, rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	slog.Debug("Table loaded",
		slog.String("name", name),
		slog.String("format", string(format)),
		slog.Int("columns", len(t.Columns)),
		slog.Int("rows", t.Len()))

	return t, nil
}

func readWorkbook(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}

	// Raw values: a display format such as "#,##0" would otherwise turn a
	// student number into "12,345,678".
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

func readDelimited(data []byte) ([][]string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.Comma = sniffDelimiter(data)

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read delimited text: %w", err)
	}
	return rows, nil
}

// sniffDelimiter picks ';' over ',' when the header line has more semicolons,
// which is how spreadsheet tools in pt-BR locales export csv.
func sniffDelimiter(data []byte) rune {
	header := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		header = data[:i]
	}
	if bytes.Count(header, []byte(";")) > bytes.Count(header, []byte(",")) {
		return ';'
	}
	return ','
}

// fromRows builds a table from raw rows: the first non-blank row is the header,
// blank rows are skipped, and header labels are made unique.
func fromRows(name string, rows [][]string) (*Table, error) {
	start := 0
	for start < len(rows) && blank(rows[start]) {
		start++
	}
	if start == len(rows) {
		return nil, ErrEmptyInput
	}

	header := rows[start]
	width := len(header)
	var body [][]string
	for _, row := range rows[start+1:] {
		if blank(row) {
			continue
		}
		width = max(width, len(row))
		body = append(body, row)
	}

	return New(name, headerLabels(header, width), body), nil
}

// headerLabels names blank headers "Unnamed: <i>" and suffixes repeated labels
// with ".1", ".2", ..., skipping suffixes already taken by another column.
func headerLabels(header []string, width int) []string {
	labels := make([]string, width)
	used := make(map[string]bool, width)
	next := make(map[string]int, width)
	for i := range labels {
		label := ""
		if i < len(header) {
			label = header[i]
		}
		if strings.TrimSpace(label) == "" {
			label = "Unnamed: " + strconv.Itoa(i)
		}
		if used[label] {
			base := label
			for n := next[base] + 1; ; n++ {
				label = base + "." + strconv.Itoa(n)
				if !used[label] {
					next[base] = n
					break
				}
			}
		}
		used[label] = true
		labels[i] = label
	}
	return labels
}

func blank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
