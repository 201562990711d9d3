package testutil

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/xuri/excelize/v2"

	"reqcheck/internal/table"
)

// HistoryColumns are the headers of a historical request export as staff
// download it from the registry spreadsheet.
var HistoryColumns = []string{"nusp", "disciplina", "Ano", "Semestre", "problema", "parecer"}

// CurrentColumns are the headers of a current-semester request list.
var CurrentColumns = []string{"Número USP", "Nome completo", "Curso"}

// HistoryRows returns a small historical table body. Keys 111 and 222 repeat,
// 999 has no current request.
func HistoryRows() [][]string {
	return [][]string{
		{"111", "MAC0110", "2022", "1", "QR", "Aprovado"},
		{"111", "MAC0121", "2022", "2", "CH", "Indeferido"},
		{"222", "MAT2453", "2023", "1", "qr", "aprovado pela CoC"},
		{"222", "MAC0110", "2023", "2", "CH", ""},
		{"999", "FLC0100", "2021", "1", "QR", "Negado"},
	}
}

// CurrentRows returns a small current table body. 333 has no history.
func CurrentRows() [][]string {
	return [][]string{
		{"111", "Ana Souza", "BCC"},
		{"222", "Bruno Lima", "BMAC"},
		{"333", "Carla Dias", "BCC"},
	}
}

// HistoryTable builds the fixture historical table.
func HistoryTable() *table.Table {
	return table.New("consolidado", HistoryColumns, HistoryRows())
}

// CurrentTable builds the fixture current table.
func CurrentTable() *table.Table {
	return table.New("requerimentos", CurrentColumns, CurrentRows())
}

// WorkbookBytes writes header and rows into the first sheet of a new workbook
// and returns the xlsx bytes.
func WorkbookBytes(t *testing.T, header []string, rows [][]string) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	if err := writeRow(f, sheet, 1, header); err != nil {
		t.Fatalf("failed to write header: %v", err)
	}
	for i, row := range rows {
		if err := writeRow(f, sheet, i+2, row); err != nil {
			t.Fatalf("failed to write row %d: %v", i, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("failed to serialize workbook: %v", err)
	}
	return buf.Bytes()
}

// CSVBytes renders header and rows as comma-separated text.
func CSVBytes(t *testing.T, header []string, rows [][]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		t.Fatalf("failed to write header: %v", err)
	}
	if err := w.WriteAll(rows); err != nil {
		t.Fatalf("failed to write rows: %v", err)
	}
	return buf.Bytes()
}

func writeRow(f *excelize.File, sheet string, rowNum int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}
	return f.SetSheetRow(sheet, cell, &row)
}
