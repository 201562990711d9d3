// Package table holds the in-memory tabular model shared by the reconciliation
// pipeline, the exporter and the HTTP layer.
//
// A Table is an ordered list of column labels plus rows of text cells. Every row
// carries exactly one cell per column; loaders pad short rows so callers can index
// cells without bounds checks.
//
// Tables are decoded from spreadsheet uploads with Load, which sniffs the content:
// zip containers are read as xlsx workbooks through excelize, anything else is read
// as comma-separated text.
//
//	t, err := table.Load(r, "consolidado.xlsx")
//	if err != nil {
//	    return err
//	}
//	idx := t.ColumnIndex("nusp")
package table
