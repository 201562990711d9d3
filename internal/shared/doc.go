// Package shared groups helpers used by more than one package.
//
// The testutil subpackage provides workbook and table fixtures for the
// reconciliation pipeline plus a buffered slog handler for asserting log output.
// It depends only on the table model and excelize so every package can import
// it from tests without cycles.
package shared
