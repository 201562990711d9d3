// Package exporter serializes a joined report table for download.
//
// Two formats are supported:
//
// FormatXLSX writes a single sheet named "Relatorio" with a styled header row
// and auto-sized columns. Cells holding canonical integers are stored as
// numbers; everything else is stored as text, so reading the sheet back gives
// the original cell values.
//
// FormatCSV writes UTF-8, comma-separated text with a header row, no index
// column and no byte order mark.
//
// Exporter wraps both behind a content-keyed Cache, so repeated downloads of the
// same report reuse the rendered bytes and concurrent identical requests render
// once.
//
// Example usage:
//
//	exp := exporter.New(exporter.Options{}, exporter.NewCache(16), logger)
//	artifact, err := exp.Export(ctx, joined, exporter.FormatXLSX)
//	if err != nil {
//		return err
//	}
//	w.Header().Set("Content-Type", artifact.ContentType)
//	w.Write(artifact.Data)
package exporter
