package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"reqcheck/internal/table"
)

// WriteCSV writes t as comma-separated UTF-8 text: one header row followed by
// the data rows, without a byte order mark.
func WriteCSV(w io.Writer, t *table.Table) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(t.Columns); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	for i, record := range t.Rows {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteFile stores an artifact under dir using its file name and returns the
// full path. The directory is created when missing.
func WriteFile(dir string, artifact *Artifact) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	fullPath := filepath.Join(dir, artifact.FileName)
	if err := os.WriteFile(fullPath, artifact.Data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", fullPath, err)
	}

	slog.Info("Export written",
		slog.String("full_path", fullPath),
		slog.String("format", string(artifact.Format)),
		slog.Int("bytes", len(artifact.Data)))

	return fullPath, nil
}
