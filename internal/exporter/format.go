package exporter

import (
	"fmt"
	"strings"
	"time"
)

// Format is an export file format.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// Content types of the export formats.
const (
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypeCSV  = "text/csv"
)

// DefaultFilePrefix is the prefix of download file names.
const DefaultFilePrefix = "relatorio_historico_completo_"

const fileTimestamp = "20060102_150405"

// ParseFormat reads a format name. "excel" is accepted as an alias of xlsx.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "xlsx", "excel":
		return FormatXLSX, nil
	case "csv":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", s)
	}
}

// Extension returns the file extension, including the dot.
func (f Format) Extension() string {
	return "." + string(f)
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	if f == FormatCSV {
		return ContentTypeCSV
	}
	return ContentTypeXLSX
}

// FileName builds a download name such as
// "relatorio_historico_completo_20250310_140500.xlsx".
func FileName(prefix string, format Format, at time.Time) string {
	if prefix == "" {
		prefix = DefaultFilePrefix
	}
	return prefix + at.Format(fileTimestamp) + format.Extension()
}
