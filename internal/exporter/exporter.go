package exporter

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"reqcheck/internal/infrastructure"
	"reqcheck/internal/table"
)

// Options configures an Exporter.
type Options struct {
	SheetName      string
	MaxColumnWidth int
	FilePrefix     string
}

// Artifact is a rendered export ready for download.
type Artifact struct {
	Format      Format
	FileName    string
	ContentType string
	Data        []byte
	// Cached reports whether Data was served from the cache.
	Cached bool
}

// Exporter renders report tables, reusing cached bytes for identical content.
type Exporter struct {
	opts   Options
	cache  *Cache
	logger *slog.Logger
	now    func() time.Time
}

// New creates an exporter. A nil cache disables caching.
func New(opts Options, cache *Cache, logger *slog.Logger) *Exporter {
	if opts.FilePrefix == "" {
		opts.FilePrefix = DefaultFilePrefix
	}
	if cache == nil {
		cache = NewCache(0)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{
		opts:   opts,
		cache:  cache,
		logger: infrastructure.WithComponent(logger, "exporter"),
		now:    time.Now,
	}
}

// Cache returns the exporter's artifact cache.
func (e *Exporter) Cache() *Cache {
	return e.cache
}

// Render serializes t in the given format without touching the cache.
func (e *Exporter) Render(t *table.Table, format Format) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch format {
	case FormatXLSX:
		err = WriteXLSX(&buf, t, XLSXOptions{SheetName: e.opts.SheetName, MaxColumnWidth: e.opts.MaxColumnWidth})
	case FormatCSV:
		err = WriteCSV(&buf, t)
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to render %s export: %w", format, err)
	}
	return buf.Bytes(), nil
}

// Export renders the full table in the given format. The download name carries
// the current timestamp even when the bytes come from the cache.
func (e *Exporter) Export(ctx context.Context, t *table.Table, format Format) (*Artifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	data, cached, err := e.cache.GetOrBuild(CacheKey(format, t), func() ([]byte, error) {
		return e.Render(t, format)
	})
	if err != nil {
		return nil, err
	}

	artifact := &Artifact{
		Format:      format,
		FileName:    FileName(e.opts.FilePrefix, format, e.now()),
		ContentType: format.ContentType(),
		Data:        data,
		Cached:      cached,
	}

	e.logger.DebugContext(ctx, "Export rendered",
		slog.String("format", string(format)),
		slog.String("file_name", artifact.FileName),
		slog.Int("rows", t.Len()),
		slog.Int("bytes", len(data)),
		slog.Bool("cached", cached),
		slog.Duration("duration", time.Since(start)))

	return artifact, nil
}
