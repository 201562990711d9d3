package infrastructure

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.opentelemetry.io/otel/trace"

	"reqcheck/internal/config"
)

// redacted replaces the value of any attribute whose key is in secretKeys.
const redacted = "[REDACTED]"

var secretKeys = map[string]bool{
	"password":      true,
	"password_hash": true,
	"cookie":        true,
	"secret":        true,
}

// process-wide logger installed by InitializeLogger
var global struct {
	once   sync.Once
	mu     sync.Mutex
	logger *slog.Logger
	file   *os.File
}

// InitializeLogger builds the process logger from cfg and installs it as the
// slog default. Later calls return the first logger unchanged.
func InitializeLogger(cfg config.LoggingConfig) (*slog.Logger, error) {
	var err error
	global.once.Do(func() {
		var (
			logger *slog.Logger
			file   *os.File
		)
		logger, file, err = NewLogger(cfg, os.Stdout)
		if err != nil {
			return
		}
		global.mu.Lock()
		global.logger, global.file = logger, file
		global.mu.Unlock()
		slog.SetDefault(logger)
	})
	if err != nil {
		return nil, err
	}
	global.mu.Lock()
	defer global.mu.Unlock()
	return global.logger, nil
}

// NewLogger builds a logger writing to console, to cfg.FilePath, or both. The
// returned file is nil when no log file was opened; the caller closes it.
func NewLogger(cfg config.LoggingConfig, console io.Writer) (*slog.Logger, *os.File, error) {
	output, file, err := logOutput(cfg, console)
	if err != nil {
		return nil, nil, err
	}

	opts := &slog.HandlerOptions{
		AddSource:   cfg.Development,
		Level:       parseLogLevel(cfg.Level),
		ReplaceAttr: redactSecrets,
	}

	var handler slog.Handler = slog.NewJSONHandler(output, opts)
	if strings.EqualFold(cfg.Format, "text") {
		handler = slog.NewTextHandler(output, opts)
	}
	return slog.New(&traceHandler{Handler: handler}), file, nil
}

func logOutput(cfg config.LoggingConfig, console io.Writer) (io.Writer, *os.File, error) {
	mode := strings.ToLower(cfg.Output)
	if mode != "file" && mode != "both" {
		return console, nil, nil
	}

	file, err := openLogFile(cfg.FilePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	if mode == "both" {
		return io.MultiWriter(console, file), file, nil
	}
	return file, file, nil
}

// redactSecrets keeps credentials out of the log output, including attributes
// nested in groups.
func redactSecrets(_ []string, a slog.Attr) slog.Attr {
	if secretKeys[strings.ToLower(a.Key)] {
		return slog.String(a.Key, redacted)
	}
	return a
}

// traceHandler adds the correlation id and the active span id to records.
type traceHandler struct {
	slog.Handler
}

func (h *traceHandler) Handle(ctx context.Context, r slog.Record) error {
	if traceID := GetTraceID(ctx); traceID != "" {
		r.AddAttrs(slog.String("trace_id", traceID))
	}
	if spanCtx := trace.SpanContextFromContext(ctx); spanCtx.IsValid() {
		r.AddAttrs(slog.String("span_id", spanCtx.SpanID().String()))
	}
	return h.Handler.Handle(ctx, r)
}

func (h *traceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &traceHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *traceHandler) WithGroup(name string) slog.Handler {
	return &traceHandler{Handler: h.Handler.WithGroup(name)}
}

// parseLogLevel accepts the slog level names plus "warning"; anything else
// is info.
func parseLogLevel(level string) slog.Level {
	if strings.EqualFold(level, "warning") {
		level = "warn"
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// CloseLogFile closes the file opened by InitializeLogger, if any. Call it
// during shutdown.
func CloseLogFile() error {
	global.mu.Lock()
	defer global.mu.Unlock()

	if global.file == nil {
		return nil
	}
	err := global.file.Close()
	global.file = nil
	return err
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory for %s: %w", path, err)
	}
	return os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
}
