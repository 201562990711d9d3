package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"reqcheck/internal/exporter"
	"reqcheck/internal/infrastructure"
	"reqcheck/internal/reconcile"
	"reqcheck/internal/table"
)

// Names given to the two inputs. They appear in schema errors, warnings and
// logs.
const (
	HistoryTableName = "consolidado"
	CurrentTableName = "requerimentos"
)

// Run outcomes recorded on the runs counter.
const (
	OutcomeSuccess     = "success"
	OutcomeSchemaError = "schema_error"
	OutcomeError       = "error"
	OutcomeCanceled    = "canceled"
)

// stageLoad names the upload parsing step in errors and spans.
const stageLoad = "load"

// ReportOptions configures a ReportService.
type ReportOptions struct {
	Metrics reconcile.MetricsOptions
}

// GenerateRequest carries the two spreadsheets of one run.
type GenerateRequest struct {
	History io.Reader
	Current io.Reader
	// Debug attaches the original column labels to the report.
	Debug bool
}

// ReportService runs the reconciliation pipeline and exports its results.
type ReportService struct {
	exporter *exporter.Exporter
	tracer   trace.Tracer
	metrics  *infrastructure.BusinessMetrics
	opts     ReportOptions
	logger   *slog.Logger
}

// NewReportService creates a report service. A nil tracer or metrics set is
// replaced by a no-op one.
func NewReportService(exp *exporter.Exporter, tracer trace.Tracer, metrics *infrastructure.BusinessMetrics, opts ReportOptions, logger *slog.Logger) (*ReportService, error) {
	if exp == nil {
		return nil, errors.New("report service requires an exporter")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if tracer == nil {
		tracer = tracenoop.NewTracerProvider().Tracer(infrastructure.InstrumentationName)
	}
	if metrics == nil {
		var err error
		metrics, err = infrastructure.CreateBusinessMetrics(metricnoop.NewMeterProvider().Meter(infrastructure.InstrumentationName))
		if err != nil {
			return nil, fmt.Errorf("failed to create no-op metrics: %w", err)
		}
	}

	return &ReportService{
		exporter: exp,
		tracer:   tracer,
		metrics:  metrics,
		opts:     opts,
		logger:   infrastructure.WithComponent(logger, "report_service"),
	}, nil
}

// Generate loads both uploads and cross-checks them. Errors are
// *reconcile.SchemaError or *reconcile.UnexpectedError; the latter wraps
// table.ErrLegacyWorkbook and table.ErrEmptyInput for unreadable uploads.
func (s *ReportService) Generate(ctx context.Context, req GenerateRequest) (*reconcile.Result, error) {
	if req.History == nil || req.Current == nil {
		return nil, ErrMissingInput
	}

	ctx, span := s.tracer.Start(ctx, "report.generate",
		trace.WithAttributes(attribute.Bool("report.debug", req.Debug)))
	defer span.End()

	start := time.Now()
	result, err := s.generate(ctx, req)
	duration := time.Since(start)

	outcome := runOutcome(err)
	joinedRows := 0
	if result != nil {
		joinedRows = result.Joined.Len()
	}
	s.metrics.RecordRun(ctx, outcome, duration, joinedRows)
	span.SetAttributes(attribute.String("report.outcome", outcome))

	if err != nil {
		var schemaErr *reconcile.SchemaError
		if errors.As(err, &schemaErr) {
			for _, m := range schemaErr.Tables {
				s.metrics.RecordSchemaFailure(ctx, m.Table)
			}
			s.logger.WarnContext(ctx, "Report rejected by schema validation",
				slog.String("error", err.Error()))
		} else {
			s.logger.ErrorContext(ctx, "Report generation failed",
				slog.String("outcome", outcome),
				slog.String("error", err.Error()))
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	for _, w := range result.Warnings {
		s.metrics.RecordDroppedRows(ctx, w.Table, w.Dropped)
	}
	span.SetAttributes(
		attribute.String("report.id", result.Report.ID),
		attribute.Int("report.joined_rows", joinedRows))

	s.logger.InfoContext(ctx, "Report generated",
		slog.String("report_id", result.Report.ID),
		slog.Int("joined_rows", joinedRows),
		slog.Int("warnings", len(result.Warnings)),
		slog.Duration("duration", duration))

	return result, nil
}

func (s *ReportService) generate(ctx context.Context, req GenerateRequest) (*reconcile.Result, error) {
	var history, current *table.Table
	err := s.stage(ctx, stageLoad, func(ctx context.Context) error {
		var err error
		if history, err = table.Load(req.History, HistoryTableName); err != nil {
			return err
		}
		current, err = table.Load(req.Current, CurrentTableName)
		return err
	})
	if err != nil {
		return nil, reconcile.Unexpected(stageLoad, err)
	}

	return reconcile.Run(ctx, history, current, reconcile.Options{
		Metrics: s.opts.Metrics,
		Debug:   req.Debug,
		Logger:  s.logger,
		Hook:    s.stage,
	})
}

// stage runs fn inside a child span named after the stage.
func (s *ReportService) stage(ctx context.Context, stage string, fn func(ctx context.Context) error) error {
	ctx, span := s.tracer.Start(ctx, "reconcile."+stage)
	defer span.End()

	if err := fn(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

// Export renders the joined table of a report in the given format.
func (s *ReportService) Export(ctx context.Context, joined *table.Table, format exporter.Format) (*exporter.Artifact, error) {
	if joined == nil {
		return nil, ErrNoReport
	}

	ctx, span := s.tracer.Start(ctx, "report.export",
		trace.WithAttributes(attribute.String("export.format", string(format))))
	defer span.End()

	artifact, err := s.exporter.Export(ctx, joined, format)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.ErrorContext(ctx, "Export failed",
			slog.String("format", string(format)),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to export report: %w", err)
	}

	span.SetAttributes(
		attribute.Bool("export.cached", artifact.Cached),
		attribute.Int("export.bytes", len(artifact.Data)))
	s.metrics.RecordExport(ctx, string(format), artifact.Cached)

	return artifact, nil
}

// CacheStats reports the export cache counters.
func (s *ReportService) CacheStats() exporter.CacheStats {
	return s.exporter.Cache().Stats()
}

func runOutcome(err error) string {
	var schemaErr *reconcile.SchemaError
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.As(err, &schemaErr):
		return OutcomeSchemaError
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return OutcomeCanceled
	default:
		return OutcomeError
	}
}
