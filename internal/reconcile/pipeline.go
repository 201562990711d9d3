package reconcile

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"reqcheck/internal/infrastructure"
	"reqcheck/internal/table"
	"reqcheck/pkg/contracts/domain"
)

// Pipeline stage names, used for logging and tracing.
const (
	StageNormalize = "normalize"
	StageValidate  = "validate"
	StageSanitize  = "sanitize"
	StageJoin      = "join"
	StageMetrics   = "metrics"
)

// StageHook wraps the execution of one stage. It must call fn exactly once and
// return its error.
type StageHook func(ctx context.Context, stage string, fn func(ctx context.Context) error) error

// Options tunes a run.
type Options struct {
	Metrics MetricsOptions
	// Debug attaches the original column labels to the report.
	Debug  bool
	Logger *slog.Logger
	Hook   StageHook
	Now    func() time.Time
}

// Result is the outcome of Run.
type Result struct {
	Report *domain.Report
	// Joined is the full joined table, the input of the exporters.
	Joined *table.Table
	// Current is the sanitized current table.
	Current *table.Table
	// Warnings holds the dropped-row warnings in table order.
	Warnings []*DataQualityWarning
}

// Run cross-checks the current table against the historical one. Schema
// problems of both tables are reported together, before any row is dropped.
// Errors are *SchemaError or *UnexpectedError.
func Run(ctx context.Context, history, current *table.Table, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = infrastructure.WithComponent(logger, "reconcile")
	hook := opts.Hook
	if hook == nil {
		hook = func(ctx context.Context, _ string, fn func(context.Context) error) error {
			return fn(ctx)
		}
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	report := &domain.Report{
		ID:          uuid.NewString(),
		GeneratedAt: now().UTC(),
	}
	if opts.Debug {
		report.Debug = &domain.DebugInfo{
			HistoryColumns: slices.Clone(history.Columns),
			CurrentColumns: slices.Clone(current.Columns),
		}
	}

	step := func(stage string, fn func(ctx context.Context) error) error {
		if err := ctx.Err(); err != nil {
			return Unexpected(stage, err)
		}
		start := time.Now()
		err := hook(ctx, stage, fn)
		logger.DebugContext(ctx, "Stage finished",
			slog.String("stage", stage),
			slog.Duration("duration", time.Since(start)),
			slog.Bool("ok", err == nil))
		return Unexpected(stage, err)
	}

	var normalizeErr error
	if err := step(StageNormalize, func(context.Context) error {
		normalizedHistory, histErr := NormalizeKeyColumn(history)
		if histErr == nil {
			history = normalizedHistory
		}
		normalizedCurrent, curErr := NormalizeKeyColumn(current)
		if curErr == nil {
			current = normalizedCurrent
		}
		history = MarkHistoryColumns(history)
		current = NormalizeNameColumn(current)
		normalizeErr = mergeSchemaErrors(histErr, curErr)
		return nil
	}); err != nil {
		return nil, err
	}

	if err := step(StageValidate, func(context.Context) error {
		return mergeSchemaErrors(normalizeErr, ValidateSchemas(history, current))
	}); err != nil {
		logger.WarnContext(ctx, "Schema validation failed", slog.String("error", err.Error()))
		return nil, err
	}

	var warnings []*DataQualityWarning
	if err := step(StageSanitize, func(context.Context) error {
		for _, t := range []**table.Table{&history, &current} {
			sanitized, err := SanitizeKeys(*t)
			if err != nil {
				return err
			}
			*t = sanitized.Table
			if w := sanitized.Warning(); w != nil {
				logger.WarnContext(ctx, "Rows dropped",
					slog.String("table", w.Table),
					slog.Int("dropped", w.Dropped))
				warnings = append(warnings, w)
			}
		}
		return nil
	}); err != nil {
		return nil, err
	}

	var joined *table.Table
	if err := step(StageJoin, func(context.Context) error {
		var err error
		joined, err = JoinHistory(current, history)
		return err
	}); err != nil {
		return nil, err
	}

	if err := step(StageMetrics, func(context.Context) error {
		report.Metrics = CalculateMetrics(joined, opts.Metrics)
		report.Summary = Summarize(current, joined)
		report.Students = StudentHistories(joined)
		return nil
	}); err != nil {
		return nil, err
	}

	report.Columns = slices.Clone(joined.Columns)
	report.RowCount = joined.Len()
	for _, w := range warnings {
		report.Warnings = append(report.Warnings, w.Warning())
	}

	logger.InfoContext(ctx, "Reconciliation completed",
		slog.String("report_id", report.ID),
		slog.Int("history_rows", history.Len()),
		slog.Int("current_rows", current.Len()),
		slog.Int("joined_rows", joined.Len()),
		slog.Int("students_with_history", report.Summary.StudentsWithHistory))

	return &Result{
		Report:   report,
		Joined:   joined,
		Current:  current,
		Warnings: warnings,
	}, nil
}
