package infrastructure

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// BusinessMetrics holds all application-specific metrics
type BusinessMetrics struct {
	// HTTP metrics
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram
	HTTPActiveRequests  metric.Int64UpDownCounter

	// Reconciliation metrics
	RunsTotal      metric.Int64Counter
	SchemaFailures metric.Int64Counter
	DroppedRows    metric.Int64Counter
	JoinedRows     metric.Int64Histogram
	RunDuration    metric.Float64Histogram
	ExportsTotal   metric.Int64Counter

	// Access gate metrics
	LoginAttempts metric.Int64Counter
}

// CreateBusinessMetrics creates application-specific metrics
func CreateBusinessMetrics(meter metric.Meter) (*BusinessMetrics, error) {
	m := &BusinessMetrics{}
	var err error

	if m.HTTPRequestsTotal, err = meter.Int64Counter("reqcheck_http_requests",
		metric.WithDescription("Total number of HTTP requests")); err != nil {
		return nil, err
	}
	if m.HTTPRequestDuration, err = meter.Float64Histogram("reqcheck_http_request_duration",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s")); err != nil {
		return nil, err
	}
	if m.HTTPActiveRequests, err = meter.Int64UpDownCounter("reqcheck_http_active_requests",
		metric.WithDescription("Number of active HTTP requests")); err != nil {
		return nil, err
	}

	if m.RunsTotal, err = meter.Int64Counter("reqcheck_runs",
		metric.WithDescription("Total number of reconciliation runs by outcome")); err != nil {
		return nil, err
	}
	if m.SchemaFailures, err = meter.Int64Counter("reqcheck_schema_failures",
		metric.WithDescription("Runs rejected because of missing columns")); err != nil {
		return nil, err
	}
	if m.DroppedRows, err = meter.Int64Counter("reqcheck_dropped_rows",
		metric.WithDescription("Rows dropped because of an unreadable identifier")); err != nil {
		return nil, err
	}
	if m.JoinedRows, err = meter.Int64Histogram("reqcheck_joined_rows",
		metric.WithDescription("Rows in the joined table of a run"),
		metric.WithExplicitBucketBoundaries(0, 10, 50, 100, 500, 1000, 5000, 10000)); err != nil {
		return nil, err
	}
	if m.RunDuration, err = meter.Float64Histogram("reqcheck_run_duration",
		metric.WithDescription("Reconciliation run duration in seconds"),
		metric.WithUnit("s")); err != nil {
		return nil, err
	}
	if m.ExportsTotal, err = meter.Int64Counter("reqcheck_exports",
		metric.WithDescription("Total number of report exports by format")); err != nil {
		return nil, err
	}

	if m.LoginAttempts, err = meter.Int64Counter("reqcheck_login_attempts",
		metric.WithDescription("Login attempts by result")); err != nil {
		return nil, err
	}

	return m, nil
}

// RecordRun records the outcome of one reconciliation run.
func (m *BusinessMetrics) RecordRun(ctx context.Context, outcome string, duration time.Duration, joinedRows int) {
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	m.RunsTotal.Add(ctx, 1, attrs)
	m.RunDuration.Record(ctx, duration.Seconds(), attrs)
	if outcome == "success" {
		m.JoinedRows.Record(ctx, int64(joinedRows))
	}
}

// RecordSchemaFailure records a table rejected by schema validation.
func (m *BusinessMetrics) RecordSchemaFailure(ctx context.Context, table string) {
	m.SchemaFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("table", table)))
}

// RecordDroppedRows records rows dropped from the named table.
func (m *BusinessMetrics) RecordDroppedRows(ctx context.Context, table string, dropped int) {
	m.DroppedRows.Add(ctx, int64(dropped), metric.WithAttributes(attribute.String("table", table)))
}

// RecordExport records one export download.
func (m *BusinessMetrics) RecordExport(ctx context.Context, format string, cached bool) {
	m.ExportsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("format", format),
		attribute.Bool("cached", cached)))
}

// RecordLogin records one login attempt.
func (m *BusinessMetrics) RecordLogin(ctx context.Context, result string) {
	m.LoginAttempts.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}

// RecordHTTPRequest records one served request.
func (m *BusinessMetrics) RecordHTTPRequest(ctx context.Context, method, route string, status int, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
		attribute.Int("status", status))
	m.HTTPRequestsTotal.Add(ctx, 1, attrs)
	m.HTTPRequestDuration.Record(ctx, duration.Seconds(), attrs)
}
