// Package services implements the business logic layer of reqcheck. It sits
// between the HTTP handlers (and the batch CLI) and the reconciliation
// pipeline, so both entry points load, cross-check and export spreadsheets
// the same way.
//
// # Services
//
//	ReportService  loads the two uploads, runs reconcile.Run with one span per
//	               stage, records the run metrics and exports joined tables
//	               through the cached exporter.
//	HealthService  answers the health, liveness and version endpoints.
//
// # Common Service Pattern
//
// Services take their collaborators and a *slog.Logger in the constructor,
// accept a context.Context on every blocking method and return plain errors.
// Domain errors from internal/reconcile and internal/table are passed through
// unchanged so the HTTP layer can map them to problem details:
//
//	result, err := reports.Generate(ctx, services.GenerateRequest{
//	    History: historyFile,
//	    Current: currentFile,
//	})
//	var schemaErr *reconcile.SchemaError
//	if errors.As(err, &schemaErr) {
//	    // 422 with the missing columns
//	}
package services
