// Package reconcile cross-checks the current semester's enrollment-exception
// requests against the historical request log.
//
// The pipeline runs leaf-first over two in-memory tables:
//
//	normalize -> mark -> validate -> sanitize -> join -> metrics
//
// NormalizeKeyColumn finds the student identifier column ("nusp") under any of
// its usual spellings, MarkHistoryColumns gives the historical columns their
// stable "_historico" names, ValidateSchemas reports every missing column of
// both tables in one error, SanitizeKeys drops rows whose identifier is not an
// integer, JoinHistory performs the inner join and CalculateMetrics,
// Summarize and StudentHistories derive the report.
//
// Run chains the stages and is what callers normally use. It never touches the
// network or the filesystem; loading and exporting live in the table and
// exporter packages.
//
// Errors follow three kinds: *SchemaError for missing columns (the user can fix
// the files and retry), *DataQualityWarning for dropped rows (reported, never
// fatal) and *UnexpectedError for everything else.
package reconcile
