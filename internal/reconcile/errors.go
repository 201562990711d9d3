package reconcile

import (
	"errors"
	"fmt"
	"runtime/debug"
	"slices"
	"strings"

	"reqcheck/pkg/contracts/domain"
)

// MissingColumns lists the required columns absent from one table.
type MissingColumns struct {
	Table     string   `json:"table"`
	Columns   []string `json:"missing"`
	Available []string `json:"available,omitempty"`
}

// SchemaError reports every missing column of every input table at once, so
// both files can be fixed in a single pass.
type SchemaError struct {
	Tables []MissingColumns `json:"tables"`
}

func (e *SchemaError) Error() string {
	lines := make([]string, 0, len(e.Tables))
	for _, m := range e.Tables {
		line := fmt.Sprintf("%s: missing columns - %s", m.Table, strings.Join(m.Columns, ", "))
		if len(m.Available) > 0 {
			line += fmt.Sprintf(" (available columns: %s)", strings.Join(m.Available, ", "))
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// Missing returns the missing columns reported for the named table.
func (e *SchemaError) Missing(tableName string) []string {
	for _, m := range e.Tables {
		if m.Table == tableName {
			return m.Columns
		}
	}
	return nil
}

// mergeSchemaErrors folds several schema errors into one, combining the entries
// of the same table. Nil errors are skipped; any other error type wins as is.
func mergeSchemaErrors(errs ...error) error {
	merged := &SchemaError{}
	for _, err := range errs {
		if err == nil {
			continue
		}
		var schemaErr *SchemaError
		if !errors.As(err, &schemaErr) {
			return err
		}
		for _, m := range schemaErr.Tables {
			merged.add(m)
		}
	}
	if len(merged.Tables) == 0 {
		return nil
	}
	return merged
}

func (e *SchemaError) add(m MissingColumns) {
	for i := range e.Tables {
		existing := &e.Tables[i]
		if existing.Table != m.Table {
			continue
		}
		for _, col := range m.Columns {
			if !slices.Contains(existing.Columns, col) {
				existing.Columns = append(existing.Columns, col)
			}
		}
		if len(existing.Available) == 0 {
			existing.Available = m.Available
		}
		return
	}
	e.Tables = append(e.Tables, MissingColumns{
		Table:     m.Table,
		Columns:   slices.Clone(m.Columns),
		Available: slices.Clone(m.Available),
	})
}

// DataQualityWarning reports rows dropped from a table because their
// identifier could not be read as an integer. It never stops a run.
type DataQualityWarning struct {
	Table   string
	Dropped int
}

func (w *DataQualityWarning) Error() string {
	return fmt.Sprintf("removed %d rows with invalid %s from %s", w.Dropped, KeyColumn, w.Table)
}

// Warning converts w into its report representation.
func (w *DataQualityWarning) Warning() domain.Warning {
	return domain.Warning{
		Table:   w.Table,
		Dropped: w.Dropped,
		Message: w.Error(),
	}
}

// UnexpectedError wraps any other failure of a run together with the stack at
// the point it was raised.
type UnexpectedError struct {
	Stage string
	Err   error
	Stack []byte
}

func (e *UnexpectedError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *UnexpectedError) Unwrap() error {
	return e.Err
}

// Unexpected wraps err as an UnexpectedError unless it already is a schema or
// unexpected error.
func Unexpected(stage string, err error) error {
	if err == nil {
		return nil
	}
	var schemaErr *SchemaError
	var unexpectedErr *UnexpectedError
	if errors.As(err, &schemaErr) || errors.As(err, &unexpectedErr) {
		return err
	}
	return &UnexpectedError{Stage: stage, Err: err, Stack: debug.Stack()}
}
