package reconcile

import (
	"strings"

	"reqcheck/internal/table"
)

// ValidateSchemas checks that the normalized historical table has the key and
// the marked historical columns, and the current table has the key and the
// full-name column. Every missing column of both tables is reported in one
// *SchemaError; historical columns are reported without their suffix.
func ValidateSchemas(history, current *table.Table) error {
	required := []string{KeyColumn}
	for _, col := range HistoryColumns {
		required = append(required, Historical(col))
	}

	var missing []MissingColumns
	if cols := missingColumns(history, required); len(cols) > 0 {
		for i, col := range cols {
			cols[i] = strings.TrimSuffix(col, HistorySuffix)
		}
		missing = append(missing, MissingColumns{Table: history.Name, Columns: cols})
	}
	if cols := missingColumns(current, []string{KeyColumn, NameColumn}); len(cols) > 0 {
		missing = append(missing, MissingColumns{Table: current.Name, Columns: cols})
	}

	if len(missing) > 0 {
		return &SchemaError{Tables: missing}
	}
	return nil
}

func missingColumns(t *table.Table, required []string) []string {
	var missing []string
	for _, col := range required {
		if !t.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	return missing
}
