package reconcile

import (
	"slices"
	"strings"

	"reqcheck/internal/table"
)

// NormalizeKeyColumn returns a copy of t whose identifier column is renamed to
// KeyColumn. The first column whose folded label equals a folded synonym, or
// contains a folded keyword, wins. A table that already has a column labelled
// exactly KeyColumn is returned unchanged.
func NormalizeKeyColumn(t *table.Table) (*table.Table, error) {
	if t.HasColumn(KeyColumn) {
		return t.Clone(), nil
	}

	synonyms := foldAll(KeySynonyms)
	keywords := foldAll(keyKeywords)
	for _, col := range t.Columns {
		folded := table.Fold(col)
		if slices.Contains(synonyms, folded) || containsAny(folded, keywords) {
			return t.Rename(map[string]string{col: KeyColumn}), nil
		}
	}

	return nil, &SchemaError{Tables: []MissingColumns{{
		Table:     t.Name,
		Columns:   []string{KeyColumn},
		Available: slices.Clone(t.Columns),
	}}}
}

// MarkHistoryColumns returns a copy of the historical table with the columns of
// HistoryColumns renamed to their "_historico" label. Labels are matched after
// folding, and columns already carrying the suffix are left alone, so marking
// twice is the same as marking once.
func MarkHistoryColumns(t *table.Table) *table.Table {
	mapping := make(map[string]string, len(HistoryColumns))
	for _, canonical := range HistoryColumns {
		marked := Historical(canonical)
		if col := t.FindColumn(marked); col != "" {
			if col != marked {
				mapping[col] = marked
			}
			continue
		}
		if col := t.FindColumn(canonical); col != "" && col != KeyColumn {
			mapping[col] = marked
		}
	}
	return t.Rename(mapping)
}

// NormalizeNameColumn returns a copy of the current table with its full-name
// column renamed to NameColumn, matched after folding.
func NormalizeNameColumn(t *table.Table) *table.Table {
	col := t.FindColumn(NameColumn)
	if col == "" || col == NameColumn {
		return t.Clone()
	}
	return t.Rename(map[string]string{col: NameColumn})
}

func foldAll(labels []string) []string {
	out := make([]string, len(labels))
	for i, label := range labels {
		out[i] = table.Fold(label)
	}
	return out
}

func containsAny(s string, substrings []string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
