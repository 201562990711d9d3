package table

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold normalizes a header label for tolerant comparisons: surrounding space is
// trimmed, inner whitespace collapsed, letters lower-cased and diacritics removed,
// so "  Número   USP" folds to "numero usp".
func Fold(label string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, label)
	if err != nil {
		stripped = label
	}
	return strings.Join(strings.Fields(strings.ToLower(stripped)), " ")
}

// FindColumn returns the label of the first column whose folded form equals the
// folded candidate, or "" when none matches.
func (t *Table) FindColumn(candidate string) string {
	want := Fold(candidate)
	for _, col := range t.Columns {
		if Fold(col) == want {
			return col
		}
	}
	return ""
}
