package reconcile

import (
	"math"
	"slices"
	"strconv"
	"strings"

	"reqcheck/internal/table"
)

// Sanitized is the outcome of SanitizeKeys.
type Sanitized struct {
	Table   *table.Table
	Keys    []int64
	Dropped int
}

// Warning returns the data quality warning for the dropped rows, or nil when
// every row survived.
func (s *Sanitized) Warning() *DataQualityWarning {
	if s.Dropped == 0 {
		return nil
	}
	return &DataQualityWarning{Table: s.Table.Name, Dropped: s.Dropped}
}

// SanitizeKeys coerces every KeyColumn cell of t to an integer. Rows whose key
// cannot be read are dropped and counted; surviving keys are rewritten in
// canonical integer form. Parse failures never produce an error: the only error
// is a missing key column.
func SanitizeKeys(t *table.Table) (*Sanitized, error) {
	idx := t.ColumnIndex(KeyColumn)
	if idx < 0 {
		return nil, &SchemaError{Tables: []MissingColumns{{
			Table:     t.Name,
			Columns:   []string{KeyColumn},
			Available: t.Columns,
		}}}
	}

	out := &Sanitized{Keys: make([]int64, 0, t.Len())}
	rows := make([][]string, 0, t.Len())
	for _, row := range t.Rows {
		key, ok := ParseKey(row[idx])
		if !ok {
			out.Dropped++
			continue
		}
		kept := slices.Clone(row)
		kept[idx] = strconv.FormatInt(key, 10)
		rows = append(rows, kept)
		out.Keys = append(out.Keys, key)
	}
	out.Table = table.New(t.Name, t.Columns, rows)
	return out, nil
}

// ParseKey reads an identifier cell. Plain integers with an optional sign are
// accepted, as are numbers with an integral value such as "12345.0" or
// "1.2345E+4", which is how spreadsheets often store identifiers.
func ParseKey(cell string) (int64, bool) {
	s := strings.TrimSpace(cell)
	if s == "" {
		return 0, false
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, true
	}
	if strings.Trim(s, "0123456789+-.eE") != "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}
