package reconcile

import (
	"fmt"
	"slices"

	"reqcheck/internal/table"
)

// JoinedTableName is the name given to the joined table.
const JoinedTableName = "alunos_com_historico"

// JoinHistory inner-joins the sanitized current table with the sanitized
// historical table on KeyColumn.
//
// The historical columns the pipeline relies on are always marked with
// HistorySuffix; any other historical column whose label collides with a
// current column is suffixed as well, repeatedly, until it is unique. The
// result holds the current columns in order followed by every historical column
// except the key. A current column carrying one of the reserved historical
// labels (e.g. "disciplina_historico") is renamed with CurrentSuffix so the
// metrics always read the historical values. For each current row, in input order, it holds one row per
// historical row with the same key, in input order, so a key present N times in
// current and M times in history yields N×M rows. Current rows without history
// are left out.
func JoinHistory(current, history *table.Table) (*table.Table, error) {
	history = MarkHistoryColumns(history)

	currentKey := current.ColumnIndex(KeyColumn)
	historyKey := history.ColumnIndex(KeyColumn)
	if currentKey < 0 || historyKey < 0 {
		return nil, fmt.Errorf("join requires column %q in both %s and %s", KeyColumn, current.Name, history.Name)
	}

	reserved := make([]string, len(HistoryColumns))
	for i, col := range HistoryColumns {
		reserved[i] = Historical(col)
	}

	columns := make([]string, 0, len(current.Columns)+len(history.Columns))
	for _, col := range current.Columns {
		if slices.Contains(reserved, col) {
			for slices.Contains(reserved, col) || slices.Contains(current.Columns, col) {
				col += CurrentSuffix
			}
		}
		columns = append(columns, col)
	}
	for i, col := range history.Columns {
		if i == historyKey {
			continue
		}
		for slices.Contains(columns, col) {
			col += HistorySuffix
		}
		columns = append(columns, col)
	}

	byKey := make(map[int64][]int, history.Len())
	for i, row := range history.Rows {
		key, ok := ParseKey(row[historyKey])
		if !ok {
			continue
		}
		byKey[key] = append(byKey[key], i)
	}

	var rows [][]string
	for _, row := range current.Rows {
		key, ok := ParseKey(row[currentKey])
		if !ok {
			continue
		}
		for _, i := range byKey[key] {
			joined := make([]string, 0, len(columns))
			joined = append(joined, row...)
			for j, cell := range history.Rows[i] {
				if j != historyKey {
					joined = append(joined, cell)
				}
			}
			rows = append(rows, joined)
		}
	}

	return table.New(JoinedTableName, columns, rows), nil
}
