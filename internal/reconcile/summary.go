package reconcile

import (
	"cmp"
	"slices"
	"strings"

	"reqcheck/internal/table"
	"reqcheck/pkg/contracts/domain"
)

// Summarize computes the headline counters from the sanitized current table and
// the joined table.
func Summarize(current, joined *table.Table) domain.Summary {
	s := domain.Summary{
		TotalRequests:       current.Len(),
		StudentsWithHistory: distinct(cells(joined, KeyColumn)),
	}
	if students := distinct(cells(current, KeyColumn)); students > 0 {
		s.HistoryPercent = float64(s.StudentsWithHistory) / float64(students) * 100
	}
	for _, code := range cells(joined, problemCol) {
		switch strings.ToUpper(strings.TrimSpace(code)) {
		case ProblemPrerequisite:
			s.PrerequisiteBreaks++
		case ProblemSchedule:
			s.ScheduleConflicts++
		}
	}
	return s
}

// StudentHistories groups the joined rows by student. One entry is produced per
// distinct (key, full name) pair, sorted by full name; each entry lists every
// historical request of that key and, separately, the approved ones.
func StudentHistories(joined *table.Table) []domain.StudentHistory {
	students := make([]domain.StudentHistory, 0)
	keyIdx := joined.ColumnIndex(KeyColumn)
	if joined.Empty() || keyIdx < 0 {
		return students
	}
	nameIdx := joined.ColumnIndex(NameColumn)
	col := func(row []string, name string) string {
		if i := joined.ColumnIndex(name); i >= 0 {
			return row[i]
		}
		return ""
	}

	type student struct {
		key  int64
		name string
	}
	seen := make(map[student]bool)
	entries := make(map[int64][]domain.HistoryEntry)
	for _, row := range joined.Rows {
		key, ok := ParseKey(row[keyIdx])
		if !ok {
			continue
		}
		name := ""
		if nameIdx >= 0 {
			name = row[nameIdx]
		}
		if s := (student{key, name}); !seen[s] {
			seen[s] = true
			students = append(students, domain.StudentHistory{Key: key, Name: name})
		}

		code := strings.TrimSpace(col(row, problemCol))
		decision := col(row, decisionCol)
		entries[key] = append(entries[key], domain.HistoryEntry{
			Course:       col(row, courseCol),
			Year:         col(row, yearCol),
			Term:         col(row, termCol),
			ProblemCode:  strings.ToUpper(code),
			ProblemLabel: ProblemLabel(code),
			Decision:     decision,
			Status:       ClassifyDecision(decision),
		})
	}

	for i := range students {
		history := entries[students[i].Key]
		students[i].History = history
		students[i].Approved = make([]domain.HistoryEntry, 0)
		for _, e := range history {
			if IsApproved(e.Decision) {
				students[i].Approved = append(students[i].Approved, e)
			}
		}
	}

	slices.SortStableFunc(students, func(a, b domain.StudentHistory) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.Key, b.Key)
	})
	return students
}
