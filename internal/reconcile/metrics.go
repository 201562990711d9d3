package reconcile

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"reqcheck/internal/table"
	"reqcheck/pkg/contracts/domain"
)

// PeriodOrder selects how the temporal distribution is sorted.
type PeriodOrder string

const (
	// PeriodChronological compares year then term numerically when both parse
	// as integers, so "2019/2" sorts before "2019/10".
	PeriodChronological PeriodOrder = "chronological"
	// PeriodLexicographic sorts period labels as plain text.
	PeriodLexicographic PeriodOrder = "lexicographic"
)

// DefaultTopCourses is the length of the top-courses ranking.
const DefaultTopCourses = 5

// MetricsOptions tunes CalculateMetrics.
type MetricsOptions struct {
	TopCourses  int
	PeriodOrder PeriodOrder
}

// ParsePeriodOrder validates a configured period order. Empty selects
// PeriodChronological.
func ParsePeriodOrder(s string) (PeriodOrder, error) {
	switch PeriodOrder(strings.ToLower(strings.TrimSpace(s))) {
	case "", PeriodChronological:
		return PeriodChronological, nil
	case PeriodLexicographic:
		return PeriodLexicographic, nil
	default:
		return "", fmt.Errorf("unknown period order %q", s)
	}
}

// CalculateMetrics derives the metrics snapshot from the joined table. An empty
// table yields the zero snapshot with empty rankings.
func CalculateMetrics(joined *table.Table, opts MetricsOptions) domain.Metrics {
	m := domain.Metrics{
		TopCourses: []domain.CourseCount{},
		Temporal:   []domain.PeriodCount{},
	}
	if joined.Empty() {
		return m
	}

	for _, decision := range cells(joined, decisionCol) {
		if IsApproved(decision) {
			m.Approved++
		}
		if IsRejected(decision) {
			m.Rejected++
		}
	}
	if decided := m.Approved + m.Rejected; decided > 0 {
		m.ApprovalRate = float64(m.Approved) / float64(decided) * 100
	}

	if keys := distinct(cells(joined, KeyColumn)); keys > 0 {
		m.MeanRequests = float64(joined.Len()) / float64(keys)
	}

	top := opts.TopCourses
	if top <= 0 {
		top = DefaultTopCourses
	}
	m.TopCourses = topCourses(cells(joined, courseCol), top)
	m.Temporal = temporalDistribution(cells(joined, yearCol), cells(joined, termCol), opts.PeriodOrder)

	return m
}

func topCourses(courses []string, limit int) []domain.CourseCount {
	counts := make([]domain.CourseCount, 0)
	index := make(map[string]int)
	for _, course := range courses {
		course = strings.TrimSpace(course)
		if course == "" {
			continue
		}
		i, ok := index[course]
		if !ok {
			i = len(counts)
			index[course] = i
			counts = append(counts, domain.CourseCount{Course: course})
		}
		counts[i].Count++
	}

	slices.SortStableFunc(counts, func(a, b domain.CourseCount) int {
		return cmp.Compare(b.Count, a.Count)
	})
	if len(counts) > limit {
		counts = counts[:limit]
	}
	return counts
}

func temporalDistribution(years, terms []string, order PeriodOrder) []domain.PeriodCount {
	periods := make([]domain.PeriodCount, 0)
	if years == nil || terms == nil {
		return periods
	}

	index := make(map[string]int)
	for i := range years {
		year, term := strings.TrimSpace(years[i]), strings.TrimSpace(terms[i])
		if year == "" && term == "" {
			continue
		}
		label := year + "/" + term
		j, ok := index[label]
		if !ok {
			j = len(periods)
			index[label] = j
			periods = append(periods, domain.PeriodCount{Period: label})
		}
		periods[j].Count++
	}

	if order == PeriodLexicographic {
		slices.SortFunc(periods, func(a, b domain.PeriodCount) int {
			return strings.Compare(a.Period, b.Period)
		})
	} else {
		slices.SortFunc(periods, func(a, b domain.PeriodCount) int {
			return comparePeriods(a.Period, b.Period)
		})
	}
	return periods
}

// comparePeriods orders "year/term" labels by year then term, numerically when
// both sides are integers and as text otherwise.
func comparePeriods(a, b string) int {
	aYear, aTerm, _ := strings.Cut(a, "/")
	bYear, bTerm, _ := strings.Cut(b, "/")
	if c := comparePart(aYear, bYear); c != 0 {
		return c
	}
	if c := comparePart(aTerm, bTerm); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}

func comparePart(a, b string) int {
	x, errA := strconv.Atoi(a)
	y, errB := strconv.Atoi(b)
	if errA == nil && errB == nil {
		return cmp.Compare(x, y)
	}
	return strings.Compare(a, b)
}

func distinct(values []string) int {
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		seen[v] = struct{}{}
	}
	return len(seen)
}
