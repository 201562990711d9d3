package domain

import (
	"time"
)

// Report is the outcome of one reconciliation run: the historical requests of
// the students who filed a request this semester, plus derived statistics.
type Report struct {
	ID          string           `json:"id"`
	GeneratedAt time.Time        `json:"generated_at"`
	Columns     []string         `json:"columns"`
	RowCount    int              `json:"row_count"`
	Summary     Summary          `json:"summary"`
	Metrics     Metrics          `json:"metrics"`
	Students    []StudentHistory `json:"students"`
	Warnings    []Warning        `json:"warnings,omitempty"`
	Debug       *DebugInfo       `json:"debug,omitempty"`
}

// Summary holds the headline counters shown above the report.
type Summary struct {
	TotalRequests       int     `json:"total_requests"`
	StudentsWithHistory int     `json:"students_with_history"`
	HistoryPercent      float64 `json:"history_percent"`
	PrerequisiteBreaks  int     `json:"prerequisite_breaks"`
	ScheduleConflicts   int     `json:"schedule_conflicts"`
}

// Metrics is the statistics snapshot derived from the joined requests.
type Metrics struct {
	ApprovalRate float64       `json:"approval_rate"`
	Approved     int           `json:"approved"`
	Rejected     int           `json:"rejected"`
	MeanRequests float64       `json:"mean_requests_per_student"`
	TopCourses   []CourseCount `json:"top_courses"`
	Temporal     []PeriodCount `json:"temporal_distribution"`
}

// CourseCount is the number of historical requests for one course.
type CourseCount struct {
	Course string `json:"course"`
	Count  int    `json:"count"`
}

// PeriodCount is the number of historical requests filed in one "year/term".
type PeriodCount struct {
	Period string `json:"period"`
	Count  int    `json:"count"`
}

// DecisionStatus classifies the free-text decision of a request.
type DecisionStatus string

const (
	DecisionApproved DecisionStatus = "approved"
	DecisionRejected DecisionStatus = "rejected"
	DecisionPending  DecisionStatus = "pending"
)

// StudentHistory groups the prior requests of one student.
type StudentHistory struct {
	Key      int64          `json:"nusp"`
	Name     string         `json:"name"`
	Approved []HistoryEntry `json:"approved"`
	History  []HistoryEntry `json:"history"`
}

// HistoryEntry is one prior request of a student.
type HistoryEntry struct {
	Course       string         `json:"course"`
	Year         string         `json:"year"`
	Term         string         `json:"term"`
	ProblemCode  string         `json:"problem_code,omitempty"`
	ProblemLabel string         `json:"problem_label,omitempty"`
	Decision     string         `json:"decision"`
	Status       DecisionStatus `json:"status"`
}

// Warning is a non-fatal data quality finding, such as rows dropped because
// their identifier could not be parsed.
type Warning struct {
	Table   string `json:"table"`
	Dropped int    `json:"dropped"`
	Message string `json:"message"`
}

// DebugInfo carries the original column labels, shown when debug info is on.
type DebugInfo struct {
	HistoryColumns []string `json:"history_columns"`
	CurrentColumns []string `json:"current_columns"`
}
