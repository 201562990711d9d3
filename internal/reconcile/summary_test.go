package reconcile_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reqcheck/internal/reconcile"
	"reqcheck/internal/table"
	"reqcheck/pkg/contracts/domain"
)

func TestProblemLabel(t *testing.T) {
	assert.Equal(t, "Quebra de Requisito", reconcile.ProblemLabel("qr"))
	assert.Equal(t, "Conflito de Horário", reconcile.ProblemLabel(" CH "))
	assert.Equal(t, "Não especificado", reconcile.ProblemLabel(""))
	assert.Equal(t, "OUTRO", reconcile.ProblemLabel("outro"))
}

func TestClassifyDecision(t *testing.T) {
	tests := map[string]domain.DecisionStatus{
		"Aprovado":              domain.DecisionApproved,
		"aprovado pela CoC":     domain.DecisionApproved,
		"NEGADO":                domain.DecisionRejected,
		"Indeferido por prazo":  domain.DecisionRejected,
		"":                      domain.DecisionPending,
		"aguardando documentos": domain.DecisionPending,
	}
	for decision, want := range tests {
		assert.Equal(t, want, reconcile.ClassifyDecision(decision), decision)
	}
}

func TestSummarize(t *testing.T) {
	current := table.New("requerimentos", []string{"nusp", "Nome completo"}, [][]string{
		{"1", "Ana"}, {"1", "Ana"}, {"2", "Bruno"}, {"3", "Carla"}, {"4", "Davi"},
	})
	joined := joinedTable(
		[]string{"1", "Ana", "MAC0110", "2022", "1", "QR", "Aprovado"},
		[]string{"1", "Ana", "MAC0110", "2022", "1", "qr", "Aprovado"},
		[]string{"2", "Bruno", "MAC0121", "2022", "2", "CH", "Negado"},
		[]string{"2", "Bruno", "MAC0121", "2022", "2", "XX", ""},
	)

	s := reconcile.Summarize(current, joined)
	assert.Equal(t, 5, s.TotalRequests)
	assert.Equal(t, 2, s.StudentsWithHistory)
	assert.InDelta(t, 50.0, s.HistoryPercent, 1e-9)
	assert.Equal(t, 2, s.PrerequisiteBreaks)
	assert.Equal(t, 1, s.ScheduleConflicts)
}

func TestSummarize_EmptyCurrent(t *testing.T) {
	s := reconcile.Summarize(table.New("requerimentos", []string{"nusp"}, nil), joinedTable())
	assert.Equal(t, domain.Summary{}, s)
}

func TestStudentHistories(t *testing.T) {
	joined := joinedTable(
		[]string{"2", "Bruno", "MAC0121", "2022", "2", "ch", "Negado"},
		[]string{"1", "Ana", "MAC0110", "2022", "1", "QR", "Aprovado"},
		[]string{"1", "Ana", "MAT2453", "2023", "1", "", ""},
	)

	students := reconcile.StudentHistories(joined)
	require.Len(t, students, 2)

	want := []domain.StudentHistory{
		{
			Key:  1,
			Name: "Ana",
			Approved: []domain.HistoryEntry{
				{Course: "MAC0110", Year: "2022", Term: "1", ProblemCode: "QR", ProblemLabel: "Quebra de Requisito", Decision: "Aprovado", Status: domain.DecisionApproved},
			},
			History: []domain.HistoryEntry{
				{Course: "MAC0110", Year: "2022", Term: "1", ProblemCode: "QR", ProblemLabel: "Quebra de Requisito", Decision: "Aprovado", Status: domain.DecisionApproved},
				{Course: "MAT2453", Year: "2023", Term: "1", ProblemLabel: "Não especificado", Status: domain.DecisionPending},
			},
		},
		{
			Key:      2,
			Name:     "Bruno",
			Approved: []domain.HistoryEntry{},
			History: []domain.HistoryEntry{
				{Course: "MAC0121", Year: "2022", Term: "2", ProblemCode: "CH", ProblemLabel: "Conflito de Horário", Decision: "Negado", Status: domain.DecisionRejected},
			},
		},
	}
	if diff := cmp.Diff(want, students); diff != "" {
		t.Errorf("student histories mismatch (-want +got):\n%s", diff)
	}
}

func TestStudentHistories_Empty(t *testing.T) {
	students := reconcile.StudentHistories(joinedTable())
	assert.NotNil(t, students)
	assert.Empty(t, students)
}
