package reconcile

import "reqcheck/internal/table"

// Canonical column labels.
const (
	KeyColumn      = "nusp"
	NameColumn     = "Nome completo"
	CourseColumn   = "disciplina"
	YearColumn     = "Ano"
	TermColumn     = "Semestre"
	ProblemColumn  = "problema"
	DecisionColumn = "parecer"

	// HistorySuffix marks columns that come from the historical table.
	HistorySuffix = "_historico"
	// CurrentSuffix renames current columns that clash with a marked
	// historical label.
	CurrentSuffix = "_atual"
)

// KeySynonyms are the accepted spellings of the identifier column, compared
// after folding.
var KeySynonyms = []string{"nusp", "numero usp", "número usp", "n° usp", "n usp"}

// keyKeywords match identifier columns by containment, e.g. "NUSP do aluno".
var keyKeywords = []string{"nusp", "numero usp", "número usp", "n° usp"}

// HistoryColumns lists the historical columns the pipeline depends on, in
// report order.
var HistoryColumns = []string{CourseColumn, YearColumn, TermColumn, ProblemColumn, DecisionColumn}

// Historical returns the marked label of a historical column.
func Historical(column string) string {
	return column + HistorySuffix
}

// Joined-table labels used by the metrics and views.
var (
	courseCol   = Historical(CourseColumn)
	yearCol     = Historical(YearColumn)
	termCol     = Historical(TermColumn)
	problemCol  = Historical(ProblemColumn)
	decisionCol = Historical(DecisionColumn)
)

// cells returns the cells of column, or nil when the table lacks it.
func cells(t *table.Table, column string) []string {
	values, err := t.Column(column)
	if err != nil {
		return nil
	}
	return values
}
