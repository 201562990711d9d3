package reconcile

import (
	"strings"

	"reqcheck/pkg/contracts/domain"
)

// Problem-type codes of the historical table.
const (
	ProblemPrerequisite = "QR"
	ProblemSchedule     = "CH"
)

var problemLabels = map[string]string{
	ProblemPrerequisite: "Quebra de Requisito",
	ProblemSchedule:     "Conflito de Horário",
}

const unspecifiedProblem = "Não especificado"

const approvedKeyword = "aprovado"

var rejectedKeywords = []string{"negado", "indeferido"}

// ProblemLabel returns the readable label of a problem-type code. Unknown codes
// are returned upper-cased.
func ProblemLabel(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return unspecifiedProblem
	}
	if label, ok := problemLabels[code]; ok {
		return label
	}
	return code
}

// IsApproved reports whether the decision text contains the approval keyword.
func IsApproved(decision string) bool {
	return strings.Contains(strings.ToLower(decision), approvedKeyword)
}

// IsRejected reports whether the decision text contains a rejection keyword.
// It is independent of IsApproved: "não aprovado, indeferido" is both.
func IsRejected(decision string) bool {
	lower := strings.ToLower(decision)
	for _, kw := range rejectedKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// ClassifyDecision maps a decision text to its status. Approval takes
// precedence; text matching neither keyword set, including blank text, is
// pending.
func ClassifyDecision(decision string) domain.DecisionStatus {
	switch {
	case IsApproved(decision):
		return domain.DecisionApproved
	case IsRejected(decision):
		return domain.DecisionRejected
	default:
		return domain.DecisionPending
	}
}
