package lifecycle

import "github.com/pnab-cultura/engine/internal/models"

// AggregateState summarises the evaluations attached to one project.
type AggregateState struct {
	Total      int `json:"total"`
	Awaiting   int `json:"awaiting"`
	InProgress int `json:"in_progress"`
	Concluded  int `json:"concluded"`
}

// AllConcluded is true when at least one evaluation exists and every one
// of them is concluded.
func (a AggregateState) AllConcluded() bool {
	return a.Total > 0 && a.Concluded == a.Total
}

// Aggregate counts evaluations by status.
func Aggregate(evals []models.Evaluation) AggregateState {
	var a AggregateState
	for _, e := range evals {
		a.Total++
		switch e.Status {
		case models.EvaluationAwaitingEvaluator:
			a.Awaiting++
		case models.EvaluationInProgress:
			a.InProgress++
		case models.EvaluationConcluded:
			a.Concluded++
		}
	}
	return a
}

// DerivedStatus is the status p should hold given its evaluations. Only an
// awaiting_evaluator_assignment project is ever promoted; any other status
// is returned unchanged, which makes repeated recomputation a no-op.
func DerivedStatus(current models.ProjectStatus, evals []models.Evaluation) models.ProjectStatus {
	if current == models.ProjectAwaitingEvaluatorAssignment && Aggregate(evals).AllConcluded() {
		return models.ProjectFullyEvaluated
	}
	return current
}
