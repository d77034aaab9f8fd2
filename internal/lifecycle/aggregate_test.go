package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pnab-cultura/engine/internal/models"
)

func evals(statuses ...models.EvaluationStatus) []models.Evaluation {
	out := make([]models.Evaluation, len(statuses))
	for i, s := range statuses {
		out[i].Status = s
	}
	return out
}

func TestDerivedStatus(t *testing.T) {
	awaiting := models.ProjectAwaitingEvaluatorAssignment
	tests := []struct {
		name    string
		current models.ProjectStatus
		evals   []models.Evaluation
		want    models.ProjectStatus
	}{
		{"no evaluations assigned", awaiting, nil, awaiting},
		{"one of two concluded", awaiting, evals(models.EvaluationConcluded, models.EvaluationInProgress), awaiting},
		{"one concluded one not started", awaiting, evals(models.EvaluationConcluded, models.EvaluationAwaitingEvaluator), awaiting},
		{"all concluded", awaiting, evals(models.EvaluationConcluded, models.EvaluationConcluded), models.ProjectFullyEvaluated},
		{"already promoted", models.ProjectFullyEvaluated, evals(models.EvaluationConcluded), models.ProjectFullyEvaluated},
		{"draft never promoted", models.ProjectDraft, evals(models.EvaluationConcluded), models.ProjectDraft},
		{"approved untouched", models.ProjectApproved, evals(models.EvaluationConcluded), models.ProjectApproved},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DerivedStatus(tt.current, tt.evals))
		})
	}
}

func TestAggregateCounts(t *testing.T) {
	a := Aggregate(evals(models.EvaluationConcluded, models.EvaluationInProgress, models.EvaluationAwaitingEvaluator, models.EvaluationConcluded))
	assert.Equal(t, AggregateState{Total: 4, Awaiting: 1, InProgress: 1, Concluded: 2}, a)
	assert.False(t, a.AllConcluded())
	assert.False(t, AggregateState{}.AllConcluded())
}
