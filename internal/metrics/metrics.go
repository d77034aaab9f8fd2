// Package metrics exposes Prometheus collectors for the proposal lifecycle.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/pnab-cultura/engine/internal/models"
)

const namespace = "pnab"

var (
	ProjectTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "project_transitions_total",
		Help:      "Project status transitions, by origin and destination status.",
	}, []string{"from", "to"})

	EvaluationsConcluded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "evaluations_concluded_total",
		Help:      "Evaluations concluded, by outcome (qualified, disqualified, rejected).",
	}, []string{"outcome"})

	FinalScores = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "evaluation_final_score",
		Help:      "Final scores of concluded evaluations.",
		Buckets:   prometheus.LinearBuckets(0, 10, 8),
	})

	TasksProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tasks_processed_total",
		Help:      "Background tasks handled by the worker, by type and result.",
	}, []string{"type", "result"})
)

// ObserveTransition records a project moving between statuses.
func ObserveTransition(from, to models.ProjectStatus) {
	ProjectTransitions.WithLabelValues(string(from), string(to)).Inc()
}

// ObserveConclusion records a concluded evaluation.
func ObserveConclusion(e *models.Evaluation) {
	switch {
	case e.Rejected:
		EvaluationsConcluded.WithLabelValues("rejected").Inc()
	case e.Disqualified:
		EvaluationsConcluded.WithLabelValues("disqualified").Inc()
	default:
		EvaluationsConcluded.WithLabelValues("qualified").Inc()
	}
	if e.FinalScore != nil {
		FinalScores.Observe(*e.FinalScore)
	}
}
