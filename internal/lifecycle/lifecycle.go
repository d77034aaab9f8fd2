// Package lifecycle holds the project and evaluation state machines: the
// guards on each transition, registration numbering and the aggregate rule
// that marks a project fully evaluated.
package lifecycle

import (
	"fmt"
	"time"

	"github.com/pnab-cultura/engine/internal/models"
	appErr "github.com/pnab-cultura/engine/pkg/errors"
)

// Transition moves p to target or fails with invalid_transition.
func Transition(p *models.Project, target models.ProjectStatus) error {
	if !p.Status.CanTransitionTo(target) {
		return InvalidProjectTransition(p.Status, target)
	}
	p.Status = target
	return nil
}

// InvalidProjectTransition builds the error returned for a refused project transition.
func InvalidProjectTransition(from, to models.ProjectStatus) *appErr.AppError {
	return appErr.Newf(appErr.CodeInvalidTransition, "project cannot move from %s to %s", from, to).
		WithMeta("from", string(from)).
		WithMeta("to", string(to))
}

// StartEvaluation moves e from awaiting_evaluator to in_progress.
func StartEvaluation(e *models.Evaluation, now time.Time) error {
	if e.Status != models.EvaluationAwaitingEvaluator {
		return appErr.New(appErr.CodeAlreadyStarted, "evaluation already started").
			WithMeta("status", string(e.Status))
	}
	e.Status = models.EvaluationInProgress
	e.StartedAt = &now
	return nil
}

// EnsureRecordable fails unless e accepts new scores.
func EnsureRecordable(e *models.Evaluation) error {
	if e.Status != models.EvaluationInProgress {
		return appErr.Newf(appErr.CodeInvalidTransition, "evaluation in status %s cannot be recorded", e.Status).
			WithMeta("status", string(e.Status))
	}
	return nil
}

// ConcludeEvaluation moves e from in_progress to concluded.
func ConcludeEvaluation(e *models.Evaluation, now time.Time) error {
	if !e.Status.CanTransitionTo(models.EvaluationConcluded) {
		return appErr.Newf(appErr.CodeInvalidTransition, "evaluation cannot move from %s to %s", e.Status, models.EvaluationConcluded).
			WithMeta("status", string(e.Status))
	}
	e.Status = models.EvaluationConcluded
	e.CompletedAt = &now
	return nil
}

// RegistrationNumber formats the number assigned at submission:
// the notice code followed by a zero-padded sequence, e.g. PNAB-2024-007.
// previouslyNumbered is how many projects of the notice already hold one.
func RegistrationNumber(noticeCode string, previouslyNumbered int64) string {
	return fmt.Sprintf("%s-%03d", noticeCode, previouslyNumbered+1)
}

// EnsureDeletable fails unless p is still a draft.
func EnsureDeletable(p *models.Project) error {
	if p.Status != models.ProjectDraft {
		return appErr.Newf(appErr.CodeInvalidTransition, "only drafts can be deleted, project is %s", p.Status).
			WithMeta("status", string(p.Status))
	}
	return nil
}

// EnsureEditable fails unless the proponent may still change p.
func EnsureEditable(p *models.Project) error {
	if p.Status != models.ProjectDraft {
		return appErr.Newf(appErr.CodeInvalidTransition, "project in status %s is no longer editable", p.Status).
			WithMeta("status", string(p.Status))
	}
	return nil
}
