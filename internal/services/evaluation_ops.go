package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/pnab-cultura/engine/internal/lifecycle"
	"github.com/pnab-cultura/engine/internal/metrics"
	"github.com/pnab-cultura/engine/internal/models"
	"github.com/pnab-cultura/engine/internal/repository"
	"github.com/pnab-cultura/engine/internal/scoring"
	appErr "github.com/pnab-cultura/engine/pkg/errors"
	"github.com/pnab-cultura/engine/pkg/logger"
	"github.com/pnab-cultura/engine/pkg/utils"
)

func (s *proposalService) AssignEvaluator(ctx context.Context, actor Actor, projectID, evaluatorID uuid.UUID) (*models.Evaluation, error) {
	logger.L().Info("assign evaluator called", zap.String("project_id", projectID.String()), zap.String("evaluator_id", evaluatorID.String()))
	if err := actor.requireRole(models.RoleAdmin); err != nil {
		return nil, err
	}

	var e models.Evaluation
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		var u models.User
		if err := tx.Users().GetByID(ctx, evaluatorID, &u); err != nil {
			return err
		}
		if u.Role != models.RoleEvaluator {
			return appErr.New(appErr.CodeInvalid, "user is not an evaluator").WithMeta("role", string(u.Role))
		}

		var p models.Project
		if err := tx.Projects().GetForUpdate(ctx, projectID, &p); err != nil {
			return err
		}
		if p.Status != models.ProjectAwaitingEvaluatorAssignment {
			return appErr.Newf(appErr.CodeInvalidTransition, "evaluators cannot be assigned to a %s project", p.Status).
				WithMeta("status", string(p.Status))
		}

		e = models.Evaluation{ProjectID: projectID, EvaluatorID: evaluatorID, Status: models.EvaluationAwaitingEvaluator}
		return tx.Evaluations().Create(ctx, &e)
	})
	if err != nil {
		return nil, err
	}

	logger.L().Info("evaluator assigned", zap.String("evaluation_id", e.ID.String()), zap.String("project_id", projectID.String()))
	return &e, nil
}

func (s *proposalService) StartEvaluation(ctx context.Context, actor Actor, evaluationID uuid.UUID) (*models.Evaluation, error) {
	logger.L().Info("start evaluation called", zap.String("evaluation_id", evaluationID.String()), zap.String("user_id", actor.UserID.String()))

	var e models.Evaluation
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		if err := tx.Evaluations().GetForUpdate(ctx, evaluationID, &e); err != nil {
			return err
		}
		if e.EvaluatorID != actor.UserID {
			return appErr.New(appErr.CodeForbidden, "evaluation assigned to another evaluator")
		}
		if err := lifecycle.StartEvaluation(&e, s.now()); err != nil {
			return err
		}
		return tx.Evaluations().Update(ctx, &e)
	})
	if err != nil {
		return nil, err
	}

	logger.L().Info("evaluation started", zap.String("evaluation_id", e.ID.String()))
	return &e, nil
}

func (s *proposalService) RecordEvaluation(ctx context.Context, actor Actor, evaluationID uuid.UUID, in *RecordInput) (*RecordResult, error) {
	logger.L().Info("record evaluation called",
		zap.String("evaluation_id", evaluationID.String()),
		zap.String("user_id", actor.UserID.String()),
		zap.Bool("submit", in.Submit))

	// The project id is needed to take the project lock first, so that
	// conclusion and aggregate recomputation share one lock order.
	var peek models.Evaluation
	if err := s.store.Evaluations().GetByID(ctx, evaluationID, &peek); err != nil {
		return nil, err
	}

	var (
		e       models.Evaluation
		p       models.Project
		res     scoring.Result
		from    models.ProjectStatus
		changed bool
	)
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		if err := tx.Projects().GetForUpdate(ctx, peek.ProjectID, &p); err != nil {
			return err
		}
		if err := tx.Evaluations().GetForUpdate(ctx, evaluationID, &e); err != nil {
			return err
		}
		if e.EvaluatorID != actor.UserID {
			return appErr.New(appErr.CodeForbidden, "evaluation assigned to another evaluator")
		}
		if err := lifecycle.EnsureRecordable(&e); err != nil {
			return err
		}

		var err error
		rounded := scoring.Round(in.Criteria)
		res, err = scoring.Evaluate(scoring.Submission{
			Criteria:        rounded,
			Rejected:        in.Rejected,
			RejectionReason: in.RejectionReason,
			Final:           in.Submit,
		})
		if err != nil {
			return err
		}

		e.Criteria = rounded
		e.Opinion = utils.CleanText(in.Opinion)
		e.Rejected = in.Rejected
		e.RejectionReason = ""
		if in.Rejected {
			e.RejectionReason = utils.CleanText(in.RejectionReason)
		}
		e.MandatorySum = res.MandatorySum
		e.BonusSum = res.BonusSum
		e.FinalScore = res.Final
		e.Disqualified = res.Disqualified

		if in.Submit {
			if err := lifecycle.ConcludeEvaluation(&e, s.now()); err != nil {
				return err
			}
		}
		if err := tx.Evaluations().Update(ctx, &e); err != nil {
			return err
		}
		if !in.Submit {
			return nil
		}

		from = p.Status
		changed, err = s.applyAggregate(ctx, tx, &p)
		return err
	})
	if err != nil {
		logger.L().Warn("record evaluation rejected", zap.String("evaluation_id", evaluationID.String()), zap.Error(err))
		return nil, err
	}

	if in.Submit {
		metrics.ObserveConclusion(&e)
		if changed {
			metrics.ObserveTransition(from, p.Status)
		}
		s.enqueueProjectTask(ctx, TypeRecomputeAggregate, p.ID, asynq.ProcessIn(30*time.Second))
	}

	logger.L().Info("evaluation recorded",
		zap.String("evaluation_id", e.ID.String()),
		zap.String("status", string(e.Status)),
		zap.Bool("disqualified", e.Disqualified),
		zap.String("project_status", string(p.Status)))
	return &RecordResult{Evaluation: &e, Score: res, ProjectStatus: p.Status}, nil
}

func (s *proposalService) ListEvaluations(ctx context.Context, actor Actor, projectID uuid.UUID) ([]models.Evaluation, error) {
	logger.L().Info("list evaluations", zap.String("project_id", projectID.String()), zap.String("user_id", actor.UserID.String()))

	var p models.Project
	if err := s.store.Projects().GetByID(ctx, projectID, &p); err != nil {
		return nil, err
	}
	if err := s.canRead(ctx, s.store, actor, &p); err != nil {
		return nil, err
	}
	evals, err := s.store.Evaluations().ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	switch actor.Role {
	case models.RoleAdmin:
		return evals, nil
	case models.RoleEvaluator:
		return filterEvaluations(evals, func(e models.Evaluation) bool { return e.EvaluatorID == actor.UserID }), nil
	default:
		// Proponents see the outcome of concluded reviews, never who made them.
		out := filterEvaluations(evals, func(e models.Evaluation) bool { return e.Status == models.EvaluationConcluded })
		for i := range out {
			out[i].EvaluatorID = uuid.Nil
		}
		return out, nil
	}
}

func (s *proposalService) ListAssignedEvaluations(ctx context.Context, actor Actor) ([]models.Evaluation, error) {
	logger.L().Info("list assigned evaluations", zap.String("user_id", actor.UserID.String()))
	if err := actor.requireRole(models.RoleEvaluator); err != nil {
		return nil, err
	}
	return s.store.Evaluations().ListByEvaluator(ctx, actor.UserID)
}

func filterEvaluations(in []models.Evaluation, keep func(models.Evaluation) bool) []models.Evaluation {
	out := make([]models.Evaluation, 0, len(in))
	for _, e := range in {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}

func (s *proposalService) RecomputeAggregate(ctx context.Context, projectID uuid.UUID) (*AggregateResult, error) {
	logger.L().Info("recompute aggregate called", zap.String("project_id", projectID.String()))

	var (
		p       models.Project
		from    models.ProjectStatus
		changed bool
		evals   []models.Evaluation
	)
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		if err := tx.Projects().GetForUpdate(ctx, projectID, &p); err != nil {
			return err
		}
		from = p.Status
		var err error
		changed, err = s.applyAggregate(ctx, tx, &p)
		if err != nil {
			return err
		}
		evals, err = tx.Evaluations().ListByProject(ctx, projectID)
		return err
	})
	if err != nil {
		return nil, err
	}

	if changed {
		metrics.ObserveTransition(from, p.Status)
	}
	logger.L().Info("aggregate recomputed", zap.String("project_id", projectID.String()), zap.String("status", string(p.Status)), zap.Bool("changed", changed))
	return &AggregateResult{
		ProjectID: p.ID,
		Status:    p.Status,
		Changed:   changed,
		State:     lifecycle.Aggregate(evals),
		Summary:   scoring.Summarize(evals),
	}, nil
}

// applyAggregate promotes p when its evaluations allow it. p must be held
// under the row lock of tx.
func (s *proposalService) applyAggregate(ctx context.Context, tx repository.Store, p *models.Project) (bool, error) {
	evals, err := tx.Evaluations().ListByProject(ctx, p.ID)
	if err != nil {
		return false, err
	}
	next := lifecycle.DerivedStatus(p.Status, evals)
	if next == p.Status {
		return false, nil
	}
	if err := lifecycle.Transition(p, next); err != nil {
		return false, err
	}
	now := s.now()
	p.EvaluatedAt = &now
	if err := tx.Projects().Update(ctx, p); err != nil {
		return false, err
	}
	return true, nil
}

func (s *proposalService) enqueueProjectTask(ctx context.Context, taskType string, projectID uuid.UUID, opts ...asynq.Option) {
	payload, err := json.Marshal(ProjectTaskPayload{ProjectID: projectID.String()})
	if err != nil {
		logger.L().Error("marshal task payload failed", zap.Error(err))
		return
	}
	opts = append(opts, asynq.TaskID(utils.TaskKey(taskType, projectID.String())))
	enqueue(ctx, s.queue, asynq.NewTask(taskType, payload), opts...)
}
