package services

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pnab-cultura/engine/internal/habilitacao"
	"github.com/pnab-cultura/engine/internal/lifecycle"
	"github.com/pnab-cultura/engine/internal/metrics"
	"github.com/pnab-cultura/engine/internal/models"
	"github.com/pnab-cultura/engine/internal/repository"
	appErr "github.com/pnab-cultura/engine/pkg/errors"
	"github.com/pnab-cultura/engine/pkg/logger"
	"github.com/pnab-cultura/engine/pkg/utils"
)

func (s *proposalService) DecideProject(ctx context.Context, actor Actor, projectID uuid.UUID, in *DecisionInput) (*models.Project, error) {
	logger.L().Info("decide project called", zap.String("project_id", projectID.String()), zap.Bool("approve", in.Approve))
	if err := actor.requireRole(models.RoleAdmin); err != nil {
		return nil, err
	}

	target := models.ProjectApproved
	if !in.Approve {
		target = models.ProjectRejected
		if utils.IsBlank(in.Reason) {
			return nil, appErr.New(appErr.CodeMissingRejectionReason, "a rejection requires a reason")
		}
	}

	p, from, err := s.transition(ctx, projectID, target, func(tx repository.Store, p *models.Project) error {
		p.DecisionReason = utils.CleanText(in.Reason)
		now := s.now()
		p.DecidedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}

	if p.Status == models.ProjectApproved {
		s.enqueueProjectTask(ctx, TypeHabilitacaoGenerate, p.ID)
	}
	logger.L().Info("project decided", zap.String("project_id", p.ID.String()), zap.String("from", string(from)), zap.String("status", string(p.Status)))
	return p, nil
}

func (s *proposalService) FlagPendencies(ctx context.Context, actor Actor, projectID uuid.UUID, reason string) (*models.Project, error) {
	logger.L().Info("flag pendencies called", zap.String("project_id", projectID.String()))
	if err := actor.requireRole(models.RoleAdmin); err != nil {
		return nil, err
	}
	if utils.IsBlank(reason) {
		return nil, appErr.New(appErr.CodeInvalid, "a pendency reason is required")
	}

	p, _, err := s.transition(ctx, projectID, models.ProjectWithPendencies, func(tx repository.Store, p *models.Project) error {
		p.PendencyReason = utils.CleanText(reason)
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.L().Info("pendencies flagged", zap.String("project_id", p.ID.String()))
	return p, nil
}

func (s *proposalService) ResolvePendencies(ctx context.Context, actor Actor, projectID uuid.UUID) (*models.Project, error) {
	logger.L().Info("resolve pendencies called", zap.String("project_id", projectID.String()))
	if err := actor.requireRole(models.RoleAdmin); err != nil {
		return nil, err
	}

	p, _, err := s.transition(ctx, projectID, models.ProjectApproved, func(tx repository.Store, p *models.Project) error {
		if err := requireDocumentsApproved(ctx, tx, p.ID); err != nil {
			return err
		}
		p.PendencyReason = ""
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.L().Info("pendencies resolved", zap.String("project_id", p.ID.String()))
	return p, nil
}

func (s *proposalService) StartExecution(ctx context.Context, actor Actor, projectID uuid.UUID) (*models.Project, error) {
	logger.L().Info("start execution called", zap.String("project_id", projectID.String()))
	if err := actor.requireRole(models.RoleAdmin); err != nil {
		return nil, err
	}

	p, _, err := s.transition(ctx, projectID, models.ProjectInExecution, func(tx repository.Store, p *models.Project) error {
		return requireDocumentsApproved(ctx, tx, p.ID)
	})
	if err != nil {
		return nil, err
	}
	logger.L().Info("execution started", zap.String("project_id", p.ID.String()))
	return p, nil
}

func (s *proposalService) CompleteProject(ctx context.Context, actor Actor, projectID uuid.UUID) (*models.Project, error) {
	logger.L().Info("complete project called", zap.String("project_id", projectID.String()))
	if err := actor.requireRole(models.RoleAdmin); err != nil {
		return nil, err
	}

	p, _, err := s.transition(ctx, projectID, models.ProjectCompleted, nil)
	if err != nil {
		return nil, err
	}
	logger.L().Info("project completed", zap.String("project_id", p.ID.String()))
	return p, nil
}

// transition locks the project, checks the move to target, lets mutate
// adjust the project and persists it. It returns the status left behind.
func (s *proposalService) transition(ctx context.Context, projectID uuid.UUID, target models.ProjectStatus, mutate func(tx repository.Store, p *models.Project) error) (*models.Project, models.ProjectStatus, error) {
	var p models.Project
	var from models.ProjectStatus
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		if err := tx.Projects().GetForUpdate(ctx, projectID, &p); err != nil {
			return err
		}
		from = p.Status
		if !p.Status.CanTransitionTo(target) {
			return lifecycle.InvalidProjectTransition(p.Status, target)
		}
		if mutate != nil {
			if err := mutate(tx, &p); err != nil {
				return err
			}
		}
		if err := lifecycle.Transition(&p, target); err != nil {
			return err
		}
		return tx.Projects().Update(ctx, &p)
	})
	if err != nil {
		return nil, "", err
	}
	metrics.ObserveTransition(from, p.Status)
	return &p, from, nil
}

func requireDocumentsApproved(ctx context.Context, tx repository.Store, projectID uuid.UUID) error {
	docs, err := tx.Documents().ListByProject(ctx, projectID)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		return appErr.New(appErr.CodeInvalidTransition, "habilitação checklist has not been generated")
	}
	if pending := habilitacao.Pending(docs); len(pending) > 0 {
		keys := make([]string, 0, len(pending))
		for _, d := range pending {
			keys = append(keys, d.Key)
		}
		return appErr.New(appErr.CodeInvalidTransition, "obligatory documents are not approved").
			WithMeta("pending", keys)
	}
	return nil
}
