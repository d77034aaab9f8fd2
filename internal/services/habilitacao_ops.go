package services

import (
	"context"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pnab-cultura/engine/internal/habilitacao"
	"github.com/pnab-cultura/engine/internal/models"
	"github.com/pnab-cultura/engine/internal/repository"
	appErr "github.com/pnab-cultura/engine/pkg/errors"
	"github.com/pnab-cultura/engine/pkg/logger"
	"github.com/pnab-cultura/engine/pkg/utils"
)

// CustomKeyPrefix marks documents requested by hand rather than generated.
const CustomKeyPrefix = "custom-"

func (s *proposalService) GenerateHabilitacaoChecklist(ctx context.Context, projectID uuid.UUID) ([]models.HabilitacaoDocument, error) {
	logger.L().Info("generate habilitacao checklist called", zap.String("project_id", projectID.String()))

	var docs []models.HabilitacaoDocument
	var plan habilitacao.Plan
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		var p models.Project
		if err := tx.Projects().GetForUpdate(ctx, projectID, &p); err != nil {
			return err
		}
		if err := habilitacao.EnsureEligible(p.Status); err != nil {
			return err
		}

		var pr models.Proponent
		if err := tx.Proponents().GetByID(ctx, p.ProponentID, &pr); err != nil {
			return err
		}
		variant, err := pr.Variant()
		if err != nil {
			return appErr.Wrap(err, appErr.CodeInternal, "decode proponent details failed")
		}

		existing, err := tx.Documents().ListByProject(ctx, projectID)
		if err != nil {
			return err
		}
		reqs, err := habilitacao.Generate(variant, s.now())
		if err != nil {
			return err
		}
		plan = habilitacao.Merge(projectID, existing, reqs)

		for i := range plan.Delete {
			if err := tx.Documents().Delete(ctx, plan.Delete[i].ID); err != nil {
				return err
			}
		}
		for i := range plan.Update {
			if err := tx.Documents().Update(ctx, &plan.Update[i]); err != nil {
				return err
			}
		}
		for i := range plan.Create {
			if err := tx.Documents().Create(ctx, &plan.Create[i]); err != nil {
				return err
			}
		}

		docs, err = tx.Documents().ListByProject(ctx, projectID)
		return err
	})
	if err != nil {
		logger.L().Warn("generate habilitacao checklist failed", zap.String("project_id", projectID.String()), zap.Error(err))
		return nil, err
	}

	logger.L().Info("habilitacao checklist generated",
		zap.String("project_id", projectID.String()),
		zap.Int("created", len(plan.Create)),
		zap.Int("updated", len(plan.Update)),
		zap.Int("deleted", len(plan.Delete)))
	return docs, nil
}

func (s *proposalService) AddDocumentRequest(ctx context.Context, actor Actor, projectID uuid.UUID, in *DocumentRequestInput) (*models.HabilitacaoDocument, error) {
	logger.L().Info("add document request called", zap.String("project_id", projectID.String()))
	if err := actor.requireRole(models.RoleAdmin); err != nil {
		return nil, err
	}
	name := utils.CleanText(in.Name)
	if name == "" {
		return nil, appErr.New(appErr.CodeInvalid, "document name is required")
	}

	var d models.HabilitacaoDocument
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		var p models.Project
		if err := tx.Projects().GetForUpdate(ctx, projectID, &p); err != nil {
			return err
		}
		if err := ensureDocumentsOpen(p.Status); err != nil {
			return err
		}
		existing, err := tx.Documents().ListByProject(ctx, projectID)
		if err != nil {
			return err
		}
		d = models.HabilitacaoDocument{
			ProjectID:   projectID,
			Key:         CustomKeyPrefix + strings.ReplaceAll(uuid.NewString(), "-", "")[:12],
			Name:        name,
			Description: utils.CleanText(in.Description),
			Obligatory:  in.Obligatory,
			Position:    len(existing),
			Status:      models.DocumentPending,
		}
		return tx.Documents().Create(ctx, &d)
	})
	if err != nil {
		return nil, err
	}
	logger.L().Info("document requested", zap.String("document_id", d.ID.String()), zap.String("key", d.Key))
	return &d, nil
}

func (s *proposalService) AttachDocument(ctx context.Context, actor Actor, documentID uuid.UUID, fileURL string) (*models.HabilitacaoDocument, error) {
	logger.L().Info("attach document called", zap.String("document_id", documentID.String()), zap.String("user_id", actor.UserID.String()))

	u, err := url.Parse(strings.TrimSpace(fileURL))
	if err != nil || (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
		return nil, appErr.New(appErr.CodeInvalid, "file url must be an absolute http(s) url")
	}

	var d models.HabilitacaoDocument
	err = s.store.WithTx(ctx, func(tx repository.Store) error {
		var p models.Project
		if err := s.lockDocumentProject(ctx, tx, documentID, &d, &p); err != nil {
			return err
		}
		if err := s.requireProponentOwner(ctx, tx, actor, p.ProponentID); err != nil {
			return err
		}
		if err := ensureDocumentsOpen(p.Status); err != nil {
			return err
		}
		if !d.Status.CanTransitionTo(models.DocumentSubmitted) {
			return appErr.Newf(appErr.CodeInvalidTransition, "document cannot move from %s to %s", d.Status, models.DocumentSubmitted)
		}
		d.Status = models.DocumentSubmitted
		d.FileURL = u.String()
		return tx.Documents().Update(ctx, &d)
	})
	if err != nil {
		return nil, err
	}
	logger.L().Info("document attached", zap.String("document_id", d.ID.String()))
	return &d, nil
}

func (s *proposalService) ReviewDocument(ctx context.Context, actor Actor, documentID uuid.UUID, in *ReviewInput) (*models.HabilitacaoDocument, error) {
	logger.L().Info("review document called", zap.String("document_id", documentID.String()), zap.Bool("approve", in.Approve))
	if err := actor.requireRole(models.RoleAdmin); err != nil {
		return nil, err
	}
	target := models.DocumentApproved
	if !in.Approve {
		target = models.DocumentRejected
		if utils.IsBlank(in.Note) {
			return nil, appErr.New(appErr.CodeInvalid, "a rejected document requires a review note")
		}
	}

	var d models.HabilitacaoDocument
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		var p models.Project
		if err := s.lockDocumentProject(ctx, tx, documentID, &d, &p); err != nil {
			return err
		}
		if !d.Status.CanTransitionTo(target) {
			return appErr.Newf(appErr.CodeInvalidTransition, "document cannot move from %s to %s", d.Status, target)
		}
		d.Status = target
		d.ReviewNote = utils.CleanText(in.Note)
		return tx.Documents().Update(ctx, &d)
	})
	if err != nil {
		return nil, err
	}
	logger.L().Info("document reviewed", zap.String("document_id", d.ID.String()), zap.String("status", string(d.Status)))
	return &d, nil
}

func (s *proposalService) SetDocumentObligatory(ctx context.Context, actor Actor, documentID uuid.UUID, obligatory bool) (*models.HabilitacaoDocument, error) {
	logger.L().Info("set document obligatory called", zap.String("document_id", documentID.String()), zap.Bool("obligatory", obligatory))
	if err := actor.requireRole(models.RoleAdmin); err != nil {
		return nil, err
	}

	var d models.HabilitacaoDocument
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		var p models.Project
		if err := s.lockDocumentProject(ctx, tx, documentID, &d, &p); err != nil {
			return err
		}
		d.Obligatory = obligatory
		return tx.Documents().Update(ctx, &d)
	})
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *proposalService) ListDocuments(ctx context.Context, actor Actor, projectID uuid.UUID) ([]models.HabilitacaoDocument, error) {
	logger.L().Info("list documents", zap.String("project_id", projectID.String()), zap.String("user_id", actor.UserID.String()))

	var p models.Project
	if err := s.store.Projects().GetByID(ctx, projectID, &p); err != nil {
		return nil, err
	}
	if !actor.IsAdmin() {
		if err := s.requireProponentOwner(ctx, s.store, actor, p.ProponentID); err != nil {
			return nil, err
		}
	}
	return s.store.Documents().ListByProject(ctx, projectID)
}

// lockDocumentProject loads the document and its project, holding the
// project row lock.
func (s *proposalService) lockDocumentProject(ctx context.Context, tx repository.Store, documentID uuid.UUID, d *models.HabilitacaoDocument, p *models.Project) error {
	if err := tx.Documents().GetByID(ctx, documentID, d); err != nil {
		return err
	}
	if err := tx.Projects().GetForUpdate(ctx, d.ProjectID, p); err != nil {
		return err
	}
	// reread under the lock
	return tx.Documents().GetByID(ctx, documentID, d)
}

func ensureDocumentsOpen(status models.ProjectStatus) error {
	switch status {
	case models.ProjectApproved, models.ProjectWithPendencies, models.ProjectInExecution:
		return nil
	default:
		return appErr.New(appErr.CodeNotEligibleForHabilitacao, "documents are only handled for approved projects").
			WithMeta("status", string(status))
	}
}
