package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pnab-cultura/engine/internal/models"
	appErr "github.com/pnab-cultura/engine/pkg/errors"
)

type EvaluationRepository interface {
	BaseRepository[models.Evaluation]
	GetForUpdate(ctx context.Context, id uuid.UUID, dest *models.Evaluation) error
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.Evaluation, error)
	ListByEvaluator(ctx context.Context, evaluatorID uuid.UUID) ([]models.Evaluation, error)
}

type evaluationRepository struct {
	BaseRepository[models.Evaluation]
	db *gorm.DB
}

func NewEvaluationRepository(db *gorm.DB) EvaluationRepository {
	return &evaluationRepository{BaseRepository: NewBaseRepository[models.Evaluation](db, "evaluation"), db: db}
}

func (r *evaluationRepository) GetForUpdate(ctx context.Context, id uuid.UUID, dest *models.Evaluation) error {
	if err := forUpdate(r.db.WithContext(ctx)).First(dest, "id = ?", id).Error; err != nil {
		return readError(err, "evaluation")
	}
	return nil
}

func (r *evaluationRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.Evaluation, error) {
	var out []models.Evaluation
	if err := r.db.WithContext(ctx).Where("project_id = ?", projectID).Order("created_at ASC").Find(&out).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list evaluations by project failed")
	}
	return out, nil
}

func (r *evaluationRepository) ListByEvaluator(ctx context.Context, evaluatorID uuid.UUID) ([]models.Evaluation, error) {
	var out []models.Evaluation
	if err := r.db.WithContext(ctx).Where("evaluator_id = ?", evaluatorID).Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list evaluations by evaluator failed")
	}
	return out, nil
}
