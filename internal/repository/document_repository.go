package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pnab-cultura/engine/internal/models"
	appErr "github.com/pnab-cultura/engine/pkg/errors"
)

type DocumentRepository interface {
	BaseRepository[models.HabilitacaoDocument]
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.HabilitacaoDocument, error)
}

type documentRepository struct {
	BaseRepository[models.HabilitacaoDocument]
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{BaseRepository: NewBaseRepository[models.HabilitacaoDocument](db, "document"), db: db}
}

func (r *documentRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.HabilitacaoDocument, error) {
	var out []models.HabilitacaoDocument
	if err := r.db.WithContext(ctx).Where("project_id = ?", projectID).Order("position ASC").Find(&out).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list documents failed")
	}
	return out, nil
}
