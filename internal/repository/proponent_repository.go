package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pnab-cultura/engine/internal/models"
	appErr "github.com/pnab-cultura/engine/pkg/errors"
)

type ProponentRepository interface {
	BaseRepository[models.Proponent]
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Proponent, error)
}

type proponentRepository struct {
	BaseRepository[models.Proponent]
	db *gorm.DB
}

func NewProponentRepository(db *gorm.DB) ProponentRepository {
	return &proponentRepository{BaseRepository: NewBaseRepository[models.Proponent](db, "proponent"), db: db}
}

func (r *proponentRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Proponent, error) {
	var out []models.Proponent
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at ASC").Find(&out).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list proponents by user failed")
	}
	return out, nil
}
