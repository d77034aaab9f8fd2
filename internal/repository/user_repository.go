package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/pnab-cultura/engine/internal/models"
)

type UserRepository interface {
	BaseRepository[models.User]
	GetByEmail(ctx context.Context, email string, dest *models.User) error
}

type userRepository struct {
	BaseRepository[models.User]
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{BaseRepository: NewBaseRepository[models.User](db, "user"), db: db}
}

func (r *userRepository) GetByEmail(ctx context.Context, email string, dest *models.User) error {
	if err := r.db.WithContext(ctx).Where("email = ?", strings.ToLower(email)).First(dest).Error; err != nil {
		return readError(err, "user")
	}
	return nil
}
