package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pnab-cultura/engine/internal/models"
	appErr "github.com/pnab-cultura/engine/pkg/errors"
)

type NoticeRepository interface {
	BaseRepository[models.Notice]
	GetByCode(ctx context.Context, code string, dest *models.Notice) error
	// GetForUpdate reads the notice and holds its row lock until the
	// transaction ends. Registration numbering serialises on it.
	GetForUpdate(ctx context.Context, id uuid.UUID, dest *models.Notice) error
	List(ctx context.Context) ([]models.Notice, error)
	// Upsert inserts n or, when a notice with the same code exists,
	// overwrites its editable columns. n.ID is filled either way.
	Upsert(ctx context.Context, n *models.Notice) error
}

type noticeRepository struct {
	BaseRepository[models.Notice]
	db *gorm.DB
}

func NewNoticeRepository(db *gorm.DB) NoticeRepository {
	return &noticeRepository{BaseRepository: NewBaseRepository[models.Notice](db, "notice"), db: db}
}

func (r *noticeRepository) GetByCode(ctx context.Context, code string, dest *models.Notice) error {
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(dest).Error; err != nil {
		return readError(err, "notice")
	}
	return nil
}

func (r *noticeRepository) GetForUpdate(ctx context.Context, id uuid.UUID, dest *models.Notice) error {
	if err := forUpdate(r.db.WithContext(ctx)).First(dest, "id = ?", id).Error; err != nil {
		return readError(err, "notice")
	}
	return nil
}

func (r *noticeRepository) List(ctx context.Context) ([]models.Notice, error) {
	var out []models.Notice
	if err := r.db.WithContext(ctx).Order("opens_at DESC").Find(&out).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list notices failed")
	}
	return out, nil
}

func (r *noticeRepository) Upsert(ctx context.Context, n *models.Notice) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoUpdates: clause.AssignmentColumns([]string{"title", "opens_at", "closes_at", "ceiling_amount", "template_files", "updated_at"}),
	}).Create(n).Error
	if err != nil {
		return writeError(err, "upsert notice failed")
	}
	if n.ID == uuid.Nil {
		return r.GetByCode(ctx, n.Code, n)
	}
	return nil
}
