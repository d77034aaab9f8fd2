package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pnab-cultura/engine/internal/models"
	appErr "github.com/pnab-cultura/engine/pkg/errors"
)

// ProjectFilter narrows ListProjects. Zero fields are ignored.
type ProjectFilter struct {
	ProponentIDs []uuid.UUID
	NoticeID     uuid.UUID
	EvaluatorID  uuid.UUID
	Status       models.ProjectStatus
	Limit        int
	Offset       int
}

type ProjectRepository interface {
	BaseRepository[models.Project]
	// GetWithDetails loads the project with its budget, team, activities
	// and goals ordered by position.
	GetWithDetails(ctx context.Context, id uuid.UUID, dest *models.Project) error
	// GetForUpdate is GetWithDetails holding the project row lock.
	GetForUpdate(ctx context.Context, id uuid.UUID, dest *models.Project) error
	// ReplaceDetails swaps every child collection of p for the ones it carries.
	ReplaceDetails(ctx context.Context, p *models.Project) error
	// CountNumbered counts the notice's projects that already hold a
	// registration number.
	CountNumbered(ctx context.Context, noticeID uuid.UUID) (int64, error)
	List(ctx context.Context, f ProjectFilter) ([]models.Project, int64, error)
}

type projectRepository struct {
	BaseRepository[models.Project]
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{BaseRepository: NewBaseRepository[models.Project](db, "project"), db: db}
}

func preloadDetails(db *gorm.DB) *gorm.DB {
	byPosition := func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }
	return db.
		Preload("BudgetItems", byPosition).
		Preload("TeamMembers", byPosition).
		Preload("Activities", byPosition).
		Preload("Goals", byPosition)
}

func (r *projectRepository) GetWithDetails(ctx context.Context, id uuid.UUID, dest *models.Project) error {
	if err := preloadDetails(r.db.WithContext(ctx)).First(dest, "id = ?", id).Error; err != nil {
		return readError(err, "project")
	}
	return nil
}

func (r *projectRepository) GetForUpdate(ctx context.Context, id uuid.UUID, dest *models.Project) error {
	if err := preloadDetails(forUpdate(r.db.WithContext(ctx))).First(dest, "id = ?", id).Error; err != nil {
		return readError(err, "project")
	}
	return nil
}

func (r *projectRepository) ReplaceDetails(ctx context.Context, p *models.Project) error {
	db := r.db.WithContext(ctx)
	for _, child := range []any{&models.BudgetItem{}, &models.TeamMember{}, &models.Activity{}, &models.Goal{}} {
		if err := db.Where("project_id = ?", p.ID).Delete(child).Error; err != nil {
			return appErr.Wrap(err, appErr.CodeInternal, "clear project details failed")
		}
	}

	for i := range p.BudgetItems {
		p.BudgetItems[i].ID, p.BudgetItems[i].ProjectID, p.BudgetItems[i].Position = uuid.Nil, p.ID, i
	}
	for i := range p.TeamMembers {
		p.TeamMembers[i].ID, p.TeamMembers[i].ProjectID, p.TeamMembers[i].Position = uuid.Nil, p.ID, i
	}
	for i := range p.Activities {
		p.Activities[i].ID, p.Activities[i].ProjectID, p.Activities[i].Position = uuid.Nil, p.ID, i
	}
	for i := range p.Goals {
		p.Goals[i].ID, p.Goals[i].ProjectID, p.Goals[i].Position = uuid.Nil, p.ID, i
	}

	inserts := []struct {
		n   int
		val any
	}{
		{len(p.BudgetItems), &p.BudgetItems},
		{len(p.TeamMembers), &p.TeamMembers},
		{len(p.Activities), &p.Activities},
		{len(p.Goals), &p.Goals},
	}
	for _, in := range inserts {
		if in.n == 0 {
			continue
		}
		if err := db.Create(in.val).Error; err != nil {
			return appErr.Wrap(err, appErr.CodeInternal, "insert project details failed")
		}
	}
	return nil
}

func (r *projectRepository) CountNumbered(ctx context.Context, noticeID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Project{}).
		Where("notice_id = ? AND registration_number IS NOT NULL", noticeID).
		Count(&n).Error
	if err != nil {
		return 0, appErr.Wrap(err, appErr.CodeInternal, "count numbered projects failed")
	}
	return n, nil
}

func (r *projectRepository) List(ctx context.Context, f ProjectFilter) ([]models.Project, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Project{})
	if len(f.ProponentIDs) > 0 {
		q = q.Where("proponent_id IN ?", f.ProponentIDs)
	}
	if f.NoticeID != uuid.Nil {
		q = q.Where("notice_id = ?", f.NoticeID)
	}
	if f.EvaluatorID != uuid.Nil {
		q = q.Where("id IN (?)", r.db.Model(&models.Evaluation{}).Select("project_id").Where("evaluator_id = ?", f.EvaluatorID))
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, appErr.Wrap(err, appErr.CodeInternal, "count projects failed")
	}

	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}
	var out []models.Project
	if err := q.Order(clause.OrderByColumn{Column: clause.Column{Name: "created_at"}, Desc: true}).Find(&out).Error; err != nil {
		return nil, 0, appErr.Wrap(err, appErr.CodeInternal, "list projects failed")
	}
	return out, total, nil
}
