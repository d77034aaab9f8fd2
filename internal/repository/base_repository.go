package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pnab-cultura/engine/pkg/database"
	appErr "github.com/pnab-cultura/engine/pkg/errors"
)

// BaseRepository defines common CRUD operations.
type BaseRepository[T any] interface {
	Create(ctx context.Context, obj *T) error
	GetByID(ctx context.Context, id any, dest *T) error
	Update(ctx context.Context, obj *T) error
	Delete(ctx context.Context, id any) error
}

type baseRepository[T any] struct {
	db     *gorm.DB
	entity string
}

func NewBaseRepository[T any](db *gorm.DB, entity string) BaseRepository[T] {
	return &baseRepository[T]{db: db, entity: entity}
}

func (r *baseRepository[T]) Create(ctx context.Context, obj *T) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(obj).Error; err != nil {
		return writeError(err, "create "+r.entity+" failed")
	}
	return nil
}

func (r *baseRepository[T]) GetByID(ctx context.Context, id any, dest *T) error {
	if err := r.db.WithContext(ctx).First(dest, "id = ?", id).Error; err != nil {
		return readError(err, r.entity)
	}
	return nil
}

func (r *baseRepository[T]) Update(ctx context.Context, obj *T) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Save(obj).Error; err != nil {
		return writeError(err, "update "+r.entity+" failed")
	}
	return nil
}

func (r *baseRepository[T]) Delete(ctx context.Context, id any) error {
	var t T
	res := r.db.WithContext(ctx).Delete(&t, "id = ?", id)
	if res.Error != nil {
		return appErr.Wrap(res.Error, appErr.CodeInternal, "delete "+r.entity+" failed")
	}
	if res.RowsAffected == 0 {
		return appErr.New(appErr.CodeNotFound, fmt.Sprintf("%s %v not found", r.entity, id))
	}
	return nil
}

// forUpdate locks the selected rows until the surrounding transaction ends.
func forUpdate(db *gorm.DB) *gorm.DB {
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}

func readError(err error, entity string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return appErr.New(appErr.CodeNotFound, entity+" not found")
	}
	return appErr.Wrap(err, appErr.CodeInternal, "get "+entity+" failed")
}

func writeError(err error, msg string) error {
	if database.IsUniqueViolation(err) {
		return appErr.Wrap(err, appErr.CodeConflict, msg+": duplicate")
	}
	return appErr.Wrap(err, appErr.CodeInternal, msg)
}
