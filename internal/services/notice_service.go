package services

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pnab-cultura/engine/internal/models"
	"github.com/pnab-cultura/engine/internal/repository"
	appErr "github.com/pnab-cultura/engine/pkg/errors"
	"github.com/pnab-cultura/engine/pkg/logger"
)

type NoticeService interface {
	CreateNotice(ctx context.Context, actor Actor, n *models.Notice) (*models.Notice, error)
	GetNotice(ctx context.Context, noticeID uuid.UUID) (*models.Notice, error)
	ListNotices(ctx context.Context) ([]models.Notice, error)
	// ImportNotices upserts notices by code. Used by the admin CLI.
	ImportNotices(ctx context.Context, notices []models.Notice) ([]models.Notice, error)
}

type noticeService struct {
	notices repository.NoticeRepository
}

func NewNoticeService(notices repository.NoticeRepository) NoticeService {
	return &noticeService{notices: notices}
}

var _ NoticeService = (*noticeService)(nil)

func (s *noticeService) CreateNotice(ctx context.Context, actor Actor, n *models.Notice) (*models.Notice, error) {
	logger.L().Info("create notice called", zap.String("code", n.Code), zap.String("user_id", actor.UserID.String()))
	if err := actor.requireRole(models.RoleAdmin); err != nil {
		return nil, err
	}
	if err := checkNotice(n); err != nil {
		return nil, err
	}
	if err := s.notices.Create(ctx, n); err != nil {
		return nil, err
	}
	logger.L().Info("notice created", zap.String("notice_id", n.ID.String()), zap.String("code", n.Code))
	return n, nil
}

func (s *noticeService) GetNotice(ctx context.Context, noticeID uuid.UUID) (*models.Notice, error) {
	var n models.Notice
	if err := s.notices.GetByID(ctx, noticeID, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

func (s *noticeService) ListNotices(ctx context.Context) ([]models.Notice, error) {
	return s.notices.List(ctx)
}

func (s *noticeService) ImportNotices(ctx context.Context, notices []models.Notice) ([]models.Notice, error) {
	logger.L().Info("import notices called", zap.Int("count", len(notices)))
	for i := range notices {
		if err := checkNotice(&notices[i]); err != nil {
			return nil, appErr.Wrap(err, appErr.CodeInvalid, "notice "+notices[i].Code+" is invalid")
		}
	}
	for i := range notices {
		if err := s.notices.Upsert(ctx, &notices[i]); err != nil {
			return nil, err
		}
	}
	logger.L().Info("notices imported", zap.Int("count", len(notices)))
	return notices, nil
}

func checkNotice(n *models.Notice) error {
	if err := validateStruct(n); err != nil {
		return err
	}
	if !n.CeilingAmount.IsPositive() {
		return appErr.New(appErr.CodeInvalid, "notice ceiling must be greater than zero")
	}
	return nil
}
