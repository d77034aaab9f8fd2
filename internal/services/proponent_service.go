package services

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pnab-cultura/engine/internal/models"
	"github.com/pnab-cultura/engine/internal/repository"
	appErr "github.com/pnab-cultura/engine/pkg/errors"
	"github.com/pnab-cultura/engine/pkg/logger"
	"github.com/pnab-cultura/engine/pkg/utils"
)

type ProponentService interface {
	CreateProponent(ctx context.Context, actor Actor, in *ProponentInput) (*models.Proponent, error)
	GetProponent(ctx context.Context, actor Actor, proponentID uuid.UUID) (*models.Proponent, error)
	ListProponents(ctx context.Context, actor Actor) ([]models.Proponent, error)
	UpdateProponent(ctx context.Context, actor Actor, proponentID uuid.UUID, in *ProponentInput) (*models.Proponent, error)
}

// ProponentInput describes a proponent. Variant must match the kind the
// proponent was created with when updating.
type ProponentInput struct {
	DisplayName string `validate:"required,max=200"`
	Email       string `validate:"omitempty,email"`
	Phone       string `validate:"omitempty,max=32"`
	Bank        models.BankDetails
	Variant     models.ProponentVariant `validate:"required"`
}

type proponentService struct {
	proponents repository.ProponentRepository
}

func NewProponentService(proponents repository.ProponentRepository) ProponentService {
	return &proponentService{proponents: proponents}
}

var _ ProponentService = (*proponentService)(nil)

func (s *proponentService) CreateProponent(ctx context.Context, actor Actor, in *ProponentInput) (*models.Proponent, error) {
	logger.L().Info("create proponent called", zap.String("user_id", actor.UserID.String()))
	if err := actor.requireRole(models.RoleProponent); err != nil {
		return nil, err
	}

	p := &models.Proponent{UserID: actor.UserID}
	if err := applyProponent(p, in); err != nil {
		return nil, err
	}
	if err := s.proponents.Create(ctx, p); err != nil {
		return nil, err
	}

	logger.L().Info("proponent created", zap.String("proponent_id", p.ID.String()), zap.String("kind", string(p.Kind)))
	return p, nil
}

func (s *proponentService) GetProponent(ctx context.Context, actor Actor, proponentID uuid.UUID) (*models.Proponent, error) {
	logger.L().Info("get proponent", zap.String("proponent_id", proponentID.String()), zap.String("user_id", actor.UserID.String()))
	var p models.Proponent
	if err := s.proponents.GetByID(ctx, proponentID, &p); err != nil {
		return nil, err
	}
	if p.UserID != actor.UserID && !actor.IsAdmin() {
		return nil, appErr.New(appErr.CodeForbidden, "user does not own proponent")
	}
	return &p, nil
}

func (s *proponentService) ListProponents(ctx context.Context, actor Actor) ([]models.Proponent, error) {
	logger.L().Info("list proponents", zap.String("user_id", actor.UserID.String()))
	return s.proponents.ListByUser(ctx, actor.UserID)
}

func (s *proponentService) UpdateProponent(ctx context.Context, actor Actor, proponentID uuid.UUID, in *ProponentInput) (*models.Proponent, error) {
	logger.L().Info("update proponent", zap.String("proponent_id", proponentID.String()), zap.String("user_id", actor.UserID.String()))
	var p models.Proponent
	if err := s.proponents.GetByID(ctx, proponentID, &p); err != nil {
		return nil, err
	}
	if p.UserID != actor.UserID {
		return nil, appErr.New(appErr.CodeForbidden, "user does not own proponent")
	}
	if in.Variant != nil && in.Variant.Kind() != p.Kind {
		return nil, appErr.New(appErr.CodeInvalid, "proponent kind cannot change").
			WithMeta("kind", string(p.Kind))
	}
	if err := applyProponent(&p, in); err != nil {
		return nil, err
	}
	if err := s.proponents.Update(ctx, &p); err != nil {
		return nil, err
	}
	logger.L().Info("proponent updated", zap.String("proponent_id", p.ID.String()))
	return &p, nil
}

func applyProponent(p *models.Proponent, in *ProponentInput) error {
	if err := validateStruct(in); err != nil {
		return err
	}
	if err := validateStruct(in.Variant); err != nil {
		return err
	}
	p.DisplayName = utils.CleanText(in.DisplayName)
	p.Email = in.Email
	p.Phone = in.Phone
	p.Bank = in.Bank
	if err := p.SetVariant(in.Variant); err != nil {
		return appErr.Wrap(err, appErr.CodeInternal, "encode proponent details failed")
	}
	return nil
}
