package services

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/pnab-cultura/engine/internal/models"
	"github.com/pnab-cultura/engine/internal/repository"
	appErr "github.com/pnab-cultura/engine/pkg/errors"
	"github.com/pnab-cultura/engine/pkg/logger"
)

type AuthService interface {
	// Register creates a proponent account.
	Register(ctx context.Context, email, password, name string) (*models.User, error)
	// CreateUser creates an account with any role. Reserved for the admin CLI.
	CreateUser(ctx context.Context, email, password, name string, role models.Role) (*models.User, error)
	Login(ctx context.Context, email, password string) (string, *models.User, error)
}

type authService struct {
	userRepo   repository.UserRepository
	hmacSecret []byte
	ttl        time.Duration
}

func NewAuthService(userRepo repository.UserRepository, secret []byte, ttl time.Duration) AuthService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &authService{
		userRepo:   userRepo,
		hmacSecret: secret,
		ttl:        ttl,
	}
}

var _ AuthService = (*authService)(nil)

func (s *authService) Register(ctx context.Context, email, password, name string) (*models.User, error) {
	return s.CreateUser(ctx, email, password, name, models.RoleProponent)
}

func (s *authService) CreateUser(ctx context.Context, email, password, name string, role models.Role) (*models.User, error) {
	logger.L().Info("create user called", zap.String("role", string(role)))

	user := &models.User{
		Email: strings.ToLower(strings.TrimSpace(email)),
		Name:  strings.TrimSpace(name),
		Role:  role,
	}
	if err := validateStruct(user); err != nil {
		return nil, err
	}
	if len(password) < 8 {
		return nil, appErr.New(appErr.CodeInvalid, "password must have at least 8 characters")
	}

	ph, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "hash password failed")
	}
	user.PasswordHash = string(ph)

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	logger.L().Info("user created", zap.String("user_id", user.ID.String()), zap.String("role", string(role)))
	return user, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	invalid := appErr.New(appErr.CodeUnauthorized, "invalid credentials")

	var user models.User
	if err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)), &user); err != nil {
		if appErr.IsCode(err, appErr.CodeNotFound) {
			return "", nil, invalid
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, invalid
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  user.ID.String(),
		"role": string(user.Role),
		"exp":  time.Now().Add(s.ttl).Unix(),
	})

	tokenString, err := token.SignedString(s.hmacSecret)
	if err != nil {
		return "", nil, appErr.Wrap(err, appErr.CodeInternal, "sign token failed")
	}

	logger.L().Info("user logged in", zap.String("user_id", user.ID.String()))
	return tokenString, &user, nil
}
