package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role gates which operations an authenticated user may invoke.
type Role string

const (
	RoleProponent Role = "proponent"
	RoleEvaluator Role = "evaluator"
	RoleAdmin     Role = "admin"
)

// User represents a platform account.
type User struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email" validate:"required,email"`
	PasswordHash string         `gorm:"not null" json:"-"`
	Name         string         `gorm:"not null" json:"name" validate:"required"`
	Role         Role           `gorm:"type:varchar(16);not null;default:proponent;index" json:"role" validate:"required,oneof=proponent evaluator admin"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (r Role) IsValid() bool {
	return r == RoleProponent || r == RoleEvaluator || r == RoleAdmin
}
