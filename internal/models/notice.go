package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Notice (edital) is a published call for proposals with a funding ceiling.
type Notice struct {
	ID            uuid.UUID                   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Code          string                      `gorm:"type:varchar(32);uniqueIndex;not null" json:"code" validate:"required,max=32"`
	Title         string                      `gorm:"not null" json:"title" validate:"required"`
	OpensAt       time.Time                   `gorm:"not null" json:"opens_at" validate:"required"`
	ClosesAt      time.Time                   `gorm:"not null" json:"closes_at" validate:"required,gtfield=OpensAt"`
	CeilingAmount decimal.Decimal             `gorm:"type:numeric(14,2);not null" json:"ceiling_amount"`
	TemplateFiles datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"template_files"`
	CreatedAt     time.Time                   `json:"created_at"`
	UpdatedAt     time.Time                   `json:"updated_at"`
}

// AcceptsSubmissionsAt reports whether t falls inside the submission window.
func (n *Notice) AcceptsSubmissionsAt(t time.Time) bool {
	return !t.Before(n.OpensAt) && !t.After(n.ClosesAt)
}
