package models

import (
	"time"

	"github.com/google/uuid"
)

// HabilitacaoDocument is one entry of an approved project's compliance
// checklist. Generated entries carry a stable Key; ad-hoc requests use a
// "custom-" key and are never touched by regeneration.
type HabilitacaoDocument struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ProjectID   uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_hab_docs_project_key,priority:1" json:"project_id"`
	Key         string         `gorm:"type:varchar(64);not null;uniqueIndex:idx_hab_docs_project_key,priority:2" json:"key"`
	Name        string         `gorm:"not null" json:"name" validate:"required"`
	Description string         `gorm:"type:text" json:"description"`
	Obligatory  bool           `gorm:"not null;default:true" json:"obligatory"`
	Generated   bool           `gorm:"not null;default:false" json:"generated"`
	Position    int            `gorm:"not null;default:0" json:"position"`
	Status      DocumentStatus `gorm:"type:varchar(16);not null;default:pending" json:"status"`
	FileURL     string         `gorm:"type:text" json:"file_url,omitempty"`
	ReviewNote  string         `gorm:"type:text" json:"review_note,omitempty"`
	GeneratedAt *time.Time     `json:"generated_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}
