package models

import (
	"time"

	"github.com/google/uuid"
)

// Criteria holds an evaluator's scores. A–E are mandatory (0–10), F–I are
// bonus criteria (0–5). Nil means not yet scored.
type Criteria struct {
	A *float64 `gorm:"type:numeric(4,2)" json:"a"`
	B *float64 `gorm:"type:numeric(4,2)" json:"b"`
	C *float64 `gorm:"type:numeric(4,2)" json:"c"`
	D *float64 `gorm:"type:numeric(4,2)" json:"d"`
	E *float64 `gorm:"type:numeric(4,2)" json:"e"`
	F *float64 `gorm:"type:numeric(4,2)" json:"f"`
	G *float64 `gorm:"type:numeric(4,2)" json:"g"`
	H *float64 `gorm:"type:numeric(4,2)" json:"h"`
	I *float64 `gorm:"type:numeric(4,2)" json:"i"`
}

// Mandatory returns A–E in order.
func (c Criteria) Mandatory() [5]*float64 { return [5]*float64{c.A, c.B, c.C, c.D, c.E} }

// Bonus returns F–I in order.
func (c Criteria) Bonus() [4]*float64 { return [4]*float64{c.F, c.G, c.H, c.I} }

// Evaluation (avaliação) is one evaluator's review of one project.
type Evaluation struct {
	ID              uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ProjectID       uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_evaluations_project_evaluator,priority:1" json:"project_id"`
	EvaluatorID     uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_evaluations_project_evaluator,priority:2;index" json:"evaluator_id"`
	Criteria        Criteria         `gorm:"embedded;embeddedPrefix:criterion_" json:"criteria"`
	Opinion         string           `gorm:"type:text" json:"opinion"`
	Rejected        bool             `gorm:"not null;default:false" json:"rejected"`
	RejectionReason string           `gorm:"type:text" json:"rejection_reason,omitempty"`
	MandatorySum    float64          `gorm:"type:numeric(5,2);not null;default:0" json:"mandatory_sum"`
	BonusSum        float64          `gorm:"type:numeric(5,2);not null;default:0" json:"bonus_sum"`
	FinalScore      *float64         `gorm:"type:numeric(5,2)" json:"final_score,omitempty"`
	Disqualified    bool             `gorm:"not null;default:false" json:"disqualified"`
	Status          EvaluationStatus `gorm:"type:varchar(32);index;not null;default:awaiting_evaluator" json:"status"`
	StartedAt       *time.Time       `json:"started_at,omitempty"`
	CompletedAt     *time.Time       `json:"completed_at,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}
