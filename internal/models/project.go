package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Project (proposta) is a proponent's application to a notice.
type Project struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ProponentID        uuid.UUID       `gorm:"type:uuid;index;not null" json:"proponent_id" validate:"required"`
	NoticeID           uuid.UUID       `gorm:"type:uuid;index;not null" json:"notice_id" validate:"required"`
	Name               string          `gorm:"not null;default:''" json:"name"`
	Format             string          `gorm:"type:varchar(64)" json:"format"`
	Segment            string          `gorm:"type:varchar(64)" json:"segment"`
	Summary            string          `gorm:"type:text" json:"summary"`
	Objectives         string          `gorm:"type:text" json:"objectives"`
	Justification      string          `gorm:"type:text" json:"justification"`
	TargetAudience     string          `gorm:"type:text" json:"target_audience"`
	AccessibilityPlan  string          `gorm:"type:text" json:"accessibility_plan"`
	RequestedAmount    decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"requested_amount"`
	TermsAccepted      bool            `gorm:"not null;default:false" json:"terms_accepted"`
	RegistrationNumber *string         `gorm:"type:varchar(48);uniqueIndex" json:"registration_number,omitempty"`
	Status             ProjectStatus   `gorm:"type:varchar(40);index;not null;default:draft" json:"status"`
	DecisionReason     string          `gorm:"type:text" json:"decision_reason,omitempty"`
	PendencyReason     string          `gorm:"type:text" json:"pendency_reason,omitempty"`
	SubmittedAt        *time.Time      `json:"submitted_at,omitempty"`
	EvaluatedAt        *time.Time      `json:"evaluated_at,omitempty"`
	DecidedAt          *time.Time      `json:"decided_at,omitempty"`

	BudgetItems []BudgetItem `gorm:"constraint:OnDelete:CASCADE" json:"budget_items"`
	TeamMembers []TeamMember `gorm:"constraint:OnDelete:CASCADE" json:"team_members"`
	Activities  []Activity   `gorm:"constraint:OnDelete:CASCADE" json:"activities"`
	Goals       []Goal       `gorm:"constraint:OnDelete:CASCADE" json:"goals"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BudgetItem is one line of a project's itemized budget.
type BudgetItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ProjectID   uuid.UUID       `gorm:"type:uuid;index;not null" json:"project_id"`
	Description string          `gorm:"not null" json:"description" validate:"required"`
	Unit        string          `gorm:"type:varchar(32)" json:"unit"`
	UnitValue   decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"unit_value"`
	Quantity    int             `gorm:"not null" json:"quantity" validate:"gte=0"`
	Position    int             `gorm:"not null;default:0" json:"position"`
}

// Subtotal is unit value × quantity.
func (b BudgetItem) Subtotal() decimal.Decimal {
	return b.UnitValue.Mul(decimal.NewFromInt(int64(b.Quantity)))
}

type TeamMember struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ProjectID uuid.UUID `gorm:"type:uuid;index;not null" json:"project_id"`
	Name      string    `gorm:"not null" json:"name" validate:"required"`
	Role      string    `json:"role"`
	CPF       string    `gorm:"type:varchar(14)" json:"cpf,omitempty"`
	Position  int       `gorm:"not null;default:0" json:"position"`
}

// ActivityStage tags when in the project an activity happens.
type ActivityStage string

const (
	StagePreProduction  ActivityStage = "pre_production"
	StageProduction     ActivityStage = "production"
	StagePostProduction ActivityStage = "post_production"
	StageDissemination  ActivityStage = "dissemination"
)

type Activity struct {
	ID          uuid.UUID     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ProjectID   uuid.UUID     `gorm:"type:uuid;index;not null" json:"project_id"`
	Description string        `gorm:"not null" json:"description" validate:"required"`
	Stage       ActivityStage `gorm:"type:varchar(32);not null" json:"stage" validate:"required,oneof=pre_production production post_production dissemination"`
	StartsOn    time.Time     `gorm:"type:date;not null" json:"starts_on" validate:"required"`
	EndsOn      time.Time     `gorm:"type:date;not null" json:"ends_on" validate:"required,gtefield=StartsOn"`
	Position    int           `gorm:"not null;default:0" json:"position"`
}

type Goal struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ProjectID        uuid.UUID `gorm:"type:uuid;index;not null" json:"project_id"`
	Description      string    `gorm:"not null" json:"description" validate:"required"`
	ExpectedQuantity int       `json:"expected_quantity" validate:"gte=0"`
	Position         int       `gorm:"not null;default:0" json:"position"`
}
