package types

import (
	"encoding/json"
	"time"

	"github.com/pnab-cultura/engine/internal/budget"
	"github.com/pnab-cultura/engine/internal/models"
)

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ProponentRequest carries the variant attributes in Details, decoded
// according to Kind.
type ProponentRequest struct {
	Kind        models.ProponentKind `json:"kind" validate:"required,oneof=pf pj coletivo"`
	DisplayName string               `json:"display_name" validate:"required,max=200"`
	Email       string               `json:"email" validate:"omitempty,email"`
	Phone       string               `json:"phone" validate:"omitempty,max=32"`
	Bank        models.BankDetails   `json:"bank"`
	Details     json.RawMessage      `json:"details" validate:"required"`
}

type NoticeRequest struct {
	Code          string        `json:"code" validate:"required,max=32"`
	Title         string        `json:"title" validate:"required"`
	OpensAt       time.Time     `json:"opens_at" validate:"required"`
	ClosesAt      time.Time     `json:"closes_at" validate:"required"`
	CeilingAmount budget.Amount `json:"ceiling_amount"`
	TemplateFiles []string      `json:"template_files"`
}

// DraftRequest is the full editable content of a project. Drafts may be
// incomplete, so only identifiers are required here.
type DraftRequest struct {
	ProponentID       string              `json:"proponent_id" validate:"omitempty,uuid"`
	NoticeID          string              `json:"notice_id" validate:"required,uuid"`
	Name              string              `json:"name" validate:"max=200"`
	Format            string              `json:"format" validate:"max=64"`
	Segment           string              `json:"segment" validate:"max=64"`
	Summary           string              `json:"summary"`
	Objectives        string              `json:"objectives"`
	Justification     string              `json:"justification"`
	TargetAudience    string              `json:"target_audience"`
	AccessibilityPlan string              `json:"accessibility_plan"`
	RequestedAmount   budget.Amount       `json:"requested_amount"`
	TermsAccepted     bool                `json:"terms_accepted"`
	BudgetItems       []BudgetItemRequest `json:"budget_items" validate:"dive"`
	TeamMembers       []TeamMemberRequest `json:"team_members" validate:"dive"`
	Activities        []ActivityRequest   `json:"activities" validate:"dive"`
	Goals             []GoalRequest       `json:"goals" validate:"dive"`
}

type BudgetItemRequest struct {
	Description string        `json:"description"`
	Unit        string        `json:"unit" validate:"max=32"`
	UnitValue   budget.Amount `json:"unit_value"`
	Quantity    int           `json:"quantity" validate:"gte=0"`
}

type TeamMemberRequest struct {
	Name string `json:"name"`
	Role string `json:"role"`
	CPF  string `json:"cpf" validate:"omitempty,max=14"`
}

type ActivityRequest struct {
	Description string               `json:"description"`
	Stage       models.ActivityStage `json:"stage" validate:"omitempty,oneof=pre_production production post_production dissemination"`
	StartsOn    time.Time            `json:"starts_on"`
	EndsOn      time.Time            `json:"ends_on"`
}

type GoalRequest struct {
	Description      string `json:"description"`
	ExpectedQuantity int    `json:"expected_quantity" validate:"gte=0"`
}

type AssignEvaluatorRequest struct {
	EvaluatorID string `json:"evaluator_id" validate:"required,uuid"`
}

type RecordEvaluationRequest struct {
	Criteria        models.Criteria `json:"criteria"`
	Opinion         string          `json:"opinion"`
	Rejected        bool            `json:"rejected"`
	RejectionReason string          `json:"rejection_reason"`
	Submit          bool            `json:"submit"`
}

type DecisionRequest struct {
	Approve *bool  `json:"approve" validate:"required"`
	Reason  string `json:"reason"`
}

type PendencyRequest struct {
	Reason string `json:"reason" validate:"required"`
}

type DocumentCreateRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description"`
	Obligatory  *bool  `json:"obligatory"`
}

// DocumentUpdateRequest patches one aspect of a document: the attached
// file, a review verdict or the obligatory flag. Exactly one must be set.
type DocumentUpdateRequest struct {
	FileURL    *string `json:"file_url" validate:"omitempty,url"`
	Approve    *bool   `json:"approve"`
	Note       string  `json:"note"`
	Obligatory *bool   `json:"obligatory"`
}
