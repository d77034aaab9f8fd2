package lifecycle

import (
	"strings"
	"time"

	"github.com/pnab-cultura/engine/internal/budget"
	"github.com/pnab-cultura/engine/internal/models"
	appErr "github.com/pnab-cultura/engine/pkg/errors"
)

// Issue is one field-level problem found while validating a project.
type Issue struct {
	Field   string         `json:"field"`
	Code    appErr.Code    `json:"code"`
	Message string         `json:"message"`
	Meta    map[string]any `json:"meta,omitempty"`
}

// Report lists the issues found in a project. On draft save they are
// warnings; at submission they block.
type Report struct {
	Issues []Issue `json:"issues"`
}

// OK reports whether no issue was found.
func (r Report) OK() bool { return len(r.Issues) == 0 }

// Err returns nil for a clean report, otherwise a validation_failed error
// carrying the issues.
func (r Report) Err() error {
	if r.OK() {
		return nil
	}
	return appErr.New(appErr.CodeValidationFailed, "project does not meet submission requirements").
		WithMeta("issues", r.Issues)
}

func (r *Report) add(field string, code appErr.Code, msg string) {
	r.Issues = append(r.Issues, Issue{Field: field, Code: code, Message: msg})
}

// CheckSubmission validates p against the requirements of the
// draft → awaiting_evaluator_assignment transition. now is compared with the
// notice's submission window.
func CheckSubmission(p *models.Project, n *models.Notice, now time.Time) Report {
	var r Report

	if strings.TrimSpace(p.Name) == "" {
		r.add("name", appErr.CodeInvalid, "project name is required")
	}
	if strings.TrimSpace(p.Format) == "" {
		r.add("format", appErr.CodeInvalid, "project format is required")
	}
	if strings.TrimSpace(p.Segment) == "" {
		r.add("segment", appErr.CodeInvalid, "cultural segment is required")
	}
	if !p.RequestedAmount.IsPositive() {
		r.add("requested_amount", appErr.CodeInvalid, "requested amount must be greater than zero")
	}
	if len(p.TeamMembers) == 0 {
		r.add("team_members", appErr.CodeInvalid, "at least one team member is required")
	}
	if len(p.BudgetItems) == 0 {
		r.add("budget_items", appErr.CodeInvalid, "at least one budget item is required")
	}
	if len(p.Goals) == 0 {
		r.add("goals", appErr.CodeInvalid, "at least one goal is required")
	}
	if !p.TermsAccepted {
		r.add("terms_accepted", appErr.CodeInvalid, "terms of service must be accepted")
	}

	for _, v := range budget.Check(p.BudgetItems, p.RequestedAmount, n.CeilingAmount) {
		field := "budget_items"
		if v.Code == appErr.CodeCeilingExceeded {
			field = "requested_amount"
		}
		r.Issues = append(r.Issues, Issue{Field: field, Code: v.Code, Message: v.Message, Meta: v.Meta})
	}

	if !n.AcceptsSubmissionsAt(now) {
		r.add("notice_id", appErr.CodeInvalid, "notice is not accepting submissions")
	}
	return r
}
