package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pnab-cultura/engine/internal/lifecycle"
	"github.com/pnab-cultura/engine/internal/models"
	appErr "github.com/pnab-cultura/engine/pkg/errors"
)

func TestCreateDraft_PartialDraftIsSavedWithWarnings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, report, err := f.svc.CreateDraft(ctx, f.owner, &DraftInput{
		ProponentID: f.proponent.ID,
		NoticeID:    f.notice.ID,
		Name:        "<b>Sarau</b> da Várzea",
	})
	require.NoError(t, err)
	assert.Equal(t, models.ProjectDraft, p.Status)
	assert.Equal(t, "Sarau da Várzea", p.Name)
	assert.Nil(t, p.RegistrationNumber)
	assert.False(t, report.OK())
}

func TestCreateDraft_RequiresProponentOwnership(t *testing.T) {
	f := newFixture(t)
	_, _, err := f.svc.CreateDraft(context.Background(), f.stranger, f.draftInput())
	assert.True(t, appErr.IsCode(err, appErr.CodeForbidden))
}

func TestUpdateDraft_ReplacesDetails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, _, err := f.svc.CreateDraft(ctx, f.owner, f.draftInput())
	require.NoError(t, err)

	in := f.draftInput()
	in.BudgetItems = in.BudgetItems[:1]
	in.RequestedAmount = decimal.RequireFromString("300")
	_, report, err := f.svc.UpdateDraft(ctx, f.owner, p.ID, in)
	require.NoError(t, err)
	require.Len(t, report.Issues, 1)
	assert.Equal(t, appErr.CodeBudgetMismatch, report.Issues[0].Code)

	got, err := f.svc.GetProject(ctx, f.owner, p.ID)
	require.NoError(t, err)
	assert.Len(t, got.BudgetItems, 1)
}

func TestSubmitProject_NumbersSequentiallyPerNotice(t *testing.T) {
	f := newFixture(t)

	first := f.submitted(t)
	second := f.submitted(t)

	assert.Equal(t, models.ProjectAwaitingEvaluatorAssignment, first.Status)
	require.NotNil(t, first.RegistrationNumber)
	require.NotNil(t, second.RegistrationNumber)
	assert.Equal(t, "PNAB-2025-001", *first.RegistrationNumber)
	assert.Equal(t, "PNAB-2025-002", *second.RegistrationNumber)
	assert.Equal(t, testNow, *first.SubmittedAt)

	_, err := f.svc.SubmitProject(context.Background(), f.owner, first.ID)
	assert.True(t, appErr.IsCode(err, appErr.CodeInvalidTransition))
}

func TestSubmitProject_BudgetMismatchKeepsDraft(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := f.draftInput()
	in.RequestedAmount = decimal.RequireFromString("260.00")
	p, _, err := f.svc.CreateDraft(ctx, f.owner, in)
	require.NoError(t, err)

	_, err = f.svc.SubmitProject(ctx, f.owner, p.ID)
	require.True(t, appErr.IsCode(err, appErr.CodeValidationFailed))
	ae, _ := appErr.As(err)
	issues := ae.Meta["issues"].([]lifecycle.Issue)
	require.Len(t, issues, 1)
	assert.Equal(t, appErr.CodeBudgetMismatch, issues[0].Code)

	got, err := f.svc.GetProject(ctx, f.owner, p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProjectDraft, got.Status)
	assert.Nil(t, got.RegistrationNumber)
}

func TestSubmitProject_ClosedNotice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, _, err := f.svc.CreateDraft(ctx, f.owner, f.draftInput())
	require.NoError(t, err)
	f.svc.now = func() time.Time { return f.notice.ClosesAt.AddDate(0, 0, 1) }

	_, err = f.svc.SubmitProject(ctx, f.owner, p.ID)
	assert.True(t, appErr.IsCode(err, appErr.CodeValidationFailed))
}

func TestSubmitProject_OnlyOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, _, err := f.svc.CreateDraft(ctx, f.owner, f.draftInput())
	require.NoError(t, err)
	_, err = f.svc.SubmitProject(ctx, f.stranger, p.ID)
	assert.True(t, appErr.IsCode(err, appErr.CodeForbidden))
}

func TestValidateDraft(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, _, err := f.svc.CreateDraft(ctx, f.owner, f.draftInput())
	require.NoError(t, err)
	report, err := f.svc.ValidateDraft(ctx, f.owner, p.ID)
	require.NoError(t, err)
	assert.True(t, report.OK(), "%+v", report.Issues)
}

func TestDeleteDraft(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, _, err := f.svc.CreateDraft(ctx, f.owner, f.draftInput())
	require.NoError(t, err)
	assert.True(t, appErr.IsCode(f.svc.DeleteDraft(ctx, f.stranger, p.ID), appErr.CodeForbidden))
	require.NoError(t, f.svc.DeleteDraft(ctx, f.owner, p.ID))
	_, err = f.svc.GetProject(ctx, f.owner, p.ID)
	assert.True(t, appErr.IsCode(err, appErr.CodeNotFound))

	submitted := f.submitted(t)
	err = f.svc.DeleteDraft(ctx, f.owner, submitted.ID)
	assert.True(t, appErr.IsCode(err, appErr.CodeInvalidTransition))
}

func TestListProjects_ScopedByRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p := f.submitted(t)
	_, _, err := f.svc.CreateDraft(ctx, f.owner, f.draftInput())
	require.NoError(t, err)

	mine, total, err := f.svc.ListProjects(ctx, f.owner, &ProjectQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, mine, 2)

	theirs, _, err := f.svc.ListProjects(ctx, f.stranger, &ProjectQuery{})
	require.NoError(t, err)
	assert.Empty(t, theirs)

	_, err = f.svc.AssignEvaluator(ctx, f.admin, p.ID, f.evaluators[0].UserID)
	require.NoError(t, err)
	assigned, _, err := f.svc.ListProjects(ctx, f.evaluators[0], &ProjectQuery{})
	require.NoError(t, err)
	require.Len(t, assigned, 1)
	assert.Equal(t, p.ID, assigned[0].ID)

	all, _, err := f.svc.ListProjects(ctx, f.admin, &ProjectQuery{Status: models.ProjectDraft})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestGetProject_EvaluatorNeedsAssignment(t *testing.T) {
	f := newFixture(t)
	p := f.submitted(t)
	_, err := f.svc.GetProject(context.Background(), f.evaluators[1], p.ID)
	assert.True(t, appErr.IsCode(err, appErr.CodeForbidden))
	_, err = f.svc.GetProject(context.Background(), f.admin, uuid.New())
	assert.True(t, appErr.IsCode(err, appErr.CodeNotFound))
}
