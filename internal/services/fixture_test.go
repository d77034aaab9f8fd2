package services

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pnab-cultura/engine/internal/models"
	"github.com/pnab-cultura/engine/pkg/logger"
)

func TestMain(m *testing.M) {
	// Initialize logger for tests (required by services)
	if _, err := logger.Init("error", "json"); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	os.Exit(m.Run())
}

var testNow = time.Date(2025, 4, 2, 14, 0, 0, 0, time.UTC)

type mockEnqueuer struct {
	mock.Mock
}

func (m *mockEnqueuer) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	args := m.Called(ctx, task.Type())
	return nil, args.Error(0)
}

type fixture struct {
	store      *memStore
	queue      *mockEnqueuer
	svc        *proposalService
	admin      Actor
	owner      Actor
	stranger   Actor
	evaluators []Actor
	notice     models.Notice
	proponent  models.Proponent
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	f := &fixture{store: newMemStore(), queue: &mockEnqueuer{}}
	f.queue.On("EnqueueContext", mock.Anything, mock.Anything).Return(nil)
	f.svc = &proposalService{store: f.store, queue: f.queue, now: func() time.Time { return testNow }}

	mkUser := func(email string, role models.Role) Actor {
		u := models.User{Email: email, Name: email, Role: role}
		require.NoError(t, f.store.Users().Create(ctx, &u))
		return Actor{UserID: u.ID, Role: role}
	}
	f.admin = mkUser("admin@cultura.gov.br", models.RoleAdmin)
	f.owner = mkUser("ana@example.org", models.RoleProponent)
	f.stranger = mkUser("bruno@example.org", models.RoleProponent)
	f.evaluators = []Actor{
		mkUser("ava1@example.org", models.RoleEvaluator),
		mkUser("ava2@example.org", models.RoleEvaluator),
	}

	f.notice = models.Notice{
		Code:          "PNAB-2025",
		Title:         "Fomento à Cultura 2025",
		OpensAt:       time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		ClosesAt:      time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
		CeilingAmount: decimal.RequireFromString("50000"),
	}
	require.NoError(t, f.store.Notices().Create(ctx, &f.notice))

	f.proponent = models.Proponent{UserID: f.owner.UserID, DisplayName: "Ana"}
	require.NoError(t, f.proponent.SetVariant(models.Individual{
		CPF:           "12345678901",
		Address:       models.Address{City: "Recife", State: "PE"},
		SpecialStatus: true,
	}))
	require.NoError(t, f.store.Proponents().Create(ctx, &f.proponent))
	return f
}

func (f *fixture) draftInput() *DraftInput {
	return &DraftInput{
		ProponentID:     f.proponent.ID,
		NoticeID:        f.notice.ID,
		Name:            "Circuito de Maracatu nas Escolas",
		Format:          "oficina",
		Segment:         "cultura popular",
		Summary:         "Oficinas de percussão",
		RequestedAmount: decimal.RequireFromString("250.00"),
		TermsAccepted:   true,
		BudgetItems: []models.BudgetItem{
			{Description: "Cachê", UnitValue: decimal.RequireFromString("100.00"), Quantity: 2},
			{Description: "Transporte", UnitValue: decimal.RequireFromString("50.00"), Quantity: 1},
		},
		TeamMembers: []models.TeamMember{{Name: "Maria", Role: "coordenação"}},
		Goals:       []models.Goal{{Description: "10 oficinas", ExpectedQuantity: 10}},
	}
}

// submitted creates and submits a complete draft.
func (f *fixture) submitted(t *testing.T) *models.Project {
	t.Helper()
	ctx := context.Background()
	p, _, err := f.svc.CreateDraft(ctx, f.owner, f.draftInput())
	require.NoError(t, err)
	p, err = f.svc.SubmitProject(ctx, f.owner, p.ID)
	require.NoError(t, err)
	return p
}

// evaluated drives a project to fully_evaluated with one evaluator.
func (f *fixture) evaluated(t *testing.T) *models.Project {
	t.Helper()
	ctx := context.Background()
	p := f.submitted(t)
	e, err := f.svc.AssignEvaluator(ctx, f.admin, p.ID, f.evaluators[0].UserID)
	require.NoError(t, err)
	_, err = f.svc.StartEvaluation(ctx, f.evaluators[0], e.ID)
	require.NoError(t, err)
	res, err := f.svc.RecordEvaluation(ctx, f.evaluators[0], e.ID, &RecordInput{Criteria: criteria(8, 8, 8, 8, 8), Submit: true})
	require.NoError(t, err)
	require.Equal(t, models.ProjectFullyEvaluated, res.ProjectStatus)
	return p
}

// approved drives a project to approved and generates its checklist.
func (f *fixture) approved(t *testing.T) *models.Project {
	t.Helper()
	ctx := context.Background()
	p := f.evaluated(t)
	p, err := f.svc.DecideProject(ctx, f.admin, p.ID, &DecisionInput{Approve: true})
	require.NoError(t, err)
	_, err = f.svc.GenerateHabilitacaoChecklist(ctx, p.ID)
	require.NoError(t, err)
	return p
}

func criteria(vals ...float64) models.Criteria {
	var c models.Criteria
	ptrs := []**float64{&c.A, &c.B, &c.C, &c.D, &c.E, &c.F, &c.G, &c.H, &c.I}
	for i, v := range vals {
		v := v
		*ptrs[i] = &v
	}
	return c
}
