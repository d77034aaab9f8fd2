package api

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/pnab-cultura/engine/internal/lifecycle"
	"github.com/pnab-cultura/engine/internal/models"
	"github.com/pnab-cultura/engine/internal/services"
)

type mockProposals struct{ mock.Mock }

var _ services.ProposalService = (*mockProposals)(nil)

func project(args mock.Arguments) (*models.Project, error) {
	p, _ := args.Get(0).(*models.Project)
	return p, args.Error(1)
}

func evaluation(args mock.Arguments) (*models.Evaluation, error) {
	e, _ := args.Get(0).(*models.Evaluation)
	return e, args.Error(1)
}

func document(args mock.Arguments) (*models.HabilitacaoDocument, error) {
	d, _ := args.Get(0).(*models.HabilitacaoDocument)
	return d, args.Error(1)
}

func (m *mockProposals) CreateDraft(ctx context.Context, a services.Actor, in *services.DraftInput) (*models.Project, lifecycle.Report, error) {
	args := m.Called(ctx, a, in)
	p, _ := args.Get(0).(*models.Project)
	return p, args.Get(1).(lifecycle.Report), args.Error(2)
}

func (m *mockProposals) UpdateDraft(ctx context.Context, a services.Actor, id uuid.UUID, in *services.DraftInput) (*models.Project, lifecycle.Report, error) {
	args := m.Called(ctx, a, id, in)
	p, _ := args.Get(0).(*models.Project)
	return p, args.Get(1).(lifecycle.Report), args.Error(2)
}

func (m *mockProposals) ValidateDraft(ctx context.Context, a services.Actor, id uuid.UUID) (lifecycle.Report, error) {
	args := m.Called(ctx, a, id)
	return args.Get(0).(lifecycle.Report), args.Error(1)
}

func (m *mockProposals) SubmitProject(ctx context.Context, a services.Actor, id uuid.UUID) (*models.Project, error) {
	return project(m.Called(ctx, a, id))
}

func (m *mockProposals) DeleteDraft(ctx context.Context, a services.Actor, id uuid.UUID) error {
	return m.Called(ctx, a, id).Error(0)
}

func (m *mockProposals) GetProject(ctx context.Context, a services.Actor, id uuid.UUID) (*models.Project, error) {
	return project(m.Called(ctx, a, id))
}

func (m *mockProposals) ListProjects(ctx context.Context, a services.Actor, q *services.ProjectQuery) ([]models.Project, int64, error) {
	args := m.Called(ctx, a, q)
	items, _ := args.Get(0).([]models.Project)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *mockProposals) AssignEvaluator(ctx context.Context, a services.Actor, projectID, evaluatorID uuid.UUID) (*models.Evaluation, error) {
	return evaluation(m.Called(ctx, a, projectID, evaluatorID))
}

func (m *mockProposals) StartEvaluation(ctx context.Context, a services.Actor, id uuid.UUID) (*models.Evaluation, error) {
	return evaluation(m.Called(ctx, a, id))
}

func (m *mockProposals) RecordEvaluation(ctx context.Context, a services.Actor, id uuid.UUID, in *services.RecordInput) (*services.RecordResult, error) {
	args := m.Called(ctx, a, id, in)
	res, _ := args.Get(0).(*services.RecordResult)
	return res, args.Error(1)
}

func (m *mockProposals) ListEvaluations(ctx context.Context, a services.Actor, id uuid.UUID) ([]models.Evaluation, error) {
	args := m.Called(ctx, a, id)
	items, _ := args.Get(0).([]models.Evaluation)
	return items, args.Error(1)
}

func (m *mockProposals) ListAssignedEvaluations(ctx context.Context, a services.Actor) ([]models.Evaluation, error) {
	args := m.Called(ctx, a)
	items, _ := args.Get(0).([]models.Evaluation)
	return items, args.Error(1)
}

func (m *mockProposals) RecomputeAggregate(ctx context.Context, id uuid.UUID) (*services.AggregateResult, error) {
	args := m.Called(ctx, id)
	res, _ := args.Get(0).(*services.AggregateResult)
	return res, args.Error(1)
}

func (m *mockProposals) DecideProject(ctx context.Context, a services.Actor, id uuid.UUID, in *services.DecisionInput) (*models.Project, error) {
	return project(m.Called(ctx, a, id, in))
}

func (m *mockProposals) FlagPendencies(ctx context.Context, a services.Actor, id uuid.UUID, reason string) (*models.Project, error) {
	return project(m.Called(ctx, a, id, reason))
}

func (m *mockProposals) ResolvePendencies(ctx context.Context, a services.Actor, id uuid.UUID) (*models.Project, error) {
	return project(m.Called(ctx, a, id))
}

func (m *mockProposals) StartExecution(ctx context.Context, a services.Actor, id uuid.UUID) (*models.Project, error) {
	return project(m.Called(ctx, a, id))
}

func (m *mockProposals) CompleteProject(ctx context.Context, a services.Actor, id uuid.UUID) (*models.Project, error) {
	return project(m.Called(ctx, a, id))
}

func (m *mockProposals) GenerateHabilitacaoChecklist(ctx context.Context, id uuid.UUID) ([]models.HabilitacaoDocument, error) {
	args := m.Called(ctx, id)
	items, _ := args.Get(0).([]models.HabilitacaoDocument)
	return items, args.Error(1)
}

func (m *mockProposals) AddDocumentRequest(ctx context.Context, a services.Actor, id uuid.UUID, in *services.DocumentRequestInput) (*models.HabilitacaoDocument, error) {
	return document(m.Called(ctx, a, id, in))
}

func (m *mockProposals) AttachDocument(ctx context.Context, a services.Actor, id uuid.UUID, fileURL string) (*models.HabilitacaoDocument, error) {
	return document(m.Called(ctx, a, id, fileURL))
}

func (m *mockProposals) ReviewDocument(ctx context.Context, a services.Actor, id uuid.UUID, in *services.ReviewInput) (*models.HabilitacaoDocument, error) {
	return document(m.Called(ctx, a, id, in))
}

func (m *mockProposals) SetDocumentObligatory(ctx context.Context, a services.Actor, id uuid.UUID, obligatory bool) (*models.HabilitacaoDocument, error) {
	return document(m.Called(ctx, a, id, obligatory))
}

func (m *mockProposals) ListDocuments(ctx context.Context, a services.Actor, id uuid.UUID) ([]models.HabilitacaoDocument, error) {
	args := m.Called(ctx, a, id)
	items, _ := args.Get(0).([]models.HabilitacaoDocument)
	return items, args.Error(1)
}

type mockAuth struct{ mock.Mock }

var _ services.AuthService = (*mockAuth)(nil)

func (m *mockAuth) Register(ctx context.Context, email, password, name string) (*models.User, error) {
	args := m.Called(ctx, email, password, name)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *mockAuth) CreateUser(ctx context.Context, email, password, name string, role models.Role) (*models.User, error) {
	args := m.Called(ctx, email, password, name, role)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *mockAuth) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	args := m.Called(ctx, email, password)
	u, _ := args.Get(1).(*models.User)
	return args.String(0), u, args.Error(2)
}

type mockProponents struct{ mock.Mock }

var _ services.ProponentService = (*mockProponents)(nil)

func (m *mockProponents) CreateProponent(ctx context.Context, a services.Actor, in *services.ProponentInput) (*models.Proponent, error) {
	args := m.Called(ctx, a, in)
	p, _ := args.Get(0).(*models.Proponent)
	return p, args.Error(1)
}

func (m *mockProponents) GetProponent(ctx context.Context, a services.Actor, id uuid.UUID) (*models.Proponent, error) {
	args := m.Called(ctx, a, id)
	p, _ := args.Get(0).(*models.Proponent)
	return p, args.Error(1)
}

func (m *mockProponents) ListProponents(ctx context.Context, a services.Actor) ([]models.Proponent, error) {
	args := m.Called(ctx, a)
	items, _ := args.Get(0).([]models.Proponent)
	return items, args.Error(1)
}

func (m *mockProponents) UpdateProponent(ctx context.Context, a services.Actor, id uuid.UUID, in *services.ProponentInput) (*models.Proponent, error) {
	args := m.Called(ctx, a, id, in)
	p, _ := args.Get(0).(*models.Proponent)
	return p, args.Error(1)
}

type mockNotices struct{ mock.Mock }

var _ services.NoticeService = (*mockNotices)(nil)

func (m *mockNotices) CreateNotice(ctx context.Context, a services.Actor, n *models.Notice) (*models.Notice, error) {
	args := m.Called(ctx, a, n)
	out, _ := args.Get(0).(*models.Notice)
	return out, args.Error(1)
}

func (m *mockNotices) GetNotice(ctx context.Context, id uuid.UUID) (*models.Notice, error) {
	args := m.Called(ctx, id)
	out, _ := args.Get(0).(*models.Notice)
	return out, args.Error(1)
}

func (m *mockNotices) ListNotices(ctx context.Context) ([]models.Notice, error) {
	args := m.Called(ctx)
	items, _ := args.Get(0).([]models.Notice)
	return items, args.Error(1)
}

func (m *mockNotices) ImportNotices(ctx context.Context, notices []models.Notice) ([]models.Notice, error) {
	args := m.Called(ctx, notices)
	items, _ := args.Get(0).([]models.Notice)
	return items, args.Error(1)
}
