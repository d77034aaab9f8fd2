package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/pnab-cultura/engine/internal/lifecycle"
	"github.com/pnab-cultura/engine/internal/metrics"
	"github.com/pnab-cultura/engine/internal/models"
	"github.com/pnab-cultura/engine/internal/repository"
	"github.com/pnab-cultura/engine/internal/scoring"
	appErr "github.com/pnab-cultura/engine/pkg/errors"
	"github.com/pnab-cultura/engine/pkg/logger"
	"github.com/pnab-cultura/engine/pkg/utils"
)

// ProposalService drives a project from draft to completion.
type ProposalService interface {
	// Drafting and submission
	CreateDraft(ctx context.Context, actor Actor, in *DraftInput) (*models.Project, lifecycle.Report, error)
	UpdateDraft(ctx context.Context, actor Actor, projectID uuid.UUID, in *DraftInput) (*models.Project, lifecycle.Report, error)
	ValidateDraft(ctx context.Context, actor Actor, projectID uuid.UUID) (lifecycle.Report, error)
	SubmitProject(ctx context.Context, actor Actor, projectID uuid.UUID) (*models.Project, error)
	DeleteDraft(ctx context.Context, actor Actor, projectID uuid.UUID) error
	GetProject(ctx context.Context, actor Actor, projectID uuid.UUID) (*models.Project, error)
	ListProjects(ctx context.Context, actor Actor, q *ProjectQuery) ([]models.Project, int64, error)

	// Evaluation
	AssignEvaluator(ctx context.Context, actor Actor, projectID, evaluatorID uuid.UUID) (*models.Evaluation, error)
	StartEvaluation(ctx context.Context, actor Actor, evaluationID uuid.UUID) (*models.Evaluation, error)
	RecordEvaluation(ctx context.Context, actor Actor, evaluationID uuid.UUID, in *RecordInput) (*RecordResult, error)
	ListEvaluations(ctx context.Context, actor Actor, projectID uuid.UUID) ([]models.Evaluation, error)
	ListAssignedEvaluations(ctx context.Context, actor Actor) ([]models.Evaluation, error)
	RecomputeAggregate(ctx context.Context, projectID uuid.UUID) (*AggregateResult, error)

	// Decision and execution
	DecideProject(ctx context.Context, actor Actor, projectID uuid.UUID, in *DecisionInput) (*models.Project, error)
	FlagPendencies(ctx context.Context, actor Actor, projectID uuid.UUID, reason string) (*models.Project, error)
	ResolvePendencies(ctx context.Context, actor Actor, projectID uuid.UUID) (*models.Project, error)
	StartExecution(ctx context.Context, actor Actor, projectID uuid.UUID) (*models.Project, error)
	CompleteProject(ctx context.Context, actor Actor, projectID uuid.UUID) (*models.Project, error)

	// Habilitação documents
	GenerateHabilitacaoChecklist(ctx context.Context, projectID uuid.UUID) ([]models.HabilitacaoDocument, error)
	AddDocumentRequest(ctx context.Context, actor Actor, projectID uuid.UUID, in *DocumentRequestInput) (*models.HabilitacaoDocument, error)
	AttachDocument(ctx context.Context, actor Actor, documentID uuid.UUID, fileURL string) (*models.HabilitacaoDocument, error)
	ReviewDocument(ctx context.Context, actor Actor, documentID uuid.UUID, in *ReviewInput) (*models.HabilitacaoDocument, error)
	SetDocumentObligatory(ctx context.Context, actor Actor, documentID uuid.UUID, obligatory bool) (*models.HabilitacaoDocument, error)
	ListDocuments(ctx context.Context, actor Actor, projectID uuid.UUID) ([]models.HabilitacaoDocument, error)
}

// DraftInput carries every editable field of a project. UpdateDraft
// replaces the whole draft with it; ProponentID is fixed at creation.
type DraftInput struct {
	ProponentID       uuid.UUID
	NoticeID          uuid.UUID
	Name              string
	Format            string
	Segment           string
	Summary           string
	Objectives        string
	Justification     string
	TargetAudience    string
	AccessibilityPlan string
	RequestedAmount   decimal.Decimal
	TermsAccepted     bool
	BudgetItems       []models.BudgetItem
	TeamMembers       []models.TeamMember
	Activities        []models.Activity
	Goals             []models.Goal
}

type ProjectQuery struct {
	NoticeID uuid.UUID
	Status   models.ProjectStatus
	Page     int
	PageSize int
}

type RecordInput struct {
	Criteria        models.Criteria
	Opinion         string
	Rejected        bool
	RejectionReason string
	// Submit concludes the evaluation; otherwise the scores are saved as provisional.
	Submit bool
}

type RecordResult struct {
	Evaluation    *models.Evaluation   `json:"evaluation"`
	Score         scoring.Result       `json:"score"`
	ProjectStatus models.ProjectStatus `json:"project_status"`
}

type AggregateResult struct {
	ProjectID uuid.UUID                `json:"project_id"`
	Status    models.ProjectStatus     `json:"status"`
	Changed   bool                     `json:"changed"`
	State     lifecycle.AggregateState `json:"state"`
	Summary   scoring.Summary          `json:"summary"`
}

type DecisionInput struct {
	Approve bool
	Reason  string
}

type DocumentRequestInput struct {
	Name        string
	Description string
	Obligatory  bool
}

type ReviewInput struct {
	Approve bool
	Note    string
}

type proposalService struct {
	store repository.Store
	queue TaskEnqueuer
	now   func() time.Time
}

// NewProposalService wires the proposal workflow. queue may be nil, in
// which case background tasks are skipped.
func NewProposalService(store repository.Store, queue TaskEnqueuer) ProposalService {
	return &proposalService{store: store, queue: queue, now: systemClock}
}

// Ensure interfaces are satisfied at compile time
var _ ProposalService = (*proposalService)(nil)

func (s *proposalService) CreateDraft(ctx context.Context, actor Actor, in *DraftInput) (*models.Project, lifecycle.Report, error) {
	logger.L().Info("create draft called", zap.String("user_id", actor.UserID.String()), zap.String("proponent_id", in.ProponentID.String()))

	var p models.Project
	var report lifecycle.Report
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		if err := s.requireProponentOwner(ctx, tx, actor, in.ProponentID); err != nil {
			return err
		}
		var n models.Notice
		if err := tx.Notices().GetByID(ctx, in.NoticeID, &n); err != nil {
			return err
		}

		p = models.Project{ProponentID: in.ProponentID, Status: models.ProjectDraft}
		applyDraft(&p, in)
		if err := tx.Projects().Create(ctx, &p); err != nil {
			return err
		}
		if err := tx.Projects().ReplaceDetails(ctx, &p); err != nil {
			return err
		}
		report = lifecycle.CheckSubmission(&p, &n, s.now())
		return nil
	})
	if err != nil {
		return nil, lifecycle.Report{}, err
	}

	logger.L().Info("draft created", zap.String("project_id", p.ID.String()), zap.Int("warnings", len(report.Issues)))
	return &p, report, nil
}

func (s *proposalService) UpdateDraft(ctx context.Context, actor Actor, projectID uuid.UUID, in *DraftInput) (*models.Project, lifecycle.Report, error) {
	logger.L().Info("update draft called", zap.String("project_id", projectID.String()), zap.String("user_id", actor.UserID.String()))

	var p models.Project
	var report lifecycle.Report
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		if err := tx.Projects().GetForUpdate(ctx, projectID, &p); err != nil {
			return err
		}
		if err := s.requireProponentOwner(ctx, tx, actor, p.ProponentID); err != nil {
			return err
		}
		if err := lifecycle.EnsureEditable(&p); err != nil {
			return err
		}
		var n models.Notice
		if err := tx.Notices().GetByID(ctx, in.NoticeID, &n); err != nil {
			return err
		}

		applyDraft(&p, in)
		if err := tx.Projects().Update(ctx, &p); err != nil {
			return err
		}
		if err := tx.Projects().ReplaceDetails(ctx, &p); err != nil {
			return err
		}
		report = lifecycle.CheckSubmission(&p, &n, s.now())
		return nil
	})
	if err != nil {
		return nil, lifecycle.Report{}, err
	}

	logger.L().Info("draft updated", zap.String("project_id", p.ID.String()), zap.Int("warnings", len(report.Issues)))
	return &p, report, nil
}

func applyDraft(p *models.Project, in *DraftInput) {
	p.NoticeID = in.NoticeID
	p.Name = utils.CleanText(in.Name)
	p.Format = utils.CleanText(in.Format)
	p.Segment = utils.CleanText(in.Segment)
	p.Summary = utils.CleanText(in.Summary)
	p.Objectives = utils.CleanText(in.Objectives)
	p.Justification = utils.CleanText(in.Justification)
	p.TargetAudience = utils.CleanText(in.TargetAudience)
	p.AccessibilityPlan = utils.CleanText(in.AccessibilityPlan)
	p.RequestedAmount = in.RequestedAmount
	p.TermsAccepted = in.TermsAccepted
	p.BudgetItems = append([]models.BudgetItem(nil), in.BudgetItems...)
	p.TeamMembers = append([]models.TeamMember(nil), in.TeamMembers...)
	p.Activities = append([]models.Activity(nil), in.Activities...)
	p.Goals = append([]models.Goal(nil), in.Goals...)
	for i := range p.BudgetItems {
		p.BudgetItems[i].Description = utils.CleanText(p.BudgetItems[i].Description)
	}
	for i := range p.Activities {
		p.Activities[i].Description = utils.CleanText(p.Activities[i].Description)
	}
	for i := range p.Goals {
		p.Goals[i].Description = utils.CleanText(p.Goals[i].Description)
	}
}

func (s *proposalService) ValidateDraft(ctx context.Context, actor Actor, projectID uuid.UUID) (lifecycle.Report, error) {
	logger.L().Info("validate draft", zap.String("project_id", projectID.String()), zap.String("user_id", actor.UserID.String()))

	var p models.Project
	if err := s.store.Projects().GetWithDetails(ctx, projectID, &p); err != nil {
		return lifecycle.Report{}, err
	}
	if err := s.requireProponentOwner(ctx, s.store, actor, p.ProponentID); err != nil {
		return lifecycle.Report{}, err
	}
	var n models.Notice
	if err := s.store.Notices().GetByID(ctx, p.NoticeID, &n); err != nil {
		return lifecycle.Report{}, err
	}
	return lifecycle.CheckSubmission(&p, &n, s.now()), nil
}

func (s *proposalService) SubmitProject(ctx context.Context, actor Actor, projectID uuid.UUID) (*models.Project, error) {
	logger.L().Info("submit project called", zap.String("project_id", projectID.String()), zap.String("user_id", actor.UserID.String()))

	var p models.Project
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		if err := tx.Projects().GetForUpdate(ctx, projectID, &p); err != nil {
			return err
		}
		if err := s.requireProponentOwner(ctx, tx, actor, p.ProponentID); err != nil {
			return err
		}
		if !p.Status.CanTransitionTo(models.ProjectAwaitingEvaluatorAssignment) {
			return lifecycle.InvalidProjectTransition(p.Status, models.ProjectAwaitingEvaluatorAssignment)
		}

		// Numbering serialises on the notice row.
		var n models.Notice
		if err := tx.Notices().GetForUpdate(ctx, p.NoticeID, &n); err != nil {
			return err
		}
		now := s.now()
		if err := lifecycle.CheckSubmission(&p, &n, now).Err(); err != nil {
			return err
		}
		numbered, err := tx.Projects().CountNumbered(ctx, n.ID)
		if err != nil {
			return err
		}
		reg := lifecycle.RegistrationNumber(n.Code, numbered)
		p.RegistrationNumber = &reg
		p.SubmittedAt = &now
		if err := lifecycle.Transition(&p, models.ProjectAwaitingEvaluatorAssignment); err != nil {
			return err
		}
		return tx.Projects().Update(ctx, &p)
	})
	if err != nil {
		logger.L().Warn("submit project rejected", zap.String("project_id", projectID.String()), zap.Error(err))
		return nil, err
	}

	metrics.ObserveTransition(models.ProjectDraft, p.Status)
	logger.L().Info("project submitted", zap.String("project_id", p.ID.String()), zap.String("registration_number", *p.RegistrationNumber))
	return &p, nil
}

func (s *proposalService) DeleteDraft(ctx context.Context, actor Actor, projectID uuid.UUID) error {
	logger.L().Info("delete draft", zap.String("project_id", projectID.String()), zap.String("user_id", actor.UserID.String()))

	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		var p models.Project
		if err := tx.Projects().GetForUpdate(ctx, projectID, &p); err != nil {
			return err
		}
		if err := s.requireProponentOwner(ctx, tx, actor, p.ProponentID); err != nil {
			return err
		}
		if err := lifecycle.EnsureDeletable(&p); err != nil {
			return err
		}
		return tx.Projects().Delete(ctx, projectID)
	})
	if err != nil {
		return err
	}
	logger.L().Info("draft deleted", zap.String("project_id", projectID.String()))
	return nil
}

func (s *proposalService) GetProject(ctx context.Context, actor Actor, projectID uuid.UUID) (*models.Project, error) {
	logger.L().Info("get project", zap.String("project_id", projectID.String()), zap.String("user_id", actor.UserID.String()))

	var p models.Project
	if err := s.store.Projects().GetWithDetails(ctx, projectID, &p); err != nil {
		return nil, err
	}
	if err := s.canRead(ctx, s.store, actor, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *proposalService) ListProjects(ctx context.Context, actor Actor, q *ProjectQuery) ([]models.Project, int64, error) {
	logger.L().Info("list projects", zap.String("user_id", actor.UserID.String()), zap.String("role", string(actor.Role)))

	f := repository.ProjectFilter{NoticeID: q.NoticeID, Status: q.Status}
	pageSize := q.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	f.Limit = pageSize
	if q.Page > 1 {
		f.Offset = (q.Page - 1) * pageSize
	}

	switch actor.Role {
	case models.RoleAdmin:
	case models.RoleEvaluator:
		f.EvaluatorID = actor.UserID
	default:
		proponents, err := s.store.Proponents().ListByUser(ctx, actor.UserID)
		if err != nil {
			return nil, 0, err
		}
		if len(proponents) == 0 {
			return []models.Project{}, 0, nil
		}
		for _, pr := range proponents {
			f.ProponentIDs = append(f.ProponentIDs, pr.ID)
		}
	}
	return s.store.Projects().List(ctx, f)
}

// requireProponentOwner fails unless actor's account owns the proponent.
func (s *proposalService) requireProponentOwner(ctx context.Context, st repository.Store, actor Actor, proponentID uuid.UUID) error {
	var pr models.Proponent
	if err := st.Proponents().GetByID(ctx, proponentID, &pr); err != nil {
		return err
	}
	if pr.UserID != actor.UserID {
		return appErr.New(appErr.CodeForbidden, "user does not own proponent")
	}
	return nil
}

// canRead allows admins, the owning proponent and assigned evaluators.
func (s *proposalService) canRead(ctx context.Context, st repository.Store, actor Actor, p *models.Project) error {
	switch actor.Role {
	case models.RoleAdmin:
		return nil
	case models.RoleEvaluator:
		evals, err := st.Evaluations().ListByProject(ctx, p.ID)
		if err != nil {
			return err
		}
		for _, e := range evals {
			if e.EvaluatorID == actor.UserID {
				return nil
			}
		}
		return appErr.New(appErr.CodeForbidden, "evaluator not assigned to project")
	default:
		return s.requireProponentOwner(ctx, st, actor, p.ProponentID)
	}
}
