package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/pnab-cultura/engine/internal/api/types"
	"github.com/pnab-cultura/engine/internal/lifecycle"
	"github.com/pnab-cultura/engine/internal/models"
	"github.com/pnab-cultura/engine/internal/services"
	appErr "github.com/pnab-cultura/engine/pkg/errors"
)

type ProjectsHandler struct {
	svc services.ProposalService
}

func NewProjectsHandler(svc services.ProposalService) *ProjectsHandler {
	return &ProjectsHandler{svc: svc}
}

func (h *ProjectsHandler) List(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	noticeID, err := optionalUUID(r.URL.Query().Get("notice_id"))
	if err != nil {
		fail(w, r, err)
		return
	}
	status := models.ProjectStatus(r.URL.Query().Get("status"))
	if status != "" && !status.IsValid() {
		fail(w, r, appErr.New(appErr.CodeInvalid, "unknown status").WithMeta("status", string(status)))
		return
	}
	page, size := pagination(r)
	items, total, err := h.svc.ListProjects(r.Context(), a, &services.ProjectQuery{
		NoticeID: noticeID,
		Status:   status,
		Page:     page,
		PageSize: size,
	})
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: items, Meta: &types.Meta{Page: page, PageSize: size, Total: total}})
}

func (h *ProjectsHandler) Create(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	in, err := draftInput(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	p, report, err := h.svc.CreateDraft(r.Context(), a, in)
	if err != nil {
		fail(w, r, err)
		return
	}
	ok(w, http.StatusCreated, types.DraftResponse{Project: p, Warnings: issues(report)})
}

func (h *ProjectsHandler) Get(w http.ResponseWriter, r *http.Request) {
	a, id, err := actorAndID(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	p, err := h.svc.GetProject(r.Context(), a, id)
	if err != nil {
		fail(w, r, err)
		return
	}
	ok(w, http.StatusOK, p)
}

func (h *ProjectsHandler) Update(w http.ResponseWriter, r *http.Request) {
	a, id, err := actorAndID(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	in, err := draftInput(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	p, report, err := h.svc.UpdateDraft(r.Context(), a, id, in)
	if err != nil {
		fail(w, r, err)
		return
	}
	ok(w, http.StatusOK, types.DraftResponse{Project: p, Warnings: issues(report)})
}

func (h *ProjectsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	a, id, err := actorAndID(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	if err := h.svc.DeleteDraft(r.Context(), a, id); err != nil {
		fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Validate runs the submission checks without changing the project.
func (h *ProjectsHandler) Validate(w http.ResponseWriter, r *http.Request) {
	a, id, err := actorAndID(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	report, err := h.svc.ValidateDraft(r.Context(), a, id)
	if err != nil {
		fail(w, r, err)
		return
	}
	ok(w, http.StatusOK, map[string]any{"ok": report.OK(), "issues": issues(report)})
}

func (h *ProjectsHandler) Submit(w http.ResponseWriter, r *http.Request) {
	a, id, err := actorAndID(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	p, err := h.svc.SubmitProject(r.Context(), a, id)
	if err != nil {
		fail(w, r, err)
		return
	}
	ok(w, http.StatusOK, p)
}

func (h *ProjectsHandler) Decide(w http.ResponseWriter, r *http.Request) {
	a, id, err := actorAndID(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	var req types.DecisionRequest
	if err := decode(r, &req); err != nil {
		fail(w, r, err)
		return
	}
	p, err := h.svc.DecideProject(r.Context(), a, id, &services.DecisionInput{Approve: *req.Approve, Reason: req.Reason})
	if err != nil {
		fail(w, r, err)
		return
	}
	ok(w, http.StatusOK, p)
}

func (h *ProjectsHandler) FlagPendencies(w http.ResponseWriter, r *http.Request) {
	a, id, err := actorAndID(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	var req types.PendencyRequest
	if err := decode(r, &req); err != nil {
		fail(w, r, err)
		return
	}
	p, err := h.svc.FlagPendencies(r.Context(), a, id, req.Reason)
	if err != nil {
		fail(w, r, err)
		return
	}
	ok(w, http.StatusOK, p)
}

func (h *ProjectsHandler) ResolvePendencies(w http.ResponseWriter, r *http.Request) {
	h.simpleTransition(w, r, h.svc.ResolvePendencies)
}

func (h *ProjectsHandler) StartExecution(w http.ResponseWriter, r *http.Request) {
	h.simpleTransition(w, r, h.svc.StartExecution)
}

func (h *ProjectsHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.simpleTransition(w, r, h.svc.CompleteProject)
}

type transitionFunc func(ctx context.Context, a services.Actor, id uuid.UUID) (*models.Project, error)

func (h *ProjectsHandler) simpleTransition(w http.ResponseWriter, r *http.Request, fn transitionFunc) {
	a, id, err := actorAndID(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	p, err := fn(r.Context(), a, id)
	if err != nil {
		fail(w, r, err)
		return
	}
	ok(w, http.StatusOK, p)
}

// Aggregate recomputes the project status from its evaluations.
func (h *ProjectsHandler) Aggregate(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		fail(w, r, err)
		return
	}
	res, err := h.svc.RecomputeAggregate(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	ok(w, http.StatusOK, res)
}

func (h *ProjectsHandler) ListEvaluations(w http.ResponseWriter, r *http.Request) {
	a, id, err := actorAndID(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	items, err := h.svc.ListEvaluations(r.Context(), a, id)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: items, Meta: &types.Meta{Total: int64(len(items))}})
}

func (h *ProjectsHandler) AssignEvaluator(w http.ResponseWriter, r *http.Request) {
	a, id, err := actorAndID(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	var req types.AssignEvaluatorRequest
	if err := decode(r, &req); err != nil {
		fail(w, r, err)
		return
	}
	evaluatorID, err := uuid.Parse(req.EvaluatorID)
	if err != nil {
		fail(w, r, appErr.New(appErr.CodeInvalid, "invalid evaluator_id"))
		return
	}
	e, err := h.svc.AssignEvaluator(r.Context(), a, id, evaluatorID)
	if err != nil {
		fail(w, r, err)
		return
	}
	ok(w, http.StatusCreated, e)
}

func (h *ProjectsHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	a, id, err := actorAndID(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	items, err := h.svc.ListDocuments(r.Context(), a, id)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: items, Meta: &types.Meta{Total: int64(len(items))}})
}

func (h *ProjectsHandler) AddDocument(w http.ResponseWriter, r *http.Request) {
	a, id, err := actorAndID(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	var req types.DocumentCreateRequest
	if err := decode(r, &req); err != nil {
		fail(w, r, err)
		return
	}
	obligatory := true
	if req.Obligatory != nil {
		obligatory = *req.Obligatory
	}
	d, err := h.svc.AddDocumentRequest(r.Context(), a, id, &services.DocumentRequestInput{
		Name:        req.Name,
		Description: req.Description,
		Obligatory:  obligatory,
	})
	if err != nil {
		fail(w, r, err)
		return
	}
	ok(w, http.StatusCreated, d)
}

// GenerateChecklist (re)builds the habilitação checklist synchronously.
func (h *ProjectsHandler) GenerateChecklist(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		fail(w, r, err)
		return
	}
	docs, err := h.svc.GenerateHabilitacaoChecklist(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: docs, Meta: &types.Meta{Total: int64(len(docs))}})
}

func actorAndID(r *http.Request) (services.Actor, uuid.UUID, error) {
	a, err := actor(r)
	if err != nil {
		return services.Actor{}, uuid.Nil, err
	}
	id, err := idParam(r, "id")
	if err != nil {
		return services.Actor{}, uuid.Nil, err
	}
	return a, id, nil
}

func issues(report lifecycle.Report) []lifecycle.Issue {
	if report.Issues == nil {
		return []lifecycle.Issue{}
	}
	return report.Issues
}

func draftInput(r *http.Request) (*services.DraftInput, error) {
	var req types.DraftRequest
	if err := decode(r, &req); err != nil {
		return nil, err
	}
	proponentID, err := optionalUUID(req.ProponentID)
	if err != nil {
		return nil, err
	}
	noticeID, err := uuid.Parse(req.NoticeID)
	if err != nil {
		return nil, appErr.New(appErr.CodeInvalid, "invalid notice_id")
	}
	in := &services.DraftInput{
		ProponentID:       proponentID,
		NoticeID:          noticeID,
		Name:              req.Name,
		Format:            req.Format,
		Segment:           req.Segment,
		Summary:           req.Summary,
		Objectives:        req.Objectives,
		Justification:     req.Justification,
		TargetAudience:    req.TargetAudience,
		AccessibilityPlan: req.AccessibilityPlan,
		RequestedAmount:   req.RequestedAmount.Decimal,
		TermsAccepted:     req.TermsAccepted,
	}
	for _, b := range req.BudgetItems {
		in.BudgetItems = append(in.BudgetItems, models.BudgetItem{
			Description: b.Description,
			Unit:        b.Unit,
			UnitValue:   b.UnitValue.Decimal,
			Quantity:    b.Quantity,
		})
	}
	for _, m := range req.TeamMembers {
		in.TeamMembers = append(in.TeamMembers, models.TeamMember{Name: m.Name, Role: m.Role, CPF: m.CPF})
	}
	for _, a := range req.Activities {
		in.Activities = append(in.Activities, models.Activity{
			Description: a.Description,
			Stage:       a.Stage,
			StartsOn:    a.StartsOn,
			EndsOn:      a.EndsOn,
		})
	}
	for _, g := range req.Goals {
		in.Goals = append(in.Goals, models.Goal{Description: g.Description, ExpectedQuantity: g.ExpectedQuantity})
	}
	return in, nil
}
