package handlers

import (
	"net/http"

	"github.com/pnab-cultura/engine/internal/api/types"
	"github.com/pnab-cultura/engine/internal/services"
)

type EvaluationsHandler struct {
	svc services.ProposalService
}

func NewEvaluationsHandler(svc services.ProposalService) *EvaluationsHandler {
	return &EvaluationsHandler{svc: svc}
}

// ListAssigned returns the caller's own evaluations.
func (h *EvaluationsHandler) ListAssigned(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	items, err := h.svc.ListAssignedEvaluations(r.Context(), a)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: items, Meta: &types.Meta{Total: int64(len(items))}})
}

func (h *EvaluationsHandler) Start(w http.ResponseWriter, r *http.Request) {
	a, id, err := actorAndID(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	e, err := h.svc.StartEvaluation(r.Context(), a, id)
	if err != nil {
		fail(w, r, err)
		return
	}
	ok(w, http.StatusOK, e)
}

// Record saves scores. With submit=true the evaluation is concluded.
func (h *EvaluationsHandler) Record(w http.ResponseWriter, r *http.Request) {
	a, id, err := actorAndID(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	var req types.RecordEvaluationRequest
	if err := decode(r, &req); err != nil {
		fail(w, r, err)
		return
	}
	res, err := h.svc.RecordEvaluation(r.Context(), a, id, &services.RecordInput{
		Criteria:        req.Criteria,
		Opinion:         req.Opinion,
		Rejected:        req.Rejected,
		RejectionReason: req.RejectionReason,
		Submit:          req.Submit,
	})
	if err != nil {
		fail(w, r, err)
		return
	}
	ok(w, http.StatusOK, res)
}
