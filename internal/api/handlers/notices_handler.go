package handlers

import (
	"net/http"

	"github.com/pnab-cultura/engine/internal/api/types"
	"github.com/pnab-cultura/engine/internal/models"
	"github.com/pnab-cultura/engine/internal/services"
)

type NoticesHandler struct {
	svc services.NoticeService
}

func NewNoticesHandler(svc services.NoticeService) *NoticesHandler {
	return &NoticesHandler{svc: svc}
}

func (h *NoticesHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListNotices(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: items, Meta: &types.Meta{Total: int64(len(items))}})
}

func (h *NoticesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		fail(w, r, err)
		return
	}
	n, err := h.svc.GetNotice(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	ok(w, http.StatusOK, n)
}

func (h *NoticesHandler) Create(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	var req types.NoticeRequest
	if err := decode(r, &req); err != nil {
		fail(w, r, err)
		return
	}
	n, err := h.svc.CreateNotice(r.Context(), a, &models.Notice{
		Code:          req.Code,
		Title:         req.Title,
		OpensAt:       req.OpensAt,
		ClosesAt:      req.ClosesAt,
		CeilingAmount: req.CeilingAmount.Decimal,
		TemplateFiles: req.TemplateFiles,
	})
	if err != nil {
		fail(w, r, err)
		return
	}
	ok(w, http.StatusCreated, n)
}
