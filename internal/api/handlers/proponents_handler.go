package handlers

import (
	"net/http"

	"github.com/pnab-cultura/engine/internal/api/types"
	"github.com/pnab-cultura/engine/internal/models"
	"github.com/pnab-cultura/engine/internal/services"
	appErr "github.com/pnab-cultura/engine/pkg/errors"
)

type ProponentsHandler struct {
	svc services.ProponentService
}

func NewProponentsHandler(svc services.ProponentService) *ProponentsHandler {
	return &ProponentsHandler{svc: svc}
}

func (h *ProponentsHandler) List(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	items, err := h.svc.ListProponents(r.Context(), a)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: items, Meta: &types.Meta{Total: int64(len(items))}})
}

func (h *ProponentsHandler) Create(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	in, err := proponentInput(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	p, err := h.svc.CreateProponent(r.Context(), a, in)
	if err != nil {
		fail(w, r, err)
		return
	}
	ok(w, http.StatusCreated, p)
}

func (h *ProponentsHandler) Get(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	id, err := idParam(r, "id")
	if err != nil {
		fail(w, r, err)
		return
	}
	p, err := h.svc.GetProponent(r.Context(), a, id)
	if err != nil {
		fail(w, r, err)
		return
	}
	ok(w, http.StatusOK, p)
}

func (h *ProponentsHandler) Update(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	id, err := idParam(r, "id")
	if err != nil {
		fail(w, r, err)
		return
	}
	in, err := proponentInput(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	p, err := h.svc.UpdateProponent(r.Context(), a, id, in)
	if err != nil {
		fail(w, r, err)
		return
	}
	ok(w, http.StatusOK, p)
}

func proponentInput(r *http.Request) (*services.ProponentInput, error) {
	var req types.ProponentRequest
	if err := decode(r, &req); err != nil {
		return nil, err
	}
	v, err := models.DecodeVariant(req.Kind, req.Details)
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInvalid, "invalid proponent details")
	}
	return &services.ProponentInput{
		DisplayName: req.DisplayName,
		Email:       req.Email,
		Phone:       req.Phone,
		Bank:        req.Bank,
		Variant:     v,
	}, nil
}
