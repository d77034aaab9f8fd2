package handlers

import (
	"net/http"

	"github.com/pnab-cultura/engine/internal/api/types"
	"github.com/pnab-cultura/engine/internal/models"
	"github.com/pnab-cultura/engine/internal/services"
	appErr "github.com/pnab-cultura/engine/pkg/errors"
)

type DocumentsHandler struct {
	svc services.ProposalService
}

func NewDocumentsHandler(svc services.ProposalService) *DocumentsHandler {
	return &DocumentsHandler{svc: svc}
}

// Update attaches a file, records a review verdict or toggles the
// obligatory flag, depending on which field the body carries.
func (h *DocumentsHandler) Update(w http.ResponseWriter, r *http.Request) {
	a, id, err := actorAndID(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	var req types.DocumentUpdateRequest
	if err := decode(r, &req); err != nil {
		fail(w, r, err)
		return
	}

	set := 0
	for _, present := range []bool{req.FileURL != nil, req.Approve != nil, req.Obligatory != nil} {
		if present {
			set++
		}
	}
	if set != 1 {
		fail(w, r, appErr.New(appErr.CodeInvalid, "exactly one of file_url, approve or obligatory is required"))
		return
	}

	var d *models.HabilitacaoDocument
	switch {
	case req.FileURL != nil:
		d, err = h.svc.AttachDocument(r.Context(), a, id, *req.FileURL)
	case req.Approve != nil:
		d, err = h.svc.ReviewDocument(r.Context(), a, id, &services.ReviewInput{Approve: *req.Approve, Note: req.Note})
	default:
		d, err = h.svc.SetDocumentObligatory(r.Context(), a, id, *req.Obligatory)
	}
	if err != nil {
		fail(w, r, err)
		return
	}
	ok(w, http.StatusOK, d)
}
