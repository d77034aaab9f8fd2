package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pnab-cultura/engine/internal/habilitacao"
	"github.com/pnab-cultura/engine/internal/models"
	appErr "github.com/pnab-cultura/engine/pkg/errors"
)

func keys(docs []models.HabilitacaoDocument) []string {
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.Key)
	}
	return out
}

func TestGenerateChecklist_NotEligibleBeforeApproval(t *testing.T) {
	f := newFixture(t)
	p := f.evaluated(t)

	_, err := f.svc.GenerateHabilitacaoChecklist(context.Background(), p.ID)
	assert.True(t, appErr.IsCode(err, appErr.CodeNotEligibleForHabilitacao))
}

func TestGenerateChecklist_SpecialStatusIndividual(t *testing.T) {
	f := newFixture(t)
	p := f.approved(t)

	docs, err := f.svc.ListDocuments(context.Background(), f.owner, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{
		habilitacao.KeyIdentity,
		habilitacao.KeyCPF,
		habilitacao.KeyStateMunicipalClearance,
		habilitacao.KeyLaborClearance,
	}, keys(docs))
	for _, d := range docs {
		assert.True(t, d.Obligatory)
		assert.True(t, d.Generated)
		assert.Equal(t, models.DocumentPending, d.Status)
	}
}

func TestGenerateChecklist_RegenerationFollowsProponent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.approved(t)

	docs, err := f.svc.ListDocuments(ctx, f.owner, p.ID)
	require.NoError(t, err)
	attached, err := f.svc.AttachDocument(ctx, f.owner, docs[0].ID, "https://arquivos.example.org/rg.pdf")
	require.NoError(t, err)
	custom, err := f.svc.AddDocumentRequest(ctx, f.admin, p.ID, &DocumentRequestInput{Name: "Portfólio", Obligatory: false})
	require.NoError(t, err)

	// the proponent no longer claims the special status
	require.NoError(t, f.proponent.SetVariant(models.Individual{
		CPF:     "12345678901",
		Address: models.Address{City: "Recife", State: "PE"},
	}))
	require.NoError(t, f.store.Proponents().Update(ctx, &f.proponent))

	regenerated, err := f.svc.GenerateHabilitacaoChecklist(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{
		habilitacao.KeyIdentity,
		habilitacao.KeyCPF,
		habilitacao.KeyStateMunicipalClearance,
		habilitacao.KeyLaborClearance,
		habilitacao.KeyProofOfResidence,
		custom.Key,
	}, keys(regenerated))

	assert.Equal(t, attached.ID, regenerated[0].ID)
	assert.Equal(t, models.DocumentSubmitted, regenerated[0].Status)
	assert.Equal(t, "https://arquivos.example.org/rg.pdf", regenerated[0].FileURL)

	again, err := f.svc.GenerateHabilitacaoChecklist(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, keys(regenerated), keys(again))
}

func TestDocumentWorkflow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.approved(t)

	docs, err := f.svc.ListDocuments(ctx, f.owner, p.ID)
	require.NoError(t, err)
	d := docs[0]

	_, err = f.svc.ListDocuments(ctx, f.stranger, p.ID)
	assert.True(t, appErr.IsCode(err, appErr.CodeForbidden))

	_, err = f.svc.AttachDocument(ctx, f.owner, d.ID, "not a url")
	assert.True(t, appErr.IsCode(err, appErr.CodeInvalid))
	_, err = f.svc.AttachDocument(ctx, f.stranger, d.ID, "https://x.example.org/a.pdf")
	assert.True(t, appErr.IsCode(err, appErr.CodeForbidden))

	_, err = f.svc.ReviewDocument(ctx, f.admin, d.ID, &ReviewInput{Approve: true})
	assert.True(t, appErr.IsCode(err, appErr.CodeInvalidTransition), "nothing submitted yet")

	_, err = f.svc.AttachDocument(ctx, f.owner, d.ID, "https://x.example.org/a.pdf")
	require.NoError(t, err)

	_, err = f.svc.ReviewDocument(ctx, f.admin, d.ID, &ReviewInput{})
	assert.True(t, appErr.IsCode(err, appErr.CodeInvalid), "rejection needs a note")

	rejected, err := f.svc.ReviewDocument(ctx, f.admin, d.ID, &ReviewInput{Note: "Documento ilegível"})
	require.NoError(t, err)
	assert.Equal(t, models.DocumentRejected, rejected.Status)

	resubmitted, err := f.svc.AttachDocument(ctx, f.owner, d.ID, "https://x.example.org/b.pdf")
	require.NoError(t, err)
	assert.Equal(t, models.DocumentSubmitted, resubmitted.Status)

	approved, err := f.svc.ReviewDocument(ctx, f.admin, d.ID, &ReviewInput{Approve: true})
	require.NoError(t, err)
	assert.Equal(t, models.DocumentApproved, approved.Status)

	_, err = f.svc.AttachDocument(ctx, f.owner, d.ID, "https://x.example.org/c.pdf")
	assert.True(t, appErr.IsCode(err, appErr.CodeInvalidTransition), "approved documents are final")

	optional, err := f.svc.SetDocumentObligatory(ctx, f.admin, docs[1].ID, false)
	require.NoError(t, err)
	assert.False(t, optional.Obligatory)
	_, err = f.svc.SetDocumentObligatory(ctx, f.owner, docs[1].ID, true)
	assert.True(t, appErr.IsCode(err, appErr.CodeForbidden))

	regenerated, err := f.svc.GenerateHabilitacaoChecklist(ctx, p.ID)
	require.NoError(t, err)
	for _, r := range regenerated {
		if r.ID == docs[1].ID {
			assert.False(t, r.Obligatory, "regeneration keeps the admin override")
		}
	}
}

func TestAddDocumentRequest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	evaluated := f.evaluated(t)
	_, err := f.svc.AddDocumentRequest(ctx, f.admin, evaluated.ID, &DocumentRequestInput{Name: "Portfólio"})
	assert.True(t, appErr.IsCode(err, appErr.CodeNotEligibleForHabilitacao))

	p := f.approved(t)
	_, err = f.svc.AddDocumentRequest(ctx, f.admin, p.ID, &DocumentRequestInput{Name: " "})
	assert.True(t, appErr.IsCode(err, appErr.CodeInvalid))

	d, err := f.svc.AddDocumentRequest(ctx, f.admin, p.ID, &DocumentRequestInput{Name: "Portfólio", Obligatory: true})
	require.NoError(t, err)
	assert.Contains(t, d.Key, CustomKeyPrefix)
	assert.False(t, d.Generated)
	assert.Equal(t, 4, d.Position)
}
