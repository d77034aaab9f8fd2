package habilitacao

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pnab-cultura/engine/internal/models"
	appErr "github.com/pnab-cultura/engine/pkg/errors"
)

var now = time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)

func keys(reqs []Requirement) []string {
	out := make([]string, len(reqs))
	for i, r := range reqs {
		out[i] = r.Key
	}
	return out
}

func generate(t *testing.T, v models.ProponentVariant) []Requirement {
	t.Helper()
	reqs, err := Generate(v, now)
	require.NoError(t, err)
	return reqs
}

func TestGenerate_UnknownVariant(t *testing.T) {
	_, err := Generate(nil, now)
	assert.True(t, appErr.IsCode(err, appErr.CodeInvalid))
}

func TestGenerate_IndividualWithSpecialStatus(t *testing.T) {
	reqs := generate(t, models.Individual{SpecialStatus: true})
	require.Len(t, reqs, 4)
	assert.NotContains(t, keys(reqs), KeyProofOfResidence)
}

func TestGenerate_IndividualWithoutSpecialStatus(t *testing.T) {
	reqs := generate(t, models.Individual{SpecialStatus: false})
	require.Len(t, reqs, 5)
	assert.Equal(t, KeyProofOfResidence, reqs[4].Key)
}

func TestGenerate_FixedCatalogs(t *testing.T) {
	tests := []struct {
		name    string
		variant models.ProponentVariant
		want    []string
	}{
		{
			name:    "organization",
			variant: models.Organization{},
			want:    []string{KeyCNPJ, KeyIncorporation, KeyRepresentativeIdentity, KeyRepresentativeCPF, KeyBankruptcyTaxLabor, KeyFGTS},
		},
		{
			name:    "informal group",
			variant: models.InformalGroup{},
			want:    []string{KeyRepresentativeIdentity, KeyRepresentativeCPF, KeyFederalStateMunicipal, KeyProofOfResidence, KeyPositiveNegativeEffect, KeyRepresentationStatement},
		},
		{
			name:    "individual",
			variant: models.Individual{},
			want:    []string{KeyIdentity, KeyCPF, KeyStateMunicipalClearance, KeyLaborClearance, KeyProofOfResidence},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reqs := generate(t, tt.variant)
			assert.Equal(t, tt.want, keys(reqs))
			for _, r := range reqs {
				assert.True(t, r.Obligatory)
				assert.Equal(t, now, r.GeneratedAt)
				assert.NotEmpty(t, r.Name)
			}
		})
	}
}

func TestGenerate_DoesNotShareCatalogBacking(t *testing.T) {
	a := generate(t, models.Organization{})
	a[0].Name = "changed"
	b := generate(t, models.Organization{})
	assert.NotEqual(t, "changed", b[0].Name)
}

func TestEnsureEligible(t *testing.T) {
	assert.NoError(t, EnsureEligible(models.ProjectApproved))
	assert.NoError(t, EnsureEligible(models.ProjectInExecution))
	for _, s := range []models.ProjectStatus{models.ProjectDraft, models.ProjectFullyEvaluated, models.ProjectRejected, models.ProjectWithPendencies} {
		assert.True(t, appErr.IsCode(EnsureEligible(s), appErr.CodeNotEligibleForHabilitacao), s)
	}
}

func TestMerge_PreservesSubmittedFiles(t *testing.T) {
	projectID := uuid.New()
	first := Merge(projectID, nil, generate(t, models.Individual{SpecialStatus: false}))
	require.Len(t, first.Create, 5)
	require.Empty(t, first.Update)

	existing := make([]models.HabilitacaoDocument, len(first.Result))
	copy(existing, first.Result)
	for i := range existing {
		existing[i].ID = uuid.New()
	}
	// the proponent uploaded the CPF and proof of residence
	existing[1].Status = models.DocumentSubmitted
	existing[1].FileURL = "https://files.example/cpf.pdf"
	existing[4].Status = models.DocumentApproved
	existing[4].FileURL = "https://files.example/residencia.pdf"
	adhoc := models.HabilitacaoDocument{ID: uuid.New(), ProjectID: projectID, Key: "custom-alvara", Name: "Alvará", Position: 5, Status: models.DocumentSubmitted, FileURL: "https://files.example/alvara.pdf"}
	existing = append(existing, adhoc)

	// the proponent later declared the special status: proof of residence goes away
	later := now.Add(time.Hour)
	reqs, err := Generate(models.Individual{SpecialStatus: true}, later)
	require.NoError(t, err)
	plan := Merge(projectID, existing, reqs)

	assert.Empty(t, plan.Create)
	require.Len(t, plan.Delete, 1)
	assert.Equal(t, KeyProofOfResidence, plan.Delete[0].Key)

	require.Len(t, plan.Result, 5)
	cpfDoc := plan.Result[1]
	assert.Equal(t, existing[1].ID, cpfDoc.ID)
	assert.Equal(t, models.DocumentSubmitted, cpfDoc.Status)
	assert.Equal(t, "https://files.example/cpf.pdf", cpfDoc.FileURL)
	require.NotNil(t, cpfDoc.GeneratedAt)
	assert.Equal(t, later, *cpfDoc.GeneratedAt)

	last := plan.Result[4]
	assert.Equal(t, adhoc.ID, last.ID)
	assert.Equal(t, "https://files.example/alvara.pdf", last.FileURL)
	assert.False(t, last.Generated)
}

func TestMerge_IsStableWhenRegeneratedWithSameInput(t *testing.T) {
	projectID := uuid.New()
	reqs := generate(t, models.Organization{})
	first := Merge(projectID, nil, reqs)
	second := Merge(projectID, first.Result, reqs)
	assert.Empty(t, second.Create)
	assert.Empty(t, second.Delete)
	assert.Len(t, second.Result, len(first.Result))
}

func TestMerge_RenumbersAdhocAfterGenerated(t *testing.T) {
	projectID := uuid.New()
	existing := []models.HabilitacaoDocument{
		{ID: uuid.New(), ProjectID: projectID, Key: "custom-b", Position: 6},
		{ID: uuid.New(), ProjectID: projectID, Key: "custom-a", Position: 5},
	}
	plan := Merge(projectID, existing, generate(t, models.Organization{}))

	require.Len(t, plan.Result, 8)
	positions := make(map[int]string, len(plan.Result))
	for _, d := range plan.Result {
		_, dup := positions[d.Position]
		require.False(t, dup, "duplicate position %d", d.Position)
		positions[d.Position] = d.Key
	}
	assert.Equal(t, "custom-a", positions[6])
	assert.Equal(t, "custom-b", positions[7])

	// custom-a already sits where it belongs after a second merge
	again := Merge(projectID, plan.Result, generate(t, models.Organization{}))
	for _, d := range again.Update {
		assert.True(t, d.Generated, "ad-hoc %s rewritten without moving", d.Key)
	}
}

func TestMerge_GrowingCatalogKeepsAdhocApart(t *testing.T) {
	projectID := uuid.New()
	first := Merge(projectID, nil, generate(t, models.Individual{SpecialStatus: true}))
	existing := append([]models.HabilitacaoDocument{}, first.Result...)
	existing = append(existing,
		models.HabilitacaoDocument{ID: uuid.New(), ProjectID: projectID, Key: "custom-a", Position: 4},
		models.HabilitacaoDocument{ID: uuid.New(), ProjectID: projectID, Key: "custom-b", Position: 5},
	)

	plan := Merge(projectID, existing, generate(t, models.Individual{SpecialStatus: false}))
	require.Len(t, plan.Result, 7)
	for i, d := range plan.Result {
		assert.Equal(t, i, d.Position)
	}
	assert.Equal(t, "custom-a", plan.Result[5].Key)
	assert.Equal(t, "custom-b", plan.Result[6].Key)
}

func TestMerge_KeepsObligatoryOverride(t *testing.T) {
	projectID := uuid.New()
	reqs := generate(t, models.Organization{})
	existing := Merge(projectID, nil, reqs).Result
	existing[5].Obligatory = false

	plan := Merge(projectID, existing, reqs)
	assert.False(t, plan.Result[5].Obligatory)
	assert.True(t, plan.Result[0].Obligatory)
}

func TestPending(t *testing.T) {
	docs := []models.HabilitacaoDocument{
		{Key: "a", Obligatory: true, Status: models.DocumentApproved},
		{Key: "b", Obligatory: true, Status: models.DocumentSubmitted},
		{Key: "c", Obligatory: false, Status: models.DocumentPending},
	}
	pending := Pending(docs)
	require.Len(t, pending, 1)
	assert.Equal(t, "b", pending[0].Key)
}
