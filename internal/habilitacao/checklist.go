// Package habilitacao derives the compliance-document checklist an approved
// project must satisfy before funds are disbursed.
package habilitacao

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/pnab-cultura/engine/internal/models"
	appErr "github.com/pnab-cultura/engine/pkg/errors"
)

// Requirement is one generated checklist entry.
type Requirement struct {
	Key         string    `json:"key"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Obligatory  bool      `json:"obligatory"`
	GeneratedAt time.Time `json:"generated_at"`
}

type entry struct {
	key, name, description string
}

// Stable requirement keys. Keys are persisted; never rename one.
const (
	KeyIdentity                = "identity_document"
	KeyCPF                     = "cpf"
	KeyStateMunicipalClearance = "state_municipal_debt_clearance"
	KeyLaborClearance          = "labor_debt_clearance"
	KeyProofOfResidence        = "proof_of_residence"
	KeyCNPJ                    = "cnpj_card"
	KeyIncorporation           = "incorporation_documents"
	KeyRepresentativeIdentity  = "representative_identity"
	KeyRepresentativeCPF       = "representative_cpf"
	KeyBankruptcyTaxLabor      = "bankruptcy_tax_labor_certificates"
	KeyFGTS                    = "fgts_regularity_certificate"
	KeyFederalStateMunicipal   = "federal_state_municipal_debt_certificate"
	KeyPositiveNegativeEffect  = "positive_with_negative_effect_certificates"
	KeyRepresentationStatement = "representation_declaration"
)

var (
	identity = entry{KeyIdentity, "Documento de identidade", "RG, CNH ou outro documento oficial com foto."}
	cpf      = entry{KeyCPF, "CPF", "Comprovante de inscrição no Cadastro de Pessoas Físicas."}

	individualCatalog = []entry{
		identity,
		cpf,
		{KeyStateMunicipalClearance, "Certidão negativa de débitos estaduais e municipais", "Certidões de regularidade junto às fazendas estadual e municipal."},
		{KeyLaborClearance, "Certidão negativa de débitos trabalhistas", "CNDT emitida pelo Tribunal Superior do Trabalho."},
	}

	proofOfResidence = entry{KeyProofOfResidence, "Comprovante de residência", "Conta de consumo ou declaração de residência dos últimos três meses."}

	organizationCatalog = []entry{
		{KeyCNPJ, "Cartão CNPJ", "Comprovante de inscrição e situação cadastral no CNPJ."},
		{KeyIncorporation, "Atos constitutivos", "Estatuto ou contrato social e ata de eleição da diretoria vigente."},
		{KeyRepresentativeIdentity, "Documento de identidade do representante legal", "Documento oficial com foto do representante legal."},
		{KeyRepresentativeCPF, "CPF do representante legal", "Comprovante de inscrição no CPF do representante legal."},
		{KeyBankruptcyTaxLabor, "Certidões de falência, tributos e débitos trabalhistas", "Certidão negativa de falência e concordata, certidões de regularidade fiscal e CNDT."},
		{KeyFGTS, "Certificado de regularidade do FGTS", "CRF emitido pela Caixa Econômica Federal."},
	}

	informalGroupCatalog = []entry{
		{KeyRepresentativeIdentity, "Documento de identidade do representante", "Documento oficial com foto do representante do coletivo."},
		{KeyRepresentativeCPF, "CPF do representante", "Comprovante de inscrição no CPF do representante do coletivo."},
		{KeyFederalStateMunicipal, "Certidão de débitos federais, estaduais e municipais", "Certidões de regularidade fiscal nas três esferas."},
		proofOfResidence,
		{KeyPositiveNegativeEffect, "Certidões positivas com efeito de negativa", "Quando houver débitos parcelados ou suspensos."},
		{KeyRepresentationStatement, "Declaração de representação", "Declaração assinada pelos membros indicando o representante."},
	}
)

// Generate returns the checklist for v. Individuals who declared the
// special status are exempted from proof of residence.
func Generate(v models.ProponentVariant, now time.Time) ([]Requirement, error) {
	var entries []entry
	switch p := v.(type) {
	case models.Individual:
		entries = append(entries, individualCatalog...)
		if !p.SpecialStatus {
			entries = append(entries, proofOfResidence)
		}
	case models.Organization:
		entries = organizationCatalog
	case models.InformalGroup:
		entries = informalGroupCatalog
	default:
		return nil, appErr.New(appErr.CodeInvalid, "unknown proponent variant").
			WithMeta("variant", fmt.Sprintf("%T", v))
	}

	out := make([]Requirement, 0, len(entries))
	for _, e := range entries {
		out = append(out, Requirement{
			Key:         e.key,
			Name:        e.name,
			Description: e.description,
			Obligatory:  true,
			GeneratedAt: now,
		})
	}
	return out, nil
}

// EnsureEligible fails unless the project may hold a habilitação checklist.
func EnsureEligible(status models.ProjectStatus) error {
	switch status {
	case models.ProjectApproved, models.ProjectInExecution:
		return nil
	default:
		return appErr.New(appErr.CodeNotEligibleForHabilitacao, "checklist is only available for approved projects").
			WithMeta("status", string(status))
	}
}

// Plan is the outcome of merging a regenerated checklist into the
// documents a project already holds.
type Plan struct {
	Create []models.HabilitacaoDocument
	Update []models.HabilitacaoDocument
	Delete []models.HabilitacaoDocument
	// Result is the full checklist after applying the plan, by position.
	Result []models.HabilitacaoDocument
}

// Merge reconciles generated requirements with existing documents.
// Generated documents whose key persists keep their id, status, file,
// review note and obligatory flag; generated documents whose key vanished are dropped; ad-hoc
// documents keep their relative order and are renumbered to follow the
// generated ones.
func Merge(projectID uuid.UUID, existing []models.HabilitacaoDocument, reqs []Requirement) Plan {
	var plan Plan

	byKey := make(map[string]models.HabilitacaoDocument, len(existing))
	var adhoc []models.HabilitacaoDocument
	for _, d := range existing {
		if d.Generated {
			byKey[d.Key] = d
		} else {
			adhoc = append(adhoc, d)
		}
	}

	seen := make(map[string]bool, len(reqs))
	for i, r := range reqs {
		seen[r.Key] = true
		generatedAt := r.GeneratedAt
		if d, ok := byKey[r.Key]; ok {
			d.Name = r.Name
			d.Description = r.Description
			d.Position = i
			d.GeneratedAt = &generatedAt
			plan.Update = append(plan.Update, d)
			plan.Result = append(plan.Result, d)
			continue
		}
		d := models.HabilitacaoDocument{
			ProjectID:   projectID,
			Key:         r.Key,
			Name:        r.Name,
			Description: r.Description,
			Obligatory:  r.Obligatory,
			Generated:   true,
			Position:    i,
			Status:      models.DocumentPending,
			GeneratedAt: &generatedAt,
		}
		plan.Create = append(plan.Create, d)
		plan.Result = append(plan.Result, d)
	}

	for _, d := range existing {
		if d.Generated && !seen[d.Key] {
			plan.Delete = append(plan.Delete, d)
		}
	}

	sort.SliceStable(adhoc, func(i, j int) bool { return adhoc[i].Position < adhoc[j].Position })
	for i := range adhoc {
		if pos := len(reqs) + i; adhoc[i].Position != pos {
			adhoc[i].Position = pos
			plan.Update = append(plan.Update, adhoc[i])
		}
		plan.Result = append(plan.Result, adhoc[i])
	}
	return plan
}

// Pending returns the obligatory documents that are not yet approved.
func Pending(docs []models.HabilitacaoDocument) []models.HabilitacaoDocument {
	var out []models.HabilitacaoDocument
	for _, d := range docs {
		if d.Obligatory && d.Status != models.DocumentApproved {
			out = append(out, d)
		}
	}
	return out
}
