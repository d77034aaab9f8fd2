package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ProponentKind discriminates the proponent variants.
type ProponentKind string

const (
	KindIndividual    ProponentKind = "pf"
	KindOrganization  ProponentKind = "pj"
	KindInformalGroup ProponentKind = "coletivo"
)

func (k ProponentKind) IsValid() bool {
	return k == KindIndividual || k == KindOrganization || k == KindInformalGroup
}

// Proponent is the applicant entity. Variant specific attributes live in
// Details and are decoded through Variant.
type Proponent struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID      uuid.UUID      `gorm:"type:uuid;index;not null" json:"user_id" validate:"required"`
	Kind        ProponentKind  `gorm:"type:varchar(16);not null;index" json:"kind" validate:"required,oneof=pf pj coletivo"`
	DisplayName string         `gorm:"not null" json:"display_name" validate:"required"`
	Email       string         `json:"email" validate:"omitempty,email"`
	Phone       string         `gorm:"type:varchar(32)" json:"phone"`
	Bank        BankDetails    `gorm:"embedded;embeddedPrefix:bank_" json:"bank"`
	Details     datatypes.JSON `gorm:"type:jsonb;not null" json:"details"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

type BankDetails struct {
	Bank    string `json:"bank"`
	Agency  string `json:"agency"`
	Account string `json:"account"`
	PixKey  string `json:"pix_key"`
}

type Address struct {
	Street       string `json:"street"`
	Number       string `json:"number"`
	Complement   string `json:"complement,omitempty"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city" validate:"required"`
	State        string `json:"state" validate:"required,len=2"`
	CEP          string `json:"cep" validate:"omitempty,len=8,numeric"`
}

type Representative struct {
	Name string `json:"name" validate:"required"`
	CPF  string `json:"cpf" validate:"required,len=11,numeric"`
	RG   string `json:"rg"`
}

// ProponentVariant is a closed union; only the three types below implement it.
type ProponentVariant interface {
	Kind() ProponentKind
	isProponentVariant()
}

// Individual (pessoa física).
type Individual struct {
	CPF       string     `json:"cpf" validate:"required,len=11,numeric"`
	RG        string     `json:"rg"`
	BirthDate *time.Time `json:"birth_date,omitempty"`
	Address   Address    `json:"address"`
	// SpecialStatus is true when the person declared belonging to a
	// population exempted from proving a fixed address (indigenous,
	// quilombola, circus/itinerant, nomadic or homeless).
	SpecialStatus bool `json:"special_status"`
}

// Organization (pessoa jurídica).
type Organization struct {
	CNPJ           string         `json:"cnpj" validate:"required,len=14,numeric"`
	LegalName      string         `json:"legal_name" validate:"required"`
	Representative Representative `json:"representative"`
	Address        Address        `json:"address"`
}

// InformalGroup (coletivo sem personalidade jurídica).
type InformalGroup struct {
	GroupName      string         `json:"group_name" validate:"required"`
	Representative Representative `json:"representative"`
	MemberCount    int            `json:"member_count" validate:"gte=2"`
	Address        Address        `json:"address"`
}

func (Individual) Kind() ProponentKind    { return KindIndividual }
func (Organization) Kind() ProponentKind  { return KindOrganization }
func (InformalGroup) Kind() ProponentKind { return KindInformalGroup }

func (Individual) isProponentVariant()    {}
func (Organization) isProponentVariant()  {}
func (InformalGroup) isProponentVariant() {}

// Variant decodes Details according to Kind.
func (p *Proponent) Variant() (ProponentVariant, error) {
	switch p.Kind {
	case KindIndividual:
		var v Individual
		if err := json.Unmarshal(p.Details, &v); err != nil {
			return nil, fmt.Errorf("decode individual details: %w", err)
		}
		return v, nil
	case KindOrganization:
		var v Organization
		if err := json.Unmarshal(p.Details, &v); err != nil {
			return nil, fmt.Errorf("decode organization details: %w", err)
		}
		return v, nil
	case KindInformalGroup:
		var v InformalGroup
		if err := json.Unmarshal(p.Details, &v); err != nil {
			return nil, fmt.Errorf("decode informal group details: %w", err)
		}
		return v, nil
	default:
		return nil, fmt.Errorf("unknown proponent kind %q", p.Kind)
	}
}

// SetVariant stores v in Details and aligns Kind with it.
func (p *Proponent) SetVariant(v ProponentVariant) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode proponent details: %w", err)
	}
	p.Kind = v.Kind()
	p.Details = datatypes.JSON(b)
	return nil
}

// DecodeVariant builds the variant for kind from raw JSON.
func DecodeVariant(kind ProponentKind, raw []byte) (ProponentVariant, error) {
	p := Proponent{Kind: kind, Details: datatypes.JSON(raw)}
	return p.Variant()
}
