package handler

import (
	"time"

	"github.com/supportdesk/support-system/internal/core/domain"
	"github.com/supportdesk/support-system/internal/core/ports"
)

// contactRequest is embedded in create and update payloads. An empty string
// on update clears the field.
type contactRequest struct {
	NomClient       *string `json:"nom_client"`
	PrenomClient    *string `json:"prenom_client"`
	EmailClient     *string `json:"email_client"`
	SiretClient     *string `json:"siret_client"`
	Adresse         *string `json:"adresse"`
	CodePostal      *string `json:"code_postal"`
	Ville           *string `json:"ville"`
	OperateurCedant *string `json:"operateur_cedant"`
}

type createPortabiliteRequest struct {
	contactRequest
	ClientID                string     `json:"client_id" validate:"required"`
	DemandeurID             string     `json:"demandeur_id"`
	NumerosPortes           string     `json:"numeros_portes" validate:"required"`
	FiabilisationDemandee   bool       `json:"fiabilisation_demandee"`
	DemandeSignee           bool       `json:"demande_signee"`
	DatePortabiliteDemandee *time.Time `json:"date_portabilite_demandee"`
}

type updatePortabiliteRequest struct {
	contactRequest
	ClientID                *string    `json:"client_id"`
	NumerosPortes           *string    `json:"numeros_portes"`
	Status                  *string    `json:"status" validate:"omitempty,oneof=nouveau en_cours planifiee terminee annulee"`
	FiabilisationDemandee   *bool      `json:"fiabilisation_demandee"`
	DemandeSignee           *bool      `json:"demande_signee"`
	DatePortabiliteDemandee *time.Time `json:"date_portabilite_demandee"`
}

type listPortabilitesQuery struct {
	Page     int    `query:"page"`
	Limit    int    `query:"limit"`
	Search   string `query:"search"`
	Status   string `query:"status"`
	ClientID string `query:"client_id"`
}

func (r contactRequest) toContact() ports.PortabiliteContact {
	return ports.PortabiliteContact{
		NomClient:       r.NomClient,
		PrenomClient:    r.PrenomClient,
		EmailClient:     r.EmailClient,
		SiretClient:     r.SiretClient,
		Adresse:         r.Adresse,
		CodePostal:      r.CodePostal,
		Ville:           r.Ville,
		OperateurCedant: r.OperateurCedant,
	}
}

func (r createPortabiliteRequest) toInput() ports.CreatePortabiliteInput {
	return ports.CreatePortabiliteInput{
		ClientID:                r.ClientID,
		DemandeurID:             r.DemandeurID,
		NumerosPortes:           r.NumerosPortes,
		Contact:                 r.toContact(),
		FiabilisationDemandee:   r.FiabilisationDemandee,
		DemandeSignee:           r.DemandeSignee,
		DatePortabiliteDemandee: r.DatePortabiliteDemandee,
	}
}

func (r updatePortabiliteRequest) toInput() ports.UpdatePortabiliteInput {
	return ports.UpdatePortabiliteInput{
		ClientID:                r.ClientID,
		NumerosPortes:           r.NumerosPortes,
		Contact:                 r.toContact(),
		Status:                  r.Status,
		FiabilisationDemandee:   r.FiabilisationDemandee,
		DemandeSignee:           r.DemandeSignee,
		DatePortabiliteDemandee: r.DatePortabiliteDemandee,
	}
}

func (q listPortabilitesQuery) toInput() ports.ListPortabilitesInput {
	return ports.ListPortabilitesInput{
		ClientID: q.ClientID,
		Status:   q.Status,
		Search:   q.Search,
		Page:     domain.PageRequest{Page: q.Page, Limit: q.Limit},
	}
}
