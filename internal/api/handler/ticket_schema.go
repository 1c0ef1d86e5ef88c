package handler

import (
	"time"

	"github.com/supportdesk/support-system/internal/core/domain"
	"github.com/supportdesk/support-system/internal/core/ports"
)

type fichierRequest struct {
	Nom      string `json:"nom" validate:"required"`
	URL      string `json:"url" validate:"required,url"`
	Taille   int64  `json:"taille" validate:"gte=0"`
	TypeMime string `json:"type_mime"`
}

type createTicketRequest struct {
	Titre           string           `json:"titre" validate:"required"`
	ClientID        string           `json:"client_id" validate:"required"`
	DemandeurID     string           `json:"demandeur_id"`
	AgentID         *string          `json:"agent_id"`
	RequeteInitiale string           `json:"requete_initiale" validate:"required"`
	Priorite        string           `json:"priorite" validate:"omitempty,oneof=basse normale haute urgente"`
	DateFinPrevue   *time.Time       `json:"date_fin_prevue"`
	Fichiers        []fichierRequest `json:"fichiers" validate:"dive"`
}

type updateTicketRequest struct {
	Titre           *string           `json:"titre"`
	RequeteInitiale *string           `json:"requete_initiale"`
	Status          *string           `json:"status" validate:"omitempty,oneof=nouveau en_cours resolu ferme"`
	Priorite        *string           `json:"priorite" validate:"omitempty,oneof=basse normale haute urgente"`
	AgentID         *string           `json:"agent_id"`
	DateFinPrevue   *time.Time        `json:"date_fin_prevue"`
	Fichiers        *[]fichierRequest `json:"fichiers" validate:"omitempty,dive"`
}

type listTicketsQuery struct {
	Page     int    `query:"page"`
	Limit    int    `query:"limit"`
	Search   string `query:"search"`
	Status   string `query:"status"`
	ClientID string `query:"client_id"`
	AgentID  string `query:"agent_id"`
}

// pageResponse is the envelope of every paginated list.
type pageResponse[T any] struct {
	Data       []T               `json:"data"`
	Pagination domain.Pagination `json:"pagination"`
}

func toFichiers(in []fichierRequest) []domain.Fichier {
	out := make([]domain.Fichier, 0, len(in))
	for _, f := range in {
		out = append(out, domain.Fichier{Nom: f.Nom, URL: f.URL, Taille: f.Taille, TypeMime: f.TypeMime})
	}
	return out
}

func (r createTicketRequest) toInput() ports.CreateTicketInput {
	return ports.CreateTicketInput{
		Titre:           r.Titre,
		ClientID:        r.ClientID,
		DemandeurID:     r.DemandeurID,
		AgentID:         r.AgentID,
		RequeteInitiale: r.RequeteInitiale,
		Priorite:        r.Priorite,
		DateFinPrevue:   r.DateFinPrevue,
		Fichiers:        toFichiers(r.Fichiers),
	}
}

func (r updateTicketRequest) toInput() ports.UpdateTicketInput {
	in := ports.UpdateTicketInput{
		Titre:           r.Titre,
		RequeteInitiale: r.RequeteInitiale,
		Status:          r.Status,
		Priorite:        r.Priorite,
		AgentID:         r.AgentID,
		DateFinPrevue:   r.DateFinPrevue,
	}
	if r.Fichiers != nil {
		fichiers := toFichiers(*r.Fichiers)
		in.Fichiers = &fichiers
	}
	return in
}

func (q listTicketsQuery) toInput() ports.ListTicketsInput {
	return ports.ListTicketsInput{
		ClientID: q.ClientID,
		AgentID:  q.AgentID,
		Status:   q.Status,
		Search:   q.Search,
		Page:     domain.PageRequest{Page: q.Page, Limit: q.Limit},
	}
}
