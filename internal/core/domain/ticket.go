package domain

import (
	"fmt"
	"time"
)

// TicketStatus represents the lifecycle state of a ticket.
type TicketStatus string

const (
	TicketNouveau TicketStatus = "nouveau"
	TicketEnCours TicketStatus = "en_cours"
	TicketResolu  TicketStatus = "resolu"
	TicketFerme   TicketStatus = "ferme"
)

// ticketTransitions lists the allowed moves. ferme is terminal.
var ticketTransitions = map[TicketStatus][]TicketStatus{
	TicketNouveau: {TicketEnCours, TicketResolu, TicketFerme},
	TicketEnCours: {TicketResolu, TicketFerme},
	TicketResolu:  {TicketEnCours, TicketFerme},
}

func (s TicketStatus) Valid() bool {
	switch s {
	case TicketNouveau, TicketEnCours, TicketResolu, TicketFerme:
		return true
	}
	return false
}

func (s TicketStatus) IsClosed() bool {
	return s == TicketFerme
}

// CanTransitionTo reports whether moving from s to next is allowed. Staying on
// the current status is always allowed.
func (s TicketStatus) CanTransitionTo(next TicketStatus) bool {
	if s == next {
		return true
	}
	for _, allowed := range ticketTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type TicketPriorite string

const (
	PrioriteBasse   TicketPriorite = "basse"
	PrioriteNormale TicketPriorite = "normale"
	PrioriteHaute   TicketPriorite = "haute"
	PrioriteUrgente TicketPriorite = "urgente"
)

func (p TicketPriorite) Valid() bool {
	switch p {
	case PrioriteBasse, PrioriteNormale, PrioriteHaute, PrioriteUrgente:
		return true
	}
	return false
}

// Fichier is the metadata of a file attached to a ticket.
type Fichier struct {
	Nom      string `json:"nom"`
	URL      string `json:"url"`
	Taille   int64  `json:"taille"`
	TypeMime string `json:"type_mime,omitempty"`
}

// Ticket is a support request tracked through its status lifecycle.
type Ticket struct {
	ID               string         `json:"id"`
	Titre            string         `json:"titre"`
	Status           TicketStatus   `json:"status"`
	Priorite         TicketPriorite `json:"priorite"`
	ClientID         string         `json:"client_id"`
	DemandeurID      string         `json:"demandeur_id"`
	AgentID          *string        `json:"agent_id"`
	RequeteInitiale  string         `json:"requete_initiale"`
	Fichiers         []Fichier      `json:"fichiers"`
	DateCreation     time.Time      `json:"date_creation"`
	DateModification time.Time      `json:"date_modification"`
	DateFinPrevue    *time.Time     `json:"date_fin_prevue"`
	DateCloture      *time.Time     `json:"date_cloture"`
}

// SetStatus moves the ticket to next. Entering ferme stamps DateCloture once;
// closing an already closed ticket keeps the original stamp.
func (t *Ticket) SetStatus(next TicketStatus, now time.Time) error {
	if !next.Valid() {
		return Invalid("status", "must be one of: nouveau en_cours resolu ferme")
	}
	if !t.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w (from %s to %s)", ErrInvalidTransition, t.Status, next)
	}
	t.Status = next
	if next.IsClosed() && t.DateCloture == nil {
		closed := now.UTC()
		t.DateCloture = &closed
	}
	return nil
}

// Touch records a mutation.
func (t *Ticket) Touch(now time.Time) {
	t.DateModification = now.UTC()
}
