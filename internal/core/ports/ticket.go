package ports

import (
	"context"
	"time"

	"github.com/supportdesk/support-system/internal/core/domain"
)

// TicketFilter carries list parameters. DemandeurID is forced by the service
// for demandeurs.
type TicketFilter struct {
	DemandeurID string
	AgentID     string
	ClientID    string
	Status      string
	Search      string // partial match on titre or requete_initiale
	Page        domain.PageRequest
}

type TicketRepository interface {
	Create(ctx context.Context, t *domain.Ticket) error
	FindByID(ctx context.Context, id string) (*domain.Ticket, error)
	List(ctx context.Context, f TicketFilter) ([]*domain.Ticket, int64, error)
	// Update writes the mutable fields. date_cloture is only ever written when
	// still null in the store.
	Update(ctx context.Context, t *domain.Ticket) (*domain.Ticket, error)
	CountByClient(ctx context.Context, clientID string) (int64, error)
}

type CreateTicketInput struct {
	Titre           string
	ClientID        string
	DemandeurID     string
	AgentID         *string
	RequeteInitiale string
	Priorite        string
	DateFinPrevue   *time.Time
	Fichiers        []domain.Fichier
}

// UpdateTicketInput holds the provided fields only. An AgentID pointing to ""
// unassigns the ticket.
type UpdateTicketInput struct {
	Titre           *string
	RequeteInitiale *string
	Status          *string
	Priorite        *string
	AgentID         *string
	DateFinPrevue   *time.Time
	Fichiers        *[]domain.Fichier
}

type ListTicketsInput struct {
	ClientID string
	AgentID  string
	Status   string
	Search   string
	Page     domain.PageRequest
}

type TicketPage struct {
	Items      []*domain.Ticket
	Pagination domain.Pagination
}

type TicketService interface {
	Create(ctx context.Context, actor domain.Actor, in CreateTicketInput) (*domain.Ticket, error)
	Get(ctx context.Context, actor domain.Actor, id string) (*domain.Ticket, error)
	List(ctx context.Context, actor domain.Actor, in ListTicketsInput) (*TicketPage, error)
	Update(ctx context.Context, actor domain.Actor, id string, in UpdateTicketInput) (*domain.Ticket, error)
}
