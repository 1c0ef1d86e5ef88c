package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/supportdesk/support-system/internal/api/metrics"
	"github.com/supportdesk/support-system/internal/core/authz"
	"github.com/supportdesk/support-system/internal/core/domain"
	"github.com/supportdesk/support-system/internal/core/ports"
)

type TicketService struct {
	repo       ports.TicketRepository
	clients    ports.ClientRepository
	principals ports.PrincipalRepository
	guard      *authz.Guard
	notifier   ports.Notifier
	log        zerolog.Logger
	now        func() time.Time
}

func NewTicketService(
	repo ports.TicketRepository,
	clients ports.ClientRepository,
	principals ports.PrincipalRepository,
	guard *authz.Guard,
	notifier ports.Notifier,
	log zerolog.Logger,
) *TicketService {
	return &TicketService{
		repo:       repo,
		clients:    clients,
		principals: principals,
		guard:      guard,
		notifier:   notifier,
		log:        log,
		now:        time.Now,
	}
}

func (s *TicketService) Create(ctx context.Context, actor domain.Actor, in ports.CreateTicketInput) (*domain.Ticket, error) {
	titre := strings.TrimSpace(in.Titre)
	requete := strings.TrimSpace(in.RequeteInitiale)
	switch {
	case titre == "":
		return nil, domain.Required("titre")
	case in.ClientID == "":
		return nil, domain.Required("client_id")
	case requete == "":
		return nil, domain.Required("requete_initiale")
	}

	priorite := domain.PrioriteNormale
	if in.Priorite != "" {
		priorite = domain.TicketPriorite(in.Priorite)
		if !priorite.Valid() {
			return nil, domain.Invalid("priorite", "must be one of: basse normale haute urgente")
		}
	}

	owner, err := ownerFor(ctx, s.principals, actor, in.DemandeurID)
	if err != nil {
		return nil, err
	}
	if err := s.guard.Authorize(actor, authz.OpCreate, authz.ResourceTicket, owner); err != nil {
		return nil, err
	}
	if err := requireClient(ctx, s.clients, in.ClientID); err != nil {
		return nil, err
	}

	var agentID *string
	if id := domain.OptionalString(in.AgentID); id != nil {
		if err := s.guard.Authorize(actor, authz.OpAssign, authz.ResourceTicket, owner); err != nil {
			return nil, err
		}
		if _, err := requireRole(ctx, s.principals, *id, domain.RoleAgent); err != nil {
			return nil, err
		}
		agentID = id
	}

	fichiers := in.Fichiers
	if fichiers == nil {
		fichiers = []domain.Fichier{}
	}

	now := s.now().UTC()
	t := &domain.Ticket{
		Titre:            titre,
		Status:           domain.TicketNouveau,
		Priorite:         priorite,
		ClientID:         in.ClientID,
		DemandeurID:      owner,
		AgentID:          agentID,
		RequeteInitiale:  requete,
		Fichiers:         fichiers,
		DateCreation:     now,
		DateModification: now,
		DateFinPrevue:    in.DateFinPrevue,
	}
	if err := s.repo.Create(ctx, t); err != nil {
		s.log.Error().Err(err).Msg("failed to create ticket")
		return nil, err
	}

	metrics.TicketsCreatedTotal.WithLabelValues(string(actor.Role)).Inc()
	s.log.Info().Str("ticket_id", t.ID).Str("client_id", t.ClientID).Str("demandeur_id", owner).Msg("ticket created")

	s.notifier.Notify(ctx, domain.Notification{
		Kind:        domain.EventTicketCreated,
		EntityID:    t.ID,
		Reference:   t.Titre,
		DemandeurID: t.DemandeurID,
		ActorID:     actor.ID,
		ActorRole:   actor.Role,
		Status:      string(t.Status),
		Message:     t.RequeteInitiale,
		OccurredAt:  now,
	})
	return t, nil
}

func (s *TicketService) Get(ctx context.Context, actor domain.Actor, id string) (*domain.Ticket, error) {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.guard.Authorize(actor, authz.OpRead, authz.ResourceTicket, t.DemandeurID); err != nil {
		return nil, err
	}
	return t, nil
}

// List scopes demandeurs to their own tickets.
func (s *TicketService) List(ctx context.Context, actor domain.Actor, in ports.ListTicketsInput) (*ports.TicketPage, error) {
	filter := ports.TicketFilter{
		ClientID: in.ClientID,
		AgentID:  in.AgentID,
		Status:   in.Status,
		Search:   strings.TrimSpace(in.Search),
		Page:     in.Page.Normalize(),
	}
	owner := ""
	if actor.Role == domain.RoleDemandeur {
		owner = actor.ID
		filter.DemandeurID = actor.ID
	}
	if err := s.guard.Authorize(actor, authz.OpRead, authz.ResourceTicket, owner); err != nil {
		return nil, err
	}
	if filter.Status != "" && !domain.TicketStatus(filter.Status).Valid() {
		return nil, domain.Invalid("status", "must be one of: nouveau en_cours resolu ferme")
	}

	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &ports.TicketPage{Items: items, Pagination: domain.NewPagination(filter.Page, total)}, nil
}

// Update applies the provided fields. Reassignment and status changes need
// their own permissions on top of update.
func (s *TicketService) Update(ctx context.Context, actor domain.Actor, id string, in ports.UpdateTicketInput) (*domain.Ticket, error) {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.guard.Authorize(actor, authz.OpUpdate, authz.ResourceTicket, t.DemandeurID); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	previous := t.Status

	if in.Titre != nil {
		v := strings.TrimSpace(*in.Titre)
		if v == "" {
			return nil, domain.Required("titre")
		}
		t.Titre = v
	}
	if in.RequeteInitiale != nil {
		v := strings.TrimSpace(*in.RequeteInitiale)
		if v == "" {
			return nil, domain.Required("requete_initiale")
		}
		t.RequeteInitiale = v
	}
	if in.Priorite != nil {
		p := domain.TicketPriorite(*in.Priorite)
		if !p.Valid() {
			return nil, domain.Invalid("priorite", "must be one of: basse normale haute urgente")
		}
		t.Priorite = p
	}
	if in.DateFinPrevue != nil {
		t.DateFinPrevue = in.DateFinPrevue
	}
	if in.Fichiers != nil {
		t.Fichiers = *in.Fichiers
	}
	if in.AgentID != nil {
		if err := s.guard.Authorize(actor, authz.OpAssign, authz.ResourceTicket, t.DemandeurID); err != nil {
			return nil, err
		}
		agentID := domain.OptionalString(in.AgentID)
		if agentID != nil {
			if _, err := requireRole(ctx, s.principals, *agentID, domain.RoleAgent); err != nil {
				return nil, err
			}
		}
		t.AgentID = agentID
	}
	if in.Status != nil {
		if err := s.guard.Authorize(actor, authz.OpSetStatus, authz.ResourceTicket, t.DemandeurID); err != nil {
			return nil, err
		}
		if err := t.SetStatus(domain.TicketStatus(*in.Status), now); err != nil {
			return nil, err
		}
	}
	t.Touch(now)

	updated, err := s.repo.Update(ctx, t)
	if err != nil {
		s.log.Error().Err(err).Str("ticket_id", id).Msg("failed to update ticket")
		return nil, err
	}

	s.log.Info().Str("ticket_id", id).Str("by", actor.ID).Str("status", string(updated.Status)).Msg("ticket updated")
	if updated.Status != previous {
		s.notifier.Notify(ctx, domain.Notification{
			Kind:        domain.EventTicketStatusChanged,
			EntityID:    updated.ID,
			Reference:   updated.Titre,
			DemandeurID: updated.DemandeurID,
			ActorID:     actor.ID,
			ActorRole:   actor.Role,
			Status:      string(updated.Status),
			OccurredAt:  now,
		})
	}
	return updated, nil
}
