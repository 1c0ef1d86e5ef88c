package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/supportdesk/support-system/internal/api/metrics"
	"github.com/supportdesk/support-system/internal/core/authz"
	"github.com/supportdesk/support-system/internal/core/domain"
	"github.com/supportdesk/support-system/internal/core/ports"
)

// parent is what a thread needs to know about the entity it hangs off.
type parent struct {
	ownerID   string
	reference string
}

// EchangeService serves both comment threads. Each thread has its own store
// and its own parent resolution.
type EchangeService struct {
	threads    map[domain.Thread]ports.EchangeRepository
	tickets    ports.TicketRepository
	portabs    ports.PortabiliteRepository
	principals ports.PrincipalRepository
	guard      *authz.Guard
	notifier   ports.Notifier
	log        zerolog.Logger
	now        func() time.Time
}

func NewEchangeService(
	ticketEchanges ports.EchangeRepository,
	portabiliteEchanges ports.EchangeRepository,
	tickets ports.TicketRepository,
	portabilites ports.PortabiliteRepository,
	principals ports.PrincipalRepository,
	guard *authz.Guard,
	notifier ports.Notifier,
	log zerolog.Logger,
) *EchangeService {
	return &EchangeService{
		threads: map[domain.Thread]ports.EchangeRepository{
			domain.ThreadTicket:      ticketEchanges,
			domain.ThreadPortabilite: portabiliteEchanges,
		},
		tickets:    tickets,
		portabs:    portabilites,
		principals: principals,
		guard:      guard,
		notifier:   notifier,
		log:        log,
		now:        time.Now,
	}
}

func (s *EchangeService) repo(thread domain.Thread) (ports.EchangeRepository, error) {
	r, ok := s.threads[thread]
	if !ok {
		return nil, domain.Invalid("thread", "unknown thread %q", thread)
	}
	return r, nil
}

func (s *EchangeService) resolve(ctx context.Context, thread domain.Thread, id string) (*parent, authz.Resource, error) {
	switch thread {
	case domain.ThreadTicket:
		t, err := s.tickets.FindByID(ctx, id)
		if err != nil {
			return nil, authz.ResourceTicket, err
		}
		return &parent{ownerID: t.DemandeurID, reference: t.Titre}, authz.ResourceTicket, nil
	case domain.ThreadPortabilite:
		p, err := s.portabs.FindByID(ctx, id)
		if err != nil {
			return nil, authz.ResourcePortabilite, err
		}
		return &parent{ownerID: p.DemandeurID, reference: p.NumeroPortabilite}, authz.ResourcePortabilite, nil
	}
	return nil, "", domain.Invalid("thread", "unknown thread %q", thread)
}

// List returns the thread oldest first. A parent that does not exist has an
// empty thread.
func (s *EchangeService) List(ctx context.Context, actor domain.Actor, thread domain.Thread, parentID string) ([]*domain.Echange, error) {
	repo, err := s.repo(thread)
	if err != nil {
		return nil, err
	}
	if parentID == "" {
		return nil, domain.Required(string(thread) + "Id")
	}

	p, res, err := s.resolve(ctx, thread, parentID)
	if errors.Is(err, domain.ErrNotFound) {
		return []*domain.Echange{}, nil
	}
	if err != nil {
		return nil, err
	}
	if err := s.guard.Authorize(actor, authz.OpRead, res, p.ownerID); err != nil {
		return nil, err
	}

	items, err := repo.ListByParent(ctx, parentID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*domain.Echange{}
	}
	return items, nil
}

func (s *EchangeService) Create(ctx context.Context, actor domain.Actor, thread domain.Thread, parentID, message string) (*domain.Echange, error) {
	repo, err := s.repo(thread)
	if err != nil {
		return nil, err
	}
	if parentID == "" {
		return nil, domain.Required(string(thread) + "Id")
	}
	msg, err := domain.NormalizeMessage(message)
	if err != nil {
		return nil, err
	}

	p, res, err := s.resolve(ctx, thread, parentID)
	if err != nil {
		return nil, err
	}
	if err := s.guard.Authorize(actor, authz.OpComment, res, p.ownerID); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	e := &domain.Echange{
		Thread:     thread,
		ParentID:   parentID,
		AuteurID:   actor.ID,
		AuteurType: actor.Role,
		Message:    msg,
		CreatedAt:  now,
	}
	if err := repo.Create(ctx, e); err != nil {
		s.log.Error().Err(err).Str("thread", string(thread)).Str("parent_id", parentID).Msg("failed to create echange")
		return nil, err
	}
	if author, err := s.principals.FindByID(ctx, actor.ID); err == nil {
		e.AuteurNom = author.DisplayName()
	}

	metrics.EchangesCreatedTotal.WithLabelValues(string(thread)).Inc()
	s.log.Info().Str("echange_id", e.ID).Str("thread", string(thread)).Str("parent_id", parentID).Msg("echange created")

	kind := domain.EventTicketCommentAdded
	if thread == domain.ThreadPortabilite {
		kind = domain.EventPortabiliteCommentAdded
	}
	s.notifier.Notify(ctx, domain.Notification{
		Kind:        kind,
		EntityID:    parentID,
		Reference:   p.reference,
		DemandeurID: p.ownerID,
		ActorID:     actor.ID,
		ActorRole:   actor.Role,
		Message:     msg,
		OccurredAt:  now,
	})
	return e, nil
}

// Delete is reserved to agents, whoever wrote the comment.
func (s *EchangeService) Delete(ctx context.Context, actor domain.Actor, thread domain.Thread, id string) error {
	repo, err := s.repo(thread)
	if err != nil {
		return err
	}
	if err := s.guard.Authorize(actor, authz.OpDelete, authz.ResourceEchange, ""); err != nil {
		return err
	}
	if _, err := repo.FindByID(ctx, id); err != nil {
		return err
	}
	if err := repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("echange_id", id).Str("thread", string(thread)).Str("by", actor.ID).Msg("echange deleted")
	return nil
}
