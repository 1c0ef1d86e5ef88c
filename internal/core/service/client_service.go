package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/supportdesk/support-system/internal/core/authz"
	"github.com/supportdesk/support-system/internal/core/domain"
	"github.com/supportdesk/support-system/internal/core/ports"
)

type ClientService struct {
	repo         ports.ClientRepository
	tickets      ports.TicketRepository
	portabilites ports.PortabiliteRepository
	guard        *authz.Guard
	log          zerolog.Logger
	now          func() time.Time
}

func NewClientService(
	repo ports.ClientRepository,
	tickets ports.TicketRepository,
	portabilites ports.PortabiliteRepository,
	guard *authz.Guard,
	log zerolog.Logger,
) *ClientService {
	return &ClientService{
		repo:         repo,
		tickets:      tickets,
		portabilites: portabilites,
		guard:        guard,
		log:          log,
		now:          time.Now,
	}
}

func (s *ClientService) Create(ctx context.Context, actor domain.Actor, in ports.CreateClientInput) (*domain.Client, error) {
	if err := s.guard.Authorize(actor, authz.OpCreate, authz.ResourceClient, ""); err != nil {
		return nil, err
	}

	nomSociete := strings.TrimSpace(in.NomSociete)
	adresse := strings.TrimSpace(in.Adresse)
	if nomSociete == "" {
		return nil, domain.Required("nom_societe")
	}
	if adresse == "" {
		return nil, domain.Required("adresse")
	}

	now := s.now().UTC()
	c := &domain.Client{
		NomSociete: nomSociete,
		Adresse:    adresse,
		Nom:        domain.OptionalString(in.Nom),
		Prenom:     domain.OptionalString(in.Prenom),
		Numero:     domain.OptionalString(in.Numero),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		s.log.Error().Err(err).Msg("failed to create client")
		return nil, err
	}

	s.log.Info().Str("client_id", c.ID).Str("by", actor.ID).Msg("client created")
	return c, nil
}

func (s *ClientService) Get(ctx context.Context, actor domain.Actor, id string) (*domain.Client, error) {
	if err := s.guard.Authorize(actor, authz.OpRead, authz.ResourceClient, ""); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, id)
}

func (s *ClientService) List(ctx context.Context, actor domain.Actor, search string) ([]*domain.Client, error) {
	if err := s.guard.Authorize(actor, authz.OpRead, authz.ResourceClient, ""); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, strings.TrimSpace(search))
}

// Update replaces the provided fields. Required fields cannot be blanked;
// blank optional fields become null.
func (s *ClientService) Update(ctx context.Context, actor domain.Actor, id string, in ports.UpdateClientInput) (*domain.Client, error) {
	if err := s.guard.Authorize(actor, authz.OpUpdate, authz.ResourceClient, ""); err != nil {
		return nil, err
	}

	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.NomSociete != nil {
		v := strings.TrimSpace(*in.NomSociete)
		if v == "" {
			return nil, domain.Required("nom_societe")
		}
		c.NomSociete = v
	}
	if in.Adresse != nil {
		v := strings.TrimSpace(*in.Adresse)
		if v == "" {
			return nil, domain.Required("adresse")
		}
		c.Adresse = v
	}
	if in.Nom != nil {
		c.Nom = domain.OptionalString(in.Nom)
	}
	if in.Prenom != nil {
		c.Prenom = domain.OptionalString(in.Prenom)
	}
	if in.Numero != nil {
		c.Numero = domain.OptionalString(in.Numero)
	}
	c.UpdatedAt = s.now().UTC()

	updated, err := s.repo.Update(ctx, c)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("client_id", id).Str("by", actor.ID).Msg("client updated")
	return updated, nil
}

// Delete hard-deletes a client that no ticket or portabilite references.
// Creates racing the delete are not blocked; references counted again after
// the delete are logged as orphans.
func (s *ClientService) Delete(ctx context.Context, actor domain.Actor, id string) error {
	if err := s.guard.Authorize(actor, authz.OpDelete, authz.ResourceClient, ""); err != nil {
		return err
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}

	tickets, portabilites, err := s.references(ctx, id)
	if err != nil {
		return err
	}
	if tickets > 0 || portabilites > 0 {
		s.log.Info().Str("client_id", id).Int64("tickets", tickets).Int64("portabilites", portabilites).Msg("client delete rejected, still referenced")
		return domain.ErrClientReferenced
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("client_id", id).Str("by", actor.ID).Msg("client deleted")

	tickets, portabilites, err = s.references(ctx, id)
	switch {
	case err != nil:
		s.log.Warn().Err(err).Str("client_id", id).Msg("could not recount client references after delete")
	case tickets > 0 || portabilites > 0:
		s.log.Error().Str("client_id", id).Int64("tickets", tickets).Int64("portabilites", portabilites).Msg("client deleted with orphaned references")
	}
	return nil
}

func (s *ClientService) references(ctx context.Context, id string) (tickets, portabilites int64, err error) {
	if tickets, err = s.tickets.CountByClient(ctx, id); err != nil {
		return 0, 0, err
	}
	if portabilites, err = s.portabilites.CountByClient(ctx, id); err != nil {
		return 0, 0, err
	}
	return tickets, portabilites, nil
}
