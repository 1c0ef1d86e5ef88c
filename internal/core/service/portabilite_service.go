package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/supportdesk/support-system/internal/api/metrics"
	"github.com/supportdesk/support-system/internal/core/authz"
	"github.com/supportdesk/support-system/internal/core/domain"
	"github.com/supportdesk/support-system/internal/core/ports"
)

type PortabiliteService struct {
	repo       ports.PortabiliteRepository
	echanges   ports.EchangeRepository
	clients    ports.ClientRepository
	principals ports.PrincipalRepository
	numbering  *Numbering
	guard      *authz.Guard
	notifier   ports.Notifier
	log        zerolog.Logger
	now        func() time.Time
}

func NewPortabiliteService(
	repo ports.PortabiliteRepository,
	echanges ports.EchangeRepository,
	clients ports.ClientRepository,
	principals ports.PrincipalRepository,
	numbering *Numbering,
	guard *authz.Guard,
	notifier ports.Notifier,
	log zerolog.Logger,
) *PortabiliteService {
	return &PortabiliteService{
		repo:       repo,
		echanges:   echanges,
		clients:    clients,
		principals: principals,
		numbering:  numbering,
		guard:      guard,
		notifier:   notifier,
		log:        log,
		now:        time.Now,
	}
}

// Create stores a new request under a freshly assigned numero_portabilite.
func (s *PortabiliteService) Create(ctx context.Context, actor domain.Actor, in ports.CreatePortabiliteInput) (*domain.Portabilite, error) {
	numeros := strings.TrimSpace(in.NumerosPortes)
	if in.ClientID == "" {
		return nil, domain.Required("client_id")
	}
	if numeros == "" {
		return nil, domain.Required("numeros_portes")
	}
	if err := validContact(in.Contact); err != nil {
		return nil, err
	}

	owner, err := ownerFor(ctx, s.principals, actor, in.DemandeurID)
	if err != nil {
		return nil, err
	}
	if err := s.guard.Authorize(actor, authz.OpCreate, authz.ResourcePortabilite, owner); err != nil {
		return nil, err
	}
	if err := requireClient(ctx, s.clients, in.ClientID); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	p := &domain.Portabilite{
		ClientID:                in.ClientID,
		DemandeurID:             owner,
		NumerosPortes:           numeros,
		Status:                  domain.PortabiliteNouveau,
		FiabilisationDemandee:   in.FiabilisationDemandee,
		DemandeSignee:           in.DemandeSignee,
		DatePortabiliteDemandee: in.DatePortabiliteDemandee,
		DateCreation:            now,
		DateModification:        now,
	}
	applyContact(p, in.Contact)

	_, err = s.numbering.Assign(ctx, func(ctx context.Context, numero string) error {
		p.ID = ""
		p.NumeroPortabilite = numero
		return s.repo.Create(ctx, p)
	})
	if err != nil {
		s.log.Error().Err(err).Str("client_id", in.ClientID).Msg("failed to create portabilite")
		return nil, err
	}

	metrics.PortabilitesCreatedTotal.WithLabelValues(string(actor.Role)).Inc()
	s.log.Info().
		Str("portabilite_id", p.ID).
		Str("numero", p.NumeroPortabilite).
		Str("demandeur_id", owner).
		Msg("portabilite created")

	s.notifier.Notify(ctx, domain.Notification{
		Kind:        domain.EventPortabiliteCreated,
		EntityID:    p.ID,
		Reference:   p.NumeroPortabilite,
		DemandeurID: p.DemandeurID,
		ActorID:     actor.ID,
		ActorRole:   actor.Role,
		Status:      string(p.Status),
		Message:     p.NumerosPortes,
		OccurredAt:  now,
	})
	return p, nil
}

func (s *PortabiliteService) Get(ctx context.Context, actor domain.Actor, id string) (*domain.Portabilite, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.guard.Authorize(actor, authz.OpRead, authz.ResourcePortabilite, p.DemandeurID); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PortabiliteService) List(ctx context.Context, actor domain.Actor, in ports.ListPortabilitesInput) (*ports.PortabilitePage, error) {
	filter := ports.PortabiliteFilter{
		ClientID: in.ClientID,
		Status:   in.Status,
		Search:   strings.TrimSpace(in.Search),
		Page:     in.Page.Normalize(),
	}
	owner := ""
	if actor.Role == domain.RoleDemandeur {
		owner = actor.ID
		filter.DemandeurID = actor.ID
	}
	if err := s.guard.Authorize(actor, authz.OpRead, authz.ResourcePortabilite, owner); err != nil {
		return nil, err
	}
	if filter.Status != "" && !domain.PortabiliteStatus(filter.Status).Valid() {
		return nil, domain.Invalid("status", "must be one of: nouveau en_cours planifiee terminee annulee")
	}

	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &ports.PortabilitePage{Items: items, Pagination: domain.NewPagination(filter.Page, total)}, nil
}

// Update applies the provided fields. Demandeurs may only edit the contact
// metadata of their own requests. numero_portabilite is never touched.
func (s *PortabiliteService) Update(ctx context.Context, actor domain.Actor, id string, in ports.UpdatePortabiliteInput) (*domain.Portabilite, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.guard.Authorize(actor, authz.OpUpdate, authz.ResourcePortabilite, p.DemandeurID); err != nil {
		return nil, err
	}
	if !actor.IsAgent() && touchesRequest(in) {
		return nil, domain.ErrForbidden
	}
	if err := validContact(in.Contact); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	previous := p.Status

	if in.ClientID != nil && *in.ClientID != p.ClientID {
		if err := requireClient(ctx, s.clients, *in.ClientID); err != nil {
			return nil, err
		}
		p.ClientID = *in.ClientID
	}
	if in.NumerosPortes != nil {
		v := strings.TrimSpace(*in.NumerosPortes)
		if v == "" {
			return nil, domain.Required("numeros_portes")
		}
		p.NumerosPortes = v
	}
	if in.FiabilisationDemandee != nil {
		p.FiabilisationDemandee = *in.FiabilisationDemandee
	}
	if in.DemandeSignee != nil {
		p.DemandeSignee = *in.DemandeSignee
	}
	if in.DatePortabiliteDemandee != nil {
		p.DatePortabiliteDemandee = in.DatePortabiliteDemandee
	}
	applyContact(p, in.Contact)
	if in.Status != nil {
		if err := s.guard.Authorize(actor, authz.OpSetStatus, authz.ResourcePortabilite, p.DemandeurID); err != nil {
			return nil, err
		}
		if err := p.SetStatus(domain.PortabiliteStatus(*in.Status), now); err != nil {
			return nil, err
		}
	}
	p.Touch(now)

	updated, err := s.repo.Update(ctx, p)
	if err != nil {
		s.log.Error().Err(err).Str("portabilite_id", id).Msg("failed to update portabilite")
		return nil, err
	}

	s.log.Info().Str("portabilite_id", id).Str("by", actor.ID).Str("status", string(updated.Status)).Msg("portabilite updated")
	if updated.Status != previous {
		s.notifier.Notify(ctx, domain.Notification{
			Kind:        domain.EventPortabiliteStatusChanged,
			EntityID:    updated.ID,
			Reference:   updated.NumeroPortabilite,
			DemandeurID: updated.DemandeurID,
			ActorID:     actor.ID,
			ActorRole:   actor.Role,
			Status:      string(updated.Status),
			OccurredAt:  now,
		})
	}
	return updated, nil
}

// Delete removes the comment thread, then the request. A failure leaves the
// request in place and a retry picks up where it stopped.
func (s *PortabiliteService) Delete(ctx context.Context, actor domain.Actor, id string) error {
	if err := s.guard.Authorize(actor, authz.OpDelete, authz.ResourcePortabilite, ""); err != nil {
		return err
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}

	removed, err := s.echanges.DeleteByParent(ctx, id)
	if err != nil {
		s.log.Error().Err(err).Str("portabilite_id", id).Msg("failed to delete portabilite echanges")
		return fmt.Errorf("delete portabilite echanges: %w", err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("portabilite_id", id).Str("by", actor.ID).Int64("echanges", removed).Msg("portabilite deleted")
	return nil
}

// touchesRequest reports whether an update goes beyond contact metadata.
func touchesRequest(in ports.UpdatePortabiliteInput) bool {
	return in.ClientID != nil ||
		in.NumerosPortes != nil ||
		in.FiabilisationDemandee != nil ||
		in.DemandeSignee != nil ||
		in.DatePortabiliteDemandee != nil
}

func validContact(c ports.PortabiliteContact) error {
	if v := domain.OptionalString(c.EmailClient); v != nil {
		if !validEmail(*v) {
			return domain.Invalid("email_client", "must be a valid email address")
		}
	}
	if v := domain.OptionalString(c.SiretClient); v != nil && !digitsOnly(*v, 14) {
		return domain.Invalid("siret_client", "must be 14 digits")
	}
	if v := domain.OptionalString(c.CodePostal); v != nil && !digitsOnly(*v, 5) {
		return domain.Invalid("code_postal", "must be 5 digits")
	}
	return nil
}

func digitsOnly(s string, n int) bool {
	s = strings.ReplaceAll(s, " ", "")
	if len(s) != n {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// applyContact copies the provided contact fields. Blank values clear them.
func applyContact(p *domain.Portabilite, c ports.PortabiliteContact) {
	set := func(dst **string, v *string) {
		if v != nil {
			*dst = domain.OptionalString(v)
		}
	}
	set(&p.NomClient, c.NomClient)
	set(&p.PrenomClient, c.PrenomClient)
	set(&p.EmailClient, c.EmailClient)
	set(&p.SiretClient, c.SiretClient)
	set(&p.Adresse, c.Adresse)
	set(&p.CodePostal, c.CodePostal)
	set(&p.Ville, c.Ville)
	set(&p.OperateurCedant, c.OperateurCedant)
}
