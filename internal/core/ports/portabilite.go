package ports

import (
	"context"
	"time"

	"github.com/supportdesk/support-system/internal/core/domain"
)

type PortabiliteFilter struct {
	DemandeurID string
	ClientID    string
	Status      string
	// Search matches numero_portabilite, nom_client, prenom_client,
	// email_client and siret_client.
	Search string
	Page   domain.PageRequest
}

// NumeroChecker probes whether a numero_portabilite is already issued.
type NumeroChecker interface {
	ExistsNumero(ctx context.Context, numero string) (bool, error)
}

type PortabiliteRepository interface {
	NumeroChecker
	// Create returns domain.ErrDuplicateNumero when the unique index rejects
	// the numero_portabilite.
	Create(ctx context.Context, p *domain.Portabilite) error
	FindByID(ctx context.Context, id string) (*domain.Portabilite, error)
	List(ctx context.Context, f PortabiliteFilter) ([]*domain.Portabilite, int64, error)
	// Update never writes numero_portabilite.
	Update(ctx context.Context, p *domain.Portabilite) (*domain.Portabilite, error)
	Delete(ctx context.Context, id string) error
	CountByClient(ctx context.Context, clientID string) (int64, error)
}

// PortabiliteContact groups the requester metadata shared by create and update.
type PortabiliteContact struct {
	NomClient       *string
	PrenomClient    *string
	EmailClient     *string
	SiretClient     *string
	Adresse         *string
	CodePostal      *string
	Ville           *string
	OperateurCedant *string
}

type CreatePortabiliteInput struct {
	ClientID                string
	DemandeurID             string
	NumerosPortes           string
	Contact                 PortabiliteContact
	FiabilisationDemandee   bool
	DemandeSignee           bool
	DatePortabiliteDemandee *time.Time
}

// UpdatePortabiliteInput holds the provided fields only. Contact fields set to
// "" are cleared.
type UpdatePortabiliteInput struct {
	ClientID                *string
	NumerosPortes           *string
	Contact                 PortabiliteContact
	Status                  *string
	FiabilisationDemandee   *bool
	DemandeSignee           *bool
	DatePortabiliteDemandee *time.Time
}

type ListPortabilitesInput struct {
	ClientID string
	Status   string
	Search   string
	Page     domain.PageRequest
}

type PortabilitePage struct {
	Items      []*domain.Portabilite
	Pagination domain.Pagination
}

type PortabiliteService interface {
	Create(ctx context.Context, actor domain.Actor, in CreatePortabiliteInput) (*domain.Portabilite, error)
	Get(ctx context.Context, actor domain.Actor, id string) (*domain.Portabilite, error)
	List(ctx context.Context, actor domain.Actor, in ListPortabilitesInput) (*PortabilitePage, error)
	Update(ctx context.Context, actor domain.Actor, id string, in UpdatePortabiliteInput) (*domain.Portabilite, error)
	Delete(ctx context.Context, actor domain.Actor, id string) error
}
