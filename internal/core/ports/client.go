package ports

import (
	"context"

	"github.com/supportdesk/support-system/internal/core/domain"
)

type ClientRepository interface {
	Create(ctx context.Context, c *domain.Client) error
	FindByID(ctx context.Context, id string) (*domain.Client, error)
	// List returns clients ordered by nom_societe; search is a case-insensitive
	// substring on nom_societe, nom and numero.
	List(ctx context.Context, search string) ([]*domain.Client, error)
	Update(ctx context.Context, c *domain.Client) (*domain.Client, error)
	Delete(ctx context.Context, id string) error
}

type CreateClientInput struct {
	NomSociete string
	Adresse    string
	Nom        *string
	Prenom     *string
	Numero     *string
}

// UpdateClientInput holds the provided fields only; nil means unchanged.
type UpdateClientInput struct {
	NomSociete *string
	Adresse    *string
	Nom        *string
	Prenom     *string
	Numero     *string
}

type ClientService interface {
	Create(ctx context.Context, actor domain.Actor, in CreateClientInput) (*domain.Client, error)
	Get(ctx context.Context, actor domain.Actor, id string) (*domain.Client, error)
	List(ctx context.Context, actor domain.Actor, search string) ([]*domain.Client, error)
	Update(ctx context.Context, actor domain.Actor, id string, in UpdateClientInput) (*domain.Client, error)
	Delete(ctx context.Context, actor domain.Actor, id string) error
}
