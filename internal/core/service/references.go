package service

import (
	"context"

	"github.com/supportdesk/support-system/internal/core/domain"
	"github.com/supportdesk/support-system/internal/core/ports"
)

// requireRole loads a principal and checks it holds role. A principal of the
// wrong role is reported as not found, like a missing one.
func requireRole(ctx context.Context, repo ports.PrincipalRepository, id string, role domain.Role) (*domain.Principal, error) {
	p, err := repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Role != role {
		return nil, domain.ErrPrincipalNotFound
	}
	return p, nil
}

// requireClient checks the client exists.
func requireClient(ctx context.Context, repo ports.ClientRepository, id string) error {
	_, err := repo.FindByID(ctx, id)
	return err
}

// ownerFor resolves the demandeur a new entity will belong to. Demandeurs
// always own what they create; agents must name an existing demandeur.
func ownerFor(ctx context.Context, repo ports.PrincipalRepository, actor domain.Actor, requested string) (string, error) {
	if actor.Role == domain.RoleDemandeur {
		if requested != "" && requested != actor.ID {
			return "", domain.ErrForbidden
		}
		return actor.ID, nil
	}
	if requested == "" {
		return "", domain.Required("demandeur_id")
	}
	if _, err := requireRole(ctx, repo, requested, domain.RoleDemandeur); err != nil {
		return "", err
	}
	return requested, nil
}
