package ports

import (
	"context"

	"github.com/supportdesk/support-system/internal/core/domain"
)

// PrincipalRepository persists agents and demandeurs in one role-discriminated store.
type PrincipalRepository interface {
	// Create stores a principal and returns it with its ID. Returns
	// domain.ErrPrincipalExists when the email is taken.
	Create(ctx context.Context, p *domain.Principal) (*domain.Principal, error)
	// FindByEmail looks up a normalised email within a single role.
	FindByEmail(ctx context.Context, role domain.Role, email string) (*domain.Principal, error)
	FindByID(ctx context.Context, id string) (*domain.Principal, error)
	// List returns principals, optionally restricted to one role (empty = all).
	List(ctx context.Context, role domain.Role) ([]*domain.Principal, error)
	CountByRole(ctx context.Context, role domain.Role) (int64, error)
}
