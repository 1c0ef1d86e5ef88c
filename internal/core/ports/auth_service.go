package ports

import (
	"context"
	"time"

	"github.com/supportdesk/support-system/internal/core/domain"
)

// RegisterPrincipalInput carries the fields needed to create an agent or demandeur.
type RegisterPrincipalInput struct {
	Email      string
	Password   string
	Nom        string
	Prenom     string
	Entreprise *string
	Telephone  *string
	Role       domain.Role
}

// LoginResult is returned on successful authentication.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Principal *domain.Principal
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Logout(ctx context.Context, token string) error
	Register(ctx context.Context, actor domain.Actor, in RegisterPrincipalInput) (*domain.Principal, error)
	Me(ctx context.Context, actor domain.Actor) (*domain.Principal, error)
	ListPrincipals(ctx context.Context, actor domain.Actor, role domain.Role) ([]*domain.Principal, error)
}
