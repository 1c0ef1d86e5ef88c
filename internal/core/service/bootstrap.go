package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/supportdesk/support-system/internal/core/domain"
	"github.com/supportdesk/support-system/internal/core/ports"
)

// DefaultAgent describes the agent seeded on an empty store.
type DefaultAgent struct {
	Email    string
	Password string
	Nom      string
	Prenom   string
}

// EnsureDefaultAgent creates the default agent when no agent exists yet. The
// caller is expected to log the error and keep serving.
func (s *AuthService) EnsureDefaultAgent(ctx context.Context, a DefaultAgent) (bool, error) {
	if a.Email == "" || a.Password == "" {
		return false, nil
	}
	count, err := s.repo.CountByRole(ctx, domain.RoleAgent)
	if err != nil {
		return false, fmt.Errorf("count agents: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	created, err := s.createPrincipal(ctx, ports.RegisterPrincipalInput{
		Email:    a.Email,
		Password: a.Password,
		Nom:      a.Nom,
		Prenom:   a.Prenom,
		Role:     domain.RoleAgent,
	})
	if errors.Is(err, domain.ErrPrincipalExists) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("create default agent: %w", err)
	}
	s.log.Info().Str("principal_id", created.ID).Str("email", created.Email).Msg("default agent created")
	return true, nil
}

// Provision creates a principal without an acting agent. It backs operator
// tooling run against the store directly.
func (s *AuthService) Provision(ctx context.Context, in ports.RegisterPrincipalInput) (*domain.Principal, error) {
	created, err := s.createPrincipal(ctx, in)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("principal_id", created.ID).Str("role", string(created.Role)).Msg("principal provisioned")
	return created, nil
}
