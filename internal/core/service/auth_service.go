package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/supportdesk/support-system/internal/api/metrics"
	"github.com/supportdesk/support-system/internal/core/authz"
	"github.com/supportdesk/support-system/internal/core/domain"
	"github.com/supportdesk/support-system/internal/core/ports"
)

const minPasswordLength = 8

// dummyHash is compared against when no principal matches, so a miss costs
// the same bcrypt work as a wrong password.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("no-such-principal"), bcrypt.DefaultCost)

// AuthService implements login, logout and principal administration.
type AuthService struct {
	repo   ports.PrincipalRepository
	tokens ports.TokenService
	guard  *authz.Guard
	log    zerolog.Logger
	now    func() time.Time
}

func NewAuthService(repo ports.PrincipalRepository, tokens ports.TokenService, guard *authz.Guard, log zerolog.Logger) *AuthService {
	return &AuthService{repo: repo, tokens: tokens, guard: guard, log: log, now: time.Now}
}

// Login resolves the email against agents first, then demandeurs, and issues a
// session token. Every failure is reported as domain.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	principal, err := s.lookup(ctx, email)
	if err != nil {
		return nil, err
	}
	if principal == nil {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return nil, domain.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(principal.PasswordHash), []byte(password)) != nil {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Issue(principal)
	if err != nil {
		return nil, err
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	s.log.Info().Str("principal_id", principal.ID).Str("role", string(principal.Role)).Msg("login succeeded")
	return &ports.LoginResult{Token: token, ExpiresAt: expiresAt, Principal: principal}, nil
}

func (s *AuthService) lookup(ctx context.Context, email string) (*domain.Principal, error) {
	for _, role := range domain.AuthenticationOrder {
		p, err := s.repo.FindByEmail(ctx, role, email)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, domain.ErrPrincipalNotFound) {
			return nil, fmt.Errorf("lookup %s: %w", role, err)
		}
	}
	return nil, nil
}

// Logout revokes the presented token.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	claims, err := s.tokens.Validate(ctx, token)
	if err != nil {
		return err
	}
	return s.tokens.Revoke(ctx, claims)
}

// Register creates an agent or a demandeur. Only agents may call it.
func (s *AuthService) Register(ctx context.Context, actor domain.Actor, in ports.RegisterPrincipalInput) (*domain.Principal, error) {
	if err := s.guard.Authorize(actor, authz.OpCreate, authz.ResourcePrincipal, ""); err != nil {
		return nil, err
	}
	created, err := s.createPrincipal(ctx, in)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("principal_id", created.ID).Str("role", string(created.Role)).Str("by", actor.ID).Msg("principal created")
	return created, nil
}

func (s *AuthService) createPrincipal(ctx context.Context, in ports.RegisterPrincipalInput) (*domain.Principal, error) {
	email := domain.NormalizeEmail(in.Email)
	switch {
	case email == "":
		return nil, domain.Required("email")
	case !validEmail(email):
		return nil, domain.Invalid("email", "must be a valid email")
	case len(in.Password) < minPasswordLength:
		return nil, domain.Invalid("password", "must be at least %d characters", minPasswordLength)
	case strings.TrimSpace(in.Nom) == "":
		return nil, domain.Required("nom")
	case strings.TrimSpace(in.Prenom) == "":
		return nil, domain.Required("prenom")
	case !in.Role.Valid():
		return nil, domain.Invalid("role", "must be agent or demandeur")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	return s.repo.Create(ctx, &domain.Principal{
		Email:        email,
		PasswordHash: string(hash),
		Nom:          strings.TrimSpace(in.Nom),
		Prenom:       strings.TrimSpace(in.Prenom),
		Entreprise:   domain.OptionalString(in.Entreprise),
		Telephone:    domain.OptionalString(in.Telephone),
		Role:         in.Role,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

func (s *AuthService) Me(ctx context.Context, actor domain.Actor) (*domain.Principal, error) {
	if err := s.guard.Authorize(actor, authz.OpRead, authz.ResourcePrincipal, actor.ID); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, actor.ID)
}

func (s *AuthService) ListPrincipals(ctx context.Context, actor domain.Actor, role domain.Role) ([]*domain.Principal, error) {
	if err := s.guard.Authorize(actor, authz.OpRead, authz.ResourcePrincipal, ""); err != nil {
		return nil, err
	}
	if role != "" && !role.Valid() {
		return nil, domain.Invalid("role", "must be agent or demandeur")
	}
	return s.repo.List(ctx, role)
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}
