package ports

import (
	"context"
	"time"

	"github.com/supportdesk/support-system/internal/core/domain"
)

// TokenClaims is what a validated session token proves.
type TokenClaims struct {
	PrincipalID string
	Email       string
	Role        domain.Role
	TokenID     string
	ExpiresAt   time.Time
}

func (c *TokenClaims) Actor() domain.Actor {
	return domain.Actor{ID: c.PrincipalID, Email: c.Email, Role: c.Role}
}

// TokenService issues and validates signed, time-bound session tokens.
type TokenService interface {
	Issue(p *domain.Principal) (string, time.Time, error)
	// Validate returns domain.ErrUnauthorized for every kind of bad token.
	Validate(ctx context.Context, token string) (*TokenClaims, error)
	Revoke(ctx context.Context, claims *TokenClaims) error
}

// TokenRevoker is an optional deny-list keyed by token ID.
type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
