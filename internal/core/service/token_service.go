package service

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/supportdesk/support-system/internal/core/domain"
	"github.com/supportdesk/support-system/internal/core/ports"
)

const DefaultTokenTTL = 30 * time.Minute

type sessionClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// TokenService signs HS256 session tokens and validates them, consulting an
// optional revocation list.
type TokenService struct {
	secret  []byte
	ttl     time.Duration
	revoker ports.TokenRevoker
	log     zerolog.Logger
	now     func() time.Time
}

// NewTokenService builds a TokenService. revoker may be nil, in which case
// logout is accepted but tokens stay valid until expiry.
func NewTokenService(secret string, ttl time.Duration, revoker ports.TokenRevoker, log zerolog.Logger) *TokenService {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{
		secret:  []byte(secret),
		ttl:     ttl,
		revoker: revoker,
		log:     log,
		now:     time.Now,
	}
}

func (s *TokenService) Issue(p *domain.Principal) (string, time.Time, error) {
	now := s.now().UTC()
	expiresAt := now.Add(s.ttl)
	claims := sessionClaims{
		Email: p.Email,
		Role:  string(p.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.ID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

func (s *TokenService) Validate(ctx context.Context, token string) (*ports.TokenClaims, error) {
	if token == "" {
		return nil, domain.ErrUnauthorized
	}

	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		return nil, domain.ErrUnauthorized
	}

	role := domain.Role(claims.Role)
	if claims.Subject == "" || !role.Valid() {
		return nil, domain.ErrUnauthorized
	}

	if s.revoker != nil && claims.ID != "" {
		revoked, err := s.revoker.IsRevoked(ctx, claims.ID)
		if err != nil {
			s.log.Warn().Err(err).Str("token_id", claims.ID).Msg("revocation check failed, accepting token")
		} else if revoked {
			return nil, domain.ErrUnauthorized
		}
	}

	out := &ports.TokenClaims{
		PrincipalID: claims.Subject,
		Email:       claims.Email,
		Role:        role,
		TokenID:     claims.ID,
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}

// Revoke denies the token for the rest of its lifetime.
func (s *TokenService) Revoke(ctx context.Context, claims *ports.TokenClaims) error {
	if s.revoker == nil {
		s.log.Debug().Str("principal_id", claims.PrincipalID).Msg("no revocation list configured, logout is client-side only")
		return nil
	}
	ttl := claims.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.revoker.Revoke(ctx, claims.TokenID, ttl); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}
