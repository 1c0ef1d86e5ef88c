package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/supportdesk/support-system/internal/core/domain"
	"github.com/supportdesk/support-system/internal/core/ports"
)

type stubValidator struct {
	validateFn func(ctx context.Context, token string) (*ports.TokenClaims, error)
}

func (s *stubValidator) Validate(ctx context.Context, token string) (*ports.TokenClaims, error) {
	return s.validateFn(ctx, token)
}

func acceptOnly(valid string) *stubValidator {
	return &stubValidator{validateFn: func(_ context.Context, token string) (*ports.TokenClaims, error) {
		if token != valid {
			return nil, domain.ErrUnauthorized
		}
		return &ports.TokenClaims{PrincipalID: "p-1", Email: "alice@support.test", Role: domain.RoleAgent, TokenID: "jti"}, nil
	}}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	mw := Auth(acceptOnly("good-token"))
	handler := mw(func(c echo.Context) error {
		called = true
		if c.Get(KeyPrincipalID) != "p-1" {
			t.Fatalf("principal_id not set")
		}
		if c.Get(KeyRole) != domain.RoleAgent {
			t.Fatalf("role not set")
		}
		if c.Get(KeyEmail) != "alice@support.test" {
			t.Fatalf("email not set")
		}
		if c.Get(KeyToken) != "good-token" {
			t.Fatalf("token not set")
		}
		if _, ok := c.Get(KeyClaims).(*ports.TokenClaims); !ok {
			t.Fatalf("claims not set")
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthMiddleware_Rejections(t *testing.T) {
	cases := map[string]string{
		"missing header": "",
		"wrong scheme":   "Basic good-token",
		"empty bearer":   "Bearer ",
		"invalid token":  "Bearer forged",
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			c := e.NewContext(req, httptest.NewRecorder())

			err := Auth(acceptOnly("good-token"))(func(echo.Context) error {
				t.Fatalf("next should not be called")
				return nil
			})(c)
			if !errors.Is(err, domain.ErrUnauthorized) {
				t.Fatalf("expected ErrUnauthorized, got %v", err)
			}
		})
	}
}

func TestBearerToken(t *testing.T) {
	if tok, ok := BearerToken("bearer abc"); !ok || tok != "abc" {
		t.Fatalf("expected case-insensitive scheme, got %q %v", tok, ok)
	}
	if _, ok := BearerToken("abc"); ok {
		t.Fatal("expected rejection without scheme")
	}
}
