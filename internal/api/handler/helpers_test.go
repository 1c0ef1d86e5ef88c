package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/supportdesk/support-system/internal/api/middleware"
	"github.com/supportdesk/support-system/internal/core/domain"
	"github.com/supportdesk/support-system/internal/core/ports"
)

var (
	agentClaims     = &ports.TokenClaims{PrincipalID: "agent-1", Email: "alice@support.test", Role: domain.RoleAgent, TokenID: "jti-a"}
	demandeurClaims = &ports.TokenClaims{PrincipalID: "dem-1", Email: "bruno@acme.test", Role: domain.RoleDemandeur, TokenID: "jti-d"}
)

// newContext builds an echo context with the validator installed and, when
// claims is non-nil, the values the Auth middleware would have set.
func newContext(method, target string, body io.Reader, claims *ports.TokenClaims) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if claims != nil {
		c.Set(middleware.KeyClaims, claims)
		c.Set(middleware.KeyPrincipalID, claims.PrincipalID)
		c.Set(middleware.KeyRole, claims.Role)
		c.Set(middleware.KeyEmail, claims.Email)
		c.Set(middleware.KeyToken, "raw-token")
	}
	return c, rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v (%s)", err, rec.Body.String())
	}
	return resp
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected %d, got %d (%s)", want, rec.Code, rec.Body.String())
	}
}

func expectErr(t *testing.T, err, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("expected %v, got %v", target, err)
	}
}
