package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/supportdesk/support-system/internal/api/middleware"
	"github.com/supportdesk/support-system/internal/core/domain"
	"github.com/supportdesk/support-system/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token     string            `json:"token"`
	ExpiresAt time.Time         `json:"expires_at"`
	Principal *domain.Principal `json:"principal"`
}

// Login authenticates an agent or a demandeur and returns a session token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /auth [post]
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	result, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, loginResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		Principal: result.Principal,
	})
}

// Logout revokes the bearer token of the current request.
//
// @Summary      Logout
// @Tags         auth
// @Security     BearerAuth
// @Success      204
// @Failure      401  {object}  map[string]string
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	token, _ := c.Get(middleware.KeyToken).(string)
	if token == "" {
		return domain.ErrUnauthorized
	}
	if err := h.authService.Logout(c.Request().Context(), token); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Me returns the authenticated principal.
//
// @Summary      Current principal
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.Principal
// @Failure      401  {object}  map[string]string
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	p, err := h.authService.Me(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

type createPrincipalRequest struct {
	Email      string  `json:"email" validate:"required,email"`
	Password   string  `json:"password" validate:"required,min=8"`
	Nom        string  `json:"nom" validate:"required"`
	Prenom     string  `json:"prenom" validate:"required"`
	Entreprise *string `json:"entreprise"`
	Telephone  *string `json:"telephone"`
	Role       string  `json:"role" validate:"required,oneof=agent demandeur"`
}

// CreatePrincipal registers an agent or a demandeur.
//
// @Summary      Create a principal
// @Tags         principals
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createPrincipalRequest  true  "Principal details"
// @Success      201   {object}  domain.Principal
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /principals [post]
func (h *AuthHandler) CreatePrincipal(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req createPrincipalRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	p, err := h.authService.Register(c.Request().Context(), actor, ports.RegisterPrincipalInput{
		Email:      req.Email,
		Password:   req.Password,
		Nom:        req.Nom,
		Prenom:     req.Prenom,
		Entreprise: req.Entreprise,
		Telephone:  req.Telephone,
		Role:       domain.Role(req.Role),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, p)
}

// ListPrincipals lists principals, optionally for one role.
//
// @Summary      List principals
// @Tags         principals
// @Produce      json
// @Security     BearerAuth
// @Param        role  query     string  false  "agent or demandeur"
// @Success      200   {array}   domain.Principal
// @Failure      401   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Router       /principals [get]
func (h *AuthHandler) ListPrincipals(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	items, err := h.authService.ListPrincipals(c.Request().Context(), actor, domain.Role(c.QueryParam("role")))
	if err != nil {
		return err
	}
	if items == nil {
		items = []*domain.Principal{}
	}
	return c.JSON(http.StatusOK, items)
}
