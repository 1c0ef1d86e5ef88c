package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/supportdesk/support-system/internal/core/domain"
	"github.com/supportdesk/support-system/internal/core/ports"
)

// PortabiliteHandler handles HTTP requests for number-porting requests.
type PortabiliteHandler struct {
	service ports.PortabiliteService
}

func NewPortabiliteHandler(service ports.PortabiliteService) *PortabiliteHandler {
	return &PortabiliteHandler{service: service}
}

// List handles GET /portabilites.
//
// @Summary      List portabilites
// @Tags         portabilites
// @Produce      json
// @Security     BearerAuth
// @Param        page       query     int     false  "Page (1-based)"
// @Param        limit      query     int     false  "Page size (max 100)"
// @Param        search     query     string  false  "Matches numero_portabilite, nom_client, prenom_client, email_client or siret_client"
// @Param        status     query     string  false  "Status filter"
// @Param        client_id  query     string  false  "Client ID"
// @Success      200        {object}  pageResponse[domain.Portabilite]
// @Failure      400        {object}  map[string]string
// @Failure      401        {object}  map[string]string
// @Router       /portabilites [get]
func (h *PortabiliteHandler) List(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var q listPortabilitesQuery
	if err := bind(c, &q); err != nil {
		return err
	}

	page, err := h.service.List(c.Request().Context(), actor, q.toInput())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pageResponse[*domain.Portabilite]{Data: page.Items, Pagination: page.Pagination})
}

// Create handles POST /portabilites. The numero_portabilite is assigned by
// the server.
//
// @Summary      Create a portabilite
// @Tags         portabilites
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createPortabiliteRequest  true  "Porting request"
// @Success      201   {object}  domain.Portabilite
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /portabilites [post]
func (h *PortabiliteHandler) Create(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req createPortabiliteRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	p, err := h.service.Create(c.Request().Context(), actor, req.toInput())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, p)
}

// Get handles GET /portabilites/:id.
//
// @Summary      Get a portabilite
// @Tags         portabilites
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Portabilite ID"
// @Success      200  {object}  domain.Portabilite
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /portabilites/{id} [get]
func (h *PortabiliteHandler) Get(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	p, err := h.service.Get(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

// Update handles PUT /portabilites/:id.
//
// @Summary      Update a portabilite
// @Tags         portabilites
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                    true  "Portabilite ID"
// @Param        body  body      updatePortabiliteRequest  true  "Fields to change"
// @Success      200   {object}  domain.Portabilite
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /portabilites/{id} [put]
func (h *PortabiliteHandler) Update(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req updatePortabiliteRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	p, err := h.service.Update(c.Request().Context(), actor, c.Param("id"), req.toInput())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

// Delete handles DELETE /portabilites/:id. The comment thread goes with it.
//
// @Summary      Delete a portabilite
// @Tags         portabilites
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Portabilite ID"
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /portabilites/{id} [delete]
func (h *PortabiliteHandler) Delete(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), actor, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "portabilite deleted"})
}
