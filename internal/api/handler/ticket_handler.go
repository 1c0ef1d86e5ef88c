package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/supportdesk/support-system/internal/core/domain"
	"github.com/supportdesk/support-system/internal/core/ports"
)

// TicketHandler handles HTTP requests for support tickets.
type TicketHandler struct {
	service ports.TicketService
}

func NewTicketHandler(service ports.TicketService) *TicketHandler {
	return &TicketHandler{service: service}
}

// List handles GET /tickets. Demandeurs only see their own tickets.
//
// @Summary      List tickets
// @Tags         tickets
// @Produce      json
// @Security     BearerAuth
// @Param        page       query     int     false  "Page (1-based)"
// @Param        limit      query     int     false  "Page size (max 100)"
// @Param        search     query     string  false  "Matches titre or requete_initiale"
// @Param        status     query     string  false  "nouveau, en_cours, resolu or ferme"
// @Param        client_id  query     string  false  "Client ID"
// @Param        agent_id   query     string  false  "Assigned agent ID"
// @Success      200        {object}  pageResponse[domain.Ticket]
// @Failure      400        {object}  map[string]string
// @Failure      401        {object}  map[string]string
// @Router       /tickets [get]
func (h *TicketHandler) List(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var q listTicketsQuery
	if err := bind(c, &q); err != nil {
		return err
	}

	page, err := h.service.List(c.Request().Context(), actor, q.toInput())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pageResponse[*domain.Ticket]{Data: page.Items, Pagination: page.Pagination})
}

// Create handles POST /tickets.
//
// @Summary      Create a ticket
// @Tags         tickets
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createTicketRequest  true  "Ticket details"
// @Success      201   {object}  domain.Ticket
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /tickets [post]
func (h *TicketHandler) Create(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req createTicketRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	t, err := h.service.Create(c.Request().Context(), actor, req.toInput())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, t)
}

// Get handles GET /tickets/:id.
//
// @Summary      Get a ticket
// @Tags         tickets
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Ticket ID"
// @Success      200  {object}  domain.Ticket
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /tickets/{id} [get]
func (h *TicketHandler) Get(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	t, err := h.service.Get(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, t)
}

// Update handles PUT /tickets/:id. Demandeurs may edit their own ticket but
// not its status or assignment.
//
// @Summary      Update a ticket
// @Tags         tickets
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string               true  "Ticket ID"
// @Param        body  body      updateTicketRequest  true  "Fields to change"
// @Success      200   {object}  domain.Ticket
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /tickets/{id} [put]
func (h *TicketHandler) Update(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req updateTicketRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	t, err := h.service.Update(c.Request().Context(), actor, c.Param("id"), req.toInput())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, t)
}
