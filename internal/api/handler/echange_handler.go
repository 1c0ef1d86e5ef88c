package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/supportdesk/support-system/internal/core/domain"
	"github.com/supportdesk/support-system/internal/core/ports"
)

// EchangeHandler serves one comment thread kind. The parent is named by a
// query parameter (ticketId or portabiliteId).
type EchangeHandler struct {
	service     ports.EchangeService
	thread      domain.Thread
	parentParam string
}

func NewEchangeHandler(service ports.EchangeService, thread domain.Thread) *EchangeHandler {
	return &EchangeHandler{service: service, thread: thread, parentParam: string(thread) + "Id"}
}

type createEchangeRequest struct {
	Message string `json:"message"`
}

// List handles GET /ticket-echanges?ticketId= and
// GET /portabilite-echanges?portabiliteId=.
//
// @Summary      List a comment thread
// @Tags         echanges
// @Produce      json
// @Security     BearerAuth
// @Param        ticketId       query     string  false  "Ticket ID (ticket-echanges)"
// @Param        portabiliteId  query     string  false  "Portabilite ID (portabilite-echanges)"
// @Success      200            {array}   domain.Echange
// @Failure      400            {object}  map[string]string
// @Failure      401            {object}  map[string]string
// @Failure      403            {object}  map[string]string
// @Router       /ticket-echanges [get]
// @Router       /portabilite-echanges [get]
func (h *EchangeHandler) List(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	items, err := h.service.List(c.Request().Context(), actor, h.thread, c.QueryParam(h.parentParam))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

// Create appends a comment. The message is stored trimmed.
//
// @Summary      Add a comment
// @Tags         echanges
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        ticketId       query     string                false  "Ticket ID (ticket-echanges)"
// @Param        portabiliteId  query     string                false  "Portabilite ID (portabilite-echanges)"
// @Param        body           body      createEchangeRequest  true   "Comment"
// @Success      201            {object}  domain.Echange
// @Failure      400            {object}  map[string]string
// @Failure      401            {object}  map[string]string
// @Failure      403            {object}  map[string]string
// @Failure      404            {object}  map[string]string
// @Router       /ticket-echanges [post]
// @Router       /portabilite-echanges [post]
func (h *EchangeHandler) Create(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req createEchangeRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	e, err := h.service.Create(c.Request().Context(), actor, h.thread, c.QueryParam(h.parentParam), req.Message)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, e)
}

// Delete removes one comment. Agents only.
//
// @Summary      Delete a comment
// @Tags         echanges
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Echange ID"
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /ticket-echanges/{id} [delete]
// @Router       /portabilite-echanges/{id} [delete]
func (h *EchangeHandler) Delete(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), actor, h.thread, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "echange deleted"})
}
