package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/supportdesk/support-system/internal/core/domain"
	"github.com/supportdesk/support-system/internal/core/ports"
)

// ClientHandler handles HTTP requests for client records.
type ClientHandler struct {
	service ports.ClientService
}

func NewClientHandler(service ports.ClientService) *ClientHandler {
	return &ClientHandler{service: service}
}

type createClientRequest struct {
	NomSociete string  `json:"nom_societe" validate:"required"`
	Adresse    string  `json:"adresse" validate:"required"`
	Nom        *string `json:"nom"`
	Prenom     *string `json:"prenom"`
	Numero     *string `json:"numero"`
}

type updateClientRequest struct {
	NomSociete *string `json:"nom_societe"`
	Adresse    *string `json:"adresse"`
	Nom        *string `json:"nom"`
	Prenom     *string `json:"prenom"`
	Numero     *string `json:"numero"`
}

// List handles GET /clients.
//
// @Summary      List clients
// @Tags         clients
// @Produce      json
// @Security     BearerAuth
// @Param        search  query     string  false  "Matches nom_societe, nom or numero"
// @Success      200     {array}   domain.Client
// @Failure      401     {object}  map[string]string
// @Router       /clients [get]
func (h *ClientHandler) List(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	items, err := h.service.List(c.Request().Context(), actor, c.QueryParam("search"))
	if err != nil {
		return err
	}
	if items == nil {
		items = []*domain.Client{}
	}
	return c.JSON(http.StatusOK, items)
}

// Get handles GET /clients/:id.
//
// @Summary      Get a client
// @Tags         clients
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Client ID"
// @Success      200  {object}  domain.Client
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /clients/{id} [get]
func (h *ClientHandler) Get(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	client, err := h.service.Get(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, client)
}

// Create handles POST /clients.
//
// @Summary      Create a client
// @Tags         clients
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createClientRequest  true  "Client details"
// @Success      201   {object}  domain.Client
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Router       /clients [post]
func (h *ClientHandler) Create(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req createClientRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	client, err := h.service.Create(c.Request().Context(), actor, ports.CreateClientInput{
		NomSociete: req.NomSociete,
		Adresse:    req.Adresse,
		Nom:        req.Nom,
		Prenom:     req.Prenom,
		Numero:     req.Numero,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, client)
}

// Update handles PUT /clients/:id. Only the provided fields change.
//
// @Summary      Update a client
// @Tags         clients
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string               true  "Client ID"
// @Param        body  body      updateClientRequest  true  "Fields to change"
// @Success      200   {object}  domain.Client
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /clients/{id} [put]
func (h *ClientHandler) Update(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req updateClientRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	client, err := h.service.Update(c.Request().Context(), actor, c.Param("id"), ports.UpdateClientInput{
		NomSociete: req.NomSociete,
		Adresse:    req.Adresse,
		Nom:        req.Nom,
		Prenom:     req.Prenom,
		Numero:     req.Numero,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, client)
}

// Delete handles DELETE /clients/:id.
//
// @Summary      Delete a client
// @Tags         clients
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Client ID"
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /clients/{id} [delete]
func (h *ClientHandler) Delete(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), actor, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "client deleted"})
}
