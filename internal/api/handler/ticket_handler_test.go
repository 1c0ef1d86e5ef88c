package handler

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/supportdesk/support-system/internal/core/domain"
	"github.com/supportdesk/support-system/internal/core/ports"
)

type stubTicketService struct {
	createFn func(ctx context.Context, actor domain.Actor, in ports.CreateTicketInput) (*domain.Ticket, error)
	getFn    func(ctx context.Context, actor domain.Actor, id string) (*domain.Ticket, error)
	listFn   func(ctx context.Context, actor domain.Actor, in ports.ListTicketsInput) (*ports.TicketPage, error)
	updateFn func(ctx context.Context, actor domain.Actor, id string, in ports.UpdateTicketInput) (*domain.Ticket, error)
}

func (s *stubTicketService) Create(ctx context.Context, actor domain.Actor, in ports.CreateTicketInput) (*domain.Ticket, error) {
	return s.createFn(ctx, actor, in)
}

func (s *stubTicketService) Get(ctx context.Context, actor domain.Actor, id string) (*domain.Ticket, error) {
	return s.getFn(ctx, actor, id)
}

func (s *stubTicketService) List(ctx context.Context, actor domain.Actor, in ports.ListTicketsInput) (*ports.TicketPage, error) {
	return s.listFn(ctx, actor, in)
}

func (s *stubTicketService) Update(ctx context.Context, actor domain.Actor, id string, in ports.UpdateTicketInput) (*domain.Ticket, error) {
	return s.updateFn(ctx, actor, id, in)
}

func TestTicketHandler_Create(t *testing.T) {
	stub := &stubTicketService{
		createFn: func(ctx context.Context, actor domain.Actor, in ports.CreateTicketInput) (*domain.Ticket, error) {
			if actor.Role != domain.RoleDemandeur || in.Titre != "Panne" || in.Priorite != "haute" {
				t.Fatalf("unexpected args: %+v %+v", actor, in)
			}
			if len(in.Fichiers) != 1 || in.Fichiers[0].Taille != 42 {
				t.Fatalf("unexpected fichiers: %+v", in.Fichiers)
			}
			return &domain.Ticket{ID: "t-1", Titre: in.Titre, Status: domain.TicketNouveau, Fichiers: in.Fichiers}, nil
		},
	}
	handler := NewTicketHandler(stub)

	body := `{"titre":"Panne","client_id":"c-1","requete_initiale":"Plus de ligne","priorite":"haute",
		"fichiers":[{"nom":"log.txt","url":"https://files.test/log.txt","taille":42}]}`
	c, rec := newContext(http.MethodPost, "/tickets", strings.NewReader(body), demandeurClaims)
	if err := handler.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	expectStatus(t, rec, http.StatusCreated)
	if resp := decode(t, rec); resp["status"] != "nouveau" || resp["date_cloture"] != nil {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestTicketHandler_Create_Validation(t *testing.T) {
	handler := NewTicketHandler(&stubTicketService{})

	cases := map[string]string{
		"missing titre":    `{"client_id":"c-1","requete_initiale":"x"}`,
		"unknown priorite": `{"titre":"a","client_id":"c-1","requete_initiale":"x","priorite":"critique"}`,
		"fichier no url":   `{"titre":"a","client_id":"c-1","requete_initiale":"x","fichiers":[{"nom":"f"}]}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			c, _ := newContext(http.MethodPost, "/tickets", strings.NewReader(body), agentClaims)
			expectErr(t, handler.Create(c), domain.ErrValidation)
		})
	}
}

func TestTicketHandler_List_Paginated(t *testing.T) {
	stub := &stubTicketService{
		listFn: func(ctx context.Context, actor domain.Actor, in ports.ListTicketsInput) (*ports.TicketPage, error) {
			if in.Page.Page != 2 || in.Page.Limit != 5 || in.Status != "en_cours" || in.Search != "panne" {
				t.Fatalf("unexpected input: %+v", in)
			}
			req := domain.PageRequest{Page: 2, Limit: 5}
			return &ports.TicketPage{
				Items:      []*domain.Ticket{{ID: "t-6"}},
				Pagination: domain.NewPagination(req, 6),
			}, nil
		},
	}
	handler := NewTicketHandler(stub)

	c, rec := newContext(http.MethodGet, "/tickets?page=2&limit=5&status=en_cours&search=panne", nil, agentClaims)
	if err := handler.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	expectStatus(t, rec, http.StatusOK)

	resp := decode(t, rec)
	data, ok := resp["data"].([]any)
	if !ok || len(data) != 1 {
		t.Fatalf("unexpected data: %+v", resp["data"])
	}
	pagination := resp["pagination"].(map[string]any)
	if pagination["pages"] != float64(2) || pagination["hasNext"] != false || pagination["hasPrev"] != true {
		t.Fatalf("unexpected pagination: %+v", pagination)
	}
}

func TestTicketHandler_List_BadPage(t *testing.T) {
	handler := NewTicketHandler(&stubTicketService{})

	c, _ := newContext(http.MethodGet, "/tickets?page=abc", nil, agentClaims)
	expectErr(t, handler.List(c), domain.ErrValidation)
}

func TestTicketHandler_Update(t *testing.T) {
	stub := &stubTicketService{
		updateFn: func(ctx context.Context, actor domain.Actor, id string, in ports.UpdateTicketInput) (*domain.Ticket, error) {
			if id != "t-1" || in.Status == nil || *in.Status != "ferme" || in.Titre != nil {
				t.Fatalf("unexpected input: %s %+v", id, in)
			}
			return nil, domain.ErrInvalidTransition
		},
	}
	handler := NewTicketHandler(stub)

	c, _ := newContext(http.MethodPut, "/tickets/t-1", strings.NewReader(`{"status":"ferme"}`), agentClaims)
	c.SetParamNames("id")
	c.SetParamValues("t-1")
	expectErr(t, handler.Update(c), domain.ErrInvalidTransition)
}

func TestTicketHandler_Get_Forbidden(t *testing.T) {
	stub := &stubTicketService{
		getFn: func(ctx context.Context, actor domain.Actor, id string) (*domain.Ticket, error) {
			return nil, domain.ErrForbidden
		},
	}
	handler := NewTicketHandler(stub)

	c, _ := newContext(http.MethodGet, "/tickets/t-1", nil, demandeurClaims)
	c.SetParamNames("id")
	c.SetParamValues("t-1")
	expectErr(t, handler.Get(c), domain.ErrForbidden)
}

func TestTicketHandler_RequiresClaims(t *testing.T) {
	handler := NewTicketHandler(&stubTicketService{})

	c, _ := newContext(http.MethodGet, "/tickets", nil, nil)
	expectErr(t, handler.List(c), domain.ErrUnauthorized)
}
