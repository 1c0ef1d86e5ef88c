package handler

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/supportdesk/support-system/internal/core/domain"
	"github.com/supportdesk/support-system/internal/core/ports"
)

type stubPortabiliteService struct {
	createFn func(ctx context.Context, actor domain.Actor, in ports.CreatePortabiliteInput) (*domain.Portabilite, error)
	getFn    func(ctx context.Context, actor domain.Actor, id string) (*domain.Portabilite, error)
	listFn   func(ctx context.Context, actor domain.Actor, in ports.ListPortabilitesInput) (*ports.PortabilitePage, error)
	updateFn func(ctx context.Context, actor domain.Actor, id string, in ports.UpdatePortabiliteInput) (*domain.Portabilite, error)
	deleteFn func(ctx context.Context, actor domain.Actor, id string) error
}

func (s *stubPortabiliteService) Create(ctx context.Context, actor domain.Actor, in ports.CreatePortabiliteInput) (*domain.Portabilite, error) {
	return s.createFn(ctx, actor, in)
}

func (s *stubPortabiliteService) Get(ctx context.Context, actor domain.Actor, id string) (*domain.Portabilite, error) {
	return s.getFn(ctx, actor, id)
}

func (s *stubPortabiliteService) List(ctx context.Context, actor domain.Actor, in ports.ListPortabilitesInput) (*ports.PortabilitePage, error) {
	return s.listFn(ctx, actor, in)
}

func (s *stubPortabiliteService) Update(ctx context.Context, actor domain.Actor, id string, in ports.UpdatePortabiliteInput) (*domain.Portabilite, error) {
	return s.updateFn(ctx, actor, id, in)
}

func (s *stubPortabiliteService) Delete(ctx context.Context, actor domain.Actor, id string) error {
	return s.deleteFn(ctx, actor, id)
}

func TestPortabiliteHandler_Create(t *testing.T) {
	stub := &stubPortabiliteService{
		createFn: func(ctx context.Context, actor domain.Actor, in ports.CreatePortabiliteInput) (*domain.Portabilite, error) {
			if in.ClientID != "c-1" || in.DemandeurID != "dem-1" || in.NumerosPortes != "0102030405" {
				t.Fatalf("unexpected input: %+v", in)
			}
			if in.Contact.NomClient == nil || *in.Contact.NomClient != "Durand" || in.Contact.Ville != nil {
				t.Fatalf("unexpected contact: %+v", in.Contact)
			}
			if !in.DemandeSignee || in.DatePortabiliteDemandee == nil {
				t.Fatalf("flags not mapped: %+v", in)
			}
			return &domain.Portabilite{ID: "p-1", NumeroPortabilite: "01234567", Status: domain.PortabiliteNouveau}, nil
		},
	}
	handler := NewPortabiliteHandler(stub)

	body := `{"client_id":"c-1","demandeur_id":"dem-1","numeros_portes":"0102030405","nom_client":"Durand",
		"demande_signee":true,"date_portabilite_demandee":"2026-03-01T09:00:00Z"}`
	c, rec := newContext(http.MethodPost, "/portabilites", strings.NewReader(body), agentClaims)
	if err := handler.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	expectStatus(t, rec, http.StatusCreated)
	if resp := decode(t, rec); resp["numero_portabilite"] != "01234567" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestPortabiliteHandler_Create_Validation(t *testing.T) {
	handler := NewPortabiliteHandler(&stubPortabiliteService{})

	c, _ := newContext(http.MethodPost, "/portabilites", strings.NewReader(`{"client_id":"c-1"}`), agentClaims)
	err := handler.Create(c)
	expectErr(t, err, domain.ErrValidation)
	if !strings.Contains(err.Error(), "numeros_portes") {
		t.Fatalf("expected field name in message, got %q", err.Error())
	}
}

func TestPortabiliteHandler_Update_Status(t *testing.T) {
	stub := &stubPortabiliteService{
		updateFn: func(ctx context.Context, actor domain.Actor, id string, in ports.UpdatePortabiliteInput) (*domain.Portabilite, error) {
			if in.Status == nil || *in.Status != "terminee" || in.ClientID != nil {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &domain.Portabilite{ID: id, Status: domain.PortabiliteTerminee}, nil
		},
	}
	handler := NewPortabiliteHandler(stub)

	c, rec := newContext(http.MethodPut, "/portabilites/p-1", strings.NewReader(`{"status":"terminee"}`), agentClaims)
	c.SetParamNames("id")
	c.SetParamValues("p-1")
	if err := handler.Update(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	expectStatus(t, rec, http.StatusOK)

	c, _ = newContext(http.MethodPut, "/portabilites/p-1", strings.NewReader(`{"status":"archivee"}`), agentClaims)
	expectErr(t, handler.Update(c), domain.ErrValidation)
}

func TestPortabiliteHandler_List(t *testing.T) {
	stub := &stubPortabiliteService{
		listFn: func(ctx context.Context, actor domain.Actor, in ports.ListPortabilitesInput) (*ports.PortabilitePage, error) {
			if in.Search != "01234567" {
				t.Fatalf("unexpected search %q", in.Search)
			}
			return &ports.PortabilitePage{
				Items:      []*domain.Portabilite{},
				Pagination: domain.NewPagination(in.Page, 0),
			}, nil
		},
	}
	handler := NewPortabiliteHandler(stub)

	c, rec := newContext(http.MethodGet, "/portabilites?search=01234567", nil, demandeurClaims)
	if err := handler.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	expectStatus(t, rec, http.StatusOK)
	if !strings.Contains(rec.Body.String(), `"data":[]`) || !strings.Contains(rec.Body.String(), `"limit":10`) {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

func TestPortabiliteHandler_Delete(t *testing.T) {
	stub := &stubPortabiliteService{
		deleteFn: func(ctx context.Context, actor domain.Actor, id string) error {
			if actor.Role != domain.RoleAgent {
				return domain.ErrForbidden
			}
			return nil
		},
	}
	handler := NewPortabiliteHandler(stub)

	c, _ := newContext(http.MethodDelete, "/portabilites/p-1", nil, demandeurClaims)
	expectErr(t, handler.Delete(c), domain.ErrForbidden)

	c, rec := newContext(http.MethodDelete, "/portabilites/p-1", nil, agentClaims)
	if err := handler.Delete(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	expectStatus(t, rec, http.StatusOK)
}
