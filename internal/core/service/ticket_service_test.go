package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/supportdesk/support-system/internal/core/domain"
	"github.com/supportdesk/support-system/internal/core/ports"
)

func (f *fixture) newTicket(t *testing.T, actor domain.Actor, titre string) *domain.Ticket {
	t.Helper()
	tk, err := f.tickets.Create(context.Background(), actor, ports.CreateTicketInput{
		Titre:           titre,
		ClientID:        f.clientID,
		RequeteInitiale: "Voir le détail en pièce jointe",
	})
	require.NoError(t, err)
	return tk
}

func TestTicketService_CreateByDemandeur(t *testing.T) {
	f := newFixture(t)

	tk := f.newTicket(t, f.demandeur, "VPN")
	assert.Equal(t, f.demandeur.ID, tk.DemandeurID)
	assert.Equal(t, domain.TicketNouveau, tk.Status)
	assert.Equal(t, domain.PrioriteNormale, tk.Priorite)
	assert.Equal(t, f.clock, tk.DateCreation)
	assert.Equal(t, f.clock, tk.DateModification)
	assert.Nil(t, tk.DateCloture)
	assert.Equal(t, []domain.EventKind{domain.EventTicketCreated}, f.notifier.kinds())
}

func TestTicketService_CreateOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.tickets.Create(ctx, f.demandeur, ports.CreateTicketInput{
		Titre: "x", ClientID: f.clientID, RequeteInitiale: "y", DemandeurID: f.other.ID,
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.tickets.Create(ctx, f.agent, ports.CreateTicketInput{
		Titre: "x", ClientID: f.clientID, RequeteInitiale: "y",
	})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.tickets.Create(ctx, f.agent, ports.CreateTicketInput{
		Titre: "x", ClientID: f.clientID, RequeteInitiale: "y", DemandeurID: f.agent.ID,
	})
	assert.ErrorIs(t, err, domain.ErrPrincipalNotFound)

	tk, err := f.tickets.Create(ctx, f.agent, ports.CreateTicketInput{
		Titre: "x", ClientID: f.clientID, RequeteInitiale: "y", DemandeurID: f.demandeur.ID,
		AgentID: strPtr(f.agent.ID), Priorite: "urgente",
	})
	require.NoError(t, err)
	assert.Equal(t, f.demandeur.ID, tk.DemandeurID)
	require.NotNil(t, tk.AgentID)
	assert.Equal(t, f.agent.ID, *tk.AgentID)
	assert.Equal(t, domain.PrioriteUrgente, tk.Priorite)
}

func TestTicketService_CreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := map[string]ports.CreateTicketInput{
		"missing titre":    {ClientID: f.clientID, RequeteInitiale: "y"},
		"blank requete":    {Titre: "x", ClientID: f.clientID, RequeteInitiale: "  "},
		"missing client":   {Titre: "x", RequeteInitiale: "y"},
		"unknown priorite": {Titre: "x", ClientID: f.clientID, RequeteInitiale: "y", Priorite: "critique"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.tickets.Create(ctx, f.demandeur, in)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}

	_, err := f.tickets.Create(ctx, f.demandeur, ports.CreateTicketInput{Titre: "x", ClientID: "nope", RequeteInitiale: "y"})
	assert.ErrorIs(t, err, domain.ErrClientNotFound)
}

func TestTicketService_GetOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tk := f.newTicket(t, f.demandeur, "VPN")

	_, err := f.tickets.Get(ctx, f.demandeur, tk.ID)
	require.NoError(t, err)
	_, err = f.tickets.Get(ctx, f.agent, tk.ID)
	require.NoError(t, err)
	_, err = f.tickets.Get(ctx, f.other, tk.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = f.tickets.Get(ctx, f.agent, "missing")
	assert.ErrorIs(t, err, domain.ErrTicketNotFound)
}

func TestTicketService_CloseStampsOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tk := f.newTicket(t, f.demandeur, "VPN")

	f.advance(time.Hour)
	closedAt := f.clock
	closed, err := f.tickets.Update(ctx, f.agent, tk.ID, ports.UpdateTicketInput{Status: strPtr("ferme")})
	require.NoError(t, err)
	require.NotNil(t, closed.DateCloture)
	assert.Equal(t, closedAt, *closed.DateCloture)

	f.advance(time.Hour)
	again, err := f.tickets.Update(ctx, f.agent, tk.ID, ports.UpdateTicketInput{Status: strPtr("ferme")})
	require.NoError(t, err)
	require.NotNil(t, again.DateCloture)
	assert.Equal(t, closedAt, *again.DateCloture)
	assert.Equal(t, f.clock, again.DateModification)

	_, err = f.tickets.Update(ctx, f.agent, tk.ID, ports.UpdateTicketInput{Status: strPtr("en_cours")})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	assert.Equal(t, []domain.EventKind{domain.EventTicketCreated, domain.EventTicketStatusChanged}, f.notifier.kinds())
}

func TestTicketService_DemandeurUpdateLimits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tk := f.newTicket(t, f.demandeur, "VPN")

	_, err := f.tickets.Update(ctx, f.demandeur, tk.ID, ports.UpdateTicketInput{Status: strPtr("resolu")})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.tickets.Update(ctx, f.demandeur, tk.ID, ports.UpdateTicketInput{AgentID: strPtr(f.agent.ID)})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.tickets.Update(ctx, f.other, tk.ID, ports.UpdateTicketInput{Titre: strPtr("hijack")})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	updated, err := f.tickets.Update(ctx, f.demandeur, tk.ID, ports.UpdateTicketInput{Titre: strPtr("VPN en panne")})
	require.NoError(t, err)
	assert.Equal(t, "VPN en panne", updated.Titre)
	assert.Equal(t, domain.TicketNouveau, updated.Status)
}

func TestTicketService_AssignAndUnassign(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tk := f.newTicket(t, f.demandeur, "VPN")

	_, err := f.tickets.Update(ctx, f.agent, tk.ID, ports.UpdateTicketInput{AgentID: strPtr(f.demandeur.ID)})
	assert.ErrorIs(t, err, domain.ErrPrincipalNotFound)

	assigned, err := f.tickets.Update(ctx, f.agent, tk.ID, ports.UpdateTicketInput{AgentID: strPtr(f.agent.ID)})
	require.NoError(t, err)
	require.NotNil(t, assigned.AgentID)

	unassigned, err := f.tickets.Update(ctx, f.agent, tk.ID, ports.UpdateTicketInput{AgentID: strPtr("")})
	require.NoError(t, err)
	assert.Nil(t, unassigned.AgentID)
}

func TestTicketService_ListScopesDemandeurs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, titre := range []string{"Imprimante", "VPN", "Messagerie"} {
		f.newTicket(t, f.demandeur, titre)
		f.advance(time.Minute)
	}
	f.newTicket(t, f.other, "Badge")

	mine, err := f.tickets.List(ctx, f.demandeur, ports.ListTicketsInput{Page: domain.PageRequest{Page: 1, Limit: 2}})
	require.NoError(t, err)
	assert.Equal(t, int64(3), mine.Pagination.Total)
	assert.Equal(t, 2, mine.Pagination.Pages)
	assert.True(t, mine.Pagination.HasNext)
	require.Len(t, mine.Items, 2)
	assert.Equal(t, "Messagerie", mine.Items[0].Titre)

	all, err := f.tickets.List(ctx, f.agent, ports.ListTicketsInput{})
	require.NoError(t, err)
	assert.Equal(t, int64(4), all.Pagination.Total)

	found, err := f.tickets.List(ctx, f.agent, ports.ListTicketsInput{Search: "vpn"})
	require.NoError(t, err)
	require.Len(t, found.Items, 1)
	assert.Equal(t, "VPN", found.Items[0].Titre)

	_, err = f.tickets.List(ctx, f.agent, ports.ListTicketsInput{Status: "open"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}
