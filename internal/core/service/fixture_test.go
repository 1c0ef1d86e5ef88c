package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/supportdesk/support-system/internal/core/authz"
	"github.com/supportdesk/support-system/internal/core/domain"
	"github.com/supportdesk/support-system/internal/infrastructure/db/memory"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []domain.Notification
}

func (n *recordingNotifier) Notify(_ context.Context, ev domain.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
}

func (n *recordingNotifier) kinds() []domain.EventKind {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]domain.EventKind, 0, len(n.events))
	for _, ev := range n.events {
		out = append(out, ev.Kind)
	}
	return out
}

type fixture struct {
	store    *memory.Store
	notifier *recordingNotifier
	clock    time.Time

	clients      *ClientService
	tickets      *TicketService
	portabilites *PortabiliteService
	echanges     *EchangeService

	agent     domain.Actor
	demandeur domain.Actor
	other     domain.Actor
	clientID  string
}

func (f *fixture) now() time.Time { return f.clock }

func (f *fixture) advance(d time.Duration) { f.clock = f.clock.Add(d) }

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memory.NewStore()
	guard := authz.MustNewGuard()
	log := zerolog.Nop()
	f := &fixture{
		store:    store,
		notifier: &recordingNotifier{},
		clock:    time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
	}

	numbering := NewNumbering(store.Portabilites(), nil, 0, log)
	f.clients = NewClientService(store.Clients(), store.Tickets(), store.Portabilites(), guard, log)
	f.tickets = NewTicketService(store.Tickets(), store.Clients(), store.Principals(), guard, f.notifier, log)
	f.portabilites = NewPortabiliteService(
		store.Portabilites(), store.Echanges(domain.ThreadPortabilite), store.Clients(), store.Principals(),
		numbering, guard, f.notifier, log,
	)
	f.echanges = NewEchangeService(
		store.Echanges(domain.ThreadTicket), store.Echanges(domain.ThreadPortabilite),
		store.Tickets(), store.Portabilites(), store.Principals(), guard, f.notifier, log,
	)
	f.clients.now = f.now
	f.tickets.now = f.now
	f.portabilites.now = f.now
	f.echanges.now = f.now

	f.agent = seedPrincipal(t, store, "agent@support.test", "secret-agent", "Agent", "Alice", domain.RoleAgent)
	f.demandeur = seedPrincipal(t, store, "dem@client.test", "secret-dem", "Martin", "Bruno", domain.RoleDemandeur)
	f.other = seedPrincipal(t, store, "other@client.test", "secret-other", "Durand", "Chloe", domain.RoleDemandeur)

	c, err := f.clients.Create(context.Background(), f.agent, clientInput("ACME"))
	require.NoError(t, err)
	f.clientID = c.ID
	return f
}

// seedPrincipal writes straight to the store with a cheap hash.
func seedPrincipal(t *testing.T, store *memory.Store, email, password, nom, prenom string, role domain.Role) domain.Actor {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	p, err := store.Principals().Create(context.Background(), &domain.Principal{
		Email:        email,
		PasswordHash: string(hash),
		Nom:          nom,
		Prenom:       prenom,
		Role:         role,
	})
	require.NoError(t, err)
	return domain.Actor{ID: p.ID, Email: p.Email, Role: p.Role}
}

func strPtr(s string) *string { return &s }
