// Package memory holds in-process repositories used for development and tests.
// All repositories of a Store share one lock, so cross-entity reads such as
// the auteur_nom join see a consistent snapshot.
package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/supportdesk/support-system/internal/core/domain"
)

type Store struct {
	mu sync.RWMutex

	principals   map[string]*domain.Principal
	clients      map[string]*domain.Client
	tickets      map[string]*domain.Ticket
	portabilites map[string]*domain.Portabilite
	numeros      map[string]string // numero_portabilite -> id
	echanges     map[domain.Thread]map[string]*domain.Echange
	order        map[string]int64
	seq          int64
}

func NewStore() *Store {
	return &Store{
		principals:   make(map[string]*domain.Principal),
		clients:      make(map[string]*domain.Client),
		tickets:      make(map[string]*domain.Ticket),
		portabilites: make(map[string]*domain.Portabilite),
		numeros:      make(map[string]string),
		echanges: map[domain.Thread]map[string]*domain.Echange{
			domain.ThreadTicket:      {},
			domain.ThreadPortabilite: {},
		},
		order: make(map[string]int64),
	}
}

func (s *Store) Principals() *PrincipalRepository { return &PrincipalRepository{s: s} }
func (s *Store) Clients() *ClientRepository       { return &ClientRepository{s: s} }
func (s *Store) Tickets() *TicketRepository       { return &TicketRepository{s: s} }
func (s *Store) Portabilites() *PortabiliteRepository {
	return &PortabiliteRepository{s: s}
}

func (s *Store) Echanges(thread domain.Thread) *EchangeRepository {
	return &EchangeRepository{s: s, thread: thread}
}

func newID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func contains(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), needle)
}

func containsPtr(haystack *string, needle string) bool {
	return haystack != nil && contains(*haystack, needle)
}

// page slices a list already in display order.
func page[T any](items []T, req domain.PageRequest) []T {
	skip := int(req.Skip())
	if skip >= len(items) {
		return []T{}
	}
	end := skip + req.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[skip:end]
}

// Ping always succeeds; it lets the readiness probe treat every driver alike.
func (s *Store) Ping(context.Context) error { return nil }
