package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/supportdesk/support-system/internal/core/domain"
	"github.com/supportdesk/support-system/internal/core/ports"
)

type TicketRepository struct{ s *Store }

func copyTicket(t *domain.Ticket) *domain.Ticket {
	out := *t
	out.Fichiers = append([]domain.Fichier{}, t.Fichiers...)
	return &out
}

func (r *TicketRepository) Create(_ context.Context, t *domain.Ticket) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t.ID = newID()
	r.s.tickets[t.ID] = copyTicket(t)
	return nil
}

func (r *TicketRepository) FindByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	t, ok := r.s.tickets[id]
	if !ok {
		return nil, domain.ErrTicketNotFound
	}
	return copyTicket(t), nil
}

func (r *TicketRepository) List(_ context.Context, f ports.TicketFilter) ([]*domain.Ticket, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	needle := strings.ToLower(f.Search)
	matched := make([]*domain.Ticket, 0)
	for _, t := range r.s.tickets {
		switch {
		case f.DemandeurID != "" && t.DemandeurID != f.DemandeurID:
			continue
		case f.ClientID != "" && t.ClientID != f.ClientID:
			continue
		case f.AgentID != "" && (t.AgentID == nil || *t.AgentID != f.AgentID):
			continue
		case f.Status != "" && string(t.Status) != f.Status:
			continue
		case needle != "" && !contains(t.Titre, needle) && !contains(t.RequeteInitiale, needle):
			continue
		}
		matched = append(matched, t)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].DateCreation.After(matched[j].DateCreation)
	})

	var out []*domain.Ticket
	for _, t := range page(matched, f.Page.Normalize()) {
		out = append(out, copyTicket(t))
	}
	if out == nil {
		out = []*domain.Ticket{}
	}
	return out, int64(len(matched)), nil
}

// Update keeps the first date_cloture ever written.
func (r *TicketRepository) Update(_ context.Context, t *domain.Ticket) (*domain.Ticket, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.tickets[t.ID]
	if !ok {
		return nil, domain.ErrTicketNotFound
	}
	stored := copyTicket(t)
	stored.DateCreation = existing.DateCreation
	stored.DemandeurID = existing.DemandeurID
	if existing.DateCloture != nil {
		stored.DateCloture = existing.DateCloture
	}
	r.s.tickets[t.ID] = stored
	return copyTicket(stored), nil
}

func (r *TicketRepository) CountByClient(_ context.Context, clientID string) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var n int64
	for _, t := range r.s.tickets {
		if t.ClientID == clientID {
			n++
		}
	}
	return n, nil
}
