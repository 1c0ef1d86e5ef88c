package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/supportdesk/support-system/internal/core/domain"
)

type ClientRepository struct{ s *Store }

func (r *ClientRepository) Create(_ context.Context, c *domain.Client) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c.ID = newID()
	stored := *c
	r.s.clients[c.ID] = &stored
	return nil
}

func (r *ClientRepository) FindByID(_ context.Context, id string) (*domain.Client, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.clients[id]
	if !ok {
		return nil, domain.ErrClientNotFound
	}
	out := *c
	return &out, nil
}

// List matches search against nom_societe, nom and numero.
func (r *ClientRepository) List(_ context.Context, search string) ([]*domain.Client, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	needle := strings.ToLower(search)
	out := make([]*domain.Client, 0, len(r.s.clients))
	for _, c := range r.s.clients {
		if needle != "" &&
			!contains(c.NomSociete, needle) &&
			!containsPtr(c.Nom, needle) &&
			!containsPtr(c.Numero, needle) {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NomSociete < out[j].NomSociete })
	return out, nil
}

func (r *ClientRepository) Update(_ context.Context, c *domain.Client) (*domain.Client, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.clients[c.ID]
	if !ok {
		return nil, domain.ErrClientNotFound
	}
	stored := *c
	stored.CreatedAt = existing.CreatedAt
	r.s.clients[c.ID] = &stored

	out := stored
	return &out, nil
}

func (r *ClientRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.clients[id]; !ok {
		return domain.ErrClientNotFound
	}
	delete(r.s.clients, id)
	return nil
}
