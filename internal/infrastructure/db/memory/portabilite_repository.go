package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/supportdesk/support-system/internal/core/domain"
	"github.com/supportdesk/support-system/internal/core/ports"
)

type PortabiliteRepository struct{ s *Store }

func (r *PortabiliteRepository) ExistsNumero(_ context.Context, numero string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	_, ok := r.s.numeros[numero]
	return ok, nil
}

// Create rejects a numero_portabilite already held by another request, the
// way the unique index does in Mongo.
func (r *PortabiliteRepository) Create(_ context.Context, p *domain.Portabilite) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, taken := r.s.numeros[p.NumeroPortabilite]; taken {
		return domain.ErrDuplicateNumero
	}
	p.ID = newID()
	stored := *p
	r.s.portabilites[p.ID] = &stored
	r.s.numeros[p.NumeroPortabilite] = p.ID
	return nil
}

func (r *PortabiliteRepository) FindByID(_ context.Context, id string) (*domain.Portabilite, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.portabilites[id]
	if !ok {
		return nil, domain.ErrPortabiliteNotFound
	}
	out := *p
	return &out, nil
}

func (r *PortabiliteRepository) List(_ context.Context, f ports.PortabiliteFilter) ([]*domain.Portabilite, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	needle := strings.ToLower(f.Search)
	matched := make([]*domain.Portabilite, 0)
	for _, p := range r.s.portabilites {
		switch {
		case f.DemandeurID != "" && p.DemandeurID != f.DemandeurID:
			continue
		case f.ClientID != "" && p.ClientID != f.ClientID:
			continue
		case f.Status != "" && string(p.Status) != f.Status:
			continue
		case needle != "" && !matchesPortabilite(p, needle):
			continue
		}
		matched = append(matched, p)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].DateCreation.After(matched[j].DateCreation)
	})

	out := []*domain.Portabilite{}
	for _, p := range page(matched, f.Page.Normalize()) {
		cp := *p
		out = append(out, &cp)
	}
	return out, int64(len(matched)), nil
}

func matchesPortabilite(p *domain.Portabilite, needle string) bool {
	return contains(p.NumeroPortabilite, needle) ||
		containsPtr(p.NomClient, needle) ||
		containsPtr(p.PrenomClient, needle) ||
		containsPtr(p.EmailClient, needle) ||
		containsPtr(p.SiretClient, needle)
}

// Update never rewrites numero_portabilite and keeps the first date_cloture.
func (r *PortabiliteRepository) Update(_ context.Context, p *domain.Portabilite) (*domain.Portabilite, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.portabilites[p.ID]
	if !ok {
		return nil, domain.ErrPortabiliteNotFound
	}
	stored := *p
	stored.NumeroPortabilite = existing.NumeroPortabilite
	stored.DemandeurID = existing.DemandeurID
	stored.DateCreation = existing.DateCreation
	if existing.DateCloture != nil {
		stored.DateCloture = existing.DateCloture
	}
	r.s.portabilites[p.ID] = &stored

	out := stored
	return &out, nil
}

func (r *PortabiliteRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.portabilites[id]
	if !ok {
		return domain.ErrPortabiliteNotFound
	}
	delete(r.s.numeros, p.NumeroPortabilite)
	delete(r.s.portabilites, id)
	return nil
}

func (r *PortabiliteRepository) CountByClient(_ context.Context, clientID string) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var n int64
	for _, p := range r.s.portabilites {
		if p.ClientID == clientID {
			n++
		}
	}
	return n, nil
}
