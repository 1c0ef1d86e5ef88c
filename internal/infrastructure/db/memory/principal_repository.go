package memory

import (
	"context"
	"sort"

	"github.com/supportdesk/support-system/internal/core/domain"
)

type PrincipalRepository struct{ s *Store }

func (r *PrincipalRepository) Create(_ context.Context, p *domain.Principal) (*domain.Principal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	email := domain.NormalizeEmail(p.Email)
	for _, existing := range r.s.principals {
		if existing.Email == email {
			return nil, domain.ErrPrincipalExists
		}
	}
	stored := *p
	stored.ID = newID()
	stored.Email = email
	r.s.principals[stored.ID] = &stored

	out := stored
	return &out, nil
}

func (r *PrincipalRepository) FindByEmail(_ context.Context, role domain.Role, email string) (*domain.Principal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	email = domain.NormalizeEmail(email)
	for _, p := range r.s.principals {
		if p.Role == role && p.Email == email {
			out := *p
			return &out, nil
		}
	}
	return nil, domain.ErrPrincipalNotFound
}

func (r *PrincipalRepository) FindByID(_ context.Context, id string) (*domain.Principal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.principals[id]
	if !ok {
		return nil, domain.ErrPrincipalNotFound
	}
	out := *p
	return &out, nil
}

func (r *PrincipalRepository) List(_ context.Context, role domain.Role) ([]*domain.Principal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*domain.Principal, 0, len(r.s.principals))
	for _, p := range r.s.principals {
		if role != "" && p.Role != role {
			continue
		}
		c := *p
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (r *PrincipalRepository) CountByRole(_ context.Context, role domain.Role) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var n int64
	for _, p := range r.s.principals {
		if p.Role == role {
			n++
		}
	}
	return n, nil
}
