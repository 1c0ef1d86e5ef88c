package memory

import (
	"context"
	"sort"

	"github.com/supportdesk/support-system/internal/core/domain"
)

// EchangeRepository stores one thread kind. Entries keep an insertion sequence
// so comments created within the same instant stay in order.
type EchangeRepository struct {
	s      *Store
	thread domain.Thread
}

type sequenced struct {
	domain.Echange
	seq int64
}

func (r *EchangeRepository) Create(_ context.Context, e *domain.Echange) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.seq++
	e.ID = newID()
	e.Thread = r.thread
	stored := *e
	stored.AuteurNom = ""
	r.s.echanges[r.thread][e.ID] = &stored
	r.s.order[e.ID] = r.s.seq
	return nil
}

// ListByParent resolves auteur_nom from the principals held by the same store.
func (r *EchangeRepository) ListByParent(_ context.Context, parentID string) ([]*domain.Echange, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var items []sequenced
	for id, e := range r.s.echanges[r.thread] {
		if e.ParentID != parentID {
			continue
		}
		items = append(items, sequenced{Echange: *e, seq: r.s.order[id]})
	}
	sort.Slice(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.Before(items[j].CreatedAt)
		}
		return items[i].seq < items[j].seq
	})

	out := make([]*domain.Echange, 0, len(items))
	for i := range items {
		e := items[i].Echange
		if p, ok := r.s.principals[e.AuteurID]; ok {
			e.AuteurNom = p.DisplayName()
		}
		out = append(out, &e)
	}
	return out, nil
}

func (r *EchangeRepository) FindByID(_ context.Context, id string) (*domain.Echange, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	e, ok := r.s.echanges[r.thread][id]
	if !ok {
		return nil, domain.ErrEchangeNotFound
	}
	out := *e
	if p, ok := r.s.principals[out.AuteurID]; ok {
		out.AuteurNom = p.DisplayName()
	}
	return &out, nil
}

func (r *EchangeRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.echanges[r.thread][id]; !ok {
		return domain.ErrEchangeNotFound
	}
	delete(r.s.echanges[r.thread], id)
	delete(r.s.order, id)
	return nil
}

func (r *EchangeRepository) DeleteByParent(_ context.Context, parentID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for id, e := range r.s.echanges[r.thread] {
		if e.ParentID == parentID {
			delete(r.s.echanges[r.thread], id)
			delete(r.s.order, id)
			n++
		}
	}
	return n, nil
}
