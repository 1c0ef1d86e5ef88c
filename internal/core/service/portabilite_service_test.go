package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/supportdesk/support-system/internal/core/domain"
	"github.com/supportdesk/support-system/internal/core/ports"
)

func (f *fixture) newPortabilite(t *testing.T, actor domain.Actor, demandeurID string) *domain.Portabilite {
	t.Helper()
	p, err := f.portabilites.Create(context.Background(), actor, ports.CreatePortabiliteInput{
		ClientID:      f.clientID,
		DemandeurID:   demandeurID,
		NumerosPortes: "0142000000, 0142000001",
		Contact: ports.PortabiliteContact{
			NomClient:   strPtr("Martin"),
			EmailClient: strPtr("compta@acme.test"),
		},
	})
	require.NoError(t, err)
	return p
}

func TestPortabiliteService_CreateAssignsNumero(t *testing.T) {
	f := newFixture(t)

	p := f.newPortabilite(t, f.agent, f.demandeur.ID)
	assert.True(t, domain.ValidNumeroPortabilite(p.NumeroPortabilite), p.NumeroPortabilite)
	assert.Equal(t, domain.PortabiliteNouveau, p.Status)
	assert.Equal(t, f.demandeur.ID, p.DemandeurID)
	assert.Nil(t, p.PrenomClient)
	assert.Equal(t, []domain.EventKind{domain.EventPortabiliteCreated}, f.notifier.kinds())
}

func TestPortabiliteService_CreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.portabilites.Create(ctx, f.demandeur, ports.CreatePortabiliteInput{ClientID: f.clientID})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.portabilites.Create(ctx, f.demandeur, ports.CreatePortabiliteInput{
		ClientID: f.clientID, NumerosPortes: "0142000000",
		Contact: ports.PortabiliteContact{SiretClient: strPtr("123")},
	})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.portabilites.Create(ctx, f.demandeur, ports.CreatePortabiliteInput{
		ClientID: "nope", NumerosPortes: "0142000000",
	})
	assert.ErrorIs(t, err, domain.ErrClientNotFound)

	_, err = f.portabilites.Create(ctx, f.agent, ports.CreatePortabiliteInput{
		ClientID: f.clientID, NumerosPortes: "0142000000", DemandeurID: "ghost",
	})
	assert.ErrorIs(t, err, domain.ErrPrincipalNotFound)
}

func TestPortabiliteService_ConcurrentCreatesGetDistinctNumeros(t *testing.T) {
	f := newFixture(t)
	const n = 64

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		numeros = make(map[string]struct{}, n)
		errs    []error
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := f.portabilites.Create(context.Background(), f.demandeur, ports.CreatePortabiliteInput{
				ClientID: f.clientID, NumerosPortes: "0142000000",
			})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			numeros[p.NumeroPortabilite] = struct{}{}
		}()
	}
	wg.Wait()

	require.Empty(t, errs)
	assert.Len(t, numeros, n)
	for numero := range numeros {
		assert.True(t, domain.ValidNumeroPortabilite(numero), numero)
	}
}

func TestPortabiliteService_TerminalStatusClosesOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.newPortabilite(t, f.demandeur, "")

	f.advance(24 * time.Hour)
	closedAt := f.clock
	done, err := f.portabilites.Update(ctx, f.agent, p.ID, ports.UpdatePortabiliteInput{Status: strPtr("terminee")})
	require.NoError(t, err)
	require.NotNil(t, done.DateCloture)
	assert.Equal(t, closedAt, *done.DateCloture)
	assert.Equal(t, p.NumeroPortabilite, done.NumeroPortabilite)

	_, err = f.portabilites.Update(ctx, f.agent, p.ID, ports.UpdatePortabiliteInput{Status: strPtr("en_cours")})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = f.portabilites.Update(ctx, f.agent, p.ID, ports.UpdatePortabiliteInput{Status: strPtr("perdue")})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestPortabiliteService_DemandeurEditsContactOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.newPortabilite(t, f.demandeur, "")

	updated, err := f.portabilites.Update(ctx, f.demandeur, p.ID, ports.UpdatePortabiliteInput{
		Contact: ports.PortabiliteContact{Ville: strPtr("Nantes"), NomClient: strPtr("")},
	})
	require.NoError(t, err)
	require.NotNil(t, updated.Ville)
	assert.Equal(t, "Nantes", *updated.Ville)
	assert.Nil(t, updated.NomClient)
	assert.Equal(t, p.NumeroPortabilite, updated.NumeroPortabilite)

	_, err = f.portabilites.Update(ctx, f.demandeur, p.ID, ports.UpdatePortabiliteInput{Status: strPtr("annulee")})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	signed := true
	_, err = f.portabilites.Update(ctx, f.demandeur, p.ID, ports.UpdatePortabiliteInput{DemandeSignee: &signed})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.portabilites.Update(ctx, f.other, p.ID, ports.UpdatePortabiliteInput{
		Contact: ports.PortabiliteContact{Ville: strPtr("Brest")},
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestPortabiliteService_SearchByNumero(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.newPortabilite(t, f.demandeur, "")
	f.newPortabilite(t, f.other, "")

	page, err := f.portabilites.List(ctx, f.agent, ports.ListPortabilitesInput{Search: p.NumeroPortabilite})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, p.ID, page.Items[0].ID)

	mine, err := f.portabilites.List(ctx, f.other, ports.ListPortabilitesInput{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), mine.Pagination.Total)
	assert.NotEqual(t, p.ID, mine.Items[0].ID)
}

func TestPortabiliteService_DeleteAgentOnlyAndCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.newPortabilite(t, f.demandeur, "")

	_, err := f.echanges.Create(ctx, f.demandeur, domain.ThreadPortabilite, p.ID, "RIO joint")
	require.NoError(t, err)

	assert.ErrorIs(t, f.portabilites.Delete(ctx, f.demandeur, p.ID), domain.ErrForbidden)
	assert.ErrorIs(t, f.portabilites.Delete(ctx, f.other, p.ID), domain.ErrForbidden)

	require.NoError(t, f.portabilites.Delete(ctx, f.agent, p.ID))
	_, err = f.portabilites.Get(ctx, f.agent, p.ID)
	assert.ErrorIs(t, err, domain.ErrPortabiliteNotFound)

	thread, err := f.store.Echanges(domain.ThreadPortabilite).ListByParent(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, thread)

	assert.ErrorIs(t, f.portabilites.Delete(ctx, f.agent, p.ID), domain.ErrPortabiliteNotFound)
}

// brokenThread fails cascade deletes until healed.
type brokenThread struct {
	ports.EchangeRepository
	broken bool
}

func (b *brokenThread) DeleteByParent(ctx context.Context, parentID string) (int64, error) {
	if b.broken {
		return 0, errors.New("store unreachable")
	}
	return b.EchangeRepository.DeleteByParent(ctx, parentID)
}

func TestPortabiliteService_DeleteKeepsRequestWhenThreadDeleteFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	thread := &brokenThread{EchangeRepository: f.store.Echanges(domain.ThreadPortabilite), broken: true}
	f.portabilites.echanges = thread

	p := f.newPortabilite(t, f.demandeur, "")
	_, err := f.echanges.Create(ctx, f.demandeur, domain.ThreadPortabilite, p.ID, "RIO joint")
	require.NoError(t, err)

	err = f.portabilites.Delete(ctx, f.agent, p.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store unreachable")

	got, err := f.portabilites.Get(ctx, f.agent, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.NumeroPortabilite, got.NumeroPortabilite)
	comments, err := f.echanges.List(ctx, f.agent, domain.ThreadPortabilite, p.ID)
	require.NoError(t, err)
	assert.Len(t, comments, 1)

	thread.broken = false
	require.NoError(t, f.portabilites.Delete(ctx, f.agent, p.ID))
	_, err = f.portabilites.Get(ctx, f.agent, p.ID)
	assert.ErrorIs(t, err, domain.ErrPortabiliteNotFound)
}
