package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/supportdesk/support-system/internal/core/domain"
)

type setChecker struct {
	taken map[string]bool
	err   error
}

func (c *setChecker) ExistsNumero(_ context.Context, numero string) (bool, error) {
	return c.taken[numero], c.err
}

func sequence(values ...string) NumeroGenerator {
	i := 0
	return func() (string, error) {
		v := values[i%len(values)]
		i++
		return v, nil
	}
}

func TestRandomNumero_Format(t *testing.T) {
	for i := 0; i < 1000; i++ {
		n, err := RandomNumero()
		require.NoError(t, err)
		require.True(t, domain.ValidNumeroPortabilite(n), n)
	}
}

func TestNumbering_SkipsProbeHits(t *testing.T) {
	checker := &setChecker{taken: map[string]bool{"00000001": true, "00000002": true}}
	n := NewNumbering(checker, sequence("00000001", "00000002", "00000003"), 5, zerolog.Nop())

	got, err := n.Generate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "00000003", got)
}

func TestNumbering_RetriesInsertCollision(t *testing.T) {
	n := NewNumbering(&setChecker{}, sequence("12345678", "87654321"), 5, zerolog.Nop())

	var claimed []string
	got, err := n.Assign(context.Background(), func(_ context.Context, numero string) error {
		claimed = append(claimed, numero)
		if numero == "12345678" {
			return domain.ErrDuplicateNumero
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "87654321", got)
	assert.Equal(t, []string{"12345678", "87654321"}, claimed)
}

func TestNumbering_Exhausted(t *testing.T) {
	checker := &setChecker{taken: map[string]bool{"00000000": true}}
	n := NewNumbering(checker, sequence("00000000"), 3, zerolog.Nop())

	_, err := n.Generate(context.Background())
	assert.ErrorIs(t, err, domain.ErrNumberingExhausted)
}

func TestNumbering_ClaimErrorStops(t *testing.T) {
	boom := errors.New("store down")
	n := NewNumbering(&setChecker{}, sequence("11111111"), 5, zerolog.Nop())

	calls := 0
	_, err := n.Assign(context.Background(), func(context.Context, string) error {
		calls++
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestNumbering_RejectsMalformedCandidate(t *testing.T) {
	n := NewNumbering(&setChecker{}, sequence("1234"), 5, zerolog.Nop())

	_, err := n.Generate(context.Background())
	assert.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNumberingExhausted)
}
