package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTicketStatus_CanTransitionTo(t *testing.T) {
	cases := []struct {
		from, to TicketStatus
		want     bool
	}{
		{TicketNouveau, TicketEnCours, true},
		{TicketNouveau, TicketFerme, true},
		{TicketEnCours, TicketNouveau, false},
		{TicketResolu, TicketEnCours, true},
		{TicketFerme, TicketEnCours, false},
		{TicketFerme, TicketNouveau, false},
		{TicketFerme, TicketFerme, true},
		{TicketEnCours, TicketEnCours, true},
	}
	for _, tc := range cases {
		assert.Equalf(t, tc.want, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestTicket_SetStatus_ClosingStampsOnce(t *testing.T) {
	first := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	later := first.Add(2 * time.Hour)

	tk := &Ticket{Status: TicketEnCours}
	require.NoError(t, tk.SetStatus(TicketFerme, first))
	require.NotNil(t, tk.DateCloture)
	assert.True(t, tk.DateCloture.Equal(first))

	require.NoError(t, tk.SetStatus(TicketFerme, later))
	assert.True(t, tk.DateCloture.Equal(first), "re-closing must keep the original date_cloture")
}

func TestTicket_SetStatus_OpenStatusesLeaveClotureNil(t *testing.T) {
	tk := &Ticket{Status: TicketNouveau}
	require.NoError(t, tk.SetStatus(TicketEnCours, time.Now()))
	require.NoError(t, tk.SetStatus(TicketResolu, time.Now()))
	assert.Nil(t, tk.DateCloture)
}

func TestTicket_SetStatus_ReopenRejected(t *testing.T) {
	closed := time.Now().UTC()
	tk := &Ticket{Status: TicketFerme, DateCloture: &closed}

	err := tk.SetStatus(TicketEnCours, time.Now())
	assert.True(t, errors.Is(err, ErrInvalidTransition))
	assert.Equal(t, TicketFerme, tk.Status)
}

func TestTicket_SetStatus_UnknownStatus(t *testing.T) {
	tk := &Ticket{Status: TicketNouveau}
	err := tk.SetStatus("archive", time.Now())
	assert.True(t, errors.Is(err, ErrValidation))
}
