package domain

import (
	"strings"
	"time"
)

// Thread names the parent kind a comment hangs off.
type Thread string

const (
	ThreadTicket      Thread = "ticket"
	ThreadPortabilite Thread = "portabilite"
)

func (t Thread) Valid() bool {
	return t == ThreadTicket || t == ThreadPortabilite
}

// Echange is one comment in a ticket or portabilite thread. AuteurNom is
// resolved from the principals store on read and is display-only.
type Echange struct {
	ID         string    `json:"id"`
	Thread     Thread    `json:"-"`
	ParentID   string    `json:"parent_id"`
	AuteurID   string    `json:"auteur_id"`
	AuteurType Role      `json:"auteur_type"`
	AuteurNom  string    `json:"auteur_nom"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"created_at"`
}

// NormalizeMessage trims the message and rejects it when nothing remains.
func NormalizeMessage(message string) (string, error) {
	m := strings.TrimSpace(message)
	if m == "" {
		return "", Required("message")
	}
	return m, nil
}
