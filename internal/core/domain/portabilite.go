package domain

import (
	"fmt"
	"time"
)

// NumeroPortabiliteLength is the fixed width of a numero_portabilite.
const NumeroPortabiliteLength = 8

type PortabiliteStatus string

const (
	PortabiliteNouveau   PortabiliteStatus = "nouveau"
	PortabiliteEnCours   PortabiliteStatus = "en_cours"
	PortabilitePlanifiee PortabiliteStatus = "planifiee"
	PortabiliteTerminee  PortabiliteStatus = "terminee"
	PortabiliteAnnulee   PortabiliteStatus = "annulee"
)

func (s PortabiliteStatus) Valid() bool {
	switch s {
	case PortabiliteNouveau, PortabiliteEnCours, PortabilitePlanifiee, PortabiliteTerminee, PortabiliteAnnulee:
		return true
	}
	return false
}

// IsTerminal reports whether s closes the request.
func (s PortabiliteStatus) IsTerminal() bool {
	return s == PortabiliteTerminee || s == PortabiliteAnnulee
}

// CanTransitionTo allows any move between open statuses; terminal statuses
// only accept themselves.
func (s PortabiliteStatus) CanTransitionTo(next PortabiliteStatus) bool {
	if s == next {
		return true
	}
	return !s.IsTerminal()
}

// Portabilite is a telephone number porting request.
type Portabilite struct {
	ID                      string            `json:"id"`
	NumeroPortabilite       string            `json:"numero_portabilite"`
	ClientID                string            `json:"client_id"`
	DemandeurID             string            `json:"demandeur_id"`
	NumerosPortes           string            `json:"numeros_portes"`
	NomClient               *string           `json:"nom_client"`
	PrenomClient            *string           `json:"prenom_client"`
	EmailClient             *string           `json:"email_client"`
	SiretClient             *string           `json:"siret_client"`
	Adresse                 *string           `json:"adresse"`
	CodePostal              *string           `json:"code_postal"`
	Ville                   *string           `json:"ville"`
	OperateurCedant         *string           `json:"operateur_cedant"`
	Status                  PortabiliteStatus `json:"status"`
	FiabilisationDemandee   bool              `json:"fiabilisation_demandee"`
	DemandeSignee           bool              `json:"demande_signee"`
	DatePortabiliteDemandee *time.Time        `json:"date_portabilite_demandee"`
	DateCreation            time.Time         `json:"date_creation"`
	DateModification        time.Time         `json:"date_modification"`
	DateCloture             *time.Time        `json:"date_cloture"`
}

// SetStatus moves the request to next, stamping DateCloture once when a
// terminal status is reached.
func (p *Portabilite) SetStatus(next PortabiliteStatus, now time.Time) error {
	if !next.Valid() {
		return Invalid("status", "must be one of: nouveau en_cours planifiee terminee annulee")
	}
	if !p.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w (from %s to %s)", ErrInvalidTransition, p.Status, next)
	}
	p.Status = next
	if next.IsTerminal() && p.DateCloture == nil {
		closed := now.UTC()
		p.DateCloture = &closed
	}
	return nil
}

func (p *Portabilite) Touch(now time.Time) {
	p.DateModification = now.UTC()
}

// ValidNumeroPortabilite reports whether s is exactly eight ASCII digits.
func ValidNumeroPortabilite(s string) bool {
	if len(s) != NumeroPortabiliteLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
